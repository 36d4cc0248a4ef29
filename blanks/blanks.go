// Package blanks locates placeholder tokens in markdown text.
package blanks

import "regexp"

// patterns are applied one after another; matches of the first pattern come before any
// match of the second, whatever their position in the text.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\[([^\]]+)\]`), // bracketed span, brackets included
	regexp.MustCompile(`_{3,}`),        // three or more underscores
}

// Find returns every placeholder in text, verbatim, grouped by pattern.
// Duplicates are kept.
func Find(text string) []string {
	found := []string{}
	for _, re := range patterns {
		found = append(found, re.FindAllString(text, -1)...)
	}
	return found
}

// Contains reports whether text holds at least one placeholder.
func Contains(text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
