package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

type IdentifyBlanksPromptData struct {
	Document string
}

type FillBlanksPromptData struct {
	Blanks  string // JSON array, two-space indented
	Context string
	Example string // appended only when non-empty
}

// RenderIdentifyBlanksPrompt renders the prompts asking the model to list every blank in document.
func RenderIdentifyBlanksPrompt(document string) (systemPrompt, userPrompt string, err error) {
	return renderPair("identify_blanks", IdentifyBlanksPromptData{Document: document})
}

// RenderFillBlanksPrompt renders the prompts asking the model to map each blank to a value.
func RenderFillBlanksPrompt(blanks []string, context, example string) (systemPrompt, userPrompt string, err error) {
	blanksJSON, err := indentedJSON(blanks)
	if err != nil {
		return "", "", err
	}

	return renderPair("fill_blanks", FillBlanksPromptData{
		Blanks:  blanksJSON,
		Context: context,
		Example: example,
	})
}

func renderPair(name string, data any) (string, string, error) {
	systemPrompt, err := loadPrompt("templates/"+name+"_system.md", data)
	if err != nil {
		return "", "", err
	}

	userPrompt, err := loadPrompt("templates/"+name+"_user.md", data)
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

func loadPrompt(templatePath string, data any) (string, error) {
	tmpl, err := template.ParseFS(templatesFS, templatePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func indentedJSON(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(values); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
