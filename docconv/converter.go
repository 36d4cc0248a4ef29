// Package docconv converts Word documents to the markdown-like text used across the pipeline and back.
//
// The markdown direction keeps headings, paragraphs and tables. The document direction is lossy:
// tables come back as plain paragraphs.
package docconv

import "strings"

const (
	// DocumentExtension is the file extension of convertible documents.
	DocumentExtension = ".docx"

	// ContentType is the media type of the documents produced by ToDocument.
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	defaultMaxPartSize = 64 << 20
)

// Converter is the DOCX <-> markdown converter.
type Converter struct {
	options *Options
}

// Options holds configuration for the converter.
type Options struct {
	// MaxPartSize caps the decompressed size of any XML part read from an archive.
	MaxPartSize int64
}

// Option is a functional option for configuring the converter.
type Option func(*Options)

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{
		MaxPartSize: defaultMaxPartSize,
	}
}

// WithMaxPartSize sets the decompressed size limit for XML parts.
func WithMaxPartSize(n int64) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxPartSize = n
		}
	}
}

// New creates a Converter with the given options.
func New(opts ...Option) *Converter {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Converter{options: options}
}

// IsDocument reports whether filename names a convertible document.
func IsDocument(filename string) bool {
	return strings.HasSuffix(filename, DocumentExtension)
}
