// Package store persists saved pipeline definitions as opaque JSON documents keyed by name.
package store

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/doc-filler/errs"
)

const fileExtension = ".json"

// Entry describes one saved pipeline. Modified is in unix seconds.
type Entry struct {
	Name     string  `json:"name"`
	File     string  `json:"file"`
	Modified float64 `json:"modified"`
}

type Store interface {
	// Save writes body under name, replacing any previous version.
	Save(ctx context.Context, name string, body []byte) error
	// List returns all entries, most recently modified first.
	List(ctx context.Context) ([]Entry, error)
	// Load returns the stored body or a NotFoundError.
	Load(ctx context.Context, name string) ([]byte, error)
}

// ValidateName rejects names that are empty or could escape the storage directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errs.Validation("pipeline name must not be empty")
	case strings.ContainsAny(name, `/\`), strings.Contains(name, ".."), strings.ContainsRune(name, 0):
		return errs.Validation("invalid pipeline name %q", name)
	}
	return nil
}

func errPipelineNotFound() error {
	return errs.NotFound("Pipeline not found")
}
