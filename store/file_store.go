package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// FileStore keeps one <name>.json file per pipeline in a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating pipeline directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+fileExtension)
}

func (s *FileStore) Save(ctx context.Context, name string, body []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.WriteFile(s.path(name), body, 0o644); err != nil {
		return fmt.Errorf("error writing pipeline %s: %w", name, err)
	}
	logger.Info("Saved pipeline", zap.String("name", name), zap.String("dir", s.dir))
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExtension))
	if err != nil {
		return nil, fmt.Errorf("error listing pipelines: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			// removed between glob and stat
			continue
		}
		if info.IsDir() {
			continue
		}

		base := filepath.Base(file)
		entries = append(entries, Entry{
			Name:     strings.TrimSuffix(base, fileExtension),
			File:     base,
			Modified: float64(info.ModTime().UnixNano()) / 1e9,
		})
	}

	sortNewestFirst(entries)
	return entries, nil
}

func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errPipelineNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("error reading pipeline %s: %w", name, err)
	}
	return body, nil
}

func sortNewestFirst(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Modified > b.Modified:
			return -1
		case a.Modified < b.Modified:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
}
