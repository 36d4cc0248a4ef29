package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "db", "pipelines.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStores_SaveLoad(t *testing.T) {
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "saved_pipelines"))
	require.NoError(t, err)

	stores := map[string]Store{
		"file":   fileStore,
		"sqlite": newSQLiteStore(t),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			body := []byte("{\n  \"name\": \"contract\",\n  \"nodes\": []\n}")

			require.NoError(t, s.Save(ctx, "contract", body))
			loaded, err := s.Load(ctx, "contract")
			require.NoError(t, err)
			assert.Equal(t, body, loaded)

			// overwrite
			require.NoError(t, s.Save(ctx, "contract", []byte(`{"name": "contract", "v": 2}`)))
			loaded, err = s.Load(ctx, "contract")
			require.NoError(t, err)
			assert.JSONEq(t, `{"name": "contract", "v": 2}`, string(loaded))

			_, err = s.Load(ctx, "missing")
			var notFound *errs.NotFoundError
			require.True(t, errors.As(err, &notFound))
			assert.Equal(t, "Pipeline not found", err.Error())

			err = s.Save(ctx, "../escape", []byte(`{}`))
			var validation *errs.ValidationError
			assert.True(t, errors.As(err, &validation))
		})
	}
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"old", "newest", "middle"} {
		require.NoError(t, s.Save(ctx, name, []byte(`{}`)))
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}[name]
		mtime := base.Add(offset)
		require.NoError(t, os.Chtimes(filepath.Join(dir, name+".json"), mtime, mtime))
	}
	// non-pipeline files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "newest", entries[0].Name)
	assert.Equal(t, "newest.json", entries[0].File)
	assert.Equal(t, float64(base.Add(2*time.Hour).Unix()), entries[0].Modified)
	assert.Equal(t, "middle", entries[1].Name)
	assert.Equal(t, "old", entries[2].Name)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, name, []byte(`{}`)))
		clock = clock.Add(time.Minute)
	}
	// re-saving moves an entry to the top
	require.NoError(t, s.Save(ctx, "a", []byte(`{"v": 2}`)))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []string{"a", "c", "b"}, []string{entries[0].Name, entries[1].Name, entries[2].Name})
	assert.Equal(t, "a.json", entries[0].File)
	assert.Equal(t, float64(clock.Unix()), entries[0].Modified)
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	entries, err := newSQLiteStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"contract", true},
		{"pipeline_1700000000", true},
		{"with space", true},
		{"", false},
		{"   ", false},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
		{"a..b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}
