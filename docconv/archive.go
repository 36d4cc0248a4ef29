package docconv

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/SaiNageswarS/doc-filler/errs"
)

const (
	documentPart = "word/document.xml"
	stylesPart   = "word/styles.xml"
)

// archive indexes the parts of a DOCX zip container.
type archive struct {
	files       map[string]*zip.File
	maxPartSize int64
}

func openArchive(data []byte, maxPartSize int64) (*archive, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errs.Format("opening document archive", err)
	}

	a := &archive{
		files:       make(map[string]*zip.File, len(zipReader.File)),
		maxPartSize: maxPartSize,
	}
	for _, f := range zipReader.File {
		a.files[f.Name] = f
	}

	if !a.has(documentPart) {
		return nil, errs.Format("opening document archive", fmt.Errorf("not a valid DOCX file: missing %s", documentPart))
	}
	return a, nil
}

func (a *archive) has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// readPart reads one part, refusing parts that decompress beyond maxPartSize.
func (a *archive) readPart(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, a.maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) > a.maxPartSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, a.maxPartSize)
	}
	return data, nil
}
