package docconv

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/SaiNageswarS/doc-filler/errs"
)

const (
	wordNamespace       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	wordStrictNamespace = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// ToMarkdown converts DOCX bytes to markdown-like text.
//
// Body paragraphs come first in document order, headings rendered as "#"*N + " " + text and
// whitespace-only paragraphs dropped. Top-level tables follow as pipe rows with a "---"
// separator after the first row. All entries are joined by a blank line.
func (c *Converter) ToMarkdown(data []byte) (string, error) {
	a, err := openArchive(data, c.options.MaxPartSize)
	if err != nil {
		return "", err
	}

	documentXML, err := a.readPart(documentPart)
	if err != nil {
		return "", errs.Format("reading document", err)
	}

	body, err := scanDocument(documentXML, c.options.MaxPartSize)
	if err != nil {
		return "", errs.Format("parsing document", err)
	}

	// Styles are optional; without them style ids are matched directly.
	var styles *styleSheet
	if a.has(stylesPart) {
		if stylesXML, err := a.readPart(stylesPart); err == nil {
			styles, _ = parseStyles(stylesXML)
		}
	}

	return renderMarkdown(body, styles), nil
}

type paragraph struct {
	styleID string
	text    string
}

type table struct {
	gridCols int
	rows     [][]string
}

type bodyContent struct {
	paragraphs []paragraph
	tables     []table
}

type paragraphBuilder struct {
	styleID string
	text    strings.Builder
	inCell  bool
}

// maxGridColumns is the widest table Word produces. It bounds gridSpan when a table has no grid.
const maxGridColumns = 63

// cellOverhead is the budget charged for each repeated cell on top of its text.
const cellOverhead = 16

var errTableTooLarge = errors.New("table expands beyond the part size limit")

type tableBuilder struct {
	// budget is the number of cell text bytes merged cells may still repeat.
	budget        int64
	gridCols      int
	rows          [][]string
	row           []string
	prevRow       []string
	cell          []string
	span          int
	continueMerge bool
}

func (b *tableBuilder) startCell() {
	b.cell = nil
	b.span = 1
	b.continueMerge = false
}

// endCell appends the cell once per grid column it spans, never past the last grid column.
// A vertically merged continuation cell repeats the text of the cell above it.
func (b *tableBuilder) endCell() error {
	text := strings.Join(b.cell, "\n")
	col := len(b.row)

	cols := b.gridCols
	if cols == 0 {
		cols = maxGridColumns
	}
	span := max(min(b.span, cols-col), 1)

	for i := 0; i < span; i++ {
		cellText := text
		if b.continueMerge && col+i < len(b.prevRow) {
			cellText = b.prevRow[col+i]
		}
		if i > 0 || b.continueMerge {
			b.budget -= int64(len(cellText)) + cellOverhead
			if b.budget < 0 {
				return errTableTooLarge
			}
		}
		b.row = append(b.row, cellText)
	}
	return nil
}

func (b *tableBuilder) endRow() {
	b.rows = append(b.rows, b.row)
	b.prevRow = b.row
	b.row = nil
}

// docScanner walks document.xml as a token stream. It tracks body paragraphs and the
// paragraphs of top-level table cells; paragraphs nested inside those (text boxes) and
// nested tables are skipped.
type docScanner struct {
	maxExpansion int64
	stack        []string
	out          bodyContent
	para         *paragraphBuilder
	nested       int
	inText       bool
	tblDepth     int
	tbl          *tableBuilder
}

// scanDocument parses document.xml. maxExpansion caps the text that merged table cells
// may repeat across the whole document.
func scanDocument(data []byte, maxExpansion int64) (*bodyContent, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	s := &docScanner{maxExpansion: maxExpansion}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.start(t)
		case xml.EndElement:
			if err := s.end(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			if s.inText && s.para != nil {
				s.para.text.Write(t)
			}
		}
	}

	if len(s.stack) != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return &s.out, nil
}

func isWordElement(name xml.Name) bool {
	return name.Space == wordNamespace || name.Space == wordStrictNamespace || name.Space == ""
}

func (s *docScanner) parent() string {
	if len(s.stack) < 2 {
		return ""
	}
	return s.stack[len(s.stack)-2]
}

func (s *docScanner) tracking() bool {
	return s.para != nil && s.nested == 0
}

func (s *docScanner) inTopTable() bool {
	return s.tbl != nil && s.tblDepth == 1
}

func (s *docScanner) start(t xml.StartElement) {
	name := t.Name.Local
	s.stack = append(s.stack, name)
	if !isWordElement(t.Name) {
		return
	}
	parent := s.parent()

	switch name {
	case "p":
		if s.para != nil {
			s.nested++
			return
		}
		switch {
		case parent == "body" && s.tblDepth == 0:
			s.para = &paragraphBuilder{}
		case parent == "tc" && s.inTopTable():
			s.para = &paragraphBuilder{inCell: true}
		}
	case "pStyle":
		if s.tracking() && parent == "pPr" {
			s.para.styleID = attr(t, "val")
		}
	case "t":
		if s.tracking() && parent == "r" {
			s.inText = true
		}
	case "tab":
		if s.tracking() && parent == "r" {
			s.para.text.WriteByte('\t')
		}
	case "br", "cr":
		if s.tracking() && parent == "r" {
			s.para.text.WriteByte('\n')
		}
	case "tbl":
		s.tblDepth++
		if s.tblDepth == 1 && parent == "body" {
			s.tbl = &tableBuilder{budget: s.maxExpansion}
		}
	case "gridCol":
		if s.inTopTable() && parent == "tblGrid" {
			s.tbl.gridCols++
		}
	case "tr":
		if s.inTopTable() {
			s.tbl.row = nil
		}
	case "tc":
		if s.inTopTable() {
			s.tbl.startCell()
		}
	case "gridSpan":
		if s.inTopTable() && parent == "tcPr" {
			if n, err := strconv.Atoi(attr(t, "val")); err == nil && n > 1 {
				s.tbl.span = n
			}
		}
	case "vMerge":
		if s.inTopTable() && parent == "tcPr" {
			if v := attr(t, "val"); v == "" || v == "continue" {
				s.tbl.continueMerge = true
			}
		}
	}
}

func (s *docScanner) end(t xml.EndElement) error {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	if !isWordElement(t.Name) {
		return nil
	}

	switch t.Name.Local {
	case "t":
		s.inText = false
	case "p":
		if s.para == nil {
			return nil
		}
		if s.nested > 0 {
			s.nested--
			return nil
		}
		text := s.para.text.String()
		if s.para.inCell {
			s.tbl.cell = append(s.tbl.cell, text)
		} else {
			s.out.paragraphs = append(s.out.paragraphs, paragraph{styleID: s.para.styleID, text: text})
		}
		s.para = nil
	case "tc":
		if s.inTopTable() {
			return s.tbl.endCell()
		}
	case "tr":
		if s.inTopTable() {
			s.tbl.endRow()
		}
	case "tbl":
		if s.inTopTable() {
			s.maxExpansion = s.tbl.budget
			s.out.tables = append(s.out.tables, table{gridCols: s.tbl.gridCols, rows: s.tbl.rows})
			s.tbl = nil
		}
		if s.tblDepth > 0 {
			s.tblDepth--
		}
	}
	return nil
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func renderMarkdown(body *bodyContent, styles *styleSheet) string {
	var blocks []string

	for _, p := range body.paragraphs {
		if strings.TrimSpace(p.text) == "" {
			continue
		}
		if level := headingLevel(styles.displayName(p.styleID)); level > 0 {
			blocks = append(blocks, strings.Repeat("#", level)+" "+p.text)
			continue
		}
		blocks = append(blocks, p.text)
	}

	for _, t := range body.tables {
		blocks = append(blocks, renderTable(t)...)
	}

	return strings.Join(blocks, "\n\n")
}

// renderTable renders each row as its own block, with the separator inserted after the first row.
func renderTable(t table) []string {
	if len(t.rows) == 0 {
		return nil
	}

	rows := make([]string, 0, len(t.rows)+1)
	for _, r := range t.rows {
		rows = append(rows, "| "+strings.Join(r, " | ")+" |")
	}

	cols := t.gridCols
	if cols == 0 {
		cols = len(t.rows[0])
	}
	separator := make([]string, cols)
	for i := range separator {
		separator[i] = "---"
	}

	return slices.Insert(rows, 1, "| "+strings.Join(separator, " | ")+" |")
}
