package docconv

import (
	"bytes"
	"strings"

	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
)

const maxHeadingLevel = 9

type blockKind int

const (
	paragraphBlock blockKind = iota
	headingBlock
)

type docBlock struct {
	kind  blockKind
	level int
	text  string
}

// parseMarkdownBlocks splits text on blank lines. A block starting with "#" is a heading whose
// level is the number of leading '#' of its first token, clamped to 9; its text is the block
// with leading '#' and surrounding whitespace removed. Whitespace-only blocks are dropped.
func parseMarkdownBlocks(markdown string) []docBlock {
	var blocks []docBlock

	for _, para := range strings.Split(markdown, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}

		if strings.HasPrefix(para, "#") {
			first := strings.Fields(para)[0]
			level := min(len(first)-len(strings.TrimLeft(first, "#")), maxHeadingLevel)
			blocks = append(blocks, docBlock{
				kind:  headingBlock,
				level: level,
				text:  strings.TrimSpace(strings.TrimLeft(para, "#")),
			})
			continue
		}

		blocks = append(blocks, docBlock{kind: paragraphBlock, text: para})
	}

	return blocks
}

// ToDocument converts markdown-like text into DOCX bytes. Tables are not reconstructed;
// their rows become plain paragraphs.
func (c *Converter) ToDocument(markdown string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, errs.Format("creating document", err)
	}

	for _, blk := range parseMarkdownBlocks(markdown) {
		if err := addBlock(doc, blk); err != nil {
			return nil, errs.Format("writing document", err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, errs.Format("writing document", err)
	}
	return buf.Bytes(), nil
}

func addBlock(doc *docx.RootDoc, blk docBlock) error {
	var p *docx.Paragraph
	if blk.kind == headingBlock {
		h, err := doc.AddHeading("", uint(blk.level))
		if err != nil {
			return err
		}
		// drop the empty run AddHeading starts with
		h.GetCT().Children = nil
		p = h
	} else {
		p = doc.AddEmptyParagraph()
	}

	appendRun(p, blk.text)
	return nil
}

// appendRun adds text as a single run; newlines become breaks and tabs become tab elements.
func appendRun(p *docx.Paragraph, text string) {
	if text == "" {
		return
	}

	run := &ctypes.Run{}
	var seg strings.Builder
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		run.Children = append(run.Children, ctypes.RunChild{Text: ctypes.TextFromString(seg.String())})
		seg.Reset()
	}

	for _, r := range text {
		switch r {
		case '\n':
			flush()
			run.Children = append(run.Children, ctypes.RunChild{Break: &ctypes.Break{}})
		case '\t':
			flush()
			run.Children = append(run.Children, ctypes.RunChild{Tab: &ctypes.Empty{}})
		case '\r':
		default:
			seg.WriteRune(r)
		}
	}
	flush()

	ct := p.GetCT()
	ct.Children = append(ct.Children, ctypes.ParagraphChild{Run: run})
}
