// Package pipeline compiles user-defined block chains and runs uploaded files through them.
package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/SaiNageswarS/doc-filler/blankfill"
	"github.com/SaiNageswarS/doc-filler/blanks"
	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/SaiNageswarS/doc-filler/ordered"
)

type BlockType string

const (
	DocumentInput  BlockType = "DOCUMENT_INPUT"
	TextInput      BlockType = "TEXT_INPUT"
	BlankFinder    BlockType = "BLANK_FINDER"
	GPTModel       BlockType = "GPT_MODEL"
	TemplateModel  BlockType = "TEMPLATE_MODEL"
	DocumentOutput BlockType = "DOCUMENT_OUTPUT"
)

// contextInput is the targetInput name that feeds a GPT_MODEL block its context text.
const contextInput = "context"

// gptBatchSize is the batch size GPT_MODEL blocks pass to the filler.
const gptBatchSize = 15

// Config is the wire form posted by the pipeline editor.
type Config struct {
	Blocks []BlockSpec `json:"blocks"`
}

type BlockSpec struct {
	ID     string      `json:"id"`
	Type   BlockType   `json:"type"`
	Config BlockConfig `json:"config"`
}

// BlockConfig holds the fields the executor reads. Editor state (position, file, outputs) is ignored.
type BlockConfig struct {
	Text           string       `json:"text"`
	Model          string       `json:"model"`
	Inputs         []Connection `json:"inputs"`
	TemplateValues ordered.Map  `json:"template_values"`
}

type Connection struct {
	SourceID     string `json:"sourceId"`
	SourceOutput string `json:"sourceOutput"`
	TargetInput  string `json:"targetInput"`
}

// ParseConfig decodes a pipeline_config document. The blocks key is required.
func ParseConfig(data []byte) (Config, error) {
	var wire struct {
		Blocks *[]BlockSpec `json:"blocks"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Config{}, errs.Validation("invalid pipeline_config: %v", err)
	}
	if wire.Blocks == nil {
		return Config{}, errs.Validation("invalid pipeline_config: missing blocks")
	}
	return Config{Blocks: *wire.Blocks}, nil
}

// Block is one compiled pipeline stage. The set of implementations is closed.
type Block interface {
	ID() string
	Type() BlockType
	apply(ctx context.Context, e *Executor, s *State) error
}

type blockID string

func (b blockID) ID() string { return string(b) }

type DocumentInputBlock struct{ blockID }

func (*DocumentInputBlock) Type() BlockType { return DocumentInput }

func (*DocumentInputBlock) apply(_ context.Context, _ *Executor, s *State) error {
	s.Metadata[MetaInputType] = "document"
	return nil
}

type TextInputBlock struct{ blockID }

func (*TextInputBlock) Type() BlockType { return TextInput }

func (*TextInputBlock) apply(_ context.Context, _ *Executor, s *State) error {
	s.decode()
	s.Metadata[MetaInputType] = "text"
	return nil
}

type BlankFinderBlock struct{ blockID }

func (*BlankFinderBlock) Type() BlockType { return BlankFinder }

func (*BlankFinderBlock) apply(_ context.Context, _ *Executor, s *State) error {
	s.Metadata[MetaBlanksFound] = blanks.Find(s.Text())
	return nil
}

// GPTModelBlock fills blanks through the completion service.
// Context is resolved from the connected source block when the pipeline is compiled.
type GPTModelBlock struct {
	blockID
	Context string
	Model   string
}

func (*GPTModelBlock) Type() BlockType { return GPTModel }

func (b *GPTModelBlock) apply(ctx context.Context, e *Executor, s *State) error {
	model := b.Model
	if e.ignoreBlockModels {
		model = ""
	}

	result, err := e.filler.FillBlanks(ctx, blankfill.Request{
		Text:      s.Text(),
		Context:   b.Context,
		BatchSize: gptBatchSize,
		Model:     model,
	})
	if err != nil {
		return err
	}

	s.setText(result.Text)
	calls, _ := s.Metadata[MetaAPICalls].(int)
	s.Metadata[MetaAPICalls] = calls + result.APICalls
	return nil
}

// TemplateModelBlock replaces every "[key]" with its value, in order.
type TemplateModelBlock struct {
	blockID
	Values ordered.Map
}

func (*TemplateModelBlock) Type() BlockType { return TemplateModel }

func (b *TemplateModelBlock) apply(_ context.Context, _ *Executor, s *State) error {
	text := s.Text()
	for _, v := range b.Values {
		text = strings.ReplaceAll(text, "["+v.Key+"]", v.Value)
	}
	s.setText(text)
	return nil
}

type DocumentOutputBlock struct{ blockID }

func (*DocumentOutputBlock) Type() BlockType { return DocumentOutput }

func (*DocumentOutputBlock) apply(_ context.Context, e *Executor, s *State) error {
	text := s.Text()
	if s.original != nil {
		doc, err := e.converter.ToDocument(text)
		if err != nil {
			return err
		}
		s.Metadata[MetaDocxContent] = doc
		s.Metadata[MetaOutputFormat] = "docx"
	}
	s.Metadata[MetaOutputContent] = text
	return nil
}
