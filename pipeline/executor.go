package pipeline

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/doc-filler/blankfill"
	"github.com/SaiNageswarS/doc-filler/docconv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"go.uber.org/zap"
)

// Metadata keys reported per file.
const (
	MetaFilename      = "filename"
	MetaOriginalSize  = "original_size"
	MetaOutputFormat  = "output_format"
	MetaInputType     = "input_type"
	MetaBlanksFound   = "blanks_found"
	MetaDocxContent   = "docx_content"
	MetaOutputContent = "output_content"
	MetaAPICalls      = "api_calls"
)

type DocumentConverter interface {
	ToMarkdown(data []byte) (string, error)
	ToDocument(markdown string) ([]byte, error)
}

type BlankFiller interface {
	FillBlanks(ctx context.Context, req blankfill.Request) (*blankfill.Result, error)
}

type Executor struct {
	converter         DocumentConverter
	filler            BlankFiller
	ignoreBlockModels bool
}

type ExecutorOption func(*Executor)

// IgnoreBlockModels makes GPT_MODEL blocks use the filler's default model. The editor only
// offers OpenAI model names, which other providers do not serve.
func IgnoreBlockModels() ExecutorOption {
	return func(e *Executor) { e.ignoreBlockModels = true }
}

func NewExecutor(converter DocumentConverter, filler BlankFiller, opts ...ExecutorOption) *Executor {
	e := &Executor{converter: converter, filler: filler}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type FileInput struct {
	Name string
	Data []byte
}

// FileResult is the outcome for one uploaded file. []byte metadata values encode as base64 in JSON.
type FileResult struct {
	Filename string         `json:"filename"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Error    string         `json:"error,omitempty"`
}

// State is the content travelling through the blocks of one file.
// Content stays binary until a block needs text.
type State struct {
	content  string
	binary   bool
	original []byte
	Metadata map[string]any
}

// decode turns binary content into text, dropping invalid UTF-8.
func (s *State) decode() {
	if s.binary {
		s.content = strings.ToValidUTF8(s.content, "")
		s.binary = false
	}
}

func (s *State) Text() string {
	s.decode()
	return s.content
}

func (s *State) setText(text string) {
	s.content = text
	s.binary = false
}

// Run passes one file through every block in order. Documents are converted to markdown on
// entry and the original bytes kept for DOCUMENT_OUTPUT. The first failing block aborts the file.
func (e *Executor) Run(ctx context.Context, p *Pipeline, file FileInput) (*FileResult, error) {
	state := &State{
		content: string(file.Data),
		binary:  true,
		Metadata: map[string]any{
			MetaFilename:     file.Name,
			MetaOriginalSize: len(file.Data),
			MetaOutputFormat: "markdown",
		},
	}

	if docconv.IsDocument(file.Name) {
		markdown, err := e.converter.ToMarkdown(file.Data)
		if err != nil {
			logger.Error("Failed to convert document", zap.String("filename", file.Name), zap.Error(err))
			return nil, err
		}
		state.original = file.Data
		state.setText(markdown)
		logger.Info("Converted document to markdown", zap.String("filename", file.Name), zap.Int("length", len(markdown)))
	}

	for _, block := range p.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := block.apply(ctx, e, state); err != nil {
			logger.Error("Pipeline block failed",
				zap.String("filename", file.Name),
				zap.String("block", block.ID()),
				zap.String("type", string(block.Type())),
				zap.Error(err))
			return nil, err
		}
	}

	return &FileResult{
		Filename: file.Name,
		Content:  state.Text(),
		Metadata: state.Metadata,
	}, nil
}

// RunAll runs files one after another. A failing file yields a result carrying the error
// and does not stop the others.
func (e *Executor) RunAll(ctx context.Context, p *Pipeline, files []FileInput) ([]*FileResult, error) {
	return linq.Pipe2(
		linq.FromSlice(ctx, files),

		linq.Select(func(file FileInput) *FileResult {
			result, err := e.Run(ctx, p, file)
			if err != nil {
				return &FileResult{
					Filename: file.Name,
					Metadata: map[string]any{
						MetaFilename:     file.Name,
						MetaOriginalSize: len(file.Data),
					},
					Error: err.Error(),
				}
			}
			return result
		}),

		linq.ToSlice[*FileResult](),
	)
}
