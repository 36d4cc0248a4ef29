package blankfill

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/doc-filler/blanks"
	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/SaiNageswarS/doc-filler/llm"
	"github.com/SaiNageswarS/doc-filler/ordered"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/linq"
	"go.uber.org/zap"
)

type Request struct {
	Text    string
	Context string
	Example string
	// BatchSize is validated and logged; blanks are always filled in one request.
	BatchSize int
	// Model overrides the client's model when set.
	Model string
}

type Result struct {
	Text     string
	Blanks   []string
	Fills    ordered.Map
	APICalls int
}

type Filler struct {
	client *CompletionClient
}

func NewFiller(client *CompletionClient) *Filler {
	return &Filler{client: client}
}

// FillBlanks identifies the blanks of req.Text, asks for their values and substitutes them.
// Text without any bracket or underscore placeholder is returned as is without a completion call.
func (f *Filler) FillBlanks(ctx context.Context, req Request) (*Result, error) {
	if req.BatchSize < 0 {
		return nil, errs.Validation("batch_size must not be negative, got %d", req.BatchSize)
	}

	logger.Info("Starting blank fill",
		zap.Int("batchSize", req.BatchSize),
		zap.Int("documentLength", len(req.Text)),
		zap.String("model", req.Model))

	result := &Result{Text: req.Text, Blanks: []string{}, Fills: ordered.Map{}}
	if !blanks.Contains(req.Text) {
		logger.Info("No placeholders in document")
		return result, nil
	}

	opts := []llm.LLMOption{llm.WithModel(req.Model)}

	identified, err := async.Await(f.client.IdentifyBlanks(ctx, req.Text, opts...))
	if err != nil {
		return nil, err
	}
	result.APICalls++

	unique, err := linq.Pipe2(
		linq.FromSlice(ctx, identified),
		linq.Distinct(func(b string) string { return b }),
		linq.ToSlice[string](),
	)
	if err != nil {
		return nil, err
	}
	if len(unique) == 0 {
		logger.Info("No blanks identified")
		return result, nil
	}
	result.Blanks = unique

	fills, err := async.Await(f.client.FillValues(ctx, unique, req.Context, req.Example, opts...))
	if err != nil {
		return nil, err
	}
	result.APICalls++
	result.Fills = fills
	result.Text = ApplyFills(req.Text, fills)

	logger.Info("Blank fill complete",
		zap.Int("blanks", len(unique)),
		zap.Int("fills", len(fills)),
		zap.Int("apiCalls", result.APICalls),
		zap.Int("documentLength", len(result.Text)))

	return result, nil
}

// ApplyFills replaces every occurrence of each key with its value, in map order.
// Later replacements operate on the output of earlier ones. Empty keys are skipped.
func ApplyFills(text string, fills ordered.Map) string {
	for _, fill := range fills {
		if fill.Key == "" {
			continue
		}
		text = strings.ReplaceAll(text, fill.Key, fill.Value)
	}
	return text
}
