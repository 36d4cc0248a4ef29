// Package blankfill asks a completion service which placeholders a document holds and what to
// put in them, then substitutes the answers into the text.
package blankfill

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/doc-filler/errs"
	"github.com/SaiNageswarS/doc-filler/llm"
	"github.com/SaiNageswarS/doc-filler/ordered"
	"github.com/SaiNageswarS/doc-filler/prompts"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"
)

type CompletionClient struct {
	llm      llm.LLMClient
	reporter CallReporter
}

func NewCompletionClient(client llm.LLMClient, reporter CallReporter) *CompletionClient {
	if reporter == nil {
		reporter = NoOpCallReporter{}
	}
	return &CompletionClient{llm: client, reporter: reporter}
}

type identifyBlanksResponse struct {
	Blanks []string `json:"blanks"`
}

type fillValuesResponse struct {
	FilledValues ordered.Map `json:"filled_values"`
}

// IdentifyBlanks asks the model for every blank in document, verbatim and in order.
func (c *CompletionClient) IdentifyBlanks(ctx context.Context, document string, opts ...llm.LLMOption) <-chan async.Result[[]string] {
	return async.Go(func() ([]string, error) {
		systemPrompt, userPrompt, err := prompts.RenderIdentifyBlanksPrompt(document)
		if err != nil {
			logger.Error("Failed to render identify prompt", zap.Error(err))
			return nil, err
		}

		raw, err := c.complete(ctx, OpIdentifyBlanks, systemPrompt, userPrompt, opts...)
		if err != nil {
			return nil, err
		}

		var response identifyBlanksResponse
		if err := json.Unmarshal([]byte(raw), &response); err != nil {
			logger.Error("Completion returned invalid JSON", zap.String("op", OpIdentifyBlanks), zap.Error(err))
			return nil, errs.Upstream(OpIdentifyBlanks, fmt.Errorf("invalid JSON in completion: %w", err))
		}

		if response.Blanks == nil {
			return []string{}, nil
		}
		logger.Info("Identified blanks", zap.Int("count", len(response.Blanks)))
		return response.Blanks, nil
	})
}

// FillValues asks the model for a value per blank. The returned map keeps the key order of the reply.
func (c *CompletionClient) FillValues(ctx context.Context, blanks []string, docContext, example string, opts ...llm.LLMOption) <-chan async.Result[ordered.Map] {
	return async.Go(func() (ordered.Map, error) {
		systemPrompt, userPrompt, err := prompts.RenderFillBlanksPrompt(blanks, docContext, example)
		if err != nil {
			logger.Error("Failed to render fill prompt", zap.Error(err))
			return nil, err
		}

		raw, err := c.complete(ctx, OpFillValues, systemPrompt, userPrompt, opts...)
		if err != nil {
			return nil, err
		}

		var response fillValuesResponse
		if err := json.Unmarshal([]byte(raw), &response); err != nil {
			logger.Error("Completion returned invalid JSON", zap.String("op", OpFillValues), zap.Error(err))
			return nil, errs.Upstream(OpFillValues, fmt.Errorf("invalid JSON in completion: %w", err))
		}

		if response.FilledValues == nil {
			return ordered.Map{}, nil
		}
		return response.FilledValues, nil
	})
}

func (c *CompletionClient) complete(ctx context.Context, op, systemPrompt, userPrompt string, opts ...llm.LLMOption) (string, error) {
	opts = append([]llm.LLMOption{llm.WithSystemPrompt(systemPrompt), llm.WithJSONResponse()}, opts...)
	model := llm.ResolveModel(c.llm, opts...)
	c.reporter.RecordCall(op, model)

	var out strings.Builder
	err := c.llm.GenerateInference(ctx,
		[]llm.Message{{Role: "user", Content: userPrompt}},
		func(chunk string) error {
			out.WriteString(chunk)
			return nil
		},
		opts...,
	)
	if err != nil {
		logger.Error("Completion request failed", zap.String("op", op), zap.String("model", model), zap.Error(err))
		return "", errs.Upstream(op, err)
	}

	return out.String(), nil
}
