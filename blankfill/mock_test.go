package blankfill

import (
	"context"
	"errors"

	"github.com/SaiNageswarS/doc-filler/llm"
)

type testLLMClient struct {
	model        string
	responses    []string
	shouldError  bool
	errorMessage string
	callCount    int
	messages     [][]llm.Message
	models       []string
}

func (m *testLLMClient) GenerateInference(
	ctx context.Context,
	messages []llm.Message,
	callback func(chunk string) error,
	opts ...llm.LLMOption,
) error {
	m.messages = append(m.messages, messages)
	m.models = append(m.models, llm.ResolveModel(m, opts...))

	if m.shouldError {
		m.callCount++
		return errors.New(m.errorMessage)
	}

	response := ""
	if m.callCount < len(m.responses) {
		response = m.responses[m.callCount]
	}
	m.callCount++

	return callback(response)
}

func (m *testLLMClient) GetModel() string {
	return m.model
}
