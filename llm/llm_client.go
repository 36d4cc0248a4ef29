package llm

import (
	"context"
)

type LLMClient interface {
	GenerateInference(
		ctx context.Context,
		messages []Message,
		callback func(chunk string) error,
		opts ...LLMOption,
	) error

	GetModel() string
}

type LLMSettings struct {
	model        string  // model name
	temperature  float64 // randomness (0.0 to 1.0)
	maxTokens    int     // maximum tokens to generate
	system       string  // system prompt
	jsonResponse bool    // ask the provider for a JSON object
}

type LLMOption func(*LLMSettings)

func defaultSettings(model string, opts ...LLMOption) LLMSettings {
	settings := LLMSettings{
		model:       model,
		temperature: 0.7,
		maxTokens:   4096,
	}

	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// Common options for all LLM providers
func WithModel(model string) LLMOption {
	return func(s *LLMSettings) {
		if model != "" {
			s.model = model
		}
	}
}

func WithTemperature(temp float64) LLMOption {
	return func(s *LLMSettings) { s.temperature = temp }
}

func WithMaxTokens(tokens int) LLMOption {
	return func(s *LLMSettings) { s.maxTokens = tokens }
}

func WithSystemPrompt(prompt string) LLMOption {
	return func(s *LLMSettings) { s.system = prompt }
}

// WithJSONResponse requests a single JSON object as the completion.
func WithJSONResponse() LLMOption {
	return func(s *LLMSettings) { s.jsonResponse = true }
}

// ResolveModel returns the model a request with opts would use on client.
func ResolveModel(client LLMClient, opts ...LLMOption) string {
	return defaultSettings(client.GetModel(), opts...).model
}

type Message struct {
	Role    string `json:"role"`    // "user", "assistant", "system"
	Content string `json:"content"` // the message content
}
