package llm

import (
	"fmt"

	"github.com/SaiNageswarS/doc-filler/appconfig"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

// ProvideClient builds the completion backend selected by llm_provider.
func ProvideClient(cfg *appconfig.AppConfig) (LLMClient, error) {
	logger.Info("Creating LLM client", zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.GPTModelName))

	switch cfg.LLMProvider {
	case appconfig.ProviderOpenAI, "":
		client, err := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.GPTModelName)
		if err != nil {
			return nil, err
		}
		client.SetBaseURL(cfg.OpenAIBaseURL)
		return client, nil
	case appconfig.ProviderOllama:
		client, err := NewOllamaClient(cfg.GPTModelName)
		if err != nil {
			return nil, err
		}
		return client, nil
	case appconfig.ProviderAnthropic:
		client, err := NewAnthropicClient(cfg.AnthropicAPIKey, cfg.GPTModelName)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
