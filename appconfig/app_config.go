package appconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/SaiNageswarS/go-api-boot/config"
	"github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"

	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY" ini:"openai_api_key"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL" ini:"openai_base_url"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" ini:"anthropic_api_key"`
	GPTModelName    string `env:"GPT_MODEL_NAME" ini:"gpt_model_name"`
	LLMProvider     string `env:"LLM_PROVIDER" ini:"llm_provider"`

	HTTPPort       string `env:"HTTP_PORT" ini:"http_port"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" ini:"allowed_origins"`
	MaxUploadMB    int    `env:"MAX_UPLOAD_MB" ini:"max_upload_mb"`

	PipelineStore string `env:"PIPELINE_STORE" ini:"pipeline_store"`
	PipelineDir   string `env:"PIPELINE_DIR" ini:"pipeline_dir"`
	PipelineDB    string `env:"PIPELINE_DB" ini:"pipeline_db"`
}

// ApplyDefaults fills keys left unset by both config.ini and the environment.
func (c *AppConfig) ApplyDefaults() {
	if c.GPTModelName == "" {
		c.GPTModelName = "gpt-4o-mini"
	}
	if c.LLMProvider == "" {
		c.LLMProvider = ProviderOpenAI
	}
	if c.HTTPPort == "" {
		c.HTTPPort = ":8000"
	}
	if c.AllowedOrigins == "" {
		c.AllowedOrigins = "http://localhost:3000"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 32
	}
	if c.PipelineStore == "" {
		c.PipelineStore = StoreFile
	}
	if c.PipelineDir == "" {
		c.PipelineDir = "saved_pipelines"
	}
	if c.PipelineDB == "" {
		c.PipelineDB = "saved_pipelines/pipelines.db"
	}
}

func (c *AppConfig) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}

	switch c.PipelineStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown pipeline_store %q", c.PipelineStore)
	}
	return nil
}

// Origins splits the comma separated allowed_origins list.
func (c *AppConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

var (
	loadOnce  sync.Once
	loadedCfg *AppConfig
	loadErr   error
)

// Load reads path once per process; later calls return the cached result.
func Load(path string) (*AppConfig, error) {
	loadOnce.Do(func() {
		loadedCfg, loadErr = load(path)
	})
	return loadedCfg, loadErr
}

// load maps the ENV section of path, then lets environment variables override it.
func load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := config.LoadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
