// Package config loads runtime settings from a config file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the commands read
type Config struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Store  StoreConfig  `mapstructure:"store"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
}

// OpenAIConfig selects the embedding and chat endpoints. A non-empty
// Endpoint means Azure OpenAI, where the model names are deployment names.
type OpenAIConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Endpoint       string        `mapstructure:"endpoint"`
	APIVersion     string        `mapstructure:"api_version"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	ChatModel      string        `mapstructure:"chat_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// StoreConfig locates the vector store
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// IngestConfig controls embedding throughput and upload batching
type IngestConfig struct {
	BatchSize         int           `mapstructure:"batch_size"`
	Workers           int           `mapstructure:"workers"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	BatchPause        time.Duration `mapstructure:"batch_pause"`
}

// SearchConfig controls retrieval
type SearchConfig struct {
	TopK int `mapstructure:"top_k"`
}

// LogConfig selects level and encoder
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Environment variables bound to config keys. The first names are the ones
// existing deployments already export.
var envBindings = map[string][]string{
	"openai.api_key":         {"AZURE_OPENAI_KEY", "OPENAI_API_KEY"},
	"openai.endpoint":        {"AZURE_OPENAI_ENDPOINT"},
	"openai.api_version":     {"AZURE_OPENAI_API_VERSION"},
	"openai.embedding_model": {"OPENAI_EMBEDDING_DEPLOYMENT_NAME"},
	"openai.chat_model":      {"OPENAI_CHAT_DEPLOYMENT_NAME"},
	"store.path":             {"SCHEMARAG_STORE_PATH"},
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("openai.api_version", "2024-12-01-preview")
	v.SetDefault("openai.embedding_model", "text-embedding-3-large")
	v.SetDefault("openai.chat_model", "gpt-4.1-mini")
	v.SetDefault("openai.timeout", "60s")

	v.SetDefault("store.path", "schemarag.db")

	v.SetDefault("ingest.batch_size", 50)
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.requests_per_minute", 300)
	v.SetDefault("ingest.max_retries", 3)
	v.SetDefault("ingest.retry_backoff", "2s")
	v.SetDefault("ingest.batch_pause", "1s")

	v.SetDefault("search.top_k", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration into a new Config. configFile may be empty, in
// which case schemarag.yaml is searched in the working directory. Dotenv
// files are loaded first and never override variables already set.
func Load(configFile string) (*Config, error) {
	for _, name := range []string{".env", ".env.local"} {
		_ = godotenv.Load(name)
	}

	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("schemarag")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SCHEMARAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Azure reports whether the OpenAI settings point at an Azure resource
func (c *OpenAIConfig) Azure() bool {
	return c.Endpoint != ""
}

// Validate checks settings that every command depends on
func (c *Config) Validate() error {
	var errs []error

	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.batch_size must be positive, got %d", c.Ingest.BatchSize))
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, fmt.Errorf("ingest.workers must be positive, got %d", c.Ingest.Workers))
	}
	if c.Ingest.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("ingest.max_retries must not be negative, got %d", c.Ingest.MaxRetries))
	}
	if c.Search.TopK <= 0 {
		errs = append(errs, fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ValidateOpenAI checks the settings needed by commands that call the model
// endpoints
func (c *Config) ValidateOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return errors.New("an API key is required (AZURE_OPENAI_KEY or OPENAI_API_KEY)")
	}
	if c.OpenAI.EmbeddingModel == "" {
		return errors.New("openai.embedding_model is required (OPENAI_EMBEDDING_DEPLOYMENT_NAME)")
	}
	return nil
}
