package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Workbook  WorkbookConfig  `yaml:"workbook" mapstructure:"workbook"`
	HubSpot   HubSpotConfig   `yaml:"hubspot" mapstructure:"hubspot"`
	Apollo    ApolloConfig    `yaml:"apollo" mapstructure:"apollo"`
	BigQuery  BigQueryConfig  `yaml:"bigquery" mapstructure:"bigquery"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Catalog   CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// WorkbookConfig configures the tabular store backend.
type WorkbookConfig struct {
	// Driver is "xlsx" or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
	// SecretsPath overrides the default per-operator credentials file
	// location (~/.config/prospect-cli/credentials.yaml).
	SecretsPath string `yaml:"secrets_path" mapstructure:"secrets_path"`
}

// HubSpotConfig holds CRM API settings.
type HubSpotConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// MarkerProperty is the company property that flags accounts for
	// prospecting.
	MarkerProperty string  `yaml:"marker_property" mapstructure:"marker_property"`
	PageSize       int     `yaml:"page_size" mapstructure:"page_size"`
	RateLimit      float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ApolloConfig holds people-search API settings.
type ApolloConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// AllowedStages is the pipeline-stage allow-list for discovered
	// contacts. Empty means every stage is eligible.
	AllowedStages      []string `yaml:"allowed_stages" mapstructure:"allowed_stages"`
	MaxPerAccount      int      `yaml:"max_per_account" mapstructure:"max_per_account"`
	RateLimit          float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	SubjectFieldID     string   `yaml:"subject_field_id" mapstructure:"subject_field_id"`
	BodyFieldID        string   `yaml:"body_field_id" mapstructure:"body_field_id"`
	SequenceID         string   `yaml:"sequence_id" mapstructure:"sequence_id"`
	DefaultMailboxID   string   `yaml:"default_mailbox_id" mapstructure:"default_mailbox_id"`
	DefaultSenderName  string   `yaml:"default_sender_name" mapstructure:"default_sender_name"`
	PlaceholderAddress string   `yaml:"placeholder_address" mapstructure:"placeholder_address"`
}

// BigQueryConfig configures the warehouse enrichment queries.
type BigQueryConfig struct {
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	PollInterval int    `yaml:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	// MaxPolls caps the status poll loop. 0 polls until the job reports
	// DONE, matching the original unbounded behavior.
	MaxPolls int `yaml:"max_polls" mapstructure:"max_polls"`
}

// AnthropicConfig holds generation model settings.
type AnthropicConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CatalogConfig configures the content-library rebuild.
type CatalogConfig struct {
	IndexURLs []string `yaml:"index_urls" mapstructure:"index_urls"`
	SiteRoot  string   `yaml:"site_root" mapstructure:"site_root"`
	// FetchDelayMs is the pause between post fetches.
	FetchDelayMs int `yaml:"fetch_delay_ms" mapstructure:"fetch_delay_ms"`
}

// ServerConfig configures the step trigger server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("workbook.driver", "xlsx")
	v.SetDefault("workbook.path", "prospecting.xlsx")
	v.SetDefault("hubspot.base_url", "https://api.hubapi.com")
	v.SetDefault("hubspot.marker_property", "prospecting_selected")
	v.SetDefault("hubspot.page_size", 100)
	v.SetDefault("hubspot.rate_limit", 4)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/v1")
	v.SetDefault("apollo.max_per_account", 5)
	v.SetDefault("apollo.rate_limit", 2)
	v.SetDefault("apollo.placeholder_address", "email_not_unlocked@domain.com")
	v.SetDefault("bigquery.base_url", "https://bigquery.googleapis.com/bigquery/v2")
	v.SetDefault("bigquery.poll_interval_ms", 500)
	v.SetDefault("bigquery.max_polls", 240)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("catalog.fetch_delay_ms", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
