package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatewayplanning/plancheck/internal/delta"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Gate       GateConfig       `yaml:"gate" mapstructure:"gate"`
	Delta      delta.Weights    `yaml:"delta" mapstructure:"delta"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// CatalogConfig locates the rule catalog file.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ValidationConfig holds validator thresholds.
type ValidationConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// GateConfig holds LLM gate thresholds.
type GateConfig struct {
	CoverageThreshold float64 `yaml:"coverage_threshold" mapstructure:"coverage_threshold"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// LLMConfig configures the resolution boundary.
type LLMConfig struct {
	MaxTokens         int64 `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs       int   `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts       int   `yaml:"max_attempts" mapstructure:"max_attempts"`
	RequestsPerMinute int   `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// BatchConfig configures batch validation.
type BatchConfig struct {
	MaxConcurrentSubmissions int `yaml:"max_concurrent_submissions" mapstructure:"max_concurrent_submissions"`
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
	v.SetEnvPrefix("PLANCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "plancheck.db")
	v.SetDefault("catalog.path", "catalog.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrent_submissions", 5)
	v.SetDefault("validation.confidence_threshold", 0.7)
	v.SetDefault("gate.coverage_threshold", 0.2)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.requests_per_minute", 30)

	w := delta.DefaultWeights()
	v.SetDefault("delta.field", w.Field)
	v.SetDefault("delta.field_default", w.FieldDefault)
	v.SetDefault("delta.doc_replaced", w.DocReplaced)
	v.SetDefault("delta.doc_added", w.DocAdded)
	v.SetDefault("delta.doc_removed", w.DocRemoved)
	v.SetDefault("delta.spatial", w.Spatial)
	v.SetDefault("delta.spatial_epsilon", w.SpatialEpsilon)
	v.SetDefault("delta.threshold", w.Threshold)

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
