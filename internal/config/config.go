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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Uploads  UploadsConfig  `yaml:"uploads" mapstructure:"uploads"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-log backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	Path        string     `yaml:"path" mapstructure:"path"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional Postgres connection pool tuning.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// OutputConfig configures where generated documents land.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// UploadsConfig configures where the server keeps uploaded spec files.
type UploadsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// PipelineConfig configures run behavior.
type PipelineConfig struct {
	// Validation is "lenient" (skip bad rows) or "strict" (abort the run).
	Validation string `yaml:"validation" mapstructure:"validation"`
}

// Strict reports whether a run aborts on the first validation error.
func (c PipelineConfig) Strict() bool {
	return c.Validation == "strict"
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB        int64    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path searches
// the working directory for autodoc.yaml; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("autodoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("AUTODOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "csv")
	v.SetDefault("store.path", "report_log.csv")
	v.SetDefault("store.database_url", "")
	v.SetDefault("output.dir", "generated_reports")
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("pipeline.validation", "lenient")
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.rate_limit_per_minute", 30)
	v.SetDefault("server.cors_origins", []string{"*"})
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
