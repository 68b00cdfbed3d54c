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
	Quay    QuayConfig    `yaml:"quay" mapstructure:"quay"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Growth  GrowthConfig  `yaml:"growth" mapstructure:"growth"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// QuayConfig holds Quay API credentials and client settings.
type QuayConfig struct {
	Token             string  `yaml:"token" mapstructure:"token"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	PageSize          int     `yaml:"page_size" mapstructure:"page_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// FetchConfig configures the usage-log fetch command.
type FetchConfig struct {
	Repository string `yaml:"repository" mapstructure:"repository"`
	StartTime  string `yaml:"start_time" mapstructure:"start_time"`
	EndTime    string `yaml:"end_time" mapstructure:"end_time"`
	OutputDir  string `yaml:"output_dir" mapstructure:"output_dir"`
}

// GrowthConfig configures the aggregated growth tracking command.
type GrowthConfig struct {
	Repositories []string `yaml:"repositories" mapstructure:"repositories"`
	DataFile     string   `yaml:"data_file" mapstructure:"data_file"`
	SummaryFile  string   `yaml:"summary_file" mapstructure:"summary_file"`
	Days         int      `yaml:"days" mapstructure:"days"`
}

// HistoryConfig configures the local fetch-run history database.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("QUAYSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original tooling used QUAY_API_TOKEN; keep honoring it.
	_ = v.BindEnv("quay.token", "QUAYSTATS_QUAY_TOKEN", "QUAY_API_TOKEN")

	// Defaults
	v.SetDefault("quay.base_url", "https://quay.io/api/v1")
	v.SetDefault("quay.page_size", 100)
	v.SetDefault("quay.requests_per_second", 2.0)
	v.SetDefault("fetch.repository", "fedora/fedora-bootc")
	v.SetDefault("fetch.start_time", "30d")
	v.SetDefault("fetch.output_dir", ".")
	v.SetDefault("growth.repositories", []string{"fedora/fedora-bootc", "fedora/fedora-coreos"})
	v.SetDefault("growth.data_file", "quay_growth_data.csv")
	v.SetDefault("growth.summary_file", "monthly_growth_summary.json")
	v.SetDefault("growth.days", 7)
	v.SetDefault("history.path", "quaystats.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// RequireToken returns the configured API token or a descriptive error when
// it is unset. Commands that talk to the Quay API call this up front.
func (c *Config) RequireToken() (string, error) {
	if c.Quay.Token == "" {
		return "", eris.New("config: Quay API token not set (set QUAY_API_TOKEN or quay.token in config.yaml)")
	}
	return c.Quay.Token, nil
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
