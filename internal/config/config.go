// Package config loads and validates reconciler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Matching MatchingConfig `mapstructure:"matching"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// InputConfig locates the two tabular inputs.
type InputConfig struct {
	Targets    string `mapstructure:"targets"`
	References string `mapstructure:"references"`
}

// OutputConfig controls where and under what prefixes outputs are written.
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`
	LogDir       string `mapstructure:"log_dir"`
	CleanPrefix  string `mapstructure:"clean_prefix"`
	ResultPrefix string `mapstructure:"result_prefix"`
}

// FetchConfig governs the worker pool and HTTP client behavior.
type FetchConfig struct {
	Workers        int           `mapstructure:"workers"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	PerHostDelay   time.Duration `mapstructure:"per_host_delay"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// ExtractConfig selects the extraction strategy set.
type ExtractConfig struct {
	Mode string `mapstructure:"mode"`
}

// MatchingConfig tunes document-number matching.
type MatchingConfig struct {
	Tolerance int64 `mapstructure:"tolerance"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.targets", "inputs/qr_links.csv")
	v.SetDefault("input.references", "inputs/comparar.csv")
	v.SetDefault("output.dir", "outputs")
	v.SetDefault("output.log_dir", "logs")
	v.SetDefault("output.clean_prefix", "planilha_feita")
	v.SetDefault("output.result_prefix", "resultados")
	v.SetDefault("fetch.workers", 6)
	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.per_host_delay", "500ms")
	v.SetDefault("fetch.user_agent", "AutoCheckRH/1.0")
	v.SetDefault("extract.mode", "permissive")
	v.SetDefault("matching.tolerance", 5)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Fetch.Workers <= 0 {
		return fmt.Errorf("fetch.workers must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.PerHostDelay < 0 {
		return fmt.Errorf("fetch.per_host_delay must be >= 0")
	}
	if c.Fetch.UserAgent == "" {
		return fmt.Errorf("fetch.user_agent must be set")
	}
	if c.Extract.Mode != "permissive" && c.Extract.Mode != "labelled" {
		return fmt.Errorf("extract.mode must be permissive or labelled")
	}
	if c.Matching.Tolerance < 0 {
		return fmt.Errorf("matching.tolerance must be >= 0")
	}
	if c.Output.Dir == "" || c.Output.LogDir == "" {
		return fmt.Errorf("output.dir and output.log_dir must be set")
	}
	return nil
}

// Timeout converts the configured fetch timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}
