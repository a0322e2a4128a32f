// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/klytics/voxtable/internal/recognizer"
	"github.com/klytics/voxtable/internal/watch"
)

// Config holds the application configuration.
type Config struct {
	Locale      string `mapstructure:"locale" json:"locale" validate:"oneof=en ar auto"`
	Interpreter struct {
		LooseAdd bool `mapstructure:"loose_add" json:"loose_add"`
	} `mapstructure:"interpreter" json:"interpreter"`
	Recognizer struct {
		MaxRetries   int  `mapstructure:"max_retries" json:"max_retries" validate:"gte=0,lte=10"`
		RetryDelayMs int  `mapstructure:"retry_delay_ms" json:"retry_delay_ms" validate:"gte=0,lte=60000"`
		AutoRestart  bool `mapstructure:"auto_restart" json:"auto_restart"`
	} `mapstructure:"recognizer" json:"recognizer"`
	Watch struct {
		Pattern    string `mapstructure:"pattern" json:"pattern" validate:"required"`
		DebounceMs int    `mapstructure:"debounce_ms" json:"debounce_ms" validate:"gte=0,lte=60000"`
	} `mapstructure:"watch" json:"watch"`
	Output struct {
		Format     string `mapstructure:"format" json:"format" validate:"oneof=text json yaml"`
		Color      bool   `mapstructure:"color" json:"color"`
		ExportPath string `mapstructure:"export_path" json:"export_path"`
	} `mapstructure:"output" json:"output"`
}

var defaults = map[string]interface{}{
	"locale":                    "en",
	"interpreter.loose_add":     false,
	"recognizer.max_retries":    2,
	"recognizer.retry_delay_ms": 1500,
	"recognizer.auto_restart":   true,
	"watch.pattern":             "*.txt",
	"watch.debounce_ms":         500,
	"output.format":             "text",
	"output.color":              true,
	"output.export_path":        "table.csv",
}

// Load reads the configuration from ~/.vtab/config.yaml and environment
// variables (VTAB_LOCALE, VTAB_RECOGNIZER_MAX_RETRIES, ...).
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir())

	setDefaults()

	viper.SetEnvPrefix("VTAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// RecognizerConfig converts the recognizer settings.
func (c *Config) RecognizerConfig() recognizer.Config {
	return recognizer.Config{
		MaxRetries:  c.Recognizer.MaxRetries,
		RetryDelay:  time.Duration(c.Recognizer.RetryDelayMs) * time.Millisecond,
		AutoRestart: c.Recognizer.AutoRestart,
	}
}

// WatchConfig converts the watch settings for dir.
func (c *Config) WatchConfig(dir string) watch.Config {
	return watch.Config{
		Directory: dir,
		Pattern:   c.Watch.Pattern,
		Debounce:  time.Duration(c.Watch.DebounceMs) * time.Millisecond,
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vtab"
	}
	return filepath.Join(home, ".vtab")
}
