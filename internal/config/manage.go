package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	cfg, err := Load()
	if err != nil {
		return []ConfigIssue{{
			Key:      "config",
			Severity: "error",
			Message:  fmt.Sprintf("could not parse configuration: %v", err),
			Fix:      "vtab config reset",
		}}
	}

	var issues []ConfigIssue
	var verrs validator.ValidationErrors
	if err := validate.Struct(cfg); err != nil {
		if !errors.As(err, &verrs) {
			return []ConfigIssue{{Key: "config", Severity: "error", Message: err.Error()}}
		}
		for _, fe := range verrs {
			key := fe.Namespace()
			if i := strings.Index(key, "."); i >= 0 {
				key = key[i+1:]
			}
			issues = append(issues, ConfigIssue{
				Key:      key,
				Severity: "error",
				Message:  fmt.Sprintf("%s is %v but must satisfy %s", key, fe.Value(), rule(fe)),
				Fix:      fmt.Sprintf("vtab config set %s <value>", key),
			})
		}
	}

	if cfg.Interpreter.LooseAdd {
		issues = append(issues, ConfigIssue{
			Key:      "interpreter.loose_add",
			Severity: "warning",
			Message:  "loose \"add ...\" matching is on; ordinary speech starting with \"add\" becomes a row",
			Fix:      "vtab config set interpreter.loose_add false",
		})
	}
	if cfg.Recognizer.MaxRetries == 0 {
		issues = append(issues, ConfigIssue{
			Key:      "recognizer.max_retries",
			Severity: "info",
			Message:  "network errors stop listening immediately",
		})
	}
	if len(issues) == 0 {
		issues = append(issues, ConfigIssue{Key: "config", Severity: "info", Message: "Configuration is valid"})
	}
	return issues
}

func rule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Set validates value for key and saves it to disk. A value that would make
// the configuration invalid is rejected and the previous value kept.
func Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	prev := viper.Get(key)
	viper.Set(key, value)
	for _, issue := range Validate() {
		if issue.Severity == "error" && (issue.Key == key || issue.Key == "config") {
			viper.Set(key, prev)
			return fmt.Errorf("invalid value %q for %s: %s", value, key, issue.Message)
		}
	}
	return SaveConfig()
}

// Where a setting's value came from.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
)

// Setting is one configuration key with its effective value.
type Setting struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
	Default string `json:"default" yaml:"default"`
	Source  string `json:"source" yaml:"source"`
	Env     string `json:"env" yaml:"env"`
}

// Lookup resolves key. It reports false for unknown keys.
func Lookup(key string) (Setting, bool) {
	def, ok := defaults[key]
	if !ok {
		return Setting{}, false
	}
	s := Setting{
		Key:     key,
		Value:   viper.GetString(key),
		Default: fmt.Sprint(def),
		Source:  SourceDefault,
		Env:     EnvName(key),
	}
	switch {
	case os.Getenv(s.Env) != "":
		s.Source = SourceEnv
	case viper.InConfig(key), s.Value != s.Default:
		s.Source = SourceFile
	}
	return s, true
}

// Settings resolves every known key in Keys order.
func Settings() []Setting {
	return lo.Map(Keys(), func(key string, _ int) Setting {
		s, _ := Lookup(key)
		return s
	})
}

// EnvName is the environment variable that overrides key.
func EnvName(key string) string {
	return "VTAB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys returns every known config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)
	for _, k := range Keys() {
		env[EnvName(k)] = viper.GetString(k)
	}
	return env
}

// ResetConfig deletes the config file and restores defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	return nil
}

// SaveConfig writes the current config to ~/.vtab/config.yaml.
func SaveConfig() error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}
