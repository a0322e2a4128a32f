package config

import (
	"fmt"

	"github.com/klytics/voxtable/internal/i18n"
	"github.com/klytics/voxtable/internal/output"
)

// Runtime is the effective configuration of one invocation, after
// command-line flags are applied on top of the file and environment.
type Runtime struct {
	*Config
	Locale i18n.Locale
	Format output.Format
}

// Resolve loads the configuration and applies flag overrides. An empty
// lang keeps the configured locale; jsonOut forces JSON output.
func Resolve(lang string, jsonOut bool) (*Runtime, error) {
	cfg, err := Load()
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if lang == "" {
		lang = cfg.Locale
	}
	loc, err := i18n.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%w (set it with --lang or 'vtab config set locale en')", err)
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("%w (fix it with 'vtab config set output.format text')", err)
	}
	if jsonOut {
		format = output.FormatJSON
	}
	return &Runtime{Config: cfg, Locale: loc, Format: format}, nil
}
