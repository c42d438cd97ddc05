package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Settings are the storefront's runtime settings.
type Settings struct {
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	Metrics bool
	Tracing bool

	MaxDepth    int `validate:"gte=1,lte=1024"`
	StrictNames bool
	CatalogPath string // optional YAML catalog overriding the built-in one

	Journal     bool
	JournalPath string // SQLite file; empty keeps the journal in memory
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		LogLevel:    "info",
		LogFormat:   "text",
		MaxDepth:    32,
		StrictNames: true,
	}
}

// SettingsFrom reads settings from cfg, falling back to Defaults:
//
//	log:
//	  level: debug        # debug, info, warn, error
//	  format: json        # text, json
//	broker:
//	  max_depth: 16
//	  strict_names: true
//	  catalog: events.yaml
//	observability:
//	  metrics: true
//	  tracing: true
//	journal:
//	  enabled: true
//	  path: journal.db
func SettingsFrom(cfg Config) (Settings, error) {
	d := Defaults()
	s := Settings{
		LogLevel:    strings.ToLower(cfg.String("log.level", d.LogLevel)),
		LogFormat:   strings.ToLower(cfg.String("log.format", d.LogFormat)),
		Metrics:     cfg.Bool("observability.metrics", d.Metrics),
		Tracing:     cfg.Bool("observability.tracing", d.Tracing),
		MaxDepth:    cfg.Int("broker.max_depth", d.MaxDepth),
		StrictNames: cfg.Bool("broker.strict_names", d.StrictNames),
		CatalogPath: cfg.String("broker.catalog", d.CatalogPath),
		Journal:     cfg.Bool("journal.enabled", d.Journal),
		JournalPath: cfg.String("journal.path", d.JournalPath),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads settings from a YAML or JSON file. An empty path yields
// Defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		return Defaults(), nil
	}
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	return SettingsFrom(cfg)
}

var validate = validator.New()

// Validate checks value ranges.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (s Settings) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Logger builds a logger writing to w in LogFormat at LogLevel.
func (s Settings) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.Level()}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
