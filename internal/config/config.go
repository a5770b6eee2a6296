// Package config layers the annotator's ambient daemon settings (log
// level/format, metrics listen address, NFQUEUE socket tuning) under the
// CLI flags that spec.md requires, using github.com/knadh/koanf/v2 the
// same way the teacher's internal/config package does: an optional YAML
// file, overridden by OPSINJECT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/packetops/opsinject/internal/ops"
)

// Settings holds every knob the daemon needs, whether it came from a
// flag, an environment variable, or the optional settings file.
type Settings struct {
	// Required by spec.md's CLI surface (§6); always set from flags, not
	// from this package's Load.
	Protocol      ops.Protocol `koanf:"-"`
	QueueNum      uint16       `koanf:"-"`
	RedirectQueue *uint16      `koanf:"-"`
	Overwrite     bool         `koanf:"-"`
	RecipePath    string       `koanf:"-"`

	// Ambient daemon settings, layered from the optional settings file.
	LogLevel    string `koanf:"loglevel"`
	LogFormat   string `koanf:"logformat"`
	MetricsAddr string `koanf:"metricsaddr"`
	MaxQueueLen uint32 `koanf:"maxqueuelen"`
}

var (
	// ErrEmptyRecipePath is returned by Validate when no recipe file was
	// given on the command line.
	ErrEmptyRecipePath = errors.New("config: recipe file path is required")
	// ErrInvalidLogLevel is returned by Validate for an unrecognized
	// log level string.
	ErrInvalidLogLevel = errors.New("config: log level must be one of debug, info, warn, error")
)

// Default returns the ambient settings used when no settings file is
// given.
func Default() Settings {
	return Settings{
		LogLevel:    "info",
		LogFormat:   "json",
		MetricsAddr: ":9464",
		MaxQueueLen: 1024,
	}
}

// Load reads the optional YAML settings file at path (if path is
// non-empty) and layers OPSINJECT_-prefixed environment variables over
// Default()'s values. It never touches the CLI-required fields
// (Protocol, QueueNum, RedirectQueue, Overwrite, RecipePath) — those
// always come from flags in cmd/opsinject.
func Load(path string) (Settings, error) {
	defaults := Default()

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"loglevel":    defaults.LogLevel,
		"logformat":   defaults.LogFormat,
		"metricsaddr": defaults.MetricsAddr,
		"maxqueuelen": defaults.MaxQueueLen,
	}, "."), nil); err != nil {
		return Settings{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Settings{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("OPSINJECT_", ".", envKeyMapper), nil); err != nil {
		return Settings{}, fmt.Errorf("config: load environment: %w", err)
	}

	out := defaults
	if err := k.Unmarshal("", &out); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

// envKeyMapper turns OPSINJECT_LOG_LEVEL into loglevel, matching the
// flat koanf tags on Settings above.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, "OPSINJECT_")
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// Validate checks the fields that must be set regardless of where they
// came from.
func (s Settings) Validate() error {
	if s.RecipePath == "" {
		return ErrEmptyRecipePath
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}
