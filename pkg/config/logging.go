package config

import (
	"fmt"
	"strings"

	"github.com/pion/logging"
)

// ParseLevel parses a log level name, case-insensitively.
func ParseLevel(name string) (logging.LogLevel, error) {
	switch strings.ToLower(name) {
	case "disable", "disabled", "off":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn", "warning":
		return logging.LogLevelWarn, nil
	case "info", "":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}
}

// LoggerFactory builds a logger factory from the configured levels.
// PION_LOG_* environment variables are applied first and the file wins.
func (l LoggingConfig) LoggerFactory() (*logging.DefaultLoggerFactory, error) {
	f := logging.NewDefaultLoggerFactory()

	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	f.DefaultLogLevel = level

	for scope, name := range l.Scopes {
		level, err := ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", scope, err)
		}
		f.ScopeLevels[scope] = level
	}
	return f, nil
}
