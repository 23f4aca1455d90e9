// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
)

// MaxPayloadLog bounds how much of a request body is copied into a log entry.
const MaxPayloadLog = 4000

// New returns a logrus logger writing to stdout with the configured level
// and format ("json" or "text").
func New(cfg config.LoggingConfig) (*logrus.Logger, error) {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	return logger, nil
}

// Truncate shortens body to MaxPayloadLog bytes for logging.
func Truncate(body []byte) string {
	if len(body) <= MaxPayloadLog {
		return string(body)
	}
	return string(body[:MaxPayloadLog]) + "...(truncated)"
}
