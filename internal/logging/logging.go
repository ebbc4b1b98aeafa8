// Package logging builds the logrus loggers shared by the CLI and analyzers.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Format selects the log line encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// DefaultLevel is used when no level is given.
const DefaultLevel = "warn"

// New builds a logger writing to stderr at the given level ("debug", "info",
// "warn", "error") and format ("text" or "json").
func New(level, format string) (*logrus.Logger, error) {
	return NewTo(os.Stderr, level, format)
}

// NewTo is New with an explicit writer.
func NewTo(w io.Writer, level, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	if level == "" {
		level = DefaultLevel
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case FormatText, "":
		log.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log, nil
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
