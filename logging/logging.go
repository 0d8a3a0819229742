// Package logging builds the zerolog loggers used by the command line tool
// and handed to library components through their options.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel maps a level name to a zerolog level. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: %w", err)
	}
	return l, nil
}

// New returns a JSON logger writing to w with a service field and timestamps.
func New(service, level string, w io.Writer) (zerolog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return zerolog.New(w).Level(l).With().
		Timestamp().
		Str("service", service).
		Logger(), nil
}

// NewConsole returns a human-readable logger writing to w.
func NewConsole(service, level string, w io.Writer) (zerolog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
	output.FormatTimestamp = func(i interface{}) string {
		parsed, err := time.Parse(time.RFC3339, fmt.Sprint(i))
		if err != nil {
			return fmt.Sprint(i)
		}
		return parsed.Format("15:04:05")
	}
	output.FormatLevel = func(i interface{}) string {
		return fmt.Sprintf("| %s|", strings.ToUpper(fmt.Sprintf("%-6s", i)))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-6s| %s", service, i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	return zerolog.New(output).Level(l).With().Timestamp().Logger(), nil
}

// OpenFile opens path for appending log lines, creating parent
// directories as needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("logging: create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	return f, nil
}
