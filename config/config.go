// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads the per-coin settings a pool needs to drive the
// library: the fork profile of the coin, the merge-mined child profile,
// accepted address prefixes and the template cache.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	configFileName   = "config"
	templateFileName = "templates.db"
)

// Config holds the settings of one coin.
type Config struct {
	DataDir string

	// Profile is the fork profile name of the coin.
	Profile string

	// ChildProfile is the profile of a merge-mined child chain; empty when
	// the coin is not merge mined.
	ChildProfile string

	AddressPrefix    uint64
	IntegratedPrefix uint64

	// TemplateTTL is how long issued block templates are kept. Zero keeps
	// them until deleted.
	TemplateTTL time.Duration

	LogLevel string
	LogFile  string
}

// DefaultConfig returns a Config for a Monero-style coin.
func DefaultConfig() Config {
	return Config{
		DataDir:          DefaultDataDir(),
		Profile:          "cryptonote",
		AddressPrefix:    18,
		IntegratedPrefix: 19,
		TemplateTTL:      10 * time.Minute,
		LogLevel:         "info",
	}
}

// DefaultDataDir returns ~/.cnutil, or .cnutil in the working directory
// when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cnutil"
	}
	return filepath.Join(home, ".cnutil")
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// TemplateDBPath returns the template database path inside dataDir.
func TemplateDBPath(dataDir string) string {
	return filepath.Join(dataDir, templateFileName)
}

// LoadConfig reads a key = value file over DefaultConfig. Keys are case
// insensitive and unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfigLine, err)
	}

	for key, value := range values {
		if err := apply(&cfg, strings.ToLower(key), value); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func apply(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "datadir":
		cfg.DataDir = value
	case "profile":
		cfg.Profile = value
	case "childprofile":
		cfg.ChildProfile = value
	case "addressprefix":
		cfg.AddressPrefix, err = strconv.ParseUint(value, 10, 64)
	case "integratedprefix":
		cfg.IntegratedPrefix, err = strconv.ParseUint(value, 10, 64)
	case "templatettl":
		cfg.TemplateTTL, err = time.ParseDuration(value)
	case "loglevel":
		cfg.LogLevel = value
	case "logfile":
		cfg.LogFile = value
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfigValue, key, err)
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg Config) error {
	body, err := godotenv.Marshal(map[string]string{
		"datadir":          cfg.DataDir,
		"profile":          cfg.Profile,
		"childprofile":     cfg.ChildProfile,
		"addressprefix":    strconv.FormatUint(cfg.AddressPrefix, 10),
		"integratedprefix": strconv.FormatUint(cfg.IntegratedPrefix, 10),
		"templatettl":      cfg.TemplateTTL.String(),
		"loglevel":         cfg.LogLevel,
		"logfile":          cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	content := "# cnutil configuration\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
