// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, err := fork.ByName(cfg.Profile); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}

	if cfg.ChildProfile != "" {
		p, err := fork.ByName(cfg.ChildProfile)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidChildProfile, err)
		}
		if !p.Merged {
			return fmt.Errorf("%w: %s", ErrInvalidChildProfile, p)
		}
	}

	if cfg.AddressPrefix == cfg.IntegratedPrefix {
		return ErrInvalidPrefix
	}

	if cfg.TemplateTTL < 0 {
		return ErrInvalidTemplateTTL
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	return nil
}
