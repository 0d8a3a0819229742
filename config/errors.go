// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidProfile indicates the fork profile name is not recognized.
	ErrInvalidProfile = errors.New("config: invalid fork profile")

	// ErrInvalidChildProfile indicates the merge-mined child profile is unknown or not a merged layout.
	ErrInvalidChildProfile = errors.New("config: invalid child profile (must be a merged profile such as \"forknote2\")")

	// ErrInvalidPrefix indicates the standard and integrated address prefixes collide.
	ErrInvalidPrefix = errors.New("config: address and integrated address prefixes must differ")

	// ErrInvalidTemplateTTL indicates a negative template lifetime.
	ErrInvalidTemplateTTL = errors.New("config: template TTL must not be negative")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidConfigValue indicates a value that cannot be parsed for its key.
	ErrInvalidConfigValue = errors.New("config: invalid configuration value")
)
