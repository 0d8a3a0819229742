package pow

import "errors"

var (
	// ErrNoDigester indicates no digester is registered for a profile.
	ErrNoDigester = errors.New("pow: no digester registered")

	// ErrNilDigester indicates an attempt to register a nil digester.
	ErrNilDigester = errors.New("pow: nil digester")
)
