package hashing

import "errors"

// ErrHashing indicates a structure could not be serialized for hashing.
var ErrHashing = errors.New("hashing: cannot serialize for hashing")
