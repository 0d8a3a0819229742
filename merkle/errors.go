package merkle

import "errors"

var (
	// ErrEmpty indicates a branch was requested for an empty hash list.
	ErrEmpty = errors.New("merkle: empty hash list")

	// ErrIndexOutOfRange indicates a leaf index past the end of the hash list.
	ErrIndexOutOfRange = errors.New("merkle: leaf index out of range")

	// ErrBranchTooDeep indicates a branch longer than a path can address.
	ErrBranchTooDeep = errors.New("merkle: branch too deep")
)
