package fork

import "errors"

var (
	// ErrUnknownProfile indicates the blob type id or profile name is not in the table.
	ErrUnknownProfile = errors.New("fork: unknown profile")
)
