package cnutil

import "errors"

var (
	// ErrInvalidNonceSize indicates a nonce of the wrong width for the profile.
	ErrInvalidNonceSize = errors.New("cnutil: invalid nonce size")

	// ErrInvalidCycle indicates a cuckoo cycle of the wrong length for the profile.
	ErrInvalidCycle = errors.New("cnutil: invalid cycle")
)
