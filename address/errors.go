package address

import "errors"

var (
	// ErrInvalid indicates text that is not a well-formed address string:
	// bad base58, a checksum mismatch or an empty payload.
	ErrInvalid = errors.New("address: invalid address")

	// ErrInvalidKey indicates a key that is not a point on the curve.
	ErrInvalidKey = errors.New("address: invalid public key")

	// ErrPrefixNotAllowed indicates an address prefix outside the allowed set.
	ErrPrefixNotAllowed = errors.New("address: prefix not allowed")
)
