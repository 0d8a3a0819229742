package wire

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the size of hashes, keys and key images.
const HashSize = 32

// Hash is a 32-byte digest.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash used for absent values.
var ZeroHash Hash

// String returns the hex encoding of h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is all zeros.
func (h Hash) IsZero() bool { return h == ZeroHash }

// HashFromHex parses a 64-character hex string.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrInvalidValue, HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// PublicKey is a compressed ed25519 point.
type PublicKey [32]byte

// String returns the hex encoding of k.
func (k PublicKey) String() string { return hex.EncodeToString(k[:]) }

// KeyImage is the linkability tag of a spent output.
type KeyImage [32]byte

// Signature is a ring signature element (c, r).
type Signature [64]byte
