// Package address encodes and decodes Cryptonote public addresses: a
// varint network prefix, a spend key, a view key and, for integrated
// addresses, an 8-byte payment id, followed by a 4-byte Keccak checksum,
// all rendered in Cryptonote block base58.
package address

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"filippo.io/edwards25519"

	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

const (
	checksumSize = 4

	// PaymentIDSize is the length of an integrated address payment id.
	PaymentIDSize = 8

	addressSize    = 2 * wire.HashSize
	integratedSize = addressSize + PaymentIDSize
)

// Address is a decoded public address.
type Address struct {
	Prefix   uint64
	SpendKey wire.PublicKey
	ViewKey  wire.PublicKey

	// Integrated marks an integrated address; PaymentID is only meaningful
	// when it is set.
	Integrated bool
	PaymentID  [PaymentIDSize]byte
}

// Result is the outcome of decoding well-formed address text. Exactly one
// of Address and Raw is set: Raw holds the 8-byte big-endian prefix
// followed by the payload when the payload is not a valid address record.
type Result struct {
	Address *Address
	Raw     []byte
}

// Valid reports whether the text decoded to an address with valid keys.
func (r Result) Valid() bool { return r.Address != nil }

// CheckKey reports whether k decodes to a point on the ed25519 curve.
func CheckKey(k wire.PublicKey) bool {
	_, err := new(edwards25519.Point).SetBytes(k[:])
	return err == nil
}

func checksum(data []byte) []byte {
	h := hashing.Keccak256(data)
	return h[:checksumSize]
}

// decodeRaw decodes text and verifies its checksum, returning the prefix
// and the payload after it.
func decodeRaw(text string) (uint64, []byte, error) {
	data, err := DecodeBase58(text)
	if err != nil {
		return 0, nil, err
	}
	if len(data) <= checksumSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrInvalid, len(data))
	}
	body, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if !bytes.Equal(checksum(body), sum) {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", ErrInvalid)
	}
	prefix, n, err := wire.ReadVarint(body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: prefix: %w", ErrInvalid, err)
	}
	payload := body[n:]
	if len(payload) == 0 {
		return 0, nil, fmt.Errorf("%w: empty payload", ErrInvalid)
	}
	return prefix, payload, nil
}

func rawResult(prefix uint64, payload []byte) Result {
	raw := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(payload)), prefix)
	return Result{Raw: append(raw, payload...)}
}

func decode(text string, size int) (Result, error) {
	prefix, payload, err := decodeRaw(text)
	if err != nil {
		return Result{}, err
	}
	if len(payload) != size {
		return rawResult(prefix, payload), nil
	}
	a := &Address{Prefix: prefix, Integrated: size == integratedSize}
	copy(a.SpendKey[:], payload)
	copy(a.ViewKey[:], payload[wire.HashSize:])
	copy(a.PaymentID[:], payload[addressSize:])
	if !CheckKey(a.SpendKey) || !CheckKey(a.ViewKey) {
		return rawResult(prefix, payload), nil
	}
	return Result{Address: a}, nil
}

// Decode parses a standard address.
func Decode(text string) (Result, error) {
	return decode(text, addressSize)
}

// DecodeIntegrated parses an integrated address.
func DecodeIntegrated(text string) (Result, error) {
	return decode(text, integratedSize)
}

// Encode renders a as address text. Integrated addresses carry their
// payment id. Keys are checked before encoding.
func Encode(a *Address) (string, error) {
	if !CheckKey(a.SpendKey) {
		return "", fmt.Errorf("%w: spend key", ErrInvalidKey)
	}
	if !CheckKey(a.ViewKey) {
		return "", fmt.Errorf("%w: view key", ErrInvalidKey)
	}
	data := wire.AppendVarint(nil, a.Prefix)
	data = append(data, a.SpendKey[:]...)
	data = append(data, a.ViewKey[:]...)
	if a.Integrated {
		data = append(data, a.PaymentID[:]...)
	}
	data = append(data, checksum(data)...)
	return EncodeBase58(data), nil
}

// EncodeIntegrated renders a with paymentID as an integrated address.
func EncodeIntegrated(a *Address, paymentID [PaymentIDSize]byte) (string, error) {
	ia := *a
	ia.Integrated = true
	ia.PaymentID = paymentID
	return Encode(&ia)
}

// ValidatePrefix fails unless a's prefix is one of allowed.
func ValidatePrefix(a *Address, allowed ...uint64) error {
	if slices.Contains(allowed, a.Prefix) {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrPrefixNotAllowed, a.Prefix)
}
