// Package fork holds the closed table of Cryptonote fork profiles. A profile
// declares which header fields a fork serializes, how its hashing blob is
// assembled and which transaction extensions its codec understands. Every
// codec and hash call takes a resolved *Profile; nothing reads a raw blob
// type tag after lookup.
package fork

import (
	"fmt"
	"strings"
)

// BlobType is the numeric fork identifier used by pool software.
type BlobType int

// Blob type identifiers. The numeric values are part of the pool protocol.
const (
	BlobCryptonote BlobType = iota
	BlobForknote1
	BlobForknote2
	BlobCryptonote2
	BlobRyo
	BlobLoki
	BlobCryptonote3
	BlobAeon
	BlobCuckoo
	BlobXTNC
	BlobTube
	BlobXHV
	BlobXTA
)

// Profile describes the wire and hashing rules of one fork family.
type Profile struct {
	ID   BlobType
	Name string

	// Merged profiles omit timestamp and nonce from the header and carry a
	// parent block between the header and the miner transaction.
	Merged bool

	// NonceSize is the width of the header nonce in bytes (4 or 8).
	NonceSize int

	// CycleLength is the number of uint32 cuckoo-cycle values in the header,
	// zero when the fork has no cycle.
	CycleLength int

	// HasNonce8 adds an 8-byte alternate nonce to the header and to the
	// hashing blob.
	HasNonce8 bool

	// HasUncle adds an uncle hash to the block and to the hashing blob.
	HasUncle bool

	// ReducedHashingHeader selects the major/minor/timestamp/prev hashing
	// header instead of the full serialized header.
	ReducedHashingHeader bool

	// PrefixDomain is prepended to the serialized prefix before hashing.
	PrefixDomain string

	// CompositeV1Hash routes version 1 transactions through the composite
	// three-hash path.
	CompositeV1Hash bool

	// LokiPrefix enables per-output unlock times (v3+) and tx types (v4+).
	LokiPrefix bool

	// AssetConversion enables offshore/onshore inputs and offshore outputs.
	AssetConversion bool

	// PricingRecord adds the signed pricing record after the block header.
	PricingRecord bool
}

// HasCycle reports whether the header carries a cuckoo cycle.
func (p *Profile) HasCycle() bool { return p.CycleLength > 0 }

// HasTimestampAndNonce reports whether the header serializes its own
// timestamp and nonce.
func (p *Profile) HasTimestampAndNonce() bool { return !p.Merged }

// String returns the profile name.
func (p *Profile) String() string { return p.Name }

// Predefined profiles.
var (
	Cryptonote = &Profile{ID: BlobCryptonote, Name: "cryptonote", NonceSize: 4}

	Forknote1 = &Profile{ID: BlobForknote1, Name: "forknote1", NonceSize: 4}

	Forknote2 = &Profile{ID: BlobForknote2, Name: "forknote2", NonceSize: 4, Merged: true}

	Cryptonote2 = &Profile{ID: BlobCryptonote2, Name: "cryptonote2", NonceSize: 4, CompositeV1Hash: true}

	Ryo = &Profile{ID: BlobRyo, Name: "ryo", NonceSize: 4, PrefixDomain: "ryo-currency"}

	Loki = &Profile{ID: BlobLoki, Name: "loki", NonceSize: 4, LokiPrefix: true}

	Cryptonote3 = &Profile{ID: BlobCryptonote3, Name: "cryptonote3", NonceSize: 4, CompositeV1Hash: true, HasUncle: true}

	Aeon = &Profile{ID: BlobAeon, Name: "aeon", NonceSize: 8}

	Cuckoo = &Profile{
		ID:                   BlobCuckoo,
		Name:                 "cuckoo",
		NonceSize:            4,
		CycleLength:          32,
		HasNonce8:            true,
		ReducedHashingHeader: true,
	}

	XTNC = &Profile{
		ID:                   BlobXTNC,
		Name:                 "xtnc",
		NonceSize:            4,
		CycleLength:          32,
		ReducedHashingHeader: true,
		LokiPrefix:           true,
	}

	Tube = &Profile{
		ID:                   BlobTube,
		Name:                 "tube",
		NonceSize:            4,
		CycleLength:          40,
		HasNonce8:            true,
		ReducedHashingHeader: true,
	}

	XHV = &Profile{ID: BlobXHV, Name: "xhv", NonceSize: 4, AssetConversion: true, PricingRecord: true}

	XTA = &Profile{
		ID:                   BlobXTA,
		Name:                 "xta",
		NonceSize:            4,
		CycleLength:          48,
		HasNonce8:            true,
		ReducedHashingHeader: true,
	}
)

// table is indexed by BlobType.
var table = []*Profile{
	Cryptonote,
	Forknote1,
	Forknote2,
	Cryptonote2,
	Ryo,
	Loki,
	Cryptonote3,
	Aeon,
	Cuckoo,
	XTNC,
	Tube,
	XHV,
	XTA,
}

// byName maps lower-case profile names to profiles.
var byName = func() map[string]*Profile {
	m := make(map[string]*Profile, len(table))
	for _, p := range table {
		m[p.Name] = p
	}
	return m
}()

// ByID returns the profile for a numeric blob type.
func ByID(id BlobType) (*Profile, error) {
	if id < 0 || int(id) >= len(table) {
		return nil, fmt.Errorf("%w: blob type %d", ErrUnknownProfile, int(id))
	}
	return table[id], nil
}

// ByName returns the profile with the given name (case-insensitive).
func ByName(name string) (*Profile, error) {
	if p, ok := byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// All returns every profile ordered by blob type.
func All() []*Profile {
	out := make([]*Profile, len(table))
	copy(out, table)
	return out
}
