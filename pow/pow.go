// Package pow routes proof-of-work digests to per-profile implementations.
// The digest functions themselves live outside this module; callers
// register them in a Registry.
package pow

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

// Digester computes the proof-of-work digest of a hashing blob.
type Digester interface {
	ComputeDigest(profile fork.BlobType, data []byte, height uint64) (wire.Hash, error)
}

// DigesterFunc adapts a function to Digester.
type DigesterFunc func(profile fork.BlobType, data []byte, height uint64) (wire.Hash, error)

// ComputeDigest calls f.
func (f DigesterFunc) ComputeDigest(profile fork.BlobType, data []byte, height uint64) (wire.Hash, error) {
	return f(profile, data, height)
}

// KeccakDigester digests with Keccak-256. It stands in for real
// proof-of-work functions in tests and tools.
type KeccakDigester struct{}

// ComputeDigest returns Keccak256(data).
func (KeccakDigester) ComputeDigest(_ fork.BlobType, data []byte, _ uint64) (wire.Hash, error) {
	return hashing.Keccak256(data), nil
}

// Registry maps profiles to digesters. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	digesters map[fork.BlobType]Digester
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{digesters: make(map[fork.BlobType]Digester)}
}

// Register sets the digester of a profile, replacing any previous one.
func (r *Registry) Register(profile fork.BlobType, d Digester) error {
	if d == nil {
		return ErrNilDigester
	}
	if _, err := fork.ByID(profile); err != nil {
		return err
	}
	r.mu.Lock()
	r.digesters[profile] = d
	r.mu.Unlock()
	return nil
}

// Unregister removes the digester of a profile.
func (r *Registry) Unregister(profile fork.BlobType) {
	r.mu.Lock()
	delete(r.digesters, profile)
	r.mu.Unlock()
}

// Lookup returns the digester of a profile.
func (r *Registry) Lookup(profile fork.BlobType) (Digester, error) {
	r.mu.RLock()
	d, ok := r.digesters[profile]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: profile %d", ErrNoDigester, profile)
	}
	return d, nil
}

// ComputeDigest digests data with the profile's digester.
func (r *Registry) ComputeDigest(profile fork.BlobType, data []byte, height uint64) (wire.Hash, error) {
	d, err := r.Lookup(profile)
	if err != nil {
		return wire.Hash{}, err
	}
	return d.ComputeDigest(profile, data, height)
}

// Profiles returns the registered profile ids in ascending order.
func (r *Registry) Profiles() []fork.BlobType {
	r.mu.RLock()
	ids := make([]fork.BlobType, 0, len(r.digesters))
	for id := range r.digesters {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}
