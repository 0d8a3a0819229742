// Package cnutil is the pool-facing surface of the library. Every entry
// point takes and returns serialized blobs so a pool can work on templates
// it received from a daemon without handling the structured types.
package cnutil

import (
	"encoding/binary"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libcryptonote-go/address"
	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/mergemining"
	"github.com/bitfsorg/libcryptonote-go/pow"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

// ChildProfile is the layout of merge-mined child blocks.
var ChildProfile = fork.Forknote2

// Util bundles the hash engine, the merge-mining constructor and the
// proof-of-work registry. It is safe for concurrent use.
type Util struct {
	engine *hashing.Engine
	mm     *mergemining.Constructor
	pow    *pow.Registry
	logger zerolog.Logger
}

// Option configures a Util.
type Option func(*Util)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(u *Util) { u.logger = l }
}

// WithEngine sets the hash engine.
func WithEngine(e *hashing.Engine) Option {
	return func(u *Util) { u.engine = e }
}

// WithRegistry sets the proof-of-work registry used by PowHash.
func WithRegistry(r *pow.Registry) Option {
	return func(u *Util) { u.pow = r }
}

// New returns a Util with Keccak-256, an empty proof-of-work registry and a
// no-op logger unless overridden.
func New(opts ...Option) *Util {
	initPrometheusMetrics()

	u := &Util{engine: hashing.Default, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(u)
	}
	if u.engine == nil {
		u.engine = hashing.Default
	}
	if u.pow == nil {
		u.pow = pow.NewRegistry()
	}
	u.mm = mergemining.New(mergemining.WithEngine(u.engine), mergemining.WithLogger(u.logger))
	return u
}

// Registry returns the proof-of-work registry.
func (u *Util) Registry() *pow.Registry { return u.pow }

func (u *Util) observe(op string, p *fork.Profile, err error) {
	prometheusOperations.WithLabelValues(op, p.Name).Inc()
	if err != nil {
		prometheusOperationFailures.WithLabelValues(op, p.Name).Inc()
		u.logger.Debug().Err(err).Str("operation", op).Str("profile", p.Name).Msg("cnutil operation failed")
	}
}

// DecodeBlock parses a block blob.
func (u *Util) DecodeBlock(blob []byte, p *fork.Profile) (blk *wire.Block, err error) {
	defer func() { u.observe("decode_block", p, err) }()
	return wire.DecodeBlock(blob, p)
}

// EncodeBlock serializes a block.
func (u *Util) EncodeBlock(blk *wire.Block, p *fork.Profile) (blob []byte, err error) {
	defer func() { u.observe("encode_block", p, err) }()
	return wire.EncodeBlock(blk, p)
}

// DecodeTransaction parses a transaction blob.
func (u *Util) DecodeTransaction(blob []byte, p *fork.Profile) (tx *wire.Transaction, err error) {
	defer func() { u.observe("decode_transaction", p, err) }()
	return wire.DecodeTransaction(blob, p)
}

// HashingBlob returns the hashing blob of a decoded block.
func (u *Util) HashingBlob(blk *wire.Block, p *fork.Profile) (blob []byte, err error) {
	defer func() { u.observe("hashing_blob", p, err) }()
	return u.engine.HashingBlob(blk, p)
}

// ConvertBlob turns a block template into the blob miners hash. Merged
// profiles hash a parent built around the child instead of the block
// itself.
func (u *Util) ConvertBlob(blob []byte, p *fork.Profile) (out []byte, err error) {
	defer func() { u.observe("convert_blob", p, err) }()
	blk, err := wire.DecodeBlock(blob, p)
	if err != nil {
		return nil, err
	}
	if !p.Merged {
		return u.engine.HashingBlob(blk, p)
	}
	parent, err := u.mm.BuildParentTemplate(blk, p)
	if err != nil {
		return nil, err
	}
	return u.engine.HashingBlob(parent, mergemining.TemplateProfile)
}

// BlockID returns the id of a block blob.
func (u *Util) BlockID(blob []byte, p *fork.Profile) (id wire.Hash, err error) {
	defer func() { u.observe("block_id", p, err) }()
	blk, err := wire.DecodeBlock(blob, p)
	if err != nil {
		return wire.Hash{}, err
	}
	return u.engine.BlockHash(blk, p)
}

// PowHash converts a block template and digests it with the profile's
// registered proof-of-work function.
func (u *Util) PowHash(blob []byte, p *fork.Profile, height uint64) (wire.Hash, error) {
	data, err := u.ConvertBlob(blob, p)
	if err != nil {
		return wire.Hash{}, err
	}
	h, err := u.pow.ComputeDigest(p.ID, data, height)
	u.observe("pow_hash", p, err)
	return h, err
}

// ConstructBlockBlob writes a found nonce, and for cycle profiles the cuckoo
// cycle, into a block template. The nonce is little-endian and 8 bytes wide
// for profiles with 64-bit nonces, 4 bytes otherwise. Merged profiles get a
// parent block built around the child and folded back into it.
func (u *Util) ConstructBlockBlob(template, nonce []byte, p *fork.Profile, cycle []uint32) (out []byte, err error) {
	defer func() { u.observe("construct_block_blob", p, err) }()

	if len(nonce) != p.NonceSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidNonceSize, len(nonce), p.NonceSize)
	}
	if len(cycle) != p.CycleLength {
		return nil, fmt.Errorf("%w: %d values, want %d", ErrInvalidCycle, len(cycle), p.CycleLength)
	}

	blk, err := wire.DecodeBlock(template, p)
	if err != nil {
		return nil, err
	}
	var n uint64
	if p.NonceSize == 8 {
		n = binary.LittleEndian.Uint64(nonce)
	} else {
		n = uint64(binary.LittleEndian.Uint32(nonce))
	}
	blk.Nonce = n
	if p.HasCycle() {
		blk.Cycle = append([]uint32(nil), cycle...)
	}

	if p.Merged {
		blk.Parent.Nonce = uint32(n)
		parent, err := u.mm.BuildParentTemplate(blk, p)
		if err != nil {
			return nil, err
		}
		if blk, err = u.mm.FinalizeChild(parent, mergemining.TemplateProfile, blk, nil); err != nil {
			return nil, err
		}
	}
	return wire.EncodeBlock(blk, p)
}

// ConstructMMParentBlockBlob writes the merge-mining tag of a child
// template into the extra nonce of a parent template. Loki-style parents
// get a version 2 miner transaction so the child can carry it.
func (u *Util) ConstructMMParentBlockBlob(parentTemplate []byte, parentProfile *fork.Profile, childTemplate []byte) (out []byte, err error) {
	defer func() { u.observe("construct_mm_parent_block_blob", parentProfile, err) }()

	parent, err := wire.DecodeBlock(parentTemplate, parentProfile)
	if err != nil {
		return nil, fmt.Errorf("parent block: %w", err)
	}
	if parentProfile.LokiPrefix {
		parent.MinerTx.Version = wire.TxVersion2
	}
	child, err := wire.DecodeBlock(childTemplate, ChildProfile)
	if err != nil {
		return nil, fmt.Errorf("child block: %w", err)
	}
	if parent, err = u.mm.SpliceIntoParent(parent, child, ChildProfile); err != nil {
		return nil, err
	}
	return wire.EncodeBlock(parent, parentProfile)
}

// ConstructMMChildBlockBlob folds a solved parent share into a child
// template and returns the child block ready for submission.
func (u *Util) ConstructMMChildBlockBlob(shareBlob []byte, parentProfile *fork.Profile, childTemplate []byte) (out []byte, err error) {
	defer func() { u.observe("construct_mm_child_block_blob", parentProfile, err) }()

	share, err := wire.DecodeBlock(shareBlob, parentProfile)
	if err != nil {
		return nil, fmt.Errorf("parent block: %w", err)
	}
	child, err := wire.DecodeBlock(childTemplate, ChildProfile)
	if err != nil {
		return nil, fmt.Errorf("child block: %w", err)
	}
	if child, err = u.mm.FinalizeChild(share, parentProfile, child, nil); err != nil {
		return nil, err
	}
	return wire.EncodeBlock(child, ChildProfile)
}

// MergedMiningNonceSize returns the extra nonce bytes a pool must reserve
// in parent templates for the merge-mining tag.
func MergedMiningNonceSize() int { return mergemining.NonceSize }

// DecodeAddress decodes a standard address.
func DecodeAddress(text string) (address.Result, error) {
	return address.Decode(text)
}

// DecodeIntegratedAddress decodes an integrated address.
func DecodeIntegratedAddress(text string) (address.Result, error) {
	return address.DecodeIntegrated(text)
}
