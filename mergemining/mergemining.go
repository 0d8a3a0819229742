// Package mergemining embeds a child block's header hash in a parent block's
// miner transaction and folds a solved parent back into the child.
//
// The three steps are:
//
//	BuildParentTemplate  child template -> minimal parent carrying the tag
//	SpliceIntoParent     real parent template -> same parent with the tag
//	                     written over the tail of its extra nonce
//	FinalizeChild        solved parent -> child with its parent block filled
package mergemining

import (
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/hashing"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

// NonceSize is the number of extra nonce bytes a merge-mining tag takes:
// tag byte, length byte, depth byte and the 32-byte root.
const NonceSize = 1 + 2 + wire.HashSize

// TemplateProfile is the layout of parent templates built by
// BuildParentTemplate.
var TemplateProfile = fork.Cryptonote

// Constructor builds merge-mining structures. The zero value is not usable;
// call New.
type Constructor struct {
	engine *hashing.Engine
	logger zerolog.Logger
}

// Option configures a Constructor.
type Option func(*Constructor)

// WithLogger sets the logger used to report construction failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Constructor) { c.logger = l }
}

// WithEngine sets the hash engine.
func WithEngine(e *hashing.Engine) Option {
	return func(c *Constructor) {
		if e != nil {
			c.engine = e
		}
	}
}

// New returns a Constructor using Keccak-256 and a no-op logger unless
// overridden.
func New(opts ...Option) *Constructor {
	c := &Constructor{engine: hashing.Default, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the hash engine of c.
func (c *Constructor) Engine() *hashing.Engine { return c.engine }

func (c *Constructor) tag(child *wire.Block, childProfile *fork.Profile) (wire.MergeMiningTag, error) {
	root, err := c.engine.BlockHeaderHash(child, childProfile)
	if err != nil {
		c.logger.Debug().Err(err).Str("profile", childProfile.Name).Msg("child header hash failed")
		return wire.MergeMiningTag{}, fmt.Errorf("%w: child header hash: %w", ErrConstruction, err)
	}
	return wire.MergeMiningTag{Depth: 0, MerkleRoot: root}, nil
}

// BuildParentTemplate returns the minimal parent of child: version 1.0,
// the child's timestamp and previous id, the nonce stored in the child's
// parent block and a version 1 miner transaction whose extra is exactly a
// depth 0 merge-mining tag over the child's header hash. The result is
// laid out as TemplateProfile.
func (c *Constructor) BuildParentTemplate(child *wire.Block, childProfile *fork.Profile) (*wire.Block, error) {
	tag, err := c.tag(child, childProfile)
	if err != nil {
		return nil, err
	}
	return &wire.Block{
		BlockHeader: wire.BlockHeader{
			MajorVersion: 1,
			MinorVersion: 0,
			Timestamp:    child.Timestamp,
			PrevID:       child.PrevID,
			Nonce:        uint64(child.Parent.Nonce),
		},
		MinerTx: wire.Transaction{
			TransactionPrefix: wire.TransactionPrefix{
				Version:    wire.TxVersion1,
				UnlockTime: 0,
				Extra:      wire.AppendMergeMiningTagToExtra(nil, tag),
			},
		},
	}, nil
}

// SpliceTag writes a depth 0 merge-mining tag over root into the tail of
// the extra nonce and returns the new extra. Only public key fields may
// precede the nonce. The nonce shrinks by NonceSize bytes, the tag follows
// it, and every byte after the original nonce is kept, so the extra keeps
// its length. extra is not modified.
func SpliceTag(extra []byte, root wire.Hash) ([]byte, error) {
	field := wire.AppendMergeMiningTagToExtra(nil, wire.MergeMiningTag{MerkleRoot: root})
	if len(field) != NonceSize {
		return nil, fmt.Errorf("%w: merge mining tag of %d bytes", ErrConstruction, len(field))
	}

	pos := 0
	for pos < len(extra) && extra[pos] != wire.ExtraTagNonce {
		switch extra[pos] {
		case wire.ExtraTagPubKey:
			pos += 1 + wire.HashSize
		default:
			return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrUnsupportedExtraTag, extra[pos], pos)
		}
	}
	if pos+1 >= len(extra) {
		return nil, ErrNonceNotFound
	}

	oldLen := int(extra[pos+1])
	if pos+2+oldLen > len(extra) {
		return nil, fmt.Errorf("%w: nonce of %d bytes overruns extra: %w", ErrNonceNotFound, oldLen, wire.ErrUnexpectedEOF)
	}
	newLen := oldLen - NonceSize
	if newLen < 0 {
		return nil, fmt.Errorf("%w: nonce of %d bytes", ErrInsufficientNonceSpace, oldLen)
	}

	out := bytes.Clone(extra)
	out[pos+1] = byte(newLen)
	copy(out[pos+2+newLen:], field)
	return out, nil
}

// SpliceIntoParent returns a copy of parent whose miner transaction extra
// carries the merge-mining tag of child, and whose timestamp is the later
// of the two blocks' timestamps.
func (c *Constructor) SpliceIntoParent(parent, child *wire.Block, childProfile *fork.Profile) (*wire.Block, error) {
	tag, err := c.tag(child, childProfile)
	if err != nil {
		return nil, err
	}
	extra, err := SpliceTag(parent.MinerTx.Extra, tag.MerkleRoot)
	if err != nil {
		c.logger.Warn().Err(err).Int("extra_len", len(parent.MinerTx.Extra)).Msg("cannot splice merge mining tag")
		return nil, err
	}

	out := *parent
	out.MinerTx.Extra = extra
	if child.Timestamp > out.Timestamp {
		out.Timestamp = child.Timestamp
	}
	return &out, nil
}

// FinalizeChild returns a copy of child whose parent block is filled from
// the solved parent: header fields, the miner transaction, the transaction
// count and the coinbase branch of the parent's transaction tree.
// siblingBranch is the merge-mining branch and must match the depth of the
// tag in the parent's miner transaction. The child takes the parent's
// timestamp.
func (c *Constructor) FinalizeChild(parent *wire.Block, parentProfile *fork.Profile, child *wire.Block, siblingBranch []wire.Hash) (*wire.Block, error) {
	tag, ok, err := wire.MergeMiningTagFromExtra(parent.MinerTx.Extra)
	switch {
	case err != nil:
		return nil, fmt.Errorf("%w: parent extra: %w", ErrConstruction, err)
	case !ok:
		return nil, fmt.Errorf("%w: parent miner tx carries no merge mining tag", ErrConstruction)
	case tag.Depth != uint64(len(siblingBranch)):
		return nil, fmt.Errorf("%w: branch of %d for tag depth %d", ErrConstruction, len(siblingBranch), tag.Depth)
	}
	if parent.Nonce > math.MaxUint32 {
		return nil, fmt.Errorf("%w: parent nonce %d exceeds 32 bits", ErrConstruction, parent.Nonce)
	}

	miner, err := c.engine.TransactionHash(&parent.MinerTx, parentProfile)
	if err != nil {
		c.logger.Debug().Err(err).Str("profile", parentProfile.Name).Msg("parent miner tx hash failed")
		return nil, fmt.Errorf("%w: parent miner tx hash: %w", ErrConstruction, err)
	}
	hashes := make([]wire.Hash, 0, len(parent.TxHashes)+1)
	hashes = append(hashes, miner)
	hashes = append(hashes, parent.TxHashes...)
	branch, err := c.engine.CoinbaseBranch(hashes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}

	out := *child
	out.Timestamp = parent.Timestamp
	out.Parent = wire.ParentBlock{
		MajorVersion:         parent.MajorVersion,
		MinorVersion:         parent.MinorVersion,
		PrevID:               parent.PrevID,
		Nonce:                uint32(parent.Nonce),
		NumberOfTransactions: uint64(len(hashes)),
		MinerTxBranch:        branch,
		MinerTx:              parent.MinerTx,
		BlockchainBranch:     slices.Clone(siblingBranch),
	}
	return &out, nil
}
