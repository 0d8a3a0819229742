// Package hashing computes transaction, tree and block identifiers over the
// canonical wire encoding. The fast hash primitive is injected; Keccak256 is
// the default.
package hashing

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/merkle"
	"github.com/bitfsorg/libcryptonote-go/wire"
)

// FastHash hashes arbitrary data to 32 bytes.
type FastHash func(data []byte) wire.Hash

// Keccak256 is the legacy (pre-NIST padding) Keccak-256 digest.
func Keccak256(data []byte) wire.Hash {
	var out wire.Hash
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	d.Sum(out[:0])
	return out
}

// Engine computes identifiers with a fixed fast hash. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	fast FastHash
}

// New returns an engine using fast, or Keccak256 when fast is nil.
func New(fast FastHash) *Engine {
	if fast == nil {
		fast = Keccak256
	}
	return &Engine{fast: fast}
}

// Default is the Keccak-256 engine.
var Default = New(nil)

// Hash applies the fast hash to data.
func (e *Engine) Hash(data []byte) wire.Hash { return e.fast(data) }

func (e *Engine) merkleHash() merkle.HashFunc { return merkle.HashFunc(e.fast) }

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// PrefixHash hashes the encoded prefix of tx, preceded by the profile's
// domain separator when it has one.
func (e *Engine) PrefixHash(tx *wire.Transaction, p *fork.Profile) (wire.Hash, error) {
	b := []byte(p.PrefixDomain)
	b, err := wire.AppendTransactionPrefix(b, &tx.TransactionPrefix, p)
	if err != nil {
		return wire.Hash{}, fmt.Errorf("%w: prefix: %w", ErrHashing, err)
	}
	return e.fast(b), nil
}

// TransactionHash returns the transaction id. Version 1 transactions hash
// their full encoding unless the profile routes them through the composite
// hash H(prefix hash || H(rct base) || H(rct prunable)).
func (e *Engine) TransactionHash(tx *wire.Transaction, p *fork.Profile) (wire.Hash, error) {
	if tx.Version == wire.TxVersion1 && !p.CompositeV1Hash {
		blob, err := wire.EncodeTransaction(tx, p)
		if err != nil {
			return wire.Hash{}, fmt.Errorf("%w: %w", ErrHashing, err)
		}
		return e.fast(blob), nil
	}

	var parts [3 * wire.HashSize]byte
	prefix, err := e.PrefixHash(tx, p)
	if err != nil {
		return wire.Hash{}, err
	}
	copy(parts[:], prefix[:])

	inputs, outputs := len(tx.Inputs), len(tx.Outputs)
	base, err := wire.AppendRctBase(nil, &tx.RCT, inputs, outputs)
	if err != nil {
		return wire.Hash{}, fmt.Errorf("%w: rct base: %w", ErrHashing, err)
	}
	h := e.fast(base)
	copy(parts[wire.HashSize:], h[:])

	if tx.RCT.Type != wire.RctTypeNull {
		mixin, err := wire.Mixin(&tx.TransactionPrefix)
		if err != nil {
			return wire.Hash{}, fmt.Errorf("%w: %w", ErrHashing, err)
		}
		prunable, err := wire.AppendRctPrunable(nil, &tx.RCT, inputs, outputs, mixin)
		if err != nil {
			return wire.Hash{}, fmt.Errorf("%w: rct prunable: %w", ErrHashing, err)
		}
		h = e.fast(prunable)
		copy(parts[2*wire.HashSize:], h[:])
	}
	return e.fast(parts[:]), nil
}

// ---------------------------------------------------------------------------
// Trees
// ---------------------------------------------------------------------------

// TreeHash returns the Cryptonote tree root of hashes.
func (e *Engine) TreeHash(hashes []wire.Hash) wire.Hash {
	return merkle.TreeHash(hashes, e.merkleHash())
}

// TreeHashFromBranch recomputes a root from a root-first branch.
func (e *Engine) TreeHashFromBranch(branch []wire.Hash, leaf wire.Hash, path []byte) (wire.Hash, error) {
	return merkle.TreeHashFromBranch(branch, leaf, path, e.merkleHash())
}

// CoinbaseBranch returns the branch of the first of hashes.
func (e *Engine) CoinbaseBranch(hashes []wire.Hash) ([]wire.Hash, error) {
	return merkle.CoinbaseBranch(hashes, e.merkleHash())
}

// TxHashes returns the miner transaction hash followed by the block's
// transaction hashes.
func (e *Engine) TxHashes(b *wire.Block, p *fork.Profile) ([]wire.Hash, error) {
	miner, err := e.TransactionHash(&b.MinerTx, p)
	if err != nil {
		return nil, err
	}
	hashes := make([]wire.Hash, 0, len(b.TxHashes)+1)
	hashes = append(hashes, miner)
	return append(hashes, b.TxHashes...), nil
}

// TxTreeHash returns the tree root over the miner transaction hash and the
// block's transaction hashes.
func (e *Engine) TxTreeHash(b *wire.Block, p *fork.Profile) (wire.Hash, error) {
	hashes, err := e.TxHashes(b, p)
	if err != nil {
		return wire.Hash{}, err
	}
	return e.TreeHash(hashes), nil
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// HashingBlob returns the proof-of-work input of b: its header (reduced for
// some profiles), the transaction tree root and the transaction count, plus
// profile-specific trailers.
func (e *Engine) HashingBlob(b *wire.Block, p *fork.Profile) ([]byte, error) {
	var blob []byte
	if p.ReducedHashingHeader {
		blob = wire.AppendVarint(blob, uint64(b.MajorVersion))
		blob = append(blob, b.MinorVersion)
		blob = binary.LittleEndian.AppendUint64(blob, b.Timestamp)
		blob = append(blob, b.PrevID[:]...)
	} else {
		var err error
		if blob, err = wire.AppendBlockHeader(blob, &b.BlockHeader, p); err != nil {
			return nil, fmt.Errorf("%w: header: %w", ErrHashing, err)
		}
	}

	root, err := e.TxTreeHash(b, p)
	if err != nil {
		return nil, err
	}
	blob = append(blob, root[:]...)
	blob = wire.AppendVarint(blob, uint64(len(b.TxHashes))+1)
	if p.HasUncle {
		blob = append(blob, b.Uncle[:]...)
	}
	if p.HasNonce8 {
		blob = binary.LittleEndian.AppendUint64(blob, b.Nonce8)
	}
	return blob, nil
}

// ObjectHash hashes blob as a serialized byte string, its varint length
// followed by its bytes.
func (e *Engine) ObjectHash(blob []byte) wire.Hash {
	return e.fast(wire.AppendVarBytes(nil, blob))
}

// BlockHeaderHash returns the object hash of the hashing blob of b.
func (e *Engine) BlockHeaderHash(b *wire.Block, p *fork.Profile) (wire.Hash, error) {
	blob, err := e.HashingBlob(b, p)
	if err != nil {
		return wire.Hash{}, err
	}
	return e.ObjectHash(blob), nil
}

// BlockHash returns the block id, the object hash of the hashing blob. For
// merged profiles the parent block in its hashing form is appended to the
// hashing blob first.
func (e *Engine) BlockHash(b *wire.Block, p *fork.Profile) (wire.Hash, error) {
	blob, err := e.HashingBlob(b, p)
	if err != nil {
		return wire.Hash{}, err
	}
	if p.Merged {
		if blob, err = e.appendParent(blob, b, p, false); err != nil {
			return wire.Hash{}, err
		}
	}
	return e.ObjectHash(blob), nil
}

// ParentHashingBlob returns the header-only hashing form of the parent of
// a merged block, the long-hash input of merge-mined shares.
func (e *Engine) ParentHashingBlob(b *wire.Block, p *fork.Profile) ([]byte, error) {
	return e.appendParent(nil, b, p, true)
}

// ParentMerkleRoot recomputes the parent transaction tree root from the
// miner transaction branch.
func (e *Engine) ParentMerkleRoot(b *wire.Block, p *fork.Profile) (wire.Hash, error) {
	miner, err := e.TransactionHash(&b.Parent.MinerTx, p)
	if err != nil {
		return wire.Hash{}, fmt.Errorf("parent miner tx: %w", err)
	}
	return e.TreeHashFromBranch(b.Parent.MinerTxBranch, miner, nil)
}

func (e *Engine) appendParent(blob []byte, b *wire.Block, p *fork.Profile, headerOnly bool) ([]byte, error) {
	root, err := e.ParentMerkleRoot(b, p)
	if err != nil {
		return nil, err
	}
	if blob, err = wire.AppendParentBlock(blob, b, p, &root, headerOnly); err != nil {
		return nil, fmt.Errorf("%w: parent block: %w", ErrHashing, err)
	}
	return blob, nil
}
