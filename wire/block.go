package wire

import (
	"fmt"
	"math/bits"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// MaxBlockchainBranchDepth bounds the merge-mining tag depth.
const MaxBlockchainBranchDepth = 8 * HashSize

// BlockHeader holds the proof-of-work relevant header fields. Which fields
// are serialized depends on the fork profile.
type BlockHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	Timestamp    uint64
	PrevID       Hash
	Nonce        uint64
	Nonce8       uint64
	Cycle        []uint32

	// Uncle is serialized after the transaction hashes.
	Uncle Hash
}

// ParentBlock is the foreign-chain block that proves a merged child.
type ParentBlock struct {
	MajorVersion         uint8
	MinorVersion         uint8
	PrevID               Hash
	Nonce                uint32
	NumberOfTransactions uint64
	MinerTxBranch        []Hash
	MinerTx              Transaction
	BlockchainBranch     []Hash
}

// Block is a header, its miner transaction and the hashes of the other
// transactions.
type Block struct {
	BlockHeader
	PricingRecord PricingRecord
	Parent        ParentBlock
	MinerTx       Transaction
	TxHashes      []Hash
}

// TreeDepth returns floor(log2(count)), the coinbase branch length of a
// transaction tree with count leaves.
func TreeDepth(count uint64) int {
	if count == 0 {
		return 0
	}
	return bits.Len64(count) - 1
}

// AppendBlockHeader appends the serialized header.
func AppendBlockHeader(b []byte, h *BlockHeader, p *fork.Profile) ([]byte, error) {
	b = AppendVarint(b, uint64(h.MajorVersion))
	b = AppendVarint(b, uint64(h.MinorVersion))
	if p.HasTimestampAndNonce() {
		b = AppendVarint(b, h.Timestamp)
	}
	b = append(b, h.PrevID[:]...)
	if p.HasTimestampAndNonce() {
		if p.NonceSize == 8 {
			b = appendUint64(b, h.Nonce)
		} else {
			if h.Nonce > 0xffffffff {
				return nil, fmt.Errorf("%w: nonce %d exceeds 32 bits", ErrEncode, h.Nonce)
			}
			b = appendUint32(b, uint32(h.Nonce))
		}
	}
	if p.HasCycle() {
		if len(h.Cycle) != p.CycleLength {
			return nil, fmt.Errorf("%w: cycle of %d values, want %d", ErrEncode, len(h.Cycle), p.CycleLength)
		}
		for _, v := range h.Cycle {
			b = appendUint32(b, v)
		}
	}
	if p.HasNonce8 {
		b = appendUint64(b, h.Nonce8)
	}
	return b, nil
}

func readBlockHeader(r *reader, h *BlockHeader, p *fork.Profile) error {
	var err error
	if h.MajorVersion, err = r.varintByte(); err != nil {
		return err
	}
	if h.MinorVersion, err = r.varintByte(); err != nil {
		return err
	}
	if p.HasTimestampAndNonce() {
		if h.Timestamp, err = r.varint(); err != nil {
			return err
		}
	}
	if h.PrevID, err = r.hash(); err != nil {
		return err
	}
	if p.HasTimestampAndNonce() {
		if p.NonceSize == 8 {
			h.Nonce, err = r.uint64()
		} else {
			var n uint32
			n, err = r.uint32()
			h.Nonce = uint64(n)
		}
		if err != nil {
			return err
		}
	}
	if p.HasCycle() {
		if err := r.need(p.CycleLength, 4); err != nil {
			return err
		}
		h.Cycle = make([]uint32, p.CycleLength)
		for i := range h.Cycle {
			h.Cycle[i], _ = r.uint32()
		}
	}
	if p.HasNonce8 {
		if h.Nonce8, err = r.uint64(); err != nil {
			return err
		}
	}
	return nil
}

// AppendParentBlock appends the parent block of a merged block. With a
// non-nil merkleRoot the hashing form is produced: the root of the parent
// transaction tree follows the nonce. headerOnly stops after the
// transaction count.
func AppendParentBlock(b []byte, blk *Block, p *fork.Profile, merkleRoot *Hash, headerOnly bool) ([]byte, error) {
	pb := &blk.Parent
	b = AppendVarint(b, uint64(pb.MajorVersion))
	b = AppendVarint(b, uint64(pb.MinorVersion))
	b = AppendVarint(b, blk.Timestamp)
	b = append(b, pb.PrevID[:]...)
	b = appendUint32(b, pb.Nonce)
	if merkleRoot != nil {
		b = append(b, merkleRoot[:]...)
	}
	if pb.NumberOfTransactions < 1 {
		return nil, fmt.Errorf("%w: parent block without transactions", ErrEncode)
	}
	b = AppendVarint(b, pb.NumberOfTransactions)
	if headerOnly {
		return b, nil
	}
	if depth := TreeDepth(pb.NumberOfTransactions); len(pb.MinerTxBranch) != depth {
		return nil, fmt.Errorf("%w: miner tx branch of %d, want %d", ErrEncode, len(pb.MinerTxBranch), depth)
	}
	b = appendHashes(b, pb.MinerTxBranch)

	var err error
	if b, err = AppendTransaction(b, &pb.MinerTx, p); err != nil {
		return nil, fmt.Errorf("parent miner tx: %w", err)
	}
	tag, ok, err := MergeMiningTagFromExtra(pb.MinerTx.Extra)
	if err != nil || !ok {
		return nil, fmt.Errorf("%w: parent miner tx has no merge mining tag", ErrEncode)
	}
	if tag.Depth > MaxBlockchainBranchDepth || uint64(len(pb.BlockchainBranch)) != tag.Depth {
		return nil, fmt.Errorf("%w: blockchain branch of %d, tag depth %d", ErrEncode, len(pb.BlockchainBranch), tag.Depth)
	}
	return appendHashes(b, pb.BlockchainBranch), nil
}

func readParentBlock(r *reader, blk *Block, p *fork.Profile) error {
	pb := &blk.Parent
	var err error
	if pb.MajorVersion, err = r.varintByte(); err != nil {
		return err
	}
	if pb.MinorVersion, err = r.varintByte(); err != nil {
		return err
	}
	if blk.Timestamp, err = r.varint(); err != nil {
		return err
	}
	if pb.PrevID, err = r.hash(); err != nil {
		return err
	}
	if pb.Nonce, err = r.uint32(); err != nil {
		return err
	}
	if pb.NumberOfTransactions, err = r.varint(); err != nil {
		return err
	}
	if pb.NumberOfTransactions < 1 {
		return fmt.Errorf("%w: parent block without transactions", ErrInvalidValue)
	}
	if pb.MinerTxBranch, err = r.hashes(TreeDepth(pb.NumberOfTransactions)); err != nil {
		return err
	}
	if err := readTransaction(r, &pb.MinerTx, p); err != nil {
		return fmt.Errorf("parent miner tx: %w", err)
	}
	tag, ok, err := MergeMiningTagFromExtra(pb.MinerTx.Extra)
	if err != nil {
		return fmt.Errorf("parent miner tx extra: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: parent miner tx has no merge mining tag", ErrInvalidValue)
	}
	if tag.Depth > MaxBlockchainBranchDepth {
		return fmt.Errorf("%w: merge mining depth %d", ErrInvalidValue, tag.Depth)
	}
	pb.BlockchainBranch, err = r.hashes(int(tag.Depth))
	return err
}

// AppendBlock appends the canonical encoding of blk.
func AppendBlock(b []byte, blk *Block, p *fork.Profile) ([]byte, error) {
	b, err := AppendBlockHeader(b, &blk.BlockHeader, p)
	if err != nil {
		return nil, err
	}
	if p.PricingRecord {
		b = AppendPricingRecord(b, &blk.PricingRecord)
	}
	if p.Merged {
		if b, err = AppendParentBlock(b, blk, p, nil, false); err != nil {
			return nil, err
		}
	}
	if b, err = AppendTransaction(b, &blk.MinerTx, p); err != nil {
		return nil, fmt.Errorf("miner tx: %w", err)
	}
	b = AppendVarint(b, uint64(len(blk.TxHashes)))
	b = appendHashes(b, blk.TxHashes)
	if p.HasUncle {
		b = append(b, blk.Uncle[:]...)
	}
	return b, nil
}

// EncodeBlock returns the canonical blob of blk.
func EncodeBlock(blk *Block, p *fork.Profile) ([]byte, error) {
	return AppendBlock(nil, blk, p)
}

// DecodeBlock parses a complete block blob.
func DecodeBlock(blob []byte, p *fork.Profile) (*Block, error) {
	r := newReader(blob)
	blk := &Block{}
	if err := readBlockHeader(r, &blk.BlockHeader, p); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if p.PricingRecord {
		if err := readPricingRecord(r, &blk.PricingRecord); err != nil {
			return nil, fmt.Errorf("pricing record: %w", err)
		}
	}
	if p.Merged {
		if err := readParentBlock(r, blk, p); err != nil {
			return nil, fmt.Errorf("parent block: %w", err)
		}
	}
	if err := readTransaction(r, &blk.MinerTx, p); err != nil {
		return nil, fmt.Errorf("miner tx: %w", err)
	}
	n, err := r.count(HashSize)
	if err != nil {
		return nil, err
	}
	if blk.TxHashes, err = r.hashes(n); err != nil {
		return nil, err
	}
	if p.HasUncle {
		if blk.Uncle, err = r.hash(); err != nil {
			return nil, err
		}
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return blk, nil
}
