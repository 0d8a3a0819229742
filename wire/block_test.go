package wire_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/wire"
	"github.com/bitfsorg/libcryptonote-go/wire/wiretest"
)

func TestBlock_RoundTripAllProfiles(t *testing.T) {
	for _, p := range fork.All() {
		for _, txCount := range []int{0, 3} {
			t.Run(p.Name, func(t *testing.T) {
				blk := wiretest.Block(p, txCount)
				blob, err := wire.EncodeBlock(blk, p)
				require.NoError(t, err)

				got, err := wire.DecodeBlock(blob, p)
				require.NoError(t, err)
				assert.Equal(t, blk, got)

				again, err := wire.EncodeBlock(got, p)
				require.NoError(t, err)
				assert.Equal(t, blob, again)
			})
		}
	}
}

func TestBlockHeader_Layout(t *testing.T) {
	blk := wiretest.Block(fork.Cryptonote, 0)
	b, err := wire.AppendBlockHeader(nil, &blk.BlockHeader, fork.Cryptonote)
	require.NoError(t, err)

	ts := wire.AppendVarint(nil, blk.Timestamp)
	require.Len(t, b, 2+len(ts)+32+4)
	assert.Equal(t, []byte{7, 7}, b[:2])
	assert.Equal(t, ts, b[2:2+len(ts)])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, b[len(b)-4:])
}

func TestBlockHeader_ProfileSizes(t *testing.T) {
	base := func(p *fork.Profile) int {
		blk := wiretest.Block(p, 0)
		return 2 + wire.VarintSize(blk.Timestamp) + 32
	}
	tests := []struct {
		p     *fork.Profile
		extra int
	}{
		{fork.Cryptonote, 4},
		{fork.Aeon, 8},
		{fork.Cuckoo, 4 + 32*4 + 8},
		{fork.Tube, 4 + 40*4 + 8},
		{fork.XTA, 4 + 48*4 + 8},
		{fork.XTNC, 4 + 32*4},
	}
	for _, tt := range tests {
		t.Run(tt.p.Name, func(t *testing.T) {
			blk := wiretest.Block(tt.p, 0)
			b, err := wire.AppendBlockHeader(nil, &blk.BlockHeader, tt.p)
			require.NoError(t, err)
			assert.Len(t, b, base(tt.p)+tt.extra)
		})
	}
}

func TestBlockHeader_MergedOmitsTimestampAndNonce(t *testing.T) {
	blk := wiretest.Block(fork.Forknote2, 0)
	b, err := wire.AppendBlockHeader(nil, &blk.BlockHeader, fork.Forknote2)
	require.NoError(t, err)
	assert.Len(t, b, 2+32)
}

func TestBlockHeader_Errors(t *testing.T) {
	blk := wiretest.Block(fork.Cuckoo, 0)
	blk.Cycle = blk.Cycle[:31]
	_, err := wire.AppendBlockHeader(nil, &blk.BlockHeader, fork.Cuckoo)
	require.ErrorIs(t, err, wire.ErrEncode)

	blk = wiretest.Block(fork.Cryptonote, 0)
	blk.Nonce = 1 << 32
	_, err = wire.AppendBlockHeader(nil, &blk.BlockHeader, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)
}

func TestBlock_UncleAtTail(t *testing.T) {
	blk := wiretest.Block(fork.Cryptonote3, 2)
	blob, err := wire.EncodeBlock(blk, fork.Cryptonote3)
	require.NoError(t, err)
	assert.Equal(t, blk.Uncle[:], blob[len(blob)-32:])
	assert.Equal(t, blk.TxHashes[1][:], blob[len(blob)-64:len(blob)-32])
}

func TestBlock_PricingRecordFollowsHeader(t *testing.T) {
	blk := wiretest.Block(fork.XHV, 0)
	blob, err := wire.EncodeBlock(blk, fork.XHV)
	require.NoError(t, err)

	header, err := wire.AppendBlockHeader(nil, &blk.BlockHeader, fork.XHV)
	require.NoError(t, err)
	record := wire.AppendPricingRecord(nil, &blk.PricingRecord)
	require.Len(t, record, wire.PricingRecordSize)
	assert.Equal(t, record, blob[len(header):len(header)+wire.PricingRecordSize])
}

func TestBlock_MergedParent(t *testing.T) {
	p := fork.Forknote2
	blk := wiretest.Block(p, 1)
	blk.Parent.NumberOfTransactions = 3
	blk.Parent.MinerTxBranch = []wire.Hash{wiretest.Hash(0x44)}
	tag := wire.MergeMiningTag{Depth: 2, MerkleRoot: wiretest.Hash(0x03)}
	blk.Parent.MinerTx.Extra = wire.AppendMergeMiningTagToExtra(nil, tag)
	blk.Parent.BlockchainBranch = []wire.Hash{wiretest.Hash(0x50), wiretest.Hash(0x51)}

	blob, err := wire.EncodeBlock(blk, p)
	require.NoError(t, err)
	got, err := wire.DecodeBlock(blob, p)
	require.NoError(t, err)
	assert.Equal(t, blk, got)

	t.Run("branch length must match tree depth", func(t *testing.T) {
		bad := *blk
		bad.Parent.MinerTxBranch = nil
		_, err := wire.EncodeBlock(&bad, p)
		require.ErrorIs(t, err, wire.ErrEncode)
	})

	t.Run("blockchain branch must match tag depth", func(t *testing.T) {
		bad := *blk
		bad.Parent.BlockchainBranch = bad.Parent.BlockchainBranch[:1]
		_, err := wire.EncodeBlock(&bad, p)
		require.ErrorIs(t, err, wire.ErrEncode)
	})

	t.Run("parent miner tx needs a tag", func(t *testing.T) {
		bad := *blk
		bad.Parent.MinerTx.Extra = wiretest.CoinbaseExtra(4)
		_, err := wire.EncodeBlock(&bad, p)
		require.ErrorIs(t, err, wire.ErrEncode)
	})

	t.Run("zero transactions", func(t *testing.T) {
		bad := *blk
		bad.Parent.NumberOfTransactions = 0
		_, err := wire.EncodeBlock(&bad, p)
		require.ErrorIs(t, err, wire.ErrEncode)
	})
}

func TestAppendParentBlock_HeaderOnlyAndHashingForm(t *testing.T) {
	p := fork.Forknote2
	blk := wiretest.Block(p, 0)

	headerOnly, err := wire.AppendParentBlock(nil, blk, p, nil, true)
	require.NoError(t, err)
	root := wiretest.Hash(0x77)
	hashing, err := wire.AppendParentBlock(nil, blk, p, &root, true)
	require.NoError(t, err)

	assert.Len(t, hashing, len(headerOnly)+32)
	assert.Equal(t, byte(1), headerOnly[len(headerOnly)-1], "transaction count")
	assert.Equal(t, root[:], hashing[len(hashing)-33:len(hashing)-1])
}

func TestDecodeBlock_Errors(t *testing.T) {
	p := fork.Cryptonote
	blob, err := wire.EncodeBlock(wiretest.Block(p, 2), p)
	require.NoError(t, err)

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := wire.DecodeBlock(append(append([]byte(nil), blob...), 0x01), p)
		require.ErrorIs(t, err, wire.ErrTrailingBytes)
	})

	t.Run("truncated", func(t *testing.T) {
		for n := 0; n < len(blob); n += 7 {
			_, err := wire.DecodeBlock(blob[:n], p)
			require.ErrorIs(t, err, wire.ErrUnexpectedEOF, "length %d", n)
		}
	})

	t.Run("oversized major version", func(t *testing.T) {
		bad := append([]byte{0x80, 0x02}, blob[1:]...)
		_, err := wire.DecodeBlock(bad, p)
		require.ErrorIs(t, err, wire.ErrInvalidValue)
	})

	t.Run("missing uncle", func(t *testing.T) {
		_, err := wire.DecodeBlock(blob, fork.Cryptonote3)
		require.ErrorIs(t, err, wire.ErrUnexpectedEOF)
	})
}

func TestBlockHeight_FromFixture(t *testing.T) {
	h, err := wire.BlockHeight(wiretest.Block(fork.Cryptonote, 0))
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), h)
}

func TestDecodeBlock_MoneroGenesis(t *testing.T) {
	blob, err := hex.DecodeString(wiretest.GenesisBlockHex)
	require.NoError(t, err)

	blk, err := wire.DecodeBlock(blob, fork.Cryptonote)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), blk.MajorVersion)
	assert.Equal(t, uint64(0), blk.Timestamp)
	assert.Equal(t, wire.ZeroHash, blk.PrevID)
	assert.Equal(t, uint64(10000), blk.Nonce)
	assert.Equal(t, uint64(60), blk.MinerTx.UnlockTime)
	require.Len(t, blk.MinerTx.Outputs, 1)
	assert.Equal(t, uint64(17592186044415), blk.MinerTx.Outputs[0].Amount)
	assert.Empty(t, blk.TxHashes)

	again, err := wire.EncodeBlock(blk, fork.Cryptonote)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
}
