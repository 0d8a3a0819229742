package wire_test

import (
	"testing"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/wire"
	"github.com/bitfsorg/libcryptonote-go/wire/wiretest"
)

// FuzzDecodeBlockNoPanic ensures DecodeBlock never panics for any profile.
func FuzzDecodeBlockNoPanic(f *testing.F) {
	for _, p := range fork.All() {
		if blob, err := wire.EncodeBlock(wiretest.Block(p, 2), p); err == nil {
			f.Add(blob, uint8(p.ID))
		}
	}
	f.Add([]byte{}, uint8(0))
	f.Add([]byte{0x01, 0x00, 0xff}, uint8(2))

	f.Fuzz(func(t *testing.T, data []byte, id uint8) {
		p, err := fork.ByID(fork.BlobType(id % uint8(len(fork.All()))))
		if err != nil {
			return
		}
		blk, err := wire.DecodeBlock(data, p)
		if err != nil {
			return
		}
		if _, err := wire.EncodeBlock(blk, p); err != nil {
			t.Fatalf("re-encode of decoded block failed: %v", err)
		}
	})
}

// FuzzDecodeTransactionNoPanic ensures DecodeTransaction never panics.
func FuzzDecodeTransactionNoPanic(f *testing.F) {
	seeds := []wire.Transaction{
		wiretest.Coinbase(wire.TxVersion1, 1, 1, wiretest.CoinbaseExtra(4)),
		wiretest.V1Transfer(3),
		wiretest.RctTransfer(wire.RctTypeCLSAG, 1, 2, 4),
		wiretest.RctTransfer(wire.RctTypeFull, 1, 1, 2),
	}
	for i := range seeds {
		if blob, err := wire.EncodeTransaction(&seeds[i], fork.Cryptonote); err == nil {
			f.Add(blob)
		}
	}
	f.Add([]byte{0x02, 0x00, 0x01, 0xff, 0x00, 0x00, 0x00, 0x05})

	f.Fuzz(func(t *testing.T, data []byte) {
		wire.DecodeTransaction(data, fork.Cryptonote)
		wire.DecodeTransaction(data, fork.Loki)
		wire.DecodeTransaction(data, fork.XHV)
	})
}

// FuzzParseExtraNoPanic ensures ParseExtra never panics.
func FuzzParseExtraNoPanic(f *testing.F) {
	f.Add(wiretest.CoinbaseExtra(8))
	f.Add(wire.AppendMergeMiningTagToExtra(nil, wire.MergeMiningTag{Depth: 1}))
	f.Add([]byte{0x00, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		wire.ParseExtra(data)
	})
}
