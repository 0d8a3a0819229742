package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libcryptonote-go/fork"
	"github.com/bitfsorg/libcryptonote-go/wire"
	"github.com/bitfsorg/libcryptonote-go/wire/wiretest"
)

// --- Helper functions ---

func roundTripTx(t *testing.T, tx *wire.Transaction, p *fork.Profile) []byte {
	t.Helper()
	blob, err := wire.EncodeTransaction(tx, p)
	require.NoError(t, err)
	got, err := wire.DecodeTransaction(blob, p)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	again, err := wire.EncodeTransaction(got, p)
	require.NoError(t, err)
	assert.Equal(t, blob, again)
	return blob
}

// --- Tests ---

func TestTransaction_CoinbaseV1(t *testing.T) {
	tx := wiretest.Coinbase(wire.TxVersion1, 10, 500, wiretest.CoinbaseExtra(4))
	blob := roundTripTx(t, &tx, fork.Cryptonote)

	// version, unlock, 1 input: 0xff height, 1 output, extra
	assert.Equal(t, byte(0x01), blob[0])
	assert.Equal(t, byte(70), blob[1])
	assert.Equal(t, byte(0x01), blob[2])
	assert.Equal(t, byte(0xff), blob[3])
	assert.Equal(t, byte(10), blob[4])
}

func TestTransaction_CoinbaseV2HasNullRct(t *testing.T) {
	tx := wiretest.Coinbase(wire.TxVersion2, 10, 500, wiretest.CoinbaseExtra(4))
	blob := roundTripTx(t, &tx, fork.Cryptonote)
	assert.Equal(t, byte(wire.RctTypeNull), blob[len(blob)-1])
}

func TestTransaction_V1RingSignatures(t *testing.T) {
	tx := wiretest.V1Transfer(3)
	blob := roundTripTx(t, &tx, fork.Cryptonote)

	prefix, err := wire.AppendTransactionPrefix(nil, &tx.TransactionPrefix, fork.Cryptonote)
	require.NoError(t, err)
	assert.Len(t, blob, len(prefix)+3*64)
}

func TestTransaction_V1MissingSignatures(t *testing.T) {
	tx := wiretest.V1Transfer(2)
	tx.Signatures = nil
	_, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)

	tx = wiretest.V1Transfer(2)
	tx.Signatures[0] = tx.Signatures[0][:1]
	_, err = wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)
}

func TestTransaction_RctTypes(t *testing.T) {
	tests := []struct {
		name    string
		typ     wire.RctType
		inputs  int
		outputs int
		ring    int
	}{
		{"full", wire.RctTypeFull, 1, 2, 3},
		{"simple", wire.RctTypeSimple, 2, 2, 3},
		{"bulletproof", wire.RctTypeBulletproof, 2, 2, 11},
		{"bulletproof2", wire.RctTypeBulletproof2, 1, 2, 11},
		{"clsag", wire.RctTypeCLSAG, 2, 2, 11},
		{"bulletproof plus", wire.RctTypeBulletproofPlus, 1, 2, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := wiretest.RctTransfer(tt.typ, tt.inputs, tt.outputs, tt.ring)
			roundTripTx(t, &tx, fork.Cryptonote)

			mixin, err := wire.Mixin(&tx.TransactionPrefix)
			require.NoError(t, err)
			assert.Equal(t, tt.ring-1, mixin)
		})
	}
}

func TestTransaction_CompactEcdhDropsMask(t *testing.T) {
	tx := wiretest.RctTransfer(wire.RctTypeCLSAG, 1, 1, 2)
	tx.RCT.EcdhInfo[0].Mask[0] = 0x55
	blob, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.NoError(t, err)

	got, err := wire.DecodeTransaction(blob, fork.Cryptonote)
	require.NoError(t, err)
	assert.Equal(t, wire.Key{}, got.RCT.EcdhInfo[0].Mask)
	assert.Equal(t, tx.RCT.EcdhInfo[0].Amount, got.RCT.EcdhInfo[0].Amount)
}

func TestTransaction_RctCountMismatch(t *testing.T) {
	tx := wiretest.RctTransfer(wire.RctTypeCLSAG, 2, 2, 4)
	tx.RCT.Prunable.CLSAGs = tx.RCT.Prunable.CLSAGs[:1]
	_, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)

	tx = wiretest.RctTransfer(wire.RctTypeFull, 1, 2, 4)
	tx.RCT.Prunable.MGs[0].SS = tx.RCT.Prunable.MGs[0].SS[:3]
	_, err = wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)
}

func TestTransaction_UnknownRctType(t *testing.T) {
	tx := wiretest.RctTransfer(wire.RctTypeCLSAG, 1, 1, 2)
	blob, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.NoError(t, err)

	prefix, err := wire.AppendTransactionPrefix(nil, &tx.TransactionPrefix, fork.Cryptonote)
	require.NoError(t, err)
	blob[len(prefix)] = 0x09
	_, err = wire.DecodeTransaction(blob, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrUnknownVariant)
}

func TestTransaction_LokiPrefix(t *testing.T) {
	for _, version := range []uint64{wire.LokiVersionPerOutputUnlock, wire.LokiVersionTxTypes} {
		tx := wiretest.Coinbase(version, 5, 100, wiretest.CoinbaseExtra(0))
		tx.OutputUnlockTimes = []uint64{65}
		if version == wire.LokiVersionPerOutputUnlock {
			tx.IsDeregister = true
		} else {
			tx.Type = 2
		}
		roundTripTx(t, &tx, fork.Loki)
	}
}

func TestTransaction_LokiUnlockTimeMismatch(t *testing.T) {
	tx := wiretest.Coinbase(wire.LokiVersionPerOutputUnlock, 5, 100, nil)
	_, err := wire.EncodeTransaction(&tx, fork.Loki)
	require.ErrorIs(t, err, wire.ErrEncode)
}

func TestTransaction_OffshoreFields(t *testing.T) {
	tx := wiretest.RctTransfer(wire.RctTypeCLSAG, 1, 2, 3)
	tx.Version = wire.OffshoreVersion
	tx.Inputs[0] = wire.TxInOffshore(tx.Inputs[0].(wire.TxInToKey))
	tx.Outputs[1].Target = wire.TxOutOffshore{Key: wiretest.Key(0x99)}
	tx.PricingRecordHeight = 4321
	tx.OffshoreData = []byte("XUSD-XHV")
	roundTripTx(t, &tx, fork.XHV)

	_, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrEncode)
}

func TestDecodeTransaction_RejectsOffshoreTagsOutsideXHV(t *testing.T) {
	tx := wiretest.V1Transfer(1)
	tx.Inputs[0] = wire.TxInOnshore(tx.Inputs[0].(wire.TxInToKey))
	blob, err := wire.EncodeTransaction(&tx, fork.XHV)
	require.NoError(t, err)

	_, err = wire.DecodeTransaction(blob, fork.Cryptonote)
	require.ErrorIs(t, err, wire.ErrUnknownVariant)
}

func TestDecodeTransaction_Errors(t *testing.T) {
	tx := wiretest.V1Transfer(2)
	blob, err := wire.EncodeTransaction(&tx, fork.Cryptonote)
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 1, 5, len(blob) / 2, len(blob) - 1} {
			_, err := wire.DecodeTransaction(blob[:n], fork.Cryptonote)
			require.ErrorIs(t, err, wire.ErrUnexpectedEOF, "length %d", n)
		}
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := wire.DecodeTransaction(append(blob, 0x00), fork.Cryptonote)
		require.ErrorIs(t, err, wire.ErrTrailingBytes)
	})

	t.Run("unknown input tag", func(t *testing.T) {
		bad := append([]byte(nil), blob...)
		bad[3] = 0x07
		_, err := wire.DecodeTransaction(bad, fork.Cryptonote)
		require.ErrorIs(t, err, wire.ErrUnknownVariant)
	})

	t.Run("version zero", func(t *testing.T) {
		_, err := wire.DecodeTransaction([]byte{0x00, 0x00, 0x00, 0x00, 0x00}, fork.Cryptonote)
		require.ErrorIs(t, err, wire.ErrDecode)
	})
}

func TestMixin(t *testing.T) {
	tx := wiretest.Coinbase(wire.TxVersion2, 1, 1, nil)
	mixin, err := wire.Mixin(&tx.TransactionPrefix)
	require.NoError(t, err)
	assert.Zero(t, mixin)

	empty := &wire.TransactionPrefix{Inputs: []wire.TxIn{wire.TxInToKey{}}}
	_, err = wire.Mixin(empty)
	require.ErrorIs(t, err, wire.ErrInvalidValue)
}
