package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helper functions ---

func filled(seed byte) Hash {
	var h Hash
	for i := range h {
		h[i] = seed
	}
	return h
}

// --- Tests ---

func TestParseExtra_AllFields(t *testing.T) {
	fields := []ExtraField{
		ExtraPubKey{Key: PublicKey(filled(0x01))},
		ExtraNonce{Data: []byte{1, 2, 3}},
		MergeMiningTag{Depth: 3, MerkleRoot: filled(0x02)},
		ExtraAdditionalPubKeys{Keys: []PublicKey{PublicKey(filled(0x03)), PublicKey(filled(0x04))}},
		ExtraPadding{Size: 5},
	}
	extra, err := EncodeExtra(fields)
	require.NoError(t, err)

	got, err := ParseExtra(extra)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestAppendMergeMiningTag_WireSize(t *testing.T) {
	extra := AppendMergeMiningTagToExtra(nil, MergeMiningTag{MerkleRoot: filled(0xaa)})
	require.Len(t, extra, 35)
	assert.Equal(t, byte(ExtraTagMergeMining), extra[0])
	assert.Equal(t, byte(33), extra[1])
	assert.Equal(t, byte(0), extra[2])
	assert.True(t, bytes.Equal(extra[3:], bytes.Repeat([]byte{0xaa}, 32)))
}

func TestParseExtra_Errors(t *testing.T) {
	tests := []struct {
		name  string
		extra []byte
		want  error
	}{
		{"unknown tag", []byte{0x07, 0x00}, ErrUnknownExtraTag},
		{"short pubkey", append([]byte{ExtraTagPubKey}, make([]byte, 31)...), ErrUnexpectedEOF},
		{"short nonce", []byte{ExtraTagNonce, 4, 1, 2}, ErrUnexpectedEOF},
		{"non-zero padding", []byte{ExtraTagPadding, 0, 1}, ErrInvalidExtraField},
		{"oversized padding", make([]byte, ExtraPaddingMaxSize+1), ErrInvalidExtraField},
		{"mm tag body too long", append([]byte{ExtraTagMergeMining, 34, 0}, make([]byte, 33)...), ErrTrailingBytes},
		{"mm tag body too short", append([]byte{ExtraTagMergeMining, 32, 0}, make([]byte, 31)...), ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExtra(tt.extra)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseExtra_UnknownTagAfterKnownFields(t *testing.T) {
	extra := AppendPubKeyToExtra(nil, PublicKey(filled(0x01)))
	extra = append(extra, 0xde)
	_, err := ParseExtra(extra)
	require.ErrorIs(t, err, ErrUnknownExtraTag)

	_, ok := TxPubKeyFromExtra(extra)
	assert.False(t, ok)
}

func TestEncodeExtra_PaddingMustBeLast(t *testing.T) {
	_, err := EncodeExtra([]ExtraField{ExtraPadding{Size: 2}, ExtraPubKey{}})
	require.ErrorIs(t, err, ErrEncode)
}

func TestAppendNonceToExtra_TooLarge(t *testing.T) {
	_, err := AppendNonceToExtra(nil, make([]byte, ExtraNonceMaxSize+1))
	require.ErrorIs(t, err, ErrEncode)

	extra, err := AppendNonceToExtra(nil, make([]byte, ExtraNonceMaxSize))
	require.NoError(t, err)
	assert.Len(t, extra, 2+ExtraNonceMaxSize)
}

func TestExtraLookups(t *testing.T) {
	key := PublicKey(filled(0x11))
	extra := AppendPubKeyToExtra(nil, key)
	extra, err := AppendNonceToExtra(extra, PaymentIDNonce(filled(0x22)))
	require.NoError(t, err)
	extra = AppendMergeMiningTagToExtra(extra, MergeMiningTag{Depth: 2, MerkleRoot: filled(0x33)})

	got, ok := TxPubKeyFromExtra(extra)
	require.True(t, ok)
	assert.Equal(t, key, got)

	nonce, ok := ExtraNonceFromExtra(extra)
	require.True(t, ok)
	id, ok := PaymentIDFromNonce(nonce)
	require.True(t, ok)
	assert.Equal(t, filled(0x22), id)
	_, ok = EncryptedPaymentIDFromNonce(nonce)
	assert.False(t, ok)

	tag, ok, err := MergeMiningTagFromExtra(extra)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), tag.Depth)
	assert.Equal(t, filled(0x33), tag.MerkleRoot)
}

func TestEncryptedPaymentIDFromNonce(t *testing.T) {
	nonce := []byte{ExtraNonceEncryptedPaymentID, 1, 2, 3, 4, 5, 6, 7, 8}
	id, ok := EncryptedPaymentIDFromNonce(nonce)
	require.True(t, ok)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, id)

	_, ok = PaymentIDFromNonce(nonce)
	assert.False(t, ok)
}

func TestMergeMiningTagFromExtra_Missing(t *testing.T) {
	_, ok, err := MergeMiningTagFromExtra(AppendPubKeyToExtra(nil, PublicKey{}))
	require.NoError(t, err)
	assert.False(t, ok)
}
