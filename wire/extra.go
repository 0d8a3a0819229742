package wire

import (
	"fmt"
)

// Extra field tags.
const (
	ExtraTagPadding           byte = 0x00
	ExtraTagPubKey            byte = 0x01
	ExtraTagNonce             byte = 0x02
	ExtraTagMergeMining       byte = 0x03
	ExtraTagAdditionalPubKeys byte = 0x04
)

// Extra nonce payload markers.
const (
	ExtraNoncePaymentID          byte = 0x00
	ExtraNonceEncryptedPaymentID byte = 0x01
)

const (
	// ExtraNonceMaxSize is the largest nonce payload a one-byte length can carry.
	ExtraNonceMaxSize = 255

	// ExtraPaddingMaxSize bounds a padding field, tag byte included.
	ExtraPaddingMaxSize = 255
)

// ExtraField is one typed sub-field of a transaction's extra.
type ExtraField interface {
	extraTag() byte
}

// ExtraPadding is a run of zero bytes that extends to the end of extra.
// Size counts the tag byte.
type ExtraPadding struct {
	Size int
}

// ExtraPubKey is the transaction public key.
type ExtraPubKey struct {
	Key PublicKey
}

// ExtraNonce is a free-form payload of at most 255 bytes.
type ExtraNonce struct {
	Data []byte
}

// MergeMiningTag commits to a merge-mining Merkle root.
type MergeMiningTag struct {
	Depth      uint64
	MerkleRoot Hash
}

// ExtraAdditionalPubKeys holds per-output public keys for subaddresses.
type ExtraAdditionalPubKeys struct {
	Keys []PublicKey
}

func (ExtraPadding) extraTag() byte           { return ExtraTagPadding }
func (ExtraPubKey) extraTag() byte            { return ExtraTagPubKey }
func (ExtraNonce) extraTag() byte             { return ExtraTagNonce }
func (MergeMiningTag) extraTag() byte         { return ExtraTagMergeMining }
func (ExtraAdditionalPubKeys) extraTag() byte { return ExtraTagAdditionalPubKeys }

// ParseExtra splits extra into typed fields. Any unknown tag aborts the
// whole parse.
func ParseExtra(extra []byte) ([]ExtraField, error) {
	var fields []ExtraField
	for off := 0; off < len(extra); {
		f, n, err := ReadExtraField(extra[off:])
		if err != nil {
			return nil, fmt.Errorf("extra offset %d: %w", off, err)
		}
		fields = append(fields, f)
		off += n
	}
	return fields, nil
}

// ReadExtraField decodes the field at the front of b and returns it with
// the number of bytes consumed.
func ReadExtraField(b []byte) (ExtraField, int, error) {
	r := newReader(b)
	tag, err := r.readByte()
	if err != nil {
		return nil, 0, err
	}
	var f ExtraField
	switch tag {
	case ExtraTagPadding:
		size := 1
		for !r.eof() {
			c, _ := r.readByte()
			if c != 0 {
				return nil, 0, fmt.Errorf("%w: non-zero padding byte", ErrInvalidExtraField)
			}
			size++
		}
		if size > ExtraPaddingMaxSize {
			return nil, 0, fmt.Errorf("%w: padding of %d bytes", ErrInvalidExtraField, size)
		}
		f = ExtraPadding{Size: size}
	case ExtraTagPubKey:
		k, err := r.hash()
		if err != nil {
			return nil, 0, err
		}
		f = ExtraPubKey{Key: PublicKey(k)}
	case ExtraTagNonce:
		n, err := r.readByte()
		if err != nil {
			return nil, 0, err
		}
		data, err := r.bytes(int(n))
		if err != nil {
			return nil, 0, err
		}
		f = ExtraNonce{Data: data}
	case ExtraTagMergeMining:
		body, err := r.varBytes()
		if err != nil {
			return nil, 0, err
		}
		tag, err := decodeMergeMiningBody(body)
		if err != nil {
			return nil, 0, err
		}
		f = tag
	case ExtraTagAdditionalPubKeys:
		n, err := r.count(HashSize)
		if err != nil {
			return nil, 0, err
		}
		hs, _ := r.hashes(n)
		keys := make([]PublicKey, n)
		for i := range hs {
			keys[i] = PublicKey(hs[i])
		}
		f = ExtraAdditionalPubKeys{Keys: keys}
	default:
		return nil, 0, fmt.Errorf("%w: 0x%02x", ErrUnknownExtraTag, tag)
	}
	return f, r.off, nil
}

func decodeMergeMiningBody(body []byte) (MergeMiningTag, error) {
	var tag MergeMiningTag
	r := newReader(body)
	var err error
	if tag.Depth, err = r.varint(); err != nil {
		return tag, err
	}
	if tag.MerkleRoot, err = r.hash(); err != nil {
		return tag, err
	}
	return tag, r.done()
}

// AppendExtraField appends the encoding of f to b.
func AppendExtraField(b []byte, f ExtraField) ([]byte, error) {
	switch v := f.(type) {
	case ExtraPadding:
		if v.Size < 1 || v.Size > ExtraPaddingMaxSize {
			return nil, fmt.Errorf("%w: padding size %d", ErrEncode, v.Size)
		}
		return append(b, make([]byte, v.Size)...), nil
	case ExtraPubKey:
		b = append(b, ExtraTagPubKey)
		return append(b, v.Key[:]...), nil
	case ExtraNonce:
		if len(v.Data) > ExtraNonceMaxSize {
			return nil, fmt.Errorf("%w: extra nonce of %d bytes", ErrEncode, len(v.Data))
		}
		b = append(b, ExtraTagNonce, byte(len(v.Data)))
		return append(b, v.Data...), nil
	case MergeMiningTag:
		body := AppendVarint(nil, v.Depth)
		body = append(body, v.MerkleRoot[:]...)
		b = append(b, ExtraTagMergeMining)
		return AppendVarBytes(b, body), nil
	case ExtraAdditionalPubKeys:
		b = append(b, ExtraTagAdditionalPubKeys)
		b = AppendVarint(b, uint64(len(v.Keys)))
		for i := range v.Keys {
			b = append(b, v.Keys[i][:]...)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: extra field %T", ErrEncode, f)
	}
}

// EncodeExtra serializes fields in order.
func EncodeExtra(fields []ExtraField) ([]byte, error) {
	var b []byte
	for i, f := range fields {
		if _, ok := f.(ExtraPadding); ok && i != len(fields)-1 {
			return nil, fmt.Errorf("%w: padding must be the last extra field", ErrEncode)
		}
		var err error
		if b, err = AppendExtraField(b, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// TxPubKeyFromExtra returns the first transaction public key in extra.
func TxPubKeyFromExtra(extra []byte) (PublicKey, bool) {
	fields, err := ParseExtra(extra)
	if err != nil {
		return PublicKey{}, false
	}
	for _, f := range fields {
		if pk, ok := f.(ExtraPubKey); ok {
			return pk.Key, true
		}
	}
	return PublicKey{}, false
}

// AppendPubKeyToExtra appends a transaction public key field.
func AppendPubKeyToExtra(extra []byte, key PublicKey) []byte {
	extra = append(extra, ExtraTagPubKey)
	return append(extra, key[:]...)
}

// AppendNonceToExtra appends a nonce field carrying data.
func AppendNonceToExtra(extra, data []byte) ([]byte, error) {
	return AppendExtraField(extra, ExtraNonce{Data: data})
}

// AppendMergeMiningTagToExtra appends a merge-mining tag field.
func AppendMergeMiningTagToExtra(extra []byte, tag MergeMiningTag) []byte {
	out, _ := AppendExtraField(extra, tag)
	return out
}

// MergeMiningTagFromExtra returns the first merge-mining tag in extra.
func MergeMiningTagFromExtra(extra []byte) (MergeMiningTag, bool, error) {
	fields, err := ParseExtra(extra)
	if err != nil {
		return MergeMiningTag{}, false, err
	}
	for _, f := range fields {
		if tag, ok := f.(MergeMiningTag); ok {
			return tag, true, nil
		}
	}
	return MergeMiningTag{}, false, nil
}

// ExtraNonceFromExtra returns the payload of the first nonce field.
func ExtraNonceFromExtra(extra []byte) ([]byte, bool) {
	fields, err := ParseExtra(extra)
	if err != nil {
		return nil, false
	}
	for _, f := range fields {
		if n, ok := f.(ExtraNonce); ok {
			return n.Data, true
		}
	}
	return nil, false
}

// PaymentIDNonce builds a nonce payload carrying a 32-byte payment id.
func PaymentIDNonce(id Hash) []byte {
	out := make([]byte, 0, 1+HashSize)
	out = append(out, ExtraNoncePaymentID)
	return append(out, id[:]...)
}

// PaymentIDFromNonce extracts a 32-byte payment id from a nonce payload.
func PaymentIDFromNonce(nonce []byte) (Hash, bool) {
	var id Hash
	if len(nonce) != 1+HashSize || nonce[0] != ExtraNoncePaymentID {
		return id, false
	}
	copy(id[:], nonce[1:])
	return id, true
}

// EncryptedPaymentIDFromNonce extracts an 8-byte encrypted payment id.
func EncryptedPaymentIDFromNonce(nonce []byte) ([8]byte, bool) {
	var id [8]byte
	if len(nonce) != 1+len(id) || nonce[0] != ExtraNonceEncryptedPaymentID {
		return id, false
	}
	copy(id[:], nonce[1:])
	return id, true
}
