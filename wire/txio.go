package wire

import (
	"fmt"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// Variant discriminants for inputs and output targets.
const (
	TagTxInGen       byte = 0xff
	TagTxInToKey     byte = 0x02
	TagTxInOffshore  byte = 0x03
	TagTxInOnshore   byte = 0x04
	TagTxOutToKey    byte = 0x02
	TagTxOutOffshore byte = 0x03
)

// TxIn is one of TxInGen, TxInToKey, TxInOffshore or TxInOnshore.
type TxIn interface {
	txInTag() byte
}

// TxInGen is the coinbase input; it carries the block height.
type TxInGen struct {
	Height uint64
}

// TxInToKey spends an output through a ring of decoys.
type TxInToKey struct {
	Amount     uint64
	KeyOffsets []uint64
	KeyImage   KeyImage
}

// TxInOffshore converts a base-asset input into an offshore asset.
type TxInOffshore TxInToKey

// TxInOnshore converts an offshore-asset input back into the base asset.
type TxInOnshore TxInToKey

func (TxInGen) txInTag() byte      { return TagTxInGen }
func (TxInToKey) txInTag() byte    { return TagTxInToKey }
func (TxInOffshore) txInTag() byte { return TagTxInOffshore }
func (TxInOnshore) txInTag() byte  { return TagTxInOnshore }

// RingInput returns the amount and key offsets of a key-shaped input.
// ok is false for generation inputs.
func RingInput(in TxIn) (amount uint64, offsets []uint64, ok bool) {
	switch v := in.(type) {
	case TxInToKey:
		return v.Amount, v.KeyOffsets, true
	case TxInOffshore:
		return v.Amount, v.KeyOffsets, true
	case TxInOnshore:
		return v.Amount, v.KeyOffsets, true
	default:
		return 0, nil, false
	}
}

// TxOutTarget is one of TxOutToKey or TxOutOffshore.
type TxOutTarget interface {
	txOutTag() byte
}

// TxOutToKey pays to a one-time public key.
type TxOutToKey struct {
	Key PublicKey
}

// TxOutOffshore pays an offshore asset to a one-time public key.
type TxOutOffshore struct {
	Key PublicKey
}

func (TxOutToKey) txOutTag() byte    { return TagTxOutToKey }
func (TxOutOffshore) txOutTag() byte { return TagTxOutOffshore }

// TxOut is an amount and its target.
type TxOut struct {
	Amount uint64
	Target TxOutTarget
}

// OutputKey returns the one-time key of an output target.
func OutputKey(t TxOutTarget) (PublicKey, bool) {
	switch v := t.(type) {
	case TxOutToKey:
		return v.Key, true
	case TxOutOffshore:
		return v.Key, true
	default:
		return PublicKey{}, false
	}
}

// ---------------------------------------------------------------------------
// Codec
// ---------------------------------------------------------------------------

func appendRing(b []byte, amount uint64, offsets []uint64, image KeyImage) []byte {
	b = AppendVarint(b, amount)
	b = AppendVarint(b, uint64(len(offsets)))
	for _, o := range offsets {
		b = AppendVarint(b, o)
	}
	return append(b, image[:]...)
}

func appendTxIn(b []byte, in TxIn, p *fork.Profile) ([]byte, error) {
	switch v := in.(type) {
	case TxInGen:
		b = append(b, TagTxInGen)
		return AppendVarint(b, v.Height), nil
	case TxInToKey:
		b = append(b, TagTxInToKey)
		return appendRing(b, v.Amount, v.KeyOffsets, v.KeyImage), nil
	case TxInOffshore:
		if !p.AssetConversion {
			return nil, fmt.Errorf("%w: offshore input on %s", ErrEncode, p)
		}
		b = append(b, TagTxInOffshore)
		return appendRing(b, v.Amount, v.KeyOffsets, v.KeyImage), nil
	case TxInOnshore:
		if !p.AssetConversion {
			return nil, fmt.Errorf("%w: onshore input on %s", ErrEncode, p)
		}
		b = append(b, TagTxInOnshore)
		return appendRing(b, v.Amount, v.KeyOffsets, v.KeyImage), nil
	default:
		return nil, fmt.Errorf("%w: input type %T", ErrEncode, in)
	}
}

func readRing(r *reader) (TxInToKey, error) {
	var in TxInToKey
	var err error
	if in.Amount, err = r.varint(); err != nil {
		return in, err
	}
	n, err := r.count(1)
	if err != nil {
		return in, err
	}
	if n > 0 {
		in.KeyOffsets = make([]uint64, n)
		for i := range in.KeyOffsets {
			if in.KeyOffsets[i], err = r.varint(); err != nil {
				return in, err
			}
		}
	}
	img, err := r.hash()
	if err != nil {
		return in, err
	}
	in.KeyImage = KeyImage(img)
	return in, nil
}

func readTxIn(r *reader, p *fork.Profile) (TxIn, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch {
	case tag == TagTxInGen:
		h, err := r.varint()
		if err != nil {
			return nil, err
		}
		return TxInGen{Height: h}, nil
	case tag == TagTxInToKey:
		return readRing(r)
	case tag == TagTxInOffshore && p.AssetConversion:
		in, err := readRing(r)
		return TxInOffshore(in), err
	case tag == TagTxInOnshore && p.AssetConversion:
		in, err := readRing(r)
		return TxInOnshore(in), err
	default:
		return nil, fmt.Errorf("%w: input 0x%02x on %s", ErrUnknownVariant, tag, p)
	}
}

func appendTxOut(b []byte, out TxOut, p *fork.Profile) ([]byte, error) {
	b = AppendVarint(b, out.Amount)
	switch v := out.Target.(type) {
	case TxOutToKey:
		b = append(b, TagTxOutToKey)
		return append(b, v.Key[:]...), nil
	case TxOutOffshore:
		if !p.AssetConversion {
			return nil, fmt.Errorf("%w: offshore output on %s", ErrEncode, p)
		}
		b = append(b, TagTxOutOffshore)
		return append(b, v.Key[:]...), nil
	default:
		return nil, fmt.Errorf("%w: output target %T", ErrEncode, out.Target)
	}
}

func readTxOut(r *reader, p *fork.Profile) (TxOut, error) {
	var out TxOut
	var err error
	if out.Amount, err = r.varint(); err != nil {
		return out, err
	}
	tag, err := r.readByte()
	if err != nil {
		return out, err
	}
	if tag != TagTxOutToKey && (tag != TagTxOutOffshore || !p.AssetConversion) {
		return out, fmt.Errorf("%w: output 0x%02x on %s", ErrUnknownVariant, tag, p)
	}
	key, err := r.hash()
	if err != nil {
		return out, err
	}
	if tag == TagTxOutToKey {
		out.Target = TxOutToKey{Key: PublicKey(key)}
	} else {
		out.Target = TxOutOffshore{Key: PublicKey(key)}
	}
	return out, nil
}
