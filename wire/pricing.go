package wire

import (
	"encoding/binary"
)

// PricingRecordSize is the wire size of a PricingRecord.
const PricingRecordSize = 16*8 + 64

// PricingRecord is the signed exchange-rate snapshot carried by asset
// conversion blocks. The signature is carried opaquely.
type PricingRecord struct {
	XAG       uint64
	XAU       uint64
	XAUD      uint64
	XBTC      uint64
	XCAD      uint64
	XCHF      uint64
	XCNY      uint64
	XEUR      uint64
	XGBP      uint64
	XJPY      uint64
	XNOK      uint64
	XNZD      uint64
	XUSD      uint64
	Unused1   uint64
	Unused2   uint64
	Unused3   uint64
	Signature [64]byte
}

func (pr *PricingRecord) fields() []*uint64 {
	return []*uint64{
		&pr.XAG, &pr.XAU, &pr.XAUD, &pr.XBTC, &pr.XCAD, &pr.XCHF, &pr.XCNY, &pr.XEUR,
		&pr.XGBP, &pr.XJPY, &pr.XNOK, &pr.XNZD, &pr.XUSD, &pr.Unused1, &pr.Unused2, &pr.Unused3,
	}
}

// IsEmpty reports whether every rate and the signature are zero.
func (pr *PricingRecord) IsEmpty() bool {
	return *pr == PricingRecord{}
}

// AppendPricingRecord appends the fixed 192-byte encoding of pr.
func AppendPricingRecord(b []byte, pr *PricingRecord) []byte {
	for _, v := range pr.fields() {
		b = appendUint64(b, *v)
	}
	return append(b, pr.Signature[:]...)
}

func readPricingRecord(r *reader, pr *PricingRecord) error {
	b, err := r.next(PricingRecordSize)
	if err != nil {
		return err
	}
	for i, v := range pr.fields() {
		*v = binary.LittleEndian.Uint64(b[i*8:])
	}
	copy(pr.Signature[:], b[16*8:])
	return nil
}
