package wire

import (
	"fmt"
)

// Key is a 32-byte RingCT scalar or point.
type Key [32]byte

// RctType selects the layout of the ring-confidential signature.
type RctType uint8

// RingCT signature types.
const (
	RctTypeNull RctType = iota
	RctTypeFull
	RctTypeSimple
	RctTypeBulletproof
	RctTypeBulletproof2
	RctTypeCLSAG
	RctTypeBulletproofPlus
)

// Valid reports whether t is a known signature type.
func (t RctType) Valid() bool { return t <= RctTypeBulletproofPlus }

// compactEcdh reports whether ecdh info carries only an 8-byte amount.
func (t RctType) compactEcdh() bool {
	return t == RctTypeBulletproof2 || t == RctTypeCLSAG || t == RctTypeBulletproofPlus
}

// usesBulletproofs reports whether range proofs are bulletproofs.
func (t RctType) usesBulletproofs() bool {
	return t == RctTypeBulletproof || t == RctTypeBulletproof2 || t == RctTypeCLSAG || t == RctTypeBulletproofPlus
}

// usesCLSAG reports whether ring signatures are CLSAGs instead of MLSAGs.
func (t RctType) usesCLSAG() bool { return t == RctTypeCLSAG || t == RctTypeBulletproofPlus }

// simpleMG reports whether there is one MLSAG per input.
func (t RctType) simpleMG() bool {
	return t == RctTypeSimple || t == RctTypeBulletproof || t == RctTypeBulletproof2
}

// EcdhTuple is the encrypted mask and amount of one output.
type EcdhTuple struct {
	Mask   Key
	Amount Key
}

// BoroSig is a Borromean range signature.
type BoroSig struct {
	S0 [64]Key
	S1 [64]Key
	Ee Key
}

// RangeSig is a pre-bulletproof range proof.
type RangeSig struct {
	Asig BoroSig
	Ci   [64]Key
}

// Bulletproof is an aggregated range proof. V is restored from outPk and
// never serialized.
type Bulletproof struct {
	A, S, T1, T2, Taux, Mu Key
	L, R                   []Key
	Aa, B, T               Key
}

// BulletproofPlus is an aggregated bulletproof+ range proof.
type BulletproofPlus struct {
	A, A1, B, R1, S1, D1 Key
	L, R                 []Key
}

// MgSig is an MLSAG ring signature without its key images.
type MgSig struct {
	SS [][]Key
	CC Key
}

// Clsag is a CLSAG ring signature without its key image.
type Clsag struct {
	S  []Key
	C1 Key
	D  Key
}

// RctPrunable holds the parts of a RingCT signature that may be pruned.
type RctPrunable struct {
	RangeSigs        []RangeSig
	Bulletproofs     []Bulletproof
	BulletproofsPlus []BulletproofPlus
	MGs              []MgSig
	CLSAGs           []Clsag
	PseudoOuts       []Key
}

// RctSig is the ring-confidential signature of a version 2+ transaction.
// PseudoOuts is only serialized for RctTypeSimple; later types keep them in
// the prunable part.
type RctSig struct {
	Type       RctType
	TxnFee     uint64
	PseudoOuts []Key
	EcdhInfo   []EcdhTuple
	OutPk      []Key
	Prunable   RctPrunable
}

// AppendRctBase serializes the base part of s for a transaction with the
// given input and output counts.
func AppendRctBase(b []byte, s *RctSig, inputs, outputs int) ([]byte, error) {
	b = append(b, byte(s.Type))
	if s.Type == RctTypeNull {
		return b, nil
	}
	if !s.Type.Valid() {
		return nil, fmt.Errorf("%w: rct type %d", ErrEncode, s.Type)
	}
	b = AppendVarint(b, s.TxnFee)
	if s.Type == RctTypeSimple {
		if len(s.PseudoOuts) != inputs {
			return nil, fmt.Errorf("%w: %d pseudo outs for %d inputs", ErrEncode, len(s.PseudoOuts), inputs)
		}
		b = appendKeys(b, s.PseudoOuts)
	}
	if len(s.EcdhInfo) != outputs {
		return nil, fmt.Errorf("%w: %d ecdh entries for %d outputs", ErrEncode, len(s.EcdhInfo), outputs)
	}
	for i := range s.EcdhInfo {
		if s.Type.compactEcdh() {
			b = append(b, s.EcdhInfo[i].Amount[:8]...)
		} else {
			b = append(b, s.EcdhInfo[i].Mask[:]...)
			b = append(b, s.EcdhInfo[i].Amount[:]...)
		}
	}
	if len(s.OutPk) != outputs {
		return nil, fmt.Errorf("%w: %d commitments for %d outputs", ErrEncode, len(s.OutPk), outputs)
	}
	return appendKeys(b, s.OutPk), nil
}

func readRctBase(r *reader, s *RctSig, inputs, outputs int) error {
	t, err := r.readByte()
	if err != nil {
		return err
	}
	s.Type = RctType(t)
	if s.Type == RctTypeNull {
		return nil
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: rct type %d", ErrUnknownVariant, t)
	}
	if s.TxnFee, err = r.varint(); err != nil {
		return err
	}
	if s.Type == RctTypeSimple {
		if s.PseudoOuts, err = r.keys(inputs); err != nil {
			return err
		}
	}
	size := 64
	if s.Type.compactEcdh() {
		size = 8
	}
	if err := r.need(outputs, size); err != nil {
		return err
	}
	if outputs > 0 {
		s.EcdhInfo = make([]EcdhTuple, outputs)
	}
	for i := range s.EcdhInfo {
		if s.Type.compactEcdh() {
			amount, _ := r.next(8)
			copy(s.EcdhInfo[i].Amount[:], amount)
			continue
		}
		s.EcdhInfo[i].Mask, _ = r.key()
		s.EcdhInfo[i].Amount, _ = r.key()
	}
	s.OutPk, err = r.keys(outputs)
	return err
}

// AppendRctPrunable serializes the prunable part of s. mixin is the ring
// size of the first input minus one.
func AppendRctPrunable(b []byte, s *RctSig, inputs, outputs, mixin int) ([]byte, error) {
	if s.Type == RctTypeNull {
		return b, nil
	}
	if !s.Type.Valid() {
		return nil, fmt.Errorf("%w: rct type %d", ErrEncode, s.Type)
	}
	p := &s.Prunable
	switch {
	case s.Type == RctTypeBulletproofPlus:
		if len(p.BulletproofsPlus) > outputs {
			return nil, fmt.Errorf("%w: %d bulletproofs+ for %d outputs", ErrEncode, len(p.BulletproofsPlus), outputs)
		}
		b = AppendVarint(b, uint64(len(p.BulletproofsPlus)))
		for i := range p.BulletproofsPlus {
			bp := &p.BulletproofsPlus[i]
			if len(bp.L) == 0 || len(bp.L) != len(bp.R) {
				return nil, fmt.Errorf("%w: bulletproof+ L/R size", ErrEncode)
			}
			for _, k := range []*Key{&bp.A, &bp.A1, &bp.B, &bp.R1, &bp.S1, &bp.D1} {
				b = append(b, k[:]...)
			}
			b = appendKeyVector(b, bp.L)
			b = appendKeyVector(b, bp.R)
		}
	case s.Type.usesBulletproofs():
		if len(p.Bulletproofs) > outputs {
			return nil, fmt.Errorf("%w: %d bulletproofs for %d outputs", ErrEncode, len(p.Bulletproofs), outputs)
		}
		if s.Type == RctTypeBulletproof {
			b = appendUint32(b, uint32(len(p.Bulletproofs)))
		} else {
			b = AppendVarint(b, uint64(len(p.Bulletproofs)))
		}
		for i := range p.Bulletproofs {
			bp := &p.Bulletproofs[i]
			if len(bp.L) == 0 || len(bp.L) != len(bp.R) {
				return nil, fmt.Errorf("%w: bulletproof L/R size", ErrEncode)
			}
			for _, k := range []*Key{&bp.A, &bp.S, &bp.T1, &bp.T2, &bp.Taux, &bp.Mu} {
				b = append(b, k[:]...)
			}
			b = appendKeyVector(b, bp.L)
			b = appendKeyVector(b, bp.R)
			b = append(b, bp.Aa[:]...)
			b = append(b, bp.B[:]...)
			b = append(b, bp.T[:]...)
		}
	default:
		if len(p.RangeSigs) != outputs {
			return nil, fmt.Errorf("%w: %d range sigs for %d outputs", ErrEncode, len(p.RangeSigs), outputs)
		}
		for i := range p.RangeSigs {
			rs := &p.RangeSigs[i]
			b = appendKeys(b, rs.Asig.S0[:])
			b = appendKeys(b, rs.Asig.S1[:])
			b = append(b, rs.Asig.Ee[:]...)
			b = appendKeys(b, rs.Ci[:])
		}
	}

	if s.Type.usesCLSAG() {
		if len(p.CLSAGs) != inputs {
			return nil, fmt.Errorf("%w: %d CLSAGs for %d inputs", ErrEncode, len(p.CLSAGs), inputs)
		}
		for i := range p.CLSAGs {
			c := &p.CLSAGs[i]
			if len(c.S) != mixin+1 {
				return nil, fmt.Errorf("%w: CLSAG ring %d, mixin %d", ErrEncode, len(c.S), mixin)
			}
			b = appendKeys(b, c.S)
			b = append(b, c.C1[:]...)
			b = append(b, c.D[:]...)
		}
	} else {
		elements, cols := 1, inputs+1
		if s.Type.simpleMG() {
			elements, cols = inputs, 2
		}
		if len(p.MGs) != elements {
			return nil, fmt.Errorf("%w: %d MGs, want %d", ErrEncode, len(p.MGs), elements)
		}
		for i := range p.MGs {
			mg := &p.MGs[i]
			if len(mg.SS) != mixin+1 {
				return nil, fmt.Errorf("%w: MG ring %d, mixin %d", ErrEncode, len(mg.SS), mixin)
			}
			for _, row := range mg.SS {
				if len(row) != cols {
					return nil, fmt.Errorf("%w: MG row %d, want %d", ErrEncode, len(row), cols)
				}
				b = appendKeys(b, row)
			}
			b = append(b, mg.CC[:]...)
		}
	}

	if s.Type.usesBulletproofs() {
		if len(p.PseudoOuts) != inputs {
			return nil, fmt.Errorf("%w: %d pseudo outs for %d inputs", ErrEncode, len(p.PseudoOuts), inputs)
		}
		b = appendKeys(b, p.PseudoOuts)
	}
	return b, nil
}

func readRctPrunable(r *reader, s *RctSig, inputs, outputs, mixin int) error {
	if s.Type == RctTypeNull {
		return nil
	}
	p := &s.Prunable
	var err error
	switch {
	case s.Type == RctTypeBulletproofPlus:
		n, err := r.varint()
		if err != nil {
			return err
		}
		if n > uint64(outputs) {
			return fmt.Errorf("%w: %d bulletproofs+ for %d outputs", ErrInvalidValue, n, outputs)
		}
		if n > 0 {
			p.BulletproofsPlus = make([]BulletproofPlus, n)
		}
		for i := range p.BulletproofsPlus {
			bp := &p.BulletproofsPlus[i]
			for _, k := range []*Key{&bp.A, &bp.A1, &bp.B, &bp.R1, &bp.S1, &bp.D1} {
				if *k, err = r.key(); err != nil {
					return err
				}
			}
			if bp.L, bp.R, err = readLR(r); err != nil {
				return err
			}
		}
	case s.Type.usesBulletproofs():
		var n uint64
		if s.Type == RctTypeBulletproof {
			v, err := r.uint32()
			if err != nil {
				return err
			}
			n = uint64(v)
		} else if n, err = r.varint(); err != nil {
			return err
		}
		if n > uint64(outputs) {
			return fmt.Errorf("%w: %d bulletproofs for %d outputs", ErrInvalidValue, n, outputs)
		}
		if n > 0 {
			p.Bulletproofs = make([]Bulletproof, n)
		}
		for i := range p.Bulletproofs {
			bp := &p.Bulletproofs[i]
			for _, k := range []*Key{&bp.A, &bp.S, &bp.T1, &bp.T2, &bp.Taux, &bp.Mu} {
				if *k, err = r.key(); err != nil {
					return err
				}
			}
			if bp.L, bp.R, err = readLR(r); err != nil {
				return err
			}
			for _, k := range []*Key{&bp.Aa, &bp.B, &bp.T} {
				if *k, err = r.key(); err != nil {
					return err
				}
			}
		}
	default:
		if err := r.need(outputs, (64+64+1+64)*HashSize); err != nil {
			return err
		}
		if outputs > 0 {
			p.RangeSigs = make([]RangeSig, outputs)
		}
		for i := range p.RangeSigs {
			rs := &p.RangeSigs[i]
			for j := range rs.Asig.S0 {
				rs.Asig.S0[j], _ = r.key()
			}
			for j := range rs.Asig.S1 {
				rs.Asig.S1[j], _ = r.key()
			}
			rs.Asig.Ee, _ = r.key()
			for j := range rs.Ci {
				rs.Ci[j], _ = r.key()
			}
		}
	}

	ring := mixin + 1
	if s.Type.usesCLSAG() {
		if err := r.need(inputs, (ring+2)*HashSize); err != nil {
			return err
		}
		if inputs > 0 {
			p.CLSAGs = make([]Clsag, inputs)
		}
		for i := range p.CLSAGs {
			c := &p.CLSAGs[i]
			c.S, _ = r.keys(ring)
			c.C1, _ = r.key()
			c.D, _ = r.key()
		}
	} else {
		elements, cols := 1, inputs+1
		if s.Type.simpleMG() {
			elements, cols = inputs, 2
		}
		if err := r.need(elements, (ring*cols+1)*HashSize); err != nil {
			return err
		}
		if elements > 0 {
			p.MGs = make([]MgSig, elements)
		}
		for i := range p.MGs {
			mg := &p.MGs[i]
			mg.SS = make([][]Key, ring)
			for j := range mg.SS {
				mg.SS[j], _ = r.keys(cols)
			}
			mg.CC, _ = r.key()
		}
	}

	if s.Type.usesBulletproofs() {
		p.PseudoOuts, err = r.keys(inputs)
	}
	return err
}

func readLR(r *reader) ([]Key, []Key, error) {
	l, err := r.keyVector()
	if err != nil {
		return nil, nil, err
	}
	rr, err := r.keyVector()
	if err != nil {
		return nil, nil, err
	}
	if len(l) == 0 || len(l) != len(rr) {
		return nil, nil, fmt.Errorf("%w: bulletproof L/R size %d/%d", ErrInvalidValue, len(l), len(rr))
	}
	return l, rr, nil
}
