package wire

import (
	"fmt"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// Transaction versions with layout significance.
const (
	TxVersion1 = 1
	TxVersion2 = 2

	// LokiVersionPerOutputUnlock adds per-output unlock times.
	LokiVersionPerOutputUnlock = 3

	// LokiVersionTxTypes adds the transaction type field.
	LokiVersionTxTypes = 4

	// OffshoreVersion adds the pricing record height and offshore data.
	OffshoreVersion = 3
)

// TransactionPrefix is the signed part of a transaction.
type TransactionPrefix struct {
	Version    uint64
	UnlockTime uint64
	Inputs     []TxIn
	Outputs    []TxOut
	Extra      []byte

	// Loki family.
	OutputUnlockTimes []uint64
	IsDeregister      bool
	Type              uint64

	// Asset conversion family.
	PricingRecordHeight uint64
	OffshoreData        []byte
}

// Transaction is a prefix plus its signatures.
type Transaction struct {
	TransactionPrefix

	// Signatures holds one ring per input for version 1 transactions.
	Signatures [][]Signature

	// RCT is the RingCT signature of version 2+ transactions.
	RCT RctSig
}

func (p *TransactionPrefix) hasOffshoreFields(pr *fork.Profile) bool {
	if !pr.AssetConversion || p.Version < OffshoreVersion || len(p.Inputs) == 0 {
		return false
	}
	_, gen := p.Inputs[0].(TxInGen)
	return !gen
}

// AppendTransactionPrefix appends the canonical prefix encoding.
func AppendTransactionPrefix(b []byte, p *TransactionPrefix, pr *fork.Profile) ([]byte, error) {
	if p.Version == 0 {
		return nil, fmt.Errorf("%w: transaction version 0", ErrEncode)
	}
	var err error
	b = AppendVarint(b, p.Version)
	loki := pr.LokiPrefix && p.Version >= LokiVersionPerOutputUnlock
	if loki {
		if len(p.OutputUnlockTimes) != len(p.Outputs) {
			return nil, fmt.Errorf("%w: %d unlock times for %d outputs", ErrEncode, len(p.OutputUnlockTimes), len(p.Outputs))
		}
		b = AppendVarint(b, uint64(len(p.OutputUnlockTimes)))
		for _, t := range p.OutputUnlockTimes {
			b = AppendVarint(b, t)
		}
		if p.Version == LokiVersionPerOutputUnlock {
			b = append(b, boolByte(p.IsDeregister))
		}
	}
	b = AppendVarint(b, p.UnlockTime)
	b = AppendVarint(b, uint64(len(p.Inputs)))
	for _, in := range p.Inputs {
		if b, err = appendTxIn(b, in, pr); err != nil {
			return nil, err
		}
	}
	b = AppendVarint(b, uint64(len(p.Outputs)))
	for _, out := range p.Outputs {
		if b, err = appendTxOut(b, out, pr); err != nil {
			return nil, err
		}
	}
	b = AppendVarBytes(b, p.Extra)
	if pr.LokiPrefix && p.Version >= LokiVersionTxTypes {
		b = AppendVarint(b, p.Type)
	}
	if p.hasOffshoreFields(pr) {
		b = AppendVarint(b, p.PricingRecordHeight)
		b = AppendVarBytes(b, p.OffshoreData)
	}
	return b, nil
}

func readTransactionPrefix(r *reader, p *TransactionPrefix, pr *fork.Profile) error {
	var err error
	if p.Version, err = r.varint(); err != nil {
		return err
	}
	if p.Version == 0 {
		return fmt.Errorf("%w: transaction version 0", ErrInvalidValue)
	}
	loki := pr.LokiPrefix && p.Version >= LokiVersionPerOutputUnlock
	if loki {
		n, err := r.count(1)
		if err != nil {
			return err
		}
		if n > 0 {
			p.OutputUnlockTimes = make([]uint64, n)
		}
		for i := range p.OutputUnlockTimes {
			if p.OutputUnlockTimes[i], err = r.varint(); err != nil {
				return err
			}
		}
		if p.Version == LokiVersionPerOutputUnlock {
			c, err := r.readByte()
			if err != nil {
				return err
			}
			if c > 1 {
				return fmt.Errorf("%w: deregister flag %d", ErrInvalidValue, c)
			}
			p.IsDeregister = c == 1
		}
	}
	if p.UnlockTime, err = r.varint(); err != nil {
		return err
	}

	n, err := r.count(2)
	if err != nil {
		return err
	}
	if n > 0 {
		p.Inputs = make([]TxIn, n)
	}
	for i := range p.Inputs {
		if p.Inputs[i], err = readTxIn(r, pr); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}

	if n, err = r.count(2 + HashSize); err != nil {
		return err
	}
	if n > 0 {
		p.Outputs = make([]TxOut, n)
	}
	for i := range p.Outputs {
		if p.Outputs[i], err = readTxOut(r, pr); err != nil {
			return fmt.Errorf("output %d: %w", i, err)
		}
	}
	if loki && len(p.OutputUnlockTimes) != len(p.Outputs) {
		return fmt.Errorf("%w: %d unlock times for %d outputs", ErrInvalidValue, len(p.OutputUnlockTimes), len(p.Outputs))
	}

	if p.Extra, err = r.varBytes(); err != nil {
		return err
	}
	if pr.LokiPrefix && p.Version >= LokiVersionTxTypes {
		if p.Type, err = r.varint(); err != nil {
			return err
		}
	}
	if p.hasOffshoreFields(pr) {
		if p.PricingRecordHeight, err = r.varint(); err != nil {
			return err
		}
		if p.OffshoreData, err = r.varBytes(); err != nil {
			return err
		}
	}
	return nil
}

// Mixin returns the ring size of the first input minus one, or zero when
// the first input is not key-shaped.
func Mixin(p *TransactionPrefix) (int, error) {
	if len(p.Inputs) == 0 {
		return 0, nil
	}
	_, offsets, ok := RingInput(p.Inputs[0])
	if !ok {
		return 0, nil
	}
	if len(offsets) == 0 {
		return 0, fmt.Errorf("%w: first input has an empty ring", ErrInvalidValue)
	}
	return len(offsets) - 1, nil
}

// signatureSize returns the number of ring signatures a version 1 input carries.
func signatureSize(in TxIn) int {
	_, offsets, ok := RingInput(in)
	if !ok {
		return 0
	}
	return len(offsets)
}

// AppendTransaction appends the full canonical encoding of tx.
func AppendTransaction(b []byte, tx *Transaction, pr *fork.Profile) ([]byte, error) {
	b, err := AppendTransactionPrefix(b, &tx.TransactionPrefix, pr)
	if err != nil {
		return nil, err
	}
	if tx.Version == TxVersion1 {
		return appendV1Signatures(b, tx)
	}
	if len(tx.Inputs) == 0 {
		return b, nil
	}
	if b, err = AppendRctBase(b, &tx.RCT, len(tx.Inputs), len(tx.Outputs)); err != nil {
		return nil, err
	}
	if tx.RCT.Type == RctTypeNull {
		return b, nil
	}
	mixin, err := Mixin(&tx.TransactionPrefix)
	if err != nil {
		return nil, err
	}
	return AppendRctPrunable(b, &tx.RCT, len(tx.Inputs), len(tx.Outputs), mixin)
}

func appendV1Signatures(b []byte, tx *Transaction) ([]byte, error) {
	if len(tx.Signatures) == 0 {
		for i, in := range tx.Inputs {
			if signatureSize(in) != 0 {
				return nil, fmt.Errorf("%w: input %d has no signatures", ErrEncode, i)
			}
		}
		return b, nil
	}
	if len(tx.Signatures) != len(tx.Inputs) {
		return nil, fmt.Errorf("%w: %d signature rings for %d inputs", ErrEncode, len(tx.Signatures), len(tx.Inputs))
	}
	for i, in := range tx.Inputs {
		if len(tx.Signatures[i]) != signatureSize(in) {
			return nil, fmt.Errorf("%w: input %d ring %d, signatures %d", ErrEncode, i, signatureSize(in), len(tx.Signatures[i]))
		}
		for _, sig := range tx.Signatures[i] {
			b = append(b, sig[:]...)
		}
	}
	return b, nil
}

func readTransaction(r *reader, tx *Transaction, pr *fork.Profile) error {
	if err := readTransactionPrefix(r, &tx.TransactionPrefix, pr); err != nil {
		return err
	}
	if tx.Version == TxVersion1 {
		return readV1Signatures(r, tx)
	}
	if len(tx.Inputs) == 0 {
		return nil
	}
	if err := readRctBase(r, &tx.RCT, len(tx.Inputs), len(tx.Outputs)); err != nil {
		return err
	}
	if tx.RCT.Type == RctTypeNull {
		return nil
	}
	mixin, err := Mixin(&tx.TransactionPrefix)
	if err != nil {
		return err
	}
	return readRctPrunable(r, &tx.RCT, len(tx.Inputs), len(tx.Outputs), mixin)
}

func readV1Signatures(r *reader, tx *Transaction) error {
	total := 0
	for _, in := range tx.Inputs {
		total += signatureSize(in)
	}
	if total == 0 {
		return nil
	}
	if err := r.need(total, 64); err != nil {
		return err
	}
	tx.Signatures = make([][]Signature, len(tx.Inputs))
	for i, in := range tx.Inputs {
		n := signatureSize(in)
		if n == 0 {
			continue
		}
		tx.Signatures[i] = make([]Signature, n)
		for j := range tx.Signatures[i] {
			b, _ := r.next(64)
			copy(tx.Signatures[i][j][:], b)
		}
	}
	return nil
}

// EncodeTransaction returns the canonical blob of tx.
func EncodeTransaction(tx *Transaction, pr *fork.Profile) ([]byte, error) {
	return AppendTransaction(nil, tx, pr)
}

// DecodeTransaction parses a complete transaction blob.
func DecodeTransaction(blob []byte, pr *fork.Profile) (*Transaction, error) {
	r := newReader(blob)
	tx := &Transaction{}
	if err := readTransaction(r, tx, pr); err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return tx, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
