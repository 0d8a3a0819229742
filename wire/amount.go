package wire

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// SumInputs returns the total amount of the key-shaped inputs of p. A
// generation input or an overflowing sum is an error.
func SumInputs(p *TransactionPrefix) (uint64, error) {
	var total uint64
	for i, in := range p.Inputs {
		amount, _, ok := RingInput(in)
		if !ok {
			return 0, fmt.Errorf("%w: input %d is %T", ErrUnsupportedInput, i, in)
		}
		var carry uint64
		if total, carry = bits.Add64(total, amount, 0); carry != 0 {
			return 0, fmt.Errorf("%w: inputs at %d", ErrAmountOverflow, i)
		}
	}
	return total, nil
}

// SumOutputs returns the total amount of the outputs of p.
func SumOutputs(p *TransactionPrefix) (uint64, error) {
	var total uint64
	for i, out := range p.Outputs {
		var carry uint64
		if total, carry = bits.Add64(total, out.Amount, 0); carry != 0 {
			return 0, fmt.Errorf("%w: outputs at %d", ErrAmountOverflow, i)
		}
	}
	return total, nil
}

// TransactionFee returns inputs minus outputs.
func TransactionFee(p *TransactionPrefix) (uint64, error) {
	in, err := SumInputs(p)
	if err != nil {
		return 0, err
	}
	out, err := SumOutputs(p)
	if err != nil {
		return 0, err
	}
	if in < out {
		return 0, fmt.Errorf("%w: in %d, out %d", ErrInsufficientInputs, in, out)
	}
	return in - out, nil
}

// CheckInputTypes verifies every input is a spendable variant of the profile.
func CheckInputTypes(p *TransactionPrefix, pr *fork.Profile) error {
	for i, in := range p.Inputs {
		switch in.(type) {
		case TxInToKey:
		case TxInOffshore, TxInOnshore:
			if !pr.AssetConversion {
				return fmt.Errorf("%w: input %d is %T on %s", ErrUnsupportedInput, i, in, pr)
			}
		default:
			return fmt.Errorf("%w: input %d is %T", ErrUnsupportedInput, i, in)
		}
	}
	return nil
}

// CheckOutputs verifies output targets against the profile, rejects zero
// amounts in version 1 transactions and, when keyCheck is non-nil, checks
// every output key.
func CheckOutputs(p *TransactionPrefix, pr *fork.Profile, keyCheck func(PublicKey) bool) error {
	for i, out := range p.Outputs {
		switch out.Target.(type) {
		case TxOutToKey:
		case TxOutOffshore:
			if !pr.AssetConversion {
				return fmt.Errorf("%w: output %d is offshore on %s", ErrUnsupportedOutput, i, pr)
			}
		default:
			return fmt.Errorf("%w: output %d is %T", ErrUnsupportedOutput, i, out.Target)
		}
		if p.Version == TxVersion1 && out.Amount == 0 {
			return fmt.Errorf("%w: output %d", ErrZeroAmountOutput, i)
		}
		if keyCheck != nil {
			key, _ := OutputKey(out.Target)
			if !keyCheck(key) {
				return fmt.Errorf("%w: output %d", ErrInvalidOutputKey, i)
			}
		}
	}
	return nil
}

// CheckMoneyOverflow verifies that neither the input nor the output sum overflows.
func CheckMoneyOverflow(p *TransactionPrefix) error {
	if _, err := SumInputs(p); err != nil {
		return err
	}
	_, err := SumOutputs(p)
	return err
}

// RelativeToAbsoluteOffsets turns delta-encoded ring offsets into absolute
// output indices.
func RelativeToAbsoluteOffsets(offsets []uint64) []uint64 {
	out := slices.Clone(offsets)
	for i := 1; i < len(out); i++ {
		out[i] += out[i-1]
	}
	return out
}

// AbsoluteToRelativeOffsets sorts absolute output indices and delta-encodes them.
func AbsoluteToRelativeOffsets(offsets []uint64) []uint64 {
	out := slices.Clone(offsets)
	slices.Sort(out)
	for i := len(out) - 1; i > 0; i-- {
		out[i] -= out[i-1]
	}
	return out
}

// BlockHeight returns the height carried by the miner transaction's
// generation input.
func BlockHeight(b *Block) (uint64, error) {
	if len(b.MinerTx.Inputs) != 1 {
		return 0, fmt.Errorf("%w: %d inputs", ErrInvalidMinerTx, len(b.MinerTx.Inputs))
	}
	gen, ok := b.MinerTx.Inputs[0].(TxInGen)
	if !ok {
		return 0, fmt.Errorf("%w: input is %T", ErrInvalidMinerTx, b.MinerTx.Inputs[0])
	}
	return gen.Height, nil
}
