package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is the root of every malformed-blob failure.
	ErrDecode = errors.New("wire: decode error")

	// ErrUnexpectedEOF indicates the input ended before a field was fully read.
	ErrUnexpectedEOF = fmt.Errorf("%w: unexpected end of data", ErrDecode)

	// ErrUnknownVariant indicates a discriminant byte matches no variant of the active profile.
	ErrUnknownVariant = fmt.Errorf("%w: unknown variant tag", ErrDecode)

	// ErrTrailingBytes indicates bytes remain after a complete record.
	ErrTrailingBytes = fmt.Errorf("%w: trailing bytes", ErrDecode)

	// ErrNonCanonicalVarint indicates a varint with redundant trailing groups.
	ErrNonCanonicalVarint = fmt.Errorf("%w: non-canonical varint", ErrDecode)

	// ErrVarintOverflow indicates a varint that does not fit in 64 bits.
	ErrVarintOverflow = fmt.Errorf("%w: varint overflows 64 bits", ErrDecode)

	// ErrUnknownExtraTag indicates an extra field tag the parser does not know.
	ErrUnknownExtraTag = fmt.Errorf("%w: unknown extra tag", ErrDecode)

	// ErrInvalidExtraField indicates a known extra field with an invalid payload.
	ErrInvalidExtraField = fmt.Errorf("%w: invalid extra field", ErrDecode)

	// ErrInvalidValue indicates a decoded value outside its allowed range.
	ErrInvalidValue = fmt.Errorf("%w: value out of range", ErrDecode)

	// ErrEncode indicates a structure that cannot be serialized as given.
	ErrEncode = errors.New("wire: encode error")

	// ErrAmountOverflow indicates an amount sum exceeds 64 bits.
	ErrAmountOverflow = errors.New("wire: amount overflow")

	// ErrInsufficientInputs indicates outputs spend more than the inputs provide.
	ErrInsufficientInputs = errors.New("wire: outputs exceed inputs")

	// ErrZeroAmountOutput indicates a version 1 output with a zero amount.
	ErrZeroAmountOutput = errors.New("wire: zero amount output")

	// ErrUnsupportedInput indicates an input variant not allowed in this context.
	ErrUnsupportedInput = errors.New("wire: unsupported input type")

	// ErrUnsupportedOutput indicates an output variant not allowed in this context.
	ErrUnsupportedOutput = errors.New("wire: unsupported output type")

	// ErrInvalidOutputKey indicates an output key that fails the key check.
	ErrInvalidOutputKey = errors.New("wire: invalid output key")

	// ErrInvalidMinerTx indicates a miner transaction without a single generation input.
	ErrInvalidMinerTx = errors.New("wire: invalid miner transaction")
)
