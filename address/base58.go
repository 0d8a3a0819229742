package address

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Cryptonote base58 encodes data in independent 8-byte blocks, each
// rendered as exactly 11 characters (shorter for the final partial block),
// so that the encoded length depends only on the data length.
const (
	fullBlockSize        = 8
	fullEncodedBlockSize = 11
)

// encodedBlockSizes maps a block length in bytes to its encoded length.
var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

func decodedBlockSize(encoded int) int {
	for n, size := range encodedBlockSizes {
		if size == encoded {
			return n
		}
	}
	return -1
}

func encodeBlock(sb *strings.Builder, block []byte) {
	digits := strings.TrimLeft(base58.Encode(block), "1")
	for i := len(digits); i < encodedBlockSizes[len(block)]; i++ {
		sb.WriteByte('1')
	}
	sb.WriteString(digits)
}

func decodeBlock(out []byte, block string) ([]byte, error) {
	size := decodedBlockSize(len(block))
	if size <= 0 {
		return nil, fmt.Errorf("%w: base58 block of %d characters", ErrInvalid, len(block))
	}
	raw := base58.Decode(block)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: base58 character outside alphabet", ErrInvalid)
	}
	raw = bytes.TrimLeft(raw, "\x00")
	if len(raw) > size {
		return nil, fmt.Errorf("%w: base58 block overflow", ErrInvalid)
	}
	out = append(out, make([]byte, size-len(raw))...)
	return append(out, raw...), nil
}

// EncodeBase58 encodes data with Cryptonote block base58.
func EncodeBase58(data []byte) string {
	var sb strings.Builder
	full := len(data) / fullBlockSize
	sb.Grow(full*fullEncodedBlockSize + encodedBlockSizes[len(data)%fullBlockSize])
	for i := 0; i < full; i++ {
		encodeBlock(&sb, data[i*fullBlockSize:(i+1)*fullBlockSize])
	}
	if rest := len(data) % fullBlockSize; rest > 0 {
		encodeBlock(&sb, data[full*fullBlockSize:])
	}
	return sb.String()
}

// DecodeBase58 decodes Cryptonote block base58 text.
func DecodeBase58(text string) ([]byte, error) {
	full := len(text) / fullEncodedBlockSize
	out := make([]byte, 0, full*fullBlockSize+fullBlockSize)
	var err error
	for i := 0; i < full; i++ {
		if out, err = decodeBlock(out, text[i*fullEncodedBlockSize:(i+1)*fullEncodedBlockSize]); err != nil {
			return nil, err
		}
	}
	if rest := len(text) % fullEncodedBlockSize; rest > 0 {
		if out, err = decodeBlock(out, text[full*fullEncodedBlockSize:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
