package wire

// MaxVarintLen is the longest LEB128 encoding of a uint64.
const MaxVarintLen = 10

// AppendVarint appends the LEB128 encoding of v to b.
func AppendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// VarintSize returns the encoded length of v.
func VarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// ReadVarint decodes a canonical LEB128 uint64 from the front of b and
// returns the value and the number of bytes consumed.
func ReadVarint(b []byte) (uint64, int, error) {
	var v uint64
	for i, shift := 0, uint(0); ; i, shift = i+1, shift+7 {
		if i >= len(b) {
			return 0, 0, ErrUnexpectedEOF
		}
		c := b[i]
		if shift+7 >= 64 && c >= 1<<(64-shift) {
			return 0, 0, ErrVarintOverflow
		}
		if c == 0 && shift != 0 {
			return 0, 0, ErrNonCanonicalVarint
		}
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
}
