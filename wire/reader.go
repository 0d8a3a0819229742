package wire

import (
	"encoding/binary"
	"fmt"
)

// reader walks a blob with bounds checks on every field.
type reader struct {
	buf []byte
	off int
}

func newReader(b []byte) *reader { return &reader{buf: b} }

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) eof() bool { return r.off >= len(r.buf) }

// done fails when unread bytes remain.
func (r *reader) done() error {
	if n := r.remaining(); n > 0 {
		return fmt.Errorf("%w: %d bytes after record", ErrTrailingBytes, n)
	}
	return nil
}

func (r *reader) readByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	c := r.buf[r.off]
	r.off++
	return c, nil
}

func (r *reader) peekByte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	return r.buf[r.off], nil
}

// next returns the next n bytes without copying.
func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrUnexpectedEOF, n, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// bytes returns a copy of the next n bytes.
func (r *reader) bytes(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil || n == 0 {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *reader) varint() (uint64, error) {
	v, n, err := ReadVarint(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

// varintByte reads a varint that must fit in a uint8.
func (r *reader) varintByte() (uint8, error) {
	v, err := r.varint()
	if err != nil {
		return 0, err
	}
	if v > 0xff {
		return 0, fmt.Errorf("%w: %d does not fit in a byte", ErrInvalidValue, v)
	}
	return uint8(v), nil
}

// count reads a varint element count and checks that count elements of at
// least minSize bytes each can still be present in the input.
func (r *reader) count(minSize int) (int, error) {
	v, err := r.varint()
	if err != nil {
		return 0, err
	}
	if minSize < 1 {
		minSize = 1
	}
	if v > uint64(r.remaining()/minSize) {
		return 0, fmt.Errorf("%w: count %d exceeds remaining input", ErrUnexpectedEOF, v)
	}
	return int(v), nil
}

// need checks that n elements of size bytes are available.
func (r *reader) need(n, size int) error {
	if n < 0 || size < 0 || (size > 0 && n > r.remaining()/size) {
		return fmt.Errorf("%w: need %d x %d bytes", ErrUnexpectedEOF, n, size)
	}
	return nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) hash() (Hash, error) {
	var h Hash
	b, err := r.next(HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (r *reader) key() (Key, error) {
	h, err := r.hash()
	return Key(h), err
}

func (r *reader) hashes(n int) ([]Hash, error) {
	if err := r.need(n, HashSize); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Hash, n)
	for i := range out {
		out[i], _ = r.hash()
	}
	return out, nil
}

func (r *reader) keys(n int) ([]Key, error) {
	if err := r.need(n, HashSize); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Key, n)
	for i := range out {
		out[i], _ = r.key()
	}
	return out, nil
}

// keyVector reads a varint-prefixed vector of keys.
func (r *reader) keyVector() ([]Key, error) {
	n, err := r.count(HashSize)
	if err != nil {
		return nil, err
	}
	return r.keys(n)
}

// ---------------------------------------------------------------------------
// Writers
// ---------------------------------------------------------------------------

func appendUint32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }

func appendUint64(b []byte, v uint64) []byte { return binary.LittleEndian.AppendUint64(b, v) }

func appendHashes(b []byte, hs []Hash) []byte {
	for i := range hs {
		b = append(b, hs[i][:]...)
	}
	return b
}

func appendKeys(b []byte, ks []Key) []byte {
	for i := range ks {
		b = append(b, ks[i][:]...)
	}
	return b
}

func appendKeyVector(b []byte, ks []Key) []byte {
	b = AppendVarint(b, uint64(len(ks)))
	return appendKeys(b, ks)
}

// AppendVarBytes appends a varint length followed by data.
func AppendVarBytes(b, data []byte) []byte {
	b = AppendVarint(b, uint64(len(data)))
	return append(b, data...)
}

func (r *reader) varBytes() ([]byte, error) {
	n, err := r.count(1)
	if err != nil {
		return nil, err
	}
	return r.bytes(n)
}
