package codec

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a buffer is shorter than a record's declared
// or fixed encoded length.
var ErrTruncated = errors.New("codec: truncated record")

// Uint constrains the scalar types WithChecksum can wrap: the codec only
// ever needs to checksum standalone u32/u64 scalars (table IDs, length
// headers), never arbitrary structs.
type Uint interface{ ~uint32 | ~uint64 }

// EncodeWithChecksum encodes v as a fixed-width big-endian scalar followed by
// an 8-byte checksum tag, i.e. WithChecksum<T> from the format spec.
func EncodeWithChecksum[T Uint](v T) []byte {
	var buf bytes.Buffer
	w := NewChecksumWriter(&buf)
	writeUint(w, v)
	w.WriteChecksum()
	return buf.Bytes()
}

// DecodeWithChecksum decodes a WithChecksum<T> from the front of b, verifying
// its checksum, and returns the value plus the number of bytes consumed.
func DecodeWithChecksum[T Uint](b []byte, context string) (T, int, error) {
	width := uintWidth[T]()
	total := width + ChecksumTagSize
	if len(b) < total {
		return *new(T), 0, fmt.Errorf("%s: %w", context, ErrTruncated)
	}
	r := NewChecksumReader(b[:total])
	raw := make([]byte, width)
	if _, err := r.Read(raw); err != nil {
		return *new(T), 0, fmt.Errorf("%s: %w", context, err)
	}
	if err := r.VerifyChecksum(context); err != nil {
		return *new(T), 0, err
	}
	return readUint[T](raw), total, nil
}

func uintWidth[T Uint]() int {
	switch any(*new(T)).(type) {
	case uint32:
		return 4
	case uint64:
		return 8
	default:
		panic("codec: unreachable Uint type")
	}
}

func writeUint[T Uint](w *ChecksumWriter, v T) {
	switch x := any(v).(type) {
	case uint32:
		var b [4]byte
		PutUint32(b[:], x)
		w.Write(b[:]) //nolint:errcheck
	case uint64:
		var b [8]byte
		PutUint64(b[:], x)
		w.Write(b[:]) //nolint:errcheck
	default:
		panic("codec: unreachable Uint type")
	}
}

func readUint[T Uint](raw []byte) T {
	switch any(*new(T)).(type) {
	case uint32:
		return any(Uint32(raw)).(T)
	case uint64:
		return any(Uint64(raw)).(T)
	default:
		panic("codec: unreachable Uint type")
	}
}
