package marked

import (
	"encoding/binary"
	"fmt"
)

// EncodeValue encodes a SeqMarked[[]byte] as:
//
//	Seq:u64 ∥ Kind:u8 ∥ (Kind==Normal ? len(data):u32 ∥ data : ⟨nothing⟩)
//
// The caller is responsible for framing the result with a checksum; this is
// the raw payload format stored inside a Block's data region.
func EncodeValue(m SeqMarked[[]byte]) []byte {
	if m.IsTombstone() {
		out := make([]byte, 9)
		binary.BigEndian.PutUint64(out[0:8], m.seq)
		out[8] = byte(KindTombstone)
		return out
	}
	data, _ := m.IntoData()
	out := make([]byte, 9+4+len(data))
	binary.BigEndian.PutUint64(out[0:8], m.seq)
	out[8] = byte(KindNormal)
	binary.BigEndian.PutUint32(out[9:13], uint32(len(data)))
	copy(out[13:], data)
	return out
}

// DecodeValue decodes a SeqMarked[[]byte] from the front of b, returning the
// value and the number of bytes consumed.
func DecodeValue(b []byte) (SeqMarked[[]byte], int, error) {
	if len(b) < 9 {
		return SeqMarked[[]byte]{}, 0, fmt.Errorf("marked: truncated value header")
	}
	seq := binary.BigEndian.Uint64(b[0:8])
	kind := Kind(b[8])
	switch kind {
	case KindTombstone:
		return Tombstone[[]byte](seq), 9, nil
	case KindNormal:
		if len(b) < 13 {
			return SeqMarked[[]byte]{}, 0, fmt.Errorf("marked: truncated value length")
		}
		n := binary.BigEndian.Uint32(b[9:13])
		end := 13 + int(n)
		if len(b) < end {
			return SeqMarked[[]byte]{}, 0, fmt.Errorf("marked: truncated value data")
		}
		data := make([]byte, n)
		copy(data, b[13:end])
		return Normal(seq, data), end, nil
	default:
		return SeqMarked[[]byte]{}, 0, fmt.Errorf("marked: unknown kind byte %d", kind)
	}
}
