// Package framing implements the Header, Segment, and Footer structural
// records shared by every rotbl file: fixed-size, self-checksummed byte
// layouts that let a Reader locate and validate the file's other records
// without first decoding them.
//
// Reference: aalhour/rockyardkv internal/block/footer.go (fixed-size Footer
// parsing anchored at end-of-file) and internal/block/handle.go (Handle as
// an offset+size descriptor) — rotbl's Segment plays the same role as
// RocksDB's BlockHandle, generalized with its own checksum per the format
// spec (a BlockHandle has none; corruption there is only caught by the
// pointed-to block's own trailer).
package framing

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// ErrBadMagic is returned when a decoded Header's Type tag does not match
// the tag the caller expected at that structural boundary.
var ErrBadMagic = errors.New("framing: bad magic")

// ErrBadVersion is returned when a decoded Header names a recognized Type
// but an unknown Version.
var ErrBadVersion = errors.New("framing: unsupported version")

// HeaderSize is the fixed encoded size of a Header: Type(8) + Version(8) +
// Checksum(8).
const HeaderSize = 24

// EncodeHeader encodes a Header for the given tag at V001.
func EncodeHeader(tag typ.Tag) []byte {
	return EncodeHeaderVersion(tag, typ.V001)
}

// EncodeHeaderVersion encodes a Header for the given tag and version.
func EncodeHeaderVersion(tag typ.Tag, version typ.Version) []byte {
	var buf bytes.Buffer
	w := codec.NewChecksumWriter(&buf)
	w.Write(tag[:]) //nolint:errcheck
	var vb [8]byte
	codec.PutUint64(vb[:], uint64(version))
	w.Write(vb[:]) //nolint:errcheck
	w.WriteChecksum()
	return buf.Bytes()
}

// DecodeHeader decodes a Header from the front of b (which must be at least
// HeaderSize bytes) and asserts it carries wantTag at a known version.
func DecodeHeader(b []byte, wantTag typ.Tag) (typ.Version, error) {
	if len(b) < HeaderSize {
		return 0, fmt.Errorf("header: %w", codec.ErrTruncated)
	}
	r := codec.NewChecksumReader(b[:HeaderSize])
	var tagBytes [8]byte
	if _, err := r.Read(tagBytes[:]); err != nil {
		return 0, fmt.Errorf("header: %w", err)
	}
	var vb [8]byte
	if _, err := r.Read(vb[:]); err != nil {
		return 0, fmt.Errorf("header: %w", err)
	}
	if err := r.VerifyChecksum("header"); err != nil {
		return 0, err
	}
	if typ.Tag(tagBytes) != wantTag {
		return 0, fmt.Errorf("header: want %q got %q: %w", wantTag, typ.Tag(tagBytes), ErrBadMagic)
	}
	version := typ.Version(codec.Uint64(vb[:]))
	if version != typ.V001 {
		return 0, fmt.Errorf("header: %w", ErrBadVersion)
	}
	return version, nil
}

// Segment is a (offset, size) pair with its own checksum, locating a
// sub-region of the file. Only (offset, size) are authoritative; regions
// may be contiguous or have gaps.
type Segment struct {
	Offset uint64
	Size   uint64
}

// SegmentSize is the fixed encoded size of a Segment.
const SegmentSize = 24

// Encode encodes the segment to its fixed 24-byte representation.
func (s Segment) Encode() []byte {
	var buf bytes.Buffer
	w := codec.NewChecksumWriter(&buf)
	var b [16]byte
	codec.PutUint64(b[0:8], s.Offset)
	codec.PutUint64(b[8:16], s.Size)
	w.Write(b[:]) //nolint:errcheck
	w.WriteChecksum()
	return buf.Bytes()
}

// DecodeSegment decodes a Segment from the front of b.
func DecodeSegment(b []byte) (Segment, error) {
	if len(b) < SegmentSize {
		return Segment{}, fmt.Errorf("segment: %w", codec.ErrTruncated)
	}
	r := codec.NewChecksumReader(b[:SegmentSize])
	var raw [16]byte
	if _, err := r.Read(raw[:]); err != nil {
		return Segment{}, fmt.Errorf("segment: %w", err)
	}
	if err := r.VerifyChecksum("segment"); err != nil {
		return Segment{}, err
	}
	return Segment{Offset: codec.Uint64(raw[0:8]), Size: codec.Uint64(raw[8:16])}, nil
}

// Footer is the fixed-size tail record locating the BlockIndex, Meta, and
// Stat regions of a rotbl file.
type Footer struct {
	BlockIndex Segment
	Meta       Segment
	Stat       Segment
}

// Size is the fixed encoded size of a Footer: three Segments.
const Size = 3 * SegmentSize

// Encode encodes the footer to its fixed representation.
func (f Footer) Encode() []byte {
	out := make([]byte, 0, Size)
	out = append(out, f.BlockIndex.Encode()...)
	out = append(out, f.Meta.Encode()...)
	out = append(out, f.Stat.Encode()...)
	return out
}

// DecodeFooter decodes a Footer from the front of b.
func DecodeFooter(b []byte) (Footer, error) {
	if len(b) < Size {
		return Footer{}, fmt.Errorf("footer: %w", codec.ErrTruncated)
	}
	bi, err := DecodeSegment(b[0:SegmentSize])
	if err != nil {
		return Footer{}, err
	}
	m, err := DecodeSegment(b[SegmentSize : 2*SegmentSize])
	if err != nil {
		return Footer{}, err
	}
	st, err := DecodeSegment(b[2*SegmentSize : 3*SegmentSize])
	if err != nil {
		return Footer{}, err
	}
	return Footer{BlockIndex: bi, Meta: m, Stat: st}, nil
}
