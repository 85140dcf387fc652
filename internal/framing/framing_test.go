package framing

import (
	"errors"
	"testing"

	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

func TestHeaderRoundTrip(t *testing.T) {
	b := EncodeHeader(typ.TagBlock)
	if len(b) != HeaderSize {
		t.Fatalf("len(b) = %d, want %d", len(b), HeaderSize)
	}
	v, err := DecodeHeader(b, typ.TagBlock)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if v != typ.V001 {
		t.Fatalf("version = %v, want %v", v, typ.V001)
	}
}

func TestHeaderWrongTag(t *testing.T) {
	b := EncodeHeader(typ.TagBlock)
	_, err := DecodeHeader(b, typ.TagBlockIndex)
	if err == nil {
		t.Fatal("expected error for mismatched tag")
	}
}

func TestHeaderCorrupted(t *testing.T) {
	b := EncodeHeader(typ.TagRotbl)
	b[0] ^= 0xff
	_, err := DecodeHeader(b, typ.TagRotbl)
	if err == nil {
		t.Fatal("expected checksum error")
	}
}

func TestHeaderTruncated(t *testing.T) {
	b := EncodeHeader(typ.TagRotbl)
	_, err := DecodeHeader(b[:HeaderSize-1], typ.TagRotbl)
	if err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	s := Segment{Offset: 1234, Size: 5678}
	b := s.Encode()
	if len(b) != SegmentSize {
		t.Fatalf("len(b) = %d, want %d", len(b), SegmentSize)
	}
	got, err := DecodeSegment(b)
	if err != nil {
		t.Fatalf("DecodeSegment: %v", err)
	}
	if got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestSegmentCorrupted(t *testing.T) {
	s := Segment{Offset: 1, Size: 2}
	b := s.Encode()
	b[len(b)-1] ^= 0xff
	_, err := DecodeSegment(b)
	if err == nil {
		t.Fatal("expected checksum error")
	}
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{
		BlockIndex: Segment{Offset: 0, Size: 100},
		Meta:       Segment{Offset: 100, Size: 40},
		Stat:       Segment{Offset: 140, Size: 24},
	}
	b := f.Encode()
	if len(b) != Size {
		t.Fatalf("len(b) = %d, want %d", len(b), Size)
	}
	got, err := DecodeFooter(b)
	if err != nil {
		t.Fatalf("DecodeFooter: %v", err)
	}
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestFooterTruncated(t *testing.T) {
	f := Footer{}
	b := f.Encode()
	_, err := DecodeFooter(b[:Size-1])
	if err == nil {
		t.Fatal("expected truncation error")
	}
	if !errors.Is(err, codec.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}
