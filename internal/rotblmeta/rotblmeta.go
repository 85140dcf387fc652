// Package rotblmeta implements the RotblMeta structural element: a table's
// header-framed metadata payload carrying its global sequence number and a
// caller-supplied, free-form user_data string.
//
// Reference: original_source rotbl_meta.rs (RotblMeta/RotblMetaPayload,
// serde_json payload wrapped in Header + WithChecksum(len) + checksum).
// This module serializes the payload with github.com/goccy/go-json, a
// drop-in for encoding/json, in place of serde_json — the teacher repo
// doesn't define a meta-style record, so the payload codec is grounded on
// the original Rust source's shape rather than on aalhour/rockyardkv.
package rotblmeta

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/drmingdrmer/rotbl/internal/codec"
	"github.com/drmingdrmer/rotbl/internal/framing"
	"github.com/drmingdrmer/rotbl/internal/typ"
)

// payload is the JSON-serialized body of a Meta record.
type payload struct {
	Seq      uint64 `json:"seq"`
	UserData string `json:"user_data"`
}

// Meta carries a table's global sequence number and free-form user data.
type Meta struct {
	seq      uint64
	userData string
}

// New returns a Meta at seq carrying userData.
func New(seq uint64, userData string) Meta {
	return Meta{seq: seq, userData: userData}
}

// Seq returns the table's global sequence number.
func (m Meta) Seq() uint64 { return m.seq }

// UserData returns the free-form caller-supplied metadata string.
func (m Meta) UserData() string { return m.userData }

// Encode encodes m to its framed on-disk representation:
//
//	Header(24) ∥ WithChecksum(data_encoded_size:u64) ∥ data_bytes ∥ Checksum(8)
func Encode(m Meta) ([]byte, error) {
	data, err := gojson.Marshal(payload{Seq: m.seq, UserData: m.userData})
	if err != nil {
		return nil, fmt.Errorf("rotblmeta: marshal: %w", err)
	}

	var out bytes.Buffer
	out.Write(framing.EncodeHeader(typ.TagRotblMeta))
	out.Write(codec.EncodeWithChecksum(uint64(len(data))))

	dataW := codec.NewChecksumWriter(&out)
	dataW.Write(data) //nolint:errcheck
	dataW.WriteChecksum()

	return out.Bytes(), nil
}

// Decode decodes a Meta from b, verifying every embedded checksum.
func Decode(b []byte) (Meta, error) {
	if len(b) < framing.HeaderSize {
		return Meta{}, fmt.Errorf("rotblmeta: %w", codec.ErrTruncated)
	}
	if _, err := framing.DecodeHeader(b[:framing.HeaderSize], typ.TagRotblMeta); err != nil {
		return Meta{}, err
	}
	pos := framing.HeaderSize

	dataSize, n, err := codec.DecodeWithChecksum[uint64](b[pos:], "rotblmeta: data_encoded_size")
	if err != nil {
		return Meta{}, err
	}
	pos += n

	dataTotal := int(dataSize) + codec.ChecksumTagSize
	if len(b) < pos+dataTotal {
		return Meta{}, fmt.Errorf("rotblmeta: data: %w", codec.ErrTruncated)
	}
	dataR := codec.NewChecksumReader(b[pos : pos+dataTotal])
	data := make([]byte, dataSize)
	if _, err := dataR.Read(data); err != nil {
		return Meta{}, fmt.Errorf("rotblmeta: data: %w", err)
	}
	if err := dataR.VerifyChecksum("rotblmeta: data"); err != nil {
		return Meta{}, err
	}

	var p payload
	if err := gojson.Unmarshal(data, &p); err != nil {
		return Meta{}, fmt.Errorf("rotblmeta: unmarshal: %w", err)
	}
	return Meta{seq: p.Seq, userData: p.UserData}, nil
}
