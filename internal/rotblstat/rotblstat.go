// Package rotblstat implements RotblStat, a table's summary statistics:
// block count, key count, and the on-disk size of its data and index
// regions.
//
// Reference: original_source rotbl/stat.rs (RotblStat, block_avg_size as a
// derived method, len-prefixed serde_json payload framed by two checksums).
// Unlike Block, BlockIndex, and Meta, a RotblStat record carries no Header:
// the format spec's Type-tag list (§4.2) names no tag for it, so this is
// encoded as a length-prefixed, checksummed JSON payload only.
package rotblstat

import (
	"bytes"
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/drmingdrmer/rotbl/internal/codec"
)

// Stat summarizes a table's structural statistics.
type Stat struct {
	BlockNum  uint32 `json:"block_num"`
	KeyNum    uint64 `json:"key_num"`
	DataSize  uint64 `json:"data_size"`
	IndexSize uint64 `json:"index_size"`
}

// BlockAvgSize returns the average encoded size of a data block, or 0 if
// there are no blocks.
func (s Stat) BlockAvgSize() uint64 {
	if s.BlockNum == 0 {
		return 0
	}
	return s.DataSize / uint64(s.BlockNum)
}

// Encode encodes s as: WithChecksum(len:u64) ∥ data_bytes ∥ Checksum(8).
func Encode(s Stat) ([]byte, error) {
	data, err := gojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("rotblstat: marshal: %w", err)
	}

	var out bytes.Buffer
	out.Write(codec.EncodeWithChecksum(uint64(len(data))))

	dataW := codec.NewChecksumWriter(&out)
	dataW.Write(data) //nolint:errcheck
	dataW.WriteChecksum()

	return out.Bytes(), nil
}

// Decode decodes a Stat from b, verifying both embedded checksums.
func Decode(b []byte) (Stat, error) {
	dataSize, n, err := codec.DecodeWithChecksum[uint64](b, "rotblstat: len")
	if err != nil {
		return Stat{}, err
	}
	pos := n

	dataTotal := int(dataSize) + codec.ChecksumTagSize
	if len(b) < pos+dataTotal {
		return Stat{}, fmt.Errorf("rotblstat: data: %w", codec.ErrTruncated)
	}
	dataR := codec.NewChecksumReader(b[pos : pos+dataTotal])
	data := make([]byte, dataSize)
	if _, err := dataR.Read(data); err != nil {
		return Stat{}, fmt.Errorf("rotblstat: data: %w", err)
	}
	if err := dataR.VerifyChecksum("rotblstat: data"); err != nil {
		return Stat{}, err
	}

	var s Stat
	if err := gojson.Unmarshal(data, &s); err != nil {
		return Stat{}, fmt.Errorf("rotblstat: unmarshal: %w", err)
	}
	return s, nil
}
