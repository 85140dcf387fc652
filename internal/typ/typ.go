// Package typ defines the 8-byte ASCII Type magic tags and the numeric
// Version that begin every structural record in a rotbl file.
//
// Reference: aalhour/rockyardkv internal/block/footer.go defines a similar
// set of fixed magic-number constants (BlockBasedTableMagicNumber etc.) that
// identify an SST's structural family; rotbl tags identify the structural
// *element* instead of the whole file family, per the format spec.
package typ

import (
	"strings"
)

// Tag is an 8-byte ASCII, NUL-padded magic identifying a structural element.
type Tag [8]byte

func newTag(s string) Tag {
	if len(s) > 8 {
		panic("typ: tag literal longer than 8 bytes: " + s)
	}
	var t Tag
	copy(t[:], s)
	return t
}

// String renders the tag with its NUL padding trimmed.
func (t Tag) String() string {
	return strings.TrimRight(string(t[:]), "\x00")
}

// Version is the 8-byte big-endian structural version following a Tag.
type Version uint64

// V001 is the only version this module's codec speaks.
const V001 Version = 1

// Tags identifying each structural element the format spec names.
var (
	TagRotbl      = newTag("rotbl")
	TagRotblMeta  = newTag("rotbl_m")
	TagBlock      = newTag("blk")
	TagBlockIndex = newTag("blk_idx")

	// TagVLArray identifies the var_len_array (vla) auxiliary type. It is
	// reserved: no decoder in this module ever reads a record tagged with it.
	TagVLArray = newTag("vla")
)
