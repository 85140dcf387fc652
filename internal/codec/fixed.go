package codec

import "encoding/binary"

// PutUint32 writes v as 4 big-endian bytes into b.
func PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// Uint32 reads 4 big-endian bytes from b.
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// PutUint64 writes v as 8 big-endian bytes into b.
func PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// Uint64 reads 8 big-endian bytes from b.
func Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
