// Package regionfile reads and writes Minecraft region containers: files
// packing up to 1024 chunk payloads behind a fixed 8 KiB directory of
// sector offsets and timestamps.
package regionfile

import "errors"

const (
	// SectorSize is the fixed allocation unit within a container.
	SectorSize = 4096

	// HeaderSize covers the location table plus the timestamp table.
	HeaderSize = 2 * SectorSize

	// SlotCount is the number of directory entries (a 32x32 chunk grid).
	SlotCount = 1024

	// DataStartSector is the first sector available for payloads; sectors
	// 0 and 1 hold the directory.
	DataStartSector = 2

	// MaxSectorOffset is the largest representable sector offset. Offsets
	// are stored as 24-bit big-endian integers.
	MaxSectorOffset = 1<<24 - 1

	// maxSectorCount is where the legacy one-byte sector count saturates.
	// The true extent is always recoverable from the payload length prefix.
	maxSectorCount = 255
)

// Compression scheme bytes as stored on disk after the payload length.
const (
	SchemeGZip byte = 1
	SchemeZlib byte = 2
	SchemeNone byte = 3
	SchemeLZ4  byte = 4

	// ExternalFlag marks payloads whose bytes live in a sibling .mcc file.
	ExternalFlag byte = 0x80
)

var (
	// ErrTruncatedHeader indicates the buffer is too short to hold the
	// 8 KiB directory. This is fatal for the whole file.
	ErrTruncatedHeader = errors.New("regionfile: truncated header")

	// ErrPayloadOutOfBounds indicates a payload's declared length runs
	// past the end of the container. Recoverable per chunk.
	ErrPayloadOutOfBounds = errors.New("regionfile: payload out of bounds")

	// ErrAllocationOverflow indicates the output grew past the 24-bit
	// sector offset range. Fatal for the whole file.
	ErrAllocationOverflow = errors.New("regionfile: sector offset overflow")
)

// Slot is one directory entry addressing one chunk.
type Slot struct {
	// Offset is the payload's starting sector, 0 for an empty slot.
	Offset uint32

	// Count is the legacy sector count byte. Advisory only: it saturates
	// at 255, so consumers must recompute the true span from the payload
	// length prefix.
	Count uint8

	// Timestamp is the last-write time in epoch seconds.
	Timestamp uint32
}

// Empty reports whether the slot holds no payload.
func (s Slot) Empty() bool { return s.Offset == 0 }

// Payload is the raw on-disk record for one chunk: a compression scheme
// byte plus the (possibly compressed) chunk tree bytes.
type Payload struct {
	Scheme byte
	Data   []byte
}

// External reports whether the payload bytes live in a sibling file.
// Such payloads carry no usable data in the container itself.
func (p Payload) External() bool { return p.Scheme&ExternalFlag != 0 }

// SlotIndex returns the directory index for chunk coordinates (x, z).
func SlotIndex(x, z int) int {
	return (x & 31) + (z&31)*32
}

// sectorsFor returns how many whole sectors n bytes occupy.
func sectorsFor(n int) int {
	return (n + SectorSize - 1) / SectorSize
}
