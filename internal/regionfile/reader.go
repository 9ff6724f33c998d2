package regionfile

import (
	"encoding/binary"
	"fmt"
)

// Region is a parsed container. It borrows the input buffer; the buffer
// must not be mutated while the Region is in use.
type Region struct {
	Slots [SlotCount]Slot

	data []byte
}

// Parse decodes the directory of a region container. Payloads are sliced
// lazily via Payload and RawSectors; Parse itself only validates that the
// header is present.
func Parse(data []byte) (*Region, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncatedHeader, len(data))
	}

	r := &Region{data: data}
	for i := 0; i < SlotCount; i++ {
		loc := binary.BigEndian.Uint32(data[i*4:])
		r.Slots[i] = Slot{
			Offset:    loc >> 8,
			Count:     uint8(loc),
			Timestamp: binary.BigEndian.Uint32(data[SectorSize+i*4:]),
		}
	}
	return r, nil
}

// Size returns the container's total length in bytes.
func (r *Region) Size() int { return len(r.data) }

// Payload slices the chunk record for slot i.
// Returns ErrPayloadOutOfBounds when the slot points past the buffer or
// the declared length claims bytes the container does not have.
func (r *Region) Payload(i int) (Payload, error) {
	s := r.Slots[i]
	if s.Empty() {
		return Payload{}, fmt.Errorf("%w: slot %d is empty", ErrPayloadOutOfBounds, i)
	}

	start := int(s.Offset) * SectorSize
	if start+5 > len(r.data) {
		return Payload{}, fmt.Errorf("%w: slot %d at sector %d", ErrPayloadOutOfBounds, i, s.Offset)
	}

	// Declared length covers the scheme byte plus the data.
	length := int(binary.BigEndian.Uint32(r.data[start:]))
	if length < 1 || start+4+length > len(r.data) {
		return Payload{}, fmt.Errorf("%w: slot %d declares %d bytes", ErrPayloadOutOfBounds, i, length)
	}

	return Payload{
		Scheme: r.data[start+4],
		Data:   r.data[start+5 : start+4+length],
	}, nil
}

// RawSectors returns the sector span allocated to slot i, clamped to the
// buffer's extent. Used to carry unreadable chunks through verbatim: it
// needs only the directory entry, not a parseable length prefix.
func (r *Region) RawSectors(i int) []byte {
	s := r.Slots[i]
	if s.Empty() {
		return nil
	}

	start := int(s.Offset) * SectorSize
	if start >= len(r.data) {
		return nil
	}

	count := int(s.Count)
	if count < 1 {
		count = 1
	}
	end := start + count*SectorSize
	if end > len(r.data) {
		end = len(r.data)
	}
	return r.data[start:end]
}
