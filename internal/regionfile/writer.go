package regionfile

import (
	"encoding/binary"
	"fmt"
)

// Writer assembles a fresh container with an append-only sector cursor.
// Output is built compacted by construction: payloads land in allocation
// order with no gaps and no free-list reuse.
type Writer struct {
	buf   []byte
	slots [SlotCount]Slot
	next  uint32 // next free sector index
}

// NewWriter returns a Writer with the directory reserved and the cursor
// at the first data sector.
func NewWriter() *Writer {
	return &Writer{
		buf:  make([]byte, HeaderSize),
		next: DataStartSector,
	}
}

// Append writes a length-prefixed chunk record for slot i and records its
// directory entry. The record is rebuilt from scheme and data, which for
// an unmodified chunk reproduces the source record byte for byte.
func (w *Writer) Append(i int, scheme byte, data []byte, timestamp uint32) error {
	record := make([]byte, 5+len(data))
	binary.BigEndian.PutUint32(record, uint32(len(data)+1))
	record[4] = scheme
	copy(record[5:], data)
	return w.appendRecord(i, record, timestamp)
}

// AppendRaw writes pre-assembled sector bytes for slot i unchanged, used
// to carry corrupt chunks through without reinterpreting them.
func (w *Writer) AppendRaw(i int, raw []byte, timestamp uint32) error {
	if len(raw) == 0 {
		return nil
	}
	return w.appendRecord(i, raw, timestamp)
}

func (w *Writer) appendRecord(i int, record []byte, timestamp uint32) error {
	offset, count, err := w.allocate(len(record))
	if err != nil {
		return err
	}
	copy(w.buf[int(offset)*SectorSize:], record)
	w.slots[i] = Slot{Offset: offset, Count: count, Timestamp: timestamp}
	return nil
}

// allocate reserves whole sectors for n bytes at the cursor, zero-padding
// the final partial sector, and returns the starting sector index.
func (w *Writer) allocate(n int) (uint32, uint8, error) {
	sectors := sectorsFor(n)
	if int(w.next)+sectors > MaxSectorOffset+1 {
		return 0, 0, fmt.Errorf("%w: %d sectors at cursor %d", ErrAllocationOverflow, sectors, w.next)
	}

	offset := w.next
	w.next += uint32(sectors)
	w.buf = append(w.buf, make([]byte, sectors*SectorSize)...)

	count := sectors
	if count > maxSectorCount {
		count = maxSectorCount
	}
	return offset, uint8(count), nil
}

// Len returns the current output size in bytes.
func (w *Writer) Len() int { return len(w.buf) }

// Chunks returns how many slots have been written so far.
func (w *Writer) Chunks() int {
	n := 0
	for _, s := range w.slots {
		if !s.Empty() {
			n++
		}
	}
	return n
}

// Bytes serializes the directory into the header and returns the finished
// container. Slots never appended stay empty in the output directory.
func (w *Writer) Bytes() []byte {
	for i, s := range w.slots {
		binary.BigEndian.PutUint32(w.buf[i*4:], s.Offset<<8|uint32(s.Count))
		binary.BigEndian.PutUint32(w.buf[SectorSize+i*4:], s.Timestamp)
	}
	return w.buf
}
