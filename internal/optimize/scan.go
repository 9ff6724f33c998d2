package optimize

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformed indicates NBT bytes the scanner cannot walk. The caller
// keeps the chunk unstripped when this happens.
var ErrMalformed = errors.New("optimize: malformed tree")

// NBT tag types.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

func readInt32(data []byte, pos int) (int, int, error) {
	if pos+4 > len(data) {
		return 0, 0, fmt.Errorf("%w: int at %d", ErrMalformed, pos)
	}
	return int(int32(binary.BigEndian.Uint32(data[pos:]))), pos + 4, nil
}

// readName decodes a length-prefixed tag name.
func readName(data []byte, pos int) (string, int, error) {
	if pos+2 > len(data) {
		return "", 0, fmt.Errorf("%w: name at %d", ErrMalformed, pos)
	}
	n := int(binary.BigEndian.Uint16(data[pos:]))
	pos += 2
	if pos+n > len(data) {
		return "", 0, fmt.Errorf("%w: name at %d", ErrMalformed, pos)
	}
	return string(data[pos : pos+n]), pos + n, nil
}

// skipPayload returns the position just past the payload of a tag of the
// given type starting at pos.
func skipPayload(data []byte, pos int, tag byte) (int, error) {
	switch tag {
	case tagByte:
		pos++
	case tagShort:
		pos += 2
	case tagInt, tagFloat:
		pos += 4
	case tagLong, tagDouble:
		pos += 8
	case tagByteArray:
		n, next, err := readInt32(data, pos)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: byte array at %d", ErrMalformed, pos)
		}
		pos = next + n
	case tagString:
		_, next, err := readName(data, pos)
		if err != nil {
			return 0, err
		}
		pos = next
	case tagList:
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: list at %d", ErrMalformed, pos)
		}
		elem := data[pos]
		n, next, err := readInt32(data, pos+1)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: list at %d", ErrMalformed, pos)
		}
		pos = next
		for i := 0; i < n; i++ {
			pos, err = skipPayload(data, pos, elem)
			if err != nil {
				return 0, err
			}
		}
	case tagCompound:
		for {
			if pos >= len(data) {
				return 0, fmt.Errorf("%w: unterminated compound", ErrMalformed)
			}
			entry := data[pos]
			pos++
			if entry == tagEnd {
				break
			}
			var err error
			if _, pos, err = readName(data, pos); err != nil {
				return 0, err
			}
			if pos, err = skipPayload(data, pos, entry); err != nil {
				return 0, err
			}
		}
	case tagIntArray:
		n, next, err := readInt32(data, pos)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: int array at %d", ErrMalformed, pos)
		}
		pos = next + 4*n
	case tagLongArray:
		n, next, err := readInt32(data, pos)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: long array at %d", ErrMalformed, pos)
		}
		pos = next + 8*n
	default:
		return 0, fmt.Errorf("%w: tag %d at %d", ErrMalformed, tag, pos)
	}

	if pos > len(data) {
		return 0, fmt.Errorf("%w: payload past end", ErrMalformed)
	}
	return pos, nil
}
