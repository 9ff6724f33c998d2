// Package chunk decodes region payloads into the handful of structured
// fields that drive the keep/discard decision.
package chunk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tnze/go-mc/nbt"

	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/regionfile"
)

// ErrTreeParse indicates decompressed payload bytes that do not parse as
// an NBT tree. Recoverable per chunk.
var ErrTreeParse = errors.New("chunk: tree parse failed")

// VersionFlattened is the data version where the Level wrapper was
// removed and chunk fields moved to the root compound (21w43a).
const VersionFlattened = 2844

// Summary holds the decoded fields a classification needs. It is a
// transient view: created per payload, discarded after the slot is
// processed.
type Summary struct {
	DataVersion   int32
	Status        string
	InhabitedTime int64 // game ticks a player spent near this chunk
	Sections      int
	HasBiomes     bool
	Entities      int
	BlockEntities int
	TileTicks     int

	// Unsupported marks payloads this package refuses to reinterpret:
	// external-file references and unknown compression schemes. They are
	// always kept untouched.
	Unsupported bool
}

// Flattened reports whether the chunk uses the post-21w43a layout.
func (s *Summary) Flattened() bool { return s.DataVersion >= VersionFlattened }

// FullyGenerated reports whether generation finished and the chunk is
// finalized for play. Pre-flattening chunks did not always carry a
// status, so generated biomes count as the populated signal there.
func (s *Summary) FullyGenerated() bool {
	status := strings.TrimPrefix(s.Status, "minecraft:")
	if s.Flattened() {
		return status == "full"
	}
	return status == "full" || s.HasBiomes
}

// root mirrors the flattened chunk layout. Unknown fields are skipped;
// pre-flattening chunks populate Level instead.
type root struct {
	DataVersion   int32            `nbt:"DataVersion"`
	Status        string           `nbt:"Status"`
	InhabitedTime int64            `nbt:"InhabitedTime"`
	Sections      []nbt.RawMessage `nbt:"sections"`
	BlockEntities []nbt.RawMessage `nbt:"block_entities"`
	Entities      []nbt.RawMessage `nbt:"entities"`
	BlockTicks    []nbt.RawMessage `nbt:"block_ticks"`
	FluidTicks    []nbt.RawMessage `nbt:"fluid_ticks"`
	Level         *level           `nbt:"Level"`
}

// level is the pre-flattening wrapper compound.
type level struct {
	Status        string           `nbt:"Status"`
	InhabitedTime int64            `nbt:"InhabitedTime"`
	Biomes        nbt.RawMessage   `nbt:"Biomes"`
	Sections      []nbt.RawMessage `nbt:"Sections"`
	Entities      []nbt.RawMessage `nbt:"Entities"`
	TileEntities  []nbt.RawMessage `nbt:"TileEntities"`
	TileTicks     []nbt.RawMessage `nbt:"TileTicks"`
	LiquidTicks   []nbt.RawMessage `nbt:"LiquidTicks"`
}

// Decode decompresses a payload and summarizes its tree. The returned
// tree bytes are the full decompressed NBT document, handed onward for
// optional optimization and re-encoding.
//
// External-file payloads are not decoded: they come back as a Summary
// marked Unsupported with nil tree bytes.
func Decode(p regionfile.Payload) (*Summary, []byte, error) {
	if p.External() {
		return &Summary{Unsupported: true}, nil, nil
	}
	if _, ok := codec.ForScheme(p.Scheme); !ok {
		return &Summary{Unsupported: true}, nil, nil
	}

	tree, err := codec.Decompress(p.Scheme, p.Data)
	if err != nil {
		return nil, nil, err
	}

	sum, err := Summarize(tree)
	if err != nil {
		return nil, nil, err
	}
	return sum, tree, nil
}

// Summarize parses an uncompressed NBT chunk document.
func Summarize(tree []byte) (*Summary, error) {
	var r root
	if err := nbt.Unmarshal(tree, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTreeParse, err)
	}

	s := &Summary{
		DataVersion:   r.DataVersion,
		Status:        r.Status,
		InhabitedTime: r.InhabitedTime,
		Sections:      len(r.Sections),
		Entities:      len(r.Entities),
		BlockEntities: len(r.BlockEntities),
		TileTicks:     len(r.BlockTicks) + len(r.FluidTicks),
	}

	if r.Level != nil && !s.Flattened() {
		s.Status = r.Level.Status
		s.InhabitedTime = r.Level.InhabitedTime
		s.Sections = len(r.Level.Sections)
		s.HasBiomes = r.Level.Biomes.Type != nbt.TagEnd
		s.Entities = len(r.Level.Entities)
		s.BlockEntities = len(r.Level.TileEntities)
		s.TileTicks = len(r.Level.TileTicks) + len(r.Level.LiquidTicks)
	}
	return s, nil
}
