package regionpress_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Tnze/go-mc/nbt"

	"github.com/craftops/regionpress"
	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/optimize"
	"github.com/craftops/regionpress/internal/regionfile"
)

// chunkDoc builds a compressed flattened chunk payload for tests.
func chunkDoc(t *testing.T, inhabited int64, status string, extra map[string]any) []byte {
	t.Helper()
	doc := map[string]any{
		"DataVersion":   int32(3465),
		"Status":        status,
		"InhabitedTime": inhabited,
		"sections": []map[string]any{
			{"Y": int8(0)},
		},
	}
	for k, v := range extra {
		doc[k] = v
	}

	tree, err := nbt.Marshal(doc)
	if err != nil {
		t.Fatalf("nbt.Marshal() error = %v", err)
	}
	data, err := codec.Compress(regionfile.SchemeZlib, tree)
	if err != nil {
		t.Fatalf("codec.Compress() error = %v", err)
	}
	return data
}

func mustAppend(t *testing.T, w *regionfile.Writer, slot int, data []byte, ts uint32) {
	t.Helper()
	if err := w.Append(slot, regionfile.SchemeZlib, data, ts); err != nil {
		t.Fatalf("Append(%d) error = %v", slot, err)
	}
}

func mustCompact(t *testing.T, press *regionpress.Compactor, input []byte) *regionpress.Result {
	t.Helper()
	res, err := press.Compact(context.Background(), input)
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	return res
}

func TestCompact_KeepsInhabitedByteIdentical(t *testing.T) {
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 500, "minecraft:full", nil), 111)
	mustAppend(t, w, 100, chunkDoc(t, 42, "minecraft:full", nil), 222)
	input := w.Bytes()

	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Kept != 2 || res.Discarded != 0 {
		t.Fatalf("Kept = %d, Discarded = %d, want 2, 0", res.Kept, res.Discarded)
	}
	// Nothing was dropped or rewritten, so the rebuilt container must
	// match the source byte for byte.
	if !bytes.Equal(res.Data, input) {
		t.Error("output differs from input despite all chunks kept")
	}
}

func TestCompact_DiscardsFringeChunks(t *testing.T) {
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 0, "minecraft:structure_starts", nil), 0) // generation barely started
	mustAppend(t, w, 1, chunkDoc(t, 900, "minecraft:full", nil), 5)           // inhabited
	mustAppend(t, w, 2, chunkDoc(t, 0, "minecraft:features", nil), 0)         // unfinished, never visited
	input := w.Bytes()

	press, err := regionpress.New(regionpress.WithPolicy(classify.Default()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Scanned != 3 {
		t.Errorf("Scanned = %d, want 3", res.Scanned)
	}
	if res.Kept != 1 {
		t.Errorf("Kept = %d, want 1", res.Kept)
	}
	if res.Discarded != 2 {
		t.Errorf("Discarded = %d, want 2", res.Discarded)
	}
	if res.BytesOut >= res.BytesIn {
		t.Errorf("BytesOut = %d, want < BytesIn %d", res.BytesOut, res.BytesIn)
	}

	out, err := regionfile.Parse(res.Data)
	if err != nil {
		t.Fatalf("Parse(output) error = %v", err)
	}
	if !out.Slots[0].Empty() || !out.Slots[2].Empty() {
		t.Error("discarded slots still present in output directory")
	}
	if out.Slots[1].Empty() {
		t.Error("kept slot missing from output directory")
	}
	if out.Slots[1].Timestamp != 5 {
		t.Errorf("Timestamp = %d, want carried 5", out.Slots[1].Timestamp)
	}
}

func TestCompact_KeepsFullyGeneratedUntouched(t *testing.T) {
	// Never-inhabited alone is not grounds for discard: a finished,
	// non-empty chunk stays even if no player ever saw it.
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 0, "minecraft:full", nil), 3)
	input := w.Bytes()

	press, err := regionpress.New(regionpress.WithPolicy(classify.Default()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Kept != 1 || res.Discarded != 0 {
		t.Fatalf("Kept = %d, Discarded = %d, want 1, 0", res.Kept, res.Discarded)
	}
	if !bytes.Equal(res.Data, input) {
		t.Error("output differs from input despite the chunk being kept")
	}
}

func TestCompact_Idempotent(t *testing.T) {
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 0, "minecraft:full", nil), 0)
	mustAppend(t, w, 7, chunkDoc(t, 100, "minecraft:full", nil), 9)
	mustAppend(t, w, 31, chunkDoc(t, 0, "minecraft:empty", nil), 0)
	input := w.Bytes()

	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first := mustCompact(t, press, input)
	second := mustCompact(t, press, first.Data)

	if second.Discarded != 0 {
		t.Errorf("second pass Discarded = %d, want 0", second.Discarded)
	}
	if !bytes.Equal(second.Data, first.Data) {
		t.Error("second pass altered a compacted container")
	}
}

func TestCompact_OptimizerStripsCaches(t *testing.T) {
	heights := map[string]any{
		"Heightmaps": map[string]any{"MOTION_BLOCKING": make([]int64, 37)},
		"isLightOn":  int8(1),
	}
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 77, "minecraft:full", heights), 1)
	input := w.Bytes()

	press, err := regionpress.New(regionpress.WithOptimizer(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Kept != 1 || res.Stripped != 1 {
		t.Fatalf("Kept = %d, Stripped = %d, want 1, 1", res.Kept, res.Stripped)
	}

	out, err := regionfile.Parse(res.Data)
	if err != nil {
		t.Fatalf("Parse(output) error = %v", err)
	}
	p, err := out.Payload(0)
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}
	tree, err := codec.Decompress(p.Scheme, p.Data)
	if err != nil {
		t.Fatalf("Decompress() error = %v", err)
	}
	if _, changed, err := optimize.Strip(tree); err != nil || changed {
		t.Errorf("output chunk still holds cache entries (changed %v, err %v)", changed, err)
	}
}

func TestCompact_CarriesCorruptStream(t *testing.T) {
	w := regionfile.NewWriter()
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF} // not a zlib stream
	if err := w.Append(3, regionfile.SchemeZlib, garbage, 8); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	input := w.Bytes()

	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Corrupt != 1 {
		t.Fatalf("Corrupt = %d, want 1", res.Corrupt)
	}
	if res.Empty() {
		t.Fatal("Empty() = true, corrupt chunk should be carried")
	}

	out, err := regionfile.Parse(res.Data)
	if err != nil {
		t.Fatalf("Parse(output) error = %v", err)
	}
	p, err := out.Payload(3)
	if err != nil {
		t.Fatalf("Payload() error = %v", err)
	}
	if !bytes.Equal(p.Data, garbage) {
		t.Error("corrupt payload not carried verbatim")
	}
}

func TestCompact_CarriesUnsliceableSlotVerbatim(t *testing.T) {
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 50, "minecraft:full", nil), 1)
	input := w.Bytes()

	// Corrupt slot 0's record in place: a declared length far past the
	// buffer makes the payload unsliceable.
	binary.BigEndian.PutUint32(input[regionfile.HeaderSize:], 1<<20)

	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Corrupt != 1 {
		t.Fatalf("Corrupt = %d, want 1", res.Corrupt)
	}

	out, err := regionfile.Parse(res.Data)
	if err != nil {
		t.Fatalf("Parse(output) error = %v", err)
	}
	// The slot's sectors are copied untouched, bad length included.
	want := input[regionfile.HeaderSize : regionfile.HeaderSize+regionfile.SectorSize]
	got := res.Data[regionfile.HeaderSize : regionfile.HeaderSize+regionfile.SectorSize]
	if !bytes.Equal(got, want) {
		t.Error("corrupt sectors not carried verbatim")
	}
	if out.Slots[0].Empty() {
		t.Error("corrupt slot missing from output directory")
	}
}

func TestCompact_DiscardCorrupt(t *testing.T) {
	w := regionfile.NewWriter()
	if err := w.Append(0, regionfile.SchemeZlib, []byte{0xBA, 0xD0}, 0); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	input := w.Bytes()

	policy := classify.Default()
	policy.DiscardCorrupt = true
	press, err := regionpress.New(regionpress.WithPolicy(policy))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, input)
	if res.Corrupt != 1 {
		t.Errorf("Corrupt = %d, want 1", res.Corrupt)
	}
	if !res.Empty() {
		t.Error("Empty() = false, corrupt chunk should be dropped")
	}
}

func TestCompact_EmptyRegion(t *testing.T) {
	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res := mustCompact(t, press, make([]byte, regionfile.HeaderSize))
	if !res.Empty() {
		t.Error("Empty() = false, want true")
	}
	if res.Scanned != 0 {
		t.Errorf("Scanned = %d, want 0", res.Scanned)
	}
	if len(res.Data) != regionfile.HeaderSize {
		t.Errorf("output len = %d, want bare header %d", len(res.Data), regionfile.HeaderSize)
	}
}

func TestCompact_TruncatedHeader(t *testing.T) {
	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := press.Compact(context.Background(), make([]byte, 100)); !errors.Is(err, regionpress.ErrTruncatedHeader) {
		t.Errorf("Compact() error = %v, want ErrTruncatedHeader", err)
	}
}

func TestCompact_CancelledContext(t *testing.T) {
	w := regionfile.NewWriter()
	mustAppend(t, w, 0, chunkDoc(t, 1, "minecraft:full", nil), 0)

	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := press.Compact(ctx, w.Bytes()); !errors.Is(err, context.Canceled) {
		t.Errorf("Compact() error = %v, want context.Canceled", err)
	}
}
