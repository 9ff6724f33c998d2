package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Tnze/go-mc/nbt"

	"github.com/craftops/regionpress"
	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/regionfile"
	"github.com/craftops/regionpress/internal/worldstore"
	"github.com/craftops/regionpress/internal/worldstore/memstore"
)

// regionWith builds a container holding one chunk per given inhabited
// time, starting at slot 0. Generation is left unfinished on every
// chunk, so the stock policy discards exactly the never-inhabited ones.
func regionWith(t *testing.T, inhabited ...int64) []byte {
	t.Helper()
	w := regionfile.NewWriter()
	for i, ticks := range inhabited {
		tree, err := nbt.Marshal(map[string]any{
			"DataVersion":   int32(3465),
			"Status":        "minecraft:features",
			"InhabitedTime": ticks,
			"sections":      []map[string]any{{"Y": int8(0)}},
		})
		if err != nil {
			t.Fatalf("nbt.Marshal() error = %v", err)
		}
		data, err := codec.Compress(regionfile.SchemeZlib, tree)
		if err != nil {
			t.Fatalf("codec.Compress() error = %v", err)
		}
		if err := w.Append(i, regionfile.SchemeZlib, data, 1); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return w.Bytes()
}

func newPress(t *testing.T) *regionpress.Compactor {
	t.Helper()
	press, err := regionpress.New()
	if err != nil {
		t.Fatalf("regionpress.New() error = %v", err)
	}
	return press
}

func TestRun_CompactsBatch(t *testing.T) {
	ctx := context.Background()
	src := memstore.New()
	dst := memstore.New()

	src.Write(ctx, "r.0.0.mca", regionWith(t, 100, 0))
	src.Write(ctx, "r.-1.2.mca", regionWith(t, 50))
	src.Write(ctx, "level.dat", []byte("not a region")) // ignored
	src.Write(ctx, "r.0.0.mca.bak", []byte("ignored too"))

	d := New(newPress(t), src, dst)
	sum, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Processed != 2 || sum.Failed != 0 {
		t.Errorf("Processed = %d, Failed = %d, want 2, 0", sum.Processed, sum.Failed)
	}
	if sum.Kept != 2 || sum.Discarded != 1 {
		t.Errorf("Kept = %d, Discarded = %d, want 2, 1", sum.Kept, sum.Discarded)
	}

	names, _ := dst.List(ctx)
	if len(names) != 2 {
		t.Fatalf("dst holds %v, want the two region files", names)
	}
	for _, name := range names {
		data, err := dst.Read(ctx, name)
		if err != nil {
			t.Fatalf("Read(%q) error = %v", name, err)
		}
		if _, err := regionfile.Parse(data); err != nil {
			t.Errorf("output %q does not parse: %v", name, err)
		}
	}
}

func TestRun_DropsWhollyDiscardableFile(t *testing.T) {
	ctx := context.Background()
	src := memstore.New()
	dst := memstore.New()

	src.Write(ctx, "r.0.0.mca", regionWith(t, 0, 0, 0))

	d := New(newPress(t), src, dst)
	sum, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", sum.Dropped)
	}
	if _, err := dst.Read(ctx, "r.0.0.mca"); !errors.Is(err, worldstore.ErrNotFound) {
		t.Error("empty output written, want no file at all")
	}
	// Without delete-source, the original stays put.
	if _, err := src.Read(ctx, "r.0.0.mca"); err != nil {
		t.Errorf("source file gone: %v", err)
	}
}

func TestRun_DeleteSource(t *testing.T) {
	ctx := context.Background()
	src := memstore.New()
	dst := memstore.New()

	src.Write(ctx, "r.0.0.mca", regionWith(t, 100))
	src.Write(ctx, "r.0.1.mca", regionWith(t, 0)) // wholly discardable

	d := New(newPress(t), src, dst, WithDeleteSource(true))
	if _, err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if names, _ := src.List(ctx); len(names) != 0 {
		t.Errorf("source still holds %v, want empty", names)
	}
	if _, err := dst.Read(ctx, "r.0.0.mca"); err != nil {
		t.Errorf("compacted output missing: %v", err)
	}
}

func TestRun_ReplaceInPlace(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	input := regionWith(t, 100, 0)
	store.Write(ctx, "r.0.0.mca", input)

	// Same store on both sides with delete-source set: the write replaces
	// the file and no delete follows it.
	d := New(newPress(t), store, store, WithDeleteSource(true))
	if _, err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out, err := store.Read(ctx, "r.0.0.mca")
	if err != nil {
		t.Fatalf("replaced file missing: %v", err)
	}
	if len(out) >= len(input) {
		t.Errorf("replaced file is %d bytes, want smaller than %d", len(out), len(input))
	}
}

func TestRun_OneBadFileDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	src := memstore.New()
	dst := memstore.New()

	src.Write(ctx, "r.0.0.mca", []byte("much too short"))
	src.Write(ctx, "r.0.1.mca", regionWith(t, 100))

	d := New(newPress(t), src, dst, WithWorkers(1))
	sum, err := d.Run(ctx)
	if err == nil {
		t.Fatal("Run() error = nil, want failure reported")
	}

	if sum.Failed != 1 || sum.Processed != 1 {
		t.Errorf("Failed = %d, Processed = %d, want 1, 1", sum.Failed, sum.Processed)
	}
	if _, err := dst.Read(ctx, "r.0.1.mca"); err != nil {
		t.Errorf("good file not written: %v", err)
	}
	for _, fr := range sum.Files {
		if fr.Name == "r.0.0.mca" && fr.Err == nil {
			t.Error("bad file carries no error in its result")
		}
	}
}

func TestRun_ProgressPhases(t *testing.T) {
	ctx := context.Background()
	src := memstore.New()
	dst := memstore.New()
	src.Write(ctx, "r.0.0.mca", regionWith(t, 100))

	var mu sync.Mutex
	phases := map[string]bool{}
	d := New(newPress(t), src, dst, WithProgress(func(p Progress) {
		mu.Lock()
		phases[p.Phase] = true
		mu.Unlock()
	}))

	if _, err := d.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, phase := range []string{"scan", "compact", "done"} {
		if !phases[phase] {
			t.Errorf("progress phase %q never reported", phase)
		}
	}
}

func TestRun_CancelledContext(t *testing.T) {
	src := memstore.New()
	dst := memstore.New()
	src.Write(context.Background(), "r.0.0.mca", regionWith(t, 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(newPress(t), src, dst)
	if _, err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
		{5 << 30, "5.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
