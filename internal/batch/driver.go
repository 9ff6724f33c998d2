package batch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/craftops/regionpress"
	"github.com/craftops/regionpress/internal/stats"
	"github.com/craftops/regionpress/internal/worldstore"
)

// regionName matches region container filenames, e.g. "r.-3.12.mca".
var regionName = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.mca$`)

// DefaultWorkers is the number of files compacted concurrently. Each
// worker holds one input and one output buffer fully resident, so the
// bound is memory, not CPU.
const DefaultWorkers = 4

// Driver walks a source store, compacts every region file, and writes
// the survivors to a destination store. One bad file never aborts the
// batch; failures are reported per file in the Summary.
type Driver struct {
	press        *regionpress.Compactor
	src          worldstore.Store
	dst          worldstore.Store
	workers      int
	deleteSource bool
	progress     ProgressFunc
	logger       *zap.Logger
	stats        stats.Collector
}

// Option configures the Driver.
type Option func(*Driver)

// WithWorkers sets the number of files processed concurrently.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithDeleteSource deletes each source file once its output has been
// durably written (or once the file proved wholly discardable).
func WithDeleteSource(del bool) Option {
	return func(d *Driver) { d.deleteSource = del }
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Driver) { d.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(d *Driver) { d.stats = c }
}

// New creates a Driver compacting from src into dst. When src and dst
// are the same store, files are replaced in place and never deleted.
func New(press *regionpress.Compactor, src, dst worldstore.Store, opts ...Option) *Driver {
	d := &Driver{
		press:    press,
		src:      src,
		dst:      dst,
		workers:  DefaultWorkers,
		progress: func(Progress) {},
		logger:   zap.NewNop(),
		stats:    stats.NewNoop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FileResult is the outcome for one region file.
type FileResult struct {
	Name      string
	Err       error
	Kept      int
	Discarded int
	Corrupt   int
	BytesIn   int
	BytesOut  int

	// Dropped marks files whose every chunk was discardable; no output
	// file is written for them.
	Dropped bool
}

// Summary aggregates a whole batch run.
type Summary struct {
	Files     []FileResult
	Processed int
	Failed    int
	Dropped   int
	Kept      int64
	Discarded int64
	BytesIn   int64
	BytesOut  int64
	Elapsed   time.Duration
}

// Run compacts every region file in the source store. It always makes a
// best-effort pass over all files and returns a non-nil error only when
// at least one file failed or the context was cancelled.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	names, err := d.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing source: %w", err)
	}

	var files []string
	for _, name := range names {
		if regionName.MatchString(name) {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	d.progress(Progress{Phase: "scan", FilesTotal: len(files), StartTime: start})

	var (
		mu      sync.Mutex
		results []FileResult
		wg      sync.WaitGroup
		sem     = make(chan struct{}, d.workers)
	)

	report := func() Progress {
		p := Progress{Phase: "compact", FilesTotal: len(files), StartTime: start}
		for _, r := range results {
			p.FilesDone++
			if r.Err != nil {
				p.FilesFailed++
			}
			p.Kept += int64(r.Kept)
			p.Discarded += int64(r.Discarded)
			p.BytesIn += int64(r.BytesIn)
			p.BytesOut += int64(r.BytesOut)
		}
		return p
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()

			fr := d.processFile(ctx, name)

			mu.Lock()
			results = append(results, fr)
			p := report()
			mu.Unlock()
			d.progress(p)
		}(name)
	}
	wg.Wait()

	sum := &Summary{Files: results, Elapsed: time.Since(start)}
	for _, r := range results {
		sum.Kept += int64(r.Kept)
		sum.Discarded += int64(r.Discarded)
		sum.BytesIn += int64(r.BytesIn)
		sum.BytesOut += int64(r.BytesOut)
		switch {
		case r.Err != nil:
			sum.Failed++
		case r.Dropped:
			sum.Dropped++
			sum.Processed++
		default:
			sum.Processed++
		}
	}

	done := report()
	done.Phase = "done"
	d.progress(done)

	if err := ctx.Err(); err != nil {
		return sum, err
	}
	if sum.Failed > 0 {
		return sum, fmt.Errorf("batch: %d of %d files failed", sum.Failed, len(files))
	}
	return sum, nil
}

// processFile runs the whole pipeline for one region file.
func (d *Driver) processFile(ctx context.Context, name string) FileResult {
	fr := FileResult{Name: name}
	started := time.Now()

	data, err := d.src.Read(ctx, name)
	if err != nil {
		return d.fail(fr, fmt.Errorf("reading: %w", err))
	}
	fr.BytesIn = len(data)

	res, err := d.press.Compact(ctx, data)
	if err != nil {
		return d.fail(fr, err)
	}
	fr.Kept = res.Kept
	fr.Discarded = res.Discarded
	fr.Corrupt = res.Corrupt

	if res.Empty() {
		// Nothing worth keeping; skip the file entirely rather than
		// writing an empty container.
		fr.Dropped = true
		d.stats.IncCounter(stats.MetricFilesDropped, 1)
		d.logger.Info("region wholly discardable, no output written",
			zap.String("region", name),
			zap.Int("discarded", res.Discarded),
		)
		if d.deleteSource {
			if err := d.src.Delete(ctx, name); err != nil {
				return d.fail(fr, fmt.Errorf("deleting source: %w", err))
			}
		}
		return fr
	}

	if err := d.dst.Write(ctx, name, res.Data); err != nil {
		return d.fail(fr, fmt.Errorf("writing: %w", err))
	}
	fr.BytesOut = res.BytesOut

	// Destructive cleanup happens only after the output is durable, and
	// never in replace mode where the write already took the slot.
	if d.deleteSource && d.src != d.dst {
		if err := d.src.Delete(ctx, name); err != nil {
			return d.fail(fr, fmt.Errorf("deleting source: %w", err))
		}
	}

	d.stats.IncCounter(stats.MetricFilesProcessed, 1)
	d.stats.IncCounter(stats.MetricBytesIn, int64(fr.BytesIn))
	d.stats.IncCounter(stats.MetricBytesOut, int64(fr.BytesOut))
	d.stats.ObserveHistogram(stats.MetricCompactSeconds, time.Since(started).Seconds())

	d.logger.Info("region compacted",
		zap.String("region", name),
		zap.Int("kept", fr.Kept),
		zap.Int("discarded", fr.Discarded),
		zap.Int("corrupt", fr.Corrupt),
		zap.Int("bytesIn", fr.BytesIn),
		zap.Int("bytesOut", fr.BytesOut),
	)
	return fr
}

func (d *Driver) fail(fr FileResult, err error) FileResult {
	fr.Err = err
	if !errors.Is(err, context.Canceled) {
		d.stats.IncCounter(stats.MetricFilesFailed, 1)
		d.logger.Error("region failed",
			zap.String("region", fr.Name),
			zap.Error(err),
		)
		d.progress(Progress{Phase: "error", CurrentFile: fr.Name, Error: err})
	}
	return fr
}
