// Package regionpress compacts Minecraft region containers by dropping
// generation-only chunks and rebuilding the sector layout.
//
// A region file packs up to 1024 independently compressed chunk payloads
// behind a fixed directory. Worlds accumulate chunks that were terrain
// generated but never visited; they are safely regenerable and only cost
// storage. Compact classifies every chunk with a configurable policy,
// keeps the player-relevant ones, optionally strips cache-only data from
// them, and emits a fresh, minimal container that any consumer of the
// original format can still read.
//
// Example usage:
//
//	press, err := regionpress.New(
//	    regionpress.WithPolicy(classify.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := press.Compact(ctx, input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("r.0.0.mca", out.Data, 0644)
package regionpress

import (
	"context"

	"go.uber.org/zap"

	"github.com/craftops/regionpress/internal/chunk"
	"github.com/craftops/regionpress/internal/classify"
	"github.com/craftops/regionpress/internal/codec"
	"github.com/craftops/regionpress/internal/optimize"
	"github.com/craftops/regionpress/internal/regionfile"
	"github.com/craftops/regionpress/internal/stats"

	// Payload codecs register themselves for their scheme bytes.
	_ "github.com/craftops/regionpress/internal/codec/gzipcodec"
	_ "github.com/craftops/regionpress/internal/codec/nocompcodec"
	_ "github.com/craftops/regionpress/internal/codec/zlibcodec"
)

// Sentinel errors for whole-file failure conditions. Everything else the
// slot loop hits is per-chunk and resolved by the corrupt-chunk fallback.
var (
	// ErrTruncatedHeader indicates the input cannot hold a directory.
	ErrTruncatedHeader = regionfile.ErrTruncatedHeader

	// ErrAllocationOverflow indicates the output outgrew the addressable
	// sector range.
	ErrAllocationOverflow = regionfile.ErrAllocationOverflow
)

// Compactor transforms region containers one file at a time.
// A Compactor is stateless across calls and safe for concurrent use.
type Compactor struct {
	policy   classify.Policy
	optimize bool
	logger   *zap.Logger
	stats    stats.Collector
}

// Result is the outcome of compacting one container.
type Result struct {
	// Data is the rebuilt container.
	Data []byte

	// Scanned counts non-empty input slots.
	Scanned int
	// Kept counts chunks retained in the output.
	Kept int
	// Discarded counts chunks dropped by the classifier.
	Discarded int
	// Corrupt counts chunks that failed to read or parse and were
	// carried through (or dropped, under Policy.DiscardCorrupt).
	Corrupt int
	// Stripped counts kept chunks whose cache-only data was removed.
	Stripped int

	// Chunks counts slots present in the output container.
	Chunks int

	// BytesIn and BytesOut measure the container before and after.
	BytesIn  int
	BytesOut int
}

// Empty reports whether the output holds no chunks at all. Callers
// typically skip writing an output file in that case.
func (r *Result) Empty() bool { return r.Chunks == 0 }

// New creates a Compactor with the given options.
// If no options are provided, the stock policy is used.
func New(opts ...Option) (*Compactor, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	c := &Compactor{
		policy:   cfg.policy,
		optimize: cfg.optimize,
		logger:   cfg.logger,
		stats:    cfg.stats,
	}

	c.logger.Debug("compactor initialized",
		zap.Duration("minInhabited", c.policy.MinInhabited),
		zap.Bool("requireFullyGenerated", c.policy.RequireFullyGenerated),
		zap.Bool("treatEmptyAsDiscard", c.policy.TreatEmptyAsDiscard),
		zap.Bool("optimizeChunks", c.optimize),
	)

	return c, nil
}

// Policy returns the classification policy in effect.
func (c *Compactor) Policy() classify.Policy { return c.policy }

// Compact rebuilds one container, retaining only chunks the policy keeps.
// The input buffer is never mutated; the output is assembled fresh with
// an append-only sector cursor, so it is compacted by construction.
//
// Per-chunk failures never fail the file. The only whole-file errors are
// ErrTruncatedHeader, ErrAllocationOverflow, and context cancellation.
func (c *Compactor) Compact(ctx context.Context, input []byte) (*Result, error) {
	region, err := regionfile.Parse(input)
	if err != nil {
		return nil, err
	}

	w := regionfile.NewWriter()
	res := &Result{BytesIn: len(input)}

	for i := 0; i < regionfile.SlotCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slot := region.Slots[i]
		if slot.Empty() {
			continue
		}
		res.Scanned++

		payload, err := region.Payload(i)
		if err != nil {
			if err := c.carryCorrupt(w, region, i, res); err != nil {
				return nil, err
			}
			continue
		}

		sum, tree, err := chunk.Decode(payload)
		if err != nil {
			c.logger.Debug("chunk unreadable",
				zap.Int("slot", i),
				zap.Error(err),
			)
			res.Corrupt++
			c.stats.IncCounter(stats.MetricChunksCorrupt, 1)
			if c.policy.DiscardCorrupt {
				continue
			}
			if err := w.Append(i, payload.Scheme, payload.Data, slot.Timestamp); err != nil {
				return nil, err
			}
			continue
		}

		if classify.Classify(sum, c.policy) == classify.Discard {
			res.Discarded++
			c.stats.IncCounter(stats.MetricChunksDiscarded, 1)
			continue
		}

		data := payload.Data
		if c.optimize && tree != nil {
			if stripped, ok := c.strip(i, payload.Scheme, tree); ok {
				data = stripped
				res.Stripped++
				c.stats.IncCounter(stats.MetricChunksStripped, 1)
			}
		}

		if err := w.Append(i, payload.Scheme, data, slot.Timestamp); err != nil {
			return nil, err
		}
		res.Kept++
		c.stats.IncCounter(stats.MetricChunksKept, 1)
	}

	res.Chunks = w.Chunks()
	res.Data = w.Bytes()
	res.BytesOut = len(res.Data)
	return res, nil
}

// strip removes cache-only data from a decoded tree and recompresses it
// under the chunk's original scheme. Any failure, or a tree with nothing
// to strip, keeps the original payload bytes.
func (c *Compactor) strip(slot int, scheme byte, tree []byte) ([]byte, bool) {
	stripped, changed, err := optimize.Strip(tree)
	if err != nil {
		c.logger.Debug("strip failed, keeping chunk as-is",
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return nil, false
	}
	if !changed {
		return nil, false
	}

	data, err := codec.Compress(scheme, stripped)
	if err != nil {
		c.logger.Debug("recompression failed, keeping chunk as-is",
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return nil, false
	}
	return data, true
}

// carryCorrupt copies a slot whose payload could not even be sliced. The
// source's sector span is appended untouched so no bytes are invented or
// destroyed. A slot with no readable sectors at all is dropped.
func (c *Compactor) carryCorrupt(w *regionfile.Writer, region *regionfile.Region, i int, res *Result) error {
	res.Corrupt++
	c.stats.IncCounter(stats.MetricChunksCorrupt, 1)
	if c.policy.DiscardCorrupt {
		return nil
	}

	raw := region.RawSectors(i)
	if len(raw) == 0 {
		c.logger.Warn("slot has no readable sectors, dropping",
			zap.Int("slot", i),
		)
		return nil
	}

	c.logger.Debug("carrying corrupt chunk verbatim",
		zap.Int("slot", i),
		zap.Int("bytes", len(raw)),
	)
	return w.AppendRaw(i, raw, region.Slots[i].Timestamp)
}
