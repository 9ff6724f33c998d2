// Package classify decides whether a decoded chunk is worth keeping.
package classify

import (
	"time"

	"github.com/craftops/regionpress/internal/chunk"
)

// TickDuration is the wall-clock length of one game tick, used to express
// the inhabited-time accumulator as a duration.
const TickDuration = 50 * time.Millisecond

// Decision is the outcome of classifying one chunk.
type Decision int

const (
	// Keep retains the chunk in the output container.
	Keep Decision = iota
	// Discard drops the chunk; its slot becomes empty in the output.
	Discard
)

// String returns the decision name.
func (d Decision) String() string {
	if d == Discard {
		return "discard"
	}
	return "keep"
}

// Policy drives the discard predicate. The zero value discards nothing;
// use Default for the stock heuristic.
type Policy struct {
	// MinInhabited is the largest inhabited time a discardable chunk may
	// have accumulated. Any chunk above it is kept unconditionally.
	MinInhabited time.Duration

	// RequireFullyGenerated makes chunks whose generation never finished
	// discard candidates.
	RequireFullyGenerated bool

	// TreatEmptyAsDiscard makes structurally empty chunks (no sections)
	// discard candidates.
	TreatEmptyAsDiscard bool

	// DiscardCorrupt drops chunks whose payloads fail to read or parse
	// instead of carrying them through verbatim.
	DiscardCorrupt bool
}

// Default returns the stock policy: prune never-inhabited chunks that are
// not fully generated or hold no blocks, and keep anything unreadable.
func Default() Policy {
	return Policy{
		RequireFullyGenerated: true,
		TreatEmptyAsDiscard:   true,
	}
}

// Inhabited converts a chunk's tick accumulator to a duration.
func Inhabited(ticks int64) time.Duration {
	return time.Duration(ticks) * TickDuration
}

// Classify applies the policy to one chunk summary.
//
// A chunk is discarded only when every cheap proxy for player relevance
// is absent: no inhabited time beyond the threshold, no entities, no
// block entities, no scheduled ticks, and generation either unfinished
// or empty per the policy. Anything the decoder could not safely
// reinterpret is kept.
func Classify(s *chunk.Summary, p Policy) Decision {
	if s.Unsupported {
		return Keep
	}
	if Inhabited(s.InhabitedTime) > p.MinInhabited {
		return Keep
	}
	if s.Entities > 0 || s.BlockEntities > 0 || s.TileTicks > 0 {
		return Keep
	}

	if p.RequireFullyGenerated && !s.FullyGenerated() {
		return Discard
	}
	if p.TreatEmptyAsDiscard && s.Sections == 0 {
		return Discard
	}
	return Keep
}
