// Package optimize strips cache-only data from serialized chunk trees.
//
// The stripped entries (precomputed heightmaps and the lighting-done
// marker) are regenerated lazily by the game on next load, so removing
// them trades a one-time recomputation for storage. The transform works
// directly on the NBT bytes: removed entries are spliced out and every
// other byte passes through untouched, which keeps unmodified chunks
// byte-identical and makes the transform idempotent.
package optimize

import "fmt"

// cacheEntries are the compound entries safe to drop. They live at the
// root in flattened chunks and under Level in older ones.
var cacheEntries = map[string]bool{
	"Heightmaps": true,
	"isLightOn":  true,
}

// span marks a half-open byte range to remove.
type span struct {
	start, end int
}

// Strip removes cache-only entries from an NBT chunk document. It
// returns the resulting bytes and whether anything was removed; when
// nothing matches, the input slice comes back unchanged.
func Strip(tree []byte) ([]byte, bool, error) {
	if len(tree) == 0 || tree[0] != tagCompound {
		return nil, false, fmt.Errorf("%w: root is not a compound", ErrMalformed)
	}
	_, pos, err := readName(tree, 1)
	if err != nil {
		return nil, false, err
	}

	spans, err := collect(tree, pos, true)
	if err != nil {
		return nil, false, err
	}
	if len(spans) == 0 {
		return tree, false, nil
	}

	out := make([]byte, 0, len(tree))
	prev := 0
	for _, s := range spans {
		out = append(out, tree[prev:s.start]...)
		prev = s.end
	}
	out = append(out, tree[prev:]...)
	return out, true, nil
}

// collect walks one compound's entries starting at pos and returns the
// removable spans in order. It descends exactly one level, into Level,
// where pre-flattening chunks keep their caches.
func collect(data []byte, pos int, descend bool) ([]span, error) {
	var spans []span
	for {
		if pos >= len(data) {
			return nil, fmt.Errorf("%w: unterminated compound", ErrMalformed)
		}
		start := pos
		tag := data[pos]
		pos++
		if tag == tagEnd {
			return spans, nil
		}

		name, next, err := readName(data, pos)
		if err != nil {
			return nil, err
		}
		pos = next

		if descend && tag == tagCompound && name == "Level" {
			inner, err := collect(data, pos, false)
			if err != nil {
				return nil, err
			}
			spans = append(spans, inner...)
		}

		pos, err = skipPayload(data, pos, tag)
		if err != nil {
			return nil, err
		}
		if cacheEntries[name] {
			spans = append(spans, span{start: start, end: pos})
		}
	}
}
