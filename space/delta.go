package space

// Delta records the cells destroyed and created by a single modifier call.
// Destroyed cells are snapshots taken before removal: sibling branches that
// still hold the live cell can destroy it independently without the two
// universes overwriting each other's causal metadata.
type Delta struct {
	Destroyed []*Cell
	Created   []*Cell
}

// Effective reports whether the delta records any change at all.
func (d Delta) Effective() bool {
	return len(d.Destroyed) > 0 || len(d.Created) > 0
}

// Merge aggregates many deltas into one. A single delta is returned as-is.
func Merge(deltas []Delta) Delta {
	if len(deltas) == 1 {
		return deltas[0]
	}
	var out Delta
	for _, d := range deltas {
		out.Destroyed = append(out.Destroyed, d.Destroyed...)
		out.Created = append(out.Created, d.Created...)
	}
	return out
}

func snapshot(cells []*Cell) []*Cell {
	out := make([]*Cell, len(cells))
	for i, c := range cells {
		out[i] = c.Clone()
	}
	return out
}
