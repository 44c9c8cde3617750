package isoremesh

// tagCreaseEdges scans every live face and marks EdgeSel on any edge that
// is either a sharp dihedral (testCreaseEdge) or a border, propagating the
// bit to both faces sharing the edge (invariant 4) — border edges have no
// opposite face to flip onto, so only the one incident face's bit is set.
//
// This mirrors vcglib's tagCreaseEdges: `testCreaseEdge(p, cosThr) ||
// p.IsBorder()`. A border edge's feature-ness is therefore carried by both
// Vertex.Border and its own EdgeSel bit, since chooseCollapseTarget
// (collapse.go) gates vertex movability on EdgeSel alone.
//
// vcglib also contains a crease-chain-pruning refinement (merging short
// crease runs, preferring higher-aspect-ratio edges at junctions) guarded
// out by an #if 0 in the source this was distilled from; it is not
// reachable from any call site and is left unimplemented here for the same
// reason.
func tagCreaseEdges(m *Mesh, cosThr float64) {
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for e := 0; e < 3; e++ {
			if f.EdgeSel[e] {
				// Already set from the opposite face's pass.
				continue
			}
			p := NewPos(fi, e)
			if p.IsBorder(m) {
				p.SetEdgeSelected(m, true)
				continue
			}
			if testCreaseEdge(m, p, cosThr) {
				p.SetEdgeSelected(m, true)
				p.FlipF(m).SetEdgeSelected(m, true)
			}
		}
	}
}

// clearCreaseEdges removes every EdgeSel bit. Used by callers that want to
// recompute creases from scratch against a new feature angle.
func clearCreaseEdges(m *Mesh) {
	for fi := range m.Faces {
		m.Faces[fi].EdgeSel = [3]bool{}
	}
}
