package isoremesh

import "math"

// SplitLongEdges bisects edges whose length exceeds the (possibly
// adaptive) split threshold, propagating the face-edge-selected bit of the
// parent edge to the two child half-edges collinear with it. Matches
// vcglib's RefineE driven by a length-based predicate, generalized to the
// §4.3 uniform/adaptive modes. At most one edge of each face is split per
// call; an edge whose neighbor face was already replaced earlier in the
// call, or that belongs to a face created during the call, is not split
// until the next call.
func SplitLongEdges(m *Mesh, p *Params, stat *Stat) {
	var minQ, maxQ float64
	if p.Adapt {
		minQ, maxQ = quantilesOfQuality(m)
	}

	// Snapshot the face count: appended faces (the children of splits
	// applied earlier in this pass) are never themselves candidates, which
	// keeps the scan well-founded.
	faceLimit := len(m.Faces)
	for fi := 0; fi < faceLimit; fi++ {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		if p.SelectedOnly && !f.Selected {
			continue
		}
		for e := 0; e < 3; e++ {
			if f.Deleted {
				break
			}
			if !shouldSplitEdge(m, p, fi, e, minQ, maxQ) {
				continue
			}
			splitEdge(m, fi, e, stat)
		}
	}
	m.RebuildTopology()
}

func shouldSplitEdge(m *Mesh, p *Params, fi, e int, minQ, maxQ float64) bool {
	f := &m.Faces[fi]
	opp := m.ffFace[fi][e]
	// FF is not rebuilt mid-pass: a neighbor already split away this pass
	// is marked deleted, and its children now own the shared edge.
	if opp != -1 && m.Faces[opp].Deleted {
		return false
	}
	if p.SelectedOnly && opp != -1 && !m.Faces[opp].Selected {
		return false
	}
	v0, v1 := f.V[e], f.V[(e+1)%3]
	length2 := edgeLength2(m.Vertices[v0].Position, m.Vertices[v1].Position)

	if !p.Adapt {
		return length2 > p.maxLength*p.maxLength
	}

	q0, q1 := m.Vertices[v0].Quality, m.Vertices[v1].Quality
	span := maxQ - minQ
	var t float64
	if span > 1e-12 {
		t = (math.Abs(q0) + math.Abs(q1)) / 2 / span
	}
	mult := clampedLerp(0.5, 1.5, clamp(t, 0, 1))
	thr := math.Max(mult*p.maxLength, 2*p.lengthThr)
	return math.Sqrt(length2) > thr
}

// splitEdge bisects the undirected edge (f, e) at its midpoint, replacing
// the one or two incident faces with two children apiece. Lazily marks the
// original faces deleted and appends the new ones; callers must iterate
// only over indices below the count captured before the pass began.
func splitEdge(m *Mesh, f, e int, stat *Stat) {
	face := &m.Faces[f]
	v0, v1, v2 := face.V[e], face.V[(e+1)%3], face.V[(e+2)%3]
	mid := Mid(m.Vertices[v0].Position, m.Vertices[v1].Position)
	mv := m.AddVertex(mid)

	edgeSel := face.EdgeSel[e]
	opp := m.ffFace[f][e]

	// Replace face (v0, v1, v2) with (v0, mv, v2) and (mv, v1, v2), each
	// inheriting the two untouched edges' selection bits and the half of
	// the split edge's bit collinear with them.
	f0 := m.AddFace(v0, mv, v2)
	f1 := m.AddFace(mv, v1, v2)
	m.Faces[f0].EdgeSel = [3]bool{edgeSel, false, face.EdgeSel[(e+2)%3]}
	m.Faces[f1].EdgeSel = [3]bool{edgeSel, face.EdgeSel[(e+1)%3], false}
	face.Deleted = true
	stat.SplitNum++

	if opp == -1 {
		return
	}
	oppFace := &m.Faces[opp]
	oe := m.ffEdge[f][e]
	ov0, ov1, ov2 := oppFace.V[oe], oppFace.V[(oe+1)%3], oppFace.V[(oe+2)%3]
	oppSel := oppFace.EdgeSel[oe]

	g0 := m.AddFace(ov0, mv, ov2)
	g1 := m.AddFace(mv, ov1, ov2)
	m.Faces[g0].EdgeSel = [3]bool{oppSel, false, oppFace.EdgeSel[(oe+2)%3]}
	m.Faces[g1].EdgeSel = [3]bool{oppSel, oppFace.EdgeSel[(oe+1)%3], false}
	oppFace.Deleted = true
}
