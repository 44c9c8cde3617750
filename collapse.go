package isoremesh

import "math"

// CollapseShortEdges removes edges shorter than the (possibly adaptive)
// collapse threshold, or whose incident face area has degenerated, subject
// to the §4.4 validation chain. Deleted vertices/faces stay marked during
// the scan and the mesh is compacted when the sub-pass finishes, so vertex
// and face indices held by the caller are invalid afterwards.
func CollapseShortEdges(m *Mesh, p *Params, grid *SpatialGrid, stat *Stat) {
	var minQ, maxQ float64
	if p.Adapt {
		minQ, maxQ = quantilesOfQuality(m)
	}

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
			if !shouldCollapseEdge(m, p, fi, e, minQ, maxQ) {
				continue
			}
			attemptCollapse(m, p, grid, fi, e, false, stat)
		}
	}
	m.Compact()
}

func shouldCollapseEdge(m *Mesh, p *Params, fi, e int, minQ, maxQ float64) bool {
	f := &m.Faces[fi]
	v0, v1, v2 := f.V[e], f.V[(e+1)%3], f.V[(e+2)%3]
	a, b, c := m.Vertices[v0].Position, m.Vertices[v1].Position, m.Vertices[v2].Position
	if triangleArea(a, b, c) < p.minLength*p.minLength/100 {
		return true
	}

	thr := p.minLength
	if p.Adapt {
		q0, q1 := m.Vertices[v0].Quality, m.Vertices[v1].Quality
		span := maxQ - minQ
		var t float64
		if span > 1e-12 {
			t = (math.Abs(q0) + math.Abs(q1)) / 2 / span
		}
		thr *= clampedLerp(0.5, 1.5, clamp(t, 0, 1))
	}
	return dist(a, b) < thr
}

// chooseCollapseTarget implements §4.4 step 1: decide the collapse point
// and whether either endpoint is crease-movable. ok is false when neither
// endpoint can legally move, rejecting the collapse outright.
func chooseCollapseTarget(m *Mesh, v0, v1 int) (mp Coord3D, kept int, ok bool) {
	movable0 := vertexMovableAlong(m, v0, v1)
	movable1 := vertexMovableAlong(m, v1, v0)
	if !movable0 && !movable1 {
		return Coord3D{}, -1, false
	}

	p0, p1 := m.Vertices[v0].Position, m.Vertices[v1].Position
	var w0, w1 float64
	if movable0 {
		w0 = 1
	}
	if movable1 {
		w1 = 1
	}
	// Each endpoint is weighted by whether the other one may move, so when
	// only one endpoint is movable the collapse lands on the fixed one.
	mp = p0.Mul(w1).Add(p1.Mul(w0)).Mul(1 / (w0 + w1))

	switch {
	case movable0 && !movable1:
		kept = v1
	case movable1 && !movable0:
		kept = v0
	default:
		kept = v1
	}
	return mp, kept, true
}

// vertexMovableAlong reports whether u may move toward the edge (u, toward)
// without leaving any crease it lies on: every crease edge incident to u
// must be collinear with (u, toward).
func vertexMovableAlong(m *Mesh, u, toward int) bool {
	dir := safeNormalize(m.Vertices[toward].Position.Sub(m.Vertices[u].Position))
	for _, fi := range m.IncidentFaces(u) {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			if !f.EdgeSel[e] {
				continue
			}
			a, b := f.V[e], f.V[(e+1)%3]
			if a != u && b != u {
				continue
			}
			other := a
			if a == u {
				other = b
			}
			if other == toward {
				continue
			}
			edgeDir := safeNormalize(m.Vertices[other].Position.Sub(m.Vertices[u].Position))
			if math.Abs(edgeDir.Dot(dir)) < 1-1e-6 {
				return false
			}
		}
	}
	return true
}

// checkFacesAfterCollapse validates the §4.4 step-2 chain for every face
// incident to either endpoint of the collapse, excluding the two faces the
// collapse itself destroys.
func checkFacesAfterCollapse(m *Mesh, p *Params, grid *SpatialGrid, v0, v1 int, mp Coord3D, relaxed bool) bool {
	excluded := map[int]bool{}
	for _, fi := range m.IncidentFaces(v0) {
		f := &m.Faces[fi]
		if hasVertex(f, v1) {
			excluded[fi] = true
		}
	}

	check := func(u int) bool {
		for _, fi := range m.IncidentFaces(u) {
			if excluded[fi] {
				continue
			}
			f := &m.Faces[fi]
			var newTri [3]Coord3D
			var oldTri [3]Coord3D
			for i, vi := range f.V {
				oldTri[i] = m.Vertices[vi].Position
				if vi == v0 || vi == v1 {
					newTri[i] = mp
				} else {
					newTri[i] = m.Vertices[vi].Position
				}
			}
			oldQ := triangleQuality(oldTri[0], oldTri[1], oldTri[2])
			newQ := triangleQuality(newTri[0], newTri[1], newTri[2])
			if newQ < 0.5*oldQ {
				return false
			}
			if !relaxed {
				if edgeLength2(newTri[0], newTri[1]) > p.maxLength*p.maxLength ||
					edgeLength2(newTri[1], newTri[2]) > p.maxLength*p.maxLength ||
					edgeLength2(newTri[2], newTri[0]) > p.maxLength*p.maxLength {
					return false
				}
			}
			oldN := triangleNormal(oldTri[0], oldTri[1], oldTri[2])
			newN := triangleNormal(newTri[0], newTri[1], newTri[2])
			if oldN.Dot(newN) <= 0 {
				return false
			}
			if p.SurfDistCheck {
				centroid := newTri[0].Add(newTri[1]).Add(newTri[2]).Mul(1.0 / 3.0)
				mid0 := Mid(newTri[0], newTri[1])
				mid1 := Mid(newTri[1], newTri[2])
				if !testHausdorff(grid, []Coord3D{centroid, mp, mid0, mid1}, p.MaxSurfDist) {
					return false
				}
			}
		}
		return true
	}
	return check(v0) && check(v1)
}

func hasVertex(f *Face, v int) bool {
	return f.V[0] == v || f.V[1] == v || f.V[2] == v
}

// attemptCollapse runs the full §4.4 validation chain for the edge
// (f, e) and, on success, applies the collapse via collapseEdge.
func attemptCollapse(m *Mesh, p *Params, grid *SpatialGrid, f, e int, relaxed bool, stat *Stat) bool {
	face := &m.Faces[f]
	v0, v1 := face.V[e], face.V[(e+1)%3]
	if m.Vertices[v0].Deleted || m.Vertices[v1].Deleted {
		return false
	}
	if p.SelectedOnly && (!allFacesSelected(m, m.IncidentFaces(v0)) || !allFacesSelected(m, m.IncidentFaces(v1))) {
		return false
	}

	mp, kept, ok := chooseCollapseTarget(m, v0, v1)
	if !ok {
		return false
	}
	removed := v1
	if kept == v1 {
		removed = v0
	}

	if !checkFacesAfterCollapse(m, p, grid, v0, v1, mp, relaxed) {
		return false
	}
	if !m.LinkCondition(f, e) {
		return false
	}

	collapseEdge(m, kept, removed, mp)
	stat.CollapseNum++
	return true
}

// collapseEdge merges removed into kept at position mp: every face
// reference to removed is repointed to kept, the two faces straddling the
// collapsed edge are marked deleted, and kept's position is updated. The
// repointed faces are added to kept's vertex-face list so later collapses
// in the same pass see kept's whole star.
func collapseEdge(m *Mesh, kept, removed int, mp Coord3D) {
	m.Vertices[kept].Position = mp
	for _, fi := range m.IncidentFaces(removed) {
		f := &m.Faces[fi]
		if hasVertex(f, kept) {
			f.Deleted = true
			continue
		}
		for i, v := range f.V {
			if v == removed {
				f.V[i] = kept
			}
		}
		m.vf[kept] = append(m.vf[kept], fi)
	}
	m.Vertices[removed].Deleted = true
}

// CollapseCrosses attempts to remove interior valence-3/4 vertices ("cross"
// vertices) not touching any crease, per §4.4's cross-collapse sub-pass.
func CollapseCrosses(m *Mesh, p *Params, grid *SpatialGrid, stat *Stat) {
	vertexLimit := len(m.Vertices)
	for v := 0; v < vertexLimit; v++ {
		vert := &m.Vertices[v]
		if vert.Deleted || vert.Border {
			continue
		}
		faces := m.IncidentFaces(v)
		if len(faces) != 3 && len(faces) != 4 {
			continue
		}
		if p.SelectedOnly && !allFacesSelected(m, faces) {
			continue
		}
		if crossHasCrease(m, v) {
			continue
		}
		if vert.Deleted {
			continue
		}
		attemptCrossCollapse(m, p, grid, v, faces, stat)
	}
	m.Compact()
}

func allFacesSelected(m *Mesh, faces []int) bool {
	for _, fi := range faces {
		if !m.Faces[fi].Selected {
			return false
		}
	}
	return true
}

func crossHasCrease(m *Mesh, v int) bool {
	for _, fi := range m.IncidentFaces(v) {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			if f.EdgeSel[e] && (f.V[e] == v || f.V[(e+1)%3] == v) {
				return true
			}
		}
	}
	return false
}

// attemptCrossCollapse dispatches on v's incident-face count. A 4-valence
// cross restricts the choice to the two directions chooseBestCrossCollapse
// documents (collapse toward one of the two vertices of a single incident
// face, scored over the full surrounding diamond); a 3-valence (tricuspidis)
// cross has no such restriction in spec.md §4.4 and keeps the any-neighbor
// search.
func attemptCrossCollapse(m *Mesh, p *Params, grid *SpatialGrid, v int, faces []int, stat *Stat) bool {
	if len(faces) == 4 {
		return attemptCrossCollapse4(m, p, grid, v, stat)
	}
	return attemptCrossCollapseAny(m, p, grid, v, stat)
}

// ringVertexOrder returns v's one-ring neighbors in fan order: consecutive
// entries (wrapping around) share one of v's incident faces, matching the
// v0,v1,v2,v3 diamond chooseBestCrossCollapse walks. Uses Pos.NextF rather
// than a raw face scan so the order is correct regardless of per-face
// winding parity.
func ringVertexOrder(m *Mesh, v int) []int {
	faces := m.IncidentFaces(v)
	if len(faces) == 0 {
		return nil
	}
	f0 := faces[0]
	e0 := -1
	for i, vi := range m.Faces[f0].V {
		if vi == v {
			e0 = i
			break
		}
	}
	if e0 == -1 {
		return nil
	}
	ring := make([]int, 0, len(faces))
	pos := NewPos(f0, e0)
	for i := 0; i < len(faces); i++ {
		ring = append(ring, pos.VFlip(m))
		pos = pos.NextF(m)
	}
	return ring
}

// forwardCollapseEdge finds the face/edge incident to center whose local
// winding stores the directed edge (center, target), the orientation
// attemptCollapse's v0/v1 convention requires so chooseCollapseTarget keeps
// target rather than center.
func forwardCollapseEdge(m *Mesh, center, target int) (f, e int, ok bool) {
	for _, fi := range m.IncidentFaces(center) {
		face := &m.Faces[fi]
		for ei := 0; ei < 3; ei++ {
			if face.V[ei] == center && face.V[(ei+1)%3] == target {
				return fi, ei, true
			}
		}
	}
	return -1, -1, false
}

// chooseCrossCollapseTarget4 implements chooseBestCrossCollapse's direction
// choice for a 4-valence cross vertex v: build the surrounding diamond
// v0,v1,v2,v3, score collapsing toward v1 (delta1, over v0 and v2's
// valence defect) against collapsing toward v0 (delta2, over v1 and v3's).
// v1 is chosen only when delta1 < delta2 and its quality q1 is at least
// 0.6x the alternative's q2; otherwise the target is v0, with no quality
// condition. ok is false if v does not have a proper 4-vertex diamond.
func chooseCrossCollapseTarget4(m *Mesh, v int) (target int, ok bool) {
	ring := ringVertexOrder(m, v)
	if len(ring) != 4 {
		return -1, false
	}
	v0, v1, v2, v3 := ring[0], ring[1], ring[2], ring[3]

	delta1 := (idealValence(m, v0) - m.Valence(v0)) + (idealValence(m, v2) - m.Valence(v2))
	delta2 := (idealValence(m, v1) - m.Valence(v1)) + (idealValence(m, v3) - m.Valence(v3))

	p0, p1 := m.Vertices[v0].Position, m.Vertices[v1].Position
	p2, p3 := m.Vertices[v2].Position, m.Vertices[v3].Position
	q1 := minF(triangleQuality(p0, p1, p3), triangleQuality(p1, p2, p3))
	q2 := minF(triangleQuality(p0, p1, p2), triangleQuality(p2, p3, p0))

	target = v0
	if delta1 < delta2 && q1 >= 0.6*q2 {
		target = v1
	}
	return target, true
}

// attemptCrossCollapse4 is the 4-valence cross-collapse entry point: pick
// the better diagonal via chooseCrossCollapseTarget4 and run it through the
// ordinary §4.4 validation chain.
func attemptCrossCollapse4(m *Mesh, p *Params, grid *SpatialGrid, v int, stat *Stat) bool {
	target, ok := chooseCrossCollapseTarget4(m, v)
	if !ok {
		return false
	}
	f, e, ok := forwardCollapseEdge(m, v, target)
	if !ok {
		return false
	}
	return attemptCollapse(m, p, grid, f, e, true, stat)
}

// attemptCrossCollapseAny is the tricuspidis (3-face) path: spec.md §4.4
// prescribes no restriction to two candidate directions, so every ring
// neighbor is scored and the best is attempted.
func attemptCrossCollapseAny(m *Mesh, p *Params, grid *SpatialGrid, v int, stat *Stat) bool {
	ring := m.OneRing(v)
	type candidate struct {
		f, e  int
		score float64
	}
	var candidates []candidate
	for _, u := range ring {
		f, e, ok := forwardCollapseEdge(m, v, u)
		if !ok {
			continue
		}
		score := crossCollapseScore(m, v, u)
		candidates = append(candidates, candidate{f, e, score})
	}
	if len(candidates) == 0 {
		return false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return attemptCollapse(m, p, grid, best.f, best.e, true, stat)
}

// crossCollapseScore combines valence-defect improvement and resulting
// quality for collapsing v toward neighbor u, used by the unrestricted
// tricuspidis (3-face) search in attemptCrossCollapseAny.
func crossCollapseScore(m *Mesh, v, u int) float64 {
	defectBefore := float64(absInt(m.Valence(v) - idealValence(m, v)))
	defectAfter := float64(absInt(m.Valence(u) - 1 - idealValence(m, u)))
	var quality float64
	for _, fi := range m.IncidentFaces(v) {
		f := &m.Faces[fi]
		a, b, c := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		q := triangleQuality(a, b, c)
		quality += q
	}
	return (defectBefore - defectAfter) + quality
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
