package isoremesh

// selectionStack provides the scoped acquisition of Vertex.Selected that
// §5 mandates for the smoothing pass: push saves the current selection,
// pop restores it unconditionally, including on every error/early-return
// path in the caller (defer pop() immediately after push()).
type selectionStack struct {
	m     *Mesh
	saved []bool
}

func pushSelection(m *Mesh) *selectionStack {
	saved := make([]bool, len(m.Vertices))
	for i, v := range m.Vertices {
		saved[i] = v.Selected
	}
	return &selectionStack{m: m, saved: saved}
}

func (s *selectionStack) pop() {
	for i := range s.m.Vertices {
		if i < len(s.saved) {
			s.m.Vertices[i].Selected = s.saved[i]
		}
	}
}

// ImproveByLaplacian runs the two smoothing stages of §4.6: a constrained
// planar Laplacian over all free (non-border, non-crease) vertices, then a
// fold-relax pass targeted at the worst-quality and near-folded regions.
// Vertex selection is scoped: the prior selection is restored before
// returning, on every path.
func ImproveByLaplacian(m *Mesh, p *Params, grid *SpatialGrid) {
	stack := pushSelection(m)
	defer stack.pop()

	selectLaplacianTargets(m, p)
	laplacianIteration(m, p, grid)

	selectFoldRelaxTargets(m, p)
	for i := 0; i < 3; i++ {
		foldRelaxIteration(m, p, grid)
	}

	for i := range m.Vertices {
		m.Vertices[i].Selected = false
	}
}

func selectLaplacianTargets(m *Mesh, p *Params) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		if v.Deleted {
			v.Selected = false
			continue
		}
		v.Selected = !v.Border && !vertexHasCrease(m, i)
	}
	if p.SelectedOnly {
		for i := range m.Vertices {
			if m.Vertices[i].Selected && !vertexStrictlyInSelection(m, i) {
				m.Vertices[i].Selected = false
			}
		}
	}
}

func vertexHasCrease(m *Mesh, v int) bool {
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

func vertexStrictlyInSelection(m *Mesh, v int) bool {
	for _, fi := range m.IncidentFaces(v) {
		if !m.Faces[fi].Selected {
			return false
		}
	}
	return true
}

// laplacianIteration moves every selected vertex to the tangent-plane
// projection of its one-ring average, discarding any move whose angular
// deviation from the current normal exceeds 1 degree (the fold guard) and,
// when enabled, any move that would violate the Hausdorff bound.
func laplacianIteration(m *Mesh, p *Params, grid *SpatialGrid) {
	targets := make([]int, 0)
	for i, v := range m.Vertices {
		if v.Selected && !v.Deleted {
			targets = append(targets, i)
		}
	}

	newPos := make(map[int]Coord3D, len(targets))
	for _, v := range targets {
		ring := m.OneRing(v)
		if len(ring) == 0 {
			continue
		}
		var avg Coord3D
		for _, u := range ring {
			avg = avg.Add(m.Vertices[u].Position)
		}
		avg = avg.Mul(1 / float64(len(ring)))

		normal := vertexNormal(m, v)
		old := m.Vertices[v].Position
		delta := avg.Sub(old)
		// Project the motion onto the tangent plane of normal.
		delta = delta.Sub(normal.Mul(delta.Dot(normal)))
		proposed := old.Add(delta)

		if !facesStayUpright(m, v, proposed) {
			continue
		}
		if p.SurfDistCheck {
			if !testHausdorff(grid, []Coord3D{proposed}, p.MaxSurfDist) {
				continue
			}
		}
		newPos[v] = proposed
	}
	for v, pos := range newPos {
		m.Vertices[v].Position = pos
	}
}

const cos1Deg = 0.9998477

// vertexNormal returns the area-weighted average unit normal of the faces
// incident to v.
func vertexNormal(m *Mesh, v int) Coord3D {
	var sum Coord3D
	for _, fi := range m.IncidentFaces(v) {
		f := &m.Faces[fi]
		a, b, c := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		sum = sum.Add(triangleNormal(a, b, c))
	}
	return safeNormalize(sum)
}

// facesStayUpright rejects a proposed new position for v if it would flip
// (invert the orientation of) any face incident to v by more than the 1
// degree angular cap.
func facesStayUpright(m *Mesh, v int, proposed Coord3D) bool {
	for _, fi := range m.IncidentFaces(v) {
		f := &m.Faces[fi]
		var tri [3]Coord3D
		for i, vi := range f.V {
			if vi == v {
				tri[i] = proposed
			} else {
				tri[i] = m.Vertices[vi].Position
			}
		}
		oldN := normalizedTriangleNormal(m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position)
		newN := normalizedTriangleNormal(tri[0], tri[1], tri[2])
		if oldN.Len() < 1e-12 || newN.Len() < 1e-12 {
			continue
		}
		if angleCos(oldN, newN) < cos1Deg {
			return false
		}
	}
	return true
}

func selectFoldRelaxTargets(m *Mesh, p *Params) {
	for i := range m.Vertices {
		m.Vertices[i].Selected = false
	}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		a, b, c := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		bad := triangleQuality(a, b, c) < p.AspectRatioThr
		if bad {
			markFoldCandidate(m, f.V[0], f.V[1], f.V[2])
		}
	}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for e := 0; e < 3; e++ {
			if m.ffFace[fi][e] == -1 {
				continue
			}
			pos := NewPos(fi, e)
			if pos.AngleCos(m) <= p.FoldAngleCosThr {
				markFoldCandidate(m, f.V[0], f.V[1], f.V[2])
				oppFace := &m.Faces[m.ffFace[fi][e]]
				markFoldCandidate(m, oppFace.V[0], oppFace.V[1], oppFace.V[2])
			}
		}
	}
	for i := range m.Vertices {
		if !m.Vertices[i].Selected {
			continue
		}
		if vertexHasCrease(m, i) {
			m.Vertices[i].Selected = false
			continue
		}
		if p.SelectedOnly && !vertexStrictlyInSelection(m, i) {
			m.Vertices[i].Selected = false
		}
	}
}

func markFoldCandidate(m *Mesh, v0, v1, v2 int) {
	for _, v := range [3]int{v0, v1, v2} {
		if !m.Vertices[v].Deleted {
			m.Vertices[v].Selected = true
		}
	}
}

// foldRelaxIteration recomputes a provisional Laplacian position for every
// selected vertex, then commits or discards each face's three provisional
// positions as a unit: a face's update is accepted only if it and its
// centroid remain within the Hausdorff bound (when enabled).
func foldRelaxIteration(m *Mesh, p *Params, grid *SpatialGrid) {
	provisional := make(map[int]Coord3D)
	for i, v := range m.Vertices {
		if !v.Selected || v.Deleted {
			continue
		}
		ring := m.OneRing(i)
		if len(ring) == 0 {
			continue
		}
		// Laplacian average including the old position as a self-weight,
		// so the vertex never moves more than halfway to its neighbors'
		// centroid in one sub-iteration.
		var sum Coord3D
		for _, u := range ring {
			sum = sum.Add(m.Vertices[u].Position)
		}
		avg := sum.Mul(1 / float64(len(ring)))
		provisional[i] = Mid(v.Position, avg)
	}

	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		anySelected := false
		for _, v := range f.V {
			if m.Vertices[v].Selected {
				anySelected = true
				break
			}
		}
		if !anySelected {
			continue
		}

		var newTri [3]Coord3D
		for i, v := range f.V {
			if pp, ok := provisional[v]; ok {
				newTri[i] = pp
			} else {
				newTri[i] = m.Vertices[v].Position
			}
		}

		if p.SurfDistCheck {
			centroid := newTri[0].Add(newTri[1]).Add(newTri[2]).Mul(1.0 / 3.0)
			pts := append([]Coord3D{centroid}, newTri[:]...)
			if !testHausdorff(grid, pts, p.MaxSurfDist) {
				continue
			}
		}

		for i, v := range f.V {
			m.Vertices[v].Position = newTri[i]
		}
	}
}
