package isoremesh

// ImproveValence performs the edge-flip pass of §4.5, visiting each
// interior, non-crease edge once (canonical orientation f > fflip) and
// swapping it when doing so improves the combined valence-defect/quality
// score without folding the surface. Face-face adjacency is rebuilt only
// at the end of the pass, so a face rewritten by a flip, and every edge
// across from such a face, is skipped until the next pass.
func ImproveValence(m *Mesh, p *Params, grid *SpatialGrid, stat *Stat) {
	flipped := map[int]bool{}
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
			if f.Deleted || flipped[fi] {
				break
			}
			if f.EdgeSel[e] {
				continue
			}
			fflip := m.ffFace[fi][e]
			if fflip == -1 || fflip >= fi || flipped[fflip] {
				continue
			}
			if p.SelectedOnly && !m.Faces[fflip].Selected {
				continue
			}
			if attemptFlip(m, p, grid, fi, e, stat) {
				flipped[fi] = true
				flipped[fflip] = true
			}
		}
	}
	m.RebuildTopology()
}

// attemptFlip validates and, on success, applies the diagonal swap of edge
// (f, e) against its neighbor across that edge.
func attemptFlip(m *Mesh, p *Params, grid *SpatialGrid, f, e int, stat *Stat) bool {
	pos := NewPos(f, e)
	if pos.IsBorder(m) {
		return false
	}
	fflip := pos.FFlip(m)
	oe := m.ffEdge[f][e]

	face := &m.Faces[f]
	oppFace := &m.Faces[fflip]

	v0 := face.V[e]
	v2 := face.V[(e+1)%3]
	v1 := face.V[(e+2)%3]
	v3 := oppFace.V[(oe+2)%3]

	if !checkManifoldness(m, v0, v1, v2, v3) {
		return false
	}
	if !checkFlipEdge(m, f, e) {
		return false
	}

	defectBefore := valenceDefect(m, v0) + valenceDefect(m, v1) + valenceDefect(m, v2) + valenceDefect(m, v3)
	defectAfter := absInt(m.Valence(v0)-1-idealValence(m, v0)) +
		absInt(m.Valence(v1)+1-idealValence(m, v1)) +
		absInt(m.Valence(v2)-1-idealValence(m, v2)) +
		absInt(m.Valence(v3)+1-idealValence(m, v3))

	p0 := m.Vertices[v0].Position
	p1 := m.Vertices[v1].Position
	p2 := m.Vertices[v2].Position
	p3 := m.Vertices[v3].Position

	qOld := minF(triangleQuality(p0, p2, p3), triangleQuality(p0, p1, p2))
	qNew := minF(triangleQuality(p0, p1, p3), triangleQuality(p2, p3, p1))

	if !testSwap(float64(defectBefore), float64(defectAfter), qOld, qNew) {
		return false
	}

	if p.SurfDistCheck {
		newMid := Mid(p1, p3)
		if !testHausdorff(grid, []Coord3D{newMid}, p.MaxSurfDist) {
			return false
		}
	}

	n0 := normalizedTriangleNormal(p0, p2, p3)
	n1 := normalizedTriangleNormal(p0, p1, p2)
	nn0 := normalizedTriangleNormal(p0, p1, p3)
	nn1 := normalizedTriangleNormal(p2, p3, p1)
	if angleCos(n0, nn0) < cos5Deg || angleCos(n1, nn1) < cos5Deg {
		return false
	}

	flipEdge(m, f, e, fflip, oe, v0, v1, v2, v3)
	stat.FlipNum++
	return true
}

const cos5Deg = 0.9961947 // cos(5 degrees)

func valenceDefect(m *Mesh, v int) int {
	return absInt(m.Valence(v) - idealValence(m, v))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// checkManifoldness rejects a flip that would create a duplicate edge: v1
// and v3 (the two vertices that would become newly adjacent) must not
// already be neighbors.
func checkManifoldness(m *Mesh, v0, v1, v2, v3 int) bool {
	if v1 == v3 {
		return false
	}
	for _, u := range m.OneRing(v1) {
		if u == v3 {
			return false
		}
	}
	return true
}

// checkFlipEdge is the mesh primitive's topological legality check: e must
// be an interior edge of two distinct triangles sharing exactly that edge.
func checkFlipEdge(m *Mesh, f, e int) bool {
	fflip := m.ffFace[f][e]
	if fflip == -1 || fflip == f {
		return false
	}
	return true
}

// testSwap implements the §4.5 acceptance rule.
func testSwap(oldDefect, newDefect, qOld, qNew float64) bool {
	switch {
	case newDefect < oldDefect && qNew >= 0.5*qOld:
		return true
	case newDefect == oldDefect && qNew > qOld:
		return true
	case qNew > 1.5*qOld:
		return true
	}
	return false
}

// flipEdge replaces faces f and fflip (sharing vertices v0,v1,v2,v3 as laid
// out in attemptFlip) with the swapped diagonal (v1,v3). The flipped edge
// (v0,v2) and its selection bit vanish; the four surviving edges (v0,v1),
// (v1,v2), (v2,v3), (v3,v0) keep their selection state but move to their
// new carrier face and local edge index, per §9's feature-bit transfer
// rule.
func flipEdge(m *Mesh, f, e, fflip, oe int, v0, v1, v2, v3 int) {
	face := &m.Faces[f]
	oppFace := &m.Faces[fflip]

	selV0V1 := face.EdgeSel[(e+2)%3]
	selV1V2 := face.EdgeSel[(e+1)%3]
	selV2V3 := oppFace.EdgeSel[(oe+2)%3]
	selV3V0 := oppFace.EdgeSel[(oe+1)%3]

	// Both new faces keep the winding of the faces they replace: f was
	// (v0, v2, v1) and fflip (v2, v0, v3), up to rotation.
	//
	// New face f becomes (v0, v3, v1): edge 0 is (v0,v3), edge 1 is
	// (v3,v1) - the new diagonal, unselected - edge 2 is (v1,v0).
	face.V = [3]int{v0, v3, v1}
	face.EdgeSel = [3]bool{selV3V0, false, selV0V1}

	// New face fflip becomes (v2, v1, v3): edge 0 is (v2,v1), edge 1 is
	// (v1,v3) - the new diagonal's other side, unselected - edge 2 is
	// (v3,v2).
	oppFace.V = [3]int{v2, v1, v3}
	oppFace.EdgeSel = [3]bool{selV1V2, false, selV2V3}
}
