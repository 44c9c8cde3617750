package isoremesh

// angleCos returns clamp(n0 . n1, -1, 1), the cosine of the angle between
// two unit normals. Named after vcglib's fastAngle.
func angleCos(n0, n1 Coord3D) float64 {
	return clamp(n0.Dot(n1), -1, 1)
}

// testCreaseEdge reports whether the edge at p should be tagged as a
// crease: its dihedral angle exceeds cosThr (i.e. the cosine falls at or
// below it) but is not so sharp it looks like a degenerate fold (cosine
// below -0.98, which vcglib treats as a near-duplicate/fold rather than a
// genuine feature).
func testCreaseEdge(m *Mesh, p Pos, cosThr float64) bool {
	if p.IsBorder(m) {
		return false
	}
	angle := p.AngleCos(m)
	return angle <= cosThr && angle >= -0.98
}

// idealValence returns the target vertex valence used by the flip pass's
// valence-defect score: 4 for a border vertex, 6 for an interior one.
func idealValence(m *Mesh, v int) int {
	if m.Vertices[v].Border {
		return 4
	}
	return 6
}

// testHausdorff reports whether every point in pts lies within maxD of the
// reference mesh behind grid.
func testHausdorff(grid *SpatialGrid, pts []Coord3D, maxD float64) bool {
	for _, p := range pts {
		_, _, _, ok := grid.ClosestFace(p, maxD)
		if !ok {
			return false
		}
	}
	return true
}
