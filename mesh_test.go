package isoremesh

import "testing"

func unitCubeMesh() *Mesh {
	m := NewMesh()
	var c [8]int
	for i := 0; i < 8; i++ {
		c[i] = m.AddVertex(XYZ(float64(i&1), float64((i>>1)&1), float64((i>>2)&1)))
	}
	quad := func(a, b, cc, d int) {
		m.AddFace(c[a], c[b], c[cc])
		m.AddFace(c[a], c[cc], c[d])
	}
	quad(0, 1, 3, 2)
	quad(4, 6, 7, 5)
	quad(0, 2, 6, 4)
	quad(1, 5, 7, 3)
	quad(0, 4, 5, 1)
	quad(2, 3, 7, 6)
	m.RebuildTopology()
	return m
}

func TestMeshTopologyNoBorder(t *testing.T) {
	m := unitCubeMesh()
	for i, v := range m.Vertices {
		if v.Border {
			t.Errorf("vertex %d of a closed cube should not be a border vertex", i)
		}
	}
	for fi := range m.Faces {
		for e := 0; e < 3; e++ {
			if m.ffFace[fi][e] == -1 {
				t.Errorf("face %d edge %d should have a neighbor on a closed mesh", fi, e)
			}
		}
	}
}

func TestMeshValence(t *testing.T) {
	m := unitCubeMesh()
	// Each corner has its 3 cube edges plus one edge per face diagonal
	// through it. Every diagonal of unitCubeMesh ends at corner 0 or 7, so
	// those two have valence 6 and the other six have valence 4.
	for v := range m.Vertices {
		want := 4
		if v == 0 || v == 7 {
			want = 6
		}
		if got := m.Valence(v); got != want {
			t.Errorf("cube corner %d: valence = %d, want %d", v, got, want)
		}
	}
}

func TestMeshCompactRemovesDeleted(t *testing.T) {
	m := unitCubeMesh()
	// A deleted vertex must not be referenced by a live face, so every
	// face around vertex 0 is deleted along with it.
	for _, fi := range m.IncidentFaces(0) {
		m.Faces[fi].Deleted = true
	}
	m.Vertices[0].Deleted = true
	m.Compact()
	for _, f := range m.Faces {
		if f.Deleted {
			t.Fatal("compact left a deleted face behind")
		}
	}
	if m.FaceCount() != len(m.Faces) {
		t.Fatal("live face count should match len(Faces) after compact")
	}
}

func TestMeshBoundingBox(t *testing.T) {
	m := unitCubeMesh()
	min, max := m.BoundingBox()
	if min != (Coord3D{0, 0, 0}) || max != (Coord3D{1, 1, 1}) {
		t.Errorf("unexpected bounding box: %v %v", min, max)
	}
}

func TestMeshLinkConditionAcceptsRegularEdge(t *testing.T) {
	m := unitCubeMesh()
	f, e := m.FindFace(0, 1)
	if f == -1 {
		// Some orientation of a cube edge; try the reverse.
		f, e = m.FindFace(1, 0)
	}
	if f == -1 {
		t.Fatal("expected to find an edge between two adjacent cube corners")
	}
	if !m.LinkCondition(f, e) {
		t.Error("a regular cube edge should satisfy the link condition")
	}
}

func TestMeshOpenStripHasBorder(t *testing.T) {
	m := NewMesh()
	a := m.AddVertex(XYZ(0, 0, 0))
	b := m.AddVertex(XYZ(1, 0, 0))
	c := m.AddVertex(XYZ(0, 1, 0))
	d := m.AddVertex(XYZ(1, 1, 0))
	m.AddFace(a, b, c)
	m.AddFace(b, d, c)
	m.RebuildTopology()
	for i := range m.Vertices {
		if !m.Vertices[i].Border {
			t.Errorf("vertex %d of an open strip should be a border vertex", i)
		}
	}
}
