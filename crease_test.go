package isoremesh

import (
	"math"
	"testing"
)

func TestTagCreaseEdgesSymmetric(t *testing.T) {
	m := unitCubeMesh()
	tagCreaseEdges(m, math.Cos(30*math.Pi/180))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			if !f.EdgeSel[e] {
				continue
			}
			nf := m.ffFace[fi][e]
			ne := m.ffEdge[fi][e]
			if !m.Faces[nf].EdgeSel[ne] {
				t.Errorf("face %d edge %d selected but neighbor face %d edge %d is not", fi, e, nf, ne)
			}
		}
	}
}

func TestTagCreaseEdgesFindsCubeCorners(t *testing.T) {
	m := unitCubeMesh()
	tagCreaseEdges(m, math.Cos(30*math.Pi/180))
	count := 0
	for fi := range m.Faces {
		for e := 0; e < 3; e++ {
			if m.Faces[fi].EdgeSel[e] {
				count++
			}
		}
	}
	if count == 0 {
		t.Error("expected at least one crease edge on a cube's right-angle folds")
	}
}

func TestTagCreaseEdgesMarksBorderEdges(t *testing.T) {
	m := NewMesh()
	a := m.AddVertex(XYZ(0, 0, 0))
	b := m.AddVertex(XYZ(1, 0, 0))
	c := m.AddVertex(XYZ(0, 1, 0))
	d := m.AddVertex(XYZ(1, 1, 0))
	m.AddFace(a, b, c)
	m.AddFace(b, d, c)
	m.RebuildTopology()

	tagCreaseEdges(m, math.Cos(30*math.Pi/180))

	for fi := range m.Faces {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			if m.ffFace[fi][e] != -1 {
				continue
			}
			if !f.EdgeSel[e] {
				t.Errorf("face %d edge %d is a border edge and should carry the crease bit", fi, e)
			}
		}
	}
}

func TestClearCreaseEdges(t *testing.T) {
	m := unitCubeMesh()
	tagCreaseEdges(m, math.Cos(30*math.Pi/180))
	clearCreaseEdges(m)
	for _, f := range m.Faces {
		if f.EdgeSel != ([3]bool{}) {
			t.Fatal("clearCreaseEdges left a selection bit set")
		}
	}
}
