package isoremesh

import (
	"math"
	"testing"
)

func TestSpatialGridClosestFaceOnPlane(t *testing.T) {
	r := NewMesh()
	a := r.AddVertex(XYZ(-10, -10, 0))
	b := r.AddVertex(XYZ(10, -10, 0))
	c := r.AddVertex(XYZ(10, 10, 0))
	d := r.AddVertex(XYZ(-10, 10, 0))
	r.AddFace(a, b, c)
	r.AddFace(a, c, d)
	r.RebuildTopology()

	grid := NewSpatialGrid(r, 2, 64)
	foot, _, dist, ok := grid.ClosestFace(XYZ(1, 1, 3), 10)
	if !ok {
		t.Fatal("expected a hit on the ground plane")
	}
	if math.Abs(dist-3) > 1e-6 {
		t.Errorf("distance = %f, want 3", dist)
	}
	if math.Abs(foot.X()-1) > 1e-6 || math.Abs(foot.Y()-1) > 1e-6 || math.Abs(foot.Z()) > 1e-6 {
		t.Errorf("unexpected foot point: %v", foot)
	}
}

func TestSpatialGridMissBeyondRadius(t *testing.T) {
	r := NewMesh()
	a := r.AddVertex(XYZ(0, 0, 0))
	b := r.AddVertex(XYZ(1, 0, 0))
	c := r.AddVertex(XYZ(0, 1, 0))
	r.AddFace(a, b, c)
	r.RebuildTopology()

	grid := NewSpatialGrid(r, 1, 16)
	_, _, _, ok := grid.ClosestFace(XYZ(0, 0, 100), 1)
	if ok {
		t.Error("a query far outside maxD should miss")
	}
}
