package isoremesh

import (
	"math"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/splaytree"
)

// SpatialGrid is a static uniform grid over a reference mesh's faces,
// answering "closest face to point p within radius r" queries for the
// Hausdorff probe (C1) and the project pass (C7). Cell hashing follows
// akmonengine-feather's SpatialGrid: a power-of-two cell count and a
// multiplicative hash over integer cell coordinates, so the grid never
// needs to resize as points are queried.
type SpatialGrid struct {
	mesh     *Mesh
	cellSize float64
	cells    [][]int // face index lists, one per hashed cell
	cellMask int
}

// NewSpatialGrid builds a grid over every live face of mesh. cellSize
// should be on the order of the mesh's target edge length; numCells bounds
// the hash table size (rounded up to a power of two).
func NewSpatialGrid(mesh *Mesh, cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)
	g := &SpatialGrid{
		mesh:     mesh,
		cellSize: cellSize,
		cells:    make([][]int, numCells),
		cellMask: numCells - 1,
	}
	for fi := range mesh.Faces {
		f := &mesh.Faces[fi]
		if f.Deleted {
			continue
		}
		g.insertFace(fi)
	}
	return g
}

func nextPowerOfTwo(n int) int {
	n = essentials.MaxInt(n, 1)
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

type cellKey struct{ x, y, z int }

func (g *SpatialGrid) worldToCell(p Coord3D) cellKey {
	return cellKey{
		x: int(math.Floor(p.X() / g.cellSize)),
		y: int(math.Floor(p.Y() / g.cellSize)),
		z: int(math.Floor(p.Z() / g.cellSize)),
	}
}

func (g *SpatialGrid) hashCell(k cellKey) int {
	h := (k.x * 73856093) ^ (k.y * 19349663) ^ (k.z * 83492791)
	return h & g.cellMask
}

func (g *SpatialGrid) insertFace(fi int) {
	f := &g.mesh.Faces[fi]
	var min, max Coord3D
	var init bool
	for _, v := range f.V {
		boundsUnion(&min, &max, g.mesh.Vertices[v].Position, &init)
	}
	minCell := g.worldToCell(min)
	maxCell := g.worldToCell(max)
	seen := map[int]bool{}
	for x := minCell.x; x <= maxCell.x; x++ {
		for y := minCell.y; y <= maxCell.y; y++ {
			for z := minCell.z; z <= maxCell.z; z++ {
				idx := g.hashCell(cellKey{x, y, z})
				if seen[idx] {
					continue
				}
				seen[idx] = true
				g.cells[idx] = append(g.cells[idx], fi)
			}
		}
	}
}

// gridCandidate orders candidate faces by their approximate (centroid)
// distance to the query point, so ClosestFace can visit near candidates
// before far ones and stop early. UID breaks ties deterministically,
// following model3d/parameterization.go's meshDiscsQueueNode.
type gridCandidate struct {
	ApproxDist float64
	UID        int
	Face       int
}

func (c *gridCandidate) Compare(other *gridCandidate) int {
	if c.ApproxDist < other.ApproxDist {
		return -1
	} else if c.ApproxDist > other.ApproxDist {
		return 1
	} else if c.UID < other.UID {
		return -1
	} else if c.UID > other.UID {
		return 1
	}
	return 0
}

// ClosestFace finds the closest point to p on any face within maxD,
// returning the foot point, its barycentric coordinates, and the distance.
// ok is false if no face of the reference mesh comes within maxD (a grid
// miss; callers treat this as a local, non-fatal condition per §7).
func (g *SpatialGrid) ClosestFace(p Coord3D, maxD float64) (foot Coord3D, bary [3]float64, distance float64, ok bool) {
	cellRadius := essentials.MaxInt(1, int(math.Ceil(maxD/g.cellSize)))
	center := g.worldToCell(p)

	tree := &splaytree.Tree[*gridCandidate]{}
	seen := map[int]bool{}
	uid := 0
	for x := center.x - cellRadius; x <= center.x+cellRadius; x++ {
		for y := center.y - cellRadius; y <= center.y+cellRadius; y++ {
			for z := center.z - cellRadius; z <= center.z+cellRadius; z++ {
				idx := g.hashCell(cellKey{x, y, z})
				for _, fi := range g.cells[idx] {
					if seen[fi] {
						continue
					}
					seen[fi] = true
					f := &g.mesh.Faces[fi]
					if f.Deleted {
						continue
					}
					centroid := triangleCentroid(g.mesh, fi)
					uid++
					tree.Insert(&gridCandidate{ApproxDist: dist(p, centroid), UID: uid, Face: fi})
				}
			}
		}
	}

	bestDist := maxD
	bestFace := -1
	var bestFoot Coord3D
	var bestBary [3]float64
	for tree.Len() > 0 {
		node := tree.Min()
		tree.Delete(node)
		// Stop once the approximate (centroid) distance of the next
		// candidate exceeds the best exact distance found so far by more
		// than two cell widths. This is a heuristic: a face much larger
		// than a cell can have its centroid farther away than that while
		// its surface is closer, and such a face is then not examined.
		if bestFace != -1 && node.ApproxDist > bestDist+g.cellSize*2 {
			break
		}
		foot, bary, d := closestPointOnFace(g.mesh, node.Face, p)
		if d < bestDist {
			bestDist = d
			bestFace = node.Face
			bestFoot = foot
			bestBary = bary
		}
	}

	if bestFace == -1 {
		return Coord3D{}, [3]float64{}, 0, false
	}
	return bestFoot, bestBary, bestDist, true
}

func triangleCentroid(m *Mesh, fi int) Coord3D {
	f := &m.Faces[fi]
	a := m.Vertices[f.V[0]].Position
	b := m.Vertices[f.V[1]].Position
	c := m.Vertices[f.V[2]].Position
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

// closestPointOnFace projects p onto the plane of triangle fi and clamps
// the result into the triangle, returning the foot point, its barycentric
// coordinates (w.r.t. V[0], V[1], V[2]), and the distance from p.
func closestPointOnFace(m *Mesh, fi int, p Coord3D) (foot Coord3D, bary [3]float64, distance float64) {
	f := &m.Faces[fi]
	a := m.Vertices[f.V[0]].Position
	b := m.Vertices[f.V[1]].Position
	c := m.Vertices[f.V[2]].Position

	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, [3]float64{1, 0, 0}, dist(p, a)
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, [3]float64{0, 1, 0}, dist(p, b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		foot = a.Add(ab.Mul(v))
		return foot, [3]float64{1 - v, v, 0}, dist(p, foot)
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, [3]float64{0, 0, 1}, dist(p, c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		foot = a.Add(ac.Mul(w))
		return foot, [3]float64{1 - w, 0, w}, dist(p, foot)
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		foot = b.Add(c.Sub(b).Mul(w))
		return foot, [3]float64{0, 1 - w, w}, dist(p, foot)
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	foot = a.Add(ab.Mul(v)).Add(ac.Mul(w))
	return foot, [3]float64{1 - v - w, v, w}, dist(p, foot)
}
