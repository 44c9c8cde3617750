package isoremesh

// Vertex is a point in the mesh. Quality is a transient scalar used as the
// adaptivity signal for split/collapse thresholds (see numerical.Percentile
// and the Adapt option); it is never read except by that one computation.
// Border is persistent across passes; Selected is transient and cleared by
// whichever pass set it.
type Vertex struct {
	Position Coord3D
	Quality  float64
	Border   bool
	Selected bool
	Deleted  bool
}

// Face is an ordered triple of vertex indices into the owning Mesh. EdgeSel
// marks edge i (between V[i] and V[(i+1)%3]) as a feature/crease edge; it is
// created only by tagCreaseEdges and preserved by every other pass.
type Face struct {
	V        [3]int
	Selected bool
	Deleted  bool
	EdgeSel  [3]bool
}

// Mesh owns Vertex and Face arrays and the adjacency views derived from
// them. Deletions are lazy: the passes only set the Deleted flag, and
// Compact physically removes deleted entries and remaps indices. Callers
// must call RebuildTopology (directly, or via Compact) before relying on FF,
// VF, or vertex Border flags after mutating Faces.
type Mesh struct {
	Vertices []Vertex
	Faces    []Face

	// ffFace[f][e] is the index of the face across edge e of face f, or -1
	// if edge e is a border edge. ffEdge[f][e] is the local edge index of
	// that neighbor which corresponds to the same undirected edge.
	ffFace [][3]int
	ffEdge [][3]int

	// vf[v] lists the indices of faces incident to vertex v.
	vf [][]int
}

// NewMesh creates an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p Coord3D) int {
	m.Vertices = append(m.Vertices, Vertex{Position: p})
	return len(m.Vertices) - 1
}

// AddFace appends a face referencing three existing vertex indices and
// returns its index. Topology views are not updated; call RebuildTopology
// once all faces have been added.
func (m *Mesh) AddFace(v0, v1, v2 int) int {
	m.Faces = append(m.Faces, Face{V: [3]int{v0, v1, v2}})
	return len(m.Faces) - 1
}

// Clone deep-copies the mesh, including topology views. Used by the driver
// to snapshot the reference mesh R from the initial working mesh M.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices: append([]Vertex{}, m.Vertices...),
		Faces:    append([]Face{}, m.Faces...),
	}
	c.RebuildTopology()
	return c
}

// VertexCount returns the number of live (non-deleted) vertices.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, v := range m.Vertices {
		if !v.Deleted {
			n++
		}
	}
	return n
}

// FaceCount returns the number of live (non-deleted) faces.
func (m *Mesh) FaceCount() int {
	n := 0
	for _, f := range m.Faces {
		if !f.Deleted {
			n++
		}
	}
	return n
}

// RebuildTopology recomputes FF and VF adjacency and the Border flag on
// every live vertex (invariant 3's topological half: border-from-edge-
// adjacency; tagCreaseEdges extends this with the crease half). It does not
// compact deleted entries.
func (m *Mesh) RebuildTopology() {
	m.rebuildVF()
	m.rebuildFF()
	m.rebuildBorderFromFF()
}

func (m *Mesh) rebuildVF() {
	m.vf = make([][]int, len(m.Vertices))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for _, v := range f.V {
			m.vf[v] = append(m.vf[v], fi)
		}
	}
}

func (m *Mesh) rebuildFF() {
	m.ffFace = make([][3]int, len(m.Faces))
	m.ffEdge = make([][3]int, len(m.Faces))
	for i := range m.ffFace {
		m.ffFace[i] = [3]int{-1, -1, -1}
		m.ffEdge[i] = [3]int{-1, -1, -1}
	}

	type halfEdge struct{ face, edge int }
	edgeMap := map[[2]int]halfEdge{}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for e := 0; e < 3; e++ {
			a, b := f.V[e], f.V[(e+1)%3]
			key := [2]int{b, a} // opposite-direction key: look for the reverse traversal
			if other, ok := edgeMap[key]; ok {
				m.ffFace[fi][e] = other.face
				m.ffEdge[fi][e] = other.edge
				m.ffFace[other.face][other.edge] = fi
				m.ffEdge[other.face][other.edge] = e
				delete(edgeMap, key)
				continue
			}
			edgeMap[[2]int{a, b}] = halfEdge{fi, e}
		}
	}
}

func (m *Mesh) rebuildBorderFromFF() {
	for i := range m.Vertices {
		if !m.Vertices[i].Deleted {
			m.Vertices[i].Border = false
		}
	}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for e := 0; e < 3; e++ {
			if m.ffFace[fi][e] == -1 {
				m.Vertices[f.V[e]].Border = true
				m.Vertices[f.V[(e+1)%3]].Border = true
			}
		}
	}
}

// Compact physically removes deleted vertices and faces, remaps all face
// vertex indices, and rebuilds topology views. Callers must treat all
// previously-held indices as invalid afterward.
func (m *Mesh) Compact() {
	newVertexIdx := make([]int, len(m.Vertices))
	vertices := make([]Vertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if v.Deleted {
			newVertexIdx[i] = -1
			continue
		}
		newVertexIdx[i] = len(vertices)
		vertices = append(vertices, v)
	}

	faces := make([]Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		if f.Deleted {
			continue
		}
		nf := f
		for i, v := range f.V {
			nf.V[i] = newVertexIdx[v]
		}
		faces = append(faces, nf)
	}

	m.Vertices = vertices
	m.Faces = faces
	m.RebuildTopology()
}

// IncidentFaces returns the (live) face indices incident to vertex v.
// RebuildTopology must have been called since the last mutation.
func (m *Mesh) IncidentFaces(v int) []int {
	res := make([]int, 0, len(m.vf[v]))
	for _, fi := range m.vf[v] {
		if !m.Faces[fi].Deleted {
			res = append(res, fi)
		}
	}
	return res
}

// OneRing returns the distinct vertex indices adjacent to v (its valence is
// len of this slice).
func (m *Mesh) OneRing(v int) []int {
	seen := map[int]bool{}
	var res []int
	for _, fi := range m.IncidentFaces(v) {
		f := &m.Faces[fi]
		for _, u := range f.V {
			if u != v && !seen[u] {
				seen[u] = true
				res = append(res, u)
			}
		}
	}
	return res
}

// Valence returns len(m.OneRing(v)).
func (m *Mesh) Valence(v int) int {
	return len(m.OneRing(v))
}

// BoundingBox returns the min/max corners over all live vertices.
func (m *Mesh) BoundingBox() (min, max Coord3D) {
	var init bool
	for _, v := range m.Vertices {
		if v.Deleted {
			continue
		}
		boundsUnion(&min, &max, v.Position, &init)
	}
	return
}

// LinkCondition checks whether collapsing the edge (f.V[e], f.V[(e+1)%3])
// preserves manifoldness: the one-rings of the two endpoints must intersect
// in exactly the third vertices of the faces incident to the edge itself -
// no more, no fewer. This is the primitive the edge-collapse operation
// consumes to reject collapses that would pinch two separate sheets of the
// mesh together.
func (m *Mesh) LinkCondition(f, e int) bool {
	face := &m.Faces[f]
	u, v := face.V[e], face.V[(e+1)%3]

	ringU := map[int]bool{}
	for _, x := range m.OneRing(u) {
		ringU[x] = true
	}
	ringV := map[int]bool{}
	for _, x := range m.OneRing(v) {
		ringV[x] = true
	}

	edgeLink := map[int]bool{}
	for _, fi := range m.IncidentFaces(u) {
		fc := &m.Faces[fi]
		hasU, hasV, third := false, false, -1
		for _, w := range fc.V {
			switch w {
			case u:
				hasU = true
			case v:
				hasV = true
			default:
				third = w
			}
		}
		if hasU && hasV {
			edgeLink[third] = true
		}
	}

	common := 0
	for x := range ringU {
		if ringV[x] {
			common++
			if !edgeLink[x] {
				return false
			}
		}
	}
	return common == len(edgeLink)
}

// FindFace returns the face index and local edge index of a face containing
// the undirected edge (u, v), or (-1, -1) if none is found. If the edge is
// interior it may be incident to two faces; FindFace returns the first one
// encountered in u's incidence list.
func (m *Mesh) FindFace(u, v int) (face, edge int) {
	for _, fi := range m.IncidentFaces(u) {
		f := &m.Faces[fi]
		for e := 0; e < 3; e++ {
			a, b := f.V[e], f.V[(e+1)%3]
			if (a == u && b == v) || (a == v && b == u) {
				return fi, e
			}
		}
	}
	return -1, -1
}
