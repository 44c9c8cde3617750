package isoremesh

import (
	"math"

	"github.com/meshforge/isoremesh/numerical"
	"github.com/pkg/errors"
)

// Callback is the driver's optional progress hook (§5), invoked once per
// outer iteration with an integer percentage complete and the label
// "iterate".
type Callback func(percent int, label string)

// Stat carries the driver's output counters (§6): the number of successful
// split, collapse, and flip operations across every iteration so far. These
// are the only observable signal that a pass did work, since predicate
// rejection is never an error (§7).
type Stat struct {
	SplitNum    int
	CollapseNum int
	FlipNum     int
}

// Params configures a Remesh/RemeshAgainst call. Construct one with
// NewParams(targetLength) and adjust fields or use the Set* helpers; the
// derived length thresholds only update when SetTargetLength is called.
type Params struct {
	// TargetLength is the user-facing edge-length goal L. minLength,
	// maxLength, and lengthThr are derived from it per §4.8.
	TargetLength float64
	minLength    float64
	maxLength    float64
	lengthThr    float64

	// FeatureAngleDeg is the dihedral threshold for automatic crease
	// tagging; creaseAngleCos is its derived cosine.
	FeatureAngleDeg float64
	creaseAngleCos  float64

	MaxSurfDist     float64
	AspectRatioThr  float64
	FoldAngleCosThr float64
	Iter            int

	Adapt               bool
	SplitFlag           bool
	CollapseFlag        bool
	SwapFlag            bool
	SmoothFlag          bool
	ProjectFlag         bool
	SelectedOnly        bool
	UserSelectedCreases bool
	SurfDistCheck       bool

	Callback Callback

	Stat Stat
}

// NewParams returns a Params with every pass enabled, derived thresholds
// set from targetLength, and the §6 defaults for the remaining options.
func NewParams(targetLength float64) *Params {
	p := &Params{
		AspectRatioThr:  0.05,
		FoldAngleCosThr: math.Cos(140 * math.Pi / 180),
		Iter:            1,
		SplitFlag:       true,
		CollapseFlag:    true,
		SwapFlag:        true,
		SmoothFlag:      true,
		ProjectFlag:     true,
	}
	p.SetTargetLength(targetLength)
	p.SetFeatureAngleDeg(30)
	return p
}

// SetTargetLength sets TargetLength and rederives minLength, maxLength, and
// lengthThr per §4.8.
func (p *Params) SetTargetLength(l float64) {
	p.TargetLength = l
	p.minLength = 4 * l / 5
	p.maxLength = 4 * l / 3
	p.lengthThr = 4 * l / 3
}

// SetFeatureAngleDeg sets FeatureAngleDeg and rederives its cosine.
func (p *Params) SetFeatureAngleDeg(deg float64) {
	p.FeatureAngleDeg = deg
	p.creaseAngleCos = math.Cos(deg * math.Pi / 180)
}

// Remesh mutates m in place, cloning it internally as the reference mesh.
// Equivalent to RemeshAgainst(m, m.Clone(), params).
func Remesh(m *Mesh, params *Params) error {
	return RemeshAgainst(m, m.Clone(), params)
}

// RemeshAgainst mutates m in place, measuring surface deviation against the
// caller-owned reference mesh r. m and r must not be the same mesh value.
func RemeshAgainst(m *Mesh, r *Mesh, params *Params) error {
	if m == r {
		return errors.WithStack(ErrAliasedMesh)
	}
	if err := checkManifoldInput(m); err != nil {
		return err
	}

	grid := prepare(m, r, params)

	for i := 0; i < params.Iter; i++ {
		if params.SplitFlag {
			SplitLongEdges(m, params, &params.Stat)
		}
		if params.CollapseFlag {
			CollapseShortEdges(m, params, grid, &params.Stat)
			CollapseCrosses(m, params, grid, &params.Stat)
		}
		if params.SwapFlag {
			ImproveValence(m, params, grid, &params.Stat)
		}
		if params.SmoothFlag {
			ImproveByLaplacian(m, params, grid)
		}
		if params.ProjectFlag {
			ProjectToSurface(m, grid, params.MaxSurfDist, params.SelectedOnly)
			m.RebuildTopology()
		}

		if params.Callback != nil {
			percent := (i + 1) * 100 / maxInt(params.Iter, 1)
			params.Callback(percent, "iterate")
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// prepare implements the driver's one-time setup (§4.8): recomputing
// topology and border flags on m, building the spatial grid over r, and
// tagging creases unless the caller supplies its own.
func prepare(m *Mesh, r *Mesh, params *Params) *SpatialGrid {
	m.RebuildTopology()
	r.RebuildTopology()

	if !params.UserSelectedCreases {
		clearCreaseEdges(m)
		tagCreaseEdges(m, params.creaseAngleCos)
	}

	cellSize := params.TargetLength
	if cellSize <= 0 {
		cellSize = 1
	}
	numCells := maxInt(len(r.Faces), 16)
	return NewSpatialGrid(r, cellSize, numCells)
}

// quantilesOfQuality returns the 10th and 90th percentiles of every live
// vertex's Quality scalar, the normalization range the adaptive split and
// collapse thresholds divide by (§4.3, §4.4).
func quantilesOfQuality(m *Mesh) (p10, p90 float64) {
	values := make([]float64, 0, len(m.Vertices))
	for _, v := range m.Vertices {
		if !v.Deleted {
			values = append(values, v.Quality)
		}
	}
	d := numerical.NewDistribution(values)
	return d.Percentile(10), d.Percentile(90)
}

// VertexQuality computes vcglib's curvature-style per-vertex quality
// scalar: taking the first incident face's normal as a reference, it sums
// 1-|cos(angle)| between that reference and every other incident face's
// normal, divided by max(1, len(faces)-1). A vertex surrounded by
// coplanar faces scores near 0; one on a sharp fold scores higher. The
// source defines but never invokes this computation (§9); it is exposed
// here so a caller that wants adaptive thresholds to reflect true surface
// curvature, rather than the default all-zero quality, can populate
// Vertex.Quality before calling Remesh.
func VertexQuality(m *Mesh) []float64 {
	out := make([]float64, len(m.Vertices))
	for v := range m.Vertices {
		faces := m.IncidentFaces(v)
		if len(faces) == 0 {
			continue
		}
		f0 := &m.Faces[faces[0]]
		ref := normalizedTriangleNormal(m.Vertices[f0.V[0]].Position, m.Vertices[f0.V[1]].Position, m.Vertices[f0.V[2]].Position)

		var sum float64
		for _, fi := range faces[1:] {
			f := &m.Faces[fi]
			n := normalizedTriangleNormal(m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position)
			sum += 1 - math.Abs(clamp(ref.Dot(n), -1, 1))
		}
		out[v] = sum / float64(maxInt(1, len(faces)-1))
	}
	return out
}
