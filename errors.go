package isoremesh

import "github.com/pkg/errors"

// Precondition violations (§7): fatal, the caller aborts. Every other
// rejection a pass makes - quality, valence, manifoldness, Hausdorff,
// normal-flip, a grid miss during project - is not an error at all; the
// statistics counters in Stat are the only observable signal.
var (
	// ErrAliasedMesh is returned by RemeshAgainst when M and R are the same
	// mesh value; R must be either a caller-owned distinct mesh or omitted
	// (in which case Remesh clones M itself).
	ErrAliasedMesh = errors.New("isoremesh: working mesh and reference mesh must not be the same mesh")

	// ErrNonManifoldInput is returned when the input mesh fails the
	// 2-manifold precondition before any pass runs: some edge is shared by
	// more than two faces.
	ErrNonManifoldInput = errors.New("isoremesh: input mesh is not 2-manifold")
)

func checkManifoldInput(m *Mesh) error {
	edgeCount := map[[2]int]int{}
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if f.Deleted {
			continue
		}
		for e := 0; e < 3; e++ {
			a, b := f.V[e], f.V[(e+1)%3]
			if a > b {
				a, b = b, a
			}
			edgeCount[[2]int{a, b}]++
		}
	}
	for _, c := range edgeCount {
		if c > 2 {
			return errors.WithStack(ErrNonManifoldInput)
		}
	}
	return nil
}
