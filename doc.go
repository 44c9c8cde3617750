// Package isoremesh implements isotropic triangle remeshing: given a
// triangle surface mesh, it redistributes vertices so that edges approach a
// target length while preserving sharp features, manifoldness, and bounded
// Hausdorff deviation from the original surface.
//
// The entry points are Remesh and RemeshAgainst. Both mutate a *Mesh in
// place, running a refine-decimate-flip-smooth-project pipeline for a
// configurable number of outer iterations:
//
//	params := isoremesh.NewParams(0.5)
//	isoremesh.Remesh(m, params)
//
// Remesh clones m into an immutable reference mesh before mutating m.
// RemeshAgainst instead remeshes m against a distinct, caller-owned
// reference mesh (useful when the target shape differs from the starting
// triangulation, e.g. re-triangulating a decimated mesh against its
// original).
//
// Every local operation - edge split, edge collapse, edge flip, and vertex
// relaxation - is gated by quality, valence, manifoldness, crease, and
// surface-distance predicates (package isoremesh/numerical supplies the
// percentile math behind the adaptive thresholds). A predicate rejection is
// not an error: the operation is silently skipped and the pass continues.
// The only observable signal that work occurred is Params.Stat.
package isoremesh
