package isoremesh

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Coord3D is a point or vector in 3D space. It is an alias for mgl64.Vec3,
// following the akmonengine-feather and dantero-ps-mini-mc-go convention of
// using go-gl/mathgl for 3-vector arithmetic (Add, Sub, Mul, Dot, Cross,
// Normalize, Len).
type Coord3D = mgl64.Vec3

// XYZ constructs a Coord3D from three scalars.
func XYZ(x, y, z float64) Coord3D {
	return Coord3D{x, y, z}
}

// Mid returns the midpoint between two coordinates.
func Mid(a, b Coord3D) Coord3D {
	return a.Add(b).Mul(0.5)
}

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clampedLerp linearly interpolates between lo and hi by t, clamping t to
// [0, 1] first. Mirrors vcglib's math::ClampedLerp.
func clampedLerp(lo, hi, t float64) float64 {
	t = clamp(t, 0, 1)
	return lo + (hi-lo)*t
}

// safeNormalize normalizes v, returning the zero vector if v is too small
// to normalize reliably.
func safeNormalize(v Coord3D) Coord3D {
	n := v.Len()
	if n < 1e-12 {
		return Coord3D{}
	}
	return v.Mul(1 / n)
}

// dist is shorthand for the Euclidean distance between two coordinates.
func dist(a, b Coord3D) float64 {
	return a.Sub(b).Len()
}

func boundsUnion(min, max *Coord3D, c Coord3D, init *bool) {
	if !*init {
		*min, *max = c, c
		*init = true
		return
	}
	for i := 0; i < 3; i++ {
		if c[i] < min[i] {
			min[i] = c[i]
		}
		if c[i] > max[i] {
			max[i] = c[i]
		}
	}
}
