package isoremesh

import "math"

// triangleNormal returns the (non-normalized) cross-product normal of the
// triangle a, b, c, oriented by the a->b->c winding order.
func triangleNormal(a, b, c Coord3D) Coord3D {
	return b.Sub(a).Cross(c.Sub(a))
}

// normalizedTriangleNormal returns the unit normal of a, b, c. Degenerate
// (zero-area) triangles return the zero vector.
func normalizedTriangleNormal(a, b, c Coord3D) Coord3D {
	return safeNormalize(triangleNormal(a, b, c))
}

// doubleArea returns twice the area of the triangle a, b, c - the norm of
// the cross-product normal.
func doubleArea(a, b, c Coord3D) float64 {
	return triangleNormal(a, b, c).Len()
}

// triangleArea returns the area of the triangle a, b, c.
func triangleArea(a, b, c Coord3D) float64 {
	return doubleArea(a, b, c) / 2
}

// triangleQuality is a scale-free shape measure in [0, 1]: 1 for an
// equilateral triangle, 0 for a degenerate one. It is the ratio of twice the
// inradius to the longest edge, normalized so an equilateral triangle scores
// 1 (vcglib's QualityRadii/Quality).
func triangleQuality(a, b, c Coord3D) float64 {
	la := dist(b, c)
	lb := dist(a, c)
	lc := dist(a, b)
	longest := math.Max(la, math.Max(lb, lc))
	if longest < 1e-12 {
		return 0
	}
	area := triangleArea(a, b, c)
	if area < 1e-18 {
		return 0
	}
	perimeter := la + lb + lc
	inradius := 2 * area / perimeter
	// An equilateral triangle of side s has inradius s/(2*sqrt(3)), so
	// 2*inradius/longestEdge is 1/sqrt(3) for it; multiplying
	// inradius/longestEdge by 2*sqrt(3) scales that case to exactly 1, and
	// the value tends to 0 as the triangle degenerates.
	const equilateralNorm = 2 * 1.7320508075688772 // 2*sqrt(3)
	q := equilateralNorm * inradius / longest
	return clamp(q, 0, 1)
}

// edgeLength2 returns the squared length of the segment a-b.
func edgeLength2(a, b Coord3D) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
