// Package geometry holds the triangle and polygon primitives shared by the
// polygon operators: areas, centroids and gradients of linear hat functions.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TriangleArea returns the unsigned area of triangle (a, b, c).
func TriangleArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// Centroid returns the unweighted average of pts.
func Centroid(pts []r3.Vec) (c r3.Vec) {
	if len(pts) == 0 {
		return
	}
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1./float64(len(pts)), c)
}

// PolygonArea returns the area of the fan connecting the vertex average to
// each boundary edge of the polygon.
func PolygonArea(pts []r3.Vec) (area float64) {
	var (
		n = len(pts)
		c = Centroid(pts)
	)
	for i := 0; i < n; i++ {
		area += TriangleArea(c, pts[i], pts[(i+1)%n])
	}
	return
}

// AffineCombination returns sum_i w[i]*pts[i].
func AffineCombination(pts []r3.Vec, w []float64) (p r3.Vec) {
	for i, pt := range pts {
		p = r3.Add(p, r3.Scale(w[i], pt))
	}
	return
}

// HeronArea returns sqrt of the Heron product for side lengths a, b, c, which
// is 4x the triangle area. The ordering of the factors is the numerically
// stable one and stays finite for slightly inconsistent lengths.
func HeronArea(a, b, c float64) float64 {
	arg := (a + (b + c)) * (c - (a - b)) * (c + (a - b)) * (a + (b - c))
	if arg <= 0 {
		return 0
	}
	return math.Sqrt(arg)
}

// GradientHatFunction returns the gradient, inside triangle (i, j, k), of the
// linear function that is 1 at i and 0 at j and k. It points from edge (j,k)
// towards i with length |k-j| / (2*area). Triangles with area below tol get a
// zero gradient.
func GradientHatFunction(i, j, k r3.Vec, tol float64) (grad r3.Vec) {
	var (
		area = TriangleArea(i, j, k)
		site = r3.Sub(i, j)
		base = r3.Sub(k, j)
	)
	if area < tol {
		return
	}
	baseLen := r3.Norm(base)
	// component of site perpendicular to base
	perp := r3.Sub(site, r3.Scale(r3.Dot(site, base)/(baseLen*baseLen), base))
	grad = r3.Scale(baseLen/(r3.Norm(perp)*2.*area), perp)
	return
}
