package polymesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Canned meshes used by tests across packages and by the CLI when no grid
// file is given.

// NewSingleTriangle returns a mesh with one triangle (a, b, c).
func NewSingleTriangle(a, b, c r3.Vec) *SurfaceMesh {
	return NewSurfaceMesh([]r3.Vec{a, b, c}, [][]int{{0, 1, 2}})
}

// NewRegularPolygon returns a single planar n-gon in z=0 with circumradius r.
func NewRegularPolygon(n int, r float64) *SurfaceMesh {
	var (
		verts = make([]r3.Vec, n)
		face  = make([]int, n)
	)
	for i := range verts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		verts[i] = r3.Vec{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
		face[i] = i
	}
	return NewSurfaceMesh(verts, [][]int{face})
}

// NewUnitSquare returns the quad [0,1]x[0,1] in z=0.
func NewUnitSquare() *SurfaceMesh {
	return NewSurfaceMesh(
		[]r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		[][]int{{0, 1, 2, 3}},
	)
}

// NewQuadGrid returns an nx by ny grid of square quads with spacing h in z=0.
func NewQuadGrid(nx, ny int, h float64) *SurfaceMesh {
	var (
		verts = make([]r3.Vec, 0, (nx+1)*(ny+1))
		faces = make([][]int, 0, nx*ny)
		vid   = func(i, j int) int { return j*(nx+1) + i }
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			verts = append(verts, r3.Vec{X: float64(i) * h, Y: float64(j) * h})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			faces = append(faces, []int{vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)})
		}
	}
	return NewSurfaceMesh(verts, faces)
}

// NewCube returns the closed surface of the unit cube as six outward oriented quads.
func NewCube() *SurfaceMesh {
	return NewSurfaceMesh(
		[]r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		[][]int{
			{0, 3, 2, 1}, // bottom
			{4, 5, 6, 7}, // top
			{0, 1, 5, 4},
			{1, 2, 6, 5},
			{2, 3, 7, 6},
			{3, 0, 4, 7},
		},
	)
}

// NewHexagonPatch returns a planar mixed-valence patch: a regular hexagon
// (circumradius 1) surrounded by a ring of six quads and six triangles.
func NewHexagonPatch() *SurfaceMesh {
	var (
		verts = make([]r3.Vec, 0, 18)
		faces [][]int
	)
	// inner hexagon 0..5, outer ring 6..17 alternating edge-offset and corner points
	for i := 0; i < 6; i++ {
		theta := math.Pi / 3 * float64(i)
		verts = append(verts, r3.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
	}
	for i := 0; i < 6; i++ {
		theta := math.Pi / 3 * float64(i)
		next := math.Pi / 3 * float64(i+1)
		verts = append(verts, r3.Vec{X: 2 * math.Cos(theta), Y: 2 * math.Sin(theta)})
		mid := r3.Vec{X: math.Cos(theta) + math.Cos(next), Y: math.Sin(theta) + math.Sin(next)}
		verts = append(verts, r3.Scale(1.8/r3.Norm(mid), mid))
	}
	faces = append(faces, []int{0, 1, 2, 3, 4, 5})
	for i := 0; i < 6; i++ {
		var (
			in0, in1 = i, (i + 1) % 6
			corner0  = 6 + 2*i
			mid      = 6 + 2*i + 1
			corner1  = 6 + 2*((i+1)%6)
		)
		faces = append(faces, []int{in0, corner0, mid, in1})
		faces = append(faces, []int{in1, mid, corner1})
	}
	return NewSurfaceMesh(verts, faces)
}
