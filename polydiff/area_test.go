package polydiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polymesh"
)

func TestPolygonSurfaceArea(t *testing.T) {
	for _, n := range []int{3, 4, 5, 6, 12} {
		var (
			r     = 1.3
			m     = polymesh.NewRegularPolygon(n, r)
			exact = 0.5 * float64(n) * r * r * math.Sin(2*math.Pi/float64(n))
		)
		assert.InEpsilonf(t, exact, PolygonSurfaceArea(m), 1.e-6, "n = %d", n)
		assert.InEpsilon(t, exact, FaceArea(m, 0), 1.e-6)
	}
	assert.InDelta(t, 6., PolygonSurfaceArea(polymesh.NewCube()), 1.e-12)
	assert.InDelta(t, 1.5*1.0, PolygonSurfaceArea(polymesh.NewQuadGrid(3, 2, 0.5)), 1.e-12)
}

func TestAreaWeightedCentroid(t *testing.T) {
	{
		var (
			a, b, c = r3.Vec{X: 0.1, Y: 0}, r3.Vec{X: 2, Y: 0.3, Z: 1}, r3.Vec{X: -0.5, Y: 1.7, Z: 0.4}
			m       = polymesh.NewSingleTriangle(a, b, c)
			center  = AreaWeightedCentroid(m)
			exact   = r3.Scale(1./3, r3.Add(a, r3.Add(b, c)))
		)
		assert.InDelta(t, 0., r3.Norm(r3.Sub(center, exact)), 1.e-9)
	}
	{
		center := AreaWeightedCentroid(polymesh.NewCube())
		assert.InDelta(t, 0., r3.Norm(r3.Sub(center, r3.Vec{X: 0.5, Y: 0.5, Z: 0.5})), 1.e-12)
	}
	{
		// two faces of different size: the larger one dominates
		m := polymesh.NewSurfaceMesh(
			[]r3.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}, {X: 3, Y: 0}, {X: 3, Y: 1}},
			[][]int{{0, 1, 2, 3}, {1, 4, 5}},
		)
		center := AreaWeightedCentroid(m)
		var (
			a0, a1 = 4., 0.5
			c0     = r3.Vec{X: 1, Y: 1}
			c1     = r3.Vec{X: 8. / 3, Y: 1. / 3}
			exact  = r3.Scale(1/(a0+a1), r3.Add(r3.Scale(a0, c0), r3.Scale(a1, c1)))
		)
		assert.InDelta(t, 0., r3.Norm(r3.Sub(center, exact)), 1.e-12)
	}
	assert.Equal(t, r3.Vec{}, AreaWeightedCentroid(polymesh.NewSurfaceMesh(nil, nil)))
}
