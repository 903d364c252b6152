package polydiff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polymesh"
)

func TestImplicitSmoothClosedMesh(t *testing.T) {
	var (
		cfg = DefaultConfig()
		m   = polymesh.NewCube()
	)
	// perturb one corner
	m.Vertices[6] = r3.Vec{X: 1.2, Y: 1.1, Z: 1.3}
	area0, center0 := PolygonSurfaceArea(m), AreaWeightedCentroid(m)

	sp := DefaultSmoothingParameters()
	sp.TimeStep, sp.Iterations = 0.05, 3
	sm, err := ImplicitSmooth(m, cfg, sp)
	require.NoError(t, err)
	assert.InEpsilon(t, area0, PolygonSurfaceArea(sm), 1.e-10)
	assert.InDelta(t, 0., r3.Norm(r3.Sub(center0, AreaWeightedCentroid(sm))), 1.e-10)
	// input untouched
	assert.Equal(t, r3.Vec{X: 1.2, Y: 1.1, Z: 1.3}, m.Vertices[6])
	for _, p := range sm.Vertices {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))
	}

	sp.RescaleArea = false
	shrunk, err := ImplicitSmooth(polymesh.NewCube(), cfg, sp)
	require.NoError(t, err)
	assert.Less(t, PolygonSurfaceArea(shrunk), 6.)
}

func TestImplicitSmoothFixedBoundary(t *testing.T) {
	var (
		cfg = DefaultConfig()
		m   = polymesh.NewQuadGrid(2, 2, 1)
	)
	m.Vertices[4] = r3.Vec{X: 1, Y: 1, Z: 0.3}
	for _, lumped := range []bool{true, false} {
		sp := SmoothingParameters{TimeStep: 0.1, Iterations: 2, LumpedMass: lumped, RescaleArea: true}
		sm, err := ImplicitSmooth(m, cfg, sp)
		require.NoError(t, err)
		for v, p := range sm.Vertices {
			if v == 4 {
				continue
			}
			assert.Equal(t, m.Vertices[v], p)
		}
		center := sm.Vertices[4]
		assert.InDelta(t, 1., center.X, 1.e-9)
		assert.InDelta(t, 1., center.Y, 1.e-9)
		assert.Less(t, center.Z, 0.3)
		assert.Greater(t, center.Z, 0.)
	}
}

func TestImplicitSmoothErrors(t *testing.T) {
	cfg := DefaultConfig()
	sp := DefaultSmoothingParameters()
	sp.TimeStep = 0
	_, err := ImplicitSmooth(polymesh.NewCube(), cfg, sp)
	assert.Error(t, err)

	// every vertex is on the boundary: nothing moves
	sp = DefaultSmoothingParameters()
	sm, err := ImplicitSmooth(polymesh.NewUnitSquare(), cfg, sp)
	require.NoError(t, err)
	assert.Equal(t, polymesh.NewUnitSquare().Vertices, sm.Vertices)
}
