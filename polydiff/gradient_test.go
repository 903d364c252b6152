package polydiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/polylaplace/polymesh"
)

func TestProlongationMatrix(t *testing.T) {
	var (
		m  = polymesh.NewHexagonPatch()
		vp = ComputeVirtualPoints(m, DefaultConfig())
		A  = SetupProlongationMatrix(m, vp)
		nv = m.NumVertices()
	)
	nr, nc := A.Dims()
	assert.Equal(t, nv+m.NumFaces(), nr)
	assert.Equal(t, nv, nc)
	rowSums := A.RowSums()
	for i := 0; i < nr; i++ {
		assert.InDelta(t, 1., rowSums[i], 1.e-8)
		if i < nv {
			assert.Equal(t, 1., A.At(i, i))
		}
	}
	// row of face 0 carries its weights at its vertices
	for k, v := range m.FaceVertices(0) {
		assert.Equal(t, vp[0].Weights[k], A.At(nv, v))
	}
	assert.Equal(t, 0., A.At(nv, 6))
}

func TestGradientMatrix(t *testing.T) {
	cfg := DefaultConfig()
	// Affine functions have their exact gradient on every fan triangle of a planar mesh
	for _, m := range []*polymesh.SurfaceMesh{
		polymesh.NewHexagonPatch(),
		polymesh.NewQuadGrid(3, 3, 0.25),
	} {
		var (
			vp = ComputeVirtualPoints(m, cfg)
			G  = SetupGradientMatrix(m, vp, cfg)
			f  = make([]float64, m.NumVertices())
		)
		nr, nc := G.Dims()
		require.Equal(t, 3*m.NumHalfedges(), nr)
		require.Equal(t, m.NumVertices(), nc)
		for v, p := range m.Vertices {
			f[v] = 2*p.X - 3*p.Y + 1
		}
		grad := G.MulVec(f)
		for tri := 0; tri < nr/3; tri++ {
			assert.InDelta(t, 2., grad[3*tri], 1.e-9)
			assert.InDelta(t, -3., grad[3*tri+1], 1.e-9)
			assert.InDelta(t, 0., grad[3*tri+2], 1.e-9)
		}
		// constants have no gradient
		grad = G.MulVec(make([]float64, nc))
		assert.Equal(t, 0., floats.Norm(grad, 2))
		for v := range f {
			f[v] = 7
		}
		assert.InDelta(t, 0., floats.Norm(G.MulVec(f), 2), 1.e-9)
	}
}

func TestGradientMassMatrix(t *testing.T) {
	for name, m := range testMeshes() {
		var (
			vp = ComputeVirtualPoints(m, DefaultConfig())
			Mg = SetupGradientMassMatrix(m, vp)
		)
		nr, nc := Mg.Dims()
		assert.Equal(t, 3*m.NumHalfedges(), nr, name)
		assert.Equal(t, nr, nc, name)
		assert.True(t, Mg.IsDiagonal(), name)
		diag := Mg.Diagonal()
		assert.InDelta(t, 3*PolygonSurfaceArea(m), floats.Sum(diag), 1.e-10, name)
		for tri := 0; tri < nr/3; tri++ {
			assert.Equal(t, diag[3*tri], diag[3*tri+1], name)
			assert.Equal(t, diag[3*tri], diag[3*tri+2], name)
		}
	}
}

func TestDivergenceGradientIsStiffness(t *testing.T) {
	cfg := DefaultConfig()
	meshes := testMeshes()
	// a nonplanar patch
	warped := polymesh.NewQuadGrid(3, 3, 0.5)
	for v, p := range warped.Vertices {
		warped.Vertices[v].Z = 0.2 * p.X * p.Y * (1 - p.X)
	}
	meshes["warped"] = warped
	for name, m := range meshes {
		var (
			vp   = ComputeVirtualPoints(m, cfg)
			S, _ = AssembleStiffnessMatrix(m, vp, cfg)
			G    = SetupGradientMatrix(m, vp, cfg)
			D    = SetupDivergenceMatrix(m, vp, cfg)
		)
		nr, nc := D.Dims()
		assert.Equal(t, m.NumVertices(), nr, name)
		assert.Equal(t, 3*m.NumHalfedges(), nc, name)
		assertCSRNear(t, S, D.Mul(G), 1.e-9, name)

		f := make([]float64, m.NumVertices())
		for v, p := range m.Vertices {
			f[v] = p.X*p.X - p.Y + 0.5*p.Z
		}
		assert.InDeltaSlice(t, S.MulVec(f), D.MulVec(G.MulVec(f)), 1.e-9, name)
	}
}

func TestBuildOperators(t *testing.T) {
	var (
		m   = polymesh.NewHexagonPatch()
		cfg = DefaultConfig()
	)
	ops, err := BuildOperators(m, cfg, true)
	require.NoError(t, err)
	S, _ := SetupStiffnessMatrix(m, cfg)
	assertCSRNear(t, S, ops.S, 0)
	assert.True(t, ops.M.IsDiagonal())
	assertCSRNear(t, ops.S, ops.Div.Mul(ops.G), 1.e-9)
	assert.Equal(t, m.NumFaces(), ops.Stats.Faces)
	assert.Equal(t, m.NumHalfedges(), ops.Stats.Triangles)
	names, mats := ops.Matrices()
	assert.Equal(t, []string{"S", "M", "A", "G", "GradMass", "Div"}, names)
	assert.Len(t, mats, 6)

	cfg.ParallelDegree = 0
	_, err = BuildOperators(m, cfg, false)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.FacePartition = []int{0, 1}
	_, err = BuildOperators(m, cfg, false)
	assert.Error(t, err)
}
