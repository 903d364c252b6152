package polydiff

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

var (
	ErrNotPositiveDefinite = errors.New("reduced system is not positive definite")
	ErrNoBoundary          = errors.New("mesh has no boundary vertices to hold the solution")
)

// SolvePoisson solves -Laplace(u) = f on the mesh with u = g on boundary
// vertices, using the weak form -S u = M f. Both f and g are sampled at the
// vertices. Closed meshes are rejected with ErrNoBoundary.
func SolvePoisson(mesh *polymesh.SurfaceMesh, cfg Config, lumped bool, f, g func(r3.Vec) float64) (u []float64, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	var (
		nv         = mesh.NumVertices()
		isBoundary = mesh.BoundaryVertices()
		free       = make([]int, 0, nv)
		fv         = make([]float64, nv)
	)
	u = make([]float64, nv)
	for v, b := range isBoundary {
		p := mesh.Position(v)
		if b {
			u[v] = g(p)
		} else {
			free = append(free, v)
		}
		fv[v] = f(p)
	}
	if len(free) == nv {
		return nil, ErrNoBoundary
	}
	var (
		vp   = ComputeVirtualPoints(mesh, cfg)
		S, _ = AssembleStiffnessMatrix(mesh, vp, cfg)
		M, _ = AssembleMassMatrix(mesh, vp, cfg, lumped)
		A    = S.Copy()
	)
	A.Scale(-1)
	err = solveDirichlet(A, [][]float64{M.MulVec(fv)}, [][]float64{u}, free)
	return
}

// solveDirichlet solves A x = b on the free rows for each right hand side,
// holding x fixed at the other rows. A must be symmetric and positive definite
// on the free block. The free entries of each x[d] are overwritten.
func solveDirichlet(A utils.CSR, b, x [][]float64, free []int) (err error) {
	nFree := len(free)
	if nFree == 0 {
		return
	}
	var (
		nr, _   = A.Dims()
		freeIdx = make([]int, nr)
		sys     = mat.NewSymDense(nFree, nil)
		rhs     = make([][]float64, len(b))
		chol    mat.Cholesky
	)
	for v := range freeIdx {
		freeIdx[v] = -1
	}
	for k, v := range free {
		freeIdx[v] = k
	}
	for d := range b {
		rhs[d] = make([]float64, nFree)
		for k, v := range free {
			rhs[d][k] = b[d][v]
		}
	}
	A.DoNonZero(func(i, j int, val float64) {
		fi, fj := freeIdx[i], freeIdx[j]
		switch {
		case fi < 0:
		case fj >= 0:
			if fi <= fj {
				sys.SetSym(fi, fj, val)
			}
		default:
			for d := range rhs {
				rhs[d][fi] -= val * x[d][j]
			}
		}
	})
	if ok := chol.Factorize(sys); !ok {
		return ErrNotPositiveDefinite
	}
	sol := mat.NewVecDense(nFree, nil)
	for d := range rhs {
		if err = chol.SolveVecTo(sol, mat.NewVecDense(nFree, rhs[d])); err != nil {
			return
		}
		for k, v := range free {
			x[d][v] = sol.AtVec(k)
		}
	}
	return
}
