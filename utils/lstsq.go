package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RankTolerance is the singular value cutoff, relative to the largest one,
// below which a direction is treated as part of the null space.
const RankTolerance = 1.e-12

// LeastSquaresMinNorm returns the minimum norm least squares solution of A x = b
// using the SVD pseudo-inverse, so rank deficient A is handled without pivoting.
func LeastSquaresMinNorm(A Matrix, b []float64) (x []float64, err error) {
	var (
		nr, nc = A.Dims()
		svd    mat.SVD
	)
	if len(b) != nr {
		err = fmt.Errorf("dimension mismatch: A is %dx%d, len(b) = %d", nr, nc, len(b))
		return
	}
	if ok := svd.Factorize(A.M, mat.SVDThin); !ok {
		err = fmt.Errorf("unable to factorize %dx%d system", nr, nc)
		return
	}
	rank := svd.Rank(RankTolerance)
	if rank == 0 {
		err = fmt.Errorf("system has rank zero")
		return
	}
	var xv mat.VecDense
	svd.SolveVecTo(&xv, mat.NewVecDense(nr, b), rank)
	x = VecGetF64(&xv)
	return
}
