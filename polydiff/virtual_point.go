package polydiff

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/geometry"
	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

// FacePoint is the virtual point of one face together with its affine
// weights over the face vertices, in face traversal order.
type FacePoint struct {
	Point    r3.Vec
	Weights  []float64
	Fallback bool // uniform weights were used because the solve failed
}

// VirtualPoints is indexed by face.
type VirtualPoints []FacePoint

// ComputeVirtualPoints solves for the squared-area minimizing point of every
// face. Faces are independent and are split across cfg workers.
func ComputeVirtualPoints(mesh *polymesh.SurfaceMesh, cfg Config) (vp VirtualPoints) {
	vp = make(VirtualPoints, mesh.NumFaces())
	forEachFaceGroup(mesh.NumFaces(), cfg, func(_ int, faces []int) {
		for _, f := range faces {
			poly := mesh.FacePositions(f)
			w, fallback := FindPolygonWeights(poly, cfg)
			vp[f] = FacePoint{
				Point:    geometry.AffineCombination(poly, w),
				Weights:  w,
				Fallback: fallback,
			}
		}
	})
	return
}

func (vp VirtualPoints) Fallbacks() (count int) {
	for _, fp := range vp {
		if fp.Fallback {
			count++
		}
	}
	return
}

// FindPolygonWeights returns affine weights w (sum 1) such that sum_i w_i*poly_i
// minimizes the summed squared areas of the triangles joining that point to
// each polygon edge. The stationarity conditions J w = b are stacked with the
// row of ones and solved in the minimum norm least squares sense, which keeps
// rank deficient J (planar or symmetric polygons with more than 3 vertices)
// well defined. Uniform weights are returned when the solve fails.
//
// The weights are invariant under translation and scaling of the polygon, so
// the system is built about the vertex centroid and the stationarity rows are
// normalized by their largest entry. The rank cutoff then sees the same
// system for a face of any size or position.
func FindPolygonWeights(poly []r3.Vec, cfg Config) (w []float64, fallback bool) {
	var (
		n      = len(poly)
		J      = utils.NewMatrix(n+1, n)
		rhs    = make([]float64, n+1)
		center = geometry.Centroid(poly)
		err    error
	)
	poly = centered(poly, center)
	for i, pk := range poly {
		var (
			bk1d1, bk1d2 float64
			bk2d0, bk2d2 float64
			bk3d0, bk3d1 float64
			cbk          float64
		)
		for j := 0; j < n; j++ {
			pi, pj := poly[j], poly[(j+1)%n]
			d := r3.Sub(pi, pj)
			bik := r3.Cross(d, pk)
			ci := r3.Cross(d, pi)

			bk1d1 += d.Y * bik.X
			bk1d2 += d.Z * bik.X
			bk2d0 += d.X * bik.Y
			bk2d2 += d.Z * bik.Y
			bk3d0 += d.X * bik.Z
			bk3d1 += d.Y * bik.Z

			cbk += r3.Dot(ci, bik)
		}
		for k, xk := range poly {
			jik := 0.5 * (xk.Z*bk1d1 - xk.Y*bk1d2 + xk.X*bk2d2 - xk.Z*bk2d0 + xk.Y*bk3d0 - xk.X*bk3d1)
			J.Set(i, k, 4*jik)
		}
		rhs[i] = 4 * 0.5 * cbk
	}
	normalizeRows(J.Data()[:n*n], rhs[:n])
	// affine constraint row
	for k := 0; k < n; k++ {
		J.Set(n, k, 1)
	}
	rhs[n] = 1

	if w, err = utils.LeastSquaresMinNorm(J, rhs); err != nil || !validWeights(w, cfg.WeightSumTolerance) {
		return utils.ConstArray(n, 1./float64(n)), true
	}
	return w, false
}

func centered(poly []r3.Vec, center r3.Vec) (q []r3.Vec) {
	q = make([]r3.Vec, len(poly))
	for i, p := range poly {
		q[i] = r3.Sub(p, center)
	}
	return
}

// normalizeRows divides the block and its right hand side by the largest
// absolute entry of the block. A zero block is left alone.
func normalizeRows(block, rhs []float64) {
	var scale float64
	for _, val := range block {
		scale = math.Max(scale, math.Abs(val))
	}
	if scale == 0 {
		return
	}
	floats.Scale(1/scale, block)
	floats.Scale(1/scale, rhs)
}

func validWeights(w []float64, tol float64) bool {
	for _, val := range w {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return false
		}
	}
	return math.Abs(floats.Sum(w)-1) <= tol
}
