package polydiff

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/geometry"
	"github.com/notargets/polylaplace/utils"
)

const (
	// Heron scale factors: the stiffness stencil works with twice the kite
	// area, the mass stencil with the kite area itself.
	stiffnessHeronFactor = 0.5
	massHeronFactor      = 0.25
)

// kite holds the squared and plain side lengths of triangle (v_i, v_i+1, p):
// index 2 is the polygon edge, 0 the spoke from v_i+1 and 1 the spoke from v_i.
type kite struct {
	l2, l [3]float64
}

func newKite(vi, vi1, p r3.Vec) (k kite) {
	k.l2[2] = r3.Norm2(r3.Sub(vi, vi1))
	k.l2[0] = r3.Norm2(r3.Sub(vi1, p))
	k.l2[1] = r3.Norm2(r3.Sub(vi, p))
	for i := range k.l {
		k.l[i] = math.Sqrt(k.l2[i])
	}
	return
}

func (k kite) heron() float64 { return geometry.HeronArea(k.l[0], k.l[1], k.l[2]) }

// LocalStiffnessMatrix returns the n x n positive semi-definite cotangent
// form of a polygon with virtual point p = sum w_i poly_i. Each kite adds its
// cotangent stencil to the (n+1) system of polygon vertices plus p, and the
// row/column of p is folded back onto the vertices through w. Kites at or
// below cfg.AreaTolerance are skipped; their number is returned.
func LocalStiffnessMatrix(poly []r3.Vec, p r3.Vec, w []float64, cfg Config) (L utils.Matrix, degenerate int) {
	var (
		n = len(poly)
		K = utils.NewMatrix(n+1, n+1)
	)
	for i := 0; i < n; i++ {
		var (
			i1   = (i + 1) % n
			k    = newKite(poly[i], poly[i1], p)
			area = stiffnessHeronFactor * k.heron()
			l    [3]float64
		)
		if area <= cfg.AreaTolerance {
			degenerate++
			continue
		}
		l[0] = 0.25 * (k.l2[1] + k.l2[2] - k.l2[0]) / area
		l[1] = 0.25 * (k.l2[2] + k.l2[0] - k.l2[1]) / area
		l[2] = 0.25 * (k.l2[0] + k.l2[1] - k.l2[2]) / area
		if cfg.ClampCotangents {
			// l holds half cotangents
			bound := 0.5 * cfg.CotanBound
			for j := range l {
				l[j] = math.Max(-bound, math.Min(bound, l[j]))
			}
		}

		K.AddAt(i1, i1, l[0]+l[2])
		K.AddAt(i, i, l[1]+l[2])
		K.AddAt(i1, i, -l[2])
		K.AddAt(i, i1, -l[2])

		K.AddAt(i1, n, -l[0])
		K.AddAt(n, i1, -l[0])
		K.AddAt(i, n, -l[1])
		K.AddAt(n, i, -l[1])
		K.AddAt(n, n, l[0]+l[1])
	}
	L = sandwich(K, w)
	return
}

// LocalMassMatrix is the mass counterpart of LocalStiffnessMatrix, using the
// linear triangle mass stencil (area/6 diagonal, area/12 off-diagonal) per kite.
func LocalMassMatrix(poly []r3.Vec, p r3.Vec, w []float64, cfg Config) (M utils.Matrix, degenerate int) {
	var (
		n = len(poly)
		K = utils.NewMatrix(n+1, n+1)
	)
	for i := 0; i < n; i++ {
		var (
			i1   = (i + 1) % n
			k    = newKite(poly[i], poly[i1], p)
			area = massHeronFactor * k.heron()
		)
		if area <= cfg.AreaTolerance {
			degenerate++
			continue
		}
		diag, off := area/6., area/12.
		for _, a := range [3]int{i, i1, n} {
			for _, b := range [3]int{i, i1, n} {
				if a == b {
					K.AddAt(a, b, diag)
				} else {
					K.AddAt(a, b, off)
				}
			}
		}
	}
	M = sandwich(K, w)
	return
}

// sandwich eliminates the virtual point, the last row and column of K, by
// returning P^T K P with P = [I; w^T].
func sandwich(K utils.Matrix, w []float64) utils.Matrix {
	var (
		n = len(w)
		P = utils.NewMatrix(n+1, n)
	)
	for i := 0; i < n; i++ {
		P.Set(i, i, 1)
	}
	P.SetRow(n, w)
	return P.Transpose().Mul(K).Mul(P)
}
