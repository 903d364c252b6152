package utils

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// Triplet is one (row, col, value) contribution to a sparse matrix.
type Triplet struct {
	Row, Col int
	Val      float64
}

// TripletList is an append-only scatter target. Duplicate (row, col) entries
// are summed when the list is turned into a CSR.
type TripletList []Triplet

func NewTripletList(capacity int) TripletList {
	return make(TripletList, 0, capacity)
}

func (tl *TripletList) Append(i, j int, val float64) {
	*tl = append(*tl, Triplet{Row: i, Col: j, Val: val})
}

// MergeTriplets concatenates per-worker buffers in the order given.
func MergeTriplets(lists ...TripletList) (merged TripletList) {
	var total int
	for _, tl := range lists {
		total += len(tl)
	}
	merged = make(TripletList, 0, total)
	for _, tl := range lists {
		merged = append(merged, tl...)
	}
	return
}

type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

// NewCSRFromTriplets builds an nr x nc CSR matrix, summing duplicate entries.
// Entries are grouped by (row, col) with a stable sort and summed before the
// COO conversion, so the summation order does not depend on how the triplets
// were partitioned between workers. COO.ToCSR does not merge a repeat of the
// first entry stored in a row, so it is only given unique entries.
func NewCSRFromTriplets(nr, nc int, trips TripletList) (R CSR) {
	var (
		sorted = make(TripletList, len(trips))
		rows   = make([]int, 0, len(trips))
		cols   = make([]int, 0, len(trips))
		data   = make([]float64, 0, len(trips))
	)
	for _, t := range trips {
		if t.Row < 0 || t.Row >= nr || t.Col < 0 || t.Col >= nc {
			panic(fmt.Errorf("triplet (%d,%d) out of bounds for %dx%d matrix", t.Row, t.Col, nr, nc))
		}
	}
	copy(sorted, trips)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Row != sorted[b].Row {
			return sorted[a].Row < sorted[b].Row
		}
		return sorted[a].Col < sorted[b].Col
	})
	for k, t := range sorted {
		if k > 0 && t.Row == sorted[k-1].Row && t.Col == sorted[k-1].Col {
			data[len(data)-1] += t.Val
			continue
		}
		rows = append(rows, t.Row)
		cols = append(cols, t.Col)
		data = append(data, t.Val)
	}
	R = newCSR(sparse.NewCOO(nr, nc, rows, cols, data).ToCSR())
	return
}

func newCSR(M *sparse.CSR) CSR {
	return CSR{
		M,
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
}

func NewDiagonalCSR(diag []float64) CSR {
	var (
		n     = len(diag)
		trips = NewTripletList(n)
	)
	for i, val := range diag {
		trips.Append(i, i, val)
	}
	return NewCSRFromTriplets(n, n, trips)
}

func NewIdentityCSR(n int) CSR {
	return NewDiagonalCSR(ConstArray(n, 1))
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}
func (m CSR) NNZ() int { return len(m.RawMatrix().Ind) }

func (m *CSR) SetReadOnly(name ...string) CSR {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m CSR) Name() string { return m.name }

// DoNonZero visits the stored entries in row-major order.
func (m CSR) DoNonZero(fn func(i, j int, val float64)) {
	var (
		raw   = m.RawMatrix()
		nr, _ = m.Dims()
	)
	for i := 0; i < nr; i++ {
		for k := raw.Indptr[i]; k < raw.Indptr[i+1]; k++ {
			fn(i, raw.Ind[k], raw.Data[k])
		}
	}
}

func (m CSR) Transpose() (R CSR) { // Does not change receiver
	R = newCSR(m.M.T().(*sparse.CSC).ToCSR())
	return
}

// Mul returns the sparse product m*A
func (m CSR) Mul(A CSR) (R CSR) { // Does not change receiver
	var (
		nrM, ncM = m.Dims()
		nrA, ncA = A.Dims()
	)
	if ncM != nrA {
		panic(fmt.Errorf("dimension mismatch: cannot multiply %dx%d by %dx%d", nrM, ncM, nrA, ncA))
	}
	R = newCSR(sparse.NewCSR(nrM, ncA, nil, nil, nil))
	R.M.Mul(m.M, A.M)
	return
}

func (m CSR) Add(A CSR) (R CSR) { // Does not change receiver
	return m.AddScaled(A, 1)
}

// AddScaled returns m + a*A
func (m CSR) AddScaled(A CSR, a float64) (R CSR) { // Does not change receiver
	var (
		nr, nc   = m.Dims()
		nrA, ncA = A.Dims()
		aA       = A.Copy()
	)
	if nr != nrA || nc != ncA {
		panic(fmt.Errorf("dimension mismatch: cannot add %dx%d to %dx%d", nrA, ncA, nr, nc))
	}
	aA.Scale(a)
	R = newCSR(sparse.NewCSR(nr, nc, nil, nil, nil))
	R.M.Add(m.M, aA.M)
	return
}

// Copy returns a writable copy of m
func (m CSR) Copy() (R CSR) {
	R = newCSR(m.M.ToCOO().ToCSR())
	return
}

func (m CSR) Scale(a float64) CSR { // Changes receiver
	var (
		data = m.Data()
	)
	m.checkWritable()
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m CSR) MulVec(x []float64) (y []float64) {
	var (
		nr, nc = m.Dims()
	)
	if len(x) != nc {
		panic(fmt.Errorf("dimension mismatch: matrix has %d columns, vector has %d entries", nc, len(x)))
	}
	y = make([]float64, nr)
	m.DoNonZero(func(i, j int, val float64) {
		y[i] += val * x[j]
	})
	return
}

func (m CSR) RowSums() (sums []float64) {
	var (
		nr, _ = m.Dims()
	)
	sums = make([]float64, nr)
	m.DoNonZero(func(i, _ int, val float64) {
		sums[i] += val
	})
	return
}

func (m CSR) Diagonal() (diag []float64) {
	var (
		nr, nc = m.Dims()
	)
	diag = make([]float64, min(nr, nc))
	m.DoNonZero(func(i, j int, val float64) {
		if i == j {
			diag[i] = val
		}
	})
	return
}

func (m CSR) IsDiagonal() (isDiag bool) {
	isDiag = true
	m.DoNonZero(func(i, j int, val float64) {
		if i != j && val != 0 {
			isDiag = false
		}
	})
	return
}

// SymmetryError returns max |m(i,j) - m(j,i)| over the stored pattern.
func (m CSR) SymmetryError() (maxErr float64) {
	var (
		nr, nc = m.Dims()
	)
	if nr != nc {
		panic(fmt.Errorf("symmetry is undefined for a %dx%d matrix", nr, nc))
	}
	m.DoNonZero(func(i, j int, val float64) {
		maxErr = math.Max(maxErr, math.Abs(val-m.At(j, i)))
	})
	return
}

func (m CSR) ToDense() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	data := R.Data()
	m.DoNonZero(func(i, j int, val float64) {
		data[i*nc+j] += val
	})
	return
}

// WriteMatrixMarket writes the matrix in MatrixMarket coordinate format (1-based indices).
func (m CSR) WriteMatrixMarket(w io.Writer) (err error) {
	var (
		nr, nc = m.Dims()
		bw     = bufio.NewWriter(w)
	)
	if _, err = fmt.Fprintf(bw, "%%%%MatrixMarket matrix coordinate real general\n%% %s\n%d %d %d\n",
		m.name, nr, nc, m.NNZ()); err != nil {
		return
	}
	m.DoNonZero(func(i, j int, val float64) {
		if err == nil {
			_, err = fmt.Fprintf(bw, "%d %d %.17g\n", i+1, j+1, val)
		}
	})
	if err != nil {
		return
	}
	return bw.Flush()
}

func (m CSR) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}
