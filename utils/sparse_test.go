package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFromTriplets(t *testing.T) {
	// Duplicates are summed and order does not matter
	{
		trips := NewTripletList(6)
		trips.Append(1, 1, 2)
		trips.Append(0, 0, 1)
		trips.Append(1, 1, 3)
		trips.Append(0, 2, -1)
		trips.Append(0, 0, 4)
		A := NewCSRFromTriplets(2, 3, trips)
		nr, nc := A.Dims()
		assert.Equal(t, 2, nr)
		assert.Equal(t, 3, nc)
		assert.Equal(t, 3, A.NNZ())
		assert.Equal(t, 5., A.At(0, 0))
		assert.Equal(t, 5., A.At(1, 1))
		assert.Equal(t, -1., A.At(0, 2))
		assert.Equal(t, 0., A.At(1, 0))

		reversed := NewTripletList(len(trips))
		for i := len(trips) - 1; i >= 0; i-- {
			reversed = append(reversed, trips[i])
		}
		B := NewCSRFromTriplets(2, 3, reversed)
		assert.Equal(t, A.ToDense().Data(), B.ToDense().Data())
	}
	// Merged worker buffers equal a single buffer
	{
		b1, b2 := NewTripletList(2), NewTripletList(2)
		b1.Append(0, 1, 1)
		b2.Append(0, 1, 2)
		b2.Append(1, 0, 3)
		A := NewCSRFromTriplets(2, 2, MergeTriplets(b1, b2))
		assert.Equal(t, []float64{0, 3, 3, 0}, A.ToDense().Data())
	}
	// Out of range triplet
	{
		trips := NewTripletList(1)
		trips.Append(2, 0, 1)
		assert.Panics(t, func() { NewCSRFromTriplets(2, 2, trips) })
	}
}

func TestCSRArithmetic(t *testing.T) {
	dense := func(nr, nc int, data []float64) CSR {
		trips := NewTripletList(len(data))
		for k, val := range data {
			if val != 0 {
				trips.Append(k/nc, k%nc, val)
			}
		}
		return NewCSRFromTriplets(nr, nc, trips)
	}
	A := dense(2, 3, []float64{
		1, 0, 2,
		0, 3, 0,
	})
	B := dense(3, 2, []float64{
		1, 1,
		0, 2,
		4, 0,
	})
	// Mul matches the dense product
	{
		C := A.Mul(B)
		want := A.ToDense().Mul(B.ToDense())
		assert.Equal(t, want.Data(), C.ToDense().Data())
		assert.Panics(t, func() { A.Mul(A) })
	}
	// Transpose
	{
		At := A.Transpose()
		assert.Equal(t, A.ToDense().Transpose().Data(), At.ToDense().Data())
	}
	// MulVec, RowSums, Add, Scale
	{
		assert.Equal(t, []float64{3, 3}, A.MulVec([]float64{1, 1, 1}))
		assert.Equal(t, []float64{3, 3}, A.RowSums())
		S := A.Add(A)
		assert.Equal(t, 4., S.At(0, 2))
		S.Scale(-0.5)
		assert.Equal(t, -2., S.At(0, 2))
		D := A.AddScaled(A, -3)
		assert.Equal(t, -4., D.At(0, 2))
		assert.Equal(t, 2., A.At(0, 2))
		assert.Panics(t, func() { A.AddScaled(B, 1) })
	}
	// Diagonal helpers and symmetry
	{
		D := NewDiagonalCSR([]float64{1, 2, 3})
		assert.True(t, D.IsDiagonal())
		assert.Equal(t, []float64{1, 2, 3}, D.Diagonal())
		assert.Equal(t, 0., D.SymmetryError())
		assert.False(t, A.Mul(B).IsDiagonal())
		I := NewIdentityCSR(3)
		assert.Equal(t, B.ToDense().Data(), I.Mul(B).ToDense().Data())
		N := dense(2, 2, []float64{0, 1, 3, 0})
		assert.Equal(t, 2., N.SymmetryError())
	}
	// Read only
	{
		R := A.Transpose()
		R.SetReadOnly("R")
		assert.Panics(t, func() { R.Scale(2) })
		C := R.Copy()
		C.Scale(2)
		assert.Equal(t, 4., C.At(2, 0))
		assert.Equal(t, 2., R.At(2, 0))
	}
}

func TestCSRWriteMatrixMarket(t *testing.T) {
	D := NewDiagonalCSR([]float64{1.5, 2})
	D.SetReadOnly("D")
	var buf bytes.Buffer
	require.NoError(t, D.WriteMatrixMarket(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "%%MatrixMarket matrix coordinate real general", lines[0])
	assert.Equal(t, "% D", lines[1])
	assert.Equal(t, "2 2 2", lines[2])
	assert.Equal(t, "1 1 1.5", lines[3])
	assert.Equal(t, "2 2 2", lines[4])
}

func TestCSRIncidenceProduct(t *testing.T) {
	// two triangles sharing the edge (1,2)
	trips := NewTripletList(6)
	for f, verts := range [][]int{{0, 1, 2}, {2, 1, 3}} {
		for _, v := range verts {
			trips.Append(f, v, 1)
		}
	}
	FToV := NewCSRFromTriplets(2, 4, trips)
	FToF := FToV.Mul(FToV.Transpose())
	assert.Equal(t, []float64{3, 2, 2, 3}, FToF.ToDense().Data())
	VToV := FToV.Transpose().Mul(FToV)
	nr, nc := VToV.Dims()
	assert.Equal(t, 4, nr)
	assert.Equal(t, 4, nc)
	assert.Equal(t, 2., VToV.At(1, 2))
	assert.Equal(t, 0., VToV.At(0, 3))
	assert.Equal(t, 0., VToV.SymmetryError())

	// results own their storage
	T := FToV.Transpose()
	T.Scale(5)
	assert.Equal(t, 1., FToV.At(0, 0))
	D := FToF.AddScaled(NewIdentityCSR(2), -2)
	assert.Equal(t, []float64{1, 2, 2, 1}, D.ToDense().Data())
	assert.Equal(t, 3., FToF.At(0, 0))
}
