package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorParametersParse(t *testing.T) {
	input := []byte(`
Title: "hexagon patch"
ClampCotangents: true
CotanBound: 10
ParallelDegree: 4
Partitioner: metis
NumPartitions: 8
TimeStep: 0.01
Iterations: 5
`)
	ip := NewOperatorParameters()
	require.NoError(t, ip.Parse(input))
	assert.Equal(t, "hexagon patch", ip.Title)
	assert.True(t, ip.ClampCotangents)
	assert.Equal(t, 10., ip.CotanBound)
	assert.Equal(t, 4, ip.ParallelDegree)
	assert.Equal(t, "metis", ip.Partitioner)
	assert.Equal(t, 8, ip.NumPartitions)
	assert.Equal(t, 0.01, ip.TimeStep)
	assert.Equal(t, 5, ip.Iterations)
	// defaults survive
	assert.Equal(t, 1.e-7, ip.AreaTolerance)
	assert.Equal(t, 1.e-10, ip.GradientTolerance)
	assert.True(t, ip.LumpedMass)
	ip.Print()

	assert.Error(t, ip.Parse([]byte("ParallelDegree: [1, 2]\n")))
}
