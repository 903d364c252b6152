// Package polydiff builds discrete differential operators (stiffness, mass,
// gradient, divergence) on general polygon meshes. Every face is replaced by
// the fan of triangles joining its boundary edges to a per-face virtual point,
// and the virtual point's degree of freedom is eliminated again through its
// affine weights.
package polydiff

import "fmt"

// Config carries the numerical policy shared by all builders.
type Config struct {
	// Kites whose (half-Heron) area is at or below AreaTolerance are skipped
	// in the stiffness and mass matrices.
	AreaTolerance float64
	// Fan triangles with area below GradientTolerance get zero gradients.
	GradientTolerance float64
	// Weight vectors whose sum misses 1 by more than this fall back to uniform weights.
	WeightSumTolerance float64
	// ClampCotangents bounds every kite cotangent to [-CotanBound, CotanBound].
	ClampCotangents bool
	CotanBound      float64
	// ParallelDegree is the number of workers used for per-face loops.
	ParallelDegree int
	// FacePartition optionally assigns each face to a worker, e.g. from a
	// graph partitioner. When set it overrides ParallelDegree.
	FacePartition []int
}

func DefaultConfig() Config {
	return Config{
		AreaTolerance:      1.e-7,
		GradientTolerance:  1.e-10,
		WeightSumTolerance: 1.e-8,
		ClampCotangents:    false,
		CotanBound:         19.1, // cot(3 degrees)
		ParallelDegree:     1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.AreaTolerance < 0:
		return fmt.Errorf("area tolerance must be non-negative, got %g", c.AreaTolerance)
	case c.GradientTolerance < 0:
		return fmt.Errorf("gradient tolerance must be non-negative, got %g", c.GradientTolerance)
	case c.WeightSumTolerance <= 0:
		return fmt.Errorf("weight sum tolerance must be positive, got %g", c.WeightSumTolerance)
	case c.ClampCotangents && c.CotanBound <= 0:
		return fmt.Errorf("cotangent bound must be positive when clamping, got %g", c.CotanBound)
	case c.ParallelDegree < 1:
		return fmt.Errorf("parallel degree must be at least 1, got %d", c.ParallelDegree)
	}
	for f, part := range c.FacePartition {
		if part < 0 {
			return fmt.Errorf("face %d has negative partition %d", f, part)
		}
	}
	return nil
}
