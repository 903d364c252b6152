package polydiff

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polymesh"
)

type SmoothingParameters struct {
	TimeStep    float64
	Iterations  int
	LumpedMass  bool
	RescaleArea bool // restore surface area and centroid after each step, closed meshes only
}

func DefaultSmoothingParameters() SmoothingParameters {
	return SmoothingParameters{
		TimeStep:    1.e-3,
		Iterations:  1,
		LumpedMass:  true,
		RescaleArea: true,
	}
}

// ImplicitSmooth runs backward Euler steps of the heat flow on the vertex
// positions, solving (M - dt*S) x' = M x for each coordinate. Boundary
// vertices stay fixed. Virtual points and operators are rebuilt from the
// current positions at every step. The input mesh is not modified.
func ImplicitSmooth(mesh *polymesh.SurfaceMesh, cfg Config, sp SmoothingParameters) (smoothed *polymesh.SurfaceMesh, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if sp.TimeStep <= 0 {
		err = fmt.Errorf("smoothing time step must be positive, got %g", sp.TimeStep)
		return
	}
	var (
		isBoundary = mesh.BoundaryVertices()
		free       = make([]int, 0, mesh.NumVertices())
		closed     = true
	)
	for v, b := range isBoundary {
		if b {
			closed = false
			continue
		}
		free = append(free, v)
	}
	smoothed = mesh.Copy()
	if len(free) == 0 {
		return
	}
	var (
		area0   = PolygonSurfaceArea(mesh)
		center0 = AreaWeightedCentroid(mesh)
	)
	for iter := 0; iter < sp.Iterations; iter++ {
		if err = smoothingStep(smoothed, cfg, sp, free); err != nil {
			err = fmt.Errorf("step %d: %w", iter, err)
			return
		}
		if sp.RescaleArea && closed {
			rescale(smoothed, area0, center0)
		}
	}
	return
}

func smoothingStep(mesh *polymesh.SurfaceMesh, cfg Config, sp SmoothingParameters, free []int) (err error) {
	var (
		nv    = mesh.NumVertices()
		vp    = ComputeVirtualPoints(mesh, cfg)
		S, _  = AssembleStiffnessMatrix(mesh, vp, cfg)
		M, _  = AssembleMassMatrix(mesh, vp, cfg, sp.LumpedMass)
		coord = make([][]float64, 3)
		rhs   = make([][]float64, 3)
	)
	for d := range coord {
		coord[d] = make([]float64, nv)
		for v, p := range mesh.Vertices {
			coord[d][v] = component(p, d)
		}
		rhs[d] = M.MulVec(coord[d])
	}
	if err = solveDirichlet(M.AddScaled(S, -sp.TimeStep), rhs, coord, free); err != nil {
		return
	}
	for _, v := range free {
		mesh.Vertices[v] = r3.Vec{X: coord[0][v], Y: coord[1][v], Z: coord[2][v]}
	}
	return
}

// rescale scales the mesh about its centroid to the target area and moves the
// centroid to center.
func rescale(mesh *polymesh.SurfaceMesh, area float64, center r3.Vec) {
	var (
		curArea   = PolygonSurfaceArea(mesh)
		curCenter = AreaWeightedCentroid(mesh)
	)
	if curArea <= 0 {
		return
	}
	scale := math.Sqrt(area / curArea)
	for v, p := range mesh.Vertices {
		mesh.Vertices[v] = r3.Add(center, r3.Scale(scale, r3.Sub(p, curCenter)))
	}
}

func component(p r3.Vec, d int) float64 {
	switch d {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
