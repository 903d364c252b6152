package polydiff

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/geometry"
	"github.com/notargets/polylaplace/polymesh"
)

// FaceArea returns the area of face f, triangulated as a fan around the
// average of its vertices.
func FaceArea(mesh *polymesh.SurfaceMesh, f int) float64 {
	return geometry.PolygonArea(mesh.FacePositions(f))
}

func PolygonSurfaceArea(mesh *polymesh.SurfaceMesh) (area float64) {
	for f := 0; f < mesh.NumFaces(); f++ {
		area += FaceArea(mesh, f)
	}
	return
}

// AreaWeightedCentroid averages the face centroids weighted by face area.
// A mesh of zero area returns the origin.
func AreaWeightedCentroid(mesh *polymesh.SurfaceMesh) (center r3.Vec) {
	var area float64
	for f := 0; f < mesh.NumFaces(); f++ {
		var (
			pts = mesh.FacePositions(f)
			a   = geometry.PolygonArea(pts)
		)
		center = r3.Add(center, r3.Scale(a, geometry.Centroid(pts)))
		area += a
	}
	if area == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1./area, center)
}
