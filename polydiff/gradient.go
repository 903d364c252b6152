package polydiff

import (
	"github.com/notargets/polylaplace/geometry"
	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

// SetupProlongationMatrix returns A, (nV+nF) x nV. The top block is the
// identity and row nV+f carries the weights of face f at its vertex columns,
// so A maps vertex values to vertex plus virtual point values.
func SetupProlongationMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints) (A utils.CSR) {
	var (
		nv, nf = mesh.NumVertices(), mesh.NumFaces()
		trips  = utils.NewTripletList(nv + mesh.NumHalfedges())
	)
	for v := 0; v < nv; v++ {
		trips.Append(v, v, 1)
	}
	for f := 0; f < nf; f++ {
		for i, v := range mesh.FaceVertices(f) {
			trips.Append(nv+f, v, vp[f].Weights[i])
		}
	}
	A = utils.NewCSRFromTriplets(nv+nf, nv, trips)
	A.SetReadOnly("A")
	return
}

// triangleOffsets returns, per face, the index of its first fan triangle. Fan
// triangle t of face f joins halfedge t of f to the virtual point.
func triangleOffsets(mesh *polymesh.SurfaceMesh) (offsets []int, nt int) {
	offsets = make([]int, mesh.NumFaces())
	for f := range offsets {
		offsets[f] = nt
		nt += mesh.Valence(f)
	}
	return
}

// SetupGradientMatrix returns G, 3T x nV, where T is the number of fan
// triangles. Rows 3t..3t+2 are the x, y, z components of the gradient of the
// piecewise linear interpolant on fan triangle t. The interpolant is built
// over vertices and virtual points and pulled back to vertices through A.
func SetupGradientMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints, cfg Config) (G utils.CSR) {
	var (
		nv, nf      = mesh.NumVertices(), mesh.NumFaces()
		offsets, nt = triangleOffsets(mesh)
		nGroups     = numFaceGroups(nf, cfg)
		buffers     = make([]utils.TripletList, nGroups)
		tol         = cfg.GradientTolerance
	)
	forEachFaceGroup(nf, cfg, func(group int, faces []int) {
		trips := utils.NewTripletList(9 * 4 * len(faces))
		for _, f := range faces {
			p := vp[f].Point
			for t, he := range mesh.Halfedges(f) {
				var (
					row    = 3 * (offsets[f] + t)
					p0, p1 = mesh.Position(he.From), mesh.Position(he.To)
					gp     = geometry.GradientHatFunction(p, p0, p1, tol)
					g0     = geometry.GradientHatFunction(p0, p1, p, tol)
					g1     = geometry.GradientHatFunction(p1, p, p0, tol)
				)
				for j, comp := range [3][3]float64{
					{gp.X, g0.X, g1.X},
					{gp.Y, g0.Y, g1.Y},
					{gp.Z, g0.Z, g1.Z},
				} {
					trips.Append(row+j, nv+f, comp[0])
					trips.Append(row+j, he.From, comp[1])
					trips.Append(row+j, he.To, comp[2])
				}
			}
		}
		buffers[group] = trips
	})
	Gext := utils.NewCSRFromTriplets(3*nt, nv+nf, utils.MergeTriplets(buffers...))
	G = Gext.Mul(SetupProlongationMatrix(mesh, vp))
	G.SetReadOnly("G")
	return
}

// SetupGradientMassMatrix returns the 3T x 3T diagonal matrix holding the area
// of each fan triangle once per gradient component.
func SetupGradientMassMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints) (Mg utils.CSR) {
	var (
		_, nt = triangleOffsets(mesh)
		diag  = make([]float64, 0, 3*nt)
	)
	for f := 0; f < mesh.NumFaces(); f++ {
		p := vp[f].Point
		for _, he := range mesh.Halfedges(f) {
			area := geometry.TriangleArea(mesh.Position(he.From), mesh.Position(he.To), p)
			diag = append(diag, area, area, area)
		}
	}
	Mg = utils.NewDiagonalCSR(diag)
	Mg.SetReadOnly("GradMass")
	return
}

// SetupDivergenceMatrix returns D = -G^T Mg, nV x 3T, so that D G reproduces
// the stiffness matrix.
func SetupDivergenceMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints, cfg Config) (D utils.CSR) {
	var (
		G  = SetupGradientMatrix(mesh, vp, cfg)
		Mg = SetupGradientMassMatrix(mesh, vp)
	)
	D = divergence(G, Mg)
	return
}

func divergence(G, Mg utils.CSR) (D utils.CSR) {
	D = G.Transpose().Mul(Mg)
	D.Scale(-1)
	D.SetReadOnly("Div")
	return
}
