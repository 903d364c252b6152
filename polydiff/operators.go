package polydiff

import (
	"fmt"

	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

// Operators holds every operator of one mesh state, built from a single set
// of virtual points.
type Operators struct {
	VirtualPoints VirtualPoints
	S             utils.CSR // stiffness, nV x nV
	M             utils.CSR // mass, nV x nV, diagonal when lumped
	A             utils.CSR // prolongation, (nV+nF) x nV
	G             utils.CSR // gradient, 3T x nV
	GradMass      utils.CSR // 3T x 3T
	Div           utils.CSR // divergence, nV x 3T
	Stats         Stats
}

// BuildOperators validates cfg, solves the virtual points once and builds all
// operators from them.
func BuildOperators(mesh *polymesh.SurfaceMesh, cfg Config, lumped bool) (ops *Operators, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if nf := len(cfg.FacePartition); nf != 0 && nf != mesh.NumFaces() {
		err = fmt.Errorf("face partition covers %d faces, mesh has %d", nf, mesh.NumFaces())
		return
	}
	var (
		vp        = ComputeVirtualPoints(mesh, cfg)
		S, sStats = AssembleStiffnessMatrix(mesh, vp, cfg)
		M, mStats = AssembleMassMatrix(mesh, vp, cfg, lumped)
		G         = SetupGradientMatrix(mesh, vp, cfg)
		GradMass  = SetupGradientMassMatrix(mesh, vp)
		stats     = sStats
	)
	stats.DegenerateKites += mStats.DegenerateKites
	stats.WeightFallbacks = vp.Fallbacks()
	ops = &Operators{
		VirtualPoints: vp,
		S:             S,
		M:             M,
		A:             SetupProlongationMatrix(mesh, vp),
		G:             G,
		GradMass:      GradMass,
		Div:           divergence(G, GradMass),
		Stats:         stats,
	}
	return
}

func (ops *Operators) Print() {
	var (
		nv, _ = ops.S.Dims()
		ng, _ = ops.G.Dims()
	)
	fmt.Printf("Vertices             = %d\n", nv)
	fmt.Printf("Faces                = %d\n", ops.Stats.Faces)
	fmt.Printf("Fan Triangles        = %d\n", ops.Stats.Triangles)
	fmt.Printf("Gradient Rows        = %d\n", ng)
	fmt.Printf("Degenerate Kites     = %d\n", ops.Stats.DegenerateKites)
	fmt.Printf("Weight Fallbacks     = %d\n", ops.Stats.WeightFallbacks)
	fmt.Printf("NNZ S, M, G, Div     = %d, %d, %d, %d\n", ops.S.NNZ(), ops.M.NNZ(), ops.G.NNZ(), ops.Div.NNZ())
	fmt.Printf("S Symmetry Error     = %8.5e\n", ops.S.SymmetryError())
}

// Matrices returns the operators keyed by their read-only names, in a fixed order.
func (ops *Operators) Matrices() (names []string, mats []utils.CSR) {
	mats = []utils.CSR{ops.S, ops.M, ops.A, ops.G, ops.GradMass, ops.Div}
	for _, m := range mats {
		names = append(names, m.Name())
	}
	return
}
