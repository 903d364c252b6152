package polydiff

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/polylaplace/polymesh"
	"github.com/notargets/polylaplace/utils"
)

// Stats counts the recoverable numerical events met while building operators.
type Stats struct {
	Faces, Triangles int
	DegenerateKites  int // kites skipped in stiffness or mass assembly
	WeightFallbacks  int // faces that were given uniform weights
}

func (s *Stats) add(o Stats) {
	s.Faces += o.Faces
	s.Triangles += o.Triangles
	s.DegenerateKites += o.DegenerateKites
	s.WeightFallbacks += o.WeightFallbacks
}

type localBuilder func(poly []r3.Vec, p r3.Vec, w []float64, cfg Config) (utils.Matrix, int)

// AssembleStiffnessMatrix scatters the local stiffness matrices of all faces
// into the nV x nV global matrix and negates the result, so S is negative
// semi-definite with zero row sums.
func AssembleStiffnessMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints, cfg Config) (S utils.CSR, stats Stats) {
	S, stats = assembleLocal(mesh, vp, cfg, LocalStiffnessMatrix)
	S.Scale(-1)
	S.SetReadOnly("S")
	return
}

// AssembleMassMatrix scatters the local mass matrices. When lumped is set the
// result is replaced by the diagonal of its row sums.
func AssembleMassMatrix(mesh *polymesh.SurfaceMesh, vp VirtualPoints, cfg Config, lumped bool) (M utils.CSR, stats Stats) {
	M, stats = assembleLocal(mesh, vp, cfg, LocalMassMatrix)
	if lumped {
		M = LumpMatrix(M)
	}
	M.SetReadOnly("M")
	return
}

// SetupStiffnessMatrix computes the virtual points of mesh and assembles S.
func SetupStiffnessMatrix(mesh *polymesh.SurfaceMesh, cfg Config) (S utils.CSR, stats Stats) {
	vp := ComputeVirtualPoints(mesh, cfg)
	S, stats = AssembleStiffnessMatrix(mesh, vp, cfg)
	stats.WeightFallbacks = vp.Fallbacks()
	return
}

// SetupMassMatrix computes the virtual points of mesh and assembles M.
func SetupMassMatrix(mesh *polymesh.SurfaceMesh, cfg Config, lumped bool) (M utils.CSR, stats Stats) {
	vp := ComputeVirtualPoints(mesh, cfg)
	M, stats = AssembleMassMatrix(mesh, vp, cfg, lumped)
	stats.WeightFallbacks = vp.Fallbacks()
	return
}

// LumpMatrix returns the diagonal matrix of the row sums of D.
func LumpMatrix(D utils.CSR) utils.CSR {
	return utils.NewDiagonalCSR(D.RowSums())
}

func assembleLocal(mesh *polymesh.SurfaceMesh, vp VirtualPoints, cfg Config, build localBuilder) (R utils.CSR, stats Stats) {
	var (
		nv        = mesh.NumVertices()
		nGroups   = numFaceGroups(mesh.NumFaces(), cfg)
		buffers   = make([]utils.TripletList, nGroups)
		groupStat = make([]Stats, nGroups)
	)
	forEachFaceGroup(mesh.NumFaces(), cfg, func(group int, faces []int) {
		var (
			trips = utils.NewTripletList(16 * len(faces))
			st    Stats
		)
		for _, f := range faces {
			var (
				verts     = mesh.FaceVertices(f)
				fp        = vp[f]
				Li, ndegn = build(mesh.FacePositions(f), fp.Point, fp.Weights, cfg)
			)
			for j := range verts {
				for k := range verts {
					trips.Append(verts[k], verts[j], Li.At(k, j))
				}
			}
			st.Faces++
			st.Triangles += len(verts)
			st.DegenerateKites += ndegn
		}
		buffers[group] = trips
		groupStat[group] = st
	})
	for _, st := range groupStat {
		stats.add(st)
	}
	R = utils.NewCSRFromTriplets(nv, nv, utils.MergeTriplets(buffers...))
	return
}

func numFaceGroups(nf int, cfg Config) int {
	if len(cfg.FacePartition) == nf && nf > 0 {
		maxPart := 0
		for _, part := range cfg.FacePartition {
			if part > maxPart {
				maxPart = part
			}
		}
		return maxPart + 1
	}
	pd := cfg.ParallelDegree
	if pd < 1 {
		pd = 1
	}
	return pd
}

// forEachFaceGroup splits faces 0..nf-1 into groups and runs work on each group
// concurrently. Groups come from cfg.FacePartition when it covers every face,
// otherwise from contiguous ranges of a PartitionMap. Faces inside a group are
// visited in increasing order and every group index is below
// numFaceGroups(nf, cfg).
func forEachFaceGroup(nf int, cfg Config, work func(group int, faces []int)) {
	if len(cfg.FacePartition) == nf && nf > 0 {
		groups := make([][]int, numFaceGroups(nf, cfg))
		for f, part := range cfg.FacePartition {
			groups[part] = append(groups[part], f)
		}
		var wg sync.WaitGroup
		for g, faces := range groups {
			wg.Add(1)
			go func(g int, faces []int) {
				defer wg.Done()
				sort.Ints(faces)
				work(g, faces)
			}(g, faces)
		}
		wg.Wait()
		return
	}
	pm := utils.NewPartitionMap(numFaceGroups(nf, cfg), nf)
	pm.RunParallel(func(bn, kMin, kMax int) {
		faces := make([]int, 0, kMax-kMin)
		for f := kMin; f < kMax; f++ {
			faces = append(faces, f)
		}
		work(bn, faces)
	})
}
