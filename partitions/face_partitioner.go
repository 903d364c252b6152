// Package partitions assigns the faces of a polygon mesh to workers with METIS,
// so that per-face assembly can run on compact groups of neighboring faces.
package partitions

import (
	"fmt"
	"log"
	"math"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/polylaplace/polymesh"
)

// PartitionConfig holds configuration for face partitioning
type PartitionConfig struct {
	NumPartitions    int32
	ImbalanceFactor  float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights   bool
	UseVertexWeights bool
	Objective        string // "cut" or "vol"
	Verbose          bool
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:    nparts,
		ImbalanceFactor:  1.05,
		UseEdgeWeights:   true,
		UseVertexWeights: true,
		Objective:        "vol", // minimize communication volume
	}
}

// FacePartitioner partitions the face adjacency graph of a SurfaceMesh
type FacePartitioner struct {
	mesh   *polymesh.SurfaceMesh
	config *PartitionConfig

	// Cost models
	computeCostModel func(valence int) int32
	commCostModel    func(isBoundary bool) int32

	FToP []int // partition of each face, set by Partition
}

func NewFacePartitioner(mesh *polymesh.SurfaceMesh, config *PartitionConfig) *FacePartitioner {
	fp := &FacePartitioner{
		mesh:   mesh,
		config: config,
	}
	if mesh.FToF == nil {
		mesh.BuildConnectivity()
	}

	// Local operators are dense valence x valence matrices
	fp.computeCostModel = func(valence int) int32 {
		return int32(valence * valence)
	}

	// Assembly writes to both vertices of a shared edge
	fp.commCostModel = func(isBoundary bool) int32 {
		if isBoundary {
			return 0
		}
		return 2
	}

	return fp
}

// Partition runs METIS and returns the partition of each face. A single
// partition, or fewer faces than partitions, short-circuits METIS.
func (fp *FacePartitioner) Partition() (FToP []int, err error) {
	var (
		nf     = fp.mesh.NumFaces()
		nparts = fp.config.NumPartitions
	)
	if nparts < 1 {
		return nil, fmt.Errorf("number of partitions must be positive, got %d", nparts)
	}
	fp.FToP = make([]int, nf)
	if nparts == 1 || nf <= int(nparts) {
		for f := range fp.FToP {
			fp.FToP[f] = f % int(nparts)
		}
		return fp.FToP, nil
	}
	if fp.config.Verbose {
		log.Printf("Partitioning mesh with %d faces into %d parts", nf, nparts)
	}

	// Build METIS graph
	xadj, adjncy, vwgt, adjwgt := fp.buildMetisGraph()

	// Set METIS options
	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}

	// Set objective function
	if fp.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}

	ubvec := []float32{fp.config.ImbalanceFactor}

	var vwgtPtr, adjwgtPtr []int32
	if fp.config.UseVertexWeights {
		vwgtPtr = vwgt
	}
	if fp.config.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgtPtr, adjwgtPtr,
		nparts, nil, ubvec, opts,
	)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}

	for f := 0; f < nf; f++ {
		fp.FToP[f] = int(part[f])
	}

	if fp.config.Verbose {
		fp.analyzePartition(objval)
	}
	return fp.FToP, nil
}

// buildMetisGraph converts face connectivity to METIS format
func (fp *FacePartitioner) buildMetisGraph() (xadj, adjncy, vwgt, adjwgt []int32) {
	nf := fp.mesh.NumFaces()

	if fp.config.UseVertexWeights {
		vwgt = make([]int32, nf)
		for f := 0; f < nf; f++ {
			vwgt[f] = fp.computeCostModel(fp.mesh.Valence(f))
		}
	}

	xadj = make([]int32, nf+1)
	adjncy = []int32{}
	adjwgt = []int32{}

	for f := 0; f < nf; f++ {
		for _, nbr := range fp.mesh.FToF[f] {
			if nbr >= 0 && nbr != f {
				adjncy = append(adjncy, int32(nbr))
				if fp.config.UseEdgeWeights {
					adjwgt = append(adjwgt, fp.commCostModel(false))
				}
			}
		}
		xadj[f+1] = int32(len(adjncy))
	}

	return xadj, adjncy, vwgt, adjwgt
}

// PartitionStats holds statistics for a single partition
type PartitionStats struct {
	ID           int
	NumFaces     int
	ComputeLoad  int64
	Valences     map[int]int
	NumNeighbors map[int]int // neighbor partition -> shared edges
}

// analyzePartition computes and reports partition quality metrics
func (fp *FacePartitioner) analyzePartition(objval int32) {
	var (
		nparts     = int(fp.config.NumPartitions)
		partStats  = fp.Statistics()
		cutEdges   int
		commVolume int64
	)
	for f := 0; f < fp.mesh.NumFaces(); f++ {
		for _, nbr := range fp.mesh.FToF[f] {
			if nbr > f && fp.FToP[nbr] != fp.FToP[f] {
				cutEdges++
				commVolume += int64(fp.commCostModel(false))
			}
		}
	}

	avgLoad := float64(0)
	maxLoad := int64(0)
	minLoad := int64(math.MaxInt64)
	for _, stats := range partStats {
		avgLoad += float64(stats.ComputeLoad)
		if stats.ComputeLoad > maxLoad {
			maxLoad = stats.ComputeLoad
		}
		if stats.ComputeLoad < minLoad {
			minLoad = stats.ComputeLoad
		}
	}
	avgLoad /= float64(nparts)
	imbalance := float64(maxLoad)/avgLoad - 1.0

	log.Printf("Partition Analysis:")
	log.Printf("  Objective value: %d", objval)
	log.Printf("  Cut edges: %d", cutEdges)
	log.Printf("  Communication volume: %d", commVolume)
	log.Printf("  Load imbalance: %.2f%%", imbalance*100)
	log.Printf("  Load range: [%d, %d], avg: %.1f", minLoad, maxLoad, avgLoad)

	log.Printf("\nPer-partition statistics:")
	for _, stats := range partStats {
		log.Printf("  Partition %d:", stats.ID)
		log.Printf("    Faces: %d", stats.NumFaces)
		log.Printf("    Compute load: %d", stats.ComputeLoad)
		log.Printf("    Valences: %v", stats.Valences)
		log.Printf("    Neighbors: %d", len(stats.NumNeighbors))
	}
}

// Statistics gathers per-partition face counts, loads and neighbor counts
// from the current assignment.
func (fp *FacePartitioner) Statistics() (partStats []PartitionStats) {
	partStats = make([]PartitionStats, fp.config.NumPartitions)
	for i := range partStats {
		partStats[i].ID = i
		partStats[i].Valences = make(map[int]int)
		partStats[i].NumNeighbors = make(map[int]int)
	}
	for f, part := range fp.FToP {
		var (
			stats   = &partStats[part]
			valence = fp.mesh.Valence(f)
		)
		stats.NumFaces++
		stats.Valences[valence]++
		stats.ComputeLoad += int64(fp.computeCostModel(valence))
		for _, nbr := range fp.mesh.FToF[f] {
			if nbr >= 0 && fp.FToP[nbr] != part {
				stats.NumNeighbors[fp.FToP[nbr]]++
			}
		}
	}
	return
}

// GetPartitionFaces returns all faces in a given partition
func (fp *FacePartitioner) GetPartitionFaces(partID int) []int {
	faces := []int{}
	for f, part := range fp.FToP {
		if part == partID {
			faces = append(faces, f)
		}
	}
	return faces
}
