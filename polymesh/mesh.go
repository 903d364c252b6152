package polymesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidFace = errors.New("invalid face")

// Halfedge is a directed boundary edge of a face.
type Halfedge struct {
	From, To int
}

// EdgeKey identifies an undirected edge by its sorted vertex pair
type EdgeKey [2]int

func NewEdgeKey(v0, v1 int) EdgeKey {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return EdgeKey{v0, v1}
}

// SurfaceMesh is a polygon mesh. Faces are cyclic vertex lists of any valence
// >= 3 and are treated as read-only by the operator builders.
type SurfaceMesh struct {
	// Geometry
	Vertices []r3.Vec

	// Face to vertex connectivity, in traversal order
	Faces [][]int

	// Connectivity (built by BuildConnectivity)
	FToF    [][]int           // Face to face across each halfedge, -1 on the boundary
	EdgeMap map[EdgeKey][]int // Undirected edge to the faces that contain it
}

func NewSurfaceMesh(vertices []r3.Vec, faces [][]int) *SurfaceMesh {
	return &SurfaceMesh{
		Vertices: vertices,
		Faces:    faces,
	}
}

func (m *SurfaceMesh) NumVertices() int { return len(m.Vertices) }
func (m *SurfaceMesh) NumFaces() int    { return len(m.Faces) }
func (m *SurfaceMesh) Valence(f int) int {
	return len(m.Faces[f])
}
func (m *SurfaceMesh) Position(v int) r3.Vec { return m.Vertices[v] }
func (m *SurfaceMesh) FaceVertices(f int) []int {
	return m.Faces[f]
}

func (m *SurfaceMesh) FacePositions(f int) (pts []r3.Vec) {
	pts = make([]r3.Vec, len(m.Faces[f]))
	for i, v := range m.Faces[f] {
		pts[i] = m.Vertices[v]
	}
	return
}

// Halfedges returns the boundary of face f; halfedge i runs from local vertex
// i to local vertex i+1.
func (m *SurfaceMesh) Halfedges(f int) (he []Halfedge) {
	var (
		verts = m.Faces[f]
		n     = len(verts)
	)
	he = make([]Halfedge, n)
	for i := range verts {
		he[i] = Halfedge{From: verts[i], To: verts[(i+1)%n]}
	}
	return
}

// NumHalfedges is the sum of face valences.
func (m *SurfaceMesh) NumHalfedges() (nh int) {
	for _, face := range m.Faces {
		nh += len(face)
	}
	return
}

// Validate checks valence and vertex indices. Operator builders assume a
// mesh that passes Validate.
func (m *SurfaceMesh) Validate() error {
	for f, face := range m.Faces {
		if len(face) < 3 {
			return fmt.Errorf("%w: face %d has valence %d", ErrInvalidFace, f, len(face))
		}
		for _, v := range face {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d, mesh has %d vertices",
					ErrInvalidFace, f, v, len(m.Vertices))
			}
		}
	}
	return nil
}

// BuildConnectivity builds face to face connectivity across shared edges
func (m *SurfaceMesh) BuildConnectivity() {
	m.EdgeMap = make(map[EdgeKey][]int)
	m.FToF = make([][]int, m.NumFaces())
	for f := range m.Faces {
		for _, h := range m.Halfedges(f) {
			key := NewEdgeKey(h.From, h.To)
			m.EdgeMap[key] = append(m.EdgeMap[key], f)
		}
	}
	for f := range m.Faces {
		m.FToF[f] = make([]int, m.Valence(f))
		for i, h := range m.Halfedges(f) {
			m.FToF[f][i] = -1
			for _, nbr := range m.EdgeMap[NewEdgeKey(h.From, h.To)] {
				if nbr != f {
					m.FToF[f][i] = nbr
					break
				}
			}
		}
	}
}

// BoundaryVertices flags vertices that touch an edge with a single face.
func (m *SurfaceMesh) BoundaryVertices() (isBoundary []bool) {
	if m.EdgeMap == nil {
		m.BuildConnectivity()
	}
	isBoundary = make([]bool, m.NumVertices())
	for key, faces := range m.EdgeMap {
		if len(faces) == 1 {
			isBoundary[key[0]] = true
			isBoundary[key[1]] = true
		}
	}
	return
}

// Copy returns a mesh with its own vertex storage; faces are shared.
func (m *SurfaceMesh) Copy() *SurfaceMesh {
	verts := make([]r3.Vec, len(m.Vertices))
	copy(verts, m.Vertices)
	return NewSurfaceMesh(verts, m.Faces)
}

// PrintStatistics prints mesh statistics
func (m *SurfaceMesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Vertices: %d\n", m.NumVertices())
	fmt.Printf("  Faces: %d\n", m.NumFaces())
	fmt.Printf("  Halfedges: %d\n", m.NumHalfedges())

	valenceCounts := make(map[int]int)
	for f := range m.Faces {
		valenceCounts[m.Valence(f)]++
	}
	fmt.Printf("  Face valences:\n")
	for val := 0; len(valenceCounts) > 0; val++ {
		if count, ok := valenceCounts[val]; ok {
			fmt.Printf("    %d: %d\n", val, count)
			delete(valenceCounts, val)
		}
	}
}
