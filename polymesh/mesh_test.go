package polymesh

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSurfaceMeshTraversal(t *testing.T) {
	m := NewQuadGrid(2, 1, 0.5)
	assert.Equal(t, 6, m.NumVertices())
	assert.Equal(t, 2, m.NumFaces())
	assert.Equal(t, 8, m.NumHalfedges())
	assert.Equal(t, 4, m.Valence(1))
	assert.Equal(t, []int{1, 2, 5, 4}, m.FaceVertices(1))
	assert.Equal(t, r3.Vec{X: 1, Y: 0.5}, m.Position(5))

	he := m.Halfedges(0)
	require.Len(t, he, 4)
	assert.Equal(t, Halfedge{From: 0, To: 1}, he[0])
	assert.Equal(t, Halfedge{From: 3, To: 0}, he[3])

	pts := m.FacePositions(0)
	assert.Equal(t, r3.Vec{X: 0.5}, pts[1])
}

func TestBuildConnectivity(t *testing.T) {
	// Two quads sharing edge {1,4}
	{
		m := NewQuadGrid(2, 1, 1)
		m.BuildConnectivity()
		assert.Equal(t, []int{-1, 1, -1, -1}, m.FToF[0])
		assert.Equal(t, []int{-1, -1, -1, 0}, m.FToF[1])
		assert.Equal(t, []int{0, 1}, m.EdgeMap[NewEdgeKey(4, 1)])
		boundary := m.BoundaryVertices()
		for v := range boundary {
			assert.True(t, boundary[v])
		}
	}
	// Closed cube has no boundary, each face has four neighbors
	{
		m := NewCube()
		m.BuildConnectivity()
		for f := range m.Faces {
			for _, nbr := range m.FToF[f] {
				assert.NotEqual(t, -1, nbr)
				assert.NotEqual(t, f, nbr)
			}
		}
		for _, b := range m.BoundaryVertices() {
			assert.False(t, b)
		}
		assert.Len(t, m.EdgeMap, 12)
	}
	// Interior vertex of a 2x2 grid
	{
		m := NewQuadGrid(2, 2, 1)
		boundary := m.BoundaryVertices()
		assert.False(t, boundary[4])
		assert.True(t, boundary[0])
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, NewHexagonPatch().Validate())
	bad := NewSurfaceMesh([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1}})
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidFace))
	bad = NewSurfaceMesh([]r3.Vec{{}, {X: 1}, {Y: 1}}, [][]int{{0, 1, 3}})
	assert.True(t, errors.Is(bad.Validate(), ErrInvalidFace))
}

func TestHexagonPatch(t *testing.T) {
	m := NewHexagonPatch()
	assert.Equal(t, 18, m.NumVertices())
	assert.Equal(t, 13, m.NumFaces())
	assert.Equal(t, 6+6*4+6*3, m.NumHalfedges())
	m.BuildConnectivity()
	// the hexagon is surrounded by quads
	for _, nbr := range m.FToF[0] {
		assert.Equal(t, 4, m.Valence(nbr))
	}
}

func TestReadWriteOFF(t *testing.T) {
	input := `OFF
# a unit square split into a triangle and a quad
5 2 0
0 0 0
1 0 0
1 1 0
0 1 0
0.5 1.5 0
4 0 1 2 3
3 3 2 4 255 0 0
`
	m, err := ReadOFF(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {3, 2, 4}}, m.Faces)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 1.5}, m.Vertices[4])

	var buf bytes.Buffer
	require.NoError(t, WriteOFF(&buf, m))
	m2, err := ReadOFF(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Faces, m2.Faces)
	assert.Equal(t, m.Vertices, m2.Vertices)

	_, err = ReadOFF(strings.NewReader("PLY\n"))
	assert.Error(t, err)
	_, err = ReadOFF(strings.NewReader("OFF\n3 1 0\n0 0 0\n1 0 0\n"))
	assert.Error(t, err)
}

func TestReadOBJ(t *testing.T) {
	input := `# pentagon and triangle
v 0 0 0
v 1 0 0
v 1.5 1 0
v 0.5 1.5 0
v -0.5 1 0
v 0.5 -1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1 5//1
f 2 1 -1
`
	m, err := ReadOBJ(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 6, m.NumVertices())
	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}, {1, 0, 5}}, m.Faces)

	_, err = ReadOBJ(strings.NewReader("v 0 0\n"))
	assert.Error(t, err)
	_, err = ReadOBJ(strings.NewReader("v 0 0 0\nf 1 2\n"))
	assert.Error(t, err)
}

func TestReadMeshFile(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "cube.off")
	require.NoError(t, WriteMeshFile(fileName, NewCube()))
	m, err := ReadMeshFile(fileName)
	require.NoError(t, err)
	assert.Equal(t, NewCube().Faces, m.Faces)

	bad := filepath.Join(dir, "cube.stl")
	require.NoError(t, os.WriteFile(bad, []byte("solid"), 0o644))
	_, err = ReadMeshFile(bad)
	assert.Error(t, err)
}
