package polymesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	ELType_LINE          SU2ElementType = 3
	ELType_Triangle      SU2ElementType = 5
	ELType_Quadrilateral SU2ElementType = 9
)

// Markers maps each SU2 marker tag to its boundary edges
type Markers map[string][]EdgeKey

// ReadSU2 reads a native SU2 mesh of triangles and quadrilaterals. Two
// dimensional meshes are placed in z=0; three dimensional files must contain
// surface elements only. Volume element types are rejected.
func ReadSU2(r io.Reader) (m *SurfaceMesh, markers Markers, err error) {
	var (
		reader = &su2Reader{bufio.NewReader(r)}
		dim    int
		faces  [][]int
		verts  []r3.Vec
	)
	if dim, err = reader.readNumber("NDIME"); err != nil {
		return
	}
	if dim != 2 && dim != 3 {
		err = fmt.Errorf("SU2: unsupported dimension %d", dim)
		return
	}
	if faces, err = reader.readElements(); err != nil {
		return
	}
	if verts, err = reader.readVertices(dim); err != nil {
		return
	}
	if markers, err = reader.readMarkers(); err != nil {
		return
	}
	m = NewSurfaceMesh(verts, faces)
	err = m.Validate()
	return
}

type su2Reader struct {
	*bufio.Reader
}

func (sr *su2Reader) getLine() (line string, err error) {
	for {
		if line, err = sr.ReadString('\n'); err != nil && (err != io.EOF || len(line) == 0) {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return
		}
		err = nil
		line = strings.TrimSpace(line)
		if len(line) != 0 && !strings.HasPrefix(line, "%") {
			return
		}
	}
}

// getToken returns the value of a "KEY= value" line and checks the key.
func (sr *su2Reader) getToken(key string) (token string, err error) {
	var line string
	if line, err = sr.getLine(); err != nil {
		return
	}
	ind := strings.Index(line, "=")
	if ind < 0 {
		err = fmt.Errorf("badly formed input line [%s], should have an =", line)
		return
	}
	if got := strings.TrimSpace(line[:ind]); got != key {
		err = fmt.Errorf("expected %s, found [%s]", key, got)
		return
	}
	token = strings.TrimSpace(line[ind+1:])
	return
}

func (sr *su2Reader) readNumber(key string) (num int, err error) {
	var token string
	if token, err = sr.getToken(key); err != nil {
		return
	}
	if num, err = strconv.Atoi(token); err != nil {
		err = fmt.Errorf("unable to read number from token: [%s]", token)
	}
	return
}

func (sr *su2Reader) ints(line string) (vals []int, err error) {
	fields := strings.Fields(line)
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			return
		}
	}
	return
}

func (sr *su2Reader) readElements() (faces [][]int, err error) {
	var (
		K    int
		line string
		vals []int
	)
	if K, err = sr.readNumber("NELEM"); err != nil {
		return
	}
	faces = make([][]int, K)
	for k := 0; k < K; k++ {
		if line, err = sr.getLine(); err != nil {
			return
		}
		if vals, err = sr.ints(line); err != nil || len(vals) == 0 {
			err = fmt.Errorf("unable to read element %d: [%s]", k, line)
			return
		}
		var nv int
		switch SU2ElementType(vals[0]) {
		case ELType_Triangle:
			nv = 3
		case ELType_Quadrilateral:
			nv = 4
		default:
			err = fmt.Errorf("element %d: unable to deal with element type %d", k, vals[0])
			return
		}
		if len(vals) < nv+1 {
			err = fmt.Errorf("element %d: expected %d vertices, got [%s]", k, nv, line)
			return
		}
		faces[k] = append([]int(nil), vals[1:nv+1]...)
	}
	return
}

func (sr *su2Reader) readVertices(dim int) (verts []r3.Vec, err error) {
	var (
		Nv   int
		line string
	)
	if Nv, err = sr.readNumber("NPOIN"); err != nil {
		return
	}
	verts = make([]r3.Vec, Nv)
	for i := 0; i < Nv; i++ {
		if line, err = sr.getLine(); err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) < dim {
			err = fmt.Errorf("unable to read coordinates of point %d: [%s]", i, line)
			return
		}
		var x [3]float64
		for d := 0; d < dim; d++ {
			if x[d], err = strconv.ParseFloat(fields[d], 64); err != nil {
				return
			}
		}
		verts[i] = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	}
	return
}

// readMarkers reads the optional NMARK section. Markers sharing a tag are
// appended to one list.
func (sr *su2Reader) readMarkers() (markers Markers, err error) {
	var (
		NBCs int
		tag  string
		line string
		vals []int
	)
	markers = make(Markers)
	if NBCs, err = sr.readNumber("NMARK"); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = nil
		}
		return
	}
	for n := 0; n < NBCs; n++ {
		if tag, err = sr.getToken("MARKER_TAG"); err != nil {
			return
		}
		var nEdges int
		if nEdges, err = sr.readNumber("MARKER_ELEMS"); err != nil {
			return
		}
		for i := 0; i < nEdges; i++ {
			if line, err = sr.getLine(); err != nil {
				return
			}
			if vals, err = sr.ints(line); err != nil || len(vals) < 3 {
				err = fmt.Errorf("marker %s: unable to read edge [%s]", tag, line)
				return
			}
			if SU2ElementType(vals[0]) != ELType_LINE {
				err = fmt.Errorf("marker %s: boundaries should only contain line elements", tag)
				return
			}
			markers[tag] = append(markers[tag], NewEdgeKey(vals[1], vals[2]))
		}
	}
	return
}
