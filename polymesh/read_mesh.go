package polymesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*SurfaceMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".off":
		return ReadOFF(file)
	case ".obj":
		return ReadOBJ(file)
	case ".su2":
		m, _, err := ReadSU2(file)
		return m, err
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// WriteMeshFile writes the mesh in OFF format
func WriteMeshFile(filename string, m *SurfaceMesh) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	if err = WriteOFF(file, m); err != nil {
		file.Close()
		return
	}
	return file.Close()
}

// ReadOFF reads an ASCII Object File Format polygon mesh
func ReadOFF(r io.Reader) (*SurfaceMesh, error) {
	var (
		tokens = newTokenReader(r)
		header string
		err    error
	)
	if header, err = tokens.next(); err != nil {
		return nil, fmt.Errorf("reading OFF header: %w", err)
	}
	if header != "OFF" {
		return nil, fmt.Errorf("unsupported OFF header %q", header)
	}
	var counts [3]int
	for i := range counts {
		if counts[i], err = tokens.nextInt(); err != nil {
			return nil, fmt.Errorf("reading OFF counts: %w", err)
		}
	}
	nv, nf := counts[0], counts[1]

	vertices := make([]r3.Vec, nv)
	for i := 0; i < nv; i++ {
		var coords [3]float64
		for j := range coords {
			if coords[j], err = tokens.nextFloat(); err != nil {
				return nil, fmt.Errorf("reading vertex %d: %w", i, err)
			}
		}
		vertices[i] = r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]}
	}

	faces := make([][]int, nf)
	for f := 0; f < nf; f++ {
		var valence int
		if valence, err = tokens.nextInt(); err != nil {
			return nil, fmt.Errorf("reading face %d: %w", f, err)
		}
		faces[f] = make([]int, valence)
		for i := range faces[f] {
			if faces[f][i], err = tokens.nextInt(); err != nil {
				return nil, fmt.Errorf("reading face %d: %w", f, err)
			}
		}
		// Optional per-face color components trail the indices on the same line
		tokens.skipLine()
	}

	mesh := NewSurfaceMesh(vertices, faces)
	if err = mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// ReadOBJ reads the vertex and face records of a Wavefront OBJ file. Face
// entries may carry texture/normal references ("v/vt/vn"), which are ignored.
func ReadOBJ(r io.Reader) (*SurfaceMesh, error) {
	var (
		vertices []r3.Vec
		faces    [][]int
		scanner  = bufio.NewScanner(r)
		lineNum  int
	)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNum)
			}
			var coords [3]float64
			for j := range coords {
				val, err := strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				coords[j] = val
			}
			vertices = append(vertices, r3.Vec{X: coords[0], Y: coords[1], Z: coords[2]})
		case "f":
			face := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				ref := strings.SplitN(field, "/", 2)[0]
				idx, err := strconv.Atoi(ref)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				// OBJ is 1-based, negative indices count back from the last vertex
				if idx < 0 {
					idx = len(vertices) + idx
				} else {
					idx--
				}
				face = append(face, idx)
			}
			faces = append(faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	mesh := NewSurfaceMesh(vertices, faces)
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// WriteOFF writes the mesh as ASCII OFF
func WriteOFF(w io.Writer, m *SurfaceMesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OFF\n%d %d 0\n", m.NumVertices(), m.NumFaces())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "%.17g %.17g %.17g\n", v.X, v.Y, v.Z)
	}
	for _, face := range m.Faces {
		fmt.Fprintf(bw, "%d", len(face))
		for _, v := range face {
			fmt.Fprintf(bw, " %d", v)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// tokenReader splits OFF input into whitespace separated tokens, dropping
// '#' comments.
type tokenReader struct {
	scanner *bufio.Scanner
	fields  []string
}

func newTokenReader(r io.Reader) *tokenReader {
	return &tokenReader{scanner: bufio.NewScanner(r)}
}

func (tr *tokenReader) next() (string, error) {
	for len(tr.fields) == 0 {
		if !tr.scanner.Scan() {
			if err := tr.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		line := tr.scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		tr.fields = strings.Fields(line)
	}
	tok := tr.fields[0]
	tr.fields = tr.fields[1:]
	return tok, nil
}

func (tr *tokenReader) skipLine() { tr.fields = nil }

func (tr *tokenReader) nextInt() (int, error) {
	tok, err := tr.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(tok)
}

func (tr *tokenReader) nextFloat() (float64, error) {
	tok, err := tr.next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok, 64)
}
