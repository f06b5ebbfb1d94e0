// Package formats provides parsers for mesh file formats.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OFF format errors.
var (
	ErrInvalidOFFHeader = errors.New("invalid OFF header: expected 'OFF' or 'COFF' magic")
	ErrMalformedOFF     = errors.New("malformed OFF data")
	ErrTruncatedOFF     = errors.New("truncated OFF data")
)

// Scanner line buffer cap. Face lines of large n-gons can get long, vertex
// lines never do.
const maxLineBytes = 1 << 20

// Progress updates are flushed to the shared counter every progressStride
// lines so the atomic write does not dominate parse time on large meshes.
const progressStride = 4096

// Mesh holds parsed geometry as flat arrays ready for GPU upload.
// Colors are normalized to 0..1 regardless of the source encoding.
type Mesh struct {
	Positions []float32 // x, y, z per vertex
	Colors    []float32 // r, g, b per vertex
	Indices   []uint32  // three vertex indices per triangle

	// DroppedFaces counts face lines rejected because they referenced a
	// vertex index outside the declared range. Rejected faces never reach
	// the index array.
	DroppedFaces int
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// ParseOFF parses an OFF/COFF mesh from r, streaming line by line.
//
// The header declares vertex count V and face count F; output arrays are
// preallocated from those counts. Faces with more than three vertices are fan
// triangulated, so Indices only ever describes triangles. Vertex colors may
// be 0-255 integers or 0-1 floats; the encoding is detected once for the
// whole file. When vertex lines carry no color, trailing color fields on
// face lines (the triangle-splatting COFF variant) are used instead.
//
// progress may be nil. It is safe to poll from another goroutine while the
// parse runs and reports 1.0 exactly when ParseOFF returns.
//
// A file that ends early returns the vertices and triangles parsed so far
// together with ErrTruncatedOFF; the caller decides whether the partial mesh
// is usable. Header and numeric-field errors are fatal and return no mesh.
func ParseOFF(r io.Reader, progress *Progress) (*Mesh, error) {
	if progress == nil {
		progress = NewProgress()
	}
	defer progress.finish()

	p := &offParser{
		scanner:  bufio.NewScanner(r),
		progress: progress,
	}
	p.scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	return p.parse()
}

// ParseOFFFile parses an OFF mesh from disk.
func ParseOFFFile(path string, progress *Progress) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OFF file: %w", err)
	}
	defer f.Close()
	return ParseOFF(f, progress)
}

type offParser struct {
	scanner  *bufio.Scanner
	progress *Progress

	lineNo  int
	pending int64 // lines consumed since the last progress flush

	// Color handling. colorMax tracks the largest color component seen so
	// the 0-255 vs 0-1 encoding can be decided once, after all color
	// fields are read.
	hasVertexColors bool
	colorMax        float32
}

func (p *offParser) parse() (*Mesh, error) {
	// Header: magic token, then V F [E] counts.
	magic, ok := p.nextLine()
	if !ok {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidOFFHeader)
	}
	if magic != "OFF" && magic != "COFF" {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidOFFHeader, magic)
	}

	counts, ok := p.nextLine()
	if !ok {
		return nil, fmt.Errorf("%w: missing count line", ErrInvalidOFFHeader)
	}
	fields := strings.Fields(counts)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: count line %q", ErrInvalidOFFHeader, counts)
	}
	numVertices, err := strconv.Atoi(fields[0])
	if err != nil || numVertices < 0 {
		return nil, fmt.Errorf("%w: vertex count %q", ErrInvalidOFFHeader, fields[0])
	}
	numFaces, err := strconv.Atoi(fields[1])
	if err != nil || numFaces < 0 {
		return nil, fmt.Errorf("%w: face count %q", ErrInvalidOFFHeader, fields[1])
	}
	// Edge count, if present, is ignored.

	p.progress.setTotal(int64(2 + numVertices + numFaces))
	p.flushProgress()

	// Preallocate exactly from the declared counts; large meshes must not
	// pay for incremental growth.
	mesh := &Mesh{
		Positions: make([]float32, 0, numVertices*3),
		Colors:    make([]float32, 0, numVertices*3),
		Indices:   make([]uint32, 0, numFaces*3),
	}

	if err := p.parseVertices(mesh, numVertices); err != nil {
		if errors.Is(err, ErrTruncatedOFF) {
			p.normalizeColors(mesh)
			return mesh, err
		}
		return nil, err
	}

	if err := p.parseFaces(mesh, numVertices, numFaces); err != nil {
		if errors.Is(err, ErrTruncatedOFF) {
			p.normalizeColors(mesh)
			return mesh, err
		}
		return nil, err
	}

	p.normalizeColors(mesh)
	return mesh, nil
}

func (p *offParser) parseVertices(mesh *Mesh, numVertices int) error {
	for i := 0; i < numVertices; i++ {
		line, ok := p.nextLine()
		if !ok {
			return fmt.Errorf("%w: %d of %d vertices", ErrTruncatedOFF, i, numVertices)
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrMalformedOFF, p.lineNo)
		}

		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 32)
			if err != nil {
				return fmt.Errorf("%w: line %d: coordinate %q", ErrMalformedOFF, p.lineNo, fields[j])
			}
			mesh.Positions = append(mesh.Positions, float32(v))
		}

		// The first vertex line fixes whether this file carries vertex
		// colors; every following line must match.
		if i == 0 {
			p.hasVertexColors = len(fields) >= 6
		}
		if p.hasVertexColors {
			if len(fields) < 6 {
				return fmt.Errorf("%w: line %d: missing vertex color", ErrMalformedOFF, p.lineNo)
			}
			for j := 3; j < 6; j++ {
				c, err := strconv.ParseFloat(fields[j], 32)
				if err != nil {
					return fmt.Errorf("%w: line %d: color %q", ErrMalformedOFF, p.lineNo, fields[j])
				}
				if float32(c) > p.colorMax {
					p.colorMax = float32(c)
				}
				mesh.Colors = append(mesh.Colors, float32(c))
			}
		} else {
			mesh.Colors = append(mesh.Colors, 1, 1, 1)
		}
	}
	return nil
}

func (p *offParser) parseFaces(mesh *Mesh, numVertices, numFaces int) error {
	for i := 0; i < numFaces; i++ {
		line, ok := p.nextLine()
		if !ok {
			return fmt.Errorf("%w: %d of %d faces", ErrTruncatedOFF, i, numFaces)
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			return fmt.Errorf("%w: line %d: empty face", ErrMalformedOFF, p.lineNo)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 3 {
			return fmt.Errorf("%w: line %d: face vertex count %q", ErrMalformedOFF, p.lineNo, fields[0])
		}
		if len(fields) < 1+n {
			return fmt.Errorf("%w: line %d: face declares %d indices, has %d", ErrMalformedOFF, p.lineNo, n, len(fields)-1)
		}

		indices := make([]uint32, n)
		inRange := true
		for j := 0; j < n; j++ {
			idx, err := strconv.Atoi(fields[1+j])
			if err != nil {
				return fmt.Errorf("%w: line %d: face index %q", ErrMalformedOFF, p.lineNo, fields[1+j])
			}
			if idx < 0 || idx >= numVertices {
				inRange = false
				break
			}
			indices[j] = uint32(idx)
		}

		// Skip-and-warn: a face referencing a vertex outside the declared
		// range is dropped rather than corrupting the index buffer.
		if !inRange {
			mesh.DroppedFaces++
			continue
		}

		// Triangle-splatting COFF variant: color rides on the face line
		// after the indices. Only used when vertices carry no color.
		if !p.hasVertexColors && len(fields) >= 1+n+3 {
			if err := p.applyFaceColor(mesh, fields[1+n:1+n+3], indices); err != nil {
				return err
			}
		}

		// Fan triangulation for n > 3.
		for j := 1; j+1 < n; j++ {
			mesh.Indices = append(mesh.Indices, indices[0], indices[j], indices[j+1])
		}
	}
	return nil
}

// applyFaceColor assigns a flat face color to the face's corner vertices.
func (p *offParser) applyFaceColor(mesh *Mesh, fields []string, indices []uint32) error {
	var rgb [3]float32
	for j, f := range fields {
		c, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("%w: line %d: face color %q", ErrMalformedOFF, p.lineNo, f)
		}
		if float32(c) > p.colorMax {
			p.colorMax = float32(c)
		}
		rgb[j] = float32(c)
	}
	for _, idx := range indices {
		mesh.Colors[idx*3+0] = rgb[0]
		mesh.Colors[idx*3+1] = rgb[1]
		mesh.Colors[idx*3+2] = rgb[2]
	}
	return nil
}

// normalizeColors applies the color encoding decided for the whole file:
// any component above 1.0 means 0-255 byte colors.
func (p *offParser) normalizeColors(mesh *Mesh) {
	if p.colorMax <= 1.0 {
		return
	}
	for i, c := range mesh.Colors {
		mesh.Colors[i] = c / 255.0
	}
}

// nextLine returns the next non-blank, non-comment line, trimmed.
func (p *offParser) nextLine() (string, bool) {
	for p.scanner.Scan() {
		p.lineNo++
		p.pending++
		if p.pending >= progressStride {
			p.flushProgress()
		}

		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *offParser) flushProgress() {
	if p.pending > 0 {
		p.progress.advance(p.pending)
		p.pending = 0
	}
}
