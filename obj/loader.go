// Package obj reads Wavefront OBJ files into meshes. Only geometry is read: positions, normals and faces.
// Materials, texture coordinates and groups are skipped.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"renderbase/model"
	vm "renderbase/vector_math"
)

var (
	ErrTooLarge = errors.New("obj mesh exceeds the 16 bit index range")
	ErrNoFaces  = errors.New("obj file has no faces")
)

// ReadFile reads an OBJ file. The mesh is named after the file without extension.
func ReadFile(path string) (*model.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj file: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := Decode(name, f)
	if err != nil {
		return nil, fmt.Errorf("obj file %s: %w", path, err)
	}
	return m, nil
}

type corner struct {
	v, n int // n is -1 without normal
}

type decoder struct {
	line     int
	vertices []vm.Vec3
	normals  []vm.Vec3
	faces    [][]corner
	skipped  map[string]int
}

// Decode parses OBJ text. Polygons are split into triangle fans and every face corner gets its own vertex,
// coloured by its normal mapped into [0, 1], or white without one. Positions are scaled so the vertex farthest
// from the origin lies on the unit sphere.
func Decode(name string, r io.Reader) (*model.Mesh, error) {
	dec := &decoder{skipped: map[string]int{}}
	if err := dec.parse(r); err != nil {
		return nil, err
	}
	if len(dec.faces) == 0 {
		return nil, ErrNoFaces
	}
	for kw, n := range dec.skipped {
		log.Printf("obj '%s': skipped %d '%s' lines", name, n, kw)
	}
	m, err := dec.mesh(name)
	if err != nil {
		return nil, err
	}
	log.Printf("Read obj '%s', Vertices: %d, Faces: %d", name, len(m.Vertices), len(dec.faces))
	return m, nil
}

func (dec *decoder) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return fmt.Errorf("line %d: %w", dec.line, err)
		}
	}
	return sc.Err()
}

func (dec *decoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		dec.vertices = append(dec.vertices, v)
	case "vn":
		n, err := parseVec3(fields[1:])
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, n)
	case "f":
		return dec.parseFace(fields[1:])
	default:
		dec.skipped[fields[0]]++
	}
	return nil
}

func parseVec3(fields []string) (vm.Vec3, error) {
	if len(fields) < 3 {
		return vm.Vec3{}, fmt.Errorf("need 3 coordinates, got %d", len(fields))
	}
	var xyz [3]float32
	for i, f := range fields[:3] {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return vm.Vec3{}, err
		}
		xyz[i] = float32(val)
	}
	return vm.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseFace reads "v", "v/vt", "v//vn" and "v/vt/vn" corners. Indices are 1 based, negative ones count back
// from the last element read so far.
func (dec *decoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face with %d corners", len(fields))
	}
	face := make([]corner, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		v, err := resolveIndex(parts[0], len(dec.vertices))
		if err != nil {
			return fmt.Errorf("vertex index: %w", err)
		}
		face[i] = corner{v: v, n: -1}
		if len(parts) >= 3 && parts[2] != "" {
			n, err := resolveIndex(parts[2], len(dec.normals))
			if err != nil {
				return fmt.Errorf("normal index: %w", err)
			}
			face[i].n = n
		}
	}
	dec.faces = append(dec.faces, face)
	return nil
}

func resolveIndex(field string, count int) (int, error) {
	val, err := strconv.Atoi(field)
	if err != nil {
		return 0, err
	}
	idx := val - 1
	if val < 0 {
		idx = count + val
	}
	if val == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%d out of range [1, %d]", val, count)
	}
	return idx, nil
}

func (dec *decoder) mesh(name string) (*model.Mesh, error) {
	count := 0
	for _, f := range dec.faces {
		count += (len(f) - 2) * 3
	}
	if count > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: %d vertices", ErrTooLarge, count)
	}

	v := make([]model.Vertex, 0, count)
	id := make([]uint16, 0, count)
	var largest float32
	emit := func(c corner) {
		pos := dec.vertices[c.v]
		if l := pos.Len(); l > largest {
			largest = l
		}
		color := vm.Vec3{X: 1, Y: 1, Z: 1}
		if c.n >= 0 {
			color = dec.normals[c.n].Add(color).ScalarMul(0.5)
		}
		id = append(id, uint16(len(v)))
		v = append(v, model.Vertex{Pos: pos, Color: color})
	}
	for _, f := range dec.faces {
		for i := 1; i+1 < len(f); i++ {
			emit(f[0])
			emit(f[i])
			emit(f[i+1])
		}
	}

	if largest > 0 {
		for i := range v {
			v[i].Pos = v[i].Pos.ScalarMul(1 / largest)
		}
	}
	return model.NewMesh(name, v, id), nil
}
