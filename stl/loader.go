// Package stl reads binary STL files into meshes.
package stl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"renderbase/model"
	vm "renderbase/vector_math"
)

const (
	headerSize   = 80
	countSize    = 4
	triangleSize = 50
)

var (
	ErrTruncated = errors.New("stl payload is truncated")
	ErrTooLarge  = errors.New("stl mesh exceeds the 16 bit index range")
)

// ReadFile reads a binary STL file. The mesh is named after the file without extension.
func ReadFile(path string) (*model.Mesh, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stl file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, err := Decode(name, b)
	if err != nil {
		return nil, fmt.Errorf("stl file %s: %w", path, err)
	}
	return m, nil
}

// Decode parses binary STL. Every triangle gets its own three vertices, coloured by the facet normal.
func Decode(name string, b []byte) (*model.Mesh, error) {
	if len(b) < headerSize+countSize {
		return nil, ErrTruncated
	}
	header := strings.TrimRight(string(b[:headerSize]), "\x00 ")
	tCnt := binary.LittleEndian.Uint32(b[headerSize : headerSize+countSize])
	payload := b[headerSize+countSize:]
	if uint64(len(payload)) < uint64(tCnt)*triangleSize {
		return nil, fmt.Errorf("%w: %d triangles need %d Byte, got %d", ErrTruncated, tCnt, uint64(tCnt)*triangleSize, len(payload))
	}
	if uint64(tCnt)*3 > math.MaxUint16+1 {
		return nil, fmt.Errorf("%w: %d triangles", ErrTooLarge, tCnt)
	}
	log.Printf("Read stl '%s', Header: '%s', Triangle Count: %d", name, header, tCnt)
	return toMesh(name, payload, tCnt), nil
}

func toMesh(name string, bytes []byte, triangleCnt uint32) *model.Mesh {
	v := make([]model.Vertex, 0, triangleCnt*3)
	id := make([]uint16, 0, triangleCnt*3)

	for t := uint32(0); t < triangleCnt; t++ {
		tri := bytes[t*triangleSize : (t+1)*triangleSize]
		normal := toVec3(tri[0:12])
		for c := 0; c < 3; c++ {
			off := 12 + c*12
			id = append(id, uint16(len(v)))
			v = append(v, model.Vertex{
				Pos:   toVec3(tri[off : off+12]),
				Color: normal,
			})
		}
		// tri[48:50] is the attribute byte count, unused
	}
	return model.NewMesh(name, v, id)
}

func toVec3(bytes []byte) vm.Vec3 {
	return vm.Vec3{
		X: toFloat32(bytes[:4]),
		Y: toFloat32(bytes[4:8]),
		Z: toFloat32(bytes[8:12]),
	}
}

func toFloat32(bytes []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(bytes))
}
