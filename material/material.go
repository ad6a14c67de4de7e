// Package material reads the material library: named surface colours that objects in the world are made of.
package material

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	vm "renderbase/vector_math"
)

type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

func (c Color) Vec3() vm.Vec3 {
	return vm.Vec3{X: c.R, Y: c.G, Z: c.B}
}

type Material struct {
	Name  string `json:"Name"`
	Color Color  `json:"Color"`
}

func (m Material) String() string {
	return fmt.Sprintf("%s: %g, %g, %g", m.Name, m.Color.R, m.Color.G, m.Color.B)
}

var ErrUnnamed = errors.New("material without name")

// Library keeps materials in file order.
type Library struct {
	materials []Material
	byName    map[string]int
}

func NewLibrary(ms ...Material) (Library, error) {
	l := Library{byName: make(map[string]int, len(ms))}
	for _, m := range ms {
		if m.Name == "" {
			return Library{}, ErrUnnamed
		}
		if _, dup := l.byName[m.Name]; dup {
			return Library{}, fmt.Errorf("duplicate material %q", m.Name)
		}
		l.byName[m.Name] = len(l.materials)
		l.materials = append(l.materials, m)
	}
	return l, nil
}

func (l Library) Lookup(name string) (Material, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Material{}, false
	}
	return l.materials[i], true
}

func (l Library) Materials() []Material {
	return l.materials
}

func (l Library) Len() int {
	return len(l.materials)
}

// Load reads a JSON file that is either an object whose members are materials or an array of materials.
func Load(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, fmt.Errorf("read material library: %w", err)
	}
	lib, err := Parse(data)
	if err != nil {
		return Library{}, fmt.Errorf("material library %s: %w", path, err)
	}
	for _, m := range lib.materials {
		log.Printf("Loaded material %s", m)
	}
	return lib, nil
}

func Parse(data []byte) (Library, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Library{}, errors.New("empty document")
	}
	switch trimmed[0] {
	case '[':
		var ms []Material
		if err := json.Unmarshal(trimmed, &ms); err != nil {
			return Library{}, err
		}
		return NewLibrary(ms...)
	case '{':
		ms, err := parseMembers(trimmed)
		if err != nil {
			return Library{}, err
		}
		return NewLibrary(ms...)
	default:
		return Library{}, fmt.Errorf("expected object or array, got %q", trimmed[0])
	}
}

// parseMembers walks the top level object token by token, a map would lose the member order.
func parseMembers(data []byte) ([]Material, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var ms []Material
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var m Material
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("member %v: %w", key, err)
		}
		ms = append(ms, m)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return ms, nil
}
