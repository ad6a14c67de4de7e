// Package ecs is a small positional component store. Every registered component type owns one
// slice, all slices have the same length and an Entity is an index into each of them.
package ecs

import (
	"errors"
	"fmt"
	"reflect"
)

type Entity int

var ErrNotRegistered = errors.New("component type not registered")

type IndexOutOfRangeError struct {
	Type  string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("entity %d out of range for %s (len %d)", e.Index, e.Type, e.Len)
}

type column interface {
	grow()
}

type typedColumn[T any] struct {
	data []T
}

func (c *typedColumn[T]) grow() {
	var zero T
	c.data = append(c.data, zero)
}

type Store struct {
	columns map[reflect.Type]column
	count   int
}

func NewStore() *Store {
	return &Store{columns: make(map[reflect.Type]column)}
}

// Len is the number of entities created so far.
func (s *Store) Len() int {
	return s.count
}

// CreateEntity appends a zero value to every registered component slice.
func (s *Store) CreateEntity() Entity {
	for _, c := range s.columns {
		c.grow()
	}
	s.count++
	return Entity(s.count - 1)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register adds a component type. Registering a type twice is a no-op. Registering after entities
// were created fills the new slice with zero values so indices stay aligned.
func Register[T any](s *Store) {
	t := typeOf[T]()
	if _, ok := s.columns[t]; ok {
		return
	}
	s.columns[t] = &typedColumn[T]{data: make([]T, s.count)}
}

func lookup[T any](s *Store) (*typedColumn[T], error) {
	t := typeOf[T]()
	c, ok := s.columns[t]
	if !ok {
		return nil, fmt.Errorf("%s: %w", t, ErrNotRegistered)
	}
	return c.(*typedColumn[T]), nil
}

func checkIndex[T any](c *typedColumn[T], e Entity) error {
	if e < 0 || int(e) >= len(c.data) {
		return &IndexOutOfRangeError{Type: typeOf[T]().String(), Index: int(e), Len: len(c.data)}
	}
	return nil
}

func Get[T any](s *Store, e Entity) (T, error) {
	var zero T
	c, err := lookup[T](s)
	if err != nil {
		return zero, err
	}
	if err := checkIndex(c, e); err != nil {
		return zero, err
	}
	return c.data[e], nil
}

func Replace[T any](s *Store, e Entity, v T) error {
	c, err := lookup[T](s)
	if err != nil {
		return err
	}
	if err := checkIndex(c, e); err != nil {
		return err
	}
	c.data[e] = v
	return nil
}

// ArrayOf returns the backing slice of a component type, indexed by Entity. Writes through the
// returned slice are visible to the store until the next CreateEntity. Unregistered types yield nil.
func ArrayOf[T any](s *Store) []T {
	c, err := lookup[T](s)
	if err != nil {
		return nil
	}
	return c.data
}
