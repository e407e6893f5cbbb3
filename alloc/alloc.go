// Package alloc provides a fixed-capacity slot table with generational
// identifiers.
package alloc

import "fmt"

// ID identifies a value stored in a Table. The generation guards against
// stale ids aliasing a reused slot.
type ID struct {
	Index      int
	Generation uint32
}

// Nil is an id that never refers to a live slot.
var Nil = ID{Index: -1}

// IsNil reports whether id is Nil.
func (id ID) IsNil() bool {
	return id.Index < 0
}

func (id ID) String() string {
	return fmt.Sprintf("%d.%d", id.Index, id.Generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Table is a fixed-capacity array of slots. Allocation always takes the
// lowest free slot. Exhausting the table is fatal.
type Table[T any] struct {
	label string
	slots []slot[T]
	live  int
}

// New returns an empty table with the provided capacity. Label is used in
// panic messages.
func New[T any](label string, capacity int) *Table[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("%s: invalid capacity %d", label, capacity))
	}
	return &Table[T]{
		label: label,
		slots: make([]slot[T], capacity),
	}
}

// Allocate stores the value created by fn in the lowest free slot.
// It panics if there is no free slot.
func (t *Table[T]) Allocate(fn func(ID) T) ID {
	for i := range t.slots {
		s := &t.slots[i]
		if s.live {
			continue
		}
		id := ID{Index: i, Generation: s.generation}
		s.value = fn(id)
		s.live = true
		t.live++
		return id
	}
	panic(fmt.Sprintf("%s: no free slot", t.label))
}

// Get returns the value for id. It returns false for out-of-range, free or
// stale ids.
func (t *Table[T]) Get(id ID) (T, bool) {
	if !t.valid(id) {
		var zero T
		return zero, false
	}
	return t.slots[id.Index].value, true
}

// MustGet returns the value for id and panics if id is not live.
func (t *Table[T]) MustGet(id ID) T {
	if !t.valid(id) {
		panic(fmt.Sprintf("%s: use after free of %v", t.label, id))
	}
	return t.slots[id.Index].value
}

// Set replaces the value of a live id.
func (t *Table[T]) Set(id ID, v T) {
	if !t.valid(id) {
		panic(fmt.Sprintf("%s: use after free of %v", t.label, id))
	}
	t.slots[id.Index].value = v
}

// Free releases the slot and invalidates id. It returns false if id was
// not live.
func (t *Table[T]) Free(id ID) bool {
	if !t.valid(id) {
		return false
	}
	s := &t.slots[id.Index]
	var zero T
	s.value = zero
	s.live = false
	s.generation++
	t.live--
	return true
}

// Range calls fn for every live value in slot order until fn returns false.
func (t *Table[T]) Range(fn func(ID, T) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		if !fn(ID{Index: i, Generation: s.generation}, s.value) {
			return
		}
	}
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	return t.live
}

// Cap returns the capacity of the table.
func (t *Table[T]) Cap() int {
	return len(t.slots)
}

func (t *Table[T]) valid(id ID) bool {
	if id.Index < 0 || id.Index >= len(t.slots) {
		return false
	}
	s := &t.slots[id.Index]
	return s.live && s.generation == id.Generation
}
