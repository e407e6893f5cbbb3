package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dudk/zen/alloc"
)

type value struct {
	id alloc.ID
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		description string
		capacity    int
	}{
		{description: "single slot", capacity: 1},
		{description: "several slots", capacity: 8},
	}
	for _, test := range tests {
		table := alloc.New[*value]("test", test.capacity)
		for i := 0; i < test.capacity; i++ {
			id := table.Allocate(func(id alloc.ID) *value { return &value{id: id} })
			assert.Equal(t, i, id.Index, test.description)
			v, ok := table.Get(id)
			assert.True(t, ok, test.description)
			assert.Equal(t, id, v.id, test.description)
		}
		assert.Equal(t, test.capacity, table.Len(), test.description)
		assert.Panics(t, func() {
			table.Allocate(func(id alloc.ID) *value { return &value{id: id} })
		}, test.description)
	}
}

func TestGet(t *testing.T) {
	table := alloc.New[int]("test", 2)
	_, ok := table.Get(alloc.ID{Index: 0})
	assert.False(t, ok)
	_, ok = table.Get(alloc.ID{Index: 5})
	assert.False(t, ok)
	_, ok = table.Get(alloc.Nil)
	assert.False(t, ok)
	assert.Panics(t, func() { table.MustGet(alloc.ID{Index: 1}) })
}

func TestFree(t *testing.T) {
	table := alloc.New[string]("test", 2)
	a := table.Allocate(func(alloc.ID) string { return "a" })
	b := table.Allocate(func(alloc.ID) string { return "b" })

	assert.True(t, table.Free(a))
	assert.False(t, table.Free(a))
	_, ok := table.Get(a)
	assert.False(t, ok)
	assert.Panics(t, func() { table.MustGet(a) })

	// freed slot is reused with a new generation
	c := table.Allocate(func(alloc.ID) string { return "c" })
	assert.Equal(t, a.Index, c.Index)
	assert.NotEqual(t, a.Generation, c.Generation)
	assert.Equal(t, "c", table.MustGet(c))
	assert.Equal(t, "b", table.MustGet(b))

	var visited []string
	table.Range(func(_ alloc.ID, v string) bool {
		visited = append(visited, v)
		return true
	})
	assert.Equal(t, []string{"c", "b"}, visited)
}
