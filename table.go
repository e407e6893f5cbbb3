package zen

import (
	"github.com/pkg/errors"
)

// Table is a named array shared by table objects.
type Table struct {
	owner ObjectID
	data  []float64
}

// Data returns the samples of the table. The slice is replaced by Resize.
func (t *Table) Data() []float64 {
	return t.data
}

// Resize changes the length of the table. New samples are zero. Sizes
// below one are ignored.
func (t *Table) Resize(size int) {
	switch {
	case size < 1:
	case size <= cap(t.data):
		old := len(t.data)
		t.data = t.data[:size]
		for i := old; i < size; i++ {
			t.data[i] = 0
		}
	default:
		data := make([]float64, size)
		copy(data, t.data)
		t.data = data
	}
}

func (c *Context) registerTable(name string, id ObjectID, size int) (*Table, error) {
	if _, ok := c.tables[name]; ok {
		c.printErr("Table with name \"%s\" already exists.", name)
		return nil, errors.Errorf("table %s already exists", name)
	}
	t := &Table{owner: id, data: make([]float64, size)}
	c.tables[name] = t
	return t, nil
}

func (c *Context) unregisterTable(name string, id ObjectID) {
	if t, ok := c.tables[name]; ok && t.owner == id {
		delete(c.tables, name)
	}
}
