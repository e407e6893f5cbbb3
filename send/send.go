// Package send implements the name registry used for connection-less
// message delivery.
package send

import (
	goset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/dudk/zen/alloc"
	zerrors "github.com/dudk/zen/errors"
)

const (
	// SystemName is the reserved receiver of system messages.
	SystemName = "pd"
	// SystemIndex is the reserved index of SystemName.
	SystemIndex = 0x7FFFFFFF
	// MaxNames is the capacity of the name table.
	MaxNames = 1024
)

// Controller maps names to stable indices and indices to receivers.
// Indices are never reused so queued deliveries stay valid.
type Controller struct {
	names     []string
	index     map[string]int
	receivers [][]alloc.ID
	external  goset.Set[string]
}

// New returns an empty controller.
func New() *Controller {
	return &Controller{
		index:    make(map[string]int),
		external: goset.NewThreadUnsafeSet[string](),
	}
}

// Index returns the index of name.
func (c *Controller) Index(name string) (int, bool) {
	if name == SystemName {
		return SystemIndex, true
	}
	i, ok := c.index[name]
	return i, ok
}

// Name returns the name at index.
func (c *Controller) Name(index int) string {
	if index == SystemIndex {
		return SystemName
	}
	if index < 0 || index >= len(c.names) {
		return ""
	}
	return c.names[index]
}

// Resolve returns the index of name, assigning one if needed.
func (c *Controller) Resolve(name string) (int, error) {
	return c.ensure(name)
}

func (c *Controller) ensure(name string) (int, error) {
	if i, ok := c.Index(name); ok {
		return i, nil
	}
	if len(c.names) >= MaxNames {
		return 0, errors.Wrapf(zerrors.ErrBufferOverflow, "name table of %d", MaxNames)
	}
	i := len(c.names)
	c.names = append(c.names, name)
	c.receivers = append(c.receivers, nil)
	c.index[name] = i
	return i, nil
}

// AddReceiver registers id under name.
func (c *Controller) AddReceiver(name string, id alloc.ID) error {
	if name == SystemName {
		return errors.Errorf("%q is reserved", SystemName)
	}
	i, err := c.ensure(name)
	if err != nil {
		return err
	}
	for _, r := range c.receivers[i] {
		if r == id {
			return nil
		}
	}
	c.receivers[i] = append(c.receivers[i], id)
	return nil
}

// RemoveReceiver unregisters id from name. Unknown pairs are ignored.
func (c *Controller) RemoveReceiver(name string, id alloc.ID) {
	i, ok := c.index[name]
	if !ok {
		return
	}
	rs := c.receivers[i]
	for j := range rs {
		if rs[j] == id {
			c.receivers[i] = append(rs[:j], rs[j+1:]...)
			return
		}
	}
}

// Receivers returns the receivers registered at index in registration
// order.
func (c *Controller) Receivers(index int) []alloc.ID {
	if index < 0 || index >= len(c.receivers) {
		return nil
	}
	return append([]alloc.ID(nil), c.receivers[index]...)
}

// RegisterExternal marks name as observed by the host.
func (c *Controller) RegisterExternal(name string) error {
	if _, err := c.ensure(name); err != nil {
		return err
	}
	c.external.Add(name)
	return nil
}

// UnregisterExternal removes the host observation of name.
func (c *Controller) UnregisterExternal(name string) {
	c.external.Remove(name)
}

// IsExternal reports whether the host observes name.
func (c *Controller) IsExternal(name string) bool {
	return c.external.Contains(name)
}

// External returns the names observed by the host.
func (c *Controller) External() []string {
	return c.external.ToSlice()
}
