package zen

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/dudk/zen/message"
)

// Factory creates an object from its creation arguments. Dollar arguments
// are already resolved.
type Factory func(init *message.Message) (Object, error)

// Registry maps object labels to their factories.
type Registry struct {
	factories map[string]Factory
}

var errDuplicateLabel = errors.New("duplicate object label")

// NewRegistry returns a registry that knows the graph port objects.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	registerPorts(r)
	return r
}

// Register adds a factory for label.
func (r *Registry) Register(label string, f Factory) error {
	if label == "" {
		return errors.New("empty object label")
	}
	if f == nil {
		return errors.New("nil factory")
	}
	if _, ok := r.factories[label]; ok {
		return errors.Wrapf(errDuplicateLabel, "%s", label)
	}
	r.factories[label] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(label string, f Factory) {
	if err := r.Register(label, f); err != nil {
		panic("zen registry: " + err.Error())
	}
}

// Lookup returns the factory for label or nil.
func (r *Registry) Lookup(label string) Factory {
	return r.factories[label]
}

// Labels returns the registered labels in lexical order.
func (r *Registry) Labels() []string {
	labels := make([]string, 0, len(r.factories))
	for l := range r.factories {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
