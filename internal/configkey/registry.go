// Package configkey decodes configuration directory names such as
// "k=1_a=2" and tracks every property name seen during a run.
package configkey

// Registry is the ordered set of property names discovered while decoding
// configuration keys. It only grows, and its order is first-seen order.
// A Registry belongs to a single aggregation run.
type Registry struct {
	names []string
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// RegisterIfAbsent adds name if it has not been seen and reports whether it was added.
func (r *Registry) RegisterIfAbsent(name string) bool {
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	return true
}

// Contains reports whether name has been registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns a copy of the registered names in discovery order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	return len(r.names)
}
