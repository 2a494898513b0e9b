package collect

import (
	"fmt"
	"sort"
	"strings"
)

// Registry maintains a central registry of all available collectors
type Registry struct {
	collectors map[string]Collector
}

// NewRegistry creates a new collector registry
func NewRegistry() *Registry {
	return &Registry{
		collectors: make(map[string]Collector),
	}
}

// Register adds a new collector to the registry
func (r *Registry) Register(c Collector) error {
	argName := c.ArgumentName()
	if _, exists := r.collectors[argName]; exists {
		return fmt.Errorf("collector with argument name %q already registered", argName)
	}
	r.collectors[argName] = c
	return nil
}

// Get retrieves a collector by its identifier (argument name, label, or name)
func (r *Registry) Get(identifier string) (Collector, error) {
	if collector, ok := r.collectors[identifier]; ok {
		return collector, nil
	}

	identifier = strings.ToLower(identifier)
	for _, collector := range r.collectors {
		if strings.ToLower(collector.ArgumentName()) == identifier ||
			strings.ToLower(collector.Label()) == identifier ||
			strings.ToLower(collector.Name()) == identifier {
			return collector, nil
		}
	}

	return nil, fmt.Errorf("no collector found for identifier %q", identifier)
}

// List returns a sorted list of all registered collector argument names
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.collectors))
	for name := range r.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve expands a comma-separated collector list into collectors,
// tracking unknown names instead of failing outright. An empty list
// selects every registered collector.
func (r *Registry) Resolve(list string) ([]Collector, []string) {
	var (
		collectors []Collector
		invalid    []string
	)

	if list == "" {
		for _, name := range r.List() {
			if collector, err := r.Get(name); err == nil {
				collectors = append(collectors, collector)
			}
		}
		return collectors, nil
	}

	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		collector, err := r.Get(name)
		if err != nil {
			invalid = append(invalid, name)
			continue
		}
		collectors = append(collectors, collector)
	}

	return collectors, invalid
}

// DefaultRegistry is the default collector registry instance
var DefaultRegistry = NewRegistry()
