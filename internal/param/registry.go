package param

import (
	"sort"
	"strings"
)

// Registry holds the parameters of an engine, keyed by name.
type Registry struct {
	params map[string]*Parameter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[string]*Parameter),
	}
}

// Add inserts p, replacing any parameter with the same name.
func (r *Registry) Add(p *Parameter) {
	r.params[p.Name()] = p
}

// AddAll inserts every parameter in ps.
func (r *Registry) AddAll(ps []*Parameter) {
	for _, p := range ps {
		r.Add(p)
	}
}

// Get returns the parameter with exactly this name.
func (r *Registry) Get(name string) (*Parameter, error) {
	p, exists := r.params[name]
	if !exists {
		return nil, newNoSuchParameterError(name)
	}
	return p, nil
}

// Find resolves a name prefix. An exact name wins immediately; otherwise the
// unique parameter whose name starts with prefix is returned. No match
// returns nil without error, more than one match is ErrAmbiguousParameter.
func (r *Registry) Find(prefix string) (*Parameter, error) {
	if p, exists := r.params[prefix]; exists {
		return p, nil
	}

	var found *Parameter
	for name, p := range r.params {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if found != nil {
			return nil, newAmbiguousParameterError(prefix)
		}
		found = p
	}
	return found, nil
}

// Resolve is Find for command boundaries, where no match is an error.
func (r *Registry) Resolve(prefix string) (*Parameter, error) {
	p, err := r.Find(prefix)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, newNoSuchParameterError(prefix)
	}
	return p, nil
}

// Set resolves prefix with Resolve and parses value into the parameter.
func (r *Registry) Set(prefix, value string) (*Parameter, error) {
	p, err := r.Resolve(prefix)
	if err != nil {
		return nil, err
	}
	if err := p.Set(value); err != nil {
		return nil, err
	}
	return p, nil
}

// String returns the value of a string parameter. A missing parameter or a
// kind mismatch is a wiring defect and panics.
func (r *Registry) String(name string) string {
	return r.mustGet(name).StringValue()
}

// Int returns the value of an integer parameter.
func (r *Registry) Int(name string) int64 {
	return r.mustGet(name).IntValue()
}

// Bool returns the value of a boolean parameter.
func (r *Registry) Bool(name string) bool {
	return r.mustGet(name).BoolValue()
}

// Names returns all parameter names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all parameters sorted by name.
func (r *Registry) All() []*Parameter {
	names := r.Names()
	ps := make([]*Parameter, 0, len(names))
	for _, name := range names {
		ps = append(ps, r.params[name])
	}
	return ps
}

func (r *Registry) mustGet(name string) *Parameter {
	p, err := r.Get(name)
	if err != nil {
		panic("param: " + err.Error())
	}
	return p
}
