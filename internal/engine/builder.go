package engine

import (
	"fmt"
	"sort"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/module"
	"github.com/girs-server/girsd/internal/param"
)

// Builder accumulates module declarations and produces an Engine whose
// executor and registry are complete before the first Eval.
type Builder struct {
	version   string
	modules   []module.Module
	overrides map[string]string
	observers []Observer
}

// NewBuilder starts an engine declaration. The base and parameters modules
// are always included.
func NewBuilder(version string) *Builder {
	if version == "" {
		version = DefaultVersion
	}
	return &Builder{version: version, overrides: make(map[string]string)}
}

// Use adds modules. A later module with the name of an earlier one
// replaces it.
func (b *Builder) Use(modules ...module.Module) *Builder {
	b.modules = append(b.modules, modules...)
	return b
}

// Set records a configured parameter value, applied over module defaults.
func (b *Builder) Set(name, value string) *Builder {
	b.overrides[name] = value
	return b
}

// SetAll records every entry of values.
func (b *Builder) SetAll(values map[string]string) *Builder {
	for name, value := range values {
		b.Set(name, value)
	}
	return b
}

// Observe adds an observer called after every Eval, in the order added.
func (b *Builder) Observe(o Observer) *Builder {
	if o != nil {
		b.observers = append(b.observers, o)
	}
	return b
}

// Build registers every module and applies the configured parameter
// values. Duplicate command names across modules are wiring defects and
// panic; an unknown or malformed configured parameter is returned as an
// error.
func (b *Builder) Build() (*Engine, error) {
	e := &Engine{
		version:  b.version,
		modules:  module.NewTable(),
		root:     command.NewExecutor(),
		params:   param.NewRegistry(),
		observer: chain(b.observers),
	}

	all := append([]module.Module{module.NewBase(e), module.NewParameters(e.params)}, b.modules...)
	var order []string
	latest := make(map[string]module.Module)
	for _, m := range all {
		if _, seen := latest[m.Name()]; !seen {
			order = append(order, m.Name())
		}
		latest[m.Name()] = m
	}

	for _, name := range order {
		m := latest[name]
		e.modules.Add(m)
		for _, cmd := range m.Commands() {
			e.root.Register(cmd)
		}
		e.params.AddAll(m.Parameters())
	}
	for _, name := range order {
		if b, ok := latest[name].(module.Binder); ok {
			b.Bind(e.params)
		}
	}

	names := make([]string, 0, len(b.overrides))
	for name := range b.overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := e.params.Get(name)
		if err != nil {
			return nil, fmt.Errorf("configured parameter: %w", err)
		}
		if err := p.Set(b.overrides[name]); err != nil {
			return nil, fmt.Errorf("configured parameter: %w", err)
		}
	}
	return e, nil
}

func chain(observers []Observer) Observer {
	switch len(observers) {
	case 0:
		return nil
	case 1:
		return observers[0]
	}
	return func(ev Event) {
		for _, o := range observers {
			o(ev)
		}
	}
}
