// Package module groups commands and parameters into named bundles and
// provides the built-in modules of the server.
package module

import (
	"sort"

	"github.com/girs-server/girsd/internal/command"
	"github.com/girs-server/girsd/internal/param"
)

// Module is a named bundle of commands and parameters.
type Module interface {
	Name() string
	Commands() []command.Command
	Parameters() []*param.Parameter
}

// Binder is implemented by modules that read parameters declared by other
// modules. The engine binds them once every module's parameters are
// registered.
type Binder interface {
	Bind(params *param.Registry)
}

// Static is a Module with a fixed command and parameter list.
type Static struct {
	name     string
	commands []command.Command
	params   []*param.Parameter
}

// New creates a module from its declarations.
func New(name string, commands []command.Command, params []*param.Parameter) *Static {
	return &Static{name: name, commands: commands, params: params}
}

func (m *Static) Name() string                   { return m.name }
func (m *Static) Commands() []command.Command    { return m.commands }
func (m *Static) Parameters() []*param.Parameter { return m.params }

// Table maps module names to modules. Adding a module under an existing
// name replaces it.
type Table struct {
	modules map[string]Module
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{modules: make(map[string]Module)}
}

func (t *Table) Add(m Module) {
	t.modules[m.Name()] = m
}

func (t *Table) Get(name string) (Module, bool) {
	m, ok := t.modules[name]
	return m, ok
}

// Names returns the module names, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.modules))
	for name := range t.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Len() int {
	return len(t.modules)
}
