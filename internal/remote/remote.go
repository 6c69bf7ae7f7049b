// Package remote holds named remotes and the database used to resolve
// remote commands by name and to identify decoded signals.
package remote

import (
	"sort"
	"strings"
)

// Command is a named remote command bound to a protocol and parameters.
type Command struct {
	Name       string
	Protocol   string
	Parameters map[string]int64
}

// Key returns the identification key of the command.
func (c *Command) Key() Key {
	return NewKey(c.Protocol, c.Parameters)
}

// Remote is a named collection of commands.
type Remote struct {
	Name     string
	Commands map[string]*Command
}

// NewRemote creates an empty remote.
func NewRemote(name string) *Remote {
	return &Remote{Name: name, Commands: make(map[string]*Command)}
}

// Add inserts cmd, replacing a command with the same name.
func (r *Remote) Add(cmd *Command) {
	r.Commands[cmd.Name] = cmd
}

// CommandNames returns the command names, sorted case-insensitively.
func (r *Remote) CommandNames() []string {
	names := make([]string, 0, len(r.Commands))
	for name := range r.Commands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Set is the result of loading one remote-definition source.
type Set struct {
	Source  string
	Remotes []*Remote
}
