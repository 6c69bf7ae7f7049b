package hardware

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/girs-server/girsd/internal/prefix"
)

// Factory builds a device from its configured argument list.
type Factory func(args []string) (Hardware, error)

// Registry maps hardware type tags to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty factory registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. A duplicate tag is a wiring error and panics.
func (r *Registry) Register(tag string, f Factory) {
	key := strings.ToLower(tag)
	if _, exists := r.factories[key]; exists {
		panic("hardware: duplicate type " + tag)
	}
	r.factories[key] = f
}

// New builds a device of type tag.
func (r *Registry) New(tag string, args []string) (Hardware, error) {
	f, ok := r.factories[strings.ToLower(tag)]
	if !ok {
		return nil, &Error{Code: ErrUnknownType, Op: tag}
	}
	return f(args)
}

// Types returns the registered tags, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		types = append(types, tag)
	}
	sort.Strings(types)
	return types
}

// Set holds the named device handles shared by all sessions and tracks
// which one commands operate on.
type Set struct {
	mu      sync.Mutex
	handles map[string]Hardware
	names   []string
	current string
}

// NewSet creates an empty handle set.
func NewSet() *Set {
	return &Set{handles: make(map[string]Hardware)}
}

// Add registers hw under name. The first device added becomes current.
func (s *Set) Add(name string, hw Hardware) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handles[name]; !exists {
		s.names = append(s.names, name)
		sort.Strings(s.names)
	}
	s.handles[name] = hw
	if s.current == "" {
		s.current = name
	}
}

// Select makes the device matching typed current, with exact names
// winning over longer ones.
func (s *Set) Select(typed string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := prefix.Match(s.names, typed, true)
	switch len(matches) {
	case 0:
		return "", &Error{Code: ErrNoSuchHardware, Op: typed}
	case 1:
		s.current = matches[0]
		return s.current, nil
	default:
		return "", &Error{Code: ErrAmbiguousHardware, Op: typed, Cause: fmt.Errorf("%v", matches)}
	}
}

// Current returns the selected device.
func (s *Set) Current() (string, Hardware, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return "", nil, ErrNoHardware
	}
	return s.current, s.handles[s.current], nil
}

// Names returns the device names, sorted.
func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// OpenAll opens every device, stopping at the first failure.
func (s *Set) OpenAll(ctx context.Context) error {
	for _, name := range s.Names() {
		s.mu.Lock()
		hw := s.handles[name]
		s.mu.Unlock()
		if err := hw.Open(ctx); err != nil {
			return &Error{Code: ErrIO, Device: name, Op: "open", Cause: err}
		}
	}
	return nil
}

// Close closes every device and returns the first error.
func (s *Set) Close() error {
	var first error
	for _, name := range s.Names() {
		s.mu.Lock()
		hw := s.handles[name]
		s.mu.Unlock()
		if err := hw.Close(); err != nil && first == nil {
			first = &Error{Code: ErrIO, Device: name, Op: "close", Cause: err}
		}
	}
	return first
}
