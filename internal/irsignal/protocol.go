package irsignal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Protocol errors returned by renderers.
var (
	ErrUnknownProtocol  = errors.New("unknown protocol")
	ErrMissingParameter = errors.New("missing parameter")
	ErrParameterDomain  = errors.New("parameter out of domain")
)

// ProtocolError wraps one of the protocol sentinel errors with the protocol
// and parameter involved.
type ProtocolError struct {
	Code      error
	Protocol  string
	Parameter string
}

func (e *ProtocolError) Error() string {
	if e.Parameter != "" {
		return fmt.Sprintf("%s: %v: %s", e.Protocol, e.Code, e.Parameter)
	}
	return fmt.Sprintf("%v: %s", e.Code, e.Protocol)
}

func (e *ProtocolError) Unwrap() error {
	return e.Code
}

// Decode is the protocol name and parameters recovered from a signal.
type Decode struct {
	Protocol   string
	Parameters map[string]int64
}

func (d *Decode) String() string {
	names := make([]string, 0, len(d.Parameters))
	for name := range d.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := []string{d.Protocol}
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, d.Parameters[name]))
	}
	return strings.Join(parts, " ")
}

// Renderer turns a protocol name and parameters into a signal.
type Renderer interface {
	Render(protocol string, params map[string]int64) (*Signal, error)
	Protocols() []string
}

// Decoder recovers protocol parameters from a signal. A signal no protocol
// recognizes yields nil without error.
type Decoder interface {
	Decode(sig *Signal) (*Decode, error)
}

// Protocol is a single renderable and decodable protocol.
type Protocol interface {
	Name() string
	Render(params map[string]int64) (*Signal, error)
	Decode(sig *Signal) (map[string]int64, bool)
}

// Protocols is a table of protocols implementing Renderer and Decoder.
type Protocols struct {
	byName map[string]Protocol
}

// NewProtocols creates a table from ps, keyed by lower-case name.
func NewProtocols(ps ...Protocol) *Protocols {
	table := &Protocols{byName: make(map[string]Protocol)}
	for _, p := range ps {
		table.byName[strings.ToLower(p.Name())] = p
	}
	return table
}

// Default returns the built-in protocol table.
func Default() *Protocols {
	return NewProtocols(NEC1{})
}

// Render looks up protocol (ignoring case) and renders params with it.
func (t *Protocols) Render(protocol string, params map[string]int64) (*Signal, error) {
	p, exists := t.byName[strings.ToLower(protocol)]
	if !exists {
		return nil, &ProtocolError{Code: ErrUnknownProtocol, Protocol: protocol}
	}
	return p.Render(params)
}

// Decode tries every protocol in name order.
func (t *Protocols) Decode(sig *Signal) (*Decode, error) {
	if sig == nil {
		return nil, nil
	}
	for _, name := range t.Protocols() {
		if params, ok := t.byName[name].Decode(sig); ok {
			return &Decode{Protocol: name, Parameters: params}, nil
		}
	}
	return nil, nil
}

// Protocols returns the known protocol names, sorted.
func (t *Protocols) Protocols() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
