package remote

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies a signal by protocol name and numeric parameters. The
// protocol is folded to lower case; parameter names are case sensitive.
type Key struct {
	protocol string
	names    []string
	values   map[string]int64
}

// NewKey copies params into a canonical key.
func NewKey(protocol string, params map[string]int64) Key {
	k := Key{
		protocol: strings.ToLower(protocol),
		names:    make([]string, 0, len(params)),
		values:   make(map[string]int64, len(params)),
	}
	for name, v := range params {
		k.names = append(k.names, name)
		k.values[name] = v
	}
	sort.Strings(k.names)
	return k
}

// Protocol returns the folded protocol name.
func (k Key) Protocol() string { return k.protocol }

// Parameters returns a copy of the parameter map.
func (k Key) Parameters() map[string]int64 {
	params := make(map[string]int64, len(k.values))
	for name, v := range k.values {
		params[name] = v
	}
	return params
}

// Equal reports whether both keys name the same protocol with identical
// parameter maps.
func (k Key) Equal(o Key) bool {
	if k.protocol != o.protocol || len(k.values) != len(o.values) {
		return false
	}
	for name, v := range k.values {
		if ov, ok := o.values[name]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Compare orders keys by protocol name, then walks k's parameters in name
// order: a name missing from o sorts k after o, otherwise the first differing
// value decides. When every parameter of k matches, the key with fewer
// parameters sorts first.
//
// The comparison is not antisymmetric when the parameter sets differ on both
// sides: Compare(a, b) and Compare(b, a) can both be positive. Indexes must
// use String for ordering.
func (k Key) Compare(o Key) int {
	if c := strings.Compare(k.protocol, o.protocol); c != 0 {
		return c
	}
	for _, name := range k.names {
		ov, ok := o.values[name]
		if !ok {
			return 1
		}
		v := k.values[name]
		if v < ov {
			return -1
		}
		if v > ov {
			return 1
		}
	}
	switch {
	case len(k.values) < len(o.values):
		return -1
	case len(k.values) > len(o.values):
		return 1
	}
	return 0
}

// String returns the canonical text form, e.g. "nec1 D=1 F=2". Equal keys
// have equal strings.
func (k Key) String() string {
	parts := make([]string, 0, len(k.names)+1)
	parts = append(parts, k.protocol)
	for _, name := range k.names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, k.values[name]))
	}
	return strings.Join(parts, " ")
}
