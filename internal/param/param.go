// Package param implements the typed, named settings shared by all modules.
//
// A parameter holds exactly one string, integer or boolean value. Values are
// seeded from module defaults, may be overridden from configuration, and are
// changed at runtime by the parameter commands.
package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value type of a parameter.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Parameter is a named, documented setting.
type Parameter struct {
	name string
	doc  string
	kind Kind

	s string
	i int64
	b bool
}

// NewString creates a string parameter.
func NewString(name, doc, value string) *Parameter {
	return &Parameter{name: name, doc: doc, kind: KindString, s: value}
}

// NewInt creates an integer parameter.
func NewInt(name, doc string, value int64) *Parameter {
	return &Parameter{name: name, doc: doc, kind: KindInt, i: value}
}

// NewBool creates a boolean parameter.
func NewBool(name, doc string, value bool) *Parameter {
	return &Parameter{name: name, doc: doc, kind: KindBool, b: value}
}

func (p *Parameter) Name() string { return p.name }
func (p *Parameter) Doc() string  { return p.doc }
func (p *Parameter) Kind() Kind   { return p.kind }

// String returns the textual form of the current value.
func (p *Parameter) String() string {
	switch p.kind {
	case KindInt:
		return strconv.FormatInt(p.i, 10)
	case KindBool:
		return strconv.FormatBool(p.b)
	default:
		return p.s
	}
}

// Set parses text according to the parameter kind. Booleans accept
// true/false, on/off, yes/no and 1/0.
func (p *Parameter) Set(text string) error {
	switch p.kind {
	case KindInt:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return newParseError(p.name, text, err)
		}
		p.i = v
	case KindBool:
		v, err := parseBool(text)
		if err != nil {
			return newParseError(p.name, text, err)
		}
		p.b = v
	default:
		p.s = text
	}
	return nil
}

// SetString sets a string parameter. It panics if the parameter is not a string.
func (p *Parameter) SetString(v string) {
	p.mustBe(KindString)
	p.s = v
}

// SetInt sets an integer parameter. It panics if the parameter is not an integer.
func (p *Parameter) SetInt(v int64) {
	p.mustBe(KindInt)
	p.i = v
}

// SetBool sets a boolean parameter. It panics if the parameter is not a boolean.
func (p *Parameter) SetBool(v bool) {
	p.mustBe(KindBool)
	p.b = v
}

// StringValue returns the value of a string parameter.
func (p *Parameter) StringValue() string {
	p.mustBe(KindString)
	return p.s
}

// IntValue returns the value of an integer parameter.
func (p *Parameter) IntValue() int64 {
	p.mustBe(KindInt)
	return p.i
}

// BoolValue returns the value of a boolean parameter.
func (p *Parameter) BoolValue() bool {
	p.mustBe(KindBool)
	return p.b
}

func (p *Parameter) mustBe(kind Kind) {
	if p.kind != kind {
		panic(fmt.Sprintf("param: %s is %s, not %s", p.name, p.kind, kind))
	}
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(text)
}
