package object

import (
	"lx/internal/ast"
	"strconv"
	"strings"
)

// Type tags double as the strings returned by the typeof builtin.
const (
	NUMBER_OBJ    = "number"
	STRING_OBJ    = "string"
	BOOLEAN_OBJ   = "boolean"
	NULL_OBJ      = "null"
	MAP_OBJ       = "object"
	ARRAY_OBJ     = "array"
	FUNCTION_OBJ  = "function"
	NATIVE_FN_OBJ = "native-fn"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

// NativeFunction is a host callable exposed to programs. It receives the
// evaluated arguments in order and the environment of the call site.
type NativeFunction func(args []Object, env *Environment) (Object, error)

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// Map is the language's object value: string keys in insertion order.
type Map struct {
	Keys  []string
	Pairs map[string]Object
}

func NewMap() *Map {
	return &Map{Pairs: make(map[string]Object)}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	if len(m.Keys) == 0 {
		return "{}"
	}

	pairs := make([]string, 0, len(m.Keys))
	for _, k := range m.Keys {
		pairs = append(pairs, k+": "+inspectNested(m.Pairs[k]))
	}
	return "{ " + strings.Join(pairs, ", ") + " }"
}

// Get returns the value stored under key, or nil when the key is absent.
func (m *Map) Get(key string) (Object, bool) {
	v, ok := m.Pairs[key]
	return v, ok
}

// Set stores value under key; a new key is appended to the key order.
func (m *Map) Set(key string, value Object) {
	if m.Pairs == nil {
		m.Pairs = make(map[string]Object)
	}
	if _, exists := m.Pairs[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Pairs[key] = value
}

type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	if len(a.Elements) == 0 {
		return "[]"
	}

	elements := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		elements = append(elements, inspectNested(e))
	}
	return "[ " + strings.Join(elements, ", ") + " ]"
}

type Function struct {
	Name       string
	Parameters []string
	Body       []ast.Statement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "function () {}" }

type Native struct {
	Name string
	Fn   NativeFunction
}

func (n *Native) Type() ObjectType { return NATIVE_FN_OBJ }
func (n *Native) Inspect() string  { return "() { [native-fn] }" }

// inspectNested quotes strings so that they stay distinguishable inside
// object and array displays.
func inspectNested(obj Object) string {
	switch obj := obj.(type) {
	case nil:
		return "null"
	case *String:
		return strconv.Quote(obj.Value)
	default:
		return obj.Inspect()
	}
}
