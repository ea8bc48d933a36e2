package dispatch

import (
	"github.com/predicated/dispatch/internal/constraint"
)

// Param declares one parameter of a Callable: its name and its raw
// annotation string in the constraint mini-language. An empty annotation
// means unconstrained.
type Param struct {
	Name       string
	Annotation string
}

// Callable is the registrable unit: an identifier, ordered parameter
// declarations, and the function body. It is the Go stand-in for an
// introspectable function object; nothing here is reflective.
type Callable struct {
	Name   string
	Params []Param
	Fn     func(args ...interface{}) (interface{}, error)
}

// BoundParam is a parameter with its parsed constraint.
type BoundParam struct {
	Name       string
	Annotation string // raw annotation, kept for introspection
	Constraint constraint.Parameter
}

// Implementation pairs a callable with its parsed per-parameter
// constraints under the name it was bound to. Immutable once created and
// owned solely by its registry slot.
type Implementation struct {
	BoundName string // dispatch name this candidate answers to
	FuncName  string // the callable's own identifier
	Params    []BoundParam
	fn        func(args ...interface{}) (interface{}, error)
}

// Rebound reports whether the candidate was registered under a name other
// than its own identifier.
func (im *Implementation) Rebound() bool {
	return im.FuncName != "" && im.FuncName != im.BoundName
}

// Invoke runs the underlying callable with the original arguments.
func (im *Implementation) Invoke(args ...interface{}) (interface{}, error) {
	return im.fn(args...)
}
