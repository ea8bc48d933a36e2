package typesystem

import (
	"fmt"
	"reflect"
	"sync"
)

// Builtin tags seeded into every Registry. The names follow the annotation
// mini-language, not Go: annotation strings say "int | float", so the tags do
// too.
const (
	TagInt     Tag = "int"
	TagFloat   Tag = "float"
	TagComplex Tag = "complex"
	TagStr     Tag = "str"
	TagBool    Tag = "bool"
	TagBytes   Tag = "bytes"
	TagNil     Tag = "nil"
)

// Registry is the closed universe of nominal types plus the is-a relation.
// Each tag has at most one parent, so subtype checks are a bounded chain
// walk, replacing reflective MRO traversal.
type Registry struct {
	mu      sync.RWMutex
	parents map[Tag]Tag  // tag -> declared parent ("" for roots)
	known   map[Tag]bool // membership set; includes roots
	named   map[string]Tag
}

// NewRegistry returns a Registry seeded with the builtin tags.
func NewRegistry() *Registry {
	r := &Registry{
		parents: make(map[Tag]Tag),
		known:   make(map[Tag]bool),
		named:   make(map[string]Tag),
	}
	for _, t := range []Tag{TagInt, TagFloat, TagComplex, TagStr, TagBool, TagBytes, TagNil} {
		r.known[t] = true
	}
	return r
}

// Declare adds a root tag with no parent. Declaring an existing tag is a
// no-op, so config-driven declaration is idempotent.
func (r *Registry) Declare(name Tag) {
	r.mu.Lock()
	r.known[name] = true
	r.mu.Unlock()
}

// Derive declares name as a nominal subtype of parent. The parent must
// already be known, and a tag keeps its first declared parent: the is-a
// table is append-only like the dispatch registry it serves.
func (r *Registry) Derive(name, parent Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known[parent] {
		return fmt.Errorf("unknown parent type %q", parent)
	}
	if existing, ok := r.parents[name]; ok && existing != parent {
		return fmt.Errorf("type %q already derives from %q", name, existing)
	}
	r.known[name] = true
	r.parents[name] = parent
	return nil
}

// Known reports whether name is a declared tag.
func (r *Registry) Known(name Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.known[name]
}

// IsA walks the single-parent chain from t looking for target.
func (r *Registry) IsA(t, target Tag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for cur := t; cur != ""; {
		if cur == target {
			return true
		}
		next, ok := r.parents[cur]
		if !ok {
			return false
		}
		cur = next
	}
	return false
}

// MapGoType associates a named Go type with a declared tag, so values of
// that type resolve to their nominal tag rather than the builtin for their
// kind. Registration-time, not reflection-per-call: TagOf does a single map
// lookup on the type name.
func (r *Registry) MapGoType(v interface{}, tag Tag) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("cannot map nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known[tag] {
		return fmt.Errorf("unknown type %q", tag)
	}
	r.named[typeKey(t)] = tag
	return nil
}

// TagOf returns the runtime tag of a value. Precedence: an explicit
// MapGoType mapping, then a declared tag matching the Go type's own name,
// then the builtin tag for the value's kind. Named types that were never
// declared are therefore indistinguishable from their underlying kind,
// mirroring how an undeclared subclass still is-a its base.
func (r *Registry) TagOf(v interface{}) Tag {
	if v == nil {
		return TagNil
	}
	t := reflect.TypeOf(v)

	r.mu.RLock()
	tag, mapped := r.named[typeKey(t)]
	declared := r.known[Tag(t.Name())]
	r.mu.RUnlock()
	if mapped {
		return tag
	}
	if declared {
		return Tag(t.Name())
	}

	switch t.Kind() {
	case reflect.Bool:
		return TagBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TagInt
	case reflect.Float32, reflect.Float64:
		return TagFloat
	case reflect.Complex64, reflect.Complex128:
		return TagComplex
	case reflect.String:
		return TagStr
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return TagBytes
		}
	}
	return Tag(t.Name())
}

func typeKey(t reflect.Type) string {
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.Name()
}
