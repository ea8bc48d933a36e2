package typesystem

import "strings"

// Tag is a nominal type name, e.g. "int" or "SpecialInt". The universe of
// tags is closed: a tag means something only once declared in a Registry.
type Tag string

// ConstraintKind discriminates the Constraint variant.
type ConstraintKind int

const (
	KindAny ConstraintKind = iota
	KindExact
	KindUnion
)

// Constraint is what an argument's runtime type must satisfy: anything,
// one nominal type, or any member of a union. Membership is nominal
// (walking the single-parent chain), never distance-ranked.
type Constraint struct {
	Kind    ConstraintKind
	Members []Tag // one entry for KindExact, two or more for KindUnion
}

func Any() Constraint {
	return Constraint{Kind: KindAny}
}

func Exact(t Tag) Constraint {
	return Constraint{Kind: KindExact, Members: []Tag{t}}
}

// Union builds a union constraint. A single member collapses to Exact so
// "int | int" and "int" are indistinguishable downstream.
func Union(tags ...Tag) Constraint {
	uniq := make([]Tag, 0, len(tags))
	seen := make(map[Tag]bool)
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			uniq = append(uniq, t)
		}
	}
	switch len(uniq) {
	case 0:
		return Any()
	case 1:
		return Exact(uniq[0])
	}
	return Constraint{Kind: KindUnion, Members: uniq}
}

// Satisfied reports whether a value whose runtime tag is t satisfies the
// constraint under reg's is-a relation.
func (c Constraint) Satisfied(reg *Registry, t Tag) bool {
	switch c.Kind {
	case KindAny:
		return true
	default:
		for _, m := range c.Members {
			if reg.IsA(t, m) {
				return true
			}
		}
		return false
	}
}

func (c Constraint) String() string {
	switch c.Kind {
	case KindAny:
		return "any"
	case KindExact:
		return string(c.Members[0])
	default:
		parts := make([]string, len(c.Members))
		for i, m := range c.Members {
			parts[i] = string(m)
		}
		return strings.Join(parts, " | ")
	}
}
