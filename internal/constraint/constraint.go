// Package constraint turns one raw per-parameter annotation string into a
// (type constraint, predicate) pair.
//
// The annotation grammar is ambiguous by construction: a single slot holds
// "type", "predicate", or "type & predicate" with no reserved delimiter.
// Parsing resolves the ambiguity by attempting type evaluation first and
// degrading to a predicate on failure. That policy is observable and must
// not be tightened: whether the first '&' separates type from predicate or
// belongs to a compound predicate is undecidable without evaluating the
// left side.
package constraint

import (
	"fmt"
	"strings"

	"github.com/predicated/dispatch/internal/ast"
	"github.com/predicated/dispatch/internal/evaluator"
	"github.com/predicated/dispatch/internal/parser"
	"github.com/predicated/dispatch/internal/typesystem"
)

// Predicate is a compiled boolean expression over named call-time bindings.
// Source is kept verbatim for introspection. A Predicate that failed to
// compile still exists (best-effort source text) and reports its error via
// Err; registration decides whether that is fatal.
type Predicate struct {
	Source string
	expr   ast.Expression
	err    error
}

// True is the vacuous predicate used for unannotated or type-only parameters.
func True() Predicate {
	return Predicate{Source: "true", expr: &ast.BooleanLiteral{Value: true}}
}

// Compile parses src into an evaluable predicate. The source is retained
// verbatim even when compilation fails.
func Compile(src string) Predicate {
	src = strings.TrimSpace(src)
	expr, err := parser.Parse(src)
	if err != nil {
		return Predicate{Source: src, err: fmt.Errorf("predicate %q: %w", src, err)}
	}
	return Predicate{Source: src, expr: expr}
}

// Err reports the compilation error, if any.
func (p Predicate) Err() error { return p.err }

// FreeVariables lists the parameter names the predicate references.
func (p Predicate) FreeVariables() []string {
	return ast.FreeVariables(p.expr)
}

// Eval evaluates the predicate against the given bindings. The result must
// be a boolean; anything else is an evaluation error, which resolvers treat
// as "not satisfied" rather than a call failure.
func (p Predicate) Eval(env *evaluator.Environment) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	result := evaluator.Eval(p.expr, env)
	switch r := result.(type) {
	case *evaluator.Boolean:
		return r.Value, nil
	case *evaluator.Error:
		return false, fmt.Errorf("predicate %q: %s", p.Source, r.Message)
	}
	return false, fmt.Errorf("predicate %q yielded %s, want boolean", p.Source, result.Type())
}

// Parameter is the parsed constraint for one declared parameter.
type Parameter struct {
	Types typesystem.Constraint
	Pred  Predicate
}

// Parse maps a raw annotation string to exactly one Parameter. It is total:
// every input produces a Parameter, worst case (Any, best-effort predicate).
//
// Priority order:
//  1. blank -> (Any, true)
//  2. contains '&': evaluate text before the FIRST '&' as a type
//     expression; on success the rest is the predicate, on failure the
//     whole string is the predicate under Any.
//  3. no '&': a type expression stands alone; a constant expression
//     becomes its stringified literal result as predicate; anything else
//     (free identifiers, parse errors) becomes the predicate verbatim.
func Parse(raw string, types *typesystem.Registry) Parameter {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Parameter{Types: typesystem.Any(), Pred: True()}
	}

	if idx := strings.Index(raw, "&"); idx >= 0 {
		left, right := raw[:idx], raw[idx+1:]
		if tc, ok := evalTypeExpr(left, types); ok {
			return Parameter{Types: tc, Pred: Compile(right)}
		}
		return Parameter{Types: typesystem.Any(), Pred: Compile(raw)}
	}

	expr, err := parser.Parse(trimmed)
	if err != nil {
		return Parameter{Types: typesystem.Any(), Pred: Compile(trimmed)}
	}
	if tc, ok := typeFromExpr(expr, types); ok {
		return Parameter{Types: tc, Pred: True()}
	}
	if len(ast.FreeVariables(expr)) == 0 {
		folded := evaluator.Eval(expr, evaluator.NewEnvironment())
		if _, bad := folded.(*evaluator.Error); !bad {
			return Parameter{
				Types: typesystem.Any(),
				Pred:  Predicate{Source: folded.Inspect(), expr: expr},
			}
		}
	}
	return Parameter{Types: typesystem.Any(), Pred: Predicate{Source: trimmed, expr: expr}}
}

// evalTypeExpr tries to read s as a nominal type or union of nominal types.
func evalTypeExpr(s string, types *typesystem.Registry) (typesystem.Constraint, bool) {
	expr, err := parser.Parse(strings.TrimSpace(s))
	if err != nil {
		return typesystem.Constraint{}, false
	}
	return typeFromExpr(expr, types)
}

func typeFromExpr(expr ast.Expression, types *typesystem.Registry) (typesystem.Constraint, bool) {
	tags, ok := collectTypeUnion(expr, types)
	if !ok {
		return typesystem.Constraint{}, false
	}
	return typesystem.Union(tags...), true
}

func collectTypeUnion(expr ast.Expression, types *typesystem.Registry) ([]typesystem.Tag, bool) {
	switch n := expr.(type) {
	case *ast.Identifier:
		if n.Value == "any" || n.Value == "Any" {
			// `any` in type position keeps the slot unconstrained; Union()
			// of zero members collapses back to Any.
			return nil, true
		}
		if types.Known(typesystem.Tag(n.Value)) {
			return []typesystem.Tag{typesystem.Tag(n.Value)}, true
		}
		return nil, false
	case *ast.InfixExpression:
		if n.Operator != "|" {
			return nil, false
		}
		left, ok := collectTypeUnion(n.Left, types)
		if !ok {
			return nil, false
		}
		right, ok := collectTypeUnion(n.Right, types)
		if !ok {
			return nil, false
		}
		return append(left, right...), true
	}
	return nil, false
}
