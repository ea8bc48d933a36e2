package constraint_test

import (
	"testing"

	"github.com/predicated/dispatch/internal/constraint"
	"github.com/predicated/dispatch/internal/evaluator"
	"github.com/predicated/dispatch/internal/typesystem"
)

func newTypes(t *testing.T) *typesystem.Registry {
	t.Helper()
	reg := typesystem.NewRegistry()
	if err := reg.Derive("SpecialInt", typesystem.TagInt); err != nil {
		t.Fatalf("derive: %v", err)
	}
	return reg
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		wantType      string
		wantPredicate string
	}{
		// No annotation present
		{"bare", "", "any", "true"},
		{"whitespace_only", "   ", "any", "true"},

		// Pure type expressions
		{"single_type", "int", "int", "true"},
		{"union", "int | float | complex", "int | float | complex", "true"},
		{"derived_type", "SpecialInt", "SpecialInt", "true"},
		{"any_keyword", "any", "any", "true"},

		// type & predicate
		{"type_and_predicate", "int & 3 <= a <= 17", "int", "3 <= a <= 17"},
		{"union_and_predicate", "str | bytes & 2+2==4", "str | bytes", "2+2==4"},
		{"predicate_whitespace_trimmed", "int &   0 < n < 65536  ", "int", "0 < n < 65536"},

		// Compound predicate whose first & is not a type separator: the
		// whole original string becomes the predicate.
		{"compound_bitwise_predicate", "a > 42 & a < 500", "any", "a > 42 & a < 500"},
		{"compound_three_way", "a > 1 & a < 5 & a != 3", "any", "a > 1 & a < 5 & a != 3"},

		// Bare predicates without '&'
		{"bare_comparison", "a > 42", "any", "a > 42"},
		{"chained_comparison", "3 <= a <= 17", "any", "3 <= a <= 17"},

		// Constant expressions fold to their stringified literal result
		{"constant_false", "4 > 5", "any", "false"},
		{"constant_true", "2 + 2 == 4", "any", "true"},
		{"constant_arithmetic", "41 + 1", "any", "42"},

		// Unknown identifiers are predicates, not types
		{"unknown_type_name", "widget", "any", "widget"},
		{"unknown_union_member", "int | widget", "any", "int | widget"},
	}

	types := newTypes(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := constraint.Parse(tc.raw, types)
			if got := p.Types.String(); got != tc.wantType {
				t.Errorf("Parse(%q) type: expected %q, got %q", tc.raw, tc.wantType, got)
			}
			if got := p.Pred.Source; got != tc.wantPredicate {
				t.Errorf("Parse(%q) predicate: expected %q, got %q", tc.raw, tc.wantPredicate, got)
			}
		})
	}
}

func TestParseIsTotal(t *testing.T) {
	// Garbage still produces a Parameter; the error is reported on the
	// predicate, not thrown.
	types := newTypes(t)
	p := constraint.Parse("@@@", types)
	if p.Types.Kind != typesystem.KindAny {
		t.Errorf("expected Any constraint for garbage input")
	}
	if p.Pred.Err() == nil {
		t.Errorf("expected predicate compile error for garbage input")
	}
	if p.Pred.Source != "@@@" {
		t.Errorf("expected source kept verbatim, got %q", p.Pred.Source)
	}
}

func TestPredicateEval(t *testing.T) {
	types := newTypes(t)

	testCases := []struct {
		raw      string
		bindings map[string]interface{}
		expected bool
	}{
		{"int & 3 <= a <= 17", map[string]interface{}{"a": 10}, true},
		{"int & 3 <= a <= 17", map[string]interface{}{"a": 42}, false},
		{"a > 1 & a < 5", map[string]interface{}{"a": 3}, true},
		{"a > 1 & a < 5", map[string]interface{}{"a": 7}, false},
		{"4 > 5", nil, false},
		{"", map[string]interface{}{"a": 1}, true},
		// Cross-parameter reference
		{"int & b > a", map[string]interface{}{"a": 1, "b": 2}, true},
	}
	for _, tc := range testCases {
		p := constraint.Parse(tc.raw, types)
		env := evaluator.NewEnvironment()
		for name, val := range tc.bindings {
			env.Set(name, evaluator.FromGo(val))
		}
		got, err := p.Pred.Eval(env)
		if err != nil {
			t.Errorf("eval %q: %v", tc.raw, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("eval %q with %v: expected %t, got %t", tc.raw, tc.bindings, tc.expected, got)
		}
	}
}

func TestPredicateEvalErrors(t *testing.T) {
	types := newTypes(t)

	// Unbound name
	p := constraint.Parse("a > 42", types)
	if _, err := p.Pred.Eval(evaluator.NewEnvironment()); err == nil {
		t.Errorf("expected error for unbound identifier")
	}

	// Non-boolean result
	p = constraint.Parse("a + 1", types)
	env := evaluator.NewEnvironment()
	env.Set("a", evaluator.FromGo(1))
	if _, err := p.Pred.Eval(env); err == nil {
		t.Errorf("expected error for non-boolean predicate result")
	}
}

func TestFreeVariables(t *testing.T) {
	types := newTypes(t)
	p := constraint.Parse("int & a < b && b < c", types)
	vars := p.Pred.FreeVariables()
	want := []string{"a", "b", "c"}
	if len(vars) != len(want) {
		t.Fatalf("expected %v, got %v", want, vars)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, vars)
		}
	}
}
