package dispatch

import (
	"github.com/rs/zerolog"

	"github.com/predicated/dispatch/internal/evaluator"
	"github.com/predicated/dispatch/internal/typesystem"
)

// Resolver selects one candidate from an ordered list given the actual
// arguments, or nil when none satisfies. Strategies are pluggable per
// dispatcher; the default is declaration-order first-satisfiable.
type Resolver interface {
	Resolve(candidates []*Implementation, args []interface{}) *Implementation
}

// FirstSatisfiable scans candidates strictly in registration order and
// returns the first whose arity, per-parameter type constraints and
// predicates all hold. There is deliberately no ranking: once union types
// exist, "closeness" between a concrete type and a constraint set has no
// total order that stays coherent across parameters, so declaration order
// is the only predictable policy.
type FirstSatisfiable struct {
	Types *typesystem.Registry
	Log   zerolog.Logger
}

func (fs *FirstSatisfiable) Resolve(candidates []*Implementation, args []interface{}) *Implementation {
	for i, cand := range candidates {
		if fs.satisfied(cand, args) {
			fs.Log.Debug().
				Int("candidate", i).
				Str("func", cand.FuncName).
				Msg("candidate satisfied")
			return cand
		}
	}
	return nil
}

func (fs *FirstSatisfiable) satisfied(cand *Implementation, args []interface{}) bool {
	if len(cand.Params) != len(args) {
		return false
	}

	// Type constraints first: they are cheap and make the argument binding
	// well-typed before any predicate runs.
	for i, p := range cand.Params {
		tag := fs.Types.TagOf(args[i])
		if !p.Constraint.Types.Satisfied(fs.Types, tag) {
			return false
		}
	}

	// Predicates see the full binding, so one parameter's predicate may
	// reference another parameter of the same call.
	env := evaluator.NewEnvironment()
	for i, p := range cand.Params {
		env.Set(p.Name, evaluator.FromGo(args[i]))
	}
	for _, p := range cand.Params {
		ok, err := p.Constraint.Pred.Eval(env)
		if err != nil {
			// An ill-typed predicate against these particular arguments
			// means this candidate does not apply, not that the call fails.
			fs.Log.Debug().
				Str("func", cand.FuncName).
				Str("param", p.Name).
				Err(err).
				Msg("predicate evaluation failed; candidate skipped")
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}
