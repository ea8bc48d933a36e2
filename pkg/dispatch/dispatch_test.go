package dispatch_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/predicated/dispatch/internal/typesystem"
	"github.com/predicated/dispatch/pkg/dispatch"
)

func constant(v interface{}) func(...interface{}) (interface{}, error) {
	return func(...interface{}) (interface{}, error) { return v, nil }
}

func classifier(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	d := dispatch.New("classify")

	if err := d.Attach(dispatch.Callable{
		Name:   "small",
		Params: []dispatch.Param{{Name: "n", Annotation: "int & n < 100"}},
		Fn:     constant("small"),
	}); err != nil {
		t.Fatalf("attach small: %v", err)
	}
	if err := d.Attach(dispatch.Callable{
		Name:   "big",
		Params: []dispatch.Param{{Name: "n", Annotation: "int & n >= 100"}},
		Fn:     constant("big"),
	}); err != nil {
		t.Fatalf("attach big: %v", err)
	}

	if err := d.Bind("classify"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := d.Attach(dispatch.Callable{
		Name:   "small",
		Params: []dispatch.Param{{Name: "n", Annotation: "int & n < 100"}},
		Fn:     constant("small"),
	}); err != nil {
		t.Fatalf("attach classify/small: %v", err)
	}
	if err := d.Bind("classify"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := d.Attach(dispatch.Callable{
		Name:   "big",
		Params: []dispatch.Param{{Name: "n", Annotation: "int & n >= 100"}},
		Fn:     constant("big"),
	}); err != nil {
		t.Fatalf("attach classify/big: %v", err)
	}
	return d
}

func TestCallPicksBySatisfaction(t *testing.T) {
	d := classifier(t)

	testCases := []struct {
		name     string
		arg      interface{}
		expected string
	}{
		{"below_threshold", 42, "small"},
		{"at_threshold", 100, "big"},
		{"above_threshold", 5000, "big"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.Call("classify", tc.arg)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if got != tc.expected {
				t.Errorf("classify(%v): expected %q, got %q", tc.arg, tc.expected, got)
			}
		})
	}
}

func TestRegistrationOrderWins(t *testing.T) {
	// Two candidates whose constraints overlap on a = 10: the one attached
	// first answers, regardless of how narrow the other one is.
	d := dispatch.New("order")
	attach := func(funcName, annotation string, result interface{}) {
		t.Helper()
		if err := d.Bind("pick"); err != nil {
			t.Fatalf("bind: %v", err)
		}
		err := d.Attach(dispatch.Callable{
			Name:   funcName,
			Params: []dispatch.Param{{Name: "a", Annotation: annotation}},
			Fn:     constant(result),
		})
		if err != nil {
			t.Fatalf("attach %s: %v", funcName, err)
		}
	}
	attach("wide", "int & a > 0", "wide")
	attach("narrow", "int & a == 10", "narrow")

	got, err := d.Call("pick", 10)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "wide" {
		t.Errorf("expected earlier registration to win, got %q", got)
	}

	// Reversed order on a fresh dispatcher flips the winner.
	d2 := dispatch.New("order2")
	d2.Bind("pick")
	d2.Attach(dispatch.Callable{
		Name:   "narrow",
		Params: []dispatch.Param{{Name: "a", Annotation: "int & a == 10"}},
		Fn:     constant("narrow"),
	})
	d2.Bind("pick")
	d2.Attach(dispatch.Callable{
		Name:   "wide",
		Params: []dispatch.Param{{Name: "a", Annotation: "int & a > 0"}},
		Fn:     constant("wide"),
	})
	got, err = d2.Call("pick", 10)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "narrow" {
		t.Errorf("expected earlier registration to win, got %q", got)
	}
}

func TestBindIsOneShot(t *testing.T) {
	d := dispatch.New("oneshot")
	if err := d.Bind("renamed"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := d.Attach(dispatch.Callable{Name: "first", Fn: constant(1)}); err != nil {
		t.Fatalf("attach: %v", err)
	}
	// The pending slot was consumed; this one lands under its own name.
	if err := d.Attach(dispatch.Callable{Name: "second", Fn: constant(2)}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if _, err := d.Lookup("renamed"); err != nil {
		t.Errorf("expected first callable under explicit name: %v", err)
	}
	if _, err := d.Lookup("second"); err != nil {
		t.Errorf("expected second callable under its own name: %v", err)
	}
	if _, err := d.Lookup("first"); err == nil {
		t.Errorf("first callable must not also appear under its own name")
	}
}

func TestAttachErrors(t *testing.T) {
	d := dispatch.New("errors")

	if err := d.Attach(dispatch.Callable{Fn: constant(1)}); !errors.Is(err, dispatch.ErrMisuse) {
		t.Errorf("anonymous callable without pending name: expected ErrMisuse, got %v", err)
	}
	if err := d.Attach(dispatch.Callable{Name: "noBody"}); !errors.Is(err, dispatch.ErrMisuse) {
		t.Errorf("callable without function: expected ErrMisuse, got %v", err)
	}
	if err := d.Bind(""); !errors.Is(err, dispatch.ErrMisuse) {
		t.Errorf("empty explicit name: expected ErrMisuse, got %v", err)
	}

	err := d.Attach(dispatch.Callable{
		Name:   "broken",
		Params: []dispatch.Param{{Name: "a", Annotation: "a >"}},
		Fn:     constant(1),
	})
	if !errors.Is(err, dispatch.ErrBadPredicate) {
		t.Errorf("malformed predicate: expected ErrBadPredicate, got %v", err)
	}
	// A failed registration leaves nothing behind.
	if _, err := d.Lookup("broken"); err == nil {
		t.Errorf("failed registration must not bind")
	}
}

func TestLookupAndCallErrors(t *testing.T) {
	d := classifier(t)

	_, err := d.Call("nosuch", 1)
	var nb *dispatch.NotBoundError
	if !errors.As(err, &nb) || nb.Name != "nosuch" {
		t.Errorf("unbound name: expected NotBoundError, got %v", err)
	}

	// Bound name, but a string satisfies neither candidate's int constraint.
	_, err = d.Call("classify", "blah")
	var nm *dispatch.NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("unsatisfiable arguments: expected NoMatchError, got %v", err)
	}
	if nm.Name != "classify" || nm.Candidates != 2 {
		t.Errorf("NoMatchError fields: got %+v", nm)
	}

	// Arity mismatch is a no-match, not a panic.
	if _, err := d.Call("classify", 1, 2); !errors.As(err, &nm) {
		t.Errorf("arity mismatch: expected NoMatchError, got %v", err)
	}
}

func TestDerivedTypeDispatch(t *testing.T) {
	type Celsius float64

	types := typesystem.NewRegistry()
	if err := types.Derive("Celsius", typesystem.TagFloat); err != nil {
		t.Fatalf("derive: %v", err)
	}
	if err := types.MapGoType(Celsius(0), "Celsius"); err != nil {
		t.Fatalf("map: %v", err)
	}

	d := dispatch.New("temps", dispatch.WithTypes(types))
	d.Bind("describe")
	d.Attach(dispatch.Callable{
		Name:   "freezing",
		Params: []dispatch.Param{{Name: "t", Annotation: "Celsius & t <= 0"}},
		Fn:     constant("freezing"),
	})
	d.Bind("describe")
	d.Attach(dispatch.Callable{
		Name:   "anyFloat",
		Params: []dispatch.Param{{Name: "t", Annotation: "float"}},
		Fn:     constant("some float"),
	})

	got, err := d.Call("describe", Celsius(-4))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "freezing" {
		t.Errorf("expected Celsius candidate, got %q", got)
	}

	// A Celsius satisfies the plain float constraint through the is-a chain
	// once the first candidate's predicate fails.
	got, err = d.Call("describe", Celsius(20))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "some float" {
		t.Errorf("expected float fallback via subtype, got %q", got)
	}

	// But a plain float never satisfies the Celsius constraint.
	got, err = d.Call("describe", -4.0)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "some float" {
		t.Errorf("plain float must not match the Celsius candidate, got %q", got)
	}
}

func TestDeclarationOrderBeatsSpecificity(t *testing.T) {
	// A generic (int, int) candidate registered before a more specific
	// (SpecialInt, int) one still wins for SpecialInt arguments. That is the
	// point of first-satisfiable: no specificity ranking, ever.
	type SpecialInt int

	types := typesystem.NewRegistry()
	if err := types.Derive("SpecialInt", typesystem.TagInt); err != nil {
		t.Fatalf("derive: %v", err)
	}
	if err := types.MapGoType(SpecialInt(0), "SpecialInt"); err != nil {
		t.Fatalf("map: %v", err)
	}

	d := dispatch.New("specificity", dispatch.WithTypes(types))
	d.Bind("combine")
	d.Attach(dispatch.Callable{
		Name: "generic",
		Params: []dispatch.Param{
			{Name: "a", Annotation: "int"},
			{Name: "b", Annotation: "int"},
		},
		Fn: constant("A"),
	})
	d.Bind("combine")
	d.Attach(dispatch.Callable{
		Name: "special",
		Params: []dispatch.Param{
			{Name: "a", Annotation: "SpecialInt"},
			{Name: "b", Annotation: "int"},
		},
		Fn: constant("B"),
	})

	got, err := d.Call("combine", SpecialInt(13), 3)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "A" {
		t.Errorf("expected the earlier generic candidate, got %q", got)
	}

	// A plain int on the first slot can only satisfy the generic candidate.
	got, err = d.Call("combine", 13, 3)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "A" {
		t.Errorf("expected generic candidate for plain ints, got %q", got)
	}
}

func TestPredicateErrorSkipsCandidate(t *testing.T) {
	// The first candidate's predicate is ill-typed for string arguments;
	// that skips the candidate instead of failing the call.
	d := dispatch.New("skip")
	d.Bind("f")
	d.Attach(dispatch.Callable{
		Name:   "numericOnly",
		Params: []dispatch.Param{{Name: "a", Annotation: "a > 42"}},
		Fn:     constant("numeric"),
	})
	d.Bind("f")
	d.Attach(dispatch.Callable{
		Name:   "anything",
		Params: []dispatch.Param{{Name: "a", Annotation: ""}},
		Fn:     constant("fallback"),
	})

	got, err := d.Call("f", "blah")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "fallback" {
		t.Errorf("expected ill-typed predicate to skip, got %q", got)
	}

	got, err = d.Call("f", 100)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "numeric" {
		t.Errorf("expected numeric candidate for 100, got %q", got)
	}
}

func TestCrossParameterPredicate(t *testing.T) {
	d := dispatch.New("cross")
	d.Bind("range")
	d.Attach(dispatch.Callable{
		Name: "wellFormed",
		Params: []dispatch.Param{
			{Name: "lo", Annotation: "int"},
			{Name: "hi", Annotation: "int & hi > lo"},
		},
		Fn: constant("ok"),
	})

	if _, err := d.Call("range", 1, 10); err != nil {
		t.Errorf("well-formed range: %v", err)
	}
	if _, err := d.Call("range", 10, 1); err == nil {
		t.Errorf("inverted range must not match")
	}
}

func TestResolveDoesNotInvoke(t *testing.T) {
	called := false
	d := dispatch.New("resolve")
	d.Bind("f")
	d.Attach(dispatch.Callable{
		Name:   "impl",
		Params: []dispatch.Param{{Name: "a", Annotation: "int"}},
		Fn: func(...interface{}) (interface{}, error) {
			called = true
			return nil, nil
		},
	})

	win, err := d.Resolve("f", 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if called {
		t.Errorf("Resolve must not invoke the implementation")
	}
	if win.FuncName != "impl" {
		t.Errorf("expected winner impl, got %q", win.FuncName)
	}
	if _, err := win.Invoke(1); err != nil || !called {
		t.Errorf("Invoke should run the implementation")
	}
}

func TestImplementationErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	d := dispatch.New("errs")
	d.Bind("f")
	d.Attach(dispatch.Callable{
		Name:   "failing",
		Params: []dispatch.Param{{Name: "a", Annotation: ""}},
		Fn:     func(...interface{}) (interface{}, error) { return nil, boom },
	})
	if _, err := d.Call("f", 1); !errors.Is(err, boom) {
		t.Errorf("expected implementation error to propagate, got %v", err)
	}
}

func TestAsBinder(t *testing.T) {
	d := dispatch.New("as")
	bind := d.As("greet")
	if err := bind(dispatch.Callable{Name: "hello", Fn: constant("hi")}); err != nil {
		t.Fatalf("as-bind: %v", err)
	}
	if err := bind(dispatch.Callable{Name: "hola", Fn: constant("hola")}); err != nil {
		t.Fatalf("as-bind: %v", err)
	}
	cands, err := d.Lookup("greet")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(cands) != 2 {
		t.Errorf("expected 2 candidates under greet, got %d", len(cands))
	}
}

func TestConcurrentRegistrationAndCalls(t *testing.T) {
	d := dispatch.New("concurrent")
	d.Bind("f")
	if err := d.Attach(dispatch.Callable{
		Name:   "base",
		Params: []dispatch.Param{{Name: "n", Annotation: "int"}},
		Fn:     constant("base"),
	}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			bind := d.As("f")
			_ = bind(dispatch.Callable{
				Name:   fmt.Sprintf("extra%d", i),
				Params: []dispatch.Param{{Name: "n", Annotation: "int & n < 0"}},
				Fn:     constant("extra"),
			})
		}(i)
		go func() {
			defer wg.Done()
			if _, err := d.Call("f", 7); err != nil {
				t.Errorf("call during registration: %v", err)
			}
		}()
	}
	wg.Wait()

	cands, err := d.Lookup("f")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(cands) != 9 {
		t.Errorf("expected 9 candidates after concurrent attach, got %d", len(cands))
	}
}
