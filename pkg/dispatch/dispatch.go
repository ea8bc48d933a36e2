// Package dispatch implements a constrained multiple-dispatch registry:
// several implementations bind under one logical name, and calls resolve to
// exactly one of them by evaluating per-parameter type constraints and
// predicates against the actual argument values.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/predicated/dispatch/internal/constraint"
	"github.com/predicated/dispatch/internal/metrics"
	"github.com/predicated/dispatch/internal/typesystem"
)

// Dispatcher owns one registry, one type universe, one resolver strategy
// and one one-shot pending-name slot. It is an explicit constructible
// value; nothing here is process-global.
type Dispatcher struct {
	name    string
	id      uuid.UUID
	reg     *Registry
	types   *typesystem.Registry
	res     Resolver
	log     zerolog.Logger
	rec     metrics.Recorder
	mu      sync.Mutex // guards pending
	pending string     // explicit name armed for exactly the next Attach
}

// Option configures a Dispatcher at construction.
type Option func(*Dispatcher)

// WithResolver replaces the default first-satisfiable strategy.
func WithResolver(r Resolver) Option {
	return func(d *Dispatcher) { d.res = r }
}

// WithTypes supplies a pre-populated nominal type registry.
func WithTypes(reg *typesystem.Registry) Option {
	return func(d *Dispatcher) { d.types = reg }
}

// WithLogger attaches a zerolog logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// WithMetrics attaches a metrics recorder; the default is a no-op.
func WithMetrics(rec metrics.Recorder) Option {
	return func(d *Dispatcher) { d.rec = rec }
}

// New creates a Dispatcher for one logical dispatch domain.
func New(name string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		name:  name,
		id:    uuid.New(),
		reg:   NewRegistry(),
		types: typesystem.NewRegistry(),
		log:   zerolog.Nop(),
		rec:   metrics.NopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().
		Str("dispatcher", d.name).
		Str("instance", d.id.String()).
		Logger()
	if d.res == nil {
		d.res = &FirstSatisfiable{Types: d.types, Log: d.log}
	}
	return d
}

// Name returns the dispatcher's logical name.
func (d *Dispatcher) Name() string { return d.name }

// Registry exposes the underlying registry for read-only introspection.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// Types exposes the nominal type registry so callers can declare tags and
// map Go types before registration.
func (d *Dispatcher) Types() *typesystem.Registry { return d.types }

// Bind arms the one-shot explicit-name slot: the next Attach registers
// under name instead of the callable's own identifier, then the slot
// clears. Mirrors decorator-with-name registration.
func (d *Dispatcher) Bind(name string) error {
	if name == "" {
		return ErrMisuse
	}
	d.mu.Lock()
	d.pending = name
	d.mu.Unlock()
	return nil
}

// As returns a binder that attaches a single callable under name. It is
// Bind+Attach without the shared pending slot, for callers that want the
// explicit name and the callable in one expression.
func (d *Dispatcher) As(name string) func(Callable) error {
	return func(c Callable) error {
		if name == "" {
			return ErrMisuse
		}
		return d.attach(c, name)
	}
}

// Attach registers a callable. The bound name is the pending explicit name
// if one is armed (consumed by this call), else the callable's own
// identifier. With neither, registration intent is ambiguous: ErrMisuse.
func (d *Dispatcher) Attach(c Callable) error {
	d.mu.Lock()
	name := d.pending
	d.pending = ""
	d.mu.Unlock()

	if name == "" {
		name = c.Name
	}
	if name == "" {
		return ErrMisuse
	}
	return d.attach(c, name)
}

func (d *Dispatcher) attach(c Callable, name string) error {
	if c.Fn == nil {
		return fmt.Errorf("%w: callable %q has no function", ErrMisuse, name)
	}

	im := &Implementation{
		BoundName: name,
		FuncName:  c.Name,
		Params:    make([]BoundParam, len(c.Params)),
		fn:        c.Fn,
	}
	for i, p := range c.Params {
		parsed := constraint.Parse(p.Annotation, d.types)
		if err := parsed.Pred.Err(); err != nil {
			// Malformed predicates fail at registration, not per call.
			return fmt.Errorf("%w: parameter %q of %q: %v", ErrBadPredicate, p.Name, name, err)
		}
		im.Params[i] = BoundParam{Name: p.Name, Annotation: p.Annotation, Constraint: parsed}
	}

	d.reg.Append(name, im)
	d.rec.Registration(d.name, name)
	d.log.Info().
		Str("name", name).
		Str("func", c.Name).
		Int("params", len(c.Params)).
		Bool("rebound", im.Rebound()).
		Msg("implementation registered")
	return nil
}

// Lookup returns the ordered candidates for name, or NotBoundError.
func (d *Dispatcher) Lookup(name string) ([]*Implementation, error) {
	return d.reg.Candidates(name)
}

// Resolve picks the winning implementation for the given arguments without
// invoking it.
func (d *Dispatcher) Resolve(name string, args ...interface{}) (*Implementation, error) {
	cands, err := d.reg.Candidates(name)
	if err != nil {
		d.rec.Resolution(d.name, name, "not_bound")
		return nil, err
	}
	win := d.res.Resolve(cands, args)
	if win == nil {
		d.rec.Resolution(d.name, name, "no_match")
		return nil, &NoMatchError{Name: name, Candidates: len(cands)}
	}
	d.rec.Resolution(d.name, name, "matched")
	return win, nil
}

// Call resolves name against args and invokes the winner with the original
// arguments, returning its result unchanged. Re-entrant: an implementation
// may dispatch again on this or another Dispatcher.
func (d *Dispatcher) Call(name string, args ...interface{}) (interface{}, error) {
	win, err := d.Resolve(name, args...)
	if err != nil {
		return nil, err
	}
	d.log.Debug().
		Str("name", name).
		Str("func", win.FuncName).
		Msg("dispatching")
	return win.Invoke(args...)
}

var (
	defaultOnce sync.Once
	defaultDisp *Dispatcher
)

// Default returns a lazily created process-wide Dispatcher, offered as a
// boundary convenience only; libraries should construct their own.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDisp = New("default")
	})
	return defaultDisp
}
