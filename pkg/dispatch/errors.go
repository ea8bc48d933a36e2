package dispatch

import (
	"errors"
	"fmt"
)

// ErrMisuse is returned when Attach can determine no dispatch name: the
// callable carries no identifier and no explicit name is pending. Failing
// fast here beats silently registering an unreachable entry.
var ErrMisuse = errors.New("dispatch: attach needs a callable name or a pending explicit name")

// ErrBadPredicate wraps predicate compilation failures at registration time.
var ErrBadPredicate = errors.New("dispatch: malformed predicate")

// NotBoundError reports a lookup for a name with zero implementations.
type NotBoundError struct {
	Name string
}

func (e *NotBoundError) Error() string {
	return fmt.Sprintf("dispatch: no function bound to %q", e.Name)
}

// NoMatchError reports that candidates exist for a name but none satisfied
// the type and predicate constraints against the supplied arguments.
type NoMatchError struct {
	Name       string
	Candidates int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("dispatch: no implementation of %q matches the given arguments (%d candidates)", e.Name, e.Candidates)
}
