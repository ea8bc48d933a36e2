package cli

import (
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/predicated/dispatch/internal/typesystem"
	"github.com/predicated/dispatch/pkg/dispatch"
)

// NewDemoDispatcher builds the primality demo: two implementations of
// isPrime bound under one name, separated only by range predicates, plus a
// rejection of non-candidates. The point is not the number theory; it is
// that the range split lives in annotations, not in branches.
func NewDemoDispatcher(types *typesystem.Registry, log zerolog.Logger) (*dispatch.Dispatcher, error) {
	d := dispatch.New("primes",
		dispatch.WithTypes(types),
		dispatch.WithLogger(log),
	)

	callables := []dispatch.Callable{
		{
			// Small range: trial division is cheaper than setting up
			// Miller-Rabin witnesses.
			Name:   "trialDivision",
			Params: []dispatch.Param{{Name: "n", Annotation: "int & 1 < n && n < 65536"}},
			Fn: func(args ...interface{}) (interface{}, error) {
				n := toInt64(args[0])
				for f := int64(2); f*f <= n; f++ {
					if n%f == 0 {
						return false, nil
					}
				}
				return true, nil
			},
		},
		{
			Name:   "millerRabin",
			Params: []dispatch.Param{{Name: "n", Annotation: "int & n >= 65536"}},
			Fn: func(args ...interface{}) (interface{}, error) {
				n := toInt64(args[0])
				// ProbablyPrime(0) is deterministic below 2^64.
				return big.NewInt(n).ProbablyPrime(0), nil
			},
		},
		{
			Name:   "notApplicable",
			Params: []dispatch.Param{{Name: "n", Annotation: "int & n <= 1"}},
			Fn: func(args ...interface{}) (interface{}, error) {
				return false, nil
			},
		},
	}

	for _, c := range callables {
		if err := d.Bind("isPrime"); err != nil {
			return nil, err
		}
		if err := d.Attach(c); err != nil {
			return nil, fmt.Errorf("register %s: %w", c.Name, err)
		}
	}
	return d, nil
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}
