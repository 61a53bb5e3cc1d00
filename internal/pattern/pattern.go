package pattern

import (
	"fmt"
	"sort"
)

// Mixed is the name of the cycling pattern.
const Mixed = "mixed"

// Named patterns map to a fixed result size per call. The mixed pattern
// cycles through mixedSizes by call index, so a long run has a
// reproducible, evenly distributed shape.
var (
	fixedSizes = map[string]int{
		"single": 1,
		"small":  10,
		"medium": 50,
		"large":  100,
		"xlarge": 250,
		"huge":   500,
		"max":    1000,
	}

	defaultMixed = []int{1, 10, 50, 100, 250, 500, 1000}
)

// UnknownPatternError reports a pattern name that is not registered.
type UnknownPatternError struct {
	Name string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown query pattern %q (available: %v)", e.Name, Names())
}

// Resolver maps a pattern name and a zero-based call index to the
// result-size parameter for that call.
type Resolver struct {
	mixed []int
}

func NewResolver() *Resolver {
	return &Resolver{mixed: defaultMixed}
}

// NewResolverWithMixed overrides the size cycle used by the mixed pattern.
func NewResolverWithMixed(sizes []int) *Resolver {
	if len(sizes) == 0 {
		sizes = defaultMixed
	}
	return &Resolver{mixed: sizes}
}

// Resolve returns the result size for the given call index. Deterministic:
// the same (name, index) always yields the same size.
func (r *Resolver) Resolve(name string, index int) (int, error) {
	if name == Mixed {
		return r.mixed[index%len(r.mixed)], nil
	}
	if size, ok := fixedSizes[name]; ok {
		return size, nil
	}
	return 0, &UnknownPatternError{Name: name}
}

// Validate checks the pattern name without resolving a call.
func (r *Resolver) Validate(name string) error {
	_, err := r.Resolve(name, 0)
	return err
}

// Names lists all registered pattern names, sorted, mixed last.
func Names() []string {
	names := make([]string, 0, len(fixedSizes)+1)
	for name := range fixedSizes {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, Mixed)
}
