package lazy

import "fmt"

// ErrorKind classifies DFA-layer failures.
type ErrorKind uint8

const (
	// InvalidConfig indicates the configuration cannot hold even one
	// superstate.
	InvalidConfig ErrorKind = iota

	// StaleGeneration indicates a superset lookup presented states from
	// an NFA generation the cache no longer recognizes.
	StaleGeneration

	// NeedSolver indicates a pure fit ran into a multi-future transition;
	// only the solver can choose among the options.
	NeedSolver
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case InvalidConfig:
		return "InvalidConfig"
	case StaleGeneration:
		return "StaleGeneration"
	case NeedSolver:
		return "NeedSolver"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// DFAError is a failure in the superstate cache or match engine.
type DFAError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *DFAError) Error() string {
	return e.Message
}

// Is matches errors of the same kind.
func (e *DFAError) Is(target error) bool {
	t, ok := target.(*DFAError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ErrInvalidConfig is returned by NewCache for an unusable configuration.
var ErrInvalidConfig = &DFAError{
	Kind:    InvalidConfig,
	Message: "lazy: byte budget cannot hold a single superstate",
}

// ErrStaleGeneration is returned when a lookup crosses NFA generations.
var ErrStaleGeneration = &DFAError{
	Kind:    StaleGeneration,
	Message: "lazy: superset from a stale NFA generation",
}

// ErrNeedSolver is returned by FitAt when the walk reaches a transition
// with more than one distinct future.
var ErrNeedSolver = &DFAError{
	Kind:    NeedSolver,
	Message: "lazy: transition has multiple futures; solver must choose",
}
