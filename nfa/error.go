package nfa

import "errors"

var (
	// ErrBadTree indicates an expression tree node the builder has no
	// lowering for reached the NFA layer.
	ErrBadTree = errors.New("nfa: malformed expression tree")

	// ErrStaleGeneration indicates a lookup presented states from an NFA
	// whose generation stamp the cache no longer recognizes.
	ErrStaleGeneration = errors.New("nfa: stale NFA generation")
)
