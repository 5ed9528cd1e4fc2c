package lazy

import (
	"fmt"

	"github.com/coregx/rx/nfa"
	"github.com/coregx/rx/syntax"
)

// Superset describes a DFA state as the set of NFA states it stands for.
// Supersets are hash-consed by the cache: two lookups with the same
// members and the same NFA generation return the same allocation, so
// pointer equality implies set equality.
//
// Seq is the generation stamp of the NFA the members belong to; lookups
// validate it so a cached descriptor can never serve a later NFA that
// happens to reuse state ids.
type Superset struct {
	// States is the member list, sorted by state id.
	States []*nfa.State

	N   *nfa.NFA
	Seq uint64

	// FinalTag is nonzero when a member is accepting (the largest member
	// tag). CutTag is the largest member cut tag.
	FinalTag int
	CutTag   int

	// HasCSetEdges is true when any member consumes characters.
	HasCSetEdges bool

	// Super is the built superstate, nil while unbuilt or after
	// reclamation dropped it.
	Super *Superstate

	hash uint64
}

func (ss *Superset) String() string {
	return fmt.Sprintf("Superset(seq=%d, states=%d, final=%d)", ss.Seq, len(ss.States), ss.FinalTag)
}

// Opcode selects the slow-path dispatch of a transition cell.
type Opcode uint8

const (
	// OpcodeCacheMiss: the transition has not been computed (or its
	// destination was reclaimed); compute it and retry the same byte.
	// This is the zero value so fresh tables need no initialization.
	OpcodeCacheMiss Opcode = iota

	// OpcodeBacktrack: no future exists on this byte; the walk is dead.
	OpcodeBacktrack

	// OpcodeBacktrackPoint: several distinct futures exist; the solver
	// chooses among the super-edge's options.
	OpcodeBacktrackPoint

	// OpcodeSideEffects: exactly one future exists but it crosses side
	// effects; the frame carries the distinct future to apply.
	OpcodeSideEffects
)

// String returns a short name for the opcode.
func (o Opcode) String() string {
	switch o {
	case OpcodeCacheMiss:
		return "CacheMiss"
	case OpcodeBacktrack:
		return "Backtrack"
	case OpcodeBacktrackPoint:
		return "BacktrackPoint"
	case OpcodeSideEffects:
		return "SideEffects"
	default:
		return fmt.Sprintf("UnknownOpcode(%d)", o)
	}
}

// Frame is one transition-table cell, the engine's instruction frame.
// The fast path branches on Data: when non-nil the walk jumps straight
// to that superstate; otherwise Op selects the slow path and Future or
// Edge carries its operand.
type Frame struct {
	Data   *Superstate
	Future *DistinctFuture
	Edge   *SuperEdge
	Op     Opcode
}

// SuperEdge groups the alternatives out of one superstate on the bytes
// of its set.
type SuperEdge struct {
	CSet    *syntax.Set
	Options []*DistinctFuture
}

// DistinctFuture is one alternative out of a source superstate on one
// byte: the destination superset, the built destination when it exists,
// and the side effects the alternative crosses.
type DistinctFuture struct {
	Source  *Superstate
	Byte    byte
	DestSet *Superset
	Dest    *Superstate
	Effects *nfa.EffectList
}

// Superstate is one built DFA state: a transition table indexed by input
// byte plus the bookkeeping reclamation needs. Superstates are owned by
// the cache; a nonzero lock count protects one from reclamation while a
// walk stands on it.
type Superstate struct {
	Set *Superset

	Locks int

	// Semifree marks a state demoted by the first reclamation stage: it
	// still exists, but incoming fast paths have been disabled so the
	// next entry re-dispatches and revives it.
	Semifree bool

	// Incoming lists the distinct futures targeting this state, for
	// reverse cleanup on demotion and drop. Outgoing lists this state's
	// own resolved futures.
	Incoming []*DistinctFuture
	Outgoing []*DistinctFuture

	// Edges are the multi-future super-edges out of this state.
	Edges []*SuperEdge

	Table []Frame

	prev, next *Superstate
}

func (s *Superstate) String() string {
	return fmt.Sprintf("Superstate(%v, locks=%d, semifree=%v)", s.Set, s.Locks, s.Semifree)
}

// lruQueue is an intrusive doubly-linked recency queue over superstates.
// The head is the most recently used end.
type lruQueue struct {
	head, tail *Superstate
	size       int
}

func (q *lruQueue) pushFront(s *Superstate) {
	s.prev = nil
	s.next = q.head
	if q.head != nil {
		q.head.prev = s
	}
	q.head = s
	if q.tail == nil {
		q.tail = s
	}
	q.size++
}

func (q *lruQueue) remove(s *Superstate) {
	if s.prev != nil {
		s.prev.next = s.next
	} else {
		q.head = s.next
	}
	if s.next != nil {
		s.next.prev = s.prev
	} else {
		q.tail = s.prev
	}
	s.prev = nil
	s.next = nil
	q.size--
}

func (q *lruQueue) moveFront(s *Superstate) {
	if q.head == s {
		return
	}
	q.remove(s)
	q.pushFront(s)
}

// tailVictim returns the least recently used state that is neither
// locked nor the protected one, or nil.
func (q *lruQueue) tailVictim(protect *Superstate) *Superstate {
	for s := q.tail; s != nil; s = s.prev {
		if s.Locks == 0 && s != protect {
			return s
		}
	}
	return nil
}
