// Package nfa provides the Thompson NFA layer of the engine: construction
// from expression trees, and the per-state "possible futures" closure the
// lazy DFA is built from.
//
// Beyond the classical character-set and epsilon edges, an NFA here has a
// third edge kind carrying a side effect: a zero-width construct whose
// check the solver owns (anchors, word boundaries, back-references). The
// closure engine partitions each state's zero-width reachability by the
// sequence of side effects crossed, and the DFA layer turns that partition
// into superstate transitions.
package nfa

import (
	"fmt"

	"github.com/coregx/rx/syntax"
)

// Effect identifies one side effect crossed on a zero-width path.
type Effect struct {
	Kind syntax.ContextKind

	// N is the back-reference index when Kind is CtxBackRef.
	N int
}

// EffectList is an immutable cons list of effects, hash-consed per
// universe so that pointer equality implies list equality. A nil
// *EffectList is the empty list.
type EffectList struct {
	Head Effect
	Tail *EffectList

	// id orders interned lists deterministically within a universe.
	id int
}

// ID returns the list's intern id. The empty list is 0.
func (l *EffectList) ID() int {
	if l == nil {
		return 0
	}
	return l.id
}

// Slice returns the effects front to back. For tests and debugging.
func (l *EffectList) Slice() []Effect {
	var out []Effect
	for ; l != nil; l = l.Tail {
		out = append(out, l.Head)
	}
	return out
}

// effectListLess is the total order on interned lists: the empty list
// sorts first, then by intern id.
func effectListLess(a, b *EffectList) bool {
	return a.ID() < b.ID()
}

// EdgeKind identifies what an NFA edge does.
type EdgeKind uint8

const (
	// EdgeCharSet consumes one character from a set.
	EdgeCharSet EdgeKind = iota

	// EdgeEpsilon is zero-width with no observable effect.
	EdgeEpsilon

	// EdgeSide is zero-width but records a side effect.
	EdgeSide
)

// Edge is one outgoing NFA transition.
type Edge struct {
	Kind   EdgeKind
	Set    *syntax.Set // EdgeCharSet only
	Effect Effect      // EdgeSide only
	Dest   *State
}

// State is one NFA state.
type State struct {
	// ID is the state's index in its NFA, stable for the NFA's lifetime.
	ID int

	Edges []*Edge

	// FinalTag is nonzero on accepting states; the terminal state of a
	// build gets tag 1.
	FinalTag int

	// CutTag is nonzero on states introduced by a Cut node.
	CutTag int

	IsStart bool

	// HasCSetEdges is true when at least one outgoing edge consumes a
	// character, which makes the state a destination the closure engine
	// stops at.
	HasCSetEdges bool

	futures     []*PossibleFuture
	futuresDone bool
	onPath      bool // closure DFS cycle mark
}

// addEdge appends an outgoing edge and keeps HasCSetEdges current.
func (s *State) addEdge(e *Edge) {
	s.Edges = append(s.Edges, e)
	if e.Kind == EdgeCharSet {
		s.HasCSetEdges = true
	}
}

// NFA is one built automaton. Seq is the universe's generation stamp; the
// DFA layer validates it on every superset lookup so a cache entry can
// never outlive the NFA it was built from.
type NFA struct {
	U        *Universe
	States   []*State
	Start    *State
	End      *State
	Seq      uint64
	CSetSize int
}

func (n *NFA) String() string {
	return fmt.Sprintf("NFA(seq=%d, states=%d)", n.Seq, len(n.States))
}

// PossibleFuture is one equivalence class of zero-width paths out of a
// state: the hash-consed side-effect sequence crossed, and the union of
// destinations reached under it. Destinations are sorted by state id.
type PossibleFuture struct {
	Effects *EffectList
	Dests   []*State
}

// Universe owns the hash-cons tables shared by every NFA and compiled
// pattern built in it: side-effect lists, and canonical expression trees.
// It also hands out the generation stamps the DFA layer validates.
//
// A universe is single-writer: the caller guards it when patterns from
// different goroutines share one.
type Universe struct {
	effects map[effectKey]*EffectList
	nextEff int
	trees   map[uint64][]*syntax.Node
	nextSeq uint64
}

type effectKey struct {
	head Effect
	tail *EffectList
}

// NewUniverse creates an empty universe.
func NewUniverse() *Universe {
	return &Universe{
		effects: make(map[effectKey]*EffectList),
		trees:   make(map[uint64][]*syntax.Node),
	}
}

// ConsEffect returns the interned list (e . tail). Interning makes effect
// lists comparable by pointer and cheap to order.
func (u *Universe) ConsEffect(e Effect, tail *EffectList) *EffectList {
	key := effectKey{head: e, tail: tail}
	if l, ok := u.effects[key]; ok {
		return l
	}
	u.nextEff++
	l := &EffectList{Head: e, Tail: tail, id: u.nextEff}
	u.effects[key] = l
	return l
}

// InternEffects interns a front-to-back effect sequence.
func (u *Universe) InternEffects(effects []Effect) *EffectList {
	var l *EffectList
	for i := len(effects) - 1; i >= 0; i-- {
		l = u.ConsEffect(effects[i], l)
	}
	return l
}

// InternTree returns the canonical node for a structurally equal tree
// already known to the universe, or records n as canonical. Two compiled
// patterns presenting equal sub-trees therefore share one DFA.
func (u *Universe) InternTree(n *syntax.Node) *syntax.Node {
	h := n.StructuralHash(0)
	for _, c := range u.trees[h] {
		if c.StructuralEqual(n) {
			return c
		}
	}
	u.trees[h] = append(u.trees[h], n)
	return n
}

// nextGeneration stamps a freshly built NFA.
func (u *Universe) nextGeneration() uint64 {
	u.nextSeq++
	return u.nextSeq
}
