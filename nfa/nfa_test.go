package nfa

import (
	"testing"

	"github.com/coregx/rx/syntax"
)

func parseTree(t *testing.T, pattern string) *syntax.Node {
	t.Helper()
	n, groups, err := syntax.Parse([]byte(pattern), syntax.PosixExtended, 256, nil)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	syntax.Analyze(n, groups, 256)
	return n
}

func build(t *testing.T, pattern string) *NFA {
	t.Helper()
	n, err := Build(NewUniverse(), parseTree(t, pattern), 256)
	if err != nil {
		t.Fatalf("Build(%q) failed: %v", pattern, err)
	}
	return n
}

func TestBuildLiteral(t *testing.T) {
	n := build(t, "ab")
	if n.Start == nil || n.End == nil {
		t.Fatal("missing start or end state")
	}
	if !n.Start.IsStart {
		t.Error("start state not tagged")
	}
	if n.End.FinalTag != 1 {
		t.Errorf("end FinalTag = %d, want 1", n.End.FinalTag)
	}
	// Two byte edges end to end.
	if !n.Start.HasCSetEdges {
		t.Error("start must have a charset edge")
	}
	mid := n.Start.Edges[0].Dest
	if !mid.HasCSetEdges || mid.Edges[0].Dest != n.End {
		t.Error("literal chain does not reach the end state")
	}
}

func TestBuildGenerations(t *testing.T) {
	u := NewUniverse()
	tree := parseTree(t, "a")
	a, err := Build(u, tree, 256)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(u, tree, 256)
	if err != nil {
		t.Fatal(err)
	}
	if a.Seq == b.Seq {
		t.Error("two builds must get distinct generation stamps")
	}
}

func TestBuildCut(t *testing.T) {
	n := build(t, "[[:cut 5:]]ab")
	var cut *State
	for _, s := range n.States {
		if s.CutTag != 0 {
			cut = s
		}
	}
	if cut == nil {
		t.Fatal("no cut state built")
	}
	if cut.CutTag != 5 {
		t.Errorf("CutTag = %d, want 5", cut.CutTag)
	}
}

func TestBuildContextSideEdge(t *testing.T) {
	n := build(t, "^a")
	found := false
	for _, s := range n.States {
		for _, e := range s.Edges {
			if e.Kind == EdgeSide {
				found = true
				if e.Effect.Kind != syntax.CtxBeginLine {
					t.Errorf("side effect = %v, want BeginLine", e.Effect.Kind)
				}
			}
		}
	}
	if !found {
		t.Error("context node must lower to a side edge")
	}
}

func TestPossibleFuturesPlain(t *testing.T) {
	n := build(t, "ab|ac")
	futures := n.PossibleFutures(n.Start)
	if len(futures) != 1 {
		t.Fatalf("futures = %d, want 1 (no side effects)", len(futures))
	}
	if futures[0].Effects != nil {
		t.Error("plain pattern has the empty effect list")
	}
	if len(futures[0].Dests) == 0 {
		t.Error("start closure reaches no hard states")
	}
	// Cached: second call returns the identical slice.
	again := n.PossibleFutures(n.Start)
	if &again[0] != &futures[0] {
		t.Error("futures must be computed once and cached")
	}
}

func TestPossibleFuturesPartitionBySideEffects(t *testing.T) {
	// ^a|b: one future crosses the BeginLine side effect, one does not.
	n := build(t, "^a|b")
	futures := n.PossibleFutures(n.Start)
	if len(futures) != 2 {
		t.Fatalf("futures = %d, want 2", len(futures))
	}
	// The empty effect list sorts first.
	if futures[0].Effects != nil {
		t.Error("empty effect list must sort first")
	}
	effs := futures[1].Effects.Slice()
	if len(effs) != 1 || effs[0].Kind != syntax.CtxBeginLine {
		t.Errorf("second future effects = %v, want [BeginLine]", effs)
	}
}

func TestPossibleFuturesMergeByEffects(t *testing.T) {
	// Both branches cross the same (empty) effects; destinations merge
	// into one future.
	n := build(t, "a|b")
	futures := n.PossibleFutures(n.Start)
	if len(futures) != 1 {
		t.Fatalf("futures = %d, want 1", len(futures))
	}
}

func TestEffectListInterning(t *testing.T) {
	u := NewUniverse()
	e := Effect{Kind: syntax.CtxWordStart}
	a := u.InternEffects([]Effect{e})
	b := u.InternEffects([]Effect{e})
	if a != b {
		t.Error("equal effect sequences must intern to one list")
	}
	c := u.InternEffects([]Effect{e, {Kind: syntax.CtxWordEnd}})
	if c == a {
		t.Error("different sequences must not share a list")
	}
	if a.ID() == 0 {
		t.Error("non-empty list must have a nonzero id")
	}
	var nilList *EffectList
	if nilList.ID() != 0 {
		t.Error("empty list id must be 0")
	}
}

func TestInternTree(t *testing.T) {
	u := NewUniverse()
	a := parseTree(t, "abc")
	b := parseTree(t, "abc")
	if u.InternTree(a) != u.InternTree(b) {
		t.Error("structurally equal trees must intern to one node")
	}
	c := parseTree(t, "abd")
	if u.InternTree(c) == u.InternTree(a) {
		t.Error("different trees must not intern together")
	}
}

func TestStartExpansion(t *testing.T) {
	n := build(t, "a*b")
	states := n.StartExpansion()
	if len(states) == 0 {
		t.Fatal("start expansion is empty")
	}
	// The loop head consumes 'a', and the 'b' edge of the zero-iteration
	// path leaves the same head; that hard state appears.
	hard := 0
	for _, s := range states {
		if s.HasCSetEdges {
			hard++
		}
	}
	if hard == 0 {
		t.Error("start expansion must contain hard states")
	}
	// Deterministic order by id.
	for i := 1; i < len(states); i++ {
		if states[i-1].ID >= states[i].ID {
			t.Error("start expansion must be sorted by state id")
		}
	}
}
