package nfa

import "sort"

// PossibleFutures returns the partition of s's zero-width reachability,
// keyed by the side-effect sequence crossed. Every path through epsilon
// and side edges that reaches a contributing state — one with at least
// one character-consuming edge, a final tag, or a cut tag — adds that
// state to the entry for its effect sequence; entries with the same
// sequence merge by destination union.
//
// The result is computed once per state and cached. Entries are sorted by
// the effect-list order (empty list first, then intern id) and each
// destination set by state id, so iteration is deterministic.
func (n *NFA) PossibleFutures(s *State) []*PossibleFuture {
	if s.futuresDone {
		return s.futures
	}
	c := &closureWalk{
		n:     n,
		dests: make(map[*EffectList]map[*State]struct{}),
	}
	c.visit(s)
	s.futures = c.futures()
	s.futuresDone = true
	return s.futures
}

type closureWalk struct {
	n       *NFA
	effects []Effect
	dests   map[*EffectList]map[*State]struct{}
	order   []*EffectList
}

// visit walks zero-width edges depth-first, accumulating the side-effect
// prefix of the path. The on-path mark breaks epsilon cycles; states
// remain revisitable from sibling branches, which can carry a different
// effect prefix.
func (c *closureWalk) visit(s *State) {
	if s.onPath {
		return
	}
	s.onPath = true
	defer func() { s.onPath = false }()

	if s.HasCSetEdges || s.FinalTag != 0 || s.CutTag != 0 {
		c.contribute(s)
	}
	for _, e := range s.Edges {
		switch e.Kind {
		case EdgeEpsilon:
			c.visit(e.Dest)
		case EdgeSide:
			c.effects = append(c.effects, e.Effect)
			c.visit(e.Dest)
			c.effects = c.effects[:len(c.effects)-1]
		}
	}
}

func (c *closureWalk) contribute(s *State) {
	list := c.n.U.InternEffects(c.effects)
	set, ok := c.dests[list]
	if !ok {
		set = make(map[*State]struct{})
		c.dests[list] = set
		c.order = append(c.order, list)
	}
	set[s] = struct{}{}
}

func (c *closureWalk) futures() []*PossibleFuture {
	sort.Slice(c.order, func(i, j int) bool {
		return effectListLess(c.order[i], c.order[j])
	})
	out := make([]*PossibleFuture, 0, len(c.order))
	for _, list := range c.order {
		set := c.dests[list]
		dests := make([]*State, 0, len(set))
		for s := range set {
			dests = append(dests, s)
		}
		sort.Slice(dests, func(i, j int) bool { return dests[i].ID < dests[j].ID })
		out = append(out, &PossibleFuture{Effects: list, Dests: dests})
	}
	return out
}

// StartExpansion returns the states the initial superset contains: the
// start state's own contribution plus everything its zero-width closure
// reaches, with side effects taken optimistically. The DFA layer seeds
// its start superset from this.
func (n *NFA) StartExpansion() []*State {
	seen := make(map[*State]struct{})
	var out []*State
	var walk func(s *State)
	walk = func(s *State) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		if s.HasCSetEdges || s.FinalTag != 0 || s.CutTag != 0 {
			out = append(out, s)
		}
		for _, e := range s.Edges {
			if e.Kind != EdgeCharSet {
				walk(e.Dest)
			}
		}
	}
	walk(n.Start)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
