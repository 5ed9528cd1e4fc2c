package lazy

import (
	"sort"

	"github.com/coregx/rx/nfa"
	"github.com/coregx/rx/syntax"
)

// Byte-cost estimates for the budget accounting. These are deliberately
// coarse; the budget bounds growth, it does not meter the allocator.
const (
	frameCost          = 32
	superstateOverhead = 96
	supersetOverhead   = 48
	memberCost         = 8
)

// Cache is the lazily built, bounded set of superstates for one DFA
// universe. Supersets are hash-consed; superstates are reclaimed in two
// stages when the byte budget is exceeded:
//
//  1. the least recently used live state is demoted to semifree — its
//     incoming fast-path cells are rewritten to force re-dispatch;
//  2. if still over budget, the least recently used semifree state is
//     dropped outright and its cross-links are broken.
//
// Entering a semifree state through a re-dispatch promotes it back to the
// head of the live queue, so popular states survive pressure.
//
// The cache is single-writer: one matcher at a time.
type Cache struct {
	cfg       Config
	supersets map[uint64][]*Superset
	live      lruQueue
	semifree  lruQueue

	// BytesInUse is the estimated memory footprint of the built
	// superstates and interned supersets.
	BytesInUse int
}

// NewCache creates a cache under the given configuration.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.CSetSize <= 0 || cfg.ByteBudget < cfg.CSetSize*frameCost+superstateOverhead {
		return nil, ErrInvalidConfig
	}
	return &Cache{
		cfg:       cfg,
		supersets: make(map[uint64][]*Superset),
	}, nil
}

// Config returns the cache's configuration.
func (c *Cache) Config() Config { return c.cfg }

// LiveCount and SemifreeCount report the queue sizes, for tests and
// pressure diagnostics.
func (c *Cache) LiveCount() int     { return c.live.size }
func (c *Cache) SemifreeCount() int { return c.semifree.size }

func (c *Cache) superstateCost() int {
	return c.cfg.CSetSize*frameCost + superstateOverhead
}

func supersetHash(seq uint64, states []*nfa.State) uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037)
	h = h*prime + seq
	for _, s := range states {
		h = h*prime + uint64(s.ID)
	}
	return h
}

// Superset interns the descriptor for the given member states of n.
// Members must belong to n; they are sorted and deduplicated here.
// Two calls with equal members return the same pointer.
func (c *Cache) Superset(n *nfa.NFA, states []*nfa.State) *Superset {
	members := make([]*nfa.State, len(states))
	copy(members, states)
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	dedup := members[:0]
	var prev *nfa.State
	for _, s := range members {
		if s != prev {
			dedup = append(dedup, s)
		}
		prev = s
	}
	members = dedup

	h := supersetHash(n.Seq, members)
	for _, ss := range c.supersets[h] {
		if ss.Seq == n.Seq && sameMembers(ss.States, members) {
			return ss
		}
	}
	ss := &Superset{
		States: members,
		N:      n,
		Seq:    n.Seq,
		hash:   h,
	}
	for _, s := range members {
		if s.FinalTag > ss.FinalTag {
			ss.FinalTag = s.FinalTag
		}
		if s.CutTag > ss.CutTag {
			ss.CutTag = s.CutTag
		}
		if s.HasCSetEdges {
			ss.HasCSetEdges = true
		}
	}
	c.supersets[h] = append(c.supersets[h], ss)
	c.BytesInUse += supersetOverhead + memberCost*len(members)
	return ss
}

func sameMembers(a, b []*nfa.State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// superstate returns the built state for ss, building or reviving it as
// needed and running reclamation afterward.
func (c *Cache) superstate(ss *Superset) *Superstate {
	if s := ss.Super; s != nil {
		if s.Semifree {
			c.semifree.remove(s)
			s.Semifree = false
			c.live.pushFront(s)
		} else {
			c.live.moveFront(s)
		}
		return s
	}
	s := &Superstate{
		Set:   ss,
		Table: make([]Frame, c.cfg.CSetSize),
	}
	ss.Super = s
	c.BytesInUse += c.superstateCost()
	c.live.pushFront(s)
	c.reclaim(s)
	return s
}

// Start returns the built superstate for the NFA's initial superset.
func (c *Cache) Start(n *nfa.NFA) *Superstate {
	return c.superstate(c.Superset(n, n.StartExpansion()))
}

// reclaim brings the cache back toward its budget: each round demotes the
// live tail and drops the semifree tail, until under budget or out of
// semifree victims. The state being admitted is protected.
func (c *Cache) reclaim(protect *Superstate) {
	for c.BytesInUse > c.cfg.ByteBudget {
		if v := c.live.tailVictim(protect); v != nil {
			c.demote(v)
		}
		w := c.semifree.tailVictim(protect)
		if w == nil {
			return
		}
		c.drop(w)
	}
}

// demote moves s to the semifree queue and disables its incoming fast
// paths, so the next entry re-dispatches through the miss handler and
// revives it.
func (c *Cache) demote(s *Superstate) {
	c.live.remove(s)
	s.Semifree = true
	c.semifree.pushFront(s)
	for _, df := range s.Incoming {
		df.Source.Table[df.Byte] = Frame{}
	}
}

// drop removes a semifree state entirely, breaking every cross-link so a
// later walk rebuilds it from its superset.
func (c *Cache) drop(s *Superstate) {
	c.semifree.remove(s)
	for _, df := range s.Incoming {
		df.Source.Table[df.Byte] = Frame{}
		df.Dest = nil
		removeDF(&df.Source.Outgoing, df)
	}
	s.Incoming = nil
	for _, df := range s.Outgoing {
		if df.Dest != nil {
			removeDF(&df.Dest.Incoming, df)
		}
	}
	s.Outgoing = nil
	s.Edges = nil
	s.Table = nil
	s.Set.Super = nil
	c.BytesInUse -= c.superstateCost()
}

func removeDF(list *[]*DistinctFuture, df *DistinctFuture) {
	for i, d := range *list {
		if d == df {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// clearFrame unlinks whatever the (from, b) cell currently points at and
// resets it to a cache miss.
func (c *Cache) clearFrame(from *Superstate, b byte) {
	f := &from.Table[b]
	unlink := func(df *DistinctFuture) {
		if df == nil {
			return
		}
		if df.Dest != nil {
			removeDF(&df.Dest.Incoming, df)
		}
		removeDF(&from.Outgoing, df)
	}
	unlink(f.Future)
	if f.Edge != nil {
		for _, df := range f.Edge.Options {
			unlink(df)
		}
		for i, e := range from.Edges {
			if e == f.Edge {
				from.Edges = append(from.Edges[:i], from.Edges[i+1:]...)
				break
			}
		}
	}
	*f = Frame{}
}

// HandleCacheMiss computes the transition out of from on byte b and
// writes the resulting instruction frame:
//
//   - no future: a Backtrack cell;
//   - one future without side effects: the direct fast path;
//   - one future with side effects: a SideEffects cell carrying it;
//   - several futures: a BacktrackPoint cell carrying their super-edge.
func (c *Cache) HandleCacheMiss(from *Superstate, b byte) error {
	if from.Set.N.Seq != from.Set.Seq {
		return ErrStaleGeneration
	}
	from.Locks++
	defer func() { from.Locks-- }()

	c.clearFrame(from, b)

	// Merge the possible futures of every destination reachable on b,
	// keyed by side-effect list.
	merged := make(map[*nfa.EffectList]map[*nfa.State]struct{})
	var order []*nfa.EffectList
	for _, m := range from.Set.States {
		for _, e := range m.Edges {
			if e.Kind != nfa.EdgeCharSet || !e.Set.Contains(int(b)) {
				continue
			}
			for _, pf := range from.Set.N.PossibleFutures(e.Dest) {
				set, ok := merged[pf.Effects]
				if !ok {
					set = make(map[*nfa.State]struct{})
					merged[pf.Effects] = set
					order = append(order, pf.Effects)
				}
				for _, d := range pf.Dests {
					set[d] = struct{}{}
				}
			}
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return order[i].ID() < order[j].ID()
	})

	options := make([]*DistinctFuture, 0, len(order))
	for _, list := range order {
		set := merged[list]
		dests := make([]*nfa.State, 0, len(set))
		for d := range set {
			dests = append(dests, d)
		}
		options = append(options, &DistinctFuture{
			Source:  from,
			Byte:    b,
			DestSet: c.Superset(from.Set.N, dests),
			Effects: list,
		})
	}

	switch {
	case len(options) == 0:
		from.Table[b] = Frame{Op: OpcodeBacktrack}

	case len(options) == 1 && options[0].Effects == nil:
		df := options[0]
		dest := c.superstate(df.DestSet)
		df.Dest = dest
		dest.Incoming = append(dest.Incoming, df)
		from.Outgoing = append(from.Outgoing, df)
		from.Table[b] = Frame{Data: dest, Future: df}

	case len(options) == 1:
		from.Table[b] = Frame{Future: options[0], Op: OpcodeSideEffects}

	default:
		set := syntax.NewSet(c.cfg.CSetSize)
		set.Insert(int(b))
		edge := &SuperEdge{CSet: set, Options: options}
		from.Edges = append(from.Edges, edge)
		from.Table[b] = Frame{Edge: edge, Op: OpcodeBacktrackPoint}
	}
	return nil
}

// ResolveFuture builds (or revives) the destination of a distinct future
// and links it, returning the destination superstate.
func (c *Cache) ResolveFuture(df *DistinctFuture) *Superstate {
	if df.Dest != nil && df.DestSet.Super == df.Dest && !df.Dest.Semifree {
		c.live.moveFront(df.Dest)
		return df.Dest
	}
	dest := c.superstate(df.DestSet)
	if df.Dest != dest {
		df.Dest = dest
		dest.Incoming = append(dest.Incoming, df)
		df.Source.Outgoing = append(df.Source.Outgoing, df)
	}
	return dest
}

// DropGeneration evicts every superset and superstate built from the
// given NFA generation. Freeing a compiled pattern calls this so its DFA
// storage is reclaimed promptly rather than by budget pressure.
func (c *Cache) DropGeneration(seq uint64) {
	for h, bucket := range c.supersets {
		kept := bucket[:0]
		for _, ss := range bucket {
			if ss.Seq != seq {
				kept = append(kept, ss)
				continue
			}
			if s := ss.Super; s != nil {
				if s.Semifree {
					c.drop(s)
				} else {
					c.live.remove(s)
					s.Semifree = true
					c.semifree.pushFront(s)
					c.drop(s)
				}
			}
			c.BytesInUse -= supersetOverhead + memberCost*len(ss.States)
		}
		if len(kept) == 0 {
			delete(c.supersets, h)
		} else {
			c.supersets[h] = kept
		}
	}
}
