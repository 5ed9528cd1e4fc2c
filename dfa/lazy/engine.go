package lazy

import "github.com/coregx/rx/nfa"

// Input supplies the subject to the match engine in bursts, so the same
// byte loop can walk strings, ropes or spooled buffers. Chunk returns a
// slice starting at pos and extending as far as the source finds
// convenient; it is called again when the walk runs off the end of the
// previous burst.
type Input interface {
	Chunk(pos int) []byte
	Len() int
}

// Bytes adapts a byte slice to Input.
type Bytes []byte

// Chunk returns the tail of the slice starting at pos.
func (b Bytes) Chunk(pos int) []byte {
	if pos < 0 || pos >= len(b) {
		return nil
	}
	return b[pos:]
}

// Len returns the slice length.
func (b Bytes) Len() int { return len(b) }

// Status reports how a walk ended.
type Status uint8

const (
	// StatusOK: the walk consumed every byte of the span.
	StatusOK Status = iota

	// StatusBacktrack: a dead transition; no match continues from here.
	StatusBacktrack

	// StatusYield: a multi-future transition; control returns to the
	// solver with the super-edge.
	StatusYield
)

// Outcome is the result of one walk.
type Outcome struct {
	Status Status

	// Pos is where the walk stopped: end for StatusOK, the offending
	// byte's position otherwise.
	Pos int

	// Edge is the multi-future super-edge for StatusYield.
	Edge *SuperEdge

	// Matched is true when the walk consumed the whole span and stopped
	// on an accepting superstate; Tag is then the match flavor: the most
	// recent cut tag crossed, or the accepting tag.
	Matched bool
	Tag     int

	// FinalPos is the greatest position at which an accepting superstate
	// was seen (-1 if never), and FinalTag its flavor. Maintained for
	// the solver's length-guessing heuristic.
	FinalPos int
	FinalTag int
}

// Engine is the classical match engine: a byte loop over superstate
// transition tables, filling cache misses on demand. One engine serves
// one NFA within one cache.
type Engine struct {
	c *Cache
	n *nfa.NFA
}

// NewEngine creates an engine for n backed by cache c.
func NewEngine(c *Cache, n *nfa.NFA) *Engine {
	return &Engine{c: c, n: n}
}

// NFA returns the engine's automaton.
func (e *Engine) NFA() *nfa.NFA { return e.n }

// StartSuperset returns the interned initial superset.
func (e *Engine) StartSuperset() *Superset {
	return e.c.Superset(e.n, e.n.StartExpansion())
}

// Advance walks bytes of in over [start, end) and reports how far it
// got. The current superstate is locked against reclamation while the
// walk stands on it; cache reclamation during the walk can change
// performance, never the outcome.
func (e *Engine) Advance(in Input, start, end int) (Outcome, error) {
	cur := e.c.superstate(e.StartSuperset())
	cur.Locks++
	defer func() { cur.Locks-- }()

	o := Outcome{FinalPos: -1}
	lastCut := 0
	note := func(pos int) {
		if cur.Set.CutTag != 0 {
			lastCut = cur.Set.CutTag
		}
		if cur.Set.FinalTag != 0 {
			o.FinalPos = pos
			if lastCut != 0 {
				o.FinalTag = lastCut
			} else {
				o.FinalTag = cur.Set.FinalTag
			}
		}
	}
	note(start)

	pos := start
	var chunk []byte
	chunkStart := 0
	for pos < end {
		if len(chunk) <= pos-chunkStart {
			chunk = in.Chunk(pos)
			chunkStart = pos
			if len(chunk) == 0 {
				break
			}
		}
		b := chunk[pos-chunkStart]
		f := &cur.Table[b]
		if f.Data != nil {
			cur.Locks--
			cur = f.Data
			cur.Locks++
			pos++
			note(pos)
			continue
		}
		switch f.Op {
		case OpcodeCacheMiss:
			if err := e.c.HandleCacheMiss(cur, b); err != nil {
				return o, err
			}
			// Retry the same byte through the freshly written frame.
			continue
		case OpcodeBacktrack:
			o.Status = StatusBacktrack
			o.Pos = pos
			return o, nil
		case OpcodeSideEffects:
			// A single future: its effects are assumed satisfiable
			// here. The solver owns the actual predicate checks; this
			// path only ever feeds its upper-bound queries.
			dest := e.c.ResolveFuture(f.Future)
			cur.Locks--
			cur = dest
			cur.Locks++
			pos++
			note(pos)
		case OpcodeBacktrackPoint:
			o.Status = StatusYield
			o.Pos = pos
			o.Edge = f.Edge
			return o, nil
		}
	}
	o.Status = StatusOK
	o.Pos = pos
	if pos == end && cur.Set.FinalTag != 0 {
		o.Matched = true
		if lastCut != 0 {
			o.Tag = lastCut
		} else {
			o.Tag = cur.Set.FinalTag
		}
	}
	return o, nil
}

// FitAt reports whether the DFA accepts exactly the span [start, end).
// It returns the match flavor on success. A multi-future transition
// yields ErrNeedSolver; it cannot occur for side-effect-free automata.
func (e *Engine) FitAt(in Input, start, end int) (bool, int, error) {
	o, err := e.Advance(in, start, end)
	if err != nil {
		return false, 0, err
	}
	if o.Status == StatusYield {
		return false, 0, ErrNeedSolver
	}
	return o.Matched, o.Tag, nil
}

// AdvanceToFinal walks [start, end) and returns the greatest position at
// which an accepting superstate was seen, with its flavor; -1 if none.
// A yield on a multi-future transition is answered conservatively with
// end, since the walk cannot bound the match without the solver.
func (e *Engine) AdvanceToFinal(in Input, start, end int) (int, int, error) {
	o, err := e.Advance(in, start, end)
	if err != nil {
		return -1, 0, err
	}
	if o.Status == StatusYield {
		return end, 0, nil
	}
	return o.FinalPos, o.FinalTag, nil
}
