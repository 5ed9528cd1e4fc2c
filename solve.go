package rx

import (
	"github.com/coregx/rx/dfa/lazy"
	"github.com/coregx/rx/syntax"
)

// answer is what one step of the solver reports.
type answer int8

const (
	// ansNo: no (further) solution here. Always safely composable.
	ansNo answer = iota

	// ansYes: a solution; ask again for the next one.
	ansYes

	// ansBogus: unrecoverable internal failure; unwinds to the entry
	// point, which reports ESpace.
	ansBogus
)

// matcher is the per-attempt state shared by every solutions frame: the
// subject, the flags, the capture registers, and the match flavor.
type matcher struct {
	re     *Regexp
	input  []byte
	bufEnd int
	notBol bool
	notEol bool

	// point is the position \= matches at: where this attempt started.
	point int

	regs []Match
	tag  int
	err  error
}

func newMatcher(re *Regexp, input []byte, bufEnd, point int, eflags ExecFlags) *matcher {
	m := &matcher{
		re:     re,
		input:  input,
		bufEnd: bufEnd,
		notBol: eflags&NotBol != 0,
		notEol: eflags&NotEol != 0,
		point:  point,
		tag:    1,
		regs:   make([]Match, re.info.Ngroups+1),
	}
	for i := range m.regs {
		m.regs[i] = Match{Start: -1, End: -1}
	}
	return m
}

// solutions enumerates, one call to next at a time, the ways a sub-tree
// can match the span [start, end). Each node kind is a small state
// machine; recursion on the right-hand side of Concat, Star, Plus and
// Interval allocates further frames because the depth is unbounded.
type solutions struct {
	m     *matcher
	node  *syntax.Node
	start int
	end   int

	step  int
	k     int  // split cursor for Concat/Star/Plus/Interval
	kOnly bool // the split position is forced by a fixed length
	x     int  // iteration counter for Interval

	inner *solutions
	right *solutions
	saved Match

	done bool
}

// solve builds the enumerator for node over [start, end). x seeds the
// interval iteration counter; pass 0 everywhere except the interval's
// own recursion.
func (m *matcher) solve(node *syntax.Node, start, end, x int) *solutions {
	s := &solutions{m: m, node: node, start: start, end: end, x: x}
	// Every branch except Interval prunes on the node's fixed length; an
	// interval's recursion reuses the node for the remaining iterations,
	// whose span is shorter than the whole.
	if node.Op != syntax.OpInterval && node.FixedLen >= 0 && node.FixedLen != end-start {
		s.done = true
	}
	return s
}

func (s *solutions) next() answer {
	if s.done {
		return ansNo
	}
	if !s.node.Observable {
		return s.nextRegular()
	}
	switch s.node.Op {
	case syntax.OpParens:
		return s.nextParens()
	case syntax.OpOpt:
		return s.nextOpt()
	case syntax.OpAlt:
		return s.nextAlt()
	case syntax.OpConcat:
		return s.nextConcat()
	case syntax.OpStar:
		return s.nextRepeat(true)
	case syntax.OpPlus:
		return s.nextRepeat(false)
	case syntax.OpInterval:
		return s.nextInterval()
	case syntax.OpContext:
		return s.nextContext()
	default:
		// CharSet, LiteralRun and Cut are never observable; reaching
		// them here means the simplifier failed to push them into the
		// DFA path.
		return ansBogus
	}
}

// nextRegular is the fast path: the sub-tree carries no side effects, so
// matching collapses to a single DFA fit over the span.
func (s *solutions) nextRegular() answer {
	s.done = true
	c, err := s.m.re.u.compileFor(s.m.re, s.node)
	if err != nil {
		s.m.err = err
		return ansBogus
	}
	ok, tag, err := c.eng.FitAt(lazy.Bytes(s.m.input), s.start, s.end)
	if err != nil {
		s.m.err = err
		return ansBogus
	}
	if !ok {
		return ansNo
	}
	if tag != 0 && tag != 1 {
		s.m.tag = tag
	}
	return ansYes
}

func (s *solutions) nextParens() answer {
	g := s.node.Group
	for {
		switch s.step {
		case 0:
			if g > 0 {
				s.saved = s.m.regs[g]
			}
			s.inner = s.m.solve(s.node.Left, s.start, s.end, 0)
			s.step = 1
		case 1:
			switch s.inner.next() {
			case ansYes:
				if g > 0 {
					s.m.regs[g] = Match{Start: s.start, End: s.end}
				}
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				if g > 0 {
					s.m.regs[g] = s.saved
				}
				s.done = true
				return ansNo
			}
		}
	}
}

func (s *solutions) nextOpt() answer {
	for {
		switch s.step {
		case 0:
			s.inner = s.m.solve(s.node.Left, s.start, s.end, 0)
			s.step = 1
		case 1:
			switch s.inner.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				// The inner expression is exhausted; the empty match
				// remains iff the span is empty.
				s.done = true
				if s.start == s.end {
					return ansYes
				}
				return ansNo
			}
		}
	}
}

func (s *solutions) nextAlt() answer {
	for {
		switch s.step {
		case 0:
			s.inner = s.m.solve(s.node.Left, s.start, s.end, 0)
			s.step = 1
		case 1:
			switch s.inner.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.inner = s.m.solve(s.node.Right, s.start, s.end, 0)
				s.step = 2
			}
		case 2:
			switch s.inner.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.done = true
				return ansNo
			}
		}
	}
}

// advanceUpper bounds, via the DFA of node's pure-regular shadow, the
// furthest end position a match of node starting at start can reach.
// Returns -1 when no prefix of the span can match at all.
func (m *matcher) advanceUpper(node *syntax.Node, start, end int) (int, answer) {
	tree := node
	if node.Observable {
		tree = node.Simplify(m.re.info.Subexp)
	}
	c, err := m.re.u.compileFor(m.re, tree)
	if err != nil {
		m.err = err
		return -1, ansBogus
	}
	last, _, err := c.eng.AdvanceToFinal(lazy.Bytes(m.input), start, end)
	if err != nil {
		m.err = err
		return -1, ansBogus
	}
	return last, ansNo
}

func (s *solutions) nextConcat() answer {
	left, rnode := s.node.Left, s.node.Right
	for {
		switch s.step {
		case 0:
			switch {
			case left.FixedLen >= 0:
				s.k = s.start + left.FixedLen
				s.kOnly = true
				if s.k > s.end {
					s.done = true
					return ansNo
				}
			case rnode.FixedLen >= 0:
				s.k = s.end - rnode.FixedLen
				s.kOnly = true
				if s.k < s.start {
					s.done = true
					return ansNo
				}
			default:
				upper, a := s.m.advanceUpper(left, s.start, s.end)
				if a == ansBogus {
					return ansBogus
				}
				if upper < s.start {
					s.done = true
					return ansNo
				}
				s.k = upper
			}
			s.step = 1
		case 1:
			if s.k < s.start {
				s.done = true
				return ansNo
			}
			s.inner = s.m.solve(left, s.start, s.k, 0)
			s.step = 2
		case 2:
			switch s.inner.next() {
			case ansYes:
				s.right = s.m.solve(rnode, s.k, s.end, 0)
				s.step = 3
			case ansBogus:
				return ansBogus
			default:
				if s.kOnly {
					s.done = true
					return ansNo
				}
				s.k--
				s.step = 1
			}
		case 3:
			switch s.right.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.step = 2
			}
		}
	}
}

// nextRepeat drives Star and Plus. The split enumeration mirrors Concat,
// but the right-hand side recurses on the same node; Star additionally
// accepts the empty match on an empty span before anything else.
func (s *solutions) nextRepeat(star bool) answer {
	child := s.node.Left
	for {
		switch s.step {
		case 0:
			if s.start == s.end {
				if star {
					s.done = true
					return ansYes
				}
				// Plus over an empty span: the child must take the
				// empty match itself.
				s.inner = s.m.solve(child, s.start, s.end, 0)
				s.step = 5
				continue
			}
			s.k = s.end
			s.step = 1
		case 1:
			if s.k <= s.start {
				s.done = true
				return ansNo
			}
			s.inner = s.m.solve(child, s.start, s.k, 0)
			s.step = 2
		case 2:
			switch s.inner.next() {
			case ansYes:
				if s.k == s.end {
					// Final iteration covers the rest of the span.
					return ansYes
				}
				s.right = s.m.solve(s.node, s.k, s.end, 0)
				s.step = 3
			case ansBogus:
				return ansBogus
			default:
				s.k--
				s.step = 1
			}
		case 3:
			switch s.right.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.step = 2
			}
		case 5:
			switch s.inner.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.done = true
				return ansNo
			}
		}
	}
}

func (s *solutions) nextInterval() answer {
	child := s.node.Left
	min, max := s.node.Min, s.node.Max
	for {
		switch s.step {
		case 0:
			if max < s.x {
				s.done = true
				return ansNo
			}
			if max == s.x {
				s.done = true
				if min > s.x {
					return ansBogus
				}
				if s.start == s.end {
					return ansYes
				}
				return ansNo
			}
			if min <= s.x && s.start == s.end {
				// The empty match comes first; the split enumeration
				// below then continues with further zero-width
				// iterations of a nullable child.
				s.step = 1
				s.k = s.end
				return ansYes
			}
			s.k = s.end
			s.step = 1
		case 1:
			// Unlike Star and Plus, the k == s.start split is allowed:
			// a nullable child may take the empty span while the x
			// counter still climbs toward min, and the max check in
			// case 0 bounds that recursion, not a shrinking k.
			if s.k < s.start {
				s.done = true
				return ansNo
			}
			s.inner = s.m.solve(child, s.start, s.k, 0)
			s.step = 2
		case 2:
			switch s.inner.next() {
			case ansYes:
				s.right = s.m.solve(s.node, s.k, s.end, s.x+1)
				s.step = 3
			case ansBogus:
				return ansBogus
			default:
				s.k--
				s.step = 1
			}
		case 3:
			switch s.right.next() {
			case ansYes:
				return ansYes
			case ansBogus:
				return ansBogus
			default:
				s.step = 2
			}
		}
	}
}

func (s *solutions) nextContext() answer {
	s.done = true
	m := s.m
	if s.node.Ctx == syntax.CtxBackRef {
		return s.backRef()
	}
	if s.start != s.end {
		return ansNo
	}
	pos := s.start
	ok := false
	switch s.node.Ctx {
	case syntax.CtxBeginLine:
		ok = (pos == 0 && !m.notBol) ||
			(m.re.newlineAnchor && pos > 0 && m.input[pos-1] == '\n')
	case syntax.CtxEndLine:
		// Spencer behavior: a newline satisfies $ even under NotEol;
		// NotEol disqualifies only the buffer end itself. The newline
		// may sit just past the match window, so look at the buffer.
		ok = (pos == m.bufEnd && !m.notEol) ||
			(m.re.newlineAnchor && pos < len(m.input) && m.input[pos] == '\n')
	case syntax.CtxBufferStart:
		ok = pos == 0 && !m.notBol
	case syntax.CtxBufferEnd:
		ok = pos == m.bufEnd && !m.notEol
	case syntax.CtxWordStart:
		ok = !m.wordAt(pos-1) && m.wordAt(pos)
	case syntax.CtxWordEnd:
		ok = m.wordAt(pos-1) && !m.wordAt(pos)
	case syntax.CtxWordBoundary:
		ok = m.wordAt(pos-1) != m.wordAt(pos)
	case syntax.CtxNotWordBoundary:
		ok = m.wordAt(pos-1) == m.wordAt(pos)
	case syntax.CtxEqualPoint:
		ok = pos == m.point
	}
	if ok {
		return ansYes
	}
	return ansNo
}

func (m *matcher) wordAt(i int) bool {
	if i < 0 || i >= m.bufEnd {
		return false
	}
	return m.re.u.table.IsWord(m.input[i])
}

// backRef compares the span against the bytes the referenced group
// captured, honoring the pattern's case folding.
func (s *solutions) backRef() answer {
	m := s.m
	r := m.regs[s.node.N]
	if r.Start < 0 {
		return ansNo
	}
	if r.End-r.Start != s.end-s.start {
		return ansNo
	}
	ref := m.input[r.Start:r.End]
	cand := m.input[s.start:s.end]
	for i := range ref {
		a, b := ref[i], cand[i]
		if m.re.translate != nil {
			a, b = m.re.translate[a], m.re.translate[b]
		}
		if a != b {
			return ansNo
		}
	}
	return ansYes
}
