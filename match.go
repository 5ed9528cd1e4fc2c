package rx

import (
	"github.com/coregx/rx/syntax"
)

// MatchAt matches the pattern against input with the match anchored at
// start; the match may end anywhere up to end. On success it returns the
// capture records: record 0 is the whole match with its final tag,
// records 1..GroupCount the groups, -1/-1 where a group did not
// participate. On failure it returns an *Error whose Code is NoMatch, or
// ESpace for resource exhaustion.
//
// The matcher prefers the longest match at start, enumerating candidate
// end positions downward from the furthest position the pattern's DFA
// shadow accepts.
func (re *Regexp) MatchAt(input []byte, start, end int, eflags ExecFlags) ([]Match, error) {
	if err := re.checkSpan(input, start, end); err != nil {
		return nil, err
	}
	return re.matchAt(input, start, end, eflags)
}

func (re *Regexp) checkSpan(input []byte, start, end int) error {
	if re.freed {
		return &Error{Code: syntax.BadPattern}
	}
	if start < 0 || end > len(input) || start > end {
		return errNoMatch
	}
	return nil
}

func (re *Regexp) matchAt(input []byte, start, end int, eflags ExecFlags) ([]Match, error) {
	m := newMatcher(re, input, end, start, eflags)

	// The DFA of the pattern's regular shadow bounds how far any match
	// from start can reach; candidate ends are tried longest first.
	upper, a := m.advanceUpper(re.tree, start, end)
	if a == ansBogus {
		return nil, m.spaceError()
	}
	if upper < start {
		return nil, errNoMatch
	}

	for e := upper; e >= start; e-- {
		if re.tree.FixedLen >= 0 && e-start != re.tree.FixedLen {
			continue
		}
		m.reset()
		sol := m.solve(re.tree, start, e, 0)
		switch sol.next() {
		case ansYes:
			m.regs[0] = Match{Start: start, End: e, FinalTag: m.tag}
			if re.noSub {
				return nil, nil
			}
			out := make([]Match, len(m.regs))
			copy(out, m.regs)
			return out, nil
		case ansBogus:
			return nil, m.spaceError()
		}
	}
	return nil, errNoMatch
}

// reset clears the registers and flavor between candidate end positions,
// so a failed attempt leaves nothing behind.
func (m *matcher) reset() {
	for i := range m.regs {
		m.regs[i] = Match{Start: -1, End: -1}
	}
	m.tag = 1
	m.err = nil
}

func (m *matcher) spaceError() error {
	if e, ok := m.err.(*Error); ok {
		return e
	}
	return &Error{Code: syntax.ESpace, Cause: m.err}
}

// Search scans start positions in order and returns the captures of the
// first (leftmost) position that matches, preferring the longest match
// there. Anchored patterns try only start plus, under Newline, the
// position after each newline; otherwise the fastmap and any literal
// prefilter skip positions no match can begin at.
func (re *Regexp) Search(input []byte, start, end int, eflags ExecFlags) ([]Match, error) {
	if err := re.checkSpan(input, start, end); err != nil {
		return nil, err
	}
	if re.info.Anchored {
		return re.searchAnchored(input, start, end, eflags)
	}
	pos := start
	for pos <= end {
		if !re.info.Nullable && pos < end {
			if re.pre != nil {
				next := re.pre(input[:end], pos)
				if next < 0 {
					break
				}
				pos = next
			} else if !re.info.Fastmap.Contains(int(input[pos])) {
				pos++
				continue
			}
		}
		regs, err := re.matchAt(input, pos, end, eflags)
		if err == nil {
			return regs, nil
		}
		if !isNoMatch(err) {
			return nil, err
		}
		pos++
	}
	return nil, errNoMatch
}

func (re *Regexp) searchAnchored(input []byte, start, end int, eflags ExecFlags) ([]Match, error) {
	try := func(pos int) ([]Match, error) {
		return re.matchAt(input, pos, end, eflags)
	}
	regs, err := try(start)
	if err == nil || !isNoMatch(err) {
		return regs, err
	}
	if re.newlineAnchor {
		for pos := start + 1; pos <= end; pos++ {
			if input[pos-1] != '\n' {
				continue
			}
			regs, err := try(pos)
			if err == nil || !isNoMatch(err) {
				return regs, err
			}
		}
	}
	return nil, errNoMatch
}

func isNoMatch(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code == syntax.NoMatch
}
