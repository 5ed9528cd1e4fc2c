package syntax

// Info is the result of analyzing a parsed tree: everything the matcher
// wants to know about the pattern without walking it again.
type Info struct {
	// Subexp maps 1-based group numbers to their Parens nodes.
	Subexp []*Node

	// Ngroups is the number of capture groups.
	Ngroups int

	// Nullable is true when the pattern can match the empty string.
	Nullable bool

	// Anchored is true when every match must begin at a line or buffer
	// start.
	Anchored bool

	// Fastmap is the set of bytes that can legally start a match. For a
	// nullable pattern it is the whole alphabet.
	Fastmap *Set
}

// Analyze fills in the per-node analysis fields (ids, fixed lengths,
// observability) and returns the pattern-level Info.
func Analyze(root *Node, ngroups, csetSize int) *Info {
	info := &Info{
		Subexp:  make([]*Node, ngroups+1),
		Ngroups: ngroups,
	}
	a := &analyzer{info: info}
	a.walk(root)
	info.Nullable = nullable(root)
	info.Anchored = anchored(root)
	info.Fastmap = NewSet(csetSize)
	if info.Nullable {
		info.Fastmap = UniverseSet(csetSize)
	} else {
		firstBytes(root, info.Fastmap)
	}
	return info
}

type analyzer struct {
	info   *Info
	nextID int
}

// walk assigns ids, computes fixed lengths and observability bottom-up,
// and records the subexpression table. Nodes whose subtree carries no side
// effect get negative ids.
func (a *analyzer) walk(n *Node) {
	if n == nil {
		return
	}
	a.walk(n.Left)
	a.walk(n.Right)
	a.nextID++
	n.ID = a.nextID

	switch n.Op {
	case OpCharSet:
		n.FixedLen = 1
		n.Observable = false
	case OpLiteralRun:
		n.FixedLen = len(n.Lit)
		n.Observable = false
	case OpCut:
		n.FixedLen = 0
		n.Observable = false
	case OpConcat:
		if n.Left.FixedLen >= 0 && n.Right.FixedLen >= 0 {
			n.FixedLen = n.Left.FixedLen + n.Right.FixedLen
		} else {
			n.FixedLen = -1
		}
		n.Observable = n.Left.Observable || n.Right.Observable
	case OpAlt:
		if n.Left.FixedLen >= 0 && n.Left.FixedLen == n.Right.FixedLen {
			n.FixedLen = n.Left.FixedLen
		} else {
			n.FixedLen = -1
		}
		n.Observable = n.Left.Observable || n.Right.Observable
	case OpOpt, OpStar, OpPlus:
		n.FixedLen = -1
		if n.Op == OpPlus && n.Left.FixedLen == 0 {
			n.FixedLen = 0
		}
		if (n.Op == OpOpt || n.Op == OpStar) && n.Left.FixedLen == 0 {
			n.FixedLen = 0
		}
		n.Observable = n.Left.Observable
	case OpInterval:
		if n.Left.FixedLen >= 0 && n.Min == n.Max {
			n.FixedLen = n.Left.FixedLen * n.Min
		} else {
			n.FixedLen = -1
		}
		n.Observable = true
	case OpParens:
		n.FixedLen = n.Left.FixedLen
		n.Observable = n.Group > 0 || n.Left.Observable
		if n.Group > 0 && n.Group < len(a.info.Subexp) {
			a.info.Subexp[n.Group] = n
		}
	case OpContext:
		n.FixedLen = -1
		if n.Ctx != CtxBackRef {
			n.FixedLen = 0
		}
		n.Observable = true
	}

	if !n.Observable {
		n.ID = -n.ID
	}
}

// nullable reports whether n can match the empty string.
func nullable(n *Node) bool {
	if n == nil {
		return true
	}
	switch n.Op {
	case OpCharSet:
		return false
	case OpLiteralRun:
		return len(n.Lit) == 0
	case OpConcat:
		return nullable(n.Left) && nullable(n.Right)
	case OpAlt:
		return nullable(n.Left) || nullable(n.Right)
	case OpOpt, OpStar:
		return true
	case OpPlus:
		return nullable(n.Left)
	case OpInterval:
		return n.Min == 0 || nullable(n.Left)
	case OpParens:
		return nullable(n.Left)
	case OpContext:
		// A back-reference to a group that captured the empty string
		// matches the empty string too.
		return true
	case OpCut:
		return true
	}
	return true
}

// anchored reports whether every match of n begins with a line or buffer
// start predicate.
func anchored(n *Node) bool {
	if n == nil {
		return false
	}
	switch n.Op {
	case OpContext:
		return n.Ctx == CtxBeginLine || n.Ctx == CtxBufferStart
	case OpConcat:
		if anchored(n.Left) {
			return true
		}
		// A zero-width-only left factor passes anchoring through.
		if n.Left.FixedLen == 0 && n.Left.Op != OpContext {
			return anchored(n.Right)
		}
		return false
	case OpAlt:
		return anchored(n.Left) && anchored(n.Right)
	case OpParens:
		return anchored(n.Left)
	case OpPlus:
		return anchored(n.Left)
	case OpInterval:
		return n.Min >= 1 && anchored(n.Left)
	}
	return false
}

// firstBytes accumulates the bytes that can start a match of n into set
// and reports whether n can match without consuming anything (the
// caller's cue to keep looking rightward).
func firstBytes(n *Node, set *Set) bool {
	if n == nil {
		return true
	}
	switch n.Op {
	case OpCharSet:
		set.Union(n.Set)
		return false
	case OpLiteralRun:
		if len(n.Lit) == 0 {
			return true
		}
		set.Insert(int(n.Lit[0]))
		return false
	case OpConcat:
		if firstBytes(n.Left, set) {
			return firstBytes(n.Right, set)
		}
		return false
	case OpAlt:
		l := firstBytes(n.Left, set)
		r := firstBytes(n.Right, set)
		return l || r
	case OpOpt, OpStar:
		firstBytes(n.Left, set)
		return true
	case OpPlus:
		return firstBytes(n.Left, set)
	case OpInterval:
		zero := firstBytes(n.Left, set)
		return zero || n.Min == 0
	case OpParens:
		return firstBytes(n.Left, set)
	case OpContext:
		if n.Ctx == CtxBackRef {
			// The referenced bytes are unknown here; stay permissive.
			return true
		}
		return true
	case OpCut:
		return true
	}
	return true
}
