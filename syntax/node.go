package syntax

// Op tags an expression tree node.
type Op uint8

const (
	// OpCharSet matches one character from a set.
	OpCharSet Op = iota

	// OpLiteralRun matches a run of exact bytes. A zero-length run
	// matches the empty string; the parser emits one for an empty
	// branch, and the simplifier for each erased predicate.
	OpLiteralRun

	// OpConcat matches Left followed by Right.
	OpConcat

	// OpAlt matches Left or, failing that, Right.
	OpAlt

	// OpOpt matches Left once or not at all.
	OpOpt

	// OpStar matches Left zero or more times.
	OpStar

	// OpPlus matches Left one or more times.
	OpPlus

	// OpInterval matches Left between Min and Max times.
	OpInterval

	// OpParens wraps Left in a group. Group 0 is syntactic only;
	// otherwise Group is the 1-based capture slot.
	OpParens

	// OpContext is a zero-width predicate (anchors, word boundaries,
	// back-references).
	OpContext

	// OpCut tags the match with an integer flavor.
	OpCut
)

// String returns a short name for the op.
func (op Op) String() string {
	switch op {
	case OpCharSet:
		return "CharSet"
	case OpLiteralRun:
		return "LiteralRun"
	case OpConcat:
		return "Concat"
	case OpAlt:
		return "Alt"
	case OpOpt:
		return "Opt"
	case OpStar:
		return "Star"
	case OpPlus:
		return "Plus"
	case OpInterval:
		return "Interval"
	case OpParens:
		return "Parens"
	case OpContext:
		return "Context"
	case OpCut:
		return "Cut"
	default:
		return "Unknown"
	}
}

// ContextKind selects which zero-width predicate an OpContext node checks.
type ContextKind uint8

const (
	CtxBeginLine ContextKind = iota
	CtxEndLine
	CtxWordStart
	CtxWordEnd
	CtxWordBoundary
	CtxNotWordBoundary
	CtxBufferStart
	CtxBufferEnd
	CtxBackRef
	CtxEqualPoint
)

// String returns a short name for the context kind.
func (k ContextKind) String() string {
	switch k {
	case CtxBeginLine:
		return "BeginLine"
	case CtxEndLine:
		return "EndLine"
	case CtxWordStart:
		return "WordStart"
	case CtxWordEnd:
		return "WordEnd"
	case CtxWordBoundary:
		return "WordBoundary"
	case CtxNotWordBoundary:
		return "NotWordBoundary"
	case CtxBufferStart:
		return "BufferStart"
	case CtxBufferEnd:
		return "BufferEnd"
	case CtxBackRef:
		return "BackRef"
	case CtxEqualPoint:
		return "EqualPoint"
	default:
		return "Unknown"
	}
}

// Node is one expression tree node. Which fields are meaningful depends
// on Op. Nodes are built by the parser and treated as immutable afterward
// except for the analysis fields, which Analyze fills in once.
type Node struct {
	Op    Op
	Left  *Node
	Right *Node

	// Set is the character set for OpCharSet.
	Set *Set

	// Lit is the byte run for OpLiteralRun.
	Lit []byte

	// Min, Max are the OpInterval bounds.
	Min, Max int

	// Group is the capture slot for OpParens; 0 means grouping only.
	Group int

	// Ctx is the predicate kind for OpContext.
	Ctx ContextKind

	// N is the back-reference index (OpContext/CtxBackRef) or the cut
	// tag (OpCut).
	N int

	// ID is assigned during analysis. Negative means the node is not
	// directly observable.
	ID int

	// FixedLen is the exact match length when it is known, else -1.
	FixedLen int

	// Observable is true when the node or any descendant carries a side
	// effect: captures, back-references, anchors, or intervals.
	Observable bool

	hash       uint64
	hashed     bool
	simplified *Node
}

// Constructors. Each takes ownership of its children.

func NewCharSet(set *Set) *Node    { return &Node{Op: OpCharSet, Set: set, FixedLen: -1} }
func NewLiteralRun(b []byte) *Node { return &Node{Op: OpLiteralRun, Lit: b, FixedLen: -1} }
func NewConcat(l, r *Node) *Node   { return &Node{Op: OpConcat, Left: l, Right: r, FixedLen: -1} }
func NewAlt(l, r *Node) *Node      { return &Node{Op: OpAlt, Left: l, Right: r, FixedLen: -1} }
func NewOpt(child *Node) *Node     { return &Node{Op: OpOpt, Left: child, FixedLen: -1} }
func NewStar(child *Node) *Node    { return &Node{Op: OpStar, Left: child, FixedLen: -1} }
func NewPlus(child *Node) *Node    { return &Node{Op: OpPlus, Left: child, FixedLen: -1} }

func NewInterval(child *Node, min, max int) *Node {
	return &Node{Op: OpInterval, Left: child, Min: min, Max: max, FixedLen: -1}
}

func NewParens(child *Node, group int) *Node {
	return &Node{Op: OpParens, Left: child, Group: group, FixedLen: -1}
}

func NewContext(kind ContextKind) *Node {
	return &Node{Op: OpContext, Ctx: kind, FixedLen: -1}
}

func NewBackRef(n int) *Node {
	return &Node{Op: OpContext, Ctx: CtxBackRef, N: n, FixedLen: -1}
}

func NewCut(tag int) *Node {
	return &Node{Op: OpCut, N: tag, FixedLen: -1}
}

// Empty returns a node matching the empty string.
func Empty() *Node { return NewLiteralRun(nil) }

// StructuralEqual reports whether n and o denote the same expression.
// It short-circuits on pointer identity and ignores the analysis fields,
// so trees from two compilations of the same pattern compare equal.
func (n *Node) StructuralEqual(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil || n.Op != o.Op {
		return false
	}
	switch n.Op {
	case OpCharSet:
		if !n.Set.Equal(o.Set) {
			return false
		}
	case OpLiteralRun:
		if len(n.Lit) != len(o.Lit) {
			return false
		}
		for i := range n.Lit {
			if n.Lit[i] != o.Lit[i] {
				return false
			}
		}
	case OpInterval:
		if n.Min != o.Min || n.Max != o.Max {
			return false
		}
	case OpParens:
		if n.Group != o.Group {
			return false
		}
	case OpContext:
		if n.Ctx != o.Ctx || n.N != o.N {
			return false
		}
	case OpCut:
		if n.N != o.N {
			return false
		}
	}
	if n.Left != nil || o.Left != nil {
		if n.Left == nil || o.Left == nil || !n.Left.StructuralEqual(o.Left) {
			return false
		}
	}
	if n.Right != nil || o.Right != nil {
		if n.Right == nil || o.Right == nil || !n.Right.StructuralEqual(o.Right) {
			return false
		}
	}
	return true
}

const hashPrime = 1099511628211

// StructuralHash returns a hash consistent with StructuralEqual: equal
// trees hash identically under the same seed. The zero-seed value is
// memoised on the node.
func (n *Node) StructuralHash(seed uint64) uint64 {
	if n == nil {
		return seed*hashPrime + 0x9e
	}
	if seed == 0 && n.hashed {
		return n.hash
	}
	h := seed ^ 14695981039346656037
	h = h*hashPrime + uint64(n.Op)
	switch n.Op {
	case OpCharSet:
		h = h*hashPrime + n.Set.Hash()
	case OpLiteralRun:
		for _, b := range n.Lit {
			h = h*hashPrime + uint64(b)
		}
		h = h*hashPrime + uint64(len(n.Lit))
	case OpInterval:
		h = h*hashPrime + uint64(n.Min)
		h = h*hashPrime + uint64(n.Max)
	case OpParens:
		h = h*hashPrime + uint64(n.Group)
	case OpContext:
		h = h*hashPrime + uint64(n.Ctx)
		h = h*hashPrime + uint64(n.N)
	case OpCut:
		h = h*hashPrime + uint64(n.N)
	}
	if n.Left != nil {
		h = h*hashPrime + n.Left.StructuralHash(1)
	}
	if n.Right != nil {
		h = h*hashPrime + n.Right.StructuralHash(2)
	}
	if seed == 0 {
		n.hash = h
		n.hashed = true
	}
	return h
}

// Simplify rewrites the tree into its pure-regular shadow and caches the
// result on the node:
//
//   - back-references are substituted by the simplified tree of the group
//     they refer to (pre-substitution), so sub-trees that textually contain
//     back-refs can still be handed to the DFA;
//   - groups become transparent;
//   - the remaining zero-width predicates become empty, which widens the
//     language and keeps the result a sound upper bound for the solver.
//
// subexps maps 1-based group numbers to their Parens nodes; entries may be
// nil for groups the pattern never defined.
func (n *Node) Simplify(subexps []*Node) *Node {
	if n == nil {
		return nil
	}
	if n.simplified != nil {
		return n.simplified
	}
	var s *Node
	switch n.Op {
	case OpCharSet, OpLiteralRun, OpCut:
		s = n
	case OpParens:
		s = n.Left.Simplify(subexps)
	case OpContext:
		if n.Ctx == CtxBackRef && n.N >= 1 && n.N < len(subexps) && subexps[n.N] != nil {
			s = subexps[n.N].Simplify(subexps)
		} else {
			s = Empty()
		}
	case OpConcat:
		s = NewConcat(n.Left.Simplify(subexps), n.Right.Simplify(subexps))
	case OpAlt:
		s = NewAlt(n.Left.Simplify(subexps), n.Right.Simplify(subexps))
	case OpOpt:
		s = NewOpt(n.Left.Simplify(subexps))
	case OpStar:
		s = NewStar(n.Left.Simplify(subexps))
	case OpPlus:
		s = NewPlus(n.Left.Simplify(subexps))
	case OpInterval:
		inner := n.Left.Simplify(subexps)
		if n.Min >= 1 {
			s = NewPlus(inner)
		} else {
			s = NewStar(inner)
		}
	default:
		s = n
	}
	n.simplified = s
	return s
}
