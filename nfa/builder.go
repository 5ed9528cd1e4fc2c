package nfa

import (
	"github.com/coregx/rx/syntax"
)

// Build compiles an expression tree into an NFA by Thompson construction.
//
// Only the regular subset of the tree grammar consumes input; the
// non-regular constructs lower as follows:
//
//   - Context nodes become a single Side edge carrying the effect;
//   - Cut nodes become a zero-width state carrying the cut tag;
//   - Interval builds exactly like Star (the solver enforces the bounds);
//   - Parens are transparent (the solver consults the tree).
//
// The terminal state is marked final with tag 1.
func Build(u *Universe, tree *syntax.Node, csetSize int) (*NFA, error) {
	b := &builder{
		n: &NFA{
			U:        u,
			Seq:      u.nextGeneration(),
			CSetSize: csetSize,
		},
	}
	start := b.newState()
	end, err := b.build(tree, start)
	if err != nil {
		return nil, err
	}
	start.IsStart = true
	end.FinalTag = 1
	b.n.Start = start
	b.n.End = end
	return b.n, nil
}

type builder struct {
	n *NFA
}

func (b *builder) newState() *State {
	s := &State{ID: len(b.n.States)}
	b.n.States = append(b.n.States, s)
	return s
}

func (b *builder) epsilon(from, to *State) {
	from.addEdge(&Edge{Kind: EdgeEpsilon, Dest: to})
}

// build wires the fragment for node starting at from and returns the
// fragment's terminal state.
func (b *builder) build(node *syntax.Node, from *State) (*State, error) {
	switch node.Op {
	case syntax.OpCharSet:
		to := b.newState()
		from.addEdge(&Edge{Kind: EdgeCharSet, Set: node.Set, Dest: to})
		return to, nil

	case syntax.OpLiteralRun:
		cur := from
		for _, c := range node.Lit {
			set := syntax.NewSet(b.n.CSetSize)
			set.Insert(int(c))
			to := b.newState()
			cur.addEdge(&Edge{Kind: EdgeCharSet, Set: set, Dest: to})
			cur = to
		}
		return cur, nil

	case syntax.OpConcat:
		mid, err := b.build(node.Left, from)
		if err != nil {
			return nil, err
		}
		return b.build(node.Right, mid)

	case syntax.OpAlt:
		l, err := b.build(node.Left, from)
		if err != nil {
			return nil, err
		}
		r, err := b.build(node.Right, from)
		if err != nil {
			return nil, err
		}
		to := b.newState()
		b.epsilon(l, to)
		b.epsilon(r, to)
		return to, nil

	case syntax.OpOpt:
		to, err := b.build(node.Left, from)
		if err != nil {
			return nil, err
		}
		b.epsilon(from, to)
		return to, nil

	case syntax.OpStar, syntax.OpInterval:
		// One loop head serves as entry, exit and rejoin point.
		head := b.newState()
		b.epsilon(from, head)
		tail, err := b.build(node.Left, head)
		if err != nil {
			return nil, err
		}
		b.epsilon(tail, head)
		return head, nil

	case syntax.OpPlus:
		head := b.newState()
		b.epsilon(from, head)
		tail, err := b.build(node.Left, head)
		if err != nil {
			return nil, err
		}
		b.epsilon(tail, head)
		return tail, nil

	case syntax.OpParens:
		return b.build(node.Left, from)

	case syntax.OpContext:
		to := b.newState()
		from.addEdge(&Edge{
			Kind:   EdgeSide,
			Effect: Effect{Kind: node.Ctx, N: node.N},
			Dest:   to,
		})
		return to, nil

	case syntax.OpCut:
		to := b.newState()
		to.CutTag = node.N
		b.epsilon(from, to)
		return to, nil
	}
	return nil, ErrBadTree
}
