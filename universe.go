package rx

import (
	"github.com/coregx/rx/dfa/lazy"
	"github.com/coregx/rx/nfa"
	"github.com/coregx/rx/prefilter"
	"github.com/coregx/rx/syntax"
)

// Universe owns everything compiled patterns share: the hash-cons tables
// for side-effect lists and expression trees, the superstate cache with
// its byte budget, the syntax table for word anchors, and the registry of
// compiled DFAs keyed by canonical sub-tree — so two structurally equal
// sub-expressions, even from different patterns, run on one DFA.
//
// A universe is single-writer. Patterns compiled in different universes
// never share state and may run concurrently.
type Universe struct {
	nu    *nfa.Universe
	cache *lazy.Cache
	table *SyntaxTable

	compiled map[*syntax.Node]*compiled
}

// compiled is one cached DFA: the canonical tree it was built from, its
// engine, and the number of live patterns referencing it.
type compiled struct {
	node *syntax.Node
	eng  *lazy.Engine
	refs int
}

// NewUniverse creates a universe with the given cache configuration.
func NewUniverse(cfg lazy.Config) (*Universe, error) {
	cache, err := lazy.NewCache(cfg)
	if err != nil {
		return nil, err
	}
	return &Universe{
		nu:       nfa.NewUniverse(),
		cache:    cache,
		table:    DefaultSyntaxTable(),
		compiled: make(map[*syntax.Node]*compiled),
	}, nil
}

var defaultUniverse *Universe

// DefaultUniverse returns the process-wide universe the package-level
// Compile uses.
func DefaultUniverse() *Universe {
	if defaultUniverse == nil {
		u, err := NewUniverse(lazy.DefaultConfig())
		if err != nil {
			panic("rx: default universe: " + err.Error())
		}
		defaultUniverse = u
	}
	return defaultUniverse
}

// Cache exposes the universe's superstate cache.
func (u *Universe) Cache() *lazy.Cache { return u.cache }

// SetSyntaxTable replaces the word-class table consumed by the word
// anchors. The table must not change while compiled patterns are in use.
func (u *Universe) SetSyntaxTable(t *SyntaxTable) { u.table = t }

// Compile compiles a pattern under the POSIX flag set.
func (u *Universe) Compile(pattern string, flags CompFlags) (*Regexp, error) {
	syn := syntax.PosixBasic
	if flags&Extended != 0 {
		syn = syntax.PosixExtended
	}
	var translate []byte
	if flags&IgnoreCase != 0 {
		translate = CaseFoldTable()
	}
	return u.CompileDialect(pattern, syn, translate, flags&Newline != 0, flags&NoSub != 0)
}

// CompileDialect compiles a pattern under an explicit syntax flag-set.
// translate, when non-nil, must stay unchanged for the lifetime of the
// compiled pattern.
func (u *Universe) CompileDialect(pattern string, dialect syntax.Flags, translate []byte, newline, noSub bool) (*Regexp, error) {
	syn := dialect
	if newline {
		syn |= syntax.HatListsNotNewline
		syn &^= syntax.DotNewline
	}
	tree, ngroups, perr := syntax.Parse([]byte(pattern), syn, alphabetSize, translate)
	if perr != nil {
		if perr.Code == syntax.ERParen {
			// The internal unmatched-close code surfaces as EParen.
			return nil, &Error{Code: syntax.EParen}
		}
		return nil, perr
	}
	info := syntax.Analyze(tree, ngroups, alphabetSize)
	re := &Regexp{
		u:             u,
		pattern:       pattern,
		syn:           syn,
		tree:          tree,
		info:          info,
		translate:     translate,
		newlineAnchor: newline,
		noSub:         noSub,
		owns:          make(map[*compiled]bool),
	}
	if pf := prefilter.Build(tree, info); pf != nil {
		re.pre = pf.Find
	}
	return re, nil
}

const alphabetSize = 256

// prefilterFunc is the candidate-position scanner Search consults.
type prefilterFunc func(haystack []byte, start int) int

// CaseFoldTable returns the standard case-fold translate table: ASCII
// upper case maps to lower case, everything else to itself.
func CaseFoldTable() []byte {
	t := make([]byte, alphabetSize)
	for c := 0; c < alphabetSize; c++ {
		t[c] = byte(c)
		if c >= 'A' && c <= 'Z' {
			t[c] = byte(c) + ('a' - 'A')
		}
	}
	return t
}

// compileTree returns the cached DFA for a pure-regular tree, building
// the NFA on first use. The tree is interned first, so equal trees share
// one entry.
func (u *Universe) compileTree(tree *syntax.Node) (*compiled, error) {
	canon := u.nu.InternTree(tree)
	if c, ok := u.compiled[canon]; ok {
		return c, nil
	}
	n, err := nfa.Build(u.nu, canon, alphabetSize)
	if err != nil {
		return nil, &Error{Code: syntax.ESpace, Cause: err}
	}
	c := &compiled{node: canon, eng: lazy.NewEngine(u.cache, n)}
	u.compiled[canon] = c
	return c, nil
}

// compileFor is compileTree plus reference accounting against re.
func (u *Universe) compileFor(re *Regexp, tree *syntax.Node) (*compiled, error) {
	c, err := u.compileTree(tree)
	if err != nil {
		return nil, err
	}
	if !re.owns[c] {
		re.owns[c] = true
		c.refs++
	}
	return c, nil
}

// release drops one pattern's reference; the last reference evicts the
// DFA's generation from the superstate cache.
func (u *Universe) release(c *compiled) {
	c.refs--
	if c.refs > 0 {
		return
	}
	delete(u.compiled, c.node)
	u.cache.DropGeneration(c.eng.NFA().Seq)
}
