// Package prefilter provides fast candidate filtering for the search
// loop: given the parsed pattern, it finds the positions at which a match
// can possibly begin, so the matcher skips everything else.
//
// Two strategies exist:
//
//   - a byte scanner over the pattern's fastmap (the set of bytes that
//     can start a match), reduced to bytes.IndexByte when the map holds a
//     single byte;
//   - a multi-literal Aho-Corasick scan when the pattern starts with an
//     alternation of required literal prefixes.
//
// A candidate is only a place worth trying, never a guarantee; the caller
// verifies with the full matcher.
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/rx/syntax"
)

// Prefilter finds candidate match start positions.
type Prefilter interface {
	// Find returns the first candidate position at or after start, or -1.
	Find(haystack []byte, start int) int
}

// Build selects a prefilter for the pattern, or returns nil when no
// strategy beats trying every position: a nullable pattern, or a fastmap
// covering (nearly) the whole alphabet.
func Build(tree *syntax.Node, info *syntax.Info) Prefilter {
	if info.Nullable {
		return nil
	}
	if lits, ok := requiredPrefixes(tree); ok && len(lits) >= 2 {
		builder := ahocorasick.NewBuilder()
		for _, lit := range lits {
			builder.AddPattern(lit)
		}
		auto, err := builder.Build()
		if err == nil {
			return &literalPrefilter{auto: auto}
		}
	}
	pop := info.Fastmap.Population()
	if pop == 0 || pop >= info.Fastmap.Size()-1 {
		return nil
	}
	if pop == 1 {
		return &memchrPrefilter{b: byte(info.Fastmap.Members()[0])}
	}
	return &fastmapPrefilter{set: info.Fastmap}
}

// literalPrefilter scans for an alternation of required literal prefixes
// with an Aho-Corasick automaton, the multi-pattern engine used for
// large literal alternations.
type literalPrefilter struct {
	auto *ahocorasick.Automaton
}

func (p *literalPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// memchrPrefilter finds the single byte every match starts with.
type memchrPrefilter struct {
	b byte
}

func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start >= len(haystack) {
		return -1
	}
	i := bytes.IndexByte(haystack[start:], p.b)
	if i < 0 {
		return -1
	}
	return start + i
}

// fastmapPrefilter scans for any byte of the pattern's fastmap.
type fastmapPrefilter struct {
	set *syntax.Set
}

func (p *fastmapPrefilter) Find(haystack []byte, start int) int {
	for i := start; i < len(haystack); i++ {
		if p.set.Contains(int(haystack[i])) {
			return i
		}
	}
	return -1
}

// requiredPrefixes walks the head of the tree collecting the literal
// prefixes a match must start with. The extraction is sound, not
// complete: it reports ok only when every match is guaranteed to begin
// with one of the returned literals.
func requiredPrefixes(n *syntax.Node) ([][]byte, bool) {
	const maxLiterals = 64
	switch n.Op {
	case syntax.OpLiteralRun:
		if len(n.Lit) == 0 {
			return nil, false
		}
		return [][]byte{n.Lit}, true
	case syntax.OpCharSet:
		members := n.Set.Members()
		if len(members) == 0 || len(members) > 4 {
			return nil, false
		}
		var out [][]byte
		for _, m := range members {
			out = append(out, []byte{byte(m)})
		}
		return out, true
	case syntax.OpConcat:
		// A zero-width left factor passes the requirement through.
		if n.Left.FixedLen == 0 {
			return requiredPrefixes(n.Right)
		}
		return requiredPrefixes(n.Left)
	case syntax.OpAlt:
		l, ok := requiredPrefixes(n.Left)
		if !ok {
			return nil, false
		}
		r, ok := requiredPrefixes(n.Right)
		if !ok {
			return nil, false
		}
		if len(l)+len(r) > maxLiterals {
			return nil, false
		}
		return append(l, r...), true
	case syntax.OpParens:
		return requiredPrefixes(n.Left)
	case syntax.OpPlus:
		return requiredPrefixes(n.Left)
	case syntax.OpInterval:
		if n.Min >= 1 {
			return requiredPrefixes(n.Left)
		}
		return nil, false
	}
	return nil, false
}
