// Package rx is a POSIX-style regular expression engine built around a
// lazily determinized DFA.
//
// A pattern compiles into an expression tree; the pure-regular parts of
// the tree run through a Thompson NFA and a bounded cache of DFA
// superstates, while a backtracking solver dispatches the non-regular
// constructs — captures, back-references, counted intervals and anchors —
// on top of the DFA.
//
// The public surface is POSIX-shaped:
//
//	re, err := rx.Compile(`a(b|c)+d`, rx.Extended)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	regs, err := re.Search(input, 0, len(input), 0)
//
// Compiled patterns are immutable and may be shared read-only, but a
// pattern plus the universe that owns its DFA cache must be driven by one
// matcher at a time; the engine does not serialize internally.
package rx

import (
	"github.com/coregx/rx/syntax"
)

// Compile flags.
type CompFlags uint32

const (
	// Extended selects POSIX extended syntax; without it patterns are
	// basic (obsolete) syntax.
	Extended CompFlags = 1 << iota

	// IgnoreCase folds case via the standard translate table.
	IgnoreCase

	// Newline makes ^ and $ match at newlines, keeps . and negated
	// bracket expressions from matching newline.
	Newline

	// NoSub compiles for a yes/no answer only; no capture positions are
	// reported.
	NoSub
)

// Match flags.
type ExecFlags uint32

const (
	// NotBol: the start of the subject is not a beginning of line.
	NotBol ExecFlags = 1 << iota

	// NotEol: the end of the subject is not an end of line.
	NotEol

	// AllocRegs asks the matcher to allocate capture registers. The Go
	// surface always returns freshly allocated registers, so the flag is
	// accepted for compatibility and has no further effect.
	AllocRegs
)

// Code is the stable numeric error code type; ErrorText returns its
// canonical message.
type Code = syntax.Code

// The stable error codes.
const (
	NoError    = syntax.NoError
	NoMatch    = syntax.NoMatch
	BadPattern = syntax.BadPattern
	ECollate   = syntax.ECollate
	ECType     = syntax.ECType
	EEscape    = syntax.EEscape
	ESubReg    = syntax.ESubReg
	EBrack     = syntax.EBrack
	EParen     = syntax.EParen
	EBrace     = syntax.EBrace
	BadBR      = syntax.BadBR
	ERange     = syntax.ERange
	ESpace     = syntax.ESpace
	BadRpt     = syntax.BadRpt
	EEnd       = syntax.EEnd
	ESize      = syntax.ESize
	ERParen    = syntax.ERParen
)

// ErrorText returns the canonical message for a code.
func ErrorText(code Code) string {
	return code.Message()
}

// Error is the error type every entry point returns; its Code is one of
// the stable numeric codes.
type Error = syntax.Error

// errNoMatch is the shared no-match failure.
var errNoMatch = &Error{Code: NoMatch}

// Match is one capture record. Start and End are byte offsets, half-open;
// both are -1 when the group did not participate. FinalTag is the match
// flavor on record 0: the value of the last cut crossed, or 1.
type Match struct {
	Start    int
	End      int
	FinalTag int
}

// Regexp is a compiled pattern. Immutable after Compile; Free releases
// the DFA storage it holds in its universe.
type Regexp struct {
	u         *Universe
	pattern   string
	syn       syntax.Flags
	tree      *syntax.Node
	info      *syntax.Info
	translate []byte

	newlineAnchor bool
	noSub         bool

	pre  prefilterFunc
	owns map[*compiled]bool

	freed bool
}

// Compile compiles a pattern under the POSIX flag set in the default
// universe.
func Compile(pattern string, flags CompFlags) (*Regexp, error) {
	return DefaultUniverse().Compile(pattern, flags)
}

// MustCompile is Compile for patterns known to be valid; it panics on
// error.
func MustCompile(pattern string, flags CompFlags) *Regexp {
	re, err := Compile(pattern, flags)
	if err != nil {
		panic("rx: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileDialect compiles a pattern under one of the named syntax
// flag-sets (Emacs, Awk, Grep, Egrep, the POSIX dialects) with an
// optional caller-supplied translate table, in the default universe.
func CompileDialect(pattern string, dialect syntax.Flags, translate []byte) (*Regexp, error) {
	return DefaultUniverse().CompileDialect(pattern, dialect, translate, false, false)
}

// Pattern returns the source pattern.
func (re *Regexp) Pattern() string { return re.pattern }

// GroupCount returns the number of capture groups.
func (re *Regexp) GroupCount() int { return re.info.Ngroups }

// Anchored reports whether every match must begin at a line or buffer
// start.
func (re *Regexp) Anchored() bool { return re.info.Anchored }

// Free releases the pattern's references into its universe's DFA cache.
// The storage of DFAs no other live pattern shares is reclaimed. Using
// the pattern afterward fails with BadPattern.
func (re *Regexp) Free() {
	if re.freed {
		return
	}
	re.freed = true
	for c := range re.owns {
		re.u.release(c)
	}
	re.owns = nil
}
