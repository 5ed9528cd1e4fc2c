package syntax

// Flags is a syntax flag-set. Each bit enables or disables one piece of
// pattern grammar; the named dialect constants below are the combinations
// the engine's callers actually use.
type Flags uint32

const (
	// BackslashEscapeInLists makes backslash an escape character inside
	// bracket expressions.
	BackslashEscapeInLists Flags = 1 << iota

	// BkPlusQm makes \+ and \? the repetition operators; bare + and ? are
	// then ordinary characters.
	BkPlusQm

	// CharClasses enables [:alpha:]-style classes inside bracket
	// expressions.
	CharClasses

	// ContextIndepAnchors makes ^ and $ operators everywhere, not only in
	// their canonical positions.
	ContextIndepAnchors

	// ContextIndepOps makes repetition operators operators everywhere.
	ContextIndepOps

	// ContextInvalidOps rejects repetition operators that have no usable
	// predecessor instead of demoting them to literals.
	ContextInvalidOps

	// DotNewline lets . match newline.
	DotNewline

	// DotNotNull keeps . from matching the NUL byte.
	DotNotNull

	// HatListsNotNewline keeps a negated bracket expression from matching
	// newline.
	HatListsNotNewline

	// Intervals enables {m,n} counted repetition.
	Intervals

	// LimitedOps disables +, ? and alternation entirely, backslashed or
	// not.
	LimitedOps

	// NewlineAlt makes newline an alternation delimiter.
	NewlineAlt

	// NoBkBraces makes {m,n} the interval syntax; \{ \} are then literal.
	NoBkBraces

	// NoBkParens makes ( ) grouping syntax; \( \) are then literal.
	NoBkParens

	// NoBkRefs disables \1 through \9 back-references; the digits are
	// literal.
	NoBkRefs

	// NoBkVbar makes | the alternation operator; \| is then literal.
	NoBkVbar

	// NoEmptyRanges rejects ranges [b-a] whose start collates after their
	// end.
	NoEmptyRanges

	// UnmatchedRightParenOrd makes an unmatched close paren an ordinary
	// character instead of an error.
	UnmatchedRightParenOrd
)

// posixCommon is the grammar shared by all four POSIX dialects.
const posixCommon = CharClasses | DotNewline | DotNotNull | Intervals | NoEmptyRanges

// Named dialects, exactly the bit combinations the mail reader's callers
// select between.
const (
	Emacs Flags = 0

	Awk = BackslashEscapeInLists | DotNotNull | NoBkParens | NoBkRefs |
		NoBkVbar | ContextIndepOps | UnmatchedRightParenOrd

	Grep = BkPlusQm | CharClasses | HatListsNotNewline | Intervals | NewlineAlt

	Egrep = CharClasses | ContextIndepAnchors | ContextIndepOps |
		HatListsNotNewline | NewlineAlt | NoBkParens | NoBkVbar

	PosixBasic = posixCommon | BkPlusQm

	Sed = PosixBasic

	PosixMinimalBasic = posixCommon | LimitedOps

	PosixExtended = posixCommon | ContextIndepAnchors | ContextIndepOps |
		NoBkBraces | NoBkParens | NoBkVbar | UnmatchedRightParenOrd

	PosixMinimalExtended = posixCommon | ContextIndepAnchors | ContextInvalidOps |
		NoBkBraces | NoBkParens | NoBkRefs | NoBkVbar | UnmatchedRightParenOrd

	PosixAwk = PosixExtended | BackslashEscapeInLists
)

// DupMax is the largest interval bound {m,n} accepts.
const DupMax = 32767
