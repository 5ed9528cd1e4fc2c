package lazy

import (
	"testing"

	"github.com/coregx/rx/nfa"
)

func newTestEngine(t *testing.T, pattern string, budget int) (*Engine, *Cache) {
	t.Helper()
	u := nfa.NewUniverse()
	n := buildNFA(t, u, pattern)
	c := newTestCache(t, budget)
	return NewEngine(c, n), c
}

func TestFitAt(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		start   int
		end     int
		want    bool
	}{
		{name: "exact literal", pattern: "abc", input: "abc", end: 3, want: true},
		{name: "short span", pattern: "abc", input: "abc", end: 2, want: false},
		{name: "wrong byte", pattern: "abc", input: "abd", end: 3, want: false},
		{name: "empty pattern empty span", pattern: "", input: "xyz", start: 1, end: 1, want: true},
		{name: "empty pattern nonempty span", pattern: "", input: "xyz", end: 1, want: false},
		{name: "star zero", pattern: "a*", input: "", end: 0, want: true},
		{name: "star many", pattern: "a*", input: "aaaa", end: 4, want: true},
		{name: "star wrong tail", pattern: "a*", input: "aab", end: 3, want: false},
		{name: "alternation left", pattern: "ab|cd", input: "ab", end: 2, want: true},
		{name: "alternation right", pattern: "ab|cd", input: "cd", end: 2, want: true},
		{name: "class", pattern: "[a-c]x", input: "bx", end: 2, want: true},
		{name: "inner span", pattern: "bc", input: "abcd", start: 1, end: 3, want: true},
		{name: "plus needs one", pattern: "a+", input: "", end: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t, tt.pattern, 0)
			ok, _, err := eng.FitAt(Bytes(tt.input), tt.start, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.want {
				t.Errorf("FitAt = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestFitTag(t *testing.T) {
	t.Run("plain accept is tag 1", func(t *testing.T) {
		eng, _ := newTestEngine(t, "ab", 0)
		ok, tag, err := eng.FitAt(Bytes("ab"), 0, 2)
		if err != nil || !ok {
			t.Fatalf("FitAt = %v, %v", ok, err)
		}
		if tag != 1 {
			t.Errorf("tag = %d, want 1", tag)
		}
	})
	t.Run("leading cut tags the match", func(t *testing.T) {
		eng, _ := newTestEngine(t, "[[:cut 7:]]foo", 0)
		ok, tag, err := eng.FitAt(Bytes("foo"), 0, 3)
		if err != nil || !ok {
			t.Fatalf("FitAt = %v, %v", ok, err)
		}
		if tag != 7 {
			t.Errorf("tag = %d, want 7", tag)
		}
	})
	t.Run("branch cuts flavor their branch", func(t *testing.T) {
		eng, _ := newTestEngine(t, "foo[[:cut 2:]]|bar[[:cut 3:]]", 0)
		_, tag, err := eng.FitAt(Bytes("bar"), 0, 3)
		if err != nil {
			t.Fatal(err)
		}
		if tag != 3 {
			t.Errorf("tag = %d, want 3", tag)
		}
	})
}

func TestAdvanceToFinal(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    int
	}{
		{name: "greatest final", pattern: "a+", input: "aaab", want: 3},
		{name: "single final", pattern: "ab", input: "abab", want: 2},
		{name: "no final", pattern: "ab", input: "xx", want: -1},
		{name: "final at zero", pattern: "a*", input: "bbb", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t, tt.pattern, 0)
			last, _, err := eng.AdvanceToFinal(Bytes(tt.input), 0, len(tt.input))
			if err != nil {
				t.Fatal(err)
			}
			if last != tt.want {
				t.Errorf("AdvanceToFinal = %d, want %d", last, tt.want)
			}
		})
	}
}

func TestAdvanceYieldsOnMultiFuture(t *testing.T) {
	eng, _ := newTestEngine(t, "a$b|ac", 0)
	o, err := eng.Advance(Bytes("ac"), 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusYield {
		t.Fatalf("Status = %v, want StatusYield", o.Status)
	}
	if o.Pos != 0 {
		t.Errorf("yield position = %d, want 0 (the unconsumed byte)", o.Pos)
	}
	if o.Edge == nil || len(o.Edge.Options) != 2 {
		t.Error("yield must hand the super-edge to the caller")
	}
	if _, _, err := eng.FitAt(Bytes("ac"), 0, 2); err == nil {
		t.Error("FitAt must refuse multi-future transitions")
	}
}

// Determinism: the same walk gives the same outcome regardless of cache
// pressure and reclamation in between.
func TestAdvanceDeterministicUnderPressure(t *testing.T) {
	pattern := "(ab|cd|ef)+x"
	inputs := []string{"ababx", "cdefx", "abx", "efefefx", "abc"}

	big, _ := newTestEngine(t, pattern, 0)
	small, smallCache := newTestEngine(t, pattern,
		2*(DefaultConfig().CSetSize*frameCost+superstateOverhead))

	for round := 0; round < 3; round++ {
		for _, in := range inputs {
			a, _, err := big.FitAt(bytesOf(in))
			if err != nil {
				t.Fatal(err)
			}
			b, _, err := small.FitAt(bytesOf(in))
			if err != nil {
				t.Fatal(err)
			}
			if a != b {
				t.Fatalf("round %d input %q: big=%v small=%v", round, in, a, b)
			}
		}
	}
	if smallCache.SemifreeCount()+smallCache.LiveCount() == 0 {
		t.Error("small cache built no states")
	}
}

// bytesOf packages the common (input, start, end) triple for FitAt.
func bytesOf(s string) (Input, int, int) {
	return Bytes(s), 0, len(s)
}

func TestBytesInput(t *testing.T) {
	b := Bytes("hello")
	if b.Len() != 5 {
		t.Errorf("Len = %d, want 5", b.Len())
	}
	if string(b.Chunk(0)) != "hello" {
		t.Error("Chunk(0) must return the whole slice")
	}
	if string(b.Chunk(3)) != "lo" {
		t.Error("Chunk(3) must return the tail")
	}
	if b.Chunk(5) != nil {
		t.Error("Chunk past the end must be empty")
	}
}
