package prefilter

import (
	"testing"

	"github.com/coregx/rx/syntax"
)

func buildFor(t *testing.T, pattern string) Prefilter {
	t.Helper()
	tree, groups, err := syntax.Parse([]byte(pattern), syntax.PosixExtended, 256, nil)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	info := syntax.Analyze(tree, groups, 256)
	return Build(tree, info)
}

func TestBuildSelection(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string // concrete type, or "" for none
	}{
		{name: "literal alternation", pattern: "foo|bar|baz", want: "*prefilter.literalPrefilter"},
		{name: "single literal", pattern: "needle", want: "*prefilter.memchrPrefilter"},
		{name: "small class head", pattern: "[ab]x", want: "*prefilter.literalPrefilter"},
		{name: "mixed head falls back to fastmap", pattern: "(ab|c*d)x", want: "*prefilter.fastmapPrefilter"},
		{name: "nullable pattern", pattern: "a*", want: ""},
		{name: "wide head", pattern: ".x", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := buildFor(t, tt.pattern)
			got := ""
			switch pf.(type) {
			case *literalPrefilter:
				got = "*prefilter.literalPrefilter"
			case *memchrPrefilter:
				got = "*prefilter.memchrPrefilter"
			case *fastmapPrefilter:
				got = "*prefilter.fastmapPrefilter"
			case nil:
				got = ""
			}
			if got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestFindCandidates(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		haystack string
		start    int
		want     int
	}{
		{name: "multi literal hit", pattern: "foo|bar", haystack: "xx bar yy", want: 3},
		{name: "multi literal later", pattern: "foo|bar", haystack: "bar foo", start: 1, want: 4},
		{name: "multi literal miss", pattern: "foo|bar", haystack: "quux", want: -1},
		{name: "memchr hit", pattern: "needle", haystack: "aaan", want: 3},
		{name: "memchr miss", pattern: "needle", haystack: "aaa", want: -1},
		{name: "fastmap hit", pattern: "[xy]*z", haystack: "aybz", want: 1},
		{name: "fastmap miss", pattern: "[xy]*z", haystack: "abc", want: -1},
		{name: "past end", pattern: "foo|bar", haystack: "foo", start: 3, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := buildFor(t, tt.pattern)
			if pf == nil {
				t.Fatalf("no prefilter for %q", tt.pattern)
			}
			got := pf.Find([]byte(tt.haystack), tt.start)
			if got != tt.want {
				t.Errorf("Find(%q, %d) = %d, want %d", tt.haystack, tt.start, got, tt.want)
			}
		})
	}
}

func TestRequiredPrefixes(t *testing.T) {
	extract := func(pattern string) ([][]byte, bool) {
		tree, groups, err := syntax.Parse([]byte(pattern), syntax.PosixExtended, 256, nil)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", pattern, err)
		}
		syntax.Analyze(tree, groups, 256)
		return requiredPrefixes(tree)
	}

	t.Run("anchored head passes through", func(t *testing.T) {
		lits, ok := extract("^(foo|bar)x")
		if !ok || len(lits) != 2 {
			t.Fatalf("got %v, %v; want the two literals", lits, ok)
		}
	})
	t.Run("optional head defeats extraction", func(t *testing.T) {
		if _, ok := extract("(a?)(foo|bar)"); ok {
			t.Error("a nullable head must not claim required prefixes")
		}
	})
	t.Run("plus keeps its child literal", func(t *testing.T) {
		lits, ok := extract("(foo)+x")
		if !ok || len(lits) != 1 || string(lits[0]) != "foo" {
			t.Errorf("got %v, %v; want [foo]", lits, ok)
		}
	})
}
