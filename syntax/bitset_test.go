package syntax

import "testing"

func TestSetBasicOps(t *testing.T) {
	s := NewSet(256)
	if !s.IsEmpty() {
		t.Fatal("new set should be empty")
	}
	s.Insert('a')
	s.Insert('b')
	if !s.Contains('a') || !s.Contains('b') {
		t.Error("inserted members missing")
	}
	if s.Contains('c') {
		t.Error("unexpected member 'c'")
	}
	if s.Population() != 2 {
		t.Errorf("Population() = %d, want 2", s.Population())
	}
	s.Remove('a')
	if s.Contains('a') {
		t.Error("removed member still present")
	}
	s.Toggle('a')
	if !s.Contains('a') {
		t.Error("toggle did not insert")
	}
	s.Toggle('a')
	if s.Contains('a') {
		t.Error("toggle did not remove")
	}
}

func TestSetOutOfRange(t *testing.T) {
	s := NewSet(256)
	s.Insert(-1)
	s.Insert(256)
	if !s.IsEmpty() {
		t.Error("out-of-range inserts must be ignored")
	}
	if s.Contains(-1) || s.Contains(1000) {
		t.Error("out-of-range membership must be false")
	}
}

func TestSetAlgebra(t *testing.T) {
	mk := func(members ...int) *Set {
		s := NewSet(256)
		for _, m := range members {
			s.Insert(m)
		}
		return s
	}
	tests := []struct {
		name string
		op   func(a, b *Set)
		want *Set
	}{
		{name: "union", op: func(a, b *Set) { a.Union(b) }, want: mk(1, 2, 3, 4)},
		{name: "intersect", op: func(a, b *Set) { a.Intersect(b) }, want: mk(2, 3)},
		{name: "diff", op: func(a, b *Set) { a.Diff(b) }, want: mk(1)},
		{name: "xor", op: func(a, b *Set) { a.Xor(b) }, want: mk(1, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mk(1, 2, 3)
			b := mk(2, 3, 4)
			tt.op(a, b)
			if !a.Equal(tt.want) {
				t.Errorf("%s: got %v, want %v", tt.name, a.Members(), tt.want.Members())
			}
		})
	}
}

func TestSetComplement(t *testing.T) {
	s := NewSet(200) // odd size exercises the tail mask
	s.Insert(0)
	s.Insert(199)
	s.Complement()
	if s.Contains(0) || s.Contains(199) {
		t.Error("complement kept original members")
	}
	if !s.Contains(100) {
		t.Error("complement missing middle member")
	}
	if s.Population() != 198 {
		t.Errorf("Population() = %d, want 198", s.Population())
	}
	// Complement twice is identity.
	s.Complement()
	want := NewSet(200)
	want.Insert(0)
	want.Insert(199)
	if !s.Equal(want) {
		t.Error("double complement is not identity")
	}
}

func TestSetSubset(t *testing.T) {
	a := NewSet(256)
	a.Insert('x')
	b := UniverseSet(256)
	if !a.Subset(b) {
		t.Error("a must be a subset of the universe")
	}
	if b.Subset(a) {
		t.Error("universe is not a subset of {x}")
	}
	if !a.Subset(a.Clone()) {
		t.Error("a set is a subset of its clone")
	}
}

func TestSetHashStable(t *testing.T) {
	a := NewSet(256)
	b := NewSet(256)
	for _, c := range []int{3, 17, 200} {
		a.Insert(c)
		b.Insert(c)
	}
	if a.Hash() != b.Hash() {
		t.Error("equal sets must hash equally")
	}
	b.Insert(4)
	if a.Hash() == b.Hash() {
		t.Error("different sets should hash differently")
	}
	sizes := NewSet(128)
	sizes.Insert(3)
	sizes.Insert(17)
	onlyTwo := NewSet(256)
	onlyTwo.Insert(3)
	onlyTwo.Insert(17)
	if sizes.Hash() == onlyTwo.Hash() {
		t.Error("hash must mix the alphabet size")
	}
}

func TestUniverseSet(t *testing.T) {
	u := UniverseSet(100)
	if u.Population() != 100 {
		t.Errorf("Population() = %d, want 100", u.Population())
	}
	if u.Contains(100) {
		t.Error("universe must stop at its size")
	}
}
