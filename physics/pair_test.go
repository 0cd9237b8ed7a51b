package physics

import (
	"math"
	"testing"
)

func TestCollisionPairKeySymmetry(t *testing.T) {
	handles := []Handle{0, 1, 2, 3, 7, 8, 1 << 20, 1<<32 + 1, math.MaxUint64 - 1, math.MaxUint64}
	for _, x := range handles {
		for _, y := range handles {
			a := NewCollisionPairKey(x, y)
			b := NewCollisionPairKey(y, x)
			if a.Compare(b) != 0 {
				t.Fatalf("compare(%d,%d) vs (%d,%d) = %d", x, y, y, x, a.Compare(b))
			}
			if a.Hash() != b.Hash() {
				t.Fatalf("hash(%d,%d)=%x, hash(%d,%d)=%x", x, y, a.Hash(), y, x, b.Hash())
			}
			if a != b {
				t.Fatalf("keys for (%d,%d) not equal as values", x, y)
			}
		}
	}
}

func TestCollisionPairKeyCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b CollisionPairKey
		want int
	}{
		{"equal", NewCollisionPairKey(1, 2), NewCollisionPairKey(2, 1), 0},
		{"min decides", NewCollisionPairKey(5, 1), NewCollisionPairKey(2, 3), -1},
		{"max breaks tie", NewCollisionPairKey(1, 9), NewCollisionPairKey(4, 1), 1},
		{"zero value", CollisionPairKey{}, NewCollisionPairKey(0, 1), -1},
		{"swapped literal", CollisionPairKey{a: 9, b: 3}, NewCollisionPairKey(3, 9), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Fatalf("Compare = %d, want %d", got, tt.want)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Fatalf("reverse Compare = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestCollisionPairKeyHashSpreadsNeighbours(t *testing.T) {
	seen := map[uint64]CollisionPairKey{}
	for i := Handle(1); i < 64; i++ {
		k := NewCollisionPairKey(i, i+1)
		if prev, ok := seen[k.Hash()]; ok {
			t.Fatalf("hash collision between %v and %v", prev, k)
		}
		seen[k.Hash()] = k
	}
}

func TestPairSet(t *testing.T) {
	var s PairSet
	if !s.Insert(NewCollisionPairKey(4, 2)) {
		t.Fatalf("first insert should report new")
	}
	if s.Insert(NewCollisionPairKey(2, 4)) {
		t.Fatalf("swapped insert should be a duplicate")
	}
	s.Insert(NewCollisionPairKey(1, 9))
	s.Insert(NewCollisionPairKey(3, 1))

	if s.Len() != 3 {
		t.Fatalf("expected 3 pairs, got %d", s.Len())
	}
	if !s.Has(NewCollisionPairKey(9, 1)) {
		t.Fatalf("expected Has for swapped key")
	}
	sorted := s.Sorted()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Compare(sorted[i]) >= 0 {
			t.Fatalf("keys not sorted: %v", sorted)
		}
	}
	lo, hi := sorted[0].Handles()
	if lo != 1 || hi != 3 {
		t.Fatalf("expected (1,3) first, got (%d,%d)", lo, hi)
	}

	s.Reset()
	if s.Len() != 0 || s.Has(NewCollisionPairKey(2, 4)) {
		t.Fatalf("expected empty set after reset")
	}
}
