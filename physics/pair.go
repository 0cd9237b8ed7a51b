package physics

import "slices"

// Handle identifies a collidable for the lifetime of its System. Zero is never assigned.
type Handle uint64

func (h Handle) Valid() bool {
	return h != 0
}

// CollisionPairKey is the order independent identity of two collidables.
type CollisionPairKey struct {
	a Handle
	b Handle
}

func NewCollisionPairKey(a, b Handle) CollisionPairKey {
	if b < a {
		a, b = b, a
	}
	return CollisionPairKey{a: a, b: b}
}

func (k CollisionPairKey) canonical() (Handle, Handle) {
	if k.b < k.a {
		return k.b, k.a
	}
	return k.a, k.b
}

// Handles returns the pair as (min, max).
func (k CollisionPairKey) Handles() (Handle, Handle) {
	return k.canonical()
}

// Contains reports whether h is one side of the pair.
func (k CollisionPairKey) Contains(h Handle) bool {
	return k.a == h || k.b == h
}

// Compare orders keys lexicographically on (min, max).
func (k CollisionPairKey) Compare(other CollisionPairKey) int {
	lo, hi := k.canonical()
	olo, ohi := other.canonical()
	switch {
	case lo < olo:
		return -1
	case lo > olo:
		return 1
	case hi < ohi:
		return -1
	case hi > ohi:
		return 1
	}
	return 0
}

// Hash mixes each handle separately and XORs the results, so swapping sides
// cannot change the value.
func (k CollisionPairKey) Hash() uint64 {
	lo, hi := k.canonical()
	return mix64(uint64(lo)) ^ mix64(uint64(hi))
}

// splitmix64 finalizer
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// PairSet de-duplicates collision pairs within one step.
type PairSet struct {
	seen map[CollisionPairKey]struct{}
	keys []CollisionPairKey
}

// Insert adds the pair and reports whether it was not present yet.
func (s *PairSet) Insert(key CollisionPairKey) bool {
	if s.seen == nil {
		s.seen = make(map[CollisionPairKey]struct{})
	}
	key = NewCollisionPairKey(key.canonical())
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	return true
}

func (s *PairSet) Has(key CollisionPairKey) bool {
	if s == nil || s.seen == nil {
		return false
	}
	_, ok := s.seen[NewCollisionPairKey(key.canonical())]
	return ok
}

func (s *PairSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Sorted returns a copy of the keys ordered by Compare.
func (s *PairSet) Sorted() []CollisionPairKey {
	if s == nil || len(s.keys) == 0 {
		return nil
	}
	out := slices.Clone(s.keys)
	slices.SortFunc(out, CollisionPairKey.Compare)
	return out
}

func (s *PairSet) Reset() {
	if s == nil {
		return
	}
	clear(s.seen)
	s.keys = s.keys[:0]
}
