package content

import "sync/atomic"

// Store publishes the current tree. Readers never block; Swap replaces the
// tree for all subsequent Current calls.
type Store struct {
	cur atomic.Pointer[Tree]
	gen atomic.Uint64
}

// NewStore returns a store publishing t (which may be nil).
func NewStore(t *Tree) *Store {
	s := &Store{}
	if t != nil {
		s.Swap(t)
	}
	return s
}

// Current returns the published tree, or nil before the first Swap.
func (s *Store) Current() *Tree { return s.cur.Load() }

// Swap publishes t under the next generation and returns that generation.
// t must not have been published before.
func (s *Store) Swap(t *Tree) uint64 {
	g := s.gen.Add(1)
	t.generation = g
	s.cur.Store(t)
	return g
}
