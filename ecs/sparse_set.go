package ecs

// sparseSet stores one component kind keyed by entity slot. Values are the
// *T pointers handed to Add.
type sparseSet struct {
	dense  []Entity
	values []any
	sparse []int32
}

func (s *sparseSet) index(id entityID) (int, bool) {
	if int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 || int(idx) >= len(s.dense) || s.dense[idx].id() != id {
		return 0, false
	}
	return int(idx), true
}

func (s *sparseSet) has(e Entity) bool {
	idx, ok := s.index(e.id())
	return ok && s.dense[idx] == e
}

func (s *sparseSet) get(e Entity) (any, bool) {
	idx, ok := s.index(e.id())
	if !ok || s.dense[idx] != e {
		return nil, false
	}
	return s.values[idx], true
}

// set inserts or replaces and returns the replaced value, if any.
func (s *sparseSet) set(e Entity, v any) any {
	id := e.id()
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx, ok := s.index(id); ok {
		old := s.values[idx]
		s.dense[idx] = e
		s.values[idx] = v
		return old
	}
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
	s.sparse[id] = int32(len(s.dense) - 1)
	return nil
}

func (s *sparseSet) remove(e Entity) (any, bool) {
	idx, ok := s.index(e.id())
	if !ok || s.dense[idx] != e {
		return nil, false
	}
	old := s.values[idx]
	last := len(s.dense) - 1
	moved := s.dense[last]

	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved.id()] = int32(idx)

	s.dense[last] = 0
	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[e.id()] = -1
	return old, true
}

func (s *sparseSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}
