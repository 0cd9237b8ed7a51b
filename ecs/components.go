package ecs

import (
	"fmt"

	"github.com/milk9111/physcore/ecs/component"
)

// Add stores value as the kind component of e, replacing (and purging) a
// different previous value. On an awake entity the new component is awoken
// immediately.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	m := w.meta[e]
	old := w.store(kind.ID()).set(e, value)
	switch {
	case old == nil:
		m.order = append(m.order, kind.ID())
	case old == any(value):
		return nil
	default:
		if p, ok := old.(Purger); ok {
			p.Purge(w, e)
		}
	}
	if m.awake {
		if a, ok := any(value).(Awaker); ok {
			if err := a.Awake(w, e); err != nil {
				return fmt.Errorf("ecs: awake %T on %v: %w", value, e, err)
			}
		}
	}
	return nil
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if w == nil {
		return nil, false
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		return nil, false
	}
	v, ok := s.get(e)
	if !ok {
		return nil, false
	}
	out, ok := v.(*T)
	return out, ok
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	_, ok := Get(w, e, kind)
	return ok
}

// Remove purges and drops the kind component of e.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s, ok := w.stores[kind.ID()]
	if !ok {
		return false
	}
	v, ok := s.get(e)
	if !ok {
		return false
	}
	if p, ok := v.(Purger); ok {
		p.Purge(w, e)
	}
	s.remove(e)
	m := w.meta[e]
	for i, id := range m.order {
		if id == kind.ID() {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Count is the number of live entities carrying kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	if w == nil {
		return 0
	}
	return w.stores[kind.ID()].len()
}

// snapshot copies the entity list so callbacks may add or remove components.
func snapshot(w *World, id component.ComponentID) []Entity {
	s, ok := w.stores[id]
	if !ok || len(s.dense) == 0 {
		return nil
	}
	return append([]Entity(nil), s.dense...)
}

func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil {
		return
	}
	for _, e := range snapshot(w, kind.ID()) {
		if !IsAlive(w, e) {
			continue
		}
		if v, ok := Get(w, e, kind); ok {
			fn(e, v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	ForEach(w, ka, func(e Entity, a *A) {
		b, ok := Get(w, e, kb)
		if !ok {
			return
		}
		fn(e, a, b)
	})
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	ForEach2(w, ka, kb, func(e Entity, a *A, b *B) {
		c, ok := Get(w, e, kc)
		if !ok {
			return
		}
		fn(e, a, b, c)
	})
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	ForEach3(w, ka, kb, kc, func(e Entity, a *A, b *B, c *C) {
		d, ok := Get(w, e, kd)
		if !ok {
			return
		}
		fn(e, a, b, c, d)
	})
}
