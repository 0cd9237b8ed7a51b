package ecs

import "errors"

// Awaker components are initialised when their entity is awoken, or at Add
// time on an entity that is already awake.
type Awaker interface {
	Awake(w *World, e Entity) error
}

// Activatable components follow the entity's activation in the hierarchy.
type Activatable interface {
	OnActive(w *World, e Entity)
	OnInactive(w *World, e Entity)
}

// Purger components release their resources when removed or destroyed.
type Purger interface {
	Purge(w *World, e Entity)
}

// Awake wakes e and its descendants, calling Awake on every component in
// insertion order. Entities already awake are skipped.
func Awake(w *World, e Entity) error {
	if !IsAlive(w, e) {
		return nil
	}
	var errs []error
	for _, ent := range subtree(w, e) {
		m := w.meta[ent]
		if m == nil || m.awake {
			continue
		}
		m.awake = true
		for _, id := range append(m.order[:0:0], m.order...) {
			v, ok := w.stores[id].get(ent)
			if !ok {
				continue
			}
			if a, ok := v.(Awaker); ok {
				if err := a.Awake(w, ent); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}

func IsAwake(w *World, e Entity) bool {
	if !IsAlive(w, e) {
		return false
	}
	return w.meta[e].awake
}

// SetActive sets the entity's own activation flag. Awake entities whose
// hierarchy activation changes get OnActive (parents first) or OnInactive
// (children first, components in reverse order).
func SetActive(w *World, e Entity, active bool) {
	if !IsAlive(w, e) {
		return
	}
	m := w.meta[e]
	if m.inactive == !active {
		return
	}
	w.reactivate(e, func() { m.inactive = !active })
}

func ActiveSelf(w *World, e Entity) bool {
	return IsAlive(w, e) && !w.meta[e].inactive
}

// ActiveInHierarchy is true when e and all its ancestors are active.
func ActiveInHierarchy(w *World, e Entity) bool {
	for IsAlive(w, e) {
		m := w.meta[e]
		if m.inactive {
			return false
		}
		if !m.parent.Valid() {
			return true
		}
		e = m.parent
	}
	return false
}

// reactivate runs change and notifies every entity under root whose
// hierarchy activation flipped.
func (w *World) reactivate(root Entity, change func()) {
	ents := subtree(w, root)
	before := make([]bool, len(ents))
	for i, e := range ents {
		before[i] = ActiveInHierarchy(w, e)
	}
	change()
	for i := len(ents) - 1; i >= 0; i-- {
		e := ents[i]
		if before[i] && !ActiveInHierarchy(w, e) {
			w.notify(e, false)
		}
	}
	for i, e := range ents {
		if !before[i] && ActiveInHierarchy(w, e) {
			w.notify(e, true)
		}
	}
}

func (w *World) notify(e Entity, active bool) {
	m := w.meta[e]
	if m == nil || !m.awake {
		return
	}
	order := append(m.order[:0:0], m.order...)
	for i := range order {
		id := order[i]
		if !active {
			id = order[len(order)-1-i]
		}
		v, ok := w.stores[id].get(e)
		if !ok {
			continue
		}
		a, ok := v.(Activatable)
		if !ok {
			continue
		}
		if active {
			a.OnActive(w, e)
		} else {
			a.OnInactive(w, e)
		}
	}
}

// subtree lists root and its descendants in pre-order.
func subtree(w *World, root Entity) []Entity {
	out := []Entity{root}
	for i := 0; i < len(out); i++ {
		if m := w.meta[out[i]]; m != nil {
			out = append(out, m.children...)
		}
	}
	return out
}
