package ecs

import (
	"fmt"

	"github.com/milk9111/physcore/ecs/component"
)

// SetParent moves child under parent; a zero parent makes child a root.
func SetParent(w *World, child, parent Entity) error {
	if !IsAlive(w, child) {
		return component.ErrEntityNotAlive
	}
	if parent.Valid() && !IsAlive(w, parent) {
		return component.ErrEntityNotAlive
	}
	for p := parent; p.Valid(); p = w.meta[p].parent {
		if p == child {
			return fmt.Errorf("ecs: parent %v under %v: %w", child, parent, ErrHierarchyCycle)
		}
	}
	m := w.meta[child]
	if m.parent == parent {
		return nil
	}
	w.reactivate(child, func() {
		if m.parent.Valid() {
			old := w.meta[m.parent]
			old.children = removeEntity(old.children, child)
		}
		m.parent = parent
		if parent.Valid() {
			pm := w.meta[parent]
			pm.children = append(pm.children, child)
		}
	})
	return nil
}

func Parent(w *World, e Entity) (Entity, bool) {
	if !IsAlive(w, e) {
		return 0, false
	}
	p := w.meta[e].parent
	return p, p.Valid()
}

func Children(w *World, e Entity) []Entity {
	if !IsAlive(w, e) {
		return nil
	}
	return append([]Entity(nil), w.meta[e].children...)
}

// SetName registers a unique lookup name for e; an empty name clears it.
func SetName(w *World, e Entity, name string) error {
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	if other, ok := w.names[name]; ok && other != e && name != "" {
		return fmt.Errorf("ecs: name %q: %w", name, ErrNameTaken)
	}
	m := w.meta[e]
	if m.name != "" {
		delete(w.names, m.name)
	}
	m.name = name
	if name != "" {
		w.names[name] = e
	}
	return nil
}

func Name(w *World, e Entity) string {
	if !IsAlive(w, e) {
		return ""
	}
	return w.meta[e].name
}

func FindByName(w *World, name string) (Entity, bool) {
	if w == nil || name == "" {
		return 0, false
	}
	e, ok := w.names[name]
	if !ok || !IsAlive(w, e) {
		return 0, false
	}
	return e, true
}
