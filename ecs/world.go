package ecs

import (
	"errors"

	"github.com/milk9111/physcore/ecs/component"
)

var (
	ErrHierarchyCycle = errors.New("ecs: parent would create a cycle")
	ErrNameTaken      = errors.New("ecs: name already in use")
)

// World owns entities, their components and the entity tree.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*sparseSet
	meta     map[Entity]*entityMeta
	names    map[string]Entity
	events   EventQueue
	physics  physicsContext
}

type entityMeta struct {
	name     string
	parent   Entity
	children []Entity
	inactive bool
	awake    bool
	dying    bool
	// component kinds in insertion order; Purge runs in reverse
	order []component.ComponentID
}

func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*sparseSet),
		meta:   make(map[Entity]*entityMeta),
		names:  make(map[string]Entity),
	}
}

func CreateEntity(w *World) Entity {
	e := w.entities.create()
	w.meta[e] = &entityMeta{}
	return e
}

// IsAlive is false for destroyed handles and for entities being destroyed.
func IsAlive(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	m := w.meta[e]
	return m != nil && !m.dying
}

func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	w.entities.each(func(e Entity) {
		if IsAlive(w, e) {
			out = append(out, e)
		}
	})
	return out
}

// DestroyEntity destroys the children of e first, then purges the components
// of e in reverse insertion order and releases the handle.
func DestroyEntity(w *World, e Entity) bool {
	if !IsAlive(w, e) {
		return false
	}
	m := w.meta[e]
	for _, child := range append([]Entity(nil), m.children...) {
		DestroyEntity(w, child)
	}
	m.dying = true

	for i := len(m.order) - 1; i >= 0; i-- {
		id := m.order[i]
		value, ok := w.stores[id].get(e)
		if !ok {
			continue
		}
		if p, ok := value.(Purger); ok {
			p.Purge(w, e)
		}
		w.stores[id].remove(e)
	}

	if m.parent.Valid() {
		if pm := w.meta[m.parent]; pm != nil {
			pm.children = removeEntity(pm.children, e)
		}
	}
	if m.name != "" && w.names[m.name] == e {
		delete(w.names, m.name)
	}
	delete(w.meta, e)
	w.entities.destroy(e)
	w.events.Push(Event{Type: EventEntityDestroyed, Data: e})
	return true
}

func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) store(id component.ComponentID) *sparseSet {
	s, ok := w.stores[id]
	if !ok {
		s = &sparseSet{}
		w.stores[id] = s
	}
	return s
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, v := range list {
		if v == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
