package ecs

import "github.com/jakecoffman/cp"

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

const (
	EventCollision       = "collision"
	EventJointBroken     = "joint_broken"
	EventEntityDestroyed = "entity_destroyed"
)

// CollisionEvent reports one touching pair after a physics step. A is the
// side with the lower collidable handle; Normal points from A to B.
type CollisionEvent struct {
	A, B    Entity
	Normal  cp.Vector
	Impulse float64
	First   bool
}

// JointBrokenEvent names the entity whose joint exceeded its break impulse.
type JointBrokenEvent struct {
	Entity  Entity
	Impulse float64
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Peek returns the queued events of one type without consuming them.
func (q *EventQueue) Peek(typ string) []Event {
	if q == nil {
		return nil
	}
	var out []Event
	for _, evt := range q.items {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
