package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestCollidableAttachIsIdempotent(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{Y: -10})
	rb := newBall(t, sys, 1, cp.Vector{})

	rb.RemoveFromWorld()
	if rb.IsInWorld() || w.Bodies() != 0 {
		t.Fatalf("remove on a never attached body must be a no-op")
	}

	rb.AddToWorld(w)
	rb.AddToWorld(w)
	if !rb.IsInWorld() || rb.World() != w {
		t.Fatalf("expected body in world")
	}
	if w.Bodies() != 1 {
		t.Fatalf("double add registered %d bodies", w.Bodies())
	}

	rb.RemoveFromWorld()
	rb.RemoveFromWorld()
	if rb.IsInWorld() || w.Bodies() != 0 {
		t.Fatalf("expected body out of world after remove")
	}
}

func TestCollidableTransformSurvivesDetach(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	rb := newBall(t, sys, 1, cp.Vector{})
	rb.AddToWorld(w)

	p := cp.Vector{X: 4, Y: -2}
	rb.SetOrigin(p)
	rb.SetAxis(0.75)
	rb.SetLinearVelocity(cp.Vector{X: 1})
	rb.RemoveFromWorld()
	rb.AddToWorld(w)

	if got := rb.Origin(); got != p {
		t.Fatalf("origin after reattach = %v, want %v", got, p)
	}
	if got := rb.Axis(); got != 0.75 {
		t.Fatalf("axis after reattach = %v, want 0.75", got)
	}
	if got := rb.LinearVelocity(); got != (cp.Vector{X: 1}) {
		t.Fatalf("velocity after reattach = %v", got)
	}
}

func TestCollidableTransformOutOfWorld(t *testing.T) {
	sys := newTestSystem(t)
	rb := newBall(t, sys, 1, cp.Vector{})
	rb.SetTransform(cp.Vector{X: 2, Y: 3}, 1)
	if rb.Origin() != (cp.Vector{X: 2, Y: 3}) || rb.Axis() != 1 {
		t.Fatalf("transform not written out of world: %v %v", rb.Origin(), rb.Axis())
	}
	bb := rb.AABB()
	if !near(bb.L, 1.75, 1e-9) || !near(bb.T, 3.25, 1e-9) {
		t.Fatalf("AABB not following transform: %+v", bb)
	}
}

func TestCollidableMovesBetweenWorlds(t *testing.T) {
	sys := newTestSystem(t)
	w1 := newTestWorld(t, sys, cp.Vector{})
	w2 := newTestWorld(t, sys, cp.Vector{})
	rb := newBall(t, sys, 1, cp.Vector{})

	rb.AddToWorld(w1)
	rb.AddToWorld(w2)
	if rb.World() != w2 || w1.Bodies() != 0 || w2.Bodies() != 1 {
		t.Fatalf("expected body moved to second world (w1=%d w2=%d)", w1.Bodies(), w2.Bodies())
	}
}

func TestStaticCollidableMovedInWorld(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{Y: -10})
	ground := newGround(t, sys)
	ground.AddToWorld(w)

	ground.SetOrigin(cp.Vector{Y: -5})
	ball := newBall(t, sys, 1, cp.Vector{Y: 0.6})
	ball.AddToWorld(w)
	stepN(w, 10)
	if len(w.Contacts()) != 0 {
		t.Fatalf("ball should no longer touch the moved ground")
	}
	if ball.Origin().Y >= 0.6 {
		t.Fatalf("expected ball to fall, at %v", ball.Origin())
	}
}
