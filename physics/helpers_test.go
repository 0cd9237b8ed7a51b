package physics

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const step = 1.0 / 60.0

func newTestSystem(t *testing.T) *System {
	t.Helper()
	sys := NewSystem(DefaultCVars())
	if err := sys.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(sys.Shutdown)
	return sys
}

func newTestWorld(t *testing.T, sys *System, gravity cp.Vector) *World {
	t.Helper()
	w, err := sys.AllocWorld(WorldDesc{Gravity: &gravity})
	if err != nil {
		t.Fatalf("alloc world: %v", err)
	}
	return w
}

func newBall(t *testing.T, sys *System, mass float64, origin cp.Vector) *RigidBody {
	t.Helper()
	rb, err := sys.CreateRigidBody(CollidableDesc{
		Shape:  ShapeDesc{Kind: ShapeCircle, Radius: 0.25},
		Mass:   mass,
		Origin: origin,
	})
	if err != nil {
		t.Fatalf("create rigid body: %v", err)
	}
	return rb
}

func newGround(t *testing.T, sys *System) *Collidable {
	t.Helper()
	c, err := sys.CreateCollidable(CollidableDesc{
		Kind:     KindStatic,
		Shape:    ShapeDesc{Kind: ShapeBox, Width: 20, Height: 1},
		Friction: 1,
	})
	if err != nil {
		t.Fatalf("create ground: %v", err)
	}
	return c
}

func stepN(w *World, n int) {
	for range n {
		w.Step(step)
	}
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
