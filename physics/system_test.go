package physics

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
)

func TestSystemLifecycle(t *testing.T) {
	sys := NewSystem(nil)
	if _, err := sys.AllocWorld(WorldDesc{}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized before Init, got %v", err)
	}
	sys.Shutdown()

	if err := sys.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := sys.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
	w, err := sys.AllocWorld(WorldDesc{})
	if err != nil {
		t.Fatalf("alloc world: %v", err)
	}
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 1})
	a.AddToWorld(w)
	b.AddToWorld(w)
	con, err := sys.CreateConstraint(ConstraintDesc{Kind: ConstraintSocket, BodyA: a, BodyB: b})
	if err != nil {
		t.Fatalf("create constraint: %v", err)
	}
	con.AddToWorld(w)

	sys.Shutdown()
	if sys.Worlds() != 0 || sys.Collidables() != 0 || sys.Constraints() != 0 {
		t.Fatalf("expected empty registry after shutdown, got %d/%d/%d", sys.Worlds(), sys.Collidables(), sys.Constraints())
	}
	if !w.IsFreed() || a.IsInWorld() || con.IsInWorld() || !con.IsDestroyed() {
		t.Fatalf("expected everything released by shutdown")
	}
	sys.Shutdown()
}

func TestFreeWorldUnknown(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	other := NewSystem(nil)
	if err := other.Init(); err != nil {
		t.Fatalf("init other: %v", err)
	}
	defer other.Shutdown()
	foreign, _ := other.AllocWorld(WorldDesc{})

	if err := sys.FreeWorld(foreign); !errors.Is(err, ErrUnknownWorld) {
		t.Fatalf("expected ErrUnknownWorld for foreign world, got %v", err)
	}
	if err := sys.FreeWorld(nil); !errors.Is(err, ErrUnknownWorld) {
		t.Fatalf("expected ErrUnknownWorld for nil, got %v", err)
	}
	if err := sys.FreeWorld(w); err != nil {
		t.Fatalf("free world: %v", err)
	}
	if err := sys.FreeWorld(w); !errors.Is(err, ErrUnknownWorld) {
		t.Fatalf("expected ErrUnknownWorld on double free, got %v", err)
	}
	if sys.Worlds() != 0 {
		t.Fatalf("expected registry untouched by bad frees, got %d worlds", sys.Worlds())
	}
}

func TestFreeWorldDetachesMembers(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	rb := newBall(t, sys, 1, cp.Vector{X: 3})
	rb.AddToWorld(w)
	if err := sys.FreeWorld(w); err != nil {
		t.Fatalf("free world: %v", err)
	}
	if rb.IsInWorld() {
		t.Fatalf("expected body detached from freed world")
	}
	if got := rb.Origin(); got != (cp.Vector{X: 3}) {
		t.Fatalf("expected body to keep its origin, got %v", got)
	}
	rb.AddToWorld(w)
	if rb.IsInWorld() {
		t.Fatalf("adding to a freed world should be ignored")
	}
}

func TestDestroyCollidableNeverAttached(t *testing.T) {
	sys := newTestSystem(t)
	c, err := sys.CreateCollidable(CollidableDesc{
		Kind:  KindStatic,
		Shape: ShapeDesc{Kind: ShapeBox, Width: 1, Height: 1},
	})
	if err != nil {
		t.Fatalf("create collidable: %v", err)
	}
	h := c.Handle()
	if _, ok := sys.Lookup(h); !ok {
		t.Fatalf("expected handle %d registered", h)
	}

	sys.DestroyCollidable(c)
	if _, ok := sys.Lookup(h); ok {
		t.Fatalf("expected handle %d gone after destroy", h)
	}
	if !c.IsDestroyed() {
		t.Fatalf("expected collidable marked destroyed")
	}
	sys.DestroyCollidable(c)
	sys.DestroyCollidable(nil)
	sys.DestroyConstraint(nil)
	sys.DestroyVehicle(nil)
}

func TestCreateCollidableValidation(t *testing.T) {
	sys := newTestSystem(t)
	circle := ShapeDesc{Kind: ShapeCircle, Radius: 1}
	tests := []struct {
		name string
		desc CollidableDesc
	}{
		{"soft unsupported", CollidableDesc{Kind: KindSoft, Shape: circle, Mass: 1}},
		{"negative mass", CollidableDesc{Shape: circle, Mass: -1}},
		{"zero radius", CollidableDesc{Shape: ShapeDesc{Kind: ShapeCircle}, Mass: 1}},
		{"negative radius", CollidableDesc{Shape: ShapeDesc{Kind: ShapeCircle, Radius: -2}, Mass: 1}},
		{"flat box", CollidableDesc{Shape: ShapeDesc{Kind: ShapeBox, Width: 1}, Mass: 1}},
		{"degenerate segment", CollidableDesc{Kind: KindStatic, Shape: ShapeDesc{Kind: ShapeSegment}}},
		{"two vertex polygon", CollidableDesc{Shape: ShapeDesc{Kind: ShapePolygon, Vertices: []cp.Vector{{}, {X: 1}}}, Mass: 1}},
		{"negative friction", CollidableDesc{Shape: circle, Mass: 1, Friction: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sys.Collidables()
			c, err := sys.CreateCollidable(tt.desc)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var cfg *ConfigError
			if !errors.As(err, &cfg) || cfg.Op != "create collidable" {
				t.Fatalf("expected *ConfigError from create collidable, got %#v", err)
			}
			if c != nil || sys.Collidables() != before {
				t.Fatalf("failed create must not register anything")
			}
		})
	}
}

func TestCreateCollidableShapes(t *testing.T) {
	sys := newTestSystem(t)
	shapes := []ShapeDesc{
		{Kind: ShapeCircle, Radius: 0.5},
		{Kind: ShapeBox, Width: 2, Height: 1, Offset: cp.Vector{X: 1}},
		{Kind: ShapeSegment, A: cp.Vector{X: -1}, B: cp.Vector{X: 1}, Radius: 0.1},
		{Kind: ShapePolygon, Vertices: []cp.Vector{{X: 0, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}},
	}
	seen := map[Handle]bool{}
	for _, shape := range shapes {
		rb, err := sys.CreateRigidBody(CollidableDesc{Shape: shape, Mass: 2})
		if err != nil {
			t.Fatalf("create %v: %v", shape.Kind, err)
		}
		if !rb.Handle().Valid() || seen[rb.Handle()] {
			t.Fatalf("expected fresh non-zero handle, got %d", rb.Handle())
		}
		seen[rb.Handle()] = true
		if rb.Mass() != 2 || rb.body.Moment() <= 0 {
			t.Fatalf("expected mass 2 and positive moment, got %v/%v", rb.Mass(), rb.body.Moment())
		}
		if rb.IsInWorld() {
			t.Fatalf("new collidable must not be in a world")
		}
	}
}

func TestCheckModifiedCVars(t *testing.T) {
	cvars := DefaultCVars()
	sys := NewSystem(cvars)
	if err := sys.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer sys.Shutdown()
	w, _ := sys.AllocWorld(WorldDesc{})
	pinned, _ := sys.AllocWorld(WorldDesc{Gravity: &cp.Vector{X: 1}})

	cvars.DebugAABB = true
	cvars.DebugContactPoints = true
	cvars.CCD = false
	cvars.GravityY = -20
	cvars.DisableDeactivation = true
	cvars.Iterations = 4

	if w.DebugMode() != 0 {
		t.Fatalf("cvars must not apply before CheckModifiedCVars")
	}
	sys.CheckModifiedCVars()

	if !w.DebugMode().Has(DebugAABB) || !w.DebugMode().Has(DebugContactPoints) || w.DebugMode().Has(DebugWireframe) {
		t.Fatalf("unexpected debug flags %b", w.DebugMode())
	}
	if w.CCDEnabled() {
		t.Fatalf("expected CCD disabled")
	}
	if w.Gravity() != (cp.Vector{Y: -20}) {
		t.Fatalf("expected cvar gravity, got %v", w.Gravity())
	}
	if w.space.SleepTimeThreshold != cp.INFINITY {
		t.Fatalf("expected deactivation suppressed")
	}
	if w.space.Iterations != 4 {
		t.Fatalf("expected 4 iterations, got %d", w.space.Iterations)
	}
	if pinned.Gravity() != (cp.Vector{X: 1}) {
		t.Fatalf("world gravity override lost: %v", pinned.Gravity())
	}
}
