package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

func newSocketPair(t *testing.T, sys *System, w *World) (*RigidBody, *RigidBody, *Constraint) {
	t.Helper()
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 2})
	a.AddToWorld(w)
	b.AddToWorld(w)
	con, err := sys.CreateConstraint(ConstraintDesc{
		Kind:   ConstraintSocket,
		BodyA:  a,
		BodyB:  b,
		FrameA: Frame{Anchor: cp.Vector{X: 1}},
		FrameB: Frame{Anchor: cp.Vector{X: -1}},
	})
	if err != nil {
		t.Fatalf("create socket: %v", err)
	}
	return a, b, con
}

func TestConstraintAttachIsIdempotent(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	_, _, con := newSocketPair(t, sys, w)

	con.RemoveFromWorld()
	if con.IsInWorld() || w.ConstraintCount() != 0 {
		t.Fatalf("remove on a never attached constraint must be a no-op")
	}
	con.AddToWorld(w)
	con.AddToWorld(w)
	if !con.IsInWorld() || w.ConstraintCount() != 1 {
		t.Fatalf("expected exactly one registration, got %d", w.ConstraintCount())
	}
	for _, p := range con.parts {
		if !w.space.ContainsConstraint(p.c) {
			t.Fatalf("part missing from space")
		}
	}
	con.RemoveFromWorld()
	con.RemoveFromWorld()
	if con.IsInWorld() || w.ConstraintCount() != 0 {
		t.Fatalf("expected constraint out of world")
	}
	for _, p := range con.parts {
		if w.space.ContainsConstraint(p.c) {
			t.Fatalf("part left in space after remove")
		}
	}
}

func TestConstraintWaitsForBodies(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	a, b, con := newSocketPair(t, sys, w)
	b.RemoveFromWorld()

	con.AddToWorld(w)
	if con.IsInWorld() || !con.IsPending() {
		t.Fatalf("constraint must wait while body B is outside the world")
	}
	b.AddToWorld(w)
	if !con.IsInWorld() || con.IsPending() {
		t.Fatalf("constraint should attach once both bodies are in the world")
	}

	a.RemoveFromWorld()
	if con.IsInWorld() || !con.IsPending() {
		t.Fatalf("removing body A should suspend the constraint")
	}
	a.AddToWorld(w)
	if !con.IsInWorld() {
		t.Fatalf("constraint should resume with body A")
	}

	con.RemoveFromWorld()
	a.RemoveFromWorld()
	a.AddToWorld(w)
	if con.IsInWorld() || con.IsPending() {
		t.Fatalf("explicitly removed constraint must stay out of the world")
	}
}

func TestCreateConstraintValidation(t *testing.T) {
	sys := newTestSystem(t)
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 1})
	other := NewSystem(nil)
	if err := other.Init(); err != nil {
		t.Fatalf("init other: %v", err)
	}
	defer other.Shutdown()
	foreign := newBall(t, other, 1, cp.Vector{})

	tests := []struct {
		name string
		desc ConstraintDesc
	}{
		{"unknown kind", ConstraintDesc{BodyA: a, BodyB: b}},
		{"missing body a", ConstraintDesc{Kind: ConstraintSocket, BodyB: b}},
		{"hinge without body b", ConstraintDesc{Kind: ConstraintHinge, BodyA: a}},
		{"wheel without body b", ConstraintDesc{Kind: ConstraintWheel, BodyA: a, Wheel: WheelParams{Travel: Range{Lower: 0, Upper: 1}}}},
		{"same body", ConstraintDesc{Kind: ConstraintSocket, BodyA: a, BodyB: a}},
		{"foreign body", ConstraintDesc{Kind: ConstraintSocket, BodyA: a, BodyB: foreign}},
		{"negative break impulse", ConstraintDesc{Kind: ConstraintSocket, BodyA: a, BreakImpulse: -1}},
		{"inverted hinge limits", ConstraintDesc{Kind: ConstraintHinge, BodyA: a, BodyB: b, Hinge: HingeParams{LimitsEnabled: true, Limits: Range{Lower: 1, Upper: 0}}}},
		{"inverted generic angle", ConstraintDesc{Kind: ConstraintGeneric, BodyA: a, BodyB: b, Generic: GenericParams{Angular: Range{Lower: 1, Upper: -1}}}},
		{"negative generic distance", ConstraintDesc{Kind: ConstraintGeneric, BodyA: a, BodyB: b, Generic: GenericParams{Linear: Range{Lower: -1, Upper: 1}}}},
		{"empty slider travel", ConstraintDesc{Kind: ConstraintSlider, BodyA: a, BodyB: b}},
		{"negative stiffness", ConstraintDesc{Kind: ConstraintSpring, BodyA: a, BodyB: b, Spring: SpringParams{Stiffness: -1}}},
		{"negative motor impulse", ConstraintDesc{Kind: ConstraintHinge, BodyA: a, BodyB: b, Hinge: HingeParams{Motor: Motor{Enabled: true, MaxImpulse: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			con, err := sys.CreateConstraint(tt.desc)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if con != nil || sys.Constraints() != 0 {
				t.Fatalf("failed create must not register a constraint")
			}
		})
	}
	if len(a.constraints) != 0 || len(b.constraints) != 0 {
		t.Fatalf("failed creates must not link bodies")
	}
}

func TestConstraintParts(t *testing.T) {
	sys := newTestSystem(t)
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 1})
	travel := Range{Lower: -1, Upper: 1}
	motor := Motor{Enabled: true, TargetVelocity: 1, MaxImpulse: 1}

	tests := []struct {
		name  string
		desc  ConstraintDesc
		parts int
	}{
		{"world socket", ConstraintDesc{Kind: ConstraintSocket, BodyA: a}, 1},
		{"free hinge", ConstraintDesc{Kind: ConstraintHinge, BodyA: a, BodyB: b}, 1},
		{"limited motor hinge", ConstraintDesc{Kind: ConstraintHinge, BodyA: a, BodyB: b, Hinge: HingeParams{LimitsEnabled: true, Motor: motor}}, 3},
		{"slider", ConstraintDesc{Kind: ConstraintSlider, BodyA: a, BodyB: b, Slider: SliderParams{Limits: travel}}, 2},
		{"spring", ConstraintDesc{Kind: ConstraintSpring, BodyA: a, BodyB: b}, 1},
		{"limited spring", ConstraintDesc{Kind: ConstraintSpring, BodyA: a, BodyB: b, Spring: SpringParams{LimitsEnabled: true, Limits: Range{Upper: 2}}}, 2},
		{"generic weld", ConstraintDesc{Kind: ConstraintGeneric, BodyA: a, BodyB: b}, 2},
		{"generic spring", ConstraintDesc{Kind: ConstraintGenericSpring, BodyA: a, BodyB: b}, 4},
		{"wheel", ConstraintDesc{Kind: ConstraintWheel, BodyA: a, BodyB: b, Wheel: WheelParams{Travel: travel}}, 2},
		{"driven wheel", ConstraintDesc{Kind: ConstraintWheel, BodyA: a, BodyB: b, Wheel: WheelParams{Travel: travel, Motor: motor}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			con, err := sys.CreateConstraint(tt.desc)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			defer sys.DestroyConstraint(con)
			if len(con.parts) != tt.parts {
				t.Fatalf("expected %d parts, got %d", tt.parts, len(con.parts))
			}
			if !math.IsInf(con.BreakImpulse(), 1) {
				t.Fatalf("expected unbreakable default, got %v", con.BreakImpulse())
			}
		})
	}
}

func TestConstraintDisableKeepsRegistration(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 4})
	a.AddToWorld(w)
	b.AddToWorld(w)
	con, err := sys.CreateConstraint(ConstraintDesc{
		Kind:   ConstraintSpring,
		BodyA:  a,
		BodyB:  b,
		Spring: SpringParams{RestLength: 2, Stiffness: 50, Damping: 5, LimitsEnabled: true, Limits: Range{Upper: 10}},
	})
	if err != nil {
		t.Fatalf("create spring: %v", err)
	}
	con.AddToWorld(w)
	con.SetEnabled(false)

	if !con.IsInWorld() || con.IsEnabled() {
		t.Fatalf("disabled constraint must stay in world")
	}
	for _, p := range con.parts {
		if !w.space.ContainsConstraint(p.c) {
			t.Fatalf("disabled part left the space")
		}
		if s, ok := p.c.Class.(*cp.DampedSpring); ok {
			if s.Stiffness != 0 || s.Damping != 0 {
				t.Fatalf("disabled spring still has stiffness %v damping %v", s.Stiffness, s.Damping)
			}
		} else if p.c.MaxForce() != 0 {
			t.Fatalf("disabled part still has max force %v", p.c.MaxForce())
		}
	}
	stepN(w, 60)
	if d := a.Origin().Distance(b.Origin()); !near(d, 4, 1e-9) {
		t.Fatalf("disabled spring pulled bodies to %v", d)
	}

	con.SetEnabled(true)
	stepN(w, 300)
	if d := a.Origin().Distance(b.Origin()); !near(d, 2, 0.05) {
		t.Fatalf("enabled spring should settle at rest length, distance %v", d)
	}
}

func TestConstraintBreaksAboveThreshold(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{Y: -10})

	hang := func(breakImpulse float64) (*RigidBody, *Constraint) {
		rb := newBall(t, sys, 1, cp.Vector{})
		rb.AddToWorld(w)
		con, err := sys.CreateConstraint(ConstraintDesc{Kind: ConstraintSocket, BodyA: rb, BreakImpulse: breakImpulse})
		if err != nil {
			t.Fatalf("create socket: %v", err)
		}
		con.AddToWorld(w)
		return rb, con
	}
	fragile, weak := hang(0.01)
	fragile.SetFilter(1, 0, 0)
	sturdy, strong := hang(0)
	sturdy.SetFilter(1, 0, 0)

	var broken []*Constraint
	w.OnBreak(func(c *Constraint) { broken = append(broken, c) })
	w.Step(step)

	if !weak.IsBroken() || weak.IsEnabled() {
		t.Fatalf("expected constraint broken and disabled, impulse %v", weak.AppliedImpulse())
	}
	if weak.AppliedImpulse() <= 0.01 {
		t.Fatalf("measured impulse %v should exceed the threshold", weak.AppliedImpulse())
	}
	if len(broken) != 1 || broken[0] != weak {
		t.Fatalf("expected one break callback, got %d", len(broken))
	}
	if !weak.IsInWorld() {
		t.Fatalf("broken constraint stays registered until its owner destroys it")
	}

	weak.SetEnabled(true)
	if weak.IsEnabled() {
		t.Fatalf("broken constraint must not re-enable")
	}
	stepN(w, 30)
	if fragile.Origin().Y > -0.1 {
		t.Fatalf("body behind a broken joint should fall, at %v", fragile.Origin())
	}
	if strong.IsBroken() || math.Abs(sturdy.Origin().Y) > 0.01 {
		t.Fatalf("unbreakable joint failed: broken=%v at %v", strong.IsBroken(), sturdy.Origin())
	}

	sys.DestroyConstraint(weak)
	again, err := sys.CreateConstraint(ConstraintDesc{Kind: ConstraintSocket, BodyA: fragile})
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if again.IsBroken() || !again.IsEnabled() {
		t.Fatalf("recreated constraint should start whole")
	}
}

func TestConstraintDestroyWakesBodies(t *testing.T) {
	sys := newTestSystem(t)
	w, err := sys.AllocWorld(WorldDesc{Gravity: &cp.Vector{}, SleepTime: 0.1, IdleSpeed: 1})
	if err != nil {
		t.Fatalf("alloc world: %v", err)
	}
	a, b, con := newSocketPair(t, sys, w)
	con.AddToWorld(w)
	stepN(w, 30)
	if a.IsActive() || b.IsActive() {
		t.Fatalf("expected both bodies asleep before destroy")
	}

	sys.DestroyConstraint(con)
	if !a.IsActive() || !b.IsActive() {
		t.Fatalf("expected both bodies awake after destroy")
	}
	if w.ConstraintCount() != 0 || sys.Constraints() != 0 || len(a.constraints) != 0 {
		t.Fatalf("destroyed constraint still registered")
	}
}

func TestDestroyBodyDestroysItsConstraints(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	a, b, con := newSocketPair(t, sys, w)
	con.AddToWorld(w)

	sys.DestroyCollidable(b.Collidable)
	if !con.IsDestroyed() || con.IsInWorld() {
		t.Fatalf("constraint should die with its body")
	}
	if len(a.constraints) != 0 {
		t.Fatalf("surviving body still links the constraint")
	}
	w.Step(step)
}

func TestConstraintSetters(t *testing.T) {
	sys := newTestSystem(t)
	a := newBall(t, sys, 1, cp.Vector{})
	b := newBall(t, sys, 1, cp.Vector{X: 1})
	hinge, err := sys.CreateConstraint(ConstraintDesc{
		Kind:  ConstraintHinge,
		BodyA: a,
		BodyB: b,
		Hinge: HingeParams{LimitsEnabled: true, Limits: Range{Lower: 0, Upper: math.Pi / 2}},
	})
	if err != nil {
		t.Fatalf("create hinge: %v", err)
	}

	if err := hinge.SetAngularLimits(2, math.Pi/2); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for lower > upper, got %v", err)
	}
	if got := hinge.Desc().Hinge.Limits; got.Lower != 0 {
		t.Fatalf("rejected limits must not apply, got %+v", got)
	}
	if err := hinge.SetLinearLimits(0, 1); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for hinge linear limits, got %v", err)
	}
	if err := hinge.SetRestLength(1); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for hinge rest length, got %v", err)
	}
	if err := hinge.SetMotor(true, 3, 10); err != nil {
		t.Fatalf("set motor: %v", err)
	}
	if len(hinge.parts) != 3 {
		t.Fatalf("expected motor part added, got %d parts", len(hinge.parts))
	}
	if err := hinge.DisableAngularLimits(); err != nil {
		t.Fatalf("disable limits: %v", err)
	}
	if len(hinge.parts) != 2 {
		t.Fatalf("expected limit part removed, got %d parts", len(hinge.parts))
	}
	if err := hinge.SetBreakImpulse(0); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for zero break impulse, got %v", err)
	}
	hinge.EnableCollision(true)
	if !hinge.CollisionEnabled() {
		t.Fatalf("expected collision enabled")
	}

	sys.DestroyConstraint(hinge)
	if err := hinge.SetMotor(false, 0, 0); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("expected ErrDestroyed after destroy, got %v", err)
	}
}

func TestHingeMotorDrivesBody(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	base := newBall(t, sys, 0, cp.Vector{})
	wheel := newBall(t, sys, 1, cp.Vector{X: 1})
	base.AddToWorld(w)
	wheel.AddToWorld(w)
	hinge, err := sys.CreateConstraint(ConstraintDesc{
		Kind:   ConstraintHinge,
		BodyA:  base,
		BodyB:  wheel,
		FrameA: Frame{Anchor: cp.Vector{X: 1}},
		Hinge:  HingeParams{Motor: Motor{Enabled: true, TargetVelocity: 2, MaxImpulse: 100}},
	})
	if err != nil {
		t.Fatalf("create hinge: %v", err)
	}
	hinge.AddToWorld(w)
	stepN(w, 30)
	if got := wheel.AngularVelocity(); !near(got, 2, 1e-6) {
		t.Fatalf("expected motor to spin wheel at 2 rad/s, got %v", got)
	}
}

func TestMotorImpulseCapFollowsStep(t *testing.T) {
	const maxImpulse = 0.01
	spin := func(t *testing.T, dt float64, enabled bool) float64 {
		t.Helper()
		sys := newTestSystem(t)
		w := newTestWorld(t, sys, cp.Vector{})
		base := newBall(t, sys, 0, cp.Vector{})
		wheel := newBall(t, sys, 1, cp.Vector{X: 1})
		base.AddToWorld(w)
		wheel.AddToWorld(w)
		hinge, err := sys.CreateConstraint(ConstraintDesc{
			Kind:   ConstraintHinge,
			BodyA:  base,
			BodyB:  wheel,
			FrameA: Frame{Anchor: cp.Vector{X: 1}},
			Hinge:  HingeParams{Motor: Motor{Enabled: true, TargetVelocity: 100, MaxImpulse: maxImpulse}},
		})
		if err != nil {
			t.Fatalf("create hinge: %v", err)
		}
		hinge.SetEnabled(enabled)
		hinge.AddToWorld(w)
		w.Step(dt)
		return wheel.AngularVelocity()
	}

	// One step never applies more than the impulse cap, whatever its length.
	want := spin(t, step, true)
	if want <= 0 || want >= 100 {
		t.Fatalf("motor should be clamped by its impulse cap, got %v", want)
	}
	tests := []struct {
		name    string
		dt      float64
		enabled bool
		want    float64
	}{
		{"half step", step / 2, true, want},
		{"double step", step * 2, true, want},
		{"disabled", step / 2, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spin(t, tt.dt, tt.enabled); !near(math.Abs(got), math.Abs(tt.want), 1e-9) {
				t.Fatalf("angular velocity after one step = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHingeLimitsHoldAngle(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	base := newBall(t, sys, 0, cp.Vector{})
	arm := newBall(t, sys, 1, cp.Vector{X: 1})
	base.AddToWorld(w)
	arm.AddToWorld(w)
	hinge, err := sys.CreateConstraint(ConstraintDesc{
		Kind:   ConstraintHinge,
		BodyA:  base,
		BodyB:  arm,
		FrameA: Frame{Anchor: cp.Vector{X: 1}},
		Hinge:  HingeParams{LimitsEnabled: true, Limits: Range{Lower: 0, Upper: 0.5}},
	})
	if err != nil {
		t.Fatalf("create hinge: %v", err)
	}
	hinge.AddToWorld(w)
	arm.SetAngularVelocity(5)
	stepN(w, 60)
	if a := arm.Axis(); a < -0.05 || a > 0.55 {
		t.Fatalf("hinge angle %v escaped limits", a)
	}
}

func TestSliderKeepsBodyOnAxis(t *testing.T) {
	sys := newTestSystem(t)
	w := newTestWorld(t, sys, cp.Vector{})
	rail := newBall(t, sys, 0, cp.Vector{})
	cart := newBall(t, sys, 1, cp.Vector{})
	rail.AddToWorld(w)
	cart.AddToWorld(w)
	slider, err := sys.CreateConstraint(ConstraintDesc{
		Kind:   ConstraintSlider,
		BodyA:  rail,
		BodyB:  cart,
		Slider: SliderParams{Limits: Range{Lower: -1, Upper: 1}},
	})
	if err != nil {
		t.Fatalf("create slider: %v", err)
	}
	slider.AddToWorld(w)
	cart.SetLinearVelocity(cp.Vector{X: 3, Y: 3})
	stepN(w, 60)
	p := cart.Origin()
	if math.Abs(p.Y) > 0.05 || p.X > 1.05 || p.X < 0.5 {
		t.Fatalf("cart left the rail: %v", p)
	}
	if math.Abs(cart.Axis()) > 0.01 {
		t.Fatalf("slider let the cart rotate: %v", cart.Axis())
	}
}
