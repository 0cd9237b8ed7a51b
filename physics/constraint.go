package physics

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
)

// DefaultTimeStep seeds the motor force cap until the constraint's world
// steps and sets it from the actual sub-step.
const DefaultTimeStep = 1.0 / 60.0

type part struct {
	c      *cp.Constraint
	spring bool
	// motor impulse cap per step, applied as a force cap of motor/h
	motor float64
}

// Constraint joins one or two rigid bodies through one or more cp constraints.
// Parameters live here and are written to the cp parts on every change.
type Constraint struct {
	sys  *System
	desc ConstraintDesc

	parts   []part
	world   *World
	pending *World

	enabled     bool
	broken      bool
	lastImpulse float64
	destroyed   bool

	UserData any
}

func newConstraint(s *System, desc ConstraintDesc) *Constraint {
	c := &Constraint{sys: s, desc: desc, enabled: true}
	c.parts = c.buildParts()
	desc.BodyA.linkConstraint(c)
	if desc.BodyB != nil {
		desc.BodyB.linkConstraint(c)
	}
	return c
}

func (c *Constraint) Kind() ConstraintKind {
	return c.desc.Kind
}

func (c *Constraint) BodyA() *RigidBody {
	return c.desc.BodyA
}

// BodyB is nil for a constraint pinned to the world.
func (c *Constraint) BodyB() *RigidBody {
	return c.desc.BodyB
}

// Desc returns a copy of the current parameters.
func (c *Constraint) Desc() ConstraintDesc {
	return c.desc
}

func (c *Constraint) IsDestroyed() bool {
	return c == nil || c.destroyed
}

func (c *Constraint) World() *World {
	return c.world
}

// IsInWorld reports whether the constraint takes part in its world's solve.
func (c *Constraint) IsInWorld() bool {
	return c.world != nil
}

// IsPending reports a constraint waiting for its bodies to join the requested
// world. A freed world releases everything waiting on it.
func (c *Constraint) IsPending() bool {
	return c.pending != nil && !c.pending.freed
}

// AddToWorld registers every part with w. When a body is not in w yet the
// constraint waits and attaches once it arrives.
func (c *Constraint) AddToWorld(w *World) {
	if c.destroyed || w == nil || w.freed || c.world == w || c.pending == w {
		return
	}
	c.RemoveFromWorld()
	if !c.bodiesIn(w) {
		log.Printf("physics: %s constraint waits for its bodies to join world %p", c.desc.Kind, w)
		c.pending = w
		return
	}
	c.attach(w)
}

func (c *Constraint) RemoveFromWorld() {
	c.pending = nil
	if c.world != nil {
		c.detach()
	}
}

func (c *Constraint) attach(w *World) {
	defer guardSolver("add constraint to world")
	for _, p := range c.parts {
		if !w.space.ContainsConstraint(p.c) {
			w.space.AddConstraint(p.c)
		}
	}
	c.world = w
	w.addConstraint(c)
}

func (c *Constraint) detach() {
	defer guardSolver("remove constraint from world")
	w := c.world
	for _, p := range c.parts {
		if w.space.ContainsConstraint(p.c) {
			w.space.RemoveConstraint(p.c)
		}
	}
	w.removeConstraint(c)
	c.world = nil
}

// suspend is called when one of the bodies leaves the world.
func (c *Constraint) suspend() {
	if c.world == nil {
		return
	}
	w := c.world
	c.detach()
	c.pending = w
}

func (c *Constraint) resume(w *World) {
	if c.pending != w || !c.bodiesIn(w) {
		return
	}
	c.pending = nil
	c.attach(w)
}

func (c *Constraint) bodiesIn(w *World) bool {
	if c.desc.BodyA.world != w {
		return false
	}
	return c.desc.BodyB == nil || c.desc.BodyB.world == w
}

func (c *Constraint) unlinkBodies() {
	c.desc.BodyA.unlinkConstraint(c)
	if c.desc.BodyB != nil {
		c.desc.BodyB.unlinkConstraint(c)
	}
}

func (c *Constraint) IsEnabled() bool {
	return c.enabled
}

// SetEnabled keeps the parts registered but stops them from producing force.
// A broken constraint stays disabled.
func (c *Constraint) SetEnabled(enabled bool) {
	if c.destroyed || c.enabled == enabled {
		return
	}
	if enabled && c.broken {
		log.Printf("physics: ignoring enable of broken %s constraint; destroy and recreate it", c.desc.Kind)
		return
	}
	c.enabled = enabled
	c.refresh()
}

func (c *Constraint) CollisionEnabled() bool {
	return c.desc.CollideConnected
}

// EnableCollision lets the two constrained bodies collide with each other.
func (c *Constraint) EnableCollision(enabled bool) {
	if c.destroyed || c.desc.CollideConnected == enabled {
		return
	}
	c.desc.CollideConnected = enabled
	for _, p := range c.parts {
		p.c.SetCollideBodies(enabled)
	}
}

func (c *Constraint) BreakImpulse() float64 {
	return c.desc.BreakImpulse
}

// SetBreakImpulse takes a positive threshold; math.Inf(1) never breaks.
func (c *Constraint) SetBreakImpulse(v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return configErr("set break impulse", "break_impulse", "must be positive")
	}
	c.desc.BreakImpulse = v
	return nil
}

func (c *Constraint) IsBroken() bool {
	return c.broken
}

// AppliedImpulse is the largest impulse a part applied during the last step.
func (c *Constraint) AppliedImpulse() float64 {
	return c.lastImpulse
}

// observeImpulse runs after each solve and breaks the constraint when the
// measured impulse exceeds the threshold.
func (c *Constraint) observeImpulse() bool {
	var imp float64
	for _, p := range c.parts {
		imp = math.Max(imp, math.Abs(p.c.Class.GetImpulse()))
	}
	c.lastImpulse = imp
	if !c.enabled || c.broken || imp <= c.desc.BreakImpulse {
		return false
	}
	c.broken = true
	c.enabled = false
	c.refresh()
	log.Printf("physics: %s constraint broke (impulse %.3f > %.3f)", c.desc.Kind, imp, c.desc.BreakImpulse)
	return true
}

func (c *Constraint) FrameA() Frame {
	return c.desc.FrameA
}

func (c *Constraint) FrameB() Frame {
	return c.desc.FrameB
}

func (c *Constraint) SetFrameA(f Frame) {
	c.desc.FrameA = f
	c.refresh()
}

// SetFrameB is a world frame for a constraint without body B.
func (c *Constraint) SetFrameB(f Frame) {
	c.desc.FrameB = f
	c.refresh()
}

// SetAngularLimits bounds the relative frame angle in radians. On a hinge it
// also turns the limits on.
func (c *Constraint) SetAngularLimits(lower, upper float64) error {
	r := Range{Lower: lower, Upper: upper}
	switch c.desc.Kind {
	case ConstraintGeneric:
		return c.update(func(d *ConstraintDesc) { d.Generic.Angular = r })
	case ConstraintGenericSpring:
		return c.update(func(d *ConstraintDesc) { d.GenericSpring.Angular = r })
	case ConstraintHinge:
		return c.update(func(d *ConstraintDesc) {
			d.Hinge.LimitsEnabled = true
			d.Hinge.Limits = r
		})
	}
	return c.unsupported("angular limits")
}

// DisableAngularLimits frees a hinge to rotate fully.
func (c *Constraint) DisableAngularLimits() error {
	if c.desc.Kind != ConstraintHinge {
		return c.unsupported("angular limits toggle")
	}
	return c.update(func(d *ConstraintDesc) { d.Hinge.LimitsEnabled = false })
}

func (c *Constraint) SetLinearLimits(lower, upper float64) error {
	r := Range{Lower: lower, Upper: upper}
	switch c.desc.Kind {
	case ConstraintGeneric:
		return c.update(func(d *ConstraintDesc) { d.Generic.Linear = r })
	case ConstraintGenericSpring:
		return c.update(func(d *ConstraintDesc) { d.GenericSpring.Linear = r })
	case ConstraintSlider:
		return c.update(func(d *ConstraintDesc) { d.Slider.Limits = r })
	case ConstraintSpring:
		return c.update(func(d *ConstraintDesc) {
			d.Spring.LimitsEnabled = true
			d.Spring.Limits = r
		})
	case ConstraintWheel:
		return c.update(func(d *ConstraintDesc) { d.Wheel.Travel = r })
	}
	return c.unsupported("linear limits")
}

func (c *Constraint) SetMotor(enabled bool, targetVelocity, maxImpulse float64) error {
	m := Motor{Enabled: enabled, TargetVelocity: targetVelocity, MaxImpulse: maxImpulse}
	switch c.desc.Kind {
	case ConstraintHinge:
		return c.update(func(d *ConstraintDesc) { d.Hinge.Motor = m })
	case ConstraintWheel:
		return c.update(func(d *ConstraintDesc) { d.Wheel.Motor = m })
	}
	return c.unsupported("motor")
}

func (c *Constraint) SetSpring(stiffness, damping float64) error {
	switch c.desc.Kind {
	case ConstraintGenericSpring:
		return c.update(func(d *ConstraintDesc) {
			d.GenericSpring.Stiffness, d.GenericSpring.Damping = stiffness, damping
		})
	case ConstraintSpring:
		return c.update(func(d *ConstraintDesc) {
			d.Spring.Stiffness, d.Spring.Damping = stiffness, damping
		})
	case ConstraintWheel:
		return c.update(func(d *ConstraintDesc) {
			d.Wheel.Stiffness, d.Wheel.Damping = stiffness, damping
		})
	}
	return c.unsupported("spring")
}

func (c *Constraint) SetAngularSpring(stiffness, damping float64) error {
	if c.desc.Kind != ConstraintGenericSpring {
		return c.unsupported("angular spring")
	}
	return c.update(func(d *ConstraintDesc) {
		d.GenericSpring.AngularStiffness, d.GenericSpring.AngularDamping = stiffness, damping
	})
}

func (c *Constraint) SetRestLength(l float64) error {
	switch c.desc.Kind {
	case ConstraintGenericSpring:
		return c.update(func(d *ConstraintDesc) { d.GenericSpring.RestLength = l })
	case ConstraintSpring:
		return c.update(func(d *ConstraintDesc) { d.Spring.RestLength = l })
	case ConstraintWheel:
		return c.update(func(d *ConstraintDesc) { d.Wheel.RestLength = l })
	}
	return c.unsupported("rest length")
}

// update validates a modified copy and only commits it when valid.
func (c *Constraint) update(fn func(*ConstraintDesc)) error {
	if c.destroyed {
		return ErrDestroyed
	}
	next := c.desc
	fn(&next)
	if err := validateParams("update constraint", &next); err != nil {
		return err
	}
	c.desc = next
	c.refresh()
	return nil
}

func (c *Constraint) unsupported(param string) error {
	return &unsupportedError{kind: c.desc.Kind, param: param}
}

type unsupportedError struct {
	kind  ConstraintKind
	param string
}

func (e *unsupportedError) Error() string {
	return "physics: " + e.kind.String() + " constraint has no " + e.param
}

func (e *unsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// refresh swaps in freshly built parts, keeping world registration.
func (c *Constraint) refresh() {
	if c.destroyed {
		return
	}
	defer guardSolver("rebuild constraint")
	var space *cp.Space
	if c.world != nil {
		space = c.world.space
	}
	for _, p := range c.parts {
		if space != nil && space.ContainsConstraint(p.c) {
			space.RemoveConstraint(p.c)
		}
	}
	c.parts = c.buildParts()
	if space != nil {
		for _, p := range c.parts {
			space.AddConstraint(p.c)
		}
	}
	c.wake()
}

// prestep converts motor impulse caps to the force cap cp clamps with over h.
// cp wakes the bodies on every cap write, so the cap is only written when h changes it.
func (c *Constraint) prestep(h float64) {
	if !c.enabled {
		return
	}
	for _, p := range c.parts {
		if p.motor == 0 {
			continue
		}
		if limit := p.motor / h; p.c.MaxForce() != limit {
			p.c.SetMaxForce(limit)
		}
	}
}

func (c *Constraint) wake() {
	c.desc.BodyA.Activate()
	if c.desc.BodyB != nil {
		c.desc.BodyB.Activate()
	}
}

func (c *Constraint) buildParts() []part {
	d := c.desc
	a := d.BodyA.body
	b := c.sys.ground
	if d.BodyB != nil {
		b = d.BodyB.body
	}
	aa, ab := d.FrameA.Anchor, d.FrameB.Anchor
	// relative angle offset so that a zero joint angle means aligned frames
	offset := d.FrameA.Angle - d.FrameB.Angle
	axis := cp.ForAngle(d.FrameA.Angle)

	var parts []part
	rigid := func(con *cp.Constraint) {
		parts = append(parts, part{c: con})
	}
	spring := func(con *cp.Constraint) {
		parts = append(parts, part{c: con, spring: true})
	}
	motor := func(m Motor) {
		if !m.Enabled {
			return
		}
		con := cp.NewSimpleMotor(a, b, -m.TargetVelocity)
		con.SetMaxForce(m.MaxImpulse / DefaultTimeStep)
		parts = append(parts, part{c: con, motor: m.MaxImpulse})
	}
	generic := func(p GenericParams) {
		if p.Linear.Upper == 0 {
			rigid(cp.NewPivotJoint2(a, b, aa, ab))
		} else {
			rigid(cp.NewSlideJoint(a, b, aa, ab, p.Linear.Lower, p.Linear.Upper))
		}
		rigid(cp.NewRotaryLimitJoint(a, b, p.Angular.Lower+offset, p.Angular.Upper+offset))
	}

	switch d.Kind {
	case ConstraintSocket:
		rigid(cp.NewPivotJoint2(a, b, aa, ab))
	case ConstraintHinge:
		rigid(cp.NewPivotJoint2(a, b, aa, ab))
		if d.Hinge.LimitsEnabled {
			rigid(cp.NewRotaryLimitJoint(a, b, d.Hinge.Limits.Lower+offset, d.Hinge.Limits.Upper+offset))
		}
		motor(d.Hinge.Motor)
	case ConstraintSlider:
		l := d.Slider.Limits
		rigid(cp.NewGrooveJoint(a, b, aa.Add(axis.Mult(l.Lower)), aa.Add(axis.Mult(l.Upper)), ab))
		rigid(cp.NewRotaryLimitJoint(a, b, offset, offset))
	case ConstraintSpring:
		p := d.Spring
		spring(cp.NewDampedSpring(a, b, aa, ab, p.RestLength, p.Stiffness, p.Damping))
		if p.LimitsEnabled {
			rigid(cp.NewSlideJoint(a, b, aa, ab, p.Limits.Lower, p.Limits.Upper))
		}
	case ConstraintGeneric:
		generic(d.Generic)
	case ConstraintGenericSpring:
		p := d.GenericSpring
		generic(p.GenericParams)
		spring(cp.NewDampedSpring(a, b, aa, ab, p.RestLength, p.Stiffness, p.Damping))
		spring(cp.NewDampedRotarySpring(a, b, -offset, p.AngularStiffness, p.AngularDamping))
	case ConstraintWheel:
		p := d.Wheel
		rest := p.RestLength
		if rest == 0 {
			rest = p.Travel.Upper
		}
		rigid(cp.NewGrooveJoint(a, b, aa.Add(axis.Mult(p.Travel.Lower)), aa.Add(axis.Mult(p.Travel.Upper)), ab))
		spring(cp.NewDampedSpring(a, b, aa, ab, rest, p.Stiffness, p.Damping))
		motor(p.Motor)
	}

	for _, p := range parts {
		p.c.SetCollideBodies(d.CollideConnected)
		if c.enabled {
			continue
		}
		if p.spring {
			disableSpring(p.c)
		} else {
			p.c.SetMaxForce(0)
		}
	}
	return parts
}

// Springs ignore MaxForce, so a disabled spring loses stiffness and damping.
func disableSpring(con *cp.Constraint) {
	switch s := con.Class.(type) {
	case *cp.DampedSpring:
		s.Stiffness, s.Damping = 0, 0
	case *cp.DampedRotarySpring:
		s.Stiffness, s.Damping = 0, 0
	}
}
