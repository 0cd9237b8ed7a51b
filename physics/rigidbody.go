package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// RigidBody is a dynamic collidable. With mass 0 the solver body is kinematic.
type RigidBody struct {
	*Collidable

	mass           float64
	linearDamping  float64
	angularDamping float64
	linearFactor   cp.Vector
	angularFactor  float64
	gravity        *cp.Vector
	ccd            bool
	vehicle        *Vehicle
}

func newRigidBody(c *Collidable, desc CollidableDesc) *RigidBody {
	rb := &RigidBody{
		Collidable:    c,
		mass:          desc.Mass,
		linearFactor:  cp.Vector{X: 1, Y: 1},
		angularFactor: 1,
		ccd:           desc.CCD,
	}
	c.body.SetVelocityUpdateFunc(rb.updateVelocity)
	return rb
}

// updateVelocity replaces cp.BodyUpdateVelocity to honour the per-body
// gravity override, damping and axis factors. cp's velocity setters wake the
// body, so velocity is only written back when a factor or a separate angular
// damping changes what cp integrated.
func (rb *RigidBody) updateVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	if body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	if rb.gravity != nil {
		gravity = *rb.gravity
	}
	linear := math.Pow(1-rb.linearDamping, dt)
	v0, w0 := body.Velocity(), body.AngularVelocity()
	cp.BodyUpdateVelocity(body, gravity, damping*linear, dt)

	v, w := body.Velocity(), body.AngularVelocity()
	nextV, nextW := v, w
	if rb.angularDamping != rb.linearDamping {
		nextW += w0 * damping * (math.Pow(1-rb.angularDamping, dt) - linear)
	}
	if rb.linearFactor.X != 1 {
		nextV.X = v0.X + (v.X-v0.X)*rb.linearFactor.X
	}
	if rb.linearFactor.Y != 1 {
		nextV.Y = v0.Y + (v.Y-v0.Y)*rb.linearFactor.Y
	}
	if rb.angularFactor != 1 {
		nextW = w0 + (nextW-w0)*rb.angularFactor
	}

	if nextV != v {
		body.SetVelocityVector(nextV)
	}
	if nextW != w {
		body.SetAngularVelocity(nextW)
	}
}

func (rb *RigidBody) Mass() float64 {
	return rb.mass
}

// SetMass writes mass and moment together. Zero turns the body kinematic.
func (rb *RigidBody) SetMass(mass float64) error {
	if !finite(mass) || mass < 0 {
		return configErr("set mass", "mass", "must be finite and not negative")
	}
	if rb.destroyed {
		return ErrDestroyed
	}
	defer guardSolver("set mass")
	if mass == 0 {
		rb.body.SetType(cp.BODY_KINEMATIC)
	} else {
		if rb.body.GetType() != cp.BODY_DYNAMIC {
			rb.body.SetType(cp.BODY_DYNAMIC)
		}
		rb.body.SetMass(mass)
		rb.body.SetMoment(rb.geom.moment(mass))
	}
	rb.mass = mass
	return nil
}

func (rb *RigidBody) IsKinematic() bool {
	return rb.body.GetType() == cp.BODY_KINEMATIC
}

func (rb *RigidBody) Damping() (linear, angular float64) {
	return rb.linearDamping, rb.angularDamping
}

// SetDamping takes the fraction of velocity lost per second, in [0,1].
func (rb *RigidBody) SetDamping(linear, angular float64) error {
	if !unit(linear) || !unit(angular) {
		return configErr("set damping", "damping", "must be within [0,1]")
	}
	rb.linearDamping, rb.angularDamping = linear, angular
	return nil
}

func (rb *RigidBody) LinearVelocity() cp.Vector {
	return rb.body.Velocity()
}

func (rb *RigidBody) SetLinearVelocity(v cp.Vector) {
	rb.body.SetVelocityVector(v)
}

func (rb *RigidBody) AngularVelocity() float64 {
	return rb.body.AngularVelocity()
}

func (rb *RigidBody) SetAngularVelocity(w float64) {
	rb.body.SetAngularVelocity(w)
}

func (rb *RigidBody) LinearFactor() cp.Vector {
	return rb.linearFactor
}

// SetLinearFactor scales velocity changes per axis; 0 freezes the axis.
func (rb *RigidBody) SetLinearFactor(f cp.Vector) error {
	if !unit(f.X) || !unit(f.Y) {
		return configErr("set linear factor", "linear_factor", "components must be within [0,1]")
	}
	rb.linearFactor = f
	return nil
}

func (rb *RigidBody) AngularFactor() float64 {
	return rb.angularFactor
}

func (rb *RigidBody) SetAngularFactor(f float64) error {
	if !unit(f) {
		return configErr("set angular factor", "angular_factor", "must be within [0,1]")
	}
	rb.angularFactor = f
	return nil
}

// GravityOverride returns nil when the world gravity applies.
func (rb *RigidBody) GravityOverride() *cp.Vector {
	if rb.gravity == nil {
		return nil
	}
	g := *rb.gravity
	return &g
}

func (rb *RigidBody) SetGravityOverride(g *cp.Vector) {
	if g == nil {
		rb.gravity = nil
		return
	}
	v := *g
	rb.gravity = &v
	rb.Activate()
}

func (rb *RigidBody) CCD() bool {
	return rb.ccd
}

func (rb *RigidBody) SetCCD(enabled bool) {
	rb.ccd = enabled
}

// CCDMotionThreshold is the per-step travel above which the world sub-steps.
func (rb *RigidBody) CCDMotionThreshold() float64 {
	return rb.geom.extent()
}

func (rb *RigidBody) Vehicle() *Vehicle {
	return rb.vehicle
}

// Forces accumulate on the body until the next step that simulates it.

func (rb *RigidBody) ApplyCentralForce(f cp.Vector) {
	rb.body.ApplyForceAtWorldPoint(f, rb.centre())
}

func (rb *RigidBody) ApplyForce(f, worldPos cp.Vector) {
	rb.body.ApplyForceAtWorldPoint(f, worldPos)
}

func (rb *RigidBody) ApplyTorque(t float64) {
	rb.body.Activate()
	rb.body.SetTorque(rb.body.Torque() + t)
}

// Impulses change velocity immediately, in a world or not.

func (rb *RigidBody) ApplyCentralImpulse(j cp.Vector) {
	rb.body.ApplyImpulseAtWorldPoint(j, rb.centre())
}

func (rb *RigidBody) ApplyImpulse(j, worldPos cp.Vector) {
	rb.body.ApplyImpulseAtWorldPoint(j, worldPos)
}

func (rb *RigidBody) ApplyTorqueImpulse(j float64) {
	if rb.body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	rb.body.SetAngularVelocity(rb.body.AngularVelocity() + j/rb.body.Moment())
}

func (rb *RigidBody) Activate() {
	rb.body.Activate()
}

// IsActive reports whether the solver still simulates the body this step.
func (rb *RigidBody) IsActive() bool {
	return !rb.body.IsSleeping()
}

func (rb *RigidBody) centre() cp.Vector {
	return rb.body.LocalToWorld(rb.body.CenterOfGravity())
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
