package component

import (
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcore/common"
	"github.com/milk9111/physcore/ecs"
	ecscomponent "github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
)

// Anchor is a point and an angle in degrees, local to a body.
type Anchor struct {
	Point cp.Vector
	Angle float64
}

func (a Anchor) frame() physics.Frame {
	return physics.Frame{Anchor: a.Point, Angle: common.Radians(a.Angle)}
}

// Joint constrains the entity's RigidBody to the RigidBody of a connected
// entity. The connected entity is held as a handle and resolved on every
// build, so it may be created after the joint or destroyed before it.
type Joint struct {
	settings        JointSettings
	connected       ecs.Entity
	anchor          Anchor
	connectedAnchor Anchor
	collision       bool
	breakImpulse    float64

	constraint *physics.Constraint
	owner      *RigidBody
	peer       *RigidBody

	world  *ecs.World
	entity ecs.Entity
	awake  bool
}

var JointComponent = ecscomponent.NewComponent[Joint]()

// NewJoint returns a joint of the kind selected by settings.
func NewJoint(settings JointSettings) *Joint {
	return &Joint{settings: settings}
}

func (j *Joint) Settings() JointSettings {
	return j.settings
}

// Validate checks the kind settings without building anything.
func (j *Joint) Validate() error {
	return constraintDesc(j.settings).Validate()
}

func (j *Joint) Kind() physics.ConstraintKind {
	return constraintKind(j.settings)
}

// ConnectedBody is the configured connected entity, whether or not it still exists.
func (j *Joint) ConnectedBody() ecs.Entity {
	return j.connected
}

// SetConnectedBody rebuilds the constraint against e. Passing the entity
// already in effect keeps the current constraint.
func (j *Joint) SetConnectedBody(e ecs.Entity) error {
	if e == j.connected {
		return nil
	}
	j.connected = e
	return j.Rebuild()
}

// ConnectedRigidBody resolves the connected entity's RigidBody. It reports
// false when the entity is gone or has no live body component.
func (j *Joint) ConnectedRigidBody() (*RigidBody, bool) {
	if j.world == nil || !j.connected.Valid() || !ecs.IsAlive(j.world, j.connected) {
		return nil, false
	}
	rb, ok := ecs.Get(j.world, j.connected, RigidBodyComponent.Kind())
	if !ok || rb.purged {
		return nil, false
	}
	return rb, true
}

func (j *Joint) CollisionEnabled() bool {
	return j.collision
}

// SetCollisionEnabled lets the two connected bodies collide with each other.
func (j *Joint) SetCollisionEnabled(enabled bool) {
	j.collision = enabled
	if j.constraint != nil {
		j.constraint.EnableCollision(enabled)
	}
}

func (j *Joint) BreakImpulse() float64 {
	return j.breakImpulse
}

// SetBreakImpulse sets the impulse above which the joint breaks. Zero means never.
func (j *Joint) SetBreakImpulse(v float64) error {
	if math.IsNaN(v) || v < 0 {
		return &physics.ConfigError{Op: "set break impulse", Field: "break_impulse", Reason: "must not be negative"}
	}
	j.breakImpulse = v
	if j.constraint == nil {
		return nil
	}
	if v == 0 {
		v = math.Inf(1)
	}
	return j.constraint.SetBreakImpulse(v)
}

func (j *Joint) Anchor() Anchor {
	return j.anchor
}

func (j *Joint) SetAnchor(a Anchor) {
	j.anchor = a
	if j.constraint != nil {
		j.constraint.SetFrameA(a.frame())
	}
}

func (j *Joint) ConnectedAnchor() Anchor {
	return j.connectedAnchor
}

// SetConnectedAnchor is local to the connected body. It is not applied to a
// socket that fell back to the world.
func (j *Joint) SetConnectedAnchor(a Anchor) {
	j.connectedAnchor = a
	if j.constraint != nil && j.constraint.BodyB() != nil {
		j.constraint.SetFrameB(a.frame())
	}
}

// Constraint is nil before Awake, after Purge and while the joint is degraded.
func (j *Joint) Constraint() *physics.Constraint {
	return j.constraint
}

func (j *Joint) IsBroken() bool {
	return j.constraint != nil && j.constraint.IsBroken()
}

func (j *Joint) Awake(w *ecs.World, e ecs.Entity) error {
	j.world, j.entity, j.awake = w, e, true
	return j.build()
}

func (j *Joint) OnActive(w *ecs.World, e ecs.Entity) {
	if j.constraint != nil {
		j.constraint.AddToWorld(w.PhysicsWorld())
	}
}

func (j *Joint) OnInactive(w *ecs.World, e ecs.Entity) {
	if j.constraint != nil {
		j.constraint.RemoveFromWorld()
	}
}

// Purge destroys the constraint and wakes both bodies it held.
func (j *Joint) Purge(w *ecs.World, e ecs.Entity) {
	j.teardown()
	j.awake = false
}

// Rebuild replaces the constraint with a fresh one built from the current
// configuration. It is how a broken joint is restored.
func (j *Joint) Rebuild() error {
	if !j.awake {
		return nil
	}
	j.teardown()
	return j.build()
}

func (j *Joint) build() error {
	w, e := j.world, j.entity
	sys := w.PhysicsSystem()
	if sys == nil {
		return ErrNoPhysics
	}
	owner, ok := ecs.Get(w, e, RigidBodyComponent.Kind())
	if !ok || owner.purged {
		return fmt.Errorf("component: %s joint on %v: %w", j.Kind(), e, ErrNoRigidBody)
	}
	bodyA, err := owner.EnsureBody(w, e)
	if err != nil {
		return err
	}

	desc := constraintDesc(j.settings)
	desc.BodyA = bodyA
	desc.FrameA = j.anchor.frame()
	desc.CollideConnected = j.collision
	desc.BreakImpulse = j.breakImpulse

	peer, resolved := j.ConnectedRigidBody()
	switch {
	case resolved:
		bodyB, err := peer.EnsureBody(w, j.connected)
		if err != nil {
			return err
		}
		desc.BodyB = bodyB
		desc.FrameB = j.connectedAnchor.frame()
	case j.connected.Valid() && desc.Kind.TwoBody():
		log.Printf("component: %s joint on %v: connected body %v is unresolved; joint left without constraint", desc.Kind, e, j.connected)
		return nil
	case j.connected.Valid():
		log.Printf("component: %s joint on %v: connected body %v is unresolved; anchoring to the world", desc.Kind, e, j.connected)
	case desc.Kind.TwoBody():
		log.Printf("component: %s joint on %v has no connected body", desc.Kind, e)
		return nil
	}

	con, err := sys.CreateConstraint(desc)
	if err != nil {
		return fmt.Errorf("component: %s joint on %v: %w", desc.Kind, e, err)
	}
	con.UserData = e
	j.constraint, j.owner = con, owner
	owner.subscribe(j)
	if resolved {
		j.peer = peer
		peer.subscribe(j)
	}
	if ecs.ActiveInHierarchy(w, e) {
		con.AddToWorld(w.PhysicsWorld())
	}
	return nil
}

func (j *Joint) teardown() {
	if j.owner != nil {
		j.owner.unsubscribe(j)
	}
	if j.peer != nil {
		j.peer.unsubscribe(j)
	}
	j.owner, j.peer = nil, nil
	con := j.constraint
	if con == nil {
		return
	}
	j.constraint = nil
	sys := j.world.PhysicsSystem()
	if sys == nil {
		log.Printf("component: %s joint on %v: %v; constraint dropped without destroy", j.Kind(), j.entity, ErrNoPhysics)
		return
	}
	a, b := con.BodyA(), con.BodyB()
	sys.DestroyConstraint(con)
	for _, rb := range []*physics.RigidBody{a, b} {
		if rb != nil && !rb.IsDestroyed() {
			rb.Activate()
		}
	}
}

// bodyPurged runs before rb's physics body is destroyed.
func (j *Joint) bodyPurged(rb *RigidBody) {
	switch rb {
	case j.owner:
		j.teardown()
		// A replaced component is stored before the old one is purged.
		next, ok := ecs.Get(j.world, j.entity, RigidBodyComponent.Kind())
		if !j.awake || !ecs.IsAlive(j.world, j.entity) || !ok || next == rb || next.purged {
			return
		}
		if err := j.build(); err != nil {
			log.Printf("component: %s joint on %v: %v", j.Kind(), j.entity, err)
		}
	case j.peer:
		log.Printf("component: %s joint on %v lost connected body %v", j.Kind(), j.entity, j.connected)
		j.teardown()
		if err := j.build(); err != nil {
			log.Printf("component: %s joint on %v: %v", j.Kind(), j.entity, err)
		}
	}
}

// update validates next and writes it through to the live constraint.
func (j *Joint) update(next JointSettings, push func(*physics.Constraint) error) error {
	if constraintKind(next) != constraintKind(j.settings) {
		return &physics.ConfigError{Op: "update joint", Field: "kind", Reason: "joint kind cannot change"}
	}
	if err := constraintDesc(next).Validate(); err != nil {
		return err
	}
	j.settings = next
	if j.constraint == nil {
		return nil
	}
	return push(j.constraint)
}
