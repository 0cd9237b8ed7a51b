package component

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/milk9111/physcore/ecs"
	ecscomponent "github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
)

var (
	ErrNoPhysics   = errors.New("component: ecs world has no physics system")
	ErrNoRigidBody = errors.New("component: entity has no rigid body")
)

// RigidBodySettings configure the body created by EnsureBody.
type RigidBodySettings struct {
	Shape          physics.ShapeDesc
	Mass           float64
	Kinematic      bool
	Friction       float64
	Elasticity     float64
	LinearDamping  float64
	AngularDamping float64
	CCD            bool
	Group          uint
	Categories     uint
	Mask           uint
}

// RigidBody gives an entity a dynamic or kinematic body. The body is created
// lazily so joints on other entities can reference it before it is awake.
type RigidBody struct {
	Settings RigidBodySettings

	body   *physics.RigidBody
	world  *ecs.World
	entity ecs.Entity
	joints []*Joint
	purged bool
}

var RigidBodyComponent = ecscomponent.NewComponent[RigidBody]()

func NewRigidBody(settings RigidBodySettings) *RigidBody {
	return &RigidBody{Settings: settings}
}

// Body returns the physics body, or nil before EnsureBody and after Purge.
func (r *RigidBody) Body() *physics.RigidBody {
	if r == nil {
		return nil
	}
	return r.body
}

// EnsureBody creates the physics body from the settings and the entity's
// transform. It does not add the body to a world.
func (r *RigidBody) EnsureBody(w *ecs.World, e ecs.Entity) (*physics.RigidBody, error) {
	if r.purged {
		return nil, fmt.Errorf("component: rigid body on %v: %w", e, physics.ErrDestroyed)
	}
	if r.body != nil {
		return r.body, nil
	}
	sys := w.PhysicsSystem()
	if sys == nil {
		return nil, ErrNoPhysics
	}
	desc := collidableDesc(w, e, physics.KindRigid)
	desc.Shape = r.Settings.Shape
	desc.Mass = r.Settings.Mass
	if r.Settings.Kinematic {
		desc.Mass = 0
	}
	desc.Friction = r.Settings.Friction
	desc.Elasticity = r.Settings.Elasticity
	desc.CCD = r.Settings.CCD
	desc.Group, desc.Categories, desc.Mask = r.Settings.Group, r.Settings.Categories, r.Settings.Mask

	body, err := sys.CreateRigidBody(desc)
	if err != nil {
		return nil, fmt.Errorf("component: rigid body on %v: %w", e, err)
	}
	if err := body.SetDamping(r.Settings.LinearDamping, r.Settings.AngularDamping); err != nil {
		sys.DestroyCollidable(body.Collidable)
		return nil, fmt.Errorf("component: rigid body on %v: %w", e, err)
	}
	r.body, r.world, r.entity = body, w, e
	return body, nil
}

func (r *RigidBody) Awake(w *ecs.World, e ecs.Entity) error {
	body, err := r.EnsureBody(w, e)
	if err != nil {
		return err
	}
	if ecs.ActiveInHierarchy(w, e) {
		body.AddToWorld(w.PhysicsWorld())
	}
	return nil
}

func (r *RigidBody) OnActive(w *ecs.World, e ecs.Entity) {
	if r.body != nil {
		r.body.AddToWorld(w.PhysicsWorld())
	}
}

func (r *RigidBody) OnInactive(w *ecs.World, e ecs.Entity) {
	if r.body != nil {
		r.body.RemoveFromWorld()
	}
}

// Purge tells subscribed joints first so none of them touches the freed body.
func (r *RigidBody) Purge(w *ecs.World, e ecs.Entity) {
	if r.purged {
		return
	}
	r.purged = true
	for _, j := range slices.Clone(r.joints) {
		j.bodyPurged(r)
	}
	r.joints = nil
	if r.body == nil {
		return
	}
	if sys := w.PhysicsSystem(); sys != nil {
		sys.DestroyCollidable(r.body.Collidable)
	} else {
		log.Printf("component: rigid body on %v: %v; body dropped without destroy", e, ErrNoPhysics)
	}
	r.body = nil
}

func (r *RigidBody) subscribe(j *Joint) {
	if !slices.Contains(r.joints, j) {
		r.joints = append(r.joints, j)
	}
}

func (r *RigidBody) unsubscribe(j *Joint) {
	r.joints = slices.DeleteFunc(r.joints, func(o *Joint) bool { return o == j })
}

// collidableDesc seeds a descriptor with the entity's transform.
func collidableDesc(w *ecs.World, e ecs.Entity, kind physics.CollidableKind) physics.CollidableDesc {
	desc := physics.CollidableDesc{Kind: kind, UserData: e}
	if t, ok := ecs.Get(w, e, ecscomponent.TransformComponent.Kind()); ok {
		desc.Origin = t.Origin()
		desc.Axis = t.Rotation
	}
	return desc
}
