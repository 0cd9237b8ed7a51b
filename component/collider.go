package component

import (
	"fmt"
	"log"

	"github.com/milk9111/physcore/ecs"
	ecscomponent "github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
)

type ColliderSettings struct {
	Shape      physics.ShapeDesc
	Friction   float64
	Elasticity float64
	Sensor     bool
	Group      uint
	Categories uint
	Mask       uint
}

// Collider is static level geometry placed at the entity's transform.
type Collider struct {
	Settings ColliderSettings

	collidable *physics.Collidable
}

var ColliderComponent = ecscomponent.NewComponent[Collider]()

func NewCollider(settings ColliderSettings) *Collider {
	return &Collider{Settings: settings}
}

func (c *Collider) Collidable() *physics.Collidable {
	if c == nil {
		return nil
	}
	return c.collidable
}

func (c *Collider) Awake(w *ecs.World, e ecs.Entity) error {
	if c.collidable == nil {
		sys := w.PhysicsSystem()
		if sys == nil {
			return ErrNoPhysics
		}
		desc := collidableDesc(w, e, physics.KindStatic)
		desc.Shape = c.Settings.Shape
		desc.Friction = c.Settings.Friction
		desc.Elasticity = c.Settings.Elasticity
		desc.Sensor = c.Settings.Sensor
		desc.Group, desc.Categories, desc.Mask = c.Settings.Group, c.Settings.Categories, c.Settings.Mask
		col, err := sys.CreateCollidable(desc)
		if err != nil {
			return fmt.Errorf("component: collider on %v: %w", e, err)
		}
		c.collidable = col
	}
	if ecs.ActiveInHierarchy(w, e) {
		c.collidable.AddToWorld(w.PhysicsWorld())
	}
	return nil
}

func (c *Collider) OnActive(w *ecs.World, e ecs.Entity) {
	if c.collidable != nil {
		c.collidable.AddToWorld(w.PhysicsWorld())
	}
}

func (c *Collider) OnInactive(w *ecs.World, e ecs.Entity) {
	if c.collidable != nil {
		c.collidable.RemoveFromWorld()
	}
}

func (c *Collider) Purge(w *ecs.World, e ecs.Entity) {
	if c.collidable == nil {
		return
	}
	if sys := w.PhysicsSystem(); sys != nil {
		sys.DestroyCollidable(c.collidable)
	} else {
		log.Printf("component: collider on %v: %v; collidable dropped without destroy", e, ErrNoPhysics)
	}
	c.collidable = nil
}
