package physics

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
)

// CollidableDesc describes a collidable for System.CreateCollidable.
type CollidableDesc struct {
	Kind       CollidableKind
	Shape      ShapeDesc
	Mass       float64
	Origin     cp.Vector
	Axis       float64
	Friction   float64
	Elasticity float64
	Sensor     bool
	// Filter; zero Categories or Mask means all.
	Group      uint
	Categories uint
	Mask       uint
	CCD        bool
	UserData   any
}

func (d CollidableDesc) validate() error {
	const op = "create collidable"
	switch d.Kind {
	case KindRigid, KindKinematic, KindStatic:
	case KindSoft:
		return configErr(op, "kind", "soft bodies are not supported by the solver")
	default:
		return configErr(op, "kind", "unknown collidable kind")
	}
	if !finite(d.Mass) || d.Mass < 0 {
		return configErr(op, "mass", "must be finite and not negative")
	}
	if !finite(d.Origin.X) || !finite(d.Origin.Y) || !finite(d.Axis) {
		return configErr(op, "transform", "must be finite")
	}
	if d.Friction < 0 || d.Elasticity < 0 {
		return configErr(op, "material", "friction and elasticity must not be negative")
	}
	return d.Shape.validate(op)
}

func (d CollidableDesc) filter() cp.ShapeFilter {
	cats, mask := d.Categories, d.Mask
	if cats == 0 {
		cats = cp.ALL_CATEGORIES
	}
	if mask == 0 {
		mask = cp.ALL_CATEGORIES
	}
	return cp.NewShapeFilter(d.Group, cats, mask)
}

// Collidable owns one solver body and its shape.
type Collidable struct {
	sys    *System
	handle Handle
	kind   CollidableKind
	body   *cp.Body
	shape  *cp.Shape
	geom   ShapeDesc
	world  *World
	rigid  *RigidBody

	constraints []*Constraint
	destroyed   bool

	UserData any
}

func (s *System) buildCollidable(desc CollidableDesc) (c *Collidable, err error) {
	defer guardSolver("create collidable")

	var body *cp.Body
	switch {
	case desc.Kind == KindStatic:
		body = cp.NewStaticBody()
	case desc.Kind == KindKinematic || desc.Mass == 0:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewBody(desc.Mass, desc.Shape.moment(desc.Mass))
	}
	body.SetPosition(desc.Origin)
	body.SetAngle(desc.Axis)

	shape := desc.Shape.newShape(body)
	shape.SetFriction(desc.Friction)
	shape.SetElasticity(desc.Elasticity)
	shape.SetSensor(desc.Sensor)
	shape.SetFilter(desc.filter())

	c = &Collidable{
		sys:      s,
		handle:   s.allocHandle(),
		kind:     desc.Kind,
		body:     body,
		shape:    shape,
		geom:     desc.Shape,
		UserData: desc.UserData,
	}
	body.UserData = c
	shape.UserData = c

	if desc.Kind == KindRigid {
		c.rigid = newRigidBody(c, desc)
	}
	return c, nil
}

func (c *Collidable) Handle() Handle {
	return c.handle
}

func (c *Collidable) Kind() CollidableKind {
	return c.kind
}

func (c *Collidable) IsDestroyed() bool {
	return c == nil || c.destroyed
}

// AsRigidBody returns the rigid specialisation when the collidable was created as rigid.
func (c *Collidable) AsRigidBody() (*RigidBody, bool) {
	if c == nil || c.rigid == nil {
		return nil, false
	}
	return c.rigid, true
}

func (c *Collidable) Origin() cp.Vector {
	return c.body.Position()
}

func (c *Collidable) Axis() float64 {
	return c.body.Angle()
}

func (c *Collidable) SetOrigin(p cp.Vector) {
	c.SetTransform(p, c.body.Angle())
}

func (c *Collidable) SetAxis(angle float64) {
	c.SetTransform(c.body.Position(), angle)
}

// SetTransform writes through to the solver body whether or not the collidable is in a world.
func (c *Collidable) SetTransform(p cp.Vector, angle float64) {
	if c.destroyed {
		return
	}
	c.body.SetPosition(p)
	c.body.SetAngle(angle)
	c.reindex()
}

// Static shapes are only re-hashed when re-added.
func (c *Collidable) reindex() {
	if c.world == nil {
		c.shape.CacheBB()
		return
	}
	if c.body.GetType() == cp.BODY_STATIC {
		c.world.space.RemoveShape(c.shape)
		c.world.space.AddShape(c.shape)
	}
}

// AABB returns the world space bounds of the shape at the current transform.
func (c *Collidable) AABB() cp.BB {
	return c.shape.CacheBB()
}

func (c *Collidable) Friction() float64 {
	return c.shape.Friction()
}

func (c *Collidable) SetFriction(f float64) {
	c.shape.SetFriction(math.Max(0, f))
}

func (c *Collidable) Elasticity() float64 {
	return c.shape.Elasticity()
}

func (c *Collidable) SetElasticity(e float64) {
	c.shape.SetElasticity(math.Max(0, e))
}

func (c *Collidable) SetSensor(sensor bool) {
	c.shape.SetSensor(sensor)
}

func (c *Collidable) IsSensor() bool {
	return c.shape.Sensor()
}

func (c *Collidable) SetFilter(group, categories, mask uint) {
	c.shape.SetFilter(CollidableDesc{Group: group, Categories: categories, Mask: mask}.filter())
}

func (c *Collidable) Filter() cp.ShapeFilter {
	return c.shape.Filter
}

func (c *Collidable) World() *World {
	return c.world
}

func (c *Collidable) IsInWorld() bool {
	return c.world != nil
}

// AddToWorld is a no-op when already in w; attached to another world it moves.
func (c *Collidable) AddToWorld(w *World) {
	if c.destroyed || w == nil || w.freed || c.world == w {
		return
	}
	if c.world != nil {
		c.RemoveFromWorld()
	}
	func() {
		defer guardSolver("add collidable to world")
		w.space.AddBody(c.body)
		w.space.AddShape(c.shape)
	}()
	c.world = w
	w.addCollidable(c)

	for _, con := range c.constraints {
		con.resume(w)
	}
}

// RemoveFromWorld leaves transform and velocity on the body. Constraints that
// were solving against this body go back to pending until it returns.
func (c *Collidable) RemoveFromWorld() {
	if c.world == nil {
		return
	}
	w := c.world
	for _, con := range c.constraints {
		con.suspend()
	}
	func() {
		defer guardSolver("remove collidable from world")
		w.space.RemoveShape(c.shape)
		w.space.RemoveBody(c.body)
	}()
	w.removeCollidable(c)
	c.world = nil
}

func (c *Collidable) attachedConstraints() []*Constraint {
	return append([]*Constraint(nil), c.constraints...)
}

func (c *Collidable) linkConstraint(con *Constraint) {
	c.constraints = append(c.constraints, con)
}

func (c *Collidable) unlinkConstraint(con *Constraint) {
	for i, existing := range c.constraints {
		if existing == con {
			c.constraints = append(c.constraints[:i], c.constraints[i+1:]...)
			return
		}
	}
	log.Printf("physics: constraint %p was not linked to collidable %d", con, c.handle)
}
