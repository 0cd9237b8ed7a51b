package physics

import (
	"log"
	"slices"

	"github.com/jakecoffman/cp"
)

// System is the factory and registry for worlds, collidables, constraints and vehicles.
// It is not safe for concurrent use.
type System struct {
	cvars   *CVars
	applied CVars

	initialized bool
	nextHandle  Handle

	worlds      []*World
	collidables map[Handle]*Collidable
	constraints map[*Constraint]struct{}
	vehicles    map[*Vehicle]struct{}

	// ground anchors one-body constraints; it never joins a space.
	ground *cp.Body
}

func NewSystem(cvars *CVars) *System {
	if cvars == nil {
		cvars = DefaultCVars()
	}
	return &System{cvars: cvars}
}

func (s *System) Init() error {
	if s == nil {
		return ErrNotInitialized
	}
	if s.initialized {
		return nil
	}
	s.collidables = make(map[Handle]*Collidable)
	s.constraints = make(map[*Constraint]struct{})
	s.vehicles = make(map[*Vehicle]struct{})
	s.ground = cp.NewStaticBody()
	s.applied = *s.cvars
	s.initialized = true
	return nil
}

// Shutdown releases everything still registered. Calling it twice is fine.
func (s *System) Shutdown() {
	if s == nil || !s.initialized {
		return
	}
	for v := range s.vehicles {
		s.DestroyVehicle(v)
	}
	for c := range s.constraints {
		s.DestroyConstraint(c)
	}
	for _, c := range s.collidables {
		s.DestroyCollidable(c)
	}
	for len(s.worlds) > 0 {
		_ = s.FreeWorld(s.worlds[len(s.worlds)-1])
	}
	s.ground = nil
	s.initialized = false
}

func (s *System) Initialized() bool {
	return s != nil && s.initialized
}

func (s *System) CVars() *CVars {
	return s.cvars
}

func (s *System) AllocWorld(desc WorldDesc) (*World, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if desc.Iterations < 0 {
		return nil, configErr("alloc world", "iterations", "must not be negative")
	}
	if desc.SleepTime < 0 {
		return nil, configErr("alloc world", "sleep_time", "must not be negative")
	}
	w := newWorld(s, desc)
	w.applyCVars(*s.cvars)
	s.worlds = append(s.worlds, w)
	return w, nil
}

// FreeWorld detaches everything the world still simulates and drops it from the registry.
func (s *System) FreeWorld(w *World) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}
	idx := slices.Index(s.worlds, w)
	if w == nil || idx < 0 {
		log.Printf("physics: FreeWorld called with unknown world %p", w)
		return ErrUnknownWorld
	}
	w.detachAll()
	s.worlds = slices.Delete(s.worlds, idx, idx+1)
	w.freed = true
	return nil
}

func (s *System) CreateCollidable(desc CollidableDesc) (*Collidable, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	c, err := s.buildCollidable(desc)
	if err != nil {
		return nil, err
	}
	s.collidables[c.handle] = c
	return c, nil
}

// CreateRigidBody is CreateCollidable with the kind forced to rigid.
func (s *System) CreateRigidBody(desc CollidableDesc) (*RigidBody, error) {
	desc.Kind = KindRigid
	c, err := s.CreateCollidable(desc)
	if err != nil {
		return nil, err
	}
	return c.rigid, nil
}

// DestroyCollidable detaches c, destroys any vehicle riding on it and every
// constraint still referencing it, then releases the handle.
func (s *System) DestroyCollidable(c *Collidable) {
	if c == nil || c.destroyed {
		return
	}
	if c.sys != s {
		log.Printf("physics: DestroyCollidable: collidable %d belongs to another system", c.handle)
		return
	}
	if c.rigid != nil && c.rigid.vehicle != nil {
		s.DestroyVehicle(c.rigid.vehicle)
	}
	for _, con := range c.attachedConstraints() {
		s.DestroyConstraint(con)
	}
	c.RemoveFromWorld()
	delete(s.collidables, c.handle)
	c.destroyed = true
	c.body.UserData = nil
	c.shape.UserData = nil
}

func (s *System) Lookup(h Handle) (*Collidable, bool) {
	if s == nil || s.collidables == nil {
		return nil, false
	}
	c, ok := s.collidables[h]
	return c, ok
}

func (s *System) CreateConstraint(desc ConstraintDesc) (*Constraint, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if err := s.validateConstraint(&desc); err != nil {
		return nil, err
	}
	c := newConstraint(s, desc)
	s.constraints[c] = struct{}{}
	return c, nil
}

func (s *System) DestroyConstraint(c *Constraint) {
	if c == nil || c.destroyed {
		return
	}
	c.RemoveFromWorld()
	c.unlinkBodies()
	delete(s.constraints, c)
	c.parts = nil
	c.destroyed = true
}

func (s *System) CreateVehicle(desc VehicleDesc) (*Vehicle, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}
	if err := s.validateVehicle(desc); err != nil {
		return nil, err
	}
	v := newVehicle(s, desc)
	s.vehicles[v] = struct{}{}
	return v, nil
}

func (s *System) DestroyVehicle(v *Vehicle) {
	if v == nil || v.destroyed {
		return
	}
	v.release()
	delete(s.vehicles, v)
	v.destroyed = true
}

// CheckModifiedCVars pushes the cvars into every world when they changed since the last call.
func (s *System) CheckModifiedCVars() {
	if !s.Initialized() || *s.cvars == s.applied {
		return
	}
	s.applied = *s.cvars
	for _, w := range s.worlds {
		w.applyCVars(s.applied)
	}
	log.Printf("physics: cvars applied to %d world(s)", len(s.worlds))
}

func (s *System) Worlds() int {
	if s == nil {
		return 0
	}
	return len(s.worlds)
}

func (s *System) Collidables() int {
	if s == nil {
		return 0
	}
	return len(s.collidables)
}

func (s *System) Constraints() int {
	if s == nil {
		return 0
	}
	return len(s.constraints)
}

func (s *System) Vehicles() int {
	if s == nil {
		return 0
	}
	return len(s.vehicles)
}

func (s *System) allocHandle() Handle {
	s.nextHandle++
	return s.nextHandle
}

func (s *System) owns(rb *RigidBody) bool {
	return rb != nil && rb.Collidable != nil && rb.sys == s && !rb.destroyed
}
