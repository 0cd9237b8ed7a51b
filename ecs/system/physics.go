package system

import (
	"log"
	"math"

	"github.com/milk9111/physcore/common"
	physcomp "github.com/milk9111/physcore/component"
	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
)

// PhysicsSystem steps the ECS world's physics world at a fixed rate and keeps
// transforms in sync with the bodies.
type PhysicsSystem struct {
	step        float64
	maxSteps    int
	accumulator float64

	hookedWorld   *physics.World
	hookedECS     *ecs.World
	droppedFrames int
}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{step: common.TimeStep, maxSteps: common.MaxStepsPerFrame}
}

// SetTimeStep changes the fixed step and the catch-up cap. Non-positive values are ignored.
func (ps *PhysicsSystem) SetTimeStep(step float64, maxSteps int) {
	if step > 0 && !math.IsInf(step, 0) {
		ps.step = step
	}
	if maxSteps > 0 {
		ps.maxSteps = maxSteps
	}
}

func (ps *PhysicsSystem) TimeStep() float64 {
	return ps.step
}

// Alpha is how far the accumulator is into the next step, in [0,1).
func (ps *PhysicsSystem) Alpha() float64 {
	return ps.accumulator / ps.step
}

// DroppedFrames counts updates whose backlog exceeded the catch-up cap.
func (ps *PhysicsSystem) DroppedFrames() int {
	return ps.droppedFrames
}

func (ps *PhysicsSystem) Update(w *ecs.World, dt float64) {
	if ps == nil || w == nil || dt <= 0 {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil || pw.IsFreed() {
		return
	}
	ps.ensureHandlers(w, pw)

	ps.accumulator += dt
	steps := 0
	for ps.accumulator >= ps.step && steps < ps.maxSteps {
		ps.pushKinematic(w)
		pw.Step(ps.step)
		ps.accumulator -= ps.step
		steps++
	}
	if ps.accumulator >= ps.step {
		ps.droppedFrames++
		log.Printf("physics: dropping %.3fs of simulation after %d steps", ps.accumulator-math.Mod(ps.accumulator, ps.step), steps)
		ps.accumulator = math.Mod(ps.accumulator, ps.step)
	}
	if steps > 0 {
		ps.syncTransforms(w)
	}
}

func (ps *PhysicsSystem) ensureHandlers(w *ecs.World, pw *physics.World) {
	if ps.hookedWorld == pw && ps.hookedECS == w {
		return
	}
	ps.hookedWorld, ps.hookedECS = pw, w
	pw.OnContact(func(ev physics.ContactEvent) {
		a, okA := ev.A.UserData.(ecs.Entity)
		b, okB := ev.B.UserData.(ecs.Entity)
		if !okA || !okB {
			return
		}
		w.Events().Push(ecs.Event{Type: ecs.EventCollision, Data: ecs.CollisionEvent{
			A:       a,
			B:       b,
			Normal:  ev.Normal,
			Impulse: ev.Impulse,
			First:   ev.First,
		}})
	})
	pw.OnBreak(func(c *physics.Constraint) {
		e, ok := c.UserData.(ecs.Entity)
		if !ok {
			return
		}
		w.Events().Push(ecs.Event{Type: ecs.EventJointBroken, Data: ecs.JointBrokenEvent{
			Entity:  e,
			Impulse: c.AppliedImpulse(),
		}})
	})
}

// pushKinematic moves kinematic bodies to their entity transforms.
func (ps *PhysicsSystem) pushKinematic(w *ecs.World) {
	ecs.ForEach2(w, physcomp.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *physcomp.RigidBody, t *component.Transform) {
		body := rb.Body()
		if body == nil || !body.IsKinematic() || !body.IsInWorld() {
			return
		}
		body.SetTransform(t.Origin(), t.Rotation)
	})
}

func (ps *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, physcomp.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *physcomp.RigidBody, t *component.Transform) {
		body := rb.Body()
		if body == nil || body.IsKinematic() || !body.IsInWorld() {
			return
		}
		t.SetOrigin(body.Origin())
		t.Rotation = body.Axis()
	})
}
