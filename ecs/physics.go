package ecs

import "github.com/milk9111/physcore/physics"

type physicsContext struct {
	sys   *physics.System
	world *physics.World
}

// SetPhysicsWorld binds the physics system and the world that components of
// this ECS world create their bodies and joints in.
func (w *World) SetPhysicsWorld(sys *physics.System, pw *physics.World) {
	if w == nil {
		return
	}
	w.physics = physicsContext{sys: sys, world: pw}
}

func (w *World) PhysicsSystem() *physics.System {
	if w == nil {
		return nil
	}
	return w.physics.sys
}

func (w *World) PhysicsWorld() *physics.World {
	if w == nil {
		return nil
	}
	return w.physics.world
}
