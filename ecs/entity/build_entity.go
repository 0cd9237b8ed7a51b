package entity

import (
	"fmt"
	"log"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcore/common"
	physcomp "github.com/milk9111/physcore/component"
	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
	"github.com/milk9111/physcore/prefabs"
)

type buildContext struct {
	PrefabPath string
	links      []connectedLink
}

// connectedLink is a joint whose connected body is named but not resolved yet.
type connectedLink struct {
	joint  *physcomp.Joint
	entity ecs.Entity
	name   string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":     addTransform,
	"rigid_body":    addRigidBody,
	"collider":      addCollider,
	"generic_joint": addGenericJoint,
	"hinge_joint":   addHingeJoint,
	"slider_joint":  addSliderJoint,
	"socket_joint":  addSocketJoint,
	"spring_joint":  addSpringJoint,
	"wheel_joint":   addWheelJoint,
}

// Bodies come before joints so a joint's sibling body exists when it wakes.
var componentBuildOrder = []string{
	"transform",
	"rigid_body",
	"collider",
	"generic_joint",
	"hinge_joint",
	"slider_joint",
	"socket_joint",
	"spring_joint",
	"wheel_joint",
}

// BuildEntity spawns and awakes one prefab. Connected bodies are looked up
// by name among the entities already in w.
func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath}
	if err := buildComponents(w, e, spec.Components, ctx); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	if err := ctx.resolveLinks(w); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, err
	}
	if err := ecs.Awake(w, e); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: awake: %w", prefabPath, err)
	}
	return e, nil
}

func buildComponents(w *ecs.World, e ecs.Entity, components map[string]any, ctx *buildContext) error {
	remaining := make(map[string]any, len(components))
	for k, v := range components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", ctx.PrefabPath, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("build entity: %q: no builder for component %q", ctx.PrefabPath, names[0])
	}
	return nil
}

// resolveLinks binds every recorded connected body name. Unknown names are
// logged and leave the joint unresolved.
func (ctx *buildContext) resolveLinks(w *ecs.World) error {
	for _, link := range ctx.links {
		target, ok := ecs.FindByName(w, link.name)
		if !ok {
			log.Printf("build entity: %q: joint on %v: no entity named %q", ctx.PrefabPath, link.entity, link.name)
			continue
		}
		if err := link.joint.SetConnectedBody(target); err != nil {
			return fmt.Errorf("build entity: %q: connect %v to %q: %w", ctx.PrefabPath, link.entity, link.name, err)
		}
	}
	ctx.links = nil
	return nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return err
	}
	return SetEntityTransform(w, e, spec.X, spec.Y, common.Radians(spec.Rotation))
}

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.RigidBodyComponentSpec](raw)
	if err != nil {
		return err
	}
	shape, err := shapeDesc(spec.Shape)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.RigidBodyComponent.Kind(), physcomp.NewRigidBody(physcomp.RigidBodySettings{
		Shape:          shape,
		Mass:           spec.Mass,
		Kinematic:      spec.Kinematic,
		Friction:       spec.Friction,
		Elasticity:     spec.Elasticity,
		LinearDamping:  spec.LinearDamping,
		AngularDamping: spec.AngularDamping,
		CCD:            spec.CCD,
		Group:          spec.Filter.Group,
		Categories:     spec.Filter.Categories,
		Mask:           spec.Filter.Mask,
	}))
}

func addCollider(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ColliderComponentSpec](raw)
	if err != nil {
		return err
	}
	shape, err := shapeDesc(spec.Shape)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.ColliderComponent.Kind(), physcomp.NewCollider(physcomp.ColliderSettings{
		Shape:      shape,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
		Sensor:     spec.Sensor,
		Group:      spec.Filter.Group,
		Categories: spec.Filter.Categories,
		Mask:       spec.Filter.Mask,
	}))
}

func shapeDesc(spec prefabs.ShapeSpec) (physics.ShapeDesc, error) {
	desc := physics.ShapeDesc{
		Radius: spec.Radius,
		Width:  spec.Width,
		Height: spec.Height,
		A:      vector(spec.A),
		B:      vector(spec.B),
		Offset: vector(spec.Offset),
	}
	switch spec.Kind {
	case "circle":
		desc.Kind = physics.ShapeCircle
	case "box":
		desc.Kind = physics.ShapeBox
	case "segment":
		desc.Kind = physics.ShapeSegment
	case "polygon":
		desc.Kind = physics.ShapePolygon
		for _, v := range spec.Vertices {
			desc.Vertices = append(desc.Vertices, vector(v))
		}
	default:
		return desc, &physics.ConfigError{Op: "build shape", Field: "shape.kind", Reason: fmt.Sprintf("unknown kind %q", spec.Kind)}
	}
	return desc, nil
}

func vector(v prefabs.VectorSpec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}
