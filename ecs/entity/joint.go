package entity

import (
	"github.com/jakecoffman/cp"
	physcomp "github.com/milk9111/physcore/component"
	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/prefabs"
)

// configureJoint applies the keys shared by every kind and records the
// connected body name for resolution once all entities exist.
func configureJoint(j *physcomp.Joint, e ecs.Entity, spec prefabs.JointComponentSpec, ctx *buildContext) error {
	if err := j.Validate(); err != nil {
		return err
	}
	j.SetAnchor(anchor(spec.Anchor))
	j.SetConnectedAnchor(anchor(spec.ConnectedAnchor))
	j.SetCollisionEnabled(spec.CollisionEnabled)
	if err := j.SetBreakImpulse(spec.BreakImpulse); err != nil {
		return err
	}
	if spec.ConnectedBody != "" {
		ctx.links = append(ctx.links, connectedLink{joint: j, entity: e, name: spec.ConnectedBody})
	}
	return nil
}

func anchor(spec prefabs.AnchorSpec) physcomp.Anchor {
	return physcomp.Anchor{Point: cp.Vector{X: spec.X, Y: spec.Y}, Angle: spec.Angle}
}

func motor(spec prefabs.MotorSpec) physcomp.MotorSettings {
	return physcomp.MotorSettings{Enabled: spec.Enabled, TargetSpeed: spec.TargetSpeed, MaxImpulse: spec.MaxImpulse}
}

func addGenericJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.GenericJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewGenericJoint(physcomp.GenericSettings{
		MinDistance:      spec.MinDistance,
		MaxDistance:      spec.MaxDistance,
		MinAngle:         spec.MinAngle,
		MaxAngle:         spec.MaxAngle,
		Spring:           spec.Spring,
		RestLength:       spec.RestLength,
		Stiffness:        spec.Stiffness,
		Damping:          spec.Damping,
		AngularStiffness: spec.AngularStiffness,
		AngularDamping:   spec.AngularDamping,
	})
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.GenericJointComponent.Kind(), j)
}

func addHingeJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.HingeJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewHingeJoint(physcomp.HingeSettings{
		LimitsEnabled: spec.LimitsEnabled,
		MinAngle:      spec.MinAngle,
		MaxAngle:      spec.MaxAngle,
		Motor:         motor(spec.Motor),
	})
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.HingeJointComponent.Kind(), j)
}

func addSliderJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SliderJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewSliderJoint(physcomp.SliderSettings{MinTravel: spec.MinTravel, MaxTravel: spec.MaxTravel})
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.SliderJointComponent.Kind(), j)
}

func addSocketJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SocketJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewSocketJoint()
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.SocketJointComponent.Kind(), j)
}

func addSpringJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.SpringJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewSpringJoint(physcomp.SpringSettings{
		RestLength:    spec.RestLength,
		Stiffness:     spec.Stiffness,
		Damping:       spec.Damping,
		LimitsEnabled: spec.LimitsEnabled,
		MinLength:     spec.MinLength,
		MaxLength:     spec.MaxLength,
	})
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.SpringJointComponent.Kind(), j)
}

func addWheelJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.WheelJointComponentSpec](raw)
	if err != nil {
		return err
	}
	j := physcomp.NewWheelJoint(physcomp.WheelSettings{
		MinTravel:  spec.MinTravel,
		MaxTravel:  spec.MaxTravel,
		RestLength: spec.RestLength,
		Stiffness:  spec.Stiffness,
		Damping:    spec.Damping,
		Motor:      motor(spec.Motor),
	})
	if err := configureJoint(j.Joint, e, spec.JointComponentSpec, ctx); err != nil {
		return err
	}
	return ecs.Add(w, e, physcomp.WheelJointComponent.Kind(), j)
}
