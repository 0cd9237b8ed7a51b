package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// WheelDesc is expressed in the chassis' local space.
type WheelDesc struct {
	Connection cp.Vector
	// Direction of suspension travel; zero means straight down (0, -1).
	Direction  cp.Vector
	RestLength float64
	Radius     float64
	Stiffness  float64
	Damping    float64
	// Friction caps the drive and brake force a wheel can transfer.
	Friction float64
}

type VehicleDesc struct {
	Chassis *RigidBody
	Wheels  []WheelDesc
}

// WheelInfo is the state of one wheel after the last update.
type WheelInfo struct {
	WheelDesc
	InContact       bool
	ContactPoint    cp.Vector
	ContactNormal   cp.Vector
	Compression     float64
	SuspensionForce float64
	EngineForce     float64
	Brake           float64
}

// Vehicle is a raycast vehicle riding on a chassis body.
type Vehicle struct {
	sys       *System
	chassis   *RigidBody
	wheels    []WheelInfo
	prevGroup uint
	destroyed bool
}

func (s *System) validateVehicle(desc VehicleDesc) error {
	const op = "create vehicle"
	if !s.owns(desc.Chassis) {
		return configErr(op, "chassis", "must be a live rigid body of this system")
	}
	if desc.Chassis.vehicle != nil {
		return configErr(op, "chassis", "already carries a vehicle")
	}
	if len(desc.Wheels) == 0 {
		return configErr(op, "wheels", "at least one wheel required")
	}
	for _, w := range desc.Wheels {
		if !positive(w.Radius) {
			return configErr(op, "wheel.radius", "must be positive")
		}
		if !positive(w.RestLength) {
			return configErr(op, "wheel.rest_length", "must be positive")
		}
		if err := validateSpring(op, w.Stiffness, w.Damping); err != nil {
			return err
		}
		if w.Friction < 0 {
			return configErr(op, "wheel.friction", "must not be negative")
		}
	}
	return nil
}

func newVehicle(s *System, desc VehicleDesc) *Vehicle {
	v := &Vehicle{sys: s, chassis: desc.Chassis}
	for _, w := range desc.Wheels {
		if w.Direction.Equal(cp.Vector{}) {
			w.Direction = cp.Vector{X: 0, Y: -1}
		}
		w.Direction = w.Direction.Normalize()
		v.wheels = append(v.wheels, WheelInfo{WheelDesc: w})
	}
	// Wheel rays skip the chassis through a private filter group.
	filter := v.chassis.shape.Filter
	v.prevGroup = filter.Group
	if filter.Group == 0 {
		filter.Group = uint(v.chassis.handle)
		v.chassis.shape.SetFilter(filter)
	}
	v.chassis.vehicle = v
	return v
}

func (v *Vehicle) release() {
	if v.chassis == nil {
		return
	}
	if !v.chassis.destroyed {
		filter := v.chassis.shape.Filter
		filter.Group = v.prevGroup
		v.chassis.shape.SetFilter(filter)
	}
	v.chassis.vehicle = nil
	v.chassis = nil
}

func (v *Vehicle) Chassis() *RigidBody {
	return v.chassis
}

func (v *Vehicle) NumWheels() int {
	return len(v.wheels)
}

func (v *Vehicle) Wheel(i int) (WheelInfo, bool) {
	if i < 0 || i >= len(v.wheels) {
		return WheelInfo{}, false
	}
	return v.wheels[i], true
}

func (v *Vehicle) SetEngineForce(i int, f float64) bool {
	if i < 0 || i >= len(v.wheels) || !finite(f) {
		return false
	}
	v.wheels[i].EngineForce = f
	if v.chassis != nil {
		v.chassis.Activate()
	}
	return true
}

func (v *Vehicle) SetBrake(i int, b float64) bool {
	if i < 0 || i >= len(v.wheels) || !finite(b) || b < 0 {
		return false
	}
	v.wheels[i].Brake = b
	if v.chassis != nil {
		v.chassis.Activate()
	}
	return true
}

// update casts every wheel ray and applies suspension, drive and brake forces.
func (v *Vehicle) update(w *World, dt float64) {
	if v.destroyed || v.chassis == nil || v.chassis.world != w {
		return
	}
	body := v.chassis.body
	if body.IsSleeping() {
		return
	}
	filter := cp.NewShapeFilter(v.chassis.shape.Filter.Group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)

	for i := range v.wheels {
		wh := &v.wheels[i]
		from := body.LocalToWorld(wh.Connection)
		dir := body.LocalToWorld(wh.Connection.Add(wh.Direction)).Sub(from)
		reach := wh.RestLength + wh.Radius
		hit := w.space.SegmentQueryFirst(from, from.Add(dir.Mult(reach)), 0, filter)

		wh.InContact = hit.Shape != nil
		wh.SuspensionForce = 0
		if !wh.InContact {
			wh.Compression = 0
			continue
		}
		wh.ContactPoint = hit.Point
		wh.ContactNormal = hit.Normal
		wh.Compression = math.Max(0, reach-hit.Alpha*reach)

		closing := body.VelocityAtWorldPoint(from).Dot(dir)
		force := wh.Stiffness*wh.Compression + wh.Damping*closing
		if force < 0 {
			force = 0
		}
		wh.SuspensionForce = force
		body.ApplyForceAtWorldPoint(dir.Mult(-force), from)

		forward := dir.Perp()
		drive := wh.EngineForce
		if wh.Brake > 0 {
			speed := body.VelocityAtWorldPoint(hit.Point).Dot(forward)
			stop := math.Min(wh.Brake, math.Abs(speed)*body.Mass()/dt)
			drive -= math.Copysign(stop, speed)
		}
		if wh.Friction > 0 {
			drive = cp.Clamp(drive, -wh.Friction*force, wh.Friction*force)
		}
		if drive != 0 {
			body.ApplyForceAtWorldPoint(forward.Mult(drive), hit.Point)
		}
		if other := hit.Shape.Body(); other.GetType() == cp.BODY_DYNAMIC {
			other.ApplyForceAtWorldPoint(dir.Mult(force), hit.Point)
		}
	}
}
