package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

type ConstraintKind int

const (
	ConstraintGeneric ConstraintKind = iota + 1
	ConstraintGenericSpring
	ConstraintSocket
	ConstraintHinge
	ConstraintSlider
	ConstraintSpring
	ConstraintWheel
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintGeneric:
		return "generic"
	case ConstraintGenericSpring:
		return "generic_spring"
	case ConstraintSocket:
		return "socket"
	case ConstraintHinge:
		return "hinge"
	case ConstraintSlider:
		return "slider"
	case ConstraintSpring:
		return "spring"
	case ConstraintWheel:
		return "wheel"
	}
	return "unknown"
}

// TwoBody reports whether the kind needs a second body. Only sockets can pin to the world.
func (k ConstraintKind) TwoBody() bool {
	return k != ConstraintSocket
}

// Frame is an anchor and orientation in a body's local space.
type Frame struct {
	Anchor cp.Vector
	Angle  float64
}

// Range is an inclusive [Lower, Upper] interval.
type Range struct {
	Lower float64
	Upper float64
}

func (r Range) ordered() bool {
	return !math.IsNaN(r.Lower) && !math.IsNaN(r.Upper) && r.Lower <= r.Upper
}

type Motor struct {
	Enabled        bool
	TargetVelocity float64
	MaxImpulse     float64
}

// GenericParams limits the anchor distance and the relative frame angle (radians).
// A zero linear range locks the anchors together.
type GenericParams struct {
	Linear  Range
	Angular Range
}

type GenericSpringParams struct {
	GenericParams
	RestLength       float64
	Stiffness        float64
	Damping          float64
	AngularStiffness float64
	AngularDamping   float64
}

type SocketParams struct{}

type HingeParams struct {
	LimitsEnabled bool
	Limits        Range
	Motor         Motor
}

// SliderParams bounds travel of body B's anchor along frame A's x axis.
type SliderParams struct {
	Limits Range
}

type SpringParams struct {
	RestLength    float64
	Stiffness     float64
	Damping       float64
	LimitsEnabled bool
	Limits        Range
}

// WheelParams: suspension travels along frame A's x axis, the motor drives
// body B's rotation relative to body A.
type WheelParams struct {
	Travel     Range
	RestLength float64
	Stiffness  float64
	Damping    float64
	Motor      Motor
}

// ConstraintDesc is a tagged union: only the payload matching Kind is read.
type ConstraintDesc struct {
	Kind             ConstraintKind
	BodyA            *RigidBody
	BodyB            *RigidBody
	FrameA           Frame
	FrameB           Frame
	CollideConnected bool
	// BreakImpulse of zero means the constraint never breaks.
	BreakImpulse float64

	Generic       GenericParams
	GenericSpring GenericSpringParams
	Socket        SocketParams
	Hinge         HingeParams
	Slider        SliderParams
	Spring        SpringParams
	Wheel         WheelParams
}

func (s *System) validateConstraint(desc *ConstraintDesc) error {
	const op = "create constraint"
	if desc.Kind < ConstraintGeneric || desc.Kind > ConstraintWheel {
		return configErr(op, "kind", "unknown constraint kind")
	}
	if desc.BodyA == nil {
		return configErr(op, "body_a", "required")
	}
	if !s.owns(desc.BodyA) {
		return configErr(op, "body_a", "not a live body of this system")
	}
	if desc.BodyB == nil && desc.Kind.TwoBody() {
		return configErr(op, "body_b", desc.Kind.String()+" needs two bodies")
	}
	if desc.BodyB != nil {
		if !s.owns(desc.BodyB) {
			return configErr(op, "body_b", "not a live body of this system")
		}
		if desc.BodyB == desc.BodyA {
			return configErr(op, "body_b", "must differ from body_a")
		}
	}
	switch {
	case math.IsNaN(desc.BreakImpulse) || desc.BreakImpulse < 0:
		return configErr(op, "break_impulse", "must not be negative")
	case desc.BreakImpulse == 0:
		desc.BreakImpulse = math.Inf(1)
	}
	if desc.BodyB == nil && desc.FrameB == (Frame{}) {
		desc.FrameB.Anchor = desc.BodyA.body.LocalToWorld(desc.FrameA.Anchor)
	}
	return validateParams(op, desc)
}

func validateParams(op string, d *ConstraintDesc) error {
	switch d.Kind {
	case ConstraintGeneric:
		return validateGeneric(op, d.Generic)
	case ConstraintGenericSpring:
		p := d.GenericSpring
		if err := validateGeneric(op, p.GenericParams); err != nil {
			return err
		}
		if err := validateSpring(op, p.Stiffness, p.Damping); err != nil {
			return err
		}
		if err := validateSpring(op, p.AngularStiffness, p.AngularDamping); err != nil {
			return err
		}
		return validateRestLength(op, p.RestLength)
	case ConstraintHinge:
		p := d.Hinge
		if p.LimitsEnabled && !p.Limits.ordered() {
			return configErr(op, "limits", "lower must not exceed upper")
		}
		return validateMotor(op, p.Motor)
	case ConstraintSlider:
		return validateTravel(op, d.Slider.Limits)
	case ConstraintSpring:
		p := d.Spring
		if err := validateSpring(op, p.Stiffness, p.Damping); err != nil {
			return err
		}
		if p.LimitsEnabled {
			if err := validateDistance(op, p.Limits); err != nil {
				return err
			}
		}
		return validateRestLength(op, p.RestLength)
	case ConstraintWheel:
		p := d.Wheel
		if err := validateTravel(op, p.Travel); err != nil {
			return err
		}
		if err := validateSpring(op, p.Stiffness, p.Damping); err != nil {
			return err
		}
		if err := validateRestLength(op, p.RestLength); err != nil {
			return err
		}
		return validateMotor(op, p.Motor)
	}
	return nil
}

func validateGeneric(op string, p GenericParams) error {
	if err := validateDistance(op, p.Linear); err != nil {
		return err
	}
	if !p.Angular.ordered() {
		return configErr(op, "angular_limits", "lower must not exceed upper")
	}
	return nil
}

func validateDistance(op string, r Range) error {
	if !r.ordered() {
		return configErr(op, "linear_limits", "lower must not exceed upper")
	}
	if r.Lower < 0 {
		return configErr(op, "linear_limits", "distance must not be negative")
	}
	return nil
}

// Travel ranges feed a groove, which needs a non-empty segment.
func validateTravel(op string, r Range) error {
	if !r.ordered() || r.Lower == r.Upper || !finite(r.Lower) || !finite(r.Upper) {
		return configErr(op, "linear_limits", "lower must be strictly below upper")
	}
	return nil
}

func validateSpring(op string, stiffness, damping float64) error {
	if !finite(stiffness) || stiffness < 0 {
		return configErr(op, "stiffness", "must be finite and not negative")
	}
	if !finite(damping) || damping < 0 {
		return configErr(op, "damping", "must be finite and not negative")
	}
	return nil
}

func validateRestLength(op string, l float64) error {
	if !finite(l) || l < 0 {
		return configErr(op, "rest_length", "must be finite and not negative")
	}
	return nil
}

func validateMotor(op string, m Motor) error {
	if !finite(m.TargetVelocity) {
		return configErr(op, "motor.target_velocity", "must be finite")
	}
	if math.IsNaN(m.MaxImpulse) || m.MaxImpulse < 0 {
		return configErr(op, "motor.max_impulse", "must not be negative")
	}
	return nil
}

// Validate checks the kind and its parameter payload without looking at the bodies.
func (d ConstraintDesc) Validate() error {
	const op = "validate constraint"
	if d.Kind < ConstraintGeneric || d.Kind > ConstraintWheel {
		return configErr(op, "kind", "unknown constraint kind")
	}
	return validateParams(op, &d)
}
