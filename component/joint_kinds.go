package component

import (
	"fmt"

	"github.com/milk9111/physcore/common"
	ecscomponent "github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/physics"
)

// JointSettings is one of GenericSettings, HingeSettings, SliderSettings,
// SocketSettings, SpringSettings or WheelSettings. Angles are degrees.
type JointSettings interface {
	jointSettings()
}

// GenericSettings bound the anchor distance and the relative angle. Zero
// ranges weld the bodies. Spring adds a damped spring on both.
type GenericSettings struct {
	MinDistance float64
	MaxDistance float64
	MinAngle    float64
	MaxAngle    float64

	Spring           bool
	RestLength       float64
	Stiffness        float64
	Damping          float64
	AngularStiffness float64
	AngularDamping   float64
}

type HingeSettings struct {
	LimitsEnabled bool
	MinAngle      float64
	MaxAngle      float64
	Motor         MotorSettings
}

// MotorSettings drive a hinge or a wheel. TargetSpeed is in degrees per second.
type MotorSettings struct {
	Enabled     bool
	TargetSpeed float64
	MaxImpulse  float64
}

// SliderSettings bound travel along the anchor's x axis.
type SliderSettings struct {
	MinTravel float64
	MaxTravel float64
}

type SocketSettings struct{}

type SpringSettings struct {
	RestLength    float64
	Stiffness     float64
	Damping       float64
	LimitsEnabled bool
	MinLength     float64
	MaxLength     float64
}

type WheelSettings struct {
	MinTravel  float64
	MaxTravel  float64
	RestLength float64
	Stiffness  float64
	Damping    float64
	Motor      MotorSettings
}

func (GenericSettings) jointSettings() {}
func (HingeSettings) jointSettings()   {}
func (SliderSettings) jointSettings()  {}
func (SocketSettings) jointSettings()  {}
func (SpringSettings) jointSettings()  {}
func (WheelSettings) jointSettings()   {}

func constraintKind(s JointSettings) physics.ConstraintKind {
	switch s := s.(type) {
	case GenericSettings:
		if s.Spring {
			return physics.ConstraintGenericSpring
		}
		return physics.ConstraintGeneric
	case HingeSettings:
		return physics.ConstraintHinge
	case SliderSettings:
		return physics.ConstraintSlider
	case SocketSettings:
		return physics.ConstraintSocket
	case SpringSettings:
		return physics.ConstraintSpring
	case WheelSettings:
		return physics.ConstraintWheel
	}
	return 0
}

// constraintDesc fills the kind and parameters; bodies and frames are left to the caller.
func constraintDesc(s JointSettings) physics.ConstraintDesc {
	desc := physics.ConstraintDesc{Kind: constraintKind(s)}
	switch s := s.(type) {
	case GenericSettings:
		generic := physics.GenericParams{
			Linear:  physics.Range{Lower: s.MinDistance, Upper: s.MaxDistance},
			Angular: physics.Range{Lower: common.Radians(s.MinAngle), Upper: common.Radians(s.MaxAngle)},
		}
		desc.Generic = generic
		desc.GenericSpring = physics.GenericSpringParams{
			GenericParams:    generic,
			RestLength:       s.RestLength,
			Stiffness:        s.Stiffness,
			Damping:          s.Damping,
			AngularStiffness: s.AngularStiffness,
			AngularDamping:   s.AngularDamping,
		}
	case HingeSettings:
		desc.Hinge = physics.HingeParams{
			LimitsEnabled: s.LimitsEnabled,
			Limits:        physics.Range{Lower: common.Radians(s.MinAngle), Upper: common.Radians(s.MaxAngle)},
			Motor:         s.Motor.motor(),
		}
	case SliderSettings:
		desc.Slider = physics.SliderParams{Limits: physics.Range{Lower: s.MinTravel, Upper: s.MaxTravel}}
	case SpringSettings:
		desc.Spring = physics.SpringParams{
			RestLength:    s.RestLength,
			Stiffness:     s.Stiffness,
			Damping:       s.Damping,
			LimitsEnabled: s.LimitsEnabled,
			Limits:        physics.Range{Lower: s.MinLength, Upper: s.MaxLength},
		}
	case WheelSettings:
		desc.Wheel = physics.WheelParams{
			Travel:     physics.Range{Lower: s.MinTravel, Upper: s.MaxTravel},
			RestLength: s.RestLength,
			Stiffness:  s.Stiffness,
			Damping:    s.Damping,
			Motor:      s.Motor.motor(),
		}
	}
	return desc
}

func (m MotorSettings) motor() physics.Motor {
	return physics.Motor{Enabled: m.Enabled, TargetVelocity: common.Radians(m.TargetSpeed), MaxImpulse: m.MaxImpulse}
}

// GenericJoint limits distance and angle between two bodies, optionally sprung.
type GenericJoint struct{ *Joint }

var GenericJointComponent = ecscomponent.NewComponent[GenericJoint]()

func NewGenericJoint(s GenericSettings) *GenericJoint {
	return &GenericJoint{NewJoint(s)}
}

func (g *GenericJoint) Settings() GenericSettings {
	return g.settings.(GenericSettings)
}

func (g *GenericJoint) SetLinearLimits(min, max float64) error {
	next := g.Settings()
	next.MinDistance, next.MaxDistance = min, max
	return g.update(next, func(c *physics.Constraint) error {
		return c.SetLinearLimits(min, max)
	})
}

func (g *GenericJoint) SetAngularLimits(min, max float64) error {
	next := g.Settings()
	next.MinAngle, next.MaxAngle = min, max
	return g.update(next, func(c *physics.Constraint) error {
		return c.SetAngularLimits(common.Radians(min), common.Radians(max))
	})
}

func (g *GenericJoint) SetSpring(stiffness, damping float64) error {
	next := g.Settings()
	if !next.Spring {
		return fmt.Errorf("component: generic joint without spring: %w", physics.ErrUnsupported)
	}
	next.Stiffness, next.Damping = stiffness, damping
	return g.update(next, func(c *physics.Constraint) error {
		return c.SetSpring(stiffness, damping)
	})
}

func (g *GenericJoint) SetAngularSpring(stiffness, damping float64) error {
	next := g.Settings()
	if !next.Spring {
		return fmt.Errorf("component: generic joint without spring: %w", physics.ErrUnsupported)
	}
	next.AngularStiffness, next.AngularDamping = stiffness, damping
	return g.update(next, func(c *physics.Constraint) error {
		return c.SetAngularSpring(stiffness, damping)
	})
}

func (g *GenericJoint) SetRestLength(l float64) error {
	next := g.Settings()
	if !next.Spring {
		return fmt.Errorf("component: generic joint without spring: %w", physics.ErrUnsupported)
	}
	next.RestLength = l
	return g.update(next, func(c *physics.Constraint) error {
		return c.SetRestLength(l)
	})
}

// HingeJoint rotates about a shared anchor.
type HingeJoint struct{ *Joint }

var HingeJointComponent = ecscomponent.NewComponent[HingeJoint]()

func NewHingeJoint(s HingeSettings) *HingeJoint {
	return &HingeJoint{NewJoint(s)}
}

func (h *HingeJoint) Settings() HingeSettings {
	return h.settings.(HingeSettings)
}

// SetMinimumAngle enables the limits. A minimum above the maximum is rejected.
func (h *HingeJoint) SetMinimumAngle(deg float64) error {
	s := h.Settings()
	return h.SetLimits(deg, s.MaxAngle)
}

// SetMaximumAngle enables the limits. A maximum below the minimum is rejected.
func (h *HingeJoint) SetMaximumAngle(deg float64) error {
	s := h.Settings()
	return h.SetLimits(s.MinAngle, deg)
}

func (h *HingeJoint) SetLimits(min, max float64) error {
	next := h.Settings()
	next.LimitsEnabled = true
	next.MinAngle, next.MaxAngle = min, max
	return h.update(next, func(c *physics.Constraint) error {
		return c.SetAngularLimits(common.Radians(min), common.Radians(max))
	})
}

func (h *HingeJoint) DisableLimits() error {
	next := h.Settings()
	next.LimitsEnabled = false
	return h.update(next, func(c *physics.Constraint) error {
		return c.DisableAngularLimits()
	})
}

func (h *HingeJoint) SetMotor(m MotorSettings) error {
	next := h.Settings()
	next.Motor = m
	return h.update(next, func(c *physics.Constraint) error {
		pm := m.motor()
		return c.SetMotor(pm.Enabled, pm.TargetVelocity, pm.MaxImpulse)
	})
}

// SliderJoint keeps the connected anchor on a line through the anchor.
type SliderJoint struct{ *Joint }

var SliderJointComponent = ecscomponent.NewComponent[SliderJoint]()

func NewSliderJoint(s SliderSettings) *SliderJoint {
	return &SliderJoint{NewJoint(s)}
}

func (s *SliderJoint) Settings() SliderSettings {
	return s.settings.(SliderSettings)
}

func (s *SliderJoint) SetLimits(min, max float64) error {
	next := SliderSettings{MinTravel: min, MaxTravel: max}
	return s.update(next, func(c *physics.Constraint) error {
		return c.SetLinearLimits(min, max)
	})
}

// SocketJoint pins two anchors together, or one anchor to the world.
type SocketJoint struct{ *Joint }

var SocketJointComponent = ecscomponent.NewComponent[SocketJoint]()

func NewSocketJoint() *SocketJoint {
	return &SocketJoint{NewJoint(SocketSettings{})}
}

// SpringJoint is a damped spring between the anchors.
type SpringJoint struct{ *Joint }

var SpringJointComponent = ecscomponent.NewComponent[SpringJoint]()

func NewSpringJoint(s SpringSettings) *SpringJoint {
	return &SpringJoint{NewJoint(s)}
}

func (s *SpringJoint) Settings() SpringSettings {
	return s.settings.(SpringSettings)
}

func (s *SpringJoint) SetStiffness(k float64) error {
	next := s.Settings()
	next.Stiffness = k
	return s.update(next, func(c *physics.Constraint) error {
		return c.SetSpring(next.Stiffness, next.Damping)
	})
}

func (s *SpringJoint) SetDamping(d float64) error {
	next := s.Settings()
	next.Damping = d
	return s.update(next, func(c *physics.Constraint) error {
		return c.SetSpring(next.Stiffness, next.Damping)
	})
}

func (s *SpringJoint) SetRestLength(l float64) error {
	next := s.Settings()
	next.RestLength = l
	return s.update(next, func(c *physics.Constraint) error {
		return c.SetRestLength(l)
	})
}

func (s *SpringJoint) SetLengthLimits(min, max float64) error {
	next := s.Settings()
	next.LimitsEnabled = true
	next.MinLength, next.MaxLength = min, max
	return s.update(next, func(c *physics.Constraint) error {
		return c.SetLinearLimits(min, max)
	})
}

// WheelJoint is a sprung suspension with a drive motor.
type WheelJoint struct{ *Joint }

var WheelJointComponent = ecscomponent.NewComponent[WheelJoint]()

func NewWheelJoint(s WheelSettings) *WheelJoint {
	return &WheelJoint{NewJoint(s)}
}

func (w *WheelJoint) Settings() WheelSettings {
	return w.settings.(WheelSettings)
}

func (w *WheelJoint) SetSuspension(stiffness, damping float64) error {
	next := w.Settings()
	next.Stiffness, next.Damping = stiffness, damping
	return w.update(next, func(c *physics.Constraint) error {
		return c.SetSpring(stiffness, damping)
	})
}

func (w *WheelJoint) SetTravel(min, max float64) error {
	next := w.Settings()
	next.MinTravel, next.MaxTravel = min, max
	return w.update(next, func(c *physics.Constraint) error {
		return c.SetLinearLimits(min, max)
	})
}

func (w *WheelJoint) SetRestLength(l float64) error {
	next := w.Settings()
	next.RestLength = l
	return w.update(next, func(c *physics.Constraint) error {
		return c.SetRestLength(l)
	})
}

func (w *WheelJoint) SetMotor(m MotorSettings) error {
	next := w.Settings()
	next.Motor = m
	return w.update(next, func(c *physics.Constraint) error {
		pm := m.motor()
		return c.SetMotor(pm.Enabled, pm.TargetVelocity, pm.MaxImpulse)
	})
}
