package prefabs

import "gopkg.in/yaml.v3"

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// TransformComponentSpec rotation is in degrees.
type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ShapeSpec kind is one of circle, box, segment or polygon.
type ShapeSpec struct {
	Kind     string       `yaml:"kind"`
	Radius   float64      `yaml:"radius"`
	Width    float64      `yaml:"width"`
	Height   float64      `yaml:"height"`
	A        VectorSpec   `yaml:"a"`
	B        VectorSpec   `yaml:"b"`
	Vertices []VectorSpec `yaml:"vertices"`
	Offset   VectorSpec   `yaml:"offset"`
}

type FilterSpec struct {
	Group      uint `yaml:"group"`
	Categories uint `yaml:"categories"`
	Mask       uint `yaml:"mask"`
}

type RigidBodyComponentSpec struct {
	Shape          ShapeSpec  `yaml:"shape"`
	Mass           float64    `yaml:"mass"`
	Kinematic      bool       `yaml:"kinematic"`
	Friction       float64    `yaml:"friction"`
	Elasticity     float64    `yaml:"elasticity"`
	LinearDamping  float64    `yaml:"linear_damping"`
	AngularDamping float64    `yaml:"angular_damping"`
	CCD            bool       `yaml:"ccd"`
	Filter         FilterSpec `yaml:"filter"`
}

type ColliderComponentSpec struct {
	Shape      ShapeSpec  `yaml:"shape"`
	Friction   float64    `yaml:"friction"`
	Elasticity float64    `yaml:"elasticity"`
	Sensor     bool       `yaml:"sensor"`
	Filter     FilterSpec `yaml:"filter"`
}

// AnchorSpec angle is in degrees.
type AnchorSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Angle float64 `yaml:"angle"`
}

// JointComponentSpec holds the keys every joint kind accepts. ConnectedBody
// names an entity of the same scene.
type JointComponentSpec struct {
	ConnectedBody    string     `yaml:"connected_body"`
	Anchor           AnchorSpec `yaml:"anchor"`
	ConnectedAnchor  AnchorSpec `yaml:"connected_anchor"`
	CollisionEnabled bool       `yaml:"collision_enabled"`
	BreakImpulse     float64    `yaml:"break_impulse"`
}

type MotorSpec struct {
	Enabled     bool    `yaml:"enabled"`
	TargetSpeed float64 `yaml:"target_speed"`
	MaxImpulse  float64 `yaml:"max_impulse"`
}

type GenericJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
	MinDistance        float64 `yaml:"min_distance"`
	MaxDistance        float64 `yaml:"max_distance"`
	MinAngle           float64 `yaml:"min_angle"`
	MaxAngle           float64 `yaml:"max_angle"`
	Spring             bool    `yaml:"spring"`
	RestLength         float64 `yaml:"rest_length"`
	Stiffness          float64 `yaml:"stiffness"`
	Damping            float64 `yaml:"damping"`
	AngularStiffness   float64 `yaml:"angular_stiffness"`
	AngularDamping     float64 `yaml:"angular_damping"`
}

type HingeJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
	LimitsEnabled      bool      `yaml:"limits_enabled"`
	MinAngle           float64   `yaml:"min_angle"`
	MaxAngle           float64   `yaml:"max_angle"`
	Motor              MotorSpec `yaml:"motor"`
}

type SliderJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
	MinTravel          float64 `yaml:"min_travel"`
	MaxTravel          float64 `yaml:"max_travel"`
}

type SocketJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
}

type SpringJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
	RestLength         float64 `yaml:"rest_length"`
	Stiffness          float64 `yaml:"stiffness"`
	Damping            float64 `yaml:"damping"`
	LimitsEnabled      bool    `yaml:"limits_enabled"`
	MinLength          float64 `yaml:"min_length"`
	MaxLength          float64 `yaml:"max_length"`
}

type WheelJointComponentSpec struct {
	JointComponentSpec `yaml:",inline"`
	MinTravel          float64   `yaml:"min_travel"`
	MaxTravel          float64   `yaml:"max_travel"`
	RestLength         float64   `yaml:"rest_length"`
	Stiffness          float64   `yaml:"stiffness"`
	Damping            float64   `yaml:"damping"`
	Motor              MotorSpec `yaml:"motor"`
}
