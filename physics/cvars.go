package physics

import "github.com/jakecoffman/cp"

// DebugFlags mirrors the debug visualisation cvars into a world.
type DebugFlags uint8

const (
	DebugWireframe DebugFlags = 1 << iota
	DebugAABB
	DebugContactPoints
)

func (f DebugFlags) Has(flag DebugFlags) bool {
	return f&flag != 0
}

// CVars are the process wide tuning values polled by System.CheckModifiedCVars.
type CVars struct {
	DebugWireframe      bool    `yaml:"debug_wireframe"`
	DebugAABB           bool    `yaml:"debug_aabb"`
	DebugContactPoints  bool    `yaml:"debug_contact_points"`
	CCD                 bool    `yaml:"ccd"`
	DisableDeactivation bool    `yaml:"disable_deactivation"`
	GravityX            float64 `yaml:"gravity_x"`
	GravityY            float64 `yaml:"gravity_y"`
	Iterations          int     `yaml:"iterations"`
	SleepTime           float64 `yaml:"sleep_time"`
	IdleSpeed           float64 `yaml:"idle_speed"`
}

func DefaultCVars() *CVars {
	return &CVars{
		CCD:        true,
		GravityY:   -9.81,
		Iterations: 10,
		SleepTime:  0.5,
	}
}

func (c CVars) Gravity() cp.Vector {
	return cp.Vector{X: c.GravityX, Y: c.GravityY}
}

func (c CVars) DebugFlags() DebugFlags {
	var f DebugFlags
	if c.DebugWireframe {
		f |= DebugWireframe
	}
	if c.DebugAABB {
		f |= DebugAABB
	}
	if c.DebugContactPoints {
		f |= DebugContactPoints
	}
	return f
}

// WorldDesc overrides cvars for a single world. Zero fields fall back to the cvars.
type WorldDesc struct {
	Gravity    *cp.Vector
	Iterations int
	SleepTime  float64
	IdleSpeed  float64
}
