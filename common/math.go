package common

import "math"

const (
	// Gravity is the default downward acceleration in m/s² (Y up).
	Gravity = -9.81
	// TimeStep is the fixed simulation step.
	TimeStep = 1.0 / 60.0
	// MaxStepsPerFrame bounds the catch-up steps after a long frame.
	MaxStepsPerFrame = 5
)

func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
