package component

import "github.com/jakecoffman/cp"

// Transform is the planar pose of an entity. Rotation is in radians.
type Transform struct {
	X        float64
	Y        float64
	Rotation float64
}

func (t *Transform) Origin() cp.Vector {
	return cp.Vector{X: t.X, Y: t.Y}
}

func (t *Transform) SetOrigin(v cp.Vector) {
	t.X, t.Y = v.X, v.Y
}

var TransformComponent = NewComponent[Transform]()
