package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

type CollidableKind int

const (
	KindRigid CollidableKind = iota
	KindKinematic
	KindStatic
	KindSoft
)

func (k CollidableKind) String() string {
	switch k {
	case KindRigid:
		return "rigid"
	case KindKinematic:
		return "kinematic"
	case KindStatic:
		return "static"
	case KindSoft:
		return "soft"
	}
	return "unknown"
}

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
	ShapeSegment
	ShapePolygon
)

// ShapeDesc is body-local geometry.
type ShapeDesc struct {
	Kind     ShapeKind
	Radius   float64
	Width    float64
	Height   float64
	A, B     cp.Vector
	Vertices []cp.Vector
	Offset   cp.Vector
}

func (d ShapeDesc) validate(op string) error {
	switch d.Kind {
	case ShapeCircle:
		if !positive(d.Radius) {
			return configErr(op, "shape.radius", "must be positive")
		}
	case ShapeBox:
		if !positive(d.Width) || !positive(d.Height) {
			return configErr(op, "shape.size", "width and height must be positive")
		}
	case ShapeSegment:
		if d.A.Equal(d.B) {
			return configErr(op, "shape.segment", "endpoints must differ")
		}
		if d.Radius < 0 || math.IsNaN(d.Radius) {
			return configErr(op, "shape.radius", "must not be negative")
		}
	case ShapePolygon:
		if len(d.Vertices) < 3 {
			return configErr(op, "shape.vertices", "polygon needs at least 3 vertices")
		}
	default:
		return configErr(op, "shape.kind", "unknown shape kind")
	}
	return nil
}

func (d ShapeDesc) newShape(body *cp.Body) *cp.Shape {
	switch d.Kind {
	case ShapeCircle:
		return cp.NewCircle(body, d.Radius, d.Offset)
	case ShapeBox:
		return cp.NewBox2(body, d.box(), 0)
	case ShapeSegment:
		return cp.NewSegment(body, d.A.Add(d.Offset), d.B.Add(d.Offset), d.Radius)
	default:
		return cp.NewPolyShape(body, len(d.Vertices), d.Vertices, cp.NewTransformTranslate(d.Offset), 0)
	}
}

func (d ShapeDesc) moment(mass float64) float64 {
	switch d.Kind {
	case ShapeCircle:
		return cp.MomentForCircle(mass, 0, d.Radius, d.Offset)
	case ShapeBox:
		return cp.MomentForBox2(mass, d.box())
	case ShapeSegment:
		return cp.MomentForSegment(mass, d.A.Add(d.Offset), d.B.Add(d.Offset), d.Radius)
	default:
		return math.Abs(cp.MomentForPoly(mass, len(d.Vertices), d.Vertices, d.Offset, 0))
	}
}

func (d ShapeDesc) box() cp.BB {
	hw, hh := d.Width/2, d.Height/2
	return cp.BB{L: d.Offset.X - hw, B: d.Offset.Y - hh, R: d.Offset.X + hw, T: d.Offset.Y + hh}
}

// extent is the smallest half size of the shape, used as the CCD motion threshold.
func (d ShapeDesc) extent() float64 {
	switch d.Kind {
	case ShapeCircle:
		return d.Radius
	case ShapeBox:
		return math.Min(d.Width, d.Height) / 2
	case ShapeSegment:
		return math.Max(d.Radius, d.A.Distance(d.B)/2)
	default:
		bb := cp.BB{L: math.Inf(1), B: math.Inf(1), R: math.Inf(-1), T: math.Inf(-1)}
		for _, v := range d.Vertices {
			bb = bb.Expand(v)
		}
		return math.Min(bb.R-bb.L, bb.T-bb.B) / 2
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
