package system

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/physics"
)

var (
	debugConstraintColor = cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
	debugContactColor    = cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
)

// DebugReport is what one debug pass saw, filtered by the world's debug flags.
type DebugReport struct {
	Shapes   int
	Anchors  []cp.Vector
	Bounds   []cp.BB
	Contacts []cp.Vector
}

// PhysicsDebugSystem collects a DebugReport from the physics world every
// Every frames and logs a one line summary. It does nothing while the world
// has no debug flags set.
type PhysicsDebugSystem struct {
	Every int

	frame int
	last  DebugReport
}

func NewPhysicsDebugSystem(every int) *PhysicsDebugSystem {
	return &PhysicsDebugSystem{Every: every}
}

func (s *PhysicsDebugSystem) Update(w *ecs.World, _ float64) {
	pw := w.PhysicsWorld()
	if pw == nil || pw.IsFreed() || pw.DebugMode() == 0 {
		return
	}
	s.frame++
	if s.Every > 1 && s.frame%s.Every != 0 {
		return
	}

	s.last = CollectPhysicsDebug(pw)
	log.Printf("physics debug: %d shapes, %d bounds, %d anchors, %d contacts",
		s.last.Shapes, len(s.last.Bounds), len(s.last.Anchors), len(s.last.Contacts))
}

func (s *PhysicsDebugSystem) Last() DebugReport {
	return s.last
}

func CollectPhysicsDebug(pw *physics.World) DebugReport {
	d := &physicsDebugDrawer{flags: pw.DebugMode()}
	pw.DebugDraw(d)
	return d.report
}

type physicsDebugDrawer struct {
	flags  physics.DebugFlags
	report DebugReport
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.shape(cp.NewBBForCircle(pos, radius))
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	if fill == debugContactColor && d.flags.Has(physics.DebugContactPoints) {
		d.report.Contacts = append(d.report.Contacts, a.Lerp(b, 0.5))
	}
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.shape(cp.NewBBForExtents(a.Lerp(b, 0.5), math.Abs(b.X-a.X)/2+radius, math.Abs(b.Y-a.Y)/2+radius))
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	bb := cp.BB{L: verts[0].X, B: verts[0].Y, R: verts[0].X, T: verts[0].Y}
	for _, v := range verts[1:count] {
		bb = bb.Expand(v)
	}
	d.shape(cp.BB{L: bb.L - radius, B: bb.B - radius, R: bb.R + radius, T: bb.T + radius})
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if fill == debugConstraintColor && d.flags.Has(physics.DebugWireframe) {
		d.report.Anchors = append(d.report.Anchors, pos)
	}
}

func (d *physicsDebugDrawer) shape(bb cp.BB) {
	if d.flags.Has(physics.DebugWireframe) {
		d.report.Shapes++
	}
	if d.flags.Has(physics.DebugAABB) {
		d.report.Bounds = append(d.report.Bounds, bb)
	}
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS | cp.DRAW_COLLISION_POINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return debugConstraintColor
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return debugContactColor
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}
