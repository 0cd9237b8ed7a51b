package physics

import (
	"math"
	"slices"

	"github.com/jakecoffman/cp"
)

// maxSubSteps bounds the CCD sub-stepping of a single Step.
const maxSubSteps = 8

// ContactEvent reports one touching pair after a step. A and B follow handle order.
type ContactEvent struct {
	Key     CollisionPairKey
	A, B    *Collidable
	Normal  cp.Vector
	Impulse float64
	First   bool
}

// World is one simulation space.
type World struct {
	sys   *System
	space *cp.Space
	desc  WorldDesc

	collidables []*Collidable
	constraints []*Constraint

	debug DebugFlags
	ccd   bool

	pairs    PairSet
	contacts []ContactEvent
	broken   []*Constraint

	onContact func(ContactEvent)
	onBreak   func(*Constraint)

	freed bool
}

func newWorld(s *System, desc WorldDesc) *World {
	return &World{sys: s, space: cp.NewSpace(), desc: desc}
}

func (w *World) applyCVars(cv CVars) {
	w.debug = cv.DebugFlags()
	w.ccd = cv.CCD

	if w.desc.Gravity != nil {
		w.space.SetGravity(*w.desc.Gravity)
	} else {
		w.space.SetGravity(cv.Gravity())
	}

	iterations := cv.Iterations
	if w.desc.Iterations > 0 {
		iterations = w.desc.Iterations
	}
	if iterations > 0 {
		w.space.Iterations = uint(iterations)
	}

	idle := cv.IdleSpeed
	if w.desc.IdleSpeed > 0 {
		idle = w.desc.IdleSpeed
	}
	w.space.IdleSpeedThreshold = idle

	sleep := cv.SleepTime
	if w.desc.SleepTime > 0 {
		sleep = w.desc.SleepTime
	}
	if cv.DisableDeactivation || sleep <= 0 {
		w.space.SleepTimeThreshold = cp.INFINITY
		w.wakeAll()
	} else {
		w.space.SleepTimeThreshold = sleep
	}
}

func (w *World) wakeAll() {
	for _, c := range w.collidables {
		c.body.Activate()
	}
}

func (w *World) DebugMode() DebugFlags {
	return w.debug
}

func (w *World) CCDEnabled() bool {
	return w.ccd
}

func (w *World) Gravity() cp.Vector {
	return w.space.Gravity()
}

// SetGravity pins the world gravity so later cvar changes leave it alone.
func (w *World) SetGravity(g cp.Vector) {
	w.desc.Gravity = &g
	w.space.SetGravity(g)
	w.wakeAll()
}

func (w *World) Bodies() int {
	return len(w.collidables)
}

func (w *World) ConstraintCount() int {
	return len(w.constraints)
}

func (w *World) IsFreed() bool {
	return w.freed
}

// DebugDraw walks every shape, constraint and contact point of the world into d.
func (w *World) DebugDraw(d cp.Drawer) {
	if w.freed {
		return
	}
	cp.DrawSpace(w.space, d)
}

func (w *World) OnContact(fn func(ContactEvent)) {
	w.onContact = fn
}

func (w *World) OnBreak(fn func(*Constraint)) {
	w.onBreak = fn
}

// Contacts are the unique touching pairs of the last step, sorted by key.
func (w *World) Contacts() []ContactEvent {
	return w.contacts
}

// Broken lists the constraints that broke during the last step.
func (w *World) Broken() []*Constraint {
	return w.broken
}

func (w *World) Step(dt float64) {
	if w == nil || w.freed || dt <= 0 {
		return
	}
	w.pairs.Reset()
	w.contacts = w.contacts[:0]
	w.broken = w.broken[:0]

	n := w.subSteps(dt)
	h := dt / float64(n)
	for range n {
		for _, c := range w.collidables {
			if c.rigid != nil && c.rigid.vehicle != nil {
				c.rigid.vehicle.update(w, h)
			}
		}
		for _, c := range w.constraints {
			c.prestep(h)
		}
		func() {
			defer guardSolver("step")
			w.space.Step(h)
		}()
		w.checkBreaks()
		w.collectContacts()
	}

	slices.SortFunc(w.contacts, func(a, b ContactEvent) int {
		return a.Key.Compare(b.Key)
	})
	if w.onContact != nil {
		for _, ev := range w.contacts {
			w.onContact(ev)
		}
	}
	if w.onBreak != nil {
		for _, c := range w.broken {
			w.onBreak(c)
		}
	}
}

// subSteps splits the step so no CCD body travels further than its motion threshold.
func (w *World) subSteps(dt float64) int {
	if !w.ccd {
		return 1
	}
	n := 1
	for _, c := range w.collidables {
		rb := c.rigid
		if rb == nil || !rb.ccd || c.body.IsSleeping() {
			continue
		}
		threshold := rb.CCDMotionThreshold()
		if threshold <= 0 {
			continue
		}
		travel := c.body.Velocity().Length() * dt
		if steps := int(math.Ceil(travel / threshold)); steps > n {
			n = steps
		}
	}
	return min(n, maxSubSteps)
}

func (w *World) checkBreaks() {
	for _, c := range slices.Clone(w.constraints) {
		if c.observeImpulse() {
			w.broken = append(w.broken, c)
		}
	}
}

func (w *World) collectContacts() {
	for _, c := range w.collidables {
		c.body.EachArbiter(func(arb *cp.Arbiter) {
			if arb.Count() == 0 {
				return
			}
			sa, sb := arb.Shapes()
			ca, okA := sa.UserData.(*Collidable)
			cb, okB := sb.UserData.(*Collidable)
			if !okA || !okB {
				return
			}
			key := NewCollisionPairKey(ca.handle, cb.handle)
			if !w.pairs.Insert(key) {
				return
			}
			normal := arb.Normal()
			if cb.handle < ca.handle {
				ca, cb = cb, ca
				normal = normal.Neg()
			}
			w.contacts = append(w.contacts, ContactEvent{
				Key:     key,
				A:       ca,
				B:       cb,
				Normal:  normal,
				Impulse: arb.TotalImpulse().Length(),
				First:   arb.IsFirstContact(),
			})
		})
	}
}

func (w *World) addCollidable(c *Collidable) {
	w.collidables = append(w.collidables, c)
}

func (w *World) removeCollidable(c *Collidable) {
	if i := slices.Index(w.collidables, c); i >= 0 {
		w.collidables = slices.Delete(w.collidables, i, i+1)
	}
}

func (w *World) addConstraint(c *Constraint) {
	w.constraints = append(w.constraints, c)
}

func (w *World) removeConstraint(c *Constraint) {
	if i := slices.Index(w.constraints, c); i >= 0 {
		w.constraints = slices.Delete(w.constraints, i, i+1)
	}
}

// detachAll empties w. Constraints waiting on w are released too, including
// those whose bodies only reach w through a linked collidable.
func (w *World) detachAll() {
	for _, c := range slices.Clone(w.constraints) {
		c.RemoveFromWorld()
	}
	for _, c := range slices.Clone(w.collidables) {
		c.RemoveFromWorld()
		for _, con := range c.constraints {
			if con.pending == w {
				con.pending = nil
			}
		}
	}
}
