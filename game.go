package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/milk9111/physcore/common"
	physcomp "github.com/milk9111/physcore/component"
	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/ecs/component"
	"github.com/milk9111/physcore/ecs/entity"
	"github.com/milk9111/physcore/ecs/system"
	"github.com/milk9111/physcore/physics"
	"github.com/milk9111/physcore/prefabs"
)

type Config struct {
	Scene    string
	CVars    string
	Script   string
	Frames   int
	FPS      float64
	Realtime bool
	Watch    bool
	Debug    bool
}

type Game struct {
	frames int
	cfg    Config

	sys       *physics.System
	world     *ecs.World
	physics   *system.PhysicsSystem
	scheduler *ecs.Scheduler
	watcher   *prefabs.Watcher

	watchStopped bool
}

func NewGame(cfg Config) (*Game, error) {
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("game: fps must be positive, got %v", cfg.FPS)
	}
	cv, err := loadCVars(cfg)
	if err != nil {
		return nil, err
	}

	sys := physics.NewSystem(cv)
	if err := sys.Init(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	pw, err := sys.AllocWorld(physics.WorldDesc{})
	if err != nil {
		sys.Shutdown()
		return nil, fmt.Errorf("game: %w", err)
	}
	w := ecs.NewWorld()
	w.SetPhysicsWorld(sys, pw)

	if _, err := entity.BuildScene(w, cfg.Scene); err != nil {
		sys.Shutdown()
		return nil, fmt.Errorf("game: %w", err)
	}

	ps := system.NewPhysicsSystem()
	g := &Game{
		cfg:       cfg,
		sys:       sys,
		world:     w,
		physics:   ps,
		scheduler: ecs.NewScheduler(ps, system.NewPhysicsDebugSystem(int(cfg.FPS)), &eventSystem{debug: cfg.Debug}),
	}

	if cfg.Watch {
		watcher, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, prefabs.ScriptDir))
		if err != nil {
			log.Printf("game: live reload disabled: %v", err)
		} else {
			g.watcher = watcher
		}
	}
	return g, nil
}

func loadCVars(cfg Config) (*physics.CVars, error) {
	cv, err := prefabs.LoadCVars(cfg.CVars)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if cfg.Script != "" {
		if err := prefabs.ApplyCVarScript(cv, cfg.Script); err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
	}
	return cv, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.sys.Shutdown()
}

// Run advances Frames frames, or until ctx is done when Frames is zero.
func (g *Game) Run(ctx context.Context) error {
	dt := 1 / g.cfg.FPS
	var tick <-chan time.Time
	if g.cfg.Realtime {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for g.cfg.Frames == 0 || g.frames < g.cfg.Frames {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		if err := g.Update(dt); err != nil {
			return err
		}
	}
	log.Printf("game: simulated %d frames, %d dropped", g.frames, g.physics.DroppedFrames())
	return nil
}

func (g *Game) Update(dt float64) error {
	g.frames++
	g.reloadIfChanged()
	g.scheduler.Update(g.world, dt)

	if g.cfg.Debug && g.frames%max(1, int(g.cfg.FPS)) == 0 {
		g.logBodies()
	}
	return nil
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil || g.watchStopped {
		return
	}
	for {
		select {
		case c, ok := <-g.watcher.Events:
			if !ok {
				g.watchStopped = true
				return
			}
			g.reload(c)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watchStopped = true
				return
			}
			log.Printf("game: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(c prefabs.Change) {
	base := filepath.Base(c.Path)
	switch c.Kind {
	case prefabs.ChangeSpec:
		if base != filepath.Base(g.cfg.CVars) {
			return
		}
	case prefabs.ChangeScript:
		if g.cfg.Script == "" || base != filepath.Base(g.cfg.Script) {
			return
		}
	}
	cv, err := loadCVars(g.cfg)
	if err != nil {
		log.Printf("game: reload cvars: %v", err)
		return
	}
	*g.sys.CVars() = *cv
	g.sys.CheckModifiedCVars()
	log.Printf("game: reloaded cvars from %s", base)
}

func (g *Game) logBodies() {
	ecs.ForEach2(g.world, physcomp.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, _ *physcomp.RigidBody, t *component.Transform) {
		name := ecs.Name(g.world, e)
		if name == "" {
			name = e.String()
		}
		log.Printf("frame %d: %s at (%.3f, %.3f) %.1f°", g.frames, name, t.X, t.Y, common.Degrees(t.Rotation))
	})
}

// eventSystem logs the physics events of the frame.
type eventSystem struct {
	debug bool
}

func (s *eventSystem) Update(w *ecs.World, _ float64) {
	for _, evt := range w.Events().Peek(ecs.EventJointBroken) {
		jb := evt.Data.(ecs.JointBrokenEvent)
		log.Printf("game: joint on %q broke at impulse %.3f", ecs.Name(w, jb.Entity), jb.Impulse)
	}
	if !s.debug {
		return
	}
	for _, evt := range w.Events().Peek(ecs.EventCollision) {
		ce := evt.Data.(ecs.CollisionEvent)
		if ce.First {
			log.Printf("game: %q touched %q (impulse %.3f)", ecs.Name(w, ce.A), ecs.Name(w, ce.B), ce.Impulse)
		}
	}
}
