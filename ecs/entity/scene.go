package entity

import (
	"fmt"
	"maps"

	"github.com/milk9111/physcore/ecs"
	"github.com/milk9111/physcore/prefabs"
)

// BuildScene creates every entity of a scene file, then links parents and
// connected bodies by name and awakes the roots. On error nothing is left in w.
func BuildScene(w *ecs.World, scenePath string) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	scene, err := prefabs.LoadSceneSpec(scenePath)
	if err != nil {
		return nil, fmt.Errorf("build scene: load %q: %w", scenePath, err)
	}

	created := make([]ecs.Entity, 0, len(scene.Entities))
	fail := func(err error) ([]ecs.Entity, error) {
		for _, e := range created {
			ecs.DestroyEntity(w, e)
		}
		return nil, err
	}

	ctx := &buildContext{PrefabPath: scenePath}
	for i, spec := range scene.Entities {
		components, err := sceneComponents(spec)
		if err != nil {
			return fail(fmt.Errorf("build scene: %q: entity %d: %w", scenePath, i, err))
		}
		e := ecs.CreateEntity(w)
		created = append(created, e)
		if err := ecs.SetName(w, e, spec.Name); err != nil {
			return fail(fmt.Errorf("build scene: %q: %w", scenePath, err))
		}
		if err := buildComponents(w, e, components, ctx); err != nil {
			return fail(err)
		}
	}

	for i, spec := range scene.Entities {
		e := created[i]
		if spec.Parent != "" {
			parent, ok := ecs.FindByName(w, spec.Parent)
			if !ok {
				return fail(fmt.Errorf("build scene: %q: %q: unknown parent %q", scenePath, spec.Name, spec.Parent))
			}
			if err := ecs.SetParent(w, e, parent); err != nil {
				return fail(fmt.Errorf("build scene: %q: %q: %w", scenePath, spec.Name, err))
			}
		}
		if spec.Active != nil {
			ecs.SetActive(w, e, *spec.Active)
		}
	}
	if err := ctx.resolveLinks(w); err != nil {
		return fail(err)
	}

	for _, e := range created {
		if _, ok := ecs.Parent(w, e); ok {
			continue
		}
		if err := ecs.Awake(w, e); err != nil {
			return fail(fmt.Errorf("build scene: %q: awake %q: %w", scenePath, ecs.Name(w, e), err))
		}
	}
	return created, nil
}

func sceneComponents(spec prefabs.SceneEntitySpec) (map[string]any, error) {
	out := map[string]any{}
	if spec.Prefab != "" {
		prefab, err := prefabs.LoadEntityBuildSpec(spec.Prefab)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", spec.Prefab, err)
		}
		maps.Copy(out, prefab.Components)
	}
	maps.Copy(out, spec.Components)
	if len(out) == 0 {
		return nil, fmt.Errorf("%q does not define components", spec.Name)
	}
	return out, nil
}
