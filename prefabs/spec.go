package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec lists the entities of a scene. Parents and connected bodies
// refer to entity names, so entities may appear in any order.
type SceneSpec struct {
	Name     string            `yaml:"name"`
	Entities []SceneEntitySpec `yaml:"entities"`
}

// SceneEntitySpec builds one entity. Components override the ones of Prefab
// key by key.
type SceneEntitySpec struct {
	Name       string         `yaml:"name"`
	Prefab     string         `yaml:"prefab"`
	Parent     string         `yaml:"parent"`
	Active     *bool          `yaml:"active"`
	Components map[string]any `yaml:"components"`
}

func LoadSceneSpec(filename string) (SceneSpec, error) {
	return LoadSpec[SceneSpec](filename)
}
