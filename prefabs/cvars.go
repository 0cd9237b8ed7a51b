package prefabs

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/physcore/physics"
	"gopkg.in/yaml.v3"
)

// LoadCVars decodes a cvar file over the defaults, so missing keys keep their default value.
func LoadCVars(filename string) (*physics.CVars, error) {
	data, err := Load(filename)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	cv := physics.DefaultCVars()
	if err := yaml.Unmarshal(data, cv); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return cv, nil
}

// ApplyCVarScript runs a tengo script with every cvar bound to a global named
// after its yaml key, then copies the globals back into cv. cv is left
// untouched when the script fails.
func ApplyCVarScript(cv *physics.CVars, name string) error {
	src, err := LoadScript(name)
	if err != nil {
		return fmt.Errorf("prefabs: load script %s: %w", name, err)
	}
	return RunCVarScript(cv, src)
}

func RunCVarScript(cv *physics.CVars, src []byte) error {
	values, err := cvarValues(cv)
	if err != nil {
		return err
	}

	script := tengo.NewScript(src)
	for key, v := range values {
		if err := script.Add(key, v); err != nil {
			return fmt.Errorf("prefabs: cvar script: bind %s: %w", key, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Run()
	if err != nil {
		return fmt.Errorf("prefabs: cvar script: %w", err)
	}
	for key := range values {
		if compiled.IsDefined(key) {
			values[key] = compiled.Get(key).Value()
		}
	}

	b, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("prefabs: cvar script: %w", err)
	}
	next := *cv
	if err := yaml.Unmarshal(b, &next); err != nil {
		return fmt.Errorf("prefabs: cvar script: %w", err)
	}
	*cv = next
	return nil
}

func cvarValues(cv *physics.CVars) (map[string]any, error) {
	b, err := yaml.Marshal(cv)
	if err != nil {
		return nil, fmt.Errorf("prefabs: encode cvars: %w", err)
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("prefabs: encode cvars: %w", err)
	}
	return values, nil
}
