package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Dir is where on-disk overrides of the embedded files live.
	Dir       = "prefabs"
	ScriptDir = "scripts"
)

//go:embed *.yaml scripts/*.tengo
var files embed.FS

// Load reads a scene, prefab or cvar file. A copy under Dir on disk wins
// over the embedded one.
func Load(name string) ([]byte, error) {
	return read(cleanPrefabPath(name))
}

// LoadScript reads a tengo script from Dir/ScriptDir, falling back to the embedded copy.
func LoadScript(name string) ([]byte, error) {
	return read(cleanScriptPath(name))
}

func read(clean string) ([]byte, error) {
	if clean == "" {
		return nil, fmt.Errorf("prefabs: empty file name")
	}
	data, err := os.ReadFile(diskPath(clean))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return files.ReadFile(clean)
}

func cleanPrefabPath(p string) string {
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(filepath.ToSlash(p), Dir+"/")
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}
	return ScriptDir + "/" + strings.TrimPrefix(cleanPrefabPath(p), ScriptDir+"/")
}

func diskPath(clean string) string {
	return filepath.Join(Dir, filepath.FromSlash(clean))
}
