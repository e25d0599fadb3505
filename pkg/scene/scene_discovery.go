package scene

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/df07/go-stereo-raytracer/pkg/geometry"
)

// ScriptExtension is the file extension of scene scripts
const ScriptExtension = ".zy"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string // Name passed to -scene
	Name        string // Scene name
	Description string // Optional description
	Group       string // Grouping category
	Type        string // "builtin" or "script"
	FilePath    string // Path to the script (script type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string
	Scenes []SceneInfo
}

// Builder constructs a built-in scene. The seed only matters for scenes with
// randomized content.
type Builder func(seed int64, cameraOverrides ...geometry.CameraConfig) *Scene

type builtin struct {
	info  SceneInfo
	build Builder
}

const builtinGroup = "Built-in Scenes"

var builtins = []builtin{
	{
		info: SceneInfo{ID: "simple", Name: "Simple", Description: "Glass, diffuse and gold spheres on a ground sphere"},
		build: func(_ int64, overrides ...geometry.CameraConfig) *Scene {
			return NewSimpleScene(overrides...)
		},
	},
	{
		info: SceneInfo{ID: "random", Name: "Random", Description: "Grid of small random spheres around three large ones"},
		build: func(seed int64, overrides ...geometry.CameraConfig) *Scene {
			return NewRandomScene(rand.New(rand.NewSource(seed)), overrides...)
		},
	},
	{
		info: SceneInfo{ID: "shared-glass", Name: "Shared Glass", Description: "Glass spheres at staggered depths sharing one material"},
		build: func(_ int64, overrides ...geometry.CameraConfig) *Scene {
			return NewSharedGlassScene(overrides...)
		},
	},
}

// Lookup returns the builder for a built-in scene
func Lookup(name string) (Builder, error) {
	found, ok := lo.Find(builtins, func(b builtin) bool { return b.info.ID == name })
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return found.build, nil
}

// BuiltinNames returns the IDs of all built-in scenes
func BuiltinNames() []string {
	return lo.Map(builtins, func(b builtin, _ int) string { return b.info.ID })
}

// ListScriptScenes scans dir for scene scripts. A missing directory yields an empty list.
func ListScriptScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+ScriptExtension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		sceneInfo, err := ParseScriptMetadata(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metadata for %s: %w", filePath, err)
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// ParseScriptMetadata extracts metadata from the comment header of a scene script:
//
//	// Scene: Bubble Row
//	// Description: Five glass spheres
//	// Group: Glass
func ParseScriptMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Group:    "Script Scenes",
		Type:     "script",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return sceneInfo, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Header ends at the first line that is not a comment
		content, isComment := stripComment(line)
		if !isComment {
			break
		}

		if value, ok := strings.CutPrefix(content, "Scene:"); ok {
			sceneInfo.Name = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(content, "Description:"); ok {
			sceneInfo.Description = strings.TrimSpace(value)
		} else if value, ok := strings.CutPrefix(content, "Group:"); ok {
			sceneInfo.Group = strings.TrimSpace(value)
		}
	}

	return sceneInfo, scanner.Err()
}

// stripComment removes a leading // or ; comment marker
func stripComment(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "//"); ok {
		return strings.TrimSpace(rest), true
	}
	if strings.HasPrefix(line, ";") {
		return strings.TrimSpace(strings.TrimLeft(line, ";")), true
	}
	return "", false
}

// ListAllScenes returns built-in scenes followed by the scripts in dir, grouped by category
func ListAllScenes(dir string) ([]SceneGroup, error) {
	builtInScenes := lo.Map(builtins, func(b builtin, _ int) SceneInfo {
		info := b.info
		info.Group = builtinGroup
		info.Type = "builtin"
		return info
	})

	scriptScenes, err := ListScriptScenes(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list script scenes: %w", err)
	}

	groupMap := lo.GroupBy(append(builtInScenes, scriptScenes...), func(info SceneInfo) string {
		return info.Group
	})

	// Built-in first, then alphabetical
	groupNames := lo.Without(lo.Keys(groupMap), builtinGroup)
	sort.Strings(groupNames)

	groups := []SceneGroup{{Name: builtinGroup, Scenes: groupMap[builtinGroup]}}
	for _, groupName := range groupNames {
		groups = append(groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return groups, nil
}

// titleCase converts a filename-style string to title case
// e.g., "bubble-row" -> "Bubble Row"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
