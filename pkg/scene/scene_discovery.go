package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// ErrUnknownScene is returned by Build for names ListScenes does not know
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by Build
	DisplayName string `json:"displayName"` // Human readable name
	Description string `json:"description"`
	Integrator  string `json:"integrator"` // Default estimator
}

var builtInScenes = []SceneInfo{
	{ID: "cornell", Description: "Cornell box with a mirror and a glass sphere", Integrator: "path_mis"},
	{ID: "direct", Description: "Point light over a diffuse plane", Integrator: "direct_ems"},
	{ID: "fog", Description: "Cornell box filled with exponential ground fog", Integrator: "vol_path"},
	{ID: "smoke", Description: "Voxel grid smoke plume under a directional light", Integrator: "vol_path"},
	{ID: "environment", Description: "Principled spheres lit by an environment map", Integrator: "path_mis"},
	{ID: "caustic", Description: "Glass sphere caustic from a point light", Integrator: "photon_mapper"},
}

// ListScenes returns the built-in scenes sorted by ID
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, len(builtInScenes))
	copy(scenes, builtInScenes)
	for i := range scenes {
		scenes[i].DisplayName = titleCase(scenes[i].ID)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// BuildOptions carries the external resources a scene may need
type BuildOptions struct {
	Resolver *loaders.Resolver     // Locates asset files; nil resolves relative to the working directory
	EnvMap   string                // Environment image for "environment"
	GridPath string                // Voxel grid for "smoke"
	Camera   geometry.CameraConfig // Non-zero fields override the scene camera
	Logger   core.Logger
}

func (o BuildOptions) resolve(name string) string {
	if o.Resolver == nil {
		return name
	}
	return o.Resolver.Resolve(name)
}

// LoadEnvironmentImage reads a lat-long map from an LDR image or a float radiance file
func LoadEnvironmentImage(filename string) (*loaders.ImageData, error) {
	if strings.EqualFold(filepath.Ext(filename), ".radiance") {
		img, err := loaders.LoadFloatImage(filename)
		if err != nil {
			return nil, fmt.Errorf("while loading environment %q: %w", filename, err)
		}
		return img.ToImageData(), nil
	}
	img, err := loaders.LoadImage(filename)
	if err != nil {
		return nil, fmt.Errorf("while loading environment %q: %w", filename, err)
	}
	return img, nil
}

// Build constructs a built-in scene by name
func Build(name string, opts BuildOptions) (*Scene, error) {
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger{}
	}

	switch name {
	case "cornell":
		return NewCornellScene(opts.Camera), nil
	case "direct":
		return NewDirectScene(opts.Camera), nil
	case "fog":
		return NewFogScene(opts.Camera)
	case "smoke":
		var grid *loaders.GridData
		if opts.GridPath != "" {
			path := opts.resolve(opts.GridPath)
			logger.Printf("Loading voxel grid %s\n", path)
			var err error
			if grid, err = loaders.ReadVolumeGrid(path); err != nil {
				return nil, fmt.Errorf("while building smoke scene: %w", err)
			}
		}
		return NewSmokeScene(grid, opts.Camera)
	case "environment":
		var env *loaders.ImageData
		if opts.EnvMap != "" {
			path := opts.resolve(opts.EnvMap)
			logger.Printf("Loading environment map %s\n", path)
			var err error
			if env, err = LoadEnvironmentImage(path); err != nil {
				return nil, err
			}
		}
		return NewEnvironmentScene(env, opts.Camera), nil
	case "caustic":
		return NewCausticScene(opts.Camera), nil
	}
	return nil, fmt.Errorf("scene %q: %w", name, ErrUnknownScene)
}

// AssetInfo describes a resource file found on the resolver path
type AssetInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "image", "radiance" or "grid"
	FilePath string `json:"filePath"`
}

var assetKinds = map[string]string{
	".png":      "image",
	".jpg":      "image",
	".jpeg":     "image",
	".bmp":      "image",
	".tif":      "image",
	".tiff":     "image",
	".radiance": "radiance",
	".grid":     "grid",
}

// DiscoverAssets scans the resolver directories for environment maps and voxel grids
func DiscoverAssets(resolver *loaders.Resolver) ([]AssetInfo, error) {
	var assets []AssetInfo
	for _, dir := range resolver.Paths() {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("while scanning %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			kind, ok := assetKinds[ext]
			if !ok {
				continue
			}
			assets = append(assets, AssetInfo{
				Name:     titleCase(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))),
				Kind:     kind,
				FilePath: filepath.Join(dir, entry.Name()),
			})
		}
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].FilePath < assets[j].FilePath
	})
	return assets, nil
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
