package cmd

import (
	"fmt"
	"runtime"

	"github.com/achilleasa/voxtrace/renderer"
	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/tracer/traversal"
	"github.com/achilleasa/voxtrace/types"
	"github.com/urfave/cli"
	"gopkg.in/gcfg.v1"
)

// Render settings that can be loaded from a config file.
type RenderConfig struct {
	Width         int
	Height        int
	MaxIterations int `gcfg:"max-iterations"`
	Tracers       int
	TileWidth     int `gcfg:"tile-width"`
	TileHeight    int `gcfg:"tile-height"`
	Out           string
}

func (rc *RenderConfig) CheckInit() error {
	if rc.Width <= 0 || rc.Height <= 0 {
		return fmt.Errorf("frame dimensions must be positive, but are %dx%d", rc.Width, rc.Height)
	} else if rc.MaxIterations <= 0 {
		return fmt.Errorf("max-iterations must be positive, but is %d", rc.MaxIterations)
	} else if rc.Tracers < 0 {
		return fmt.Errorf("tracers must not be negative, but is %d", rc.Tracers)
	} else if rc.TileWidth <= 0 || rc.TileHeight <= 0 {
		return fmt.Errorf("tile dimensions must be positive, but are %dx%d", rc.TileWidth, rc.TileHeight)
	}

	return nil
}

// Camera settings. When Auto is set the camera is placed so it views the
// entire scene; specifying a position or look-at point clears it.
type CameraConfig struct {
	Position types.Vec3
	LookAt   types.Vec3 `gcfg:"look-at"`
	Up       types.Vec3
	FOV      float64
	Auto     bool
}

func (cc *CameraConfig) CheckInit() error {
	if cc.FOV <= 0 || cc.FOV >= 180 {
		return fmt.Errorf("camera fov must be in range (0, 180), but is %g", cc.FOV)
	}
	if cc.Up.Len() == 0 {
		return fmt.Errorf("camera up vector must not be zero")
	}
	if !cc.Auto && cc.Position == cc.LookAt {
		return fmt.Errorf("camera position and look-at point must differ")
	}

	return nil
}

type Config struct {
	Render RenderConfig
	Camera CameraConfig
}

func defaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Width:         512,
			Height:        512,
			MaxIterations: traversal.DefaultMaxIterations,
			Tracers:       runtime.NumCPU(),
			TileWidth:     8,
			TileHeight:    4,
			Out:           "frame.png",
		},
		Camera: CameraConfig{
			Up:   types.XYZ(0, 1, 0),
			FOV:  45,
			Auto: true,
		},
	}
}

// Assemble the render config. Values are loaded from defaults, then from the
// optional config file and finally from any explicitly set flags.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()

	if ctx.IsSet("config") {
		fileCfg := defaultConfig()
		if err := gcfg.ReadFileInto(fileCfg, ctx.String("config")); err != nil {
			return nil, err
		}

		// A camera position or look-at point in the config file disables
		// automatic camera placement
		if fileCfg.Camera.Position != (types.Vec3{}) || fileCfg.Camera.LookAt != (types.Vec3{}) {
			fileCfg.Camera.Auto = false
		}
		cfg = fileCfg
	}

	if ctx.IsSet("width") {
		cfg.Render.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Render.Height = ctx.Int("height")
	}
	if ctx.IsSet("max-iterations") {
		cfg.Render.MaxIterations = ctx.Int("max-iterations")
	}
	if ctx.IsSet("tracers") {
		cfg.Render.Tracers = ctx.Int("tracers")
	}
	if ctx.IsSet("tile-width") {
		cfg.Render.TileWidth = ctx.Int("tile-width")
	}
	if ctx.IsSet("tile-height") {
		cfg.Render.TileHeight = ctx.Int("tile-height")
	}
	if ctx.IsSet("out") {
		cfg.Render.Out = ctx.String("out")
	}
	if ctx.IsSet("fov") {
		cfg.Camera.FOV = ctx.Float64("fov")
	}

	vecFlags := []struct {
		name   string
		target *types.Vec3
	}{
		{"eye", &cfg.Camera.Position},
		{"look-at", &cfg.Camera.LookAt},
		{"up", &cfg.Camera.Up},
	}
	for _, flag := range vecFlags {
		if !ctx.IsSet(flag.name) {
			continue
		}
		if err := flag.target.UnmarshalText([]byte(ctx.String(flag.name))); err != nil {
			return nil, fmt.Errorf("invalid value for flag %q: %s", flag.name, err)
		}
		if flag.name != "up" {
			cfg.Camera.Auto = false
		}
	}

	if err := cfg.Render.CheckInit(); err != nil {
		return nil, err
	}
	if err := cfg.Camera.CheckInit(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Get the renderer options.
func (cfg *Config) Options() renderer.Options {
	return renderer.Options{
		FrameW:        uint32(cfg.Render.Width),
		FrameH:        uint32(cfg.Render.Height),
		MaxIterations: cfg.Render.MaxIterations,
		TileW:         uint32(cfg.Render.TileWidth),
		TileH:         uint32(cfg.Render.TileHeight),
		NumTracers:    cfg.Render.Tracers,
	}
}

// Create a camera for the given scene and set up its frustrum for the
// configured frame aspect ratio.
func (cfg *Config) NewCamera(sc *scene.Scene) *scene.Camera {
	camera := scene.NewCamera(float32(cfg.Camera.FOV))
	camera.Up = cfg.Camera.Up
	camera.Position = cfg.Camera.Position
	camera.LookAt = cfg.Camera.LookAt

	// Frame the scene bounding box
	if cfg.Camera.Auto && !sc.Empty() {
		root := sc.Nodes[0]
		diag := root.Max.Sub(root.Min).Len()
		camera.LookAt = root.Center()
		camera.Position = root.Center().Add(types.XYZ(0.5, 0.6, 1).Normalize().Mul(diag * 1.25))
	}

	camera.SetupProjection(float32(cfg.Render.Width) / float32(cfg.Render.Height))
	return camera
}
