package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/achilleasa/voxtrace/scene"
	"github.com/achilleasa/voxtrace/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func newTestContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.Int("width", 512, "")
	set.Int("height", 512, "")
	set.Int("max-iterations", 50, "")
	set.Int("tracers", 0, "")
	set.String("eye", "", "")
	set.String("look-at", "", "")
	set.String("up", "0 1 0", "")
	set.Float64("fov", 45, "")
	require.NoError(t, set.Parse(args))

	return cli.NewContext(cli.NewApp(), set, nil)
}

func writeConfigFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "render.gcfg")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestContext(t))
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Render.Width)
	assert.Equal(t, 50, cfg.Render.MaxIterations)
	assert.Equal(t, 8, cfg.Render.TileWidth)
	assert.Equal(t, 4, cfg.Render.TileHeight)
	assert.True(t, cfg.Camera.Auto)

	opts := cfg.Options()
	assert.Equal(t, uint32(512), opts.FrameW)
	assert.Equal(t, uint32(8), opts.TileW)
}

func TestLoadConfigFileAndFlagOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[render]
width = 320
height = 200
max-iterations = 80
tile-width = 16
tile-height = 8

[camera]
position = 1 2 3
look-at = 0, 0, 0
fov = 60
`)

	cfg, err := loadConfig(newTestContext(t, "--config", path, "--height", "240"))
	require.NoError(t, err)

	assert.Equal(t, 320, cfg.Render.Width)
	assert.Equal(t, 240, cfg.Render.Height)
	assert.Equal(t, 80, cfg.Render.MaxIterations)
	assert.Equal(t, 16, cfg.Render.TileWidth)
	assert.Equal(t, types.XYZ(1, 2, 3), cfg.Camera.Position)
	assert.Equal(t, types.XYZ(0, 0, 0), cfg.Camera.LookAt)
	assert.Equal(t, 60.0, cfg.Camera.FOV)
	assert.False(t, cfg.Camera.Auto)
}

func TestLoadConfigValidation(t *testing.T) {
	specs := []struct {
		args []string
		cfg  string
	}{
		{args: []string{"--width", "0"}},
		{args: []string{"--max-iterations", "-1"}},
		{args: []string{"--fov", "180"}},
		{args: []string{"--eye", "1 2"}},
		{args: []string{"--eye", "1 1 1", "--look-at", "1 1 1"}},
		{args: []string{"--up", "0 0 0"}},
		{cfg: "[render]\ntile-width = 0\n"},
		{cfg: "[render]\nunknown = 1\n"},
	}

	for index, spec := range specs {
		args := spec.args
		if spec.cfg != "" {
			args = append(args, "--config", writeConfigFile(t, spec.cfg))
		}

		_, err := loadConfig(newTestContext(t, args...))
		assert.Error(t, err, "spec %d", index)
	}
}

func TestAutoCameraFramesScene(t *testing.T) {
	cfg, err := loadConfig(newTestContext(t, "--width", "200", "--height", "100"))
	require.NoError(t, err)

	sc := &scene.Scene{
		Nodes: []scene.Node{
			{Min: types.XYZ(0, 0, 0), Max: types.XYZ(4, 4, 4), Left: scene.NoNode, Right: scene.NoNode, Parent: scene.NoNode, NumVoxels: 1},
		},
		Voxels: []scene.Voxel{{}},
	}

	camera := cfg.NewCamera(sc)
	assert.Equal(t, types.XYZ(2, 2, 2), camera.LookAt)

	// The camera must sit outside the scene bounds
	for axis := 0; axis < 3; axis++ {
		if camera.Position[axis] > 0 && camera.Position[axis] < 4 {
			continue
		}
		return
	}
	t.Fatalf("expected camera at %s to be placed outside the scene bounds", camera.Position)
}
