package main

import (
	"os"

	"github.com/achilleasa/voxtrace/cmd"
	"github.com/achilleasa/voxtrace/log"
	"github.com/achilleasa/voxtrace/scene/compiler"
	"github.com/achilleasa/voxtrace/tracer/traversal"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	// Frame and camera flags shared by the render and debug commands
	frameFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load render and camera settings from a config file; explicitly set flags override them",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "max-iterations",
			Value: traversal.DefaultMaxIterations,
			Usage: "max traversal steps per ray",
		},
		cli.StringFlag{
			Name:  "eye",
			Usage: `camera position as "x y z"; the camera frames the entire scene if omitted`,
		},
		cli.StringFlag{
			Name:  "look-at",
			Usage: `camera look-at point as "x y z"`,
		},
		cli.StringFlag{
			Name:  "up",
			Value: "0 1 0",
			Usage: `camera up vector as "x y z"`,
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: 45,
			Usage: "vertical field of view in degrees",
		},
	}

	app := cli.NewApp()
	app.Name = "voxtrace"
	app.Usage = "visualize stackless BVH traversal over voxel scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile voxel lists into a binary compressed format",
			Description: `
Parse a list of voxel grid coordinates (one "x y z" triplet per line), build a
BVH tree over the voxels and package the tree and the voxels as flat arrays.

The compiled scene is written to a zip archive which can be supplied as an
argument to the render, debug and info commands.`,
			ArgsUsage: "voxels1.txt voxels2.voxels ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "leaf-voxels",
					Value: compiler.DefaultMaxLeafVoxels,
					Usage: "max number of voxels per BVH leaf",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output file; defaults to the input file with a .zip extension",
				},
			},
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display scene statistics and validate its BVH",
			ArgsUsage: "scene_file",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "render",
			Usage: "render a frame of the traversal debug visualization",
			Description: `
Trace one primary ray per pixel and encode the traversal step count and the
hit normal as the pixel color. Pixels whose rays exceed the traversal limits
are drawn in magenta.`,
			ArgsUsage: "scene_file",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "tracers",
					Usage: "number of tracer workers; defaults to the number of cpus",
				},
				cli.IntFlag{
					Name:  "tile-width",
					Value: 8,
					Usage: "dispatch tile width",
				},
				cli.IntFlag{
					Name:  "tile-height",
					Value: 4,
					Usage: "dispatch tile height",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, frameFlags...),
			Action: cmd.RenderFrame,
		},
		{
			Name:        "debug",
			Usage:       "trace a single pixel and display every traversal step",
			ArgsUsage:   "scene_file",
			Description: `Trace the primary ray of a single pixel and display the traversal state after each step.`,
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "x",
					Usage: "pixel x coordinate",
				},
				cli.IntFlag{
					Name:  "y",
					Usage: "pixel y coordinate",
				},
				cli.BoolFlag{
					Name:  "stack",
					Usage: "use the explicit stack traversal",
				},
			}, frameFlags...),
			Action: cmd.Debug,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("voxtrace").Error(err)
		os.Exit(1)
	}
}
