package cmd

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/achilleasa/voxtrace/scene/compiler"
	"github.com/achilleasa/voxtrace/scene/reader"
	"github.com/achilleasa/voxtrace/scene/writer"
	"github.com/urfave/cli"
)

// Compile voxel lists to binary format.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing voxel list file argument")
	}
	if ctx.IsSet("out") && ctx.NArg() != 1 {
		return errors.New("the out flag can only be used with a single voxel list")
	}

	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		ext := filepath.Ext(sceneFile)
		if ext != ".txt" && ext != ".voxels" {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}

		logger.Noticef("parsing and compiling voxel list: %s", sceneFile)
		coords, err := reader.ReadVoxelList(sceneFile)
		if err != nil {
			return err
		}

		sc, err := compiler.Compile(coords, ctx.Int("leaf-voxels"))
		if err != nil {
			return err
		}

		// Display compiled scene info
		logger.Noticef("scene information:\n%s", sc.Stats())

		zipFile := strings.TrimSuffix(sceneFile, ext) + ".zip"
		if ctx.IsSet("out") {
			zipFile = ctx.String("out")
		}
		err = writer.WriteScene(sc, zipFile)
		if err != nil {
			return err
		}
	}

	return nil
}

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())

	if err = sc.Validate(); err != nil {
		return err
	}
	logger.Notice("scene BVH is valid")

	return nil
}
