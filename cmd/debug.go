package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/voxtrace/scene/reader"
	"github.com/achilleasa/voxtrace/tracer/cpu"
	"github.com/achilleasa/voxtrace/tracer/traversal"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Trace the primary ray of a single pixel and display every traversal step.
func Debug(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	// The traversal trusts the BVH links so reject broken scenes early
	if err = sc.Validate(); err != nil {
		return err
	}

	x, y := ctx.Int("x"), ctx.Int("y")
	if x < 0 || y < 0 || x >= cfg.Render.Width || y >= cfg.Render.Height {
		return fmt.Errorf("pixel (%d, %d) is outside the %dx%d frame", x, y, cfg.Render.Width, cfg.Render.Height)
	}

	camera := cfg.NewCamera(sc)
	steps := make([]traversal.Step, 0)
	dispatcher := &cpu.Dispatcher{
		Traverser: &traversal.Traverser{
			Scene:         sc,
			MaxIterations: cfg.Render.MaxIterations,
			Observer: func(step traversal.Step) {
				steps = append(steps, step)
			},
		},
		Eye:      camera.Position,
		Frustrum: camera.Frustrum,
		FrameW:   uint32(cfg.Render.Width),
		FrameH:   uint32(cfg.Render.Height),
	}

	ray := dispatcher.PrimaryRay(uint32(x), uint32(y))
	var res traversal.Result
	if ctx.Bool("stack") {
		res = dispatcher.Traverser.TraceStack(ray)
	} else {
		res = dispatcher.Traverser.Trace(ray)
	}

	logger.Noticef("ray origin: %s, dir: %s", ray.Origin, ray.Dir)
	logger.Noticef("traversal steps\n%s", fmtSteps(steps))
	logger.Noticef("traversal result\n%s", fmtResult(res))
	return nil
}

func fmtSteps(steps []traversal.Step) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Iteration", "Node", "Node hit", "Voxel hit", "Next state", "Depth", "Near/far", "Left/right"})
	for _, step := range steps {
		table.Append([]string{
			fmt.Sprintf("%d", step.Iteration),
			fmt.Sprintf("%d", step.Node),
			fmt.Sprintf("%t", step.NodeHit),
			fmt.Sprintf("%t", step.VoxelHit),
			step.State.String(),
			fmt.Sprintf("%d", step.Depth),
			fmt.Sprintf("%032b", step.NearFar),
			fmt.Sprintf("%032b", step.LeftRight),
		})
	}
	table.Render()
	return buf.String()
}

func fmtResult(res traversal.Result) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Iterations", "Hit", "Overflow", "Voxel", "Distance", "Normal", "Color"})

	voxel, dist, normal := "-", "-", "-"
	if res.Hit && !res.Overflow {
		voxel = fmt.Sprintf("%v", res.Voxel)
		dist = fmt.Sprintf("%3.3f", res.T)
		normal = res.Normal.String()
	}
	color := res.Color()
	table.Append([]string{
		fmt.Sprintf("%d", res.Iterations),
		fmt.Sprintf("%t", res.Hit),
		fmt.Sprintf("%t", res.Overflow),
		voxel,
		dist,
		normal,
		fmt.Sprintf("(%3.3f, %3.3f, %3.3f, %3.3f)", color[0], color[1], color[2], color[3]),
	})
	table.Render()
	return buf.String()
}
