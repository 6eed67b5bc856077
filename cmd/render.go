package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/achilleasa/voxtrace/renderer"
	"github.com/achilleasa/voxtrace/scene/reader"
	"github.com/achilleasa/voxtrace/tracer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame of the traversal debug visualization.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	// Load scene
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

	camera := cfg.NewCamera(sc)
	logger.Debugf("camera position: %s, look at: %s\n%s", camera.Position, camera.LookAt, camera.Frustrum)

	// Create renderer
	opts := cfg.Options()
	surface := renderer.NewImageSurface(int(opts.FrameW), int(opts.FrameH))
	r, err := renderer.NewDefault(sc, camera, tracer.NewNaiveScheduler(), surface, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	err = r.Render()
	if err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	// Export PNG
	start := time.Now()
	f, err := os.Create(cfg.Render.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	err = png.Encode(f, surface.NRGBA)
	if err != nil {
		return fmt.Errorf("error encoding png file: %s", err.Error())
	}
	logger.Noticef("wrote frame to %s in %d ms", cfg.Render.Out, time.Since(start).Nanoseconds()/1e6)

	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Block height", "% of frame", "Hit pixels", "Overflow pixels", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.HitPixels),
			fmt.Sprintf("%d", stat.OverflowPixels),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", stats.HitPixels), fmt.Sprintf("%d", stats.OverflowPixels), fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())

	if stats.OverflowPixels > 0 {
		logger.Warningf("%d pixels exceeded the traversal limits and are drawn in magenta", stats.OverflowPixels)
	}
}
