// Package main previews a camera stream and its depth map without running inference.
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/depthcam/annotate"
	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/common"
	"github.com/nvr-ai/depthcam/controller"
	"github.com/nvr-ai/depthcam/sink"
	"github.com/nvr-ai/depthcam/util"
)

// centerBox is the crop whose mean distance is overlaid.
var centerBox = common.Box{XMin: 0.45, YMin: 0.45, XMax: 0.55, YMax: 0.55}

func main() {
	defaults := camera.DefaultConfig()

	app := &cli.App{
		Name:  "depthview",
		Usage: "preview a camera and its depth stream",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-type", Value: string(camera.KindRealSense), Usage: "file, camera or realsense"},
			&cli.StringFlag{Name: "input", Value: "/dev/video4", Usage: "video file, camera index, or color device node"},
			&cli.StringFlag{Name: "depth-input", Value: "/dev/video2", Usage: "depth device node"},
			&cli.IntFlag{Name: "width", Value: defaults.Width},
			&cli.IntFlag{Name: "height", Value: defaults.Height},
			&cli.IntFlag{Name: "fps", Value: defaults.FPS},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: preview,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func preview(c *cli.Context) (err error) {
	logger, err := util.NewLogger("depthview", c.Bool("debug"))
	if err != nil {
		return err
	}

	kind, err := camera.ParseKind(c.String("input-type"))
	if err != nil {
		return err
	}
	source, err := camera.New(camera.Config{
		Kind:       kind,
		Input:      c.String("input"),
		DepthInput: c.String("depth-input"),
		Width:      c.Int("width"),
		Height:     c.Int("height"),
		FPS:        c.Int("fps"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := source.Start(ctx); err != nil {
		return err
	}
	display := sink.NewDisplay(kind == camera.KindRealSense)
	defer func() {
		err = multierr.Combine(err, source.Stop(), display.Close())
	}()

	white := color.RGBA{255, 255, 255, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	logger.Infow("Start reading", "input_type", kind, "input", c.String("input"))
	for ctx.Err() == nil {
		pair, err := source.Poll()
		switch {
		case errors.Is(err, camera.ErrNoFrame):
			continue
		case errors.Is(err, camera.ErrEndOfStream):
			return nil
		case err != nil:
			return err
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
			logger.Debugw("Preview", "fps", fps)
		}

		cm, ok := pair.Depth.MeanCentimeters(centerBox)
		gocv.Rectangle(&pair.Color, centerBox.ToRect(pair.Size()), white, 1)
		gocv.PutText(&pair.Color, fmt.Sprintf("FPS: %.1f | center: %s", fps, annotate.Distance(cm, ok)),
			image.Pt(10, 30), gocv.FontHersheyPlain, 1.2, white, 2)

		showErr := display.Show(pair.Color, pair.Depth)
		_ = pair.Close()
		if showErr != nil {
			return showErr
		}

		if display.Key() == controller.KeyEscape {
			return nil
		}
	}

	return nil
}
