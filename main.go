// Package main is the real-time depth camera object detection demo.
package main

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/controller"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/providers"
	"github.com/nvr-ai/depthcam/util"
)

const (
	// Flags.
	flagConfig       = "config"
	flagModel        = "model"
	flagWeights      = "weights"
	flagEngine       = "engine"
	flagDevice       = "device"
	flagInputShape   = "input-shape"
	flagInputType    = "input-type"
	flagInput        = "input"
	flagDepthInput   = "depth-input"
	flagWidth        = "width"
	flagHeight       = "height"
	flagFPS          = "fps"
	flagLabels       = "labels"
	flagThreshold    = "threshold"
	flagOutput       = "output"
	flagGUI          = "gui"
	flagShowDepth    = "show-depth"
	flagSync         = "sync"
	flagOnError      = "on-error"
	flagChannelOrder = "channel-order"
	flagDebug        = "debug"
)

func main() {
	app := newApp(detect)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the CLI. run receives the merged configuration.
func newApp(run func(*cli.Context, controller.Config) error) *cli.App {
	defaults := controller.DefaultConfig()

	return &cli.App{
		Name:  "depthcam",
		Usage: "detect objects in a depth camera stream and annotate their distance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`; flags override its values",
			},
			&cli.StringFlag{
				Name:    flagModel,
				Aliases: []string{"m"},
				Value:   defaults.Detector.Model,
				Usage:   "network topology (.xml IR or .onnx)",
			},
			&cli.StringFlag{
				Name:    flagWeights,
				Aliases: []string{"w"},
				Value:   defaults.Detector.Weights,
				Usage:   "IR weights (.bin)",
			},
			&cli.StringFlag{
				Name:  flagEngine,
				Value: string(defaults.Detector.Engine),
				Usage: fmt.Sprintf("inference runtime, one of %v", inference.Engines),
			},
			&cli.StringFlag{
				Name:    flagDevice,
				Aliases: []string{"d"},
				Value:   string(defaults.Detector.Device),
				Usage:   fmt.Sprintf("target device, one of %v", providers.Devices),
			},
			&cli.StringFlag{
				Name:  flagInputShape,
				Usage: "network input size as WxH; read from the model when empty",
			},
			&cli.StringFlag{
				Name:    flagInputType,
				Aliases: []string{"t"},
				Value:   string(defaults.Source.Kind),
				Usage:   fmt.Sprintf("input type, one of %v", camera.Kinds),
			},
			&cli.StringFlag{
				Name:    flagInput,
				Aliases: []string{"i"},
				Value:   defaults.Source.Input,
				Usage:   "video file, camera index, or color device node",
			},
			&cli.StringFlag{
				Name:  flagDepthInput,
				Usage: "depth device node for realsense input",
			},
			&cli.IntFlag{
				Name:  flagWidth,
				Value: defaults.Source.Width,
				Usage: "capture width",
			},
			&cli.IntFlag{
				Name:  flagHeight,
				Value: defaults.Source.Height,
				Usage: "capture height",
			},
			&cli.IntFlag{
				Name:  flagFPS,
				Value: defaults.Source.FPS,
				Usage: "capture frame rate",
			},
			&cli.StringFlag{
				Name:    flagLabels,
				Aliases: []string{"l"},
				Value:   defaults.Labels,
				Usage:   "label map JSON",
			},
			&cli.Float64Flag{
				Name:  flagThreshold,
				Value: float64(defaults.Threshold),
				Usage: "minimum confidence of drawn detections",
			},
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "record the annotated stream to this video file",
			},
			&cli.BoolFlag{
				Name:  flagGUI,
				Usage: "show the results window",
			},
			&cli.BoolFlag{
				Name:  flagShowDepth,
				Usage: "also show the colorized depth window",
			},
			&cli.BoolFlag{
				Name:  flagSync,
				Usage: "start in sync mode",
			},
			&cli.StringFlag{
				Name:  flagOnError,
				Value: defaults.OnError,
				Usage: "inference failure policy, skip or fail",
			},
			&cli.StringFlag{
				Name:  flagChannelOrder,
				Value: defaults.ChannelOrder,
				Usage: "network input channel order, bgr or rgb",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			return run(c, cfg)
		},
	}
}

// loadConfig starts from the config file, or the defaults, and applies explicitly set flags.
func loadConfig(c *cli.Context) (controller.Config, error) {
	cfg := controller.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = controller.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet(flagModel) {
		cfg.Detector.Model = c.String(flagModel)
	}
	if c.IsSet(flagWeights) {
		cfg.Detector.Weights = c.String(flagWeights)
	}
	if c.IsSet(flagEngine) {
		engine, err := inference.ParseEngineType(c.String(flagEngine))
		if err != nil {
			return cfg, err
		}
		cfg.Detector.Engine = engine
	}
	if c.IsSet(flagDevice) {
		device, err := providers.ParseDevice(c.String(flagDevice))
		if err != nil {
			return cfg, err
		}
		cfg.Detector.Device = device
	}
	if c.IsSet(flagInputShape) {
		shape, err := parseShape(c.String(flagInputShape))
		if err != nil {
			return cfg, err
		}
		cfg.Detector.InputShape = shape
	}
	if c.IsSet(flagInputType) {
		kind, err := camera.ParseKind(c.String(flagInputType))
		if err != nil {
			return cfg, err
		}
		cfg.Source.Kind = kind
	}
	if c.IsSet(flagInput) {
		cfg.Source.Input = c.String(flagInput)
	}
	if c.IsSet(flagDepthInput) {
		cfg.Source.DepthInput = c.String(flagDepthInput)
	}
	if c.IsSet(flagWidth) {
		cfg.Source.Width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		cfg.Source.Height = c.Int(flagHeight)
	}
	if c.IsSet(flagFPS) {
		cfg.Source.FPS = c.Int(flagFPS)
	}
	if c.IsSet(flagLabels) {
		cfg.Labels = c.String(flagLabels)
	}
	if c.IsSet(flagThreshold) {
		cfg.Threshold = float32(c.Float64(flagThreshold))
	}
	if c.IsSet(flagOutput) {
		cfg.Output = c.String(flagOutput)
	}
	if c.IsSet(flagGUI) {
		cfg.GUI = c.Bool(flagGUI)
	}
	if c.IsSet(flagShowDepth) {
		cfg.ShowDepth = c.Bool(flagShowDepth)
	}
	if c.IsSet(flagSync) && c.Bool(flagSync) {
		cfg.Mode = inference.ModeSync.String()
	}
	if c.IsSet(flagOnError) {
		cfg.OnError = c.String(flagOnError)
	}
	if c.IsSet(flagChannelOrder) {
		cfg.ChannelOrder = c.String(flagChannelOrder)
	}
	if c.IsSet(flagDebug) {
		cfg.Debug = c.Bool(flagDebug)
	}

	return cfg, cfg.Validate()
}

// parseShape parses "WxH".
func parseShape(s string) (image.Point, error) {
	var p image.Point
	if _, err := fmt.Sscanf(s, "%dx%d", &p.X, &p.Y); err != nil || p.X <= 0 || p.Y <= 0 {
		return image.Point{}, errors.Errorf("invalid input shape %q, expected WxH", s)
	}
	return p, nil
}

func detect(c *cli.Context, cfg controller.Config) (err error) {
	logger, err := util.NewLogger("detect", cfg.Debug)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := controller.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, session.Close())
		if cfg.Detector.Engine == inference.EngineONNX {
			err = multierr.Append(err, providers.ShutdownRuntime())
		}
	}()

	return session.Run(ctx)
}
