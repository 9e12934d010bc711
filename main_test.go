package main

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nvr-ai/depthcam/camera"
	"github.com/nvr-ai/depthcam/controller"
	"github.com/nvr-ai/depthcam/inference"
	"github.com/nvr-ai/depthcam/inference/providers"
)

func runArgs(t *testing.T, args ...string) (controller.Config, error) {
	t.Helper()

	var got controller.Config
	app := newApp(func(_ *cli.Context, cfg controller.Config) error {
		got = cfg
		return nil
	})
	err := app.Run(append([]string{"depthcam"}, args...))
	return got, err
}

func TestDefaults(t *testing.T) {
	cfg, err := runArgs(t)
	require.NoError(t, err)
	assert.Equal(t, controller.DefaultConfig(), cfg)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := runArgs(t,
		"--model", "ssd.onnx",
		"--engine", "ONNX",
		"--device", "cpu",
		"--input-shape", "300x300",
		"--input-type", "realsense",
		"--input", "/dev/video4",
		"--depth-input", "/dev/video2",
		"--width", "640",
		"--height", "480",
		"--threshold", "0.7",
		"--gui",
		"--show-depth",
		"--sync",
		"--on-error", "fail",
		"--output", "out.mp4",
	)
	require.NoError(t, err)

	assert.Equal(t, "ssd.onnx", cfg.Detector.Model)
	assert.Equal(t, inference.EngineONNX, cfg.Detector.Engine)
	assert.Equal(t, providers.DeviceCPU, cfg.Detector.Device)
	assert.Equal(t, image.Pt(300, 300), cfg.Detector.InputShape)
	assert.Equal(t, camera.KindRealSense, cfg.Source.Kind)
	assert.Equal(t, "/dev/video2", cfg.Source.DepthInput)
	assert.Equal(t, 640, cfg.Source.Width)
	assert.Equal(t, 30, cfg.Source.FPS)
	assert.InDelta(t, 0.7, cfg.Threshold, 1e-6)
	assert.True(t, cfg.GUI)
	assert.True(t, cfg.ShowDepth)
	assert.Equal(t, "sync", cfg.Mode)
	assert.Equal(t, "fail", cfg.OnError)
	assert.Equal(t, "out.mp4", cfg.Output)
}

func TestConfigFileThenFlags(t *testing.T) {
	cfg, err := runArgs(t, "--config", filepath.Join("testdata", "detect.yaml"), "--threshold", "0.9")
	require.NoError(t, err)

	assert.Equal(t, camera.KindCamera, cfg.Source.Kind)
	assert.Equal(t, "1", cfg.Source.Input)
	assert.Equal(t, "out/session.mp4", cfg.Output)
	assert.InDelta(t, 0.9, cfg.Threshold, 1e-6)
	// untouched by file and flags
	assert.Equal(t, 1280, cfg.Source.Width)
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "engine", args: []string{"--engine", "tflite"}},
		{name: "device", args: []string{"--device", "TPU"}},
		{name: "input type", args: []string{"--input-type", "rtsp"}},
		{name: "input shape", args: []string{"--input-shape", "300"}},
		{name: "threshold", args: []string{"--threshold", "1.2"}},
		{name: "depth without gui", args: []string{"--show-depth"}},
		{name: "policy", args: []string{"--on-error", "retry"}},
		{name: "missing config", args: []string{"--config", filepath.Join("testdata", "missing.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runArgs(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestParseShape(t *testing.T) {
	p, err := parseShape("544x320")
	require.NoError(t, err)
	assert.Equal(t, image.Pt(544, 320), p)

	for _, s := range []string{"", "0x300", "300x", "axb", "-1x5"} {
		_, err := parseShape(s)
		assert.Error(t, err, s)
	}
}
