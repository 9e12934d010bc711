package providers

import (
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Device is the accelerator a network runs on.
type Device string

const (
	// DeviceMYRIAD is an Intel Movidius VPU such as the Neural Compute Stick 2.
	DeviceMYRIAD Device = "MYRIAD"
	// DeviceGPU is an Intel integrated GPU.
	DeviceGPU Device = "GPU"
	// DeviceCPU runs on the host CPU.
	DeviceCPU Device = "CPU"
)

// Devices lists the supported device names.
var Devices = []Device{DeviceMYRIAD, DeviceGPU, DeviceCPU}

// ParseDevice validates a device name, case-insensitively.
func ParseDevice(s string) (Device, error) {
	for _, d := range Devices {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", errors.Errorf("unsupported device %q", s)
}

// Precision is the inference precision the device runs best at.
func (d Device) Precision() Precision {
	if d == DeviceCPU {
		return PrecisionFP32
	}
	return PrecisionFP16
}

// OpenCV returns the DNN backend and target for the device.
func (d Device) OpenCV() (gocv.NetBackendType, gocv.NetTargetType) {
	switch d {
	case DeviceMYRIAD:
		return gocv.NetBackendOpenVINO, gocv.NetTargetVPU
	case DeviceGPU:
		return gocv.NetBackendOpenVINO, gocv.NetTargetFP16
	default:
		return gocv.NetBackendOpenVINO, gocv.NetTargetCPU
	}
}
