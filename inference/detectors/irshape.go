package detectors

import (
	"encoding/xml"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type irNetwork struct {
	Layers []irLayer `xml:"layers>layer"`
}

type irLayer struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Data struct {
		Shape string `xml:"shape,attr"`
	} `xml:"data"`
	Ports []struct {
		Dims []int64 `xml:"dim"`
	} `xml:"output>port"`
}

func (l irLayer) dims() ([]int64, error) {
	if len(l.Ports) > 0 && len(l.Ports[0].Dims) > 0 {
		return l.Ports[0].Dims, nil
	}

	var dims []int64
	for _, s := range strings.Split(l.Data.Shape, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		d, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %s shape %q", l.Name, l.Data.Shape)
		}
		dims = append(dims, d)
	}
	return dims, nil
}

// ReadIRInputShape returns the image input size declared by an OpenVINO IR topology file.
//
// The first Input (IR v7 and older) or Parameter (IR v10+) layer with a 4-D NCHW shape is
// used; auxiliary inputs such as image_info are skipped.
//
// Arguments:
// - path: The IR .xml file.
//
// Returns:
// - The input size (X = width, Y = height).
// - error if the file cannot be parsed or declares no image input.
func ReadIRInputShape(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, errors.Wrap(err, "failed to open IR")
	}
	defer f.Close()

	var net irNetwork
	if err := xml.NewDecoder(f).Decode(&net); err != nil {
		return image.Point{}, errors.Wrapf(err, "failed to parse IR %s", path)
	}

	for _, layer := range net.Layers {
		if layer.Type != "Input" && layer.Type != "Parameter" {
			continue
		}
		dims, err := layer.dims()
		if err != nil {
			return image.Point{}, err
		}
		if len(dims) != 4 {
			continue
		}
		if dims[0] != 1 {
			return image.Point{}, errors.Errorf("input %s has batch size %d, want 1", layer.Name, dims[0])
		}
		return image.Pt(int(dims[3]), int(dims[2])), nil
	}

	return image.Point{}, errors.Errorf("no 4-D image input in %s", path)
}
