// Package annotations - Flattens per-image bounding-box XML files into CSV rows.
package annotations

import (
	"encoding/xml"
	"os"

	"github.com/pkg/errors"
)

// Header is the CSV column order.
var Header = []string{"filename", "width", "height", "class", "xmin", "ymin", "xmax", "ymax"}

// Record is one labelled object instance.
type Record struct {
	Filename string
	Width    int
	Height   int
	Class    string
	XMin     int
	YMin     int
	XMax     int
	YMax     int
}

// document mirrors the subset of a Pascal VOC annotation that is converted.
type document struct {
	XMLName  xml.Name `xml:"annotation"`
	Filename string   `xml:"filename"`
	Size     struct {
		Width  int `xml:"width"`
		Height int `xml:"height"`
	} `xml:"size"`
	Objects []struct {
		Name   string `xml:"name"`
		BndBox *struct {
			XMin int `xml:"xmin"`
			YMin int `xml:"ymin"`
			XMax int `xml:"xmax"`
			YMax int `xml:"ymax"`
		} `xml:"bndbox"`
	} `xml:"object"`
}

// ParseFile reads one annotation file and returns a record per object element.
//
// Arguments:
// - path: The annotation XML file.
//
// Returns:
// - The records in document order. A file without objects yields none.
// - error if the file cannot be read, is not well-formed, or lacks a required element.
func ParseFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return records, nil
}

// Parse decodes one annotation document from memory.
func Parse(data []byte) ([]Record, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "malformed annotation")
	}
	if doc.Filename == "" {
		return nil, errors.New("missing filename")
	}

	records := make([]Record, 0, len(doc.Objects))
	for i, obj := range doc.Objects {
		if obj.Name == "" {
			return nil, errors.Errorf("object %d: missing name", i)
		}
		if obj.BndBox == nil {
			return nil, errors.Errorf("object %d (%s): missing bndbox", i, obj.Name)
		}
		records = append(records, Record{
			Filename: doc.Filename,
			Width:    doc.Size.Width,
			Height:   doc.Size.Height,
			Class:    obj.Name,
			XMin:     obj.BndBox.XMin,
			YMin:     obj.BndBox.YMin,
			XMax:     obj.BndBox.XMax,
			YMax:     obj.BndBox.YMax,
		})
	}

	return records, nil
}
