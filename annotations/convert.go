package annotations

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/nvr-ai/depthcam/util"
)

// Extension is the annotation file extension.
const Extension = ".xml"

// ErrNoAnnotations is returned when a directory holds no annotation files.
var ErrNoAnnotations = errors.New("annotations: no .xml files found")

// Options tunes Convert.
type Options struct {
	// KeepGoing skips malformed files instead of aborting. Their errors are combined and
	// returned next to the rows of the good files.
	KeepGoing bool
}

// Convert parses every annotation file directly under dir, in lexical order.
//
// Arguments:
// - dir: The annotations directory.
// - opts: Failure handling options.
//
// Returns:
// - The records of all files, in file order then document order.
// - error if the directory cannot be listed, holds no annotation files, or a file fails.
// With KeepGoing the records of the readable files are returned along with the error.
//
// @example
// records, err := annotations.Convert("./data/annotations", annotations.Options{})
func Convert(dir string, opts Options) ([]Record, error) {
	paths, err := util.ListFiles(dir, Extension)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Wrapf(ErrNoAnnotations, "in %s", dir)
	}

	var (
		records []Record
		errs    error
	)
	for _, path := range paths {
		rows, err := ParseFile(path)
		if err != nil {
			if !opts.KeepGoing {
				return nil, err
			}
			errs = multierr.Append(errs, err)
			continue
		}
		records = append(records, rows...)
	}

	return records, errs
}
