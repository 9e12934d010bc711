package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ListFiles returns the regular files directly under dir whose extension matches one of exts.
//
// The listing is not recursive. Extensions are compared case-insensitively and must include
// the leading dot.
//
// Arguments:
// - dir: Directory to list.
// - exts: Accepted file extensions, e.g. ".xml".
//
// Returns:
// - []string: Matching paths joined with dir, sorted lexically.
// - error: Error if the directory cannot be read.
//
// @example
// paths, err := util.ListFiles("./data/annotations", ".xml")
func ListFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}

	sort.Strings(paths)

	return paths, nil
}
