// Package labels - Class id to name lookup for detection output.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ErrDuplicateID is returned when two labels in a label file share one class id.
var ErrDuplicateID = errors.New("labels: duplicate class id")

// Map is a read-only class id to label name lookup.
type Map struct {
	names map[int]string
	ids   map[string]int
}

// Load reads a JSON label file of the form {"person": 1, "car": 3} and inverts it. The path
// BuiltinCOCO selects the embedded COCO map.
//
// Arguments:
// - path: Path to the label map JSON file.
//
// Returns:
// - The inverted label map.
// - error if the file is missing, malformed, or two labels share one id.
func Load(path string) (*Map, error) {
	if path == BuiltinCOCO {
		return COCO(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read label map %s", path)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load label map %s", path)
	}

	return m, nil
}

// Parse decodes label map JSON from memory.
func Parse(data []byte) (*Map, error) {
	var byName map[string]int
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, errors.Wrap(err, "failed to decode label map")
	}

	return New(byName)
}

// New builds a Map from a label name to id table.
func New(byName map[string]int) (*Map, error) {
	names := lo.Invert(byName)
	if len(names) != len(byName) {
		// Report the clashing id deterministically.
		seen := make(map[int]string, len(byName))
		keys := lo.Keys(byName)
		sort.Strings(keys)
		for _, name := range keys {
			id := byName[name]
			if prev, ok := seen[id]; ok {
				return nil, errors.Wrapf(ErrDuplicateID, "id %d used by %q and %q", id, prev, name)
			}
			seen[id] = name
		}
	}

	return &Map{
		names: names,
		ids:   lo.Assign(map[string]int{}, byName),
	}, nil
}

// Name returns the label for a class id. Unknown ids render as "unknown_<id>".
func (m *Map) Name(id int) string {
	if name, ok := m.Lookup(id); ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", id)
}

// Lookup returns the label for a class id and whether it is known.
func (m *Map) Lookup(id int) (string, bool) {
	if m == nil {
		return "", false
	}
	name, ok := m.names[id]
	return name, ok
}

// ID returns the class id for a label name.
func (m *Map) ID(name string) (int, bool) {
	if m == nil {
		return 0, false
	}
	id, ok := m.ids[name]
	return id, ok
}

// Len returns the number of labels.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// IDs returns every known class id in ascending order.
func (m *Map) IDs() []int {
	if m == nil {
		return nil
	}
	ids := lo.Keys(m.names)
	sort.Ints(ids)
	return ids
}
