package annotations

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Row renders the record in Header order.
func (r Record) Row() []string {
	return []string{
		r.Filename,
		strconv.Itoa(r.Width),
		strconv.Itoa(r.Height),
		r.Class,
		strconv.Itoa(r.XMin),
		strconv.Itoa(r.YMin),
		strconv.Itoa(r.XMax),
		strconv.Itoa(r.YMax),
	}
}

// WriteCSV writes the header and one line per record.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return errors.Wrapf(err, "failed to write row for %s", r.Filename)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

// WriteFile writes records to path, creating its parent directory if needed.
func WriteFile(path string, records []Record) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	return WriteCSV(f, records)
}
