package annotations

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParseFile(t *testing.T) {
	records, err := ParseFile(filepath.Join("testdata", "voc", "img1.xml"))
	require.NoError(t, err)

	assert.Equal(t, []Record{
		{Filename: "img1.jpg", Width: 100, Height: 200, Class: "cat", XMin: 10, YMin: 10, XMax: 50, YMax: 50},
		{Filename: "img1.jpg", Width: 100, Height: 200, Class: "dog", XMin: 5, YMin: 5, XMax: 90, YMax: 90},
	}, records)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    int
		wantErr string
	}{
		{
			name: "no objects",
			doc:  `<annotation><filename>a.jpg</filename><size><width>1</width><height>1</height></size></annotation>`,
			want: 0,
		},
		{name: "not xml", doc: "filename,width", wantErr: "malformed annotation"},
		{name: "wrong root", doc: `<labels><filename>a.jpg</filename></labels>`, wantErr: "malformed annotation"},
		{name: "missing filename", doc: `<annotation><size><width>1</width></size></annotation>`, wantErr: "missing filename"},
		{
			name:    "non integer coordinate",
			doc:     `<annotation><filename>a.jpg</filename><object><name>cat</name><bndbox><xmin>1.5</xmin></bndbox></object></annotation>`,
			wantErr: "malformed annotation",
		},
		{
			name:    "object without name",
			doc:     `<annotation><filename>a.jpg</filename><object><bndbox><xmin>1</xmin></bndbox></object></annotation>`,
			wantErr: "missing name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestParseElementOrder(t *testing.T) {
	doc := `<annotation><object><bndbox><ymax>4</ymax><xmax>3</xmax><ymin>2</ymin><xmin>1</xmin></bndbox>` +
		`<name>car</name></object><size><height>20</height><width>10</width></size><filename>a.jpg</filename></annotation>`

	records, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Record{Filename: "a.jpg", Width: 10, Height: 20, Class: "car", XMin: 1, YMin: 2, XMax: 3, YMax: 4}, records[0])
}

func TestConvert(t *testing.T) {
	records, err := Convert(filepath.Join("testdata", "voc"), Options{})
	require.NoError(t, err)

	// img1 has two objects, img2 one, img3 none
	require.Len(t, records, 3)
	assert.Equal(t, "img1.jpg", records[0].Filename)
	assert.Equal(t, "dog", records[1].Class)
	assert.Equal(t, Record{Filename: "img2.jpg", Width: 1280, Height: 720, Class: "person", XMin: 412, YMin: 118, XMax: 640, YMax: 701}, records[2])
}

func TestConvertNoAnnotations(t *testing.T) {
	_, err := Convert(filepath.Join("testdata", "empty"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAnnotations))

	_, err = Convert(filepath.Join("testdata", "missing"), Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoAnnotations))
}

func TestConvertAbortsOnFirstFailure(t *testing.T) {
	records, err := Convert(filepath.Join("testdata", "broken"), Options{})
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "b_malformed.xml")
	assert.NotContains(t, err.Error(), "c_no_bndbox.xml")
}

func TestConvertKeepGoing(t *testing.T) {
	records, err := Convert(filepath.Join("testdata", "broken"), Options{KeepGoing: true})
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "b_malformed.xml")
	assert.Contains(t, errs[1].Error(), "missing bndbox")

	require.Len(t, records, 1)
	assert.Equal(t, "car", records[0].Class)
}

func TestWriteCSV(t *testing.T) {
	records, err := ParseFile(filepath.Join("testdata", "voc", "img1.xml"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	assert.Equal(t, strings.Join([]string{
		"filename,width,height,class,xmin,ymin,xmax,ymax",
		"img1.jpg,100,200,cat,10,10,50,50",
		"img1.jpg,100,200,dog,5,5,90,90",
		"",
	}, "\n"), buf.String())
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Record{{Filename: "a,b.jpg", Class: "traffic light"}}))
	assert.Contains(t, buf.String(), `"a,b.jpg",0,0,traffic light,0,0,0,0`)
}

func TestWriteFile(t *testing.T) {
	records, err := Convert(filepath.Join("testdata", "voc"), Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "labels", "labels.csv")
	require.NoError(t, WriteFile(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, len(records)+1)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	assert.Equal(t, "img2.jpg,1280,720,person,412,118,640,701", lines[3])
}
