// Package main converts a directory of Pascal VOC annotation files into one CSV file.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nvr-ai/depthcam/annotations"
	"github.com/nvr-ai/depthcam/util"
)

const (
	flagAnnotationsDir = "annotations-dir"
	flagCSVFile        = "csv-file"
	flagKeepGoing      = "keep-going"
	flagDebug          = "debug"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "xml2csv",
		Usage: "flatten per-image XML annotations into a CSV label file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagAnnotationsDir,
				Value: "./data/annotations/",
				Usage: "annotations directory",
			},
			&cli.StringFlag{
				Name:  flagCSVFile,
				Value: "./labels/labels.csv",
				Usage: "label file (csv)",
			},
			&cli.BoolFlag{
				Name:  flagKeepGoing,
				Usage: "skip malformed files and report them at the end",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Action: convert,
	}
}

func convert(c *cli.Context) error {
	logger, err := util.NewLogger("xml2csv", c.Bool(flagDebug))
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	dir, path := c.String(flagAnnotationsDir), c.String(flagCSVFile)

	keepGoing := c.Bool(flagKeepGoing)

	records, convertErr := annotations.Convert(dir, annotations.Options{KeepGoing: keepGoing})
	if convertErr != nil && (!keepGoing || len(records) == 0) {
		return convertErr
	}
	logger.Debugw("Parsed annotations", "dir", dir, "rows", len(records))

	if err := annotations.WriteFile(path, records); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Converted .xml files into", path)

	if convertErr != nil {
		logger.Warnw("Some annotation files were skipped", "error", convertErr)
		return convertErr
	}
	return nil
}
