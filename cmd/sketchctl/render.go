package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sketchstudio/internal/export"
	"sketchstudio/internal/importers"
)

var (
	renderFormat string
	renderOut    string
	renderPair   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a design file (.md, .json or .svg) to svg, json or markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderPair {
			if renderOut == "" {
				return fmt.Errorf("--out is required with --pair")
			}
			d, err := importers.ImportFile(args[0])
			if err != nil {
				return err
			}
			p, err := export.WritePair(renderOut, d, "")
			if err != nil {
				return err
			}
			okf("wrote %s and %s", p.SVGPath, p.MarkdownPath)
			return nil
		}

		out, err := renderFile(args[0], renderFormat)
		if err != nil {
			return err
		}
		if renderOut == "" {
			fmt.Print(out)
			return nil
		}
		if err := os.WriteFile(renderOut, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		okf("wrote %s", renderOut)
		return nil
	},
}

// renderFile imports path and renders it in format.
func renderFile(path, format string) (string, error) {
	d, err := importers.ImportFile(path)
	if err != nil {
		return "", err
	}
	return export.Export(format, d)
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "svg", "output format: "+strings.Join(export.Formats(), ", "))
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (default stdout)")
	renderCmd.Flags().BoolVar(&renderPair, "pair", false, "write the SVG and its Markdown companion next to --out")
	rootCmd.AddCommand(renderCmd)
}
