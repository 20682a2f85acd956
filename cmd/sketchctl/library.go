package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sketchstudio/internal/export"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the sketch library",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sketches, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openLibrary()
		if err != nil {
			return err
		}
		defer repo.Close()

		list, err := repo.ListSketches()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("(no sketches)")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSOURCE\tELEMENTS\tUPDATED")
		for _, s := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Title, s.Source, s.ElementCount, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var showFormat string

var libraryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored sketch as svg, json or markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openLibrary()
		if err != nil {
			return err
		}
		defer repo.Close()

		if showFormat == "svg" {
			sk, err := repo.GetSketch(args[0])
			if err != nil {
				return err
			}
			if sk.SVG != "" {
				fmt.Print(sk.SVG)
				return nil
			}
		}
		d, err := repo.Document(args[0])
		if err != nil {
			return err
		}
		out, err := export.Export(showFormat, d)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import saved sketches (.md companions, .json and .svg files) from a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openLibrary()
		if err != nil {
			return err
		}
		defer repo.Close()

		res, err := repo.ImportFolder(args[0])
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			warnf("%s", w)
		}
		red := color.New(color.FgRed)
		for _, e := range res.Errors {
			red.Printf("✗ %s\n", e)
		}
		okf("imported %d, skipped %d", res.Imported, res.Skipped)
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a sketch from the library (files on disk are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openLibrary()
		if err != nil {
			return err
		}
		defer repo.Close()

		if err := repo.DeleteSketch(args[0]); err != nil {
			return err
		}
		okf("deleted %s", args[0])
		return nil
	},
}

func init() {
	libraryShowCmd.Flags().StringVarP(&showFormat, "format", "f", "svg", "output format: svg, json or markdown")
	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, libraryImportCmd, libraryDeleteCmd)
	rootCmd.AddCommand(libraryCmd)
}
