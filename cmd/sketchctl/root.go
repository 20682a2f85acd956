package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sketchstudio/internal/config"
	"sketchstudio/internal/library"
	"sketchstudio/internal/logging"
)

var (
	cfgFile string
	debug   bool

	cfg *config.Global
)

var rootCmd = &cobra.Command{
	Use:           "sketchctl",
	Short:         "Render sketches and manage the Sketch Studio library",
	Long:          "sketchctl renders Sketch Studio designs to SVG, JSON or Markdown, manages the local sketch library and serves it to browsers and AI assistants.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sketchctl version %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sketchstudio/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() {
	c, err := config.Load(cfgFile)
	if err != nil {
		// commands that do not need config still run
		warnf("failed to load config: %v", err)
		return
	}
	cfg = c
}

// newLogger logs to stderr so stdout stays clean for command output.
func newLogger() *logging.Logger {
	level := logging.LevelWarn
	if cfg != nil && cfg.LogLevel != "" {
		level = logging.ParseLevel(cfg.LogLevel)
	}
	if debug {
		level = logging.LevelDebug
	}
	return logging.New(os.Stderr, level, "")
}

func openLibrary() (*library.Repo, error) {
	if cfg == nil || cfg.LibraryPath == "" {
		return nil, fmt.Errorf("no library configured")
	}
	return library.Open(cfg.LibraryPath)
}

func warnf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

func okf(format string, args ...any) {
	color.New(color.FgGreen).Printf("✓ "+format+"\n", args...)
}
