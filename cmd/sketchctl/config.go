package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sketchstudio/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set Sketch Studio configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("canvas_width: %g\n", cfg.CanvasWidth)
		fmt.Printf("canvas_height: %g\n", cfg.CanvasHeight)
		fmt.Printf("background_color: %s\n", cfg.BackgroundColor)
		fmt.Printf("save_dir: %s\n", cfg.SaveDir)
		fmt.Printf("library_path: %s\n", cfg.LibraryPath)
		fmt.Printf("mcp_enabled: %t\n", cfg.MCPEnabled)
		fmt.Printf("mcp_addr: %s\n", cfg.MCPAddr)
		fmt.Printf("preview_addr: %s\n", cfg.PreviewAddr)
		fmt.Printf("ask_timeout_sec: %d\n", cfg.AskTimeoutSec)
		fmt.Printf("export_timeout_sec: %d\n", cfg.ExportTimeoutSec)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg, cfgFile); err != nil {
			return err
		}
		okf("%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
