package main

import (
	"github.com/spf13/cobra"

	"sketchstudio/internal/mcptool"
)

var mcpSSEAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP tool server over the sketch library",
	Long: `Runs an MCP server exposing the sketch library (list_sketches, get_sketch)
and the renderer (render_sketch). Interactive sketch requests need the desktop
editor, which serves its own MCP endpoint.

By default the server speaks over stdin/stdout; use --sse to listen on HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		repo, err := openLibrary()
		if err != nil {
			log.Warnf("library unavailable: %v", err)
			repo = nil
		} else {
			defer repo.Close()
		}

		srv := mcptool.New(Version, mcptool.Options{Library: repo, Log: log})
		if mcpSSEAddr != "" {
			return srv.ServeSSE(mcpSSEAddr)
		}
		return srv.ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpSSEAddr, "sse", "", "serve over SSE on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}
