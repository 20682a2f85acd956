// Command sketchctl works with Sketch Studio designs and the sketch library
// from the terminal: rendering, library management, the preview server and a
// standalone MCP tool server.
package main

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	Execute()
}
