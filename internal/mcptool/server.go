// Package mcptool exposes the sketch rendezvous and the library to AI
// assistants as MCP tools.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sketchstudio/internal/export"
	"sketchstudio/internal/library"
	"sketchstudio/internal/logging"
	"sketchstudio/internal/protocol"
	"sketchstudio/internal/session"
	"sketchstudio/internal/sketch"
)

// Options selects the collaborators a server exposes. Tools whose
// collaborator is nil are not registered.
type Options struct {
	Sketches *sketch.Coordinator
	Library  *library.Repo
	Session  *session.Session
	// Present shows a new sketch request to the user.
	Present func(title, prompt, context string)
	// Export fetches the live rendering from the editor surface. current_design
	// falls back to rendering Session when it is nil or fails.
	Export func(ctx context.Context) (protocol.ExportResult, error)
	Log     *logging.Logger
}

// Server is an MCP server bound to one editor process.
type Server struct {
	mcp  *server.MCPServer
	opts Options
	log  *logging.Logger

	mu  sync.Mutex
	sse *server.SSEServer
}

// New builds the server and registers its tools.
func New(version string, opts Options) *Server {
	s := &Server{
		mcp:  server.NewMCPServer("sketch-studio", version, server.WithToolCapabilities(true)),
		opts: opts,
		log:  opts.Log.WithPrefix("mcp"),
	}
	s.registerTools()
	return s
}

// ServeStdio serves over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeSSE serves over HTTP server-sent events on addr. It blocks until
// Shutdown is called or the listener fails.
func (s *Server) ServeSSE(addr string) error {
	sse := server.NewSSEServer(s.mcp)
	s.mu.Lock()
	s.sse = sse
	s.mu.Unlock()
	s.log.Infof("listening on %s", addr)
	return sse.Start(addr)
}

// Shutdown stops the SSE listener if one is running.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sse := s.sse
	s.sse = nil
	s.mu.Unlock()
	if sse == nil {
		return nil
	}
	return sse.Shutdown(ctx)
}

func (s *Server) registerTools() {
	if s.opts.Sketches != nil {
		s.mcp.AddTool(mcp.NewTool("request_sketch",
			mcp.WithDescription("Ask the user to draw a UI sketch in Sketch Studio. Blocks until the user confirms or cancels, then returns the SVG and design JSON."),
			mcp.WithString("title", mcp.Description("Title of the sketch"), mcp.Required()),
			mcp.WithString("prompt", mcp.Description("What the user should sketch"), mcp.Required()),
			mcp.WithString("context", mcp.Description("Background the user may need (optional)")),
		), s.handleRequestSketch)
	}

	if s.opts.Session != nil {
		s.mcp.AddTool(mcp.NewTool("current_design",
			mcp.WithDescription("Return the design currently open in the editor: its SVG, design JSON, title and prompt"),
		), s.handleCurrentDesign)
	}

	if s.opts.Library != nil {
		s.mcp.AddTool(mcp.NewTool("list_sketches",
			mcp.WithDescription("List sketches stored in the library with their IDs, titles and element counts"),
		), s.handleListSketches)

		s.mcp.AddTool(mcp.NewTool("get_sketch",
			mcp.WithDescription("Fetch one stored sketch. format selects the payload: json (default, full record), svg or markdown."),
			mcp.WithString("id", mcp.Description("Sketch ID"), mcp.Required()),
			mcp.WithString("format", mcp.Description("json, svg or markdown (optional)")),
		), s.handleGetSketch)
	}

	s.mcp.AddTool(mcp.NewTool("render_sketch",
		mcp.WithDescription("Render design JSON to svg (default), json or markdown"),
		mcp.WithString("json", mcp.Description("Design document JSON"), mcp.Required()),
		mcp.WithString("format", mcp.Description("svg, json or markdown (optional)")),
	), s.handleRenderSketch)
}

// ── Handlers ────────────────────────────────────────────────

func (s *Server) handleRequestSketch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title := stringArg(args, "title")
	prompt := stringArg(args, "prompt")
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	ticket := s.opts.Sketches.Request(title, prompt)
	s.log.Infof("sketch requested: %q", title)
	if s.opts.Present != nil {
		s.opts.Present(title, prompt, stringArg(args, "context"))
	}

	res, err := ticket.Wait(ctx)
	if err != nil {
		s.log.Warnf("sketch %q: %v", title, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Infof("sketch %q settled (success=%v)", title, res.Success)
	return jsonResult(res)
}

func (s *Server) handleCurrentDesign(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.opts.Export != nil {
		res, err := s.opts.Export(ctx)
		if err == nil {
			return jsonResult(res)
		}
		s.log.Warnf("live export failed, rendering the host copy: %v", err)
	}
	d := s.opts.Session.Document()
	js, err := export.ToJSON(d)
	if err != nil {
		return nil, err
	}
	return jsonResult(protocol.ExportResult{SVG: export.ToSVG(d), JSON: js, Title: d.Title, Prompt: d.Prompt})
}

func (s *Server) handleListSketches(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.opts.Library.ListSketches()
	if err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}
	return jsonResult(list)
}

func (s *Server) handleGetSketch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id := stringArg(args, "id")
	sk, err := s.opts.Library.GetSketch(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	switch strings.ToLower(stringArg(args, "format")) {
	case "", "json":
		views, err := s.opts.Library.Views(id)
		if err != nil {
			return nil, err
		}
		return jsonResult(struct {
			*library.Sketch
			Views []string `json:"views,omitempty"`
		}{sk, views})
	case "svg":
		return textResult(sk.SVG), nil
	case "markdown", "md":
		d, err := export.FromJSON(sk.DesignJSON)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		md, err := export.ToMarkdown(d, export.FileName(d.Title)+".svg")
		if err != nil {
			return nil, err
		}
		return textResult(md), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown format %q", stringArg(args, "format"))), nil
	}
}

func (s *Server) handleRenderSketch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	d, err := export.FromJSON(stringArg(args, "json"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := stringArg(args, "format")
	if format == "" {
		format = "svg"
	}
	out, err := export.Export(format, d)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textResult(out), nil
}

// ── Helpers ─────────────────────────────────────────────────

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
