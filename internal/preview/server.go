// Package preview serves the sketch library and the SVG renderer over HTTP so
// saved sketches can be viewed in a browser or fetched by other tools.
package preview

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"sketchstudio/internal/export"
	"sketchstudio/internal/library"
	"sketchstudio/internal/logging"
)

// Server is the preview HTTP server.
type Server struct {
	app *fiber.App
	lib *library.Repo
	log *logging.Logger
}

// New builds the server. Library routes are only mounted when lib is non-nil;
// /render and the health check are always available.
func New(lib *library.Repo, log *logging.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{AppName: "Sketch Studio Preview"}),
		lib: lib,
		log: log.WithPrefix("preview"),
	}

	s.app.Use(recover.New())
	s.app.Use(logger.New(logger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Stream: s.log.Writer(logging.LevelDebug),
	}))

	s.app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})
	s.app.Post("/render", s.render)

	if lib != nil {
		s.app.Get("/sketches", s.listSketches)
		s.app.Get("/sketches/:id", s.getSketch)
		s.app.Get("/sketches/:id/svg", s.getSVG)
		s.app.Get("/sketches/:id/markdown", s.getMarkdown)
	}
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Infof("listening on %s", addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) listSketches(c fiber.Ctx) error {
	list, err := s.lib.ListSketches()
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(list)
}

func (s *Server) getSketch(c fiber.Ctx) error {
	sk, err := s.lib.GetSketch(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(sk)
}

// getSVG returns the stored SVG, rendering the design when none was stored.
func (s *Server) getSVG(c fiber.Ctx) error {
	sk, err := s.lib.GetSketch(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	svg := sk.SVG
	if svg == "" {
		d, err := export.FromJSON(sk.DesignJSON)
		if err != nil {
			return s.fail(c, err)
		}
		svg = export.ToSVG(d)
	}
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

func (s *Server) getMarkdown(c fiber.Ctx) error {
	d, err := s.lib.Document(c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	md, err := export.ToMarkdown(d, export.FileName(d.Title)+".svg")
	if err != nil {
		return s.fail(c, err)
	}
	c.Set("Content-Type", "text/markdown; charset=utf-8")
	return c.SendString(md)
}

// render converts a design JSON body to ?format= (svg by default).
func (s *Server) render(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}
	d, err := export.FromJSON(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	format := strings.ToLower(c.Query("format", "svg"))
	out, err := export.Export(format, d)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", contentType(format))
	return c.SendString(out)
}

func (s *Server) fail(c fiber.Ctx, err error) error {
	if errors.Is(err, library.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sketch not found"})
	}
	s.log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	default:
		return "text/markdown; charset=utf-8"
	}
}
