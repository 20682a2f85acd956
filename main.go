package main

import (
	"embed"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"sketchstudio/internal/app"
	"sketchstudio/internal/config"
	"sketchstudio/internal/logging"
)

var Version string = "0.1.0"

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	level := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(os.Stderr, level, "")

	a := app.NewApp(Version, cfg, logger)
	err = wails.Run(&options.App{
		Title:  "Sketch Studio",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Logger:           logging.Wails(logger),
		LogLevel:         logging.WailsLevel(level),
		OnStartup:        a.Startup,
		OnShutdown:       a.Shutdown,
		Bind: []interface{}{
			a,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
