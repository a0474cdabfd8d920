package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/chazu/railyard/pkg/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := pflag.String("config", "", "path to a YAML settings file")
	pflag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading settings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := settings.Logger()

	app, err := NewAppWithSettings(settings, logger)
	if err != nil {
		logger.Error("creating app", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = wails.Run(&options.App{
		Title:  "Railyard",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Error("wails run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
