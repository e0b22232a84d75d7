// Package main is the entry point for the gltut scene viewer.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/app"
	"github.com/Faultbox/gltut/internal/config"
	"github.com/Faultbox/gltut/internal/engine/window"
	"github.com/Faultbox/gltut/internal/logger"
	"github.com/Faultbox/gltut/internal/scenes"
)

func main() {
	config.ParseFlags()

	if config.ListScenes() {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, name := range scenes.Names() {
			fmt.Fprintf(tw, "%s\t%s\n", name, scenes.Describe(name))
		}
		tw.Flush()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== gltut ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	scene, err := scenes.Build(cfg.Scene.Name, scenes.Overrides{
		FOV:   cfg.Scene.FOV,
		ZNear: cfg.Scene.ZNear,
		ZFar:  cfg.Scene.ZFar,
	})
	if err != nil {
		logger.Error("failed to build scene", zap.Error(err))
		os.Exit(1)
	}

	title := cfg.Window.Title
	if title == "" {
		title = "gltut"
	}
	a, err := app.New(app.Config{
		Window: window.Config{
			Title:      title + " - " + scene.Name,
			Width:      cfg.Window.Width,
			Height:     cfg.Window.Height,
			Fullscreen: cfg.Window.Fullscreen,
			VSync:      cfg.Window.VSync,
			GLMajor:    cfg.Window.GLMajor,
			GLMinor:    cfg.Window.GLMinor,
		},
		Scene: scene,
	})
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		a.Close()
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	a.Close()

	logger.Info("viewer closed normally")
}
