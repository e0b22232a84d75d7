// Package app runs the viewer: it owns the window, the GL device, the render
// state of one scene and the scene clock.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/engine/input"
	"github.com/Faultbox/gltut/internal/engine/renderer"
	"github.com/Faultbox/gltut/internal/engine/window"
	"github.com/Faultbox/gltut/internal/logger"
)

// Config holds what the viewer needs to start.
type Config struct {
	Window window.Config
	Scene  renderer.Scene
}

// surface is the part of the window the loop drives.
type surface interface {
	GetSize() (int, int)
	SetTitle(title string)
	SwapBuffers()
	Close()
}

// App is the main viewer instance.
type App struct {
	log     *zap.Logger
	running bool
	title   string
	window  surface
	state   *renderer.RenderState
	input   *input.Input
	clock   *Clock
}

// New opens the window, loads GL and initializes the scene.
func New(cfg Config) (*App, error) {
	a := &App{log: logger.Named("app"), title: cfg.Window.Title}
	a.log.Info("initializing viewer",
		zap.String("scene", cfg.Scene.Name),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	// The window makes the GL context current; GL loads after it.
	win, err := window.New(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	a.window = win

	dev, err := gpu.NewGL()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to load OpenGL: %w", err)
	}

	width, height := a.window.GetSize()
	a.state, err = renderer.Init(dev, cfg.Scene, width, height)
	if err != nil {
		a.window.Close()
		return nil, err
	}

	a.input = input.New()
	a.clock = NewClock(nil)
	return a, nil
}

// Run drives frames until the window closes or a quit key is pressed.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}
		if err := a.handle(a.input.Events()); err != nil {
			return err
		}
		if !a.running {
			break
		}

		if err := a.state.RenderFrame(a.clock.Elapsed()); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Float64("elapsed", a.clock.Elapsed()),
				zap.Bool("paused", a.clock.Paused()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	a.log.Info("render loop stopped", zap.Uint64("frames", a.state.Frames()))
	return nil
}

func (a *App) handle(events []input.Event) error {
	for _, event := range events {
		if event.Type == input.EventWindowResize {
			// Events carry the window size in points; the viewport needs
			// the drawable size in pixels, which differs on HiDPI screens.
			width, height := a.window.GetSize()
			if width <= 0 || height <= 0 {
				continue
			}
			if err := a.state.Resize(width, height); err != nil {
				return fmt.Errorf("resize error: %w", err)
			}
			continue
		}

		switch input.ActionFor(event) {
		case input.ActionQuit:
			a.running = false
		case input.ActionTogglePause:
			a.clock.Toggle()
			a.showPaused()
			a.log.Info("clock toggled", zap.Bool("paused", a.clock.Paused()))
		case input.ActionRestart:
			a.clock.Restart()
			a.log.Info("clock restarted")
		}
	}
	return nil
}

func (a *App) showPaused() {
	if a.clock.Paused() {
		a.window.SetTitle(a.title + " [paused]")
		return
	}
	a.window.SetTitle(a.title)
}

// Close releases the scene and then the window.
func (a *App) Close() {
	a.log.Debug("closing viewer")

	if a.state != nil {
		a.state.Shutdown()
	}
	if a.window != nil {
		a.window.Close()
	}
}
