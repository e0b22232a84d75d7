// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display and GL context settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	GLMajor    int    `yaml:"gl_major"`
	GLMinor    int    `yaml:"gl_minor"`
}

// SceneConfig selects the scene and overrides its projection. Zero values
// keep the scene's own defaults.
type SceneConfig struct {
	Name  string  `yaml:"name"`
	FOV   float32 `yaml:"fov"`
	ZNear float32 `yaml:"z_near"`
	ZFar  float32 `yaml:"z_far"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:   "gltut",
			Width:   500,
			Height:  500,
			VSync:   true,
			GLMajor: 3,
			GLMinor: 3,
		},
		Scene: SceneConfig{
			Name: "translation",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	// The shaders are GLSL 330.
	if c.Window.GLMajor < 3 || (c.Window.GLMajor == 3 && c.Window.GLMinor < 3) {
		errs = append(errs, fmt.Errorf("GL %d.%d is below 3.3", c.Window.GLMajor, c.Window.GLMinor))
	}
	if c.Scene.Name == "" {
		errs = append(errs, errors.New("no scene selected"))
	}
	if c.Scene.FOV < 0 || c.Scene.FOV >= 180 {
		errs = append(errs, fmt.Errorf("fov %g must be in [0, 180)", c.Scene.FOV))
	}
	if c.Scene.ZNear < 0 || c.Scene.ZFar < 0 {
		errs = append(errs, errors.New("clip planes must not be negative"))
	}
	if c.Scene.ZNear != 0 && c.Scene.ZFar != 0 && c.Scene.ZNear >= c.Scene.ZFar {
		errs = append(errs, fmt.Errorf("z_near %g must be below z_far %g", c.Scene.ZNear, c.Scene.ZFar))
	}
	return errors.Join(errs...)
}
