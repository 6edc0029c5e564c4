// Package config handles sky configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/midgard-sky/internal/sky"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// Config holds all settings shared by the bake tool and the viewer.
type Config struct {
	Atmosphere atmosphere.Parameters `yaml:"atmosphere"`
	Model      ModelConfig           `yaml:"model"`
	Observer   ObserverConfig        `yaml:"observer"`
	Sun        SunConfig             `yaml:"sun"`
	Sky        SkyConfig             `yaml:"sky"`
	Bake       BakeConfig            `yaml:"bake"`
	Viewer     ViewerConfig          `yaml:"viewer"`
	Logging    LoggingConfig         `yaml:"logging"`
}

// ModelConfig holds the integrator tuning constants.
type ModelConfig struct {
	PrimarySteps  int     `yaml:"primary_steps"`
	LightSteps    int     `yaml:"light_steps"`
	MieExtinction float64 `yaml:"mie_extinction"`
}

// ObserverConfig places the camera above the planet surface.
type ObserverConfig struct {
	Height float64 `yaml:"height"` // metres above the surface
}

// SunConfig holds the sun position and day cycle settings.
type SunConfig struct {
	Azimuth   float64 `yaml:"azimuth"`   // degrees, 0 = +Z
	Elevation float64 `yaml:"elevation"` // degrees above the horizon
	Animate   bool    `yaml:"animate"`   // drive the sun with the day cycle
	StartHour float64 `yaml:"start_hour"`
	DayLength float64 `yaml:"day_length"` // real seconds per simulated day
}

// SkyConfig holds the sky update policy.
type SkyConfig struct {
	Mode        string `yaml:"mode"` // static or dynamic
	CubemapSize int    `yaml:"cubemap_size"`
}

// BakeConfig holds offline bake output settings.
type BakeConfig struct {
	OutputDir      string  `yaml:"output_dir"`
	Prefix         string  `yaml:"prefix"`
	Format         string  `yaml:"format"` // png or tiff
	Cross          bool    `yaml:"cross"`
	PanoramaWidth  int     `yaml:"panorama_width"` // 0 disables the panorama
	PanoramaHeight int     `yaml:"panorama_height"`
	Workers        int     `yaml:"workers"` // 0 = one per CPU
	Exposure       float64 `yaml:"exposure"`
	Gamma          float64 `yaml:"gamma"`
}

// ViewerConfig holds display settings for the interactive viewer.
type ViewerConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float64 `yaml:"fov"` // vertical, degrees
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with an Earth-like sky at mid morning.
func Default() *Config {
	model := atmosphere.DefaultModel()
	return &Config{
		Atmosphere: atmosphere.Earth(),
		Model: ModelConfig{
			PrimarySteps:  model.PrimarySteps,
			LightSteps:    model.LightSteps,
			MieExtinction: model.MieExtinction,
		},
		Observer: ObserverConfig{
			Height: 1000,
		},
		Sun: SunConfig{
			Azimuth:   120,
			Elevation: 25,
			Animate:   false,
			StartHour: 9,
			DayLength: 120,
		},
		Sky: SkyConfig{
			Mode:        "static",
			CubemapSize: 256,
		},
		Bake: BakeConfig{
			OutputDir: "sky",
			Prefix:    "sky",
			Format:    "png",
			Cross:     true,
			Exposure:  1.0,
			Gamma:     2.2,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
			FOV:    60,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks every setting once, at load time. The atmosphere model
// itself never validates per call.
func (c *Config) Validate() error {
	if err := c.Atmosphere.Validate(); err != nil {
		return fmt.Errorf("atmosphere: %w", err)
	}
	if c.Model.PrimarySteps <= 0 || c.Model.LightSteps <= 0 {
		return fmt.Errorf("model: step counts must be positive (primary %d, light %d)",
			c.Model.PrimarySteps, c.Model.LightSteps)
	}
	if c.Model.MieExtinction < 0 {
		return fmt.Errorf("model: mie extinction must be >= 0, got %g", c.Model.MieExtinction)
	}
	if c.Observer.Height < 0 {
		return fmt.Errorf("observer: height must be >= 0, got %g", c.Observer.Height)
	}
	if _, err := sky.ParseMode(c.Sky.Mode); err != nil {
		return fmt.Errorf("sky: %w", err)
	}
	if c.Sky.CubemapSize <= 0 {
		return fmt.Errorf("sky: cubemap size must be positive, got %d", c.Sky.CubemapSize)
	}
	if _, err := sky.ParseFormat(c.Bake.Format); err != nil {
		return fmt.Errorf("bake: %w", err)
	}
	if (c.Bake.PanoramaWidth > 0) != (c.Bake.PanoramaHeight > 0) {
		return fmt.Errorf("bake: panorama needs both width and height (got %dx%d)",
			c.Bake.PanoramaWidth, c.Bake.PanoramaHeight)
	}
	if c.Bake.Exposure <= 0 {
		return fmt.Errorf("bake: exposure must be positive, got %g", c.Bake.Exposure)
	}
	if !(c.Bake.Gamma > 0) {
		return fmt.Errorf("bake: gamma must be positive, got %g", c.Bake.Gamma)
	}
	return nil
}

// AtmosphereModel returns the integrator configured by Model.
func (c *Config) AtmosphereModel() atmosphere.Model {
	return atmosphere.Model{
		PrimarySteps:  c.Model.PrimarySteps,
		LightSteps:    c.Model.LightSteps,
		MieExtinction: c.Model.MieExtinction,
	}
}

// SkyMode returns the parsed sky mode. Call Validate first.
func (c *Config) SkyMode() sky.Mode {
	m, _ := sky.ParseMode(c.Sky.Mode)
	return m
}

// ToneMap returns the bake tone mapping settings.
func (c *Config) ToneMap() sky.ToneMap {
	return sky.ToneMap{Exposure: c.Bake.Exposure, Gamma: c.Bake.Gamma}
}
