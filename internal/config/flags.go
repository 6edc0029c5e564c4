package config

import (
	"flag"
	"math"
)

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagDynamic   = flag.Bool("dynamic", false, "Re-evaluate the sky whenever the sun moves")
	flagAnimate   = flag.Bool("animate", false, "Move the sun with the day cycle")
	flagSize      = flag.Int("size", 0, "Cubemap face size in texels")
	flagOut       = flag.String("out", "", "Output directory for baked images")
	flagFormat    = flag.String("format", "", "Output image format (png, tiff)")
	flagElevation = flag.Float64("elevation", math.NaN(), "Sun elevation in degrees")
	flagAzimuth   = flag.Float64("azimuth", math.NaN(), "Sun azimuth in degrees")
	flagHeight    = flag.Float64("observer", math.NaN(), "Observer height above the surface in metres")
	flagWidth     = flag.Int("width", 0, "Window width")
	flagWinHeight = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDynamic {
		cfg.Sky.Mode = "dynamic"
	}
	if *flagAnimate {
		cfg.Sun.Animate = true
	}
	if *flagSize > 0 {
		cfg.Sky.CubemapSize = *flagSize
	}
	if *flagOut != "" {
		cfg.Bake.OutputDir = *flagOut
	}
	if *flagFormat != "" {
		cfg.Bake.Format = *flagFormat
	}
	if !math.IsNaN(*flagElevation) {
		cfg.Sun.Elevation = *flagElevation
	}
	if !math.IsNaN(*flagAzimuth) {
		cfg.Sun.Azimuth = *flagAzimuth
	}
	if !math.IsNaN(*flagHeight) {
		cfg.Observer.Height = *flagHeight
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagWinHeight > 0 {
		cfg.Viewer.Height = *flagWinHeight
	}
}
