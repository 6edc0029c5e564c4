// skybake renders the atmosphere into cubemap and panorama images offline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/engine/lighting"
	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/internal/sky"
)

var (
	flagHours      = flag.String("hours", "", "Comma separated hours to bake as a day sweep, e.g. 6,9,12,18")
	flagSaveConfig = flag.String("save-config", "", "Write the effective config to this path")
)

func main() {
	config.ParseFlags()

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

	logger.Info("=== Midgard Sky Bake ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if *flagSaveConfig != "" {
		if err := cfg.SaveTo(*flagSaveConfig); err != nil {
			logger.Error("failed to save config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", *flagSaveConfig))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("bake failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	format, err := sky.ParseFormat(cfg.Bake.Format)
	if err != nil {
		return err
	}
	tm := cfg.ToneMap()

	baker := sky.NewBaker(cfg.Bake.Workers)
	baker.Model = cfg.AtmosphereModel()

	snap := sky.Snapshot{
		Params: cfg.Atmosphere,
		Origin: cfg.Atmosphere.ObserverOrigin(cfg.Observer.Height),
		Sun:    lighting.SunDirection(cfg.Sun.Azimuth, cfg.Sun.Elevation),
	}

	if *flagHours != "" {
		hours, err := parseHours(*flagHours)
		if err != nil {
			return err
		}
		return sweep(ctx, cfg, baker, snap, hours, tm, format)
	}

	start := time.Now()
	cm, err := baker.BakeCubemap(ctx, snap, cfg.Sky.CubemapSize)
	if err != nil {
		return err
	}

	paths, err := sky.WriteCubemap(cfg.Bake.OutputDir, cfg.Bake.Prefix, cm, tm, format)
	if err != nil {
		return err
	}
	logger.Info("cubemap written", zap.Strings("files", paths))

	if cfg.Bake.Cross {
		path := filepath.Join(cfg.Bake.OutputDir, cfg.Bake.Prefix+"_cross"+format.Ext())
		if err := sky.WriteImage(path, sky.Cross(cm, tm), format); err != nil {
			return fmt.Errorf("cross: %w", err)
		}
		logger.Info("cross written", zap.String("path", path))
	}

	if cfg.Bake.PanoramaWidth > 0 {
		pano, err := baker.BakePanorama(ctx, snap, cfg.Bake.PanoramaWidth, cfg.Bake.PanoramaHeight)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Bake.OutputDir, cfg.Bake.Prefix+"_panorama"+format.Ext())
		if err := sky.WriteImage(path, tm.ToRGBA64(pano), format); err != nil {
			return fmt.Errorf("panorama: %w", err)
		}
		logger.Info("panorama written", zap.String("path", path))
	}

	logger.Info("bake complete", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// sweep bakes one cross image per hour through a dynamic sky cache, so a
// bake only happens when the sun actually moved.
func sweep(ctx context.Context, cfg *config.Config, baker *sky.Baker, snap sky.Snapshot,
	hours []float64, tm sky.ToneMap, format sky.Format) error {
	start := time.Now()

	cycle := lighting.NewDayCycle(0)
	cache := sky.New(sky.Dynamic, cfg.Sky.CubemapSize, baker)

	for _, h := range hours {
		cycle.SetHour(h)
		snap.Sun = cycle.SunDirection()

		rebaked, err := cache.Update(ctx, snap)
		if err != nil {
			return fmt.Errorf("hour %s: %w", cycle.Label(), err)
		}

		path := filepath.Join(cfg.Bake.OutputDir, fmt.Sprintf("%s_%s%s", cfg.Bake.Prefix, hourTag(cycle.Hour), format.Ext()))
		if err := sky.WriteImage(path, sky.Cross(cache.Cubemap(), tm), format); err != nil {
			return fmt.Errorf("hour %s: %w", cycle.Label(), err)
		}
		logger.Info("hour written",
			zap.String("clock", cycle.Label()),
			zap.Float64("elevation", cycle.Elevation()),
			zap.Bool("rebaked", rebaked),
			zap.String("path", path),
		)
	}

	logger.Info("sweep complete",
		zap.Int("hours", len(hours)),
		zap.Int("bakes", cache.Bakes()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
