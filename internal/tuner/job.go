package tuner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/config"
	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/internal/sky"
)

// bakeJob runs one offline bake at a time in the background and reports
// progress to the UI thread.
type bakeJob struct {
	running atomic.Bool
	done    atomic.Int64
	total   atomic.Int64

	mu      sync.Mutex
	status  string
	updated time.Time
	err     error
	finish  chan struct{}
}

// start launches a bake of snap with the bake settings in cfg. It returns
// false when a bake is already running.
func (j *bakeJob) start(ctx context.Context, cfg config.Config, snap sky.Snapshot) bool {
	if !j.running.CompareAndSwap(false, true) {
		return false
	}
	j.done.Store(0)
	j.total.Store(0)

	j.mu.Lock()
	j.status = "baking..."
	j.updated = time.Now()
	j.err = nil
	j.finish = make(chan struct{})
	finish := j.finish
	j.mu.Unlock()

	go func() {
		defer close(finish)
		defer j.running.Store(false)

		status, err := j.bake(ctx, cfg, snap)
		if err != nil {
			status = "bake failed: " + err.Error()
			logger.Error("tuner bake failed", zap.Error(err))
		}

		j.mu.Lock()
		j.status = status
		j.updated = time.Now()
		j.err = err
		j.mu.Unlock()
	}()
	return true
}

func (j *bakeJob) bake(ctx context.Context, cfg config.Config, snap sky.Snapshot) (string, error) {
	format, err := sky.ParseFormat(cfg.Bake.Format)
	if err != nil {
		return "", err
	}
	tm := cfg.ToneMap()

	baker := sky.NewBaker(cfg.Bake.Workers)
	baker.Model = cfg.AtmosphereModel()
	baker.Progress = func(done, total int) {
		j.total.Store(int64(total))
		j.done.Store(int64(done))
	}

	start := time.Now()
	cm, err := baker.BakeCubemap(ctx, snap, cfg.Sky.CubemapSize)
	if err != nil {
		return "", err
	}
	// Workers report out of order; the bake is complete now.
	j.done.Store(j.total.Load())

	paths, err := sky.WriteCubemap(cfg.Bake.OutputDir, cfg.Bake.Prefix, cm, tm, format)
	if err != nil {
		return "", err
	}
	if cfg.Bake.Cross {
		path := filepath.Join(cfg.Bake.OutputDir, cfg.Bake.Prefix+"_cross"+format.Ext())
		if err := sky.WriteImage(path, sky.Cross(cm, tm), format); err != nil {
			return "", fmt.Errorf("cross: %w", err)
		}
		paths = append(paths, path)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	logger.Info("tuner bake complete", zap.Strings("files", paths), zap.Duration("elapsed", elapsed))
	return fmt.Sprintf("wrote %d files to %s in %s", len(paths), cfg.Bake.OutputDir, elapsed), nil
}

// progress returns the finished fraction of the current or last bake.
func (j *bakeJob) progress() float32 {
	total := j.total.Load()
	if total == 0 {
		return 0
	}
	return float32(j.done.Load()) / float32(total)
}

// result returns the status line and error of the last bake.
func (j *bakeJob) result() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.err
}

// latest returns the status line and when it was last changed.
func (j *bakeJob) latest() (string, time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, j.updated
}

// wait blocks until the current bake finishes.
func (j *bakeJob) wait() {
	j.mu.Lock()
	finish := j.finish
	j.mu.Unlock()
	if finish != nil {
		<-finish
	}
}
