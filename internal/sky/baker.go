package sky

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/logger"
	"github.com/Faultbox/midgard-sky/pkg/atmosphere"
)

// Snapshot is the immutable input of one bake: parameters plus the observer
// and sun for that frame. Snapshots are comparable with ==.
type Snapshot struct {
	Params atmosphere.Parameters
	Origin mgl64.Vec3
	Sun    mgl64.Vec3
}

// rowTask asks a worker to fill one image row.
type rowTask struct {
	img *HDRImage
	y   int
	dir func(x, y int) mgl64.Vec3
}

// Baker evaluates the atmosphere for every texel of an image using a pool of
// workers. Each worker owns whole rows so writes never overlap.
type Baker struct {
	Model   atmosphere.Model
	Workers int

	// Progress, when set, is called from worker goroutines after each row
	// with the number of rows finished so far.
	Progress func(done, total int)
}

// NewBaker returns a baker using the default model. workers <= 0 means one
// worker per CPU.
func NewBaker(workers int) *Baker {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Baker{
		Model:   atmosphere.DefaultModel(),
		Workers: workers,
	}
}

// BakeCubemap renders all six faces at size x size texels.
func (b *Baker) BakeCubemap(ctx context.Context, snap Snapshot, size int) (*Cubemap, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cubemap size must be positive, got %d", size)
	}

	start := time.Now()
	cm := NewCubemap(size)

	var tasks []rowTask
	for _, face := range Faces {
		img := cm.Face(face)
		dir := func(x, y int) mgl64.Vec3 { return face.texelDirection(x, y, size) }
		for y := 0; y < size; y++ {
			tasks = append(tasks, rowTask{img: img, y: y, dir: dir})
		}
	}

	if err := b.run(ctx, snap, tasks); err != nil {
		return nil, err
	}

	logger.Debug("cubemap baked",
		zap.Int("size", size),
		zap.Int("workers", b.Workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return cm, nil
}

// BakePanorama renders an equirectangular image.
func (b *Baker) BakePanorama(ctx context.Context, snap Snapshot, width, height int) (*HDRImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("panorama size must be positive, got %dx%d", width, height)
	}

	start := time.Now()
	img := NewHDRImage(width, height)
	dir := func(x, y int) mgl64.Vec3 { return panoramaDirection(x, y, width, height) }

	tasks := make([]rowTask, height)
	for y := range tasks {
		tasks[y] = rowTask{img: img, y: y, dir: dir}
	}

	if err := b.run(ctx, snap, tasks); err != nil {
		return nil, err
	}

	logger.Debug("panorama baked",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Duration("elapsed", time.Since(start)),
	)
	return img, nil
}

// run feeds tasks to the worker pool and waits for it to drain.
func (b *Baker) run(ctx context.Context, snap Snapshot, tasks []rowTask) error {
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	queue := make(chan rowTask, len(tasks))
	var done atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				if ctx.Err() != nil {
					continue
				}
				b.renderRow(snap, task)
				if b.Progress != nil {
					b.Progress(int(done.Add(1)), len(tasks))
				}
			}
		}()
	}

	for _, task := range tasks {
		queue <- task
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("bake cancelled: %w", err)
	}
	return nil
}

func (b *Baker) renderRow(snap Snapshot, task rowTask) {
	q := atmosphere.Query{
		Origin:       snap.Origin,
		SunDirection: snap.Sun,
	}
	for x := 0; x < task.img.Width; x++ {
		q.Direction = task.dir(x, task.y)
		task.img.Set(x, task.y, b.Model.Evaluate(snap.Params, q))
	}
}
