package sky

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-sky/internal/logger"
)

// Mode decides how often the sky is recomputed.
type Mode int

const (
	// Static bakes once and keeps the result until Invalidate is called.
	Static Mode = iota
	// Dynamic re-bakes whenever the snapshot changes, e.g. as the sun moves.
	Dynamic
)

// ParseMode parses "static" or "dynamic".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return Static, fmt.Errorf("unknown sky mode %q", s)
	}
}

func (m Mode) String() string {
	if m == Dynamic {
		return "dynamic"
	}
	return "static"
}

// Sky caches the baked cubemap for the current snapshot.
type Sky struct {
	mode  Mode
	size  int
	baker *Baker

	mu       sync.Mutex
	snapshot Snapshot
	cubemap  *Cubemap
	stale    bool
	bakes    int
}

// New returns an empty sky. The first Update always bakes.
func New(mode Mode, size int, baker *Baker) *Sky {
	return &Sky{
		mode:  mode,
		size:  size,
		baker: baker,
		stale: true,
	}
}

// Mode returns the update policy.
func (s *Sky) Mode() Mode {
	return s.mode
}

// Update brings the cached cubemap in line with snap. In static mode only the
// first call (or the first after Invalidate) bakes; in dynamic mode any change
// of snapshot does. It reports whether a bake happened.
func (s *Sky) Update(ctx context.Context, snap Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.needsBake(snap) {
		return false, nil
	}

	cm, err := s.baker.BakeCubemap(ctx, snap, s.size)
	if err != nil {
		return false, fmt.Errorf("baking sky: %w", err)
	}

	s.cubemap = cm
	s.snapshot = snap
	s.stale = false
	s.bakes++

	logger.Debug("sky updated",
		zap.Stringer("mode", s.mode),
		zap.Int("bakes", s.bakes),
		zap.Float64s("sun", s.snapshot.Sun[:]),
	)
	return true, nil
}

func (s *Sky) needsBake(snap Snapshot) bool {
	if s.stale || s.cubemap == nil {
		return true
	}
	return s.mode == Dynamic && snap != s.snapshot
}

// Invalidate forces the next Update to bake, whatever the mode.
func (s *Sky) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Cubemap returns the last baked cubemap, or nil before the first Update.
func (s *Sky) Cubemap() *Cubemap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cubemap
}

// Snapshot returns the snapshot the cached cubemap was baked from.
func (s *Sky) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Bakes returns how many times the sky has been baked.
func (s *Sky) Bakes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bakes
}
