// Package debug provides frame capture utilities.
package debug

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/Faultbox/midgard-sky/internal/sky"
)

// ScreenshotCapture writes captured frames to timestamped files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	format    sky.Format
	now       func() time.Time
}

// NewScreenshotCapture creates a capture handler writing <prefix>_<time><ext>
// files into outputDir.
func NewScreenshotCapture(outputDir, prefix string, format sky.Format) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// GenerateFilename returns the path the next capture would be written to.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05")
	return filepath.Join(sc.outputDir, fmt.Sprintf("%s_%s%s", sc.prefix, timestamp, sc.format.Ext()))
}

// Capture writes img and returns its path.
func (sc *ScreenshotCapture) Capture(img image.Image) (string, error) {
	path := sc.GenerateFilename()
	if err := sky.WriteImage(path, img, sc.format); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}
