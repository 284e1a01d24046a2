package canopy

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled screenshot of the presented frame, taken
// right after the current (or next) frame is presented. The PNG is written to
// ScreenshotDir, named after the wall clock time, the frame number and the
// label. Windows that do not implement ScreenCapturer drop the request.
func (l *RenderLoop) Screenshot(label string) {
	l.screenshotQueue = append(l.screenshotQueue, label)
}

// flushScreenshots captures the presented frame for every queued label.
func (l *RenderLoop) flushScreenshots(w Window) {
	if len(l.screenshotQueue) == 0 {
		return
	}
	defer func() { l.screenshotQueue = l.screenshotQueue[:0] }()

	c, ok := w.(ScreenCapturer)
	if !ok {
		Logger().Warn("canopy: window cannot capture screenshots, dropping",
			"count", len(l.screenshotQueue))
		return
	}
	img, err := c.CaptureScreen()
	if err != nil {
		Logger().Warn("canopy: screenshot capture", "err", err)
		return
	}
	if err := os.MkdirAll(l.ScreenshotDir, 0o755); err != nil {
		Logger().Warn("canopy: screenshot directory", "dir", l.ScreenshotDir, "err", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	frame := l.Frames()
	for i, label := range l.screenshotQueue {
		path := filepath.Join(l.ScreenshotDir, screenshotName(stamp, frame, label, i))
		if err := writePNG(path, img); err != nil {
			Logger().Warn("canopy: screenshot", "err", err)
			continue
		}
		Logger().Info("canopy: screenshot written", "path", path)
	}
}

// screenshotName builds a file name unique per frame. seq separates several
// screenshots queued in the same frame.
func screenshotName(stamp string, frame uint64, label string, seq int) string {
	if seq == 0 {
		return fmt.Sprintf("%s_f%d_%s.png", stamp, frame, sanitizeLabel(label))
	}
	return fmt.Sprintf("%s_f%d_%s_%d.png", stamp, frame, sanitizeLabel(label), seq)
}

// captureImage reads src back from the GPU and converts it from
// premultiplied RGBA to straight-alpha NRGBA. Ebitengine only allows this
// once the game is running.
func captureImage(src *ebiten.Image) *image.NRGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	src.ReadPixels(pixels)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
