// Package render draws composited overlay commands onto video frames using
// GoCV (OpenCV).
package render

import (
	"image"
	"image/color"
	"log"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/renderix/memebooth/internal/detector"
	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/meme"
)

// Layout constants.
const (
	// positionMargin is the pixel inset for edge-anchored overlays.
	positionMargin = 20
	// statusBarHeight is the height of the translucent header bar.
	statusBarHeight = 60
)

// Renderer consumes draw commands and blits overlays onto frames. Loaded
// overlay images are cached per reference; a reference that fails to load is
// reported once and skipped thereafter.
type Renderer struct {
	assetsDir     string
	showStatusBar bool
	showLandmarks bool
	cache         map[string]gocv.Mat
	missing       map[string]bool
}

// NewRenderer creates a Renderer resolving relative image references against
// assetsDir. The status bar and landmark dots are enabled by default.
func NewRenderer(assetsDir string) *Renderer {
	return &Renderer{
		assetsDir:     assetsDir,
		showStatusBar: true,
		showLandmarks: true,
		cache:         make(map[string]gocv.Mat),
		missing:       make(map[string]bool),
	}
}

// SetShowStatusBar toggles the header bar.
func (r *Renderer) SetShowStatusBar(show bool) { r.showStatusBar = show }

// SetShowLandmarks toggles hand landmark dots.
func (r *Renderer) SetShowLandmarks(show bool) { r.showLandmarks = show }

// Render draws the frame's overlays, landmark dots, and status bar in place.
// A command whose image cannot be loaded is skipped; rendering never fails
// the frame.
func (r *Renderer) Render(frame *gocv.Mat, commands []engine.DrawCommand, hands []detector.HandLandmarks) {
	if frame == nil || frame.Empty() {
		return
	}

	if r.showLandmarks {
		r.drawLandmarks(frame, hands)
	}

	for _, cmd := range commands {
		r.drawOverlay(frame, cmd)
	}

	if r.showStatusBar {
		r.drawStatusBar(frame, commands)
	}
}

// Close releases all cached overlay images.
func (r *Renderer) Close() {
	for ref, mat := range r.cache {
		mat.Close()
		delete(r.cache, ref)
	}
}

// drawOverlay resizes the command's image to the requested scale, places it,
// and alpha-blends it with the command's effective opacity.
func (r *Renderer) drawOverlay(frame *gocv.Mat, cmd engine.DrawCommand) {
	overlay, ok := r.loadOverlay(cmd.ImageRef)
	if !ok {
		return
	}

	frameW := frame.Cols()
	frameH := frame.Rows()

	// Width is scale times frame width; height preserves the aspect ratio.
	newW := int(float64(frameW) * cmd.Scale)
	if newW < 1 {
		newW = 1
	}
	newH := overlay.Rows() * newW / overlay.Cols()
	if newH < 1 {
		newH = 1
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(overlay, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)

	x, y := overlayOrigin(frameW, frameH, newW, newH, cmd.Position)

	// Clip the overlay to the frame bounds.
	visible := image.Rect(x, y, x+newW, y+newH).Intersect(image.Rect(0, 0, frameW, frameH))
	if visible.Empty() {
		return
	}
	cropped := resized.Region(image.Rect(visible.Min.X-x, visible.Min.Y-y, visible.Max.X-x, visible.Max.Y-y))
	defer cropped.Close()

	blendTransparent(frame, &cropped, visible.Min.X, visible.Min.Y, cmd.Opacity)
}

// loadOverlay fetches an overlay image from cache or disk, normalized to
// BGRA so every image carries an alpha channel.
func (r *Renderer) loadOverlay(ref string) (gocv.Mat, bool) {
	if mat, ok := r.cache[ref]; ok {
		return mat, true
	}
	if r.missing[ref] {
		return gocv.Mat{}, false
	}

	path := ref
	if r.assetsDir != "" && !filepath.IsAbs(ref) {
		path = filepath.Join(r.assetsDir, ref)
	}

	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		r.missing[ref] = true
		log.Printf("render: image %q not found or unreadable, skipping", ref)
		return gocv.Mat{}, false
	}

	if img.Channels() == 3 {
		bgra := gocv.NewMat()
		gocv.CvtColor(img, &bgra, gocv.ColorBGRToBGRA)
		img.Close()
		img = bgra
	}

	r.cache[ref] = img
	return img, true
}

// overlayOrigin computes the top-left corner for an overlay of size (w, h)
// on a frame of size (frameW, frameH) at the given position. Unknown
// positions fall back to center.
func overlayOrigin(frameW, frameH, w, h int, pos meme.Position) (int, int) {
	switch pos {
	case meme.PositionTopLeft:
		return positionMargin, positionMargin
	case meme.PositionTopRight:
		return frameW - w - positionMargin, positionMargin
	case meme.PositionBottomLeft:
		return positionMargin, frameH - h - positionMargin
	case meme.PositionBottomRight:
		return frameW - w - positionMargin, frameH - h - positionMargin
	case meme.PositionTopCenter:
		return (frameW - w) / 2, positionMargin
	case meme.PositionBottomCenter:
		return (frameW - w) / 2, frameH - h - positionMargin
	default:
		return (frameW - w) / 2, (frameH - h) / 2
	}
}

// blendTransparent alpha-blends a BGRA overlay onto the BGR frame at (x, y).
// The overlay's own alpha channel is scaled by opacity.
func blendTransparent(frame *gocv.Mat, overlay *gocv.Mat, x, y int, opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	rows := overlay.Rows()
	cols := overlay.Cols()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			alpha := float64(overlay.GetUCharAt(row, col*4+3)) / 255.0 * opacity
			if alpha <= 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				fg := float64(overlay.GetUCharAt(row, col*4+c))
				bg := float64(frame.GetUCharAt(y+row, (x+col)*3+c))
				frame.SetUCharAt(y+row, (x+col)*3+c, uint8(alpha*fg+(1-alpha)*bg))
			}
		}
	}
}

// drawLandmarks dots each detected hand landmark for debugging.
func (r *Renderer) drawLandmarks(frame *gocv.Mat, hands []detector.HandLandmarks) {
	w := frame.Cols()
	h := frame.Rows()
	dot := color.RGBA{R: 250, G: 44, B: 250, A: 0}

	for i := range hands {
		for _, p := range hands[i].Points {
			gocv.Circle(frame, image.Pt(int(p.X*float64(w)), int(p.Y*float64(h))), 3, dot, -1)
		}
	}
}

// drawStatusBar renders the translucent header with the active overlay names.
func (r *Renderer) drawStatusBar(frame *gocv.Mat, commands []engine.DrawCommand) {
	w := frame.Cols()
	barRect := image.Rect(0, 0, w, statusBarHeight)

	// Darken the bar region by blending with black.
	region := frame.Region(barRect)
	dark := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), region.Rows(), region.Cols(), gocv.MatTypeCV8UC3)
	gocv.AddWeighted(region, 0.5, dark, 0.5, 0, &region)
	dark.Close()
	region.Close()

	title := color.RGBA{R: 0, G: 255, B: 255, A: 0}
	gocv.PutText(frame, "MEMEBOOTH", image.Pt(10, 25), gocv.FontHersheySimplex, 0.7, title, 2)

	if len(commands) == 0 {
		idle := color.RGBA{R: 100, G: 100, B: 100, A: 0}
		gocv.PutText(frame, "no gesture detected", image.Pt(10, 50), gocv.FontHersheySimplex, 0.6, idle, 2)
		return
	}

	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name)
	}
	active := color.RGBA{R: 0, G: 255, B: 0, A: 0}
	gocv.PutText(frame, "active: "+strings.Join(names, ", "), image.Pt(10, 50), gocv.FontHersheySimplex, 0.6, active, 2)
}
