// Package app provides the main application logic for the MemeBooth overlay system.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/renderix/memebooth/internal/audio"
	"github.com/renderix/memebooth/internal/capture"
	"github.com/renderix/memebooth/internal/detector"
	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/feature"
	"github.com/renderix/memebooth/internal/meme"
	"github.com/renderix/memebooth/internal/metrics"
	"github.com/renderix/memebooth/internal/render"
	"github.com/renderix/memebooth/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while someone is in front of the camera.
	ActiveFPS = 30
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store *store.Store
	// ConfigPath optionally points at a meme config file. When set it is the
	// source of truth for entries; otherwise entries come from the store.
	ConfigPath   string
	AssetsDir    string
	SoundsDir    string
	CameraID     int
	MotionThresh float64
	// Mirror flips frames horizontally so the feed reads like a mirror.
	Mirror bool
	Tuning engine.Tuning
}

// App orchestrates the capture pipeline: camera frames in, composited overlay
// frames and sound out.
type App struct {
	config    Config
	camera    capture.Camera
	motion    *capture.MotionDetector
	detector  detector.Detector
	extractor *feature.Extractor
	engine    *engine.Engine
	renderer  *render.Renderer
	audio     *audio.Coordinator

	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}

	jpegMu      sync.RWMutex
	lastJPEG    []byte
	lastEntered string
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		motion:    capture.NewMotionDetector(motionThreshold),
		extractor: feature.NewExtractor(),
		engine:    engine.New(nil, config.Tuning),
		renderer:  render.NewRenderer(config.AssetsDir),
		audio:     audio.NewCoordinator(audio.NewExecPlayer(config.SoundsDir)),
		enabled:   false,
		stopCh:    nil,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables overlay processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether overlay processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// LoadMemes rebuilds the entry set from the configured source and stages it
// for the next frame. It returns the number of entries loaded plus per-entry
// diagnostics.
func (a *App) LoadMemes() (int, []meme.LoadError, error) {
	entries, diags, err := a.loadEntries()
	if err != nil {
		return 0, nil, err
	}

	a.engine.Reload(entries)
	metrics.Reloads.Inc()

	for _, d := range diags {
		log.Printf("meme config: %s", d)
	}
	log.Printf("Loaded %d meme entries", len(entries))
	return len(entries), diags, nil
}

func (a *App) loadEntries() ([]*meme.Entry, []meme.LoadError, error) {
	if a.config.ConfigPath != "" {
		return meme.LoadFile(a.config.ConfigPath)
	}
	if a.config.Store == nil {
		return nil, nil, nil
	}

	rows, err := a.config.Store.Memes().List()
	if err != nil {
		return nil, nil, fmt.Errorf("load memes: %w", err)
	}

	var (
		entries []*meme.Entry
		diags   []meme.LoadError
	)
	for i, row := range rows {
		entry := row.ToEntry()
		if err := entry.Validate(); err != nil {
			diags = append(diags, meme.LoadError{Index: i, Name: row.Name, Reason: err.Error()})
			continue
		}
		if entry.Trigger == nil {
			diags = append(diags, meme.LoadError{Index: i, Name: row.Name, Reason: "no usable trigger: entry will never match"})
		}
		entries = append(entries, entry)
	}
	return entries, diags, nil
}

// Start begins the overlay pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Overlay pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.audio.Close()
	a.renderer.Close()

	log.Println("Overlay pipeline stopped")
}

// Engine returns the presentation engine.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Renderer returns the frame renderer.
func (a *App) Renderer() *render.Renderer {
	return a.renderer
}

// LatestJPEG returns the most recent composited frame as JPEG bytes. The
// second return is false until the pipeline has produced its first frame.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.jpegMu.RLock()
	defer a.jpegMu.RUnlock()
	if a.lastJPEG == nil {
		return nil, false
	}
	return a.lastJPEG, true
}

// LastEntered returns the name of the most recently activated meme entry.
func (a *App) LastEntered() string {
	a.jpegMu.RLock()
	defer a.jpegMu.RUnlock()
	return a.lastEntered
}
