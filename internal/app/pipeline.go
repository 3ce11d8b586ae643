package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/renderix/memebooth/internal/detector"
	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/feature"
	"github.com/renderix/memebooth/internal/metrics"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (IdleFPS=5)
// 2. On motion detected, switch to active mode (ActiveFPS=30)
// 3. Run hand detection and feature extraction on active frames
// 4. Advance the presentation engine every frame, idle frames included, so
//    fades complete even after the subject leaves
// 5. Render overlays and publish the frame for streaming
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()
	lastFrameTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			now := time.Now()
			dt := now.Sub(lastFrameTime)
			lastFrameTime = now

			if a.config.Mirror {
				gocv.Flip(*frame, frame, 1)
			}

			motionDetected, motionPercent := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = now

				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if now.Sub(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			a.Step(frame, activeMode, motionPercent, dt)
			frame.Close()
		}
	}
}

// Step runs detection, evaluation, audio, and rendering for one frame. The
// engine advances on every frame; idle frames see an empty snapshot so
// in-flight fades drain instead of freezing. The pipeline loop calls this per
// tick; tests can call it directly to drive frames deterministically.
func (a *App) Step(frame *gocv.Mat, active bool, motionPercent float64, dt time.Duration) {
	start := time.Now()

	var hands []detector.HandLandmarks
	snap := feature.Empty()

	if active {
		var err error
		hands, err = a.Detector().Detect(frame)
		if err != nil {
			metrics.DetectorErrors.Inc()
			log.Printf("Error detecting hands: %v", err)
			hands = nil
		} else {
			snap = a.extractor.Extract(hands, motionPercent)
		}
	}

	out := a.engine.Advance(snap, dt)

	a.audio.Handle(out.Events)
	for _, ev := range out.Events {
		metrics.LifecycleEvents.WithLabelValues(string(ev.Kind)).Inc()
		if ev.Kind == engine.EventEntered {
			a.setLastEntered(ev.Entry.Name)
		}
	}
	metrics.ActiveOverlays.Set(float64(len(out.Commands)))

	a.renderer.Render(frame, out.Commands, hands)
	a.publishFrame(frame)

	mode := "idle"
	if active {
		mode = "active"
	}
	metrics.FramesTotal.WithLabelValues(mode).Inc()
	metrics.FrameDuration.Observe(time.Since(start).Seconds())
}

// publishFrame JPEG-encodes the composited frame into the latest-frame buffer
// consumed by the MJPEG stream.
func (a *App) publishFrame(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return
	}
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	buf.Close()

	a.jpegMu.Lock()
	a.lastJPEG = data
	a.jpegMu.Unlock()
}

func (a *App) setLastEntered(name string) {
	a.jpegMu.Lock()
	a.lastEntered = name
	a.jpegMu.Unlock()
}
