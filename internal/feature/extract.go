package feature

import (
	"strings"

	"github.com/renderix/memebooth/internal/detector"
)

// Extraction thresholds.
const (
	// raisedWristY is the normalized y below which a wrist counts as raised
	// (image coordinates: 0 is the top of the frame).
	raisedWristY = 0.5
	// openPalmMinFingers is how many extended fingers make an open palm.
	openPalmMinFingers = 3
	// stillnessSmoothing is the EWMA weight given to the previous stillness
	// value, damping single-frame motion spikes.
	stillnessSmoothing = 0.8
)

// Extractor converts raw hand landmarks and motion data into a Snapshot of
// high-level gesture booleans and metrics. It keeps a smoothed stillness
// value across frames, so one Extractor serves one camera feed.
type Extractor struct {
	stillness   float64
	initialized bool
}

// NewExtractor creates an Extractor with no motion history.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract builds the feature snapshot for one frame. hands holds the detected
// hand landmarks (possibly empty) and motionPercent is the percentage of
// pixels that changed since the previous frame, as reported by the motion
// detector.
func (e *Extractor) Extract(hands []detector.HandLandmarks, motionPercent float64) *Snapshot {
	snap := Empty()

	for i := range hands {
		hand := &hands[i]
		side := strings.ToLower(hand.Handedness)

		if hand.Points[detector.Wrist].Y < raisedWristY {
			setSided(snap, "hand_raised", side)
		}
		if isPeaceSign(hand) {
			snap.Gestures[GesturePeaceSign] = true
		}
		if isPointing(hand) {
			snap.Gestures[GesturePointing] = true
		}
		if isOpenPalm(hand) {
			setSided(snap, "open_palm", side)
		}
	}

	snap.Metrics[MetricStillness] = e.updateStillness(motionPercent)
	snap.Metrics[MetricHandCount] = float64(len(hands))

	return snap
}

// Reset clears the motion history so the next frame starts a fresh baseline.
func (e *Extractor) Reset() {
	e.stillness = 0
	e.initialized = false
}

// updateStillness folds this frame's motion percentage into the smoothed
// stillness metric. 1.0 means a perfectly still frame, 0.0 a fully changed one.
func (e *Extractor) updateStillness(motionPercent float64) float64 {
	instant := 1.0 - motionPercent/100.0
	if instant < 0 {
		instant = 0
	}
	if instant > 1 {
		instant = 1
	}

	if !e.initialized {
		e.stillness = instant
		e.initialized = true
		return e.stillness
	}

	e.stillness = stillnessSmoothing*e.stillness + (1-stillnessSmoothing)*instant
	return e.stillness
}

// setSided records a per-hand gesture under its left/right variant. Hands
// with unknown handedness are skipped rather than guessed.
func setSided(snap *Snapshot, base, side string) {
	if side != "left" && side != "right" {
		return
	}
	snap.Gestures[base+"_"+side] = true
}

// Finger extension checks follow the MediaPipe landmark convention: a finger
// counts as extended when its tip sits above its PIP joint in image space.

func isPeaceSign(hand *detector.HandLandmarks) bool {
	p := &hand.Points
	indexUp := p[detector.IndexTip].Y < p[detector.IndexPIP].Y
	middleUp := p[detector.MiddleTip].Y < p[detector.MiddlePIP].Y
	ringDown := p[detector.RingTip].Y > p[detector.RingPIP].Y
	pinkyDown := p[detector.PinkyTip].Y > p[detector.PinkyPIP].Y
	return indexUp && middleUp && ringDown && pinkyDown
}

func isPointing(hand *detector.HandLandmarks) bool {
	p := &hand.Points
	indexUp := p[detector.IndexTip].Y < p[detector.IndexPIP].Y
	middleDown := p[detector.MiddleTip].Y > p[detector.MiddlePIP].Y
	ringDown := p[detector.RingTip].Y > p[detector.RingPIP].Y
	pinkyDown := p[detector.PinkyTip].Y > p[detector.PinkyPIP].Y
	return indexUp && middleDown && ringDown && pinkyDown
}

func isOpenPalm(hand *detector.HandLandmarks) bool {
	p := &hand.Points
	up := 0
	pairs := [][2]int{
		{detector.IndexTip, detector.IndexPIP},
		{detector.MiddleTip, detector.MiddlePIP},
		{detector.RingTip, detector.RingPIP},
		{detector.PinkyTip, detector.PinkyPIP},
	}
	for _, pair := range pairs {
		if p[pair[0]].Y < p[pair[1]].Y {
			up++
		}
	}
	return up >= openPalmMinFingers
}
