// Package feature provides per-frame feature snapshots for trigger evaluation.
package feature

// Well-known gesture identifiers produced by the extractor.
const (
	GesturePeaceSign     = "peace_sign"
	GesturePointing      = "pointing"
	GestureOpenPalmLeft  = "open_palm_left"
	GestureOpenPalmRight = "open_palm_right"
	GestureRaisedLeft    = "hand_raised_left"
	GestureRaisedRight   = "hand_raised_right"
)

// Well-known metric identifiers produced by the extractor.
const (
	MetricStillness = "stillness"
	MetricHandCount = "hand_count"
)

// Snapshot is an immutable per-frame record of detected gesture booleans and
// continuous metrics. It is produced once per frame and consumed read-only by
// the trigger evaluator; nothing retains it past the current frame.
type Snapshot struct {
	Gestures map[string]bool
	Metrics  map[string]float64
}

// Empty returns a snapshot with no gestures and no metrics.
// It is what the pipeline feeds the engine on idle frames so fades complete.
func Empty() *Snapshot {
	return &Snapshot{
		Gestures: map[string]bool{},
		Metrics:  map[string]float64{},
	}
}

// Gesture reports whether the named gesture is present and true.
// Unknown identifiers are treated as absent.
func (s *Snapshot) Gesture(id string) bool {
	if s == nil {
		return false
	}
	return s.Gestures[id]
}

// Metric returns the named metric value and whether it is present.
func (s *Snapshot) Metric(id string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.Metrics[id]
	return v, ok
}
