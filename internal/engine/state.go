// Package engine converts noisy per-frame trigger matches into stable overlay
// presentations: debounced state machines per entry, a deterministic layer
// compositor, and lifecycle events for audio.
package engine

import (
	"time"

	"github.com/renderix/memebooth/internal/meme"
)

// Phase is an entry's presentation lifecycle phase.
type Phase string

const (
	PhaseInactive Phase = "inactive"
	PhaseEntering Phase = "entering"
	PhaseActive   Phase = "active"
	PhaseExiting  Phase = "exiting"
)

// EventKind identifies a lifecycle event.
type EventKind string

const (
	// EventEntered fires exactly once per Inactive→Entering transition.
	EventEntered EventKind = "entered"
	// EventExited fires exactly once per Exiting→Inactive transition.
	EventExited EventKind = "exited"
)

// Event is a lifecycle notification emitted by an entry's state machine.
type Event struct {
	Kind  EventKind
	Entry *meme.Entry
}

// Tuning holds the debounce and fade parameters shared by all entries.
type Tuning struct {
	// EnterFrames is how many consecutive matching frames are required
	// before an inactive entry starts entering. Raw per-frame gesture
	// booleans drop out for single frames under detector jitter; requiring
	// two in a row suppresses activation flicker. Exit is deliberately not
	// debounced: stopping the gesture should feel instant.
	EnterFrames int
	// FadeIn is the time for intensity to rise linearly from 0 to 1.
	FadeIn time.Duration
	// FadeOut is the time for intensity to fall from 1 to 0. Faster than
	// FadeIn on purpose.
	FadeOut time.Duration
}

// DefaultTuning returns the stock debounce and fade parameters.
func DefaultTuning() Tuning {
	return Tuning{
		EnterFrames: 2,
		FadeIn:      150 * time.Millisecond,
		FadeOut:     100 * time.Millisecond,
	}
}

// normalized fills in zero fields so a partially specified Tuning behaves.
func (t Tuning) normalized() Tuning {
	def := DefaultTuning()
	if t.EnterFrames <= 0 {
		t.EnterFrames = def.EnterFrames
	}
	if t.FadeIn <= 0 {
		t.FadeIn = def.FadeIn
	}
	if t.FadeOut <= 0 {
		t.FadeOut = def.FadeOut
	}
	return t
}

// entryState is the mutable per-entry presentation state, owned exclusively
// by the engine and mutated once per frame.
type entryState struct {
	entry       *meme.Entry
	phase       Phase
	intensity   float64
	matchFrames int
}

func newEntryState(entry *meme.Entry) *entryState {
	return &entryState{entry: entry, phase: PhaseInactive}
}

// step advances the state machine one frame given this frame's match result.
// Lifecycle events are appended to events. Transition table:
//
//	Inactive  m=true   count matches; at EnterFrames → Entering, emit entered
//	Inactive  m=false  reset counter
//	Entering  m=true   intensity rises; at 1.0 → Active
//	Entering  m=false  → Exiting immediately (entry need not finish)
//	Active    m=true   intensity held at 1.0
//	Active    m=false  → Exiting (no exit debounce)
//	Exiting   m=true   → Entering, resuming from current intensity (no snap)
//	Exiting   m=false  intensity falls; at 0 → Inactive, emit exited
//
// A phase change applies its fade step in the same frame, so intensity is
// continuous across Exiting→Entering resumes.
func (s *entryState) step(matched bool, dt time.Duration, t Tuning, events *[]Event) {
	switch s.phase {
	case PhaseInactive:
		if !matched {
			s.matchFrames = 0
			return
		}
		s.matchFrames++
		if s.matchFrames < t.EnterFrames {
			return
		}
		s.phase = PhaseEntering
		s.intensity = 0
		*events = append(*events, Event{Kind: EventEntered, Entry: s.entry})
		s.fadeIn(dt, t)

	case PhaseEntering:
		if matched {
			s.fadeIn(dt, t)
			return
		}
		s.phase = PhaseExiting
		s.fadeOut(dt, t, events)

	case PhaseActive:
		if matched {
			s.intensity = 1
			return
		}
		s.phase = PhaseExiting
		s.fadeOut(dt, t, events)

	case PhaseExiting:
		if matched {
			// Resume upward from the current level.
			s.phase = PhaseEntering
			s.fadeIn(dt, t)
			return
		}
		s.fadeOut(dt, t, events)
	}
}

func (s *entryState) fadeIn(dt time.Duration, t Tuning) {
	s.intensity += dt.Seconds() / t.FadeIn.Seconds()
	if s.intensity >= 1 {
		s.intensity = 1
		s.phase = PhaseActive
	}
}

func (s *entryState) fadeOut(dt time.Duration, t Tuning, events *[]Event) {
	s.intensity -= dt.Seconds() / t.FadeOut.Seconds()
	if s.intensity > 0 {
		return
	}
	s.intensity = 0
	s.phase = PhaseInactive
	s.matchFrames = 0
	*events = append(*events, Event{Kind: EventExited, Entry: s.entry})
}
