package engine

import (
	"sync"
	"time"

	"github.com/renderix/memebooth/internal/feature"
	"github.com/renderix/memebooth/internal/meme"
	"github.com/renderix/memebooth/internal/trigger"
)

// Bounds for the caller-supplied inter-frame duration. Clamping keeps a
// stalled capture loop from teleporting fades.
const (
	minFrameDelta = time.Millisecond
	maxFrameDelta = 250 * time.Millisecond
)

// Frame is the engine's output for one input snapshot.
type Frame struct {
	Commands []DrawCommand
	Events   []Event
}

// EntryStatus is a read-only view of one entry's presentation state.
type EntryStatus struct {
	Name      string  `json:"name"`
	Phase     Phase   `json:"phase"`
	Intensity float64 `json:"intensity"`
}

// Engine owns the presentation state machines for a loaded meme entry set and
// drives them frame-synchronously. Advance runs to completion before the next
// snapshot is accepted; all entries in a frame see the same snapshot. Reloads
// are staged and swapped in at the top of the next Advance, so a new config
// is never visible mid-evaluation.
type Engine struct {
	mu      sync.Mutex
	tuning  Tuning
	epsilon float64
	states  []*entryState

	pending    []*meme.Entry
	hasPending bool
}

// New creates an Engine for the given entry set.
func New(entries []*meme.Entry, tuning Tuning) *Engine {
	e := &Engine{
		tuning:  tuning.normalized(),
		epsilon: trigger.DefaultEpsilon,
	}
	e.states = freshStates(entries)
	return e
}

// SetEpsilon overrides the tolerance used for == metric comparisons.
func (e *Engine) SetEpsilon(epsilon float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epsilon > 0 {
		e.epsilon = epsilon
	}
}

// Reload stages a replacement entry set. The swap happens atomically at the
// next frame boundary. Entries whose configuration is unchanged keep their
// current phase and intensity, so a no-op reload causes no visual glitch;
// changed and new entries start inactive.
func (e *Engine) Reload(entries []*meme.Entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = entries
	e.hasPending = true
}

// Advance runs one frame: applies any staged reload, evaluates every entry's
// trigger against the snapshot, steps each state machine by dt, and returns
// the composited draw list plus the lifecycle events that fired. It never
// fails; a misbehaving entry simply stays inactive.
func (e *Engine) Advance(snap *feature.Snapshot, dt time.Duration) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasPending {
		e.states = e.carryStates(e.pending)
		e.pending = nil
		e.hasPending = false
	}

	if dt < minFrameDelta {
		dt = minFrameDelta
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	var events []Event
	for _, s := range e.states {
		matched := trigger.EvaluateEpsilon(snap, s.entry.Trigger, e.epsilon)
		s.step(matched, dt, e.tuning, &events)
	}

	return Frame{
		Commands: compose(e.states),
		Events:   events,
	}
}

// Status returns the current per-entry presentation states in load order.
func (e *Engine) Status() []EntryStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	statuses := make([]EntryStatus, 0, len(e.states))
	for _, s := range e.states {
		statuses = append(statuses, EntryStatus{
			Name:      s.entry.Name,
			Phase:     s.phase,
			Intensity: s.intensity,
		})
	}
	return statuses
}

// Entries returns the currently active entry set in load order.
func (e *Engine) Entries() []*meme.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := make([]*meme.Entry, 0, len(e.states))
	for _, s := range e.states {
		entries = append(entries, s.entry)
	}
	return entries
}

// carryStates builds the state set for a reloaded entry list, preserving the
// state of entries that are configured identically to before.
func (e *Engine) carryStates(entries []*meme.Entry) []*entryState {
	old := make(map[string]*entryState, len(e.states))
	for _, s := range e.states {
		old[s.entry.Name] = s
	}

	states := make([]*entryState, 0, len(entries))
	for _, entry := range entries {
		if prev, ok := old[entry.Name]; ok && prev.entry.Equal(entry) {
			prev.entry = entry
			states = append(states, prev)
			continue
		}
		states = append(states, newEntryState(entry))
	}
	return states
}

func freshStates(entries []*meme.Entry) []*entryState {
	states := make([]*entryState, 0, len(entries))
	for _, entry := range entries {
		states = append(states, newEntryState(entry))
	}
	return states
}
