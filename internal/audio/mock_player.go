package audio

import "sync"

// PlayCall records one Play invocation on the mock.
type PlayCall struct {
	ID   string
	Ref  string
	Loop bool
}

// MockPlayer is a test implementation of the Player interface. It records
// every command and tracks a playing set that tests can manipulate.
type MockPlayer struct {
	mu      sync.Mutex
	plays   []PlayCall
	stops   []string
	playing map[string]bool
	playErr error
}

// NewMockPlayer creates a MockPlayer with nothing playing.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{playing: make(map[string]bool)}
}

// SetPlayError makes subsequent Play calls fail with err.
func (m *MockPlayer) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// FinishSound marks the id's sound as no longer playing, simulating a
// one-shot that ended naturally.
func (m *MockPlayer) FinishSound(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.playing, id)
}

// Plays returns the recorded Play calls in order.
func (m *MockPlayer) Plays() []PlayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlayCall(nil), m.plays...)
}

// Stops returns the recorded Stop calls in order.
func (m *MockPlayer) Stops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stops...)
}

// Play records the call and marks the id playing.
func (m *MockPlayer) Play(id, ref string, loop bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	m.plays = append(m.plays, PlayCall{ID: id, Ref: ref, Loop: loop})
	m.playing[id] = true
	return nil
}

// Stop records the call and marks the id stopped.
func (m *MockPlayer) Stop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops = append(m.stops, id)
	delete(m.playing, id)
}

// IsPlaying reports whether the id is marked playing.
func (m *MockPlayer) IsPlaying(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing[id]
}

// Close marks everything stopped.
func (m *MockPlayer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = make(map[string]bool)
}
