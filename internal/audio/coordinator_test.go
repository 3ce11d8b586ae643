package audio

import (
	"errors"
	"testing"

	"github.com/renderix/memebooth/internal/engine"
	"github.com/renderix/memebooth/internal/meme"
)

func soundEntry(name, ref string) *meme.Entry {
	return &meme.Entry{
		Name:        name,
		ImageRef:    name + ".png",
		SoundRef:    ref,
		Position:    meme.PositionCenter,
		Scale:       meme.DefaultScale,
		BaseOpacity: meme.DefaultOpacity,
	}
}

func TestCoordinator_PlaysOnEntered(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	entry := soundEntry("airhorn", "airhorn.mp3")
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})

	plays := player.Plays()
	if len(plays) != 1 {
		t.Fatalf("plays = %v, want 1", plays)
	}
	if plays[0].ID != "airhorn" || plays[0].Ref != "airhorn.mp3" || plays[0].Loop {
		t.Errorf("play = %+v, want one-shot airhorn.mp3 keyed by entry name", plays[0])
	}
}

func TestCoordinator_NoSoundNoCommand(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	entry := soundEntry("silent", "")
	c.Handle([]engine.Event{
		{Kind: engine.EventEntered, Entry: entry},
		{Kind: engine.EventExited, Entry: entry},
	})

	if len(player.Plays()) != 0 || len(player.Stops()) != 0 {
		t.Error("entry without a sound should issue no commands")
	}
}

func TestCoordinator_NoSelfRetriggerWhilePlaying(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)
	entry := soundEntry("airhorn", "airhorn.mp3")

	// Enter, exit (one-shot keeps playing), re-enter while still audible.
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})
	c.Handle([]engine.Event{{Kind: engine.EventExited, Entry: entry}})
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})

	if got := len(player.Plays()); got != 1 {
		t.Errorf("plays = %d, want 1; sound must not restart while audible", got)
	}

	// Once the one-shot finishes, the next entry plays again.
	player.FinishSound("airhorn")
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})
	if got := len(player.Plays()); got != 2 {
		t.Errorf("plays = %d, want 2 after the sound finished", got)
	}
}

func TestCoordinator_AllowRetrigger(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	entry := soundEntry("airhorn", "airhorn.mp3")
	entry.AllowRetrigger = true

	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})

	if got := len(player.Plays()); got != 2 {
		t.Errorf("plays = %d, want 2 with allow_retrigger", got)
	}
}

func TestCoordinator_StopsOnlyLoopingSounds(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	oneShot := soundEntry("airhorn", "airhorn.mp3")
	looping := soundEntry("elevator", "elevator.mp3")
	looping.SoundLoop = true

	c.Handle([]engine.Event{
		{Kind: engine.EventEntered, Entry: oneShot},
		{Kind: engine.EventEntered, Entry: looping},
	})
	c.Handle([]engine.Event{
		{Kind: engine.EventExited, Entry: oneShot},
		{Kind: engine.EventExited, Entry: looping},
	})

	stops := player.Stops()
	if len(stops) != 1 || stops[0] != "elevator" {
		t.Errorf("stops = %v, want only the looping entry", stops)
	}
	if !player.IsPlaying("airhorn") {
		t.Error("one-shot should be left to finish naturally")
	}
}

func TestCoordinator_LoopFlagPassedThrough(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	looping := soundEntry("elevator", "elevator.mp3")
	looping.SoundLoop = true
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: looping}})

	plays := player.Plays()
	if len(plays) != 1 || !plays[0].Loop {
		t.Errorf("plays = %v, want one looping play", plays)
	}
}

func TestCoordinator_SharedRefPlaysPerEntry(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	// Default policy: no retrigger. Suppression is per entry, so two
	// entries sharing a sound file still each play when they enter
	// in the same frame.
	a := soundEntry("a", "shared.mp3")
	b := soundEntry("b", "shared.mp3")

	c.Handle([]engine.Event{
		{Kind: engine.EventEntered, Entry: a},
		{Kind: engine.EventEntered, Entry: b},
	})

	plays := player.Plays()
	if len(plays) != 2 {
		t.Fatalf("plays = %d, want 2; sounds are not deduplicated across entries", len(plays))
	}
	if plays[0].ID != "a" || plays[1].ID != "b" {
		t.Errorf("play ids = %s/%s, want a/b", plays[0].ID, plays[1].ID)
	}

	// Re-entering while each entry's own sound is audible is still
	// suppressed per entry.
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: a}})
	if got := len(player.Plays()); got != 2 {
		t.Errorf("plays = %d, want 2; only self-retriggers are suppressed", got)
	}
}

func TestCoordinator_SharedRefLoopingStopsOnlyExitingEntry(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)

	a := soundEntry("a", "loop.mp3")
	a.SoundLoop = true
	b := soundEntry("b", "loop.mp3")
	b.SoundLoop = true

	c.Handle([]engine.Event{
		{Kind: engine.EventEntered, Entry: a},
		{Kind: engine.EventEntered, Entry: b},
	})
	c.Handle([]engine.Event{{Kind: engine.EventExited, Entry: a}})

	stops := player.Stops()
	if len(stops) != 1 || stops[0] != "a" {
		t.Errorf("stops = %v, want only the exiting entry", stops)
	}
	if player.IsPlaying("a") {
		t.Error("exiting entry's loop should be stopped")
	}
	if !player.IsPlaying("b") {
		t.Error("other entry's loop must keep playing")
	}
}

func TestCoordinator_PlayErrorDoesNotPanic(t *testing.T) {
	player := NewMockPlayer()
	player.SetPlayError(errors.New("no audio device"))
	c := NewCoordinator(player)

	entry := soundEntry("airhorn", "airhorn.mp3")
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})
	c.Handle([]engine.Event{{Kind: engine.EventEntered, Entry: entry}})
}
