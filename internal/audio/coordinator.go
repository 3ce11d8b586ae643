package audio

import (
	"log"

	"github.com/renderix/memebooth/internal/engine"
)

// Coordinator maps lifecycle events to play/stop commands. Playback is keyed
// by entry name, never by sound reference, so entries sharing a sound file
// play and stop independently.
//
// Policy per entry:
//   - entered with a sound: play, unless this entry's own sound is still
//     playing and the entry disallows self-retriggers. By default a meme's
//     sound does not restart while still audible, even if it re-enters.
//   - exited: force-stop only looping sounds; one-shots finish naturally.
type Coordinator struct {
	player Player
	warned map[string]bool
}

// NewCoordinator creates a Coordinator issuing commands to player.
func NewCoordinator(player Player) *Coordinator {
	return &Coordinator{
		player: player,
		warned: make(map[string]bool),
	}
}

// Handle processes one frame's lifecycle events in order. A missing or
// unplayable sound is logged once per reference and never fails the frame.
func (c *Coordinator) Handle(events []engine.Event) {
	for _, ev := range events {
		entry := ev.Entry
		if entry == nil || entry.SoundRef == "" {
			continue
		}

		switch ev.Kind {
		case engine.EventEntered:
			if !entry.AllowRetrigger && c.player.IsPlaying(entry.Name) {
				continue
			}
			if err := c.player.Play(entry.Name, entry.SoundRef, entry.SoundLoop); err != nil {
				c.warnOnce(entry.SoundRef, err)
			}

		case engine.EventExited:
			if entry.SoundLoop {
				c.player.Stop(entry.Name)
			}
		}
	}
}

// Close stops all playback.
func (c *Coordinator) Close() {
	c.player.Close()
}

func (c *Coordinator) warnOnce(ref string, err error) {
	if c.warned[ref] {
		return
	}
	c.warned[ref] = true
	log.Printf("audio: %v", err)
}
