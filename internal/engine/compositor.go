package engine

import (
	"sort"

	"github.com/renderix/memebooth/internal/meme"
)

// DrawCommand instructs the renderer to draw one overlay this frame. Opacity
// is the entry's base opacity scaled by its current fade intensity.
type DrawCommand struct {
	Name     string
	ImageRef string
	Position meme.Position
	Scale    float64
	Opacity  float64
}

// compose collects every entry with a visible intensity into an ordered draw
// list. Ordering is (position rank, name): deterministic and independent of
// state-collection insertion order, so overlapping regions render identically
// across runs given the same config. Entries sharing a position simply
// overlap; there is no layout negotiation.
func compose(states []*entryState) []DrawCommand {
	var commands []DrawCommand
	for _, s := range states {
		if s.intensity <= 0 {
			continue
		}
		commands = append(commands, DrawCommand{
			Name:     s.entry.Name,
			ImageRef: s.entry.ImageRef,
			Position: s.entry.Position,
			Scale:    s.entry.Scale,
			Opacity:  s.entry.BaseOpacity * s.intensity,
		})
	}

	sort.Slice(commands, func(i, j int) bool {
		ri, rj := commands[i].Position.Rank(), commands[j].Position.Rank()
		if ri != rj {
			return ri < rj
		}
		return commands[i].Name < commands[j].Name
	})

	return commands
}
