// Package meme provides meme entry configuration: the declarative mapping
// from trigger rules to overlay presentation parameters.
package meme

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/renderix/memebooth/internal/trigger"
)

// Position places an overlay on the frame.
type Position string

const (
	PositionCenter       Position = "center"
	PositionTopLeft      Position = "top-left"
	PositionTopRight     Position = "top-right"
	PositionBottomLeft   Position = "bottom-left"
	PositionBottomRight  Position = "bottom-right"
	PositionTopCenter    Position = "top-center"
	PositionBottomCenter Position = "bottom-center"
)

// positionRanks assigns each position a stable bucket used for draw ordering.
var positionRanks = map[Position]int{
	PositionTopLeft:      0,
	PositionTopCenter:    1,
	PositionTopRight:     2,
	PositionCenter:       3,
	PositionBottomLeft:   4,
	PositionBottomCenter: 5,
	PositionBottomRight:  6,
}

// Rank returns the position's draw-order bucket. Unknown positions sort last.
func (p Position) Rank() int {
	rank, ok := positionRanks[p]
	if !ok {
		return len(positionRanks)
	}
	return rank
}

// Valid reports whether p is one of the seven known placements.
func (p Position) Valid() bool {
	_, ok := positionRanks[p]
	return ok
}

// Presentation defaults applied when a config omits the field.
const (
	DefaultScale   = 0.5
	DefaultOpacity = 0.9
)

// ErrInvalid is wrapped by all entry validation failures.
var ErrInvalid = errors.New("invalid meme entry")

// Entry is one configured meme: a trigger rule plus presentation parameters.
// Entries are immutable once loaded; a reload builds a whole new set.
type Entry struct {
	Name           string
	Description    string
	Trigger        *trigger.Rule // nil means the entry never matches
	ImageRef       string
	SoundRef       string
	SoundLoop      bool
	AllowRetrigger bool
	Position       Position
	Scale          float64
	BaseOpacity    float64
}

// Validate checks the presentation parameters. The trigger is deliberately
// not part of validation: an unparseable trigger leaves the entry inert
// rather than invalid.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if e.ImageRef == "" {
		return fmt.Errorf("%w: missing image", ErrInvalid)
	}
	if !e.Position.Valid() {
		return fmt.Errorf("%w: unknown position %q", ErrInvalid, e.Position)
	}
	if e.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalid, e.Scale)
	}
	if e.BaseOpacity < 0 || e.BaseOpacity > 1 {
		return fmt.Errorf("%w: opacity must be in [0,1], got %v", ErrInvalid, e.BaseOpacity)
	}
	return nil
}

// Equal reports whether two entries are configured identically. The engine
// uses it during reload to carry presentation state across unchanged entries.
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Name == other.Name &&
		e.Description == other.Description &&
		e.ImageRef == other.ImageRef &&
		e.SoundRef == other.SoundRef &&
		e.SoundLoop == other.SoundLoop &&
		e.AllowRetrigger == other.AllowRetrigger &&
		e.Position == other.Position &&
		e.Scale == other.Scale &&
		e.BaseOpacity == other.BaseOpacity &&
		reflect.DeepEqual(e.Trigger, other.Trigger)
}
