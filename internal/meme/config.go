package meme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/renderix/memebooth/internal/trigger"
)

// LoadError is a per-entry diagnostic produced while loading a config set.
// Load never aborts on a bad entry; it drops (or inerts) the entry and
// records why. Diagnostics are reported once at load time, never per frame.
type LoadError struct {
	Index  int    // position in the config document
	Name   string // entry name if known
	Reason string
}

func (e LoadError) String() string {
	if e.Name == "" {
		return fmt.Sprintf("entry #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("entry %q: %s", e.Name, e.Reason)
}

// configDoc is the top-level config file schema.
type configDoc struct {
	Memes []entryDoc `json:"memes"`
}

// entryDoc is the wire form of one meme entry.
type entryDoc struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Triggers       json.RawMessage `json:"triggers"`
	Image          string          `json:"image"`
	Sound          string          `json:"sound"`
	Loop           bool            `json:"loop"`
	AllowRetrigger bool            `json:"allow_retrigger"`
	Position       string          `json:"position"`
	Scale          *float64        `json:"scale"`
	Opacity        *float64        `json:"opacity"`
}

// LoadFile reads a meme config file and returns the valid entries plus
// diagnostics for every entry that was dropped or left inert. The format is
// chosen by extension: .yaml/.yml are decoded as YAML, everything else as
// JSON. The returned error is reserved for whole-document failures.
func LoadFile(path string) ([]*Entry, []LoadError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, nil, err
		}
	}

	return Parse(data)
}

// Parse decodes a JSON config document into entries. Entries with invalid
// presentation parameters or duplicate names are dropped; entries with an
// unparseable trigger are kept but never match. Both cases produce a
// LoadError.
func Parse(data []byte) ([]*Entry, []LoadError, error) {
	var doc configDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}

	var (
		entries []*Entry
		errs    []LoadError
		seen    = make(map[string]bool)
	)

	for i, d := range doc.Memes {
		entry := d.toEntry()

		if err := entry.Validate(); err != nil {
			errs = append(errs, LoadError{Index: i, Name: d.Name, Reason: err.Error()})
			continue
		}
		if seen[entry.Name] {
			errs = append(errs, LoadError{Index: i, Name: entry.Name, Reason: "duplicate name"})
			continue
		}
		seen[entry.Name] = true

		if len(d.Triggers) == 0 {
			entries = append(entries, entry)
			errs = append(errs, LoadError{Index: i, Name: entry.Name, Reason: "no trigger: entry will never match"})
			continue
		}
		rule, err := trigger.Parse(d.Triggers)
		if err != nil {
			// Fail closed: the entry stays loaded but inert.
			errs = append(errs, LoadError{Index: i, Name: entry.Name, Reason: fmt.Sprintf("trigger unusable, entry will never match: %v", err)})
		} else {
			entry.Trigger = rule
		}
		entries = append(entries, entry)
	}

	return entries, errs, nil
}

// toEntry maps the wire form onto an Entry, applying defaults for omitted
// presentation fields.
func (d *entryDoc) toEntry() *Entry {
	entry := &Entry{
		Name:           d.Name,
		Description:    d.Description,
		ImageRef:       d.Image,
		SoundRef:       d.Sound,
		SoundLoop:      d.Loop,
		AllowRetrigger: d.AllowRetrigger,
		Position:       Position(d.Position),
		Scale:          DefaultScale,
		BaseOpacity:    DefaultOpacity,
	}
	if d.Position == "" {
		entry.Position = PositionCenter
	}
	if d.Scale != nil {
		entry.Scale = *d.Scale
	}
	if d.Opacity != nil {
		entry.BaseOpacity = *d.Opacity
	}
	return entry
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share one
// parsing path.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return out, nil
}
