package store

import (
	"errors"
	"testing"

	"github.com/renderix/memebooth/internal/trigger"
)

func sampleMeme(id, name string) *Meme {
	return &Meme{
		ID:       id,
		Name:     name,
		Trigger:  `{"gesture": "peace_sign"}`,
		Image:    "victory.png",
		Sound:    "airhorn.mp3",
		Position: "top-right",
		Scale:    0.4,
		Opacity:  0.85,
	}
}

func TestMemeRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Memes()

	m := sampleMeme("meme-1", "victory")
	if err := repo.Create(m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID("meme-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "victory" {
		t.Errorf("Name = %q, want %q", got.Name, "victory")
	}
	if got.Trigger != `{"gesture": "peace_sign"}` {
		t.Errorf("Trigger = %q, want original document", got.Trigger)
	}
	if got.Position != "top-right" {
		t.Errorf("Position = %q, want top-right", got.Position)
	}

	byName, err := repo.GetByName("victory")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName.ID != "meme-1" {
		t.Errorf("GetByName ID = %q, want meme-1", byName.ID)
	}
}

func TestMemeRepository_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Memes().GetByID("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestMemeRepository_DuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)
	repo := s.Memes()

	if err := repo.Create(sampleMeme("meme-1", "victory")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(sampleMeme("meme-2", "victory")); err == nil {
		t.Error("Create() with duplicate name should fail")
	}
}

func TestMemeRepository_ListOrderedByName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Memes()

	for _, m := range []*Meme{
		sampleMeme("meme-1", "zoomies"),
		sampleMeme("meme-2", "airhorn"),
		sampleMeme("meme-3", "victory"),
	} {
		if err := repo.Create(m); err != nil {
			t.Fatalf("Create(%s) error = %v", m.Name, err)
		}
	}

	memes, err := repo.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(memes) != 3 {
		t.Fatalf("List() returned %d memes, want 3", len(memes))
	}

	want := []string{"airhorn", "victory", "zoomies"}
	for i, name := range want {
		if memes[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, memes[i].Name, name)
		}
	}
}

func TestMemeRepository_Update(t *testing.T) {
	s := newTestStore(t)
	repo := s.Memes()

	m := sampleMeme("meme-1", "victory")
	if err := repo.Create(m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	m.Scale = 0.7
	m.SoundLoop = true
	if err := repo.Update(m); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID("meme-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Scale != 0.7 {
		t.Errorf("Scale = %v, want 0.7", got.Scale)
	}
	if !got.SoundLoop {
		t.Error("SoundLoop should be true after update")
	}
}

func TestMemeRepository_UpdateMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Memes().Update(sampleMeme("ghost", "ghost"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestMemeRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Memes()

	if err := repo.Create(sampleMeme("meme-1", "victory")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete("meme-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID("meme-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete("meme-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestMeme_ToEntry(t *testing.T) {
	m := sampleMeme("meme-1", "victory")

	entry := m.ToEntry()
	if entry.Name != "victory" {
		t.Errorf("Name = %q, want victory", entry.Name)
	}
	if entry.Trigger == nil || entry.Trigger.Kind != trigger.KindSingle {
		t.Fatalf("Trigger = %+v, want single-gesture rule", entry.Trigger)
	}
	if entry.Trigger.Gesture != "peace_sign" {
		t.Errorf("Trigger.Gesture = %q, want peace_sign", entry.Trigger.Gesture)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestMeme_ToEntryBadTrigger(t *testing.T) {
	m := sampleMeme("meme-1", "victory")
	m.Trigger = `{"wat": true}`

	entry := m.ToEntry()
	if entry.Trigger != nil {
		t.Errorf("Trigger = %+v, want nil for unknown format", entry.Trigger)
	}
}
