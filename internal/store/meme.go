package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/renderix/memebooth/internal/meme"
	"github.com/renderix/memebooth/internal/trigger"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Meme represents a meme entry definition stored in the database. Trigger
// holds the rule document as JSON text; an empty or unparseable document
// means the entry never matches.
type Meme struct {
	ID             string
	Name           string
	Description    string
	Trigger        string
	Image          string
	Sound          string
	SoundLoop      bool
	AllowRetrigger bool
	Position       string
	Scale          float64
	Opacity        float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ToEntry converts the stored row into a runtime entry. An unparseable
// trigger document yields an entry with a nil rule, which never matches.
func (m *Meme) ToEntry() *meme.Entry {
	entry := &meme.Entry{
		Name:           m.Name,
		Description:    m.Description,
		ImageRef:       m.Image,
		SoundRef:       m.Sound,
		SoundLoop:      m.SoundLoop,
		AllowRetrigger: m.AllowRetrigger,
		Position:       meme.Position(m.Position),
		Scale:          m.Scale,
		BaseOpacity:    m.Opacity,
	}
	if m.Trigger != "" {
		if rule, err := trigger.Parse([]byte(m.Trigger)); err == nil {
			entry.Trigger = rule
		}
	}
	return entry
}

// MemeRepository provides CRUD operations for meme entries.
type MemeRepository struct {
	db *sql.DB
}

// Memes returns the meme repository for this store.
func (s *Store) Memes() *MemeRepository {
	return &MemeRepository{db: s.db}
}

const memeColumns = `id, name, description, trigger_rule, image, sound, sound_loop,
	 allow_retrigger, position, scale, opacity, created_at, updated_at`

// Create inserts a new meme entry into the database.
func (r *MemeRepository) Create(m *Meme) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO memes (`+memeColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Description, m.Trigger, m.Image, m.Sound,
		boolToInt(m.SoundLoop), boolToInt(m.AllowRetrigger),
		m.Position, m.Scale, m.Opacity, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a meme entry by its ID.
func (r *MemeRepository) GetByID(id string) (*Meme, error) {
	row := r.db.QueryRow(`SELECT `+memeColumns+` FROM memes WHERE id = ?`, id)
	return scanMeme(row)
}

// GetByName retrieves a meme entry by its name.
func (r *MemeRepository) GetByName(name string) (*Meme, error) {
	row := r.db.QueryRow(`SELECT `+memeColumns+` FROM memes WHERE name = ?`, name)
	return scanMeme(row)
}

// List retrieves all meme entries ordered by name.
func (r *MemeRepository) List() ([]*Meme, error) {
	rows, err := r.db.Query(`SELECT ` + memeColumns + ` FROM memes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memes []*Meme
	for rows.Next() {
		m := &Meme{}
		var soundLoop, allowRetrigger int

		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Trigger, &m.Image,
			&m.Sound, &soundLoop, &allowRetrigger, &m.Position, &m.Scale,
			&m.Opacity, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return nil, err
		}

		m.SoundLoop = soundLoop != 0
		m.AllowRetrigger = allowRetrigger != 0
		memes = append(memes, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return memes, nil
}

// Update updates an existing meme entry in the database.
func (r *MemeRepository) Update(m *Meme) error {
	m.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE memes SET name = ?, description = ?, trigger_rule = ?, image = ?,
		 sound = ?, sound_loop = ?, allow_retrigger = ?, position = ?,
		 scale = ?, opacity = ?, updated_at = ?
		 WHERE id = ?`,
		m.Name, m.Description, m.Trigger, m.Image, m.Sound,
		boolToInt(m.SoundLoop), boolToInt(m.AllowRetrigger),
		m.Position, m.Scale, m.Opacity, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a meme entry from the database by its ID.
func (r *MemeRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM memes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func scanMeme(row *sql.Row) (*Meme, error) {
	m := &Meme{}
	var soundLoop, allowRetrigger int

	err := row.Scan(&m.ID, &m.Name, &m.Description, &m.Trigger, &m.Image,
		&m.Sound, &soundLoop, &allowRetrigger, &m.Position, &m.Scale,
		&m.Opacity, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.SoundLoop = soundLoop != 0
	m.AllowRetrigger = allowRetrigger != 0
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
