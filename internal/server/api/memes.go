// Package api provides HTTP API handlers for the MemeBooth overlay system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/renderix/memebooth/internal/meme"
	"github.com/renderix/memebooth/internal/store"
	"github.com/renderix/memebooth/internal/trigger"
)

// MemeHandler handles HTTP requests for meme entry resources.
type MemeHandler struct {
	store *store.Store
}

// NewMemeHandler creates a new MemeHandler with the given store.
func NewMemeHandler(s *store.Store) *MemeHandler {
	return &MemeHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *MemeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/memes or /api/memes/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/memes")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type memeRequest struct {
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

type memeResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Triggers       json.RawMessage `json:"triggers,omitempty"`
	Image          string          `json:"image"`
	Sound          string          `json:"sound,omitempty"`
	Loop           bool            `json:"loop"`
	AllowRetrigger bool            `json:"allow_retrigger"`
	Position       string          `json:"position"`
	Scale          float64         `json:"scale"`
	Opacity        float64         `json:"opacity"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

type listMemesResponse struct {
	Memes []memeResponse `json:"memes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Meme to a memeResponse.
func toResponse(m *store.Meme) memeResponse {
	resp := memeResponse{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Image:          m.Image,
		Sound:          m.Sound,
		Loop:           m.SoundLoop,
		AllowRetrigger: m.AllowRetrigger,
		Position:       m.Position,
		Scale:          m.Scale,
		Opacity:        m.Opacity,
		CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:      m.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if m.Trigger != "" {
		resp.Triggers = json.RawMessage(m.Trigger)
	}
	return resp
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// applyRequest maps the request body onto a store row, filling defaults and
// validating the result. The API rejects an unparseable trigger outright,
// unlike config-file loading: the caller is present and can fix it.
func applyRequest(m *store.Meme, req *memeRequest) (string, bool) {
	m.Name = req.Name
	m.Description = req.Description
	m.Image = req.Image
	m.Sound = req.Sound
	m.SoundLoop = req.Loop
	m.AllowRetrigger = req.AllowRetrigger

	m.Position = req.Position
	if m.Position == "" {
		m.Position = string(meme.PositionCenter)
	}
	m.Scale = meme.DefaultScale
	if req.Scale != nil {
		m.Scale = *req.Scale
	}
	m.Opacity = meme.DefaultOpacity
	if req.Opacity != nil {
		m.Opacity = *req.Opacity
	}

	m.Trigger = ""
	if len(req.Triggers) > 0 {
		if _, err := trigger.Parse(req.Triggers); err != nil {
			return "Invalid trigger: " + err.Error(), false
		}
		m.Trigger = string(req.Triggers)
	}

	if err := m.ToEntry().Validate(); err != nil {
		return err.Error(), false
	}
	return "", true
}

// list handles GET /api/memes and returns all meme entries.
func (h *MemeHandler) list(w http.ResponseWriter, r *http.Request) {
	memes, err := h.store.Memes().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list memes")
		return
	}

	response := listMemesResponse{
		Memes: make([]memeResponse, 0, len(memes)),
	}
	for _, m := range memes {
		response.Memes = append(response.Memes, toResponse(m))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/memes/{id} and returns a single meme entry.
func (h *MemeHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Memes().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Meme not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get meme")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(m))
}

// create handles POST /api/memes and creates a new meme entry.
func (h *MemeHandler) create(w http.ResponseWriter, r *http.Request) {
	var req memeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	m := &store.Meme{ID: uuid.New().String()}
	if msg, ok := applyRequest(m, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.store.Memes().GetByName(m.Name); err == nil {
		writeError(w, http.StatusConflict, "Meme name already in use")
		return
	}

	if err := h.store.Memes().Create(m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create meme")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(m))
}

// update handles PUT /api/memes/{id} and replaces an existing meme entry.
func (h *MemeHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.store.Memes().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Meme not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get meme")
		return
	}

	var req memeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg, ok := applyRequest(m, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if other, err := h.store.Memes().GetByName(m.Name); err == nil && other.ID != m.ID {
		writeError(w, http.StatusConflict, "Meme name already in use")
		return
	}

	if err := h.store.Memes().Update(m); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update meme")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(m))
}

// delete handles DELETE /api/memes/{id} and removes a meme entry.
func (h *MemeHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Memes().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Meme not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete meme")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
