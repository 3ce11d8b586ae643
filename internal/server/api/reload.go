package api

import (
	"net/http"

	"github.com/renderix/memebooth/internal/meme"
)

// ReloadFunc rebuilds the live entry set and stages it for the next frame.
// It returns the number of entries loaded plus per-entry diagnostics.
type ReloadFunc func() (int, []meme.LoadError, error)

// ReloadHandler handles POST /api/reload, re-reading the meme definitions and
// swapping them into the running engine at the next frame boundary.
type ReloadHandler struct {
	reload ReloadFunc
}

// NewReloadHandler creates a new ReloadHandler with the given reload callback.
func NewReloadHandler(reload ReloadFunc) *ReloadHandler {
	return &ReloadHandler{reload: reload}
}

type reloadResponse struct {
	Loaded      int      `json:"loaded"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	loaded, diags, err := h.reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reload failed: "+err.Error())
		return
	}

	response := reloadResponse{Loaded: loaded}
	for _, d := range diags {
		response.Diagnostics = append(response.Diagnostics, d.String())
	}
	writeJSON(w, http.StatusOK, response)
}
