package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/renderix/memebooth/internal/store"
)

func newTestHandler(t *testing.T) (*MemeHandler, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return NewMemeHandler(s), s
}

func postMeme(t *testing.T, h *MemeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/memes", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMemeHandler_CreateAppliesDefaults(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postMeme(t, h, `{"name": "victory", "image": "victory.png", "triggers": {"gesture": "peace_sign"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp memeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("expected a generated id")
	}
	if resp.Position != "center" || resp.Scale != 0.5 || resp.Opacity != 0.9 {
		t.Errorf("defaults = %s/%v/%v, want center/0.5/0.9", resp.Position, resp.Scale, resp.Opacity)
	}
}

func TestMemeHandler_CreateValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"image": "x.png"}`},
		{"missing image", `{"name": "victory"}`},
		{"bad position", `{"name": "victory", "image": "x.png", "position": "nowhere"}`},
		{"bad trigger", `{"name": "victory", "image": "x.png", "triggers": {"wat": true}}`},
		{"bad opacity", `{"name": "victory", "image": "x.png", "opacity": 2.0}`},
		{"invalid json", `{"name": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			rec := postMeme(t, h, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestMemeHandler_CreateWithoutTrigger(t *testing.T) {
	h, s := newTestHandler(t)

	// An entry may be created without a trigger; it simply never matches.
	rec := postMeme(t, h, `{"name": "inert", "image": "inert.png"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	memes, err := s.Memes().List()
	if err != nil || len(memes) != 1 {
		t.Fatalf("stored memes = %v (err %v), want 1", memes, err)
	}
	if memes[0].Trigger != "" {
		t.Errorf("stored trigger = %q, want empty", memes[0].Trigger)
	}
}

func TestMemeHandler_GetNotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/memes/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestMemeHandler_TriggerRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postMeme(t, h, `{"name": "calm", "image": "calm.png", "triggers": {"conditions": {"stillness": {">": 0.7}}}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created memeResponse
	json.NewDecoder(rec.Body).Decode(&created)

	req := httptest.NewRequest(http.MethodGet, "/api/memes/"+created.ID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var fetched memeResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	var doc struct {
		Conditions map[string]map[string]float64 `json:"conditions"`
	}
	if err := json.Unmarshal(fetched.Triggers, &doc); err != nil {
		t.Fatalf("trigger did not round-trip: %v", err)
	}
	if doc.Conditions["stillness"][">"] != 0.7 {
		t.Errorf("trigger = %s, want the stored conditions document", fetched.Triggers)
	}
}

func TestMemeHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/memes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
