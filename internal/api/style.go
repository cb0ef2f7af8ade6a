package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/identity"
	"github.com/codewriterrussian/voc-selftest/internal/preferences"
	"github.com/go-chi/chi/v5"
)

// StyleHandler serves display preferences.
type StyleHandler struct {
	prefs *preferences.Service
}

// NewStyleHandler creates a new StyleHandler.
func NewStyleHandler(prefs *preferences.Service) *StyleHandler {
	return &StyleHandler{prefs: prefs}
}

// RegisterRoutes registers style routes on the router.
func (h *StyleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/style", h.Get)
	r.Put("/api/style", h.Put)
}

// looseString accepts a JSON string or a bare number.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(bytes.TrimSpace(b))
	return nil
}

type styleRequest struct {
	BackgroundColor *looseString `json:"background_color"`
	TextColor       *looseString `json:"text_color"`
	FontSize        *looseString `json:"font_size"`
}

func (req styleRequest) update() domain.StyleUpdate {
	conv := func(p *looseString) *string {
		if p == nil {
			return nil
		}
		s := string(*p)
		return &s
	}
	return domain.StyleUpdate{
		BackgroundColor: conv(req.BackgroundColor),
		TextColor:       conv(req.TextColor),
		FontSize:        conv(req.FontSize),
	}
}

// Get returns the caller's style.
func (h *StyleHandler) Get(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.prefs.Get(r.Context(), identity.UserIDFromContext(r.Context())))
}

// Put merges the supplied fields into the caller's style.
func (h *StyleHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req styleRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request")
		return
	}

	style, err := h.prefs.Set(r.Context(), identity.UserIDFromContext(r.Context()), req.update())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, style)
}
