package api

import (
	"net/http"
	"strings"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/quiz"
	"github.com/go-chi/chi/v5"
)

// QuizHandler serves the quiz session endpoints.
type QuizHandler struct {
	mgr        *quiz.Manager
	speechMode string
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(mgr *quiz.Manager, speechMode string) *QuizHandler {
	return &QuizHandler{mgr: mgr, speechMode: speechMode}
}

// RegisterRoutes registers quiz routes on the router.
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.GetConfig)
		r.Get("/categories", h.ListCategories)
		r.Route("/quiz", func(r chi.Router) {
			r.Get("/", h.Current)
			r.Post("/start", h.Start)
			r.Post("/answer", h.Answer)
			r.Post("/next", h.Next)
			r.Post("/delete", h.Delete)
			r.Post("/end", h.End)
			r.Post("/speak", h.Speak)
		})
	})
}

// GetConfig returns client-relevant settings.
func (h *QuizHandler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"speech_mode": h.speechMode})
}

// ListCategories returns the category names.
func (h *QuizHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.mgr.Categories(r.Context()),
	})
}

type startRequest struct {
	Category string `json:"category"`
}

// Start begins a quiz on the requested category.
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request")
		return
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		Error(w, http.StatusBadRequest, "category_required")
		return
	}

	session, err := h.mgr.Start(r.Context(), ownerFromRequest(r), category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, quiz.NewView(session))
}

// Current returns the current question, or a finished marker.
func (h *QuizHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, err := h.mgr.Current(r.Context(), ownerFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, quiz.NewView(session))
}

type answerRequest struct {
	Letter string `json:"letter"`
}

type answerResponse struct {
	Result domain.AnswerResult `json:"result"`
	Quiz   quiz.View           `json:"quiz"`
}

// Answer scores the submitted option letter.
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, session, err := h.mgr.SubmitAnswer(r.Context(), ownerFromRequest(r), req.Letter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, answerResponse{Result: res, Quiz: quiz.NewView(session)})
}

// Next advances to the following question.
func (h *QuizHandler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.mgr.Next(r.Context(), ownerFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, quiz.NewView(session))
}

type deleteResponse struct {
	Deleted string    `json:"deleted"`
	Quiz    quiz.View `json:"quiz"`
}

// Delete removes the current question from the session and the store.
func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, session, err := h.mgr.DeleteCurrent(r.Context(), ownerFromRequest(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, deleteResponse{
		Deleted: domain.Sanitize(removed.Text),
		Quiz:    quiz.NewView(session),
	})
}

// End discards the session.
func (h *QuizHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.End(r.Context(), ownerFromRequest(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

type speakRequest struct {
	Target string `json:"target"`
	Key    string `json:"key"`
}

// Speak queues text of the current question for speech.
func (h *QuizHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeBody(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Target == "" {
		req.Target = quiz.TargetQuestion
	}

	if err := h.mgr.Speak(r.Context(), ownerFromRequest(r), req.Target, req.Key); err != nil {
		writeDomainError(w, err)
		return
	}
	JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
