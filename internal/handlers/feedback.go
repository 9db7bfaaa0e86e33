package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/AnshRaj112/feedback-portal/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Feedback interface {
	Create(ctx context.Context, id *services.Identity, in services.CreateFeedbackInput) (*models.FeedbackView, error)
	List(ctx context.Context, id *services.Identity, in services.ListFeedbackInput) (*services.FeedbackPage, error)
	UpdateStatus(ctx context.Context, id *services.Identity, feedbackID, status string) (*models.FeedbackView, error)
}

type FeedbackHandler struct {
	feedback Feedback
	log      zerolog.Logger
}

func NewFeedbackHandler(feedback Feedback, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, log: log}
}

func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateFeedbackInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	v, err := h.feedback.Create(r.Context(), middleware.IdentityFrom(r.Context()), in)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"feedback": v})
}

// List reads page, limit, status, category, q and sort from the query string.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := services.ListFeedbackInput{
		Page:     utils.QueryInt(q, "page", 1),
		Limit:    utils.QueryInt(q, "limit", services.DefaultPageLimit),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Q:        q.Get("q"),
		Sort:     q.Get("sort"),
	}
	page, err := h.feedback.List(r.Context(), middleware.IdentityFrom(r.Context()), in)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *FeedbackHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	v, err := h.feedback.UpdateStatus(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": v})
}
