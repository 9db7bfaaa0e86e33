package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Comments interface {
	List(ctx context.Context, id *services.Identity, feedbackID string) (*services.Thread, error)
	Add(ctx context.Context, id *services.Identity, feedbackID string, in services.AddCommentInput) (*models.Comment, error)
}

type CommentHandler struct {
	comments Comments
	log      zerolog.Logger
}

func NewCommentHandler(comments Comments, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	thread, err := h.comments.List(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in services.AddCommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	c, err := h.comments.Add(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"comment": c})
}
