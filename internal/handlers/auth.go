package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/rs/zerolog"
)

// Accounts is the account surface the auth handlers need.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Me(ctx context.Context, id *services.Identity) (*models.PublicUser, error)
	AdminPing(id *services.Identity) (map[string]any, error)
}

type AuthHandler struct {
	accounts Accounts
	log      zerolog.Logger
}

func NewAuthHandler(accounts Accounts, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	res, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	res, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.Me(r.Context(), middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) AdminPing(w http.ResponseWriter, r *http.Request) {
	out, err := h.accounts.AdminPing(middleware.IdentityFrom(r.Context()))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
