package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/rs/zerolog"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (*services.Identity, error)
}

// Authenticator builds the auth policies used by the route table.
type Authenticator struct {
	tokens TokenVerifier
	log    zerolog.Logger
}

func NewAuthenticator(tokens TokenVerifier, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, log: log}
}

// IdentityFrom returns the identity attached by Optional, Required or AdminOnly.
func IdentityFrom(ctx context.Context) *services.Identity {
	id, _ := ctx.Value(ctxIdentity).(*services.Identity)
	return id
}

func WithIdentity(ctx context.Context, id *services.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}

// resolve reads the Authorization header. present reports whether a header was sent
// at all, so callers can tell "anonymous" from "bad credentials".
func (a *Authenticator) resolve(r *http.Request) (id *services.Identity, present bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return nil, false
	}
	scheme, tok, ok := strings.Cut(h, " ")
	tok = strings.TrimSpace(tok)
	if !ok || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return nil, true
	}
	id, err := a.tokens.Verify(tok)
	if err != nil {
		a.log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected bearer token")
		return nil, true
	}
	return id, true
}

// Optional attaches the caller's identity when a token is sent. Requests without an
// Authorization header pass through anonymously; a header with a bad token is a 401.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, present := a.resolve(r)
		if present && id == nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if id != nil {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, present := a.resolve(r)
		if id == nil {
			msg := "Missing bearer token"
			if present {
				msg = "Invalid or expired token"
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// AdminOnly is Required plus the admin capability check.
func (a *Authenticator) AdminOnly(next http.Handler) http.Handler {
	return a.Required(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !services.CapabilitiesFor(IdentityFrom(r.Context())).CanMutateStatus {
			writeError(w, http.StatusForbidden, "Forbidden: admin only")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
