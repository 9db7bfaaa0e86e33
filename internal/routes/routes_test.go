package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/database/dbtest"
	"github.com/AnshRaj112/feedback-portal/internal/middleware"
	"github.com/AnshRaj112/feedback-portal/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	store := dbtest.New()
	tokens := services.NewTokenService(cfg)
	log := zerolog.Nop()

	h := NewRouter(Deps{
		Config:   cfg,
		Log:      log,
		Auth:     middleware.NewAuthenticator(tokens, log),
		Accounts: services.NewAccountService(store, tokens, cfg),
		Feedback: services.NewFeedbackService(store, cfg.StoreTimeout),
		Comments: services.NewCommentService(store, store, store, cfg.StoreTimeout),
		Started:  time.Now(),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		JWTSecret:       "test-secret",
		JWTIssuer:       "feedback-portal-test",
		TokenTTL:        time.Hour,
		SuperAdminEmail: "admin@example.com",
		AllowedOrigins:  []string{"http://localhost:5173"},
		RateLimitMax:    100,
		RateLimitWindow: 15 * time.Minute,
		RequestTimeout:  5 * time.Second,
		StoreTimeout:    time.Second,
		MaxBodyBytes:    1 << 20,
	}
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestAnonymousSubmitThenAdminPatch(t *testing.T) {
	srv := newTestServer(t, testConfig())

	status, body := call(t, srv, http.MethodPost, "/api/v1/feedback", "", `{"title":"Broken link","body":"Footer link 404s","category":"bug","isAnonymous":true}`)
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, body, "feedback")
	created := body["feedback"].(map[string]any)
	assert.Equal(t, "open", created["status"])
	assert.Contains(t, created, "createdBy")
	assert.Nil(t, created["createdBy"])
	id := created["id"].(string)

	status, reg := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Boss","email":"admin@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, status)
	adminToken := reg["token"].(string)

	status, body = call(t, srv, http.MethodPatch, "/api/v1/feedback/"+id+"/status", adminToken, `{"status":"in_review"}`)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "feedback")
	patched := body["feedback"].(map[string]any)
	assert.Equal(t, "in_review", patched["status"])
	assert.Nil(t, patched["createdBy"])

	status, page := call(t, srv, http.MethodGet, "/api/v1/feedback?status=in_review", adminToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), page["total"])
}

func TestRouteAuthPolicies(t *testing.T) {
	srv := newTestServer(t, testConfig())

	status, _ := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Ada","email":"ada@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, status)
	status, login := call(t, srv, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ada@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, status)
	userToken := login["token"].(string)

	status, me := call(t, srv, http.MethodGet, "/api/v1/auth/me", userToken, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", me["user"].(map[string]any)["email"])

	status, _ = call(t, srv, http.MethodGet, "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = call(t, srv, http.MethodGet, "/api/v1/auth/admin/ping", userToken, "")
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, srv, http.MethodGet, "/api/v1/feedback", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, page := call(t, srv, http.MethodGet, "/api/v1/feedback", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), page["total"])

	status, created := call(t, srv, http.MethodPost, "/api/v1/feedback", userToken, `{"title":"Named one","body":"with my name on it"}`)
	require.Equal(t, http.StatusCreated, status)
	id := created["feedback"].(map[string]any)["id"].(string)

	status, _ = call(t, srv, http.MethodPatch, "/api/v1/feedback/"+id+"/status", userToken, `{"status":"resolved"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, srv, http.MethodPost, "/api/v1/feedback/"+id+"/comments", userToken, `{"body":"first!"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, body["error"], "admin responds")

	status, _ = call(t, srv, http.MethodGet, "/api/v1/feedback/"+id+"/comments", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndInfo(t *testing.T) {
	srv := newTestServer(t, testConfig())

	status, health := call(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health["status"])

	status, info := call(t, srv, http.MethodGet, "/api/v1", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, info["message"])

	status, _ = call(t, srv, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIRateLimitSkipsHealth(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		status, _ := call(t, srv, http.MethodGet, "/api/v1", "", "")
		require.Equal(t, http.StatusOK, status)
	}
	status, body := call(t, srv, http.MethodGet, "/api/v1", "", "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotEmpty(t, body["error"])

	status, _ = call(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestCommentThreadResponses(t *testing.T) {
	srv := newTestServer(t, testConfig())

	_, reg := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Ada","email":"ada@example.com","password":"password123"}`)
	userToken := reg["token"].(string)
	_, reg = call(t, srv, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Boss","email":"admin@example.com","password":"password123"}`)
	adminToken := reg["token"].(string)

	status, body := call(t, srv, http.MethodPost, "/api/v1/feedback", userToken, `{"title":"Export broken","body":"CSV export is empty"}`)
	require.Equal(t, http.StatusCreated, status)
	id := body["feedback"].(map[string]any)["id"].(string)

	status, body = call(t, srv, http.MethodPost, "/api/v1/feedback/"+id+"/comments", adminToken, `{"body":"Which browser?"}`)
	require.Equal(t, http.StatusCreated, status)
	require.Contains(t, body, "comment")
	comment := body["comment"].(map[string]any)
	assert.Equal(t, "Which browser?", comment["body"])
	assert.Equal(t, "admin", comment["author"].(map[string]any)["role"])

	status, _ = call(t, srv, http.MethodPost, "/api/v1/feedback/"+id+"/comments", userToken, `{"body":"Firefox"}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = call(t, srv, http.MethodGet, "/api/v1/feedback/"+id+"/comments", userToken, "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "results")
	results := body["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "Which browser?", results[0].(map[string]any)["body"])
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, "awaiting_admin", body["state"])
}

func TestListHugePageIsEmptyNotError(t *testing.T) {
	srv := newTestServer(t, testConfig())
	_, reg := call(t, srv, http.MethodPost, "/api/v1/auth/register", "", `{"name":"Boss","email":"admin@example.com","password":"password123"}`)
	adminToken := reg["token"].(string)
	status, _ := call(t, srv, http.MethodPost, "/api/v1/feedback", adminToken, `{"title":"Only item","body":"just one here"}`)
	require.Equal(t, http.StatusCreated, status)

	status, page := call(t, srv, http.MethodGet, "/api/v1/feedback?page=9223372036854775807&limit=50", adminToken, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), page["total"])
	assert.Empty(t, page["results"])
}
