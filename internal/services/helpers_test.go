package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/database/dbtest"
	"github.com/stretchr/testify/require"
)

const testAdminEmail = "admin@example.com"

func testConfig() *config.Config {
	return &config.Config{
		Environment:     "test",
		JWTSecret:       "test-secret",
		JWTIssuer:       "feedback-portal-test",
		TokenTTL:        time.Hour,
		SuperAdminEmail: testAdminEmail,
		StoreTimeout:    time.Second,
	}
}

// fakeClock advances one second per call so records get distinct timestamps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store    *dbtest.Store
	tokens   TokenService
	accounts *AccountService
	feedback *FeedbackService
	comments *CommentService
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := dbtest.New()
	clock := newFakeClock()

	f := &fixture{
		store:    store,
		tokens:   NewTokenService(cfg),
		clock:    clock,
		feedback: NewFeedbackService(store, cfg.StoreTimeout),
		comments: NewCommentService(store, store, store, cfg.StoreTimeout),
	}
	f.accounts = NewAccountService(store, f.tokens, cfg)
	f.accounts.now = clock.Now
	f.feedback.now = clock.Now
	f.comments.now = clock.Now
	return f
}

// register signs a user up and returns the identity carried by their token.
func (f *fixture) register(t *testing.T, name, email string) *Identity {
	t.Helper()
	res, err := f.accounts.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	return id
}
