package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:52100"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, "203.0.113.9", RealClientIP(r))

	r.RemoteAddr = "203.0.113.10"
	assert.Equal(t, "203.0.113.10", RealClientIP(r))
}

func TestResolver(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.2:4000"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")

	assert.Equal(t, "10.0.0.2", Resolver{}.ClientIP(r))
	assert.Equal(t, "198.51.100.1", Resolver{TrustProxy: true}.ClientIP(r))

	r.Header.Set("X-Forwarded-For", "not-an-ip")
	assert.Equal(t, "10.0.0.2", Resolver{TrustProxy: true}.ClientIP(r))
}
