package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInt(t *testing.T) {
	q := url.Values{"page": {"3"}, "limit": {"ten"}, "neg": {"-2"}}
	assert.Equal(t, 3, QueryInt(q, "page", 1))
	assert.Equal(t, 10, QueryInt(q, "limit", 10))
	assert.Equal(t, -2, QueryInt(q, "neg", 1))
	assert.Equal(t, 7, QueryInt(q, "missing", 7))
}
