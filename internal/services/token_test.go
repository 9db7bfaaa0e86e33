package services

import (
	"testing"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestTokens(now func() time.Time) *jwtTokenService {
	svc := NewTokenService(testConfig()).(*jwtTokenService)
	svc.now = now
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokens(time.Now)
	id := Identity{UserID: primitive.NewObjectID(), Role: models.RoleAdmin, Email: "a@example.com", Name: "Ada"}

	token, err := svc.Issue(id)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
	assert.True(t, got.IsAdmin())
}

func TestTokenExpires(t *testing.T) {
	issuedAt := time.Now()
	svc := newTestTokens(func() time.Time { return issuedAt })
	token, err := svc.Issue(Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsTampering(t *testing.T) {
	svc := newTestTokens(time.Now)
	token, err := svc.Issue(Identity{UserID: primitive.NewObjectID(), Role: models.RoleUser})
	require.NoError(t, err)

	other := newTestTokens(time.Now)
	other.secret = []byte("another-secret")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsWrongIssuerAndAlgorithm(t *testing.T) {
	svc := newTestTokens(time.Now)
	now := time.Now()

	claims := tokenClaims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)
	_, err = svc.Verify(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims.Issuer = svc.issuer
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	svc := newTestTokens(time.Now)
	claims := tokenClaims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			Issuer:    svc.issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, Capabilities{}, CapabilitiesFor(nil))

	uid := primitive.NewObjectID()
	user := CapabilitiesFor(&Identity{UserID: uid, Role: models.RoleUser})
	assert.True(t, user.Authenticated)
	assert.Equal(t, uid, user.UserID)
	assert.False(t, user.CanViewAll)
	assert.False(t, user.CanMutateStatus)
	assert.False(t, user.CanCommentUnconditionally)

	admin := CapabilitiesFor(&Identity{UserID: uid, Role: models.RoleAdmin})
	assert.True(t, admin.CanViewAll)
	assert.True(t, admin.CanMutateStatus)
	assert.True(t, admin.CanCommentUnconditionally)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, 400, KindValidation.HTTPStatus())
	assert.Equal(t, 401, KindUnauthorized.HTTPStatus())
	assert.Equal(t, 403, KindForbidden.HTTPStatus())
	assert.Equal(t, 403, KindPolicyViolation.HTTPStatus())
	assert.Equal(t, 404, KindNotFound.HTTPStatus())
	assert.Equal(t, 409, KindConflict.HTTPStatus())
	assert.Equal(t, 500, KindInternal.HTTPStatus())

	assert.Equal(t, KindConflict, KindOf(ConflictError("x")))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))

	err := InternalError("op", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "Internal server error", err.Message)
}
