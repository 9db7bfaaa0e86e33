package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID primitive.ObjectID
	Role   models.Role
	Email  string
	Name   string
}

func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == models.RoleAdmin
}

func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Role: u.Role, Email: u.Email, Name: u.Name}
}

type TokenService interface {
	Issue(id Identity) (string, error)
	Verify(token string) (*Identity, error)
}

type tokenClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type jwtTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(cfg *config.Config) TokenService {
	return &jwtTokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

func (s *jwtTokenService) Issue(id Identity) (string, error) {
	if id.UserID.IsZero() {
		return "", errors.New("issue token: empty subject")
	}
	now := s.now()
	claims := tokenClaims{
		Role:  string(id.Role),
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.Hex(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *jwtTokenService) Verify(token string) (*Identity, error) {
	claims := &tokenClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}

	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role := models.Role(claims.Role)
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: bad role", ErrInvalidToken)
	}
	return &Identity{UserID: uid, Role: role, Email: claims.Email, Name: claims.Name}, nil
}
