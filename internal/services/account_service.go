package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/config"
	"github.com/AnshRaj112/feedback-portal/internal/database"
	"github.com/AnshRaj112/feedback-portal/internal/models"
	"github.com/AnshRaj112/feedback-portal/pkg/utils"
)

const invalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

type AccountService struct {
	users        UserStore
	tokens       TokenService
	cfg          *config.Config
	now          func() time.Time
	storeTimeout time.Duration
}

func NewAccountService(users UserStore, tokens TokenService, cfg *config.Config) *AccountService {
	return &AccountService{
		users:        users,
		tokens:       tokens,
		cfg:          cfg,
		now:          time.Now,
		storeTimeout: cfg.StoreTimeout,
	}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.Password) == "" {
		in.Password = ""
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err := s.users.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return nil, ConflictError("Email already registered")
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, InternalError("find user by email", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, InternalError("hash password", err)
	}

	role := models.RoleUser
	if s.cfg.IsSuperAdmin(in.Email) {
		role = models.RoleAdmin
	}

	now := s.now().UTC()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration; the unique index decides
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ConflictError("Email already registered")
		}
		return nil, InternalError("create user", err)
	}

	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, database.ErrNotFound) {
		// Burn the same hashing work as a real check so timing does not reveal
		// whether the account exists.
		_, _ = utils.VerifyPassword(in.Password, decoyHash())
		return nil, UnauthorizedError(invalidCredentials)
	}
	if err != nil {
		return nil, InternalError("find user by email", err)
	}

	ok, err := utils.VerifyPassword(in.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, UnauthorizedError(invalidCredentials)
	}

	return s.issue(user)
}

// Me re-reads the caller's account so deleted or changed accounts are not served
// from stale token claims.
func (s *AccountService) Me(ctx context.Context, id *Identity) (*models.PublicUser, error) {
	if id == nil {
		return nil, UnauthorizedError("Unauthorized")
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.users.FindUserByID(ctx, id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, UnauthorizedError("Unauthorized")
	}
	if err != nil {
		return nil, InternalError("find user by id", err)
	}
	pub := user.Public()
	return &pub, nil
}

func (s *AccountService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(IdentityOf(user))
	if err != nil {
		return nil, InternalError("issue token", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}

var (
	decoyOnce sync.Once
	decoy     string
)

func decoyHash() string {
	decoyOnce.Do(func() {
		decoy, _ = utils.HashPassword("decoy-password-for-timing")
	})
	return decoy
}

// AdminPing confirms the caller holds admin capabilities.
func (s *AccountService) AdminPing(id *Identity) (map[string]any, error) {
	caps := CapabilitiesFor(id)
	if !caps.Authenticated {
		return nil, UnauthorizedError("Unauthorized")
	}
	if !caps.CanMutateStatus {
		return nil, ForbiddenError("Forbidden: admin only")
	}
	return map[string]any{"ok": true, "msg": "Admin access confirmed for " + id.Email}, nil
}
