package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shinyyama/arena-backend/internal/auth"
	"github.com/shinyyama/arena-backend/internal/logging"
	"github.com/shinyyama/arena-backend/internal/model"
	"github.com/shinyyama/arena-backend/internal/repository"
)

const (
	MinPasswordLength   = 6
	DefaultWelcomeBonus = 100
	maxUsernameLength   = 50
)

var validate = validator.New()

// Session is what register and login hand back to the client.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	// Authenticate verifies a bearer token and returns its claims.
	Authenticate(token string) (*auth.Claims, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

type authService struct {
	users        repository.UserRepository
	activity     ActivityLog
	tokens       *auth.TokenIssuer
	hasher       auth.PasswordHasher
	welcomeBonus int64
	now          func() time.Time
}

func NewAuthService(users repository.UserRepository, activity ActivityLog, tokens *auth.TokenIssuer, hasher auth.PasswordHasher, welcomeBonus int64) AuthService {
	if welcomeBonus < 0 {
		welcomeBonus = 0
	}
	return &authService{
		users:        users,
		activity:     activity,
		tokens:       tokens,
		hasher:       hasher,
		welcomeBonus: welcomeBonus,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	switch {
	case username == "":
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, fmt.Errorf("username is too long: %w", ErrValidation)
	case validate.Var(email, "required,email") != nil:
		return nil, fmt.Errorf("email is invalid: %w", ErrValidation)
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return nil, fmt.Errorf("password must be at least %d characters: %w", MinPasswordLength, ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Points:       s.welcomeBonus,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Lost a race with a concurrent registration for the same address.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, err
	}

	s.activity.Record(ctx, &model.Activity{
		UserID:      u.ID,
		Kind:        model.ActivityRegistration,
		Description: "Welcome bonus",
		PointsDelta: s.welcomeBonus,
	})
	logging.FromContext(ctx).Info().Str("user_id", u.ID).Msg("user registered")
	return s.session(u)
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAuthentication
		}
		return nil, err
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrAuthentication
		}
		return nil, err
	}

	s.activity.Record(ctx, &model.Activity{
		UserID:      u.ID,
		Kind:        model.ActivityLogin,
		Description: "Signed in",
	})
	return s.session(u)
}

func (s *authService) Authenticate(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *authService) session(u *model.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(u.ID, string(u.Role), u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}
