package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/cineroom/server/internal/repository/session"
)

var (
	ErrInvalidSession     = errors.New("invalid session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyTaken  = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
)

// Identity is the resolved owner of a session token.
type Identity struct {
	UserId      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type iSessionRepo interface {
	SetUser(context.Context, *session.SetUserParams) error
	GetUser(context.Context, string) (session.User, error)
	GetUserIdByEmail(context.Context, string) (string, error)
	SetSession(context.Context, *session.SetSessionParams) error
	GetSession(context.Context, string) (session.Session, error)
	RemoveSession(context.Context, string) error
}

type Config struct {
	SessionTTL time.Duration
}

type service struct {
	sessionRepo iSessionRepo
	clock       clockwork.Clock
	sessionTTL  time.Duration
}

func NewService(sessionRepo iSessionRepo, clock clockwork.Clock, cfg *Config) *service {
	return &service{
		sessionRepo: sessionRepo,
		clock:       clock,
		sessionTTL:  cfg.SessionTTL,
	}
}

// Authenticate resolves a session token to an identity. Unknown and expired
// tokens are indistinguishable to the caller.
func (s service) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	sess, err := s.sessionRepo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return Identity{}, ErrInvalidSession
		}

		return Identity{}, err
	}

	if sess.ExpiresAt < s.clock.Now().UnixMilli() {
		s.sessionRepo.RemoveSession(ctx, token)
		return Identity{}, ErrInvalidSession
	}

	return s.GetIdentity(ctx, sess.UserId)
}

func (s service) GetIdentity(ctx context.Context, userId string) (Identity, error) {
	user, err := s.sessionRepo.GetUser(ctx, userId)
	if err != nil {
		if errors.Is(err, session.ErrUserNotFound) {
			return Identity{}, ErrInvalidSession
		}

		return Identity{}, err
	}

	return Identity{
		UserId:      userId,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}, nil
}
