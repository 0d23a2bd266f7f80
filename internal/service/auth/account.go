package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cineroom/server/internal/repository/session"
)

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type AuthResponse struct {
	Token    string
	Identity Identity
}

func (s service) Register(ctx context.Context, params *RegisterParams) (AuthResponse, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	userId := uuid.NewString()
	if err := s.sessionRepo.SetUser(ctx, &session.SetUserParams{
		UserId:       userId,
		Username:     params.Username,
		Email:        params.Email,
		DisplayName:  params.DisplayName,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.clock.Now().UnixMilli(),
	}); err != nil {
		switch {
		case errors.Is(err, session.ErrEmailAlreadyTaken):
			return AuthResponse{}, ErrEmailAlreadyTaken
		case errors.Is(err, session.ErrUsernameTaken):
			return AuthResponse{}, ErrUsernameTaken
		}

		return AuthResponse{}, fmt.Errorf("failed to set user: %w", err)
	}

	return s.createSession(ctx, userId, params.Username, params.DisplayName)
}

type LoginParams struct {
	Email    string
	Password string
}

func (s service) Login(ctx context.Context, params *LoginParams) (AuthResponse, error) {
	userId, err := s.sessionRepo.GetUserIdByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, session.ErrUserNotFound) {
			return AuthResponse{}, ErrInvalidCredentials
		}

		return AuthResponse{}, fmt.Errorf("failed to get user id by email: %w", err)
	}

	user, err := s.sessionRepo.GetUser(ctx, userId)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return AuthResponse{}, ErrInvalidCredentials
	}

	return s.createSession(ctx, userId, user.Username, user.DisplayName)
}

func (s service) Logout(ctx context.Context, token string) error {
	if err := s.sessionRepo.RemoveSession(ctx, token); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ErrInvalidSession
		}

		return fmt.Errorf("failed to remove session: %w", err)
	}

	return nil
}

func (s service) createSession(ctx context.Context, userId, username, displayName string) (AuthResponse, error) {
	token := uuid.NewString()
	if err := s.sessionRepo.SetSession(ctx, &session.SetSessionParams{
		Token:     token,
		UserId:    userId,
		ExpiresAt: s.clock.Now().Add(s.sessionTTL).UnixMilli(),
		TTL:       s.sessionTTL,
	}); err != nil {
		return AuthResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	return AuthResponse{
		Token: token,
		Identity: Identity{
			UserId:      userId,
			Username:    username,
			DisplayName: displayName,
		},
	}, nil
}
