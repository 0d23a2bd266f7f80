package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cineroom/server/internal/repository/session"
)

func (r repo) SetUser(ctx context.Context, params *session.SetUserParams) error {
	// claim the unique indexes first so a duplicate registration fails
	// before the user hash is written
	ok, err := r.rc.HSetNX(ctx, r.getEmailIndexKey(), params.Email, params.UserId).Result()
	if err != nil {
		return fmt.Errorf("failed to claim email: %w", err)
	}
	if !ok {
		return session.ErrEmailAlreadyTaken
	}

	ok, err = r.rc.HSetNX(ctx, r.getUsernameIndexKey(), params.Username, params.UserId).Result()
	if err != nil {
		return fmt.Errorf("failed to claim username: %w", err)
	}
	if !ok {
		r.rc.HDel(ctx, r.getEmailIndexKey(), params.Email)
		return session.ErrUsernameTaken
	}

	if err := r.rc.HSet(ctx, r.getUserKey(params.UserId),
		"username", params.Username,
		"email", params.Email,
		"display_name", params.DisplayName,
		"password_hash", params.PasswordHash,
		"created_at", params.CreatedAt,
	).Err(); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}

	return nil
}

func (r repo) GetUser(ctx context.Context, userId string) (session.User, error) {
	userKey := r.getUserKey(userId)
	res, err := r.rc.Exists(ctx, userKey).Result()
	if err != nil {
		return session.User{}, fmt.Errorf("failed to check if user exists: %w", err)
	}
	if res == 0 {
		return session.User{}, session.ErrUserNotFound
	}

	var user session.User
	if err := r.rc.HGetAll(ctx, userKey).Scan(&user); err != nil {
		return session.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r repo) GetUserIdByEmail(ctx context.Context, email string) (string, error) {
	userId, err := r.rc.HGet(ctx, r.getEmailIndexKey(), email).Result()
	if err != nil {
		if err == redis.Nil {
			return "", session.ErrUserNotFound
		}

		return "", fmt.Errorf("failed to get user id by email: %w", err)
	}

	return userId, nil
}
