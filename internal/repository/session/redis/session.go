package redis

import (
	"context"
	"fmt"

	"github.com/cineroom/server/internal/repository/session"
)

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	sessionKey := r.getSessionKey(params.Token)

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, sessionKey,
		"user_id", params.UserId,
		"expires_at", params.ExpiresAt,
	)
	pipe.Expire(ctx, sessionKey, params.TTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (r repo) GetSession(ctx context.Context, token string) (session.Session, error) {
	sessionKey := r.getSessionKey(token)
	res, err := r.rc.Exists(ctx, sessionKey).Result()
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to check if session exists: %w", err)
	}
	if res == 0 {
		return session.Session{}, session.ErrSessionNotFound
	}

	var s session.Session
	if err := r.rc.HGetAll(ctx, sessionKey).Scan(&s); err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

func (r repo) RemoveSession(ctx context.Context, token string) error {
	res, err := r.rc.Del(ctx, r.getSessionKey(token)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	if res == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}
