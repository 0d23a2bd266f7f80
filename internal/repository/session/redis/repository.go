package redis

import (
	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc *redis.Client
}

func NewRepo(rc *redis.Client) *repo {
	return &repo{rc: rc}
}

func (r repo) getUserKey(userId string) string {
	return "user:" + userId
}

func (r repo) getEmailIndexKey() string {
	return "users:by-email"
}

func (r repo) getUsernameIndexKey() string {
	return "users:by-username"
}

func (r repo) getSessionKey(token string) string {
	return "session:" + token
}
