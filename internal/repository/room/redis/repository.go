package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId
}

func (r repo) getSyncStateKey(roomId string) string {
	return "room:" + roomId + ":player"
}

func (r repo) getMemberListKey(roomId string) string {
	return "room:" + roomId + ":members"
}

func (r repo) getMemberKey(roomId, userId string) string {
	return "room:" + roomId + ":member:" + userId
}

func (r repo) getPublicRoomsKey() string {
	return "rooms:public"
}

func (r repo) getWatchLogKey(userId string) string {
	return "user:" + userId + ":watchlog"
}
