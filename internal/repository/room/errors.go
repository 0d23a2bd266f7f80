package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrSyncStateNotFound = errors.New("sync state not found")
	ErrMemberNotFound    = errors.New("member not found")
)
