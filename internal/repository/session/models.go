package session

import "time"

type User struct {
	Username     string `redis:"username"`
	Email        string `redis:"email"`
	DisplayName  string `redis:"display_name"`
	PasswordHash string `redis:"password_hash"`
	CreatedAt    int64  `redis:"created_at"`
}

type Session struct {
	UserId    string `redis:"user_id"`
	ExpiresAt int64  `redis:"expires_at"`
}

type SetUserParams struct {
	UserId       string
	Username     string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    int64
}

// SetSessionParams carries both the logical expiry (ExpiresAt, authority
// clock) and the storage TTL, they are checked independently.
type SetSessionParams struct {
	Token     string
	UserId    string
	ExpiresAt int64
	TTL       time.Duration
}
