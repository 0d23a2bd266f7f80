package session

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailAlreadyTaken = errors.New("email already taken")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrSessionNotFound   = errors.New("session not found")
)
