package database

import "errors"

var (
	ErrEmailTaken     = errors.New("email already registered")
	ErrUserNotFound   = errors.New("user not found")
	ErrSessionInvalid = errors.New("session not found or expired")
)
