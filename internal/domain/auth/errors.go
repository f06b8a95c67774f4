package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid user code or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserInactive       = errors.New("account is deactivated")
)
