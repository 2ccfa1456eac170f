package core

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("user already exists")
	ErrHistoryNotFound = errors.New("history not found")
)
