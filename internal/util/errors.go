package util

import "errors"

var (
	ErrAchievementNotFound = errors.New("achievement group not found")
	ErrInvalidInput        = errors.New("invalid input")
	// ErrConcurrentModification 并发写冲突重试次数耗尽
	ErrConcurrentModification = errors.New("achievement group was modified concurrently, please retry")
	ErrUnauthenticated        = errors.New("unauthenticated")
)
