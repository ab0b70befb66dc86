package redlock

import "errors"

var (
	// ErrNotAcquired 多次重试后仍未拿到锁
	ErrNotAcquired = errors.New("lock not acquired after retries")
	// ErrNotHeld 锁已过期或被其他实例持有
	ErrNotHeld = errors.New("lock not held or already expired")
	// ErrEmptyName 锁名为空
	ErrEmptyName = errors.New("lock name is empty")
)
