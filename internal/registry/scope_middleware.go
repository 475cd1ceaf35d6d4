package registry

import (
	"sync"

	"go.uber.org/zap"
)

// ScopeLocks hands out one mutex per project scope.
type ScopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewScopeLocks creates an empty lock table.
func NewScopeLocks() *ScopeLocks {
	return &ScopeLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex of the scope and returns its release function.
func (l *ScopeLocks) Lock(scope string) func() {
	l.mu.Lock()
	lock, ok := l.locks[scope]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[scope] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ScopeMiddleware wraps a registry edit so that edits of the same scope never interleave.
type ScopeMiddleware func(scope string, next func() error) func() error

// NewScopeMiddleware creates a ScopeMiddleware using the provided lock table.
func NewScopeMiddleware(locks *ScopeLocks, logger *zap.Logger) ScopeMiddleware {
	return func(scope string, next func() error) func() error {
		return func() error {
			unlock := locks.Lock(scope)
			defer unlock()

			logger.Debug("Acquired registry scope", zap.String("scope", scope))
			err := next()
			logger.Debug("Released registry scope", zap.String("scope", scope), zap.Error(err))
			return err
		}
	}
}
