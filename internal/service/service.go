package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"minichess/internal/game"
	"minichess/internal/storage"
)

const (
	MaxComputerGames = 10
	TokenTTL         = 7 * 24 * time.Hour
)

// ErrGameNotFound is returned for unknown game IDs
var ErrGameNotFound = errors.New("game not found")

// Service coordinates game state, user management, and storage
type Service struct {
	games         map[string]*game.Game
	mu            sync.RWMutex
	store         *storage.Store // nil if persistence disabled
	jwtSecret     []byte
	waiter        *WaitRegistry
	computerGames atomic.Int32
}

// New creates a new service instance with optional storage
func New(store *storage.Store, jwtSecret []byte) *Service {
	return &Service{
		games:     make(map[string]*game.Game),
		store:     store,
		jwtSecret: jwtSecret,
		waiter:    NewWaitRegistry(),
	}
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// RegisterWait registers a client to wait for game state changes. Call the
// returned func when done waiting.
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, func()) {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// ShuttingDown reports whether waits have been released for shutdown
func (s *Service) ShuttingDown() bool {
	return s.waiter.Closed()
}

// CanCreateComputerGame checks if a new computer game can be created
func (s *Service) CanCreateComputerGame() bool {
	return s.computerGames.Load() < MaxComputerGames
}

func (s *Service) ComputerGameCount() int32 {
	return s.computerGames.Load()
}

// Shutdown releases waiters and closes storage
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)
	s.computerGames.Store(0)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}
