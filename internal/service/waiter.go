package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second
)

// WaitRegistry manages clients waiting for game state changes, used by
// long-polling and the websocket stream
type WaitRegistry struct {
	mu       sync.RWMutex
	waiters  map[string][]*WaitRequest // gameID -> waiting clients
	shutdown chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// WaitRequest represents a single client waiting for game updates
type WaitRequest struct {
	GameID    string
	MoveCount int           // Last known move count
	Notify    chan struct{} // Buffered, receives once
	Timer     *time.Timer
	done      chan struct{}
	once      sync.Once
}

// release unregisters the request; safe to call more than once
func (r *WaitRequest) release() {
	r.once.Do(func() { close(r.done) })
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that fires when the game changes, the wait
// times out, or the registry shuts down. The caller must invoke the returned
// release func once it stops waiting.
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := &WaitRequest{
		GameID:    gameID,
		MoveCount: moveCount,
		Notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	if w.closed {
		req.Notify <- struct{}{}
		return req.Notify, req.release
	}

	req.Timer = time.AfterFunc(WaitTimeout, func() {
		signal(req)
	})
	w.waiters[gameID] = append(w.waiters[gameID], req)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
		case <-req.done:
		case <-w.shutdown:
			signal(req)
		}
		w.removeWaiter(gameID, req)
	}()

	return req.Notify, req.release
}

// Closed reports whether Shutdown has run
func (w *WaitRegistry) Closed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

// NotifyGame wakes waiters whose known move count differs from the current one
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, req := range w.waiters[gameID] {
		if req.MoveCount != currentMoveCount {
			signal(req)
		}
	}
}

// NotifyAll wakes every waiter of a game, used for state changes that do not
// add moves
func (w *WaitRegistry) NotifyAll(gameID string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, req := range w.waiters[gameID] {
		signal(req)
	}
}

// RemoveGame wakes and forgets all waiters for a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		signal(req)
	}
}

// Waiting reports how many clients wait on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.waiters[gameID])
}

// Shutdown wakes all waiters and waits for their goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.shutdown)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timeout exceeded")
	}
}

// signal delivers at most one pending notification without blocking
func signal(req *WaitRequest) {
	select {
	case req.Notify <- struct{}{}:
	default:
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}
	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}

	req.Timer.Stop()
}
