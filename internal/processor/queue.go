package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/engine"
	"minichess/internal/variant"
)

const (
	defaultSearchTime = 1000 // ms
	// Slack on top of the search deadline for time spent waiting in the queue
	queueGrace = 5 * time.Second
)

// EngineTask contains computer move calculation request and response channel
type EngineTask struct {
	GameID   string
	Variant  string
	FEN      string
	Color    core.Color
	Player   *core.Player // Level selects depth, SearchTime the deadline
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine calculation
type EngineResult struct {
	GameID     string
	Move       string // empty when the side to move has no moves
	Score      int
	Depth      int
	Nodes      int64
	Candidates int
	Complete   bool
	Error      error
}

// EngineQueue manages async engine computations
type EngineQueue struct {
	tasks    chan EngineTask
	workers  int
	variants []*variant.Config
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

// NewEngineQueue creates a queue with workerCount workers, each holding one
// engine per variant
func NewEngineQueue(workerCount int, variants ...*variant.Config) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:    make(chan EngineTask, 100),
		workers:  workerCount,
		variants: variants,
		ctx:      ctx,
		cancel:   cancel,
	}

	q.start()
	return q
}

func (q *EngineQueue) start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	engines := make(map[string]*engine.Engine, len(q.variants))
	for _, cfg := range q.variants {
		eng, err := engine.New(cfg, engine.WithMoveOrdering(true))
		if err != nil {
			log.Printf("Worker %d failed to initialize %s engine: %v", id, cfg.Name, err)
			continue
		}
		engines[cfg.Name] = eng
	}

	for {
		select {
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			result := q.processTask(engines[task.Variant], task)

			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
				// Receiver abandoned, discard result
			}

		case <-q.ctx.Done():
			return
		}
	}
}

// processTask runs one search bounded by the player's search time
func (q *EngineQueue) processTask(eng *engine.Engine, task EngineTask) EngineResult {
	result := EngineResult{GameID: task.GameID}

	if eng == nil {
		result.Error = fmt.Errorf("no engine for variant %q", task.Variant)
		return result
	}

	cfg := eng.Config()
	b, err := board.ParseFEN(task.FEN, cfg.Rows, cfg.Cols)
	if err != nil {
		result.Error = fmt.Errorf("engine position: %w", err)
		return result
	}

	searchTime := defaultSearchTime
	level := 0
	if task.Player != nil && task.Player.Type == core.PlayerComputer {
		if task.Player.SearchTime > 0 {
			searchTime = task.Player.SearchTime
		}
		level = task.Player.Level
	}

	ctx, cancel := context.WithTimeout(q.ctx, time.Duration(searchTime)*time.Millisecond)
	defer cancel()

	search, err := eng.ChooseMove(ctx, b, task.Color, eng.DepthForLevel(level))
	if err != nil {
		result.Error = fmt.Errorf("engine search failed: %w", err)
		return result
	}
	if search == nil {
		return result
	}

	result.Move = search.Move.Notation(cfg.Rows)
	result.Score = search.Score
	result.Depth = search.Depth
	result.Nodes = search.Nodes
	result.Candidates = search.Candidates
	result.Complete = search.Complete
	return result
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) (err error) {
	defer func() {
		// Send on a queue closed by Shutdown
		if recover() != nil {
			err = errors.New("queue is shutting down")
		}
	}()

	select {
	case <-q.ctx.Done():
		return errors.New("queue is shutting down")
	default:
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return errors.New("queue is full")
	}
}

// SubmitAsync submits a task and hands the result to callback from a
// separate goroutine. A result that misses the player's search time plus
// queueGrace is reported as a timeout error.
func (q *EngineQueue) SubmitAsync(gameID, variantName, fen string, color core.Color, player *core.Player, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)

	task := EngineTask{
		GameID:   gameID,
		Variant:  variantName,
		FEN:      fen,
		Color:    color,
		Player:   player,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	searchTime := defaultSearchTime
	if player != nil && player.SearchTime > 0 {
		searchTime = player.SearchTime
	}
	timeout := time.Duration(searchTime)*time.Millisecond + queueGrace

	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case result := <-respChan:
			callback(result)
		case <-timer.C:
			callback(EngineResult{
				GameID: gameID,
				Error:  errors.New("engine timeout"),
			})
		}
	}()

	return nil
}

// Shutdown stops the workers; searches in flight are cancelled
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.once.Do(func() {
		q.cancel()
		close(q.tasks)
	})

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
