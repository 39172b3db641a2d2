// Package engine picks moves with a fixed-depth minimax search and
// alpha-beta pruning. Root moves are scored concurrently, each on its own
// board copy, and ties among the best are broken at random.
package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/eval"
	"minichess/internal/movegen"
	"minichess/internal/variant"
)

const (
	// NoMovesScore is returned for a side that cannot move
	NoMovesScore = 9999
	// KingLostScore exceeds any material total; remaining depth is added so
	// earlier king captures score higher
	KingLostScore = 100000

	infinity = 1 << 30

	// Nodes between context checks
	cancelCheckInterval = 512
)

// SearchResult describes the chosen move
type SearchResult struct {
	Move       core.Move
	Score      int   // from White's point of view
	Depth      int   // plies searched below the root
	Nodes      int64 // positions visited
	Candidates int   // root moves sharing the best score
	Complete   bool  // false when the deadline cut the search short
}

type Engine struct {
	cfg      *variant.Config
	gen      *movegen.Generator
	eval     eval.Evaluator
	workers  int
	ordering bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Engine)

// WithRand sets the tie-break source
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithSeed makes tie-breaks reproducible
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithWorkers bounds the goroutines scoring root moves
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMoveOrdering tries captures first inside the tree. Scores are
// unchanged; only the amount of pruning differs.
func WithMoveOrdering(enabled bool) Option {
	return func(e *Engine) {
		e.ordering = enabled
	}
}

// WithEvaluator replaces the variant's default evaluator
func WithEvaluator(ev eval.Evaluator) Option {
	return func(e *Engine) {
		e.eval = ev
	}
}

// New validates cfg and builds an engine for it
func New(cfg *variant.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, &variant.ConfigurationError{Field: "config", Reason: "nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		gen:     movegen.New(cfg),
		eval:    eval.New(cfg),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e, nil
}

func (e *Engine) Config() *variant.Config {
	return e.cfg
}

func (e *Engine) Generator() *movegen.Generator {
	return e.gen
}

// Evaluate scores b with the engine's evaluator
func (e *Engine) Evaluate(b *board.Board) int {
	return e.eval.Evaluate(b)
}

// DepthForLevel maps a difficulty level onto a search depth
func (e *Engine) DepthForLevel(level int) int {
	return e.cfg.DepthForLevel(level)
}

// ChooseMove searches depth plies for color and returns the best move. The
// result is nil when color has no moves. When ctx ends early the best fully
// scored root move is returned, or a random legal move if none finished.
// The input board is never modified.
func (e *Engine) ChooseMove(ctx context.Context, b *board.Board, color core.Color, depth int) (*SearchResult, error) {
	if b == nil {
		return nil, fmt.Errorf("nil board")
	}
	if b.Rows() != e.cfg.Rows || b.Cols() != e.cfg.Cols {
		return nil, fmt.Errorf("board is %dx%d, engine configured for %dx%d", b.Rows(), b.Cols(), e.cfg.Rows, e.cfg.Cols)
	}
	if color != core.ColorWhite && color != core.ColorBlack {
		return nil, fmt.Errorf("invalid color %q", color)
	}
	if depth < 1 {
		depth = 1
	}

	root := b.WithTurn(color)
	moves := e.gen.AllMoves(root, color)
	if len(moves) == 0 {
		return nil, nil
	}

	scores := make([]int, len(moves))
	scored := make([]bool, len(moves))
	var nodes atomic.Int64

	workers := min(e.workers, len(moves))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s := &searcher{engine: e, ctx: ctx}
				child, err := root.ApplyMove(moves[i])
				if err != nil {
					continue
				}
				score := s.minimax(child, depth-1, -infinity, infinity, color == core.ColorBlack)
				nodes.Add(s.nodes)
				if !s.aborted {
					scores[i] = score
					scored[i] = true
				}
			}
		}()
	}

feed:
	for i := range moves {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	result := &SearchResult{Depth: depth, Nodes: nodes.Load(), Complete: true}

	var best []int
	bestScore := 0
	for i := range moves {
		if !scored[i] {
			result.Complete = false
			continue
		}
		better := len(best) == 0 ||
			(color == core.ColorWhite && scores[i] > bestScore) ||
			(color == core.ColorBlack && scores[i] < bestScore)
		switch {
		case better:
			best = append(best[:0], i)
			bestScore = scores[i]
		case scores[i] == bestScore:
			best = append(best, i)
		}
	}

	if len(best) == 0 {
		m := moves[e.intN(len(moves))]
		result.Move = m
		if child, err := root.ApplyMove(m); err == nil {
			result.Score = e.eval.Evaluate(child)
		}
		result.Depth = 0
		result.Candidates = 1
		return result, nil
	}

	result.Move = moves[best[e.intN(len(best))]]
	result.Score = bestScore
	result.Candidates = len(best)
	return result, nil
}

func (e *Engine) intN(n int) int {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return e.rng.IntN(n)
}

// searcher carries per-goroutine search state
type searcher struct {
	engine  *Engine
	ctx     context.Context
	nodes   int64
	aborted bool
}

func (s *searcher) minimax(b *board.Board, depth, alpha, beta int, maximizing bool) int {
	s.nodes++
	if s.nodes%cancelCheckInterval == 0 && s.ctx.Err() != nil {
		s.aborted = true
	}
	if s.aborted {
		return 0
	}

	whiteKing, blackKing := b.HasKing(core.ColorWhite), b.HasKing(core.ColorBlack)
	switch {
	case !whiteKing && !blackKing:
		// The side that just moved took the last king
		if maximizing {
			return -(KingLostScore + depth)
		}
		return KingLostScore + depth
	case !whiteKing:
		return -(KingLostScore + depth)
	case !blackKing:
		return KingLostScore + depth
	}

	if depth == 0 {
		return s.engine.eval.Evaluate(b)
	}

	color := core.ColorBlack
	if maximizing {
		color = core.ColorWhite
	}
	moves := s.engine.gen.AllMoves(b, color)
	if len(moves) == 0 {
		if maximizing {
			return -NoMovesScore
		}
		return NoMovesScore
	}
	if s.engine.ordering {
		s.engine.orderMoves(b, moves)
	}

	if maximizing {
		best := -infinity
		for _, m := range moves {
			child, err := b.ApplyMove(m)
			if err != nil {
				continue
			}
			best = max(best, s.minimax(child, depth-1, alpha, beta, false))
			alpha = max(alpha, best)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := infinity
	for _, m := range moves {
		child, err := b.ApplyMove(m)
		if err != nil {
			continue
		}
		best = min(best, s.minimax(child, depth-1, alpha, beta, true))
		beta = min(beta, best)
		if beta <= alpha {
			break
		}
	}
	return best
}

// orderMoves puts captures first, most valuable victim first. The sort is
// stable so quiet moves keep generation order.
func (e *Engine) orderMoves(b *board.Board, moves []core.Move) {
	victim := func(m core.Move) int {
		p := b.At(m.To)
		if p.IsEmpty() {
			return 0
		}
		return e.cfg.PieceValues[p.Type]
	}
	slices.SortStableFunc(moves, func(a, c core.Move) int {
		return victim(c) - victim(a)
	})
}
