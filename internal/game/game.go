package game

import (
	"fmt"
	"sync"

	"minichess/internal/core"
)

type Snapshot struct {
	FEN           string     `json:"fen"`
	PreviousMove  string     `json:"previousMove"`
	NextTurnColor core.Color `json:"nextTurnColor"`
	PlayerID      string     `json:"playerId"` // ID of the player whose turn it is
}

// MoveResult tracks the outcome of a move
type MoveResult struct {
	Move        string     `json:"move"`
	PlayerColor core.Color `json:"playerColor"`
	GameState   core.State `json:"gameState"`
	Score       int        `json:"score"`
	Depth       int        `json:"depth"`
	Nodes       int64      `json:"nodes"`
}

// Game is safe for concurrent use; engine callbacks update it while
// handlers read it
type Game struct {
	mu         sync.RWMutex
	variant    string
	snapshots  []Snapshot
	players    map[core.Color]*core.Player
	state      core.State
	lastResult *MoveResult
}

func New(variant, initialFEN string, whitePlayer, blackPlayer *core.Player, startingTurnColor core.Color) *Game {
	var initialPlayerID string
	if startingTurnColor == core.ColorWhite {
		initialPlayerID = whitePlayer.ID
	} else {
		initialPlayerID = blackPlayer.ID
	}

	return &Game{
		variant: variant,
		snapshots: []Snapshot{
			{
				FEN:           initialFEN,
				NextTurnColor: startingTurnColor,
				PlayerID:      initialPlayerID,
			},
		},
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
		state: core.StateOngoing,
	}
}

// Variant names the board configuration the game is played on
func (g *Game) Variant() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.variant
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastResult
}

// CurrentSnapshot returns the latest game snapshot
func (g *Game) CurrentSnapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current()
}

func (g *Game) current() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

func (g *Game) InitialFEN() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshots[0].FEN
}

func (g *Game) NextTurnColor() core.Color {
	return g.CurrentSnapshot().NextTurnColor
}

func (g *Game) NextPlayer() *core.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[g.current().NextTurnColor]
}

func (g *Game) GetPlayer(color core.Color) *core.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[color]
}

func (g *Game) AddSnapshot(fen string, move string, nextTurnColor core.Color) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:           fen,
		PreviousMove:  move,
		NextTurnColor: nextTurnColor,
		PlayerID:      g.players[nextTurnColor].ID,
	})
}

func (g *Game) UpdatePlayers(whitePlayer, blackPlayer *core.Player) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.players[core.ColorWhite] = whitePlayer
	g.players[core.ColorBlack] = blackPlayer

	// Current snapshot follows the new owner of the side to move
	current := &g.snapshots[len(g.snapshots)-1]
	current.PlayerID = g.players[current.NextTurnColor].ID
}

func (g *Game) UndoMoves(count int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	available := len(g.snapshots) - 1
	if available < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, available)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.state = core.StateOngoing
	g.lastResult = nil
	return nil
}

func (g *Game) Moves() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	moves := make([]string, 0, len(g.snapshots)-1)
	for _, s := range g.snapshots[1:] {
		moves = append(moves, s.PreviousMove)
	}
	return moves
}

func (g *Game) MoveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.snapshots) - 1
}

func (g *Game) State() core.State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Game) SetState(s core.State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}
