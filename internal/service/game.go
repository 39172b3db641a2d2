package service

import (
	"fmt"
	"time"

	"minichess/internal/core"
	"minichess/internal/game"
	"minichess/internal/storage"

	"github.com/google/uuid"
)

// CreateGame registers a new game with pre-constructed players
func (s *Service) CreateGame(id, variant string, whitePlayer, blackPlayer *core.Player, initialFEN string, startingTurn core.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return fmt.Errorf("game %s already exists", id)
	}

	s.games[id] = game.New(variant, initialFEN, whitePlayer, blackPlayer, startingTurn)
	if hasComputer(whitePlayer, blackPlayer) {
		s.computerGames.Add(1)
	}

	if s.store != nil {
		record := gameRecord(id, whitePlayer, blackPlayer)
		record.Variant = variant
		record.InitialFEN = initialFEN
		record.StartTimeUTC = time.Now().UTC()
		s.store.RecordNewGame(record)
	}

	return nil
}

// UpdatePlayers replaces players in an existing game
func (s *Service) UpdatePlayers(gameID string, whitePlayer, blackPlayer *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	before := hasComputer(g.GetPlayer(core.ColorWhite), g.GetPlayer(core.ColorBlack))
	after := hasComputer(whitePlayer, blackPlayer)
	switch {
	case before && !after:
		s.computerGames.Add(-1)
	case !before && after:
		s.computerGames.Add(1)
	}

	g.UpdatePlayers(whitePlayer, blackPlayer)
	s.waiter.NotifyAll(gameID)

	if s.store != nil {
		s.store.UpdateGamePlayers(gameRecord(gameID, whitePlayer, blackPlayer))
	}

	return nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// ApplyMove adds a validated move to the game history along with its result
func (s *Service) ApplyMove(gameID, move, newFEN string, result *game.MoveResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	currentTurn := g.NextTurnColor()
	g.AddSnapshot(newFEN, move, core.OppositeColor(currentTurn))
	g.SetLastResult(result)

	s.waiter.NotifyGame(gameID, g.MoveCount())

	if s.store != nil {
		record := storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   g.MoveCount(),
			Move:         move,
			FENAfterMove: newFEN,
			PlayerColor:  currentTurn.String(),
			MoveTimeUTC:  time.Now().UTC(),
		}
		if result != nil {
			record.Score = result.Score
			record.Depth = result.Depth
			record.Nodes = result.Nodes
		}
		s.store.RecordMove(record)
	}

	return nil
}

// UpdateGameState sets the game's state and wakes watchers
func (s *Service) UpdateGameState(gameID string, state core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if g.State() == state {
		return nil
	}
	g.SetState(state)
	s.waiter.NotifyAll(gameID)

	return nil
}

// UndoMoves removes the specified number of moves from game history
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if err := g.UndoMoves(count); err != nil {
		return err
	}

	s.waiter.NotifyGame(gameID, g.MoveCount())

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, g.MoveCount())
	}

	return nil
}

// DeleteGame removes a game from memory. Persisted history is kept.
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	if hasComputer(g.GetPlayer(core.ColorWhite), g.GetPlayer(core.ColorBlack)) {
		s.computerGames.Add(-1)
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)
	return nil
}

// GameMoves returns persisted moves with engine statistics
func (s *Service) GameMoves(gameID string) ([]storage.MoveRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage disabled")
	}
	return s.store.QueryMoves(gameID)
}

func hasComputer(players ...*core.Player) bool {
	for _, p := range players {
		if p != nil && p.Type == core.PlayerComputer {
			return true
		}
	}
	return false
}

func gameRecord(gameID string, white, black *core.Player) storage.GameRecord {
	return storage.GameRecord{
		GameID:          gameID,
		WhitePlayerID:   white.ID,
		WhiteType:       int(white.Type),
		WhiteLevel:      white.Level,
		WhiteSearchTime: white.SearchTime,
		BlackPlayerID:   black.ID,
		BlackType:       int(black.Type),
		BlackLevel:      black.Level,
		BlackSearchTime: black.SearchTime,
	}
}
