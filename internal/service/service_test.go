package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"minichess/internal/core"
	"minichess/internal/game"
	"minichess/internal/storage"
)

const compactStart = "rqkr/pppp/4/PPPP/RQKR w"

func newStoreService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "svc.db"), false)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	svc := New(store, []byte("test-secret-test-secret-test-secret"))
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc
}

func players(whiteType, blackType core.PlayerType) (*core.Player, *core.Player) {
	return core.NewPlayer(core.PlayerConfig{Type: whiteType, Level: 1}, core.ColorWhite),
		core.NewPlayer(core.PlayerConfig{Type: blackType, Level: 1}, core.ColorBlack)
}

func TestGameLifecycle(t *testing.T) {
	svc := New(nil, nil)
	defer svc.Shutdown(time.Second)

	id := svc.GenerateGameID()
	white, black := players(core.PlayerHuman, core.PlayerComputer)
	if err := svc.CreateGame(id, "compact", white, black, compactStart, core.ColorWhite); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if err := svc.CreateGame(id, "compact", white, black, compactStart, core.ColorWhite); err == nil {
		t.Error("duplicate game ID accepted")
	}
	if svc.ComputerGameCount() != 1 {
		t.Errorf("computer games = %d, want 1", svc.ComputerGameCount())
	}

	result := &game.MoveResult{Move: "a2a3", PlayerColor: core.ColorWhite}
	if err := svc.ApplyMove(id, "a2a3", "rqkr/pppp/P3/1PPP/RQKR b", result); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	g, err := svc.GetGame(id)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if g.NextTurnColor() != core.ColorBlack || g.LastResult() != result {
		t.Error("move not recorded")
	}

	if err := svc.UpdateGameState(id, core.StateWhiteWins); err != nil {
		t.Fatalf("UpdateGameState failed: %v", err)
	}
	if err := svc.UndoMoves(id, 1); err != nil {
		t.Fatalf("UndoMoves failed: %v", err)
	}
	if g.MoveCount() != 0 || g.NextTurnColor() != core.ColorWhite {
		t.Error("undo did not restore the game")
	}

	hw, hb := players(core.PlayerHuman, core.PlayerHuman)
	if err := svc.UpdatePlayers(id, hw, hb); err != nil {
		t.Fatalf("UpdatePlayers failed: %v", err)
	}
	if svc.ComputerGameCount() != 0 {
		t.Errorf("computer games = %d after switching to humans", svc.ComputerGameCount())
	}

	if err := svc.DeleteGame(id); err != nil {
		t.Fatalf("DeleteGame failed: %v", err)
	}
	if _, err := svc.GetGame(id); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
	if err := svc.ApplyMove(id, "a2a3", "x", nil); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
	if svc.GetStorageHealth() != "disabled" {
		t.Errorf("storage health %q", svc.GetStorageHealth())
	}
}

func TestPersistedMoves(t *testing.T) {
	svc := newStoreService(t)
	id := svc.GenerateGameID()
	white, black := players(core.PlayerHuman, core.PlayerComputer)
	if err := svc.CreateGame(id, "compact", white, black, compactStart, core.ColorWhite); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	svc.ApplyMove(id, "a2a3", "rqkr/pppp/P3/1PPP/RQKR b", nil)
	svc.ApplyMove(id, "b4a3", "rqkr/p1pp/p3/1PPP/RQKR w", &game.MoveResult{Score: -100, Depth: 3, Nodes: 40})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.store.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	moves, err := svc.GameMoves(id)
	if err != nil {
		t.Fatalf("GameMoves failed: %v", err)
	}
	if len(moves) != 2 || moves[1].PlayerColor != "b" || moves[1].Depth != 3 {
		t.Errorf("unexpected moves %+v", moves)
	}
	if svc.GetStorageHealth() != "ok" {
		t.Errorf("storage health %q", svc.GetStorageHealth())
	}
}

func TestUsersAndTokens(t *testing.T) {
	svc := newStoreService(t)

	user, err := svc.CreateUser("alice", "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := svc.CreateUser("alice", "", "secret123"); !errors.Is(err, storage.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}

	if _, err := svc.AuthenticateUser("alice", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.AuthenticateUser("nobody", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	got, err := svc.AuthenticateUser("alice@example.com", "secret123")
	if err != nil || got.UserID != user.UserID {
		t.Fatalf("AuthenticateUser = %+v, %v", got, err)
	}

	token, err := svc.GenerateUserToken(user.UserID)
	if err != nil {
		t.Fatalf("GenerateUserToken failed: %v", err)
	}
	userID, claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != user.UserID || claims["username"] != "alice" {
		t.Errorf("token carried %q, %v", userID, claims)
	}
	if _, _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestUsersWithoutStorage(t *testing.T) {
	svc := New(nil, nil)
	if _, err := svc.CreateUser("alice", "", "secret123"); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("expected ErrStorageDisabled, got %v", err)
	}
}
