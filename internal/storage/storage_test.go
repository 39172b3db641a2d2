package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"), false)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}

func testGame(id string) GameRecord {
	return GameRecord{
		GameID:        id,
		Variant:       "compact",
		InitialFEN:    "rqkr/pppp/4/PPPP/RQKR w",
		WhitePlayerID: "white-" + id,
		WhiteType:     1,
		BlackPlayerID: "black-" + id,
		BlackType:     2,
		BlackLevel:    3,
		StartTimeUTC:  time.Now().UTC(),
	}
}

func TestGamesAndMoves(t *testing.T) {
	s := newTestStore(t)

	s.RecordNewGame(testGame("g1"))
	s.RecordNewGame(testGame("g2"))
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 1, Move: "a2a3", FENAfterMove: "rqkr/pppp/P3/1PPP/RQKR b", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})
	s.RecordMove(MoveRecord{GameID: "g1", MoveNumber: 2, Move: "b4a3", FENAfterMove: "rqkr/p1pp/p3/1PPP/RQKR w", PlayerColor: "b", Score: -120, Depth: 3, Nodes: 57, MoveTimeUTC: time.Now().UTC()})
	flush(t, s)

	games, err := s.QueryGames("*", "")
	if err != nil {
		t.Fatalf("QueryGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}

	games, err = s.QueryGames("", "black-g1")
	if err != nil {
		t.Fatalf("QueryGames failed: %v", err)
	}
	if len(games) != 1 || games[0].GameID != "g1" || games[0].Variant != "compact" || games[0].BlackLevel != 3 {
		t.Fatalf("unexpected games %+v", games)
	}

	moves, err := s.QueryMoves("g1")
	if err != nil {
		t.Fatalf("QueryMoves failed: %v", err)
	}
	if len(moves) != 2 || moves[1].Score != -120 || moves[1].Depth != 3 || moves[1].Nodes != 57 {
		t.Fatalf("unexpected moves %+v", moves)
	}

	s.DeleteUndoneMoves("g1", 1)
	flush(t, s)
	if moves, _ = s.QueryMoves("g1"); len(moves) != 1 || moves[0].Move != "a2a3" {
		t.Errorf("undo left %+v", moves)
	}

	updated := testGame("g2")
	updated.WhiteType = 2
	updated.WhiteLevel = 4
	s.UpdateGamePlayers(updated)
	flush(t, s)
	if games, _ = s.QueryGames("g2", ""); len(games) != 1 || games[0].WhiteLevel != 4 {
		t.Errorf("player update not stored: %+v", games)
	}

	if !s.IsHealthy() {
		t.Error("store should be healthy")
	}
}

func TestFailedWriteDegrades(t *testing.T) {
	s := newTestStore(t)
	s.RecordNewGame(testGame("g1"))
	move := MoveRecord{GameID: "g1", MoveNumber: 1, Move: "a2a3", FENAfterMove: "x", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()}
	s.RecordMove(move)
	s.RecordMove(move) // duplicate move number
	flush(t, s)

	if s.IsHealthy() {
		t.Fatal("store should be degraded after a failed write")
	}

	// Later writes are dropped but flushing still works
	s.RecordNewGame(testGame("g2"))
	flush(t, s)
	if games, _ := s.QueryGames("g2", ""); len(games) != 0 {
		t.Error("write accepted while degraded")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	record := UserRecord{UserID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	if err := s.CreateUser(record); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.CreateUser(UserRecord{UserID: "u2", Username: "ALICE", PasswordHash: "hash", CreatedAt: time.Now().UTC()}); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
	if err := s.CreateUser(UserRecord{UserID: "u3", Username: "bob", PasswordHash: "hash", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CreateUser without email failed: %v", err)
	}

	u, err := s.GetUserByUsername("Alice")
	if err != nil || u.UserID != "u1" {
		t.Fatalf("GetUserByUsername = %+v, %v", u, err)
	}
	if u, err = s.GetUserByEmail("ALICE@example.com"); err != nil || u.UserID != "u1" {
		t.Fatalf("GetUserByEmail = %+v, %v", u, err)
	}
	if u, err = s.GetUserByID("u3"); err != nil || u.Email != "" {
		t.Fatalf("GetUserByID = %+v, %v", u, err)
	}

	if err := s.UpdateUserLastLoginSync("u1", time.Now().UTC()); err != nil {
		t.Fatalf("UpdateUserLastLoginSync failed: %v", err)
	}
	if u, _ = s.GetUserByID("u1"); u.LastLoginAt == nil {
		t.Error("last login not stored")
	}

	if err := s.DeleteUserByID("u3"); err != nil {
		t.Fatalf("DeleteUserByID failed: %v", err)
	}
	users, err := s.GetAllUsers()
	if err != nil || len(users) != 1 {
		t.Errorf("GetAllUsers = %d users, %v", len(users), err)
	}
}
