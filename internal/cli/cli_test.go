package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"minichess/internal/board"
	"minichess/internal/core"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantType CommandType
		wantArgs []string
	}{
		{"", CmdNone, nil},
		{"   ", CmdNone, nil},
		{"new classic b", CmdNew, []string{"classic", "b"}},
		{"a2a3", CmdMove, []string{"a2a3"}},
		{"B4B5Q", CmdMove, []string{"b4b5q"}},
		{"moves a2", CmdMoves, []string{"a2"}},
		{"undo", CmdUndo, []string{}},
		{"level 3", CmdLevel, []string{"3"}},
		{"show", CmdShow, nil},
		{"history", CmdHistory, nil},
		{"?", CmdHelp, nil},
		{"exit", CmdQuit, nil},
		{"quit", CmdQuit, nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			if cmd.Type != tt.wantType {
				t.Fatalf("type = %d, want %d", cmd.Type, tt.wantType)
			}
			if strings.Join(cmd.Args, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("args = %v, want %v", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func newTestSession(t *testing.T, opts Options) (*Session, *bytes.Buffer) {
	t.Helper()
	if opts.Level == 0 {
		opts.Level = 1
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	if opts.SearchTime == 0 {
		opts.SearchTime = 5 * time.Second
	}

	var buf bytes.Buffer
	s, err := NewSession(&buf, opts)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, &buf
}

// loadPosition restarts the session's game from fen
func loadPosition(t *testing.T, s *Session, fen string, human core.Color) {
	t.Helper()
	b, err := board.ParseFEN(fen, s.rs.cfg.Rows, s.rs.cfg.Cols)
	if err != nil {
		t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
	}
	s.startGame(s.rs, b, human)
}

func TestHumanMoveGetsReply(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	if !s.Execute("a2a3") {
		t.Fatal("move ended the loop")
	}
	if got := s.game.MoveCount(); got != 2 {
		t.Fatalf("move count = %d, want 2", got)
	}
	if moves := s.game.Moves(); moves[0] != "a2a3" {
		t.Errorf("first move = %s, want a2a3", moves[0])
	}
	if s.game.NextTurnColor() != core.ColorWhite {
		t.Error("white should be to move after the reply")
	}
	if !strings.Contains(buf.String(), "Computer (b):") {
		t.Errorf("reply not announced: %q", buf.String())
	}
}

func TestRejectedMoves(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	tests := []struct {
		input string
		want  string
	}{
		{"a2a4", "illegal move"},
		{"a5a4", "illegal move"},
		{"zz", "invalid move"},
		{"a2a3n", "illegal move"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			buf.Reset()
			s.Execute(tt.input)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
			if s.game.MoveCount() != 0 {
				t.Errorf("rejected move was recorded")
			}
		})
	}
}

func TestComputerOpensAsWhite(t *testing.T) {
	s, _ := newTestSession(t, Options{Human: core.ColorBlack})
	s.Start()

	if got := s.game.MoveCount(); got != 1 {
		t.Fatalf("move count = %d, want 1", got)
	}
	if s.game.NextTurnColor() != core.ColorBlack {
		t.Error("black should be to move")
	}
}

func TestNewGameArguments(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	s.Execute("new classic b")
	if s.rs.cfg.Name != "classic" || s.human != core.ColorBlack {
		t.Fatalf("got %s as %s, want classic as black", s.rs.cfg.Name, s.human.Name())
	}
	if got := s.game.MoveCount(); got != 1 {
		t.Errorf("computer did not open: move count %d", got)
	}

	s.Execute("new w")
	if s.rs.cfg.Name != "classic" || s.human != core.ColorWhite {
		t.Errorf("got %s as %s, want classic as white", s.rs.cfg.Name, s.human.Name())
	}

	buf.Reset()
	s.Execute("new bughouse")
	if !strings.Contains(buf.String(), "unknown variant") {
		t.Errorf("output = %q", buf.String())
	}
	if s.rs.cfg.Name != "classic" {
		t.Error("failed new replaced the game")
	}
}

func TestMovesListing(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	s.Execute("moves a2")
	if got := strings.TrimSpace(buf.String()); got != "a2a3" {
		t.Errorf("moves a2 = %q, want a2a3", got)
	}

	buf.Reset()
	s.Execute("moves")
	if got := len(strings.Fields(buf.String())); got != 4 {
		t.Errorf("start position lists %d moves, want 4", got)
	}

	buf.Reset()
	s.Execute("moves a5")
	if !strings.Contains(buf.String(), "No legal moves") {
		t.Errorf("opponent square listed moves: %q", buf.String())
	}

	buf.Reset()
	s.Execute("moves z9")
	if !strings.Contains(buf.String(), "invalid square") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestUndoReturnsToHumanTurn(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	s.Execute("undo")
	if !strings.Contains(buf.String(), "Nothing to undo") {
		t.Errorf("output = %q", buf.String())
	}

	s.Execute("a2a3")
	s.Execute("undo")
	if got := s.game.MoveCount(); got != 0 {
		t.Fatalf("move count after undo = %d, want 0", got)
	}
	if s.game.NextTurnColor() != core.ColorWhite {
		t.Error("white should be to move after undo")
	}
}

func TestHumanCapturesKing(t *testing.T) {
	s, buf := newTestSession(t, Options{})
	loadPosition(t, s, "k3/4/4/4/Q2K w", core.ColorWhite)

	s.Execute("a1a5")
	if s.game.State() != core.StateWhiteWins {
		t.Fatalf("state = %s, want white wins", s.game.State())
	}
	if !strings.Contains(buf.String(), "Game Over: white wins") {
		t.Errorf("output = %q", buf.String())
	}
	if s.game.MoveCount() != 1 {
		t.Error("computer moved after the game ended")
	}

	buf.Reset()
	s.Execute("d1d2")
	if !strings.Contains(buf.String(), "Game is over") {
		t.Errorf("output = %q", buf.String())
	}

	s.Execute("undo")
	if s.game.State() != core.StateOngoing || s.game.MoveCount() != 0 {
		t.Errorf("undo left state %s with %d moves", s.game.State(), s.game.MoveCount())
	}
}

func TestComputerCapturesKing(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	loadPosition(t, s, "q2k/4/4/4/K3 b", core.ColorWhite)

	s.maybeComputerMove()
	if s.game.State() != core.StateBlackWins {
		t.Fatalf("state = %s, want black wins", s.game.State())
	}
	if got := s.game.Moves(); len(got) != 1 || got[0] != "a5a1" {
		t.Errorf("moves = %v, want [a5a1]", got)
	}
}

func TestPromotion(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	loadPosition(t, s, "3k/P3/4/4/3K w", core.ColorWhite)

	s.Execute("a4a5")
	if got := s.game.Moves()[0]; got != "a4a5q" {
		t.Errorf("recorded %s, want a4a5q", got)
	}
}

func TestLevel(t *testing.T) {
	s, buf := newTestSession(t, Options{})

	s.Execute("level 9")
	if !strings.Contains(buf.String(), "between 1 and 5") {
		t.Errorf("output = %q", buf.String())
	}

	s.Execute("level 3")
	if s.level != 3 {
		t.Errorf("level = %d, want 3", s.level)
	}
}

func TestQuit(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	if s.Execute("exit") {
		t.Error("exit did not end the loop")
	}
	if !s.Execute("help") {
		t.Error("help ended the loop")
	}
}
