package processor

import (
	"slices"
	"strings"
	"testing"
	"time"

	"minichess/internal/core"
	"minichess/internal/service"
)

var (
	human    = core.PlayerConfig{Type: core.PlayerHuman}
	computer = core.PlayerConfig{Type: core.PlayerComputer, Level: 1, SearchTime: 200}
)

func newProcessor(t *testing.T) *Processor {
	t.Helper()
	svc := service.New(nil, nil)
	p, err := New(svc, 1)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		p.Close()
		svc.Shutdown(time.Second)
	})
	return p
}

func createGame(t *testing.T, p *Processor, req core.CreateGameRequest) core.GameResponse {
	t.Helper()
	resp := p.Execute(NewCreateGameCommand(req))
	if !resp.Success {
		t.Fatalf("create failed: %+v", resp.Error)
	}
	return resp.Data.(core.GameResponse)
}

func expectError(t *testing.T, resp ProcessorResponse, code string) {
	t.Helper()
	if resp.Success {
		t.Fatalf("expected %s, got success", code)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("expected %s, got %+v", code, resp.Error)
	}
}

func TestCreateGame(t *testing.T) {
	p := newProcessor(t)

	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: human})
	if gr.Variant != "compact" || gr.FEN != "rqkr/pppp/4/PPPP/RQKR w" || gr.State != "ongoing" {
		t.Errorf("unexpected default game %+v", gr)
	}
	if len(gr.Layout) != 5 || len(gr.Layout[0]) != 4 || gr.Layout[0][2] != "k" {
		t.Errorf("unexpected layout %v", gr.Layout)
	}

	classic := createGame(t, p, core.CreateGameRequest{Variant: "classic", White: human, Black: human, Turn: "b"})
	if classic.Turn != "b" || len(classic.Layout) != 8 {
		t.Errorf("unexpected classic game %+v", classic)
	}

	tests := []struct {
		name string
		req  core.CreateGameRequest
		code string
	}{
		{"unknown variant", core.CreateGameRequest{Variant: "giant", White: human, Black: human}, core.ErrInvalidVariant},
		{"bad fen", core.CreateGameRequest{FEN: "rqkr/pppp w", White: human, Black: human}, core.ErrInvalidLayout},
		{"missing king", core.CreateGameRequest{FEN: "r3/4/4/4/R2K w", White: human, Black: human}, core.ErrInvalidLayout},
		{"ragged layout", core.CreateGameRequest{
			Layout: [][]string{{"k", "", "", ""}, {""}, {"", "", "", ""}, {"", "", "", ""}, {"K", "", "", ""}},
			White:  human, Black: human,
		}, core.ErrInvalidLayout},
		{"wrong shape", core.CreateGameRequest{
			Layout: [][]string{{"k", ""}, {"", "K"}},
			White:  human, Black: human,
		}, core.ErrInvalidLayout},
		{"bad turn", core.CreateGameRequest{Turn: "x", White: human, Black: human}, core.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, p.Execute(NewCreateGameCommand(tt.req)), tt.code)
		})
	}
}

func TestCreateFromLayout(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{
		Layout: [][]string{
			{"k", "", "", ""},
			{"", "", "", ""},
			{"", "", "", ""},
			{"", "", "", ""},
			{"Q", ".", " ", "K"},
		},
		Turn:  "w",
		White: human,
		Black: human,
	})
	if gr.FEN != "k3/4/4/4/Q2K w" {
		t.Errorf("FEN = %q", gr.FEN)
	}
}

func TestCreateDecidedPosition(t *testing.T) {
	p := newProcessor(t)
	// Black king walled in by its own pawns, none of which can move
	gr := createGame(t, p, core.CreateGameRequest{FEN: "kp2/pp2/pp2/pp2/pp1K b", White: human, Black: human})
	if gr.State != "white wins" {
		t.Errorf("state = %q, want white wins", gr.State)
	}
}

func TestHumanMoves(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: human})

	resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "A2A3"}))
	if !resp.Success {
		t.Fatalf("move failed: %+v", resp.Error)
	}
	after := resp.Data.(core.GameResponse)
	if after.FEN != "rqkr/pppp/P3/1PPP/RQKR b" || !slices.Equal(after.Moves, []string{"a2a3"}) {
		t.Errorf("unexpected game after move %+v", after)
	}
	if after.LastMove == nil || after.LastMove.PlayerColor != "w" {
		t.Errorf("last move %+v", after.LastMove)
	}

	tests := []struct {
		name string
		move string
		code string
	}{
		{"wrong side", "a3a4", core.ErrInvalidMove},
		{"garbage", "zz", core.ErrInvalidMove},
		{"off board", "a5a6", core.ErrInvalidMove},
		{"blocked", "a5a4", core.ErrInvalidMove},
		{"computer on human turn", ComputerMove, core.ErrNotHumanTurn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: tt.move})), tt.code)
		})
	}

	expectError(t, p.Execute(NewMakeMoveCommand("missing", core.MoveRequest{Move: "a2a3"})), core.ErrGameNotFound)
}

func TestKingCaptureEndsGame(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{FEN: "k3/4/4/4/Q2K w", White: human, Black: human})

	resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "a1a5"}))
	if !resp.Success {
		t.Fatalf("move failed: %+v", resp.Error)
	}
	if state := resp.Data.(core.GameResponse).State; state != "white wins" {
		t.Fatalf("state = %q, want white wins", state)
	}

	expectError(t, p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "d1d2"})), core.ErrGameOver)

	moves := p.Execute(NewGetMovesCommand(gr.GameID, "")).Data.(core.MovesResponse)
	if len(moves.Moves) != 0 {
		t.Errorf("finished game lists moves %v", moves.Moves)
	}

	undo := p.Execute(NewUndoMoveCommand(gr.GameID, core.UndoRequest{Count: 1}))
	if !undo.Success || undo.Data.(core.GameResponse).State != "ongoing" {
		t.Errorf("undo did not reopen the game: %+v", undo)
	}
}

func TestPromotionIsForced(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{FEN: "3k/P3/4/4/3K w", White: human, Black: human})

	expectError(t, p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "a4a5n"})), core.ErrInvalidMove)

	resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "a4a5"}))
	if !resp.Success {
		t.Fatalf("move failed: %+v", resp.Error)
	}
	after := resp.Data.(core.GameResponse)
	if after.FEN != "Q2k/4/4/4/3K b" || after.Moves[0] != "a4a5q" {
		t.Errorf("promotion not applied: %+v", after)
	}
}

func TestGetMovesAndBoard(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: human})

	all := p.Execute(NewGetMovesCommand(gr.GameID, "")).Data.(core.MovesResponse)
	want := []string{"a2a3", "b2b3", "c2c3", "d2d3"}
	if all.Turn != "w" || !slices.Equal(all.Moves, want) {
		t.Errorf("moves = %v, want %v", all.Moves, want)
	}

	from := p.Execute(NewGetMovesCommand(gr.GameID, "b2")).Data.(core.MovesResponse)
	if !slices.Equal(from.Moves, []string{"b2b3"}) {
		t.Errorf("moves from b2 = %v", from.Moves)
	}

	opponent := p.Execute(NewGetMovesCommand(gr.GameID, "b4")).Data.(core.MovesResponse)
	if len(opponent.Moves) != 0 {
		t.Errorf("moves for the side not to move = %v", opponent.Moves)
	}

	expectError(t, p.Execute(NewGetMovesCommand(gr.GameID, "h9")), core.ErrInvalidRequest)

	resp := p.Execute(NewGetBoardCommand(gr.GameID))
	if !resp.Success {
		t.Fatalf("board failed: %+v", resp.Error)
	}
	br := resp.Data.(core.BoardResponse)
	if !strings.Contains(br.Board, "5 r q k r") || br.FEN != gr.FEN {
		t.Errorf("unexpected board:\n%s", br.Board)
	}
}

func waitForState(t *testing.T, p *Processor, gameID string, pred func(core.GameResponse) bool) core.GameResponse {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp := p.Execute(NewGetGameCommand(gameID))
		if !resp.Success {
			t.Fatalf("get failed: %+v", resp.Error)
		}
		gr := resp.Data.(core.GameResponse)
		if pred(gr) {
			return gr
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("timed out waiting for game state")
	return core.GameResponse{}
}

func TestComputerMove(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: computer})

	if resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "a2a3"})); !resp.Success {
		t.Fatalf("human move failed: %+v", resp.Error)
	}

	resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: ComputerMove}))
	if !resp.Success || !resp.Pending {
		t.Fatalf("computer move not queued: %+v", resp)
	}

	// Blocked while thinking, unless the engine was already done
	if again := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: ComputerMove})); !again.Success {
		if again.Error.Code != core.ErrInvalidRequest && again.Error.Code != core.ErrNotHumanTurn {
			t.Errorf("unexpected error %+v", again.Error)
		}
	}

	done := waitForState(t, p, gr.GameID, func(gr core.GameResponse) bool {
		return gr.State != "pending" && len(gr.Moves) == 2
	})
	if done.State != "ongoing" || done.Turn != "w" {
		t.Errorf("unexpected state after computer move %+v", done)
	}
	if done.LastMove == nil || done.LastMove.PlayerColor != "b" || done.LastMove.Depth != 1 {
		t.Errorf("last move %+v", done.LastMove)
	}
}

func TestComputerCapturesKing(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{FEN: "q2k/4/4/4/K3 b", White: human, Black: computer})

	if resp := p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: ComputerMove})); !resp.Success {
		t.Fatalf("computer move not queued: %+v", resp.Error)
	}
	done := waitForState(t, p, gr.GameID, func(gr core.GameResponse) bool {
		return gr.State != "pending"
	})
	if done.State != "black wins" || done.Moves[0] != "a5a1" {
		t.Errorf("engine missed the king: %+v", done)
	}
}

func TestConfigurePlayersAndDelete(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: human})

	resp := p.Execute(NewConfigurePlayersCommand(gr.GameID, core.ConfigurePlayersRequest{
		White: human,
		Black: core.PlayerConfig{Type: core.PlayerComputer, Level: 2},
	}))
	if !resp.Success {
		t.Fatalf("configure failed: %+v", resp.Error)
	}
	black := resp.Data.(core.GameResponse).Players.Black
	if black.Type != core.PlayerComputer || black.SearchTime != minSearchTime {
		t.Errorf("black player %+v", black)
	}

	if resp := p.Execute(NewDeleteGameCommand(gr.GameID)); !resp.Success {
		t.Fatalf("delete failed: %+v", resp.Error)
	}
	expectError(t, p.Execute(NewGetGameCommand(gr.GameID)), core.ErrGameNotFound)
	expectError(t, p.Execute(NewDeleteGameCommand(gr.GameID)), core.ErrGameNotFound)
}

func TestComputerGameLimit(t *testing.T) {
	p := newProcessor(t)
	for i := 0; i < service.MaxComputerGames; i++ {
		createGame(t, p, core.CreateGameRequest{White: human, Black: computer})
	}
	expectError(t, p.Execute(NewCreateGameCommand(core.CreateGameRequest{White: computer, Black: human})), core.ErrResourceLimit)

	// Human games are unaffected
	createGame(t, p, core.CreateGameRequest{White: human, Black: human})
}

func TestUndo(t *testing.T) {
	p := newProcessor(t)
	gr := createGame(t, p, core.CreateGameRequest{White: human, Black: human})

	expectError(t, p.Execute(NewUndoMoveCommand(gr.GameID, core.UndoRequest{Count: 1})), core.ErrInvalidRequest)

	p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "a2a3"}))
	p.Execute(NewMakeMoveCommand(gr.GameID, core.MoveRequest{Move: "d4d3"}))

	resp := p.Execute(NewUndoMoveCommand(gr.GameID, core.UndoRequest{Count: 2}))
	if !resp.Success {
		t.Fatalf("undo failed: %+v", resp.Error)
	}
	after := resp.Data.(core.GameResponse)
	if after.FEN != gr.FEN || len(after.Moves) != 0 || after.LastMove != nil {
		t.Errorf("undo left %+v", after)
	}
}
