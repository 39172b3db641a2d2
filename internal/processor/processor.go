package processor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode"

	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/game"
	"minichess/internal/movegen"
	"minichess/internal/rules"
	"minichess/internal/service"
	"minichess/internal/variant"
)

const (
	minSearchTime = 100

	// ComputerMove asks the engine to play for the side to move
	ComputerMove = "cccc"
)

// ruleset bundles the per-variant move generator and terminal detector
type ruleset struct {
	cfg   *variant.Config
	gen   *movegen.Generator
	rules *rules.Detector
}

// Processor handles command execution and coordinates between service and engine layers
type Processor struct {
	svc      *service.Service
	queue    *EngineQueue
	variants map[string]*ruleset

	// Serializes state-changing commands and engine callbacks
	mu sync.Mutex
}

// New creates a processor for every built-in variant with workers engine workers
func New(svc *service.Service, workers int) (*Processor, error) {
	p := &Processor{
		svc:      svc,
		variants: make(map[string]*ruleset),
	}

	var configs []*variant.Config
	for _, name := range variant.Names() {
		cfg, err := variant.ByName(name)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("failed to load variant %s: %w", name, err)
		}
		gen := movegen.New(cfg)
		p.variants[name] = &ruleset{cfg: cfg, gen: gen, rules: rules.NewDetector(gen)}
		configs = append(configs, cfg)
	}

	p.queue = NewEngineQueue(workers, configs...)
	return p, nil
}

func (p *Processor) Execute(cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdGetMoves:
		return p.handleGetMoves(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}

func hasComputer(players ...*core.Player) bool {
	for _, pl := range players {
		if pl != nil && pl.Type == core.PlayerComputer {
			return true
		}
	}
	return false
}

func clampSearchTime(cfg *core.PlayerConfig) {
	if cfg.Type == core.PlayerComputer && cfg.SearchTime < minSearchTime {
		cfg.SearchTime = minSearchTime
	}
}

// startingBoard resolves the initial position of a create request: a layout
// wins over a FEN, which wins over the variant's start position
func (p *Processor) startingBoard(rs *ruleset, args core.CreateGameRequest) (*board.Board, *core.ErrorResponse) {
	var turn core.Color
	if args.Turn != "" {
		var err error
		if turn, err = core.ParseColor(args.Turn); err != nil {
			return nil, &core.ErrorResponse{Error: err.Error(), Code: core.ErrInvalidRequest}
		}
	}

	var b *board.Board
	var err error
	switch {
	case len(args.Layout) > 0:
		if turn == core.ColorNone {
			turn = core.ColorWhite
		}
		if b, err = rs.cfg.NewBoard(args.Layout, turn); err != nil {
			return nil, &core.ErrorResponse{Error: err.Error(), Code: core.ErrInvalidLayout}
		}
	case args.FEN != "":
		if hasControlChars(args.FEN) {
			return nil, &core.ErrorResponse{Error: "invalid FEN characters", Code: core.ErrInvalidLayout}
		}
		if b, err = board.ParseFEN(args.FEN, rs.cfg.Rows, rs.cfg.Cols); err != nil {
			return nil, &core.ErrorResponse{Error: err.Error(), Code: core.ErrInvalidLayout}
		}
		if turn != core.ColorNone {
			b = b.WithTurn(turn)
		}
	default:
		if b, err = rs.cfg.StartBoard(); err != nil {
			return nil, &core.ErrorResponse{Error: err.Error(), Code: core.ErrInternalError}
		}
		if turn != core.ColorNone {
			b = b.WithTurn(turn)
		}
	}

	if !b.HasKing(core.ColorWhite) || !b.HasKing(core.ColorBlack) {
		return nil, &core.ErrorResponse{Error: "position must contain both kings", Code: core.ErrInvalidLayout}
	}
	return b, nil
}

// handleCreateGame creates a new game; a position that is already decided
// starts in its final state
func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	name := args.Variant
	if name == "" {
		name = variant.NameCompact
	}
	rs, ok := p.variants[name]
	if !ok {
		return p.errorResponse(fmt.Sprintf("unknown variant %q", args.Variant), core.ErrInvalidVariant)
	}

	clampSearchTime(&args.White)
	clampSearchTime(&args.Black)

	b, errResp := p.startingBoard(rs, args)
	if errResp != nil {
		return ProcessorResponse{Success: false, Error: errResp}
	}

	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	// Authenticated human players play under their user ID
	if args.White.Type == core.PlayerHuman && cmd.UserID != "" {
		whitePlayer.ID = cmd.UserID
	}
	if args.Black.Type == core.PlayerHuman && cmd.UserID != "" {
		blackPlayer.ID = cmd.UserID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if hasComputer(whitePlayer, blackPlayer) && !p.svc.CanCreateComputerGame() {
		return p.errorResponse("too many games against the computer", core.ErrResourceLimit)
	}

	gameID := p.svc.GenerateGameID()
	if err := p.svc.CreateGame(gameID, name, whitePlayer, blackPlayer, b.FEN(), b.Turn()); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	p.checkGameEnd(gameID, rs, b)

	g, err := p.svc.GetGame(gameID)
	if err != nil {
		return p.errorResponse("game creation failed", core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(gameID, g),
	}
}

// handleConfigurePlayers updates player configuration mid-game
func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	clampSearchTime(&args.White)
	clampSearchTime(&args.Black)

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	if g.State() == core.StatePending {
		return p.errorResponse("cannot change players while computer is calculating", core.ErrInvalidRequest)
	}

	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	hadComputer := hasComputer(g.GetPlayer(core.ColorWhite), g.GetPlayer(core.ColorBlack))
	if !hadComputer && hasComputer(whitePlayer, blackPlayer) && !p.svc.CanCreateComputerGame() {
		return p.errorResponse("too many games against the computer", core.ErrResourceLimit)
	}

	if err = p.svc.UpdatePlayers(cmd.GameID, whitePlayer, blackPlayer); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to update players: %v", err), core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

func (p *Processor) handleGetGame(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

// handleMakeMove plays a human move, or queues a computer move on "cccc"
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	switch state := g.State(); {
	case state == core.StatePending:
		return p.errorResponse("computer move in progress", core.ErrInvalidRequest)
	case state == core.StateStuck:
		return p.errorResponse("game is stuck due to engine error", core.ErrGameOver)
	case state.IsOver():
		return p.errorResponse(fmt.Sprintf("game is over: %s", state), core.ErrGameOver)
	case state != core.StateOngoing:
		return p.errorResponse("game is in invalid state", core.ErrInvalidRequest)
	}

	rs, ok := p.variants[g.Variant()]
	if !ok {
		return p.errorResponse("game has unknown variant", core.ErrInternalError)
	}

	move := strings.ToLower(strings.TrimSpace(args.Move))

	if move == ComputerMove {
		if g.NextPlayer().Type != core.PlayerComputer {
			return p.errorResponse("not computer player's turn", core.ErrNotHumanTurn)
		}

		p.svc.UpdateGameState(cmd.GameID, core.StatePending)
		if err := p.triggerComputerMove(cmd.GameID, g); err != nil {
			p.svc.UpdateGameState(cmd.GameID, core.StateOngoing)
			return p.errorResponse(fmt.Sprintf("engine unavailable: %v", err), core.ErrResourceLimit)
		}

		response := p.buildGameResponse(cmd.GameID, g)
		response.LastMove = &core.MoveInfo{
			PlayerColor: g.NextTurnColor().String(),
		}

		return ProcessorResponse{
			Success: true,
			Pending: true,
			Data:    response,
		}
	}

	if g.NextPlayer().Type != core.PlayerHuman {
		return p.errorResponse("not human player's turn", core.ErrNotHumanTurn)
	}

	if hasControlChars(move) {
		return p.errorResponse("invalid move format", core.ErrInvalidMove)
	}

	b, err := p.gameBoard(rs, g)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("corrupt position: %v", err), core.ErrInternalError)
	}

	m, err := core.ParseMove(move, rs.cfg.Rows)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}
	legal, ok := rs.gen.Resolve(b, m)
	if !ok {
		return p.errorResponse("illegal move", core.ErrInvalidMove)
	}

	next, err := b.ApplyMove(legal)
	if err != nil {
		var moveErr *core.InvalidMoveError
		if errors.As(err, &moveErr) {
			return p.errorResponse(moveErr.Reason, core.ErrInvalidMove)
		}
		return p.errorResponse(err.Error(), core.ErrInvalidMove)
	}

	currentColor := b.Turn()
	notation := legal.Notation(rs.cfg.Rows)
	result := &game.MoveResult{
		Move:        notation,
		PlayerColor: currentColor,
		GameState:   rs.rules.IsTerminal(next).State(),
	}

	if err = p.svc.ApplyMove(cmd.GameID, notation, next.FEN(), result); err != nil {
		return p.errorResponse(fmt.Sprintf("failed to apply move: %v", err), core.ErrInternalError)
	}

	if result.GameState != core.StateOngoing {
		p.svc.UpdateGameState(cmd.GameID, result.GameState)
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

// handleUndoMove reverts game state
func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	switch g.State() {
	case core.StatePending:
		return p.errorResponse("cannot undo while computer move is in progress", core.ErrInvalidRequest)
	case core.StateStuck:
		return p.errorResponse("cannot undo in stuck game", core.ErrInvalidRequest)
	}

	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	if err = p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			return p.errorResponse("game not found", core.ErrGameNotFound)
		}
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	p.svc.UpdateGameState(cmd.GameID, core.StateOngoing)

	// Undoing back to a decided starting position restores its result
	if rs, ok := p.variants[g.Variant()]; ok {
		if b, err := p.gameBoard(rs, g); err == nil {
			p.checkGameEnd(cmd.GameID, rs, b)
		}
	}

	return ProcessorResponse{
		Success: true,
		Data:    p.buildGameResponse(cmd.GameID, g),
	}
}

// handleDeleteGame removes a game
func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	if g.State() == core.StatePending {
		return p.errorResponse("cannot delete game while computer move is in progress", core.ErrInvalidRequest)
	}

	if err = p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	return ProcessorResponse{
		Success: true,
	}
}

// handleGetBoard returns board visualization
func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	rs, ok := p.variants[g.Variant()]
	if !ok {
		return p.errorResponse("game has unknown variant", core.ErrInternalError)
	}

	b, err := p.gameBoard(rs, g)
	if err != nil {
		return p.errorResponse("error parsing FEN", core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.BoardResponse{
			FEN:   b.FEN(),
			Board: b.ToASCII(),
		},
	}
}

// handleGetMoves lists the moves of the side to move, optionally only those
// from one square. Finished games have none.
func (p *Processor) handleGetMoves(cmd Command) ProcessorResponse {
	g, err := p.svc.GetGame(cmd.GameID)
	if err != nil {
		return p.errorResponse("game not found", core.ErrGameNotFound)
	}

	rs, ok := p.variants[g.Variant()]
	if !ok {
		return p.errorResponse("game has unknown variant", core.ErrInternalError)
	}

	b, err := p.gameBoard(rs, g)
	if err != nil {
		return p.errorResponse("error parsing FEN", core.ErrInternalError)
	}

	args, _ := cmd.Args.(movesArgs)
	from := strings.ToLower(strings.TrimSpace(args.From))

	var moves []core.Move
	switch {
	case g.State().IsOver():
	case from != "":
		sq, err := core.ParseSquare(from, rs.cfg.Rows)
		if err != nil || !b.InBounds(sq) {
			return p.errorResponse(fmt.Sprintf("invalid square %q", args.From), core.ErrInvalidRequest)
		}
		if piece := b.At(sq); !piece.IsEmpty() && piece.Color == b.Turn() {
			moves = rs.gen.MovesFor(b, sq)
		}
	default:
		moves = rs.gen.AllMoves(b, b.Turn())
	}

	notations := make([]string, len(moves))
	for i, m := range moves {
		notations[i] = m.Notation(rs.cfg.Rows)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.MovesResponse{
			Turn:  b.Turn().String(),
			Moves: notations,
		},
	}
}

// triggerComputerMove initiates async engine calculation
func (p *Processor) triggerComputerMove(gameID string, g *game.Game) error {
	fen := g.CurrentFEN()
	color := g.NextTurnColor()
	player := g.NextPlayer()

	return p.queue.SubmitAsync(gameID, g.Variant(), fen, color, player, func(result EngineResult) {
		p.mu.Lock()
		defer p.mu.Unlock()

		currentGame, err := p.svc.GetGame(gameID)
		if err != nil {
			return // Game was deleted
		}

		// Only the search for the current position may land
		if currentGame.State() != core.StatePending || currentGame.CurrentFEN() != fen {
			return
		}

		if result.Error != nil {
			log.Printf("Engine error for game %s: %v", gameID, result.Error)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		rs := p.variants[currentGame.Variant()]
		b, err := p.gameBoard(rs, currentGame)
		if err != nil {
			log.Printf("Engine callback for game %s: %v", gameID, err)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		if result.Move == "" {
			// Side to move is stuck without moves, which loses
			p.svc.UpdateGameState(gameID, core.StateOngoing)
			if p.checkGameEnd(gameID, rs, b) == core.StateOngoing {
				p.svc.UpdateGameState(gameID, core.StateStuck)
			}
			return
		}

		m, err := core.ParseMove(result.Move, rs.cfg.Rows)
		var next *board.Board
		if err == nil {
			next, err = b.ApplyMove(m)
		}
		if err != nil {
			log.Printf("Engine returned unusable move %q for game %s: %v", result.Move, gameID, err)
			p.svc.UpdateGameState(gameID, core.StateStuck)
			return
		}

		moveResult := &game.MoveResult{
			Move:        result.Move,
			PlayerColor: color,
			GameState:   rs.rules.IsTerminal(next).State(),
			Score:       result.Score,
			Depth:       result.Depth,
			Nodes:       result.Nodes,
		}
		p.svc.ApplyMove(gameID, result.Move, next.FEN(), moveResult)
		p.svc.UpdateGameState(gameID, moveResult.GameState)
	})
}

// checkGameEnd moves the game to its final state when b is decided
func (p *Processor) checkGameEnd(gameID string, rs *ruleset, b *board.Board) core.State {
	state := rs.rules.IsTerminal(b).State()
	if state != core.StateOngoing {
		p.svc.UpdateGameState(gameID, state)
	}
	return state
}

func (p *Processor) gameBoard(rs *ruleset, g *game.Game) (*board.Board, error) {
	return board.ParseFEN(g.CurrentFEN(), rs.cfg.Rows, rs.cfg.Cols)
}

// buildGameResponse constructs standard game response
func (p *Processor) buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	resp := core.GameResponse{
		GameID:  gameID,
		Variant: g.Variant(),
		FEN:     g.CurrentFEN(),
		Turn:    g.NextTurnColor().String(),
		State:   g.State().String(),
		Moves:   g.Moves(),
		Players: core.PlayersResponse{
			White: g.GetPlayer(core.ColorWhite),
			Black: g.GetPlayer(core.ColorBlack),
		},
	}

	if rs, ok := p.variants[g.Variant()]; ok {
		if b, err := p.gameBoard(rs, g); err == nil {
			resp.Layout = b.Layout()
		}
	}

	if result := g.LastResult(); result != nil {
		resp.LastMove = &core.MoveInfo{
			Move:        result.Move,
			PlayerColor: result.PlayerColor.String(),
			Score:       result.Score,
			Depth:       result.Depth,
			Nodes:       result.Nodes,
		}
	}

	return resp
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
