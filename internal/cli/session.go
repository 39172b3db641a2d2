package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/display"
	"minichess/internal/engine"
	"minichess/internal/game"
	"minichess/internal/movegen"
	"minichess/internal/rules"
	"minichess/internal/variant"
)

const (
	defaultSearchTime = 2 * time.Second
	thinkTick         = 500 * time.Millisecond
)

// Options configures a session; zero values select defaults
type Options struct {
	Variant    string
	Level      int
	Human      core.Color
	Seed       uint64
	SearchTime time.Duration
}

// ruleset bundles what one variant needs to play
type ruleset struct {
	cfg   *variant.Config
	gen   *movegen.Generator
	rules *rules.Detector
	eng   *engine.Engine
}

// Session plays one game at a time between a human and the engine
type Session struct {
	view       *View
	opts       Options
	rulesets   map[string]*ruleset
	rs         *ruleset
	game       *game.Game
	human      core.Color
	level      int
	searchTime time.Duration
}

func NewSession(out io.Writer, opts Options) (*Session, error) {
	if opts.Variant == "" {
		opts.Variant = variant.NameCompact
	}
	if opts.Human == core.ColorNone {
		opts.Human = core.ColorWhite
	}
	if opts.SearchTime <= 0 {
		opts.SearchTime = defaultSearchTime
	}

	s := &Session{
		view:       NewView(out),
		opts:       opts,
		rulesets:   make(map[string]*ruleset),
		level:      opts.Level,
		searchTime: opts.SearchTime,
	}
	if err := s.newGame(opts.Variant, opts.Human); err != nil {
		return nil, err
	}
	return s, nil
}

// rulesetFor builds engines lazily; a seeded session derives one stream per
// variant so replays stay reproducible
func (s *Session) rulesetFor(name string) (*ruleset, error) {
	if rs, ok := s.rulesets[name]; ok {
		return rs, nil
	}

	cfg, err := variant.ByName(name)
	if err != nil {
		return nil, err
	}

	var opts []engine.Option
	opts = append(opts, engine.WithMoveOrdering(true))
	if s.opts.Seed != 0 {
		opts = append(opts, engine.WithSeed(s.opts.Seed+uint64(len(s.rulesets))))
	}
	eng, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	gen := eng.Generator()
	rs := &ruleset{cfg: cfg, gen: gen, rules: rules.NewDetector(gen), eng: eng}
	s.rulesets[name] = rs
	return rs, nil
}

func (s *Session) newGame(variantName string, human core.Color) error {
	rs, err := s.rulesetFor(variantName)
	if err != nil {
		return err
	}
	b, err := rs.cfg.StartBoard()
	if err != nil {
		return err
	}
	s.startGame(rs, b, human)
	return nil
}

// startGame begins a game from b with the human on the given side
func (s *Session) startGame(rs *ruleset, b *board.Board, human core.Color) {
	humanPlayer := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, human)
	computer := core.NewPlayer(core.PlayerConfig{
		Type:       core.PlayerComputer,
		Level:      s.level,
		SearchTime: int(s.searchTime / time.Millisecond),
	}, core.OppositeColor(human))

	white, black := humanPlayer, computer
	if human == core.ColorBlack {
		white, black = computer, humanPlayer
	}

	s.rs = rs
	s.human = human
	s.game = game.New(rs.cfg.Name, b.FEN(), white, black, b.Turn())
}

// Start greets the player and lets the computer open when it plays White
func (s *Session) Start() {
	s.view.ShowWelcome(variant.Names())
	s.announceGame()
	s.maybeComputerMove()
}

func (s *Session) announceGame() {
	s.view.ShowMessage(fmt.Sprintf("New %s game (%dx%d), you play %s, level %d",
		s.rs.cfg.Name, s.rs.cfg.Rows, s.rs.cfg.Cols, s.human.Name(), s.effectiveLevel()))
	s.view.DisplayBoard(s.board())
}

func (s *Session) effectiveLevel() int {
	if s.level == 0 {
		return (len(s.rs.cfg.Levels) + 1) / 2
	}
	return s.level
}

// board decodes the current position; every stored FEN came from a board
func (s *Session) board() *board.Board {
	b, err := board.ParseFEN(s.game.CurrentFEN(), s.rs.cfg.Rows, s.rs.cfg.Cols)
	if err != nil {
		panic(fmt.Sprintf("stored position unreadable: %v", err))
	}
	return b
}

// Prompt names the variant and the side to move
func (s *Session) Prompt() string {
	text := fmt.Sprintf("minichess [%s] %s", s.rs.cfg.Name, display.ColorForTurn(s.game.NextTurnColor()))
	if s.game.State().IsOver() {
		text = fmt.Sprintf("minichess [%s] %s", s.rs.cfg.Name, s.game.State())
	}
	return display.Prompt(text)
}

// Execute runs one input line and reports whether the loop should continue
func (s *Session) Execute(line string) bool {
	cmd := ParseCommand(line)

	switch cmd.Type {
	case CmdQuit:
		return false
	case CmdNone:
	case CmdNew:
		s.handleNew(cmd.Args)
	case CmdMove:
		s.handleMove(cmd.Args[0])
	case CmdMoves:
		s.handleMoves(cmd.Args)
	case CmdUndo:
		s.handleUndo()
	case CmdLevel:
		s.handleLevel(cmd.Args)
	case CmdShow:
		s.view.DisplayBoard(s.board())
		s.view.ShowMessage(fmt.Sprintf("State: %s, level %d", s.game.State(), s.effectiveLevel()))
	case CmdVerbose:
		s.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", s.view.ToggleVerbose()))
	case CmdHistory:
		s.view.ShowGameHistory(s.game)
	case CmdHelp:
		s.view.ShowHelp()
	}
	return true
}

func (s *Session) handleNew(args []string) {
	variantName := s.rs.cfg.Name
	human := s.human

	for _, arg := range args {
		if c, err := core.ParseColor(arg); err == nil {
			human = c
			continue
		}
		variantName = arg
	}

	if err := s.newGame(variantName, human); err != nil {
		s.view.ShowError(err)
		return
	}
	s.announceGame()
	s.maybeComputerMove()
}

func (s *Session) handleMove(input string) {
	if s.game.State().IsOver() {
		s.view.ShowMessage("Game is over. Use 'new' or 'undo'.")
		return
	}

	b := s.board()
	if b.Turn() != s.human {
		s.view.ShowMessage("It is not your turn.")
		return
	}

	m, err := core.ParseMove(input, s.rs.cfg.Rows)
	if err != nil {
		s.view.ShowError(err)
		return
	}

	legal, ok := s.rs.gen.Resolve(b, m)
	if !ok {
		s.view.ShowError(fmt.Errorf("illegal move %s", input))
		return
	}

	if err := s.play(b, legal, &game.MoveResult{}); err != nil {
		s.view.ShowError(err)
		return
	}
	s.view.DisplayBoard(s.board())

	if !s.checkGameOver() {
		s.maybeComputerMove()
	}
}

// play applies a generated move and records it with the resulting state
func (s *Session) play(b *board.Board, m core.Move, result *game.MoveResult) error {
	next, err := b.ApplyMove(m)
	if err != nil {
		return err
	}

	result.Move = m.Notation(s.rs.cfg.Rows)
	result.PlayerColor = b.Turn()
	result.GameState = s.rs.rules.IsTerminal(next).State()

	s.game.AddSnapshot(next.FEN(), result.Move, next.Turn())
	s.game.SetLastResult(result)
	s.game.SetState(result.GameState)
	return nil
}

func (s *Session) checkGameOver() bool {
	if state := s.game.State(); state.IsOver() {
		s.view.ShowGameOver(state)
		return true
	}
	return false
}

// maybeComputerMove lets the engine reply while it is the computer's turn
func (s *Session) maybeComputerMove() {
	b := s.board()
	if b.Turn() == s.human || s.game.State().IsOver() {
		return
	}

	outcome := s.think(b)
	if outcome.err != nil {
		s.game.SetState(core.StateStuck)
		s.view.ShowError(fmt.Errorf("engine error: %w", outcome.err))
		return
	}

	// No moves: the side to move loses
	if outcome.result == nil {
		s.game.SetState(s.rs.rules.IsTerminal(b).State())
		s.checkGameOver()
		return
	}

	res := outcome.result
	mr := &game.MoveResult{Score: res.Score, Depth: res.Depth, Nodes: res.Nodes}
	if err := s.play(b, res.Move, mr); err != nil {
		s.game.SetState(core.StateStuck)
		s.view.ShowError(fmt.Errorf("engine produced an unplayable move: %w", err))
		return
	}

	s.view.ShowComputerMove(b.Turn(), mr.Move, res)
	s.view.DisplayBoard(s.board())
	s.checkGameOver()
}

type searchOutcome struct {
	result *engine.SearchResult
	err    error
}

// think runs the search on a background goroutine under the session
// deadline, printing progress until it returns
func (s *Session) think(b *board.Board) searchOutcome {
	ctx, cancel := context.WithTimeout(context.Background(), s.searchTime)
	defer cancel()

	depth := s.rs.eng.DepthForLevel(s.level)
	done := make(chan searchOutcome, 1)
	go func() {
		res, err := s.rs.eng.ChooseMove(ctx, b, b.Turn(), depth)
		done <- searchOutcome{result: res, err: err}
	}()

	ticker := time.NewTicker(thinkTick)
	defer ticker.Stop()

	for {
		select {
		case outcome := <-done:
			return outcome
		case <-ticker.C:
			fmt.Fprint(s.view.out, ".")
		}
	}
}

func (s *Session) handleMoves(args []string) {
	b := s.board()
	if s.game.State().IsOver() {
		s.view.ShowMoves(nil)
		return
	}

	var moves []core.Move
	if len(args) > 0 {
		from, err := core.ParseSquare(args[0], s.rs.cfg.Rows)
		if err != nil || !b.InBounds(from) {
			s.view.ShowError(fmt.Errorf("invalid square %q", args[0]))
			return
		}
		if p := b.At(from); !p.IsEmpty() && p.Color == b.Turn() {
			moves = s.rs.gen.MovesFor(b, from)
		}
	} else {
		moves = s.rs.gen.AllMoves(b, b.Turn())
	}

	notations := make([]string, len(moves))
	for i, m := range moves {
		notations[i] = m.Notation(s.rs.cfg.Rows)
	}
	s.view.ShowMoves(notations)
}

// handleUndo takes back moves until it is the human's turn again
func (s *Session) handleUndo() {
	available := s.game.MoveCount()
	if available == 0 {
		s.view.ShowMessage("Nothing to undo.")
		return
	}

	count := 1
	if s.game.NextTurnColor() == s.human && available >= 2 {
		count = 2
	}

	if err := s.game.UndoMoves(count); err != nil {
		s.view.ShowError(err)
		return
	}

	s.view.ShowMessage(fmt.Sprintf("%d move(s) undone", count))
	s.view.DisplayBoard(s.board())
	s.maybeComputerMove()
}

func (s *Session) handleLevel(args []string) {
	levels := len(s.rs.cfg.Levels)
	if len(args) == 0 {
		s.view.ShowMessage(fmt.Sprintf("Level %d of %d (depth %d)", s.effectiveLevel(), levels, s.rs.eng.DepthForLevel(s.level)))
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > levels {
		s.view.ShowError(fmt.Errorf("level must be between 1 and %d", levels))
		return
	}

	s.level = n
	s.view.ShowMessage(fmt.Sprintf("Level set to %d (depth %d)", n, s.rs.eng.DepthForLevel(n)))
}
