package cli

import (
	"fmt"
	"io"
	"strings"

	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/display"
	"minichess/internal/engine"
	"minichess/internal/game"
)

// View writes everything the player sees
type View struct {
	out     io.Writer
	verbose bool
}

func NewView(out io.Writer) *View {
	return &View{out: out}
}

func (v *View) ToggleVerbose() bool {
	v.verbose = !v.verbose
	return v.verbose
}

func (v *View) ShowMessage(msg string) {
	fmt.Fprintln(v.out, msg)
}

func (v *View) ShowError(err error) {
	fmt.Fprintf(v.out, "%sError: %v%s\n", display.Red, err, display.Reset)
}

func (v *View) DisplayBoard(b *board.Board) {
	fmt.Fprintln(v.out)
	display.RenderBoard(v.out, b.ToASCII())
	fmt.Fprintf(v.out, "%s to move\n\n", display.ColorForTurn(b.Turn()))
}

func (v *View) ShowHelp() {
	v.ShowMessage(`Commands:
  new [compact|classic] [w|b]  - Start a new game, playing the given color
  <move>                       - Make a move (e.g. a2a3, b4b5q)
  moves [square]               - List legal moves, optionally from one square
  undo                         - Take back your last move and the reply
  level <n>                    - Set the computer's difficulty level
  show                         - Show the board
  verbose                      - Toggle engine statistics
  history                      - Show the move list
  help/?                       - Show this help message
  exit/quit                    - Exit the program`)
}

func (v *View) ShowWelcome(variants []string) {
	v.ShowMessage(display.Colorize(display.Cyan, "Minichess"))
	v.ShowMessage(fmt.Sprintf("Variants: %s. Type 'help' for commands.", strings.Join(variants, ", ")))
}

func (v *View) ShowGameHistory(g *game.Game) {
	v.ShowMessage(fmt.Sprintf("Starting FEN: %s", g.InitialFEN()))

	moves := g.Moves()
	for i := 0; i < len(moves); i += 2 {
		if i+1 < len(moves) {
			v.ShowMessage(fmt.Sprintf("%d. %s | %s", i/2+1, moves[i], moves[i+1]))
		} else {
			v.ShowMessage(fmt.Sprintf("%d. %s | ...", i/2+1, moves[i]))
		}
	}
	v.ShowMessage(fmt.Sprintf("Current FEN: %s", g.CurrentFEN()))
	v.ShowMessage(fmt.Sprintf("Game state: %s", g.State()))
}

func (v *View) ShowMoves(moves []string) {
	if len(moves) == 0 {
		v.ShowMessage("No legal moves")
		return
	}
	v.ShowMessage(strings.Join(moves, " "))
}

func (v *View) ShowComputerMove(color core.Color, notation string, result *engine.SearchResult) {
	if v.verbose {
		v.ShowMessage(fmt.Sprintf("Computer (%s): %s (depth=%d, score=%d, nodes=%d, complete=%t)",
			color, notation, result.Depth, result.Score, result.Nodes, result.Complete))
		return
	}
	v.ShowMessage(fmt.Sprintf("Computer (%s): %s", color, notation))
}

func (v *View) ShowGameOver(state core.State) {
	v.ShowMessage(display.Colorize(display.Green, fmt.Sprintf("Game Over: %s", state)))
	v.ShowMessage("Start a new game with 'new' or take back moves with 'undo'.")
}
