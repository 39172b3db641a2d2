package board

import (
	"fmt"
	"strings"

	"minichess/internal/core"
)

// Board is a rectangular grid of pieces plus the side to move. Boards are
// treated as values: ApplyMove and Clone return new boards.
type Board struct {
	rows    int
	cols    int
	squares []core.Piece
	turn    core.Color
}

// New returns an empty board
func New(rows, cols int, turn core.Color) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid board shape %dx%d", rows, cols)
	}
	if turn != core.ColorWhite && turn != core.ColorBlack {
		return nil, fmt.Errorf("invalid side to move %q", turn)
	}
	return &Board{
		rows:    rows,
		cols:    cols,
		squares: make([]core.Piece, rows*cols),
		turn:    turn,
	}, nil
}

func (b *Board) Rows() int {
	return b.rows
}

func (b *Board) Cols() int {
	return b.cols
}

func (b *Board) Turn() core.Color {
	return b.turn
}

// WithTurn returns a copy with the given side to move
func (b *Board) WithTurn(turn core.Color) *Board {
	nb := b.Clone()
	nb.turn = turn
	return nb
}

func (b *Board) InBounds(c core.Coord) bool {
	return c.Row >= 0 && c.Row < b.rows && c.Col >= 0 && c.Col < b.cols
}

// At returns the piece on c, or core.Empty when c is empty or off the board
func (b *Board) At(c core.Coord) core.Piece {
	if !b.InBounds(c) {
		return core.Empty
	}
	return b.squares[c.Row*b.cols+c.Col]
}

// Set places p on c. Intended for building positions before they are handed
// to the engine.
func (b *Board) Set(c core.Coord, p core.Piece) error {
	if !b.InBounds(c) {
		return fmt.Errorf("square %+v outside %dx%d board", c, b.rows, b.cols)
	}
	b.squares[c.Row*b.cols+c.Col] = p
	return nil
}

// IsWhite reports whether the square holds a White piece
func (b *Board) IsWhite(c core.Coord) bool {
	return b.At(c).IsWhite()
}

// Each calls fn for every occupied square in row-major order
func (b *Board) Each(fn func(core.Coord, core.Piece)) {
	for i, p := range b.squares {
		if p.IsEmpty() {
			continue
		}
		fn(core.Coord{Row: i / b.cols, Col: i % b.cols}, p)
	}
}

// HasKing reports whether a King of color is on the board
func (b *Board) HasKing(color core.Color) bool {
	for _, p := range b.squares {
		if p.Type == core.King && p.Color == color {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (b *Board) Clone() *Board {
	nb := &Board{
		rows:    b.rows,
		cols:    b.cols,
		squares: make([]core.Piece, len(b.squares)),
		turn:    b.turn,
	}
	copy(nb.squares, b.squares)
	return nb
}

// Equal compares shape, pieces and side to move
func (b *Board) Equal(o *Board) bool {
	if o == nil || b.rows != o.rows || b.cols != o.cols || b.turn != o.turn {
		return false
	}
	for i := range b.squares {
		if b.squares[i] != o.squares[i] {
			return false
		}
	}
	return true
}

// Mirrored swaps every piece's color, flips the rows and hands the move to
// the other side
func (b *Board) Mirrored() *Board {
	nb := &Board{
		rows:    b.rows,
		cols:    b.cols,
		squares: make([]core.Piece, len(b.squares)),
		turn:    core.OppositeColor(b.turn),
	}
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			p := b.squares[r*b.cols+c]
			if !p.IsEmpty() {
				p.Color = core.OppositeColor(p.Color)
			}
			nb.squares[(b.rows-1-r)*b.cols+c] = p
		}
	}
	return nb
}

// ApplyMove returns a new board with m played. Pawns reaching the far rank
// always become Queens.
func (b *Board) ApplyMove(m core.Move) (*Board, error) {
	if !b.InBounds(m.From) || !b.InBounds(m.To) {
		return nil, &core.InvalidMoveError{Move: m, Reason: "coordinate out of bounds"}
	}
	if m.From == m.To {
		return nil, &core.InvalidMoveError{Move: m, Reason: "origin equals destination"}
	}

	piece := b.At(m.From)
	if piece.IsEmpty() {
		return nil, &core.InvalidMoveError{Move: m, Reason: "empty origin"}
	}
	if piece.Color != b.turn {
		return nil, &core.InvalidMoveError{Move: m, Reason: fmt.Sprintf("origin holds a %s piece but %s is to move", piece.Color.Name(), b.turn.Name())}
	}
	if target := b.At(m.To); !target.IsEmpty() && target.Color == piece.Color {
		return nil, &core.InvalidMoveError{Move: m, Reason: "destination occupied by own piece"}
	}

	promotes := piece.Type == core.Pawn && m.To.Row == b.promotionRow(piece.Color)
	if m.Promotion != core.NoPiece {
		if !promotes {
			return nil, &core.InvalidMoveError{Move: m, Reason: "promotion on a non-promoting move"}
		}
		if m.Promotion != core.Queen {
			return nil, &core.InvalidMoveError{Move: m, Reason: "pawns only promote to queen"}
		}
	}

	nb := b.Clone()
	nb.squares[m.From.Row*b.cols+m.From.Col] = core.Empty
	if promotes {
		piece.Type = core.Queen
	}
	nb.squares[m.To.Row*b.cols+m.To.Col] = piece
	nb.turn = core.OppositeColor(b.turn)
	return nb, nil
}

func (b *Board) promotionRow(color core.Color) int {
	if color == core.ColorWhite {
		return 0
	}
	return b.rows - 1
}

// ToASCII creates an ASCII representation of the board
func (b *Board) ToASCII() string {
	var sb strings.Builder
	files := b.fileLabels()
	sb.WriteString("  " + files + "\n")

	for r := 0; r < b.rows; r++ {
		sb.WriteString(fmt.Sprintf("%d ", b.rows-r))
		for c := 0; c < b.cols; c++ {
			piece := b.squares[r*b.cols+c]
			if piece.IsEmpty() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece.Code()))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", b.rows-r))
	}
	sb.WriteString("  " + files)

	return sb.String()
}

func (b *Board) fileLabels() string {
	labels := make([]string, b.cols)
	for c := range labels {
		labels[c] = string(rune('a' + c))
	}
	return strings.Join(labels, " ")
}
