package board

import (
	"fmt"
	"strconv"
	"strings"

	"minichess/internal/core"
)

// FromLayout builds a board from rows of one-letter piece codes. Empty
// squares may be "", "." or " ".
func FromLayout(layout [][]string, turn core.Color) (*Board, error) {
	if len(layout) == 0 || len(layout[0]) == 0 {
		return nil, fmt.Errorf("invalid layout: empty")
	}

	b, err := New(len(layout), len(layout[0]), turn)
	if err != nil {
		return nil, err
	}

	for r, row := range layout {
		if len(row) != b.cols {
			return nil, fmt.Errorf("invalid layout: row %d has %d squares, want %d", r, len(row), b.cols)
		}
		for c, code := range row {
			switch code {
			case "", ".", " ":
				continue
			}
			p, ok := core.PieceFromCode(code[0])
			if len(code) != 1 || !ok {
				return nil, fmt.Errorf("invalid layout: unknown piece code %q at row %d col %d", code, r, c)
			}
			b.squares[r*b.cols+c] = p
		}
	}
	return b, nil
}

// Layout returns the plain rows-of-codes form, "" for empty squares
func (b *Board) Layout() [][]string {
	layout := make([][]string, b.rows)
	for r := range layout {
		layout[r] = make([]string, b.cols)
		for c := range layout[r] {
			layout[r][c] = b.squares[r*b.cols+c].String()
		}
	}
	return layout
}

// ParseFEN reads the placement and side-to-move fields of a FEN-like
// string, e.g. "rqkr/pppp/4/PPPP/RQKR w". The side defaults to White.
func ParseFEN(fen string, rows, cols int) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 1 || len(parts) > 2 {
		return nil, fmt.Errorf("invalid FEN: expected placement and side, got %d fields", len(parts))
	}

	turn := core.ColorWhite
	if len(parts) == 2 {
		var err error
		if turn, err = core.ParseColor(parts[1]); err != nil {
			return nil, fmt.Errorf("invalid FEN: %w", err)
		}
	}

	b, err := New(rows, cols, turn)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != rows {
		return nil, fmt.Errorf("invalid FEN: expected %d ranks, got %d", rows, len(ranks))
	}

	for r, rank := range ranks {
		file := 0
		for i := 0; i < len(rank); i++ {
			ch := rank[i]
			if ch >= '0' && ch <= '9' {
				// Multi-digit runs allow wide boards
				j := i
				for j < len(rank) && rank[j] >= '0' && rank[j] <= '9' {
					j++
				}
				n, _ := strconv.Atoi(rank[i:j])
				if n == 0 {
					return nil, fmt.Errorf("invalid FEN: zero empty run in rank %d", rows-r)
				}
				file += n
				i = j - 1
				continue
			}
			p, ok := core.PieceFromCode(ch)
			if !ok {
				return nil, fmt.Errorf("invalid FEN: unknown piece %q in rank %d", ch, rows-r)
			}
			if file >= cols {
				return nil, fmt.Errorf("invalid FEN: too many pieces in rank %d", rows-r)
			}
			b.squares[r*cols+file] = p
			file++
		}
		if file != cols {
			return nil, fmt.Errorf("invalid FEN: rank %d has %d files, want %d", rows-r, file, cols)
		}
	}

	return b, nil
}

// FEN renders placement and side to move
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for c := 0; c < b.cols; c++ {
			p := b.squares[r*b.cols+c]
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(p.Code())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.turn.String())
	return sb.String()
}
