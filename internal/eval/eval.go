// Package eval scores positions from White's point of view. Positive scores
// favor White. Evaluators are pure and safe for concurrent use.
package eval

import (
	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/variant"
)

type Evaluator interface {
	Evaluate(b *board.Board) int
}

// New picks the table evaluator when the variant carries piece-square
// tables and the heuristic evaluator otherwise
func New(cfg *variant.Config) Evaluator {
	if cfg.PositionTables != nil {
		return &TableEvaluator{cfg: cfg}
	}
	return &HeuristicEvaluator{cfg: cfg}
}

func sign(color core.Color) int {
	if color == core.ColorWhite {
		return 1
	}
	return -1
}

// Material sums piece values, White minus Black
func Material(cfg *variant.Config, b *board.Board) int {
	score := 0
	b.Each(func(_ core.Coord, p core.Piece) {
		score += sign(p.Color) * cfg.PieceValues[p.Type]
	})
	return score
}

// TableEvaluator adds a piece-square table bonus to material. Tables are laid
// out from White's side; Black reads the vertically mirrored square.
type TableEvaluator struct {
	cfg *variant.Config
}

func (e *TableEvaluator) Evaluate(b *board.Board) int {
	score := 0
	rows, cols := b.Rows(), b.Cols()
	b.Each(func(c core.Coord, p core.Piece) {
		row := c.Row
		if p.Color == core.ColorBlack {
			row = rows - 1 - row
		}
		v := e.cfg.PieceValues[p.Type]
		if table := e.cfg.PositionTables[p.Type]; len(table) == rows*cols {
			v += table[row*cols+c.Col]
		}
		score += sign(p.Color) * v
	})
	return score
}

// HeuristicEvaluator scores small boards with a handful of positional terms
// weighted by variant.Heuristics
type HeuristicEvaluator struct {
	cfg *variant.Config
}

func (e *HeuristicEvaluator) Evaluate(b *board.Board) int {
	h := e.cfg.Heuristics
	if h == nil {
		return Material(e.cfg, b)
	}

	// Pawn presence per file, indexed by color
	var pawns [3][]bool
	pawns[core.ColorWhite] = make([]bool, b.Cols())
	pawns[core.ColorBlack] = make([]bool, b.Cols())
	b.Each(func(c core.Coord, p core.Piece) {
		if p.Type == core.Pawn {
			pawns[p.Color][c.Col] = true
		}
	})

	score := 0
	b.Each(func(c core.Coord, p core.Piece) {
		v := e.cfg.PieceValues[p.Type]
		central := isCentralFile(c.Col, b.Cols())

		switch p.Type {
		case core.Pawn:
			if adv := e.advance(p.Color, c.Row); adv > 0 {
				v += h.PawnAdvance * adv
			}
		case core.King:
			if c.Row == e.backRank(p.Color) {
				v += h.KingShelter
				if c.Col == 0 || c.Col == b.Cols()-1 {
					v += h.KingCorner
				}
			}
		case core.Queen:
			if central && c.Row != 0 && c.Row != b.Rows()-1 {
				v += h.QueenCenter
			}
		case core.Rook:
			if !pawns[p.Color][c.Col] {
				v += h.RookOpenFile
				if !pawns[core.OppositeColor(p.Color)][c.Col] {
					v += h.RookFullOpenFile
				}
			}
		}

		if central && p.Type != core.King {
			v += h.CenterFile
		}
		score += sign(p.Color) * v
	})
	return score
}

// advance counts ranks a pawn has moved past its start rank
func (e *HeuristicEvaluator) advance(color core.Color, row int) int {
	start := e.cfg.PawnStartRank(color)
	return (row - start) * variant.PawnDirection(color)
}

func (e *HeuristicEvaluator) backRank(color core.Color) int {
	if color == core.ColorWhite {
		return e.cfg.Rows - 1
	}
	return 0
}

// isCentralFile is true for the middle file, or the middle two on even widths
func isCentralFile(col, cols int) bool {
	if cols%2 == 1 {
		return col == cols/2
	}
	return col == cols/2-1 || col == cols/2
}
