// Package movegen produces pseudo-legal moves. There is no check concept in
// these rules, so pseudo-legal moves are the legal moves.
package movegen

import (
	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/variant"
)

type offset struct {
	dr, dc int
}

var (
	knightOffsets = []offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	bishopRays    = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	rookRays      = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	queenRays     = append(append([]offset{}, bishopRays...), rookRays...)
)

// strategy appends the moves of the piece on from to dst
type strategy func(g *Generator, b *board.Board, from core.Coord, p core.Piece, dst []core.Move) []core.Move

// Generator generates moves for one board configuration
type Generator struct {
	cfg        *variant.Config
	strategies [core.King + 1]strategy
}

func New(cfg *variant.Config) *Generator {
	g := &Generator{cfg: cfg}
	g.strategies[core.Pawn] = pawnMoves
	g.strategies[core.Knight] = leaperMoves(knightOffsets)
	g.strategies[core.Bishop] = sliderMoves(bishopRays)
	g.strategies[core.Rook] = sliderMoves(rookRays)
	g.strategies[core.Queen] = sliderMoves(queenRays)
	g.strategies[core.King] = leaperMoves(kingOffsets)
	return g
}

// MovesFor returns every pseudo-legal move of the piece on from. Whose turn
// it is does not matter here.
func (g *Generator) MovesFor(b *board.Board, from core.Coord) []core.Move {
	return g.appendMovesFor(b, from, nil)
}

func (g *Generator) appendMovesFor(b *board.Board, from core.Coord, dst []core.Move) []core.Move {
	p := b.At(from)
	if p.IsEmpty() || int(p.Type) >= len(g.strategies) {
		return dst
	}
	return g.strategies[p.Type](g, b, from, p, dst)
}

// AllMoves aggregates MovesFor over every square held by color, in
// row-major order of the origin square
func (g *Generator) AllMoves(b *board.Board, color core.Color) []core.Move {
	var moves []core.Move
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			from := core.Coord{Row: r, Col: c}
			if p := b.At(from); !p.IsEmpty() && p.Color == color {
				moves = g.appendMovesFor(b, from, moves)
			}
		}
	}
	return moves
}

// HasMoves reports whether color has at least one move, stopping early
func (g *Generator) HasMoves(b *board.Board, color core.Color) bool {
	var buf [8]core.Move
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			from := core.Coord{Row: r, Col: c}
			if p := b.At(from); !p.IsEmpty() && p.Color == color {
				if len(g.appendMovesFor(b, from, buf[:0])) > 0 {
					return true
				}
			}
		}
	}
	return false
}

// IsLegal reports whether m is among the moves for the side to move
func (g *Generator) IsLegal(b *board.Board, m core.Move) bool {
	p := b.At(m.From)
	if p.IsEmpty() || p.Color != b.Turn() {
		return false
	}
	for _, cand := range g.MovesFor(b, m.From) {
		if cand.From == m.From && cand.To == m.To {
			return true
		}
	}
	return false
}

// Resolve matches m against the generated moves for the side to move and
// returns the generated form, which carries the forced promotion. A
// requested promotion other than the forced one is illegal.
func (g *Generator) Resolve(b *board.Board, m core.Move) (core.Move, bool) {
	if !g.IsLegal(b, m) {
		return core.Move{}, false
	}
	for _, cand := range g.MovesFor(b, m.From) {
		if cand.To != m.To {
			continue
		}
		if m.Promotion != core.NoPiece && m.Promotion != cand.Promotion {
			return core.Move{}, false
		}
		return cand, true
	}
	return core.Move{}, false
}

func pawnMoves(g *Generator, b *board.Board, from core.Coord, p core.Piece, dst []core.Move) []core.Move {
	dir := variant.PawnDirection(p.Color)
	promoRow := g.cfg.PromotionRank(p.Color)

	add := func(to core.Coord) {
		m := core.Move{From: from, To: to}
		if to.Row == promoRow {
			m.Promotion = core.Queen
		}
		dst = append(dst, m)
	}

	one := core.Coord{Row: from.Row + dir, Col: from.Col}
	if b.InBounds(one) && b.At(one).IsEmpty() {
		add(one)

		two := core.Coord{Row: from.Row + 2*dir, Col: from.Col}
		if g.cfg.PawnDoubleStep && from.Row == g.cfg.PawnStartRank(p.Color) &&
			b.InBounds(two) && b.At(two).IsEmpty() {
			add(two)
		}
	}

	for _, dc := range [2]int{-1, 1} {
		to := core.Coord{Row: from.Row + dir, Col: from.Col + dc}
		if !b.InBounds(to) {
			continue
		}
		if target := b.At(to); !target.IsEmpty() && target.Color != p.Color {
			add(to)
		}
	}
	return dst
}

func leaperMoves(offsets []offset) strategy {
	return func(_ *Generator, b *board.Board, from core.Coord, p core.Piece, dst []core.Move) []core.Move {
		for _, o := range offsets {
			to := core.Coord{Row: from.Row + o.dr, Col: from.Col + o.dc}
			if !b.InBounds(to) {
				continue
			}
			if target := b.At(to); target.IsEmpty() || target.Color != p.Color {
				dst = append(dst, core.Move{From: from, To: to})
			}
		}
		return dst
	}
}

// sliderMoves casts rays on (row, col) pairs. Stepping a column past the
// edge leaves the board instead of landing on the next row, so narrow
// boards cannot wrap.
func sliderMoves(rays []offset) strategy {
	return func(_ *Generator, b *board.Board, from core.Coord, p core.Piece, dst []core.Move) []core.Move {
		for _, o := range rays {
			to := core.Coord{Row: from.Row + o.dr, Col: from.Col + o.dc}
			for b.InBounds(to) {
				target := b.At(to)
				if !target.IsEmpty() {
					if target.Color != p.Color {
						dst = append(dst, core.Move{From: from, To: to})
					}
					break
				}
				dst = append(dst, core.Move{From: from, To: to})
				to.Row += o.dr
				to.Col += o.dc
			}
		}
		return dst
	}
}
