// Package rules decides when a game is over.
package rules

import (
	"minichess/internal/board"
	"minichess/internal/core"
	"minichess/internal/movegen"
)

// Outcome is the result of a terminal check. Winner is ColorNone while the
// game is still running. There are no draws.
type Outcome struct {
	Over   bool
	Winner core.Color
}

// State maps the outcome onto a game state
func (o Outcome) State() core.State {
	if !o.Over {
		return core.StateOngoing
	}
	return core.WinState(o.Winner)
}

type Detector struct {
	gen *movegen.Generator
}

func NewDetector(gen *movegen.Generator) *Detector {
	return &Detector{gen: gen}
}

// IsTerminal reports whether the position is decided. A missing King loses
// for its owner; when both are gone the side that just moved wins. A side to
// move without moves loses.
func (d *Detector) IsTerminal(b *board.Board) Outcome {
	whiteKing := b.HasKing(core.ColorWhite)
	blackKing := b.HasKing(core.ColorBlack)

	switch {
	case !whiteKing && !blackKing:
		return Outcome{Over: true, Winner: core.OppositeColor(b.Turn())}
	case !whiteKing:
		return Outcome{Over: true, Winner: core.ColorBlack}
	case !blackKing:
		return Outcome{Over: true, Winner: core.ColorWhite}
	}

	if !d.gen.HasMoves(b, b.Turn()) {
		return Outcome{Over: true, Winner: core.OppositeColor(b.Turn())}
	}
	return Outcome{}
}
