package core

type State int

const (
	StateOngoing State = iota
	StatePending       // Computer is calculating a move
	StateStuck         // Engine failed to produce a move
	StateWhiteWins
	StateBlackWins
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStuck:
		return "stuck"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver reports whether the game has a winner
func (s State) IsOver() bool {
	return s == StateWhiteWins || s == StateBlackWins
}

// WinState maps a winning color to its final state
func WinState(winner Color) State {
	if winner == ColorWhite {
		return StateWhiteWins
	}
	return StateBlackWins
}
