package variant

import "minichess/internal/core"

// Compact is the 4x5 game: rook, queen, king, rook behind four pawns
func Compact() *Config {
	return &Config{
		Name: NameCompact,
		Rows: 5,
		Cols: 4,
		PieceValues: map[core.PieceType]int{
			core.Pawn:   100,
			core.Knight: 300,
			core.Bishop: 300,
			core.Rook:   500,
			core.Queen:  900,
			core.King:   20000,
		},
		Heuristics: &Heuristics{
			PawnAdvance:      15,
			CenterFile:       5,
			KingShelter:      10,
			KingCorner:       10,
			QueenCenter:      10,
			RookOpenFile:     10,
			RookFullOpenFile: 5,
		},
		PawnDoubleStep: false,
		StartFEN:       "rqkr/pppp/4/PPPP/RQKR w",
		Levels:         []int{1, 2, 3, 4, 5},
	}
}

// Classic is the 8x8 game with piece-square tables
func Classic() *Config {
	return &Config{
		Name: NameClassic,
		Rows: 8,
		Cols: 8,
		PieceValues: map[core.PieceType]int{
			core.Pawn:   100,
			core.Knight: 320,
			core.Bishop: 330,
			core.Rook:   500,
			core.Queen:  900,
			core.King:   20000,
		},
		PositionTables: map[core.PieceType][]int{
			core.Pawn:   classicPawnTable[:],
			core.Knight: classicKnightTable[:],
			core.Bishop: classicBishopTable[:],
			core.Rook:   classicRookTable[:],
			core.Queen:  classicQueenTable[:],
			core.King:   classicKingTable[:],
		},
		PawnDoubleStep: true,
		StartFEN:       "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
		Levels:         []int{1, 2, 3, 4},
	}
}

var classicPawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var classicKnightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var classicBishopTable = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var classicRookTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var classicQueenTable = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var classicKingTable = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}
