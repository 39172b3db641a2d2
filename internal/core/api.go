package core

// Request types

type CreateGameRequest struct {
	Variant string       `json:"variant,omitempty" validate:"omitempty,oneof=compact classic"`
	White   PlayerConfig `json:"white" validate:"required"`
	Black   PlayerConfig `json:"black" validate:"required"`
	FEN     string       `json:"fen,omitempty" validate:"omitempty,max=100"`
	Layout  [][]string   `json:"layout,omitempty" validate:"omitempty,max=8,dive,max=8"`
	Turn    string       `json:"turn,omitempty" validate:"omitempty,oneof=w b"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=6"` // "cccc" for computer move
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"`
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	Variant  string          `json:"variant"`
	FEN      string          `json:"fen"`
	Layout   [][]string      `json:"layout"`
	Turn     string          `json:"turn"`  // "w" or "b"
	State    string          `json:"state"` // "ongoing", "white wins", etc
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
}

// PlayersResponse for API responses
type PlayersResponse struct {
	White *Player `json:"white"`
	Black *Player `json:"black"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Score       int    `json:"score,omitempty"`
	Depth       int    `json:"depth,omitempty"`
	Nodes       int64  `json:"nodes,omitempty"`
}

type BoardResponse struct {
	FEN   string `json:"fen"`
	Board string `json:"board"` // ASCII representation
}

type MovesResponse struct {
	Turn  string   `json:"turn"`
	Moves []string `json:"moves"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
