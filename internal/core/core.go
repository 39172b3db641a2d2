package core

import (
	"fmt"
)

type Color byte

const (
	ColorNone Color = iota
	ColorWhite
	ColorBlack
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "w"
	case ColorBlack:
		return "b"
	default:
		return "-"
	}
}

// Name returns the long form used in messages
func (c Color) Name() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts "w"/"b" and "white"/"black"
func ParseColor(s string) (Color, error) {
	switch s {
	case "w", "white":
		return ColorWhite, nil
	case "b", "black":
		return ColorBlack, nil
	default:
		return ColorNone, fmt.Errorf("invalid color %q: must be 'w' or 'b'", s)
	}
}

type PieceType byte

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// PieceTypes lists every real piece type in value order
var PieceTypes = [...]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

var pieceLetters = [...]byte{NoPiece: '.', Pawn: 'p', Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q', King: 'k'}

// Letter returns the lower-case piece letter
func (t PieceType) Letter() byte {
	if int(t) >= len(pieceLetters) {
		return '?'
	}
	return pieceLetters[t]
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

// PieceTypeFromLetter maps a letter of either case to its type
func PieceTypeFromLetter(ch byte) PieceType {
	if ch >= 'A' && ch <= 'Z' {
		ch += 'a' - 'A'
	}
	for t, l := range pieceLetters {
		if t != int(NoPiece) && l == ch {
			return PieceType(t)
		}
	}
	return NoPiece
}

// Piece is a tagged piece; the zero value is an empty square
type Piece struct {
	Type  PieceType
	Color Color
}

var Empty = Piece{}

func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

func (p Piece) IsWhite() bool {
	return p.Color == ColorWhite
}

// Code returns the one-letter code, upper case for White
func (p Piece) Code() byte {
	if p.IsEmpty() {
		return 0
	}
	l := p.Type.Letter()
	if p.Color == ColorWhite {
		return l - ('a' - 'A')
	}
	return l
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return ""
	}
	return string(p.Code())
}

// PieceFromCode parses a one-letter code, returning false for anything else
func PieceFromCode(ch byte) (Piece, bool) {
	t := PieceTypeFromLetter(ch)
	if t == NoPiece {
		return Empty, false
	}
	color := ColorBlack
	if ch >= 'A' && ch <= 'Z' {
		color = ColorWhite
	}
	return Piece{Type: t, Color: color}, true
}

// Coord addresses a square; row 0 is Black's back rank
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Square names the coordinate for a board with the given row count, e.g. "a1"
func (c Coord) Square(rows int) string {
	return fmt.Sprintf("%c%d", 'a'+c.Col, rows-c.Row)
}

// ParseSquare is the inverse of Coord.Square; bounds are checked by the board
func ParseSquare(s string, rows int) (Coord, error) {
	if len(s) < 2 || s[0] < 'a' || s[0] > 'z' {
		return Coord{}, fmt.Errorf("invalid square %q", s)
	}
	rank := 0
	for _, ch := range s[1:] {
		if ch < '0' || ch > '9' {
			return Coord{}, fmt.Errorf("invalid square %q", s)
		}
		rank = rank*10 + int(ch-'0')
	}
	if rank < 1 || rank > rows {
		return Coord{}, fmt.Errorf("invalid square %q: rank out of range", s)
	}
	return Coord{Row: rows - rank, Col: int(s[0] - 'a')}, nil
}

type Move struct {
	From      Coord     `json:"from"`
	To        Coord     `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

// Notation renders the move in coordinate form, e.g. "a2a3" or "b4b5q"
func (m Move) Notation(rows int) string {
	s := m.From.Square(rows) + m.To.Square(rows)
	if m.Promotion != NoPiece {
		s += string(m.Promotion.Letter())
	}
	return s
}

// ParseMove reads coordinate notation for a board with the given row count
func ParseMove(s string, rows int) (Move, error) {
	var m Move
	if len(s) < 4 {
		return m, fmt.Errorf("invalid move %q", s)
	}

	// Split after the first digit run to support two-digit ranks
	i := 1
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	from, err := ParseSquare(s[:i], rows)
	if err != nil {
		return m, fmt.Errorf("invalid move %q: %w", s, err)
	}

	if i+1 >= len(s) {
		return m, fmt.Errorf("invalid move %q", s)
	}
	j := i + 1
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		j++
	}
	to, err := ParseSquare(s[i:j], rows)
	if err != nil {
		return m, fmt.Errorf("invalid move %q: %w", s, err)
	}

	m.From, m.To = from, to
	switch rest := s[j:]; len(rest) {
	case 0:
	case 1:
		m.Promotion = PieceTypeFromLetter(rest[0])
		if m.Promotion == NoPiece || m.Promotion == Pawn || m.Promotion == King {
			return m, fmt.Errorf("invalid move %q: bad promotion piece", s)
		}
	default:
		return m, fmt.Errorf("invalid move %q", s)
	}
	return m, nil
}
