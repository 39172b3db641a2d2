package core

import "testing"

func TestSquareRoundTrip(t *testing.T) {
	tests := []struct {
		square string
		rows   int
		want   Coord
	}{
		{"a1", 5, Coord{Row: 4, Col: 0}},
		{"d5", 5, Coord{Row: 0, Col: 3}},
		{"e2", 8, Coord{Row: 6, Col: 4}},
		{"b10", 12, Coord{Row: 2, Col: 1}},
	}
	for _, tt := range tests {
		got, err := ParseSquare(tt.square, tt.rows)
		if err != nil {
			t.Fatalf("ParseSquare(%q) failed: %v", tt.square, err)
		}
		if got != tt.want {
			t.Errorf("ParseSquare(%q) = %+v, want %+v", tt.square, got, tt.want)
		}
		if back := got.Square(tt.rows); back != tt.square {
			t.Errorf("Square() = %q, want %q", back, tt.square)
		}
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		in      string
		rows    int
		want    Move
		wantErr bool
	}{
		{"a2a3", 5, Move{From: Coord{3, 0}, To: Coord{2, 0}}, false},
		{"b4b5q", 5, Move{From: Coord{1, 1}, To: Coord{0, 1}, Promotion: Queen}, false},
		{"a10a11", 12, Move{From: Coord{2, 0}, To: Coord{1, 0}}, false},
		{"a2", 5, Move{}, true},
		{"a2a6", 5, Move{}, true},
		{"a2a3k", 5, Move{}, true},
		{"a2a3qq", 5, Move{}, true},
		{"a23", 5, Move{}, true},
		{"A2a3", 5, Move{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMove(tt.in, tt.rows)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if s := got.Notation(tt.rows); s != tt.in {
				t.Errorf("Notation() = %q, want %q", s, tt.in)
			}
		})
	}
}

func TestPieceCodes(t *testing.T) {
	for _, ch := range []byte("PNBRQKpnbrqk") {
		p, ok := PieceFromCode(ch)
		if !ok {
			t.Fatalf("PieceFromCode(%q) failed", ch)
		}
		if p.Code() != ch {
			t.Errorf("Code() = %q, want %q", p.Code(), ch)
		}
	}
	if _, ok := PieceFromCode('x'); ok {
		t.Error("accepted unknown code")
	}
	if !Empty.IsEmpty() || Empty.String() != "" {
		t.Error("empty piece misbehaves")
	}
}

func TestWinState(t *testing.T) {
	if WinState(ColorWhite) != StateWhiteWins || WinState(ColorBlack) != StateBlackWins {
		t.Error("WinState mapping is wrong")
	}
	if StatePending.IsOver() || !StateBlackWins.IsOver() {
		t.Error("IsOver mapping is wrong")
	}
}
