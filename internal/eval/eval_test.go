package eval

import (
	"testing"

	"minichess/internal/board"
	"minichess/internal/variant"
)

func mustFEN(t *testing.T, cfg *variant.Config, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen, cfg.Rows, cfg.Cols)
	if err != nil {
		t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
	}
	return b
}

func TestNewPicksEvaluator(t *testing.T) {
	if _, ok := New(variant.Classic()).(*TableEvaluator); !ok {
		t.Error("classic should use the table evaluator")
	}
	if _, ok := New(variant.Compact()).(*HeuristicEvaluator); !ok {
		t.Error("compact should use the heuristic evaluator")
	}
}

func TestEvaluateScores(t *testing.T) {
	compact := variant.Compact()
	classic := variant.Classic()

	tests := []struct {
		name string
		cfg  *variant.Config
		fen  string
		want int
	}{
		{"compact start", compact, compact.StartFEN, 0},
		{"classic start", classic, classic.StartFEN, 0},
		{"compact pawn advanced one rank", compact, "rqkr/pppp/P3/1PPP/RQKR b", 15},
		{"classic white knight d4", classic, "8/8/8/8/3N4/8/8/8 w", 340},
		{"classic black knight d5", classic, "8/8/8/3n4/8/8/8/8 w", -340},
		{"classic white knight a1", classic, "8/8/8/8/8/8/8/N7 w", 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.cfg).Evaluate(mustFEN(t, tt.cfg, tt.fen))
			if got != tt.want {
				t.Errorf("Evaluate = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEvaluateAntisymmetric(t *testing.T) {
	compact := variant.Compact()
	classic := variant.Classic()

	tests := []struct {
		cfg *variant.Config
		fen string
	}{
		{compact, "rqkr/pppp/P3/1PPP/RQKR b"},
		{compact, "r1k1/p1pq/1P2/P1PP/RQK1 w"},
		{compact, "k3/4/2Q1/4/R2K b"},
		{compact, "4/1r2/P3/4/K2k w"},
		{classic, "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b"},
		{classic, "r3k2r/ppq2ppp/2n1bn2/3p4/3P4/2N1BN2/PPQ2PPP/R3K2R w"},
		{classic, "8/8/3k4/8/8/4K3/6Q1/8 w"},
	}

	for _, tt := range tests {
		t.Run(tt.fen, func(t *testing.T) {
			ev := New(tt.cfg)
			b := mustFEN(t, tt.cfg, tt.fen)
			score := ev.Evaluate(b)
			mirrored := ev.Evaluate(b.Mirrored())
			if score != -mirrored {
				t.Errorf("Evaluate = %d, mirrored = %d, want negation", score, mirrored)
			}
		})
	}
}

func TestEvaluatePure(t *testing.T) {
	for _, cfg := range []*variant.Config{variant.Compact(), variant.Classic()} {
		b, err := cfg.StartBoard()
		if err != nil {
			t.Fatalf("StartBoard failed: %v", err)
		}
		before := b.Clone()
		ev := New(cfg)
		first := ev.Evaluate(b)
		if second := ev.Evaluate(b); first != second {
			t.Errorf("%s: repeated evaluation differs: %d vs %d", cfg.Name, first, second)
		}
		if !b.Equal(before) {
			t.Errorf("%s: Evaluate modified the board", cfg.Name)
		}
	}
}

func TestMaterial(t *testing.T) {
	cfg := variant.Compact()
	b := mustFEN(t, cfg, "k3/4/4/4/QR1K w")
	if got, want := Material(cfg, b), 900+500; got != want {
		t.Errorf("Material = %d, want %d", got, want)
	}
}
