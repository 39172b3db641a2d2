package variant

import (
	"errors"
	"testing"

	"minichess/internal/core"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range Names() {
		cfg, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		b, err := cfg.StartBoard()
		if err != nil {
			t.Fatalf("%s: StartBoard failed: %v", name, err)
		}
		if b.Rows() != cfg.Rows || b.Cols() != cfg.Cols {
			t.Errorf("%s: start board is %dx%d", name, b.Rows(), b.Cols())
		}
		if !b.HasKing(core.ColorWhite) || !b.HasKing(core.ColorBlack) {
			t.Errorf("%s: start position is missing a king", name)
		}
	}
}

func TestByName(t *testing.T) {
	cfg, err := ByName("")
	if err != nil || cfg.Name != NameCompact {
		t.Errorf("empty name should select compact, got %v, %v", cfg, err)
	}

	_, err = ByName("shogi")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}

	a, _ := ByName(NameClassic)
	b, _ := ByName(NameClassic)
	a.PieceValues[core.Pawn] = 1
	if b.PieceValues[core.Pawn] != 100 {
		t.Error("ByName returned shared configuration")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero rows", func(c *Config) { c.Rows = 0 }, "shape"},
		{"too few rows", func(c *Config) { c.Rows = 2 }, "shape"},
		{"too many files", func(c *Config) { c.Cols = 27 }, "shape"},
		{"missing king value", func(c *Config) { delete(c.PieceValues, core.King) }, "piece values"},
		{"missing table", func(c *Config) { delete(c.PositionTables, core.Rook) }, "position tables"},
		{"short table", func(c *Config) { c.PositionTables[core.Queen] = []int{1, 2, 3} }, "position tables"},
		{"no levels", func(c *Config) { c.Levels = nil }, "levels"},
		{"zero depth level", func(c *Config) { c.Levels = []int{1, 0} }, "levels"},
		{"start does not fit", func(c *Config) { c.StartFEN = "rqkr/pppp/4/PPPP/RQKR w" }, "start position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Classic()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("field %q, want %q", cfgErr.Field, tt.field)
			}
		})
	}
}

func TestDepthForLevel(t *testing.T) {
	cfg := Compact()
	tests := []struct {
		level int
		want  int
	}{
		{0, 3},
		{1, 1},
		{3, 3},
		{5, 5},
		{9, 5},
		{-2, 1},
	}
	for _, tt := range tests {
		if got := cfg.DepthForLevel(tt.level); got != tt.want {
			t.Errorf("DepthForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestPawnGeometry(t *testing.T) {
	cfg := Classic()
	if cfg.PromotionRank(core.ColorWhite) != 0 || cfg.PromotionRank(core.ColorBlack) != 7 {
		t.Error("wrong promotion ranks")
	}
	if cfg.PawnStartRank(core.ColorWhite) != 6 || cfg.PawnStartRank(core.ColorBlack) != 1 {
		t.Error("wrong pawn start ranks")
	}
	if PawnDirection(core.ColorWhite) != -1 || PawnDirection(core.ColorBlack) != 1 {
		t.Error("wrong pawn directions")
	}
}

func TestNewBoardShape(t *testing.T) {
	cfg := Compact()
	layout := [][]string{
		{"", "", "k", ""},
		{"", "", "", ""},
		{"", "", "", ""},
		{"", "", "", ""},
		{"", "", "K", ""},
	}
	if _, err := cfg.NewBoard(layout, core.ColorWhite); err != nil {
		t.Errorf("NewBoard failed: %v", err)
	}
	if _, err := cfg.NewBoard(layout[:4], core.ColorWhite); err == nil {
		t.Error("expected shape error")
	}
}
