// Package variant defines board configurations: shape, piece values,
// positional tables, pawn rules and difficulty levels.
package variant

import (
	"fmt"
	"sort"

	"minichess/internal/board"
	"minichess/internal/core"
)

const (
	NameCompact = "compact"
	NameClassic = "classic"
)

// Heuristics weights the simple positional terms used when a variant has no
// piece-square tables
type Heuristics struct {
	PawnAdvance      int // per rank advanced from the start rank
	CenterFile       int // non-king piece standing on a central file
	KingShelter      int // king on its own back rank
	KingCorner       int // additional bonus when that square is an edge file
	QueenCenter      int // queen on a central file away from both back ranks
	RookOpenFile     int // no own pawn on the rook's file
	RookFullOpenFile int // additional bonus when no pawn at all is on the file
}

// Config is the parameter that differentiates board variants. Move
// generation and evaluation read it, never hard-coded sizes.
type Config struct {
	Name        string
	Rows        int
	Cols        int
	PieceValues map[core.PieceType]int

	// PositionTables hold rows*cols entries per piece type from White's
	// point of view, index row*cols+col with row 0 being Black's back rank
	PositionTables map[core.PieceType][]int
	Heuristics     *Heuristics

	PawnDoubleStep bool
	StartFEN       string

	// Levels maps difficulty level i (1-based) to search depth Levels[i-1]
	Levels []int
}

// ConfigurationError reports an unusable board configuration
type ConfigurationError struct {
	Variant string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("variant %q: invalid %s: %s", e.Variant, e.Field, e.Reason)
}

func (c *Config) fail(field, format string, args ...any) error {
	return &ConfigurationError{Variant: c.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks every constraint the engine relies on
func (c *Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return c.fail("shape", "rows and cols must be positive, got %dx%d", c.Rows, c.Cols)
	}
	if c.Cols > 26 {
		return c.fail("shape", "at most 26 files supported, got %d", c.Cols)
	}
	if c.Rows < 3 {
		return c.fail("shape", "at least 3 rows required for pawn play, got %d", c.Rows)
	}

	for _, t := range core.PieceTypes {
		if _, ok := c.PieceValues[t]; !ok {
			return c.fail("piece values", "missing value for %s", t)
		}
	}

	if c.PositionTables != nil {
		for _, t := range core.PieceTypes {
			table, ok := c.PositionTables[t]
			if !ok {
				return c.fail("position tables", "missing table for %s", t)
			}
			if len(table) != c.Rows*c.Cols {
				return c.fail("position tables", "%s table has %d entries, want %d", t, len(table), c.Rows*c.Cols)
			}
		}
	}

	if len(c.Levels) == 0 {
		return c.fail("levels", "at least one difficulty level required")
	}
	for i, d := range c.Levels {
		if d < 1 {
			return c.fail("levels", "level %d has depth %d", i+1, d)
		}
	}

	if c.StartFEN != "" {
		if _, err := board.ParseFEN(c.StartFEN, c.Rows, c.Cols); err != nil {
			return c.fail("start position", "%v", err)
		}
	}
	return nil
}

// PromotionRank is the row where pawns of the given color promote
func (c *Config) PromotionRank(color core.Color) int {
	if color == core.ColorWhite {
		return 0
	}
	return c.Rows - 1
}

// PawnStartRank is the row pawns of the given color start from
func (c *Config) PawnStartRank(color core.Color) int {
	if color == core.ColorWhite {
		return c.Rows - 2
	}
	return 1
}

// PawnDirection is the row delta of a pawn step
func PawnDirection(color core.Color) int {
	if color == core.ColorWhite {
		return -1
	}
	return 1
}

// DepthForLevel clamps the level into range and returns its search depth.
// Level 0 selects the middle level.
func (c *Config) DepthForLevel(level int) int {
	if len(c.Levels) == 0 {
		return 1
	}
	if level == 0 {
		level = (len(c.Levels) + 1) / 2
	}
	if level < 1 {
		level = 1
	}
	if level > len(c.Levels) {
		level = len(c.Levels)
	}
	return c.Levels[level-1]
}

// StartBoard builds the variant's starting position
func (c *Config) StartBoard() (*board.Board, error) {
	if c.StartFEN == "" {
		return nil, c.fail("start position", "not configured")
	}
	return board.ParseFEN(c.StartFEN, c.Rows, c.Cols)
}

// NewBoard builds a board of this variant's shape from the plain layout form
func (c *Config) NewBoard(layout [][]string, turn core.Color) (*board.Board, error) {
	b, err := board.FromLayout(layout, turn)
	if err != nil {
		return nil, err
	}
	if b.Rows() != c.Rows || b.Cols() != c.Cols {
		return nil, fmt.Errorf("layout is %dx%d, variant %s needs %dx%d", b.Rows(), b.Cols(), c.Name, c.Rows, c.Cols)
	}
	return b, nil
}

var registry = map[string]func() *Config{
	NameCompact: Compact,
	NameClassic: Classic,
}

// ByName returns a fresh copy of a built-in variant
func ByName(name string) (*Config, error) {
	if name == "" {
		name = NameCompact
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, &ConfigurationError{Variant: name, Field: "name", Reason: "unknown variant"}
	}
	return ctor(), nil
}

// Names lists the built-in variants
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
