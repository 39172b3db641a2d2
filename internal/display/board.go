// Package display renders boards and engine output for terminals.
package display

import (
	"fmt"
	"io"
	"strings"

	"minichess/internal/core"
)

// RenderBoard writes an ASCII board with colored pieces. The first and last
// non-blank lines are file labels; every other line is a rank.
func RenderBoard(w io.Writer, asciiBoard string) {
	var lines []string
	for _, line := range strings.Split(asciiBoard, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	var sb strings.Builder
	for i, line := range lines {
		isFileLine := i == 0 || i == len(lines)-1

		for _, char := range line {
			switch {
			case isFileLine && char >= 'a' && char <= 'z':
				sb.WriteString(Cyan + string(char) + Reset)
			case char >= 'A' && char <= 'Z':
				sb.WriteString(Blue + string(char) + Reset)
			case char >= 'a' && char <= 'z':
				sb.WriteString(Red + string(char) + Reset)
			case char >= '0' && char <= '9':
				sb.WriteString(Cyan + string(char) + Reset)
			default:
				sb.WriteRune(char)
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprint(w, sb.String())
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn core.Color) string {
	if turn == core.ColorWhite {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}

// Colorize wraps text in color
func Colorize(color, text string) string {
	return color + text + Reset
}
