// Package cli is the local play loop: command parsing, terminal output and
// a game session against the in-process engine.
package cli

import (
	"strings"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdMove
	CmdMoves
	CmdUndo
	CmdLevel
	CmdShow
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
}

// ParseCommand maps one input line onto a command. Anything that is not a
// keyword is taken as a move.
func ParseCommand(input string) *Command {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "new", "n":
		return &Command{Type: CmdNew, Args: args}
	case "moves", "m":
		return &Command{Type: CmdMoves, Args: args}
	case "undo", "u":
		return &Command{Type: CmdUndo, Args: args}
	case "level", "l":
		return &Command{Type: CmdLevel, Args: args}
	case "show", "s":
		return &Command{Type: CmdShow}
	case "verbose", "v":
		return &Command{Type: CmdVerbose}
	case "history", "h":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit", "x":
		return &Command{Type: CmdQuit}
	default:
		return &Command{Type: CmdMove, Args: []string{cmd}}
	}
}
