// Package main is the interactive minichess player: a readline loop over a
// local game against the engine.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"minichess/internal/cli"
	"minichess/internal/core"
	"minichess/internal/display"
	"minichess/internal/variant"

	"github.com/chzyer/readline"
)

func main() {
	var (
		variantName = flag.String("variant", variant.NameCompact, "Board variant: "+strings.Join(variant.Names(), ", "))
		level       = flag.Int("level", 0, "Computer level (0 selects the middle level)")
		color       = flag.String("color", "w", "Your color: w or b")
		seed        = flag.Uint64("seed", 0, "Seed for engine tie-breaks (0 for random)")
		history     = flag.String("history", ".minichess_history", "Readline history file (empty disables)")
		searchTime  = flag.Duration("time", 2*time.Second, "Computer thinking time per move")
	)
	flag.Parse()

	human, err := core.ParseColor(*color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%v%s\n", display.Red, err, display.Reset)
		os.Exit(2)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("minichess"),
		HistoryFile:     *history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	session, err := cli.NewSession(rl.Stdout(), cli.Options{
		Variant:    *variantName,
		Level:      *level,
		Human:      human,
		Seed:       *seed,
		SearchTime: *searchTime,
	})
	if err != nil {
		fmt.Fprintf(rl.Stderr(), "%s%v%s\n", display.Red, err, display.Reset)
		return
	}
	session.Start()

	for {
		rl.SetPrompt(session.Prompt())

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Interrupt clears the line
			continue
		}

		if !session.Execute(strings.TrimSpace(line)) {
			break
		}
	}

	fmt.Fprintf(rl.Stdout(), "%sGoodbye!%s\n", display.Cyan, display.Reset)
}
