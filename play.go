package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/boxpush/game/announce"
	"github.com/wricardo/mcp-training/boxpush/game/service"
	"github.com/wricardo/mcp-training/boxpush/game/session"
)

// terminal prints command results for one session. It is also registered
// as a publisher so timed transitions show up between prompts.
type terminal struct {
	mu        sync.Mutex
	out       io.Writer
	sessionID string
}

func (t *terminal) Publish(sessionID string, result *service.CommandResult) {
	if sessionID != t.sessionID || result.Source != service.SourceScheduler {
		return
	}
	t.print(result.Cues, result.HUD, result)
}

func (t *terminal) print(cues []announce.Cue, hud []string, result *service.CommandResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, cue := range cues {
		if cue.Text != "" {
			fmt.Fprintf(t.out, "> %s\n", cue.Text)
		}
	}
	if result != nil && result.State != nil && len(result.State.Rows) > 0 {
		fmt.Fprintln(t.out)
		for _, row := range result.State.Rows {
			fmt.Fprintf(t.out, "  %s\n", row)
		}
		fmt.Fprintln(t.out)
	}
	if len(hud) > 0 {
		fmt.Fprintln(t.out, strings.Join(hud, " | "))
	}
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	packs, err := openPacks(cfg, logger)
	if err != nil {
		return err
	}
	if err := packs.SetDefault(cfg.DefaultPack); err != nil {
		logger.Warn("default pack unavailable, using built-in levels", "pack", cfg.DefaultPack, "error", err)
	}

	game := service.NewGameService(session.NewManager(), packs, cfg.ServiceOptions(logger))
	defer game.Close()

	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return play(ctx, game, cmd.Args().First(), in, out)
}

// play runs a line-oriented game loop: single-letter keys (w, a, s, d, r,
// h, v, i) are key presses, anything else is a spoken phrase. "q" quits.
func play(ctx context.Context, game service.GameService, packID string, in io.Reader, out io.Writer) error {
	info, err := game.CreateSession(ctx, packID)
	if err != nil {
		return err
	}
	defer game.DeleteSession(context.Background(), info.ID)

	term := &terminal{out: out, sessionID: info.ID}
	game.AddPublisher(term)

	fmt.Fprintf(out, "%s (%s)\n", info.PackName, info.PackID)
	term.print(info.Cues, info.HUD, &service.CommandResult{State: info.State})

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "? ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		var result *service.CommandResult
		switch {
		case line == "":
			continue
		case line == "q" || line == "quit" || line == "exit":
			return nil
		case len(line) == 1:
			result, err = game.Key(ctx, info.ID, line)
		default:
			result, err = game.Voice(ctx, info.ID, line)
		}
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		term.print(result.Cues, result.HUD, result)
	}
}
