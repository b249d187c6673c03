// Command boxpush serves the Box Push puzzle game.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays in the terminal with keys or typed voice phrases
//  4. "levels" lists, checks and exports level packs
//
// Settings come from .env and BOXPUSH_* variables (see package config);
// flags override them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/boxpush/config"
	"github.com/wricardo/mcp-training/boxpush/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Box Push Server"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "boxpush",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "env-file", Usage: "dotenv files to load (default .env)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "levels-dir", Usage: "directory containing level packs"},
			&cli.StringFlag{Name: "pack", Usage: "default level pack"},
			&cli.StringFlag{Name: "journal-dir", Usage: "outcome journal directory (empty disables it)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "debug", Usage: "shorthand for --log-level debug"},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
					&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
					&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain"},
				},
				Action: serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Usage: "REST API to proxy to when it is already running"},
				},
				Action: mcpAction,
			},
			{
				Name:      "play",
				Usage:     "Play in the terminal",
				ArgsUsage: "[pack-id]",
				Action:    playAction,
			},
			levelsCommand(),
		},
	}
}

// loadConfig reads .env files and the environment, then applies flags.
func loadConfig(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, loaded, err := config.Load(cmd.StringSlice("env-file")...)
	if err != nil {
		return nil, nil, err
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("levels-dir") {
		cfg.LevelsDir = cmd.String("levels-dir")
	}
	if cmd.IsSet("pack") {
		cfg.DefaultPack = cmd.String("pack")
	}
	if cmd.IsSet("journal-dir") {
		cfg.JournalDir = cmd.String("journal-dir")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	errOut := cmd.Root().ErrWriter
	if errOut == nil {
		errOut = os.Stderr
	}
	logger := logging.NewLogger(errOut, logging.ParseLevel(cfg.LogLevel))
	for _, f := range loaded {
		logger.Debug("loaded environment file", "file", f)
	}
	return cfg, logger, nil
}
