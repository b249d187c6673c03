package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
)

func levelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "Inspect level packs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List loadable packs",
				Action: levelsListAction,
			},
			{
				Name:   "check",
				Usage:  "Validate every pack file in the levels directory",
				Action: levelsCheckAction,
			},
			{
				Name:      "export",
				Usage:     "Write a pack as YAML",
				ArgsUsage: "<pack-id> [file]",
				Action:    levelsExportAction,
			},
		},
	}
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func levelsListAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	packs, err := openPacks(cfg, logger)
	if err != nil {
		return err
	}

	infos, err := packs.ListPacks()
	if err != nil {
		return err
	}
	out := stdout(cmd)
	for _, info := range infos {
		fmt.Fprintf(out, "%s\t%s\t%d levels\t%s\n", info.ID, info.Name, info.LevelCount, strings.Join(info.LevelNames, ", "))
	}
	return nil
}

func levelsCheckAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	packs, err := catalog.NewManager(cfg.LevelsDir, logger)
	if err != nil {
		return err
	}

	failures, err := packs.Check()
	if err != nil {
		return err
	}
	out := stdout(cmd)
	if len(failures) == 0 {
		fmt.Fprintf(out, "all packs in %s are valid\n", cfg.LevelsDir)
		return nil
	}

	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %v\n", name, failures[name])
	}
	return fmt.Errorf("%d invalid pack(s)", len(failures))
}

func levelsExportAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return errors.New("usage: levels export <pack-id> [file]")
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	packs, err := openPacks(cfg, logger)
	if err != nil {
		return err
	}

	pack, err := packs.LoadPack(cmd.Args().First())
	if err != nil {
		return err
	}
	data, err := catalog.EncodePack(pack.Name, pack.Description, pack.Levels)
	if err != nil {
		return err
	}

	if path := cmd.Args().Get(1); path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Info("pack exported", "pack", pack.ID, "file", path, "levels", pack.Levels.Count())
		return nil
	}
	_, err = stdout(cmd).Write(data)
	return err
}
