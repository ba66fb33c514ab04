package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"

	"github.com/tholstrup/gbacore/gba"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbacore"
	app.Description = "A Game Boy Advance emulator core"
	app.Usage = "gbacore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a terminal interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "load-state",
			Usage: "Path to a save-state file to load before running",
		},
		cli.StringFlag{
			Name:  "save-state",
			Usage: "Path to write a save-state file to after running",
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	romBytes, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	emu, err := gba.New(romBytes)
	if err != nil {
		return fmt.Errorf("creating emulator: %w", err)
	}
	defer emu.Close()

	if loadPath := c.String("load-state"); loadPath != "" {
		f, err := os.Open(loadPath)
		if err != nil {
			return fmt.Errorf("opening save state: %w", err)
		}
		err = emu.LoadState(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("loading save state: %w", err)
		}
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames option with a positive value")
		}

		snapshotInterval := c.Int("snapshot-interval")
		snapshotDir := c.String("snapshot-dir")

		if snapshotInterval > 0 {
			if snapshotDir == "" {
				tempDir, err := os.MkdirTemp("", "gbacore-snapshots-*")
				if err != nil {
					return fmt.Errorf("creating snapshot directory: %w", err)
				}
				snapshotDir = tempDir
			} else if err := os.MkdirAll(snapshotDir, 0755); err != nil {
				return fmt.Errorf("creating snapshot directory: %w", err)
			}
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		slog.SetDefault(slog.New(handler))

		romName := filepath.Base(romPath)
		romName = strings.TrimSuffix(romName, filepath.Ext(romName))

		slog.Info("running headless mode", "frames", frames, "snapshot_interval", snapshotInterval, "snapshot_dir", snapshotDir)

		if err := runHeadless(emu, romName, frames, snapshotInterval, snapshotDir); err != nil {
			return err
		}
	} else {
		term, err := newTerminalRenderer(emu)
		if err != nil {
			return err
		}
		if err := term.Run(); err != nil {
			return err
		}
	}

	if savePath := c.String("save-state"); savePath != "" {
		f, err := os.Create(savePath)
		if err != nil {
			return fmt.Errorf("creating save state file: %w", err)
		}
		err = emu.SaveState(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("saving save state: %w", err)
		}
	}

	return nil
}
