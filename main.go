// orchat - OpenRouter chat in your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/orchat-tui/internal/cli"
	"github.com/jeranaias/orchat-tui/internal/config"
	"github.com/jeranaias/orchat-tui/internal/logging"
	"github.com/jeranaias/orchat-tui/internal/store"
	"github.com/jeranaias/orchat-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		if err := runTUI(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdAsk:
		exitOn(cli.HandleAsk(args))
	case cli.CmdKey:
		exitOn(cli.HandleKey(args))
	case cli.CmdList:
		exitOn(cli.HandleList(args))
	case cli.CmdExport:
		exitOn(cli.HandleExport(args))
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// exitOn prints the error and exits non-zero.
func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires up config, logging, storage, and the Bubble Tea program.
func runTUI(args *cli.Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if args.Model != "" {
		cfg.Model = args.Model
	}

	// The TUI owns stdout, so logs go to a file.
	logPath := cfg.Log.Path
	if logPath == "" {
		logPath, err = logging.DefaultPath()
		if err != nil {
			return err
		}
	}
	logger, err := logging.New(logPath, cfg.Log.Level)
	if err != nil {
		logger = logging.Nop()
	}
	defer logger.Sync()

	dbPath, err := store.DefaultPath()
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	app := ui.NewApp(st, cfg, logger)
	program := tea.NewProgram(app, tea.WithAltScreen())
	app.SetProgram(program)

	// Config edits on disk reach the running UI through the watcher.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	startConfigWatcher(watchCtx, app, logger)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// startConfigWatcher forwards config reloads into the program.
func startConfigWatcher(ctx context.Context, app *ui.App, logger *zap.Logger) {
	path, err := config.Path()
	if err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
		return
	}
	watcher := config.NewWatcher(path, logger)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-watcher.Reloads():
				if !ok {
					return
				}
				app.DeliverConfig(cfg)
			}
		}
	}()
}
