package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"termtris/client"
	"termtris/config"
	"termtris/leaderboard"
	"termtris/tetris"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"
)

var emph = color.New(color.FgBlue, color.Bold).SprintFunc()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "termtris",
		Short:        "Tetris in your terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return play(cmd.Context(), cmd.Flags())
		},
	}
	config.Flags(cmd.PersistentFlags())
	cmd.AddCommand(newScoresCmd(), newConfigCmd())
	return cmd
}

// app holds what every command needs: the configuration, the logger and the
// leaderboard.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
	board   *leaderboard.Leaderboard
	// boardErr is set when no leaderboard provider is available.
	boardErr error
}

func newApp(ctx context.Context, fs *pflag.FlagSet) (*app, error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return nil, err
	}
	l, logFile, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	board := leaderboard.New(l, cfg.Providers(l)...)
	return &app{
		cfg:      cfg,
		logger:   l,
		logFile:  logFile,
		board:    board,
		boardErr: board.Init(ctx),
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.board.Close(), a.logFile.Close())
}

func play(ctx context.Context, fs *pflag.FlagSet) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("termtris needs an interactive terminal")
	}
	a, err := newApp(ctx, fs)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := &client.Options{
		Name:    a.cfg.Name,
		NoGhost: a.cfg.NoGhost,
		TetrisOptions: func() *tetris.Options {
			return a.cfg.TetrisOptions(a.logger)
		},
	}
	if a.boardErr == nil {
		opts.Leaderboard = a.board
	}
	c, err := client.New(a.logger, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	a.logger.Info("starting termtris", slog.String("name", a.cfg.Name), slog.String("leaderboard", a.board.ProviderName()))
	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	c.Start()
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.WriteDefault()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file written to %s\n", emph(path))
			return nil
		},
	}, &cobra.Command{
		Use:   "path",
		Short: "Print the directory of the config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Dir())
		},
	})
	return cmd
}
