package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/dropcatch/internal/audio"
	"github.com/tomz197/dropcatch/internal/config"
	"github.com/tomz197/dropcatch/internal/highscore"
	"github.com/tomz197/dropcatch/internal/loop/client"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/round"
)

const defaultAppName = "dropcatch"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run plays until the player quits. Deferred cleanup, including restoring
// the terminal, has finished by the time it returns.
func run() error {
	logger, closeLog, err := newLogger(config.GetEnv("DROPCATCH_LOG_FILE", ""))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeLog()

	opts := client.ClientOptions{
		Username:   config.GetEnv("USER", "you"),
		Difficulty: config.GetEnv("DROPCATCH_DIFFICULTY", round.Normal),
		Logger:     logger,
	}

	if path := config.GetEnv("DROPCATCH_DIFFICULTY_FILE", ""); path != "" {
		table, err := round.LoadTable(path)
		if err != nil {
			return fmt.Errorf("failed to load difficulty file: %w", err)
		}
		opts.Table = &table
	}

	archive, err := highscore.OpenArchive(config.GetEnv("DROPCATCH_APP_NAME", defaultAppName))
	if err != nil {
		logger.Warn("high scores will not be saved", "err", err)
		opts.Store = highscore.NewMemoryStore()
	} else {
		opts.Store = archive.Local()
	}

	if config.GetEnvBool("DROPCATCH_AUDIO", false) {
		spk := audio.NewSpeaker()
		if err := spk.Init(); err != nil {
			logger.Warn("audio disabled", "err", err)
		} else {
			defer spk.Close()
			opts.Sinks = append(opts.Sinks, audio.NewSink(spk, 0.6, logger))
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	// A local hub keeps the session leaderboard.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := server.NewServer(logger)
	go hub.Run(ctx)

	c := client.NewClient(hub, bufio.NewReader(os.Stdin), os.Stdout, opts)
	if err := c.Run(); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	return nil
}

// newLogger logs to path, or nowhere when path is empty since stdout is the game screen.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "dropcatch",
	})
	return logger, func() { _ = f.Close() }, nil
}
