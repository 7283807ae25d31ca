package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/dropcatch/internal/config"
	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/highscore"
	"github.com/tomz197/dropcatch/internal/loop/client"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/round"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultAppName     = "dropcatch"
)

// Shared by all SSH sessions
var (
	hub     *server.Server
	table   = round.DefaultTable()
	archive *highscore.Archive
	logger  = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "dropcatch",
	})
)

func main() {
	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	if config.GetEnvBool("DROPCATCH_DEBUG", false) {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Info("ssh config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	if path := config.GetEnv("DROPCATCH_DIFFICULTY_FILE", ""); path != "" {
		t, err := round.LoadTable(path)
		if err != nil {
			logger.Fatal("failed to load difficulty file", "path", path, "err", err)
		}
		table = t
	}

	var err error
	archive, err = highscore.OpenArchive(config.GetEnv("DROPCATCH_APP_NAME", defaultAppName))
	if err != nil {
		logger.Warn("high scores kept in memory only", "err", err)
	}

	// Start the shared hub
	ctx, cancelHub := context.WithCancel(context.Background())
	hub = server.NewServer(logger.WithPrefix("hub"))
	go hub.Run(ctx)
	logger.Info("hub started")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gameMiddleware,
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting ssh server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	// Notify players and wait for them to disconnect
	hub.Shutdown(15 * time.Second)
	cancelHub()
	logger.Info("hub stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// storeFor returns the high score store of an SSH user.
func storeFor(user string) round.HighScoreStore {
	if archive == nil {
		return highscore.NewMemoryStore()
	}
	return archive.Profile(user)
}

// gameMiddleware handles SSH sessions and runs the game client.
func gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		sessLog := logger.With("user", sess.User())
		sessLog.Info("new game session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		clientOpts := client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Table:        &table,
			Store:        storeFor(sess.User()),
			Difficulty:   config.GetEnv("DROPCATCH_DIFFICULTY", round.Normal),
			Logger:       sessLog,
		}

		c := client.NewClient(hub, bufio.NewReader(sess), sess, clientOpts)
		if err := c.Run(); err != nil {
			sessLog.Error("game error", "err", err)
		}

		sessLog.Info("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
