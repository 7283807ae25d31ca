// Package server is the hub shared by every session of one process. It
// tracks connected players, collects finished rounds into a leaderboard and
// announces shutdowns. Gameplay itself runs per session in package client.
package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/dropcatch/internal/loop/config"
)

// GameServer is the interface clients use to communicate with the hub.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	ReportResult(clientID int, result Result)
	GetSnapshot() *Snapshot
}

// Server collects results from all clients and publishes snapshots.
type Server struct {
	snapshot     atomic.Pointer[Snapshot]
	clients      map[int]*ClientHandle
	nextClientID int
	resultCh     chan ClientResult
	registerCh   chan *ClientHandle
	unregisterCh chan int
	mu           sync.RWMutex
	board        *Leaderboard
	logger       *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client
}

// Result is a finished round as reported by a client.
type Result struct {
	Difficulty string
	Score      int
	Won        bool
}

// ClientResult is a result tagged with its client.
type ClientResult struct {
	ClientID int
	Result   Result
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type       ClientEventType
	Difficulty string // For rank events
	Rank       int    // 1-based leaderboard position, for rank events
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
	EventLeaderboardRank
)

// NewServer creates a new hub. A nil logger discards logs.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		resultCh:     make(chan ClientResult, 64),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan int, 16),
		board:        NewLeaderboard(config.LeaderboardSize),
		logger:       logger,
	}
	s.snapshot.Store(&Snapshot{TopScores: map[string][]TopScoreEntry{}})
	return s
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	ticker := time.NewTicker(config.ServerTickTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.step()
	}
}

// step runs one server tick.
func (s *Server) step() {
	s.processRegistrations()
	changed := s.collectResults()
	if changed || s.snapshot.Load().Players != s.playerCount() {
		s.createSnapshot()
	}
}

// Shutdown notifies all connected clients and waits for them to disconnect,
// up to timeout. The caller should cancel the server context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.playerCount() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
// The handle is usable immediately; the server picks it up on its next tick.
func (s *Server) RegisterClient(username string) *ClientHandle {
	s.mu.Lock()
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}
	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
	}
	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a client from the server.
func (s *Server) UnregisterClient(clientID int) {
	s.unregisterCh <- clientID
}

// ReportResult submits a finished round for the leaderboard.
func (s *Server) ReportResult(clientID int, result Result) {
	select {
	case s.resultCh <- ClientResult{ClientID: clientID, Result: result}:
	default:
		s.logger.Warn("result dropped, queue full", "client", clientID)
	}
}

// GetSnapshot returns the current snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *Server) playerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("client registered", "id", handle.ID, "user", handle.Username)
		case clientID := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[clientID]; ok {
				close(handle.EventsCh)
				delete(s.clients, clientID)
			}
			s.mu.Unlock()
			s.logger.Debug("client unregistered", "id", clientID)
		default:
			return
		}
	}
}

// collectResults moves reported rounds onto the leaderboard. It reports
// whether the board changed.
func (s *Server) collectResults() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for {
		select {
		case cr := <-s.resultCh:
			handle, ok := s.clients[cr.ClientID]
			if !ok {
				continue
			}
			rank := s.board.Insert(cr.Result.Difficulty, handle.Username, cr.Result.Score)
			s.logger.Info("round finished",
				"user", handle.Username, "difficulty", cr.Result.Difficulty,
				"score", cr.Result.Score, "won", cr.Result.Won, "rank", rank)
			if rank == 0 {
				continue
			}
			changed = true
			select {
			case handle.EventsCh <- ClientEvent{Type: EventLeaderboardRank, Difficulty: cr.Result.Difficulty, Rank: rank}:
			default:
			}
		default:
			return changed
		}
	}
}

// createSnapshot publishes an immutable copy of the hub state.
func (s *Server) createSnapshot() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.snapshot.Store(&Snapshot{
		Players:   len(s.clients),
		TopScores: s.board.Snapshot(),
	})
}
