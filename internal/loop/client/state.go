package client

import (
	"time"

	"github.com/tomz197/dropcatch/internal/input"
)

// GameState represents the current screen for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen with difficulty selection
	GameStatePlaying                   // Round running
	GameStateEnded                     // Round summary modal
	GameStateHelp                      // How to play
	GameStateShutdown                  // Server is shutting down
)

// Summary is what the end-of-round modal shows.
type Summary struct {
	Score        int
	Won          bool
	Message      string
	NewHighScore bool
	Previous     int // Best score before this round
	Rank         int // Leaderboard position, 0 when not placed
}

// ClientState holds per-session presentation state. Round state itself lives
// in the round.Controller; this mirrors what the controller published.
type ClientState struct {
	Input         input.Input
	GameState     GameState
	prevGameState GameState
	helpReturn    GameState // Screen to go back to when help closes
	Difficulty    string    // Selected difficulty name
	Running       bool      // Client loop running
	delta         time.Duration
	elapsed       time.Duration // Session time, drives blinking prompts

	// HUD
	Score      int
	Remaining  int
	Goal       int
	Best       int
	scoreFlash time.Duration
	flashGain  bool

	// Transient messages
	penaltyMsg   string
	penaltyTimer time.Duration
	banner       string
	bannerTimer  time.Duration

	Summary Summary

	// Edge detection for held keys on menus
	prevLeft  bool
	prevRight bool

	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	idle          time.Duration // Time since the last key press
	isInactive    bool
	wasInactive   bool
}

// NewClientState creates a new initialized client state.
func NewClientState(difficulty string) *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: -1,
		Difficulty:    difficulty,
		Running:       true,
	}
}

// tickTimers counts down the transient HUD timers.
func (s *ClientState) tickTimers(delta time.Duration) {
	s.scoreFlash = max(s.scoreFlash-delta, 0)
	s.penaltyTimer = max(s.penaltyTimer-delta, 0)
	if s.penaltyTimer == 0 {
		s.penaltyMsg = ""
	}
	s.bannerTimer = max(s.bannerTimer-delta, 0)
	if s.bannerTimer == 0 {
		s.banner = ""
	}
}
