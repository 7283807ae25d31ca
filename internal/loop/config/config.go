// Package config centralizes all tunable game parameters.
package config

import "time"

// View resolution - the play field in logical units.
// Actual rendering scales to fit terminal size.
const (
	ViewWidth  = 120 // Logical play field width
	ViewHeight = 80  // Logical play field height (in sub-pixels, so 40 terminal rows)
)

// Max render resolution. Larger terminals get a centered, bordered play field.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Bucket
const (
	BucketWidth  = 16.0
	BucketHeight = 6.0
	BucketSpeed  = 90.0 // Logical units per second
	BucketMargin = 3.0  // Gap between bucket bottom and field bottom
)

// Drops
const (
	DropRadius     = 2.2
	DropSideMargin = 4.0 // Drops never spawn closer than this to the edges
)

// Effects
const (
	ConfettiCount          = 120
	ConfettiLifetime       = 3.5 // Seconds
	SplashCount            = 10
	PopLifetime            = 900 * time.Millisecond
	ScoreFlashDuration     = 300 * time.Millisecond
	PenaltyMessageDuration = 1200 * time.Millisecond
	BannerDuration         = 1500 * time.Millisecond
)

// Leaderboard
const (
	LeaderboardSize   = 5
	MaxUsernameLength = 16 // Maximum display length for player usernames
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS

	// MaxFrameDelta caps the simulated time of one frame so a stalled
	// session does not fire a burst of ticks when it resumes.
	MaxFrameDelta = 250 * time.Millisecond
)

// Server tick rate
const (
	ServerTickRate = 20
	ServerTickTime = time.Second / ServerTickRate
)
