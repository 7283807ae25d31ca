package round

import "time"

// Base fall duration range for a drop before the difficulty multiplier is applied.
const (
	BaseFallMinMs = 2800
	BaseFallMaxMs = 5000
)

// RandomSource yields uniform values in [0,1).
type RandomSource interface {
	Next() float64
}

// RandFunc adapts a function such as rand.Float64 to RandomSource.
type RandFunc func() float64

// Next calls f.
func (f RandFunc) Next() float64 {
	return f()
}

// DropKind tells clean drops from dirty ones.
type DropKind int

const (
	DropGood DropKind = iota
	DropDirty
)

func (k DropKind) String() string {
	switch k {
	case DropGood:
		return "good"
	case DropDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// Drop describes a newly spawned drop.
type Drop struct {
	Kind         DropKind
	FallDuration time.Duration // Time to fall the full height of the play field
	Column       float64       // Horizontal position in [0,1)
}

// Spawner makes the random decisions behind each drop.
// It keeps no state of its own; every draw comes from the injected source.
type Spawner struct {
	rng RandomSource
}

// NewSpawner creates a spawner drawing from rng.
func NewSpawner(rng RandomSource) *Spawner {
	return &Spawner{rng: rng}
}

// DecideDropType returns DropDirty when the draw falls below dirtyProbability.
func (s *Spawner) DecideDropType(dirtyProbability float64) DropKind {
	if s.rng.Next() < dirtyProbability {
		return DropDirty
	}
	return DropGood
}

// ScaledFallDuration draws a fall time in [baseMinMs, baseMaxMs) and divides it
// by the difficulty's fall speed multiplier.
func (s *Spawner) ScaledFallDuration(baseMinMs, baseMaxMs int, fallSpeedMultiplier float64) time.Duration {
	ms := float64(baseMinMs) + s.rng.Next()*float64(baseMaxMs-baseMinMs)
	return time.Duration(ms / fallSpeedMultiplier * float64(time.Millisecond))
}

// Column draws a horizontal spawn position in [0,1).
func (s *Spawner) Column() float64 {
	return s.rng.Next()
}

// Next draws a complete drop for cfg.
func (s *Spawner) Next(cfg DifficultyConfig) Drop {
	kind := s.DecideDropType(cfg.DirtyProbability)
	return Drop{
		Kind:         kind,
		FallDuration: s.ScaledFallDuration(BaseFallMinMs, BaseFallMaxMs, cfg.FallSpeedMultiplier),
		Column:       s.Column(),
	}
}
