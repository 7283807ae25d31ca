package round

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence is a deterministic RandomSource that cycles through fixed values.
type sequence struct {
	values []float64
	i      int
}

func (s *sequence) Next() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

func seq(values ...float64) *sequence {
	return &sequence{values: values}
}

func TestDefaultTable(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		interval int
		dirty    float64
		fall     float64
		penalty  int
		goal     int
	}{
		{Easy, 45, 1100, 0.12, 0.85, 1, 12},
		{Normal, 30, 900, 0.22, 1.00, 2, 20},
		{Hard, 20, 700, 0.34, 1.25, 3, 28},
	}

	table := DefaultTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := table.Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, cfg.Name)
			assert.Equal(t, tt.duration, cfg.Duration)
			assert.Equal(t, tt.interval, cfg.SpawnInterval)
			assert.Equal(t, tt.dirty, cfg.DirtyProbability)
			assert.Equal(t, tt.fall, cfg.FallSpeedMultiplier)
			assert.Equal(t, tt.penalty, cfg.PenaltySeconds)
			assert.Equal(t, tt.goal, cfg.Goal)
		})
	}
}

func TestTableGetUnknown(t *testing.T) {
	for _, name := range []string{"", "Easy", "insane", "normal "} {
		_, err := DefaultTable().Get(name)
		assert.ErrorIs(t, err, ErrUnknownDifficulty, "name %q", name)
	}
}

func TestNamesOrder(t *testing.T) {
	assert.Equal(t, []string{Easy, Normal, Hard}, Names())

	// Callers cannot reorder the package's copy.
	n := Names()
	n[0] = "mutated"
	assert.Equal(t, Easy, Names()[0])
}

func TestParseTableOverrides(t *testing.T) {
	data := []byte(`
difficulties:
  normal:
    duration: 60
    goal: 40
  hard:
    dirtyProbability: 0.5
`)
	table, err := ParseTable(data)
	require.NoError(t, err)

	normal, err := table.Get(Normal)
	require.NoError(t, err)
	assert.Equal(t, 60, normal.Duration)
	assert.Equal(t, 40, normal.Goal)
	assert.Equal(t, 900, normal.SpawnInterval, "unset fields keep their default")

	hard, err := table.Get(Hard)
	require.NoError(t, err)
	assert.Equal(t, 0.5, hard.DirtyProbability)

	// The defaults themselves are untouched.
	def, _ := DefaultTable().Get(Normal)
	assert.Equal(t, 30, def.Duration)
}

func TestParseTableRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown name", "difficulties:\n  extreme:\n    goal: 5\n"},
		{"zero duration", "difficulties:\n  easy:\n    duration: 0\n"},
		{"probability above one", "difficulties:\n  easy:\n    dirtyProbability: 1.5\n"},
		{"negative penalty", "difficulties:\n  hard:\n    penaltySeconds: -1\n"},
		{"zero multiplier", "difficulties:\n  normal:\n    fallSpeedMultiplier: 0\n"},
		{"bad yaml", "difficulties: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "difficulty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulties:\n  easy:\n    spawnInterval: 1500\n"), 0o644))

	table, err := LoadTable(path)
	require.NoError(t, err)
	easy, err := table.Get(Easy)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, easy.SpawnEvery())

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScoreBoardNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		var b ScoreBoard
		want := 0
		for step := 0; step < 100; step++ {
			if r.Intn(2) == 0 {
				want++
				assert.Equal(t, want, b.Increment())
			} else {
				want = max(0, want-1)
				assert.Equal(t, want, b.Decrement())
			}
			require.GreaterOrEqual(t, b.Score(), 0)
		}
		b.Reset()
		assert.Equal(t, 0, b.Score())
	}
}

func FuzzScoreBoard(f *testing.F) {
	f.Add([]byte{0, 1, 1, 0, 1})
	f.Fuzz(func(t *testing.T, ops []byte) {
		var b ScoreBoard
		for _, op := range ops {
			if op%2 == 0 {
				b.Increment()
			} else {
				b.Decrement()
			}
			if b.Score() < 0 {
				t.Fatalf("score went negative: %d", b.Score())
			}
		}
	})
}

func TestClockExpiresOnce(t *testing.T) {
	var c Clock
	c.Start(3)
	require.True(t, c.Ticking())

	expiries := 0
	for i := 0; i < 3; i++ {
		remaining, expired, err := c.Tick()
		require.NoError(t, err)
		assert.Equal(t, 2-i, remaining)
		if expired {
			expiries++
		}
	}
	assert.Equal(t, 1, expiries)
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Ticking())

	_, expired, err := c.Tick()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, expired)
	assert.Equal(t, 0, c.Remaining())
}

func TestClockPenalize(t *testing.T) {
	var c Clock
	c.Start(10)

	remaining, expired, err := c.Penalize(3)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
	assert.False(t, expired)

	remaining, expired, err = c.Penalize(20)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "penalty clamps at zero")
	assert.True(t, expired)
	assert.False(t, c.Ticking())

	_, _, err = c.Penalize(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestClockStopIdempotent(t *testing.T) {
	var c Clock
	c.Stop()
	c.Start(5)
	c.Stop()
	c.Stop()
	assert.False(t, c.Ticking())
	_, _, err := c.Tick()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDecideDropType(t *testing.T) {
	s := NewSpawner(seq(0.0, 0.21, 0.22, 0.99))
	assert.Equal(t, DropDirty, s.DecideDropType(0.22))
	assert.Equal(t, DropDirty, s.DecideDropType(0.22))
	assert.Equal(t, DropGood, s.DecideDropType(0.22), "draw equal to probability is good")
	assert.Equal(t, DropGood, s.DecideDropType(0.22))

	never := NewSpawner(seq(0.0))
	assert.Equal(t, DropGood, never.DecideDropType(0))
}

func TestScaledFallDuration(t *testing.T) {
	s := NewSpawner(seq(0.0, 0.5, 0.5))
	assert.Equal(t, 2800*time.Millisecond, s.ScaledFallDuration(BaseFallMinMs, BaseFallMaxMs, 1.0))
	assert.Equal(t, 3900*time.Millisecond, s.ScaledFallDuration(BaseFallMinMs, BaseFallMaxMs, 1.0))
	assert.Equal(t, 3120*time.Millisecond, s.ScaledFallDuration(BaseFallMinMs, BaseFallMaxMs, 1.25))
}

func TestSpawnerReproducible(t *testing.T) {
	cfg, _ := DefaultTable().Get(Hard)
	a := NewSpawner(RandFunc(rand.New(rand.NewSource(7)).Float64))
	b := NewSpawner(RandFunc(rand.New(rand.NewSource(7)).Float64))
	for i := 0; i < 50; i++ {
		da, db := a.Next(cfg), b.Next(cfg)
		assert.Equal(t, da, db)
		assert.GreaterOrEqual(t, da.Column, 0.0)
		assert.Less(t, da.Column, 1.0)
		assert.GreaterOrEqual(t, da.FallDuration, time.Duration(float64(BaseFallMinMs)/1.25*float64(time.Millisecond)))
		assert.Less(t, da.FallDuration, time.Duration(float64(BaseFallMaxMs)/1.25*float64(time.Millisecond)))
	}
}

func TestThresholds(t *testing.T) {
	assert.Equal(t, []int{5, 10, 15, 20}, Thresholds(20))
	assert.Equal(t, []int{3, 6, 9, 12}, Thresholds(12))
	assert.Equal(t, []int{7, 14, 21, 28}, Thresholds(28))
	assert.Equal(t, []int{1, 2, 3}, Thresholds(3))
	assert.Equal(t, []int{1, 2}, Thresholds(2))
	assert.Equal(t, []int{1}, Thresholds(1))
}

func TestMilestoneEvaluate(t *testing.T) {
	m := NewMilestoneTracker()
	got := m.Evaluate(12, 20, 100)
	assert.Equal(t, []Notification{
		{Kind: NotifyMilestone, Percent: 25},
		{Kind: NotifyMilestone, Percent: 50},
	}, got)
}

func TestMilestoneIdempotent(t *testing.T) {
	m := NewMilestoneTracker()
	first := m.Evaluate(20, 20, 5)
	require.Len(t, first, 5)
	assert.Equal(t, NotifyHighScoreBeaten, first[4].Kind, "high score notification comes last")

	assert.Empty(t, m.Evaluate(20, 20, 5))
	assert.Empty(t, m.Evaluate(15, 20, 5))
	assert.Equal(t, []int{5, 10, 15, 20}, m.Triggered())
	assert.True(t, m.HighScoreAnnounced())

	m.Reset()
	assert.Empty(t, m.Triggered())
	assert.False(t, m.HighScoreAnnounced())
	assert.Len(t, m.Evaluate(5, 20, 100), 1)
}

func TestMilestoneSmallGoalDeduplicates(t *testing.T) {
	m := NewMilestoneTracker()
	got := m.Evaluate(1, 1, 10)
	assert.Equal(t, []Notification{{Kind: NotifyMilestone, Percent: 100}}, got)

	m = NewMilestoneTracker()
	got = m.Evaluate(3, 3, 10)
	assert.Equal(t, []Notification{
		{Kind: NotifyMilestone, Percent: 33},
		{Kind: NotifyMilestone, Percent: 67},
		{Kind: NotifyMilestone, Percent: 100},
	}, got)
}

func TestMilestoneHighScoreRequiresStrictlyGreater(t *testing.T) {
	m := NewMilestoneTracker()
	assert.Empty(t, m.Evaluate(0, 20, 0))
	assert.Equal(t, []Notification{{Kind: NotifyHighScoreBeaten}}, m.Evaluate(1, 20, 0))
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "RoundStarted", EventRoundStarted.String())
	assert.Equal(t, "DropSpawned", EventDropSpawned.String())
	assert.Equal(t, "Unknown", EventType(99).String())
	assert.Equal(t, "Unknown", EventType(-1).String())
}

func TestPenaltyMessageUsesConfiguredSeconds(t *testing.T) {
	assert.Equal(t, "Oops, dirty water! -1 point, -3s", PenaltyMessage(3))
}

func TestPick(t *testing.T) {
	set := []string{"a", "b", "c"}
	assert.Equal(t, "a", pick(seq(0.0), set))
	assert.Equal(t, "b", pick(seq(0.5), set))
	assert.Equal(t, "c", pick(seq(0.999), set))
	assert.Equal(t, "", pick(seq(0.5), nil))
}
