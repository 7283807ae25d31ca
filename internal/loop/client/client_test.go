package client

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/highscore"
	"github.com/tomz197/dropcatch/internal/input"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/round"
)

// fakeServer records what a client reports to the hub.
type fakeServer struct {
	handle       *server.ClientHandle
	results      []server.Result
	unregistered bool
	snapshot     *server.Snapshot
}

var _ server.GameServer = (*fakeServer)(nil)

func newFakeServer() *fakeServer {
	return &fakeServer{
		handle: &server.ClientHandle{
			ID:       1,
			Username: "tester",
			EventsCh: make(chan server.ClientEvent, 4),
		},
		snapshot: &server.Snapshot{TopScores: map[string][]server.TopScoreEntry{}},
	}
}

func (f *fakeServer) RegisterClient(username string) *server.ClientHandle { return f.handle }
func (f *fakeServer) UnregisterClient(clientID int)                       { f.unregistered = true }
func (f *fakeServer) ReportResult(clientID int, result server.Result) {
	f.results = append(f.results, result)
}
func (f *fakeServer) GetSnapshot() *server.Snapshot { return f.snapshot }

// constant is a RandomSource that always returns the same draw.
type constant float64

func (c constant) Next() float64 { return float64(c) }

func shortTable(t *testing.T) *round.Table {
	t.Helper()
	table, err := round.ParseTable([]byte("difficulties:\n  normal:\n    duration: 2\n    goal: 1\n"))
	require.NoError(t, err)
	return &table
}

func newTestClient(t *testing.T, gs server.GameServer, opts ClientOptions) (*Client, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts.TermSizeFunc = draw.FixedTermSize(120, 40)
	if opts.Rand == nil {
		opts.Rand = constant(0.9)
	}
	c := NewClient(gs, bufio.NewReader(strings.NewReader("")), &out, opts)
	return c, &out
}

func keys(in input.Input) input.Input {
	if in.Number == 0 {
		in.Number = -1
	}
	in.Pressed = []byte{'x'}
	return in
}

var idle = input.Input{Number: -1}

func TestDifficultySelection(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	assert.Equal(t, round.Normal, c.state.Difficulty)

	c.step(0, keys(input.Input{Number: 3}))
	assert.Equal(t, round.Hard, c.state.Difficulty)

	c.step(0, keys(input.Input{Right: true}))
	assert.Equal(t, round.Easy, c.state.Difficulty, "wraps around")
	c.step(0, keys(input.Input{Right: true}))
	assert.Equal(t, round.Easy, c.state.Difficulty, "a held key moves once")
	c.step(0, idle)
	c.step(0, keys(input.Input{Left: true}))
	assert.Equal(t, round.Hard, c.state.Difficulty)

	c.step(0, keys(input.Input{Number: 9}))
	assert.Equal(t, round.Hard, c.state.Difficulty, "out of range digits are ignored")
}

func TestUnknownDifficultyOptionFallsBack(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{Difficulty: "insane"})
	assert.Equal(t, round.Normal, c.state.Difficulty)
}

func TestStartLocksDifficulty(t *testing.T) {
	var seen []round.EventType
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{
		Difficulty: round.Hard,
		Sinks:      []round.Sink{round.SinkFunc(func(ev round.Event) { seen = append(seen, ev.Type) })},
	})

	c.step(0, keys(input.Input{Space: true}))
	require.Equal(t, GameStatePlaying, c.state.GameState)
	assert.Equal(t, round.PhaseRunning, c.controller.Phase())
	assert.Equal(t, 28, c.state.Goal)
	assert.Equal(t, 20, c.state.Remaining)
	assert.Equal(t, []round.EventType{round.EventRoundStarted}, seen, "extra sinks see events too")

	c.selectDifficulty(0)
	assert.Equal(t, round.Hard, c.state.Difficulty)
}

func TestClickCatchesDrop(t *testing.T) {
	gs := newFakeServer()
	c, _ := newTestClient(t, gs, ClientOptions{Table: shortTable(t)})
	c.step(0, keys(input.Input{Enter: true}))

	c.step(time.Second, idle)
	require.Len(t, c.drops, 1)
	assert.Equal(t, 1, c.state.Remaining)

	d := c.drops[0]
	col, row := c.canvas.LogicalToTerminal(d.X, d.Y-d.Radius*0.5)
	c.step(0, keys(input.Input{Clicks: []input.Click{{Col: col, Row: row}}}))

	assert.True(t, d.Collected())
	assert.Empty(t, c.drops)
	assert.Equal(t, 1, c.state.Score)
	assert.True(t, c.state.scoreFlash > 0)
	assert.True(t, c.state.flashGain)
	assert.Equal(t, "You beat your best score!", c.state.banner)
	assert.Greater(t, c.effects.Len(), 1, "splash and pop")
}

func TestClickOutsideCanvasIgnored(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	c.step(0, keys(input.Input{Space: true}))
	c.step(time.Second, idle)
	require.NotEmpty(t, c.drops)

	c.step(0, keys(input.Input{Clicks: []input.Click{{Col: 500, Row: 500}}}))
	assert.Equal(t, 0, c.state.Score)
}

func TestDirtyDropPenalty(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{Rand: constant(0)})
	c.step(0, keys(input.Input{Space: true}))
	c.step(time.Second, idle)
	require.Len(t, c.drops, 1)
	d := c.drops[0]
	require.Equal(t, round.DropDirty, d.Kind)

	c.collect(d)
	assert.Equal(t, 0, c.state.Score, "score never goes negative")
	assert.Equal(t, 27, c.state.Remaining)
	assert.Equal(t, "Oops, dirty water! -1 point, -2s", c.state.penaltyMsg)
	assert.False(t, c.state.flashGain)

	c.collect(d)
	assert.Equal(t, 27, c.state.Remaining, "a drop is collected once")

	c.step(1300*time.Millisecond, idle)
	assert.Empty(t, c.state.penaltyMsg)
}

func TestBucketCatchesFallingDrops(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{Rand: constant(0.5)})
	c.step(0, keys(input.Input{Space: true}))
	for i := 0; i < 100; i++ {
		c.step(100*time.Millisecond, idle)
	}
	assert.Positive(t, c.state.Score, "drops at the centre land in the centred bucket")
	assert.Equal(t, c.controller.Score(), c.state.Score)
}

func TestRoundEndsAndReports(t *testing.T) {
	gs := newFakeServer()
	store := highscore.NewMemoryStore()
	c, _ := newTestClient(t, gs, ClientOptions{Table: shortTable(t), Store: store})

	c.step(0, keys(input.Input{Space: true}))
	c.step(time.Second, idle)
	require.Len(t, c.drops, 1)
	c.collect(c.drops[0])

	c.step(time.Second, idle)
	require.Equal(t, GameStateEnded, c.state.GameState)
	assert.Nil(t, c.drops)
	assert.Equal(t, Summary{Score: 1, Won: true, Message: c.state.Summary.Message, NewHighScore: true}, c.state.Summary)
	assert.NotEmpty(t, c.state.Summary.Message)
	assert.GreaterOrEqual(t, c.effects.Len(), 120, "confetti")
	assert.Equal(t, []server.Result{{Difficulty: round.Normal, Score: 1, Won: true}}, gs.results)

	best, err := store.Get(round.Normal)
	require.NoError(t, err)
	assert.Equal(t, 1, best)

	gs.handle.EventsCh <- server.ClientEvent{Type: server.EventLeaderboardRank, Difficulty: round.Normal, Rank: 2}
	c.step(0, idle)
	assert.Equal(t, 2, c.state.Summary.Rank)

	// Play again
	c.step(0, keys(input.Input{Space: true}))
	require.Equal(t, GameStatePlaying, c.state.GameState)
	assert.Equal(t, Summary{}, c.state.Summary)
	assert.Equal(t, 1, c.state.Best)
	assert.Zero(t, c.effects.Len())
}

func TestSplitMouseReportDoesNotAbortRound(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	c.step(0, keys(input.Input{Space: true}))
	require.Equal(t, GameStatePlaying, c.state.GameState)

	now := time.Now()
	c.step(16*time.Millisecond, c.inputStream.Feed([]byte("\x1b[<0;12"), now))
	c.step(16*time.Millisecond, c.inputStream.Feed([]byte(";7M"), now))

	assert.Equal(t, GameStatePlaying, c.state.GameState)
	assert.Equal(t, round.PhaseRunning, c.controller.Phase())
}

func TestSplitMouseReportKeepsDifficulty(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{Difficulty: round.Normal})
	now := time.Now()
	c.step(16*time.Millisecond, c.inputStream.Feed([]byte("\x1b[<0;33;1"), now))
	c.step(16*time.Millisecond, c.inputStream.Feed([]byte("2M"), now))
	assert.Equal(t, round.Normal, c.state.Difficulty)
	assert.Equal(t, GameStateStart, c.state.GameState)
}

func TestStaleRankIgnoredAfterReplay(t *testing.T) {
	gs := newFakeServer()
	c, _ := newTestClient(t, gs, ClientOptions{Table: shortTable(t)})
	c.step(0, keys(input.Input{Space: true}))
	c.step(2*time.Second, idle)
	require.Equal(t, GameStateEnded, c.state.GameState)

	c.step(0, keys(input.Input{Space: true}))
	require.Equal(t, GameStatePlaying, c.state.GameState)
	gs.handle.EventsCh <- server.ClientEvent{Type: server.EventLeaderboardRank, Difficulty: round.Normal, Rank: 1}
	c.step(0, idle)
	assert.Zero(t, c.state.Summary.Rank)

	c.step(2*time.Second, idle)
	require.Equal(t, GameStateEnded, c.state.GameState)
	assert.Zero(t, c.state.Summary.Rank, "the earlier round's rank does not carry over")
}

func TestEscapeAbortsWithoutSaving(t *testing.T) {
	gs := newFakeServer()
	store := highscore.NewMemoryStore()
	c, _ := newTestClient(t, gs, ClientOptions{Table: shortTable(t), Store: store})

	c.step(0, keys(input.Input{Space: true}))
	c.step(time.Second, idle)
	c.collect(c.drops[0])
	c.step(0, keys(input.Input{Escape: true}))

	assert.Equal(t, GameStateStart, c.state.GameState)
	assert.Equal(t, round.PhaseEnded, c.controller.Phase())
	assert.Nil(t, c.drops)
	assert.Empty(t, gs.results)
	best, _ := store.Get(round.Normal)
	assert.Zero(t, best)

	c.step(5*time.Second, idle)
	assert.Equal(t, GameStateStart, c.state.GameState, "no stale ticks after abort")
}

func TestEndedEscapeReturnsToTitle(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{Table: shortTable(t)})
	c.step(0, keys(input.Input{Space: true}))
	c.step(2*time.Second, idle)
	require.Equal(t, GameStateEnded, c.state.GameState)

	c.step(0, keys(input.Input{Escape: true}))
	assert.Equal(t, GameStateStart, c.state.GameState)
	assert.Equal(t, round.PhaseIdle, c.controller.Phase())
}

func TestHelpReturnsToPreviousScreen(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	c.step(0, keys(input.Input{Help: true}))
	require.Equal(t, GameStateHelp, c.state.GameState)
	c.step(0, keys(input.Input{Escape: true}))
	assert.Equal(t, GameStateStart, c.state.GameState)
}

func TestQuit(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	c.step(0, keys(input.Input{Quit: true}))
	assert.False(t, c.state.Running)
}

func TestServerShutdown(t *testing.T) {
	gs := newFakeServer()
	c, _ := newTestClient(t, gs, ClientOptions{})
	c.step(0, keys(input.Input{Space: true}))

	gs.handle.EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}
	c.step(0, idle)
	assert.Equal(t, GameStateShutdown, c.state.GameState)
	assert.NotEqual(t, round.PhaseRunning, c.controller.Phase())
	assert.True(t, c.state.Running)

	c.step(11*time.Second, idle)
	assert.False(t, c.state.Running)
}

func TestClosedEventsChannelStopsClient(t *testing.T) {
	gs := newFakeServer()
	c, _ := newTestClient(t, gs, ClientOptions{})
	close(gs.handle.EventsCh)
	c.step(0, idle)
	assert.False(t, c.state.Running)
}

func TestInactivity(t *testing.T) {
	c, _ := newTestClient(t, newFakeServer(), ClientOptions{})
	c.step(91*time.Second, idle)
	assert.True(t, c.state.isInactive)

	c.step(0, keys(input.Input{}))
	assert.False(t, c.state.isInactive)

	c.step(121*time.Second, idle)
	assert.False(t, c.state.Running)
}

func TestCloseUnregisters(t *testing.T) {
	gs := newFakeServer()
	c, _ := newTestClient(t, gs, ClientOptions{})
	c.step(0, keys(input.Input{Space: true}))
	c.close()
	assert.True(t, gs.unregistered)
	assert.Equal(t, round.PhaseEnded, c.controller.Phase())
}

func TestDrawFrames(t *testing.T) {
	gs := newFakeServer()
	gs.snapshot.TopScores[round.Normal] = []server.TopScoreEntry{{Username: "ann", Score: 17}}
	gs.snapshot.Players = 2
	c, out := newTestClient(t, gs, ClientOptions{Table: shortTable(t)})

	require.NoError(t, c.drawFrame())
	title := out.String()
	assert.Contains(t, title, "Controls")
	assert.Contains(t, title, "Press SPACE to Start")
	assert.Contains(t, title, "Top normal  (2 online)")
	assert.Contains(t, title, "ann")
	assert.Contains(t, title, "[2 normal]")

	c.step(0, keys(input.Input{Space: true}))
	out.Reset()
	require.NoError(t, c.drawFrame())
	hud := out.String()
	assert.Contains(t, hud, "Score: 0")
	assert.Contains(t, hud, "Time: 2")
	assert.Contains(t, hud, "Goal: 1")

	c.step(2*time.Second, idle)
	out.Reset()
	require.NoError(t, c.drawFrame())
	assert.Contains(t, out.String(), "TIME'S UP")
	assert.Contains(t, out.String(), "Final score: 0 / 1")
}

func TestClampTermSize(t *testing.T) {
	w, h, oc, or := clampTermSize(200, 60)
	assert.Equal(t, []int{160, 50, 20, 5}, []int{w, h, oc, or})
	w, h, oc, or = clampTermSize(80, 24)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, oc, or})
}
