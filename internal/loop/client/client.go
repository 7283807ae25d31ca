// Package client runs one player's session: a round controller on its own
// timeline, the bucket and drops, and the terminal screens around them.
package client

import (
	"bufio"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/input"
	"github.com/tomz197/dropcatch/internal/loop/config"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/object"
	"github.com/tomz197/dropcatch/internal/round"
	"github.com/tomz197/dropcatch/internal/schedule"
)

// Client handles simulation, rendering and input for a single connection.
type Client struct {
	server       server.GameServer
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc
	logger       *log.Logger

	table      round.Table
	controller *round.Controller
	timeline   *schedule.Timeline
	field      object.Screen
	bucket     *object.Bucket
	drops      []*object.Drop
	effects    object.Layer
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string

	// Table is the difficulty table. Defaults to round.DefaultTable.
	Table *round.Table

	// Store persists best scores. Nil keeps no high scores.
	Store round.HighScoreStore

	// Rand drives drop spawning. Defaults to a time-seeded source.
	Rand round.RandomSource

	// Difficulty preselected on the title screen. Defaults to normal.
	Difficulty string

	// Sinks receive round events after the client itself, for audio and the like.
	Sinks []round.Sink

	Logger *log.Logger
}

// NewClient creates a new client connected to the given server.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	table := round.DefaultTable()
	if opts.Table != nil {
		table = *opts.Table
	}
	rng := opts.Rand
	if rng == nil {
		rng = round.RandFunc(rand.New(rand.NewSource(time.Now().UnixNano())).Float64)
	}
	difficulty := opts.Difficulty
	if _, err := table.Get(difficulty); err != nil {
		difficulty = round.Normal
	}

	handle := gs.RegisterClient(opts.Username)
	field := object.Screen{Width: config.ViewWidth, Height: config.ViewHeight}
	timeline := schedule.NewTimeline()

	controller := round.NewController(table, opts.Store, rng, round.ControllerOptions{
		Scheduler: timeline,
		Logger:    logger.With("user", handle.Username),
	})

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)

	c := &Client{
		server:       gs,
		handle:       handle,
		state:        NewClientState(difficulty),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		logger:       logger,
		table:        table,
		controller:   controller,
		timeline:     timeline,
		field:        field,
		bucket:       newBucket(field),
	}

	// The client renders from events, so it subscribes first.
	controller.Subscribe(c)
	for _, s := range opts.Sinks {
		controller.Subscribe(s)
	}
	return c
}

func newBucket(field object.Screen) *object.Bucket {
	return object.NewBucket(field, config.BucketWidth, config.BucketHeight, config.BucketMargin, config.BucketSpeed)
}

// Run starts the client loop. Blocks until the client disconnects or server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	draw.EnableMouse(c.writer)
	defer draw.ShowCursor(c.writer)
	defer draw.DisableMouse(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		delta := min(frameStart.Sub(lastTime), config.MaxFrameDelta)
		lastTime = frameStart

		in := input.ReadInput(c.inputStream)
		if c.inputStream.Closed() {
			c.state.Running = false
		}
		c.step(delta, in)

		// Handle screen resize
		c.updateScreen()

		// Draw frame
		if err := c.drawFrame(); err != nil {
			c.close()
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.close()
	draw.ClearScreen(c.writer)
	return nil
}

// close abandons any running round and leaves the hub.
func (c *Client) close() {
	c.controller.Stop()
	c.server.UnregisterClient(c.handle.ID)
}

// step advances the session by one frame.
func (c *Client) step(delta time.Duration, in input.Input) {
	c.state.delta = delta
	c.state.elapsed += delta
	c.state.Input = in

	c.trackActivity(delta, in)
	if in.Quit {
		c.state.Running = false
	}

	c.processServerEvents()

	switch c.state.GameState {
	case GameStateStart:
		c.updateStartState()
	case GameStatePlaying:
		c.updatePlayingState()
	case GameStateEnded:
		c.updateEndedState()
	case GameStateHelp:
		c.updateHelpState()
	case GameStateShutdown:
		c.updateShutdownState()
	}

	c.state.tickTimers(delta)
	c.state.prevLeft = in.Left
	c.state.prevRight = in.Right
}

// trackActivity handles the inactivity warning and disconnect.
func (c *Client) trackActivity(delta time.Duration, in input.Input) {
	if len(in.Pressed) > 0 {
		c.state.idle = 0
		c.state.isInactive = false
		return
	}
	c.state.idle += delta
	switch idle := c.state.idle.Seconds(); {
	case idle > config.InactivityDisconnectUser:
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Server closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				c.controller.Stop()
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			case server.EventLeaderboardRank:
				if c.showingSummary() && event.Difficulty == c.controller.Difficulty().Name {
					c.state.Summary.Rank = event.Rank
				}
			}
		default:
			return
		}
	}
}

// showingSummary reports whether the last round's summary is still current,
// directly or behind the help screen.
func (c *Client) showingSummary() bool {
	return c.state.GameState == GameStateEnded ||
		(c.state.GameState == GameStateHelp && c.state.helpReturn == GameStateEnded)
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateStartState handles the title screen: difficulty selection, help and start.
func (c *Client) updateStartState() {
	in := c.state.Input
	switch {
	case in.Help:
		c.openHelp()
		return
	case in.Number >= 1:
		c.selectDifficulty(in.Number - 1)
	case in.Left && !c.state.prevLeft:
		c.cycleDifficulty(-1)
	case in.Right && !c.state.prevRight:
		c.cycleDifficulty(1)
	}
	if in.Space || in.Enter {
		c.startRound()
	}
}

// selectDifficulty picks the i-th difficulty. Ignored while a round runs.
func (c *Client) selectDifficulty(i int) {
	names := round.Names()
	if i < 0 || i >= len(names) || !c.controller.CanChangeDifficulty() {
		return
	}
	c.state.Difficulty = names[i]
}

func (c *Client) cycleDifficulty(dir int) {
	names := round.Names()
	cur := 0
	for i, n := range names {
		if n == c.state.Difficulty {
			cur = i
		}
	}
	c.selectDifficulty((cur + dir + len(names)) % len(names))
}

// startRound starts or restarts a round at the selected difficulty.
func (c *Client) startRound() {
	input.ResetKeyInput(c.inputStream)
	c.drops = nil
	c.effects.Reset()
	c.bucket = newBucket(c.field)
	c.state.Summary = Summary{}
	c.state.banner, c.state.bannerTimer = "", 0
	c.state.penaltyMsg, c.state.penaltyTimer = "", 0

	if err := c.controller.Start(c.state.Difficulty); err != nil {
		c.logger.Warn("failed to start round", "difficulty", c.state.Difficulty, "err", err)
		return
	}
	c.state.Best = c.controller.State().StoredHighScore
}

// updatePlayingState moves the bucket and drops, advances the round
// timeline and applies catches.
func (c *Client) updatePlayingState() {
	if c.state.Input.Escape {
		c.controller.Stop()
		return
	}

	ctx := object.UpdateContext{
		Delta:   c.state.delta,
		Input:   c.state.Input,
		Field:   c.field,
		Spawner: &c.effects,
	}
	c.bucket.Update(ctx)

	// Fires due clock ticks and spawns; may end the round.
	c.timeline.Advance(c.state.delta)

	for _, click := range c.state.Input.Clicks {
		c.handleClick(click)
	}

	kept := c.drops[:0]
	for _, d := range c.drops {
		if c.controller.Phase() != round.PhaseRunning {
			break
		}
		remove, _ := d.Update(ctx)
		if !remove && c.bucket.Catches(d) {
			c.collect(d)
			remove = true
		}
		if !remove {
			kept = append(kept, d)
		}
	}
	if c.controller.Phase() == round.PhaseRunning {
		clear(c.drops[len(kept):])
		c.drops = kept
	} else {
		c.drops = nil
	}

	if err := c.effects.Update(ctx); err != nil {
		c.logger.Warn("effect update failed", "err", err)
	}
}

// handleClick collects the first drop under a mouse click.
func (c *Client) handleClick(click input.Click) {
	x, y, ok := c.canvas.TerminalToLogical(click.Col, click.Row)
	if !ok {
		return
	}
	for _, d := range c.drops {
		if !d.Collected() && d.Hit(x, y) {
			c.collect(d)
			return
		}
	}
}

// collect catches d once and reports it to the controller.
func (c *Client) collect(d *object.Drop) {
	if !d.Collect() {
		return
	}
	text, style := "+1", object.GainStyle
	if d.Kind == round.DropDirty {
		text, style = "-1", object.LossStyle
	}
	object.SpawnSplash(d.X, d.Y, d.Color(), config.SplashCount, &c.effects)
	c.effects.Spawn(object.NewPop(d.X, d.Y-d.Radius*2, text, style, config.PopLifetime))
	c.controller.OnDropCollected(d.Kind)
}

// updateEndedState handles the summary modal.
func (c *Client) updateEndedState() {
	in := c.state.Input
	switch {
	case in.Help:
		c.openHelp()
		return
	case in.Space || in.Enter:
		c.startRound()
		return
	case in.Escape:
		if err := c.controller.Reset(); err != nil {
			c.logger.Warn("failed to reset round", "err", err)
		}
		c.effects.Reset()
		c.state.GameState = GameStateStart
		return
	}
	c.updateEffects()
}

// openHelp shows how to play, remembering where to return.
func (c *Client) openHelp() {
	c.state.helpReturn = c.state.GameState
	c.state.GameState = GameStateHelp
}

// updateHelpState closes the help screen on any dismiss key.
func (c *Client) updateHelpState() {
	in := c.state.Input
	if in.Escape || in.Help || in.Space || in.Enter {
		input.ResetKeyInput(c.inputStream)
		c.state.GameState = c.state.helpReturn
		return
	}
	if c.state.helpReturn == GameStateEnded {
		c.updateEffects()
	}
}

func (c *Client) updateEffects() {
	ctx := object.UpdateContext{Delta: c.state.delta, Field: c.field, Spawner: &c.effects}
	if err := c.effects.Update(ctx); err != nil {
		c.logger.Warn("effect update failed", "err", err)
	}
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
