package round

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/dropcatch/internal/schedule"
)

// TickInterval is the cadence of the round clock.
const TickInterval = time.Second

// Phase is the lifecycle stage of a round.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// HighScoreStore persists the best score per difficulty.
type HighScoreStore interface {
	Get(difficulty string) (int, error)
	Set(difficulty string, score int) error
}

// RoundState is a read-only snapshot of the controller's round.
type RoundState struct {
	Difficulty          DifficultyConfig
	Score               int
	TimeRemaining       int
	Phase               Phase
	TriggeredMilestones []int
	HighScoreAnnounced  bool
	StoredHighScore     int // Best score read when the round started
}

// ControllerOptions configures optional collaborators of a Controller.
type ControllerOptions struct {
	// Scheduler drives ticks and spawns while a round runs. When nil, the
	// caller drives OnTick and SpawnDrop itself.
	Scheduler schedule.Scheduler

	// Logger receives lifecycle logs. Defaults to a discarding logger.
	Logger *log.Logger

	// WinMessages and LoseMessages override the round summary messages.
	WinMessages  []string
	LoseMessages []string
}

// Controller runs rounds: it owns the round state and is the only thing that mutates it.
type Controller struct {
	table      Table
	store      HighScoreStore
	rng        RandomSource
	spawner    *Spawner
	scheduler  schedule.Scheduler
	logger     *log.Logger
	winMsgs    []string
	loseMsgs   []string
	sinks      []Sink
	board      ScoreBoard
	clock      Clock
	milestones *MilestoneTracker

	phase      Phase
	config     DifficultyConfig
	storedBest int
	tickJob    schedule.Handle
	spawnJob   schedule.Handle
}

// NewController creates an idle controller.
func NewController(table Table, store HighScoreStore, rng RandomSource, opts ControllerOptions) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	winMsgs := opts.WinMessages
	if len(winMsgs) == 0 {
		winMsgs = DefaultWinMessages
	}
	loseMsgs := opts.LoseMessages
	if len(loseMsgs) == 0 {
		loseMsgs = DefaultLoseMessages
	}
	return &Controller{
		table:      table,
		store:      store,
		rng:        rng,
		spawner:    NewSpawner(rng),
		scheduler:  opts.Scheduler,
		logger:     logger,
		winMsgs:    winMsgs,
		loseMsgs:   loseMsgs,
		milestones: NewMilestoneTracker(),
		phase:      PhaseIdle,
	}
}

// Subscribe registers a sink. Sinks receive events in registration order.
func (c *Controller) Subscribe(s Sink) {
	c.sinks = append(c.sinks, s)
}

func (c *Controller) emit(ev Event) {
	for _, s := range c.sinks {
		s.HandleEvent(ev)
	}
}

// Start begins a round at the named difficulty.
// A finished round is reset first; a running one is an error.
func (c *Controller) Start(difficulty string) error {
	if c.phase == PhaseRunning {
		return ErrAlreadyRunning
	}
	cfg, err := c.table.Get(difficulty)
	if err != nil {
		return err
	}
	if c.phase == PhaseEnded {
		c.phase = PhaseIdle
	}

	c.config = cfg
	c.board.Reset()
	c.clock.Start(cfg.Duration)
	c.milestones.Reset()
	c.storedBest = c.readBest(cfg.Name)
	c.phase = PhaseRunning

	if c.scheduler != nil {
		c.tickJob = c.scheduler.Every(TickInterval, c.scheduledTick)
		c.spawnJob = c.scheduler.Every(cfg.SpawnEvery(), c.scheduledSpawn)
	}

	c.logger.Debug("round started", "difficulty", cfg.Name, "duration", cfg.Duration, "best", c.storedBest)
	c.emit(Event{Type: EventRoundStarted, Config: cfg})
	return nil
}

// OnDropCollected applies a caught drop. Drops caught outside a running round are ignored.
func (c *Controller) OnDropCollected(kind DropKind) {
	if c.phase != PhaseRunning {
		return
	}

	expired := false
	switch kind {
	case DropGood:
		score := c.board.Increment()
		c.emit(Event{Type: EventScoreChanged, Delta: 1, Score: score})
	case DropDirty:
		score := c.board.Decrement()
		c.emit(Event{Type: EventScoreChanged, Delta: -1, Score: score})
		remaining, exp, err := c.clock.Penalize(c.config.PenaltySeconds)
		if err != nil {
			c.logger.Warn("penalty on stopped clock", "err", err)
			return
		}
		expired = exp
		c.emit(Event{Type: EventTimePenaltyApplied, Seconds: c.config.PenaltySeconds, Remaining: remaining})
	default:
		return
	}

	c.evaluateMilestones()
	if expired {
		c.end()
	}
}

// OnTick advances the round clock by one second.
func (c *Controller) OnTick() error {
	if c.phase != PhaseRunning {
		return fmt.Errorf("%w: tick while %s", ErrInvalidTransition, c.phase)
	}
	remaining, expired, err := c.clock.Tick()
	if err != nil {
		return err
	}
	c.emit(Event{Type: EventTimeChanged, Remaining: remaining})
	if expired {
		c.end()
	}
	return nil
}

// SpawnDrop decides the next drop and publishes it.
func (c *Controller) SpawnDrop() (Drop, error) {
	if c.phase != PhaseRunning {
		return Drop{}, fmt.Errorf("%w: spawn while %s", ErrInvalidTransition, c.phase)
	}
	d := c.spawner.Next(c.config)
	c.emit(Event{Type: EventDropSpawned, Drop: d})
	return d, nil
}

// scheduledTick and scheduledSpawn are the timer callbacks. They are gated on
// the phase so a callback that outlives its round does nothing.
func (c *Controller) scheduledTick() {
	if c.phase != PhaseRunning {
		return
	}
	if err := c.OnTick(); err != nil {
		c.logger.Warn("scheduled tick failed", "err", err)
	}
}

func (c *Controller) scheduledSpawn() {
	if c.phase != PhaseRunning {
		return
	}
	if _, err := c.SpawnDrop(); err != nil {
		c.logger.Warn("scheduled spawn failed", "err", err)
	}
}

func (c *Controller) evaluateMilestones() {
	for _, n := range c.milestones.Evaluate(c.board.Score(), c.config.Goal, c.storedBest) {
		switch n.Kind {
		case NotifyMilestone:
			c.emit(Event{Type: EventMilestoneReached, Percent: n.Percent})
		case NotifyHighScoreBeaten:
			c.emit(Event{Type: EventHighScoreBeaten, Score: c.board.Score()})
		}
	}
}

// end runs the end-of-round sequence. Called exactly once per expiry.
func (c *Controller) end() {
	c.cancelJobs()
	c.clock.Stop()
	c.phase = PhaseEnded

	score := c.board.Score()
	best := c.readBest(c.config.Name)
	if score > best {
		if err := c.saveBest(c.config.Name, score); err != nil {
			c.logger.Warn("failed to save high score", "difficulty", c.config.Name, "err", err)
		}
		c.emit(Event{Type: EventNewHighScore, Score: score, Previous: best})
	}

	won := score >= c.config.Goal
	var msg string
	if won {
		msg = pick(c.rng, c.winMsgs)
	} else {
		msg = pick(c.rng, c.loseMsgs)
	}

	c.logger.Debug("round ended", "difficulty", c.config.Name, "score", score, "won", won)
	c.emit(Event{Type: EventRoundEnded, Score: score, Won: won, Message: msg})
}

// readBest returns the stored best score, treating read failures as zero.
func (c *Controller) readBest(difficulty string) int {
	if c.store == nil {
		return 0
	}
	best, err := c.store.Get(difficulty)
	if err != nil {
		c.logger.Warn("failed to read high score", "difficulty", difficulty, "err", err)
		return 0
	}
	return best
}

func (c *Controller) saveBest(difficulty string, score int) error {
	if c.store == nil {
		return nil
	}
	return c.store.Set(difficulty, score)
}

func (c *Controller) cancelJobs() {
	if c.tickJob != nil {
		c.tickJob.Cancel()
		c.tickJob = nil
	}
	if c.spawnJob != nil {
		c.spawnJob.Cancel()
		c.spawnJob = nil
	}
}

// Stop cancels scheduled drives. A running round is abandoned without
// touching the high score. Safe to call repeatedly and in any phase.
func (c *Controller) Stop() {
	c.cancelJobs()
	if c.phase != PhaseRunning {
		return
	}
	c.clock.Stop()
	c.phase = PhaseEnded
	c.logger.Debug("round aborted", "difficulty", c.config.Name, "score", c.board.Score())
	c.emit(Event{Type: EventRoundAborted, Score: c.board.Score()})
}

// Reset returns a finished round to Idle.
func (c *Controller) Reset() error {
	if c.phase == PhaseRunning {
		return fmt.Errorf("%w: reset while running", ErrInvalidTransition)
	}
	c.phase = PhaseIdle
	return nil
}

// CanChangeDifficulty reports whether the difficulty may be changed.
// It is locked while a round is running.
func (c *Controller) CanChangeDifficulty() bool {
	return c.phase != PhaseRunning
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Score returns the current score.
func (c *Controller) Score() int {
	return c.board.Score()
}

// Remaining returns the seconds left in the round.
func (c *Controller) Remaining() int {
	return c.clock.Remaining()
}

// Difficulty returns the configuration of the current or last round.
func (c *Controller) Difficulty() DifficultyConfig {
	return c.config
}

// State returns a snapshot of the round.
func (c *Controller) State() RoundState {
	return RoundState{
		Difficulty:          c.config,
		Score:               c.board.Score(),
		TimeRemaining:       c.clock.Remaining(),
		Phase:               c.phase,
		TriggeredMilestones: c.milestones.Triggered(),
		HighScoreAnnounced:  c.milestones.HighScoreAnnounced(),
		StoredHighScore:     c.storedBest,
	}
}
