package client

import (
	"fmt"

	"github.com/tomz197/dropcatch/internal/loop/config"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/object"
	"github.com/tomz197/dropcatch/internal/round"
)

var _ round.Sink = (*Client)(nil)

// HandleEvent mirrors round events into the session's screen state.
func (c *Client) HandleEvent(ev round.Event) {
	s := c.state
	switch ev.Type {
	case round.EventRoundStarted:
		s.GameState = GameStatePlaying
		s.Score = 0
		s.Remaining = ev.Config.Duration
		s.Goal = ev.Config.Goal

	case round.EventScoreChanged:
		s.Score = ev.Score
		s.scoreFlash = config.ScoreFlashDuration
		s.flashGain = ev.Delta > 0

	case round.EventTimeChanged:
		s.Remaining = ev.Remaining

	case round.EventTimePenaltyApplied:
		s.Remaining = ev.Remaining
		s.penaltyMsg = round.PenaltyMessage(ev.Seconds)
		s.penaltyTimer = config.PenaltyMessageDuration

	case round.EventMilestoneReached:
		s.banner = fmt.Sprintf("%d%% of the goal!", ev.Percent)
		s.bannerTimer = config.BannerDuration

	case round.EventHighScoreBeaten:
		s.banner = "You beat your best score!"
		s.bannerTimer = config.BannerDuration

	case round.EventNewHighScore:
		s.Summary.NewHighScore = true
		s.Summary.Previous = ev.Previous
		s.Best = ev.Score

	case round.EventRoundEnded:
		s.GameState = GameStateEnded
		s.Summary.Score = ev.Score
		s.Summary.Won = ev.Won
		s.Summary.Message = ev.Message
		c.drops = nil
		if ev.Won || s.Summary.NewHighScore {
			object.SpawnConfetti(c.field, config.ConfettiCount, config.ConfettiLifetime, &c.effects)
		}
		c.server.ReportResult(c.handle.ID, server.Result{
			Difficulty: c.controller.Difficulty().Name,
			Score:      ev.Score,
			Won:        ev.Won,
		})

	case round.EventRoundAborted:
		if s.GameState == GameStatePlaying {
			s.GameState = GameStateStart
		}
		c.drops = nil
		c.effects.Reset()

	case round.EventDropSpawned:
		c.drops = append(c.drops, object.NewDrop(ev.Drop, c.field, config.DropRadius, config.DropSideMargin))
	}
}
