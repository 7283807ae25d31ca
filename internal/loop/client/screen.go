package client

import (
	"fmt"
	"strings"

	"github.com/tomz197/dropcatch/internal/draw"
	"github.com/tomz197/dropcatch/internal/loop/config"
	"github.com/tomz197/dropcatch/internal/loop/server"
	"github.com/tomz197/dropcatch/internal/object"
	"github.com/tomz197/dropcatch/internal/round"
)

// blinkPeriod is the on/off period of blinking prompts, in seconds.
const blinkPeriod = 0.6

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On screen or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
	}

	// Ground strip
	c.canvas.SetColor(draw.ColorGround)
	c.canvas.FillRect(0, float64(c.field.Height)-1, float64(c.field.Width), 1)

	if c.state.GameState == GameStatePlaying || c.state.GameState == GameStateEnded {
		for _, d := range c.drops {
			if err := d.Draw(ctx); err != nil {
				return err
			}
		}
		if err := c.bucket.Draw(ctx); err != nil {
			return err
		}
	}
	if err := c.effects.Draw(ctx); err != nil {
		return err
	}

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	// Floating score pops
	c.effects.DrawOverlays(ctx)

	// Draw UI overlay
	c.drawUI(c.server.GetSnapshot())

	return c.chunkWriter.Flush()
}

// text writes s centred on row and marks the cells so the canvas repaints
// them once the text is gone.
func (c *Client) text(centerX, row int, style, s string) {
	col := centerX - len(s)/2
	c.textAt(col, row, style, s)
}

func (c *Client) textAt(col, row int, style, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() || col < 1 {
		return
	}
	if style == "" {
		c.chunkWriter.WriteAt(col, row, s)
	} else {
		c.chunkWriter.WriteStyledAt(col, row, style, s)
	}
	c.canvas.MarkTextDirty(col, row, len(s))
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI(snapshot *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStateStart:
		c.drawStartScreen(centerX, centerY, snapshot)
	case GameStatePlaying:
		c.drawPlayingHUD(termWidth, centerX, centerY)
	case GameStateEnded:
		c.drawEndedScreen(centerX, centerY)
	case GameStateHelp:
		c.drawHelpScreen(centerX, centerY)
	}
}

// blinkOn reports whether a blinking prompt is visible this frame.
func (c *Client) blinkOn() bool {
	return int(c.state.elapsed.Seconds()/blinkPeriod)%2 == 0
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.text(centerX, centerY-2, draw.ColorBold, "INACTIVITY WARNING")
	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-c.state.idle.Seconds()),
	)
	c.text(centerX, centerY, "", msg)
	c.text(centerX, centerY+2, "", "Press any key to continue")
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int, snapshot *server.Snapshot) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  ___  ___  ___  ___    ___   _ _____ ___ _  _  `,
		` |   \| _ \/ _ \| _ \  / __| /_\_   _/ __| || | `,
		` | |) |   / (_) |  _/ | (__ / _ \| || (__| __ | `,
		` |___/|_|_\\___/|_|    \___/_/ \_\_| \___|_||_| `,
	}
	titleWidth := 0
	for _, line := range titleArt {
		titleWidth = max(titleWidth, len(line))
	}

	titleStartY := centerY - 12
	for i, line := range titleArt {
		c.textAt(centerX-titleWidth/2, titleStartY+i, draw.ColorBrightCyan, line)
	}
	c.text(centerX, titleStartY+len(titleArt)+1, "", "~ Catch the clean drops, dodge the dirty ones ~")

	// Difficulty selector
	selY := titleStartY + len(titleArt) + 3
	var parts []string
	for i, name := range round.Names() {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if name == c.state.Difficulty {
			label = "[" + strings.TrimSpace(label) + "]"
		}
		parts = append(parts, label)
	}
	c.text(centerX, selY, draw.ColorBold, strings.Join(parts, "   "))
	if cfg, err := c.table.Get(c.state.Difficulty); err == nil {
		info := fmt.Sprintf("%ds round  -  goal %d  -  dirty -%ds", cfg.Duration, cfg.Goal, cfg.PenaltySeconds)
		c.text(centerX, selY+1, draw.ColorDim, info)
	}

	// Controls section
	controlsY := selY + 3
	c.text(centerX, controlsY, draw.ColorBold, "Controls")
	controlLines := []string{
		"< > / A D  . . . Move bucket",
		"Mouse click . . Catch a drop",
		"1 2 3 . . . . . . Difficulty",
		"H . . . . . . . . How to play",
		"ESC . . . . . . . . End round",
		"Q . . . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.text(centerX, controlsY+1+i, "", line)
	}

	// Blinking start prompt
	promptY := controlsY + len(controlLines) + 2
	if c.blinkOn() {
		c.text(centerX, promptY, draw.ColorYellow, ">>  Press SPACE to Start  <<")
	} else {
		c.text(centerX, promptY, "", strings.Repeat(" ", 28))
	}

	c.drawLeaderboard(centerX, promptY+2, snapshot)
}

// drawLeaderboard lists the hub's best scores for the selected difficulty.
func (c *Client) drawLeaderboard(centerX, row int, snapshot *server.Snapshot) {
	if snapshot == nil {
		return
	}
	header := fmt.Sprintf("Top %s  (%d online)", c.state.Difficulty, snapshot.Players)
	c.text(centerX, row, draw.ColorBold, header)
	top := snapshot.Top(c.state.Difficulty)
	if len(top) == 0 {
		c.text(centerX, row+1, draw.ColorDim, "no scores yet")
		return
	}
	for i, e := range top {
		line := fmt.Sprintf("%d. %-*s %4d", i+1, config.MaxUsernameLength, e.Username, e.Score)
		c.text(centerX, row+1+i, "", line)
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen.
func (c *Client) drawPlayingHUD(termWidth, centerX, centerY int) {
	s := c.state

	scoreStyle := ""
	if s.scoreFlash > 0 {
		scoreStyle = draw.ColorBold + draw.ColorRed
		if s.flashGain {
			scoreStyle = draw.ColorBold + draw.ColorGreen
		}
	}
	c.textAt(2, 1, scoreStyle, fmt.Sprintf("Score: %-4d", s.Score))
	c.textAt(16, 1, draw.ColorDim, fmt.Sprintf("Goal: %-4d", s.Goal))

	timeStyle := ""
	if s.Remaining <= 5 {
		timeStyle = draw.ColorRed
	}
	timeText := fmt.Sprintf("Time: %-3d", s.Remaining)
	c.textAt(termWidth-len(timeText)-1, 1, timeStyle, timeText)

	bestText := fmt.Sprintf("Best: %-4d", s.Best)
	c.textAt(termWidth-len(timeText)-len(bestText)-3, 1, draw.ColorDim, bestText)

	if s.banner != "" {
		c.text(centerX, centerY-4, draw.ColorBold+draw.ColorYellow, s.banner)
	}
	if s.penaltyMsg != "" {
		c.text(centerX, centerY-2, draw.ColorBold+draw.ColorRed, s.penaltyMsg)
	}
}

// drawEndedScreen draws the round summary modal.
func (c *Client) drawEndedScreen(centerX, centerY int) {
	s := c.state.Summary

	title := "TIME'S UP"
	titleStyle := draw.ColorBold
	if s.Won {
		title = "GOAL REACHED"
		titleStyle = draw.ColorBold + draw.ColorGreen
	}

	lines := []string{
		fmt.Sprintf("Final score: %d / %d", s.Score, c.state.Goal),
		s.Message,
	}
	if s.NewHighScore {
		lines = append(lines, fmt.Sprintf("New High Score! (previous %d)", s.Previous))
	}
	if s.Rank > 0 {
		lines = append(lines, fmt.Sprintf("#%d on the %s leaderboard", s.Rank, c.controller.Difficulty().Name))
	}

	width := len(title)
	for _, l := range lines {
		width = max(width, len(l))
	}
	width += 4
	top := centerY - 4

	border := "+" + strings.Repeat("-", width) + "+"
	blank := "|" + strings.Repeat(" ", width) + "|"
	c.text(centerX, top, "", border)
	c.text(centerX, top+1, "", blank)
	c.text(centerX, top+1, titleStyle, title)
	row := top + 2
	for _, l := range lines {
		c.text(centerX, row, "", blank)
		style := ""
		if strings.HasPrefix(l, "New High Score") {
			style = draw.ColorBold + draw.ColorYellow
		}
		c.text(centerX, row, style, l)
		row++
	}
	c.text(centerX, row, "", blank)
	c.text(centerX, row+1, "", border)

	if c.blinkOn() {
		c.text(centerX, row+3, draw.ColorYellow, "SPACE play again  -  ESC close")
	} else {
		c.text(centerX, row+3, "", strings.Repeat(" ", 30))
	}
}

// drawHelpScreen draws how to play.
func (c *Client) drawHelpScreen(centerX, centerY int) {
	cfg, _ := c.table.Get(c.state.Difficulty)
	lines := []string{
		"Move the bucket under the falling water.",
		"Clean drops are blue: +1 point.",
		fmt.Sprintf("Dirty drops are brown: -1 point and -%ds.", cfg.PenaltySeconds),
		"Missed drops cost nothing.",
		fmt.Sprintf("Reach %d points before the clock runs out to win.", cfg.Goal),
		"You can also click a drop to catch it.",
	}
	c.text(centerX, centerY-5, draw.ColorBold, "HOW TO PLAY")
	for i, l := range lines {
		c.text(centerX, centerY-3+i, "", l)
	}
	c.text(centerX, centerY+len(lines)-1, draw.ColorDim, "Press ESC or H to go back")
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.text(centerX, centerY-3, draw.ColorBold, "SERVER SHUTTING DOWN")
	c.text(centerX, centerY-1, "", "The server is restarting for maintenance.")
	c.text(centerX, centerY, "", "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.text(centerX, centerY+2, "", fmt.Sprintf("Disconnecting in %2d seconds...", remaining))
	c.text(centerX, centerY+4, "", "Press Q to disconnect now")
}
