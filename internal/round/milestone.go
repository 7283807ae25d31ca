package round

import "sort"

// NotificationKind identifies a milestone tracker notification.
type NotificationKind int

const (
	NotifyMilestone NotificationKind = iota
	NotifyHighScoreBeaten
)

// Notification is emitted by MilestoneTracker.Evaluate.
type Notification struct {
	Kind    NotificationKind
	Percent int // Percentage of goal, for NotifyMilestone
}

// MilestoneTracker announces each quarter of the goal once per round, and the
// moment the stored high score is passed.
type MilestoneTracker struct {
	triggered     map[int]struct{}
	highAnnounced bool
}

// NewMilestoneTracker creates an empty tracker.
func NewMilestoneTracker() *MilestoneTracker {
	return &MilestoneTracker{triggered: make(map[int]struct{})}
}

// Reset forgets everything announced so far.
func (m *MilestoneTracker) Reset() {
	clear(m.triggered)
	m.highAnnounced = false
}

// Thresholds returns the distinct scores at 25, 50, 75 and 100 percent of goal,
// rounded up, in ascending order.
func Thresholds(goal int) []int {
	out := make([]int, 0, 4)
	for k := 1; k <= 4; k++ {
		t := (goal*k + 3) / 4
		if len(out) > 0 && out[len(out)-1] == t {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Evaluate returns the notifications newly earned at currentScore.
// Milestones come first in ascending order, the high score notification last.
func (m *MilestoneTracker) Evaluate(currentScore, goal, storedHighScore int) []Notification {
	var out []Notification
	for _, t := range Thresholds(goal) {
		if t > currentScore {
			break
		}
		if _, done := m.triggered[t]; done {
			continue
		}
		m.triggered[t] = struct{}{}
		out = append(out, Notification{Kind: NotifyMilestone, Percent: percentOf(t, goal)})
	}
	if !m.highAnnounced && currentScore > storedHighScore {
		m.highAnnounced = true
		out = append(out, Notification{Kind: NotifyHighScoreBeaten})
	}
	return out
}

// Triggered returns the thresholds announced this round in ascending order.
func (m *MilestoneTracker) Triggered() []int {
	out := make([]int, 0, len(m.triggered))
	for t := range m.triggered {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// HighScoreAnnounced reports whether HighScoreBeaten fired this round.
func (m *MilestoneTracker) HighScoreAnnounced() bool {
	return m.highAnnounced
}

// percentOf returns round(threshold/goal*100) using integer math.
func percentOf(threshold, goal int) int {
	return (threshold*200 + goal) / (2 * goal)
}
