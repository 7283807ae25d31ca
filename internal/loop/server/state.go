package server

import "sort"

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	seq      int // Insertion order, earlier entries win ties
}

// Snapshot is an immutable view of the hub for rendering.
type Snapshot struct {
	Players   int
	TopScores map[string][]TopScoreEntry // Per difficulty, best first
}

// Top returns the leaderboard of one difficulty.
func (s *Snapshot) Top(difficulty string) []TopScoreEntry {
	return s.TopScores[difficulty]
}

// Leaderboard keeps the best N scores per difficulty in memory.
type Leaderboard struct {
	size    int
	seq     int
	entries map[string][]TopScoreEntry
}

// NewLeaderboard creates a leaderboard holding size entries per difficulty.
func NewLeaderboard(size int) *Leaderboard {
	return &Leaderboard{size: size, entries: make(map[string][]TopScoreEntry)}
}

// Insert records a score and returns its 1-based rank, or 0 when it did not
// make the board. Zero scores never place.
func (l *Leaderboard) Insert(difficulty, username string, score int) int {
	if score <= 0 || l.size <= 0 {
		return 0
	}
	l.seq++
	entry := TopScoreEntry{Username: username, Score: score, seq: l.seq}

	list := append(l.entries[difficulty], entry)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].seq < list[j].seq
	})
	if len(list) > l.size {
		list = list[:l.size]
	}
	l.entries[difficulty] = list

	for i, e := range list {
		if e.seq == entry.seq {
			return i + 1
		}
	}
	return 0
}

// Top returns a copy of one difficulty's entries, best first.
func (l *Leaderboard) Top(difficulty string) []TopScoreEntry {
	return append([]TopScoreEntry(nil), l.entries[difficulty]...)
}

// Snapshot copies every difficulty's entries.
func (l *Leaderboard) Snapshot() map[string][]TopScoreEntry {
	out := make(map[string][]TopScoreEntry, len(l.entries))
	for k := range l.entries {
		out[k] = l.Top(k)
	}
	return out
}
