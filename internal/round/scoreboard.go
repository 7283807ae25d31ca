package round

// ScoreBoard holds the score of the current round. The score never drops below zero.
type ScoreBoard struct {
	score int
}

// Reset sets the score back to zero.
func (s *ScoreBoard) Reset() {
	s.score = 0
}

// Increment adds one point and returns the new score.
func (s *ScoreBoard) Increment() int {
	s.score++
	return s.score
}

// Decrement removes one point, clamping at zero, and returns the new score.
func (s *ScoreBoard) Decrement() int {
	if s.score > 0 {
		s.score--
	}
	return s.score
}

// Score returns the current score.
func (s *ScoreBoard) Score() int {
	return s.score
}
