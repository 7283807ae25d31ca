package round

import "fmt"

// DefaultWinMessages are shown when a round ends at or above the goal.
var DefaultWinMessages = []string{
	"Clean water for everyone!",
	"You filled the well. Nice work!",
	"Every drop counts, and you caught them!",
	"A true water hero!",
}

// DefaultLoseMessages are shown when a round ends below the goal.
var DefaultLoseMessages = []string{
	"So close! Try again to reach the goal.",
	"Keep going, every drop counts.",
	"The well is still thirsty. One more round?",
	"Watch out for the dirty drops!",
}

// PenaltyMessage describes the cost of catching a dirty drop.
func PenaltyMessage(penaltySeconds int) string {
	return fmt.Sprintf("Oops, dirty water! -1 point, -%ds", penaltySeconds)
}

// pick returns a uniformly chosen message, or "" for an empty set.
func pick(rng RandomSource, set []string) string {
	if len(set) == 0 {
		return ""
	}
	i := int(rng.Next() * float64(len(set)))
	if i >= len(set) {
		i = len(set) - 1
	}
	return set[i]
}
