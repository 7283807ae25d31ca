package round

// EventType identifies a round event.
type EventType int

const (
	EventRoundStarted       EventType = iota // Config
	EventScoreChanged                        // Delta, Score
	EventTimeChanged                         // Remaining
	EventTimePenaltyApplied                  // Seconds, Remaining
	EventMilestoneReached                    // Percent
	EventHighScoreBeaten                     // Score
	EventNewHighScore                        // Score, Previous
	EventRoundEnded                          // Score, Won, Message
	EventRoundAborted                        // Score
	EventDropSpawned                         // Drop
)

var eventNames = [...]string{
	EventRoundStarted:       "RoundStarted",
	EventScoreChanged:       "ScoreChanged",
	EventTimeChanged:        "TimeChanged",
	EventTimePenaltyApplied: "TimePenaltyApplied",
	EventMilestoneReached:   "MilestoneReached",
	EventHighScoreBeaten:    "HighScoreBeaten",
	EventNewHighScore:       "NewHighScore",
	EventRoundEnded:         "RoundEnded",
	EventRoundAborted:       "RoundAborted",
	EventDropSpawned:        "DropSpawned",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return "Unknown"
	}
	return eventNames[t]
}

// Event is published by the Controller to every subscribed Sink.
// Only the fields listed next to the event type are meaningful.
type Event struct {
	Type      EventType
	Config    DifficultyConfig
	Delta     int
	Score     int
	Previous  int
	Remaining int
	Seconds   int
	Percent   int
	Won       bool
	Message   string
	Drop      Drop
}

// Sink receives round events. HandleEvent is called synchronously on the
// goroutine driving the controller and must not call its mutating methods.
type Sink interface {
	HandleEvent(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// HandleEvent calls f.
func (f SinkFunc) HandleEvent(ev Event) {
	f(ev)
}
