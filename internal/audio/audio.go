// Package audio plays synthesized sound effects for round events.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/dropcatch/internal/round"
)

// SampleRate is the output rate of every effect.
const SampleRate = beep.SampleRate(44100)

// Player plays streamers.
type Player interface {
	Play(s beep.Streamer)
}

// Speaker mixes effects onto the system audio device.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker creates a speaker. Call Init before playing.
func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

// Init opens the audio device.
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play adds st to the mix. It does nothing before Init.
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || st == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences everything still playing.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	s.initialized = false
}

// Sink turns round events into sound effects.
type Sink struct {
	player Player
	volume float64
	logger *log.Logger
}

// NewSink creates a sink playing through p at volume vol in [0,1].
func NewSink(p Player, vol float64, logger *log.Logger) *Sink {
	return &Sink{player: p, volume: vol, logger: logger}
}

// HandleEvent implements round.Sink.
func (s *Sink) HandleEvent(ev round.Event) {
	effect, ok := EffectFor(ev)
	if !ok {
		return
	}
	if s.logger != nil {
		s.logger.Debug("playing effect", "event", ev.Type, "effect", effect)
	}
	s.player.Play(Build(effect, SampleRate, s.volume))
}

// EffectFor maps a round event to the effect it plays, if any.
func EffectFor(ev round.Event) (Effect, bool) {
	switch ev.Type {
	case round.EventScoreChanged:
		if ev.Delta > 0 {
			return EffectCatch, true
		}
		return EffectDirty, true
	case round.EventMilestoneReached:
		return EffectMilestone, true
	case round.EventHighScoreBeaten:
		return EffectFanfare, true
	}
	return 0, false
}
