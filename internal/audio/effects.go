package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Effect names one of the game's sound effects.
type Effect int

const (
	EffectCatch     Effect = iota // clean drop caught
	EffectDirty                   // dirty drop caught
	EffectMilestone               // progress milestone reached
	EffectFanfare                 // personal best beaten
)

// Effect durations.
const (
	CatchDuration     = 250 * time.Millisecond
	DirtyDuration     = 350 * time.Millisecond
	MilestoneNoteTime = 120 * time.Millisecond
	FanfareNoteTime   = 110 * time.Millisecond
)

// Build creates a fresh streamer for e at volume vol in [0,1].
// It returns nil for an unknown effect.
func Build(e Effect, rate beep.SampleRate, vol float64) beep.Streamer {
	var s beep.Streamer
	switch e {
	case EffectCatch:
		s = tone(880, 660, CatchDuration, WaveSine, rate)
	case EffectDirty:
		s = newVolume(tone(220, 120, DirtyDuration, WaveSaw, rate), 0.6)
	case EffectMilestone:
		s = beep.Seq(
			tone(1046.5, 1046.5, MilestoneNoteTime, WaveSine, rate),
			tone(1318.5, 1318.5, MilestoneNoteTime, WaveSine, rate),
		)
	case EffectFanfare:
		s = newVolume(beep.Seq(
			tone(523.25, 523.25, FanfareNoteTime, WaveSquare, rate),
			tone(659.25, 659.25, FanfareNoteTime, WaveSquare, rate),
			tone(783.99, 783.99, FanfareNoteTime, WaveSquare, rate),
			tone(1046.5, 1046.5, 2*FanfareNoteTime, WaveSquare, rate),
		), 0.4)
	default:
		return nil
	}
	return newVolume(s, vol)
}
