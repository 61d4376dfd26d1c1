package main

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/renantrendt/snake-gms/game"
)

const sampleRate = beep.SampleRate(48000)

type waveType int

const (
	waveSine waveType = iota
	waveSquare
	waveSaw
)

// tone is a fixed-length oscillator
type tone struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     waveType
}

func newTone(freq float64, d time.Duration, wave waveType) *tone {
	return &tone{freq: freq, duration: sampleRate.N(d), wave: wave}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.duration {
			return i, i > 0
		}
		var val float64
		switch t.wave {
		case waveSine:
			val = math.Sin(2 * math.Pi * t.phase)
		case waveSquare:
			val = 1
			if t.phase >= 0.5 {
				val = -1
			}
		case waveSaw:
			val = 2 * (t.phase - 0.5)
		}
		// short linear fade out to avoid clicks
		if left := t.duration - t.position; left < 480 {
			val *= float64(left) / 480
		}
		val *= 0.25
		samples[i][0] = val
		samples[i][1] = val

		t.phase += t.freq / float64(sampleRate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// cue is the tone played for an engine event
type cue struct {
	freq float64
	dur  time.Duration
	wave waveType
}

var cues = map[game.EventType]cue{
	game.EventFoodEaten:        {880, 60 * time.Millisecond, waveSine},
	game.EventRangeCatch:       {990, 40 * time.Millisecond, waveSine},
	game.EventLevelUp:          {660, 150 * time.Millisecond, waveSquare},
	game.EventCollision:        {150, 160 * time.Millisecond, waveSaw},
	game.EventReprieve:         {520, 120 * time.Millisecond, waveSine},
	game.EventTransitionPrompt: {440, 250 * time.Millisecond, waveSquare},
	game.EventGameOver:         {110, 450 * time.Millisecond, waveSquare},
	game.EventAchievement:      {1320, 220 * time.Millisecond, waveSine},
	game.EventTeleport:         {1760, 80 * time.Millisecond, waveSaw},
}

// Sound plays short cues for game events. A failed speaker init leaves it
// silent rather than failing the game.
type Sound struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool
}

func NewSound() *Sound {
	return &Sound{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker
func (s *Sound) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// ToggleMute flips the mute flag and returns the new state
func (s *Sound) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

// Play queues the cue for ev, if it has one
func (s *Sound) Play(ev game.EventType) {
	c, ok := cues[ev]
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.muted {
		return
	}
	speaker.Lock()
	s.mixer.Add(newTone(c.freq, c.dur, c.wave))
	speaker.Unlock()
}

// Cleanup silences everything and closes the speaker
func (s *Sound) Cleanup() {
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
