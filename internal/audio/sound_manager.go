package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Sound durations
const (
	clickDuration   = 90 * time.Millisecond
	winNoteDuration = 140 * time.Millisecond
)

// winNotes is a rising C major arpeggio.
var winNotes = []float64{523.25, 659.25, 783.99, 1046.50}

// SoundManager plays effects on the local speaker through a shared mixer.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	log         *log.Logger
}

// NewSoundManager creates a sound manager. Call Initialize before playing.
func NewSoundManager(l *log.Logger) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: 0.6,
		log:    l,
	}
}

// Initialize opens the speaker. On failure the manager stays silent and
// the error is returned for the caller to log.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Click plays a short bright blip.
func (sm *SoundManager) Click() {
	sm.play("click", CreateClickSound(sm.volume))
}

// Win plays a rising arpeggio.
func (sm *SoundManager) Win() {
	sm.play("win", CreateWinSound(sm.volume))
}

// Close stops all sounds.
func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

func (sm *SoundManager) play(name string, s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		if sm.log != nil {
			sm.log.Debug("sound skipped: speaker not initialized", "sound", name)
		}
		return
	}

	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// Compile-time check that SoundManager implements Player.
var _ Player = (*SoundManager)(nil)

// toneGenerator produces a sine tone with a linear fade-out.
type toneGenerator struct {
	freq    float64
	pos     int
	samples int
}

func newToneGenerator(freq float64, d time.Duration) *toneGenerator {
	return &toneGenerator{freq: freq, samples: sampleRate.N(d)}
}

func (g *toneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.samples {
			return i, i > 0
		}
		t := float64(g.pos) / float64(sampleRate)
		envelope := 1 - float64(g.pos)/float64(g.samples)
		v := 0.3 * envelope * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *toneGenerator) Err() error { return nil }

// newVolume scales a streamer linearly; zero volume is silent.
// math.Log2(0) is -Inf, so zero is handled separately.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateClickSound generates the good-drop click.
func CreateClickSound(vol float64) beep.Streamer {
	return newVolume(newToneGenerator(1320, clickDuration), vol)
}

// CreateWinSound generates the victory arpeggio.
func CreateWinSound(vol float64) beep.Streamer {
	notes := make([]beep.Streamer, 0, len(winNotes))
	for _, f := range winNotes {
		notes = append(notes, newToneGenerator(f, winNoteDuration))
	}
	return newVolume(beep.Seq(notes...), vol)
}
