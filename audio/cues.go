package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/vignettes/vmath"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *vmath.FastRand
}

// NewOscillator creates an oscillator streaming duration worth of samples
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      vmath.NewFastRand(uint64(freq*1000) + 1),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	releaseStart int
	total        int
}

// NewEnvelope wraps s with attack/release shaping over duration
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	start := total - rel
	if start < att {
		start = att
	}
	return &envelope{
		streamer:     s,
		attack:       att,
		release:      rel,
		releaseStart: start,
		total:        total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.position >= e.releaseStart && e.release > 0 {
			vol = float64(e.total-e.position) / float64(e.release)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}

	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a volume effect; zero or negative volume is silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// tone is a shaped single oscillator
func tone(freq float64, d, attack, release time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, attack, release, rate)
}

// Synthesize builds the streamer for a named cue, nil for unknown names
func Synthesize(name string, cfg *Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	ms := time.Millisecond

	var s beep.Streamer
	switch name {
	case CueGrab:
		s = tone(660, 60*ms, 5*ms, 40*ms, WaveSine, rate)
	case CueRelease:
		s = tone(440, 60*ms, 5*ms, 40*ms, WaveSine, rate)
	case CuePuff:
		s = tone(0, 180*ms, 10*ms, 150*ms, WaveNoise, rate)
	case CueCandleOut:
		// Falling two-note chime
		s = beep.Seq(
			tone(987.77, 90*ms, 5*ms, 60*ms, WaveSquare, rate),
			tone(659.25, 160*ms, 5*ms, 120*ms, WaveSquare, rate),
		)
	case CueEnter:
		s = tone(880, 40*ms, 2*ms, 30*ms, WaveSine, rate)
	case CueDone:
		// Fundamental with an octave overtone
		s = beep.Mix(
			newVolume(tone(523.25, 400*ms, 10*ms, 350*ms, WaveSine, rate), 0.7),
			newVolume(tone(1046.5, 400*ms, 10*ms, 200*ms, WaveSine, rate), 0.3),
		)
	default:
		return nil
	}
	return newVolume(s, cfg.Volume(name))
}
