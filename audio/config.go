package audio

import (
	"encoding/json"
	"os"
	"strconv"
)

// Cue names played by vignettes
const (
	CueGrab      = "grab"
	CueRelease   = "release"
	CuePuff      = "puff"
	CueCandleOut = "candle_out"
	CueEnter     = "enter"
	CueDone      = "done"
)

// Config holds audio playback settings
type Config struct {
	Enabled      bool
	MasterVolume float64
	CueVolumes   map[string]float64
	SampleRate   int
}

// DefaultConfig returns the default audio configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: 0.5,
		CueVolumes: map[string]float64{
			CueGrab:      0.6,
			CueRelease:   0.5,
			CuePuff:      0.7,
			CueCandleOut: 1.0,
			CueEnter:     0.4,
			CueDone:      0.8,
		},
		SampleRate: 44100,
	}
}

// Volume returns the effective volume for a cue, master volume applied
func (c *Config) Volume(name string) float64 {
	v, ok := c.CueVolumes[name]
	if !ok {
		v = 1.0
	}
	return v * c.MasterVolume
}

// LoadConfig loads audio configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("VIGNETTES_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100 in the environment, 0.0-1.0 internally
	if volume := os.Getenv("VIGNETTES_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = float64(val) / 100.0
			if cfg.MasterVolume < 0 {
				cfg.MasterVolume = 0
			}
			if cfg.MasterVolume > 1 {
				cfg.MasterVolume = 1
			}
		}
	}

	// Unknown cue names are ignored
	if cueVols := os.Getenv("VIGNETTES_CUE_VOLUMES"); cueVols != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(cueVols), &volumes); err == nil {
			for name, v := range volumes {
				if _, ok := cfg.CueVolumes[name]; ok {
					cfg.CueVolumes[name] = v
				}
			}
		}
	}

	if sampleRate := os.Getenv("VIGNETTES_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}
