package session

import (
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/vignettes/grab"
)

// Config holds session tuning
type Config struct {
	PhysicsHz     int
	MaxFrameDT    float64 // render-clock clamp in seconds
	Gravity       float64 // Y component
	CaptureRadius float64
	Seed          uint64
	Playlist      []string
}

// DefaultPlaylist is the built-in vignette order
var DefaultPlaylist = []string{"welcome", "birthday", "sister"}

// DefaultConfig returns the stock configuration
func DefaultConfig() Config {
	return Config{
		PhysicsHz:     120,
		MaxFrameDT:    0.04,
		Gravity:       -9.8,
		CaptureRadius: grab.DefaultCaptureRadius,
		Seed:          1,
		Playlist:      append([]string(nil), DefaultPlaylist...),
	}
}

// LoadConfig loads session configuration from environment variables
// Malformed values keep their defaults
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("VIGNETTES_PHYSICS_HZ"); v != "" {
		if hz, err := strconv.Atoi(v); err == nil && hz > 0 {
			cfg.PhysicsHz = hz
		}
	}

	if v := os.Getenv("VIGNETTES_MAX_FRAME_DT"); v != "" {
		if dt, err := strconv.ParseFloat(v, 64); err == nil && dt > 0 {
			cfg.MaxFrameDT = dt
		}
	}

	if v := os.Getenv("VIGNETTES_GRAVITY"); v != "" {
		if g, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Gravity = g
		}
	}

	if v := os.Getenv("VIGNETTES_CAPTURE_RADIUS"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			cfg.CaptureRadius = r
		}
	}

	if v := os.Getenv("VIGNETTES_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}

	if v := os.Getenv("VIGNETTES_PLAYLIST"); v != "" {
		var names []string
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			cfg.Playlist = names
		}
	}

	return cfg
}
