package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/vignette"
)

var (
	vignettesMu sync.RWMutex
	vignettes   = make(map[string]vignette.Factory)
)

// RegisterVignette adds a vignette factory by name, replacing any previous one
func RegisterVignette(name string, factory vignette.Factory) {
	vignettesMu.Lock()
	defer vignettesMu.Unlock()
	vignettes[name] = factory
}

// GetVignette retrieves a vignette factory by name
func GetVignette(name string) (vignette.Factory, bool) {
	vignettesMu.RLock()
	defer vignettesMu.RUnlock()
	f, ok := vignettes[name]
	return f, ok
}

// VignetteNames returns all registered vignette names, sorted
func VignetteNames() []string {
	vignettesMu.RLock()
	defer vignettesMu.RUnlock()
	names := make([]string, 0, len(vignettes))
	for name := range vignettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Playlist resolves names into scheduler entries in the given order
// A name may appear more than once
func Playlist(names []string) ([]vignette.Entry, error) {
	vignettesMu.RLock()
	defer vignettesMu.RUnlock()

	entries := make([]vignette.Entry, 0, len(names))
	for _, name := range names {
		f, ok := vignettes[name]
		if !ok {
			return nil, fmt.Errorf("vignette %q: %w", name, core.ErrUnknownName)
		}
		entries = append(entries, vignette.Entry{Name: name, Factory: f})
	}
	return entries, nil
}

// UnregisterVignette removes a factory
func UnregisterVignette(name string) {
	vignettesMu.Lock()
	defer vignettesMu.Unlock()
	delete(vignettes, name)
}
