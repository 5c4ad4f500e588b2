package session

import "sync"

// TextOverlay holds one line of player-facing text with an optional timer
type TextOverlay struct {
	mu        sync.Mutex
	text      string
	remaining float64
	timed     bool
}

// ShowText replaces the text; seconds <= 0 keeps it until replaced or cleared
func (o *TextOverlay) ShowText(text string, seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.text = text
	o.timed = seconds > 0
	o.remaining = seconds
}

// Clear removes the text
func (o *TextOverlay) Clear() {
	o.mu.Lock()
	o.text = ""
	o.timed = false
	o.mu.Unlock()
}

// Advance runs the timer; timed text disappears once it expires
func (o *TextOverlay) Advance(dt float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.timed {
		return
	}
	o.remaining -= dt
	if o.remaining <= 0 {
		o.text = ""
		o.timed = false
	}
}

// Text returns the visible text
func (o *TextOverlay) Text() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.text
}
