// Package render draws session snapshots to a terminal as a top-down room map
// World X runs left to right, world Z top to bottom; height is shown in the status bar
package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/session"
)

const (
	// DefaultViewWidth is the span of world X, in metres, visible across the map
	DefaultViewWidth = 4.0
	// cellAspect is the height of a terminal cell over its width
	cellAspect = 2.0
	// maxFootprint stops room-sized footprints from flooding every cell
	maxFootprint = 3.0
)

const helpText = "wasd/arrows move  e/q raise/lower  space grip  tab hand  enter start  x quit"

// statusMetrics are shown in the status bar in this order when present
var statusMetrics = []string{"physics.bodies", "trigger.enter", "grab.acquired", "particle.alive", "stream.clients"}

// Terminal renders snapshots onto a tcell screen
type Terminal struct {
	screen    tcell.Screen
	viewWidth float64
	center    mgl64.Vec3
	active    int
}

// NewTerminal creates a renderer centred on the room's play area
func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen:    screen,
		viewWidth: DefaultViewWidth,
		center:    mgl64.Vec3{0, 0, -0.5},
	}
}

// SetActive marks the controller driven by the keyboard
func (t *Terminal) SetActive(id int) {
	t.active = id
}

// SetView sets the world-space centre and visible X span
func (t *Terminal) SetView(center mgl64.Vec3, width float64) {
	t.center = center
	if width > 0 {
		t.viewWidth = width
	}
}

// mapArea returns the rows usable by the map, between the status and overlay lines
func (t *Terminal) mapArea() (w, top, bottom int) {
	w, h := t.screen.Size()
	return w, 1, h - 2
}

// cellsPerMetre returns the horizontal and vertical scale of the map
func (t *Terminal) cellsPerMetre() (sx, sz float64) {
	w, _, _ := t.mapArea()
	sx = float64(w) / t.viewWidth
	return sx, sx / cellAspect
}

// Project maps a world position to a screen cell; ok is false off the map
func (t *Terminal) Project(p mgl64.Vec3) (x, y int, ok bool) {
	w, top, bottom := t.mapArea()
	sx, sz := t.cellsPerMetre()
	mid := float64(top+bottom) / 2
	x = int(math.Floor(float64(w)/2 + (p[0]-t.center[0])*sx))
	y = int(math.Floor(mid + (p[2]-t.center[2])*sz))
	ok = x >= 0 && x < w && y >= top && y <= bottom
	return x, y, ok
}

// Draw renders one snapshot and shows the screen
func (t *Terminal) Draw(snap session.Snapshot) {
	t.screen.Clear()
	defaultStyle := tcell.StyleDefault.Background(RgbBackground)
	t.fill(defaultStyle)

	t.drawGrid(defaultStyle)
	t.drawFootprints(snap.Bodies)
	t.drawTriggers(snap.Triggers)
	t.drawBodies(snap.Bodies)
	t.drawParticles(snap.Particles)
	t.drawMarker(snap.Player, '@', RgbPlayer)
	t.drawControllers(snap.Controllers)

	t.drawStatusBar(snap, defaultStyle)
	t.drawOverlay(snap.Overlay, defaultStyle)

	t.screen.Show()
}

func (t *Terminal) fill(style tcell.Style) {
	w, h := t.screen.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// drawGrid dots every half metre
func (t *Terminal) drawGrid(defaultStyle tcell.Style) {
	style := defaultStyle.Foreground(RgbGrid)
	for gx := -4.0; gx <= 4.0; gx += 0.5 {
		for gz := -4.0; gz <= 4.0; gz += 0.5 {
			if x, y, ok := t.Project(mgl64.Vec3{gx, 0, gz}); ok {
				t.screen.SetContent(x, y, '·', nil, style)
			}
		}
	}
}

// drawFootprints tints the cells under fixed bodies, largest first so tables sit on floors
func (t *Terminal) drawFootprints(bodies []session.BodyView) {
	fixed := make([]session.BodyView, 0, len(bodies))
	for _, b := range bodies {
		if b.Kind == "fixed" && b.Radius > 0 {
			fixed = append(fixed, b)
		}
	}
	sort.Slice(fixed, func(i, j int) bool { return fixed[i].Radius > fixed[j].Radius })

	for _, b := range fixed {
		bg := RgbFixedBg
		if b.Radius > maxFootprint {
			bg = RgbFloor
		}
		r := math.Min(b.Radius, maxFootprint*2)
		t.disc(b.Position, r, func(x, y int) {
			mainc, comb, style, _ := t.screen.GetContent(x, y)
			t.screen.SetContent(x, y, mainc, comb, style.Background(bg))
		})
	}
}

// disc calls fn for every on-map cell within r metres of centre in the X/Z plane
func (t *Terminal) disc(centre mgl64.Vec3, r float64, fn func(x, y int)) {
	sx, sz := t.cellsPerMetre()
	cx, cy, _ := t.Project(centre)
	rx := int(math.Ceil(r * sx))
	ry := int(math.Ceil(r * sz))
	w, top, bottom := t.mapArea()
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= w || y < top || y > bottom {
				continue
			}
			wx := float64(dx) / sx
			wz := float64(dy) / sz
			if wx*wx+wz*wz <= r*r {
				fn(x, y)
			}
		}
	}
}

func (t *Terminal) drawTriggers(triggers []session.TriggerView) {
	for _, tr := range triggers {
		color := RgbTriggerIdle
		if tr.Inside > 0 {
			color = RgbTriggerActive
		}
		t.drawMarker(tr.Position, '○', color)
	}
}

func (t *Terminal) drawBodies(bodies []session.BodyView) {
	for _, b := range bodies {
		var glyph rune
		switch b.Kind {
		case "dynamic":
			glyph = '●'
		case "kinematic":
			glyph = '◆'
		default:
			if b.Radius > maxFootprint {
				continue
			}
			glyph = '▪'
		}
		t.drawMarker(b.Position, glyph, KindColor(b.Kind, b.Sensors))
	}
}

func (t *Terminal) drawParticles(particles []session.ParticleView) {
	for _, p := range particles {
		t.drawMarker(p.Position, '*', Dim(RgbParticle, p.Alpha))
	}
}

func (t *Terminal) drawControllers(controllers []session.ControllerView) {
	for _, c := range controllers {
		if !c.Connected {
			continue
		}
		color := RgbController
		if c.Holding != "" {
			color = RgbControllerHold
		} else if c.ID == t.active {
			color = RgbControllerActive
		}
		glyph := rune('0' + c.ID%10)
		t.drawMarker(c.Position, glyph, color)
	}
}

// drawMarker writes glyph over whatever background the cell already has
func (t *Terminal) drawMarker(p mgl64.Vec3, glyph rune, color tcell.Color) {
	x, y, ok := t.Project(p)
	if !ok {
		return
	}
	_, _, style, _ := t.screen.GetContent(x, y)
	t.screen.SetContent(x, y, glyph, nil, style.Foreground(color))
}

// drawStatusBar draws vignette, slot, step, active hand and metrics on the top line
func (t *Terminal) drawStatusBar(snap session.Snapshot, defaultStyle tcell.Style) {
	w, _ := t.screen.Size()

	nameText := fmt.Sprintf(" %s ", snap.Vignette)
	nameBg := RgbStatusBg
	if !snap.Ready {
		nameText = " LOADING "
		nameBg = RgbStatusWaitBg
	}
	x := t.drawText(0, 0, w, nameText, defaultStyle.Foreground(RgbStatusText).Background(nameBg))
	x = t.drawText(x, 0, w, fmt.Sprintf(" %s ", snap.Slot), defaultStyle.Foreground(RgbStatusText).Background(RgbStatusSlotBg))

	info := fmt.Sprintf(" step %d t %.1fs", snap.Step, snap.Time)
	for _, c := range snap.Controllers {
		if c.ID == t.active {
			info += fmt.Sprintf("  hand %d (%.2f, %.2f, %.2f) grip %.0f", c.ID, c.Position[0], c.Position[1], c.Position[2], c.Grab)
			if c.Holding != "" {
				info += " holding " + c.Holding
			}
		}
	}
	x = t.drawText(x, 0, w, info, defaultStyle.Foreground(RgbStatusMetrics))

	metrics := ""
	for _, name := range statusMetrics {
		if v, ok := snap.Metrics[name]; ok {
			metrics += fmt.Sprintf(" %s=%g", name, v)
		}
	}
	if start := w - len(metrics); start > x+1 {
		t.drawText(start, 0, w, metrics, defaultStyle.Foreground(RgbStatusMetrics))
	}
}

// drawOverlay centres the overlay text on the bottom line, or the key help when empty
func (t *Terminal) drawOverlay(text string, defaultStyle tcell.Style) {
	w, h := t.screen.Size()
	style := defaultStyle.Foreground(RgbOverlayText)
	if text == "" {
		text = helpText
		style = defaultStyle.Foreground(RgbHelpText)
	}
	n := len([]rune(text))
	x := (w - n) / 2
	if x < 0 {
		x = 0
	}
	t.drawText(x, h-1, w, text, style)
}

// drawText writes s from x, clipped at limit, and returns the next column
func (t *Terminal) drawText(x, y, limit int, s string, style tcell.Style) int {
	for _, ch := range s {
		if x >= limit {
			break
		}
		t.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}
