package render

import (
	"github.com/gdamore/tcell/v2"
)

// RGB color definitions for the top-down room view
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38) // Tokyo Night background
	RgbFloor      = tcell.NewRGBColor(36, 38, 52) // Slightly lifted floor tint
	RgbFixedBg    = tcell.NewRGBColor(52, 48, 40) // Warm gray for fixed footprints
	RgbGrid       = tcell.NewRGBColor(60, 62, 80) // Dim grid dots

	RgbFixed     = tcell.NewRGBColor(180, 170, 150) // Stone for fixed bodies
	RgbDynamic   = tcell.NewRGBColor(100, 150, 255) // Normal Blue for dynamic bodies
	RgbKinematic = tcell.NewRGBColor(255, 165, 0)   // Orange for kinematic bodies
	RgbSensor    = tcell.NewRGBColor(0, 200, 200)   // Vibrant Cyan for sensor bodies

	RgbTriggerIdle   = tcell.NewRGBColor(0, 130, 0)    // Dark Green
	RgbTriggerActive = tcell.NewRGBColor(50, 255, 50)  // Bright Green
	RgbParticle      = tcell.NewRGBColor(220, 220, 220) // Smoke white, dimmed by particle alpha

	RgbController       = tcell.NewRGBColor(255, 255, 255) // Bright white
	RgbControllerActive = tcell.NewRGBColor(255, 255, 0)   // Bright yellow for the keyboard-driven hand
	RgbControllerHold   = tcell.NewRGBColor(255, 80, 80)   // Normal Red while holding
	RgbPlayer           = tcell.NewRGBColor(144, 238, 144) // Light grass green

	RgbStatusBg      = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbStatusSlotBg  = tcell.NewRGBColor(255, 192, 203) // Pink
	RgbStatusWaitBg  = tcell.NewRGBColor(200, 50, 50)   // Red while assets load
	RgbStatusText    = tcell.NewRGBColor(0, 0, 0)       // Dark text for status
	RgbStatusMetrics = tcell.NewRGBColor(180, 180, 180) // Brighter gray
	RgbOverlayText   = tcell.NewRGBColor(255, 255, 200) // Bright yellow-white
	RgbHelpText      = tcell.NewRGBColor(110, 110, 130) // Muted
)

// Dim scales a color's channels by f in [0, 1]
func Dim(c tcell.Color, f float64) tcell.Color {
	if f <= 0 {
		return RgbBackground
	}
	if f > 1 {
		f = 1
	}
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(float64(r)*f), int32(float64(g)*f), int32(float64(b)*f))
}

// KindColor returns the glyph color for a body kind name
func KindColor(kind string, sensors int) tcell.Color {
	if sensors > 0 {
		return RgbSensor
	}
	switch kind {
	case "dynamic":
		return RgbDynamic
	case "kinematic":
		return RgbKinematic
	default:
		return RgbFixed
	}
}
