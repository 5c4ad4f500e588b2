package content

import (
	"github.com/lixenwraith/vignettes/audio"
	"github.com/lixenwraith/vignettes/vignette"
)

// WelcomeText is shown until the input device reports ready
const WelcomeText = "Press Enter to begin"

// Welcome waits for the player's input device
type Welcome struct{}

// NewWelcome returns the welcome vignette factory
func NewWelcome() vignette.Factory {
	return vignette.New(vignette.Spec[Welcome]{
		Name:  "welcome",
		Scene: "welcome",
		Setup: func(ctx *vignette.Context, _ *Welcome) error {
			ctx.ShowText(WelcomeText, 0)
			return nil
		},
		Update: func(ctx *vignette.Context, _ *Welcome) bool {
			if ctx.Input == nil || !ctx.Input.Ready() {
				return false
			}
			ctx.Play(audio.CueEnter)
			return true
		},
		Teardown: func(ctx *vignette.Context, _ *Welcome) {
			ctx.ShowText("", 0)
		},
	})
}
