package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/blaubaer/stfu/pkg/volume"
)

const titleText = "STFU"

// TitleEffect is how the title reacts to the volume.
type TitleEffect struct {
	// Scale is 1 at silence and 1.5 at full volume.
	Scale float64
	Glow  bool
	// GlowAlpha is the intensity (0..0.8) of the glow.
	GlowAlpha float64
}

func TitleEffectOf(r volume.Reading, reducedMotion bool) TitleEffect {
	if reducedMotion {
		return TitleEffect{Scale: 1}
	}
	result := TitleEffect{Scale: 1 + r.Volume*0.5}
	if r.Average > 10 {
		result.Glow = true
		result.GlowAlpha = r.Volume * 0.8
	}
	return result
}

// spacing is the number of blanks between two letters of the title.
func (this TitleEffect) spacing() int {
	v := int(math.Round((this.Scale - 1) * 8))
	if v < 0 {
		return 0
	}
	return v
}

func (this TitleEffect) render(width int) string {
	spacing := this.spacing()
	letters := strings.Split(titleText, "")
	text := strings.Join(letters, strings.Repeat(" ", spacing))
	visible := len(letters) + (len(letters)-1)*spacing

	style := "\x1b[1m"
	if this.Glow {
		fade := uint8(math.Round(255 * (1 - this.GlowAlpha)))
		style = fmt.Sprintf("\x1b[1;38;2;255;%d;%dm", fade, fade)
	}
	return center(style+text, visible, width)
}

// Title pulses the title line of a Screen with the volume.
type Title struct {
	screen        *Screen
	line          int
	reducedMotion bool
}

func NewTitle(screen *Screen, line int, reducedMotion bool) *Title {
	return &Title{
		screen:        screen,
		line:          line,
		reducedMotion: reducedMotion,
	}
}

func (this *Title) Pulse(r volume.Reading) {
	_ = this.screen.Set(this.line, TitleEffectOf(r, this.reducedMotion).render(this.screen.Width()))
}

func (this *Title) Reset() {
	_ = this.screen.Set(this.line, TitleEffect{Scale: 1}.render(this.screen.Width()))
}
