package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/blaubaer/stfu/pkg/volume"
)

const (
	spectrumColumns = 16
	ringBaseRadius  = 8
)

var spectrumLevels = []rune(" ▁▂▃▄▅▆▇█")

// RingEffect is how the ring around the spectrum reacts to the volume.
type RingEffect struct {
	// Scale is 1 at silence and 2.5 at full volume.
	Scale float64
	// Opacity is 0.3 at silence and 1 at full volume.
	Opacity float64
}

func RingEffectOf(r volume.Reading) RingEffect {
	v := r.Average / 256
	return RingEffect{
		Scale:   1 + v*1.5,
		Opacity: math.Min(1, 0.3+v),
	}
}

// Summarize reduces bins to columns levels (0..len(spectrumLevels)-1) by
// averaging neighboring bins.
func Summarize(bins []byte, columns int) []int {
	result := make([]int, columns)
	if len(bins) == 0 || columns <= 0 {
		return result
	}
	for c := range result {
		from := c * len(bins) / columns
		to := (c + 1) * len(bins) / columns
		if to <= from {
			to = from + 1
		}
		var sum float64
		for _, v := range bins[from:to] {
			sum += float64(v)
		}
		mean := sum / float64(to-from)
		level := int(mean / 256 * float64(len(spectrumLevels)))
		result[c] = min(level, len(spectrumLevels)-1)
	}
	return result
}

func (this RingEffect) render(bins []byte, width int) string {
	pad := int(math.Round(ringBaseRadius * (this.Scale - 1)))
	var sb strings.Builder
	for _, level := range Summarize(bins, spectrumColumns) {
		sb.WriteRune(spectrumLevels[level])
	}
	c := func(v float64) int { return int(v * this.Opacity) }
	text := fmt.Sprintf("\x1b[38;2;%d;%d;%dm(%s%s%s)", c(255), c(50), c(50), strings.Repeat(" ", pad), sb.String(), strings.Repeat(" ", pad))
	return center(text, spectrumColumns+2+2*pad, width)
}

// Spectrum draws a ring which grows with the volume around a short summary
// of the frequency data.
type Spectrum struct {
	screen *Screen
	line   int
}

func NewSpectrum(screen *Screen, line int) *Spectrum {
	return &Spectrum{
		screen: screen,
		line:   line,
	}
}

func (this *Spectrum) Pulse(r volume.Reading) {
	_ = this.screen.Set(this.line, RingEffectOf(r).render(r.Bins, this.screen.Width()))
}

func (this *Spectrum) Reset() {
	_ = this.screen.Set(this.line, "")
}
