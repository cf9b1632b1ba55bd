package ui

import (
	"io"

	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/volume"
)

const (
	lineTitle = iota
	lineSpectrum
	lineHint
	lineControls
	lines
)

// Hint returns the status line and the controls line for the given state.
func Hint(state session.State) (hint, controls string) {
	switch {
	case state.HasError():
		hint = "\x1b[31m✕ " + state.Error
	case state.IsActive():
		hint = "\x1b[31m●\x1b[0m TAP TO STOP"
	default:
		hint = "○ TAP TO SILENCE"
	}

	switch {
	case state.IsModulated():
		controls = "[c] DEMON MODE"
	case state.IsActive():
		controls = "[c] ACTIVATE CRAZY"
	}
	return hint, controls
}

// Terminal is the complete terminal presentation of a session.
type Terminal struct {
	Screen   *Screen
	Title    *Title
	Spectrum *Spectrum
}

func NewTerminal(out io.Writer, width int, reducedMotion bool) *Terminal {
	screen := NewScreen(out, lines, width)
	return &Terminal{
		Screen:   screen,
		Title:    NewTitle(screen, lineTitle, reducedMotion),
		Spectrum: NewSpectrum(screen, lineSpectrum),
	}
}

// Consumers returns everything which follows the volume.
func (this *Terminal) Consumers() []volume.Consumer {
	return []volume.Consumer{this.Title, this.Spectrum}
}

// Update redraws everything which depends on the state.
func (this *Terminal) Update(state session.State) {
	hint, controls := Hint(state)
	_ = this.Screen.Set(lineHint, center(hint, visibleLength(hint), this.Screen.Width()))
	_ = this.Screen.Set(lineControls, center(controls, visibleLength(controls), this.Screen.Width()))
	if !state.IsActive() {
		this.Title.Reset()
		this.Spectrum.Reset()
	}
}

func (this *Terminal) Close() error {
	return this.Screen.Close()
}

// visibleLength is the number of printed runes of s without CSI sequences.
func visibleLength(s string) (result int) {
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r >= '@' && r <= '~' && r != '[' {
				inEscape = false
			}
		case r == 27:
			inEscape = true
		default:
			result++
		}
	}
	return result
}
