package ui

import (
	"fmt"
)

// Input is an action requested by the user through any input surface.
type Input uint8

const (
	InputNone = Input(iota)
	InputToggle
	InputCrazy
	InputQuit
)

func (this Input) String() string {
	switch this {
	case InputNone:
		return "none"
	case InputToggle:
		return "toggle"
	case InputCrazy:
		return "crazy"
	case InputQuit:
		return "quit"
	default:
		return fmt.Sprintf("illegal-input-%d", this)
	}
}
