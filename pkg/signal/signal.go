package signal

import (
	"github.com/blaubaer/stfu/pkg/volume"
)

// Signal presents the state of a session somewhere outside the terminal.
type Signal interface {
	Dispose() error
	Ensure(Context) error
	Update() error

	GetType() Type
}

// Pulser is a Signal which also follows the live volume of an active
// session.
type Pulser interface {
	Signal
	volume.Consumer
}
