package duplex

import "fmt"

// State of the audio processing context.
type State uint8

const (
	StateClosed    = State(0)
	StateRunning   = State(1)
	StateSuspended = State(2)
)

func (this State) String() string {
	switch this {
	case StateClosed:
		return "closed"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	default:
		return fmt.Sprintf("illegal-context-state-%d", this)
	}
}
