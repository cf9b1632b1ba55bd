package session

import (
	"fmt"

	"github.com/blaubaer/stfu/pkg/audio"
)

// Event is everything which can change a State.
type Event interface {
	fmt.Stringer
	event()
}

type (
	// EventStart is the user request to start a session.
	EventStart struct{}
	// EventAcquired reports that the microphone and the chain are ready.
	EventAcquired struct{}
	// EventAcquireFailed reports that the microphone or the chain could not
	// be created.
	EventAcquireFailed struct{ Err error }
	// EventToggleCrazy is the user request to switch the modulator.
	EventToggleCrazy struct{}
	// EventStop is the user request to stop a session.
	EventStop struct{}
	// EventDispose ends the session and the audio context for good.
	EventDispose struct{}
)

func (EventStart) event()         {}
func (EventAcquired) event()      {}
func (EventAcquireFailed) event() {}
func (EventToggleCrazy) event()   {}
func (EventStop) event()          {}
func (EventDispose) event()       {}

func (EventStart) String() string         { return "start" }
func (EventAcquired) String() string      { return "acquired" }
func (EventToggleCrazy) String() string   { return "toggleCrazy" }
func (EventStop) String() string          { return "stop" }
func (EventDispose) String() string       { return "dispose" }
func (this EventAcquireFailed) String() string {
	if this.Err == nil {
		return "acquireFailed"
	}
	return "acquireFailed: " + this.Err.Error()
}

// Command is a side effect which has to be executed after a transition.
type Command uint8

const (
	CommandResumeContext = Command(iota)
	CommandAcquire
	CommandStartPolling
	CommandCancelPolling
	CommandAttachModulator
	CommandDetachModulator
	CommandRelease
	CommandSuspendContext
	CommandCloseContext
)

func (this Command) String() string {
	switch this {
	case CommandResumeContext:
		return "resumeContext"
	case CommandAcquire:
		return "acquire"
	case CommandStartPolling:
		return "startPolling"
	case CommandCancelPolling:
		return "cancelPolling"
	case CommandAttachModulator:
		return "attachModulator"
	case CommandDetachModulator:
		return "detachModulator"
	case CommandRelease:
		return "release"
	case CommandSuspendContext:
		return "suspendContext"
	case CommandCloseContext:
		return "closeContext"
	default:
		return fmt.Sprintf("illegal-command-%d", this)
	}
}

// Transition calculates the successor of the given State for the given Event
// and which commands have to be executed to reach it. Events which do not
// apply to the current phase result in the unchanged State without commands.
func Transition(current State, e Event) (State, []Command) {
	switch v := e.(type) {
	case EventStart:
		if current.Phase != PhaseIdle {
			return current, nil
		}
		return current, []Command{CommandResumeContext, CommandAcquire}

	case EventAcquired:
		if current.Phase != PhaseIdle {
			return current, nil
		}
		return State{Phase: PhaseActive}, []Command{CommandStartPolling}

	case EventAcquireFailed:
		if current.Phase != PhaseIdle {
			return current, nil
		}
		return State{Phase: PhaseIdle, Error: audio.Message(v.Err)}, nil

	case EventToggleCrazy:
		switch current.Phase {
		case PhaseActive:
			return State{Phase: PhaseActiveModulated}, []Command{CommandAttachModulator}
		case PhaseActiveModulated:
			return State{Phase: PhaseActive}, []Command{CommandDetachModulator}
		default:
			return current, nil
		}

	case EventStop:
		return State{Phase: PhaseIdle, Error: current.Error}, stopCommands(current.Phase)

	case EventDispose:
		return State{Phase: PhaseIdle, Error: current.Error}, append(stopCommands(current.Phase), CommandCloseContext)

	default:
		return current, nil
	}
}

func stopCommands(phase Phase) []Command {
	switch phase {
	case PhaseActive:
		return []Command{CommandCancelPolling, CommandRelease, CommandSuspendContext}
	case PhaseActiveModulated:
		return []Command{CommandCancelPolling, CommandDetachModulator, CommandRelease, CommandSuspendContext}
	default:
		return nil
	}
}
