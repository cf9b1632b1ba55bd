package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/audio"
	"github.com/blaubaer/stfu/pkg/graph"
	"github.com/blaubaer/stfu/pkg/volume"
)

// Host is the audio processing context a Machine runs in.
type Host interface {
	// Resume creates the context if it is closed and resumes it if it is
	// suspended.
	Resume(ctx context.Context) error
	Suspend() error
	Close() error
	AcquireMicrophone(ctx context.Context) (audio.Microphone, error)
}

// Listener is informed about every change of the State of a Machine.
type Listener func(State)

// Machine executes the commands resulting of each Transition against its
// Host and owns everything acquired while a session is active.
type Machine struct {
	host      Host
	builder   *graph.Builder
	interval  time.Duration
	consumers []volume.Consumer

	// mutex serializes Fire, which may block while the microphone is
	// acquired. view guards what readers see meanwhile.
	mutex     sync.Mutex
	view      sync.RWMutex
	state     State
	resources *resources
	pollers   []*volume.Poller
	listeners []Listener
}

// NewMachine creates a new Machine. Every consumer gets its own poller of
// the volume while a session is active.
func NewMachine(host Host, builder *graph.Builder, interval time.Duration, consumers ...volume.Consumer) *Machine {
	return &Machine{
		host:      host,
		builder:   builder,
		interval:  interval,
		consumers: consumers,
	}
}

// Subscribe registers a listener which is called after every change of the
// State. Listeners must not call the Machine themselves.
func (this *Machine) Subscribe(l Listener) {
	this.view.Lock()
	defer this.view.Unlock()

	this.listeners = append(this.listeners, l)
}

func (this *Machine) State() State {
	this.view.RLock()
	defer this.view.RUnlock()

	return this.state
}

// Tap returns the analysis tap of the active session or nil when idle.
func (this *Machine) Tap() volume.Tap {
	this.view.RLock()
	defer this.view.RUnlock()

	if r := this.resources; r != nil {
		return r.chain.Tap()
	}
	return nil
}

// Chain returns the node chain of the active session or nil when idle.
func (this *Machine) Chain() *graph.Chain {
	this.view.RLock()
	defer this.view.RUnlock()

	if r := this.resources; r != nil {
		return r.chain
	}
	return nil
}

// Start acquires the microphone and starts a session. A failure is not
// returned but stored in State.Error.
func (this *Machine) Start(ctx context.Context) State {
	return this.Fire(ctx, EventStart{})
}

func (this *Machine) ToggleCrazy() State {
	return this.Fire(context.Background(), EventToggleCrazy{})
}

func (this *Machine) Stop() State {
	return this.Fire(context.Background(), EventStop{})
}

// Toggle starts a session if idle and stops it otherwise.
func (this *Machine) Toggle(ctx context.Context) State {
	if this.State().IsActive() {
		return this.Stop()
	}
	return this.Start(ctx)
}

// Dispose stops a possibly active session and closes the audio context. The
// Machine can be started again afterward which will create a new context.
func (this *Machine) Dispose() State {
	return this.Fire(context.Background(), EventDispose{})
}

// Fire applies the given event and every event resulting of its commands.
func (this *Machine) Fire(ctx context.Context, e Event) State {
	this.mutex.Lock()
	before := this.state
	queue := []Event{e}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		next, commands := Transition(this.state, current)
		if next != this.state {
			log.With("event", current).
				With("from", this.state).
				With("to", next).
				Debug("Session state changed.")
		}
		this.view.Lock()
		this.state = next
		this.view.Unlock()

		for _, c := range commands {
			if followUp := this.execute(ctx, c); followUp != nil {
				queue = append(queue, followUp)
				break
			}
		}
	}
	after := this.state
	this.mutex.Unlock()

	this.view.RLock()
	listeners := this.listeners
	this.view.RUnlock()

	if after != before {
		for _, l := range listeners {
			l(after)
		}
	}
	return after
}

func (this *Machine) execute(ctx context.Context, c Command) Event {
	switch c {
	case CommandResumeContext:
		if err := this.host.Resume(ctx); err != nil {
			return EventAcquireFailed{Err: fmt.Errorf("cannot resume audio context: %w", err)}
		}
	case CommandAcquire:
		r, err := acquire(ctx, this.host, this.builder)
		if err != nil {
			log.WithError(err).
				Warn("Cannot start session.")
			return EventAcquireFailed{Err: err}
		}
		this.view.Lock()
		this.resources = r
		this.view.Unlock()
		log.With("sampleRate", r.chain.SampleRate()).
			With("delay", r.chain.Delay().Time()).
			Info("Session started.")
		return EventAcquired{}
	case CommandStartPolling:
		this.startPolling()
	case CommandCancelPolling:
		this.cancelPolling()
	case CommandAttachModulator:
		if r := this.resources; r != nil {
			if err := r.chain.AttachModulator(); err != nil {
				log.WithError(err).
					Warn("Cannot attach modulator.")
			}
		}
	case CommandDetachModulator:
		if r := this.resources; r != nil {
			r.chain.DetachModulator()
		}
	case CommandRelease:
		if r := this.resources; r != nil {
			this.view.Lock()
			this.resources = nil
			this.view.Unlock()
			if err := r.Release(); err != nil {
				log.WithError(err).
					Warn("Cannot release session resources.")
			}
			log.Info("Session stopped.")
		}
	case CommandSuspendContext:
		if err := this.host.Suspend(); err != nil {
			log.WithError(err).
				Warn("Cannot suspend audio context.")
		}
	case CommandCloseContext:
		if err := this.host.Close(); err != nil {
			log.WithError(err).
				Warn("Cannot close audio context.")
		}
	}
	return nil
}

func (this *Machine) startPolling() {
	r := this.resources
	if r == nil {
		return
	}
	this.cancelPolling()
	for _, c := range this.consumers {
		p := volume.NewPoller(this.interval, r.chain.Tap(), c)
		if err := p.Start(); err != nil {
			log.WithError(err).
				Warn("Cannot start volume poller.")
			continue
		}
		this.pollers = append(this.pollers, p)
	}
}

func (this *Machine) cancelPolling() {
	for _, p := range this.pollers {
		p.Cancel()
	}
	this.pollers = nil
}
