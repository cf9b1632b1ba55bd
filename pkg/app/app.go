package app

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/audio/duplex"
	"github.com/blaubaer/stfu/pkg/common"
	"github.com/blaubaer/stfu/pkg/graph"
	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/signal/facade"
	"github.com/blaubaer/stfu/pkg/ui"
	"github.com/blaubaer/stfu/pkg/volume"
)

func NewApp() *App {
	return &App{
		config: NewConfiguration(),
	}
}

type App struct {
	AudioStack        duplex.Stack
	Signal            facade.Facade
	OtherSignals      []signal.Signal
	ConfigurationFile string

	// Output receives the terminal presentation. If nil nothing is drawn.
	Output io.Writer
	Width  int

	configFromFlags Configuration
	config          Configuration
	host            session.Host
	terminal        *ui.Terminal
	machine         *session.Machine

	mutex     sync.Mutex
	lastState session.State
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("STFU_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

// Configuration returns the effective configuration after Initialize.
func (this *App) Configuration() Configuration {
	return this.config
}

// Machine returns the session machine which was created by Initialize.
func (this *App) Machine() *session.Machine {
	return this.machine
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := this.config.mergeFrom(this.configFromFlags); err != nil {
		return err
	}
	if err := this.config.Graph.Validate(); err != nil {
		return err
	}

	if err := this.AudioStack.Initialize(&this.config.Audio); err != nil {
		return err
	}
	if err := this.Signal.Initialize(&this.config.Signal, this.alwaysSaveConf); err != nil {
		return err
	}

	var consumers []volume.Consumer
	if out := this.Output; out != nil {
		this.terminal = ui.NewTerminal(out, this.Width, this.config.UI.ReducedMotion)
		consumers = append(consumers, this.terminal.Consumers()...)
	}
	if this.Signal.IsPulser() {
		consumers = append(consumers, &this.Signal)
	}
	this.machine = session.NewMachine(
		this.audioHost(),
		graph.NewBuilder(this.config.Graph),
		volume.FrameInterval(this.config.UI.FrameRate),
		consumers...,
	)
	this.machine.Subscribe(this.onStateChanged)

	if err := this.saveConf(false); err != nil {
		return err
	}

	this.onStateChanged(this.machine.State())

	success = true
	return nil
}

func (this *App) audioHost() session.Host {
	if v := this.host; v != nil {
		return v
	}
	return &this.AudioStack
}

// Run handles every input until a quit was requested, inputs is closed or
// ctx is done. A still active session is torn down before returning.
func (this *App) Run(ctx context.Context, inputs <-chan ui.Input) error {
	ctxInner, cancel := context.WithCancel(ctx)
	defer cancel()

	defer this.machine.Dispose()

	go this.refreshLoop(ctxInner)

	for {
		select {
		case <-ctx.Done():
			log.Debug("Event loop interrupted.")
			return nil
		case input, ok := <-inputs:
			if !ok {
				return nil
			}
			if this.handle(ctx, input) {
				return nil
			}
		}
	}
}

// handle executes the given input and reports if the app should quit.
func (this *App) handle(ctx context.Context, input ui.Input) (quit bool) {
	switch input {
	case ui.InputToggle:
		this.machine.Toggle(ctx)
	case ui.InputCrazy:
		this.machine.ToggleCrazy()
	case ui.InputQuit:
		log.Info("Exit requested. Going down...")
		return true
	}
	return false
}

func (this *App) refreshLoop(ctx context.Context) {
	interval := this.config.RefreshInterval
	if interval <= 0 {
		return
	}
	for {
		log.With("interval", interval).
			Debug("Wait until the next refresh...")
		select {
		case <-ctx.Done():
			log.Debug("Refresh loop interrupted.")
			return
		case <-time.After(interval):
		}

		if err := this.Signal.Update(); err != nil {
			log.WithError(err).
				Error("Cannot update signal.")
			continue
		}
		for _, s := range this.OtherSignals {
			if err := s.Update(); err != nil {
				log.WithError(err).
					Warn("Cannot update signal.")
			}
		}

		this.mutex.Lock()
		state := this.lastState
		this.mutex.Unlock()
		this.ensureSignals(state)
	}
}

func (this *App) onStateChanged(state session.State) {
	this.mutex.Lock()
	this.lastState = state
	this.mutex.Unlock()

	l := log.With("phase", state.Phase)
	if state.HasError() {
		l = l.With("error", state.Error)
	}
	l.Info("Session state changed.")

	if v := this.terminal; v != nil {
		v.Update(state)
	}
	this.ensureSignals(state)
}

func (this *App) ensureSignals(state session.State) {
	sCtx := signal.NewContext(state)
	if err := this.Signal.Ensure(sCtx); err != nil {
		log.WithError(err).
			Error("It was not possible to ensure signal state.")
	}
	for _, s := range this.OtherSignals {
		if err := s.Ensure(sCtx); err != nil {
			log.WithError(err).
				Warn("It was not possible to ensure signal state.")
		}
	}
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
			// Ok, we should save...
		} else if err != nil {
			return err
		} else {
			// Does exist, skip...
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

func (this *App) Dispose() (rErr error) {
	defer func() {
		if err := this.AudioStack.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()

	defer func() {
		if v := this.terminal; v != nil {
			if err := v.Close(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	defer func() {
		if err := this.Signal.Dispose(); err != nil && rErr == nil {
			rErr = err
		}
	}()

	if v := this.machine; v != nil {
		v.Dispose()
	}

	sCtx := signal.NewContext(session.State{})

	for _, s := range this.OtherSignals {
		defer func() { _ = s.Ensure(sCtx) }()
	}

	return this.Signal.Ensure(sCtx)
}
