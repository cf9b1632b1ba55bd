package facade

import (
	"fmt"
	"sync"

	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/signal/homeassistant"
	"github.com/blaubaer/stfu/pkg/signal/hue"
	"github.com/blaubaer/stfu/pkg/volume"
)

// Facade is the signal selected by Configuration.Type. With TypeNone it does
// nothing at all.
type Facade struct {
	signal.Signal

	lock sync.RWMutex
}

func (this *Facade) Ensure(c signal.Context) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Ensure(c)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Update()
	}
	return nil
}

// Pulse forwards the reading if the selected signal follows the volume.
func (this *Facade) Pulse(r volume.Reading) {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v, ok := this.Signal.(signal.Pulser); ok {
		v.Pulse(r)
	}
}

func (this *Facade) Reset() {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v, ok := this.Signal.(signal.Pulser); ok {
		v.Reset()
	}
}

// IsPulser reports if the selected signal follows the volume.
func (this *Facade) IsPulser() bool {
	this.lock.RLock()
	defer this.lock.RUnlock()

	_, ok := this.Signal.(signal.Pulser)
	return ok
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Signal != nil {
		return nil
	}

	switch conf.Type {
	case signal.TypeNone:
	case signal.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	case signal.TypeHomeAssistant:
		var buf homeassistant.Homeassistant
		if err := buf.Initialize(&conf.HomeAssistant, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	default:
		return fmt.Errorf("unsupported signal type: %v", conf.Type)
	}

	return nil
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Signal = nil
	}()

	if v := this.Signal; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) GetType() signal.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.GetType()
	}

	return signal.TypeNone
}
