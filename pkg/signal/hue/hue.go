package hue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/credentials"
	"github.com/blaubaer/stfu/pkg/session"
	"github.com/blaubaer/stfu/pkg/signal"
	"github.com/blaubaer/stfu/pkg/volume"
)

const appName = "github.com/blaubaer/stfu"

// Hue lets lights (or groups) glow while a session is active. The brightness
// follows the volume of the session.
type Hue struct {
	conf         *Configuration
	saveConfFunc func() error

	lights      []huego.Light
	groups      []huego.Group
	credentials credentials.Credentials
	mutex       sync.Mutex

	state      session.State
	lastPulse  time.Time
	brightness uint8

	now func() time.Time
}

func (this *Hue) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	lights, err := this.discoverLights(bridge)
	if err != nil {
		return err
	}
	groups, err := this.discoverGroups(bridge)
	if err != nil {
		return err
	}

	this.lights = lights
	this.groups = groups

	log.With("lights", len(lights)).
		With("groups", len(groups)).
		Debug("Hue targets discovered.")

	return nil
}

func (this *Hue) discoverLights(bridge *huego.Bridge) (result []huego.Light, _ error) {
	if this.conf.Kinds.Has(KindLight) {
		candidates, err := bridge.GetLights()
		if err != nil {
			return nil, fmt.Errorf("cannot discover lights of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) discoverGroups(bridge *huego.Bridge) (result []huego.Group, _ error) {
	if this.conf.Kinds.Has(KindGroup) {
		candidates, err := bridge.GetGroups()
		if err != nil {
			return nil, fmt.Errorf("cannot discover groups of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			if this.conf.Name.MatchString(candidate.Name) {
				if candidate.State == nil {
					candidate.State = &huego.State{}
				}
				result = append(result, candidate)
			}
		}
	}
	return
}

func (this *Hue) Ensure(ctx signal.Context) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	state := ctx.State()
	this.state = state
	this.brightness = this.conf.Brightness

	bridge, err := this.bridge()
	if err != nil {
		return err
	}
	return this.apply(bridge, func(title string, current *huego.State) *huego.State {
		return this.targetOf(state, current)
	})
}

// targetOf returns the state a light has to be switched to or nil if it is
// already in it.
func (this *Hue) targetOf(state session.State, current *huego.State) *huego.State {
	if !state.IsActive() {
		if current.On {
			return &huego.State{On: false}
		}
		return nil
	}

	hue := this.conf.Hue
	if state.IsModulated() {
		hue = this.conf.ModulatedHue
	}
	if current.On && current.Bri == this.brightness && current.Hue == hue && current.Sat == this.conf.Saturation {
		return nil
	}
	return &huego.State{
		On:  true,
		Bri: this.brightness,
		Hue: hue,
		Sat: this.conf.Saturation,
	}
}

// Pulse adjusts the brightness of all active lights to the given volume. It
// does nothing while idle or if the last update was less than
// MinUpdateInterval ago.
func (this *Hue) Pulse(r volume.Reading) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.state.IsActive() {
		return
	}
	now := this.clock()
	if now.Sub(this.lastPulse) < this.conf.MinUpdateInterval {
		return
	}
	brightness := this.conf.brightnessOf(r.Volume)
	if brightness == this.brightness {
		return
	}
	this.lastPulse = now
	this.brightness = brightness

	bridge, err := this.bridge()
	if err != nil {
		log.WithError(err).
			Debug("Cannot pulse hue lights.")
		return
	}
	if err := this.apply(bridge, func(_ string, current *huego.State) *huego.State {
		if !current.On {
			return nil
		}
		return &huego.State{
			On:             true,
			Bri:            brightness,
			TransitionTime: 1,
		}
	}); err != nil {
		log.WithError(err).
			Debug("Cannot pulse hue lights.")
	}
}

// Reset restores the steady brightness on the next Ensure.
func (this *Hue) Reset() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.lastPulse = time.Time{}
	this.brightness = this.conf.Brightness
}

func (this *Hue) clock() time.Time {
	if v := this.now; v != nil {
		return v()
	}
	return time.Now()
}

func (this *Hue) apply(bridge *huego.Bridge, target func(title string, current *huego.State) *huego.State) error {
	var errs []error
	for i, v := range this.lights {
		title := fmt.Sprintf("light %q#%d", v.Name, v.ID)
		if next := target(title, v.State); next != nil {
			if _, err := bridge.SetLightState(v.ID, *next); err != nil {
				errs = append(errs, fmt.Errorf("cannot switch hue state of %s: %w", title, err))
				continue
			}
			this.lights[i].State = merge(v.State, next)
		}
	}
	for i, v := range this.groups {
		title := fmt.Sprintf("group %q#%d", v.Name, v.ID)
		if next := target(title, v.State); next != nil {
			if _, err := bridge.SetGroupState(v.ID, *next); err != nil {
				errs = append(errs, fmt.Errorf("cannot switch hue state of %s: %w", title, err))
				continue
			}
			this.groups[i].State = merge(v.State, next)
		}
	}
	return errors.Join(errs...)
}

func merge(current, next *huego.State) *huego.State {
	result := *current
	result.On = next.On
	if next.Bri != 0 {
		result.Bri = next.Bri
	}
	if next.Hue != 0 || next.Sat != 0 {
		result.Hue = next.Hue
		result.Sat = next.Sat
	}
	return &result
}

func (this *Hue) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc
	this.brightness = conf.Brightness

	v, err := this.resolveCredentials()
	if err != nil {
		return err
	}
	this.credentials = v

	if err := this.Update(); err != nil {
		return err
	}

	return nil
}

func (this *Hue) bridge() (*huego.Bridge, error) {
	v := this.credentials
	if v.IsHueZero() {
		return nil, fmt.Errorf("not paired with hue bridge")
	}
	return huego.New(v.HueBridge, v.HueUser), nil
}

func (this *Hue) resolveCredentials() (credentials.Credentials, error) {
	if u := this.conf.User; u != "" {
		bridge, err := this.discoverBridge()
		if err != nil {
			return credentials.Credentials{}, err
		}

		return credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   u,
		}, nil
	}

	if this.conf.Pair {
		return this.pair()
	}

	v, err := this.readCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}

	if !v.IsHueZero() {
		return v, nil
	}

	return this.pair()
}

func (this *Hue) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	return huego.Discover()
}

func (this *Hue) pair() (credentials.Credentials, error) {
	bridge, err := this.discoverBridge()
	if err != nil {
		return credentials.Credentials{}, err
	}

	for {
		log.Info("Wait for hue link button been pressed...")
		user, err := bridge.CreateUser(appName)
		var apiErr *huego.APIError
		if errors.As(err, &apiErr) && apiErr.Type == 101 {
			time.Sleep(1 * time.Second)
			continue
		}
		if err != nil {
			return credentials.Credentials{}, fmt.Errorf("was not able to pair with %s: %w", bridge.Host, err)
		}

		v := credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   user,
		}
		if err := this.storeCredentials(v); err != nil {
			log.WithError(err).
				Warn("Cannot store credentials. The app will work now, but next time the pairing might be required again.")
		}

		log.With("bridge", bridge.Host).
			Info("Successful paired.")
		return v, nil
	}
}

func (this *Hue) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	var err error
	if bridge, bErr := this.bridge(); bErr == nil {
		err = this.apply(bridge, func(_ string, current *huego.State) *huego.State {
			return this.targetOf(session.State{}, current)
		})
	}
	this.state = session.State{}
	this.saveConfFunc = nil
	return err
}

func (this *Hue) GetType() signal.Type {
	return signal.TypeHue
}

func (this *Hue) readCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.HueBridge == "" {
		v.HueBridge = this.conf.Bridge
	}
	if v.HueUser == "" {
		v.HueUser = this.conf.User
	}

	return v, nil
}

func (this *Hue) storeCredentials(v credentials.Credentials) error {
	supported, err := v.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Bridge = v.HueBridge
	this.conf.User = v.HueUser
	return this.saveConfFunc()
}
