package duplex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	log "github.com/echocat/slf4g"
	"github.com/gordonklaus/portaudio"

	"github.com/blaubaer/stfu/pkg/audio"
)

var ErrClosed = errors.New("audio context closed")

// Stack is the portaudio backed audio processing context. It is created
// lazily by the first Resume, can be suspended between sessions and has to
// be closed at the end.
type Stack struct {
	conf  *audio.Configuration
	state State
	mutex sync.RWMutex
}

func (this *Stack) Initialize(conf *audio.Configuration) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.conf = conf
	return nil
}

func (this *Stack) Dispose() error {
	return this.Close()
}

func (this *Stack) State() State {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	return this.state
}

// Resume creates the context if it is closed and resumes it if it is
// suspended.
func (this *Stack) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()

	switch this.state {
	case StateRunning:
		return nil
	case StateClosed:
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("cannot initialize portaudio: %w", err)
		}
		log.With("version", portaudio.VersionText()).
			Debug("Audio context created.")
	default:
		log.Debug("Audio context resumed.")
	}
	this.state = StateRunning
	return nil
}

func (this *Stack) Suspend() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state == StateRunning {
		this.state = StateSuspended
		log.Debug("Audio context suspended.")
	}
	return nil
}

func (this *Stack) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.state == StateClosed {
		return nil
	}
	this.state = StateClosed
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("cannot terminate portaudio: %w", err)
	}
	log.Debug("Audio context closed.")
	return nil
}

func (this *Stack) FindDevices() (audio.Devices, error) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if this.state == StateClosed {
		return nil, ErrClosed
	}

	result, _, err := this.findDevices()
	return result, err
}

func (this *Stack) findDevices() (audio.Devices, []*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot query audio devices: %w", err)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	result := make(audio.Devices, len(infos))
	for i, info := range infos {
		result[i] = audio.Device{
			Name:              info.Name,
			Index:             i,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			DefaultInput:      defaultIn != nil && info.Name == defaultIn.Name && info.HostApi == defaultIn.HostApi,
			DefaultOutput:     defaultOut != nil && info.Name == defaultOut.Name && info.HostApi == defaultOut.HostApi,
		}
		if info.HostApi != nil {
			result[i].HostApi = info.HostApi.Name
		}
	}
	return result, infos, nil
}

// AcquireMicrophone opens a mono duplex stream between the configured (or
// default) input and output device and starts it. Until a processor is
// attached only silence is played.
func (this *Stack) AcquireMicrophone(ctx context.Context) (_ audio.Microphone, rErr error) {
	defer func() {
		rErr = this.classify(rErr)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if this.state != StateRunning {
		return nil, fmt.Errorf("cannot acquire microphone while audio context is %v", this.state)
	}
	conf := this.configuration()

	devices, infos, err := this.findDevices()
	if err != nil {
		return nil, err
	}
	in, ok := devices.Select(conf.InputPredicate(), func(d audio.Device) bool { return d.DefaultInput && d.IsInput() })
	if !ok {
		return nil, audio.NewAcquisitionError(audio.ErrDeviceUnavailable, fmt.Errorf("no input device available"))
	}
	out, ok := devices.Select(conf.OutputPredicate(), func(d audio.Device) bool { return d.DefaultOutput && d.IsOutput() })
	if !ok {
		return nil, audio.NewAcquisitionError(audio.ErrDeviceUnavailable, fmt.Errorf("no output device available"))
	}

	params := portaudio.LowLatencyParameters(infos[in.Index], infos[out.Index])
	params.Input.Channels = 1
	params.Output.Channels = 1
	if v := conf.SampleRate; v > 0 {
		params.SampleRate = v
	}
	if v := conf.FramesPerBuffer; v > 0 {
		params.FramesPerBuffer = v
	}

	mic := &microphone{
		sampleRate: params.SampleRate,
		input:      in,
		output:     out,
	}
	if mic.stream, err = portaudio.OpenStream(params, mic.process); err != nil {
		return nil, fmt.Errorf("cannot open stream from %v to %v: %w", in, out, err)
	}
	if err := mic.stream.Start(); err != nil {
		_ = mic.stream.Close()
		return nil, fmt.Errorf("cannot start stream from %v to %v: %w", in, out, err)
	}

	log.With("input", in).
		With("output", out).
		With("sampleRate", params.SampleRate).
		Info("Microphone acquired.")

	return mic, nil
}

func (this *Stack) configuration() audio.Configuration {
	if v := this.conf; v != nil {
		return *v
	}
	return audio.NewConfiguration()
}

func (this *Stack) classify(err error) error {
	if err == nil {
		return nil
	}
	var paErr portaudio.Error
	if errors.As(err, &paErr) {
		switch paErr {
		case portaudio.DeviceUnavailable:
			result := audio.NewAcquisitionError(audio.ErrDeviceUnavailable, err)
			if holders, hErr := audio.FindHolders(uint32(os.Getpid())); hErr != nil {
				log.WithError(hErr).
					Debug("Cannot determine who holds the microphone.")
			} else {
				result.Holders = holders
			}
			return result
		case portaudio.InvalidDevice, portaudio.InvalidChannelCount, portaudio.BadIODeviceCombination:
			return audio.NewAcquisitionError(audio.ErrDeviceUnavailable, err)
		}
	}
	return audio.Classify(err)
}
