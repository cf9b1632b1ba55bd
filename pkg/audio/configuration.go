package audio

import "github.com/blaubaer/stfu/pkg/common"

func NewConfiguration() Configuration {
	return Configuration{}
}

type Configuration struct {
	InputDevice     common.Regexp `yaml:"inputDevice,omitempty"`
	OutputDevice    common.Regexp `yaml:"outputDevice,omitempty"`
	SampleRate      float64       `yaml:"sampleRate,omitempty"`
	FramesPerBuffer int           `yaml:"framesPerBuffer,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("audio.inputDevice", "Name as regex of the microphone to use. If empty the default input device is used.").
		Envar("STFU_AUDIO_INPUT_DEVICE").
		SetValue(&this.InputDevice)
	using.Flag("audio.outputDevice", "Name as regex of the speaker to use. If empty the default output device is used.").
		Envar("STFU_AUDIO_OUTPUT_DEVICE").
		SetValue(&this.OutputDevice)
	using.Flag("audio.sampleRate", "Sample rate to capture and play with. If 0 the rate of the input device is used.").
		Envar("STFU_AUDIO_SAMPLE_RATE").
		Float64Var(&this.SampleRate)
	using.Flag("audio.framesPerBuffer", "Frames per buffer of the audio stream. If 0 the audio backend decides.").
		Envar("STFU_AUDIO_FRAMES_PER_BUFFER").
		IntVar(&this.FramesPerBuffer)
}

// InputPredicate returns a predicate for Devices.Select which only matches
// if an explicit input device was configured.
func (this Configuration) InputPredicate() func(Device) bool {
	return func(candidate Device) bool {
		return this.InputDevice.HasContent() && candidate.IsInput() && this.InputDevice.MatchString(candidate.Name)
	}
}

func (this Configuration) OutputPredicate() func(Device) bool {
	return func(candidate Device) bool {
		return this.OutputDevice.HasContent() && candidate.IsOutput() && this.OutputDevice.MatchString(candidate.Name)
	}
}
