package graph

import (
	"fmt"
	"time"

	"github.com/blaubaer/stfu/pkg/common"
)

func NewParameters() Parameters {
	return Parameters{
		Delay:              2 * time.Second,
		MaxDelay:           5 * time.Second,
		Gain:               0.8,
		FadeIn:             0,
		FFTSize:            256,
		Smoothing:          0.8,
		MinDecibels:        -100,
		MaxDecibels:        -30,
		ModulatorFrequency: 50,
	}
}

// Parameters of every node chain built by a Builder.
type Parameters struct {
	Delay    time.Duration `yaml:"delay"`
	MaxDelay time.Duration `yaml:"maxDelay"`

	Gain float64 `yaml:"gain"`
	// FadeIn ramps the gain from 0 to Gain after the chain was built. 0
	// means the gain starts at its steady value.
	FadeIn time.Duration `yaml:"fadeIn,omitempty"`

	FFTSize     int     `yaml:"fftSize"`
	Smoothing   float64 `yaml:"smoothing"`
	MinDecibels float64 `yaml:"minDecibels"`
	MaxDecibels float64 `yaml:"maxDecibels"`

	ModulatorFrequency float64 `yaml:"modulatorFrequency"`
}

func (this Parameters) Validate() error {
	if this.Delay < 0 {
		return fmt.Errorf("illegal delay: %v", this.Delay)
	}
	if this.MaxDelay <= 0 {
		return fmt.Errorf("illegal max delay: %v", this.MaxDelay)
	}
	if this.Delay > this.MaxDelay {
		return fmt.Errorf("delay %v exceeds max delay %v", this.Delay, this.MaxDelay)
	}
	if this.Gain < 0 {
		return fmt.Errorf("illegal gain: %v", this.Gain)
	}
	if this.FadeIn < 0 {
		return fmt.Errorf("illegal fade in: %v", this.FadeIn)
	}
	if this.FFTSize < 32 || this.FFTSize > 32768 || this.FFTSize&(this.FFTSize-1) != 0 {
		return fmt.Errorf("fft size has to be a power of two between 32 and 32768, but got: %d", this.FFTSize)
	}
	if this.Smoothing < 0 || this.Smoothing > 1 {
		return fmt.Errorf("smoothing has to be between 0 and 1, but got: %v", this.Smoothing)
	}
	if this.MinDecibels >= this.MaxDecibels {
		return fmt.Errorf("min decibels (%v) has to be lower than max decibels (%v)", this.MinDecibels, this.MaxDecibels)
	}
	if this.ModulatorFrequency <= 0 {
		return fmt.Errorf("illegal modulator frequency: %v", this.ModulatorFrequency)
	}
	return nil
}

func (this *Parameters) SetupConfiguration(using common.FlagHolder) {
	using.Flag("graph.delay", "How long the microphone signal is delayed before it is played back.").
		Envar("STFU_GRAPH_DELAY").
		DurationVar(&this.Delay)
	using.Flag("graph.maxDelay", "Capacity of the delay line.").
		Envar("STFU_GRAPH_MAX_DELAY").
		DurationVar(&this.MaxDelay)
	using.Flag("graph.gain", "Gain of the played back signal.").
		Envar("STFU_GRAPH_GAIN").
		Float64Var(&this.Gain)
	using.Flag("graph.fadeIn", "Duration to fade in the played back signal after start.").
		Envar("STFU_GRAPH_FADE_IN").
		DurationVar(&this.FadeIn)
	using.Flag("graph.fftSize", "Window size (in samples) of the frequency analysis.").
		Envar("STFU_GRAPH_FFT_SIZE").
		IntVar(&this.FFTSize)
	using.Flag("graph.smoothing", "Time smoothing (0..1) of the frequency analysis.").
		Envar("STFU_GRAPH_SMOOTHING").
		Float64Var(&this.Smoothing)
	using.Flag("graph.modulatorFrequency", "Frequency (in Hz) of the crazy mode modulator.").
		Envar("STFU_GRAPH_MODULATOR_FREQUENCY").
		Float64Var(&this.ModulatorFrequency)
}
