package graph

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/stfu/pkg/audio"
)

type fakeMicrophone struct {
	sampleRate float64
	processor  audio.Processor
	attachErr  error
	detached   int
	released   int
}

func (this *fakeMicrophone) SampleRate() float64 {
	return this.sampleRate
}

func (this *fakeMicrophone) Attach(p audio.Processor) error {
	if this.attachErr != nil {
		return this.attachErr
	}
	this.processor = p
	return nil
}

func (this *fakeMicrophone) Detach() {
	this.processor = nil
	this.detached++
}

func (this *fakeMicrophone) Release() error {
	this.released++
	return nil
}

func smallParameters() Parameters {
	p := NewParameters()
	p.Delay = 300 * time.Millisecond
	p.MaxDelay = 500 * time.Millisecond
	p.FFTSize = 32
	return p
}

func TestNewParameters(t *testing.T) {
	actual := NewParameters()

	assert.Equal(t, 2*time.Second, actual.Delay)
	assert.Equal(t, 5*time.Second, actual.MaxDelay)
	assert.Equal(t, 0.8, actual.Gain)
	assert.Equal(t, 256, actual.FFTSize)
	assert.Equal(t, 50.0, actual.ModulatorFrequency)
	assert.NoError(t, actual.Validate())
}

func TestParameters_Validate(t *testing.T) {
	cases := map[string]func(*Parameters){
		"negative delay":          func(p *Parameters) { p.Delay = -time.Second },
		"delay exceeds max":       func(p *Parameters) { p.Delay = 6 * time.Second },
		"no max delay":            func(p *Parameters) { p.MaxDelay = 0 },
		"negative gain":           func(p *Parameters) { p.Gain = -1 },
		"negative fade in":        func(p *Parameters) { p.FadeIn = -time.Second },
		"fft size not power of 2": func(p *Parameters) { p.FFTSize = 100 },
		"fft size too small":      func(p *Parameters) { p.FFTSize = 16 },
		"smoothing too big":       func(p *Parameters) { p.Smoothing = 1.5 },
		"decibels swapped":        func(p *Parameters) { p.MinDecibels, p.MaxDecibels = -30, -100 },
		"no modulator frequency":  func(p *Parameters) { p.ModulatorFrequency = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := NewParameters()
			mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	builder := NewBuilder(smallParameters())
	mic := &fakeMicrophone{sampleRate: 10}

	chain, err := builder.Build(mic)
	require.NoError(t, err)

	assert.Same(t, chain, mic.processor)
	assert.Equal(t, 5, builder.LiveNodes())
	assert.Equal(t, 10.0, chain.SampleRate())
	assert.Equal(t, 300*time.Millisecond, chain.Delay().Time())
	assert.Equal(t, 0.8, chain.Gain().Param().Value())
	require.NotNil(t, chain.Tap())
	assert.Equal(t, 16, chain.Tap().FrequencyBinCount())

	var names []string
	for n := Node(chain.source); n != nil; n = n.Next() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"source", "delay", "gain", "analyser", "sink"}, names)
}

func TestChain_Process_delaysAndScales(t *testing.T) {
	chain, err := NewBuilder(smallParameters()).Build(&fakeMicrophone{sampleRate: 10})
	require.NoError(t, err)

	out := make([]float32, 6)
	chain.Process([]float32{1, 0.5, 0, 0, 0, 0}, out)

	assert.InDeltaSlice(t, []float32{0, 0, 0, 0.8, 0.4, 0}, out, 1e-6)
}

func TestChain_Process_shortInputIsPaddedWithSilence(t *testing.T) {
	p := smallParameters()
	p.Delay = 0
	chain, err := NewBuilder(p).Build(&fakeMicrophone{sampleRate: 10})
	require.NoError(t, err)

	out := []float32{9, 9, 9}
	chain.Process([]float32{1}, out)

	assert.InDeltaSlice(t, []float32{0.8, 0, 0}, out, 1e-6)
}

func TestChain_Teardown(t *testing.T) {
	builder := NewBuilder(smallParameters())
	mic := &fakeMicrophone{sampleRate: 10}
	chain, err := builder.Build(mic)
	require.NoError(t, err)
	require.NoError(t, chain.AttachModulator())
	assert.Equal(t, 6, builder.LiveNodes())

	chain.Teardown()

	assert.True(t, chain.TornDown())
	assert.False(t, chain.Modulated())
	assert.Nil(t, mic.processor)
	assert.Equal(t, 0, builder.LiveNodes())
	for _, n := range chain.Nodes() {
		assert.False(t, n.Connected(), n.Name())
		assert.Nil(t, n.Next(), n.Name())
	}

	out := []float32{1, 1}
	chain.Process([]float32{1, 1}, out)
	assert.Equal(t, []float32{0, 0}, out)

	bins := []byte{1, 2, 3}
	chain.Tap().ByteFrequencyData(bins)
	assert.Equal(t, []byte{0, 0, 0}, bins)

	assert.NotPanics(t, chain.Teardown)
	assert.Equal(t, 0, builder.LiveNodes())
	assert.ErrorIs(t, chain.AttachModulator(), ErrTornDown)
}

func TestChain_Modulator(t *testing.T) {
	builder := NewBuilder(smallParameters())
	chain, err := builder.Build(&fakeMicrophone{sampleRate: 200})
	require.NoError(t, err)

	require.NoError(t, chain.AttachModulator())
	require.NoError(t, chain.AttachModulator())
	assert.True(t, chain.Modulated())
	assert.True(t, chain.Gain().Controlled())
	assert.Equal(t, 6, builder.LiveNodes())

	chain.Gain().Param().LinearRampTo(0, time.Second)
	require.True(t, chain.Gain().Param().Scheduled())

	chain.DetachModulator()

	assert.False(t, chain.Modulated())
	assert.False(t, chain.Gain().Controlled())
	assert.False(t, chain.Gain().Param().Scheduled())
	assert.Equal(t, 0.8, chain.Gain().Param().Value())
	assert.Equal(t, 5, builder.LiveNodes())

	assert.NotPanics(t, chain.DetachModulator)
}

func TestBuilder_Build_failsIfMicrophoneCannotBeAttached(t *testing.T) {
	builder := NewBuilder(smallParameters())
	mic := &fakeMicrophone{sampleRate: 10, attachErr: errors.New("gone")}

	chain, err := builder.Build(mic)

	assert.Nil(t, chain)
	assert.ErrorIs(t, err, audio.ErrUnknownAcquisition)
	assert.Equal(t, 0, builder.LiveNodes())
}

func TestBuilder_Build_failsOnIllegalSampleRate(t *testing.T) {
	builder := NewBuilder(smallParameters())

	chain, err := builder.Build(&fakeMicrophone{sampleRate: 0})

	assert.Nil(t, chain)
	assert.ErrorIs(t, err, audio.ErrDeviceUnavailable)
	assert.Equal(t, 0, builder.LiveNodes())
}

func TestBuilder_Build_failsOnIllegalParameters(t *testing.T) {
	p := smallParameters()
	p.Delay = time.Minute

	_, err := NewBuilder(p).Build(&fakeMicrophone{sampleRate: 10})

	assert.Error(t, err)
}

func TestBuilder_Build_fadeIn(t *testing.T) {
	p := smallParameters()
	p.Delay = 0
	p.FadeIn = 400 * time.Millisecond
	chain, err := NewBuilder(p).Build(&fakeMicrophone{sampleRate: 10})
	require.NoError(t, err)

	out := make([]float32, 5)
	chain.Process([]float32{1, 1, 1, 1, 1}, out)

	assert.InDeltaSlice(t, []float32{0.2, 0.4, 0.6, 0.8, 0.8}, out, 1e-6)
	assert.False(t, chain.Gain().Param().Scheduled())
}

func TestParam(t *testing.T) {
	instance := newParam(1, 4)
	values := make([]float64, 6)

	instance.LinearRampTo(0, time.Second)
	instance.fill(values)
	assert.InDeltaSlice(t, []float64{0.75, 0.5, 0.25, 0, 0, 0}, values, 1e-9)
	assert.False(t, instance.Scheduled())

	instance.LinearRampTo(1, time.Second)
	instance.fill(values[:1])
	instance.CancelScheduled()
	instance.fill(values)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25, 0.25, 0.25}, values, 1e-9)

	instance.LinearRampTo(3, 0)
	assert.Equal(t, 3.0, instance.Value())
	assert.False(t, instance.Scheduled())
}

func TestDelay_Time(t *testing.T) {
	instance := newDelay(1500*time.Millisecond, 2*time.Second, 100)

	assert.Equal(t, 1500*time.Millisecond, instance.Time())
}

func TestOscillator(t *testing.T) {
	instance := newOscillator(1, 4)
	values := make([]float64, 4)

	instance.add(values)
	assert.Equal(t, []float64{0, 0, 0, 0}, values)

	instance.Start()
	instance.add(values)
	assert.InDeltaSlice(t, []float64{0, 1, 0, -1}, values, 1e-9)

	instance.Stop()
	clear(values)
	instance.add(values)
	assert.Equal(t, []float64{0, 0, 0, 0}, values)
}

func TestAnalyser_silence(t *testing.T) {
	instance := newAnalyser(NewParameters())
	instance.init("analyser", nil)
	instance.Process(make([]float32, 512))

	bins := make([]byte, instance.FrequencyBinCount())
	instance.ByteFrequencyData(bins)

	assert.Equal(t, 128, len(bins))
	assert.Equal(t, make([]byte, 128), bins)
}

func TestAnalyser_sine(t *testing.T) {
	const sampleRate = 256 * 100.0
	instance := newAnalyser(NewParameters())
	instance.init("analyser", nil)

	buf := make([]float32, 256)
	for i := range buf {
		// exactly on bin 8
		buf[i] = float32(math.Sin(2 * math.Pi * 800 * float64(i) / sampleRate))
	}
	instance.Process(buf)

	bins := make([]byte, instance.FrequencyBinCount())
	instance.ByteFrequencyData(bins)

	assert.Equal(t, byte(255), bins[8])
	assert.Less(t, bins[60], byte(10))
}

func TestAnalyser_readsAreStableWithoutNewSamples(t *testing.T) {
	const sampleRate = 256 * 100.0
	instance := newAnalyser(NewParameters())
	instance.init("analyser", nil)

	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = 0.01 * float32(math.Sin(2*math.Pi*800*float64(i)/sampleRate))
	}
	instance.Process(buf)

	first := make([]byte, instance.FrequencyBinCount())
	second := make([]byte, instance.FrequencyBinCount())
	third := make([]byte, instance.FrequencyBinCount())
	instance.ByteFrequencyData(first)
	instance.ByteFrequencyData(second)
	instance.ByteFrequencyData(third)

	assert.NotZero(t, first[8])
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)

	instance.Process(buf)
	instance.ByteFrequencyData(third)
	assert.Greater(t, third[8], first[8])
}

func TestAnalyser_shortDestination(t *testing.T) {
	instance := newAnalyser(NewParameters())
	instance.init("analyser", nil)
	instance.Process(make([]float32, 256))

	bins := []byte{9, 9, 9}
	instance.ByteFrequencyData(bins)

	assert.Equal(t, []byte{0, 0, 0}, bins)
}

func TestAnalyser_passesSignalThrough(t *testing.T) {
	instance := newAnalyser(NewParameters())
	buf := []float32{0.1, -0.2}

	instance.Process(buf)

	assert.Equal(t, []float32{0.1, -0.2}, buf)
}
