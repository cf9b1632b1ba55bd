package graph

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/stfu/pkg/audio"
)

var ErrTornDown = errors.New("chain already torn down")

// Chain is the linear node chain
// source -> delay -> gain -> analyser -> sink. It is the audio.Processor of
// the microphone it was built for.
type Chain struct {
	params     Parameters
	sampleRate float64
	mic        audio.Microphone
	live       *atomic.Int64

	source    *Source
	delay     *Delay
	gain      *Gain
	analyser  *Analyser
	sink      *Sink
	modulator *Oscillator

	mutex    sync.Mutex
	tornDown bool
	buf      []float32
}

func (this *Chain) Delay() *Delay {
	return this.delay
}

func (this *Chain) Gain() *Gain {
	return this.gain
}

// Tap returns the analysis tap of this chain.
func (this *Chain) Tap() *Analyser {
	return this.analyser
}

func (this *Chain) SampleRate() float64 {
	return this.sampleRate
}

// Nodes returns all stages in wiring order.
func (this *Chain) Nodes() []Node {
	return []Node{this.source, this.delay, this.gain, this.analyser, this.sink}
}

func (this *Chain) Process(in, out []float32) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.tornDown {
		clear(out)
		return
	}

	if cap(this.buf) < len(out) {
		this.buf = make([]float32, len(out))
	}
	buf := this.buf[:len(out)]
	this.source.read(in, buf)

	reached := false
	for n := this.source.Next(); n != nil; n = n.Next() {
		n.Process(buf)
		if n == Node(this.sink) {
			reached = true
		}
	}
	if !reached {
		clear(out)
		return
	}
	this.sink.write(buf, out)
}

// AttachModulator connects a running oscillator to the control input of the
// gain stage. It does nothing if a modulator is already attached.
func (this *Chain) AttachModulator() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.tornDown {
		return ErrTornDown
	}
	if this.modulator != nil {
		return nil
	}

	osc := newOscillator(this.params.ModulatorFrequency, this.sampleRate)
	osc.init("modulator", this.live)
	this.gain.setControl(osc)
	osc.Start()
	this.modulator = osc

	log.With("frequency", osc.Frequency()).
		Debug("Modulator attached.")
	return nil
}

// DetachModulator stops and disconnects the modulator, cancels every
// scheduled automation of the gain and resets it to its steady value.
func (this *Chain) DetachModulator() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.detachModulator()
}

func (this *Chain) detachModulator() {
	osc := this.modulator
	if osc == nil {
		return
	}
	osc.Stop()
	this.gain.setControl(nil)
	osc.Disconnect()
	this.modulator = nil

	this.gain.Param().CancelScheduled()
	this.gain.Param().SetValue(this.params.Gain)

	log.Debug("Modulator detached.")
}

func (this *Chain) Modulated() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.modulator != nil
}

// Teardown detaches this chain from its microphone and disconnects every
// stage. It is safe to be called multiple times.
func (this *Chain) Teardown() {
	if this.mic != nil {
		this.mic.Detach()
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.tornDown {
		return
	}
	this.detachModulator()
	for _, n := range this.Nodes() {
		n.Disconnect()
	}
	this.tornDown = true

	log.Debug("Node chain torn down.")
}

func (this *Chain) TornDown() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.tornDown
}

// Builder builds new chains and keeps track of all nodes which are still
// connected.
type Builder struct {
	Parameters Parameters

	live atomic.Int64
}

func NewBuilder(p Parameters) *Builder {
	return &Builder{Parameters: p}
}

// LiveNodes returns how many nodes built by this builder are still
// connected.
func (this *Builder) LiveNodes() int {
	return int(this.live.Load())
}

// Build creates a new chain for the given microphone, wires it and attaches
// it to the microphone. The audio is routed immediately afterward.
func (this *Builder) Build(mic audio.Microphone) (*Chain, error) {
	p := this.Parameters
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("illegal graph parameters: %w", err)
	}
	sampleRate := mic.SampleRate()
	if sampleRate <= 0 {
		return nil, audio.NewAcquisitionError(audio.ErrDeviceUnavailable, fmt.Errorf("illegal sample rate of microphone: %v", sampleRate))
	}

	initialGain := p.Gain
	if p.FadeIn > 0 {
		initialGain = 0
	}

	result := &Chain{
		params:     p,
		sampleRate: sampleRate,
		mic:        mic,
		live:       &this.live,
		source:     &Source{},
		delay:      newDelay(p.Delay, p.MaxDelay, sampleRate),
		gain:       newGain(initialGain, sampleRate),
		analyser:   newAnalyser(p),
		sink:       &Sink{},
	}
	result.source.init("source", &this.live)
	result.delay.init("delay", &this.live)
	result.gain.init("gain", &this.live)
	result.analyser.init("analyser", &this.live)
	result.sink.init("sink", &this.live)

	nodes := result.Nodes()
	for i := 1; i < len(nodes); i++ {
		if err := nodes[i-1].Connect(nodes[i]); err != nil {
			result.Teardown()
			return nil, fmt.Errorf("cannot connect %s to %s: %w", nodes[i-1].Name(), nodes[i].Name(), err)
		}
	}

	if p.FadeIn > 0 {
		result.gain.Param().LinearRampTo(p.Gain, p.FadeIn)
	}

	if err := mic.Attach(result); err != nil {
		result.Teardown()
		return nil, audio.Classify(fmt.Errorf("cannot attach node chain to microphone: %w", err))
	}

	log.With("delay", p.Delay).
		With("gain", p.Gain).
		With("fftSize", p.FFTSize).
		With("sampleRate", sampleRate).
		Debug("Node chain built.")

	return result, nil
}
