package graph

import (
	"math"
	"sync/atomic"
)

// Oscillator is a sine source. Used as ControlSource of a Gain it becomes
// the modulator of the crazy mode.
type Oscillator struct {
	node

	frequency  float64
	sampleRate float64
	phase      float64
	running    atomic.Bool
}

func newOscillator(frequency, sampleRate float64) *Oscillator {
	return &Oscillator{
		frequency:  frequency,
		sampleRate: sampleRate,
	}
}

func (this *Oscillator) Frequency() float64 {
	return this.frequency
}

func (this *Oscillator) Start() {
	this.running.Store(true)
}

func (this *Oscillator) Stop() {
	this.running.Store(false)
}

func (this *Oscillator) Running() bool {
	return this.running.Load()
}

func (this *Oscillator) next() float64 {
	v := math.Sin(2 * math.Pi * this.phase)
	this.phase += this.frequency / this.sampleRate
	if this.phase >= 1 {
		this.phase -= math.Floor(this.phase)
	}
	return v
}

func (this *Oscillator) add(dst []float64) {
	if !this.Running() {
		return
	}
	for i := range dst {
		dst[i] += this.next()
	}
}
