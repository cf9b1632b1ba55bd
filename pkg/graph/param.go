package graph

import (
	"sync"
	"time"
)

// Param is a scalar which is evaluated for every sample. Besides an
// immediate value it supports one scheduled linear ramp.
type Param struct {
	mutex      sync.Mutex
	value      float64
	sampleRate float64
	ramp       *ramp
}

type ramp struct {
	from, to         float64
	length, position int
}

func newParam(value, sampleRate float64) *Param {
	return &Param{
		value:      value,
		sampleRate: sampleRate,
	}
}

func (this *Param) Value() float64 {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.value
}

// SetValue sets the current value. A scheduled ramp is NOT cancelled by this
// and will continue from the new value on.
func (this *Param) SetValue(v float64) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.value = v
	if r := this.ramp; r != nil {
		r.from = v
	}
}

// LinearRampTo schedules a linear ramp from the current value to target
// which ends after d. It replaces any ramp scheduled before.
func (this *Param) LinearRampTo(target float64, d time.Duration) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	n := int(d.Seconds() * this.sampleRate)
	if n <= 0 {
		this.value = target
		this.ramp = nil
		return
	}
	this.ramp = &ramp{
		from:   this.value,
		to:     target,
		length: n,
	}
}

func (this *Param) CancelScheduled() {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.ramp = nil
}

func (this *Param) Scheduled() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.ramp != nil
}

// fill writes the value of every following sample to dst and advances the
// scheduled automation.
func (this *Param) fill(dst []float64) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	for i := range dst {
		if r := this.ramp; r != nil {
			r.position++
			if r.position >= r.length {
				this.value = r.to
				this.ramp = nil
			} else {
				this.value = r.from + (r.to-r.from)*float64(r.position)/float64(r.length)
			}
		}
		dst[i] = this.value
	}
}
