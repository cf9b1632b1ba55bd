package graph

// ControlSource produces a signal which is added to a Param.
type ControlSource interface {
	add(dst []float64)
}

// Gain scales the signal by its Param plus an optional control signal.
type Gain struct {
	node

	param   *Param
	control ControlSource
	scratch []float64
}

func newGain(value, sampleRate float64) *Gain {
	return &Gain{
		param: newParam(value, sampleRate),
	}
}

func (this *Gain) Param() *Param {
	return this.param
}

func (this *Gain) setControl(v ControlSource) {
	this.control = v
}

func (this *Gain) Controlled() bool {
	return this.control != nil
}

func (this *Gain) Process(buf []float32) {
	if cap(this.scratch) < len(buf) {
		this.scratch = make([]float64, len(buf))
	}
	values := this.scratch[:len(buf)]
	this.param.fill(values)
	if c := this.control; c != nil {
		c.add(values)
	}
	for i, v := range values {
		buf[i] *= float32(v)
	}
}
