package audio

// Processor consumes one buffer of microphone samples and produces the
// samples which should be played back. It is called from the audio thread.
type Processor interface {
	Process(in, out []float32)
}

// Microphone is an exclusively owned handle to a live capture stream which is
// also able to write to the output device.
type Microphone interface {
	// SampleRate of the samples passed to the processor.
	SampleRate() float64
	// Attach routes every following buffer through the given processor.
	Attach(Processor) error
	// Detach stops routing; the output will be silence afterward.
	Detach()
	// Release stops and closes the underlying stream. It is safe to be
	// called multiple times.
	Release() error
}
