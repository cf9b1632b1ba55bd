package duplex

import (
	"errors"
	"sync"
	"sync/atomic"

	log "github.com/echocat/slf4g"
	"github.com/gordonklaus/portaudio"

	"github.com/blaubaer/stfu/pkg/audio"
)

var ErrReleased = errors.New("microphone already released")

type microphone struct {
	stream     *portaudio.Stream
	sampleRate float64
	input      audio.Device
	output     audio.Device

	processor atomic.Pointer[processorRef]
	released  atomic.Bool
	release   sync.Once
	releaseErr error
}

type processorRef struct {
	audio.Processor
}

// process is the portaudio callback.
func (this *microphone) process(in, out []float32) {
	if p := this.processor.Load(); p != nil {
		p.Process(in, out)
		return
	}
	clear(out)
}

func (this *microphone) SampleRate() float64 {
	return this.sampleRate
}

func (this *microphone) Attach(p audio.Processor) error {
	if this.released.Load() {
		return ErrReleased
	}
	this.processor.Store(&processorRef{p})
	return nil
}

func (this *microphone) Detach() {
	this.processor.Store(nil)
}

func (this *microphone) Release() error {
	this.release.Do(func() {
		this.released.Store(true)
		this.Detach()
		this.releaseErr = errors.Join(this.stream.Stop(), this.stream.Close())
		log.With("input", this.input).
			Info("Microphone released.")
	})
	return this.releaseErr
}
