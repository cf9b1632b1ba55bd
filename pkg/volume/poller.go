package volume

import (
	"errors"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
)

var ErrCancelled = errors.New("poller already cancelled")

const DefaultFrameRate = 60

// FrameInterval converts a frame rate (per second) into the interval between
// two frames. Rates <= 0 fall back to DefaultFrameRate.
func FrameInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return time.Second / time.Duration(rate)
}

// Consumer receives every Reading of a Poller.
type Consumer interface {
	Pulse(Reading)
	// Reset is called once the Poller was cancelled.
	Reset()
}

// Poller samples a Tap periodically and hands the readings to its Consumer
// until it is cancelled.
type Poller struct {
	interval time.Duration
	tap      Tap
	consumer Consumer

	mutex     sync.Mutex
	started   bool
	cancelled bool
	stop      chan struct{}
	done      chan struct{}
}

func NewPoller(interval time.Duration, tap Tap, consumer Consumer) *Poller {
	if interval <= 0 {
		interval = FrameInterval(DefaultFrameRate)
	}
	return &Poller{
		interval: interval,
		tap:      tap,
		consumer: consumer,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start starts the polling in the background. Starting an already running
// Poller does nothing; a cancelled one cannot be started again.
func (this *Poller) Start() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if this.cancelled {
		return ErrCancelled
	}
	if this.started {
		return nil
	}
	this.started = true
	go this.run()
	return nil
}

func (this *Poller) run() {
	defer close(this.done)

	ticker := time.NewTicker(this.interval)
	defer ticker.Stop()

	var sampler Sampler
	for {
		select {
		case <-this.stop:
			return
		case <-ticker.C:
		}

		// A tick and a stop can be ready at the same time.
		select {
		case <-this.stop:
			return
		default:
		}

		this.consumer.Pulse(sampler.Sample(this.tap))
	}
}

// Cancel stops the polling and waits until no Pulse is running anymore. It
// is safe to be called multiple times.
func (this *Poller) Cancel() {
	this.mutex.Lock()
	if this.cancelled {
		this.mutex.Unlock()
		return
	}
	this.cancelled = true
	started := this.started
	close(this.stop)
	this.mutex.Unlock()

	if started {
		<-this.done
	}
	this.consumer.Reset()

	log.Debug("Volume poller cancelled.")
}

func (this *Poller) Cancelled() bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	return this.cancelled
}
