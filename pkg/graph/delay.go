package graph

import (
	"math"
	"time"

	"github.com/blaubaer/stfu/pkg/common"
)

// Delay replays its input after a fixed time offset.
type Delay struct {
	node

	sampleRate float64
	samples    int
	ring       *common.Ring[float32]
}

func newDelay(d, max time.Duration, sampleRate float64) *Delay {
	result := &Delay{
		sampleRate: sampleRate,
		ring:       common.NewRing[float32](durationToSamples(max, sampleRate) + 1),
	}
	result.samples = durationToSamples(d, sampleRate)
	return result
}

func durationToSamples(d time.Duration, sampleRate float64) int {
	return int(math.Round(d.Seconds() * sampleRate))
}

func (this *Delay) Time() time.Duration {
	return time.Duration(float64(this.samples) / this.sampleRate * float64(time.Second))
}

func (this *Delay) Process(buf []float32) {
	for i, v := range buf {
		this.ring.Push(v)
		buf[i] = this.ring.Behind(this.samples + 1)
	}
}
