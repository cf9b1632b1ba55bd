package volume

// Tap is the read side of an analysis node.
type Tap interface {
	FrequencyBinCount() int
	ByteFrequencyData(dst []byte)
}

// Reading is the result of one sample of a Tap.
type Reading struct {
	// Volume is the mean energy of all bins scaled to 0..1.
	Volume float64
	// Average is the mean energy of all bins in 0..255.
	Average float64
	// Bins is the frequency data this reading was calculated from. It is only
	// valid until the next sample of the same Sampler.
	Bins []byte
}

func (this Reading) IsZero() bool {
	return this.Average == 0
}

// Sample reads the current frequency data of the given tap.
func Sample(tap Tap) Reading {
	var sampler Sampler
	return sampler.Sample(tap)
}

// Sampler samples taps and reuses its bin buffer between the samples. It is
// NOT safe for concurrent use.
type Sampler struct {
	bins []byte
}

func (this *Sampler) Sample(tap Tap) Reading {
	if tap == nil {
		return Reading{}
	}
	n := tap.FrequencyBinCount()
	if n <= 0 {
		return Reading{}
	}
	if cap(this.bins) < n {
		this.bins = make([]byte, n)
	}
	bins := this.bins[:n]
	tap.ByteFrequencyData(bins)

	var sum float64
	for _, v := range bins {
		sum += float64(v)
	}
	average := sum / float64(n)
	return Reading{
		Volume:  average / 255,
		Average: average,
		Bins:    bins,
	}
}
