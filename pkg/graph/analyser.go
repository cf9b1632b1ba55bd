package graph

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/blaubaer/stfu/pkg/common"
)

// Analyser is the analysis tap of a chain. It passes the signal through
// unchanged and remembers the last FFT size samples for frequency analysis.
type Analyser struct {
	node

	fftSize     int
	smoothing   float64
	minDecibels float64
	maxDecibels float64

	mutex    sync.Mutex
	samples  *common.Ring[float32]
	dirty    bool
	bins     []byte
	latest   []float32
	window   []float64
	seq      []float64
	coeffs   []complex128
	smoothed []float64
	fft      *fourier.FFT
}

func newAnalyser(p Parameters) *Analyser {
	coefficients := make([]float64, p.FFTSize)
	for i := range coefficients {
		coefficients[i] = 1
	}
	return &Analyser{
		fftSize:     p.FFTSize,
		smoothing:   p.Smoothing,
		minDecibels: p.MinDecibels,
		maxDecibels: p.MaxDecibels,
		samples:     common.NewRing[float32](p.FFTSize),
		latest:      make([]float32, p.FFTSize),
		window:      window.Blackman(coefficients),
		seq:         make([]float64, p.FFTSize),
		coeffs:      make([]complex128, p.FFTSize/2+1),
		smoothed:    make([]float64, p.FFTSize/2),
		bins:        make([]byte, p.FFTSize/2),
		fft:         fourier.NewFFT(p.FFTSize),
	}
}

func (this *Analyser) Process(buf []float32) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	_, _ = this.samples.Write(buf)
	this.dirty = true
}

func (this *Analyser) FFTSize() int {
	return this.fftSize
}

func (this *Analyser) FrequencyBinCount() int {
	return this.fftSize / 2
}

// ByteFrequencyData writes the current frequency domain energy of every bin
// scaled to 0..255 into dst. The analysis only advances when new samples
// were processed since the last call; until then every caller reads the
// same bins. Once this analyser is disconnected it only writes zeros.
func (this *Analyser) ByteFrequencyData(dst []byte) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if !this.Connected() {
		clear(dst)
		return
	}

	if this.dirty {
		this.analyse()
		this.dirty = false
	}
	n := copy(dst, this.bins)
	clear(dst[n:])
}

func (this *Analyser) analyse() {
	this.samples.Latest(this.latest)
	for i, v := range this.latest {
		this.seq[i] = float64(v) * this.window[i]
	}
	this.coeffs = this.fft.Coefficients(this.coeffs, this.seq)

	scale := 255 / (this.maxDecibels - this.minDecibels)
	n := float64(this.fftSize)
	for i := range this.smoothed {
		magnitude := cmplx.Abs(this.coeffs[i]) / n
		this.smoothed[i] = this.smoothing*this.smoothed[i] + (1-this.smoothing)*magnitude
		db := 20 * math.Log10(this.smoothed[i])
		this.bins[i] = toByte(scale * (db - this.minDecibels))
	}
}

func toByte(v float64) byte {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
