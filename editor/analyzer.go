package editor

import (
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/viterin/vek/vek32"

	"visu"
)

const (
	// fftWindowSize is the number of mono samples per analysis frame.
	fftWindowSize = 2048

	// fftSmoothing is the fraction of the previous power spectrum retained on
	// each update; the rest comes from the new frame. Smoothing happens on
	// the spectrum, before banding, so short transients still tickle the
	// right band.
	fftSmoothing = 0.8

	// The band magnitudes are power in decibels mapped linearly from
	// [minDecibels, maxDecibels] onto [0,1] and clamped.
	minDecibels = -100
	maxDecibels = -30
)

// Analyzer is the audio analysis feed. It runs in its own goroutine (Run),
// receives the played audio chunks from the player and publishes a
// visu.Signal snapshot after every full analysis frame: a Hann-windowed FFT
// reduced to visu.NumBands frequency bands. Between snapshots readers see the
// previous one; there is never a partial update.
type Analyzer struct {
	broker *Broker
	cell   *visu.SignalCell

	sampleRate int
	mono       []float32 // sliding mono window, newest samples last
	monoTime   float64   // stream time of the end of the window

	window     []float32 // Hann coefficients
	normFactor float32
	bitPerm    []int
	power      []float32 // smoothed power spectrum
	tmp1       []float32
	tmp2       []float32
	tmpC       []complex128
}

func NewAnalyzer(broker *Broker, cell *visu.SignalCell) *Analyzer {
	a := &Analyzer{
		broker:  broker,
		cell:    cell,
		mono:    make([]float32, 0, 2*fftWindowSize),
		window:  make([]float32, fftWindowSize),
		bitPerm: make([]int, fftWindowSize),
		power:   make([]float32, fftWindowSize/2),
		tmp1:    make([]float32, fftWindowSize),
		tmp2:    make([]float32, fftWindowSize),
		tmpC:    make([]complex128, fftWindowSize),
	}
	for i := range a.window {
		a.window[i] = float32(0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftWindowSize)))
		a.normFactor += a.window[i]
	}
	a.normFactor /= 2
	logN := bits.Len(uint(fftWindowSize)) - 1
	for i := range a.bitPerm {
		a.bitPerm[i] = int(bits.Reverse(uint(i)) >> (bits.UintSize - logN))
	}
	return a
}

// Run is the analyzer goroutine. Stop it by sending to broker.CloseAnalyzer;
// broker.FinishedAnalyzer is closed when it has exited.
func (a *Analyzer) Run() {
	defer close(a.broker.FinishedAnalyzer)
	for {
		select {
		case msg := <-a.broker.ToAnalyzer:
			a.handleMsg(msg)
		case <-a.broker.CloseAnalyzer:
			return
		}
	}
}

func (a *Analyzer) handleMsg(msg MsgToAnalyzer) {
	if msg.SampleRate > 0 {
		a.sampleRate = msg.SampleRate
	}
	if msg.Reset {
		// a seek makes the buffered window lie about what is audible, so
		// drop it and the smoothed spectrum along with it
		a.mono = a.mono[:0]
		vek32.Zeros_Into(a.power, len(a.power))
		a.cell.Store(visu.Signal{Time: msg.Time})
	}
	switch data := msg.Data.(type) {
	case *visu.AudioBuffer:
		a.consume(*data, msg.Time)
		a.broker.PutAudioBuffer(data)
	case func():
		data()
	}
}

// consume appends a stereo chunk to the sliding mono window and publishes a
// fresh snapshot if a full analysis frame is available. Before the first
// full window no snapshot is published and readers keep whatever they had.
func (a *Analyzer) consume(chunk visu.AudioBuffer, chunkTime float64) {
	if a.sampleRate == 0 {
		return
	}
	for _, frame := range chunk {
		a.mono = append(a.mono, (frame[0]+frame[1])/2)
	}
	a.monoTime = chunkTime + float64(len(chunk))/float64(a.sampleRate)
	if excess := len(a.mono) - fftWindowSize; excess > 0 {
		a.mono = a.mono[:copy(a.mono, a.mono[excess:])]
	}
	if len(a.mono) < fftWindowSize {
		return
	}
	a.cell.Store(visu.Signal{Bands: a.analyze(), Time: a.monoTime})
}

// analyze computes the band magnitudes from the current window. Adapted
// radix-2 FFT over the Hann-windowed mono samples; the power spectrum is
// exponentially smoothed and then reduced to equal bands.
func (a *Analyzer) analyze() (bands [visu.NumBands]float32) {
	copy(a.tmp1, a.mono)
	vek32.Mul_Inplace(a.tmp1, a.window)          // apply windowing
	vek32.Gather_Into(a.tmp2, a.tmp1, a.bitPerm) // bit-reversal permutation
	c := a.tmpC
	for i := range c {
		c[i] = complex(float64(a.tmp2[i]), 0)
	}
	n := len(c)
	for l := 2; l <= n; l <<= 1 {
		ang := 2 * math.Pi / float64(l)
		wlen := complex(math.Cos(ang), math.Sin(ang))
		for i := 0; i < n; i += l {
			w := complex(1, 0)
			for j := 0; j < l/2; j++ {
				u := c[i+j]
				v := c[i+j+l/2] * w
				c[i+j] = u + v
				c[i+j+l/2] = u - v
				w *= wlen
			}
		}
	}
	// take the magnitudes of the first half, excluding DC but including the
	// Nyquist bin
	m := n / 2
	t1 := a.tmp1[:m]
	t2 := a.tmp2[:m]
	for i := 0; i < m; i++ {
		t1[i] = float32(cmplx.Abs(c[1+i]))
	}
	// square to power, normalized for the windowing
	vek32.Mul_Into(t2, t1, t1)
	vek32.DivNumber_Inplace(t2, a.normFactor*a.normFactor)
	// real-valued input, so double everything but Nyquist
	vek32.MulNumber_Inplace(t2[:m-1], 2)
	// power := power + (new - power) * (1 - smoothing)
	vek32.Sub_Inplace(t2, a.power)
	vek32.MulNumber_Inplace(t2, 1-fftSmoothing)
	vek32.Add_Inplace(a.power, t2)

	bandSize := m / visu.NumBands
	for b := range bands {
		mean := vek32.Mean(a.power[b*bandSize : (b+1)*bandSize])
		db := 10 * math.Log10(float64(mean)+1e-12)
		norm := (db - minDecibels) / (maxDecibels - minDecibels)
		if norm < 0 {
			norm = 0
		} else if norm > 1 {
			norm = 1
		}
		bands[b] = float32(norm)
	}
	return bands
}
