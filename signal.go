package visu

import "sync/atomic"

// NumBands is the number of frequency bands the analysis feed reduces the
// spectrum to, ordered low to high.
const NumBands = 4

type (
	// Signal is one snapshot of the audio-derived reactive signal: the band
	// magnitudes, each normalized into [0,1], and the playback time the
	// snapshot was taken at. Segment code reads the signal through its a.fft
	// binding; between refreshes it sees a stale snapshot, never an
	// interpolated value, and there is no history.
	Signal struct {
		Bands [NumBands]float32
		Time  float64
	}

	// SignalCell is the shared cell the analysis feed publishes snapshots
	// into. It is single-writer/multi-reader: each Store replaces the whole
	// snapshot atomically, so a reader can never observe a partially updated
	// set of bands. The zero value holds an all-zero signal.
	SignalCell struct {
		p atomic.Pointer[Signal]
	}
)

// Band returns the band at index i, or 0 for an out-of-range index, so
// script code indexing with a runtime value cannot panic the session.
func (s Signal) Band(i int) float32 {
	if i < 0 || i >= NumBands {
		return 0
	}
	return s.Bands[i]
}

func (c *SignalCell) Store(s Signal) {
	c.p.Store(&s)
}

func (c *SignalCell) Load() Signal {
	if p := c.p.Load(); p != nil {
		return *p
	}
	return Signal{}
}
