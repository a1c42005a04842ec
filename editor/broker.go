package editor

import (
	"sync"
	"time"

	"visu"
)

type (
	// Broker is the centralized message hub of the editor. It connects the
	// model, the player and the analyzer, each running in its own goroutine,
	// with one channel per recipient. It also owns a sync.Pool of
	// *visu.AudioBuffers so the player can pass audio chunks to the analyzer
	// and the model without allocating on every block.
	//
	// For closing goroutines there are two channels per goroutine: CloseXXX
	// has a capacity of 1, so requesting a close never blocks; if the channel
	// is already full the goroutine is already closing and dropping the
	// request is fine. FinishedXXX is never sent to, only closed, so waiting
	// for a goroutine is "<-FinishedXXX", combined with a timeout when
	// deadlocks would be worse than leaking:
	//
	//	select {
	//	case <-FinishedXXX:
	//	case <-time.After(3 * time.Second):
	//	}
	Broker struct {
		ToModel    chan MsgToModel
		ToPlayer   chan MsgToPlayer
		ToAnalyzer chan MsgToAnalyzer

		CloseAnalyzer    chan struct{}
		FinishedAnalyzer chan struct{}

		bufferPool sync.Pool
	}

	// MsgToModel is a message to the model. The position tick is sent every
	// audio block while playing, so it is not boxed; everything infrequent
	// travels in Data. Boxing pointer types into any does not allocate.
	MsgToModel struct {
		HasPosition bool
		Position    float64 // playback time in seconds
		Playing     bool

		Data any // *visu.AudioBuffer for the scope, Alert, func()
	}

	// MsgToPlayer carries the playback controls. A nil Clip field means the
	// clip is unchanged.
	MsgToPlayer struct {
		HasPlaying bool
		Playing    bool

		HasSeek bool
		Seek    float64

		Clip *visu.Clip

		Data any
	}

	// MsgToAnalyzer carries audio to the analysis feed. Reset empties the
	// analysis window, used on seeks so stale spectra do not bleed across a
	// jump. Data can be a *visu.AudioBuffer or a func() to run in the
	// analyzer goroutine.
	MsgToAnalyzer struct {
		Reset      bool
		SampleRate int     // 0 = unchanged
		Time       float64 // stream time of the first sample in Data
		Data       any
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToModel:          make(chan MsgToModel, 1024),
		ToPlayer:         make(chan MsgToPlayer, 1024),
		ToAnalyzer:       make(chan MsgToAnalyzer, 1024),
		CloseAnalyzer:    make(chan struct{}, 1),
		FinishedAnalyzer: make(chan struct{}),
		bufferPool:       sync.Pool{New: func() any { return &visu.AudioBuffer{} }},
	}
}

// GetAudioBuffer returns an empty audio buffer from the pool. Return it with
// PutAudioBuffer when done.
func (b *Broker) GetAudioBuffer() *visu.AudioBuffer {
	return b.bufferPool.Get().(*visu.AudioBuffer)
}

// PutAudioBuffer returns a buffer to the pool, resetting its length but
// keeping the capacity.
func (b *Broker) PutAudioBuffer(buf *visu.AudioBuffer) {
	if len(*buf) > 0 {
		*buf = (*buf)[:0]
	}
	b.bufferPool.Put(buf)
}

// TrySend sends a value to a channel if it is not full. It is guaranteed to
// be non-blocking. Returns true if the value was sent.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received or the timeout t passes.
// ok is false on timeout or when the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
