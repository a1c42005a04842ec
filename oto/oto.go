// Package oto implements the audio playback environment on top of the oto
// library. The device pulls: oto calls into the reader from its own audio
// goroutine, which keeps the playback clock authoritative and the editor free
// of timing logic.
package oto

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"

	"visu"
)

type (
	Context struct {
		context    *oto.Context
		sampleRate int
		players    []*oto.Player
	}

	// pullReader adapts a processor to the io.Reader oto pulls from.
	pullReader struct {
		processor visu.AudioProcessor
		buffer    visu.AudioBuffer
	}
)

// NewContext opens the audio device at the given sample rate, in stereo
// 32-bit float. It blocks until the device is ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

// Play starts pulling audio from the processor until the context is closed.
func (c *Context) Play(processor visu.AudioProcessor) {
	player := c.context.NewPlayer(&pullReader{processor: processor})
	player.Play()
	c.players = append(c.players, player)
}

// Close stops and releases all players. The underlying oto context cannot be
// closed, only suspended; that is what we do.
func (c *Context) Close() error {
	var firstErr error
	for _, player := range c.players {
		if err := player.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("cannot close oto player: %w", err)
		}
	}
	c.players = nil
	if err := c.context.Suspend(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return firstErr
}

func (r *pullReader) Read(buf []byte) (int, error) {
	frames := len(buf) / 8 // 2 channels, 4 bytes per sample
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buffer) < frames {
		r.buffer = make(visu.AudioBuffer, frames)
	}
	r.buffer = r.buffer[:frames]
	for i := range r.buffer {
		r.buffer[i] = [2]float32{}
	}
	r.processor.Process(r.buffer)
	return FloatBufferToBytes(r.buffer, buf), nil
}

var _ io.Reader = (*pullReader)(nil)
