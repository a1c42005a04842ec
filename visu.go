// Package visu contains the domain model of the visu editor: time-coded code
// segments scheduled against an audio track, the viewport mapping between
// track time and screen space, and the audio-derived reactive signal that
// segment code can read. The packages script and render implement the
// language the segments are written in and the persistent graph it mutates;
// package editor implements the mutable editing session on top of these
// types.
package visu

type (
	// AudioProcessor fills buffers with stereo audio. The playback device
	// pulls: Process is called from the audio thread whenever the device
	// needs more samples and must always fill the whole buffer, padding with
	// silence when there is nothing to play.
	AudioProcessor interface {
		Process(buffer AudioBuffer)
	}

	// AudioContext is the audio playback environment. Play starts pulling
	// audio from the processor and keeps doing so until the context is
	// closed.
	AudioContext interface {
		Play(processor AudioProcessor)
		Close() error
	}
)
