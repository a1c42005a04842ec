package visu

type (
	// AudioBuffer is a buffer of stereo audio samples.
	AudioBuffer [][2]float32

	// Clip is a fully decoded audio track: the editor core never streams;
	// the decoding collaborator delivers the final sample buffer and a
	// duration before playback and analysis become meaningful.
	Clip struct {
		Data       AudioBuffer
		SampleRate int
	}
)

// Duration returns the length of the clip in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Data)) / float64(c.SampleRate)
}

// FrameAt returns the frame index for a playback time, clamped into the
// clip.
func (c Clip) FrameAt(t float64) int {
	f := int(t * float64(c.SampleRate))
	if f < 0 {
		return 0
	}
	if f > len(c.Data) {
		return len(c.Data)
	}
	return f
}

// TimeAt returns the playback time of a frame index.
func (c Clip) TimeAt(frame int) float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(frame) / float64(c.SampleRate)
}

// Mono returns the frame mixed down to a single channel.
func (c Clip) Mono(frame int) float32 {
	if frame < 0 || frame >= len(c.Data) {
		return 0
	}
	return (c.Data[frame][0] + c.Data[frame][1]) / 2
}
