package oto

import "math"

// FloatBufferToBytes converts a stereo sample buffer to interleaved 32-bit
// little-endian floats, the format the playback device is opened with.
// Returns the number of bytes written; buf must hold 8 bytes per frame.
func FloatBufferToBytes(buffer [][2]float32, buf []byte) int {
	n := 0
	for _, frame := range buffer {
		for ch := 0; ch < 2; ch++ {
			bits := math.Float32bits(frame[ch])
			buf[n] = byte(bits)
			buf[n+1] = byte(bits >> 8)
			buf[n+2] = byte(bits >> 16)
			buf[n+3] = byte(bits >> 24)
			n += 4
		}
	}
	return n
}
