// Package audio decodes audio files into fully buffered clips. The editor
// never streams: seeks must be instant in both directions and the analyzer
// needs the whole track for the waveform overview, so the complete file is
// decoded up front. WAV and MP3 are supported; the clip keeps the sample rate
// of the file and the playback device is opened to match.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"visu"
)

// Load decodes the audio file at path into a clip, dispatching on the file
// extension.
func Load(path string) (visu.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return visu.Clip{}, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return DecodeWAV(f)
	case ".mp3":
		return DecodeMP3(f)
	}
	return visu.Clip{}, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
}

// DecodeWAV decodes a RIFF/WAVE stream into a clip. Mono files are duplicated
// to both channels; files with more than two channels keep the first two.
func DecodeWAV(r io.ReadSeeker) (visu.Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return visu.Clip{}, fmt.Errorf("not a valid WAV file")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return visu.Clip{}, fmt.Errorf("reading WAV header failed: %w", err)
	}
	format := decoder.Format()
	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 {
		return visu.Clip{}, fmt.Errorf("WAV file has unknown bit depth")
	}
	nchannels := format.NumChannels
	if nchannels < 1 {
		return visu.Clip{}, fmt.Errorf("WAV file has no channels")
	}
	buf := &goaudio.IntBuffer{
		Format:         format,
		Data:           make([]int, 8192*nchannels),
		SourceBitDepth: bitDepth,
	}
	scale := float32(1 / math.Pow(2, float64(bitDepth-1)))
	var data visu.AudioBuffer
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return visu.Clip{}, fmt.Errorf("decoding WAV data failed: %w", err)
		}
		if n == 0 {
			break
		}
		for i := 0; i+nchannels <= n; i += nchannels {
			left := float32(buf.Data[i]) * scale
			right := left
			if nchannels > 1 {
				right = float32(buf.Data[i+1]) * scale
			}
			data = append(data, [2]float32{left, right})
		}
		if n < len(buf.Data) {
			break
		}
	}
	if len(data) == 0 {
		return visu.Clip{}, fmt.Errorf("WAV file contains no audio")
	}
	return visu.Clip{Data: data, SampleRate: format.SampleRate}, nil
}

// DecodeMP3 decodes an MP3 stream into a clip. The decoder always outputs
// 16-bit little-endian stereo.
func DecodeMP3(r io.Reader) (visu.Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return visu.Clip{}, fmt.Errorf("reading MP3 header failed: %w", err)
	}
	var data visu.AudioBuffer
	if n := decoder.Length(); n > 0 {
		data = make(visu.AudioBuffer, 0, n/4)
	}
	var frame [2]int16
	for {
		err := binary.Read(decoder, binary.LittleEndian, &frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return visu.Clip{}, fmt.Errorf("decoding MP3 data failed: %w", err)
		}
		data = append(data, [2]float32{
			float32(frame[0]) / 32768,
			float32(frame[1]) / 32768,
		})
	}
	if len(data) == 0 {
		return visu.Clip{}, fmt.Errorf("MP3 file contains no audio")
	}
	return visu.Clip{Data: data, SampleRate: decoder.SampleRate()}, nil
}
