package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"visu"
)

// SaveWAV writes a clip to a 16-bit stereo WAV file at the clip's own sample
// rate.
func SaveWAV(path string, clip visu.Clip) error {
	if clip.SampleRate == 0 {
		return fmt.Errorf("clip has no sample rate")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, clip.SampleRate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: clip.SampleRate},
		Data:           make([]int, len(clip.Data)*2),
		SourceBitDepth: 16,
	}
	for i, frame := range clip.Data {
		buf.Data[2*i] = pcm16(frame[0])
		buf.Data[2*i+1] = pcm16(frame[1])
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing WAV data failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing WAV file failed: %w", err)
	}
	return nil
}

func pcm16(v float32) int {
	if v < -1 {
		return -32767
	}
	if v > 1 {
		return 32767
	}
	return int(v * 32767)
}
