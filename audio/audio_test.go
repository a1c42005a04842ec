package audio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"visu"
	"visu/audio"
)

// writeTestWAV writes a 16-bit stereo sine of the given length to a file.
func writeTestWAV(t *testing.T, path string, rate, frames int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		Data:           make([]int, frames*2),
		SourceBitDepth: 16,
	}
	for i := 0; i < frames; i++ {
		v := int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
		buf.Data[2*i] = v
		buf.Data[2*i+1] = -v
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wav")
	const rate, frames = 22050, 4410
	writeTestWAV(t, path, rate, frames)
	clip, err := audio.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if clip.SampleRate != rate {
		t.Errorf("sample rate = %d, expected %d", clip.SampleRate, rate)
	}
	if len(clip.Data) != frames {
		t.Errorf("frames = %d, expected %d", len(clip.Data), frames)
	}
	if math.Abs(clip.Duration()-0.2) > 1e-9 {
		t.Errorf("duration = %v, expected 0.2", clip.Duration())
	}
	// channels decode independently: the test signal is phase inverted
	peak := float32(0)
	for _, frame := range clip.Data {
		if math.Abs(float64(frame[0]+frame[1])) > 1e-4 {
			t.Fatalf("channels are not phase inverted: %v", frame)
		}
		if frame[0] > peak {
			peak = frame[0]
		}
	}
	if peak < 0.4 || peak > 0.6 {
		t.Errorf("peak = %v, expected around 0.5", peak)
	}
}

func TestSaveWAVRoundTrip(t *testing.T) {
	const rate = 44100
	clip := visu.Clip{Data: make(visu.AudioBuffer, 1000), SampleRate: rate}
	for i := range clip.Data {
		v := float32(0.25 * math.Sin(2*math.Pi*220*float64(i)/rate))
		clip.Data[i] = [2]float32{v, v / 2}
	}
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := audio.SaveWAV(path, clip); err != nil {
		t.Fatal(err)
	}
	got, err := audio.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.SampleRate != rate || len(got.Data) != len(clip.Data) {
		t.Fatalf("round trip gave %d frames at %d Hz, expected %d at %d", len(got.Data), got.SampleRate, len(clip.Data), rate)
	}
	for i := range clip.Data {
		for ch := 0; ch < 2; ch++ {
			if diff := math.Abs(float64(got.Data[i][ch] - clip.Data[i][ch])); diff > 1.0/32000 {
				t.Fatalf("frame %d channel %d: %v != %v", i, ch, got.Data[i][ch], clip.Data[i][ch])
			}
		}
	}
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ogg")
	if err := os.WriteFile(path, []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := audio.Load(path); err == nil {
		t.Error("loading an unsupported format succeeded")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := audio.Load(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
