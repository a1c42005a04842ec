package editor_test

import (
	"math"
	"testing"
	"time"

	"visu"
	"visu/editor"
)

const testSampleRate = 44100

// feed sends a stereo sine of the given frequency to the analyzer, sliced
// into blocks the way the player would send them.
func feed(broker *editor.Broker, freq float64, frames int) {
	pos := 0
	for pos < frames {
		n := 512
		if frames-pos < n {
			n = frames - pos
		}
		buf := broker.GetAudioBuffer()
		for i := 0; i < n; i++ {
			v := float32(0.5 * math.Sin(2*math.Pi*freq*float64(pos+i)/testSampleRate))
			*buf = append(*buf, [2]float32{v, v})
		}
		broker.ToAnalyzer <- editor.MsgToAnalyzer{
			Time: float64(pos) / testSampleRate,
			Data: buf,
		}
		pos += n
	}
}

func waitForSignal(t *testing.T, cell *visu.SignalCell) visu.Signal {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if sig := cell.Load(); sig.Bands != ([visu.NumBands]float32{}) {
			return sig
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no analysis snapshot published")
	return visu.Signal{}
}

func TestAnalyzerBands(t *testing.T) {
	broker := editor.NewBroker()
	cell := &visu.SignalCell{}
	go editor.NewAnalyzer(broker, cell).Run()
	defer func() {
		broker.CloseAnalyzer <- struct{}{}
		select {
		case <-broker.FinishedAnalyzer:
		case <-time.After(3 * time.Second):
			t.Error("analyzer did not close")
		}
	}()
	broker.ToAnalyzer <- editor.MsgToAnalyzer{Reset: true, SampleRate: testSampleRate}
	// a 1 kHz tone lands in the lowest of the four bands
	feed(broker, 1000, 4096)
	sig := waitForSignal(t, cell)
	for i, b := range sig.Bands {
		if b < 0 || b > 1 {
			t.Errorf("band %d = %v, expected [0,1]", i, b)
		}
	}
	if sig.Bands[0] <= sig.Bands[3] {
		t.Errorf("bands = %v: a 1 kHz tone should read higher in band 0 than band 3", sig.Bands)
	}
	if sig.Bands[0] < 0.1 {
		t.Errorf("band 0 = %v, expected audible energy", sig.Bands[0])
	}

	// a reset empties the window and publishes a zero snapshot
	broker.ToAnalyzer <- editor.MsgToAnalyzer{Reset: true}
	done := make(chan struct{})
	broker.ToAnalyzer <- editor.MsgToAnalyzer{Data: func() { close(done) }}
	<-done
	if sig := cell.Load(); sig.Bands != ([visu.NumBands]float32{}) {
		t.Errorf("bands = %v after reset, expected zeros", sig.Bands)
	}
}

func TestAnalyzerNeedsFullWindow(t *testing.T) {
	broker := editor.NewBroker()
	cell := &visu.SignalCell{}
	go editor.NewAnalyzer(broker, cell).Run()
	defer func() { broker.CloseAnalyzer <- struct{}{} }()
	broker.ToAnalyzer <- editor.MsgToAnalyzer{Reset: true, SampleRate: testSampleRate}
	feed(broker, 1000, 1024) // half a window
	done := make(chan struct{})
	broker.ToAnalyzer <- editor.MsgToAnalyzer{Data: func() { close(done) }}
	<-done
	if sig := cell.Load(); sig.Bands != ([visu.NumBands]float32{}) {
		t.Errorf("bands = %v before a full window, expected no snapshot", sig.Bands)
	}
}

func TestPlayerProcess(t *testing.T) {
	broker := editor.NewBroker()
	p := editor.NewPlayer(broker)
	clip := testClip(0.1) // 4410 frames of silence
	for i := range clip.Data {
		clip.Data[i] = [2]float32{0.5, -0.5}
	}
	broker.ToPlayer <- editor.MsgToPlayer{Clip: &clip}
	broker.ToPlayer <- editor.MsgToPlayer{HasPlaying: true, Playing: true}
	buf := make(visu.AudioBuffer, 512)
	p.Process(buf)
	if buf[0] != [2]float32{0.5, -0.5} {
		t.Errorf("buffer[0] = %v, expected clip audio", buf[0])
	}
	msg, ok := editor.TimeoutReceive(broker.ToModel, time.Second)
	if !ok || !msg.HasPosition {
		t.Fatal("no position tick after processing a block")
	}
	if want := 512.0 / 44100; math.Abs(msg.Position-want) > 1e-9 {
		t.Errorf("position = %v, expected %v", msg.Position, want)
	}
	// run the transport to the end of the clip; it must stop, not wrap
	for i := 0; i < 20; i++ {
		p.Process(buf)
	}
	var last editor.MsgToModel
	for {
		m, ok := editor.TimeoutReceive(broker.ToModel, 10*time.Millisecond)
		if !ok {
			break
		}
		if m.HasPosition {
			last = m
		}
	}
	if last.Playing {
		t.Error("player still playing past the end of the clip")
	}
	if math.Abs(last.Position-clip.Duration()) > 1e-6 {
		t.Errorf("final position = %v, expected clip duration %v", last.Position, clip.Duration())
	}
}

func TestPlayerSeek(t *testing.T) {
	broker := editor.NewBroker()
	p := editor.NewPlayer(broker)
	clip := testClip(1)
	broker.ToPlayer <- editor.MsgToPlayer{Clip: &clip}
	broker.ToPlayer <- editor.MsgToPlayer{HasSeek: true, Seek: 0.5}
	buf := make(visu.AudioBuffer, 64)
	p.Process(buf)
	msg, ok := editor.TimeoutReceive(broker.ToModel, time.Second)
	if !ok {
		t.Fatal("no position tick")
	}
	// stopped transport holds the seeked position
	if math.Abs(msg.Position-0.5) > 1e-6 {
		t.Errorf("position = %v after seek while stopped, expected 0.5", msg.Position)
	}
}
