package editor_test

import (
	"bytes"
	"io"
	"math"
	"testing"

	"visu"
	"visu/editor"
)

type myWriteCloser struct {
	*bytes.Buffer
}

func (mwc *myWriteCloser) Close() error {
	// Noop
	return nil
}

func newModel() *editor.Model {
	return editor.NewModel(editor.NewBroker(), nil, "")
}

func tick(m *editor.Model, t float64) {
	m.ProcessMsg(editor.MsgToModel{HasPosition: true, Position: t, Playing: true})
}

func TestAddSegmentKeepsSorted(t *testing.T) {
	m := newModel()
	segs := m.Segments()
	if err := segs.Add(5, 7, ""); err != nil {
		t.Fatal(err)
	}
	if err := segs.Add(0, 2, ""); err != nil {
		t.Fatal(err)
	}
	if err := segs.Add(2, 5, ""); err != nil {
		t.Fatal(err)
	}
	starts := []float64{0, 2, 5}
	for i, want := range starts {
		seg, ok := segs.Segment(i)
		if !ok || seg.StartTime != want {
			t.Errorf("segment %d starts at %v, expected %v", i, seg.StartTime, want)
		}
	}
	// the last added segment stays selected through the re-sort
	if sel := segs.SelectedIndex(); sel != 1 {
		t.Errorf("selected index %d, expected 1", sel)
	}
}

func TestAddSegmentValidation(t *testing.T) {
	m := newModel()
	segs := m.Segments()
	tests := []struct {
		name       string
		start, end float64
	}{
		{"inverted", 3, 1},
		{"zero length", 2, 2},
		{"negative start", -1, 2},
		{"nan", math.NaN(), 2},
		{"inf", 0, math.Inf(1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := segs.Add(test.start, test.end, "")
			if err == nil {
				t.Fatalf("Add(%v, %v) succeeded, expected validation error", test.start, test.end)
			}
			if _, ok := err.(visu.ValidationError); !ok {
				t.Errorf("error is %T, expected visu.ValidationError", err)
			}
			if segs.Count() != 0 {
				t.Error("failed Add mutated the segment list")
			}
		})
	}
}

func TestDeleteSegment(t *testing.T) {
	m := newModel()
	segs := m.Segments()
	segs.Add(0, 1, "")
	segs.Add(1, 2, "")
	segs.Select(0)
	m.Segments().Delete().Do()
	if segs.Count() != 1 {
		t.Fatalf("count = %d, expected 1", segs.Count())
	}
	seg, _ := segs.Segment(0)
	if seg.StartTime != 1 {
		t.Errorf("remaining segment starts at %v, expected 1", seg.StartTime)
	}
}

func TestUndoRedo(t *testing.T) {
	m := newModel()
	segs := m.Segments()
	segs.Add(0, 1, "")
	segs.Add(1, 2, "")
	m.Undo().Do()
	if segs.Count() != 1 {
		t.Fatalf("after undo: count = %d, expected 1", segs.Count())
	}
	m.Redo().Do()
	if segs.Count() != 2 {
		t.Fatalf("after redo: count = %d, expected 2", segs.Count())
	}
	m.Undo().Do()
	m.Undo().Do()
	if segs.Count() != 0 {
		t.Fatalf("after second undo: count = %d, expected 0", segs.Count())
	}
	if m.Undo().Enabled() {
		t.Error("undo enabled on empty undo stack")
	}
}

func TestCodeEditsCoalesce(t *testing.T) {
	m := newModel()
	segs := m.Segments()
	segs.Add(0, 1, "")
	code := segs.Code()
	for _, v := range []string{"o", "os", "osc", "osc(", "osc()"} {
		code.SetValue(v)
	}
	// one undo step for the whole typing burst, one for the add
	m.Undo().Do()
	if got := segs.Code().Value(); got != "" {
		t.Errorf("after undo: code %q, expected empty", got)
	}
	m.Undo().Do()
	if segs.Count() != 0 {
		t.Errorf("after second undo: count = %d, expected 0", segs.Count())
	}
}

func TestEvaluateOnTick(t *testing.T) {
	m := newModel()
	m.Segments().Add(1, 2, "solid(1, 0, 0).out(o0)")
	tick(m, 1.5)
	f := m.Graph().Frame(0)
	if f.Pix[0] != 1 {
		t.Errorf("red = %v after entering the segment, expected 1", f.Pix[0])
	}
	if m.Segments().Active() != 0 {
		t.Errorf("active = %d, expected 0", m.Segments().Active())
	}
	// leaving into a gap retains the visual and deactivates the segment
	tick(m, 2.5)
	if m.Segments().Active() != -1 {
		t.Errorf("active = %d in a gap, expected -1", m.Segments().Active())
	}
	if f := m.Graph().Frame(0); f.Pix[0] != 1 {
		t.Errorf("red = %v in a gap, expected the frame to persist", f.Pix[0])
	}
}

func TestExecutionErrorBecomesAlert(t *testing.T) {
	m := newModel()
	m.Segments().Add(0, 1, "wobble(1).out()")
	tick(m, 0.5)
	found := false
	m.Alerts().Iterate(func(a editor.Alert) bool {
		if a.Priority == editor.Error {
			found = true
		}
		return true
	})
	if !found {
		t.Error("no error alert after executing broken segment code")
	}
	// the transition still happened; playback is not stuck
	if m.Segments().Active() != 0 {
		t.Errorf("active = %d, expected 0", m.Segments().Active())
	}
}

func TestDragGestureIsOneUndoStep(t *testing.T) {
	m := newModel()
	m.Playback().SetClip(testClip(10), "test.wav")
	segs := m.Segments()
	segs.Add(2, 4, "")
	segs.BeginDragBody(0)
	for px := 0.0; px <= 100; px += 20 {
		segs.Drag(0, px, 1000)
	}
	segs.EndDrag()
	seg, _ := segs.Segment(0)
	if seg.StartTime == 2 {
		t.Fatal("drag did not move the segment")
	}
	if seg.EndTime-seg.StartTime != 2 {
		t.Errorf("duration changed to %v during a body drag", seg.EndTime-seg.StartTime)
	}
	m.Undo().Do()
	seg, _ = segs.Segment(0)
	if seg.StartTime != 2 {
		t.Errorf("after undo: start = %v, expected the whole gesture undone to 2", seg.StartTime)
	}
}

func TestDragSnapsToGrid(t *testing.T) {
	m := newModel()
	m.Playback().SetClip(testClip(10), "test.wav")
	segs := m.Segments()
	segs.Add(2, 4, "")
	segs.BeginDragStart(0)
	segs.Drag(123, 0, 1000) // 1.23 s into a 10 s track
	segs.EndDrag()
	seg, _ := segs.Segment(0)
	if r := math.Mod(seg.StartTime/visu.SnapGrid, 1); math.Abs(r) > 1e-9 && math.Abs(r-1) > 1e-9 {
		t.Errorf("start %v is not on the %v s grid", seg.StartTime, visu.SnapGrid)
	}
}

func TestProjectRoundTrip(t *testing.T) {
	m := newModel()
	m.Segments().Add(0, 1.5, "osc(10).out(o0)")
	m.Segments().Add(2, 3, "noise(4).out(o1)")
	m.View().ZoomIn().Do()
	var buf bytes.Buffer
	m.WriteProject(&myWriteCloser{&buf})

	m2 := newModel()
	m2.ReadProject(io.NopCloser(bytes.NewReader(buf.Bytes())))
	if m2.Segments().Count() != 2 {
		t.Fatalf("count = %d after round trip, expected 2", m2.Segments().Count())
	}
	for i := 0; i < 2; i++ {
		a, _ := m.Segments().Segment(i)
		b, _ := m2.Segments().Segment(i)
		if a != b {
			t.Errorf("segment %d: %+v != %+v", i, a, b)
		}
	}
	if got, want := m2.View().Viewport().Zoom, m.View().Viewport().Zoom; got != want {
		t.Errorf("zoom = %v after round trip, expected %v", got, want)
	}
}

func TestRecoveryRoundTrip(t *testing.T) {
	m := newModel()
	m.Segments().Add(0, 1, "gradient().out()")
	data := m.MarshalRecovery()
	if data == nil {
		t.Fatal("MarshalRecovery returned nil")
	}
	m2 := newModel()
	m2.UnmarshalRecovery(data)
	if m2.Segments().Count() != 1 {
		t.Fatalf("count = %d after recovery, expected 1", m2.Segments().Count())
	}
	a, _ := m.Segments().Segment(0)
	b, _ := m2.Segments().Segment(0)
	if a != b {
		t.Errorf("segment %+v != %+v", a, b)
	}
}

func TestViewportInvariant(t *testing.T) {
	m := newModel()
	v := m.View()
	for i := 0; i < 30; i++ {
		v.ZoomIn().Do()
	}
	if z := v.Viewport().Zoom; z > visu.ZoomMax {
		t.Errorf("zoom %v above maximum %v", z, visu.ZoomMax)
	}
	v.Pan(-1e6, 100) // pan way past the right edge
	vp := v.Viewport()
	if vp.Offset+1/vp.Zoom > 1+1e-9 {
		t.Errorf("offset %v + 1/zoom %v exceeds 1", vp.Offset, vp.Zoom)
	}
	for i := 0; i < 40; i++ {
		v.ZoomOut().Do()
	}
	vp = v.Viewport()
	if vp.Zoom < visu.ZoomMin || vp.Offset+1/vp.Zoom > 1+1e-9 {
		t.Errorf("zooming out broke the viewport: %+v", vp)
	}
}

func TestAmplitudeRange(t *testing.T) {
	m := newModel()
	amp := m.View().Amplitude()
	amp.SetValue(100)
	if got := amp.Value(); got != visu.AmplitudeMax {
		t.Errorf("amplitude = %v, expected clamp to %v", got, visu.AmplitudeMax)
	}
	amp.SetValue(0)
	if got := amp.Value(); got != visu.AmplitudeMin {
		t.Errorf("amplitude = %v, expected clamp to %v", got, visu.AmplitudeMin)
	}
}

// FuzzModel drives the model with a random operation sequence and checks that
// the invariants hold after every step: the viewport stays within bounds and
// the selection and active indices stay within the segment list.
func FuzzModel(f *testing.F) {
	f.Add([]byte{0, 200, 10, 3, 4, 0, 7, 0, 11, 128, 2, 0})
	f.Fuzz(func(t *testing.T, data []byte) {
		m := newModel()
		m.Playback().SetClip(testClip(10), "test.wav")
		reader := bytes.NewReader(data)
		for {
			op, err := reader.ReadByte()
			if err != nil {
				break
			}
			arg, _ := reader.ReadByte()
			v := float64(arg) / 255
			switch op % 12 {
			case 0:
				m.Segments().Add(v*9, v*9+0.5, "osc(10).out(o0)")
			case 1:
				m.Segments().Select(int(arg)%4 - 1)
			case 2:
				m.Segments().Delete().Do()
			case 3:
				m.Segments().Code().SetValue("solid(1, 0, 0).out(o0)")
			case 4:
				m.View().ZoomIn().Do()
			case 5:
				m.View().ZoomOut().Do()
			case 6:
				m.View().Pan(float64(int(arg)-128), 100)
			case 7:
				m.Undo().Do()
			case 8:
				m.Redo().Do()
			case 9:
				m.Playback().Seek(v * 12)
			case 10:
				tick(m, v*12)
			case 11:
				m.Segments().BeginDragBody(int(arg) % 4)
				m.Segments().Drag(0, float64(int(arg)-128), 1000)
				m.Segments().EndDrag()
			}
			vp := m.View().Viewport()
			if vp.Zoom < visu.ZoomMin || vp.Zoom > visu.ZoomMax ||
				vp.Offset < 0 || vp.Offset+1/vp.Zoom > 1+1e-9 {
				t.Fatalf("viewport invariant violated: %+v", vp)
			}
			if sel := m.Segments().SelectedIndex(); sel < -1 || sel >= m.Segments().Count() {
				t.Fatalf("selected index %d out of range (count %d)", sel, m.Segments().Count())
			}
			if act := m.Segments().Active(); act < -1 || act >= m.Segments().Count() {
				t.Fatalf("active index %d out of range (count %d)", act, m.Segments().Count())
			}
		}
	})
}

// testClip makes a silent stereo clip of the given length in seconds.
func testClip(seconds float64) visu.Clip {
	const rate = 44100
	return visu.Clip{
		Data:       make(visu.AudioBuffer, int(seconds*rate)),
		SampleRate: rate,
	}
}
