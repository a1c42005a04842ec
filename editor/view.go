package editor

import "visu"

// ViewModel is the view of the model for the waveform viewport: zooming,
// panning and amplitude scaling, plus the time/pixel mapping every timeline
// widget draws through. Viewport changes are minor: they never create undo
// entries, matching how scrolling feels in any editor.
type ViewModel Model

func (m *Model) View() *ViewModel { return (*ViewModel)(m) }

func (v *ViewModel) Viewport() visu.Viewport { return v.d.Project.WaveformView }

// Duration returns the length of the loaded audio track in seconds.
func (v *ViewModel) Duration() float64 { return v.d.Project.Audio.Duration }

func (v *ViewModel) ZoomIn() Action  { return MakeAction((*zoomIn)(v)) }
func (v *ViewModel) ZoomOut() Action { return MakeAction((*zoomOut)(v)) }
func (v *ViewModel) Reset() Action   { return MakeAction((*resetView)(v)) }

type zoomIn ViewModel

func (v *zoomIn) Enabled() bool { return v.d.Project.WaveformView.Zoom < visu.ZoomMax }
func (v *zoomIn) Do() {
	defer (*Model)(v).change("ZoomIn", ViewChange, MinorChange)()
	v.d.Project.WaveformView.ZoomIn()
}

type zoomOut ViewModel

func (v *zoomOut) Enabled() bool { return v.d.Project.WaveformView.Zoom > visu.ZoomMin }
func (v *zoomOut) Do() {
	defer (*Model)(v).change("ZoomOut", ViewChange, MinorChange)()
	v.d.Project.WaveformView.ZoomOut()
}

type resetView ViewModel

func (v *resetView) Do() {
	defer (*Model)(v).change("ResetView", ViewChange, MinorChange)()
	v.d.Project.WaveformView.Reset()
}

// Pan shifts the visible slice by a cursor movement of deltaPx pixels in a
// widget widthPx wide.
func (v *ViewModel) Pan(deltaPx, widthPx float64) {
	defer (*Model)(v).change("Pan", ViewChange, MinorChange)()
	v.d.Project.WaveformView.Pan(deltaPx, widthPx)
}

// Amplitude returns a Float binding to the vertical waveform scale.
func (v *ViewModel) Amplitude() Float { return MakeFloat((*amplitude)(v)) }

type amplitude ViewModel

func (v *amplitude) Value() float64 { return v.d.Project.WaveformView.Amplitude }
func (v *amplitude) SetValue(value float64) bool {
	defer (*Model)(v).change("AmplitudeFloat", ViewChange, MinorChange)()
	v.d.Project.WaveformView.SetAmplitude(value)
	return true
}
func (v *amplitude) Range() FloatRange {
	return FloatRange{Min: visu.AmplitudeMin, Max: visu.AmplitudeMax}
}

// TimeToPixel maps a track time to a pixel position in a widget widthPx
// wide.
func (v *ViewModel) TimeToPixel(t, widthPx float64) float64 {
	return v.d.Project.WaveformView.TimeToPixel(t, v.Duration(), widthPx)
}

// PixelToTime is the inverse of TimeToPixel.
func (v *ViewModel) PixelToTime(px, widthPx float64) float64 {
	return v.d.Project.WaveformView.PixelToTime(px, v.Duration(), widthPx)
}
