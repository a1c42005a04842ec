package visu

import "math"

// Viewport is the single source of truth for mapping between track time and
// screen-space position. Waveform drawing, the timeline overlay,
// click-to-seek, drag-to-pan, wheel-to-zoom and segment-edge dragging must
// all go through the same viewport so they cannot drift apart visually.
//
// Zoom is the magnification of the track (1 = whole track visible), Offset
// the left edge of the visible slice as a fraction of the track, and
// Amplitude the vertical scaling of the waveform. After every mutation the
// invariant Offset + 1/Zoom <= 1 holds; out-of-range values are re-clamped,
// never rejected.
type Viewport struct {
	Zoom      float64 `yaml:"zoom" json:"zoom"`
	Offset    float64 `yaml:"offset" json:"offset"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

const (
	ZoomMin = 1.0
	ZoomMax = 20.0

	AmplitudeMin = 0.1
	AmplitudeMax = 5.0

	zoomStep = 1.2

	// SnapGrid is the time grid, in seconds, that segment drags snap to. It
	// is also the minimum segment length a drag can shrink a segment to.
	SnapGrid = 0.1
)

func NewViewport() Viewport {
	return Viewport{Zoom: 1, Offset: 0, Amplitude: 1}
}

// Clamp forces all three values into their valid ranges. It is applied after
// every mutation and when loading viewport state from a project file.
func (v *Viewport) Clamp() {
	v.Zoom = clampFloat(v.Zoom, ZoomMin, ZoomMax)
	v.Amplitude = clampFloat(v.Amplitude, AmplitudeMin, AmplitudeMax)
	// zooming out can push a previously valid offset over the bound, so the
	// offset is re-clamped on every change
	v.Offset = clampFloat(v.Offset, 0, 1-1/v.Zoom)
}

func (v *Viewport) ZoomIn() {
	v.Zoom *= zoomStep
	v.Clamp()
}

func (v *Viewport) ZoomOut() {
	v.Zoom /= zoomStep
	v.Clamp()
}

// Pan shifts the visible slice by a horizontal cursor movement of deltaPx
// pixels inside a container widthPx wide.
func (v *Viewport) Pan(deltaPx, widthPx float64) {
	if widthPx <= 0 {
		return
	}
	v.Offset -= deltaPx / widthPx / v.Zoom
	v.Clamp()
}

func (v *Viewport) Reset() {
	*v = NewViewport()
}

// SetAmplitude scales the waveform vertically, clamped to the valid range.
func (v *Viewport) SetAmplitude(value float64) {
	v.Amplitude = value
	v.Clamp()
}

// VisibleStart returns the track time at the left edge of the viewport.
func (v Viewport) VisibleStart(duration float64) float64 {
	return v.Offset * duration
}

// VisibleDuration returns the length of the visible time slice.
func (v Viewport) VisibleDuration(duration float64) float64 {
	return duration / v.Zoom
}

func (v Viewport) VisibleEnd(duration float64) float64 {
	return v.VisibleStart(duration) + v.VisibleDuration(duration)
}

// TimeToPixel maps a track time to a horizontal pixel position inside a
// container widthPx wide. Times outside the visible slice map outside
// [0,widthPx); the caller decides whether to cull.
func (v Viewport) TimeToPixel(t, duration, widthPx float64) float64 {
	vd := v.VisibleDuration(duration)
	if vd == 0 {
		return 0
	}
	return (t - v.VisibleStart(duration)) / vd * widthPx
}

// PixelToTime is the inverse of TimeToPixel.
func (v Viewport) PixelToTime(px, duration, widthPx float64) float64 {
	if widthPx == 0 {
		return v.VisibleStart(duration)
	}
	return v.VisibleStart(duration) + px/widthPx*v.VisibleDuration(duration)
}

// SnapTime snaps a time to the nearest point on the drag grid.
func SnapTime(t float64) float64 {
	return math.Round(t/SnapGrid) * SnapGrid
}

// DragStart maps a cursor position to a new start time for the segment,
// snapped to the grid and clamped so the segment keeps at least SnapGrid of
// length and does not start before the track.
func (v Viewport) DragStart(seg Segment, px, duration, widthPx float64) float64 {
	t := SnapTime(v.PixelToTime(px, duration, widthPx))
	return clampFloat(t, 0, seg.EndTime-SnapGrid)
}

// DragEnd maps a cursor position to a new end time for the segment, snapped
// and clamped into [start+SnapGrid, duration].
func (v Viewport) DragEnd(seg Segment, px, duration, widthPx float64) float64 {
	t := SnapTime(v.PixelToTime(px, duration, widthPx))
	return clampFloat(t, seg.StartTime+SnapGrid, duration)
}

// DragBody moves a whole segment by a cursor movement of deltaPx pixels,
// keeping its duration fixed and inside [0,duration]. origStart must be the
// start time captured when the gesture began, not re-read per move event, so
// rounding does not accumulate into drift over the gesture.
func (v Viewport) DragBody(origStart, segDuration, deltaPx, duration, widthPx float64) float64 {
	if widthPx <= 0 {
		return origStart
	}
	dt := deltaPx / widthPx * v.VisibleDuration(duration)
	t := SnapTime(origStart + dt)
	return clampFloat(t, 0, duration-segDuration)
}

func clampFloat(a, min, max float64) float64 {
	if a < min {
		return min
	}
	if a > max {
		return max
	}
	return a
}
