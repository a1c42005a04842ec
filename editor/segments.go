package editor

import (
	"visu"
	"visu/script"
)

// SegmentsModel is the view of the model for manipulating the segment list.
// All edits go through the scheduler so its active-segment state stays
// consistent, and the project copy of the list is refreshed when the change
// completes.
type SegmentsModel Model

func (m *Model) Segments() *SegmentsModel { return (*SegmentsModel)(m) }

func (v *SegmentsModel) Count() int { return v.scheduler.Len() }

func (v *SegmentsModel) Segment(index int) (visu.Segment, bool) {
	return v.scheduler.Segment(index)
}

// Active returns the index of the segment active at the playback position,
// or -1.
func (v *SegmentsModel) Active() int { return v.scheduler.Active() }

// SelectedIndex returns the index of the selected segment, or -1 when
// nothing is selected.
func (v *SegmentsModel) SelectedIndex() int { return v.d.SegIndex }

func (v *SegmentsModel) Select(index int) {
	if index < -1 || index >= v.scheduler.Len() {
		return
	}
	v.d.SegIndex = index
}

// Add validates and inserts a new segment and selects it. The returned error
// is a visu.ValidationError; on error the model is unchanged.
func (v *SegmentsModel) Add(start, end float64, code string) error {
	m := (*Model)(v)
	defer m.change("AddSegment", SegmentsChange, MajorChange)()
	if err := v.scheduler.Add(start, end, code); err != nil {
		m.changeCancel = true
		return err
	}
	added, _ := v.scheduler.Segment(v.scheduler.Len() - 1)
	v.scheduler.Sort()
	v.d.SegIndex = v.findSegment(added)
	return nil
}

// Update validates and replaces the segment at index, then re-sorts the list
// and keeps the selection on the same segment.
func (v *SegmentsModel) Update(index int, start, end float64, code string) error {
	m := (*Model)(v)
	defer m.change("UpdateSegment", SegmentsChange, MajorChange)()
	if err := v.scheduler.Update(index, start, end, code); err != nil {
		m.changeCancel = true
		return err
	}
	updated, _ := v.scheduler.Segment(index)
	selected, hasSelection := v.scheduler.Segment(v.d.SegIndex)
	v.scheduler.Sort()
	if v.d.SegIndex == index {
		v.d.SegIndex = v.findSegment(updated)
	} else if hasSelection {
		v.d.SegIndex = v.findSegment(selected)
	}
	return nil
}

// findSegment locates a segment by value after a sort. Sorting is stable, so
// the first match is the right one for selection purposes.
func (v *SegmentsModel) findSegment(seg visu.Segment) int {
	for i := 0; i < v.scheduler.Len(); i++ {
		if s, _ := v.scheduler.Segment(i); s == seg {
			return i
		}
	}
	return -1
}

// Delete removes the selected segment.
func (v *SegmentsModel) Delete() Action { return MakeAction((*deleteSegment)(v)) }

type deleteSegment Model

func (d *deleteSegment) Enabled() bool {
	return d.d.SegIndex >= 0 && d.d.SegIndex < d.scheduler.Len()
}

func (d *deleteSegment) Do() {
	m := (*Model)(d)
	defer m.change("DeleteSegment", SegmentsChange, MajorChange)()
	if err := d.scheduler.Delete(d.d.SegIndex); err != nil {
		m.changeCancel = true
		return
	}
	if d.d.SegIndex >= d.scheduler.Len() {
		d.d.SegIndex = d.scheduler.Len() - 1
	}
}

// Code returns a String binding to the selected segment's code. Consecutive
// edits coalesce into one undo step; the code is checked when the active
// segment executes, not on every keystroke.
func (v *SegmentsModel) Code() String { return MakeString((*segmentCode)(v)) }

type segmentCode SegmentsModel

func (v *segmentCode) Value() string {
	seg, ok := v.scheduler.Segment(v.d.SegIndex)
	if !ok {
		return ""
	}
	return seg.Code
}

func (v *segmentCode) SetValue(value string) bool {
	seg, ok := v.scheduler.Segment(v.d.SegIndex)
	if !ok {
		return false
	}
	m := (*Model)(v)
	defer m.change("SegmentCodeString", SegmentsChange, MajorChange)()
	if err := v.scheduler.Update(v.d.SegIndex, seg.StartTime, seg.EndTime, value); err != nil {
		m.changeCancel = true
		return false
	}
	return true
}

func (v *segmentCode) Enabled() bool { return v.d.SegIndex >= 0 }

// CheckCode parses the selected segment's code without running it, so the UI
// can underline errors while typing. Returns nil when there is no selection.
func (v *SegmentsModel) CheckCode() error {
	seg, ok := v.scheduler.Segment(v.d.SegIndex)
	if !ok {
		return nil
	}
	_, err := script.Parse(seg.Code)
	return err
}

// Drag gestures. A gesture is one undo step: BeginDrag captures the segment,
// each Drag* call moves it without re-sorting so it does not jump under the
// cursor, and EndDrag re-sorts the list and closes the undo entry.

type (
	dragKind int

	dragState struct {
		kind      dragKind
		index     int
		origStart float64
		origEnd   float64
	}
)

const (
	dragNone dragKind = iota
	dragStartEdge
	dragEndEdge
	dragBody
)

func (v *SegmentsModel) BeginDragStart(index int) { v.beginDrag(index, dragStartEdge) }
func (v *SegmentsModel) BeginDragEnd(index int)   { v.beginDrag(index, dragEndEdge) }
func (v *SegmentsModel) BeginDragBody(index int)  { v.beginDrag(index, dragBody) }

func (v *SegmentsModel) beginDrag(index int, kind dragKind) {
	if _, ok := v.scheduler.Segment(index); !ok {
		return
	}
	seg, _ := v.scheduler.Segment(index)
	v.drag = dragState{kind: kind, index: index, origStart: seg.StartTime, origEnd: seg.EndTime}
	v.d.SegIndex = index
}

// Drag moves the dragged edge or body to the cursor. px is the cursor
// position for edge drags; deltaPx the total movement since BeginDrag for
// body drags. widthPx is the width of the timeline widget.
func (v *SegmentsModel) Drag(px, deltaPx, widthPx float64) {
	if v.drag.kind == dragNone {
		return
	}
	m := (*Model)(v)
	seg, ok := v.scheduler.Segment(v.drag.index)
	if !ok {
		v.drag.kind = dragNone
		return
	}
	view := v.d.Project.WaveformView
	duration := v.d.Project.Audio.Duration
	start, end := seg.StartTime, seg.EndTime
	switch v.drag.kind {
	case dragStartEdge:
		start = view.DragStart(seg, px, duration, widthPx)
	case dragEndEdge:
		end = view.DragEnd(seg, px, duration, widthPx)
	case dragBody:
		segDur := v.drag.origEnd - v.drag.origStart
		start = view.DragBody(v.drag.origStart, segDur, deltaPx, duration, widthPx)
		end = start + segDur
	}
	defer m.change("DragSegment", SegmentsChange, MajorChange)()
	if err := v.scheduler.Update(v.drag.index, start, end, seg.Code); err != nil {
		m.changeCancel = true
	}
}

// EndDrag finishes the gesture: the list is re-sorted and the next change
// starts a fresh undo entry.
func (v *SegmentsModel) EndDrag() {
	if v.drag.kind == dragNone {
		return
	}
	m := (*Model)(v)
	func() {
		defer m.change("DragSegment", SegmentsChange, MajorChange)()
		seg, ok := v.scheduler.Segment(v.drag.index)
		if !ok {
			m.changeCancel = true
			return
		}
		v.scheduler.Sort()
		v.d.SegIndex = v.findSegment(seg)
	}()
	v.drag = dragState{}
	m.d.PrevUndoKind = ""
	m.d.UndoSkipCounter = 0
}
