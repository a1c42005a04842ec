package visu

import (
	"fmt"
	"math"
	"sort"
)

type (
	// Segment pairs a half-open time range [StartTime,EndTime) with the code
	// that should run while the playhead is inside the range. Segments are
	// kept in a SegmentList ordered by StartTime; the list does not enforce
	// that segments are non-overlapping.
	Segment struct {
		StartTime float64 `yaml:"startTime" json:"startTime"`
		EndTime   float64 `yaml:"endTime" json:"endTime"`
		Code      string  `yaml:"code" json:"code"`
	}

	// SegmentList is the ordered collection of segments of one editing
	// session. The zero value is a valid empty list.
	SegmentList []Segment
)

// ValidationError indicates that a segment mutation was rejected before any
// state was changed.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Validate checks that the segment times are finite, non-negative and in
// order. The code string is not inspected; an empty or malformed program only
// surfaces when the segment is executed.
func (s Segment) Validate() error {
	if math.IsNaN(s.StartTime) || math.IsInf(s.StartTime, 0) ||
		math.IsNaN(s.EndTime) || math.IsInf(s.EndTime, 0) {
		return ValidationError("segment times must be finite")
	}
	if s.StartTime < 0 {
		return ValidationError(fmt.Sprintf("segment start %g is negative", s.StartTime))
	}
	if s.StartTime >= s.EndTime {
		return ValidationError(fmt.Sprintf("segment start %g is not before end %g", s.StartTime, s.EndTime))
	}
	return nil
}

// Contains reports whether time t falls inside the half-open range of the
// segment.
func (s Segment) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

func (s Segment) Duration() float64 { return s.EndTime - s.StartTime }

// Copy makes a deep copy of a SegmentList.
func (l SegmentList) Copy() SegmentList {
	ret := make(SegmentList, len(l))
	copy(ret, l)
	return ret
}

// Sort orders the list ascending by StartTime. The sort is stable: segments
// with equal start times keep their prior relative order, so list order stays
// a meaningful priority order for overlaps.
func (l SegmentList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].StartTime < l[j].StartTime
	})
}

// Active returns the index of the first segment in list order containing time
// t, or -1 if no segment does. Scanning in list order makes the list position
// the deliberate tie break for overlapping segments.
func (l SegmentList) Active(t float64) int {
	for i, s := range l {
		if s.Contains(t) {
			return i
		}
	}
	return -1
}
