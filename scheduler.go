package visu

import "fmt"

type (
	// Executor runs one code string against the long-lived rendering context.
	// The context is never reset between calls: code executed for one segment
	// may read and build on outputs produced by earlier segments. Execute
	// returns an error when the code fails to compile or run; the rendering
	// context must then be left as it was, so the last successfully rendered
	// state stays visible.
	Executor interface {
		Execute(code string) error
		DefaultVisual()
	}

	// Scheduler owns the segment list of an editing session and tracks which
	// segment is active for the current playback time. It has no internal
	// clock: Evaluate is called with an externally supplied time, once per
	// tick, and seeks in either direction are allowed.
	Scheduler struct {
		segments SegmentList
		active   int  // index into segments, or -1 for none
		refire   bool // the active index is stale; re-run the transition logic
	}
)

func NewScheduler() *Scheduler {
	return &Scheduler{active: -1}
}

// Segments returns the segment list. The caller must not mutate the returned
// slice; use the scheduler operations so the active index stays consistent.
func (s *Scheduler) Segments() SegmentList { return s.segments }

func (s *Scheduler) Len() int { return len(s.segments) }

// Active returns the index of the currently active segment, or -1 when no
// segment is active.
func (s *Scheduler) Active() int { return s.active }

// Segment returns the segment at index, or false if the index is out of
// range.
func (s *Scheduler) Segment(index int) (Segment, bool) {
	if index < 0 || index >= len(s.segments) {
		return Segment{}, false
	}
	return s.segments[index], true
}

// Add validates and appends a new segment. The list is not re-sorted; call
// Sort explicitly when the edit is complete.
func (s *Scheduler) Add(start, end float64, code string) error {
	seg := Segment{StartTime: start, EndTime: end, Code: code}
	if err := seg.Validate(); err != nil {
		return err
	}
	s.segments = append(s.segments, seg)
	return nil
}

// Update validates and replaces the segment at index in place. The list is
// not re-sorted, so an in-progress edit does not jump position under the
// editor's cursor.
func (s *Scheduler) Update(index int, start, end float64, code string) error {
	if index < 0 || index >= len(s.segments) {
		return ValidationError(fmt.Sprintf("segment index %d out of range", index))
	}
	seg := Segment{StartTime: start, EndTime: end, Code: code}
	if err := seg.Validate(); err != nil {
		return err
	}
	s.segments[index] = seg
	return nil
}

// Delete removes the segment at index. If the removed segment was active, the
// active state resets to none without any exit callback; the exit is
// implicit, and the next Evaluate re-runs the transition logic so a segment
// that was shadowed by the deleted one takes over. An active index above the
// removed one is shifted down so it keeps pointing at the same segment.
func (s *Scheduler) Delete(index int) error {
	if index < 0 || index >= len(s.segments) {
		return ValidationError(fmt.Sprintf("segment index %d out of range", index))
	}
	s.segments = append(s.segments[:index], s.segments[index+1:]...)
	switch {
	case s.active == index:
		s.active = -1
		s.refire = true
	case s.active > index:
		s.active--
	}
	return nil
}

// Sort orders the segments ascending by StartTime, stable for equal starts.
// The active index is remapped so it follows the segment it pointed to.
func (s *Scheduler) Sort() {
	perm := make([]int, len(s.segments))
	for i := range perm {
		perm[i] = i
	}
	// stable insertion sort of the permutation, so we know where each
	// element ended up and can remap the active index
	for i := 1; i < len(perm); i++ {
		for j := i; j > 0 && s.segments[perm[j]].StartTime < s.segments[perm[j-1]].StartTime; j-- {
			perm[j], perm[j-1] = perm[j-1], perm[j]
		}
	}
	sorted := make(SegmentList, len(s.segments))
	active := s.active
	for to, from := range perm {
		sorted[to] = s.segments[from]
		if from == s.active {
			active = to
		}
	}
	s.segments = sorted
	s.active = active
}

// FindActive returns the index of the segment that should be active at time
// t: the lowest-index segment in current list order whose range contains t,
// or -1 when none does.
func (s *Scheduler) FindActive(t float64) int {
	return s.segments.Active(t)
}

// Evaluate recomputes the active segment for time t and, when it changed,
// fires the executor:
//
//   - entering a segment executes its code, without clearing the rendering
//     context first;
//   - leaving all segments while the list is empty invokes the default
//     visual;
//   - falling into a gap between segments does nothing, so feedback-driven
//     visuals persist through silent gaps instead of resetting.
//
// The stored active index is updated regardless of execution outcome, which
// makes repeated evaluation at the same time idempotent: re-entrant seeks to
// the already-active segment never re-trigger execution. The returned error
// is the execution error, if any, for the caller to report; it never aborts
// the transition.
func (s *Scheduler) Evaluate(t float64, e Executor) (changed bool, err error) {
	next := s.FindActive(t)
	if next == s.active && !s.refire {
		return false, nil
	}
	s.refire = false
	if next >= 0 {
		err = e.Execute(s.segments[next].Code)
	} else if len(s.segments) == 0 {
		e.DefaultVisual()
	}
	s.active = next
	return true, err
}

// Import replaces the segment list with the given plain segments, as loaded
// from a project file. Beyond the shape of the data no validation is done.
// The active state resets to none so the next Evaluate re-fires against the
// new list.
func (s *Scheduler) Import(segments []Segment) {
	s.segments = SegmentList(segments).Copy()
	s.active = -1
	s.refire = true
}

// Export returns the segments as a plain slice for persisting into a project
// file. Together with Import the round trip is lossless.
func (s *Scheduler) Export() []Segment {
	return s.segments.Copy()
}
