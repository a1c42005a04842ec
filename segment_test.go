package visu_test

import (
	"math"
	"testing"

	"visu"
)

func TestSegmentValidate(t *testing.T) {
	tests := []struct {
		name  string
		seg   visu.Segment
		valid bool
	}{
		{"normal", visu.Segment{StartTime: 0, EndTime: 1}, true},
		{"fractional", visu.Segment{StartTime: 0.5, EndTime: 0.6}, true},
		{"inverted", visu.Segment{StartTime: 2, EndTime: 1}, false},
		{"zero length", visu.Segment{StartTime: 1, EndTime: 1}, false},
		{"negative start", visu.Segment{StartTime: -0.1, EndTime: 1}, false},
		{"nan start", visu.Segment{StartTime: math.NaN(), EndTime: 1}, false},
		{"inf end", visu.Segment{StartTime: 0, EndTime: math.Inf(1)}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.seg.Validate()
			if test.valid && err != nil {
				t.Errorf("Validate() = %v, expected nil", err)
			}
			if !test.valid {
				if err == nil {
					t.Fatal("Validate() = nil, expected error")
				}
				if _, ok := err.(visu.ValidationError); !ok {
					t.Errorf("error is %T, expected visu.ValidationError", err)
				}
			}
		})
	}
}

func TestSegmentContains(t *testing.T) {
	seg := visu.Segment{StartTime: 1, EndTime: 2}
	if !seg.Contains(1) {
		t.Error("start time is inside the half-open range")
	}
	if seg.Contains(2) {
		t.Error("end time is outside the half-open range")
	}
	if seg.Contains(0.999) || seg.Contains(2.001) {
		t.Error("times outside the range report as contained")
	}
}

func TestSegmentListActive(t *testing.T) {
	l := visu.SegmentList{
		{StartTime: 0, EndTime: 5, Code: "a"},
		{StartTime: 2, EndTime: 4, Code: "b"},
		{StartTime: 6, EndTime: 7, Code: "c"},
	}
	tests := []struct {
		time float64
		want int
	}{
		{0, 0},
		{3, 0}, // overlap resolves to the lowest index
		{5.5, -1},
		{6, 2},
		{7, -1},
	}
	for _, test := range tests {
		if got := l.Active(test.time); got != test.want {
			t.Errorf("Active(%v) = %d, expected %d", test.time, got, test.want)
		}
	}
}

func TestSegmentListSortStable(t *testing.T) {
	l := visu.SegmentList{
		{StartTime: 3, EndTime: 4, Code: "late"},
		{StartTime: 1, EndTime: 5, Code: "first"},
		{StartTime: 1, EndTime: 2, Code: "second"},
	}
	l.Sort()
	want := []string{"first", "second", "late"}
	for i, code := range want {
		if l[i].Code != code {
			t.Fatalf("order %v, expected %v", l, want)
		}
	}
}
