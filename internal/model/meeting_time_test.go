package model

import (
	"errors"
	"testing"
	"time"
)

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return c
}

func mustMeeting(t *testing.T, day time.Weekday, start, end string) MeetingTime {
	t.Helper()
	m, err := NewMeetingTime(day, mustClock(t, start), mustClock(t, end))
	if err != nil {
		t.Fatalf("NewMeetingTime: %v", err)
	}
	return m
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want Clock
	}{
		{"9:00am", 9 * 60},
		{"12:15PM", 12*60 + 15},
		{"12:00am", 0},
		{"4pm", 16 * 60},
		{"15:04", 15*60 + 4},
		{" 10:30am ", 10*60 + 30},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "noon", "13:00pm", "9:5am", "25:00"} {
		if _, err := ParseClock(bad); !errors.Is(err, ErrInvalidMeetingTime) {
			t.Errorf("ParseClock(%q) error = %v, want ErrInvalidMeetingTime", bad, err)
		}
	}
}

func TestClock_String(t *testing.T) {
	if got := Clock(16 * 60).String(); got != "4:00pm" {
		t.Errorf("got %q", got)
	}
	if got := Clock(0).String(); got != "12:00am" {
		t.Errorf("got %q", got)
	}
	if got := Clock(8*60 + 5).String(); got != "8:05am" {
		t.Errorf("got %q", got)
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("MTuWThF")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	if len(days) != len(want) {
		t.Fatalf("got %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("day %d = %v, want %v", i, days[i], want[i])
		}
	}
	if _, err := ParseDays("MX"); err == nil {
		t.Error("expected error for unknown day letter")
	}
}

func TestNewMeetingTime_RejectsNonPositiveLength(t *testing.T) {
	if _, err := NewMeetingTime(time.Monday, 600, 600); !errors.Is(err, ErrInvalidMeetingTime) {
		t.Errorf("start == end: got %v", err)
	}
	if _, err := NewMeetingTime(time.Monday, 610, 600); !errors.Is(err, ErrInvalidMeetingTime) {
		t.Errorf("start > end: got %v", err)
	}
}

func TestMeetingTime_Equal(t *testing.T) {
	a := mustMeeting(t, time.Monday, "9:00am", "9:50am")
	b := mustMeeting(t, time.Monday, "9:00am", "9:50am")
	c := mustMeeting(t, time.Wednesday, "9:00am", "9:50am")
	if !a.Equal(b) || a != b {
		t.Error("identical slots must be equal")
	}
	if a.Equal(c) {
		t.Error("different days must not be equal")
	}
	if a.Equal("M 9:00am-9:50am") || a.Equal(nil) || a.Equal(42) {
		t.Error("non meeting-time values must be unequal")
	}
	set := map[MeetingTime]struct{}{a: {}, b: {}, c: {}}
	if len(set) != 2 {
		t.Errorf("dedup by map key: got %d entries, want 2", len(set))
	}
}

func TestMeetingTime_Overlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b MeetingTime
		want bool
	}{
		{"partial", mustMeeting(t, time.Monday, "9:00am", "9:50am"), mustMeeting(t, time.Monday, "9:30am", "10:20am"), true},
		{"contained", mustMeeting(t, time.Monday, "9:00am", "11:00am"), mustMeeting(t, time.Monday, "9:30am", "10:00am"), true},
		{"touching", mustMeeting(t, time.Monday, "9:00am", "10:00am"), mustMeeting(t, time.Monday, "10:00am", "10:50am"), false},
		{"disjoint", mustMeeting(t, time.Monday, "9:00am", "9:50am"), mustMeeting(t, time.Monday, "1:00pm", "1:50pm"), false},
		{"other day", mustMeeting(t, time.Monday, "9:00am", "9:50am"), mustMeeting(t, time.Tuesday, "9:00am", "9:50am"), false},
		{"identical", mustMeeting(t, time.Friday, "2:00pm", "3:15pm"), mustMeeting(t, time.Friday, "2:00pm", "3:15pm"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Errorf("overlap must be symmetric: b.Overlaps(a) = %v", got)
			}
		})
	}
}

func TestMeetingTime_OverlapsExhaustiveSymmetry(t *testing.T) {
	// every pair of half-hour slots between 8am and noon
	var slots []MeetingTime
	for start := Clock(8 * 60); start < 12*60; start += 30 {
		for end := start + 30; end <= 12*60; end += 30 {
			slots = append(slots, MeetingTime{Day: time.Thursday, Start: start, End: end})
		}
	}
	for _, a := range slots {
		for _, b := range slots {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Fatalf("asymmetric overlap for %s and %s", a, b)
			}
			if (a.End <= b.Start || b.End <= a.Start) && a.Overlaps(b) {
				t.Fatalf("%s and %s are disjoint but reported overlapping", a, b)
			}
		}
	}
}

func TestMeetingTime_JSONRoundTrip(t *testing.T) {
	m := mustMeeting(t, time.Thursday, "3:30pm", "4:45pm")
	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"day":"Th","start":"3:30pm","end":"4:45pm"}` {
		t.Errorf("unexpected json %s", b)
	}
	var back MeetingTime
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != m {
		t.Errorf("got %v, want %v", back, m)
	}
}
