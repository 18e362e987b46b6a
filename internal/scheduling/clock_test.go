package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"10:00 AM", 600},
		{"10:00AM", 600},
		{"06:00 PM", 18 * 60},
		{"6:30 pm", 18*60 + 30},
		{"12:00 PM", 12 * 60},
		{"12:15 AM", 15},
		{"13:00", 13 * 60},
		{"00:00", 0},
		{" 09:45 ", 9*60 + 45},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseClockMalformed(t *testing.T) {
	for _, in := range []string{"", "10", "ten o'clock", "25:00", "10:75", "13:00 PM", "0:30 AM", "10:00 XM"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseClock(in); !errors.Is(err, ErrMalformedTime) {
				t.Fatalf("ParseClock(%q) error = %v, want ErrMalformedTime", in, err)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(9*60 + 5); got != "09:05" {
		t.Fatalf("expected 09:05, got %s", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}

func TestClockAtUsesIST(t *testing.T) {
	// 05:37 UTC is 11:07 IST.
	moment := time.Date(2025, 7, 7, 5, 37, 0, 0, time.UTC)
	if got := ClockAt(moment); got != "11:07" {
		t.Fatalf("expected 11:07, got %s", got)
	}
}

func TestDateOfRollsOverAtISTMidnight(t *testing.T) {
	// 19:00 UTC on the 7th is already 00:30 on the 8th in IST.
	moment := time.Date(2025, 7, 7, 19, 0, 0, 0, time.UTC)
	if got := DateOf(moment); got != "2025-07-08" {
		t.Fatalf("expected 2025-07-08, got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2025-07-07")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	start, end := DayWindow(day)
	if !start.Equal(day) || end.Sub(start) != 24*time.Hour {
		t.Fatalf("unexpected window %s - %s", start, end)
	}

	if _, err := ParseDate("07/07/2025"); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate, got %v", err)
	}
}
