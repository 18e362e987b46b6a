package scheduling

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime is returned when a clock string cannot be parsed
var ErrMalformedTime = errors.New("malformed time")

// ErrMalformedDate is returned when a calendar date is not YYYY-MM-DD
var ErrMalformedDate = errors.New("malformed date, use YYYY-MM-DD")

// IST is the single timezone the hospital operates in.
// India has no daylight saving, so a fixed offset is exact.
var IST = time.FixedZone("IST", 5*60*60+30*60)

const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])?$`)

// ParseClock converts "10:00 AM", "06:30 pm" or "13:45" into minutes since midnight.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	if suffix := strings.ToUpper(m[3]); suffix != "" {
		if hh < 1 || hh > 12 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
		if suffix == "PM" && hh < 12 {
			hh += 12
		}
		if suffix == "AM" && hh == 12 {
			hh = 0
		}
	} else if hh > 23 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	return hh*60 + mm, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock parses any accepted clock string and returns its "HH:MM" form.
func NormalizeClock(s string) (string, error) {
	mins, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(mins), nil
}

// ClockAt returns the IST time-of-day of t as "HH:MM".
func ClockAt(t time.Time) string {
	return t.In(IST).Format("15:04")
}

// DateOf returns the IST calendar day of t as YYYY-MM-DD.
func DateOf(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day. The result is midnight UTC,
// which is how calendar days are stored.
func ParseDate(s string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return day, nil
}

// DayWindow returns the half-open [start, end) range covering one stored calendar day.
func DayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
