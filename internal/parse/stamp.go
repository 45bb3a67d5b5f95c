package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the calendar-day format stay-logs are recorded in.
const DayLayout = "2006-01-02"

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// Day parses a YYYY-MM-DD string into midnight UTC of that day.
func Day(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: expected YYYY-MM-DD", raw)
	}
	return d, nil
}

// ParseClock parses "HH:MM" or "HH:MM:SS" (24-hour).
func ParseClock(raw string) (Clock, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Clock{}, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if h > 23 || minute > 59 || sec > 59 {
		return Clock{}, fmt.Errorf("invalid time %q: out of range", raw)
	}
	return Clock{Hour: h, Minute: minute, Second: sec}, nil
}

// Timestamp combines a day and a time of day into a single instant (UTC).
func Timestamp(day, clock string) (time.Time, error) {
	d, err := Day(day)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(c.Hour)*time.Hour +
		time.Duration(c.Minute)*time.Minute +
		time.Duration(c.Second)*time.Second), nil
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
