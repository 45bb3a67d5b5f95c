package report

import (
	"fmt"
	"time"

	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/parse"
)

// HourBucket is one slot of the occupancy histogram.
type HourBucket struct {
	Hour  int    `json:"hour"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PeakHoursReport is the 24-slot histogram for a single day.
type PeakHoursReport struct {
	Date  string       `json:"date"`
	Hours []HourBucket `json:"hours"`
	// Peak is the earliest busiest hour, nil when nobody stayed that day.
	Peak *HourBucket `json:"peak,omitempty"`
}

// PeakHours credits every hour a guest spent in a room on date. A stay covers
// the date when it arrived on or before it and either has no departure day
// or departs on or after it. On the arrival day counting starts at the
// arrival hour, on the departure day it stops at the departure hour, both
// inclusive.
func PeakHours(buildings []model.Building, date string) (PeakHoursReport, error) {
	selected, err := parse.Day(date)
	if err != nil {
		return PeakHoursReport{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var counts [24]int
	eachLog(buildings, func(_ *model.Building, _ *model.Room, l *model.StayLog) {
		from, to, ok := hoursCovered(l, selected)
		if !ok {
			return
		}
		for h := from; h <= to; h++ {
			counts[h]++
		}
	})

	report := PeakHoursReport{
		Date:  selected.Format(parse.DayLayout),
		Hours: make([]HourBucket, 24),
	}
	for h, n := range counts {
		report.Hours[h] = HourBucket{Hour: h, Label: hourLabel(h), Count: n}
		if n > 0 && (report.Peak == nil || n > report.Peak.Count) {
			report.Peak = &report.Hours[h]
		}
	}
	return report, nil
}

func hoursCovered(l *model.StayLog, selected time.Time) (from, to int, ok bool) {
	arrived, err := parse.Day(l.Day)
	if err != nil || selected.Before(arrived) {
		return 0, 0, false
	}

	var departed time.Time
	hasOutDay := optional(l.OutDay) != ""
	if hasOutDay {
		departed, err = parse.Day(*l.OutDay)
		if err != nil || selected.After(departed) {
			return 0, 0, false
		}
	}

	from, to = 0, 23
	if parse.SameDay(selected, arrived) {
		c, err := parse.ParseClock(l.InTime)
		if err != nil {
			return 0, 0, false
		}
		from = c.Hour
	}
	if hasOutDay && parse.SameDay(selected, departed) {
		if c, err := parse.ParseClock(optional(l.OutTime)); err == nil {
			to = c.Hour
		}
	}
	return from, to, true
}

// hourLabel renders an hour the way the dashboard shows it, e.g. "9:00 AM".
func hourLabel(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("3:04 PM")
}
