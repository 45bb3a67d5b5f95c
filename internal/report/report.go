// Package report derives read-only views from a tenant's buildings: room
// availability, the hourly occupancy histogram, the arrival listing, arrival
// statistics and the spreadsheet export. Every function works on an
// already-loaded snapshot and never touches the store.
package report

import (
	"errors"
	"fmt"

	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/parse"
)

var (
	// ErrInvalidQuery marks a malformed report parameter.
	ErrInvalidQuery = errors.New("invalid report query")

	// ErrNoData is returned by Export when there is nothing to export.
	ErrNoData = errors.New("no data available to download")
)

// RoomAvailability is one room as shown on the dashboard.
type RoomAvailability struct {
	ID         string           `json:"id"`
	RoomNumber int              `json:"roomNumber"`
	RoomName   string           `json:"roomName"`
	Occupied   bool             `json:"occupied"`
	NextAction model.NextAction `json:"nextAction"`
}

// BuildingAvailability summarises the rooms of one building.
type BuildingAvailability struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	TotalRooms     int                `json:"totalRooms"`
	AvailableRooms int                `json:"availableRooms"`
	Rooms          []RoomAvailability `json:"rooms"`
}

// Availability classifies every room of every building.
func Availability(buildings []model.Building) []BuildingAvailability {
	out := make([]BuildingAvailability, 0, len(buildings))
	for _, b := range buildings {
		rooms := make([]RoomAvailability, 0, len(b.Rooms))
		for _, r := range b.Rooms {
			rooms = append(rooms, RoomAvailability{
				ID:         r.ID,
				RoomNumber: r.RoomNumber,
				RoomName:   r.RoomName,
				Occupied:   r.Occupied(),
				NextAction: r.NextAction(),
			})
		}
		out = append(out, BuildingAvailability{
			ID:             b.ID,
			Name:           b.Name,
			TotalRooms:     len(b.Rooms),
			AvailableRooms: b.AvailableRooms(),
			Rooms:          rooms,
		})
	}
	return out
}

// ArrivalStats counts arrivals on a day and in its month.
type ArrivalStats struct {
	Day            string  `json:"day"`
	DailyCount     int     `json:"dailyCount"`
	MonthlyCount   int     `json:"monthlyCount"`
	DaysInMonth    int     `json:"daysInMonth"`
	MonthlyAverage float64 `json:"monthlyAverage"`
}

// Stats counts logs arriving on day and logs arriving in day's month. The
// average is the monthly count spread evenly over the days of the month.
func Stats(buildings []model.Building, day string) (ArrivalStats, error) {
	selected, err := parse.Day(day)
	if err != nil {
		return ArrivalStats{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	stats := ArrivalStats{
		Day:         selected.Format(parse.DayLayout),
		DaysInMonth: parse.DaysInMonth(selected),
	}
	eachLog(buildings, func(_ *model.Building, _ *model.Room, l *model.StayLog) {
		arrived, err := parse.Day(l.Day)
		if err != nil {
			return
		}
		if arrived.Year() != selected.Year() || arrived.Month() != selected.Month() {
			return
		}
		stats.MonthlyCount++
		if parse.SameDay(arrived, selected) {
			stats.DailyCount++
		}
	})
	stats.MonthlyAverage = float64(stats.MonthlyCount) / float64(stats.DaysInMonth)
	return stats, nil
}

func eachLog(buildings []model.Building, fn func(b *model.Building, r *model.Room, l *model.StayLog)) {
	for i := range buildings {
		b := &buildings[i]
		for j := range b.Rooms {
			r := &b.Rooms[j]
			for k := range r.Logs {
				fn(b, r, &r.Logs[k])
			}
		}
	}
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
