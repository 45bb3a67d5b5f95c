package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/parse"
)

// ArrivalRow is one stay-log flattened together with its room and building.
type ArrivalRow struct {
	BuildingID   string  `json:"buildingId"`
	BuildingName string  `json:"buildingName"`
	RoomID       string  `json:"roomId"`
	RoomNumber   int     `json:"roomNumber"`
	RoomName     string  `json:"roomName"`
	Name         string  `json:"name"`
	Day          string  `json:"day"`
	InTime       string  `json:"inTime"`
	OutDay       *string `json:"outDay,omitempty"`
	OutTime      *string `json:"outTime,omitempty"`

	arrivedAt time.Time
}

// ArrivalQuery filters the arrival listing. Empty fields do not filter.
type ArrivalQuery struct {
	Name string // case-insensitive substring of the guest name
	Day  string // exact arrival day
	From string // first arrival day, inclusive
	To   string // last arrival day, inclusive
	Page int    // 1-based
}

// ArrivalPage is one page of the arrival listing.
type ArrivalPage struct {
	Rows       []ArrivalRow `json:"rows"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      int          `json:"total"`
	TotalPages int          `json:"totalPages"`
}

type dayRange struct {
	day, from, to time.Time
	hasDay        bool
	hasFrom       bool
	hasTo         bool
}

// Arrivals lists every stay-log matching q, latest arrival first, and
// returns the requested page. Pages past the end are empty.
func Arrivals(buildings []model.Building, q ArrivalQuery, pageSize int) (ArrivalPage, error) {
	if pageSize <= 0 {
		return ArrivalPage{}, fmt.Errorf("%w: page size must be positive", ErrInvalidQuery)
	}
	days, err := parseRange(q)
	if err != nil {
		return ArrivalPage{}, err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	needle := strings.ToLower(strings.TrimSpace(q.Name))

	var rows []ArrivalRow
	eachLog(buildings, func(b *model.Building, r *model.Room, l *model.StayLog) {
		if needle != "" && !strings.Contains(strings.ToLower(l.Name), needle) {
			return
		}
		if !days.matches(l.Day) {
			return
		}
		arrivedAt, tsErr := parse.Timestamp(l.Day, l.InTime)
		row := ArrivalRow{
			BuildingID:   b.ID,
			BuildingName: b.Name,
			RoomID:       r.ID,
			RoomNumber:   r.RoomNumber,
			RoomName:     r.RoomName,
			Name:         l.Name,
			Day:          l.Day,
			InTime:       l.InTime,
			OutDay:       l.OutDay,
			OutTime:      l.OutTime,
		}
		if tsErr == nil {
			row.arrivedAt = arrivedAt
		}
		rows = append(rows, row)
	})

	// Rows with an unreadable arrival have a zero timestamp and sink to the end.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].arrivedAt.After(rows[j].arrivedAt)
	})

	total := len(rows)
	result := ArrivalPage{
		Rows:       []ArrivalRow{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	// checked before multiplying so huge page numbers cannot overflow
	if page > result.TotalPages {
		return result, nil
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Rows = rows[start:end]
	return result, nil
}

func parseRange(q ArrivalQuery) (dayRange, error) {
	var (
		r   dayRange
		err error
	)
	if q.Day != "" {
		if r.day, err = parse.Day(q.Day); err != nil {
			return r, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		r.hasDay = true
	}
	if q.From != "" {
		if r.from, err = parse.Day(q.From); err != nil {
			return r, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		r.hasFrom = true
	}
	if q.To != "" {
		if r.to, err = parse.Day(q.To); err != nil {
			return r, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		r.hasTo = true
	}
	if r.hasFrom && r.hasTo && r.to.Before(r.from) {
		return r, fmt.Errorf("%w: from %s is after to %s", ErrInvalidQuery, q.From, q.To)
	}
	return r, nil
}

func (r dayRange) matches(raw string) bool {
	if !r.hasDay && !r.hasFrom && !r.hasTo {
		return true
	}
	d, err := parse.Day(raw)
	if err != nil {
		return false
	}
	if r.hasDay && !d.Equal(r.day) {
		return false
	}
	if r.hasFrom && d.Before(r.from) {
		return false
	}
	if r.hasTo && d.After(r.to) {
		return false
	}
	return true
}
