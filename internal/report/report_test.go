package report

import (
	"bytes"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"running-rooms-backend/internal/model"
)

func s(v string) *string { return &v }

func closedLog(name, day, in, outDay, out string) model.StayLog {
	return model.StayLog{Name: name, Day: day, InTime: in, OutDay: s(outDay), OutTime: s(out)}
}

func openLog(name, day, in string) model.StayLog {
	return model.StayLog{Name: name, Day: day, InTime: in}
}

func fixture() []model.Building {
	return []model.Building{
		{
			ID:   "b-1",
			Name: "Hostel A",
			Rooms: []model.Room{
				{ID: "r-1", RoomNumber: 1, RoomName: "Garden", Logs: []model.StayLog{
					closedLog("Bob", "2024-01-01", "10:00", "2024-01-02", "08:00"),
					openLog("Carol", "2024-01-05", "14:30"),
				}},
				{ID: "r-2", RoomNumber: 2},
			},
		},
		{
			ID:   "b-2",
			Name: "Hostel B",
			Rooms: []model.Room{
				{ID: "r-3", RoomNumber: 1, Logs: []model.StayLog{
					closedLog("bobby", "2024-01-03", "09:15", "2024-01-03", "18:00"),
				}},
			},
		},
	}
}

func TestAvailability(t *testing.T) {
	got := Availability(fixture())
	require.Len(t, got, 2)

	assert.Equal(t, "Hostel A", got[0].Name)
	assert.Equal(t, 2, got[0].TotalRooms)
	assert.Equal(t, 1, got[0].AvailableRooms)
	assert.True(t, got[0].Rooms[0].Occupied)
	assert.Equal(t, model.ActionCheckOut, got[0].Rooms[0].NextAction)
	assert.False(t, got[0].Rooms[1].Occupied)
	assert.Equal(t, model.ActionCheckIn, got[0].Rooms[1].NextAction)

	assert.Equal(t, 1, got[1].AvailableRooms)
	assert.NotNil(t, Availability(nil))
}

func TestPeakHours_SingleDayStay(t *testing.T) {
	buildings := []model.Building{{Rooms: []model.Room{{Logs: []model.StayLog{
		closedLog("Bob", "2024-03-01", "09:00", "2024-03-01", "17:00"),
	}}}}}

	got, err := PeakHours(buildings, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, got.Hours, 24)
	for h, bucket := range got.Hours {
		want := 0
		if h >= 9 && h <= 17 {
			want = 1
		}
		assert.Equal(t, want, bucket.Count, "hour %d", h)
		assert.Equal(t, h, bucket.Hour)
	}
	require.NotNil(t, got.Peak)
	assert.Equal(t, 9, got.Peak.Hour)
}

func TestPeakHours_MultiDayAndOpenStays(t *testing.T) {
	buildings := []model.Building{{Rooms: []model.Room{{Logs: []model.StayLog{
		closedLog("A", "2024-03-01", "20:00", "2024-03-03", "06:00"),
		openLog("B", "2024-03-02", "12:00"),
		closedLog("C", "2024-02-01", "10:00", "2024-02-02", "10:00"),
		openLog("D", "2024-03-05", "12:00"),
	}}}}}

	testCases := []struct {
		date string
		want func(h int) int
	}{
		{
			// A covers the whole day, B from noon.
			date: "2024-03-02",
			want: func(h int) int {
				if h >= 12 {
					return 2
				}
				return 1
			},
		},
		{
			// A until 06:00, B all day.
			date: "2024-03-03",
			want: func(h int) int {
				if h <= 6 {
					return 2
				}
				return 1
			},
		},
		{
			date: "2024-03-01",
			want: func(h int) int {
				if h >= 20 {
					return 1
				}
				return 0
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.date, func(t *testing.T) {
			got, err := PeakHours(buildings, tc.date)
			require.NoError(t, err)
			for h, bucket := range got.Hours {
				assert.Equal(t, tc.want(h), bucket.Count, "hour %d", h)
			}
		})
	}
}

func TestPeakHours_EmptyDayAndBadDate(t *testing.T) {
	got, err := PeakHours(fixture(), "2023-12-31")
	require.NoError(t, err)
	assert.Nil(t, got.Peak)

	_, err = PeakHours(fixture(), "31/12/2023")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "12:00 AM", hourLabel(0))
	assert.Equal(t, "9:00 AM", hourLabel(9))
	assert.Equal(t, "12:00 PM", hourLabel(12))
	assert.Equal(t, "11:00 PM", hourLabel(23))
}

func TestArrivals(t *testing.T) {
	testCases := []struct {
		name      string
		query     ArrivalQuery
		wantNames []string
		wantTotal int
	}{
		{
			name:      "All rows latest first",
			query:     ArrivalQuery{},
			wantNames: []string{"Carol", "bobby", "Bob"},
			wantTotal: 3,
		},
		{
			name:      "Name filter is case-insensitive",
			query:     ArrivalQuery{Name: "BOB"},
			wantNames: []string{"bobby", "Bob"},
			wantTotal: 2,
		},
		{
			name:      "Exact day",
			query:     ArrivalQuery{Day: "2024-01-01"},
			wantNames: []string{"Bob"},
			wantTotal: 1,
		},
		{
			name:      "Day window",
			query:     ArrivalQuery{From: "2024-01-02", To: "2024-01-04"},
			wantNames: []string{"bobby"},
			wantTotal: 1,
		},
		{
			name:      "Page past the end",
			query:     ArrivalQuery{Page: 5},
			wantNames: []string{},
			wantTotal: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := Arrivals(fixture(), tc.query, 10)
			require.NoError(t, err)
			names := []string{}
			for _, r := range page.Rows {
				names = append(names, r.Name)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, tc.wantTotal, page.Total)
			assert.NotNil(t, page.Rows)
		})
	}
}

func TestArrivals_Pagination(t *testing.T) {
	logs := make([]model.StayLog, 0, 25)
	for i := 1; i <= 25; i++ {
		logs = append(logs, closedLog(fmt.Sprintf("guest-%02d", i), fmt.Sprintf("2024-01-%02d", i), "10:00", fmt.Sprintf("2024-01-%02d", i), "11:00"))
	}
	buildings := []model.Building{{ID: "b", Name: "B", Rooms: []model.Room{{ID: "r", RoomNumber: 1, Logs: logs}}}}

	first, err := Arrivals(buildings, ArrivalQuery{Page: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Rows, 10)
	assert.Equal(t, "guest-25", first.Rows[0].Name)
	assert.Equal(t, "B", first.Rows[0].BuildingName)

	last, err := Arrivals(buildings, ArrivalQuery{Page: 3}, 10)
	require.NoError(t, err)
	require.Len(t, last.Rows, 5)
	assert.Equal(t, "guest-01", last.Rows[4].Name)

	zero, err := Arrivals(buildings, ArrivalQuery{Page: 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, zero.Page)

	for _, page := range []int{4, math.MaxInt / 10, math.MaxInt/10 + 2, math.MaxInt} {
		past, err := Arrivals(buildings, ArrivalQuery{Page: page}, 10)
		require.NoError(t, err, "page %d", page)
		assert.Empty(t, past.Rows, "page %d", page)
		assert.NotNil(t, past.Rows)
		assert.Equal(t, page, past.Page)
		assert.Equal(t, 25, past.Total)
	}
}

func TestArrivals_InvalidQuery(t *testing.T) {
	for _, q := range []ArrivalQuery{
		{Day: "yesterday"},
		{From: "2024-13-01"},
		{From: "2024-02-01", To: "2024-01-01"},
	} {
		_, err := Arrivals(fixture(), q, 10)
		assert.ErrorIs(t, err, ErrInvalidQuery)
	}
}

func TestStats_MonthlyAverage(t *testing.T) {
	logs := make([]model.StayLog, 0, 30)
	for d := 1; d <= 29; d++ {
		logs = append(logs, openLog("g", fmt.Sprintf("2024-02-%02d", d), "12:00"))
	}
	logs = append(logs, openLog("g", "2024-03-10", "12:00"))
	buildings := []model.Building{{Rooms: []model.Room{{Logs: logs}}}}

	got, err := Stats(buildings, "2024-02-10")
	require.NoError(t, err)
	assert.Equal(t, 1, got.DailyCount)
	assert.Equal(t, 29, got.MonthlyCount)
	assert.Equal(t, 29, got.DaysInMonth)
	assert.InDelta(t, 1.0, got.MonthlyAverage, 1e-9)

	_, err = Stats(buildings, "")
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, fixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, ExportSheet, f.GetSheetName(0))
	rows, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"BuildingName", "RoomNumber", "Name", "Day", "InTime", "OutTime", "OutDay"}, rows[0])
	assert.Equal(t, []string{"Hostel A", "1", "Bob", "2024-01-01", "10:00", "08:00", "2024-01-02"}, rows[1])
	assert.Equal(t, []string{"Hostel A", "1", "Carol", "2024-01-05", "14:30", "No OutTime", "No OutDay"}, rows[2])
	assert.Equal(t, []string{"Hostel A", "2", "No Logs", "No Logs", "No Logs", "No Logs", "No Logs"}, rows[3])
	assert.Equal(t, "Hostel B", rows[4][0])
}

func TestExport_NoBuildings(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Export(&buf, nil), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "alice_Data_2024-01-31.xlsx", ExportFileName("alice", now))
}
