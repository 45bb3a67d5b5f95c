package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"running-rooms-backend/internal/model"
)

const (
	// ExportSheet is the name of the single worksheet in an export.
	ExportSheet = "User Data"

	noLogs    = "No Logs"
	noOutTime = "No OutTime"
	noOutDay  = "No OutDay"
)

var exportHeader = []any{"BuildingName", "RoomNumber", "Name", "Day", "InTime", "OutTime", "OutDay"}

// ExportFileName names the workbook the way downloads have always been named,
// e.g. "alice_Data_2024-01-31.xlsx".
func ExportFileName(username string, now time.Time) string {
	return fmt.Sprintf("%s_Data_%s.xlsx", username, now.Format("2006-01-02"))
}

// Export writes an xlsx workbook with one row per stay-log, or one
// placeholder row for a room that has never been used.
func Export(w io.Writer, buildings []model.Building) error {
	if len(buildings) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	row := 1
	writeRow := func(values []any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		row++
		return f.SetSheetRow(ExportSheet, cell, &values)
	}

	if err := writeRow(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range buildings {
		for _, r := range b.Rooms {
			if len(r.Logs) == 0 {
				if err := writeRow([]any{b.Name, r.RoomNumber, noLogs, noLogs, noLogs, noLogs, noLogs}); err != nil {
					return fmt.Errorf("failed to write room %d of %s: %w", r.RoomNumber, b.Name, err)
				}
				continue
			}
			for _, l := range r.Logs {
				values := []any{b.Name, r.RoomNumber, l.Name, l.Day, l.InTime, orElse(l.OutTime, noOutTime), orElse(l.OutDay, noOutDay)}
				if err := writeRow(values); err != nil {
					return fmt.Errorf("failed to write log of room %d of %s: %w", r.RoomNumber, b.Name, err)
				}
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func orElse(s *string, fallback string) string {
	if v := optional(s); v != "" {
		return v
	}
	return fallback
}
