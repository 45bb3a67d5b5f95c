package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/mw"
	"running-rooms-backend/internal/parse"
	"running-rooms-backend/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Availability handles GET /reports/availability.
func (h *Handler) Availability(c *gin.Context) {
	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}
	c.JSON(http.StatusOK, report.Availability(buildings))
}

// PeakHours handles GET /reports/peak-hours?date=YYYY-MM-DD. The date
// defaults to today.
func (h *Handler) PeakHours(c *gin.Context) {
	date := c.DefaultQuery("date", h.now().Format(parse.DayLayout))
	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}
	result, err := report.PeakHours(buildings, date)
	if err != nil {
		respondError(c, err, "Error computing peak hours")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Arrivals handles GET /reports/arrivals.
func (h *Handler) Arrivals(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
			return
		}
		page = n
	}
	q := report.ArrivalQuery{
		Name: c.Query("name"),
		Day:  c.Query("day"),
		From: c.Query("from"),
		To:   c.Query("to"),
		Page: page,
	}

	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}
	result, err := report.Arrivals(buildings, q, h.pageSize)
	if err != nil {
		respondError(c, err, "Error listing arrivals")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats handles GET /reports/stats?day=YYYY-MM-DD. The day defaults to today.
func (h *Handler) Stats(c *gin.Context) {
	day := c.DefaultQuery("day", h.now().Format(parse.DayLayout))
	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}
	result, err := report.Stats(buildings, day)
	if err != nil {
		respondError(c, err, "Error computing stats")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export handles GET /export and sends the caller's data as an xlsx file.
func (h *Handler) Export(c *gin.Context) {
	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}

	var buf bytes.Buffer
	if err := report.Export(&buf, buildings); err != nil {
		respondError(c, err, "Error downloading user data")
		return
	}

	filename := report.ExportFileName(c.GetString(mw.ContextUsername), h.now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
