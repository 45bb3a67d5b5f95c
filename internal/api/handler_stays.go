package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/occupancy"
)

type checkInRequest struct {
	Name   string `json:"name" binding:"required"`
	Day    string `json:"day" binding:"required"`
	InTime string `json:"inTime" binding:"required"`
}

type checkOutRequest struct {
	Day     string `json:"day" binding:"required"`
	OutTime string `json:"outTime" binding:"required"`
}

// CheckIn handles POST /buildings/:id/rooms/:roomId/checkin.
func (h *Handler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if !bindJSON(c, &req) {
		return
	}
	stay, err := h.occupancy.CheckIn(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("roomId"), occupancy.CheckIn{
		GuestName: req.Name,
		Day:       req.Day,
		InTime:    req.InTime,
	})
	if err != nil {
		respondError(c, err, "Error logging check-in")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check-in time logged successfully", "log": stay})
}

// CheckOut handles POST /buildings/:id/rooms/:roomId/checkout.
func (h *Handler) CheckOut(c *gin.Context) {
	var req checkOutRequest
	if !bindJSON(c, &req) {
		return
	}
	stay, err := h.occupancy.CheckOut(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("roomId"), occupancy.CheckOut{
		Day:     req.Day,
		OutTime: req.OutTime,
	})
	if err != nil {
		respondError(c, err, "Error logging check-out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Check-out time logged successfully", "log": stay})
}
