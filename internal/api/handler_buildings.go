package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/occupancy"
)

type roomRequest struct {
	RoomNumber int    `json:"roomNumber"`
	RoomName   string `json:"roomName"`
}

// createBuildingRequest accepts either a room list, whose order fixes the
// names of rooms 1..N, or a bare room count.
type createBuildingRequest struct {
	Name      string        `json:"name" binding:"required"`
	Rooms     []roomRequest `json:"rooms"`
	RoomCount *int          `json:"roomCount" binding:"omitempty,min=0"`
}

type updateBuildingRequest struct {
	Name  *string       `json:"name"`
	Rooms []roomRequest `json:"rooms"`
}

// ListBuildings handles GET /buildings.
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings, err := h.occupancy.ListBuildings(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err, "Error fetching buildings")
		return
	}
	for i := range buildings {
		normalize(&buildings[i])
	}
	c.JSON(http.StatusOK, buildings)
}

// CreateBuilding handles POST /buildings.
func (h *Handler) CreateBuilding(c *gin.Context) {
	var req createBuildingRequest
	if !bindJSON(c, &req) {
		return
	}

	roomCount := len(req.Rooms)
	if req.RoomCount != nil {
		roomCount = *req.RoomCount
	}
	names := make([]string, 0, len(req.Rooms))
	for _, r := range req.Rooms {
		names = append(names, r.RoomName)
	}

	building, err := h.occupancy.CreateBuilding(c.Request.Context(), currentUser(c), req.Name, roomCount, names)
	if err != nil {
		respondError(c, err, "Error creating building")
		return
	}
	c.JSON(http.StatusCreated, normalize(building))
}

// GetBuilding handles GET /buildings/:id.
func (h *Handler) GetBuilding(c *gin.Context) {
	building, err := h.occupancy.GetBuilding(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error fetching building")
		return
	}
	c.JSON(http.StatusOK, normalize(building))
}

// UpdateBuilding handles PUT /buildings/:id.
func (h *Handler) UpdateBuilding(c *gin.Context) {
	var req updateBuildingRequest
	if !bindJSON(c, &req) {
		return
	}

	upd := occupancy.BuildingUpdate{Name: req.Name}
	if req.Rooms != nil {
		upd.Rooms = make([]occupancy.RoomDescriptor, 0, len(req.Rooms))
		for _, r := range req.Rooms {
			upd.Rooms = append(upd.Rooms, occupancy.RoomDescriptor{RoomNumber: r.RoomNumber, RoomName: r.RoomName})
		}
	}

	building, err := h.occupancy.UpdateBuilding(c.Request.Context(), currentUser(c), c.Param("id"), upd)
	if err != nil {
		respondError(c, err, "Error updating building")
		return
	}
	c.JSON(http.StatusOK, normalize(building))
}

// DeleteBuilding handles DELETE /buildings/:id.
func (h *Handler) DeleteBuilding(c *gin.Context) {
	if err := h.occupancy.DeleteBuilding(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err, "Error deleting building")
		return
	}
	c.Status(http.StatusNoContent)
}
