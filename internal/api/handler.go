package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"running-rooms-backend/internal/auth"
	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/mw"
	"running-rooms-backend/internal/occupancy"
	"running-rooms-backend/internal/report"
	"running-rooms-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	auth      *auth.Service
	occupancy *occupancy.Service
	pageSize  int
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(authSvc *auth.Service, occupancySvc *occupancy.Service, pageSize int) *Handler {
	return &Handler{
		auth:      authSvc,
		occupancy: occupancySvc,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, occupancy.ErrValidation),
		errors.Is(err, occupancy.ErrInvalidState),
		errors.Is(err, store.ErrDuplicateUsername),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, report.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, report.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// answered with fallback so storage details never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": fallback})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

func currentUser(c *gin.Context) string {
	return c.GetString(mw.ContextUserID)
}

// normalize replaces nil room and log slices so they encode as [] rather
// than null.
func normalize(b *model.Building) *model.Building {
	if b.Rooms == nil {
		b.Rooms = []model.Room{}
	}
	for i := range b.Rooms {
		if b.Rooms[i].Logs == nil {
			b.Rooms[i].Logs = []model.StayLog{}
		}
	}
	return b
}
