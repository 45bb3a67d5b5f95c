package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"running-rooms-backend/config"
	"running-rooms-backend/internal/auth"
	"running-rooms-backend/internal/mw"
	"running-rooms-backend/internal/occupancy"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, authSvc *auth.Service, occupancySvc *occupancy.Service) *gin.Engine {
	r := gin.Default()
	r.Use(mw.Metrics())

	handler := NewHandler(authSvc, occupancySvc, cfg.Reports.PageSize)
	tokens := authSvc.Tokens()

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	responseCache := mw.NewResponseCache(cfg.Server.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(rateLimiter)
	{
		public.POST("/register", handler.Register)
		public.POST("/login", handler.Login)
		public.POST("/admin/register", handler.RegisterAdmin)
		public.POST("/admin/login", handler.AdminLogin)
	}

	admin := r.Group("/")
	admin.Use(rateLimiter, mw.RequireAdmin(tokens))
	{
		admin.GET("/getallusers", handler.GetAllUsers)
	}

	user := r.Group("/")
	user.Use(rateLimiter, mw.RequireUser(tokens), responseCache.Middleware())
	{
		user.GET("/buildings", handler.ListBuildings)
		user.POST("/buildings", handler.CreateBuilding)
		user.GET("/buildings/:id", handler.GetBuilding)
		user.PUT("/buildings/:id", handler.UpdateBuilding)
		user.DELETE("/buildings/:id", handler.DeleteBuilding)

		user.POST("/buildings/:id/rooms/:roomId/checkin", handler.CheckIn)
		user.POST("/buildings/:id/rooms/:roomId/checkout", handler.CheckOut)

		user.GET("/reports/availability", handler.Availability)
		user.GET("/reports/peak-hours", handler.PeakHours)
		user.GET("/reports/arrivals", handler.Arrivals)
		user.GET("/reports/stats", handler.Stats)
		user.GET("/export", handler.Export)
	}

	return r
}
