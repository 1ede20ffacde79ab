package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "railway-backend/internal/config"
	h "railway-backend/internal/http/handlers"
	"railway-backend/internal/http/middleware"
	"railway-backend/internal/utils"
)

// Deps are the collaborators the router mounts. Limiter may be nil, which
// disables booking rate limiting.
type Deps struct {
	Handler h.Handler
	Verify  middleware.TokenVerifier
	Limiter middleware.Limiter
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Log.Warnf("failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	hd := deps.Handler
	requireAuth := middleware.Auth(deps.Verify)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/login", hd.Login)

		// Catalog
		api.GET("/stations", hd.SearchStations)
		trains := api.Group("/trains")
		trains.GET("/search", hd.SearchTrains)
		trains.GET("/:id/availability", hd.ClassAvailability)

		// Bookings
		bookings := api.Group("/bookings", requireAuth)
		bookings.POST("", middleware.RateLimit(deps.Limiter, env.RateLimitWindow, env.RateLimitMax), hd.CreateBooking)
		bookings.GET("/my-bookings", hd.MyBookings)
		bookings.POST("/cancel/:pnr", hd.CancelBooking)

		// PNR
		pnr := api.Group("/pnr")
		pnr.GET("/:pnr", hd.PNRStatus)
		pnr.GET("/:pnr/e-ticket", hd.ETicketPDF)
	}

	h.SetRouter(r)
	return r
}
