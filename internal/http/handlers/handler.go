package handlers

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/http/middleware"
	"railway-backend/internal/services"
)

// Handler carries the services the routes call. Each request works on a
// copy tagged with its request_id.
type Handler struct {
	Bookings      services.BookingService
	Cancellations services.CancellationService
	PNR           services.PNRService
	Trains        services.TrainService
	Auth          services.AuthService
	Docs          services.DocsService
	DB            *sql.DB
}

func (h Handler) bookings(c *gin.Context) services.BookingService {
	s := h.Bookings
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h Handler) cancellations(c *gin.Context) services.CancellationService {
	s := h.Cancellations
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h Handler) pnr(c *gin.Context) services.PNRService {
	s := h.PNR
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h Handler) trains(c *gin.Context) services.TrainService {
	s := h.Trains
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h Handler) auth(c *gin.Context) services.AuthService {
	s := h.Auth
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h Handler) docs(c *gin.Context) services.DocsService {
	s := h.Docs
	s.RequestID = middleware.GetRequestID(c)
	return s
}
