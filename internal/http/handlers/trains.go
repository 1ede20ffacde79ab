package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

// SearchTrains lists trains between two stations with per-class availability.
func (h Handler) SearchTrains(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	trains, err := h.trains(c).Search(c.Request.Context(), c.Query("source"), c.Query("destination"), date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trains)
}

// ClassAvailability reports free guaranteed seats for one class on one date.
func (h Handler) ClassAvailability(c *gin.Context) {
	trainID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || trainID <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: "trainId", Msg: "invalid train id"})
		return
	}
	classType, ok := models.ParseClassType(c.Query("classType"))
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "classType", Msg: "unknown class type"})
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	got, err := h.trains(c).Availability(c.Request.Context(), trainID, classType, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, got)
}

// SearchStations autocompletes station names and codes.
func (h Handler) SearchStations(c *gin.Context) {
	stations, err := h.trains(c).Stations(c.Request.Context(), c.Query("query"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

// queryDate parses a required YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "date is required"})
		return time.Time{}, false
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		RespondDomainError(c, domain.ValidationError{Field: name, Msg: "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}
