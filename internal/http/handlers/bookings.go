package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

type bookingPayload struct {
	TrainID            int64                   `json:"trainId"`
	JourneyDate        string                  `json:"journeyDate"`
	ClassType          string                  `json:"classType"`
	SourceStation      string                  `json:"sourceStation"`
	DestinationStation string                  `json:"destinationStation"`
	Passengers         []models.PassengerInput `json:"passengers"`
	TotalFare          float64                 `json:"totalFare"`
}

func (p bookingPayload) toRequest() (models.BookingRequest, error) {
	classType, ok := models.ParseClassType(p.ClassType)
	if !ok {
		return models.BookingRequest{}, domain.ValidationError{Field: "classType", Msg: "unknown class type"}
	}
	date, err := utils.ParseDate(p.JourneyDate)
	if err != nil {
		return models.BookingRequest{}, domain.ValidationError{Field: "journeyDate", Msg: "date must be YYYY-MM-DD"}
	}
	return models.BookingRequest{
		TrainID:            p.TrainID,
		JourneyDate:        date,
		ClassType:          classType,
		SourceStation:      p.SourceStation,
		DestinationStation: p.DestinationStation,
		Passengers:         p.Passengers,
		TotalFare:          p.TotalFare,
	}, nil
}

type cancelPayload struct {
	TicketID int64 `json:"ticketId"`
}

// CreateBooking allocates one ticket per passenger under a fresh PNR.
func (h Handler) CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload bookingPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	res, err := h.bookings(c).Book(c.Request.Context(), userID, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "Booking created successfully",
		"pnrNumber":  res.PNR,
		"status":     res.Status,
		"seatNumber": res.SeatNumber,
		"totalFare":  res.TotalFare,
		"tickets":    res.Tickets,
	})
}

// MyBookings lists every booking of the caller, newest first.
func (h Handler) MyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.pnr(c).MyBookings(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CancelBooking cancels every live ticket of a PNR, or a single ticket when
// the body names one.
func (h Handler) CancelBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var payload cancelPayload
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
			RespondError(c, http.StatusBadRequest, "invalid payload", err)
			return
		}
	}
	if raw := c.Query("ticketId"); payload.TicketID == 0 && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondDomainError(c, domain.ValidationError{Field: "ticketId", Msg: "invalid ticket id"})
			return
		}
		payload.TicketID = id
	}

	svc := h.cancellations(c)
	var (
		res models.CancellationResult
		err error
	)
	if payload.TicketID > 0 {
		res, err = svc.CancelTicket(c.Request.Context(), userID, c.Param("pnr"), payload.TicketID)
	} else {
		res, err = svc.CancelPNR(c.Request.Context(), userID, c.Param("pnr"))
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Booking cancelled successfully",
		"pnrNumber":    res.PNR,
		"status":       res.Status,
		"refundAmount": res.RefundAmount,
		"tickets":      res.Tickets,
	})
}
