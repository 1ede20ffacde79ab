package services

import (
	"context"
	"fmt"
	"time"

	"railway-backend/internal/allocation"
	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/repositories"
	"railway-backend/internal/utils"
)

// CancellationService moves tickets to Cancelled and records the refund.
type CancellationService struct {
	Store     TicketStore
	Now       func() time.Time
	RequestID string
}

// CancelPNR cancels every live ticket of the PNR.
func (s CancellationService) CancelPNR(ctx context.Context, userID int64, pnr string) (models.CancellationResult, error) {
	return s.cancel(ctx, userID, pnr, 0)
}

// CancelTicket cancels one passenger of the PNR.
func (s CancellationService) CancelTicket(ctx context.Context, userID int64, pnr string, ticketID int64) (models.CancellationResult, error) {
	if ticketID <= 0 {
		return models.CancellationResult{}, domain.ValidationError{Field: "ticketId", Msg: "must be positive"}
	}
	return s.cancel(ctx, userID, pnr, ticketID)
}

func (s CancellationService) cancel(ctx context.Context, userID int64, pnr string, ticketID int64) (models.CancellationResult, error) {
	pnr = utils.NormalizePNR(pnr)
	if !utils.ValidPNR(pnr) {
		return models.CancellationResult{}, domain.ValidationError{Field: "pnr", Msg: "must be 10 letters or digits"}
	}
	today := s.now()

	var result models.CancellationResult
	err := s.Store.InTx(ctx, func(tx repositories.TicketTx) error {
		booking, err := tx.BookingByPNR(ctx, pnr)
		if err != nil {
			return err
		}
		// Another user's PNR looks the same as an unknown one.
		if booking.UserID != userID {
			return domain.NotFoundError{Resource: "pnr"}
		}

		tickets, err := tx.TicketsByPNRForUpdate(ctx, pnr)
		if err != nil {
			return err
		}
		targets, err := selectCancellable(tickets, ticketID)
		if err != nil {
			return err
		}

		days := allocation.DaysUntil(booking.JourneyDate, today)
		result = models.CancellationResult{
			PNR:     pnr,
			Status:  models.StatusCancelled,
			Tickets: make([]models.CancelledTicket, 0, len(targets)),
		}
		var total float64
		for _, t := range targets {
			if err := tx.MarkCancelled(ctx, t.ID); err != nil {
				return err
			}
			c := models.Cancellation{
				TicketID:     t.ID,
				RefundAmount: allocation.RefundAmount(t.Fare, days),
				RefundStatus: models.RefundProcessed,
			}
			if err := tx.InsertCancellation(ctx, &c); err != nil {
				return err
			}
			total += c.RefundAmount
			result.Tickets = append(result.Tickets, models.CancelledTicket{
				TicketID:     t.ID,
				SeatNumber:   t.SeatNumber,
				RefundAmount: c.RefundAmount,
			})
		}
		result.RefundAmount = allocation.RoundCents(total)
		return nil
	})
	if err != nil {
		utils.LogError(s.RequestID, "cancellation", "cancel", err)
		return models.CancellationResult{}, err
	}

	utils.LogEvent(s.RequestID, "cancellation", "cancel",
		fmt.Sprintf("pnr=%s tickets=%d refund=%s", pnr, len(result.Tickets), utils.FormatMoney(result.RefundAmount)))
	return result, nil
}

// selectCancellable returns the live tickets to cancel. ticketID 0 selects
// all of them.
func selectCancellable(tickets []models.Ticket, ticketID int64) ([]models.Ticket, error) {
	if ticketID != 0 {
		for _, t := range tickets {
			if t.ID != ticketID {
				continue
			}
			if !t.Status.Cancellable() {
				return nil, domain.ConflictError{Resource: "ticket", Msg: "ticket already cancelled"}
			}
			return []models.Ticket{t}, nil
		}
		return nil, domain.NotFoundError{Resource: "ticket"}
	}

	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status.Cancellable() {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, domain.ConflictError{Resource: "pnr", Msg: "no active tickets to cancel"}
	}
	return out, nil
}

func (s CancellationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
