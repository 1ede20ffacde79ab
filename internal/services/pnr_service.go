package services

import (
	"context"
	"fmt"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

type BookingReader interface {
	PNRDetail(ctx context.Context, pnr string) (models.PNRDetail, error)
	BookingsByUser(ctx context.Context, userID int64) ([]models.PNRDetail, error)
}

// PNRService serves read-only booking views.
type PNRService struct {
	Reader    BookingReader
	RequestID string
}

func (s PNRService) Status(ctx context.Context, pnr string) (models.PNRDetail, error) {
	pnr = utils.NormalizePNR(pnr)
	if !utils.ValidPNR(pnr) {
		return models.PNRDetail{}, domain.ValidationError{Field: "pnr", Msg: "must be 10 letters or digits"}
	}
	d, err := s.Reader.PNRDetail(ctx, pnr)
	if err != nil {
		return models.PNRDetail{}, err
	}
	utils.LogEvent(s.RequestID, "pnr", "status", fmt.Sprintf("pnr=%s passengers=%d", pnr, len(d.Passengers)))
	return d, nil
}

func (s PNRService) MyBookings(ctx context.Context, userID int64) ([]models.PNRDetail, error) {
	if userID <= 0 {
		return nil, domain.UnauthorizedError{Msg: "user not authenticated"}
	}
	return s.Reader.BookingsByUser(ctx, userID)
}
