package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

// TrainService answers search, availability and station lookups.
type TrainService struct {
	Catalog   Catalog
	RequestID string
}

func (s TrainService) Search(ctx context.Context, source, destination string, date time.Time) ([]models.Train, error) {
	if strings.TrimSpace(source) == "" || strings.TrimSpace(destination) == "" {
		return nil, domain.ValidationError{Msg: "source and destination are required"}
	}
	if date.IsZero() {
		return nil, domain.ValidationError{Field: "date", Msg: "required"}
	}
	trains, err := s.Catalog.SearchTrains(ctx, source, destination, utils.DateOf(date))
	if err != nil {
		return nil, err
	}
	utils.LogEvent(s.RequestID, "trains", "search",
		fmt.Sprintf("source=%q destination=%q date=%s results=%d", source, destination, utils.FormatDate(date), len(trains)))
	return trains, nil
}

// Availability returns seats left for one class, never negative.
func (s TrainService) Availability(ctx context.Context, trainID int64, classType models.ClassType, date time.Time) (models.ClassAvailability, error) {
	if trainID <= 0 {
		return models.ClassAvailability{}, domain.ValidationError{Field: "trainId", Msg: "must be positive"}
	}
	if date.IsZero() {
		return models.ClassAvailability{}, domain.ValidationError{Field: "date", Msg: "required"}
	}
	return s.Catalog.ClassAvailability(ctx, trainID, classType, utils.DateOf(date))
}

func (s TrainService) Stations(ctx context.Context, query string) ([]models.Station, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ValidationError{Field: "query", Msg: "required"}
	}
	return s.Catalog.SearchStations(ctx, query)
}
