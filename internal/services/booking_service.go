package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"railway-backend/internal/allocation"
	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/repositories"
	"railway-backend/internal/utils"
)

// TicketStore opens units of work over tickets. repositories.Store is the
// MySQL implementation.
type TicketStore interface {
	InBucket(ctx context.Context, bucket models.Bucket, timeout time.Duration, fn func(repositories.TicketTx) error) error
	InTx(ctx context.Context, fn func(repositories.TicketTx) error) error
}

// Catalog is the reference data the booking flow resolves names against.
type Catalog interface {
	ClassForTrain(ctx context.Context, trainID int64, classType models.ClassType) (models.TrainClass, error)
	StationIDByName(ctx context.Context, name string) (int64, error)
	ClassAvailability(ctx context.Context, trainID int64, classType models.ClassType, date time.Time) (models.ClassAvailability, error)
	SearchTrains(ctx context.Context, source, destination string, date time.Time) ([]models.Train, error)
	SearchStations(ctx context.Context, query string) ([]models.Station, error)
}

const (
	maxPNRAttempts      = 5
	defaultLockTimeout  = 5 * time.Second
	defaultRetryBackoff = 50 * time.Millisecond
)

type BookingService struct {
	Store   TicketStore
	Catalog Catalog

	RACQuota      float64
	Scheme        allocation.Scheme
	WaitlistLimit int // 0 = unbounded
	LockTimeout   time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration

	NewPNR    func() string
	Now       func() time.Time
	RequestID string
}

// Book allocates every passenger of req under one PNR. All rows of the
// request are written in a single transaction while the bucket lock is held.
func (s BookingService) Book(ctx context.Context, userID int64, req models.BookingRequest) (models.BookingResult, error) {
	passengers, err := s.validate(req)
	if err != nil {
		return models.BookingResult{}, err
	}

	class, err := s.Catalog.ClassForTrain(ctx, req.TrainID, req.ClassType)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.BookingResult{}, domain.ValidationError{
				Field: "classType",
				Msg:   fmt.Sprintf("no %s class on train %d", req.ClassType, req.TrainID),
				Err:   err,
			}
		}
		return models.BookingResult{}, err
	}
	srcID, err := s.stationID(ctx, "sourceStation", req.SourceStation)
	if err != nil {
		return models.BookingResult{}, err
	}
	dstID, err := s.stationID(ctx, "destinationStation", req.DestinationStation)
	if err != nil {
		return models.BookingResult{}, err
	}
	if srcID == dstID {
		return models.BookingResult{}, domain.ValidationError{Field: "destinationStation", Msg: "must differ from source station"}
	}

	journey := utils.DateOf(req.JourneyDate)
	bucket := models.Bucket{TrainID: req.TrainID, ClassID: class.ID, JourneyDate: journey}
	header := models.Booking{
		UserID:               userID,
		TrainID:              req.TrainID,
		ClassID:              class.ID,
		SourceStationID:      srcID,
		DestinationStationID: dstID,
		JourneyDate:          journey,
		TotalFare:            allocation.RoundCents(req.TotalFare),
	}
	fares := allocation.SplitFare(req.TotalFare, len(passengers))

	attempts := s.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	var result models.BookingResult
	for attempt := 1; ; attempt++ {
		result, err = s.bookOnce(ctx, bucket, class, header, passengers, fares)
		if err == nil {
			break
		}
		if !domain.IsCapacityRace(err) || attempt >= attempts {
			utils.LogError(s.RequestID, "booking", "create", err)
			return models.BookingResult{}, err
		}
		utils.LogEvent(s.RequestID, "booking", "retry", fmt.Sprintf("bucket=%s attempt=%d", bucket.Key(), attempt))
		if err := sleepCtx(ctx, s.backoff()*time.Duration(attempt)); err != nil {
			return models.BookingResult{}, domain.CapacityRaceError{Bucket: bucket.Key(), Err: err}
		}
	}

	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("pnr=%s bucket=%s passengers=%d status=%s", result.PNR, bucket.Key(), len(result.Tickets), result.Status))
	return result, nil
}

func (s BookingService) bookOnce(ctx context.Context, bucket models.Bucket, class models.TrainClass, header models.Booking,
	passengers []models.PassengerInput, fares []float64) (models.BookingResult, error) {
	var result models.BookingResult
	err := s.Store.InBucket(ctx, bucket, s.lockTimeout(), func(tx repositories.TicketTx) error {
		booking := header
		if err := s.insertWithFreshPNR(ctx, tx, &booking); err != nil {
			return err
		}

		result = models.BookingResult{
			PNR:       booking.PNR,
			TotalFare: booking.TotalFare,
			Tickets:   make([]models.TicketResult, 0, len(passengers)),
		}
		for i, in := range passengers {
			p := models.Passenger{BookingID: booking.ID, Name: in.Name, Age: in.Age, Gender: in.Gender}
			if err := tx.InsertPassenger(ctx, &p); err != nil {
				return err
			}
			t, err := s.allocate(ctx, tx, bucket, class, booking, p, fares[i])
			if err != nil {
				return err
			}
			result.Tickets = append(result.Tickets, models.TicketResult{
				TicketID:      t.ID,
				PassengerName: p.Name,
				Status:        t.Status,
				SeatNumber:    t.SeatNumber,
				Fare:          t.Fare,
			})
		}
		result.Status = result.Tickets[0].Status
		result.SeatNumber = result.Tickets[0].SeatNumber
		return nil
	})
	if err != nil {
		return models.BookingResult{}, err
	}
	return result, nil
}

// allocate counts the bucket, decides the status and writes one ticket. It
// must run inside the bucket lock.
func (s BookingService) allocate(ctx context.Context, tx repositories.TicketTx, bucket models.Bucket, class models.TrainClass,
	booking models.Booking, p models.Passenger, fare float64) (models.Ticket, error) {
	counts, err := tx.CountBucket(ctx, bucket)
	if err != nil {
		return models.Ticket{}, err
	}
	decision := allocation.Decide(class.TotalSeats, s.racQuota(), counts)
	if decision.Status == models.StatusWaitlist && s.WaitlistLimit > 0 && counts.Waitlist >= s.WaitlistLimit {
		return models.Ticket{}, domain.ConflictError{
			Resource: "waitlist",
			Msg:      fmt.Sprintf("waitlist full (%d)", s.WaitlistLimit),
		}
	}

	last, err := tx.LastOrdinal(ctx, bucket, decision.Status)
	if err != nil {
		return models.Ticket{}, err
	}
	ordinal := allocation.NextOrdinal(decision.Ordinal, last)
	seat, err := allocation.FormatSeat(s.Scheme, class.Type, decision.Status, ordinal)
	if err != nil {
		return models.Ticket{}, err
	}

	t := models.Ticket{
		BookingID:            booking.ID,
		PNR:                  booking.PNR,
		PassengerID:          p.ID,
		TrainID:              bucket.TrainID,
		ClassID:              bucket.ClassID,
		SourceStationID:      booking.SourceStationID,
		DestinationStationID: booking.DestinationStationID,
		JourneyDate:          bucket.JourneyDate,
		Status:               decision.Status,
		AllocatedStatus:      decision.Status,
		Ordinal:              ordinal,
		SeatNumber:           seat,
		Fare:                 fare,
		Passenger:            p,
	}
	if err := tx.InsertTicket(ctx, &t); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

func (s BookingService) insertWithFreshPNR(ctx context.Context, tx repositories.TicketTx, b *models.Booking) error {
	for i := 0; i < maxPNRAttempts; i++ {
		b.PNR = s.newPNR()
		err := tx.InsertBooking(ctx, b)
		if err == nil {
			return nil
		}
		if !domain.IsConflict(err) {
			return err
		}
		utils.LogEvent(s.RequestID, "booking", "pnr_collision", "pnr="+b.PNR)
	}
	return domain.ConflictError{Resource: "pnr", Msg: "could not issue a unique pnr"}
}

func (s BookingService) validate(req models.BookingRequest) ([]models.PassengerInput, error) {
	if req.TrainID <= 0 {
		return nil, domain.ValidationError{Field: "trainId", Msg: "required"}
	}
	if req.ClassType == "" {
		return nil, domain.ValidationError{Field: "classType", Msg: "required"}
	}
	if req.JourneyDate.IsZero() {
		return nil, domain.ValidationError{Field: "journeyDate", Msg: "required"}
	}
	if utils.DateOf(req.JourneyDate).Before(utils.DateOf(s.now())) {
		return nil, domain.ValidationError{Field: "journeyDate", Msg: "must be today or later"}
	}
	if strings.TrimSpace(req.SourceStation) == "" {
		return nil, domain.ValidationError{Field: "sourceStation", Msg: "required"}
	}
	if strings.TrimSpace(req.DestinationStation) == "" {
		return nil, domain.ValidationError{Field: "destinationStation", Msg: "required"}
	}
	if !(req.TotalFare > 0) {
		return nil, domain.ValidationError{Field: "totalFare", Msg: "must be greater than 0"}
	}
	if len(req.Passengers) == 0 {
		return nil, domain.ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}

	out := make([]models.PassengerInput, 0, len(req.Passengers))
	for i, p := range req.Passengers {
		field := fmt.Sprintf("passengers[%d]", i)
		name := utils.NormalizeSpace(p.Name)
		if name == "" {
			return nil, domain.ValidationError{Field: field + ".name", Msg: "required"}
		}
		if p.Age < 0 || p.Age > 125 {
			return nil, domain.ValidationError{Field: field + ".age", Msg: "out of range"}
		}
		gender, ok := normalizeGender(p.Gender)
		if !ok {
			return nil, domain.ValidationError{Field: field + ".gender", Msg: "must be Male, Female or Other"}
		}
		out = append(out, models.PassengerInput{Name: name, Age: p.Age, Gender: gender})
	}
	return out, nil
}

func (s BookingService) stationID(ctx context.Context, field, name string) (int64, error) {
	id, err := s.Catalog.StationIDByName(ctx, name)
	if err != nil {
		if domain.IsNotFound(err) {
			return 0, domain.ValidationError{Field: field, Msg: fmt.Sprintf("unknown station %q", name), Err: err}
		}
		return 0, err
	}
	return id, nil
}

func normalizeGender(g string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case "m", "male":
		return "Male", true
	case "f", "female":
		return "Female", true
	case "o", "other", "":
		return "Other", true
	}
	return "", false
}

func (s BookingService) racQuota() float64 {
	if s.RACQuota > 0 {
		return s.RACQuota
	}
	return allocation.DefaultRACQuota
}

func (s BookingService) lockTimeout() time.Duration {
	if s.LockTimeout > 0 {
		return s.LockTimeout
	}
	return defaultLockTimeout
}

func (s BookingService) backoff() time.Duration {
	if s.RetryBackoff > 0 {
		return s.RetryBackoff
	}
	return defaultRetryBackoff
}

func (s BookingService) newPNR() string {
	if s.NewPNR != nil {
		return s.NewPNR()
	}
	return utils.NewPNR()
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
