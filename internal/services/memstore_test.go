package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/repositories"
	"railway-backend/internal/utils"
)

// memStore is an in-memory TicketStore, Catalog, BookingReader and UserStore.
// InBucket serializes per bucket key and InTx serializes cancellations, like
// the named lock and the FOR UPDATE reads of the MySQL store. Writes are
// staged per transaction and applied on commit.
type memStore struct {
	mu            sync.Mutex
	bucketLocks   map[string]*sync.Mutex
	txMu          sync.Mutex
	nextID        int64
	trains        []models.Train
	classes       []models.TrainClass
	stations      []models.Station
	bookings      []models.Booking
	passengers    []models.Passenger
	tickets       []models.Ticket
	cancellations []models.Cancellation
	users         []models.User
	takenPNRs     map[string]bool

	// contention makes the next n InBucket calls fail as a lost race.
	contention int
	attempts   int
}

func newMemStore(classes []models.TrainClass) *memStore {
	return &memStore{
		bucketLocks: map[string]*sync.Mutex{},
		classes:     classes,
		stations: []models.Station{
			{ID: 1, Name: "Mumbai Central", Code: "MMCT"},
			{ID: 2, Name: "New Delhi", Code: "NDLS"},
		},
		trains: []models.Train{
			{ID: 1, Number: "12951", Name: "Mumbai Rajdhani", SourceStation: "Mumbai Central", DestinationStation: "New Delhi"},
		},
		takenPNRs: map[string]bool{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) bucketLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.bucketLocks[key]
	if !ok {
		l = &sync.Mutex{}
		m.bucketLocks[key] = l
	}
	return l
}

func (m *memStore) InBucket(ctx context.Context, bucket models.Bucket, timeout time.Duration, fn func(repositories.TicketTx) error) error {
	m.mu.Lock()
	m.attempts++
	if m.contention > 0 {
		m.contention--
		m.mu.Unlock()
		return domain.CapacityRaceError{Bucket: bucket.Key()}
	}
	m.mu.Unlock()

	l := m.bucketLock(bucket.Key())
	l.Lock()
	defer l.Unlock()
	return m.run(fn)
}

func (m *memStore) InTx(ctx context.Context, fn func(repositories.TicketTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return m.run(fn)
}

func (m *memStore) run(fn func(repositories.TicketTx) error) error {
	tx := &memTx{s: m, cancelled: map[int64]bool{}}
	if err := fn(tx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, tx.bookings...)
	m.passengers = append(m.passengers, tx.passengers...)
	m.tickets = append(m.tickets, tx.tickets...)
	for i := range m.tickets {
		if tx.cancelled[m.tickets[i].ID] {
			m.tickets[i].Status = models.StatusCancelled
		}
	}
	m.cancellations = append(m.cancellations, tx.cancellations...)
	return nil
}

// seedTicket stores a committed ticket directly.
func (m *memStore) seedTicket(t models.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.tickets = append(m.tickets, t)
}

func (m *memStore) snapshotTickets() []models.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Ticket, len(m.tickets))
	copy(out, m.tickets)
	return out
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) cancellationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cancellations)
}

type memTx struct {
	s             *memStore
	bookings      []models.Booking
	passengers    []models.Passenger
	tickets       []models.Ticket
	cancelled     map[int64]bool
	cancellations []models.Cancellation
}

// view returns committed plus staged tickets with staged cancellations
// applied. Caller holds s.mu.
func (tx *memTx) view() []models.Ticket {
	out := make([]models.Ticket, 0, len(tx.s.tickets)+len(tx.tickets))
	out = append(out, tx.s.tickets...)
	out = append(out, tx.tickets...)
	for i := range out {
		if tx.cancelled[out[i].ID] {
			out[i].Status = models.StatusCancelled
		}
	}
	return out
}

func sameBucket(t models.Ticket, b models.Bucket) bool {
	return t.TrainID == b.TrainID && t.ClassID == b.ClassID &&
		utils.FormatDate(t.JourneyDate) == utils.FormatDate(b.JourneyDate)
}

func (tx *memTx) CountBucket(ctx context.Context, b models.Bucket) (models.BucketCounts, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	var c models.BucketCounts
	for _, t := range tx.view() {
		if !sameBucket(t, b) {
			continue
		}
		switch t.Status {
		case models.StatusConfirmed:
			c.Confirmed++
		case models.StatusRAC:
			c.RAC++
		case models.StatusWaitlist:
			c.Waitlist++
		}
	}
	return c, nil
}

func (tx *memTx) LastOrdinal(ctx context.Context, b models.Bucket, status models.TicketStatus) (int, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	last := 0
	for _, t := range tx.view() {
		if sameBucket(t, b) && t.AllocatedStatus == status && t.Ordinal > last {
			last = t.Ordinal
		}
	}
	return last, nil
}

func (tx *memTx) InsertBooking(ctx context.Context, b *models.Booking) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if tx.s.takenPNRs[b.PNR] {
		return domain.ConflictError{Resource: "pnr", Msg: "pnr already issued"}
	}
	for _, existing := range append(append([]models.Booking{}, tx.s.bookings...), tx.bookings...) {
		if existing.PNR == b.PNR {
			return domain.ConflictError{Resource: "pnr", Msg: "pnr already issued"}
		}
	}
	b.ID = tx.s.id()
	tx.bookings = append(tx.bookings, *b)
	return nil
}

func (tx *memTx) InsertPassenger(ctx context.Context, p *models.Passenger) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	p.ID = tx.s.id()
	tx.passengers = append(tx.passengers, *p)
	return nil
}

func (tx *memTx) InsertTicket(ctx context.Context, t *models.Ticket) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, existing := range tx.view() {
		if sameBucket(existing, t.Bucket()) && existing.AllocatedStatus == t.AllocatedStatus && existing.Ordinal == t.Ordinal {
			return domain.CapacityRaceError{Bucket: t.Bucket().Key()}
		}
	}
	t.ID = tx.s.id()
	tx.tickets = append(tx.tickets, *t)
	return nil
}

func (tx *memTx) BookingByPNR(ctx context.Context, pnr string) (models.Booking, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, b := range tx.s.bookings {
		if b.PNR == pnr {
			return b, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "pnr"}
}

func (tx *memTx) TicketsByPNRForUpdate(ctx context.Context, pnr string) ([]models.Ticket, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	out := []models.Ticket{}
	for _, t := range tx.view() {
		if t.PNR == pnr {
			out = append(out, t)
		}
	}
	return out, nil
}

func (tx *memTx) MarkCancelled(ctx context.Context, ticketID int64) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, t := range tx.view() {
		if t.ID != ticketID {
			continue
		}
		if t.Status == models.StatusCancelled {
			return domain.ConflictError{Resource: "ticket", Msg: "ticket already cancelled"}
		}
		tx.cancelled[ticketID] = true
		return nil
	}
	return domain.NotFoundError{Resource: "ticket"}
}

func (tx *memTx) InsertCancellation(ctx context.Context, c *models.Cancellation) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for _, existing := range append(append([]models.Cancellation{}, tx.s.cancellations...), tx.cancellations...) {
		if existing.TicketID == c.TicketID {
			return domain.ConflictError{Resource: "ticket", Msg: "ticket already cancelled"}
		}
	}
	c.ID = tx.s.id()
	tx.cancellations = append(tx.cancellations, *c)
	return nil
}

// Catalog

func (m *memStore) ClassForTrain(ctx context.Context, trainID int64, classType models.ClassType) (models.TrainClass, error) {
	for _, c := range m.classes {
		if c.TrainID == trainID && c.Type == classType {
			return c, nil
		}
	}
	return models.TrainClass{}, domain.NotFoundError{Resource: "train class"}
}

func (m *memStore) StationIDByName(ctx context.Context, name string) (int64, error) {
	for _, s := range m.stations {
		if s.Name == strings.TrimSpace(name) || s.Code == strings.ToUpper(strings.TrimSpace(name)) {
			return s.ID, nil
		}
	}
	return 0, domain.NotFoundError{Resource: "station"}
}

func (m *memStore) ClassAvailability(ctx context.Context, trainID int64, classType models.ClassType, date time.Time) (models.ClassAvailability, error) {
	tc, err := m.ClassForTrain(ctx, trainID, classType)
	if err != nil {
		return models.ClassAvailability{}, err
	}
	counts, _ := (&memTx{s: m, cancelled: map[int64]bool{}}).CountBucket(ctx, models.Bucket{TrainID: trainID, ClassID: tc.ID, JourneyDate: date})
	left := tc.TotalSeats - counts.Held()
	if left < 0 {
		left = 0
	}
	return models.ClassAvailability{TrainClass: tc, AvailableSeats: left}, nil
}

func (m *memStore) SearchTrains(ctx context.Context, source, destination string, date time.Time) ([]models.Train, error) {
	out := []models.Train{}
	for _, t := range m.trains {
		if !strings.Contains(t.SourceStation, source) || !strings.Contains(t.DestinationStation, destination) {
			continue
		}
		t.Classes = []models.ClassAvailability{}
		for _, c := range m.classes {
			if c.TrainID != t.ID {
				continue
			}
			ca, _ := m.ClassAvailability(ctx, t.ID, c.Type, date)
			t.Classes = append(t.Classes, ca)
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memStore) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	out := []models.Station{}
	q := strings.ToLower(strings.TrimSpace(query))
	for _, s := range m.stations {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Code), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

// BookingReader

func (m *memStore) PNRDetail(ctx context.Context, pnr string) (models.PNRDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.PNR == pnr {
			return m.detail(b), nil
		}
	}
	return models.PNRDetail{}, domain.NotFoundError{Resource: "pnr"}
}

func (m *memStore) BookingsByUser(ctx context.Context, userID int64) ([]models.PNRDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.PNRDetail{}
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, m.detail(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].JourneyDate.After(out[j].JourneyDate) })
	return out, nil
}

func (m *memStore) detail(b models.Booking) models.PNRDetail {
	d := models.PNRDetail{PNR: b.PNR, UserID: b.UserID, JourneyDate: b.JourneyDate, TotalFare: b.TotalFare, Passengers: []models.PNRPassenger{}}
	for _, c := range m.classes {
		if c.ID == b.ClassID {
			d.ClassType = c.Type
		}
	}
	for _, t := range m.tickets {
		if t.BookingID != b.ID {
			continue
		}
		p := models.PNRPassenger{TicketID: t.ID, SeatNumber: t.SeatNumber, Status: t.Status, Fare: t.Fare}
		for _, ps := range m.passengers {
			if ps.ID == t.PassengerID {
				p.Name, p.Age, p.Gender = ps.Name, ps.Age, ps.Gender
			}
		}
		d.Passengers = append(d.Passengers, p)
	}
	return d
}

// UserStore

func (m *memStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return domain.ConflictError{Resource: "user", Msg: "username or email already registered"}
		}
	}
	u.ID = m.id()
	u.Email = strings.ToLower(u.Email)
	m.users = append(m.users, *u)
	return nil
}

func (m *memStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}
