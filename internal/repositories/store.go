package repositories

import (
	"context"
	"database/sql"
	"time"

	intdb "railway-backend/internal/db"
	"railway-backend/internal/domain/models"
)

// TicketTx is the unit of work the booking writer and the refund engine run
// against. Every call shares one transaction.
type TicketTx interface {
	CountBucket(ctx context.Context, b models.Bucket) (models.BucketCounts, error)
	LastOrdinal(ctx context.Context, b models.Bucket, status models.TicketStatus) (int, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	InsertPassenger(ctx context.Context, p *models.Passenger) error
	InsertTicket(ctx context.Context, t *models.Ticket) error

	BookingByPNR(ctx context.Context, pnr string) (models.Booking, error)
	TicketsByPNRForUpdate(ctx context.Context, pnr string) ([]models.Ticket, error)
	MarkCancelled(ctx context.Context, ticketID int64) error
	InsertCancellation(ctx context.Context, c *models.Cancellation) error
}

// Store opens transactional units of work on DB.
type Store struct {
	DB *sql.DB
}

// InBucket runs fn while holding the bucket's named lock, so counting,
// deciding and inserting are serialized per (train, class, journey date).
func (s Store) InBucket(ctx context.Context, bucket models.Bucket, timeout time.Duration, fn func(TicketTx) error) error {
	return intdb.InBucket(ctx, s.DB, bucket.Key(), timeout, func(tx *sql.Tx) error {
		return fn(TicketRepository{Q: tx})
	})
}

// InTx runs fn in a plain transaction. Row locks come from the FOR UPDATE
// reads in TicketTx.
func (s Store) InTx(ctx context.Context, fn func(TicketTx) error) error {
	return intdb.InTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(TicketRepository{Q: tx})
	})
}
