package repositories

import (
	"context"
	"database/sql"
	"errors"

	intdb "railway-backend/internal/db"
	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

// TicketRepository reads and writes bookings, passengers, tickets and
// cancellations. Q is a *sql.Tx inside Store.InBucket / Store.InTx and the
// pool for plain reads.
type TicketRepository struct {
	Q intdb.Querier
}

const ticketColumns = `
	t.ticket_id, t.booking_id, t.pnr_number, t.passenger_id, t.train_id, t.class_id,
	t.source_station_id, t.destination_station_id, t.journey_date,
	t.status, t.allocated_status, t.ordinal, t.seat_number, t.fare, t.created_at,
	p.name, p.age, p.gender`

// CountBucket counts non-cancelled tickets of a bucket per status.
func (r TicketRepository) CountBucket(ctx context.Context, b models.Bucket) (models.BucketCounts, error) {
	rows, err := r.Q.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM tickets
		WHERE train_id = ? AND class_id = ? AND journey_date = ?
		  AND status <> 'Cancelled'
		GROUP BY status
	`, b.TrainID, b.ClassID, utils.FormatDate(b.JourneyDate))
	if err != nil {
		return models.BucketCounts{}, intdb.Classify("count bucket", err)
	}
	defer rows.Close()

	var counts models.BucketCounts
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return models.BucketCounts{}, intdb.Classify("count bucket", err)
		}
		switch models.TicketStatus(status) {
		case models.StatusConfirmed:
			counts.Confirmed = n
		case models.StatusRAC:
			counts.RAC = n
		case models.StatusWaitlist:
			counts.Waitlist = n
		}
	}
	if err := rows.Err(); err != nil {
		return models.BucketCounts{}, intdb.Classify("count bucket", err)
	}
	return counts, nil
}

// LastOrdinal returns the highest ordinal ever issued for status in the
// bucket, cancelled tickets included. Zero when none was issued.
func (r TicketRepository) LastOrdinal(ctx context.Context, b models.Bucket, status models.TicketStatus) (int, error) {
	var last int
	err := r.Q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(ordinal), 0)
		FROM tickets
		WHERE train_id = ? AND class_id = ? AND journey_date = ? AND allocated_status = ?
	`, b.TrainID, b.ClassID, utils.FormatDate(b.JourneyDate), string(status)).Scan(&last)
	if err != nil {
		return 0, intdb.Classify("last ordinal", err)
	}
	return last, nil
}

// InsertBooking stores the booking header and sets b.ID. A taken PNR is
// reported as a ConflictError so the caller can draw a new one.
func (r TicketRepository) InsertBooking(ctx context.Context, b *models.Booking) error {
	res, err := r.Q.ExecContext(ctx, `
		INSERT INTO bookings (pnr_number, user_id, train_id, class_id,
			source_station_id, destination_station_id, journey_date, total_fare)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.PNR, b.UserID, b.TrainID, b.ClassID, b.SourceStationID, b.DestinationStationID,
		utils.FormatDate(b.JourneyDate), b.TotalFare)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "pnr", Msg: "pnr already issued", Err: err}
		}
		return intdb.Classify("insert booking", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return intdb.Classify("insert booking", err)
	}
	b.ID = id
	return nil
}

func (r TicketRepository) InsertPassenger(ctx context.Context, p *models.Passenger) error {
	res, err := r.Q.ExecContext(ctx, `
		INSERT INTO passengers (booking_id, name, age, gender)
		VALUES (?, ?, ?, ?)
	`, p.BookingID, p.Name, p.Age, p.Gender)
	if err != nil {
		return intdb.Classify("insert passenger", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return intdb.Classify("insert passenger", err)
	}
	p.ID = id
	return nil
}

// InsertTicket stores an allocated ticket and sets t.ID. A clash on the
// (bucket, allocated_status, ordinal) key means another writer slipped past
// the bucket lock and is retried as contention.
func (r TicketRepository) InsertTicket(ctx context.Context, t *models.Ticket) error {
	res, err := r.Q.ExecContext(ctx, `
		INSERT INTO tickets (booking_id, pnr_number, passenger_id, train_id, class_id,
			source_station_id, destination_station_id, journey_date,
			status, allocated_status, ordinal, seat_number, fare)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.BookingID, t.PNR, t.PassengerID, t.TrainID, t.ClassID,
		t.SourceStationID, t.DestinationStationID, utils.FormatDate(t.JourneyDate),
		string(t.Status), string(t.AllocatedStatus), t.Ordinal, t.SeatNumber, t.Fare)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.CapacityRaceError{Bucket: t.Bucket().Key(), Err: err}
		}
		return intdb.Classify("insert ticket", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return intdb.Classify("insert ticket", err)
	}
	t.ID = id
	return nil
}

func (r TicketRepository) BookingByPNR(ctx context.Context, pnr string) (models.Booking, error) {
	var b models.Booking
	err := r.Q.QueryRowContext(ctx, `
		SELECT booking_id, pnr_number, user_id, train_id, class_id,
			source_station_id, destination_station_id, journey_date, total_fare, created_at
		FROM bookings
		WHERE pnr_number = ?
		LIMIT 1
	`, pnr).Scan(&b.ID, &b.PNR, &b.UserID, &b.TrainID, &b.ClassID,
		&b.SourceStationID, &b.DestinationStationID, &b.JourneyDate, &b.TotalFare, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "pnr", Err: err}
	}
	if err != nil {
		return models.Booking{}, intdb.Classify("booking by pnr", err)
	}
	return b, nil
}

// TicketsByPNRForUpdate row-locks every ticket of the PNR until the
// surrounding transaction ends.
func (r TicketRepository) TicketsByPNRForUpdate(ctx context.Context, pnr string) ([]models.Ticket, error) {
	rows, err := r.Q.QueryContext(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t
		JOIN passengers p ON p.passenger_id = t.passenger_id
		WHERE t.pnr_number = ?
		ORDER BY t.ticket_id
		FOR UPDATE
	`, pnr)
	if err != nil {
		return nil, intdb.Classify("tickets by pnr", err)
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, intdb.Classify("tickets by pnr", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, intdb.Classify("tickets by pnr", err)
	}
	return out, nil
}

// MarkCancelled moves a live ticket to Cancelled. Cancelled is terminal, so
// a ticket already cancelled is a ConflictError.
func (r TicketRepository) MarkCancelled(ctx context.Context, ticketID int64) error {
	res, err := r.Q.ExecContext(ctx, `
		UPDATE tickets SET status = 'Cancelled'
		WHERE ticket_id = ? AND status <> 'Cancelled'
	`, ticketID)
	if err != nil {
		return intdb.Classify("cancel ticket", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return intdb.Classify("cancel ticket", err)
	}
	if n == 0 {
		return domain.ConflictError{Resource: "ticket", Msg: "ticket already cancelled"}
	}
	return nil
}

func (r TicketRepository) InsertCancellation(ctx context.Context, c *models.Cancellation) error {
	res, err := r.Q.ExecContext(ctx, `
		INSERT INTO cancellations (ticket_id, refund_amount, refund_status)
		VALUES (?, ?, ?)
	`, c.TicketID, c.RefundAmount, c.RefundStatus)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "ticket", Msg: "ticket already cancelled", Err: err}
		}
		return intdb.Classify("insert cancellation", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return intdb.Classify("insert cancellation", err)
	}
	c.ID = id
	return nil
}

const pnrViewQuery = `
	SELECT b.pnr_number, b.user_id, tr.train_number, tr.train_name, tc.class_type,
		s1.station_name, s2.station_name, b.journey_date, b.total_fare,
		t.ticket_id, p.name, p.age, p.gender, t.seat_number, t.status, t.fare
	FROM bookings b
	JOIN trains tr ON tr.train_id = b.train_id
	JOIN train_classes tc ON tc.class_id = b.class_id
	JOIN stations s1 ON s1.station_id = b.source_station_id
	JOIN stations s2 ON s2.station_id = b.destination_station_id
	JOIN tickets t ON t.booking_id = b.booking_id
	JOIN passengers p ON p.passenger_id = t.passenger_id
`

// PNRDetail returns the booking-level view of a PNR with one line per
// passenger.
func (r TicketRepository) PNRDetail(ctx context.Context, pnr string) (models.PNRDetail, error) {
	rows, err := r.Q.QueryContext(ctx, pnrViewQuery+`
		WHERE b.pnr_number = ?
		ORDER BY t.ticket_id
	`, pnr)
	if err != nil {
		return models.PNRDetail{}, intdb.Classify("pnr detail", err)
	}
	details, err := scanPNRViews(rows)
	if err != nil {
		return models.PNRDetail{}, err
	}
	if len(details) == 0 {
		return models.PNRDetail{}, domain.NotFoundError{Resource: "pnr"}
	}
	return details[0], nil
}

// BookingsByUser lists the user's bookings, latest journey first.
func (r TicketRepository) BookingsByUser(ctx context.Context, userID int64) ([]models.PNRDetail, error) {
	rows, err := r.Q.QueryContext(ctx, pnrViewQuery+`
		WHERE b.user_id = ?
		ORDER BY b.journey_date DESC, b.booking_id DESC, t.ticket_id
	`, userID)
	if err != nil {
		return nil, intdb.Classify("bookings by user", err)
	}
	return scanPNRViews(rows)
}

func scanPNRViews(rows *sql.Rows) ([]models.PNRDetail, error) {
	defer rows.Close()

	out := []models.PNRDetail{}
	index := map[string]int{}
	for rows.Next() {
		var (
			d  models.PNRDetail
			p  models.PNRPassenger
			ct string
			st string
		)
		if err := rows.Scan(&d.PNR, &d.UserID, &d.TrainNumber, &d.TrainName, &ct,
			&d.SourceStation, &d.DestinationStation, &d.JourneyDate, &d.TotalFare,
			&p.TicketID, &p.Name, &p.Age, &p.Gender, &p.SeatNumber, &st, &p.Fare); err != nil {
			return nil, intdb.Classify("scan pnr view", err)
		}
		d.ClassType = models.ClassType(ct)
		p.Status = models.TicketStatus(st)

		i, ok := index[d.PNR]
		if !ok {
			d.Passengers = []models.PNRPassenger{}
			out = append(out, d)
			i = len(out) - 1
			index[d.PNR] = i
		}
		out[i].Passengers = append(out[i].Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, intdb.Classify("scan pnr view", err)
	}
	return out, nil
}

func scanTicket(rows *sql.Rows) (models.Ticket, error) {
	var (
		t         models.Ticket
		status    string
		allocated string
	)
	err := rows.Scan(&t.ID, &t.BookingID, &t.PNR, &t.PassengerID, &t.TrainID, &t.ClassID,
		&t.SourceStationID, &t.DestinationStationID, &t.JourneyDate,
		&status, &allocated, &t.Ordinal, &t.SeatNumber, &t.Fare, &t.CreatedAt,
		&t.Passenger.Name, &t.Passenger.Age, &t.Passenger.Gender)
	if err != nil {
		return models.Ticket{}, err
	}
	t.Status = models.TicketStatus(status)
	t.AllocatedStatus = models.TicketStatus(allocated)
	t.Passenger.ID = t.PassengerID
	t.Passenger.BookingID = t.BookingID
	return t, nil
}
