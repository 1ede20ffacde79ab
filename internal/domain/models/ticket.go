package models

import (
	"fmt"
	"time"
)

// TicketStatus mirrors the tickets.status enum.
type TicketStatus string

const (
	StatusConfirmed TicketStatus = "Confirmed"
	StatusRAC       TicketStatus = "RAC"
	StatusWaitlist  TicketStatus = "Waitlist"
	StatusCancelled TicketStatus = "Cancelled"
)

// Cancellable reports whether the status may still move to Cancelled.
func (s TicketStatus) Cancellable() bool {
	switch s {
	case StatusConfirmed, StatusRAC, StatusWaitlist:
		return true
	}
	return false
}

// RefundProcessed is the only refund status written by the cancellation engine.
const RefundProcessed = "Processed"

// Bucket scopes capacity and ordinal counting.
type Bucket struct {
	TrainID     int64
	ClassID     int64
	JourneyDate time.Time
}

func (b Bucket) Key() string {
	return fmt.Sprintf("bucket:%d:%d:%s", b.TrainID, b.ClassID, b.JourneyDate.Format("2006-01-02"))
}

// BucketCounts holds non-cancelled ticket counts for one bucket.
type BucketCounts struct {
	Confirmed int
	RAC       int
	Waitlist  int
}

// Held counts tickets holding a guaranteed or reserve slot.
func (c BucketCounts) Held() int {
	return c.Confirmed + c.RAC
}

type Ticket struct {
	ID                   int64        `json:"ticketId"`
	BookingID            int64        `json:"bookingId"`
	PNR                  string       `json:"pnrNumber"`
	PassengerID          int64        `json:"passengerId"`
	TrainID              int64        `json:"trainId"`
	ClassID              int64        `json:"classId"`
	SourceStationID      int64        `json:"sourceStationId"`
	DestinationStationID int64        `json:"destinationStationId"`
	JourneyDate          time.Time    `json:"journeyDate"`
	Status               TicketStatus `json:"status"`
	AllocatedStatus      TicketStatus `json:"-"`
	Ordinal              int          `json:"-"`
	SeatNumber           string       `json:"seatNumber"`
	Fare                 float64      `json:"fare"`
	CreatedAt            time.Time    `json:"createdAt"`

	Passenger Passenger `json:"passenger"`
}

func (t Ticket) Bucket() Bucket {
	return Bucket{TrainID: t.TrainID, ClassID: t.ClassID, JourneyDate: t.JourneyDate}
}

// Cancellation is written exactly once per cancelled ticket.
type Cancellation struct {
	ID           int64     `json:"cancellationId"`
	TicketID     int64     `json:"ticketId"`
	RefundAmount float64   `json:"refundAmount"`
	RefundStatus string    `json:"refundStatus"`
	CreatedAt    time.Time `json:"createdAt"`
}
