package models

import "time"

// Booking is one booking request; its PNR is shared by all of its tickets.
type Booking struct {
	ID                   int64     `json:"bookingId"`
	PNR                  string    `json:"pnrNumber"`
	UserID               int64     `json:"userId"`
	TrainID              int64     `json:"trainId"`
	ClassID              int64     `json:"classId"`
	SourceStationID      int64     `json:"sourceStationId"`
	DestinationStationID int64     `json:"destinationStationId"`
	JourneyDate          time.Time `json:"journeyDate"`
	TotalFare            float64   `json:"totalFare"`
	CreatedAt            time.Time `json:"createdAt"`
}

type Passenger struct {
	ID        int64  `json:"passengerId"`
	BookingID int64  `json:"bookingId"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
}

// PassengerInput carries per-passenger data from the booking request.
type PassengerInput struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

type BookingRequest struct {
	TrainID            int64
	JourneyDate        time.Time
	ClassType          ClassType
	SourceStation      string
	DestinationStation string
	Passengers         []PassengerInput
	TotalFare          float64
}

type TicketResult struct {
	TicketID      int64        `json:"ticketId"`
	PassengerName string       `json:"passengerName"`
	Status        TicketStatus `json:"status"`
	SeatNumber    string       `json:"seatNumber"`
	Fare          float64      `json:"fare"`
}

type BookingResult struct {
	PNR        string         `json:"pnrNumber"`
	Status     TicketStatus   `json:"status"`
	SeatNumber string         `json:"seatNumber"`
	TotalFare  float64        `json:"totalFare"`
	Tickets    []TicketResult `json:"tickets"`
}

type CancelledTicket struct {
	TicketID     int64   `json:"ticketId"`
	SeatNumber   string  `json:"seatNumber"`
	RefundAmount float64 `json:"refundAmount"`
}

type CancellationResult struct {
	PNR          string            `json:"pnrNumber"`
	Status       TicketStatus      `json:"status"`
	RefundAmount float64           `json:"refundAmount"`
	Tickets      []CancelledTicket `json:"tickets"`
}

// PNRPassenger is one passenger line of a PNR status view.
type PNRPassenger struct {
	TicketID   int64        `json:"ticketId"`
	Name       string       `json:"name"`
	Age        int          `json:"age"`
	Gender     string       `json:"gender"`
	SeatNumber string       `json:"seatNumber"`
	Status     TicketStatus `json:"status"`
	Fare       float64      `json:"fare"`
}

// PNRDetail is the booking-level view returned by PNR lookups.
type PNRDetail struct {
	PNR                string         `json:"pnrNumber"`
	UserID             int64          `json:"-"`
	TrainNumber        string         `json:"trainNumber"`
	TrainName          string         `json:"trainName"`
	ClassType          ClassType      `json:"classType"`
	SourceStation      string         `json:"sourceStation"`
	DestinationStation string         `json:"destinationStation"`
	JourneyDate        time.Time      `json:"journeyDate"`
	TotalFare          float64        `json:"totalFare"`
	Passengers         []PNRPassenger `json:"passengers"`
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
