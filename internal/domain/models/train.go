package models

import "strings"

// ClassType mirrors the train_classes.class_type enum.
type ClassType string

const (
	ClassSleeper ClassType = "Sleeper"
	ClassAC3     ClassType = "AC 3-tier"
	ClassAC2     ClassType = "AC 2-tier"
	ClassFirst   ClassType = "First Class"
)

// ClassTypes lists the valid class types in display order.
var ClassTypes = []ClassType{ClassSleeper, ClassAC3, ClassAC2, ClassFirst}

// ParseClassType accepts the stored names plus the short codes used by
// clients (SL, 3A, 2A, 1A).
func ParseClassType(s string) (ClassType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SLEEPER", "SL", "S":
		return ClassSleeper, true
	case "AC 3-TIER", "AC3", "3A", "A3":
		return ClassAC3, true
	case "AC 2-TIER", "AC2", "2A", "A2":
		return ClassAC2, true
	case "FIRST CLASS", "FIRST", "1A", "F":
		return ClassFirst, true
	}
	return "", false
}

type Station struct {
	ID   int64  `json:"stationId"`
	Name string `json:"stationName"`
	Code string `json:"stationCode"`
}

// TrainClass is immutable reference data once a train is scheduled.
type TrainClass struct {
	ID         int64     `json:"classId"`
	TrainID    int64     `json:"trainId"`
	Type       ClassType `json:"classType"`
	TotalSeats int       `json:"totalSeats"`
	FarePerKm  float64   `json:"farePerKm"`
}

// ClassAvailability is a TrainClass with seats left for one journey date.
type ClassAvailability struct {
	TrainClass
	AvailableSeats int `json:"availableSeats"`
}

type Train struct {
	ID                 int64               `json:"trainId"`
	Number             string              `json:"trainNumber"`
	Name               string              `json:"trainName"`
	SourceStation      string              `json:"sourceStation"`
	DestinationStation string              `json:"destinationStation"`
	DepartureTime      string              `json:"departureTime"`
	ArrivalTime        string              `json:"arrivalTime"`
	Classes            []ClassAvailability `json:"classAvailability"`
}
