package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intdb "railway-backend/internal/db"
	"railway-backend/internal/domain"
	"railway-backend/internal/domain/models"
	"railway-backend/internal/utils"
)

// CatalogRepository serves the read-mostly reference data: stations, trains
// and their classes, plus seat availability derived from tickets.
type CatalogRepository struct {
	DB *sql.DB
}

func (r CatalogRepository) ClassForTrain(ctx context.Context, trainID int64, classType models.ClassType) (models.TrainClass, error) {
	var tc models.TrainClass
	var ct string
	err := r.DB.QueryRowContext(ctx, `
		SELECT class_id, train_id, class_type, total_seats, fare_per_km
		FROM train_classes
		WHERE train_id = ? AND class_type = ?
		LIMIT 1
	`, trainID, string(classType)).Scan(&tc.ID, &tc.TrainID, &ct, &tc.TotalSeats, &tc.FarePerKm)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TrainClass{}, domain.NotFoundError{Resource: "train class", Err: err}
	}
	if err != nil {
		return models.TrainClass{}, intdb.Classify("class for train", err)
	}
	tc.Type = models.ClassType(ct)
	return tc, nil
}

// StationIDByName resolves a station by exact name or code.
func (r CatalogRepository) StationIDByName(ctx context.Context, name string) (int64, error) {
	name = utils.NormalizeSpace(name)
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		SELECT station_id
		FROM stations
		WHERE station_name = ? OR station_code = ?
		LIMIT 1
	`, name, strings.ToUpper(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "station", Err: err}
	}
	if err != nil {
		return 0, intdb.Classify("station by name", err)
	}
	return id, nil
}

// SearchStations autocompletes on name or code, at most 10 rows.
func (r CatalogRepository) SearchStations(ctx context.Context, query string) ([]models.Station, error) {
	like := "%" + utils.NormalizeSpace(query) + "%"
	rows, err := r.DB.QueryContext(ctx, `
		SELECT station_id, station_name, station_code
		FROM stations
		WHERE station_name LIKE ? OR station_code LIKE ?
		ORDER BY station_name ASC
		LIMIT 10
	`, like, like)
	if err != nil {
		return nil, intdb.Classify("search stations", err)
	}
	defer rows.Close()

	out := []models.Station{}
	for rows.Next() {
		var s models.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Code); err != nil {
			return nil, intdb.Classify("search stations", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, intdb.Classify("search stations", err)
	}
	return out, nil
}

// SearchTrains lists trains whose endpoints match source and destination,
// with per-class availability on date.
func (r CatalogRepository) SearchTrains(ctx context.Context, source, destination string, date time.Time) ([]models.Train, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT t.train_id, t.train_number, t.train_name, s1.station_name, s2.station_name,
			CAST(t.departure_time AS CHAR), CAST(t.arrival_time AS CHAR),
			tc.class_id, tc.class_type, tc.total_seats, tc.fare_per_km,
			(SELECT COUNT(*) FROM tickets tt
			 WHERE tt.train_id = t.train_id AND tt.class_id = tc.class_id
			   AND tt.journey_date = ? AND tt.status IN ('Confirmed', 'RAC')) AS held
		FROM trains t
		JOIN stations s1 ON s1.station_id = t.source_station_id
		JOIN stations s2 ON s2.station_id = t.destination_station_id
		JOIN train_classes tc ON tc.train_id = t.train_id
		WHERE (s1.station_name LIKE ? OR s1.station_code = ?)
		  AND (s2.station_name LIKE ? OR s2.station_code = ?)
		ORDER BY t.departure_time, t.train_id, tc.class_id
	`, utils.FormatDate(date),
		"%"+utils.NormalizeSpace(source)+"%", strings.ToUpper(strings.TrimSpace(source)),
		"%"+utils.NormalizeSpace(destination)+"%", strings.ToUpper(strings.TrimSpace(destination)))
	if err != nil {
		return nil, intdb.Classify("search trains", err)
	}
	defer rows.Close()

	out := []models.Train{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			t    models.Train
			ca   models.ClassAvailability
			ct   string
			held int
		)
		if err := rows.Scan(&t.ID, &t.Number, &t.Name, &t.SourceStation, &t.DestinationStation,
			&t.DepartureTime, &t.ArrivalTime,
			&ca.ID, &ct, &ca.TotalSeats, &ca.FarePerKm, &held); err != nil {
			return nil, intdb.Classify("search trains", err)
		}
		ca.TrainID = t.ID
		ca.Type = models.ClassType(ct)
		ca.AvailableSeats = available(ca.TotalSeats, held)

		i, ok := index[t.ID]
		if !ok {
			t.Classes = []models.ClassAvailability{}
			out = append(out, t)
			i = len(out) - 1
			index[t.ID] = i
		}
		out[i].Classes = append(out[i].Classes, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, intdb.Classify("search trains", err)
	}
	return out, nil
}

// ClassAvailability returns capacity minus held seats for one bucket.
func (r CatalogRepository) ClassAvailability(ctx context.Context, trainID int64, classType models.ClassType, date time.Time) (models.ClassAvailability, error) {
	tc, err := r.ClassForTrain(ctx, trainID, classType)
	if err != nil {
		return models.ClassAvailability{}, err
	}
	var held int
	err = r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM tickets
		WHERE train_id = ? AND class_id = ? AND journey_date = ?
		  AND status IN ('Confirmed', 'RAC')
	`, trainID, tc.ID, utils.FormatDate(date)).Scan(&held)
	if err != nil {
		return models.ClassAvailability{}, intdb.Classify("class availability", err)
	}
	return models.ClassAvailability{TrainClass: tc, AvailableSeats: available(tc.TotalSeats, held)}, nil
}

func available(capacity, held int) int {
	if held >= capacity {
		return 0
	}
	return capacity - held
}
