package db

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stations (
		station_id INT AUTO_INCREMENT PRIMARY KEY,
		station_name VARCHAR(100) NOT NULL UNIQUE,
		station_code VARCHAR(10) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS trains (
		train_id INT AUTO_INCREMENT PRIMARY KEY,
		train_number VARCHAR(10) NOT NULL UNIQUE,
		train_name VARCHAR(100) NOT NULL,
		source_station_id INT NOT NULL,
		destination_station_id INT NOT NULL,
		departure_time TIME NOT NULL,
		arrival_time TIME NOT NULL,
		FOREIGN KEY (source_station_id) REFERENCES stations(station_id),
		FOREIGN KEY (destination_station_id) REFERENCES stations(station_id)
	)`,
	`CREATE TABLE IF NOT EXISTS train_classes (
		class_id INT AUTO_INCREMENT PRIMARY KEY,
		train_id INT NOT NULL,
		class_type ENUM('Sleeper','AC 3-tier','AC 2-tier','First Class') NOT NULL,
		total_seats INT NOT NULL,
		fare_per_km DECIMAL(10,2) NOT NULL,
		UNIQUE KEY uq_train_class (train_id, class_type),
		FOREIGN KEY (train_id) REFERENCES trains(train_id)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		pnr_number CHAR(10) NOT NULL UNIQUE,
		user_id INT NOT NULL,
		train_id INT NOT NULL,
		class_id INT NOT NULL,
		source_station_id INT NOT NULL,
		destination_station_id INT NOT NULL,
		journey_date DATE NOT NULL,
		total_fare DECIMAL(10,2) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_user (user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		passenger_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		name VARCHAR(100) NOT NULL,
		age INT NOT NULL,
		gender ENUM('Male','Female','Other') NOT NULL,
		FOREIGN KEY (booking_id) REFERENCES bookings(booking_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		ticket_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT NOT NULL,
		pnr_number CHAR(10) NOT NULL,
		passenger_id BIGINT NOT NULL,
		train_id INT NOT NULL,
		class_id INT NOT NULL,
		source_station_id INT NOT NULL,
		destination_station_id INT NOT NULL,
		journey_date DATE NOT NULL,
		status ENUM('Confirmed','RAC','Waitlist','Cancelled') NOT NULL,
		allocated_status ENUM('Confirmed','RAC','Waitlist') NOT NULL,
		ordinal INT NOT NULL,
		seat_number VARCHAR(10) NOT NULL,
		fare DECIMAL(10,2) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_ticket_slot (train_id, class_id, journey_date, allocated_status, ordinal),
		KEY idx_ticket_bucket (train_id, class_id, journey_date, status),
		KEY idx_ticket_pnr (pnr_number),
		FOREIGN KEY (booking_id) REFERENCES bookings(booking_id),
		FOREIGN KEY (passenger_id) REFERENCES passengers(passenger_id)
	)`,
	`CREATE TABLE IF NOT EXISTS cancellations (
		cancellation_id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ticket_id BIGINT NOT NULL UNIQUE,
		refund_amount DECIMAL(10,2) NOT NULL,
		refund_status VARCHAR(20) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (ticket_id) REFERENCES tickets(ticket_id)
	)`,
}

// EnsureSchema creates missing tables. A tickets table that predates this
// service is checked for the required columns, which are reported instead
// of altered.
func EnsureSchema(ctx context.Context, q Querier) error {
	existing := HasTable(ctx, q, "tickets")
	for _, stmt := range schemaStatements {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	if !existing {
		return nil
	}
	for _, col := range []string{"allocated_status", "ordinal", "pnr_number"} {
		if !HasColumn(ctx, q, "tickets", col) {
			return fmt.Errorf("ensure schema: tickets.%s missing, migrate the table first", col)
		}
	}
	return nil
}
