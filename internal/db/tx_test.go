package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"railway-backend/internal/domain"
)

const testKey = "bucket:1:2:2025-06-01"

func TestInBucketCommitsBeforeReleasingLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT GET_LOCK").WithArgs(testKey, 5).
		WillReturnRows(sqlmock.NewRows([]string{"got"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()
	mock.ExpectExec("SELECT RELEASE_LOCK").WithArgs(testKey).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = InBucket(context.Background(), db, testKey, 5*time.Second, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO tickets (ticket_id) VALUES (7)")
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBucketLockTimeoutIsCapacityRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT GET_LOCK").WithArgs(testKey, 1).
		WillReturnRows(sqlmock.NewRows([]string{"got"}).AddRow(0))

	called := false
	err = InBucket(context.Background(), db, testKey, 300*time.Millisecond, func(tx *sql.Tx) error {
		called = true
		return nil
	})
	if !domain.IsCapacityRace(err) {
		t.Fatalf("expected CapacityRaceError, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run without the lock")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBucketRollsBackOnCallbackError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"got"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectExec("SELECT RELEASE_LOCK").WillReturnResult(sqlmock.NewResult(0, 1))

	want := domain.OverflowError{Ordinal: 1000, Limit: 999}
	err = InBucket(context.Background(), db, testKey, time.Second, func(tx *sql.Tx) error {
		return want
	})
	if !domain.IsOverflow(err) {
		t.Fatalf("expected OverflowError to pass through, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInBucketDeadlockNamesBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"got"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectExec("SELECT RELEASE_LOCK").WillReturnResult(sqlmock.NewResult(0, 1))

	err = InBucket(context.Background(), db, testKey, time.Second, func(tx *sql.Tx) error {
		return &mysql.MySQLError{Number: ErrLockDeadlock, Message: "Deadlock found"}
	})
	var race domain.CapacityRaceError
	if !errors.As(err, &race) {
		t.Fatalf("expected CapacityRaceError, got %v", err)
	}
	if race.Bucket != testKey {
		t.Fatalf("bucket = %q, want %q", race.Bucket, testKey)
	}
}

func TestClassify(t *testing.T) {
	if Classify("op", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
	if !domain.IsCapacityRace(Classify("op", &mysql.MySQLError{Number: ErrLockWaitTimeout})) {
		t.Fatalf("1205 should map to CapacityRaceError")
	}
	if !domain.IsNotFound(Classify("ticket", sql.ErrNoRows)) {
		t.Fatalf("ErrNoRows should map to NotFoundError")
	}
	if !domain.IsPersistence(Classify("op", errors.New("connection refused"))) {
		t.Fatalf("unknown errors should map to PersistenceError")
	}
	if !domain.IsConflict(Classify("op", domain.ConflictError{Resource: "pnr"})) {
		t.Fatalf("domain errors should pass through")
	}
	if !IsDuplicateKey(&mysql.MySQLError{Number: ErrDupEntry}) {
		t.Fatalf("1062 should be a duplicate key")
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("tickets").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("tickets"))
	for range schemaStatements {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for _, col := range []string{"allocated_status", "ordinal", "pnr_number"} {
		mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets", col).
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow(col))
	}

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaFreshInstallSkipsColumnCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("tickets").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
	for range schemaStatements {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaReportsLegacyTickets(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("information_schema\\.tables").WithArgs("tickets").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("tickets"))
	for range schemaStatements {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery("information_schema\\.columns").WithArgs("tickets", "allocated_status").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	if err := EnsureSchema(context.Background(), db); err == nil {
		t.Fatalf("expected error for tickets table without allocated_status")
	}
}
