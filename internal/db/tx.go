package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"railway-backend/internal/domain"
)

// MySQL server error numbers the store reacts to.
const (
	ErrDupEntry        = 1062
	ErrLockWaitTimeout = 1205
	ErrLockDeadlock    = 1213
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var errLockNotAcquired = errors.New("named lock not acquired")

func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return mysqlNumber(err) == ErrDupEntry
}

// IsContention reports lock wait timeouts and deadlocks.
func IsContention(err error) bool {
	n := mysqlNumber(err)
	return n == ErrLockWaitTimeout || n == ErrLockDeadlock
}

// Classify maps a raw store error to a domain error. Domain errors returned
// by callbacks pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case domain.IsValidation(err), domain.IsNotFound(err), domain.IsConflict(err),
		domain.IsCapacityRace(err), domain.IsOverflow(err), domain.IsPersistence(err),
		domain.IsUnauthorized(err), domain.IsInternal(err):
		return err
	case IsContention(err):
		return domain.CapacityRaceError{Err: err}
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: op, Err: err}
	}
	return domain.PersistenceError{Op: op, Err: err}
}

// InTx runs fn inside a transaction and commits when fn returns nil.
func InTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Classify("begin transaction", err)
	}
	return runTx(tx, fn)
}

// InBucket serializes fn against every other caller using the same key. It
// pins one connection, takes a MySQL named lock on it and runs fn in a READ
// COMMITTED transaction. The lock is released only after commit so the next
// holder sees the committed rows.
func InBucket(ctx context.Context, db *sql.DB, key string, timeout time.Duration, fn func(tx *sql.Tx) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return Classify("acquire connection", err)
	}
	defer conn.Close()

	if err := acquireNamedLock(ctx, conn, key, timeout); err != nil {
		if errors.Is(err, errLockNotAcquired) {
			return domain.CapacityRaceError{Bucket: key, Err: err}
		}
		return Classify("acquire bucket lock", err)
	}
	defer releaseNamedLock(conn, key)

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return Classify("begin transaction", err)
	}
	err = runTx(tx, fn)
	var race domain.CapacityRaceError
	if errors.As(err, &race) && race.Bucket == "" {
		race.Bucket = key
		return race
	}
	return err
}

func runTx(tx *sql.Tx, fn func(tx *sql.Tx) error) error {
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return Classify("transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return Classify("commit", err)
	}
	committed = true
	return nil
}

func acquireNamedLock(ctx context.Context, conn *sql.Conn, key string, timeout time.Duration) error {
	if key == "" {
		return errors.New("acquireNamedLock: empty key")
	}
	secs := int(timeout / time.Second)
	if timeout%time.Second != 0 {
		secs++
	}
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, key, secs).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return errLockNotAcquired
	}
	return nil
}

// releaseNamedLock ignores the request context so a cancelled request still
// frees the lock before the connection returns to the pool.
func releaseNamedLock(conn *sql.Conn, key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _ = conn.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, key)
}
