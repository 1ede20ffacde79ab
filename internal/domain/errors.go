package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityRaceError reports that the bucket lock or the transaction lost a
// race with a concurrent booking. The whole unit of work may be retried.
type CapacityRaceError struct {
	Bucket string
	Err    error
}

func (e CapacityRaceError) Error() string {
	if e.Bucket == "" {
		return "booking contention, retry later"
	}
	return fmt.Sprintf("booking contention on %s, retry later", e.Bucket)
}

func (e CapacityRaceError) Unwrap() error { return e.Err }

// OverflowError is returned when a formatted seat code does not fit its
// fixed-width format or the storage column.
type OverflowError struct {
	Code    string
	Ordinal int
	Limit   int
}

func (e OverflowError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("seat code %q exceeds %d characters", e.Code, e.Limit)
	}
	return fmt.Sprintf("seat ordinal %d exceeds limit %d", e.Ordinal, e.Limit)
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	if e.Op == "" {
		return "persistence failure"
	}
	return fmt.Sprintf("persistence failure: %s", e.Op)
}

func (e PersistenceError) Unwrap() error { return e.Err }

type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsCapacityRace(err error) bool {
	var target CapacityRaceError
	return errors.As(err, &target)
}

func IsOverflow(err error) bool {
	var target OverflowError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target PersistenceError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
