// Package pgerr maps PostgreSQL driver failures onto dispatch errors.
package pgerr

import (
	"errors"

	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes after which the whole unit of work can be retried.
const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
	AdminShutdown        = "57P01"
	CannotConnectNow     = "57P03"
)

// Classify wraps retryable driver errors into errs.TransientPersistenceError and
// returns every other error unchanged. A unique violation (23505) is not retryable and
// passes through as is.
//
// Example:
//
//	if err := db.Create(&dto).Error; err != nil {
//	    return pgerr.Classify("insert job", err)
//	}
func Classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return errs.NewTransientPersistenceError(operation, err)
	}
	return err
}

// IsTransient reports whether err is a serialization, deadlock, lock or connection failure.
//
// Besides the SQLSTATE codes above it accepts *pgconn.ConnectError, timeouts and errors
// pgconn marks safe to retry because nothing reached the server. An error that already
// wraps errs.ErrTransientPersistence stays transient, so classifying twice is harmless.
func IsTransient(err error) bool {
	if errors.Is(err, errs.ErrTransientPersistence) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailure, DeadlockDetected, LockNotAvailable, AdminShutdown, CannotConnectNow:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
