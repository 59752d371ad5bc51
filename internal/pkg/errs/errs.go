package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is. Every typed error below unwraps to exactly one of them,
// which is what the HTTP layer maps to a status code.
var (
	ErrObjectNotFound       = errors.New("object not found")
	ErrValueIsInvalid       = errors.New("value is invalid")
	ErrValueIsOutOfRange    = errors.New("value is out of range")
	ErrValueIsRequired      = errors.New("value is required")
	ErrInvalidState         = errors.New("invalid state")
	ErrTransientPersistence = errors.New("transient persistence failure")
)

// ObjectNotFoundError reports a missing job, queue entry, bid or contractor.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError reports that the object named by paramName with the given id
// does not exist.
//
// Example:
//
//	return nil, errs.NewObjectNotFoundError("bidId", bidID)
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause is NewObjectNotFoundError keeping the lookup error
// that led to it.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(fmt.Sprintf("%s", e.ID)), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(fmt.Sprintf("%s", e.ID)))
}

// Unwrap returns ErrObjectNotFound.
func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError reports that the parameter paramName failed validation.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause keeps the validation error that caused the failure.
//
// Example:
//
//	return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d cents is negative", cents))
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

// Unwrap returns ErrValueIsInvalid.
func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError reports a value outside the inclusive range [minValue, maxValue].
//
// Example:
//
//	if lat < MinLatitude || lat > MaxLatitude {
//		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
//	}
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid,
		sanitize(fmt.Sprint(e.Value)),
		e.ParamName,
		sanitize(fmt.Sprint(e.Min)),
		sanitize(fmt.Sprint(e.Max)),
	)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns ErrValueIsOutOfRange.
func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError reports that the mandatory parameter paramName was empty.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

// Unwrap returns ErrValueIsRequired.
func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidStateError reports an operation the object's current state does not allow,
// such as accepting a bid on a job that is no longer open.
type InvalidStateError struct {
	Object string
	Reason string
	Cause  error
}

// NewInvalidStateError reports that object cannot perform the operation in its current
// state. Reason is shown to API clients, so it should read as a sentence fragment.
//
// Example:
//
//	return nil, errs.NewInvalidStateError("job", "bidding jobs are assigned by accepting a bid")
func NewInvalidStateError(object, reason string) *InvalidStateError {
	return &InvalidStateError{Object: object, Reason: reason}
}

func NewInvalidStateErrorWithCause(object, reason string, cause error) *InvalidStateError {
	return &InvalidStateError{Object: object, Reason: reason, Cause: cause}
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrInvalidState, e.Object, e.Reason)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns ErrInvalidState.
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// TransientPersistenceError wraps a store failure after which the enclosing unit of
// work was abandoned and the caller may retry the whole operation.
type TransientPersistenceError struct {
	Operation string
	Cause     error
}

// NewTransientPersistenceError wraps a driver error the store classified as retryable,
// such as a serialization failure or a lost connection.
func NewTransientPersistenceError(operation string, cause error) *TransientPersistenceError {
	return &TransientPersistenceError{Operation: operation, Cause: cause}
}

func (e *TransientPersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrTransientPersistence, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrTransientPersistence, e.Operation)
}

// Unwrap exposes both the sentinel and the driver error to errors.Is / errors.As.
func (e *TransientPersistenceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrTransientPersistence}
	}
	return []error{ErrTransientPersistence, e.Cause}
}

// sanitize keeps error messages on one line.
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
