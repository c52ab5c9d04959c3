package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates the principal may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition indicates the invoice's current status forbids the requested move.
var ErrInvalidTransition = errors.New("invalid invoice status transition")

// ErrInsufficientCredit indicates a credit facility cannot absorb the requested amount.
var ErrInsufficientCredit = errors.New("insufficient credit")

// ErrUnbalancedEntry indicates a journal entry whose debits and credits differ.
var ErrUnbalancedEntry = errors.New("journal entry is unbalanced")

// ErrPersistence indicates the storage layer failed.
var ErrPersistence = errors.New("persistence failure")

// ValidationError describes bad input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports a disallowed status move.
// Terminal is set when From has no successors at all.
type InvalidTransitionError struct {
	InvoiceID string
	From      string
	To        string
	Terminal  bool
}

func (e *InvalidTransitionError) Error() string {
	if e.Terminal {
		return fmt.Sprintf("invoice %s: %s is final, cannot move to %s", e.InvoiceID, e.From, e.To)
	}
	return fmt.Sprintf("invoice %s: cannot move from %s to %s", e.InvoiceID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// CreditLimitExceededError reports which organization lacks credit and by how much.
type CreditLimitExceededError struct {
	OrganizationID string
	Available      decimal.Decimal
	Requested      decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for organization %s: available %s, requested %s",
		e.OrganizationID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *CreditLimitExceededError) Is(target error) bool { return target == ErrInsufficientCredit }

// Shortfall is the amount by which the request exceeds what is available.
func (e *CreditLimitExceededError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

// PersistenceError wraps a storage failure for the named operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NewPersistenceError wraps err unless it already carries a domain meaning.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrPersistence) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// AppError carries an HTTP-ish status code alongside the cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool        { return errors.Is(err, ErrValidation) }
func IsDuplicate(err error) bool         { return errors.Is(err, ErrDuplicate) }
func IsForbidden(err error) bool         { return errors.Is(err, ErrForbidden) }
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsInsufficientCredit(err error) bool {
	return errors.Is(err, ErrInsufficientCredit)
}
func IsPersistence(err error) bool { return errors.Is(err, ErrPersistence) }
