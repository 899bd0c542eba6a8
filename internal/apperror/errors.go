// Package apperror defines the typed business errors shared by all services.
// Handlers translate these into HTTP statuses; services never touch HTTP.
package apperror

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested entity does not exist.
var ErrNotFound = errors.New("resource not found")

// ErrNoOpenSession indicates that no cash drawer is available for the
// operation — neither owned by the acting user nor the shared fallback.
var ErrNoOpenSession = errors.New("no open cash session")

// ErrSessionAlreadyOpen indicates the user already has an open drawer.
var ErrSessionAlreadyOpen = errors.New("user already has an open cash session")

// ErrPermissionDenied indicates the acting user may not perform the operation
// (e.g. closing someone else's session without the admin role).
var ErrPermissionDenied = errors.New("permission denied")

// ErrAlreadyCancelled indicates a transaction was cancelled before; its
// effects must never be reversed twice.
var ErrAlreadyCancelled = errors.New("transaction already cancelled")

// ErrReasonRequired indicates a cancellation arrived with a blank reason.
var ErrReasonRequired = errors.New("cancellation reason is required")

// InsufficientStockError names the product that cannot cover the sale.
type InsufficientStockError struct {
	Product   string
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: required %d, available %d",
		e.Product, e.Required, e.Available)
}

// JustificationRequiredError is returned by a drawer close whose difference
// exceeds the tolerance and no closing note was supplied. It carries the
// computed figures so the caller can recount and resubmit with a note.
type JustificationRequiredError struct {
	SystemTotal    decimal.Decimal
	PhysicalAmount decimal.Decimal
	Difference     decimal.Decimal
}

func (e *JustificationRequiredError) Error() string {
	return fmt.Sprintf("cash difference of %s exceeds tolerance: justification note required",
		e.Difference.StringFixed(2))
}
