package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy for ledger operations. Every failure aborts the single
// operation and leaves persisted state unchanged.
var (
	// ErrNotFound means the referenced trade or account does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotOwned means the caller does not own the referenced entity.
	// User-facing layers must present it exactly like ErrNotFound so the
	// existence of other users' records never leaks.
	ErrNotOwned = errors.New("not authorized")
	// ErrValidation means the input was missing, negative or inconsistent.
	ErrValidation = errors.New("validation failed")
	// ErrReconciliation means the atomic balance update did not apply; the
	// surrounding transaction rolls the trade write back and the caller
	// may retry the whole operation.
	ErrReconciliation = errors.New("balance reconciliation failed")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
