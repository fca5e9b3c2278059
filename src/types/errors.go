package types

import (
	"errors"
	"fmt"
)

// Workflow error taxonomy. Handlers map these onto HTTP statuses; anything
// not listed here is treated as a persistence failure.
var (
	ErrTokenNotFound = errors.New("queue token not found")
	ErrAlreadyPaid   = errors.New("transaction has already been paid")
	ErrAlreadyClosed = errors.New("pass has already been closed")
)

type DuplicateActiveTokenError struct {
	Code string
}

func (e *DuplicateActiveTokenError) Error() string {
	return fmt.Sprintf("an open queue token [%s] is already held", e.Code)
}

type ReferenceNotFoundError struct {
	Entity string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("referenced %s does not exist", e.Entity)
}

type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}
