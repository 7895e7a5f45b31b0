package domain

import (
	"errors"
	"fmt"
)

// Business outcomes. These are terminal: a transaction that produced one is
// rolled back and never retried.
var (
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrAlreadyLoggedIn     = errors.New("user already logged in")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoResults           = errors.New("no matching flights")
	ErrInvalidItinerary    = errors.New("no such itinerary")
	ErrDuplicateDayBooking = errors.New("user already has a reservation that day")
	ErrCapacityExceeded    = errors.New("flight is full")
	ErrReservationNotFound = errors.New("unpaid reservation not found")
)

// InsufficientFundsError carries both sides of the failed balance check so the
// caller-facing message can report them.
type InsufficientFundsError struct {
	Balance int
	Cost    int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("balance %d cannot cover cost %d", e.Balance, e.Cost)
}
