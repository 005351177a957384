package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// Policy errors raised by the booking lifecycle.  Handlers map them to
// HTTP codes; none of them is retried here.
var (
	// ErrSelfBooking: a renter tried to book their own desk.
	ErrSelfBooking = errors.New("cannot book your own desk")
	// ErrDeskInactive: the desk has been deactivated by its owner.
	ErrDeskInactive = errors.New("desk is not active")
	// ErrAlreadyCancelled: the booking was cancelled before.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrInvalidState: the transition is not defined for the booking's
	// current status (e.g. cancelling a PENDING booking, which this
	// system deliberately does not support).
	ErrInvalidState = errors.New("operation not allowed in current booking status")
)

// DatesUnavailableError reports which requested days could not be
// booked at submit time.  No partial booking is created.
type DatesUnavailableError struct {
	Dates []time.Time
}

func (e *DatesUnavailableError) Error() string {
	return fmt.Sprintf("dates unavailable: %s", strings.Join(utils.FormatDates(e.Dates), ", "))
}

// DatesNoLongerAvailableError reports a confirmation-time conflict:
// between submit and payment capture another booking took at least one
// of the days.  The losing payment needs manual reconciliation.
type DatesNoLongerAvailableError struct {
	Dates []time.Time
}

func (e *DatesNoLongerAvailableError) Error() string {
	return fmt.Sprintf("dates no longer available: %s", strings.Join(utils.FormatDates(e.Dates), ", "))
}
