// Package service holds the booking lifecycle: the state machine that
// moves bookings through PENDING -> CONFIRMED -> CANCELLED and keeps
// the availability calendar consistent with it.  Every transition runs
// in a single database transaction so a booking can never be CONFIRMED
// while its days are still AVAILABLE, or CANCELLED while they remain
// blocked.
package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/queue"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// DeskStore, BookingStore and AvailabilityStore are the repository
// surfaces the lifecycle needs.  The concrete repos satisfy them; tests
// substitute mocks to drive the transition logic directly.
type DeskStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Desk, error)
}

type BookingStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, dates []time.Time) error
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, []time.Time, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error
	SetPaymentRef(ctx context.Context, id uint64, ref string) error
}

type AvailabilityStore interface {
	AvailableDatesTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, forUpdate bool) ([]time.Time, error)
	BlockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, reason string) error
	UnblockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time) error
}

// txRunner runs a function inside one transaction: rollback when it
// errors, commit when it returns nil.
type txRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type sqlTxRunner struct{ db *sql.DB }

func (r sqlTxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// BookingLifecycle orchestrates booking transitions over the desk,
// booking and availability stores.  It owns the transaction boundaries;
// the stores only execute statements inside them.
type BookingLifecycle struct {
	tx           txRunner
	Desks        DeskStore
	Bookings     BookingStore
	Availability AvailabilityStore
	Events       queue.Publisher // nil disables event publishing
}

// NewBookingLifecycle wires the lifecycle controller.  The events
// publisher may be nil when no broker is configured.
func NewBookingLifecycle(db *sql.DB, desks DeskStore, bookings BookingStore, availability AvailabilityStore, events queue.Publisher) *BookingLifecycle {
	if db == nil || desks == nil || bookings == nil || availability == nil {
		panic("nil dependency passed to NewBookingLifecycle")
	}
	return &BookingLifecycle{
		tx:           sqlTxRunner{db: db},
		Desks:        desks,
		Bookings:     bookings,
		Availability: availability,
		Events:       events,
	}
}

// ConfirmResult reports the outcome of a payment confirmation.
// AlreadyConfirmed distinguishes a webhook replay (success, nothing
// done) from a first confirmation.
type ConfirmResult struct {
	Booking          *model.Booking
	AlreadyConfirmed bool
}

// submitGuard holds the pre-transaction policy checks for Submit.
func submitGuard(desk *model.Desk, renterID uint64, dates []time.Time) error {
	if !desk.IsActive {
		return ErrDeskInactive
	}
	if desk.OwnerID == renterID {
		return ErrSelfBooking
	}
	if len(dates) == 0 {
		return utils.ErrNoDates
	}
	return nil
}

// cancelGuard decides whether a cancellation may proceed given the
// booking's current state and the requester's identity.
func cancelGuard(b *model.Booking, requesterID uint64) error {
	if b.RenterID != requesterID {
		return repository.ErrForbidden
	}
	switch b.Status {
	case model.BookingStatusCancelled:
		return ErrAlreadyCancelled
	case model.BookingStatusPending:
		// Unpaid bookings are not cancellable through this path; they
		// lapse on their own when no payment ever confirms them.
		return ErrInvalidState
	case model.BookingStatusConfirmed:
		return nil
	default:
		return ErrInvalidState
	}
}

// Submit validates a booking request and creates a PENDING booking.
// The requested days are checked against the availability calendar but
// NOT blocked yet: days stay open to other renters until a payment
// confirms, and overlapping PENDING bookings are resolved at
// confirmation time on a first-confirmed-wins basis.
func (s *BookingLifecycle) Submit(ctx context.Context, deskID, renterID uint64, dates []time.Time) (*model.Booking, error) {
	desk, err := s.Desks.GetByID(ctx, deskID)
	if err != nil {
		return nil, err
	}
	if err := submitGuard(desk, renterID, dates); err != nil {
		return nil, err
	}
	quote, err := ComputeQuote(desk.PricePerDayCents, len(dates))
	if err != nil {
		return nil, err
	}

	start, end := utils.DateBounds(dates)
	booking := &model.Booking{
		DeskID:           deskID,
		RenterID:         renterID,
		Status:           model.BookingStatusPending,
		StartDate:        start,
		EndDate:          end,
		TotalAmountCents: quote.TotalCents,
		PlatformFeeCents: quote.FeeCents,
		OwnerAmountCents: quote.OwnerCents,
		Currency:         desk.Currency,
	}
	err = s.tx.InTx(ctx, func(tx *sql.Tx) error {
		avail, err := s.Availability.AvailableDatesTx(ctx, tx, deskID, dates, false)
		if err != nil {
			return err
		}
		if missing := utils.MissingDates(dates, avail); len(missing) > 0 {
			return &DatesUnavailableError{Dates: missing}
		}
		return s.Bookings.CreateTx(ctx, tx, booking, dates)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Confirm applies a successful payment to a booking.  Within one
// transaction it row-locks the booking, re-checks that every booked day
// is still AVAILABLE (two overlapping PENDING bookings can both have
// paid; only the first confirmation may win), blocks the days and flips
// the status PENDING -> CONFIRMED.  A replayed confirmation on an
// already CONFIRMED booking succeeds without blocking anything twice.
// Confirming a CANCELLED booking fails with ErrStaleStatus.
func (s *BookingLifecycle) Confirm(ctx context.Context, bookingID uint64) (*ConfirmResult, error) {
	var result *ConfirmResult
	var dates []time.Time
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		booking, bookedDates, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		switch booking.Status {
		case model.BookingStatusConfirmed:
			// Duplicate delivery of the payment event.  Report success
			// so the processor stops retrying; the days are already
			// blocked.
			result = &ConfirmResult{Booking: booking, AlreadyConfirmed: true}
			return nil
		case model.BookingStatusCancelled:
			return repository.ErrStaleStatus
		}

		avail, err := s.Availability.AvailableDatesTx(ctx, tx, booking.DeskID, bookedDates, true)
		if err != nil {
			return err
		}
		if missing := utils.MissingDates(bookedDates, avail); len(missing) > 0 {
			// Another booking confirmed first.  Roll back entirely; the
			// captured payment is left for manual reconciliation.
			return &DatesNoLongerAvailableError{Dates: missing}
		}
		if err := s.Availability.BlockTx(ctx, tx, booking.DeskID, bookedDates, model.BlockReasonBooked); err != nil {
			return err
		}
		if err := s.Bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingStatusPending, model.BookingStatusConfirmed); err != nil {
			return err
		}
		booking.Status = model.BookingStatusConfirmed
		result = &ConfirmResult{Booking: booking}
		dates = bookedDates
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.AlreadyConfirmed {
		s.publishConfirmed(ctx, result.Booking, dates)
	}
	return result, nil
}

// Cancel reverses a CONFIRMED booking on behalf of its renter: the
// status flips to CANCELLED and every booked day is restored to
// AVAILABLE in the same transaction.  Owner-initiated availability
// blocks are never touched by this path.
func (s *BookingLifecycle) Cancel(ctx context.Context, bookingID, requesterID uint64) (*model.Booking, error) {
	var cancelled *model.Booking
	var dates []time.Time
	err := s.tx.InTx(ctx, func(tx *sql.Tx) error {
		booking, bookedDates, err := s.Bookings.GetForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := cancelGuard(booking, requesterID); err != nil {
			return err
		}
		if err := s.Bookings.UpdateStatusTx(ctx, tx, bookingID, model.BookingStatusConfirmed, model.BookingStatusCancelled); err != nil {
			return err
		}
		if err := s.Availability.UnblockTx(ctx, tx, booking.DeskID, bookedDates); err != nil {
			return err
		}
		booking.Status = model.BookingStatusCancelled
		cancelled = booking
		dates = bookedDates
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCancelled(ctx, cancelled, dates)
	return cancelled, nil
}

// AttachPaymentRef records the processor order id created at checkout.
func (s *BookingLifecycle) AttachPaymentRef(ctx context.Context, bookingID uint64, ref string) error {
	return s.Bookings.SetPaymentRef(ctx, bookingID, ref)
}

// publishConfirmed emits the booking.confirmed event.  Publishing is
// best effort: the transition already committed, so a broker outage
// only costs the notification, not correctness.
func (s *BookingLifecycle) publishConfirmed(ctx context.Context, b *model.Booking, dates []time.Time) {
	if s.Events == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		DeskID:           b.DeskID,
		RenterID:         b.RenterID,
		Dates:            utils.FormatDates(dates),
		TotalAmountCents: b.TotalAmountCents,
		PlatformFeeCents: b.PlatformFeeCents,
		OwnerAmountCents: b.OwnerAmountCents,
		Currency:         b.Currency,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Events.PublishBookingConfirmed(ctx, ev); err != nil {
		log.Printf("booking-lifecycle: publish confirmed event failed: %v", err)
	}
}

func (s *BookingLifecycle) publishCancelled(ctx context.Context, b *model.Booking, dates []time.Time) {
	if s.Events == nil {
		return
	}
	ev := queue.BookingCancelledEvent{
		BookingID:   b.ID,
		DeskID:      b.DeskID,
		RenterID:    b.RenterID,
		Dates:       utils.FormatDates(dates),
		Currency:    b.Currency,
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Events.PublishBookingCancelled(ctx, ev); err != nil {
		log.Printf("booking-lifecycle: publish cancelled event failed: %v", err)
	}
}
