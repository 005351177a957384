package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/queue"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(utils.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

// MockDeskStore is a mock implementation of DeskStore.
type MockDeskStore struct {
	mock.Mock
}

func (m *MockDeskStore) GetByID(ctx context.Context, id uint64) (*model.Desk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Desk), args.Error(1)
}

// MockBookingStore is a mock implementation of BookingStore.
type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking, dates []time.Time) error {
	args := m.Called(ctx, tx, b, dates)
	return args.Error(0)
}

func (m *MockBookingStore) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, []time.Time, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Booking), args.Get(1).([]time.Time), args.Error(2)
}

func (m *MockBookingStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
	args := m.Called(ctx, tx, id, from, to)
	return args.Error(0)
}

func (m *MockBookingStore) SetPaymentRef(ctx context.Context, id uint64, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}

// MockAvailabilityStore is a mock implementation of AvailabilityStore.
type MockAvailabilityStore struct {
	mock.Mock
}

func (m *MockAvailabilityStore) AvailableDatesTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, forUpdate bool) ([]time.Time, error) {
	args := m.Called(ctx, tx, deskID, dates, forUpdate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockAvailabilityStore) BlockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time, reason string) error {
	args := m.Called(ctx, tx, deskID, dates, reason)
	return args.Error(0)
}

func (m *MockAvailabilityStore) UnblockTx(ctx context.Context, tx *sql.Tx, deskID uint64, dates []time.Time) error {
	args := m.Called(ctx, tx, deskID, dates)
	return args.Error(0)
}

// eventRecorder captures published lifecycle events.
type eventRecorder struct {
	confirmed []queue.BookingConfirmedEvent
	cancelled []queue.BookingCancelledEvent
}

func (r *eventRecorder) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	r.confirmed = append(r.confirmed, ev)
	return nil
}

func (r *eventRecorder) PublishBookingCancelled(_ context.Context, ev queue.BookingCancelledEvent) error {
	r.cancelled = append(r.cancelled, ev)
	return nil
}

// spyTxRunner runs the transaction body outside any real transaction
// and counts commit/rollback outcomes.
type spyTxRunner struct {
	commits   int
	rollbacks int
}

func (r *spyTxRunner) InTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	if err := fn(nil); err != nil {
		r.rollbacks++
		return err
	}
	r.commits++
	return nil
}

type lifecycleFixture struct {
	svc          *BookingLifecycle
	desks        *MockDeskStore
	bookings     *MockBookingStore
	availability *MockAvailabilityStore
	events       *eventRecorder
	tx           *spyTxRunner
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		desks:        &MockDeskStore{},
		bookings:     &MockBookingStore{},
		availability: &MockAvailabilityStore{},
		events:       &eventRecorder{},
		tx:           &spyTxRunner{},
	}
	f.svc = &BookingLifecycle{
		tx:           f.tx,
		Desks:        f.desks,
		Bookings:     f.bookings,
		Availability: f.availability,
		Events:       f.events,
	}
	return f
}

func TestSubmitGuard(t *testing.T) {
	desk := &model.Desk{ID: 1, OwnerID: 10, IsActive: true}
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}

	assert.NoError(t, submitGuard(desk, 20, dates))

	assert.ErrorIs(t, submitGuard(desk, 10, dates), ErrSelfBooking)
	assert.ErrorIs(t, submitGuard(desk, 20, nil), utils.ErrNoDates)

	inactive := &model.Desk{ID: 1, OwnerID: 10, IsActive: false}
	assert.ErrorIs(t, submitGuard(inactive, 20, dates), ErrDeskInactive)
	// Inactive wins over self-booking: the desk is gone for everyone.
	assert.ErrorIs(t, submitGuard(inactive, 10, dates), ErrDeskInactive)
}

func TestCancelGuard(t *testing.T) {
	confirmed := &model.Booking{ID: 5, RenterID: 20, Status: model.BookingStatusConfirmed}
	assert.NoError(t, cancelGuard(confirmed, 20))

	// Only the renter who booked may cancel.
	assert.ErrorIs(t, cancelGuard(confirmed, 21), repository.ErrForbidden)

	cancelled := &model.Booking{ID: 5, RenterID: 20, Status: model.BookingStatusCancelled}
	assert.ErrorIs(t, cancelGuard(cancelled, 20), ErrAlreadyCancelled)

	// PENDING bookings lapse; they cannot be cancelled explicitly.
	pending := &model.Booking{ID: 5, RenterID: 20, Status: model.BookingStatusPending}
	assert.ErrorIs(t, cancelGuard(pending, 20), ErrInvalidState)

	// The ownership check runs before the state check.
	assert.ErrorIs(t, cancelGuard(cancelled, 21), repository.ErrForbidden)
}

func TestDatesUnavailableErrorMessage(t *testing.T) {
	err := &DatesUnavailableError{Dates: []time.Time{day("2026-10-01"), day("2026-10-03")}}
	assert.Contains(t, err.Error(), "2026-10-01")
	assert.Contains(t, err.Error(), "2026-10-03")

	conflict := &DatesNoLongerAvailableError{Dates: []time.Time{day("2026-10-02")}}
	assert.Contains(t, conflict.Error(), "2026-10-02")
}

func TestSubmitCreatesPendingBookingWithQuote(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}

	f.desks.On("GetByID", mock.Anything, uint64(1)).Return(&model.Desk{
		ID: 1, OwnerID: 10, IsActive: true, PricePerDayCents: 100, Currency: "EUR",
	}, nil)
	f.availability.On("AvailableDatesTx", mock.Anything, mock.Anything, uint64(1), dates, false).
		Return(dates, nil)
	f.bookings.On("CreateTx", mock.Anything, mock.Anything, mock.Anything, dates).Return(nil)

	booking, err := f.svc.Submit(context.Background(), 1, 20, dates)
	assert.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, uint32(200), booking.TotalAmountCents)
	assert.Equal(t, uint32(30), booking.PlatformFeeCents)
	assert.Equal(t, uint32(170), booking.OwnerAmountCents)
	assert.Equal(t, "EUR", booking.Currency)
	assert.Equal(t, 1, f.tx.commits)
	f.bookings.AssertExpectations(t)
}

func TestSubmitRejectsUnavailableDates(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}

	f.desks.On("GetByID", mock.Anything, uint64(1)).Return(&model.Desk{
		ID: 1, OwnerID: 10, IsActive: true, PricePerDayCents: 100, Currency: "EUR",
	}, nil)
	// Only the first day is still open.
	f.availability.On("AvailableDatesTx", mock.Anything, mock.Anything, uint64(1), dates, false).
		Return(dates[:1], nil)

	_, err := f.svc.Submit(context.Background(), 1, 20, dates)
	var unavailable *DatesUnavailableError
	assert.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []time.Time{day("2026-10-02")}, unavailable.Dates)
	assert.Equal(t, 1, f.tx.rollbacks)
	f.bookings.AssertNotCalled(t, "CreateTx")
}

func TestConfirmBlocksDatesAndPublishes(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}
	pending := &model.Booking{
		ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusPending,
		TotalAmountCents: 200, PlatformFeeCents: 30, OwnerAmountCents: 170, Currency: "EUR",
	}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).Return(pending, dates, nil)
	f.availability.On("AvailableDatesTx", mock.Anything, mock.Anything, uint64(1), dates, true).
		Return(dates, nil)
	f.availability.On("BlockTx", mock.Anything, mock.Anything, uint64(1), dates, model.BlockReasonBooked).
		Return(nil)
	f.bookings.On("UpdateStatusTx", mock.Anything, mock.Anything, uint64(5),
		model.BookingStatusPending, model.BookingStatusConfirmed).Return(nil)

	res, err := f.svc.Confirm(context.Background(), 5)
	assert.NoError(t, err)
	assert.False(t, res.AlreadyConfirmed)
	assert.Equal(t, model.BookingStatusConfirmed, res.Booking.Status)
	assert.Equal(t, 1, f.tx.commits)

	if assert.Len(t, f.events.confirmed, 1) {
		assert.Equal(t, uint64(5), f.events.confirmed[0].BookingID)
		assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, f.events.confirmed[0].Dates)
	}
	f.availability.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
}

func TestConfirmReplayIsIdempotent(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01")}
	confirmed := &model.Booking{ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusConfirmed}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).Return(confirmed, dates, nil)

	// A second delivery of the same payment event must succeed without
	// blocking anything again or emitting a duplicate event.
	res, err := f.svc.Confirm(context.Background(), 5)
	assert.NoError(t, err)
	assert.True(t, res.AlreadyConfirmed)
	assert.Equal(t, model.BookingStatusConfirmed, res.Booking.Status)
	f.availability.AssertNotCalled(t, "BlockTx")
	f.bookings.AssertNotCalled(t, "UpdateStatusTx")
	assert.Empty(t, f.events.confirmed)
}

func TestConfirmConflictWhenDatesTaken(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}
	pending := &model.Booking{ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusPending}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).Return(pending, dates, nil)
	// An overlapping booking confirmed first and took the second day.
	f.availability.On("AvailableDatesTx", mock.Anything, mock.Anything, uint64(1), dates, true).
		Return(dates[:1], nil)

	_, err := f.svc.Confirm(context.Background(), 5)
	var gone *DatesNoLongerAvailableError
	assert.ErrorAs(t, err, &gone)
	assert.Equal(t, []time.Time{day("2026-10-02")}, gone.Dates)
	assert.Equal(t, 1, f.tx.rollbacks)
	f.availability.AssertNotCalled(t, "BlockTx")
	f.bookings.AssertNotCalled(t, "UpdateStatusTx")
	assert.Empty(t, f.events.confirmed)
}

func TestConfirmCancelledBookingFails(t *testing.T) {
	f := newLifecycleFixture()
	cancelled := &model.Booking{ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusCancelled}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).
		Return(cancelled, []time.Time{day("2026-10-01")}, nil)

	_, err := f.svc.Confirm(context.Background(), 5)
	assert.ErrorIs(t, err, repository.ErrStaleStatus)
	assert.Equal(t, 1, f.tx.rollbacks)
	f.availability.AssertNotCalled(t, "BlockTx")
}

func TestCancelRestoresAvailability(t *testing.T) {
	f := newLifecycleFixture()
	dates := []time.Time{day("2026-10-01"), day("2026-10-02")}
	confirmed := &model.Booking{ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusConfirmed, Currency: "EUR"}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).Return(confirmed, dates, nil)
	f.bookings.On("UpdateStatusTx", mock.Anything, mock.Anything, uint64(5),
		model.BookingStatusConfirmed, model.BookingStatusCancelled).Return(nil)
	f.availability.On("UnblockTx", mock.Anything, mock.Anything, uint64(1), dates).Return(nil)

	booking, err := f.svc.Cancel(context.Background(), 5, 20)
	assert.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, booking.Status)
	assert.Equal(t, 1, f.tx.commits)

	if assert.Len(t, f.events.cancelled, 1) {
		assert.Equal(t, uint64(5), f.events.cancelled[0].BookingID)
		assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, f.events.cancelled[0].Dates)
	}
	f.availability.AssertExpectations(t)
	f.bookings.AssertExpectations(t)
}

func TestCancelByAnotherRenterRollsBack(t *testing.T) {
	f := newLifecycleFixture()
	confirmed := &model.Booking{ID: 5, DeskID: 1, RenterID: 20, Status: model.BookingStatusConfirmed}

	f.bookings.On("GetForUpdateTx", mock.Anything, mock.Anything, uint64(5)).
		Return(confirmed, []time.Time{day("2026-10-01")}, nil)

	_, err := f.svc.Cancel(context.Background(), 5, 99)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Equal(t, 1, f.tx.rollbacks)
	f.bookings.AssertNotCalled(t, "UpdateStatusTx")
	f.availability.AssertNotCalled(t, "UnblockTx")
	assert.Empty(t, f.events.cancelled)
}
