package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
)

// MockBookingService is a mock implementation of BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Submit(ctx context.Context, deskID, renterID uint64, dates []time.Time) (*model.Booking, error) {
	args := m.Called(ctx, deskID, renterID, dates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) Confirm(ctx context.Context, bookingID uint64) (*service.ConfirmResult, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ConfirmResult), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, bookingID, requesterID uint64) (*model.Booking, error) {
	args := m.Called(ctx, bookingID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) AttachPaymentRef(ctx context.Context, bookingID uint64, ref string) error {
	args := m.Called(ctx, bookingID, ref)
	return args.Error(0)
}

func newBookingContext(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	// The JWT middleware stores numeric claims as float64.
	c.Set("user_id", float64(userID))
	return c, rec
}

func mustDates(t *testing.T, raw ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		assert.NoError(t, err)
		out[i] = d
	}
	return out
}

func TestRenterBookingSubmit(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	body := `{"desk_id":7,"dates":["2026-10-02","2026-10-01"]}`
	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings", body, 42)

	// ParseDates sorts before the service sees them.
	dates := mustDates(t, "2026-10-01", "2026-10-02")
	booking := &model.Booking{
		ID:               99,
		DeskID:           7,
		RenterID:         42,
		Status:           model.BookingStatusPending,
		TotalAmountCents: 200,
		PlatformFeeCents: 30,
		OwnerAmountCents: 170,
		Currency:         "EUR",
	}
	svc.On("Submit", mock.Anything, uint64(7), uint64(42), dates).Return(booking, nil)

	assert.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(99), resp.ID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, resp.Dates)
	assert.Equal(t, uint32(200), resp.TotalAmountCents)
	assert.Equal(t, uint32(30), resp.PlatformFeeCents)
	assert.Equal(t, uint32(170), resp.OwnerAmountCents)

	svc.AssertExpectations(t)
}

func TestRenterBookingSubmitRejectsDuplicateDates(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	body := `{"desk_id":7,"dates":["2026-10-01","2026-10-01"]}`
	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings", body, 42)

	assert.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Submit")
}

func TestRenterBookingSubmitDatesUnavailable(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	body := `{"desk_id":7,"dates":["2026-10-01"]}`
	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings", body, 42)

	svc.On("Submit", mock.Anything, uint64(7), uint64(42), mustDates(t, "2026-10-01")).
		Return(nil, &service.DatesUnavailableError{Dates: mustDates(t, "2026-10-01")})

	assert.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "dates_unavailable")
	assert.Contains(t, rec.Body.String(), "2026-10-01")
}

func TestRenterBookingSubmitOwnDesk(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	body := `{"desk_id":7,"dates":["2026-10-01"]}`
	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings", body, 42)

	svc.On("Submit", mock.Anything, uint64(7), uint64(42), mock.Anything).
		Return(nil, service.ErrSelfBooking)

	assert.NoError(t, h.Submit(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRenterBookingCancel(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	c, rec := newBookingContext(t, http.MethodDelete, "/v1/bookings/99", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("99")

	cancelled := &model.Booking{ID: 99, RenterID: 42, Status: model.BookingStatusCancelled}
	svc.On("Cancel", mock.Anything, uint64(99), uint64(42)).Return(cancelled, nil)

	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CANCELLED")
	svc.AssertExpectations(t)
}

func TestRenterBookingCancelAlreadyCancelled(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	c, rec := newBookingContext(t, http.MethodDelete, "/v1/bookings/99", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("99")

	svc.On("Cancel", mock.Anything, uint64(99), uint64(42)).
		Return(nil, service.ErrAlreadyCancelled)

	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRenterBookingCancelSomeoneElses(t *testing.T) {
	svc := &MockBookingService{}
	h := NewRenterBookingHandler(svc, nil)

	c, rec := newBookingContext(t, http.MethodDelete, "/v1/bookings/99", "", 43)
	c.SetParamNames("id")
	c.SetParamValues("99")

	svc.On("Cancel", mock.Anything, uint64(99), uint64(43)).
		Return(nil, repository.ErrForbidden)

	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
