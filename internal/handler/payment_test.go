package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
)

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(amountCents uint32, currency, receipt string, notes map[string]interface{}) (string, error) {
	args := m.Called(amountCents, currency, receipt, notes)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifyWebhookSignature(body, signature, secret string) bool {
	args := m.Called(body, signature, secret)
	return args.Bool(0)
}

// MockBookingLookup is a mock implementation of BookingLookup.
type MockBookingLookup struct {
	mock.Mock
}

func (m *MockBookingLookup) GetByIDForRenter(ctx context.Context, bookingID, renterID uint64) (*repository.BookingDetail, error) {
	args := m.Called(ctx, bookingID, renterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BookingDetail), args.Error(1)
}

func (m *MockBookingLookup) GetIDByPaymentRef(ctx context.Context, ref string) (uint64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(uint64), args.Error(1)
}

func newWebhookContext(body, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

const capturedEvent = `{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_abc"}}}}`

func TestWebhookWithoutGatewayReturnsUnavailable(t *testing.T) {
	// Keys unset at startup leave the gateway nil; the webhook must
	// answer 503 instead of dereferencing it.
	svc := &MockBookingService{}
	h := NewPaymentHandler(nil, svc, &MockBookingLookup{}, "", "whsec")

	c, rec := newWebhookContext(capturedEvent, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	svc.AssertNotCalled(t, "Confirm")
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	gw.On("VerifyWebhookSignature", capturedEvent, "bad", "whsec").Return(false)

	c, rec := newWebhookContext(capturedEvent, "bad")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Confirm")
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	gw := &MockGateway{}
	h := NewPaymentHandler(gw, &MockBookingService{}, &MockBookingLookup{}, "rzp_test_key", "whsec")

	c, rec := newWebhookContext(capturedEvent, "")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookConfirmsBooking(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	gw.On("VerifyWebhookSignature", capturedEvent, "good", "whsec").Return(true)
	repo.On("GetIDByPaymentRef", mock.Anything, "order_abc").Return(uint64(99), nil)
	svc.On("Confirm", mock.Anything, uint64(99)).Return(&service.ConfirmResult{
		Booking: &model.Booking{ID: 99, Status: model.BookingStatusConfirmed},
	}, nil)

	c, rec := newWebhookContext(capturedEvent, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CONFIRMED")
	svc.AssertExpectations(t)
}

func TestWebhookReplayReturnsOK(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	gw.On("VerifyWebhookSignature", capturedEvent, "good", "whsec").Return(true)
	repo.On("GetIDByPaymentRef", mock.Anything, "order_abc").Return(uint64(99), nil)
	svc.On("Confirm", mock.Anything, uint64(99)).Return(&service.ConfirmResult{
		Booking:          &model.Booking{ID: 99, Status: model.BookingStatusConfirmed},
		AlreadyConfirmed: true,
	}, nil)

	c, rec := newWebhookContext(capturedEvent, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already_confirmed")
}

func TestWebhookConflictWhenDatesTaken(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	gw.On("VerifyWebhookSignature", capturedEvent, "good", "whsec").Return(true)
	repo.On("GetIDByPaymentRef", mock.Anything, "order_abc").Return(uint64(99), nil)
	svc.On("Confirm", mock.Anything, uint64(99)).
		Return(nil, &service.DatesNoLongerAvailableError{Dates: mustDates(t, "2026-10-01")})

	c, rec := newWebhookContext(capturedEvent, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "dates_no_longer_available")
}

func TestWebhookAcceptsOrderPaid(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	body := `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_abc"}}}}`
	gw.On("VerifyWebhookSignature", body, "good", "whsec").Return(true)
	repo.On("GetIDByPaymentRef", mock.Anything, "order_abc").Return(uint64(99), nil)
	svc.On("Confirm", mock.Anything, uint64(99)).Return(&service.ConfirmResult{
		Booking: &model.Booking{ID: 99, Status: model.BookingStatusConfirmed},
	}, nil)

	c, rec := newWebhookContext(body, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	h := NewPaymentHandler(gw, svc, &MockBookingLookup{}, "rzp_test_key", "whsec")

	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_abc"}}}}`
	gw.On("VerifyWebhookSignature", body, "good", "whsec").Return(true)

	c, rec := newWebhookContext(body, "good")
	assert.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	svc.AssertNotCalled(t, "Confirm")
}

func TestCheckoutCreatesOrder(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings/99/checkout", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("99")

	repo.On("GetByIDForRenter", mock.Anything, uint64(99), uint64(42)).Return(&repository.BookingDetail{
		ID:               99,
		Status:           model.BookingStatusPending,
		TotalAmountCents: 200,
		Currency:         "EUR",
	}, nil)
	gw.On("CreateOrder", uint32(200), "EUR", mock.Anything, mock.Anything).Return("order_abc", nil)
	svc.On("AttachPaymentRef", mock.Anything, uint64(99), "order_abc").Return(nil)

	assert.NoError(t, h.Checkout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "order_abc")
	svc.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestCheckoutRejectsConfirmedBooking(t *testing.T) {
	gw := &MockGateway{}
	svc := &MockBookingService{}
	repo := &MockBookingLookup{}
	h := NewPaymentHandler(gw, svc, repo, "rzp_test_key", "whsec")

	c, rec := newBookingContext(t, http.MethodPost, "/v1/bookings/99/checkout", "", 42)
	c.SetParamNames("id")
	c.SetParamValues("99")

	repo.On("GetByIDForRenter", mock.Anything, uint64(99), uint64(42)).Return(&repository.BookingDetail{
		ID:     99,
		Status: model.BookingStatusConfirmed,
	}, nil)

	assert.NoError(t, h.Checkout(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	gw.AssertNotCalled(t, "CreateOrder")
}
