package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/payment"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
)

// BookingLookup is the slice of the booking repository the payment
// endpoints need.  *repository.BookingRepo satisfies it.
type BookingLookup interface {
	GetByIDForRenter(ctx context.Context, bookingID, renterID uint64) (*repository.BookingDetail, error)
	GetIDByPaymentRef(ctx context.Context, ref string) (uint64, error)
}

// PaymentHandler bridges the payment processor and the booking
// lifecycle: checkout opens a processor order for a PENDING booking and
// the webhook confirms the booking once the payment captures.
type PaymentHandler struct {
	Gateway       payment.Gateway
	Lifecycle     BookingService
	Bookings      BookingLookup
	KeyID         string // public key id the client needs for hosted checkout
	WebhookSecret string
}

func NewPaymentHandler(gw payment.Gateway, lifecycle BookingService, bookings BookingLookup, keyID, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{Gateway: gw, Lifecycle: lifecycle, Bookings: bookings, KeyID: keyID, WebhookSecret: webhookSecret}
}

// Checkout creates a processor order for one of the renter's PENDING
// bookings and stores the order id on the booking so the webhook can
// find it later.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	renterID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if h.Gateway == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	ctx := c.Request().Context()

	detail, err := h.Bookings.GetByIDForRenter(ctx, bookingID, renterID)
	if err != nil {
		return writeError(c, err)
	}
	if detail.Status != model.BookingStatusPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not awaiting payment"})
	}

	receipt := uuid.NewString()
	orderID, err := h.Gateway.CreateOrder(detail.TotalAmountCents, detail.Currency, receipt, map[string]interface{}{
		"booking_id":         bookingID,
		"platform_fee_cents": detail.PlatformFeeCents,
		"owner_amount_cents": detail.OwnerAmountCents,
	})
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment processor unavailable"})
	}
	if err := h.Lifecycle.AttachPaymentRef(ctx, bookingID, orderID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id":   bookingID,
		"order_id":     orderID,
		"key_id":       h.KeyID,
		"amount_cents": detail.TotalAmountCents,
		"currency":     detail.Currency,
	})
}

// webhookPayload is the slice of the processor's payment events this
// service cares about.  payment.captured carries the order id on the
// payment entity, order.paid on the order entity.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

func (p *webhookPayload) orderID() string {
	if p.Payload.Payment.Entity.OrderID != "" {
		return p.Payload.Payment.Entity.OrderID
	}
	return p.Payload.Order.Entity.ID
}

// Webhook receives payment events from the processor.  The signature is
// verified against the raw body before anything is trusted.  A captured
// payment confirms the matching booking; replays return 200 so the
// processor stops retrying; a confirmation-time conflict returns 409
// and the payment is left for manual reconciliation.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	if h.Gateway == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "payments not configured"})
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("X-Razorpay-Signature")
	if h.WebhookSecret != "" {
		if sig == "" || !h.Gateway.VerifyWebhookSignature(string(body), sig, h.WebhookSecret) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}
	}

	var ev webhookPayload
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if ev.Event != "payment.captured" && ev.Event != "order.paid" {
		// Not a successful payment; acknowledge and ignore.
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	}
	orderID := ev.orderID()
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing order id"})
	}
	ctx := c.Request().Context()

	bookingID, err := h.Bookings.GetIDByPaymentRef(ctx, orderID)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Lifecycle.Confirm(ctx, bookingID)
	if err != nil {
		var gone *service.DatesNoLongerAvailableError
		if errors.As(err, &gone) {
			c.Logger().Errorf("payment captured for booking %d but dates were taken: %v", bookingID, err)
		}
		return writeError(c, err)
	}
	if res.AlreadyConfirmed {
		return c.JSON(http.StatusOK, echo.Map{"booking_id": bookingID, "status": res.Booking.Status, "already_confirmed": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking_id": bookingID, "status": res.Booking.Status})
}
