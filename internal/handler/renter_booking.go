package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// BookingService is the lifecycle surface the HTTP layer depends on.
// *service.BookingLifecycle implements it; tests substitute a mock.
type BookingService interface {
	Submit(ctx context.Context, deskID, renterID uint64, dates []time.Time) (*model.Booking, error)
	Confirm(ctx context.Context, bookingID uint64) (*service.ConfirmResult, error)
	Cancel(ctx context.Context, bookingID, requesterID uint64) (*model.Booking, error)
	AttachPaymentRef(ctx context.Context, bookingID uint64, ref string) error
}

// RenterBookingHandler serves the renter-facing booking endpoints.
type RenterBookingHandler struct {
	Lifecycle BookingService
	Bookings  *repository.BookingRepo
}

func NewRenterBookingHandler(lifecycle BookingService, bookings *repository.BookingRepo) *RenterBookingHandler {
	return &RenterBookingHandler{Lifecycle: lifecycle, Bookings: bookings}
}

type submitBookingRequest struct {
	DeskID uint64   `json:"desk_id"`
	Dates  []string `json:"dates"`
}

type bookingResponse struct {
	ID               uint64   `json:"id"`
	DeskID           uint64   `json:"desk_id"`
	Status           string   `json:"status"`
	Dates            []string `json:"dates"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	PlatformFeeCents uint32   `json:"platform_fee_cents"`
	OwnerAmountCents uint32   `json:"owner_amount_cents"`
	Currency         string   `json:"currency"`
}

func toBookingResponse(b *model.Booking, dates []time.Time) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		DeskID:           b.DeskID,
		Status:           b.Status,
		Dates:            utils.FormatDates(dates),
		TotalAmountCents: b.TotalAmountCents,
		PlatformFeeCents: b.PlatformFeeCents,
		OwnerAmountCents: b.OwnerAmountCents,
		Currency:         b.Currency,
	}
}

// Submit creates a PENDING booking over the requested days.
func (h *RenterBookingHandler) Submit(c echo.Context) error {
	renterID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.DeskID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "desk_id required"})
	}
	dates, err := utils.ParseDates(req.Dates)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	booking, err := h.Lifecycle.Submit(c.Request().Context(), req.DeskID, renterID, dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(booking, dates))
}

// List returns the renter's bookings, newest first.
func (h *RenterBookingHandler) List(c echo.Context) error {
	renterID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Bookings.ListByRenter(c.Request().Context(), renterID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// Get returns one of the renter's bookings with its desk and dates.
func (h *RenterBookingHandler) Get(c echo.Context) error {
	renterID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Bookings.GetByIDForRenter(c.Request().Context(), bookingID, renterID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Cancel reverses a CONFIRMED booking and releases its days.
func (h *RenterBookingHandler) Cancel(c echo.Context) error {
	renterID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Lifecycle.Cancel(c.Request().Context(), bookingID, renterID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": booking.ID, "status": booking.Status})
}
