package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// OwnerAvailabilityHandler lets owners manage their desks' calendars
// and inspect bookings taken on them.
type OwnerAvailabilityHandler struct {
	Desks        *repository.DeskRepo
	Availability *repository.AvailabilityRepo
	Bookings     *repository.BookingRepo
}

func NewOwnerAvailabilityHandler(desks *repository.DeskRepo, availability *repository.AvailabilityRepo, bookings *repository.BookingRepo) *OwnerAvailabilityHandler {
	return &OwnerAvailabilityHandler{Desks: desks, Availability: availability, Bookings: bookings}
}

type datesRequest struct {
	Dates []string `json:"dates"`
}

// ownedDesk resolves the desk and enforces that the caller owns it.
func (h *OwnerAvailabilityHandler) ownedDesk(c echo.Context) (uint64, error) {
	ownerID, ok := getUserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid desk id")
	}
	desk, err := h.Desks.GetByID(c.Request().Context(), deskID)
	if err != nil {
		return 0, err
	}
	if desk.OwnerID != ownerID {
		return 0, repository.ErrForbidden
	}
	return deskID, nil
}

// OpenDates marks days as available for rent.  Idempotent: existing
// rows for a day are left untouched.
func (h *OwnerAvailabilityHandler) OpenDates(c echo.Context) error {
	deskID, err := h.ownedDesk(c)
	if err != nil {
		return respondOwned(c, err)
	}
	dates, err := bindDates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	n, err := h.Availability.OpenDates(c.Request().Context(), deskID, dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"opened": n})
}

// CloseDates withdraws still-available days from rent.  Days blocked by
// a booking or an owner block are skipped.
func (h *OwnerAvailabilityHandler) CloseDates(c echo.Context) error {
	deskID, err := h.ownedDesk(c)
	if err != nil {
		return respondOwned(c, err)
	}
	dates, err := bindDates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	n, err := h.Availability.CloseDates(c.Request().Context(), deskID, dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"closed": n})
}

// BlockDates marks available days as blocked for the owner's own use.
func (h *OwnerAvailabilityHandler) BlockDates(c echo.Context) error {
	deskID, err := h.ownedDesk(c)
	if err != nil {
		return respondOwned(c, err)
	}
	dates, err := bindDates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	n, err := h.Availability.BlockOwner(c.Request().Context(), deskID, dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blocked": n})
}

// UnblockDates lifts owner blocks.  Booking blocks are unaffected.
func (h *OwnerAvailabilityHandler) UnblockDates(c echo.Context) error {
	deskID, err := h.ownedDesk(c)
	if err != nil {
		return respondOwned(c, err)
	}
	dates, err := bindDates(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	n, err := h.Availability.UnblockOwner(c.Request().Context(), deskID, dates)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unblocked": n})
}

// ListDeskBookings returns every booking taken on one of the owner's
// desks, newest first.
func (h *OwnerAvailabilityHandler) ListDeskBookings(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	bookings, err := h.Bookings.ListByDeskForOwner(c.Request().Context(), deskID, ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

func bindDates(c echo.Context) ([]time.Time, error) {
	var req datesRequest
	if err := c.Bind(&req); err != nil {
		return nil, utils.ErrNoDates
	}
	return utils.ParseDates(req.Dates)
}

func respondOwned(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return writeError(c, err)
}
