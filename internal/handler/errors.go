package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/service"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// writeError maps domain errors onto HTTP responses.  Unrecognized
// errors become opaque 500s; their details stay in the server log.
func writeError(c echo.Context, err error) error {
	var unavailable *service.DatesUnavailableError
	var gone *service.DatesNoLongerAvailableError

	switch {
	case errors.Is(err, utils.ErrNoDates),
		errors.Is(err, utils.ErrDuplicateDates),
		errors.Is(err, service.ErrQuoteTooLarge):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSelfBooking):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrDeskNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, service.ErrDeskInactive):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, repository.ErrStaleStatus):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "dates_unavailable",
			"dates": utils.FormatDates(unavailable.Dates),
		})
	case errors.As(err, &gone):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "dates_no_longer_available",
			"dates": utils.FormatDates(gone.Dates),
		})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
