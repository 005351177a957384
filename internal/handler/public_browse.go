package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
	"github.com/iliyamo/desk-rental-marketplace/internal/utils"
)

// BrowseHandler serves the unauthenticated discovery endpoints.
type BrowseHandler struct {
	Desks        *repository.DeskRepo
	Availability *repository.AvailabilityRepo
}

func NewBrowseHandler(desks *repository.DeskRepo, availability *repository.AvailabilityRepo) *BrowseHandler {
	return &BrowseHandler{Desks: desks, Availability: availability}
}

// ListDesks returns active desks, optionally filtered by city.
func (h *BrowseHandler) ListDesks(c echo.Context) error {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	desks, err := h.Desks.ListActive(c.Request().Context(), c.QueryParam("city"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"desks": desks, "limit": limit, "offset": offset})
}

// GetDesk returns one active desk.  Deactivated desks are hidden from
// the public surface.
func (h *BrowseHandler) GetDesk(c echo.Context) error {
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	desk, err := h.Desks.GetByID(c.Request().Context(), deskID)
	if err != nil {
		return writeError(c, err)
	}
	if !desk.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
	}
	return c.JSON(http.StatusOK, desk)
}

// GetAvailability returns the desk's calendar between the from and to
// query parameters (defaults: today to today+60d).  Days the owner
// never opened are absent from the result.
func (h *BrowseHandler) GetAvailability(c echo.Context) error {
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	desk, err := h.Desks.GetByID(c.Request().Context(), deskID)
	if err != nil {
		return writeError(c, err)
	}
	if !desk.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 60)
	if s := c.QueryParam("from"); s != "" {
		t, err := time.ParseInLocation(utils.DateLayout, s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from date"})
		}
		from = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.ParseInLocation(utils.DateLayout, s, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to date"})
		}
		to = t
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}

	days, err := h.Availability.ListByDesk(c.Request().Context(), deskID, from, to)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]echo.Map, 0, len(days))
	for _, d := range days {
		entry := echo.Map{"date": d.Date.Format(utils.DateLayout), "status": d.Status}
		if d.Reason != nil {
			entry["reason"] = *d.Reason
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"desk_id": deskID,
		"from":    from.Format(utils.DateLayout),
		"to":      to.Format(utils.DateLayout),
		"days":    out,
	})
}

func queryInt(c echo.Context, name string, def int) int {
	s := c.QueryParam(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
