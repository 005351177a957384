package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
)

// OwnerDeskHandler serves the owner-facing listing endpoints.
type OwnerDeskHandler struct {
	Desks *repository.DeskRepo
}

func NewOwnerDeskHandler(desks *repository.DeskRepo) *OwnerDeskHandler {
	return &OwnerDeskHandler{Desks: desks}
}

type deskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	City             string `json:"city"`
	Address          string `json:"address"`
	PricePerDayCents uint32 `json:"price_per_day_cents"`
	Currency         string `json:"currency"`
	IsActive         *bool  `json:"is_active"`
}

func (req *deskRequest) validate() (string, bool) {
	if strings.TrimSpace(req.Title) == "" {
		return "title required", false
	}
	if strings.TrimSpace(req.City) == "" {
		return "city required", false
	}
	if req.PricePerDayCents == 0 {
		return "price_per_day_cents must be positive", false
	}
	if len(req.Currency) != 3 {
		return "currency must be a 3-letter code", false
	}
	return "", true
}

// Create publishes a new desk for the authenticated owner.
func (h *OwnerDeskHandler) Create(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req deskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	desk := &model.Desk{
		OwnerID:          ownerID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		City:             strings.TrimSpace(req.City),
		Address:          req.Address,
		PricePerDayCents: req.PricePerDayCents,
		Currency:         strings.ToUpper(req.Currency),
		IsActive:         true,
	}
	if req.IsActive != nil {
		desk.IsActive = *req.IsActive
	}
	if err := h.Desks.Create(c.Request().Context(), desk); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, desk)
}

// Update rewrites a desk's listing fields.  Only the owner may update.
func (h *OwnerDeskHandler) Update(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	var req deskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg, ok := req.validate(); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	desk := &model.Desk{
		ID:               deskID,
		OwnerID:          ownerID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		City:             strings.TrimSpace(req.City),
		Address:          req.Address,
		PricePerDayCents: req.PricePerDayCents,
		Currency:         strings.ToUpper(req.Currency),
		IsActive:         true,
	}
	if req.IsActive != nil {
		desk.IsActive = *req.IsActive
	}
	if err := h.Desks.Update(c.Request().Context(), desk); err != nil {
		return writeError(c, err)
	}
	updated, err := h.Desks.GetByID(c.Request().Context(), deskID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Deactivate hides the desk from browsing and new bookings.
func (h *OwnerDeskHandler) Deactivate(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	if err := h.Desks.Deactivate(c.Request().Context(), deskID, ownerID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "desk deactivated"})
}

// ListMine returns every desk the owner has published.
func (h *OwnerDeskHandler) ListMine(c echo.Context) error {
	ownerID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	desks, err := h.Desks.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"desks": desks})
}
