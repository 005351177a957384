package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
)

// FavoriteHandler lets renters save desks for later.
type FavoriteHandler struct {
	Favorites *repository.FavoriteRepo
	Desks     *repository.DeskRepo
}

func NewFavoriteHandler(favorites *repository.FavoriteRepo, desks *repository.DeskRepo) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favorites, Desks: desks}
}

// Add saves a desk to the user's favorites.  Saving twice is a no-op.
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	if _, err := h.Desks.GetByID(c.Request().Context(), deskID); err != nil {
		return writeError(c, err)
	}
	created, err := h.Favorites.Add(c.Request().Context(), userID, deskID)
	if err != nil {
		return writeError(c, err)
	}
	if created {
		return c.JSON(http.StatusCreated, echo.Map{"desk_id": deskID})
	}
	return c.JSON(http.StatusOK, echo.Map{"desk_id": deskID})
}

// Remove deletes a favorite.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	removed, err := h.Favorites.Remove(c.Request().Context(), userID, deskID)
	if err != nil {
		return writeError(c, err)
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"desk_id": deskID})
}

// List returns the user's favorited desks, most recently saved first.
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	desks, err := h.Favorites.ListDesks(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"desks": desks})
}
