package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-rental-marketplace/internal/model"
	"github.com/iliyamo/desk-rental-marketplace/internal/repository"
)

// MessageHandler serves the renter<->owner messaging endpoints.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Desks    *repository.DeskRepo
}

func NewMessageHandler(messages *repository.MessageRepo, desks *repository.DeskRepo) *MessageHandler {
	return &MessageHandler{Messages: messages, Desks: desks}
}

type sendMessageRequest struct {
	RecipientID uint64 `json:"recipient_id"`
	Body        string `json:"body"`
}

// Send posts a message about a desk.  The recipient must be either the
// desk's owner or someone messaging the caller about it; the only hard
// rule enforced here is that owner or sender is party to the desk.
func (h *MessageHandler) Send(c echo.Context) error {
	senderID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" || len(req.Body) > 4000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body must be 1-4000 characters"})
	}
	if req.RecipientID == 0 || req.RecipientID == senderID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid recipient"})
	}
	ctx := c.Request().Context()

	desk, err := h.Desks.GetByID(ctx, deskID)
	if err != nil {
		return writeError(c, err)
	}
	if desk.OwnerID != senderID && desk.OwnerID != req.RecipientID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "conversation must involve the desk owner"})
	}

	msg := &model.Message{
		DeskID:      deskID,
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	if err := h.Messages.Create(ctx, msg); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// Thread returns the caller's conversation with another user about a
// desk, oldest first.  The other party is passed as ?with=<user id>.
func (h *MessageHandler) Thread(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	deskID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid desk id"})
	}
	other, err := strconv.ParseUint(c.QueryParam("with"), 10, 64)
	if err != nil || other == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "with parameter required"})
	}
	msgs, err := h.Messages.Thread(c.Request().Context(), deskID, userID, other)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// Inbox returns the caller's most recent messages across all desks.
func (h *MessageHandler) Inbox(c echo.Context) error {
	userID, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	msgs, err := h.Messages.Inbox(c.Request().Context(), userID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}
