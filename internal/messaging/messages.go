// Package messaging serves the public message feed over HTTP and
// websocket.
package messaging

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/ledgerhub/internal/ledger"
	"github.com/sudo-init-do/ledgerhub/internal/logging"
)

type Handler struct {
	svc *ledger.Service
	hub *Hub
	log logging.Logger
}

func NewHandler(svc *ledger.Service, hub *Hub, log logging.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, log: log}
}

type SendMessageRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// FeedItem is one feed entry as listed and streamed.
type FeedItem struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
}

func newFeedItem(m ledger.FeedMessage) FeedItem {
	return FeedItem{ID: m.ID, Message: m.Text, CreatedAt: m.CreatedAt, Username: m.Username}
}

// POST /api/send-message
func (h *Handler) SendMessage(c echo.Context) error {
	req := new(SendMessageRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := c.Request().Context()
	msg, err := h.svc.PostMessage(ctx, req.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrValidation):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and message required"})
		case errors.Is(err, ledger.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		default:
			h.log.Error(ctx, "send message failed", "user_id", req.UserID, "error", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error saving message"})
		}
	}

	h.hub.broadcast(wsEvent{Type: "message_new", Data: newFeedItem(*msg)})
	return c.JSON(http.StatusOK, echo.Map{"message": "Message sent successfully."})
}

// GET /api/messages
func (h *Handler) ListMessages(c echo.Context) error {
	msgs, err := h.svc.ListMessages(c.Request().Context())
	if err != nil {
		h.log.Error(c.Request().Context(), "list messages failed", "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Database error"})
	}
	out := make([]FeedItem, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, newFeedItem(m))
	}
	return c.JSON(http.StatusOK, out)
}
