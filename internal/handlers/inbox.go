package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/middleware"
	"github.com/charlesng35/studentms/internal/realtime"
	"github.com/charlesng35/studentms/internal/services"
	appErrors "github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/response"
)

// InboxHandler serves a student's in-app notifications and live stream.
type InboxHandler struct {
	queries *services.NotificationQueryService
	hub     *realtime.Hub
}

// NewInboxHandler constructs an inbox handler. hub may be nil, which disables the stream.
func NewInboxHandler(queries *services.NotificationQueryService, hub *realtime.Hub) (*InboxHandler, error) {
	if queries == nil {
		return nil, errors.New("inbox handler: query service is required")
	}
	return &InboxHandler{queries: queries, hub: hub}, nil
}

func currentRecipient(c *gin.Context) (uint, bool) {
	id := middleware.RecipientIDFrom(c)
	if id == 0 {
		response.Error(c, appErrors.ErrUnauthorized)
		return 0, false
	}
	return id, true
}

// List returns the caller's delivered in-app notifications, newest first.
func (h *InboxHandler) List(c *gin.Context) {
	recipientID, ok := currentRecipient(c)
	if !ok {
		return
	}

	opts := services.InboxOptions{
		Limit:      parseIntQuery(c, "limit", 25),
		Offset:     parseIntQuery(c, "offset", 0),
		UnreadOnly: parseBoolQuery(c, "unread"),
	}

	items, total, err := h.queries.ListInbox(requestContext(c), recipientID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Total:  int(total),
	})
}

// UnreadCount returns the unread badge count.
func (h *InboxHandler) UnreadCount(c *gin.Context) {
	recipientID, ok := currentRecipient(c)
	if !ok {
		return
	}

	count, err := h.queries.UnreadCount(requestContext(c), recipientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead flags one notification as read.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	recipientID, ok := currentRecipient(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.queries.MarkRead(requestContext(c), recipientID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// MarkAllRead flags every unread notification of the caller as read.
func (h *InboxHandler) MarkAllRead(c *gin.Context) {
	recipientID, ok := currentRecipient(c)
	if !ok {
		return
	}

	updated, err := h.queries.MarkAllRead(requestContext(c), recipientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// Stream upgrades the request to a websocket carrying the caller's live notifications.
func (h *InboxHandler) Stream(c *gin.Context) {
	recipientID, ok := currentRecipient(c)
	if !ok {
		return
	}
	if h.hub == nil {
		response.Error(c, appErrors.New("STREAM_UNAVAILABLE", "Live notifications are disabled", http.StatusServiceUnavailable))
		return
	}
	h.hub.Serve(recipientID, c.Writer, c.Request)
}
