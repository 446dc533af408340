package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/notifications"
	"github.com/charlesng35/studentms/internal/services"
	appErrors "github.com/charlesng35/studentms/pkg/errors"
	"github.com/charlesng35/studentms/pkg/logger"
	"github.com/charlesng35/studentms/pkg/response"
)

const (
	messageSent   = "Notification sent"
	messageFailed = "Notification failed"
)

// AdminNotificationHandler exposes the administrative dispatch and overview endpoints.
type AdminNotificationHandler struct {
	manager  *notifications.Manager
	queries  *services.NotificationQueryService
	students *services.StudentService
}

// NewAdminNotificationHandler constructs the handler. students may be nil, in which case
// contact data must always be supplied by the caller.
func NewAdminNotificationHandler(manager *notifications.Manager, queries *services.NotificationQueryService, students *services.StudentService) (*AdminNotificationHandler, error) {
	if manager == nil {
		return nil, errors.New("admin notification handler: manager is required")
	}
	if queries == nil {
		return nil, errors.New("admin notification handler: query service is required")
	}
	return &AdminNotificationHandler{manager: manager, queries: queries, students: students}, nil
}

type sendNotificationRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=100"`
	Message     string `json:"message" validate:"required"`
	Channel     string `json:"channel" validate:"required,channel"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Priority    string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

type broadcastRequest struct {
	Title    string `json:"title" validate:"required,max=100"`
	Message  string `json:"message" validate:"required"`
	Channel  string `json:"channel" validate:"required,channel"`
	Priority string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
}

type sendNotificationResponse struct {
	Message string `json:"message"`
}

type broadcastResponse struct {
	BatchID          string                          `json:"batch_id"`
	Attempted        int                             `json:"attempted"`
	Succeeded        int                             `json:"succeeded"`
	Failed           int                             `json:"failed"`
	FailedRecipients []uint                          `json:"failed_recipients"`
	Records          []notifications.BroadcastRecord `json:"records"`
	Message          string                          `json:"message"`
}

// Send dispatches one notification. The envelope's success flag mirrors the dispatch outcome;
// failure reasons stay in the audit trail and are never echoed to the client.
func (h *AdminNotificationHandler) Send(c *gin.Context) {
	var req sendNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	channel, _ := models.ParseChannel(req.Channel)
	sendReq := notifications.SendRequest{
		RecipientID: req.RecipientID,
		Title:       strings.TrimSpace(req.Title),
		Message:     req.Message,
		Channel:     channel,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Priority:    req.Priority,
	}
	h.fillContact(c, &sendReq)

	ok := h.manager.SendNotification(actorContext(c), sendReq)

	message := messageSent
	if !ok {
		message = messageFailed
	}
	c.JSON(http.StatusOK, response.Response{
		Success: ok,
		Data:    sendNotificationResponse{Message: message},
	})
}

// fillContact completes missing contact fields from the student directory.
func (h *AdminNotificationHandler) fillContact(c *gin.Context, req *notifications.SendRequest) {
	if h.students == nil {
		return
	}
	needsEmail := req.Channel == models.ChannelEmail && req.Email == ""
	needsPhone := req.Channel == models.ChannelSMS && req.Phone == ""
	if !needsEmail && !needsPhone {
		return
	}

	student, err := h.students.Get(requestContext(c), req.RecipientID)
	if err != nil {
		if !errors.Is(err, services.ErrStudentNotFound) {
			logger.WithModule("handlers").Warn("contact lookup failed",
				zap.Uint("recipient_id", req.RecipientID),
				zap.Error(err),
			)
		}
		return
	}
	if needsEmail && student.Email != nil {
		req.Email = strings.TrimSpace(*student.Email)
	}
	if needsPhone && student.Phone != nil {
		req.Phone = strings.TrimSpace(*student.Phone)
	}
}

// Broadcast fans one message out to every active student.
func (h *AdminNotificationHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if !bindAndValidate(c, &req) {
		return
	}

	channel, _ := models.ParseChannel(req.Channel)
	result := h.manager.SendBroadcast(actorContext(c), notifications.BroadcastRequest{
		Title:    strings.TrimSpace(req.Title),
		Message:  req.Message,
		Channel:  channel,
		Priority: req.Priority,
	})
	if result.Err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(result.Err))
		return
	}

	response.Success(c, http.StatusOK, broadcastResponse{
		BatchID:          result.BatchID,
		Attempted:        result.Attempted,
		Succeeded:        result.Succeeded,
		Failed:           result.Failed,
		FailedRecipients: result.FailedRecipients,
		Records:          result.Records,
		Message:          result.Summary(),
	})
}

// List returns the most recent notifications, optionally filtered by channel and status.
func (h *AdminNotificationHandler) List(c *gin.Context) {
	opts := services.RecentOptions{Limit: parseIntQuery(c, "limit", services.RecentNotificationsLimit)}

	if raw := strings.TrimSpace(c.Query("channel")); raw != "" {
		channel, err := models.ParseChannel(raw)
		if err != nil {
			response.Error(c, appErrors.ErrUnknownChannel)
			return
		}
		opts.Channel = channel
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := parseStatus(raw)
		if !ok {
			response.Error(c, appErrors.NewBadRequest("status must be one of Pending, Delivered, Failed"))
			return
		}
		opts.Status = status
	}

	rows, err := h.queries.ListRecent(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// Get returns a single notification.
func (h *AdminNotificationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	n, err := h.queries.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// Logs returns the audit trail of a notification in chronological order.
func (h *AdminNotificationHandler) Logs(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	logs, err := h.queries.ListLogs(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

// Stats returns stored notification counts per status.
func (h *AdminNotificationHandler) Stats(c *gin.Context) {
	counts, err := h.queries.CountByStatus(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

func parseStatus(raw string) (models.Status, bool) {
	for _, status := range models.Statuses() {
		if strings.EqualFold(string(status), raw) {
			return status, true
		}
	}
	return "", false
}
