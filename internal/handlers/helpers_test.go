package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/database/testutil"
	"github.com/charlesng35/studentms/internal/middleware"
	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/notifications"
	"github.com/charlesng35/studentms/internal/services"
	"github.com/charlesng35/studentms/pkg/mail"
	"github.com/charlesng35/studentms/pkg/response"
)

const testRecipientHeader = "X-Test-Recipient"

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

type handlerEnv struct {
	t        *testing.T
	db       *gorm.DB
	mailer   *recordingMailer
	students *services.StudentService
	queries  *services.NotificationQueryService
	router   *gin.Engine
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	env := &handlerEnv{t: t, db: db, mailer: &recordingMailer{}}

	store, err := notifications.NewStore(db)
	require.NoError(t, err)
	factory, err := notifications.NewFactory(notifications.FactoryDeps{
		Store:     store,
		Mailer:    env.mailer,
		EmailFrom: "registrar@example.com",
	})
	require.NoError(t, err)

	env.students, err = services.NewStudentService(db)
	require.NoError(t, err)
	env.queries, err = services.NewNotificationQueryService(db, nil)
	require.NoError(t, err)

	manager, err := notifications.NewManager(store, factory, notifications.WithDirectory(env.students))
	require.NoError(t, err)

	admin, err := NewAdminNotificationHandler(manager, env.queries, env.students)
	require.NoError(t, err)
	inbox, err := NewInboxHandler(env.queries, nil)
	require.NoError(t, err)
	students, err := NewStudentHandler(env.students)
	require.NoError(t, err)

	r := gin.New()
	adminGroup := r.Group("/admin")
	adminGroup.POST("/notifications/send", admin.Send)
	adminGroup.POST("/notifications/broadcast", admin.Broadcast)
	adminGroup.GET("/notifications", admin.List)
	adminGroup.GET("/notifications/stats", admin.Stats)
	adminGroup.GET("/notifications/:id", admin.Get)
	adminGroup.GET("/notifications/:id/logs", admin.Logs)
	adminGroup.GET("/students", students.List)
	adminGroup.POST("/students", students.Create)
	adminGroup.GET("/students/:id", students.Get)
	adminGroup.PATCH("/students/:id/active", students.SetActive)

	me := r.Group("/me", asRecipient)
	me.GET("/notifications", inbox.List)
	me.GET("/notifications/unread-count", inbox.UnreadCount)
	me.POST("/notifications/:id/read", inbox.MarkRead)
	me.POST("/notifications/read-all", inbox.MarkAllRead)
	me.GET("/notifications/stream", inbox.Stream)

	env.router = r
	return env
}

// asRecipient stands in for the JWT middleware.
func asRecipient(c *gin.Context) {
	if raw := c.GetHeader(testRecipientHeader); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err == nil {
			c.Set(middleware.CtxRecipientIDKey, uint(id))
		}
	}
	c.Next()
}

func (e *handlerEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *handlerEnv) asStudent(id uint) []string {
	return []string{testRecipientHeader, strconv.FormatUint(uint64(id), 10)}
}

func (e *handlerEnv) createStudent(first, email, phone string, active bool) models.Student {
	e.t.Helper()
	student := models.Student{FirstName: first, LastName: "Test", IsActive: true}
	if email != "" {
		student.Email = &email
	}
	if phone != "" {
		student.Phone = &phone
	}
	require.NoError(e.t, e.db.Create(&student).Error)
	if !active {
		require.NoError(e.t, e.db.Model(&student).Update("is_active", false).Error)
	}
	return student
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out), w.Body.String())
	return out
}
