package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/api"
	"github.com/charlesng35/studentms/internal/app"
	iauth "github.com/charlesng35/studentms/internal/auth"
	sharedtestutil "github.com/charlesng35/studentms/internal/database/testutil"
	"github.com/charlesng35/studentms/internal/middleware"
	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/monitoring"
	"github.com/charlesng35/studentms/internal/monitoring/checks"
	"github.com/charlesng35/studentms/internal/notifications"
	"github.com/charlesng35/studentms/internal/realtime"
	"github.com/charlesng35/studentms/internal/services"
	"github.com/charlesng35/studentms/pkg/crypto"
	"github.com/charlesng35/studentms/pkg/mail"
	"github.com/charlesng35/studentms/pkg/response"
)

const (
	// AdminUsername and AdminPassword are the operator credentials accepted by /api/auth/token.
	AdminUsername = "registrar"
	AdminPassword = "Secret123!"
)

// Mailer records outbound email instead of delivering it.
type Mailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

// Send implements mail.Mailer.
func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of every recorded message.
func (m *Mailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Hub    *realtime.Hub
	Mailer *Mailer
	Config *app.Config
}

// EnvOption adjusts the configuration before the router is built.
type EnvOption func(*app.Config)

// WithRateLimit enables dispatch rate limiting with the given budget.
func WithRateLimit(requests int, window time.Duration) EnvOption {
	return func(cfg *app.Config) {
		cfg.RateLimit = app.RateLimitConfig{Enabled: true, Requests: requests, Window: window}
	}
}

// NewEnv provisions a fresh API test environment with migrations and the demo roster applied.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	hash, err := crypto.HashPassword(AdminPassword)
	require.NoError(t, err)

	cfg := &app.Config{
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true, Timeout: time.Second},
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
			Admin: app.AdminSettings{Username: AdminUsername, PasswordHash: hash},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	env := &Env{T: t, DB: db, JWT: jwtSvc, Hub: realtime.NewHub(), Mailer: &Mailer{}, Config: cfg}

	store, err := notifications.NewStore(db)
	require.NoError(t, err)
	factory, err := notifications.NewFactory(notifications.FactoryDeps{
		Store:     store,
		Mailer:    env.Mailer,
		Publisher: env.Hub,
		EmailFrom: "registrar@example.com",
	})
	require.NoError(t, err)

	students, err := services.NewStudentService(db)
	require.NoError(t, err)
	queries, err := services.NewNotificationQueryService(db, env.Hub)
	require.NoError(t, err)
	manager, err := notifications.NewManager(store, factory, notifications.WithDirectory(students))
	require.NoError(t, err)

	health := monitoring.NewHealthManager()
	health.RegisterReadiness(checks.Database(db, cfg.Monitoring.Health.Timeout))

	env.Router, err = api.NewRouter(api.Dependencies{
		Config:    cfg,
		JWT:       jwtSvc,
		Manager:   manager,
		Queries:   queries,
		Students:  students,
		Hub:       env.Hub,
		Health:    health,
		RateStore: middleware.NewMemoryRateStore(),
	})
	require.NoError(t, err)

	return env
}

// StudentToken issues an access token for the given student.
func (e *Env) StudentToken(recipientID uint) string {
	e.T.Helper()
	token, err := e.JWT.GenerateAccessToken(iauth.AccessTokenInput{Role: iauth.RoleStudent, RecipientID: recipientID})
	require.NoError(e.T, err)
	return token
}

// Students returns the seeded roster ordered by id.
func (e *Env) Students() []models.Student {
	e.T.Helper()
	var students []models.Student
	require.NoError(e.T, e.DB.Order("id ASC").Find(&students).Error)
	return students
}

// TokenResult mirrors the POST /api/auth/token payload.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login exchanges the admin credentials for an access token.
func (e *Env) Login(username, password string) TokenResult {
	e.T.Helper()

	payload := map[string]string{
		"username": username,
		"password": password,
	}

	w := e.Request(http.MethodPost, "/api/auth/token", payload, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result TokenResult
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.AccessToken)
	require.Greater(e.T, result.ExpiresIn, 0)

	return result
}

// AdminToken logs in with the default operator credentials.
func (e *Env) AdminToken() string {
	e.T.Helper()
	return e.Login(AdminUsername, AdminPassword).AccessToken
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
