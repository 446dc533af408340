package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/studentms/internal/app"
	"github.com/charlesng35/studentms/internal/models"
)

func testConfig(t *testing.T) *app.Config {
	t.Helper()
	return &app.Config{
		Server: app.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "studentms.sqlite"),
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true},
			Health:     app.HealthConfig{Enabled: true, Timeout: time.Second},
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: "bootstrap-secret", Issuer: "test", TTL: time.Hour},
		},
		Email: app.EmailConfig{Provider: "smtp", SenderName: "StudentMS"},
		Notifications: app.NotificationsConfig{
			BroadcastConcurrency: 2,
			SMS:                  app.SMSGatewayConfig{SenderID: "SCHOOL"},
			Push:                 app.PushGatewayConfig{AppID: "studentms"},
		},
		Maintenance: app.MaintenanceConfig{
			Enabled:        true,
			StatusSchedule: "@every 1h",
			StaleAfter:     15 * time.Minute,
		},
	}
}

func TestBootstrapRuntimeWiresStack(t *testing.T) {
	cfg := testConfig(t)

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, stack.Shutdown(context.Background())) })

	require.NotNil(t, stack.Router)
	require.NotNil(t, stack.Reporter)
	require.Nil(t, stack.Redis)
	require.NotNil(t, stack.RateStore)

	var students int64
	require.NoError(t, stack.DB.Model(&models.Student{}).Count(&students).Error)
	require.Positive(t, students)

	rec := httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"component":"redis"`)
	require.Contains(t, rec.Body.String(), `"component":"notification_reporter"`)

	// Admin login stays unregistered without a password hash.
	rec = httptest.NewRecorder()
	stack.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBootstrapRuntimeRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "oracle"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.ErrorContains(t, err, "open database")
}

func TestReporterInterval(t *testing.T) {
	cfg := &app.Config{}

	cfg.Maintenance.StatusSchedule = "@every 30s"
	require.Equal(t, 30*time.Second, reporterInterval(cfg))

	cfg.Maintenance.StatusSchedule = "*/5 * * * *"
	require.Equal(t, 5*time.Minute, reporterInterval(cfg))
}

func TestLoadApplicationConfigMissingPath(t *testing.T) {
	_, err := loadApplicationConfig(filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "does not exist")
}

func TestRuntimeStackShutdownNil(t *testing.T) {
	var stack *runtimeStack
	require.NoError(t, stack.Shutdown(context.Background()))
}
