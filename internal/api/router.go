package api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/studentms/internal/app"
	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/internal/handlers"
	"github.com/charlesng35/studentms/internal/middleware"
	"github.com/charlesng35/studentms/internal/monitoring"
	"github.com/charlesng35/studentms/internal/notifications"
	"github.com/charlesng35/studentms/internal/realtime"
	"github.com/charlesng35/studentms/internal/services"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Config    *app.Config
	JWT       *iauth.JWTService
	Manager   *notifications.Manager
	Queries   *services.NotificationQueryService
	Students  *services.StudentService
	Hub       *realtime.Hub
	Health    *monitoring.HealthManager
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Manager == nil || deps.Queries == nil || deps.Students == nil {
		return nil, fmt.Errorf("notification services must be provided")
	}
	cfg := deps.Config

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.HSTS))

	registerHealthRoutes(r, cfg.Monitoring.Health.Enabled, deps.Health)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler, err := handlers.NewAuthHandler(deps.JWT, handlers.AdminCredentials{
		Username:     cfg.Auth.Admin.Username,
		PasswordHash: cfg.Auth.Admin.PasswordHash,
	})
	if err != nil {
		return nil, err
	}
	registerAuthRoutes(r, authHandler, cfg.Auth.AdminLoginEnabled())

	adminHandler, err := handlers.NewAdminNotificationHandler(deps.Manager, deps.Queries, deps.Students)
	if err != nil {
		return nil, err
	}
	studentHandler, err := handlers.NewStudentHandler(deps.Students)
	if err != nil {
		return nil, err
	}
	inboxHandler, err := handlers.NewInboxHandler(deps.Queries, deps.Hub)
	if err != nil {
		return nil, err
	}

	var dispatchLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		dispatchLimit = middleware.RateLimit(deps.RateStore, middleware.RateLimitConfig{
			Requests: cfg.RateLimit.Requests,
			Window:   cfg.RateLimit.Window,
		})
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.Auth(deps.JWT, false), middleware.RequireRole(iauth.RoleAdmin))
	registerAdminNotificationRoutes(admin, adminHandler, dispatchLimit)
	registerStudentRoutes(admin, studentHandler)

	// Browsers cannot set headers on websocket upgrades, so the inbox accepts ?access_token=.
	me := r.Group("/api/me")
	me.Use(middleware.Auth(deps.JWT, true), middleware.RequireRole(iauth.RoleStudent))
	registerInboxRoutes(me, inboxHandler)

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
