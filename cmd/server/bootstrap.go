package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/api"
	"github.com/charlesng35/studentms/internal/app"
	"github.com/charlesng35/studentms/internal/app/maintenance"
	iauth "github.com/charlesng35/studentms/internal/auth"
	"github.com/charlesng35/studentms/internal/cache"
	"github.com/charlesng35/studentms/internal/database"
	"github.com/charlesng35/studentms/internal/middleware"
	"github.com/charlesng35/studentms/internal/monitoring"
	"github.com/charlesng35/studentms/internal/monitoring/checks"
	"github.com/charlesng35/studentms/internal/notifications"
	"github.com/charlesng35/studentms/internal/realtime"
	"github.com/charlesng35/studentms/internal/services"
	"github.com/charlesng35/studentms/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Hub       *realtime.Hub
	Manager   *notifications.Manager
	Reporter  *maintenance.Reporter
	Health    *monitoring.HealthManager
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(context.Background()); shutdownErr != nil {
				log.Warn("partial bootstrap cleanup failed", zap.Error(shutdownErr))
			}
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to in-process rate limiting", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		}
	}

	if stack.Redis != nil {
		stack.RateStore = middleware.NewCacheRateStore(stack.Redis)
	} else {
		stack.RateStore = middleware.NewMemoryRateStore()
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	mailer, err := cfg.Email.Mailer()
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	stack.Hub = realtime.NewHub()

	store, err := notifications.NewStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise notification store: %w", err)
	}

	factory, err := notifications.NewFactory(notifications.FactoryDeps{
		Store:      store,
		Mailer:     mailer,
		SMS:        notifications.NewLogSMSGateway(cfg.Notifications.SMS.SenderID),
		Push:       notifications.NewLogPushGateway(cfg.Notifications.Push.AppID),
		Publisher:  stack.Hub,
		SenderName: cfg.Email.SenderName,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise sender factory: %w", err)
	}

	students, err := services.NewStudentService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise student service: %w", err)
	}

	queries, err := services.NewNotificationQueryService(stack.DB, stack.Hub)
	if err != nil {
		return nil, fmt.Errorf("initialise notification query service: %w", err)
	}

	stack.Manager, err = notifications.NewManager(store, factory,
		notifications.WithDirectory(students),
		notifications.WithBroadcastConcurrency(cfg.Notifications.BroadcastConcurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise notification manager: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Reporter, err = maintenance.NewReporter(stack.DB,
			maintenance.WithSchedule(cfg.Maintenance.StatusSchedule),
			maintenance.WithStaleAfter(cfg.Maintenance.StaleAfter),
		)
		if err != nil {
			return nil, fmt.Errorf("initialise status reporter: %w", err)
		}
		if err := stack.Reporter.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Health = buildHealthManager(cfg, stack)

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:    cfg,
		JWT:       jwtSvc,
		Manager:   stack.Manager,
		Queries:   queries,
		Students:  students,
		Hub:       stack.Hub,
		Health:    stack.Health,
		RateStore: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func buildHealthManager(cfg *app.Config, stack *runtimeStack) *monitoring.HealthManager {
	timeout := cfg.Monitoring.Health.Timeout
	health := monitoring.NewHealthManager()

	health.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))

	health.RegisterReadiness(checks.Database(stack.DB, timeout))

	var pinger checks.RedisPinger
	if stack.Redis != nil {
		pinger = stack.Redis
	}
	health.RegisterReadiness(checks.Redis(pinger, cfg.Cache.Redis.Enabled, timeout))

	if stack.Reporter != nil {
		health.RegisterReadiness(checks.Reporter(stack.Reporter, 2*reporterInterval(cfg)))
	}
	return health
}

// reporterInterval approximates the schedule period; only "@every" specs are parsed.
func reporterInterval(cfg *app.Config) time.Duration {
	spec := strings.TrimSpace(cfg.Maintenance.StatusSchedule)
	if rest, ok := strings.CutPrefix(spec, "@every "); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(rest)); err == nil && d > 0 {
			return d
		}
	}
	return 5 * time.Minute
}

// Shutdown stops background jobs and releases resources, reporting every failure.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Reporter != nil {
		select {
		case <-s.Reporter.Stop().Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("status reporter: %w", ctx.Err()))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}
