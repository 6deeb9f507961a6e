package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/handler"
	appointmenthandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	clinicalhandler "github.com/jwalitptl/clinic-api/internal/handler/clinical"
	dashboardhandler "github.com/jwalitptl/clinic-api/internal/handler/dashboard"
	patienthandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	"github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	schedulehandler "github.com/jwalitptl/clinic-api/internal/handler/schedule"
	shifthandler "github.com/jwalitptl/clinic-api/internal/handler/shift"
	specialtyhandler "github.com/jwalitptl/clinic-api/internal/handler/specialty"
	staffhandler "github.com/jwalitptl/clinic-api/internal/handler/staff"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/notifier"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/router"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	authservice "github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/internal/service/clinical"
	"github.com/jwalitptl/clinic-api/internal/service/dashboard"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/internal/service/schedule"
	"github.com/jwalitptl/clinic-api/internal/service/shift"
	"github.com/jwalitptl/clinic-api/internal/service/specialty"
	"github.com/jwalitptl/clinic-api/internal/service/staff"
	"github.com/jwalitptl/clinic-api/internal/store"
	"github.com/jwalitptl/clinic-api/internal/store/cached"
	"github.com/jwalitptl/clinic-api/internal/store/postgres"
	redisstore "github.com/jwalitptl/clinic-api/internal/store/redis"
	"github.com/jwalitptl/clinic-api/internal/store/sqlite"
	jwtauth "github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		JSON:       cfg.Log.JSON,
	})
	log.Logger = *appLogger.Zerolog()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid clinic timezone")
	}

	reg := prom.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics("clinic", reg)

	ctx := context.Background()

	// Initialize collection store
	backend, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	var st store.Store = store.Instrument(backend, appMetrics)
	if ttl := cfg.CacheTTL(); ttl > 0 {
		st = cached.New(st, ttl, appMetrics)
	}
	defer st.Close()

	repos := repository.New(st, cfg.Store.Prefix)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	if cfg.Seed.Enabled {
		err := repos.Seed(ctx, repository.SeedCredentials{
			AdminPassword:   cfg.Seed.AdminPassword,
			PatientPassword: cfg.Seed.PatientPassword,
			StaffPassword:   cfg.Seed.StaffPassword,
		}, hasher, time.Now(), &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed default data")
		}
	}

	// Initialize broker and notifier
	broker, err := openBroker(cfg, appMetrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	sender := newSender(cfg, broker)

	auditor := audit.Nop()
	if cfg.Audit.Enabled {
		auditor, err = audit.New(cfg.Audit.Output)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open audit trail")
		}
	}
	defer func() { _ = auditor.Sync() }()

	tokens, err := jwtauth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.TokenTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}

	// Initialize services
	authSvc := authservice.NewService(repos, tokens, hasher, auditor, nil)
	appointmentSvc := appointment.NewService(repos, sender, auditor,
		appointment.WithLocation(loc),
		appointment.WithBroker(broker, cfg.Broker.Channel),
		appointment.WithMetrics(appMetrics),
		appointment.WithLogger(appLogger),
	)

	// Setup router
	r := router.NewRouter(middleware.NewAuthMiddleware(authSvc), router.Handlers{
		Health:  handler.NewHandler(st),
		Metrics: prometheus.New("clinic", reg),
		Auth:    authhandler.NewHandler(authSvc),
		Resources: []router.Handler{
			appointmenthandler.NewHandler(appointmentSvc),
			patienthandler.NewHandler(patient.NewService(repos, auditor, nil)),
			staffhandler.NewHandler(staff.NewService(repos, auditor, nil)),
			specialtyhandler.NewHandler(specialty.NewService(repos, auditor, nil)),
			shifthandler.NewHandler(shift.NewService(repos, auditor, nil)),
			schedulehandler.NewHandler(schedule.NewService(repos, auditor, nil)),
			clinicalhandler.NewHandler(clinical.NewService(repos, auditor, nil, loc)),
			dashboardhandler.NewHandler(dashboard.NewService(repos, nil, loc)),
		},
	}, &log.Logger, router.RouterConfig{
		Mode:        ginMode(cfg.Server.Mode),
		RateLimit:   rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:   cfg.RateLimit.Burst,
		Timeout:     cfg.RequestTimeout(),
		MaxBodySize: middleware.DefaultMaxBodySize,
		CORSConfig:  middleware.DefaultCORSConfig(),
	})
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return sqlite.New(cfg.Store.DSN)
	case "postgres":
		db, err := postgres.NewDB(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		s := postgres.New(db)
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		return redisstore.New(ctx, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openBroker(cfg *config.Config, m *metrics.Metrics) (messaging.Broker, error) {
	if cfg.Broker.RedisURL == "" {
		return messaging.NopBroker{}, nil
	}
	return redis.NewRedisBroker(redis.Config{
		URL:          cfg.Broker.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
	}, &log.Logger, m)
}

func newSender(cfg *config.Config, broker messaging.Broker) notifier.Sender {
	switch cfg.Notifier.Driver {
	case "smtp":
		return notifier.NewSMTP(notifier.SMTPConfig{
			Host:     cfg.Notifier.SMTP.Host,
			Port:     cfg.Notifier.SMTP.Port,
			Username: cfg.Notifier.SMTP.Username,
			Password: cfg.Notifier.SMTP.Password,
			From:     cfg.Notifier.SMTP.From,
		})
	case "broker":
		return notifier.NewBroker(broker, cfg.Broker.Channel)
	default:
		return notifier.NewNoop(&log.Logger)
	}
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
