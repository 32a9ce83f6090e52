// Command auth-server starts the authentication HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/audit"
	"github.com/scamshield/authcore/internal/config"
	"github.com/scamshield/authcore/internal/limiter"
	"github.com/scamshield/authcore/internal/migrate"
	"github.com/scamshield/authcore/internal/repository/postgres"
	"github.com/scamshield/authcore/internal/server/httpapi"
	"github.com/scamshield/authcore/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, runs migrations, and starts the HTTP server.
func main() {
	flags := pflag.NewFlagSet("auth-server", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to YAML config file")
	flags.String("addr", ":8080", "listen address")
	flags.String("dsn", "", "PostgreSQL DSN")
	flags.Duration("session_ttl", 7*24*time.Hour, "regular session lifetime")
	flags.Duration("reset_code_ttl", 15*time.Minute, "password reset code lifetime")
	flags.Duration("rate_limit_window", 15*time.Minute, "rate limit window")
	flags.Int("login_attempt_limit", limiter.DefaultLoginLimit, "login attempts per window")
	flags.Int("signup_attempt_limit", limiter.DefaultSignupLimit, "signup attempts per window")
	flags.Bool("disable_out_of_band_delivery", false, "return reset codes in API responses (demo only)")
	_ = flags.Parse(os.Args[1:])

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("open auth store", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	credRepo := postgres.NewCredentialRepo(db)
	sessRepo := postgres.NewSessionRepo(db)
	resetRepo := postgres.NewResetRepo(db)
	eventRepo := postgres.NewEventRepo(db)

	lim := limiter.NewPG(db.Pool, cfg.RateLimitWindow, map[string]int{
		limiter.EndpointLogin:  cfg.LoginAttemptLimit,
		limiter.EndpointSignup: cfg.SignupAttemptLimit,
	})

	// Services
	auditLog := audit.NewLog(eventRepo, logger)
	sessions := service.NewSessions(sessRepo, userRepo)
	resets := service.NewPasswordResets(resetRepo, userRepo, credRepo, sessions, cfg.ResetCodeTTL)
	gw, err := service.NewGateway(service.GatewayDeps{
		Users:           userRepo,
		Credentials:     credRepo,
		Sessions:        sessions,
		Resets:          resets,
		Limiter:         lim,
		Audit:           auditLog,
		Logger:          logger,
		SessionTTL:      cfg.SessionTTL,
		ExposeResetCode: cfg.DisableOutOfBandDelivery,
	})
	if err != nil {
		logger.Fatal("init gateway", zap.Error(err))
	}

	srv := httpapi.New(gw, logger, cfg.Addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Fatal("serve", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
