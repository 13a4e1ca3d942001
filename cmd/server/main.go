package main

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"auth-service/internal/config"
	apphttp "auth-service/internal/http"
	"auth-service/internal/maintenance"
	"auth-service/internal/repository"
	"auth-service/internal/repository/postgres"
	"auth-service/internal/repository/sqlite"
	"auth-service/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		stop()
		logger.Fatal(err)
	}
	logger.Info("bye")
}

// run wires the service and blocks until ctx is done or the server fails.
// Startup errors are returned so deferred cleanup (database, Sentry flush) still runs.
func run(ctx context.Context, cfg config.Config, logger *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	configureLogger(logger, cfg)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warnf("init sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	userRepo, tokenRepo, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeDB()

	if err := userRepo.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	if err := tokenRepo.Init(ctx); err != nil {
		return fmt.Errorf("init refresh token repository: %w", err)
	}

	privateKey, err := loadPrivateKey(cfg.Auth.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("load private key: %w", err)
	}

	userService := service.NewUserService(userRepo, cfg.Auth.BcryptCost)
	tokenService, err := service.NewTokenService(service.TokenConfig{
		PrivateKey:    privateKey,
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		Issuer:        cfg.Auth.Issuer,
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
	}, tokenRepo)
	if err != nil {
		return fmt.Errorf("setup token service: %w", err)
	}

	sweeper := maintenance.NewSweeper(maintenance.Config{
		Interval: cfg.SweepInterval(),
		Logger:   logger,
	}, tokenRepo)
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer sweeper.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		tokenService,
		apphttp.CookieConfig{
			Domain: cfg.Cookie.Domain,
			Secure: cfg.Cookie.Secure,
		},
		cfg.Server.AllowOrigin,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	return nil
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func openRepositories(ctx context.Context, cfg config.Config) (repository.UserRepository, repository.RefreshTokenRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewUserRepository(pool), postgres.NewRefreshTokenRepository(pool), pool.Close, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db), sqlite.NewRefreshTokenRepository(db), func() { _ = db.Close() }, nil
	}
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return key, nil
}
