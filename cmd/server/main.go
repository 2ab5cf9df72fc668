package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messagely/internal/auth"
	"messagely/internal/config"
	apphttp "messagely/internal/http"
	"messagely/internal/repository"
	"messagely/internal/repository/postgres"
	"messagely/internal/repository/sqlite"
	"messagely/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using %s", cfg.Log.Level, logger.GetLevel())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closer, err := openUserRepository(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer closer.Close()

	if err := users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptWorkFactor)
	if err != nil {
		logger.Fatalf("setup password hasher: %v", err)
	}
	tokens, err := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.TokenTTL())
	if err != nil {
		logger.Fatalf("setup token issuer: %v", err)
	}
	authService, err := service.NewAuthService(users, hasher, tokens)
	if err != nil {
		logger.Fatalf("setup auth service: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"driver":      cfg.Database.Driver,
		"bcrypt_cost": hasher.Cost(),
		"token_ttl":   cfg.TokenTTL().String(),
	}).Info("auth configured")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, tokens, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openUserRepository(ctx context.Context, cfg config.Config) (repository.UserRepository, io.Closer, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(pool), closerFunc(func() error {
			pool.Close()
			return nil
		}), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
