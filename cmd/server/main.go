package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/sumire/charity/internal/config"
	"github.com/sumire/charity/internal/currency"
	"github.com/sumire/charity/internal/database"
	"github.com/sumire/charity/internal/handler"
	"github.com/sumire/charity/internal/logging"
	"github.com/sumire/charity/internal/metrics"
	"github.com/sumire/charity/internal/repository"
	"github.com/sumire/charity/internal/repository/memory"
	"github.com/sumire/charity/internal/service"
	"github.com/sumire/charity/internal/validate"
)

func main() {
	configPath := flag.String("config", os.Getenv("CHARITY_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	users     service.UserStore
	projects  service.ProjectStore
	donations service.DonationStore
	tasks     service.TaskStore
	close     func() error
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.close() //nolint:errcheck

	cache, closeCache, err := openRateCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache() //nolint:errcheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	schemas, err := validate.New(validate.EnginePlayground)
	if err != nil {
		return err
	}

	provider := currency.NewHTTPProvider(cfg.Currency.ProviderURL,
		&http.Client{Timeout: cfg.Currency.Timeout},
		cfg.Currency.RequestRate, cfg.Currency.RequestBurst)
	rates := currency.NewService(provider, cache, cfg.Currency.CacheTTL, logger, m)

	authSvc := service.NewAuthService(st.users, service.AuthConfig{
		JWTSecret:          cfg.Auth.JWTSecret,
		AccessTTL:          cfg.Auth.AccessTTL,
		RefreshTTL:         cfg.Auth.RefreshTTL,
		GoogleClientID:     cfg.Auth.GoogleClientID,
		GoogleClientSecret: cfg.Auth.GoogleClientSecret,
		PublicURL:          cfg.Auth.PublicURL,
		AdminEmails:        cfg.Auth.AdminEmails,
	})

	e := handler.NewServer(handler.Dependencies{
		Auth:      authSvc,
		Projects:  service.NewProjectService(st.projects),
		Donations: service.NewDonationService(st.donations, st.projects, rates, logger, m),
		Tasks:     service.NewTaskService(st.tasks, st.users),
		Rates:     rates,
		Schemas:   schemas,
		Logger:    logger,
		Metrics:   m,
		Gatherer:  reg,
		BodyLimit: cfg.Server.BodyLimit,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler(e)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.Database.Driver))
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*stores, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &stores{
			users:     s.Users(),
			projects:  s.Projects(),
			donations: s.Donations(),
			tasks:     s.Tasks(),
			close:     func() error { return nil },
		}, nil
	}

	if cfg.Migrate {
		if err := database.Migrate(cfg.URL); err != nil {
			return nil, err
		}
		logger.Info("database migrated")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected")

	return &stores{
		users:     repository.NewUserRepository(db),
		projects:  repository.NewProjectRepository(db),
		donations: repository.NewDonationRepository(db),
		tasks:     repository.NewTaskRepository(db),
		close:     db.Close,
	}, nil
}

func openRateCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (currency.Cache, func() error, error) {
	if cfg.Addr == "" {
		return currency.NewMemoryCache(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return currency.NewRedisCache(client), client.Close, nil
}
