// Package capsuleservice wires the capsule service and runs its HTTP server.
package capsuleservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/neuraltc/capsule-service/internal/api"
	"github.com/neuraltc/capsule-service/internal/assist"
	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/config"
	"github.com/neuraltc/capsule-service/internal/health"
	"github.com/neuraltc/capsule-service/internal/logger"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/store/postgres"
	"github.com/neuraltc/capsule-service/internal/store/sqlite"
	"github.com/neuraltc/capsule-service/internal/uploads"
)

// Run starts the capsule service HTTP server and blocks until shutdown or error.
func Run(buildTargetOverride string) error {
	// .env is a local-development convenience; absence is not an error.
	_ = godotenv.Load()

	log := logger.New("capsule-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}
	if buildTargetOverride != "" {
		cfg.BuildTarget = buildTargetOverride
		if err := cfg.ResolveDefaults(); err != nil {
			log.Error().Err(err).Msg("Invalid build-target override")
			return err
		}
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Capsule service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Store adapter unavailable")
		return err
	}

	files, err := uploads.New(cfg.UploadDir)
	if err != nil {
		log.Error().Err(err).Msg("Upload store unavailable")
		return err
	}

	authn, err := auth.NewAuthenticator(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		log.Error().Err(err).Msg("Authenticator initialization failed")
		return err
	}

	gen := assist.New(cfg.AssistURL, cfg.AssistModel)

	startHealthChecker(ctx, log, st)

	router := api.NewRouter(st, authn, files, gen)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newStore selects the store adapter from configuration.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewWithDB(db), nil
	case "sqlite":
		st, _, err := sqlite.New(ctx, cfg.SQLitePath)
		return st, err
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// startHealthChecker probes the store periodically and binds the result to
// the /api/health endpoint.
func startHealthChecker(ctx context.Context, log zerolog.Logger, st store.Store) {
	pinger, ok := st.(health.HealthPinger)
	if !ok {
		return
	}
	checker := health.NewChecker("store", pinger, log, 2*time.Second)
	go checker.Start(ctx, 30*time.Second)
	api.BindServiceHealth(checker.IsHealthy)
}
