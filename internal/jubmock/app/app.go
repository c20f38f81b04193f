package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aussiebroadwan/openjub/internal/jubmock/domain"
	httpapi "github.com/aussiebroadwan/openjub/internal/jubmock/http"
	"github.com/aussiebroadwan/openjub/internal/jubmock/service"
	"github.com/aussiebroadwan/openjub/pkg/cryptox"
	"github.com/aussiebroadwan/openjub/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application wires the mock directory server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	directoryService    *service.DirectoryService
	tokenService        *service.TokenService
	campusService       *service.CampusService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "jubmock",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, for in-process servers in tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("jubmock starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down jubmock...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var err error
	if err = app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if cerr := app.server.Close(); cerr != nil {
			app.logger.Error("error closing server", "error", cerr)
		}
	}

	app.housekeepingService.Stop()

	app.logger.Info("jubmock stopped")
	return err
}

func (app *Application) initServices() error {
	seed, err := app.loadSeed()
	if err != nil {
		return err
	}

	pepper, err := readOptionalFile(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("read pepper: %w", err)
	}

	app.directoryService, err = service.NewDirectoryService(seed, cryptox.NewPasswordHasher(pepper))
	if err != nil {
		return fmt.Errorf("load directory: %w", err)
	}
	app.logger.Info("directory loaded", "users", len(seed.Users))

	secret := app.cfg.TokenSecret
	if secret == "" {
		if secret, err = cryptox.GenerateSecret(cryptox.SecretSize); err != nil {
			return fmt.Errorf("generate token secret: %w", err)
		}
		app.logger.Warn("JUBMOCK_TOKEN_SECRET not set; tokens will not survive a restart")
	}
	app.tokenService, err = service.NewTokenService([]byte(secret), app.cfg.Issuer, app.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	nets, err := service.ParseNetworks(app.cfg.CampusNetworks)
	if err != nil {
		return err
	}
	app.campusService = &service.CampusService{Networks: nets}

	app.housekeepingService = service.NewHousekeepingService(
		app.tokenService,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) loadSeed() (domain.Seed, error) {
	if app.cfg.SeedFile == "" {
		app.logger.Warn("JUBMOCK_SEED_FILE not set; directory is empty")
		return domain.Seed{}, nil
	}

	seed, err := domain.LoadSeedFile(app.cfg.SeedFile)
	if err != nil {
		return domain.Seed{}, fmt.Errorf("load seed %s: %w", app.cfg.SeedFile, err)
	}
	return seed, nil
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path) // #nosec G304 - operator supplied path
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.cfg.PublicURL, BuildVersion, app.cfg.TrustProxy, app.logger)

	router.Directory = app.directoryService
	router.Tokens = app.tokenService
	router.Campus = app.campusService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
