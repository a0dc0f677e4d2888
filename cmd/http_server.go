package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/business-management/internal"
	"github.com/frahmantamala/business-management/internal/auth"
	authPostgres "github.com/frahmantamala/business-management/internal/auth/postgres"
	"github.com/frahmantamala/business-management/internal/authprovider"
	"github.com/frahmantamala/business-management/internal/core/events"
	"github.com/frahmantamala/business-management/internal/dntt"
	dnttPostgres "github.com/frahmantamala/business-management/internal/dntt/postgres"
	"github.com/frahmantamala/business-management/internal/file"
	filePostgres "github.com/frahmantamala/business-management/internal/file/postgres"
	"github.com/frahmantamala/business-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/business-management/internal/notification/postgres"
	"github.com/frahmantamala/business-management/internal/personnel"
	"github.com/frahmantamala/business-management/internal/project"
	projectPostgres "github.com/frahmantamala/business-management/internal/project/postgres"
	"github.com/frahmantamala/business-management/internal/pyc"
	pycPostgres "github.com/frahmantamala/business-management/internal/pyc/postgres"
	"github.com/frahmantamala/business-management/internal/reference"
	referencePostgres "github.com/frahmantamala/business-management/internal/reference/postgres"
	"github.com/frahmantamala/business-management/internal/revalidate"
	"github.com/frahmantamala/business-management/internal/transport"
	"github.com/frahmantamala/business-management/internal/transport/rest"
	"github.com/frahmantamala/business-management/internal/transport/swagger"
	"github.com/frahmantamala/business-management/internal/user"
	userPostgres "github.com/frahmantamala/business-management/internal/user/postgres"
	"github.com/frahmantamala/business-management/internal/web"
	"github.com/frahmantamala/business-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle pages, auth and API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Router     *chi.Mux
	Bus        *events.EventBus
	Revalidate *revalidate.Service
	Personnel  *personnel.Cache
	Directory  *personnel.Directory
	Logger     *slog.Logger

	stopInvalidation func()
}

func (d *Dependencies) Close() {
	d.stopInvalidation()
	d.Directory.Close()
	d.Personnel.Close()
	d.Bus.Wait()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	listenCtx, stopListen := context.WithCancel(context.Background())
	listenDone := make(chan struct{})
	go func() {
		defer close(listenDone)
		if err := deps.Revalidate.Listen(listenCtx); err != nil {
			lg.Error("Revalidate listener stopped", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("Server failed to start", "error", err)
			stopListen()
			<-listenDone
			deps.Close()
			os.Exit(1)
		}
	}

	stopListen()
	<-listenDone
	deps.Close()
	lg.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.Configure(os.Stdout, config.Observability.Logging.Level, config.Observability.Logging.Format)

	if _, err := swagger.Load(context.Background(), config.Server.OpenAPIPath); err != nil {
		return nil, err
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db, config.Observability.Logging.Level)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	batch := config.Database.BatchSize

	bus := events.NewEventBus(lg)

	var broker revalidate.Broker
	var brokerPinger rest.Pinger
	if config.Redis.Enabled() {
		rb := revalidate.NewRedisBroker(
			revalidate.NewRedisClient(config.Redis.Addr, config.Redis.Password, config.Redis.DB),
			config.Redis.Channel,
		)
		if err := rb.Ping(context.Background()); err != nil {
			lg.Warn("Redis unreachable, stale paths stay local until it recovers", "error", err)
		}
		broker, brokerPinger = rb, rb
	}
	revalidator := revalidate.NewService(bus, broker, lg)

	base := transport.NewBaseHandler(lg)

	// Personnel and the shared cache
	userService := user.NewService(userPostgres.NewUserRepository(gdb, batch), revalidator, lg)
	cache := personnel.NewCache(userService.GetAll,
		personnel.WithTTL(config.Cache.PersonnelTTL),
		personnel.WithLogger(lg),
	)
	// invalidate before the mutating request returns, refetch for subscribers later
	removeHook := revalidator.OnStale(personnel.Root, cache.Invalidate)
	stopRefetch := cache.InvalidateOn(bus, personnel.Root)
	stopInvalidation := func() {
		removeHook()
		stopRefetch()
	}
	directory := personnel.NewDirectory(cache)
	go func() {
		if _, err := cache.Get(context.Background(), false); err != nil {
			lg.Warn("Personnel cache: initial load failed", "error", err)
		}
	}()

	// Auth
	provider := authprovider.New(authprovider.Config{
		URL:     config.Backend.URL,
		AnonKey: config.Backend.AnonKey,
	}, lg)
	authRepo := authPostgres.NewAuthRepository(gdb)
	sessions := auth.NewSessionManager(config.Session, config.Backend.JWTSecret, provider, lg)
	authService := auth.NewService(authRepo, provider, config.Server.BaseURL, config.Backend.OAuthProvider, lg)

	// Entities
	notificationService := notification.NewService(notificationPostgres.NewNotificationRepository(db, batch), revalidator, lg)
	projectService := project.NewService(projectPostgres.NewProjectRepository(gdb, batch), userService, revalidator, lg)
	pycService := pyc.NewService(pycPostgres.NewPYCRepository(gdb, batch), notificationService, directory, revalidator, lg)
	dnttService := dntt.NewService(dnttPostgres.NewDNTTRepository(gdb, batch), notificationService, directory, revalidator, lg)
	fileService := file.NewService(filePostgres.NewFileRepository(gdb, batch), revalidator, lg)
	referenceService := reference.NewService(referencePostgres.NewStores(gdb, batch), revalidator, lg)

	pages, err := web.NewPages(directory)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:       rest.NewHealthHandler(db, brokerPinger),
		Gateway:      auth.NewGateway(sessions, lg),
		Auth:         auth.NewHandler(base, authService, sessions),
		Pages:        pages,
		User:         user.NewHandler(base, userService, cache),
		Project:      project.NewHandler(base, projectService),
		PYC:          pyc.NewHandler(base, pycService),
		DNTT:         dntt.NewHandler(base, dnttService),
		Notification: notification.NewHandler(base, notificationService),
		File:         file.NewHandler(base, fileService),
		Reference:    reference.NewHandler(base, referenceService),
		AccessLevels: authRepo,
	}, rest.RouterConfig{
		AllowedOrigins: config.Server.AllowedOrigins,
		OpenAPIPath:    config.Server.OpenAPIPath,
	}, lg)

	return &Dependencies{
		Config:           config,
		DB:               db,
		Router:           router,
		Bus:              bus,
		Revalidate:       revalidator,
		Personnel:        cache,
		Directory:        directory,
		Logger:           lg,
		stopInvalidation: stopInvalidation,
	}, nil
}
