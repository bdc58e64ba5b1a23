package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "task_manager/docs"
	"task_manager/internal/config"
	"task_manager/internal/handlers"
	"task_manager/internal/logger"
	"task_manager/internal/policy"
	"task_manager/internal/repository"
	"task_manager/internal/repository/db"
	"task_manager/internal/server"
	"task_manager/internal/service"
)

const startupTimeout = 30 * time.Second

// @title                       Task Manager API
// @version                     1.0
// @description                 Task management REST API with role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	// load config before the logger so level and format apply
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	startCtx, startCancel := context.WithTimeout(context.Background(), startupTimeout)
	defer startCancel()

	// open DB
	conn, err := db.Open(startCtx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn, dialectFor(cfg.DB.Driver))
	services := service.NewService(repos, service.AuthOptions{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}, log)
	access := policy.New(policy.Options{PublicRegistration: cfg.Auth.PublicRegistration})
	apiHandler := handlers.NewHandler(services, access, log)

	bootstrapAdmin(startCtx, services, cfg.Bootstrap.Admin, log)
	if cfg.Bootstrap.SeedTasks {
		seedTasks(startCtx, services, log)
	}

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Janitor.Run(ctx, cfg.Auth.JanitorInterval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.HTTP.ShutdownTimeout, log)
}

func dialectFor(driver string) repository.Dialect {
	if driver == config.DriverPostgres {
		return repository.DialectPostgres
	}
	return repository.DialectSQLite
}

// bootstrapAdmin ensures the configured admin account exists.
func bootstrapAdmin(ctx context.Context, services *service.Service, admin config.AdminConfig, log *logger.Logger) {
	if admin.Username == "" {
		log.Infow("bootstrap admin disabled")
		return
	}
	created, err := services.Auth.EnsureAdmin(ctx, admin.Username, admin.Password, admin.FullName)
	if err != nil {
		log.Fatalw("failed to bootstrap admin", "username", admin.Username, "err", err)
	}
	if created {
		log.Infow("bootstrap admin created", "username", admin.Username)
	}
}

func seedTasks(ctx context.Context, services *service.Service, log *logger.Logger) {
	n, err := services.Seeder.SeedTasks(ctx)
	if err != nil {
		log.Fatalw("failed to seed tasks", "err", err)
	}
	log.Infow("sample tasks seeded", "count", n)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, timeout time.Duration, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
