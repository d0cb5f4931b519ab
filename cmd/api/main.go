package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/men4u-admin/api/controllers"
	"github.com/angelmondragon/men4u-admin/api/routes"
	"github.com/angelmondragon/men4u-admin/internal/accesscontrol"
	"github.com/angelmondragon/men4u-admin/internal/activity"
	"github.com/angelmondragon/men4u-admin/internal/auth"
	"github.com/angelmondragon/men4u-admin/internal/customers"
	"github.com/angelmondragon/men4u-admin/internal/dashboard"
	"github.com/angelmondragon/men4u-admin/internal/listview"
	"github.com/angelmondragon/men4u-admin/internal/outlets"
	"github.com/angelmondragon/men4u-admin/internal/owners"
	"github.com/angelmondragon/men4u-admin/internal/partners"
	"github.com/angelmondragon/men4u-admin/internal/qrtemplates"
	"github.com/angelmondragon/men4u-admin/internal/search"
	"github.com/angelmondragon/men4u-admin/internal/session"
	"github.com/angelmondragon/men4u-admin/internal/tickets"
	"github.com/angelmondragon/men4u-admin/pkg/config"
	"github.com/angelmondragon/men4u-admin/pkg/db"
	"github.com/angelmondragon/men4u-admin/pkg/logger"
	"github.com/angelmondragon/men4u-admin/pkg/men4u"
	"github.com/angelmondragon/men4u-admin/pkg/metrics"
	"github.com/angelmondragon/men4u-admin/pkg/migrate"
	"github.com/angelmondragon/men4u-admin/pkg/redis"
	"github.com/angelmondragon/men4u-admin/pkg/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry, logg)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient *redis.Client
		sessions    session.Store
		kv          listview.KV
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		sessions = session.NewRedisStore(redisClient)
		kv = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, keeping sessions and list snapshots in memory")
		sessions = session.NewMemoryStore()
		kv = listview.NewMemoryKV()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)
	listMetrics := metrics.NewListViewMetrics(registry)

	manager, err := session.NewManager(sessions, cfg.Console, session.WithLogger(logg))
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	client, err := men4u.NewClient(cfg.Men4u.BaseURL,
		men4u.WithHTTPClient(men4u.NewHTTPClient(cfg.Men4u.Timeout)),
		men4u.WithAppSource(cfg.Men4u.AppSource),
		men4u.WithLoginPaths(cfg.Men4u.LoginPath, cfg.Men4u.VerifyOTPPath),
		men4u.WithObserver(upstreamMetrics),
	)
	if err != nil {
		logg.Error(ctx, "failed to create men4u client", err)
		os.Exit(1)
	}

	loader := listview.NewLoader(
		listview.NewTracker(kv, cfg.ListView.SnapshotTTL),
		listMetrics,
		logg,
		cfg.ListView.DefaultPageSize,
		cfg.ListView.MaxPageSize,
	)

	activityRepo := activity.NewRepository(dbClient.DB())
	recorder := activity.NewLog(activityRepo, logg)

	services, err := buildServices(client, manager, loader, recorder, activityRepo)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	readiness := []controllers.ReadinessCheck{{Name: "db", Pinger: dbClient}}
	if redisClient != nil {
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	}

	router := routes.NewRouter(cfg, logg, registry, readiness, manager, kv, services)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"upstream": cfg.Men4u.BaseURL,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(router, "men4u-admin"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	if redisClient != nil {
		closeErr = multierr.Append(closeErr, redisClient.Close())
	}
	closeErr = multierr.Append(closeErr, dbClient.Close())
	closeErr = multierr.Append(closeErr, shutdownTracing(shutdownCtx))
	if closeErr != nil {
		logg.Error(serverCtx, "error during shutdown", closeErr)
		exitCode = 1
	}

	logg.Info(serverCtx, "api server stopped")
	os.Exit(exitCode)
}

func buildServices(client *men4u.Client, manager *session.Manager, loader *listview.Loader, recorder activity.Recorder, activityRepo *activity.Repository) (routes.Services, error) {
	var (
		svc  routes.Services
		errs error
		err  error
	)

	svc.Auth, err = auth.NewService(auth.ServiceParams{API: client, Sessions: manager, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.AccessControl, err = accesscontrol.NewService(accesscontrol.ServiceParams{API: client, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.Outlets, err = outlets.NewService(outlets.ServiceParams{API: client, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.Owners, err = owners.NewService(owners.ServiceParams{API: client, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.Partners, err = partners.NewService(partners.ServiceParams{API: client, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.QRTemplates, err = qrtemplates.NewService(qrtemplates.ServiceParams{API: client, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.Tickets, err = tickets.NewService(tickets.ServiceParams{API: client, Outlets: svc.Outlets, Loader: loader, Recorder: recorder})
	errs = multierr.Append(errs, err)

	svc.Customers, err = customers.NewService(customers.ServiceParams{API: client, Loader: loader})
	errs = multierr.Append(errs, err)

	svc.Search, err = search.NewService(client)
	errs = multierr.Append(errs, err)

	svc.Dashboard, err = dashboard.NewService(client)
	errs = multierr.Append(errs, err)

	svc.Activity, err = activity.NewService(activityRepo)
	errs = multierr.Append(errs, err)

	return svc, errs
}
