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
	"go.uber.org/multierr"

	"github.com/angelmondragon/salonbook-backend/api"
	"github.com/angelmondragon/salonbook-backend/api/routes"
	"github.com/angelmondragon/salonbook-backend/internal/appointments"
	"github.com/angelmondragon/salonbook-backend/internal/auth"
	"github.com/angelmondragon/salonbook-backend/internal/booking"
	"github.com/angelmondragon/salonbook-backend/internal/catalog"
	"github.com/angelmondragon/salonbook-backend/internal/checkout"
	"github.com/angelmondragon/salonbook-backend/internal/clients"
	"github.com/angelmondragon/salonbook-backend/internal/ledger"
	"github.com/angelmondragon/salonbook-backend/internal/notifications"
	"github.com/angelmondragon/salonbook-backend/internal/settings"
	"github.com/angelmondragon/salonbook-backend/internal/tenants"
	"github.com/angelmondragon/salonbook-backend/internal/usage"
	"github.com/angelmondragon/salonbook-backend/pkg/auth/session"
	"github.com/angelmondragon/salonbook-backend/pkg/collections"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
	"github.com/angelmondragon/salonbook-backend/pkg/metrics"
	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
	"github.com/angelmondragon/salonbook-backend/pkg/pubsub"
	"github.com/angelmondragon/salonbook-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	reg := prometheus.DefaultRegisterer
	notifyMetrics := metrics.NewNotifyMetrics(reg)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	tenantRepo := tenants.NewRepository(dbClient.DB())
	tenantSvc, err := tenants.NewService(tenantRepo)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Tenants:        tenantRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Credentials:    cfg.Auth,
	})
	if err != nil {
		return err
	}

	gate, err := usage.NewGate(tenantRepo, metrics.NewUsageMetrics(reg), logg, usage.Options{FailClosed: cfg.Usage.FailClosed})
	if err != nil {
		return err
	}

	store, err := collectionStore(cfg, dbClient, redisClient, logg)
	if err != nil {
		return err
	}
	locks := collections.NewLocks()
	loc := cfg.App.Location()

	sinks, closeSinks, err := notificationSinks(ctx, cfg, logg, notifyMetrics)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeSinks()) }()

	catalogSvc, err := catalog.NewService(catalog.NewRepository(store, locks))
	if err != nil {
		return err
	}
	settingsSvc, err := settings.NewService(store)
	if err != nil {
		return err
	}
	apptSvc, err := appointments.NewService(store, locks)
	if err != nil {
		return err
	}
	clientSvc, err := clients.NewService(store, locks)
	if err != nil {
		return err
	}
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(store, locks), gate, sinks, loc)
	if err != nil {
		return err
	}
	dashboard, err := ledger.NewDashboardService(apptSvc, ledgerSvc, loc)
	if err != nil {
		return err
	}
	checkoutSvc, err := checkout.NewService(apptSvc, catalogSvc, ledgerSvc, logg)
	if err != nil {
		return err
	}

	drafts, err := booking.NewRedisDraftStore(redisClient, cfg.Booking.DraftTTL)
	if err != nil {
		return err
	}
	bookingSvc, err := booking.NewService(booking.Deps{
		Drafts:       drafts,
		Catalog:      catalogSvc,
		Settings:     settingsSvc,
		Clients:      clientSvc,
		Appointments: apptSvc,
		Gate:         gate,
		Logger:       logg,
		Location:     loc,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:           dbClient,
		Redis:        redisClient,
		Sessions:     sessionManager,
		HTTPMetrics:  metrics.NewHTTPMetrics(reg),
		Auth:         authService,
		Tenants:      tenantSvc,
		TenantLookup: tenantRepo,
		Gate:         gate,
		Catalog:      catalogSvc,
		Settings:     settingsSvc,
		Booking:      bookingSvc,
		Appointments: apptSvc,
		Clients:      clientSvc,
		Ledger:       ledgerSvc,
		Dashboard:    dashboard,
		Checkout:     checkoutSvc,
	})

	server := api.NewServer(cfg, handler)
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// collectionStore returns the tenant document store. With the mirror enabled
// writes also land in Redis and database misses are backfilled from it.
func collectionStore(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger) (collections.Store, error) {
	local := collections.NewGormStore(dbClient.DB())
	if !cfg.FeatureFlags.RedisMirror {
		return local, nil
	}
	return collections.NewSyncedStore(local, collections.NewRedisMirror(redisClient), logg)
}

// notificationSinks delivers to the webhook when it is configured and only
// logs otherwise; Pub/Sub is added when enabled. The returned func drains them.
func notificationSinks(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.NotifyMetrics) (notifications.Multi, func() error, error) {
	var (
		webhook *notifications.WebhookSink
		extra   []notifications.Sink
		closers []func() error
	)
	closeAll := func() error {
		var err error
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
		return err
	}

	if cfg.Notify.Configured() {
		sink, err := notifications.NewWebhookSink(cfg.Notify, nil, logg, m)
		if err != nil {
			return nil, nil, err
		}
		sink.Start(context.Background())
		closers = append(closers, sink.Shutdown)
		webhook = sink
	}

	if cfg.PubSub.Enabled() {
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, nil, multierr.Append(err, closeAll())
		}
		closers = append(closers, client.Close)
		sink, err := notifications.NewPubSubSink(client.FinancePublisher(), logg, m)
		if err != nil {
			return nil, nil, multierr.Append(err, closeAll())
		}
		extra = append(extra, sink)
	}

	return notifications.Compose(webhook, logg, m, extra...), closeAll, nil
}
