package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	billing "meridian/contexts/billing/customer-meter-service"
	billingpostgres "meridian/contexts/billing/customer-meter-service/adapters/postgres"
	billingcommands "meridian/contexts/billing/customer-meter-service/application/commands"
	billingerrors "meridian/contexts/billing/customer-meter-service/domain/errors"
	billingports "meridian/contexts/billing/customer-meter-service/ports"
	authorization "meridian/contexts/identity-access/authorization-service"
	authzmemory "meridian/contexts/identity-access/authorization-service/adapters/memory"
	organizations "meridian/contexts/organizations/organization-service"
	orgpostgres "meridian/contexts/organizations/organization-service/adapters/postgres"
	orgcommands "meridian/contexts/organizations/organization-service/application/commands"
	"meridian/internal/platform/authz"
	"meridian/internal/platform/config"
	"meridian/internal/platform/db"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/observability"
	"meridian/internal/platform/taskqueue"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server  *httpserver.Server
	queue   *taskqueue.Queue
	storage storageCloser
	logger  *slog.Logger
}

type WorkerApp struct {
	queue           *taskqueue.Queue
	customers       billingports.CustomerRepository
	refreshInterval time.Duration
	storage         storageCloser
	logger          *slog.Logger
}

type storageCloser interface {
	Close() error
}

// core is everything BuildAPI and BuildWorker share: storage, the bridged
// authorizer, the task dispatcher and the wired context modules.
type core struct {
	cfg     config.Config
	logger  *slog.Logger
	storage storageCloser
	metrics *observability.MetricsCollector

	queue         *taskqueue.Queue
	organizations organizations.Module
	billing       billing.Module
	authorization authorization.Module
	customers     billingports.CustomerRepository
}

func buildCore(process string) (*core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", process)

	orm, storage, err := openStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	orgRepo := orgpostgres.NewRepository(orm, logger)
	billingRepo := billingpostgres.NewRepository(orm, logger)

	metrics := observability.NewMetricsCollector()
	bridge := authz.NewBridge(orgRepo, authzmemory.SystemClock{}, metrics, logger)

	registry := taskqueue.NewRegistry()
	queue := taskqueue.NewQueue(registry, taskqueue.Options{
		Workers:     cfg.TaskWorkers,
		QueueSize:   cfg.TaskQueueSize,
		MaxAttempts: cfg.TaskMaxAttempts,
		RetryDelay:  cfg.TaskRetryDelay,
		Logger:      logger,
		Observer:    metrics,
	})

	orgModule := organizations.NewModule(organizations.Dependencies{
		Organizations: orgRepo,
		Accounts:      orgRepo,
		Members:       orgRepo,
		Authorizer:    bridge,
		Tasks:         queue,
		Clock:         orgpostgres.SystemClock{},
		IDGenerator:   orgpostgres.UUIDGenerator{},
		Logger:        logger,
	})

	billingModule := billing.NewModule(billing.Dependencies{
		Customers:      billingRepo,
		Meters:         billingRepo,
		Events:         billingRepo,
		CustomerMeters: billingRepo,
		Authorizer:     bridge,
		Tasks:          queue,
		Clock:          billingpostgres.SystemClock{},
		IDGenerator:    billingpostgres.UUIDGenerator{},
		Logger:         logger,
	})

	authzModule := authorization.NewModule(authorization.Dependencies{
		Memberships: authz.NewMembershipDirectory(orgRepo),
		Clock:       authzmemory.SystemClock{},
		Logger:      logger,
	})

	if err := registerTasks(registry, billingModule); err != nil {
		_ = storage.Close()
		return nil, err
	}

	return &core{
		cfg:           cfg,
		logger:        logger,
		storage:       storage,
		metrics:       metrics,
		queue:         queue,
		organizations: orgModule,
		billing:       billingModule,
		authorization: authzModule,
		customers:     billingRepo,
	}, nil
}

// openStorage connects Postgres when a DSN is configured and falls back to
// embedded SQLite otherwise. The SQLite path migrates its own schema, so a
// bare `go run ./cmd/api` works without any infrastructure.
func openStorage(cfg config.Config, logger *slog.Logger) (*gorm.DB, storageCloser, error) {
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return pg.DB, pg, nil
	}

	lite, err := db.ConnectSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	if err := orgpostgres.AutoMigrate(lite.DB); err != nil {
		_ = lite.Close()
		return nil, nil, err
	}
	if err := billingpostgres.AutoMigrate(lite.DB); err != nil {
		_ = lite.Close()
		return nil, nil, err
	}
	logger.Warn("POSTGRES_DSN not set, using embedded sqlite",
		"event", "bootstrap_sqlite_fallback",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"path", cfg.SQLitePath,
	)
	return lite.DB, lite, nil
}

// registerTasks binds every task name a module enqueues to its worker.
// Deleted customers are final: recomputing meters for them can never succeed.
func registerTasks(registry *taskqueue.Registry, billingModule billing.Module) error {
	updateCustomer := func(ctx context.Context, customerID uuid.UUID) error {
		err := billingModule.UpdateCustomer.Execute(ctx, customerID)
		if errors.Is(err, billingerrors.ErrCustomerDoesNotExist) {
			return taskqueue.Terminal(err)
		}
		return err
	}
	if err := registry.Register(billingcommands.TaskUpdateCustomerMeters, updateCustomer); err != nil {
		return err
	}
	return registry.Register(orgcommands.TaskRefreshOrganizationBilling, billingModule.RefreshOrganization.Execute)
}

func BuildAPI() (*APIApp, error) {
	c, err := buildCore("api")
	if err != nil {
		return nil, err
	}

	secret := c.cfg.AuthSecret
	if strings.TrimSpace(secret) == "" {
		secret = "meridian-dev-secret"
		c.logger.Warn("AUTH_SECRET not set, using the development secret",
			"event", "bootstrap_dev_auth_secret",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	server := httpserver.New(
		c.organizations,
		c.billing,
		c.authorization,
		httpserver.NewAuthenticator(secret),
		c.metrics,
		c.logger,
		normalizeAddr(c.cfg.HTTPPort),
	)

	return &APIApp{
		server:  server,
		queue:   c.queue,
		storage: c.storage,
		logger:  c.logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	c, err := buildCore("worker")
	if err != nil {
		return nil, err
	}

	return &WorkerApp{
		queue:           c.queue,
		customers:       c.customers,
		refreshInterval: c.cfg.BillingRefreshInterval,
		storage:         c.storage,
		logger:          c.logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	a.queue.Start(ctx)
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.storage != nil {
		return a.storage.Close()
	}
	return nil
}

// Run sweeps every organization that has customers on a fixed interval.
// Each sweep enqueues a refresh task per organization; the dispatcher fans
// that out into one meter recomputation per customer. Because recomputation
// rebuilds from the full event history, a sweep that overlaps an API-driven
// update is harmless.
func (w *WorkerApp) Run(ctx context.Context) error {
	w.queue.Start(ctx)

	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"refresh_interval", w.refreshInterval.String(),
	)

	for {
		if err := w.sweep(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			w.queue.Wait()
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) sweep(ctx context.Context) error {
	organizationIDs, err := w.customers.ListOrganizationIDsWithCustomers(ctx)
	if err != nil {
		return err
	}
	for _, organizationID := range organizationIDs {
		if err := w.queue.Enqueue(ctx, orgcommands.TaskRefreshOrganizationBilling, organizationID); err != nil {
			return err
		}
	}
	w.logger.Info("billing refresh sweep enqueued",
		"event", "bootstrap_refresh_sweep",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"organizations", len(organizationIDs),
	)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.storage != nil {
		return w.storage.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
