package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/roms/internal/health"
	"github.com/vladislavdragonenkov/roms/internal/inventory"
	"github.com/vladislavdragonenkov/roms/internal/metrics"
	"github.com/vladislavdragonenkov/roms/internal/service/catalog"
	"github.com/vladislavdragonenkov/roms/internal/service/order"
	"github.com/vladislavdragonenkov/roms/internal/service/payment"
	"github.com/vladislavdragonenkov/roms/internal/service/reporting"
	"github.com/vladislavdragonenkov/roms/internal/storage/memory"
	"github.com/vladislavdragonenkov/roms/internal/storage/postgres"
	"github.com/vladislavdragonenkov/roms/internal/version"
)

// Dependencies содержит собранный граф зависимостей приложения.
type Dependencies struct {
	Products  domain.ProductRepository
	Customers domain.CustomerRepository
	Orders    domain.OrderRepository
	Payments  domain.PaymentRepository
	Outbox    domain.OutboxRepository
	Timeline  domain.TimelineRepository

	Ledger     *inventory.Ledger
	CatalogSvc *catalog.Service
	OrderSvc   *order.Service
	PaymentSvc *payment.Service
	ReportSvc  *reporting.Service

	Metrics *metrics.OrderMetrics
	Health  *healthcheck.Handler
	Store   *postgres.Store
	Logger  *log.Entry
}

// NewDependencies создаёт зависимости по конфигурации: репозитории выбранного
// драйвера, ledger, сервисы и health-проверки.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Logger:  logger,
		Metrics: metrics.NewOrderMetrics(),
		Health:  healthcheck.NewHandler(version.GetVersion()),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.AutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		deps.Store = store
		deps.Products = postgres.NewProductRepository(store)
		deps.Customers = postgres.NewCustomerRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Payments = postgres.NewPaymentRepository(store)
		deps.Outbox = postgres.NewOutboxRepository(store)
		deps.Timeline = postgres.NewTimelineRepository(store)

		deps.Health.RegisterChecker("storage", healthcheck.CheckerFunc(func() error {
			return store.Ping(context.Background())
		}))
	case StorageMemory, "":
		deps.Products = memory.NewProductRepository()
		deps.Customers = memory.NewCustomerRepository()
		deps.Orders = memory.NewOrderRepository()
		deps.Payments = memory.NewPaymentRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.Timeline = memory.NewTimelineRepository()
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	deps.Ledger = inventory.NewLedger(deps.Products, logger.WithField("component", "inventory-ledger"), deps.Metrics)
	deps.CatalogSvc = catalog.NewService(deps.Products, deps.Customers, deps.Ledger,
		logger.WithField("component", "catalog-service"))
	deps.PaymentSvc = payment.NewService(deps.Payments, deps.Orders, deps.Outbox, deps.Timeline,
		logger.WithField("component", "payment-service"), deps.Metrics)
	deps.OrderSvc = order.NewService(deps.Orders, deps.Customers, deps.Products, deps.Ledger,
		deps.PaymentSvc, deps.Outbox, deps.Timeline,
		logger.WithField("component", "order-service"), deps.Metrics)
	deps.ReportSvc = reporting.NewService(deps.Orders, deps.Products, deps.Customers,
		logger.WithField("component", "reporting-service"))

	return deps, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
