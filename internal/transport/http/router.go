package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/health"
	"github.com/vladislavdragonenkov/roms/internal/service/catalog"
	"github.com/vladislavdragonenkov/roms/internal/service/order"
	"github.com/vladislavdragonenkov/roms/internal/service/payment"
	"github.com/vladislavdragonenkov/roms/internal/service/reporting"
)

// RouterDeps — зависимости HTTP-маршрутизатора.
type RouterDeps struct {
	Catalog  *catalog.Service
	Orders   *order.Service
	Payments *payment.Service
	Reports  *reporting.Service
	Timeline domain.TimelineRepository
	Health   *health.Handler
	Logger   *log.Entry
}

// NewRouter собирает chi-роутер со всеми обработчиками сервиса.
func NewRouter(deps RouterDeps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	NewProductHandler(deps.Catalog, deps.Logger).RegisterRoutes(router)
	NewCustomerHandler(deps.Catalog, deps.Orders, deps.Logger).RegisterRoutes(router)
	NewOrderHandler(deps.Orders, deps.Timeline, deps.Logger).RegisterRoutes(router)
	NewPaymentHandler(deps.Payments, deps.Logger).RegisterRoutes(router)
	NewReportHandler(deps.Reports, deps.Logger).RegisterRoutes(router)

	if deps.Health != nil {
		router.Method("GET", "/healthz", deps.Health)
		router.Get("/livez", health.LivenessHandler)
		router.Get("/readyz", deps.Health.ReadinessHandler)
	}

	return router
}
