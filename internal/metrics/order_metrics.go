package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов и платежей.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated     prometheus.Counter
	ordersCancelled   prometheus.Counter
	ordersCompleted   prometheus.Counter
	paymentsProcessed prometheus.Counter
	paymentsRefunded  prometheus.Counter

	// Компенсации
	compensationsRun prometheus.Counter
	undoFailures     prometheus.Counter
	stockClamped     prometheus.Counter

	// Гистограммы времени выполнения
	operationDuration *prometheus.HistogramVec

	// Счётчики событий
	outboxEvents   prometheus.Counter
	timelineEvents prometheus.Counter
}

// NewOrderMetrics создаёт метрики в default registerer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики в заданном registerer
// (используется в тестах для изоляции).
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		ordersCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_orders_completed_total",
			Help: "Total number of orders completed",
		}),
		paymentsProcessed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_payments_processed_total",
			Help: "Total number of payments processed",
		}),
		paymentsRefunded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_payments_refunded_total",
			Help: "Total number of payments refunded",
		}),
		compensationsRun: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_compensations_total",
			Help: "Total number of compensation passes executed after a failed step",
		}),
		undoFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_compensation_undo_failures_total",
			Help: "Total number of undo steps that themselves failed during compensation",
		}),
		stockClamped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_stock_clamped_total",
			Help: "Total number of stock adjustments clamped at zero",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "roms_operation_duration_seconds",
			Help:    "Duration of order lifecycle operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_outbox_events_total",
			Help: "Total number of outbox events enqueued",
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "roms_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderCancelled увеличивает счётчик отменённых заказов.
func (m *OrderMetrics) RecordOrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// RecordOrderCompleted увеличивает счётчик завершённых заказов.
func (m *OrderMetrics) RecordOrderCompleted() {
	if m == nil {
		return
	}
	m.ordersCompleted.Inc()
}

// RecordPaymentProcessed увеличивает счётчик проведённых платежей.
func (m *OrderMetrics) RecordPaymentProcessed() {
	if m == nil {
		return
	}
	m.paymentsProcessed.Inc()
}

// RecordPaymentRefunded увеличивает счётчик возвратов.
func (m *OrderMetrics) RecordPaymentRefunded() {
	if m == nil {
		return
	}
	m.paymentsRefunded.Inc()
}

// RecordCompensation увеличивает счётчик компенсационных прогонов.
func (m *OrderMetrics) RecordCompensation() {
	if m == nil {
		return
	}
	m.compensationsRun.Inc()
}

// RecordUndoFailure увеличивает счётчик неудачных undo-шагов.
func (m *OrderMetrics) RecordUndoFailure() {
	if m == nil {
		return
	}
	m.undoFailures.Inc()
}

// RecordStockClamped увеличивает счётчик срабатываний нулевого клампа стока.
func (m *OrderMetrics) RecordStockClamped() {
	if m == nil {
		return
	}
	m.stockClamped.Inc()
}

// RecordOperationDuration записывает длительность операции жизненного цикла.
func (m *OrderMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *OrderMetrics) RecordOutboxEvent() {
	if m == nil {
		return
	}
	m.outboxEvents.Inc()
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *OrderMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}
