package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/inventory"
	"github.com/vladislavdragonenkov/roms/internal/metrics"
	"github.com/vladislavdragonenkov/roms/internal/service/payment"
	"github.com/vladislavdragonenkov/roms/internal/service/saga"
)

// ItemRequest — одна позиция запроса на создание заказа.
type ItemRequest struct {
	ProductID string
	Qty       int32
}

// Service оркестрирует жизненный цикл заказа: создание, отмену и завершение.
//
// Хранилище не даёт транзакций между сущностями, поэтому каждая многошаговая
// операция собрана как последовательность (do, undo)-пар: списание стока до
// вставки заказа, возврат стока до смены статуса, компенсация в обратном
// порядке при любом отказе. Создание платежа и возврат средств — осознанно
// best-effort: их отказ логируется, но не валит операцию (асимметрия
// унаследована от исходного протокола и зафиксирована в документации).
type Service struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	ledger    *inventory.Ledger
	payments  *payment.Service
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// validatedItem — позиция, прошедшая валидацию, с зафиксированной ценой.
type validatedItem struct {
	ProductID  string
	Name       string
	Qty        int32
	PriceMinor int64
}

// NewService конструирует сервис заказов. Outbox и timeline опциональны.
func NewService(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	ledger *inventory.Ledger,
	payments *payment.Service,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
	m *metrics.OrderMetrics,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &Service{
		orders:    orders,
		customers: customers,
		products:  products,
		ledger:    ledger,
		payments:  payments,
		outbox:    outbox,
		timeline:  timeline,
		logger:    logger,
		metrics:   m,
	}
}

// CreateOrder создаёт заказ по списку позиций.
//
// Протокол: валидация всех позиций до любых мутаций; списание стока по
// каждой позиции в порядке списка; вставка строки заказа и его позиций;
// при отказе после начала списаний — возврат стока в обратном порядке и
// ErrOrderCreationFailed с первопричиной. Последним шагом создаётся
// PENDING-платёж; его отказ не отменяет заказ.
func (s *Service) CreateOrder(customerID string, items []ItemRequest) (domain.OrderDetails, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("create_order", time.Since(start))
	}()

	customer, err := s.customers.Get(customerID)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	if len(items) == 0 {
		return domain.OrderDetails{}, domain.ErrItemsRequired
	}

	validated, err := s.validateItems(items)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	now := time.Now().UTC()
	ord := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     domain.OrderStatusPlaced,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, item := range validated {
		ord.AmountMinor += int64(item.Qty) * item.PriceMinor
		ord.Items = append(ord.Items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    ord.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			Position:   int32(i),
			CreatedAt:  now,
		})
	}

	seq := saga.New("create-order", s.logger, s.metrics)
	for _, item := range validated {
		item := item
		seq.AddStep("deduct_stock:"+item.ProductID,
			func() error {
				_, err := s.ledger.Adjust(item.ProductID, -item.Qty)
				return err
			},
			func() error {
				_, err := s.ledger.Adjust(item.ProductID, item.Qty)
				return err
			})
	}
	seq.AddStep("insert_order",
		func() error {
			if err := s.orders.Insert(ord); err != nil {
				return err
			}
			for _, it := range ord.Items {
				if err := s.orders.InsertItem(it); err != nil {
					return err
				}
			}
			return nil
		},
		nil)

	if err := seq.Run(); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%w: %w", domain.ErrOrderCreationFailed, err)
	}

	s.metrics.RecordOrderCreated()
	s.logger.WithFields(log.Fields{
		"order_id":     ord.ID,
		"customer_id":  customerID,
		"amount_minor": ord.AmountMinor,
		"items":        len(ord.Items),
	}).Info("order created")

	details := domain.OrderDetails{Order: ord, Customer: customer}

	// Платёж создаётся после заказа и не входит в сагу: его отсутствие —
	// допустимое состояние заказа, а не причина отката стока.
	pmt, payErr := s.payments.CreatePending(ord.ID, ord.AmountMinor)
	if payErr != nil {
		s.logger.WithError(payErr).WithField("order_id", ord.ID).
			Warn("failed to create payment record, returning order without payment")
	} else {
		details.Payment = &pmt
	}

	s.emitEvent(ord, "OrderPlaced", map[string]any{
		"customer_id":  customerID,
		"amount_minor": ord.AmountMinor,
		"items":        len(ord.Items),
	})

	return details, nil
}

// validateItems проверяет все позиции против текущего состояния каталога и
// снимает снапшот цен. Выполняется целиком до первой мутации (fail fast).
func (s *Service) validateItems(items []ItemRequest) ([]validatedItem, error) {
	validated := make([]validatedItem, 0, len(items))
	for _, req := range items {
		if req.ProductID == "" {
			return nil, domain.ErrProductNotFound
		}
		if req.Qty <= 0 {
			return nil, fmt.Errorf("product %s: %w", req.ProductID, domain.ErrQuantityInvalid)
		}

		product, err := s.products.Get(req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", req.ProductID, err)
		}

		if product.Stock < req.Qty {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   req.Qty,
			}
		}

		validated = append(validated, validatedItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Qty:        req.Qty,
			PriceMinor: product.PriceMinor,
		})
	}
	return validated, nil
}

// CancelOrder отменяет заказ в статусе PLACED: возвращает сток по каждой
// позиции, затем переводит заказ в CANCELLED. Отказ смены статуса
// компенсируется повторным списанием возвращённого стока. После успешной
// отмены выполняется best-effort возврат платежа.
func (s *Service) CancelOrder(orderID string) (domain.OrderDetails, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("cancel_order", time.Since(start))
	}()

	ord, err := s.orders.Get(orderID)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	switch ord.Status {
	case domain.OrderStatusCancelled:
		return domain.OrderDetails{}, domain.ErrOrderAlreadyCancelled
	case domain.OrderStatusCompleted:
		return domain.OrderDetails{}, domain.ErrOrderNotCancellable
	}

	var updated domain.Order
	seq := saga.New("cancel-order", s.logger, s.metrics)
	for _, item := range ord.Items {
		item := item
		seq.AddStep("restore_stock:"+item.ProductID,
			func() error {
				_, err := s.ledger.Adjust(item.ProductID, item.Qty)
				return err
			},
			func() error {
				_, err := s.ledger.Adjust(item.ProductID, -item.Qty)
				return err
			})
	}
	seq.AddStep("mark_cancelled",
		func() error {
			var err error
			updated, err = s.orders.UpdateStatus(ord.ID, domain.OrderStatusCancelled)
			return err
		},
		nil)

	if err := seq.Run(); err != nil {
		return domain.OrderDetails{}, fmt.Errorf("%w: %w", domain.ErrCancellationFailed, err)
	}
	updated.Items = ord.Items

	s.metrics.RecordOrderCancelled()
	s.logger.WithField("order_id", ord.ID).Info("order cancelled, stock restored")

	details := domain.OrderDetails{Order: updated}
	if customer, err := s.customers.Get(ord.CustomerID); err == nil {
		details.Customer = customer
	} else {
		s.logger.WithError(err).WithField("order_id", ord.ID).Warn("failed to load customer for cancelled order")
	}

	// Возврат платежа — best-effort: отмена уже состоялась, сток возвращён.
	pmt, refundErr := s.payments.RefundByOrder(ord.ID)
	switch {
	case refundErr == nil:
		details.Payment = &pmt
	case errors.Is(refundErr, domain.ErrPaymentNotFound):
		s.logger.WithField("order_id", ord.ID).Debug("order has no payment, refund skipped")
	default:
		s.logger.WithError(refundErr).WithField("order_id", ord.ID).
			Warn("failed to refund payment for cancelled order")
	}

	s.emitEvent(updated, "OrderCancelled", map[string]any{
		"customer_id": ord.CustomerID,
	})

	return details, nil
}

// MarkOrderCompleted завершает заказ.
//
// С непустым методом оплаты делегирует в платёжный контур (платёж → PAID,
// заказ → COMPLETED, с компенсацией). С пустым методом — legacy-путь,
// сохранённый для обратной совместимости: статус меняется напрямую, платёж
// не трогается и может навсегда остаться PENDING.
func (s *Service) MarkOrderCompleted(orderID string, method domain.PaymentMethod) (domain.OrderDetails, error) {
	ord, err := s.orders.Get(orderID)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	switch ord.Status {
	case domain.OrderStatusCompleted:
		return domain.OrderDetails{}, domain.ErrOrderAlreadyCompleted
	case domain.OrderStatusCancelled:
		return domain.OrderDetails{}, domain.ErrOrderCancelled
	}

	if method != "" {
		return s.ProcessOrderPayment(orderID, method)
	}

	updated, err := s.orders.UpdateStatus(ord.ID, domain.OrderStatusCompleted)
	if err != nil {
		return domain.OrderDetails{}, fmt.Errorf("update order status: %w", err)
	}
	updated.Items = ord.Items

	s.metrics.RecordOrderCompleted()
	s.logger.WithField("order_id", ord.ID).Info("order completed without payment processing")

	s.emitEvent(updated, "OrderCompleted", map[string]any{
		"customer_id": ord.CustomerID,
		"legacy_path": true,
	})

	return s.GetOrderDetails(ord.ID)
}

// ProcessOrderPayment проводит оплату заказа и возвращает заказ с
// проведённым платежом. Сам переход заказа в COMPLETED выполняет платёжный
// сервис как часть своей компенсируемой последовательности.
func (s *Service) ProcessOrderPayment(orderID string, method domain.PaymentMethod) (domain.OrderDetails, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration("process_order_payment", time.Since(start))
	}()

	pmt, err := s.payments.ProcessByOrder(orderID, method)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	s.emitEvent(domain.Order{ID: orderID}, "OrderCompleted", map[string]any{
		"payment_id": pmt.ID,
		"method":     string(method),
	})

	return s.GetOrderDetails(orderID)
}

// GetOrderDetails возвращает составное представление заказа: заказ с
// позициями, покупатель и платёж, если он существует.
func (s *Service) GetOrderDetails(orderID string) (domain.OrderDetails, error) {
	ord, err := s.orders.Get(orderID)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	customer, err := s.customers.Get(ord.CustomerID)
	if err != nil {
		return domain.OrderDetails{}, err
	}

	return s.attachPayment(domain.OrderDetails{Order: ord, Customer: customer})
}

// attachPayment дополняет представление платежом заказа; отсутствие платежа
// не является ошибкой.
func (s *Service) attachPayment(details domain.OrderDetails) (domain.OrderDetails, error) {
	pmt, err := s.paymentByOrder(details.Order.ID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return details, nil
		}
		return domain.OrderDetails{}, err
	}
	details.Payment = &pmt
	return details, nil
}

// ListCustomerOrders возвращает заказы покупателя в составном виде.
func (s *Service) ListCustomerOrders(customerID string, limit int) ([]domain.OrderDetails, error) {
	customer, err := s.customers.Get(customerID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.ListByCustomer(customerID, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.OrderDetails, 0, len(orders))
	for _, ord := range orders {
		details := domain.OrderDetails{Order: ord, Customer: customer}
		details, err = s.attachPayment(details)
		if err != nil {
			return nil, err
		}
		result = append(result, details)
	}
	return result, nil
}

func (s *Service) paymentByOrder(orderID string) (domain.Payment, error) {
	return s.payments.PaymentByOrder(orderID)
}

// emitEvent кладёт событие заказа в outbox и timeline; отказы логируются
// и не влияют на исход операции.
func (s *Service) emitEvent(ord domain.Order, eventType string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["order_id"] = ord.ID

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": ord.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	if s.outbox != nil {
		msg := domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   ord.ID,
			EventType:     eventType,
			Payload:       data,
		}
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": ord.ID,
				"event":    eventType,
			}).Error("enqueue event failed")
		} else {
			s.metrics.RecordOutboxEvent()
		}
	}

	if s.timeline != nil {
		event := domain.TimelineEvent{
			OrderID:  ord.ID,
			Type:     eventType,
			Occurred: time.Now().UTC(),
		}
		if err := s.timeline.Append(event); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": ord.ID,
				"event":    eventType,
			}).Warn("append timeline event failed")
		} else {
			s.metrics.RecordTimelineEvent()
		}
	}
}
