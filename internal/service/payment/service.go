package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/metrics"
	"github.com/vladislavdragonenkov/roms/internal/service/saga"
)

// Service управляет жизненным циклом платежей: PENDING → PAID → REFUNDED.
// Переход в PAID жёстко связан с переводом заказа в COMPLETED; при отказе
// второй записи платёж откатывается обратно в PENDING тем же протоколом
// компенсаций, что и складские операции.
type Service struct {
	payments domain.PaymentRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
}

// NewService конструирует сервис платежей. Outbox и timeline опциональны.
func NewService(
	payments domain.PaymentRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
	m *metrics.OrderMetrics,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "payment-service")
	}
	return &Service{
		payments: payments,
		orders:   orders,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
		metrics:  m,
	}
}

// CreatePending создаёт PENDING-платёж под заказ. Вызывается при оформлении
// заказа; сумма равна сумме заказа на момент создания.
func (s *Service) CreatePending(orderID string, amountMinor int64) (domain.Payment, error) {
	now := time.Now().UTC()
	payment := domain.Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		AmountMinor: amountMinor,
		Status:      domain.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if errs := payment.Validate(); len(errs) > 0 {
		return domain.Payment{}, fmt.Errorf("%w: %w", domain.ErrPaymentCreationFailed, errs[0])
	}

	if err := s.payments.Insert(payment); err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", domain.ErrPaymentCreationFailed, err)
	}

	s.logger.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   orderID,
	}).Info("pending payment created")

	s.emitEvent(payment, "PaymentCreated", map[string]any{
		"amount_minor": payment.AmountMinor,
		"status":       string(payment.Status),
	})

	return payment, nil
}

// Process проводит платёж: переводит его в PAID с заданным методом и
// переводит заказ в COMPLETED. Отказ обновления заказа компенсируется
// возвратом платежа в PENDING без метода.
func (s *Service) Process(paymentID string, method domain.PaymentMethod) (domain.Payment, error) {
	if !domain.KnownPaymentMethod(method) {
		return domain.Payment{}, domain.ErrPaymentMethodInvalid
	}

	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.Payment{}, err
	}

	switch payment.Status {
	case domain.PaymentStatusPaid:
		return domain.Payment{}, domain.ErrPaymentAlreadyPaid
	case domain.PaymentStatusRefunded:
		return domain.Payment{}, domain.ErrPaymentRefunded
	}

	paid := payment
	paid.Status = domain.PaymentStatusPaid
	paid.Method = method
	paid.UpdatedAt = time.Now().UTC()

	reverted := payment
	reverted.Status = domain.PaymentStatusPending
	reverted.Method = ""

	seq := saga.New("process-payment", s.logger, s.metrics).
		AddStep("mark_payment_paid",
			func() error { return s.payments.Update(paid) },
			func() error {
				reverted.UpdatedAt = time.Now().UTC()
				return s.payments.Update(reverted)
			}).
		AddStep("complete_order",
			func() error {
				_, err := s.orders.UpdateStatus(payment.OrderID, domain.OrderStatusCompleted)
				return err
			},
			nil)

	if err := seq.Run(); err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", domain.ErrPaymentProcessingFailed, err)
	}

	s.metrics.RecordPaymentProcessed()
	s.metrics.RecordOrderCompleted()
	s.logger.WithFields(log.Fields{
		"payment_id": paid.ID,
		"order_id":   paid.OrderID,
		"method":     string(method),
	}).Info("payment processed, order completed")

	s.emitEvent(paid, "PaymentPaid", map[string]any{
		"method":       string(method),
		"amount_minor": paid.AmountMinor,
	})

	return paid, nil
}

// ProcessByOrder проводит платёж, найденный по заказу (связь 1:1).
func (s *Service) ProcessByOrder(orderID string, method domain.PaymentMethod) (domain.Payment, error) {
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Payment{}, err
	}
	return s.Process(payment.ID, method)
}

// Refund переводит платёж в REFUNDED. Статус заказа не трогается: возврат
// не «переоткрывает» отменённый заказ, это чисто платёжная запись.
func (s *Service) Refund(paymentID string) (domain.Payment, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.Payment{}, err
	}

	if payment.Status == domain.PaymentStatusRefunded {
		return domain.Payment{}, domain.ErrPaymentAlreadyRefund
	}

	payment.Status = domain.PaymentStatusRefunded
	payment.UpdatedAt = time.Now().UTC()
	if err := s.payments.Update(payment); err != nil {
		return domain.Payment{}, fmt.Errorf("%w: %w", domain.ErrPaymentRefundFailed, err)
	}

	s.metrics.RecordPaymentRefunded()
	s.logger.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
	}).Info("payment refunded")

	s.emitEvent(payment, "PaymentRefunded", map[string]any{
		"amount_minor": payment.AmountMinor,
	})

	return payment, nil
}

// RefundByOrder возвращает платёж, найденный по заказу.
func (s *Service) RefundByOrder(orderID string) (domain.Payment, error) {
	payment, err := s.payments.GetByOrder(orderID)
	if err != nil {
		return domain.Payment{}, err
	}
	return s.Refund(payment.ID)
}

// PaymentByOrder возвращает платёж заказа (связь 1:1). Состояние не меняется.
func (s *Service) PaymentByOrder(orderID string) (domain.Payment, error) {
	return s.payments.GetByOrder(orderID)
}

// Details возвращает платёж вместе с вложенным заказом. Состояние не меняется.
func (s *Service) Details(paymentID string) (domain.PaymentDetails, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.PaymentDetails{}, err
	}

	order, err := s.orders.Get(payment.OrderID)
	if err != nil {
		return domain.PaymentDetails{}, err
	}

	return domain.PaymentDetails{Payment: payment, Order: order}, nil
}

// emitEvent кладёт событие платежа в outbox и timeline; отказы логируются
// и не влияют на исход операции.
func (s *Service) emitEvent(payment domain.Payment, eventType string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["payment_id"] = payment.ID
	payload["order_id"] = payment.OrderID

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("event", eventType).Error("marshal event failed")
		return
	}

	if s.outbox != nil {
		msg := domain.OutboxMessage{
			AggregateType: "payment",
			AggregateID:   payment.ID,
			EventType:     eventType,
			Payload:       data,
		}
		if _, err := s.outbox.Enqueue(msg); err != nil {
			s.logger.WithError(err).WithField("event", eventType).Error("enqueue event failed")
		} else {
			s.metrics.RecordOutboxEvent()
		}
	}

	if s.timeline != nil {
		event := domain.TimelineEvent{
			OrderID:  payment.OrderID,
			Type:     eventType,
			Occurred: time.Now().UTC(),
		}
		if err := s.timeline.Append(event); err != nil {
			s.logger.WithError(err).WithField("event", eventType).Warn("append timeline event failed")
		} else {
			s.metrics.RecordTimelineEvent()
		}
	}
}
