package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

// paymentRepositoryInMemory — простая in-memory реализация PaymentRepository.
type paymentRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]domain.Payment
	byOrder map[string]string
}

// NewPaymentRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		items:   make(map[string]domain.Payment),
		byOrder: make(map[string]string),
	}
}

// Get возвращает платёж или ErrPaymentNotFound, если его нет.
func (r *paymentRepositoryInMemory) Get(id string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.items[id]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// GetByOrder возвращает платёж заказа (связь 1:1).
func (r *paymentRepositoryInMemory) GetByOrder(orderID string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return r.items[id], nil
}

// Insert сохраняет платёж; на заказ допускается ровно один платёж.
func (r *paymentRepositoryInMemory) Insert(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOrder[payment.OrderID]; ok {
		return domain.ErrPaymentExists
	}
	r.items[payment.ID] = payment
	r.byOrder[payment.OrderID] = payment.ID
	return nil
}

// Update перезаписывает платёж целиком.
func (r *paymentRepositoryInMemory) Update(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.items[payment.ID] = payment
	return nil
}

// List возвращает платежи по фильтру, новые первыми.
func (r *paymentRepositoryInMemory) List(filter domain.PaymentFilter) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Payment, 0, len(r.items))
	for _, payment := range r.items {
		if filter.Status != "" && payment.Status != filter.Status {
			continue
		}
		result = append(result, payment)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
