package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Строка заказа и его позиции хранятся раздельно: Insert и InsertItem —
// независимые операции, как в удалённом хранилище.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	lines map[string][]domain.OrderItem
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
		lines: make(map[string][]domain.OrderItem),
	}
}

// Get возвращает заказ вместе с позициями или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderItem(nil), r.lines[id]...)
	return order, nil
}

// Insert сохраняет строку заказа; вложенные Items игнорируются.
func (r *orderRepositoryInMemory) Insert(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderCreationFailed
	}
	order.Items = nil
	r.items[order.ID] = order
	return nil
}

// UpdateStatus меняет статус заказа и возвращает обновлённую запись.
func (r *orderRepositoryInMemory) UpdateStatus(id string, status domain.OrderStatus) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	r.items[id] = order

	order.Items = append([]domain.OrderItem(nil), r.lines[id]...)
	return order, nil
}

// ListByCustomer возвращает заказы клиента, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) ListByCustomer(customerID string, limit int) ([]domain.Order, error) {
	return r.List(domain.OrderFilter{CustomerID: customerID, Limit: limit})
}

// List возвращает заказы по фильтру, новые первыми.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if filter.CustomerID != "" && order.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		order.Items = append([]domain.OrderItem(nil), r.lines[order.ID]...)
		result = append(result, order)
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

// Delete удаляет заказ вместе с позициями и возвращает удалённую запись.
func (r *orderRepositoryInMemory) Delete(id string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderItem(nil), r.lines[id]...)
	delete(r.items, id)
	delete(r.lines, id)
	return order, nil
}

// InsertItem сохраняет одну позицию заказа.
func (r *orderRepositoryInMemory) InsertItem(item domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	lines := append(r.lines[item.OrderID], item)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })
	r.lines[item.OrderID] = lines
	return nil
}

// ListItems возвращает позиции заказа по возрастанию Position: срез строк
// поддерживается отсортированным при вставке.
func (r *orderRepositoryInMemory) ListItems(orderID string) ([]domain.OrderItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]domain.OrderItem(nil), r.lines[orderID]...), nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
