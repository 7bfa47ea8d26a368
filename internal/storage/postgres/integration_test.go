package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

// openTestStore подключается к базе из TEST_POSTGRES_DSN и накатывает схему.
// Без переменной тест пропускается: интеграционные проверки требуют живой базы.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func TestIntegration_ProductRepository(t *testing.T) {
	store := openTestStore(t)
	repo := NewProductRepository(store)

	product := domain.Product{
		ID:         uuid.NewString(),
		SKU:        "it-" + uuid.NewString(),
		Name:       "Integration Widget",
		PriceMinor: 1250,
		Stock:      7,
		Category:   "integration",
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := repo.Insert(product); err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() { _, _ = repo.Delete(product.ID) })

	got, err := repo.Get(product.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SKU != product.SKU || got.Stock != 7 {
		t.Fatalf("unexpected product: %+v", got)
	}

	// Дубликат артикула ловится ограничением уникальности.
	dup := product
	dup.ID = uuid.NewString()
	if err := repo.Insert(dup); !errors.Is(err, domain.ErrSKUConflict) {
		t.Fatalf("expected ErrSKUConflict, got %v", err)
	}

	got.Stock = 3
	if err := repo.Update(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	reread, _ := repo.Get(product.ID)
	if reread.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", reread.Stock)
	}
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	store := openTestStore(t)
	products := NewProductRepository(store)
	customers := NewCustomerRepository(store)
	orders := NewOrderRepository(store)
	payments := NewPaymentRepository(store)

	now := time.Now().UTC()
	product := domain.Product{
		ID: uuid.NewString(), SKU: "it-" + uuid.NewString(), Name: "Widget",
		PriceMinor: 100, Stock: 10, CreatedAt: now, UpdatedAt: now,
	}
	if err := products.Insert(product); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	t.Cleanup(func() { _, _ = products.Delete(product.ID) })

	customer := domain.Customer{
		ID: uuid.NewString(), Name: "Ivan",
		Email: uuid.NewString() + "@example.com", CreatedAt: now,
	}
	if err := customers.Insert(customer); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	t.Cleanup(func() { _, _ = customers.Delete(customer.ID) })

	order := domain.Order{
		ID: uuid.NewString(), CustomerID: customer.ID,
		Status: domain.OrderStatusPlaced, AmountMinor: 200,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := orders.Insert(order); err != nil {
		t.Fatalf("insert order: %v", err)
	}
	t.Cleanup(func() { _, _ = orders.Delete(order.ID) })

	// Вставляем вторую строку раньше первой: выдача обязана следовать Position,
	// CreatedAt у строк одного заказа совпадает.
	second := domain.OrderItem{
		ID: uuid.NewString(), OrderID: order.ID, ProductID: uuid.NewString(),
		Qty: 1, PriceMinor: 50, Position: 1, CreatedAt: now,
	}
	if err := orders.InsertItem(second); err != nil {
		t.Fatalf("insert second item: %v", err)
	}
	first := domain.OrderItem{
		ID: uuid.NewString(), OrderID: order.ID, ProductID: product.ID,
		Qty: 2, PriceMinor: 100, Position: 0, CreatedAt: now,
	}
	if err := orders.InsertItem(first); err != nil {
		t.Fatalf("insert first item: %v", err)
	}

	got, err := orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items attached, got %+v", got.Items)
	}
	if got.Items[0].ProductID != product.ID || got.Items[1].ProductID != second.ProductID {
		t.Fatalf("expected items ordered by position, got %+v", got.Items)
	}

	updated, err := orders.UpdateStatus(order.ID, domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", updated.Status)
	}

	payment := domain.Payment{
		ID: uuid.NewString(), OrderID: order.ID, AmountMinor: 200,
		Status: domain.PaymentStatusPending, CreatedAt: now, UpdatedAt: now,
	}
	if err := payments.Insert(payment); err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	// Второй платёж на тот же заказ отклоняется.
	secondPayment := payment
	secondPayment.ID = uuid.NewString()
	if err := payments.Insert(secondPayment); !errors.Is(err, domain.ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists, got %v", err)
	}

	byOrder, err := payments.GetByOrder(order.ID)
	if err != nil {
		t.Fatalf("get by order: %v", err)
	}
	if byOrder.ID != payment.ID {
		t.Fatalf("expected %s, got %s", payment.ID, byOrder.ID)
	}
}

func TestIntegration_OutboxAndTimeline(t *testing.T) {
	store := openTestStore(t)
	outbox := NewOutboxRepository(store)
	timeline := NewTimelineRepository(store)

	orderID := uuid.NewString()
	msg, err := outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     "OrderPlaced",
		Payload:       []byte(`{"order_id":"` + orderID + `"}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := outbox.PullPending(100)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	var found bool
	for _, m := range pending {
		if m.ID == msg.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected message %s in pending batch", msg.ID)
	}

	if err := outbox.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	if err := timeline.Append(domain.TimelineEvent{
		OrderID:  orderID,
		Type:     "OrderPlaced",
		Occurred: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append timeline: %v", err)
	}

	events, err := timeline.List(orderID)
	if err != nil {
		t.Fatalf("list timeline: %v", err)
	}
	if len(events) != 1 || events[0].Type != "OrderPlaced" {
		t.Fatalf("unexpected timeline: %+v", events)
	}
}
