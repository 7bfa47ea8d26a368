package memory

import (
	"testing"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

func TestOutboxRepository_EnqueueAndPull(t *testing.T) {
	t.Parallel()

	repo := NewOutboxRepository()

	first, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "o1",
		EventType:     "OrderPlaced",
		Payload:       []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}

	if _, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "o2",
		EventType:     "OrderCancelled",
		Payload:       []byte(`{}`),
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	limited, err := repo.PullPending(1)
	if err != nil {
		t.Fatalf("pull pending limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(limited))
	}
}

func TestOutboxRepository_MarkSentRemovesFromPending(t *testing.T) {
	t.Parallel()

	repo := NewOutboxRepository()
	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o1", EventType: "OrderPlaced"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after MarkSent, got %d", len(pending))
	}

	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestOutboxRepository_MarkFailedRemovesFromPending(t *testing.T) {
	t.Parallel()

	repo := NewOutboxRepository()
	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "payment", AggregateID: "pay1", EventType: "PaymentPaid"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := repo.MarkFailed(msg.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after MarkFailed, got %d", len(pending))
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	t.Parallel()

	repo := NewOutboxRepository()

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 0 || !stats.OldestPendingAt.IsZero() {
		t.Fatalf("expected empty stats, got %+v", stats)
	}

	first, _ := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o1", EventType: "OrderPlaced"})
	if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o2", EventType: "OrderPlaced"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 {
		t.Fatalf("expected 2 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp")
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	stats, _ = repo.Stats()
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending after MarkSent, got %d", stats.PendingCount)
	}
}
