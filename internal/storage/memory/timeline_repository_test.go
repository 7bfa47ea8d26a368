package memory

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

func TestTimelineRepository_AppendAndList(t *testing.T) {
	t.Parallel()

	repo := NewTimelineRepository()
	base := time.Now().UTC()

	// Добавляем события не в хронологическом порядке.
	events := []domain.TimelineEvent{
		{OrderID: "o1", Type: "OrderCompleted", Occurred: base.Add(2 * time.Minute)},
		{OrderID: "o1", Type: "OrderPlaced", Occurred: base},
		{OrderID: "o1", Type: "PaymentPaid", Occurred: base.Add(time.Minute)},
		{OrderID: "o2", Type: "OrderPlaced", Occurred: base},
	}
	for _, event := range events {
		if err := repo.Append(event); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.List("o1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}

	want := []string{"OrderPlaced", "PaymentPaid", "OrderCompleted"}
	for i := range want {
		if got[i].Type != want[i] {
			t.Fatalf("events[%d]: expected %s, got %s", i, want[i], got[i].Type)
		}
	}
}

func TestTimelineRepository_List_UnknownOrder(t *testing.T) {
	t.Parallel()

	repo := NewTimelineRepository()

	got, err := repo.List("missing")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty history, got %d events", len(got))
	}
}
