package inventory

import (
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/metrics"
	"github.com/vladislavdragonenkov/roms/internal/storage/memory"
)

func seedProduct(t *testing.T, repo domain.ProductRepository, stock int32) domain.Product {
	t.Helper()

	product := domain.Product{
		ID:         "product-1",
		SKU:        "SKU-1",
		Name:       "Widget",
		PriceMinor: 100,
		Stock:      stock,
	}
	if err := repo.Insert(product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestLedger_Adjust(t *testing.T) {
	t.Parallel()

	repo := memory.NewProductRepository()
	seedProduct(t, repo, 10)
	ledger := NewLedger(repo, nil, nil)

	got, err := ledger.Adjust("product-1", -3)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", got.Stock)
	}

	got, err = ledger.Adjust("product-1", 5)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got.Stock != 12 {
		t.Fatalf("expected stock 12, got %d", got.Stock)
	}
}

func TestLedger_Adjust_ClampsAtZero(t *testing.T) {
	t.Parallel()

	repo := memory.NewProductRepository()
	seedProduct(t, repo, 3)
	registry := prometheus.NewRegistry()
	ledger := NewLedger(repo, nil, metrics.NewOrderMetricsWithRegisterer(registry))

	got, err := ledger.Adjust("product-1", -10)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("expected stock clamped at 0, got %d", got.Stock)
	}

	stored, err := repo.Get("product-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Stock != 0 {
		t.Fatalf("expected stored stock 0, got %d", stored.Stock)
	}

	if got := counterValue(t, registry, "roms_stock_clamped_total"); got != 1 {
		t.Fatalf("expected 1 clamp recorded, got %v", got)
	}
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestLedger_Adjust_UnknownProduct(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(memory.NewProductRepository(), nil, nil)

	_, err := ledger.Adjust("no-such-product", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestLedger_Adjust_ConcurrentSameProduct(t *testing.T) {
	t.Parallel()

	repo := memory.NewProductRepository()
	seedProduct(t, repo, 1000)
	ledger := NewLedger(repo, nil, nil)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := ledger.Adjust("product-1", -1); err != nil {
				t.Errorf("adjust: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.Get("product-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stock != 1000-workers {
		t.Fatalf("expected stock %d, got %d: concurrent adjustments lost updates", 1000-workers, got.Stock)
	}
}
