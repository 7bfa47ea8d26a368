package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/inventory"
	"github.com/vladislavdragonenkov/roms/internal/storage/memory"
)

func newService(t *testing.T) (*Service, domain.ProductRepository, domain.CustomerRepository) {
	t.Helper()

	products := memory.NewProductRepository()
	customers := memory.NewCustomerRepository()
	ledger := inventory.NewLedger(products, nil, nil)
	return NewService(products, customers, ledger, nil), products, customers
}

func TestService_CreateProduct(t *testing.T) {
	t.Parallel()

	svc, products, _ := newService(t)

	created, err := svc.CreateProduct(domain.Product{
		SKU:        "SKU-1",
		Name:       "Widget",
		PriceMinor: 499,
		Stock:      20,
		Category:   "tools",
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps set")
	}

	stored, err := products.Get(created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.SKU != "SKU-1" || stored.Stock != 20 {
		t.Fatalf("unexpected stored product: %+v", stored)
	}
}

func TestService_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	_, err := svc.CreateProduct(domain.Product{PriceMinor: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrSKURequired) {
		t.Fatalf("expected ErrSKURequired in joined error, got %v", err)
	}
	if !errors.Is(err, domain.ErrPriceNegative) {
		t.Fatalf("expected ErrPriceNegative in joined error, got %v", err)
	}
}

func TestService_CreateProduct_DuplicateSKU(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	if _, err := svc.CreateProduct(domain.Product{SKU: "SKU-1", Name: "A", PriceMinor: 1}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateProduct(domain.Product{SKU: "SKU-1", Name: "B", PriceMinor: 2})
	if !errors.Is(err, domain.ErrSKUConflict) {
		t.Fatalf("expected ErrSKUConflict, got %v", err)
	}
}

func TestService_UpdateProduct_PreservesCreatedAt(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	created, err := svc.CreateProduct(domain.Product{SKU: "SKU-1", Name: "Widget", PriceMinor: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := created
	updated.Name = "Widget v2"
	updated.PriceMinor = 150
	updated.CreatedAt = time.Time{}

	got, err := svc.UpdateProduct(updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected CreatedAt preserved, got %v", got.CreatedAt)
	}
	if got.Name != "Widget v2" || got.PriceMinor != 150 {
		t.Fatalf("unexpected update result: %+v", got)
	}
}

func TestService_RestockProduct(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	created, err := svc.CreateProduct(domain.Product{SKU: "SKU-1", Name: "Widget", PriceMinor: 100, Stock: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.RestockProduct(created.ID, 7)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if got.Stock != 12 {
		t.Fatalf("expected stock 12, got %d", got.Stock)
	}

	_, err = svc.RestockProduct(created.ID, 0)
	if !errors.Is(err, domain.ErrQuantityInvalid) {
		t.Fatalf("expected ErrQuantityInvalid, got %v", err)
	}

	_, err = svc.RestockProduct("no-such-product", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestService_ListProducts_ByCategory(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	for _, p := range []domain.Product{
		{SKU: "S1", Name: "A", PriceMinor: 1, Category: "tools"},
		{SKU: "S2", Name: "B", PriceMinor: 1, Category: "toys"},
		{SKU: "S3", Name: "C", PriceMinor: 1, Category: "tools"},
	} {
		if _, err := svc.CreateProduct(p); err != nil {
			t.Fatalf("create %s: %v", p.SKU, err)
		}
	}

	tools, err := svc.ListProducts(domain.ProductFilter{Category: "tools"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}

	all, err := svc.ListProducts(domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
}

func TestService_DeleteProduct(t *testing.T) {
	t.Parallel()

	svc, products, _ := newService(t)

	created, err := svc.CreateProduct(domain.Product{SKU: "SKU-1", Name: "Widget", PriceMinor: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := svc.DeleteProduct(created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.SKU != "SKU-1" {
		t.Fatalf("expected deleted record returned, got %+v", deleted)
	}

	if _, err := products.Get(created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected product gone, got %v", err)
	}
}

func TestService_CreateCustomer(t *testing.T) {
	t.Parallel()

	svc, _, customers := newService(t)

	created, err := svc.CreateCustomer(domain.Customer{Name: "Ivan", Email: "ivan@example.com", City: "Moscow"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", created)
	}

	stored, err := customers.GetByEmail("ivan@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if stored.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, stored.ID)
	}
}

func TestService_CreateCustomer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	if _, err := svc.CreateCustomer(domain.Customer{Name: "Ivan", Email: "ivan@example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.CreateCustomer(domain.Customer{Name: "Other", Email: "ivan@example.com"})
	if !errors.Is(err, domain.ErrEmailConflict) {
		t.Fatalf("expected ErrEmailConflict, got %v", err)
	}
}

func TestService_CreateCustomer_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)

	_, err := svc.CreateCustomer(domain.Customer{})
	if !errors.Is(err, domain.ErrCustomerNameRequired) {
		t.Fatalf("expected ErrCustomerNameRequired, got %v", err)
	}
	if !errors.Is(err, domain.ErrCustomerEmailRequired) {
		t.Fatalf("expected ErrCustomerEmailRequired, got %v", err)
	}
}
