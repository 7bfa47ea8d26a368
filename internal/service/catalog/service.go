package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/inventory"
)

// Service управляет справочниками: товарами и покупателями. Операции
// одиночные, без компенсаций — каждая трогает ровно одну запись.
type Service struct {
	products  domain.ProductRepository
	customers domain.CustomerRepository
	ledger    *inventory.Ledger
	logger    *log.Entry
}

// NewService конструирует сервис справочников.
func NewService(
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	ledger *inventory.Ledger,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-service")
	}
	return &Service{products: products, customers: customers, ledger: ledger, logger: logger}
}

// CreateProduct валидирует и сохраняет новый товар.
func (s *Service) CreateProduct(product domain.Product) (domain.Product, error) {
	if errs := product.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.Insert(product); err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
	}).Info("product created")
	return product, nil
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(id string) (domain.Product, error) {
	return s.products.Get(id)
}

// GetProductBySKU возвращает товар по артикулу.
func (s *Service) GetProductBySKU(sku string) (domain.Product, error) {
	return s.products.GetBySKU(sku)
}

// ListProducts возвращает товары по фильтру.
func (s *Service) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(filter)
}

// UpdateProduct перезаписывает поля существующего товара.
func (s *Service) UpdateProduct(product domain.Product) (domain.Product, error) {
	if errs := product.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}

	current, err := s.products.Get(product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	if err := s.products.Update(product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// RestockProduct увеличивает остаток товара на qty единиц.
func (s *Service) RestockProduct(id string, qty int32) (domain.Product, error) {
	if qty <= 0 {
		return domain.Product{}, domain.ErrQuantityInvalid
	}
	return s.ledger.Adjust(id, qty)
}

// DeleteProduct удаляет товар и возвращает удалённую запись.
func (s *Service) DeleteProduct(id string) (domain.Product, error) {
	product, err := s.products.Delete(id)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
	}).Info("product deleted")
	return product, nil
}

// CreateCustomer валидирует и сохраняет нового покупателя.
func (s *Service) CreateCustomer(customer domain.Customer) (domain.Customer, error) {
	if errs := customer.Validate(); len(errs) > 0 {
		return domain.Customer{}, errors.Join(errs...)
	}

	customer.ID = uuid.NewString()
	customer.CreatedAt = time.Now().UTC()

	if err := s.customers.Insert(customer); err != nil {
		return domain.Customer{}, err
	}

	s.logger.WithFields(log.Fields{
		"customer_id": customer.ID,
		"email":       customer.Email,
	}).Info("customer created")
	return customer, nil
}

// GetCustomer возвращает покупателя по идентификатору.
func (s *Service) GetCustomer(id string) (domain.Customer, error) {
	return s.customers.Get(id)
}

// GetCustomerByEmail возвращает покупателя по email.
func (s *Service) GetCustomerByEmail(email string) (domain.Customer, error) {
	return s.customers.GetByEmail(email)
}

// ListCustomers возвращает покупателей, ограничивая выборку limit (если >0).
func (s *Service) ListCustomers(limit int) ([]domain.Customer, error) {
	return s.customers.List(limit)
}

// DeleteCustomer удаляет покупателя и возвращает удалённую запись.
func (s *Service) DeleteCustomer(id string) (domain.Customer, error) {
	return s.customers.Delete(id)
}
