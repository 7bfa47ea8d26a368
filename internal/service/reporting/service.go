package reporting

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
)

// ProductSales — агрегат продаж по товару.
type ProductSales struct {
	ProductID    string
	Name         string
	UnitsSold    int64
	RevenueMinor int64
}

// CustomerOrders — количество заказов покупателя.
type CustomerOrders struct {
	CustomerID string
	Name       string
	Email      string
	Orders     int
}

// SalesSummary — сводка по всем заказам.
type SalesSummary struct {
	TotalOrders       int
	CompletedOrders   int
	CancelledOrders   int
	PlacedOrders      int
	RevenueMinor      int64
	AverageOrderMinor int64
	CompletionRate    float64
}

// Service считает отчёты проекцией поверх list-вызовов репозиториев.
// Строго read-only: состояние ни одной сущности не меняется. Заказы без
// платежей допустимы и учитываются по сумме заказа.
type Service struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	customers domain.CustomerRepository
	logger    *log.Entry
}

func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	customers domain.CustomerRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reporting-service")
	}
	return &Service{orders: orders, products: products, customers: customers, logger: logger}
}

// TopSellingProducts возвращает товары по убыванию проданных единиц.
// Учитываются только завершённые заказы. limit <= 0 означает «все».
func (s *Service) TopSellingProducts(limit int) ([]ProductSales, error) {
	orders, err := s.completedOrders()
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string]*ProductSales)
	for _, ord := range orders {
		items, err := s.orders.ListItems(ord.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			agg, ok := byProduct[item.ProductID]
			if !ok {
				agg = &ProductSales{ProductID: item.ProductID}
				byProduct[item.ProductID] = agg
			}
			agg.UnitsSold += int64(item.Qty)
			agg.RevenueMinor += int64(item.Qty) * item.PriceMinor
		}
	}

	result := make([]ProductSales, 0, len(byProduct))
	for _, agg := range byProduct {
		if product, err := s.products.Get(agg.ProductID); err == nil {
			agg.Name = product.Name
		}
		result = append(result, *agg)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UnitsSold != result[j].UnitsSold {
			return result[i].UnitsSold > result[j].UnitsSold
		}
		return result[i].ProductID < result[j].ProductID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// RevenueSince суммирует выручку завершённых заказов начиная с момента since.
func (s *Service) RevenueSince(since time.Time) (int64, error) {
	orders, err := s.completedOrders()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, ord := range orders {
		if ord.CreatedAt.Before(since) {
			continue
		}
		total += ord.AmountMinor
	}
	return total, nil
}

// OrdersPerCustomer возвращает число заказов по каждому покупателю,
// отсортированное по убыванию. Покупатели без заказов не включаются.
func (s *Service) OrdersPerCustomer() ([]CustomerOrders, error) {
	orders, err := s.orders.List(domain.OrderFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, ord := range orders {
		counts[ord.CustomerID]++
	}

	result := make([]CustomerOrders, 0, len(counts))
	for customerID, n := range counts {
		entry := CustomerOrders{CustomerID: customerID, Orders: n}
		if customer, err := s.customers.Get(customerID); err == nil {
			entry.Name = customer.Name
			entry.Email = customer.Email
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Orders != result[j].Orders {
			return result[i].Orders > result[j].Orders
		}
		return result[i].CustomerID < result[j].CustomerID
	})
	return result, nil
}

// CustomersWithMultipleOrders возвращает покупателей с числом заказов не
// меньше min. min < 2 трактуется как 2.
func (s *Service) CustomersWithMultipleOrders(min int) ([]CustomerOrders, error) {
	if min < 2 {
		min = 2
	}

	all, err := s.OrdersPerCustomer()
	if err != nil {
		return nil, err
	}

	result := make([]CustomerOrders, 0, len(all))
	for _, entry := range all {
		if entry.Orders >= min {
			result = append(result, entry)
		}
	}
	return result, nil
}

// Summary считает сводку по всем заказам: статусная разбивка, выручка по
// завершённым, средний чек и доля завершённых.
func (s *Service) Summary() (SalesSummary, error) {
	orders, err := s.orders.List(domain.OrderFilter{})
	if err != nil {
		return SalesSummary{}, err
	}

	summary := SalesSummary{TotalOrders: len(orders)}
	for _, ord := range orders {
		switch ord.Status {
		case domain.OrderStatusCompleted:
			summary.CompletedOrders++
			summary.RevenueMinor += ord.AmountMinor
		case domain.OrderStatusCancelled:
			summary.CancelledOrders++
		case domain.OrderStatusPlaced:
			summary.PlacedOrders++
		}
	}

	if summary.CompletedOrders > 0 {
		summary.AverageOrderMinor = summary.RevenueMinor / int64(summary.CompletedOrders)
	}
	if summary.TotalOrders > 0 {
		summary.CompletionRate = float64(summary.CompletedOrders) / float64(summary.TotalOrders)
	}
	return summary, nil
}

func (s *Service) completedOrders() ([]domain.Order, error) {
	return s.orders.List(domain.OrderFilter{Status: domain.OrderStatusCompleted})
}
