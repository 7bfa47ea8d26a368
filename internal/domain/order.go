package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPlaced — заказ создан, сток списан, оплата не завершена.
	OrderStatusPlaced OrderStatus = "PLACED"
	// OrderStatusCompleted — заказ исполнен (как правило, после оплаты).
	OrderStatusCompleted OrderStatus = "COMPLETED"
	// OrderStatusCancelled — заказ отменён, сток возвращён на склад.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderItem представляет одну позицию заказа. Позиции неизменяемы после
// создания; порядок вставки соответствует порядку строк заказа.
type OrderItem struct {
	ID      string
	OrderID string
	// ProductID ссылается на товар каталога.
	ProductID string
	// Qty — количество единиц товара, строго положительное.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент создания заказа.
	// Последующие изменения Product.PriceMinor на неё не влияют.
	PriceMinor int64
	// Position — порядковый номер строки в заказе, начиная с нуля. Все строки
	// заказа создаются одним моментом времени, поэтому порядок восстанавливается
	// именно по этому полю, а не по CreatedAt.
	Position  int32
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	// AmountMinor — сумма заказа, зафиксированная при создании:
	// Σ Qty * PriceMinor по всем позициям.
	AmountMinor int64
	Items       []OrderItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// OrderDetails — составное представление заказа для выдачи наружу:
// сам заказ, покупатель и платёж (если он существует). Обогащение
// выполняется отдельным типом, а не мутацией базовой записи.
type OrderDetails struct {
	Order    Order
	Customer Customer
	// Payment может отсутствовать: создание платежа при оформлении заказа
	// best-effort, и заказ без платежа — допустимое состояние.
	Payment *Payment
}
