package domain

import "time"

// PaymentStatus описывает состояние платежа.
type PaymentStatus string

const (
	// PaymentStatusPending — платёж создан вместе с заказом, но не проведён.
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusPaid — платёж проведён, заказ переводится в COMPLETED.
	PaymentStatusPaid PaymentStatus = "PAID"
	// PaymentStatusRefunded — средства возвращены (обычно при отмене заказа).
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod — закрытый набор способов оплаты, валидируется на границе.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

// KnownPaymentMethod сообщает, входит ли метод в допустимый набор.
func KnownPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// Payment описывает платёж, связанный с заказом строго 1:1.
type Payment struct {
	ID      string
	OrderID string
	// AmountMinor равен сумме заказа на момент создания платежа.
	AmountMinor int64
	Status      PaymentStatus
	// Method пуст, пока платёж не проведён.
	Method    PaymentMethod
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderIDRequired)
	}
	if p.AmountMinor < 0 {
		errs = append(errs, ErrPaymentAmountNegative)
	}

	return errs
}

// PaymentDetails — составное представление платежа с вложенным заказом.
type PaymentDetails struct {
	Payment Payment
	Order   Order
}
