package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибки валидации полей записей.
	ErrCustomerRequired      = errors.New("customer_id is required")
	ErrCustomerNameRequired  = errors.New("customer name is required")
	ErrCustomerEmailRequired = errors.New("customer email is required")
	ErrSKURequired           = errors.New("product sku is required")
	ErrProductNameRequired   = errors.New("product name is required")
	ErrPriceNegative         = errors.New("price_minor must be non-negative")
	ErrStockNegative         = errors.New("stock must be non-negative")
	ErrItemsRequired         = errors.New("order must contain at least one item")
	ErrAmountNegative        = errors.New("amount_minor must be non-negative")
	ErrItemQtyInvalid        = errors.New("item qty must be greater than zero")
	ErrItemPriceInvalid      = errors.New("item price must be non-negative")
	ErrAmountMismatch        = errors.New("order amount does not match items sum")
	ErrOrderIDRequired       = errors.New("order_id is required")
	ErrPaymentAmountNegative = errors.New("payment amount must be non-negative")

	// NotFound: запись, на которую ссылается операция, отсутствует.
	ErrCustomerNotFound = errors.New("customer not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")

	// InvalidArgument: некорректный вход, отклоняется до любых мутаций.
	ErrQuantityInvalid      = errors.New("quantity must be positive")
	ErrPaymentMethodInvalid = errors.New("invalid payment method, must be one of: Cash, Card, UPI")

	// ErrInsufficientStock — маркер нехватки стока; детали несёт
	// InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")

	// InvalidState / idempotency-guard: операция недопустима в текущем статусе.
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")
	ErrOrderAlreadyCompleted = errors.New("order is already completed")
	ErrOrderNotCancellable   = errors.New("only PLACED orders can be cancelled")
	ErrOrderCancelled        = errors.New("cannot complete a cancelled order")
	ErrPaymentAlreadyPaid    = errors.New("payment is already processed")
	ErrPaymentAlreadyRefund  = errors.New("payment is already refunded")
	ErrPaymentRefunded       = errors.New("cannot process a refunded payment")

	// Конфликты уникальности на уровне хранилища.
	ErrSKUConflict   = errors.New("product sku already exists")
	ErrEmailConflict = errors.New("customer email already exists")
	ErrPaymentExists = errors.New("payment already exists for order")

	// Ошибки протокола компенсаций: оборачивают первопричину,
	// произошедшую после начала мутаций.
	ErrOrderCreationFailed     = errors.New("order creation failed")
	ErrCancellationFailed      = errors.New("order cancellation failed")
	ErrPaymentCreationFailed   = errors.New("payment creation failed")
	ErrPaymentProcessingFailed = errors.New("payment processing failed")
	ErrPaymentRefundFailed     = errors.New("payment refund failed")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError несёт детали нехватки стока: какой товар,
// сколько доступно и сколько запрошено.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (id %s): available %d, requested %d",
		e.ProductName, e.ProductID, e.Available, e.Requested)
}

// Is позволяет errors.Is(err, ErrInsufficientStock) находить типизированную ошибку.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsValidation проверяет, относится ли ошибка к классу валидации полей.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCustomerRequired) ||
		errors.Is(err, ErrCustomerNameRequired) ||
		errors.Is(err, ErrCustomerEmailRequired) ||
		errors.Is(err, ErrSKURequired) ||
		errors.Is(err, ErrProductNameRequired) ||
		errors.Is(err, ErrPriceNegative) ||
		errors.Is(err, ErrStockNegative) ||
		errors.Is(err, ErrItemsRequired) ||
		errors.Is(err, ErrAmountNegative) ||
		errors.Is(err, ErrItemQtyInvalid) ||
		errors.Is(err, ErrItemPriceInvalid) ||
		errors.Is(err, ErrAmountMismatch) ||
		errors.Is(err, ErrOrderIDRequired) ||
		errors.Is(err, ErrPaymentAmountNegative) ||
		errors.Is(err, ErrQuantityInvalid) ||
		errors.Is(err, ErrPaymentMethodInvalid)
}

// IsNotFound проверяет, относится ли ошибка к классу NotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsInvalidState проверяет, является ли ошибка отказом по текущему статусу.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrOrderAlreadyCancelled) ||
		errors.Is(err, ErrOrderAlreadyCompleted) ||
		errors.Is(err, ErrOrderNotCancellable) ||
		errors.Is(err, ErrOrderCancelled) ||
		errors.Is(err, ErrPaymentAlreadyPaid) ||
		errors.Is(err, ErrPaymentAlreadyRefund) ||
		errors.Is(err, ErrPaymentRefunded)
}
