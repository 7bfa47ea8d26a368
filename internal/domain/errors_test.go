package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInsufficientStockError_Is(t *testing.T) {
	t.Parallel()

	err := &InsufficientStockError{
		ProductID:   "product-1",
		ProductName: "Widget",
		Available:   2,
		Requested:   5,
	}

	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("expected errors.Is to match ErrInsufficientStock")
	}

	wrapped := fmt.Errorf("create order: %w", err)
	if !errors.Is(wrapped, ErrInsufficientStock) {
		t.Fatal("expected wrapped error to match ErrInsufficientStock")
	}

	var typed *InsufficientStockError
	if !errors.As(wrapped, &typed) {
		t.Fatal("expected errors.As to extract InsufficientStockError")
	}
	if typed.Available != 2 || typed.Requested != 5 {
		t.Fatalf("unexpected detail: %+v", typed)
	}

	msg := err.Error()
	if !strings.Contains(msg, "Widget") || !strings.Contains(msg, "available 2") {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrCustomerNotFound, ErrProductNotFound, ErrOrderNotFound, ErrPaymentNotFound} {
		if !IsNotFound(err) {
			t.Errorf("expected IsNotFound(%v) to be true", err)
		}
		if !IsNotFound(fmt.Errorf("context: %w", err)) {
			t.Errorf("expected wrapped IsNotFound(%v) to be true", err)
		}
	}

	if IsNotFound(ErrOrderAlreadyCancelled) {
		t.Error("state error must not classify as not found")
	}
	if IsNotFound(nil) {
		t.Error("nil must not classify as not found")
	}
}

func TestIsInvalidState(t *testing.T) {
	t.Parallel()

	stateErrs := []error{
		ErrOrderAlreadyCancelled,
		ErrOrderAlreadyCompleted,
		ErrOrderNotCancellable,
		ErrOrderCancelled,
		ErrPaymentAlreadyPaid,
		ErrPaymentAlreadyRefund,
		ErrPaymentRefunded,
	}
	for _, err := range stateErrs {
		if !IsInvalidState(err) {
			t.Errorf("expected IsInvalidState(%v) to be true", err)
		}
	}

	if IsInvalidState(ErrOrderNotFound) {
		t.Error("not-found error must not classify as invalid state")
	}
}

func TestIsValidation(t *testing.T) {
	t.Parallel()

	validationErrs := []error{
		ErrCustomerRequired,
		ErrItemsRequired,
		ErrQuantityInvalid,
		ErrPaymentMethodInvalid,
		ErrAmountMismatch,
	}
	for _, err := range validationErrs {
		if !IsValidation(err) {
			t.Errorf("expected IsValidation(%v) to be true", err)
		}
	}

	if IsValidation(ErrInsufficientStock) {
		t.Error("stock error must not classify as validation")
	}
	if IsValidation(ErrOrderCreationFailed) {
		t.Error("saga failure must not classify as validation")
	}
}
