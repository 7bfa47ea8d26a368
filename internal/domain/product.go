package domain

import "time"

// Product описывает товар каталога с текущим остатком на складе.
type Product struct {
	ID string
	// SKU — уникальный внешний артикул товара.
	SKU  string
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
	// Stock — доступный остаток. Инвариант Stock >= 0 обеспечивается
	// клампом в inventory.Ledger, а не проверками при чтении.
	Stock int32
	// Category — опциональная категория; пустая строка означает "не задана".
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) Validate() []error {
	var errs []error

	if p.SKU == "" {
		errs = append(errs, ErrSKURequired)
	}
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
