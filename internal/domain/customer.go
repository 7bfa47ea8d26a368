package domain

import "time"

// Customer описывает покупателя. После создания запись считается
// неизменяемой с точки зрения основной бизнес-логики.
type Customer struct {
	ID   string
	Name string
	// Email уникален в пределах магазина.
	Email string
	Phone string
	// City — опциональное поле; пустая строка означает "не указан".
	City      string
	CreatedAt time.Time
}

// Validate проверяет обязательные поля покупателя.
func (c *Customer) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if c.Email == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}

	return errs
}
