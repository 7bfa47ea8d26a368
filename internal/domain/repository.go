package domain

// Каждый метод репозитория — одна независимая операция против удалённого
// хранилища. Транзакций, охватывающих несколько вызовов или несколько
// сущностей, хранилище не предоставляет: согласованность многошаговых
// операций обеспечивает протокол компенсаций в сервисном слое.

// ProductFilter задаёт параметры выборки товаров.
type ProductFilter struct {
	// Category фильтрует по категории; пустая строка — без фильтра.
	Category string
	// Limit ограничивает выборку (0 — без ограничения).
	Limit int
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// GetBySKU возвращает товар по артикулу или ErrProductNotFound.
	GetBySKU(sku string) (Product, error)
	// Insert сохраняет новый товар; ErrSKUConflict при дубликате артикула.
	Insert(product Product) error
	// Update перезаписывает поля товара; ErrProductNotFound, если записи нет.
	Update(product Product) error
	// List возвращает товары в порядке создания.
	List(filter ProductFilter) ([]Product, error)
	// Delete удаляет товар и возвращает удалённую запись.
	Delete(id string) (Product, error)
}

// CustomerRepository описывает требования к хранилищу покупателей.
type CustomerRepository interface {
	Get(id string) (Customer, error)
	GetByEmail(email string) (Customer, error)
	// Insert сохраняет покупателя; ErrEmailConflict при дубликате email.
	Insert(customer Customer) error
	List(limit int) ([]Customer, error)
	Delete(id string) (Customer, error)
}

// OrderFilter задаёт параметры выборки заказов.
type OrderFilter struct {
	CustomerID string
	Status     OrderStatus
	Limit      int
}

// OrderRepository описывает требования к хранилищу заказов и их позиций.
// Insert сохраняет только строку заказа; позиции вставляются отдельными
// вызовами InsertItem — ровно так ведёт себя удалённое хранилище.
type OrderRepository interface {
	// Get возвращает заказ вместе с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	Insert(order Order) error
	// UpdateStatus меняет статус и возвращает обновлённый заказ.
	UpdateStatus(id string, status OrderStatus) (Order, error)
	ListByCustomer(customerID string, limit int) ([]Order, error)
	List(filter OrderFilter) ([]Order, error)
	Delete(id string) (Order, error)
	// InsertItem сохраняет одну позицию заказа.
	InsertItem(item OrderItem) error
	// ListItems возвращает позиции заказа в порядке вставки.
	ListItems(orderID string) ([]OrderItem, error)
}

// PaymentFilter задаёт параметры выборки платежей.
type PaymentFilter struct {
	Status PaymentStatus
	Limit  int
}

// PaymentRepository описывает требования к хранилищу платежей.
type PaymentRepository interface {
	Get(id string) (Payment, error)
	// GetByOrder возвращает платёж заказа (связь 1:1) или ErrPaymentNotFound.
	GetByOrder(orderID string) (Payment, error)
	// Insert сохраняет платёж; ErrPaymentExists, если слот заказа занят.
	Insert(payment Payment) error
	Update(payment Payment) error
	List(filter PaymentFilter) ([]Payment, error)
}
