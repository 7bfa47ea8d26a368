package inventory

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/metrics"
)

// Ledger выполняет изменение остатков товара поверх ProductRepository.
//
// Хранилище не предоставляет атомарного инкремента: изменение — это два
// независимых сетевых вызова (чтение, затем запись). Чтобы конкурентные
// корректировки одного товара не теряли обновления, Ledger сериализует их
// через in-process мьютекс на каждый productID. Это закрывает гонку только
// в пределах одного процесса; для многопроцессного деплоя нужен
// однооператорный UPDATE вида SET stock = GREATEST(0, stock + delta).
//
// Остаток зажат снизу нулём: достаточно большой отрицательный delta молча
// недосписывает, поэтому вызывающие не должны рассчитывать на точную
// симметрию декремента и последующего равного инкремента.
type Ledger struct {
	products domain.ProductRepository
	logger   *log.Entry
	metrics  *metrics.OrderMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedger создаёт Ledger поверх репозитория товаров. Метрики опциональны.
func NewLedger(products domain.ProductRepository, logger *log.Entry, m *metrics.OrderMetrics) *Ledger {
	if logger == nil {
		logger = log.WithField("component", "inventory-ledger")
	}
	return &Ledger{
		products: products,
		logger:   logger,
		metrics:  m,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Adjust изменяет остаток товара на delta (может быть отрицательным) и
// возвращает обновлённый товар. Результирующий остаток не опускается ниже нуля.
func (l *Ledger) Adjust(productID string, delta int32) (domain.Product, error) {
	lock := l.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	product, err := l.products.Get(productID)
	if err != nil {
		return domain.Product{}, err
	}

	newStock := product.Stock + delta
	if newStock < 0 {
		l.logger.WithFields(log.Fields{
			"product_id": productID,
			"stock":      product.Stock,
			"delta":      delta,
		}).Warn("stock adjustment clamped at zero")
		l.metrics.RecordStockClamped()
		newStock = 0
	}

	product.Stock = newStock
	product.UpdatedAt = time.Now().UTC()
	if err := l.products.Update(product); err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

// productLock возвращает мьютекс для заданного товара, создавая его при
// первом обращении. Мьютексы не освобождаются: ассортимент конечен.
func (l *Ledger) productLock(productID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[productID] = lock
	}
	return lock
}
