package saga

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/metrics"
)

// Step — один прямой шаг саги с опциональной компенсацией.
type Step struct {
	Name string
	Do   func() error
	// Undo откатывает уже выполненный Do. nil означает, что шаг не
	// компенсируется (например, вставка строки заказа: при откате стока
	// строка просто остаётся свидетельством неудачной попытки).
	Undo func() error
}

// UndoFailure фиксирует отказ конкретного undo-шага при компенсации.
type UndoFailure struct {
	Step string
	Err  error
}

// CompensationError — итог неудачной саги: первопричина плюс результаты
// компенсационного прогона. Undo-отказы не теряются молча, но и не делают
// операцию «более проваленной»: errors.Is/As продолжают матчить Cause.
type CompensationError struct {
	Cause error
	Undo  []UndoFailure
}

func (e *CompensationError) Error() string {
	if len(e.Undo) == 0 {
		return e.Cause.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v (compensation incomplete:", e.Cause)
	for _, f := range e.Undo {
		fmt.Fprintf(&b, " undo %s: %v;", f.Step, f.Err)
	}
	b.WriteString(")")
	return b.String()
}

func (e *CompensationError) Unwrap() error { return e.Cause }

// Sequence — упорядоченный список (do, undo)-пар. При отказе шага i
// выполняются undo шагов 0..i-1 в обратном порядке.
type Sequence struct {
	name    string
	steps   []Step
	logger  *log.Entry
	metrics *metrics.OrderMetrics
}

// New создаёт пустую последовательность с заданным именем операции.
func New(name string, logger *log.Entry, m *metrics.OrderMetrics) *Sequence {
	if logger == nil {
		logger = log.New().WithField("component", "saga")
	}
	return &Sequence{
		name:    name,
		logger:  logger.WithField("saga", name),
		metrics: m,
	}
}

// Add добавляет шаг и возвращает последовательность для цепочки вызовов.
func (s *Sequence) Add(step Step) *Sequence {
	s.steps = append(s.steps, step)
	return s
}

// AddStep — сокращение для Add без объявления структуры на месте вызова.
func (s *Sequence) AddStep(name string, do, undo func() error) *Sequence {
	return s.Add(Step{Name: name, Do: do, Undo: undo})
}

// Run выполняет шаги по порядку. При первом отказе запускает компенсацию
// завершённых шагов в обратном порядке и возвращает *CompensationError;
// отказы undo-шагов логируются и собираются, но не прерывают компенсацию.
func (s *Sequence) Run() error {
	for i, step := range s.steps {
		err := step.Do()
		if err == nil {
			continue
		}

		s.logger.WithError(err).WithField("step", step.Name).Warn("saga step failed, compensating")
		cause := fmt.Errorf("%s: %w", step.Name, err)
		return &CompensationError{
			Cause: cause,
			Undo:  s.compensate(i),
		}
	}
	return nil
}

// compensate запускает undo завершённых шагов steps[0..failed-1] в обратном порядке.
func (s *Sequence) compensate(failed int) []UndoFailure {
	s.metrics.RecordCompensation()

	var failures []UndoFailure
	for i := failed - 1; i >= 0; i-- {
		step := s.steps[i]
		if step.Undo == nil {
			continue
		}
		if err := step.Undo(); err != nil {
			s.logger.WithError(err).WithField("step", step.Name).Error("compensation undo failed")
			s.metrics.RecordUndoFailure()
			failures = append(failures, UndoFailure{Step: step.Name, Err: err})
			continue
		}
		s.logger.WithField("step", step.Name).Debug("compensation undo applied")
	}
	return failures
}
