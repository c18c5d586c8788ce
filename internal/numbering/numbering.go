// Package numbering выдаёт человекочитаемые номера заказов вида ORD-2025-0007.
//
// Последовательность ведётся отдельно для каждого года. Номер дополняется нулями
// до четырёх цифр, после 9999 просто становится длиннее (ORD-2025-10000).
package numbering

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Prefix    = "ORD"
	padLength = 4
)

// ErrGeneration - признак ошибки выдачи номера.
var ErrGeneration = errors.New("failed to generate order number")

// GenerationError оборачивает причину, по которой номер не удалось получить.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrGeneration, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// SequenceSource - доступ хранилища к последовательности номеров.
// Реализации вызывают его внутри той же транзакции, что и вставку заказа.
type SequenceSource interface {
	// LastNumber возвращает наибольший существующий номер с префиксом или "".
	LastNumber(ctx context.Context, prefix string) (string, error)
	// Advance атомарно сдвигает счётчик года и возвращает новое значение.
	// seed используется, если счётчик ещё не заведён или отстал от данных.
	Advance(ctx context.Context, year int, seed int64) (int64, error)
}

// Generator формирует номера по текущему году.
type Generator struct {
	clock func() time.Time
}

// NewGenerator создаёт генератор. clock по умолчанию - time.Now.
func NewGenerator(clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{clock: clock}
}

// Generate выдаёт следующий номер для текущего года.
func (g *Generator) Generate(ctx context.Context, src SequenceSource) (string, error) {
	return g.GenerateForYear(ctx, src, g.clock().UTC().Year())
}

// GenerateForYear выдаёт следующий номер для указанного года.
func (g *Generator) GenerateForYear(ctx context.Context, src SequenceSource, year int) (string, error) {
	prefix := YearPrefix(year)

	last, err := src.LastNumber(ctx, prefix)
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("read last number: %w", err)}
	}

	seq, err := src.Advance(ctx, year, NextSequence(last))
	if err != nil {
		return "", &GenerationError{Err: fmt.Errorf("advance counter: %w", err)}
	}
	if seq < 1 {
		return "", &GenerationError{Err: fmt.Errorf("counter returned %d", seq)}
	}

	return Format(year, seq), nil
}

// YearPrefix возвращает префикс номеров года: ORD-2025-.
func YearPrefix(year int) string {
	return fmt.Sprintf("%s-%04d-", Prefix, year)
}

// Format собирает номер из года и порядкового номера.
func Format(year int, seq int64) string {
	return fmt.Sprintf("%s%0*d", YearPrefix(year), padLength, seq)
}

// ParseSequence достаёт числовой суффикс номера.
func ParseSequence(number string) (int64, bool) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] != Prefix {
		return 0, false
	}
	seq, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// NextSequence возвращает номер, следующий за last. Пустой или битый last даёт 1.
func NextSequence(last string) int64 {
	seq, ok := ParseSequence(last)
	if !ok {
		return 1
	}
	return seq + 1
}

// Less сравнивает номера одного года по числовому значению суффикса.
func Less(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
