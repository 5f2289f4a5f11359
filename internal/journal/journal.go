package journal

import (
	"context"

	"coinex_bot/internal/models"
)

// Journal пишет историю исполненных сделок. Запись best-effort: ошибки
// логируются внутри реализации и никогда не влияют на торговлю.
// Состояние позиции здесь НЕ хранится — после рестарта движок стартует Flat.
type Journal interface {
	RecordOpen(ctx context.Context, market string, pos models.Position)
	RecordClose(ctx context.Context, market string, pos models.Position, exitPrice float64, reason string)
}

// Noop — когда DSN не настроен.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) RecordOpen(context.Context, string, models.Position) {}
func (Noop) RecordClose(context.Context, string, models.Position, float64, string) {
}
