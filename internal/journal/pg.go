package journal

import (
	"context"
	"time"

	"coinex_bot/internal/models"
	"coinex_bot/pkg/db"
	"coinex_bot/pkg/logger"

	"github.com/jackc/pgx/v5"
)

const createTradesSQL = `
CREATE TABLE IF NOT EXISTS trades (
    id          BIGSERIAL PRIMARY KEY,
    market      TEXT        NOT NULL,
    action      TEXT        NOT NULL,
    entry_price DOUBLE PRECISION NOT NULL,
    exit_price  DOUBLE PRECISION,
    size        DOUBLE PRECISION NOT NULL,
    stop_loss   DOUBLE PRECISION NOT NULL,
    take_profit DOUBLE PRECISION NOT NULL,
    reason      TEXT,
    opened_at   TIMESTAMPTZ NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Pg — журнал сделок в Postgres поверх pkg/db.
type Pg struct {
	tx *db.PgTxManager
}

func NewPg(ctx context.Context, tx *db.PgTxManager) (*Pg, error) {
	err := tx.RunMaster(ctx, func(ctxTx context.Context, t pgx.Tx) error {
		_, err := t.Exec(ctxTx, createTradesSQL)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Pg{tx: tx}, nil
}

func (p *Pg) RecordOpen(ctx context.Context, market string, pos models.Position) {
	p.record(ctx, `INSERT INTO trades (market, action, entry_price, size, stop_loss, take_profit, opened_at)
		VALUES ($1, 'open', $2, $3, $4, $5, $6)`,
		market, pos.Entry, pos.Size, pos.StopLoss, pos.TakeProfit, pos.OpenedAt)
}

func (p *Pg) RecordClose(ctx context.Context, market string, pos models.Position, exitPrice float64, reason string) {
	p.record(ctx, `INSERT INTO trades (market, action, entry_price, exit_price, size, stop_loss, take_profit, reason, opened_at)
		VALUES ($1, 'close', $2, $3, $4, $5, $6, $7, $8)`,
		market, pos.Entry, exitPrice, pos.Size, pos.StopLoss, pos.TakeProfit, reason, pos.OpenedAt)
}

func (p *Pg) record(ctx context.Context, sql string, args ...any) {
	// журнал не должен тормозить цикл дольше, чем на пару секунд
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := p.tx.RunMaster(wctx, func(ctxTx context.Context, t pgx.Tx) error {
		_, err := t.Exec(ctxTx, sql, args...)
		return err
	})
	if err != nil {
		logger.Error("journal: %v", err)
	}
}
