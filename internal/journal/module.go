package journal

import (
	"context"
	"fmt"

	"coinex_bot/internal/modules/config"
	"coinex_bot/pkg/db"
	"coinex_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (Journal, error) {
				if cfg.DB == "" {
					logger.Info("journal: DSN не задан, история сделок не пишется")
					return NewNoop(), nil
				}

				pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
				if err != nil {
					return nil, fmt.Errorf("failed to create pool: %w", err)
				}
				tx := db.NewPgTxManager(pool)
				if err := tx.Ping(ctx); err != nil {
					return nil, err
				}
				return NewPg(ctx, tx)
			},
		),
	)
}
