package main

import (
	"context"
	"log"

	"coinex_bot/internal/engine"
	"coinex_bot/internal/exchange"
	"coinex_bot/internal/journal"
	"coinex_bot/internal/metrics"
	"coinex_bot/internal/models"
	"coinex_bot/internal/modules/config"
	"coinex_bot/internal/notify"
	"coinex_bot/internal/predict"
	"coinex_bot/internal/runner"
	"coinex_bot/pkg/logger"
	"coinex_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger.SetServiceName("coinex_bot")
	tracing.SetServiceName("coinex_bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Provide(
			newNotifier,
			newExchange,
			newEngine,
			func(c *exchange.Client) runner.MarketData { return c },
			func(c *exchange.Client) engine.Submitter { return c },
			func() predict.Port { return predict.NewTalibPredictor() },
		),
		fx.Invoke(initTracing),
		journal.Module(),
		metrics.Module(),
		runner.Module(),
	)
	app.Run()
}

func newNotifier(cfg *config.Config) (notify.Notifier, error) {
	return notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
}

func newExchange(cfg *config.Config, n notify.Notifier) *exchange.Client {
	c := exchange.NewClient(cfg.Exchange.AccessID, cfg.Exchange.Secret)
	if cfg.Exchange.BaseURL != "" {
		c.SetBaseURL(cfg.Exchange.BaseURL)
	}
	if cfg.Exchange.WSURL != "" {
		c.SetWSURL(cfg.Exchange.WSURL)
	}
	c.SetNotifier(n)
	return c
}

func newEngine(cfg *config.Config, sub engine.Submitter, n notify.Notifier, jrnl journal.Journal) *engine.Engine {
	return engine.New(
		cfg.Trading.Market,
		models.RiskConfig{
			TotalCapital: cfg.Trading.TotalCapital,
			RiskFraction: cfg.Trading.RiskFraction,
		},
		models.LevelLadder{
			Buy:  cfg.Trading.BuyLevels,
			Sell: cfg.Trading.SellLevels,
		},
		sub,
		n,
		jrnl,
	)
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}
