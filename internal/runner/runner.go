package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"coinex_bot/internal/chart"
	"coinex_bot/internal/engine"
	"coinex_bot/internal/exchange"
	"coinex_bot/internal/metrics"
	"coinex_bot/internal/models"
	"coinex_bot/internal/modules/config"
	"coinex_bot/internal/notify"
	"coinex_bot/internal/predict"
	"coinex_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
)

// MarketData — то, что циклу нужно от биржи (реализует exchange.Client).
type MarketData interface {
	Candles(ctx context.Context, market, interval string, limit int) (models.MarketSeries, error)
	Balance(ctx context.Context, ccy string) (float64, error)
	LastPrice(market string) float64
	StreamTicker(ctx context.Context, market string) <-chan float64
}

// Runner — один бесконечный цикл решения: свечи → прогноз → движок →
// уведомления → пауза. Никакого торгового состояния у самого раннера нет,
// позицией владеет движок.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg  *config.Config
	ex   MarketData
	eng  *engine.Engine
	port predict.Port
	n    notify.Notifier

	cycles atomic.Int64
}

func New(cfg *config.Config, ex MarketData, eng *engine.Engine, port predict.Port, n notify.Notifier) *Runner {
	return &Runner{
		cfg:  cfg,
		ex:   ex,
		eng:  eng,
		port: port,
		n:    n,
	}
}

func (r *Runner) Start(parent context.Context) {
	r.ctx, r.cancel = context.WithCancel(parent)

	market := r.cfg.Trading.Market

	// фоновый тикер-стрим греет кэш последней цены для health-отчёта
	go func() {
		for range r.ex.StreamTicker(r.ctx, market) {
		}
	}()
	go r.healthLoop(r.ctx)

	logger.Info("[RUNNER] ▶️ старт цикла %s, каденс %s", market, r.cfg.Cadence)
	r.n.Sendf("📈 Бот запущен: %s, каденс %s", market, r.cfg.Cadence)

	go r.loop(r.ctx)
}

func (r *Runner) loop(ctx context.Context) {
	for {
		wait := r.cycle(ctx)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// cycle — одна итерация. Возвращает паузу до следующей: короткий кулдаун,
// когда данных нет, иначе штатный каденс.
func (r *Runner) cycle(ctx context.Context) time.Duration {
	span := opentracing.StartSpan("cycle")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	t := r.cfg.Trading
	series, err := r.ex.Candles(ctx, t.Market, t.Interval, t.CandleLimit)
	if err != nil {
		r.reportAPIError(err)
		if exchange.IsEmptyData(err) {
			r.n.Sendf("⚠️ [%s] Биржа вернула пустые свечи, повтор через %s", t.Market, r.cfg.EmptyCooldown)
		}
		return r.cfg.EmptyCooldown
	}
	price := series.LastClose()

	pctx, cancel := context.WithTimeout(ctx, r.cfg.PredictTimeout)
	snap, perr := r.port.Predict(pctx, series, r.cfg.Features)
	cancel()

	if perr != nil {
		// нет сигнала — нет торговой оценки, позиция не трогается
		logger.Info("[RUNNER] %s: прогноз недоступен (%v), оценка пропущена", t.Market, perr)
	} else if bal, berr := r.ex.Balance(ctx, t.BalanceCcy); berr != nil {
		r.reportAPIError(berr)
	} else {
		metrics.Equity.Set(bal)
		r.eng.Evaluate(ctx, engine.Input{
			Price:   price,
			ATR:     snap.ATR,
			Balance: bal,
			At:      time.Now().UTC(),
		})
	}

	// уведомления и артефакт льются независимо от исхода оценки
	if perr == nil {
		r.n.Sendf("🔮 [%s] P=%.4f → прогноз %.4f (ATR=%.4f)", t.Market, price, snap.PredictedPrice, snap.ATR)
		if html, cerr := chart.Render(t.Market, series, snap.PredictedPrice); cerr == nil {
			name := fmt.Sprintf("%s_%d.html", t.Market, time.Now().Unix())
			r.n.SendImage(name, html, fmt.Sprintf("%s: прогноз %.4f", t.Market, snap.PredictedPrice))
		} else {
			logger.Error("[RUNNER] chart: %v", cerr)
		}
	}

	metrics.Cycles.Inc()
	r.cycles.Add(1)
	metrics.MarkReady()
	return r.cfg.Cadence
}

func (r *Runner) reportAPIError(err error) {
	var kind string
	switch {
	case exchange.IsEmptyData(err):
		kind = "empty_data"
	case exchange.IsRemote(err):
		kind = "remote"
	case exchange.IsExhausted(err):
		kind = "exhausted"
	default:
		kind = "transport"
	}
	metrics.APIErrors.WithLabelValues(kind).Inc()
	logger.Error("[RUNNER] %s: api error (%s): %v", r.cfg.Trading.Market, kind, err)
}

func (r *Runner) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			market := r.cfg.Trading.Market
			r.n.Sendf("🩺 HEALTH | %s | last=%.4f | cycles=%d",
				market, r.ex.LastPrice(market), r.cycles.Load())
		}
	}
}

// Stop — мягко гасит раннер.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}
