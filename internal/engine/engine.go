package engine

import (
	"context"
	"sort"
	"time"

	"coinex_bot/internal/journal"
	"coinex_bot/internal/metrics"
	"coinex_bot/internal/models"
	"coinex_bot/pkg/logger"
)

// Стоп и тейк строятся на 2·ATR от входа и фиксируются в позиции.
// Пересчитывать их по текущему ATR нельзя — стоп начнёт "плавать".
const atrMult = 2.0

// Submitter — адаптер исполнения ордеров (реализует exchange.Client).
type Submitter interface {
	SubmitLimit(ctx context.Context, market string, side models.Side, amount, price float64) models.OrderResult
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Input — вход одного цикла оценки.
type Input struct {
	Price   float64
	ATR     float64
	Balance float64
	At      time.Time
}

// Engine — конечный автомат Flat/Open. Единственный владелец позиции;
// вызывается строго из одного цикла, поэтому без локов.
type Engine struct {
	market string
	risk   models.RiskConfig
	ladder models.LevelLadder
	exec   Submitter
	n      Notifier
	jrnl   journal.Journal

	pos *models.Position
}

func New(market string, risk models.RiskConfig, ladder models.LevelLadder, exec Submitter, n Notifier, jrnl journal.Journal) *Engine {
	buy := append([]float64(nil), ladder.Buy...)
	sell := append([]float64(nil), ladder.Sell...)
	sort.Float64s(buy)
	sort.Float64s(sell)

	return &Engine{
		market: market,
		risk:   risk,
		ladder: models.LevelLadder{Buy: buy, Sell: sell},
		exec:   exec,
		n:      n,
		jrnl:   jrnl,
	}
}

// Position возвращает копию открытой позиции (ok=false, когда Flat).
func (e *Engine) Position() (models.Position, bool) {
	if e.pos == nil {
		return models.Position{}, false
	}
	return *e.pos, true
}

// Evaluate — один проход автомата. Покупка и продажа в одном цикле
// взаимоисключающие: Flat может только открыться, Open — только закрыться.
// После переходов открытая позиция репортит нереализованный PnL.
func (e *Engine) Evaluate(ctx context.Context, in Input) {
	if e.pos == nil {
		e.tryOpen(ctx, in)
	} else {
		e.tryClose(ctx, in)
	}

	if e.pos != nil {
		pnl := e.pos.UnrealizedPnL(in.Price)
		metrics.UnrealizedPnL.Set(pnl)
		e.n.Sendf("📊 [%s] Открыта @ %.4f, сейчас %.4f, size=%.4f | PnL=%.4f",
			e.market, e.pos.Entry, in.Price, e.pos.Size, pnl)
	} else {
		metrics.UnrealizedPnL.Set(0)
	}
}

// tryOpen обходит уровни покупки по возрастанию. Уровень пропускается при
// нулевом ATR (делить не на что) и при нехватке баланса; первый принятый
// ордер заканчивает обход.
func (e *Engine) tryOpen(ctx context.Context, in Input) {
	for _, lvl := range e.ladder.Buy {
		if in.Price > lvl {
			continue
		}

		stop := in.Price - atrMult*in.ATR
		target := in.Price + atrMult*in.ATR
		dist := in.Price - stop
		if dist <= 0 {
			logger.Info("[ENGINE] %s: уровень %.4f пропущен — нулевой ATR", e.market, lvl)
			continue
		}

		size := e.risk.TotalCapital * e.risk.RiskFraction / dist
		if size <= 0 {
			continue
		}
		if size > in.Balance {
			logger.Info("[ENGINE] %s: уровень %.4f пропущен — не хватает баланса (size=%.8f, balance=%.8f)",
				e.market, lvl, size, in.Balance)
			e.n.Sendf("⚠️ [%s] Недостаточно баланса для уровня %.4f (нужно %.4f, есть %.4f)",
				e.market, lvl, size, in.Balance)
			continue
		}

		res := e.exec.SubmitLimit(ctx, e.market, models.SideBuy, size, in.Price)
		if !res.Accepted {
			metrics.Orders.WithLabelValues("buy", "rejected").Inc()
			logger.Error("[ENGINE] %s: BUY отклонён: %v", e.market, res.Err)
			e.n.Sendf("❗️ [%s] BUY @ %.4f отклонён: %v", e.market, in.Price, res.Err)
			return
		}

		e.pos = &models.Position{
			Entry:      in.Price,
			Size:       size,
			StopLoss:   stop,
			TakeProfit: target,
			OpenedAt:   in.At,
		}
		metrics.Orders.WithLabelValues("buy", "accepted").Inc()
		e.n.Sendf("✅ [%s] OPEN buy @ %.4f | SL=%.4f TP=%.4f size=%.4f",
			e.market, in.Price, stop, target, size)
		e.jrnl.RecordOpen(ctx, e.market, *e.pos)
		return
	}
}

func (e *Engine) tryClose(ctx context.Context, in Input) {
	reason := ""
	for _, lvl := range e.ladder.Sell {
		if in.Price >= lvl {
			reason = "sell_level"
			break
		}
	}
	if reason == "" {
		switch {
		case in.Price <= e.pos.StopLoss:
			reason = "stop_loss"
		case in.Price >= e.pos.TakeProfit:
			reason = "take_profit"
		}
	}
	if reason == "" {
		return
	}

	res := e.exec.SubmitLimit(ctx, e.market, models.SideSell, e.pos.Size, in.Price)
	if !res.Accepted {
		// позиция остаётся как была, попробуем в следующем цикле
		metrics.Orders.WithLabelValues("sell", "rejected").Inc()
		logger.Error("[ENGINE] %s: SELL (%s) отклонён: %v", e.market, reason, res.Err)
		e.n.Sendf("❗️ [%s] SELL @ %.4f (%s) отклонён: %v", e.market, in.Price, reason, res.Err)
		return
	}

	closed := *e.pos
	e.pos = nil
	metrics.Orders.WithLabelValues("sell", "accepted").Inc()

	pnl := closed.UnrealizedPnL(in.Price)
	e.n.Sendf("✅ [%s] CLOSE %s @ %.4f | вход %.4f size=%.4f | PnL=%.4f",
		e.market, reason, in.Price, closed.Entry, closed.Size, pnl)
	e.jrnl.RecordClose(ctx, e.market, closed, in.Price, reason)
}
