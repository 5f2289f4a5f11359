// Package metrics — Prometheus-метрики бота.
//
//	bot_cycles_total              — сколько циклов решения прожито
//	bot_orders_total{side,result} — ордера по стороне и исходу
//	bot_api_errors_total{kind}    — ошибки API по классификации
//	bot_unrealized_pnl            — нереализованный PnL открытой позиции
//	bot_equity_usd                — последний известный баланс
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Cycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_cycles_total",
			Help: "Decision cycles completed",
		},
	)

	Orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders submitted",
		},
		[]string{"side", "result"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_api_errors_total",
			Help: "Exchange API errors by kind",
		},
		[]string{"kind"},
	)

	UnrealizedPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_unrealized_pnl",
			Help: "Unrealized PnL of the open position",
		},
	)

	Equity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_equity_usd",
			Help: "Last known available balance",
		},
	)
)

func init() {
	prometheus.MustRegister(Cycles, Orders, APIErrors, UnrealizedPnL, Equity)
}
